// Package store persists materialized entities. Backends keep each entity
// kind in its own table as a JSON document keyed by the chain-scoped entity
// key; no backend enforces cross-entity constraints, that consistency is the
// materialization engine's responsibility.
package store

import (
	"context"
	"time"

	"github.com/greenpill-dev-guild/garden-indexer/internal/models"
)

// EntityStore defines the interface for entity persistence.
//
// Get methods return (nil, nil) when the key is absent. Put methods upsert.
// PutMembership commits a garden and the gardeners touched by the same event
// as one unit; readers never observe one side without the other.
type EntityStore interface {
	// Connection management
	Connect() error
	Close() error
	Ping() error
	Migrate() error

	// Action operations
	GetAction(ctx context.Context, key string) (*models.Action, error)
	PutAction(ctx context.Context, action *models.Action) error
	ListActions(ctx context.Context, chainID uint64) ([]*models.Action, error)

	// Garden operations
	GetGarden(ctx context.Context, key string) (*models.Garden, error)
	PutGarden(ctx context.Context, garden *models.Garden) error
	ListGardens(ctx context.Context, chainID uint64) ([]*models.Garden, error)

	// Gardener operations
	GetGardener(ctx context.Context, key string) (*models.Gardener, error)
	PutGardener(ctx context.Context, gardener *models.Gardener) error
	ListGardeners(ctx context.Context, chainID uint64) ([]*models.Gardener, error)

	// PutMembership writes a garden and its co-updated gardeners atomically.
	PutMembership(ctx context.Context, garden *models.Garden, gardeners []*models.Gardener) error

	// Statistics
	Stats(ctx context.Context) (*EntityStats, error)
}

// EntityStats provides entity counts per kind.
type EntityStats struct {
	Actions   int64 `json:"actions"`
	Gardens   int64 `json:"gardens"`
	Gardeners int64 `json:"gardeners"`
}

// Config holds storage configuration
type Config struct {
	Type             string        `json:"type"` // memory, sqlite, postgres
	ConnectionString string        `json:"connection_string"`
	MaxConnections   int           `json:"max_connections"`
	MaxIdleTime      time.Duration `json:"max_idle_time"`
}
