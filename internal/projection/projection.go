// Package projection exposes read-only access to materialized entities for
// the query-serving layer. It reflects the store's committed state directly,
// with no caching that could diverge from it.
package projection

import (
	"context"

	"github.com/greenpill-dev-guild/garden-indexer/internal/models"
	"github.com/greenpill-dev-guild/garden-indexer/internal/store"
)

// Projection is the read-only view over materialized entities. Get methods
// return (nil, nil) for unknown keys; list methods accept chainID 0 to mean
// all chains.
type Projection interface {
	Action(ctx context.Context, key string) (*models.Action, error)
	Actions(ctx context.Context, chainID uint64) ([]*models.Action, error)

	Garden(ctx context.Context, key string) (*models.Garden, error)
	Gardens(ctx context.Context, chainID uint64) ([]*models.Garden, error)

	Gardener(ctx context.Context, key string) (*models.Gardener, error)
	Gardeners(ctx context.Context, chainID uint64) ([]*models.Gardener, error)

	Stats(ctx context.Context) (*store.EntityStats, error)
}

type storeProjection struct {
	store store.EntityStore
}

// New creates a projection backed directly by the entity store
func New(entityStore store.EntityStore) Projection {
	return &storeProjection{store: entityStore}
}

func (p *storeProjection) Action(ctx context.Context, key string) (*models.Action, error) {
	return p.store.GetAction(ctx, key)
}

func (p *storeProjection) Actions(ctx context.Context, chainID uint64) ([]*models.Action, error) {
	return p.store.ListActions(ctx, chainID)
}

func (p *storeProjection) Garden(ctx context.Context, key string) (*models.Garden, error) {
	return p.store.GetGarden(ctx, key)
}

func (p *storeProjection) Gardens(ctx context.Context, chainID uint64) ([]*models.Garden, error) {
	return p.store.ListGardens(ctx, chainID)
}

func (p *storeProjection) Gardener(ctx context.Context, key string) (*models.Gardener, error) {
	return p.store.GetGardener(ctx, key)
}

func (p *storeProjection) Gardeners(ctx context.Context, chainID uint64) ([]*models.Gardener, error) {
	return p.store.ListGardeners(ctx, chainID)
}

func (p *storeProjection) Stats(ctx context.Context) (*store.EntityStats, error) {
	return p.store.Stats(ctx)
}
