package store

import (
	"context"
	"sort"
	"sync"

	"github.com/greenpill-dev-guild/garden-indexer/internal/models"
)

// MemoryStore implements EntityStore in process memory. Used in tests and
// for ephemeral runs; values are deep-copied on the way in and out so stored
// state never aliases caller slices.
type MemoryStore struct {
	mu        sync.RWMutex
	actions   map[string]*models.Action
	gardens   map[string]*models.Garden
	gardeners map[string]*models.Gardener
}

// NewMemoryStore creates a new in-memory entity store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		actions:   make(map[string]*models.Action),
		gardens:   make(map[string]*models.Garden),
		gardeners: make(map[string]*models.Gardener),
	}
}

func (s *MemoryStore) Connect() error { return nil }
func (s *MemoryStore) Close() error   { return nil }
func (s *MemoryStore) Ping() error    { return nil }
func (s *MemoryStore) Migrate() error { return nil }

func (s *MemoryStore) GetAction(ctx context.Context, key string) (*models.Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.actions[key].Clone(), nil
}

func (s *MemoryStore) PutAction(ctx context.Context, action *models.Action) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.actions[action.Key] = action.Clone()
	return nil
}

func (s *MemoryStore) ListActions(ctx context.Context, chainID uint64) ([]*models.Action, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Action, 0, len(s.actions))
	for _, a := range s.actions {
		if chainID == 0 || a.ChainID == chainID {
			out = append(out, a.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *MemoryStore) GetGarden(ctx context.Context, key string) (*models.Garden, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gardens[key].Clone(), nil
}

func (s *MemoryStore) PutGarden(ctx context.Context, garden *models.Garden) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gardens[garden.Key] = garden.Clone()
	return nil
}

func (s *MemoryStore) ListGardens(ctx context.Context, chainID uint64) ([]*models.Garden, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Garden, 0, len(s.gardens))
	for _, g := range s.gardens {
		if chainID == 0 || g.ChainID == chainID {
			out = append(out, g.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

func (s *MemoryStore) GetGardener(ctx context.Context, key string) (*models.Gardener, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gardeners[key].Clone(), nil
}

func (s *MemoryStore) PutGardener(ctx context.Context, gardener *models.Gardener) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gardeners[gardener.Key] = gardener.Clone()
	return nil
}

func (s *MemoryStore) ListGardeners(ctx context.Context, chainID uint64) ([]*models.Gardener, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Gardener, 0, len(s.gardeners))
	for _, g := range s.gardeners {
		if chainID == 0 || g.ChainID == chainID {
			out = append(out, g.Clone())
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}

// PutMembership writes the garden and its gardeners under one lock so no
// reader observes a half-applied membership change.
func (s *MemoryStore) PutMembership(ctx context.Context, garden *models.Garden, gardeners []*models.Gardener) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gardens[garden.Key] = garden.Clone()
	for _, g := range gardeners {
		s.gardeners[g.Key] = g.Clone()
	}
	return nil
}

func (s *MemoryStore) Stats(ctx context.Context) (*EntityStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return &EntityStats{
		Actions:   int64(len(s.actions)),
		Gardens:   int64(len(s.gardens)),
		Gardeners: int64(len(s.gardeners)),
	}, nil
}
