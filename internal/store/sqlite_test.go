package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenpill-dev-guild/garden-indexer/internal/models"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()

	cfg := &Config{
		Type:             "sqlite",
		ConnectionString: filepath.Join(t.TempDir(), "entities.db"),
		MaxConnections:   4,
		MaxIdleTime:      time.Minute,
	}

	s := NewSQLiteStore(cfg)
	require.NoError(t, s.Connect())
	require.NoError(t, s.Migrate())
	t.Cleanup(func() { s.Close() })

	return s
}

func TestSQLiteActionRoundTrip(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	action := &models.Action{
		Key:          "10-7",
		ChainID:      10,
		UID:          7,
		Owner:        "0xaaaa000000000000000000000000000000000001",
		StartTime:    10,
		EndTime:      20,
		Title:        "Plant trees",
		Instructions: "Dig and plant",
		Capitals:     []models.Capital{models.CapitalLiving, models.CapitalUnknown},
		Media:        []string{"ipfs://a"},
		CreatedAt:    1000,
	}

	require.NoError(t, s.PutAction(ctx, action))

	got, err := s.GetAction(ctx, "10-7")
	require.NoError(t, err)
	assert.Equal(t, action, got)

	missing, err := s.GetAction(ctx, "10-999")
	require.NoError(t, err)
	assert.Nil(t, missing, "absent key returns nil, nil")
}

func TestSQLiteUpsertReplaces(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	action := &models.Action{Key: "10-7", ChainID: 10, UID: 7, Title: "v1"}
	require.NoError(t, s.PutAction(ctx, action))

	action.Title = "v2"
	require.NoError(t, s.PutAction(ctx, action))

	got, err := s.GetAction(ctx, "10-7")
	require.NoError(t, err)
	assert.Equal(t, "v2", got.Title)

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Actions, "upsert must not create a second row")
}

func TestSQLiteListFiltersByChain(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	require.NoError(t, s.PutGarden(ctx, &models.Garden{Key: "10-0xaa", ChainID: 10, Address: "0xaa"}))
	require.NoError(t, s.PutGarden(ctx, &models.Garden{Key: "42161-0xaa", ChainID: 42161, Address: "0xaa"}))

	all, err := s.ListGardens(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	optimism, err := s.ListGardens(ctx, 10)
	require.NoError(t, err)
	require.Len(t, optimism, 1)
	assert.Equal(t, "10-0xaa", optimism[0].Key)
}

func TestSQLitePutMembership(t *testing.T) {
	s := newTestSQLiteStore(t)
	ctx := context.Background()

	garden := &models.Garden{
		Key:       "10-0xaa",
		ChainID:   10,
		Address:   "0xaa",
		Gardeners: []string{"0xb1", "0xb2"},
		Operators: []string{"0xb1"},
	}
	gardeners := []*models.Gardener{
		{Key: "10-0xb1", ChainID: 10, Address: "0xb1", FirstGarden: "0xaa", Gardens: []string{"0xaa"}},
		{Key: "10-0xb2", ChainID: 10, Address: "0xb2", FirstGarden: "0xaa", Gardens: []string{"0xaa"}},
	}

	require.NoError(t, s.PutMembership(ctx, garden, gardeners))

	gotGarden, err := s.GetGarden(ctx, "10-0xaa")
	require.NoError(t, err)
	assert.Equal(t, garden, gotGarden)

	for _, gardener := range gardeners {
		got, err := s.GetGardener(ctx, gardener.Key)
		require.NoError(t, err)
		assert.Equal(t, gardener, got)
	}

	stats, err := s.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Gardens)
	assert.Equal(t, int64(2), stats.Gardeners)
}

func TestSQLitePing(t *testing.T) {
	s := newTestSQLiteStore(t)
	require.NoError(t, s.Ping())
}
