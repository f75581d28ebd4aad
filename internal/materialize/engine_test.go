package materialize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenpill-dev-guild/garden-indexer/internal/identity"
	"github.com/greenpill-dev-guild/garden-indexer/internal/models"
	"github.com/greenpill-dev-guild/garden-indexer/internal/store"
)

const (
	gardenAddr = "0xaaaa000000000000000000000000000000000001"
	aliceAddr  = "0xbbbb000000000000000000000000000000000002"
	bobAddr    = "0xcccc000000000000000000000000000000000003"
	carolAddr  = "0xdddd000000000000000000000000000000000004"
	tokenAddr  = "0xeeee000000000000000000000000000000000005"
)

func meta(chainID, blockNumber, blockTime uint64) models.EventMeta {
	return models.EventMeta{
		ChainID:     chainID,
		Contract:    tokenAddr,
		BlockNumber: blockNumber,
		BlockTime:   blockTime,
		LogIndex:    0,
	}
}

func newTestEngine() (*Engine, *store.MemoryStore) {
	memStore := store.NewMemoryStore()
	return NewEngine(memStore, nil), memStore
}

func registerAction(chainID, uid uint64) *models.ActionRegistered {
	return &models.ActionRegistered{
		EventMeta:    meta(chainID, 100, 1000),
		UID:          uid,
		Owner:        aliceAddr,
		StartTime:    10,
		EndTime:      20,
		Title:        "Plant trees",
		Instructions: "Dig and plant",
		Capitals:     []models.Capital{models.CapitalLiving},
		Media:        []string{"ipfs://a"},
	}
}

func mintGarden(chainID uint64, gardeners, operators []string) *models.GardenMinted {
	return &models.GardenMinted{
		EventMeta:    meta(chainID, 50, 500),
		Garden:       gardenAddr,
		TokenAddress: tokenAddr,
		TokenID:      "1",
		GardenName:   "Oak Commons",
		Description:  "A community garden",
		Location:     "Lisbon",
		BannerImage:  "ipfs://banner",
		OpenJoining:  true,
		Gardeners:    gardeners,
		Operators:    operators,
	}
}

func TestActionCreationIdempotent(t *testing.T) {
	engine, memStore := newTestEngine()
	ctx := context.Background()

	ev := registerAction(10, 7)
	require.NoError(t, engine.Apply(ctx, ev))

	first, err := memStore.GetAction(ctx, identity.ActionKey(10, 7))
	require.NoError(t, err)
	require.NotNil(t, first)

	require.NoError(t, engine.Apply(ctx, ev))

	second, err := memStore.GetAction(ctx, identity.ActionKey(10, 7))
	require.NoError(t, err)
	assert.Equal(t, first, second, "re-applying an identical creation event must not change state")
}

func TestActionCrossChainDistinct(t *testing.T) {
	engine, memStore := newTestEngine()
	ctx := context.Background()

	require.NoError(t, engine.Apply(ctx, registerAction(10, 7)))

	other := registerAction(42161, 7)
	other.Title = "Water plants"
	require.NoError(t, engine.Apply(ctx, other))

	onOptimism, err := memStore.GetAction(ctx, identity.ActionKey(10, 7))
	require.NoError(t, err)
	onArbitrum, err := memStore.GetAction(ctx, identity.ActionKey(42161, 7))
	require.NoError(t, err)

	require.NotNil(t, onOptimism)
	require.NotNil(t, onArbitrum)
	assert.Equal(t, "Plant trees", onOptimism.Title)
	assert.Equal(t, "Water plants", onArbitrum.Title)
}

func TestActionSingleFieldUpdates(t *testing.T) {
	engine, memStore := newTestEngine()
	ctx := context.Background()

	require.NoError(t, engine.Apply(ctx, registerAction(10, 7)))

	require.NoError(t, engine.Apply(ctx, &models.ActionTitleUpdated{
		EventMeta: meta(10, 101, 1010), UID: 7, Title: "Plant more trees",
	}))
	require.NoError(t, engine.Apply(ctx, &models.ActionEndTimeUpdated{
		EventMeta: meta(10, 102, 1020), UID: 7, EndTime: 99,
	}))

	action, err := memStore.GetAction(ctx, identity.ActionKey(10, 7))
	require.NoError(t, err)
	assert.Equal(t, "Plant more trees", action.Title)
	assert.Equal(t, uint64(99), action.EndTime)
	assert.Equal(t, "Dig and plant", action.Instructions, "other fields untouched")
	assert.Equal(t, uint64(10), action.StartTime)
	assert.Equal(t, uint64(1000), action.CreatedAt)
}

func TestActionUpdateOnAbsentIsNoOp(t *testing.T) {
	engine, memStore := newTestEngine()
	ctx := context.Background()

	require.NoError(t, engine.Apply(ctx, &models.ActionTitleUpdated{
		EventMeta: meta(10, 101, 1010), UID: 99, Title: "Ghost",
	}))

	action, err := memStore.GetAction(ctx, identity.ActionKey(10, 99))
	require.NoError(t, err)
	assert.Nil(t, action, "update events never synthesize actions")
}

func TestGardenMintOperatorsSubsetOfGardeners(t *testing.T) {
	engine, memStore := newTestEngine()
	ctx := context.Background()

	// bob is only listed as operator; he must still become a gardener
	require.NoError(t, engine.Apply(ctx, mintGarden(10, []string{aliceAddr}, []string{bobAddr})))

	garden, err := memStore.GetGarden(ctx, identity.GardenKey(10, gardenAddr))
	require.NoError(t, err)
	require.NotNil(t, garden)

	for _, op := range garden.Operators {
		assert.True(t, garden.HasGardener(op), "operator %s must also be a gardener", op)
	}
	assert.ElementsMatch(t, []string{aliceAddr, bobAddr}, garden.Gardeners)
	assert.Equal(t, []string{bobAddr}, garden.Operators)
	assert.Equal(t, uint64(500), garden.CreatedAt)
}

func TestGardenMintIdempotent(t *testing.T) {
	engine, memStore := newTestEngine()
	ctx := context.Background()

	ev := mintGarden(10, []string{aliceAddr}, nil)
	require.NoError(t, engine.Apply(ctx, ev))

	gardenBefore, err := memStore.GetGarden(ctx, identity.GardenKey(10, gardenAddr))
	require.NoError(t, err)
	aliceBefore, err := memStore.GetGardener(ctx, identity.GardenerKey(10, aliceAddr))
	require.NoError(t, err)

	require.NoError(t, engine.Apply(ctx, ev))

	gardenAfter, err := memStore.GetGarden(ctx, identity.GardenKey(10, gardenAddr))
	require.NoError(t, err)
	aliceAfter, err := memStore.GetGardener(ctx, identity.GardenerKey(10, aliceAddr))
	require.NoError(t, err)

	assert.Equal(t, gardenBefore, gardenAfter)
	assert.Equal(t, aliceBefore, aliceAfter, "replayed mint must not duplicate garden list entries")
}

func TestGardenAttributeCreateIfAbsent(t *testing.T) {
	engine, memStore := newTestEngine()
	ctx := context.Background()

	require.NoError(t, engine.Apply(ctx, &models.DescriptionUpdated{
		EventMeta: meta(10, 40, 400), Garden: gardenAddr, Description: "A garden",
	}))

	garden, err := memStore.GetGarden(ctx, identity.GardenKey(10, gardenAddr))
	require.NoError(t, err)
	require.NotNil(t, garden, "attribute update before mint must synthesize the garden")
	assert.Equal(t, "A garden", garden.Description)
	assert.Equal(t, "", garden.Name)
	assert.Empty(t, garden.Gardeners)
	assert.Empty(t, garden.Operators)
	assert.Equal(t, gardenAddr, garden.Address)
	assert.Equal(t, uint64(10), garden.ChainID)
}

func TestMintOverwritesSynthesizedRecord(t *testing.T) {
	engine, memStore := newTestEngine()
	ctx := context.Background()

	require.NoError(t, engine.Apply(ctx, &models.DescriptionUpdated{
		EventMeta: meta(10, 40, 400), Garden: gardenAddr, Description: "A garden",
	}))
	require.NoError(t, engine.Apply(ctx, mintGarden(10, []string{aliceAddr}, nil)))

	garden, err := memStore.GetGarden(ctx, identity.GardenKey(10, gardenAddr))
	require.NoError(t, err)
	assert.Equal(t, "Oak Commons", garden.Name)
	assert.Equal(t, "A community garden", garden.Description,
		"creation rebuilds the full record from its payload")
	assert.Equal(t, []string{aliceAddr}, garden.Gardeners)
}

func TestOpenJoiningNoOpOnAbsent(t *testing.T) {
	engine, memStore := newTestEngine()
	ctx := context.Background()

	require.NoError(t, engine.Apply(ctx, &models.OpenJoiningUpdated{
		EventMeta: meta(10, 40, 400), Garden: gardenAddr, OpenJoining: true,
	}))

	garden, err := memStore.GetGarden(ctx, identity.GardenKey(10, gardenAddr))
	require.NoError(t, err)
	assert.Nil(t, garden)
}

func TestProjectLinkNoOpOnAbsent(t *testing.T) {
	engine, memStore := newTestEngine()
	ctx := context.Background()

	require.NoError(t, engine.Apply(ctx, &models.ProjectLinked{
		EventMeta: meta(10, 40, 400), Garden: gardenAddr, ProjectUID: "gap-1",
	}))

	garden, err := memStore.GetGarden(ctx, identity.GardenKey(10, gardenAddr))
	require.NoError(t, err)
	assert.Nil(t, garden, "linkage events never synthesize gardens")
}

func TestProjectLinkOnExistingGarden(t *testing.T) {
	engine, memStore := newTestEngine()
	ctx := context.Background()

	require.NoError(t, engine.Apply(ctx, mintGarden(10, nil, nil)))
	require.NoError(t, engine.Apply(ctx, &models.ProjectLinked{
		EventMeta: meta(10, 60, 600), Garden: gardenAddr, ProjectUID: "gap-1",
	}))

	garden, err := memStore.GetGarden(ctx, identity.GardenKey(10, gardenAddr))
	require.NoError(t, err)
	assert.Equal(t, "gap-1", garden.GAPProjectUID)
}

func TestOperatorListUpdates(t *testing.T) {
	engine, memStore := newTestEngine()
	ctx := context.Background()

	require.NoError(t, engine.Apply(ctx, mintGarden(10, []string{aliceAddr}, []string{aliceAddr})))

	require.NoError(t, engine.Apply(ctx, &models.GardenOperatorAdded{
		EventMeta: meta(10, 60, 600), Garden: gardenAddr, Operator: bobAddr,
	}))
	// duplicate add is a no-op
	require.NoError(t, engine.Apply(ctx, &models.GardenOperatorAdded{
		EventMeta: meta(10, 61, 610), Garden: gardenAddr, Operator: bobAddr,
	}))

	garden, err := memStore.GetGarden(ctx, identity.GardenKey(10, gardenAddr))
	require.NoError(t, err)
	assert.Equal(t, []string{aliceAddr, bobAddr}, garden.Operators)

	require.NoError(t, engine.Apply(ctx, &models.GardenOperatorRemoved{
		EventMeta: meta(10, 62, 620), Garden: gardenAddr, Operator: aliceAddr,
	}))
	// removing an absent operator is a no-op, not an error
	require.NoError(t, engine.Apply(ctx, &models.GardenOperatorRemoved{
		EventMeta: meta(10, 63, 630), Garden: gardenAddr, Operator: carolAddr,
	}))

	garden, err = memStore.GetGarden(ctx, identity.GardenKey(10, gardenAddr))
	require.NoError(t, err)
	assert.Equal(t, []string{bobAddr}, garden.Operators)
}

func TestGardenCrossChainDistinct(t *testing.T) {
	engine, memStore := newTestEngine()
	ctx := context.Background()

	require.NoError(t, engine.Apply(ctx, mintGarden(10, nil, nil)))

	otherChain := mintGarden(42161, nil, nil)
	otherChain.GardenName = "Arbitrum Oak"
	require.NoError(t, engine.Apply(ctx, otherChain))

	first, err := memStore.GetGarden(ctx, identity.GardenKey(10, gardenAddr))
	require.NoError(t, err)
	second, err := memStore.GetGarden(ctx, identity.GardenKey(42161, gardenAddr))
	require.NoError(t, err)

	require.NotNil(t, first)
	require.NotNil(t, second)
	assert.Equal(t, "Oak Commons", first.Name)
	assert.Equal(t, "Arbitrum Oak", second.Name)
}
