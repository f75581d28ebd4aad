package pipeline

import (
	"context"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenpill-dev-guild/garden-indexer/internal/decoder"
	"github.com/greenpill-dev-guild/garden-indexer/internal/materialize"
	"github.com/greenpill-dev-guild/garden-indexer/internal/models"
	"github.com/greenpill-dev-guild/garden-indexer/internal/store"
)

const (
	testGardenAddr = "0xaaaa000000000000000000000000000000000001"
	testAliceAddr  = "0xbbbb000000000000000000000000000000000001"
)

func pack(t *testing.T, eventName string, values ...interface{}) []byte {
	t.Helper()

	schema, ok := decoder.Schema(eventName)
	require.True(t, ok, "no schema for %s", eventName)
	data, err := schema.Pack(values...)
	require.NoError(t, err)
	return data
}

func rawEvent(chainID, blockNumber uint64, eventName string, data []byte) models.RawEvent {
	return models.RawEvent{
		ChainID:     chainID,
		Contract:    testGardenAddr,
		EventName:   eventName,
		BlockNumber: blockNumber,
		BlockTime:   blockNumber * 10,
		LogIndex:    0,
		Data:        data,
	}
}

func mintEvent(t *testing.T, chainID, blockNumber uint64) models.RawEvent {
	data := pack(t, models.EventGardenMinted,
		common.HexToAddress(testGardenAddr),
		common.HexToAddress("0xcccc000000000000000000000000000000000001"),
		big.NewInt(1),
		"Oak Commons",
		"A shared garden",
		"Lisbon",
		"ipfs://banner",
		true,
		[]common.Address{common.HexToAddress(testAliceAddr)},
		[]common.Address{},
	)
	return rawEvent(chainID, blockNumber, models.EventGardenMinted, data)
}

func newTestCoordinator(t *testing.T) (*Coordinator, *store.MemoryStore) {
	t.Helper()

	entityStore := store.NewMemoryStore()
	engine := materialize.NewEngine(entityStore, nil)
	return NewCoordinator(decoder.NewEventDecoder(), engine, nil), entityStore
}

func TestCoordinatorProcessesMultipleChains(t *testing.T) {
	coordinator, entityStore := newTestCoordinator(t)

	optimism := NewChannelSource(10, 16)
	arbitrum := NewChannelSource(42161, 16)
	require.NoError(t, coordinator.AddSource(optimism))
	require.NoError(t, coordinator.AddSource(arbitrum))

	require.NoError(t, coordinator.Start(context.Background()))

	require.NoError(t, optimism.Publish(mintEvent(t, 10, 100)))
	require.NoError(t, arbitrum.Publish(mintEvent(t, 42161, 200)))

	optimism.Close()
	arbitrum.Close()
	coordinator.Wait()

	ctx := context.Background()
	for _, chainID := range []uint64{10, 42161} {
		gardens, err := entityStore.ListGardens(ctx, chainID)
		require.NoError(t, err)
		require.Len(t, gardens, 1, "chain %d", chainID)
		assert.Equal(t, "Oak Commons", gardens[0].Name)
		assert.Equal(t, []string{testAliceAddr}, gardens[0].Gardeners)
	}

	gardeners, err := entityStore.ListGardeners(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, gardeners, 2, "one gardener record per chain")
}

func TestCoordinatorSkipsMalformedEvents(t *testing.T) {
	coordinator, entityStore := newTestCoordinator(t)

	src := NewChannelSource(10, 16)
	require.NoError(t, coordinator.AddSource(src))
	require.NoError(t, coordinator.Start(context.Background()))

	require.NoError(t, src.Publish(rawEvent(10, 50, models.EventGardenMinted, []byte{0x01, 0x02})))
	require.NoError(t, src.Publish(rawEvent(10, 51, "SomethingUnknown", nil)))
	require.NoError(t, src.Publish(mintEvent(t, 10, 100)))

	src.Close()
	coordinator.Wait()

	garden, err := entityStore.GetGarden(context.Background(), "10-"+testGardenAddr)
	require.NoError(t, err)
	require.NotNil(t, garden, "valid event after malformed ones must still apply")
	assert.Equal(t, "Oak Commons", garden.Name)
}

func TestCoordinatorPreservesOrderWithinChain(t *testing.T) {
	coordinator, entityStore := newTestCoordinator(t)

	src := NewChannelSource(10, 16)
	require.NoError(t, coordinator.AddSource(src))
	require.NoError(t, coordinator.Start(context.Background()))

	require.NoError(t, src.Publish(mintEvent(t, 10, 100)))
	for i, name := range []string{"First", "Second", "Final"} {
		data := pack(t, models.EventNameUpdated, common.HexToAddress(testGardenAddr), name)
		require.NoError(t, src.Publish(rawEvent(10, 101+uint64(i), models.EventNameUpdated, data)))
	}

	src.Close()
	coordinator.Wait()

	garden, err := entityStore.GetGarden(context.Background(), "10-"+testGardenAddr)
	require.NoError(t, err)
	require.NotNil(t, garden)
	assert.Equal(t, "Final", garden.Name)
}

func TestSubmitRoutesByChain(t *testing.T) {
	coordinator, entityStore := newTestCoordinator(t)

	src := NewChannelSource(10, 16)
	require.NoError(t, coordinator.AddSource(src))
	require.NoError(t, coordinator.Start(context.Background()))

	ev := mintEvent(t, 10, 100)
	require.NoError(t, coordinator.Submit(&ev))

	unknown := mintEvent(t, 999, 100)
	assert.Error(t, coordinator.Submit(&unknown), "no source registered for chain 999")

	src.Close()
	coordinator.Wait()

	garden, err := entityStore.GetGarden(context.Background(), "10-"+testGardenAddr)
	require.NoError(t, err)
	assert.NotNil(t, garden)
}

func TestAddSourceRejectsDuplicates(t *testing.T) {
	coordinator, _ := newTestCoordinator(t)

	require.NoError(t, coordinator.AddSource(NewChannelSource(10, 1)))
	assert.Error(t, coordinator.AddSource(NewChannelSource(10, 1)))
}

func TestStopCancelsRunningLoops(t *testing.T) {
	coordinator, _ := newTestCoordinator(t)

	src := NewChannelSource(10, 1)
	require.NoError(t, coordinator.AddSource(src))
	require.NoError(t, coordinator.Start(context.Background()))

	done := make(chan struct{})
	go func() {
		coordinator.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}
}
