package decoder

import (
	"math/big"
	"strings"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/greenpill-dev-guild/garden-indexer/internal/models"
	"github.com/greenpill-dev-guild/garden-indexer/pkg/utils"
)

var (
	testOwner    = common.HexToAddress("0xAaAa000000000000000000000000000000000001")
	testGarden   = common.HexToAddress("0xBbBb000000000000000000000000000000000002")
	testToken    = common.HexToAddress("0xCcCc000000000000000000000000000000000003")
	testGardener = common.HexToAddress("0xDdDd000000000000000000000000000000000004")
)

func pack(t *testing.T, eventName string, values ...interface{}) []byte {
	t.Helper()
	schema, ok := Schema(eventName)
	require.True(t, ok, "schema for %s", eventName)
	data, err := schema.Pack(values...)
	require.NoError(t, err)
	return data
}

func rawEvent(eventName string, data []byte) *models.RawEvent {
	return &models.RawEvent{
		ChainID:     10,
		Contract:    testToken.Hex(),
		EventName:   eventName,
		BlockNumber: 1200,
		BlockTime:   1700000000,
		LogIndex:    3,
		Data:        data,
	}
}

func TestDecodeActionRegistered(t *testing.T) {
	data := pack(t, models.EventActionRegistered,
		big.NewInt(7), testOwner, big.NewInt(100), big.NewInt(200),
		"Plant trees", "Dig, plant, water",
		[]uint8{0, 3}, []string{"ipfs://before", "ipfs://after"})

	dec := NewEventDecoder()
	ev, err := dec.Decode(rawEvent(models.EventActionRegistered, data))
	require.NoError(t, err)

	registered, ok := ev.(*models.ActionRegistered)
	require.True(t, ok)
	assert.Equal(t, uint64(7), registered.UID)
	assert.Equal(t, strings.ToLower(testOwner.Hex()), registered.Owner)
	assert.Equal(t, uint64(100), registered.StartTime)
	assert.Equal(t, uint64(200), registered.EndTime)
	assert.Equal(t, "Plant trees", registered.Title)
	assert.Equal(t, "Dig, plant, water", registered.Instructions)
	assert.Equal(t, []models.Capital{models.CapitalSocial, models.CapitalLiving}, registered.Capitals)
	assert.Equal(t, []string{"ipfs://before", "ipfs://after"}, registered.Media)

	meta := registered.Meta()
	assert.Equal(t, uint64(10), meta.ChainID)
	assert.Equal(t, uint64(1700000000), meta.BlockTime)
	assert.Equal(t, uint64(1200), meta.BlockNumber)
}

func TestDecodeUnknownCapitalIsSentinel(t *testing.T) {
	data := pack(t, models.EventActionRegistered,
		big.NewInt(8), testOwner, big.NewInt(0), big.NewInt(0),
		"Compost", "Turn the pile",
		[]uint8{9}, []string{})

	dec := NewEventDecoder()
	ev, err := dec.Decode(rawEvent(models.EventActionRegistered, data))
	require.NoError(t, err, "out-of-range capital must not reject the event")

	registered := ev.(*models.ActionRegistered)
	assert.Equal(t, []models.Capital{models.CapitalUnknown}, registered.Capitals)
	assert.Equal(t, "Compost", registered.Title, "rest of the event decodes normally")
}

func TestDecodeGardenMinted(t *testing.T) {
	data := pack(t, models.EventGardenMinted,
		testGarden, testToken, big.NewInt(1),
		"Oak Commons", "A community garden", "Lisbon", "ipfs://banner",
		true,
		[]common.Address{testGardener}, []common.Address{testOwner})

	dec := NewEventDecoder()
	ev, err := dec.Decode(rawEvent(models.EventGardenMinted, data))
	require.NoError(t, err)

	minted := ev.(*models.GardenMinted)
	assert.Equal(t, strings.ToLower(testGarden.Hex()), minted.Garden)
	assert.Equal(t, strings.ToLower(testToken.Hex()), minted.TokenAddress)
	assert.Equal(t, "1", minted.TokenID)
	assert.Equal(t, "Oak Commons", minted.GardenName)
	assert.Equal(t, "A community garden", minted.Description)
	assert.True(t, minted.OpenJoining)
	assert.Equal(t, []string{strings.ToLower(testGardener.Hex())}, minted.Gardeners)
	assert.Equal(t, []string{strings.ToLower(testOwner.Hex())}, minted.Operators)
}

func TestDecodeMembershipEvents(t *testing.T) {
	dec := NewEventDecoder()

	data := pack(t, models.EventGardenerAdded, testGarden, testGardener)
	ev, err := dec.Decode(rawEvent(models.EventGardenerAdded, data))
	require.NoError(t, err)
	added := ev.(*models.GardenerAdded)
	assert.Equal(t, strings.ToLower(testGarden.Hex()), added.Garden)
	assert.Equal(t, strings.ToLower(testGardener.Hex()), added.Gardener)

	data = pack(t, models.EventGardenerRemoved, testGarden, testGardener)
	ev, err = dec.Decode(rawEvent(models.EventGardenerRemoved, data))
	require.NoError(t, err)
	removed := ev.(*models.GardenerRemoved)
	assert.Equal(t, strings.ToLower(testGardener.Hex()), removed.Gardener)
}

func TestDecodeGardenAttributeEvents(t *testing.T) {
	dec := NewEventDecoder()

	data := pack(t, models.EventDescriptionUpdated, testGarden, "A garden")
	ev, err := dec.Decode(rawEvent(models.EventDescriptionUpdated, data))
	require.NoError(t, err)
	assert.Equal(t, "A garden", ev.(*models.DescriptionUpdated).Description)

	data = pack(t, models.EventOpenJoiningUpdated, testGarden, false)
	ev, err = dec.Decode(rawEvent(models.EventOpenJoiningUpdated, data))
	require.NoError(t, err)
	assert.False(t, ev.(*models.OpenJoiningUpdated).OpenJoining)

	data = pack(t, models.EventProjectLinked, testGarden, "gap-uid-123")
	ev, err = dec.Decode(rawEvent(models.EventProjectLinked, data))
	require.NoError(t, err)
	assert.Equal(t, "gap-uid-123", ev.(*models.ProjectLinked).ProjectUID)
}

func TestDecodeMalformedPayloadFails(t *testing.T) {
	dec := NewEventDecoder()

	_, err := dec.Decode(rawEvent(models.EventActionRegistered, []byte{0x01, 0x02}))
	require.Error(t, err)

	appErr, ok := err.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrCodeDecode, appErr.Code)
}

func TestDecodeUnknownEventNameFails(t *testing.T) {
	dec := NewEventDecoder()

	_, err := dec.Decode(rawEvent("TotallyUnknown", nil))
	require.Error(t, err)

	appErr, ok := err.(*utils.AppError)
	require.True(t, ok)
	assert.Equal(t, utils.ErrCodeDecode, appErr.Code)
}

func TestEverySupportedEventHasSchema(t *testing.T) {
	names := []string{
		models.EventActionRegistered,
		models.EventActionStartTimeUpdated,
		models.EventActionEndTimeUpdated,
		models.EventActionTitleUpdated,
		models.EventActionInstructionsUpdated,
		models.EventActionMediaUpdated,
		models.EventGardenMinted,
		models.EventNameUpdated,
		models.EventDescriptionUpdated,
		models.EventLocationUpdated,
		models.EventBannerImageUpdated,
		models.EventOpenJoiningUpdated,
		models.EventGardenerAdded,
		models.EventGardenerRemoved,
		models.EventGardenOperatorAdded,
		models.EventGardenOperatorRemoved,
		models.EventProjectLinked,
	}
	assert.ElementsMatch(t, names, SupportedEvents())
}
