package decoder

import (
	"github.com/ethereum/go-ethereum/accounts/abi"

	"github.com/greenpill-dev-guild/garden-indexer/internal/models"
)

func mustType(t string) abi.Type {
	typ, err := abi.NewType(t, "", nil)
	if err != nil {
		panic(err)
	}
	return typ
}

var (
	typeUint256      = mustType("uint256")
	typeUint8Slice   = mustType("uint8[]")
	typeAddress      = mustType("address")
	typeAddressSlice = mustType("address[]")
	typeString       = mustType("string")
	typeStringSlice  = mustType("string[]")
	typeBool         = mustType("bool")
)

func args(list ...abi.Argument) abi.Arguments { return abi.Arguments(list) }

func arg(name string, typ abi.Type) abi.Argument {
	return abi.Argument{Name: name, Type: typ}
}

// schemas holds the fixed ABI parameter tuple for each supported event name.
// The decoder is total over these schemas: any well-formed payload decodes,
// and an event name outside this map is a decode failure.
var schemas = map[string]abi.Arguments{
	models.EventActionRegistered: args(
		arg("uid", typeUint256),
		arg("owner", typeAddress),
		arg("startTime", typeUint256),
		arg("endTime", typeUint256),
		arg("title", typeString),
		arg("instructions", typeString),
		arg("capitals", typeUint8Slice),
		arg("media", typeStringSlice),
	),
	models.EventActionStartTimeUpdated: args(
		arg("uid", typeUint256),
		arg("startTime", typeUint256),
	),
	models.EventActionEndTimeUpdated: args(
		arg("uid", typeUint256),
		arg("endTime", typeUint256),
	),
	models.EventActionTitleUpdated: args(
		arg("uid", typeUint256),
		arg("title", typeString),
	),
	models.EventActionInstructionsUpdated: args(
		arg("uid", typeUint256),
		arg("instructions", typeString),
	),
	models.EventActionMediaUpdated: args(
		arg("uid", typeUint256),
		arg("media", typeStringSlice),
	),
	models.EventGardenMinted: args(
		arg("garden", typeAddress),
		arg("tokenAddress", typeAddress),
		arg("tokenId", typeUint256),
		arg("name", typeString),
		arg("description", typeString),
		arg("location", typeString),
		arg("bannerImage", typeString),
		arg("openJoining", typeBool),
		arg("gardeners", typeAddressSlice),
		arg("operators", typeAddressSlice),
	),
	models.EventNameUpdated: args(
		arg("garden", typeAddress),
		arg("name", typeString),
	),
	models.EventDescriptionUpdated: args(
		arg("garden", typeAddress),
		arg("description", typeString),
	),
	models.EventLocationUpdated: args(
		arg("garden", typeAddress),
		arg("location", typeString),
	),
	models.EventBannerImageUpdated: args(
		arg("garden", typeAddress),
		arg("bannerImage", typeString),
	),
	models.EventOpenJoiningUpdated: args(
		arg("garden", typeAddress),
		arg("openJoining", typeBool),
	),
	models.EventGardenerAdded: args(
		arg("garden", typeAddress),
		arg("gardener", typeAddress),
	),
	models.EventGardenerRemoved: args(
		arg("garden", typeAddress),
		arg("gardener", typeAddress),
	),
	models.EventGardenOperatorAdded: args(
		arg("garden", typeAddress),
		arg("operator", typeAddress),
	),
	models.EventGardenOperatorRemoved: args(
		arg("garden", typeAddress),
		arg("operator", typeAddress),
	),
	models.EventProjectLinked: args(
		arg("garden", typeAddress),
		arg("projectUID", typeString),
	),
}

// Schema returns the ABI argument schema for an event name.
func Schema(eventName string) (abi.Arguments, bool) {
	schema, ok := schemas[eventName]
	return schema, ok
}

// SupportedEvents lists every event name the decoder understands.
func SupportedEvents() []string {
	names := make([]string, 0, len(schemas))
	for name := range schemas {
		names = append(names, name)
	}
	return names
}
