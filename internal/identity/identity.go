// Package identity derives stable entity keys from event context.
//
// Every entity kind is keyed "{chainId}-{naturalKey}" so that identical
// natural keys on two chains never collide. Keys are derived only from the
// event's own fields; they never depend on processing order or other
// entities' state.
package identity

import (
	"fmt"

	"github.com/greenpill-dev-guild/garden-indexer/pkg/utils"
)

// ActionKey derives the key for an Action from its chain and numeric UID.
func ActionKey(chainID, uid uint64) string {
	return fmt.Sprintf("%d-%d", chainID, uid)
}

// GardenKey derives the key for a Garden from its chain and account address.
// Garden account addresses are token-bound and unique per deployment, but
// keys are chain-scoped anyway to match Action and Gardener.
func GardenKey(chainID uint64, address string) string {
	return fmt.Sprintf("%d-%s", chainID, utils.NormalizeAddress(address))
}

// GardenerKey derives the key for a Gardener from its chain and address.
func GardenerKey(chainID uint64, address string) string {
	return fmt.Sprintf("%d-%s", chainID, utils.NormalizeAddress(address))
}
