package materialize

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/greenpill-dev-guild/garden-indexer/internal/identity"
	"github.com/greenpill-dev-guild/garden-indexer/internal/metrics"
	"github.com/greenpill-dev-guild/garden-indexer/internal/models"
	"github.com/greenpill-dev-guild/garden-indexer/internal/store"
	"github.com/greenpill-dev-guild/garden-indexer/pkg/utils"
)

// RelationshipManager applies events that touch a Garden and one or more
// Gardeners together. Both sides are committed through the store as a single
// unit, so a reader between events always sees the garden's gardener list and
// each gardener's garden list as mutually consistent snapshots.
type RelationshipManager struct {
	store   store.EntityStore
	logger  *logrus.Logger
	metrics *metrics.Manager
}

// NewRelationshipManager creates a new relationship manager
func NewRelationshipManager(entityStore store.EntityStore, metricsManager *metrics.Manager) *RelationshipManager {
	return &RelationshipManager{
		store:   entityStore,
		logger:  utils.GetLogger(),
		metrics: metricsManager,
	}
}

// ApplyMint materializes a Garden from its mint event and creates or updates
// every listed member's Gardener record in the same commit. A Gardener seen
// for the first time gets firstGarden set to this garden.
func (rm *RelationshipManager) ApplyMint(ctx context.Context, ev *models.GardenMinted) error {
	garden := applyGardenMinted(ev)

	gardeners := make([]*models.Gardener, 0, len(garden.Gardeners))
	for _, addr := range garden.Gardeners {
		key := identity.GardenerKey(ev.ChainID, addr)
		gardener, err := rm.store.GetGardener(ctx, key)
		if err != nil {
			return err
		}
		if gardener == nil {
			gardener = newGardener(ev.ChainID, addr, garden.Address, ev.BlockTime)
		} else {
			gardener = gardener.Clone()
			gardener.Gardens = addAddress(gardener.Gardens, garden.Address)
		}
		gardeners = append(gardeners, gardener)
	}

	if err := rm.store.PutMembership(ctx, garden, gardeners); err != nil {
		return err
	}

	if rm.metrics != nil {
		rm.metrics.RecordMembershipUpdate(ev.ChainID, "mint")
	}

	rm.logger.WithFields(logrus.Fields{
		"garden":    garden.Key,
		"gardeners": len(gardeners),
		"operators": len(garden.Operators),
	}).Debug("Garden minted")

	return nil
}

// ApplyGardenerAdded joins a gardener to a garden on both sides. A missing
// Garden makes the whole event a no-op; a missing Gardener is created with
// this garden as its first.
func (rm *RelationshipManager) ApplyGardenerAdded(ctx context.Context, ev *models.GardenerAdded) error {
	gardenKey := identity.GardenKey(ev.ChainID, ev.Garden)
	garden, err := rm.store.GetGarden(ctx, gardenKey)
	if err != nil {
		return err
	}
	if garden == nil {
		rm.logger.WithFields(logrus.Fields{
			"garden":   gardenKey,
			"gardener": ev.Gardener,
		}).Debug("GardenerAdded for unknown garden, skipping")
		return nil
	}

	garden = garden.Clone()
	garden.Gardeners = addAddress(garden.Gardeners, ev.Gardener)

	gardenerKey := identity.GardenerKey(ev.ChainID, ev.Gardener)
	gardener, err := rm.store.GetGardener(ctx, gardenerKey)
	if err != nil {
		return err
	}
	if gardener == nil {
		gardener = newGardener(ev.ChainID, ev.Gardener, garden.Address, ev.BlockTime)
	} else {
		gardener = gardener.Clone()
		gardener.Gardens = addAddress(gardener.Gardens, garden.Address)
	}

	if err := rm.store.PutMembership(ctx, garden, []*models.Gardener{gardener}); err != nil {
		return err
	}

	if rm.metrics != nil {
		rm.metrics.RecordMembershipUpdate(ev.ChainID, "add")
	}

	return nil
}

// ApplyGardenerRemoved removes the pairing from whichever sides exist. Each
// side is filtered independently, so a list that was already inconsistent
// still ends up clean.
func (rm *RelationshipManager) ApplyGardenerRemoved(ctx context.Context, ev *models.GardenerRemoved) error {
	gardenKey := identity.GardenKey(ev.ChainID, ev.Garden)
	garden, err := rm.store.GetGarden(ctx, gardenKey)
	if err != nil {
		return err
	}

	gardenerKey := identity.GardenerKey(ev.ChainID, ev.Gardener)
	gardener, err := rm.store.GetGardener(ctx, gardenerKey)
	if err != nil {
		return err
	}

	gardenAddress := ev.Garden
	if garden != nil {
		gardenAddress = garden.Address
		garden = garden.Clone()
		garden.Gardeners = removeAddress(garden.Gardeners, ev.Gardener)
	}
	if gardener != nil {
		gardener = gardener.Clone()
		gardener.Gardens = removeAddress(gardener.Gardens, gardenAddress)
	}

	switch {
	case garden == nil && gardener == nil:
		return nil
	case garden == nil:
		if err := rm.store.PutGardener(ctx, gardener); err != nil {
			return err
		}
	case gardener == nil:
		if err := rm.store.PutGarden(ctx, garden); err != nil {
			return err
		}
	default:
		if err := rm.store.PutMembership(ctx, garden, []*models.Gardener{gardener}); err != nil {
			return err
		}
	}

	if rm.metrics != nil {
		rm.metrics.RecordMembershipUpdate(ev.ChainID, "remove")
	}

	return nil
}
