// Package materialize folds decoded domain events into the current entity
// set. Each event type has a pure transition function; the engine wraps it in
// an atomic read-modify-write against the entity store, and relationship
// events go through the RelationshipManager so paired updates commit as one
// unit.
package materialize

import (
	"context"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/greenpill-dev-guild/garden-indexer/internal/identity"
	"github.com/greenpill-dev-guild/garden-indexer/internal/metrics"
	"github.com/greenpill-dev-guild/garden-indexer/internal/models"
	"github.com/greenpill-dev-guild/garden-indexer/internal/store"
	"github.com/greenpill-dev-guild/garden-indexer/pkg/utils"
)

// Engine is the entity materialization engine
type Engine struct {
	store     store.EntityStore
	relations *RelationshipManager
	locks     *keyLocks
	logger    *logrus.Logger
	metrics   *metrics.Manager
}

// NewEngine creates a materialization engine. metricsManager may be nil.
func NewEngine(entityStore store.EntityStore, metricsManager *metrics.Manager) *Engine {
	return &Engine{
		store:     entityStore,
		relations: NewRelationshipManager(entityStore, metricsManager),
		locks:     newKeyLocks(),
		logger:    utils.GetLogger(),
		metrics:   metricsManager,
	}
}

// Apply folds one decoded event into entity state. Events for the same chain
// must arrive in chain order; events for distinct chains may be applied
// concurrently. Re-applying an already-applied event is safe.
func (e *Engine) Apply(ctx context.Context, ev models.DomainEvent) error {
	start := time.Now()

	err := e.apply(ctx, ev)

	if e.metrics != nil {
		status := "success"
		if err != nil {
			status = "error"
		}
		e.metrics.RecordEventProcessed(ev.Meta().ChainID, ev.Name(), status, time.Since(start))
	}

	if err != nil {
		return err
	}

	e.logger.WithFields(logrus.Fields{
		"chain_id": ev.Meta().ChainID,
		"event":    ev.Name(),
		"block":    ev.Meta().BlockNumber,
	}).Debug("Event applied")

	return nil
}

func (e *Engine) apply(ctx context.Context, ev models.DomainEvent) error {
	switch ev := ev.(type) {
	// Action creation and single-field updates
	case *models.ActionRegistered:
		return e.putAction(ctx, identity.ActionKey(ev.ChainID, ev.UID), func(*models.Action) *models.Action {
			return applyActionRegistered(ev)
		})
	case *models.ActionStartTimeUpdated:
		return e.putAction(ctx, identity.ActionKey(ev.ChainID, ev.UID), func(current *models.Action) *models.Action {
			return applyActionStartTime(current, ev)
		})
	case *models.ActionEndTimeUpdated:
		return e.putAction(ctx, identity.ActionKey(ev.ChainID, ev.UID), func(current *models.Action) *models.Action {
			return applyActionEndTime(current, ev)
		})
	case *models.ActionTitleUpdated:
		return e.putAction(ctx, identity.ActionKey(ev.ChainID, ev.UID), func(current *models.Action) *models.Action {
			return applyActionTitle(current, ev)
		})
	case *models.ActionInstructionsUpdated:
		return e.putAction(ctx, identity.ActionKey(ev.ChainID, ev.UID), func(current *models.Action) *models.Action {
			return applyActionInstructions(current, ev)
		})
	case *models.ActionMediaUpdated:
		return e.putAction(ctx, identity.ActionKey(ev.ChainID, ev.UID), func(current *models.Action) *models.Action {
			return applyActionMedia(current, ev)
		})

	// Garden attribute updates (create-if-absent)
	case *models.NameUpdated:
		return e.putGarden(ctx, identity.GardenKey(ev.ChainID, ev.Garden), func(current *models.Garden) *models.Garden {
			return applyGardenName(current, ev)
		})
	case *models.DescriptionUpdated:
		return e.putGarden(ctx, identity.GardenKey(ev.ChainID, ev.Garden), func(current *models.Garden) *models.Garden {
			return applyGardenDescription(current, ev)
		})
	case *models.LocationUpdated:
		return e.putGarden(ctx, identity.GardenKey(ev.ChainID, ev.Garden), func(current *models.Garden) *models.Garden {
			return applyGardenLocation(current, ev)
		})
	case *models.BannerImageUpdated:
		return e.putGarden(ctx, identity.GardenKey(ev.ChainID, ev.Garden), func(current *models.Garden) *models.Garden {
			return applyGardenBannerImage(current, ev)
		})

	// Garden updates that require an existing record (no-op on absent)
	case *models.OpenJoiningUpdated:
		return e.putGarden(ctx, identity.GardenKey(ev.ChainID, ev.Garden), func(current *models.Garden) *models.Garden {
			return applyOpenJoining(current, ev)
		})
	case *models.GardenOperatorAdded:
		return e.putGarden(ctx, identity.GardenKey(ev.ChainID, ev.Garden), func(current *models.Garden) *models.Garden {
			return applyOperatorAdded(current, ev)
		})
	case *models.GardenOperatorRemoved:
		return e.putGarden(ctx, identity.GardenKey(ev.ChainID, ev.Garden), func(current *models.Garden) *models.Garden {
			return applyOperatorRemoved(current, ev)
		})
	case *models.ProjectLinked:
		return e.putGarden(ctx, identity.GardenKey(ev.ChainID, ev.Garden), func(current *models.Garden) *models.Garden {
			return applyProjectLinked(current, ev)
		})

	// Paired garden/gardener updates
	case *models.GardenMinted:
		keys := []string{identity.GardenKey(ev.ChainID, ev.Garden)}
		for _, addr := range ev.Gardeners {
			keys = append(keys, identity.GardenerKey(ev.ChainID, addr))
		}
		for _, addr := range ev.Operators {
			keys = append(keys, identity.GardenerKey(ev.ChainID, addr))
		}
		release := e.locks.acquire(keys...)
		defer release()
		return e.relations.ApplyMint(ctx, ev)

	case *models.GardenerAdded:
		release := e.locks.acquire(
			identity.GardenKey(ev.ChainID, ev.Garden),
			identity.GardenerKey(ev.ChainID, ev.Gardener),
		)
		defer release()
		return e.relations.ApplyGardenerAdded(ctx, ev)

	case *models.GardenerRemoved:
		release := e.locks.acquire(
			identity.GardenKey(ev.ChainID, ev.Garden),
			identity.GardenerKey(ev.ChainID, ev.Gardener),
		)
		defer release()
		return e.relations.ApplyGardenerRemoved(ctx, ev)

	default:
		return utils.NewAppError(utils.ErrCodeProcessing,
			fmt.Sprintf("No transition for event %s", ev.Name()), "")
	}
}

// putAction runs one read-modify-write cycle for an Action key. A nil next
// state means the event was a no-op for an absent entity.
func (e *Engine) putAction(ctx context.Context, key string, transition func(*models.Action) *models.Action) error {
	release := e.locks.acquire(key)
	defer release()

	current, err := e.store.GetAction(ctx, key)
	if err != nil {
		return err
	}
	next := transition(current)
	if next == nil {
		return nil
	}
	return e.store.PutAction(ctx, next)
}

// putGarden runs one read-modify-write cycle for a Garden key.
func (e *Engine) putGarden(ctx context.Context, key string, transition func(*models.Garden) *models.Garden) error {
	release := e.locks.acquire(key)
	defer release()

	current, err := e.store.GetGarden(ctx, key)
	if err != nil {
		return err
	}
	next := transition(current)
	if next == nil {
		return nil
	}
	return e.store.PutGarden(ctx, next)
}
