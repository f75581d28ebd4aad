// Package pipeline runs one ordered event-processing loop per chain. Chains
// are processed fully in parallel; within a chain, events are decoded and
// applied strictly in arrival order, because the engine's create-if-absent,
// write-once and membership rules are order-dependent.
package pipeline

import (
	"context"
	"fmt"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/greenpill-dev-guild/garden-indexer/internal/decoder"
	"github.com/greenpill-dev-guild/garden-indexer/internal/materialize"
	"github.com/greenpill-dev-guild/garden-indexer/internal/metrics"
	"github.com/greenpill-dev-guild/garden-indexer/internal/models"
	"github.com/greenpill-dev-guild/garden-indexer/pkg/utils"
)

// Coordinator owns the per-chain processing loops
type Coordinator struct {
	decoder *decoder.EventDecoder
	engine  *materialize.Engine
	metrics *metrics.Manager
	logger  *logrus.Logger

	mu       sync.Mutex
	running  bool
	sources  []Source
	channels map[uint64]*ChannelSource
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

// NewCoordinator creates a pipeline coordinator. metricsManager may be nil.
func NewCoordinator(eventDecoder *decoder.EventDecoder, engine *materialize.Engine, metricsManager *metrics.Manager) *Coordinator {
	return &Coordinator{
		decoder:  eventDecoder,
		engine:   engine,
		metrics:  metricsManager,
		logger:   utils.GetLogger(),
		channels: make(map[uint64]*ChannelSource),
	}
}

// AddSource registers a chain source. Must be called before Start; one
// source per chain.
func (c *Coordinator) AddSource(src Source) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return utils.NewAppError(utils.ErrCodeProcessing, "Coordinator already started", "")
	}
	for _, existing := range c.sources {
		if existing.ChainID() == src.ChainID() {
			return utils.NewAppError(utils.ErrCodeValidation,
				fmt.Sprintf("Duplicate source for chain %d", src.ChainID()), "")
		}
	}

	c.sources = append(c.sources, src)
	if ch, ok := src.(*ChannelSource); ok {
		c.channels[src.ChainID()] = ch
	}
	return nil
}

// Submit routes a raw event to its chain's channel source. Used by the
// ingestion boundary.
func (c *Coordinator) Submit(raw *models.RawEvent) error {
	c.mu.Lock()
	ch, ok := c.channels[raw.ChainID]
	c.mu.Unlock()

	if !ok {
		return utils.NewAppError(utils.ErrCodeValidation,
			fmt.Sprintf("No source for chain %d", raw.ChainID), "")
	}
	return ch.Publish(*raw)
}

// Start launches one processing goroutine per registered source
func (c *Coordinator) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.running {
		return utils.NewAppError(utils.ErrCodeProcessing, "Coordinator already started", "")
	}

	ctx, c.cancel = context.WithCancel(ctx)
	c.running = true

	for _, src := range c.sources {
		c.wg.Add(1)
		go c.runChain(ctx, src)
	}

	c.logger.WithField("chains", len(c.sources)).Info("Pipeline coordinator started")
	return nil
}

// Stop cancels all chain loops and waits for them to finish
func (c *Coordinator) Stop() error {
	c.mu.Lock()
	if !c.running {
		c.mu.Unlock()
		return nil
	}
	c.running = false
	cancel := c.cancel
	c.mu.Unlock()

	cancel()
	c.wg.Wait()

	c.logger.Info("Pipeline coordinator stopped")
	return nil
}

// Wait blocks until every chain loop has exited, which happens when all
// sources are closed and drained. Used when feeding a finite replay.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// runChain processes one chain's events in arrival order
func (c *Coordinator) runChain(ctx context.Context, src Source) {
	defer c.wg.Done()

	log := c.logger.WithField("chain_id", src.ChainID())
	log.Info("Chain pipeline started")

	for {
		select {
		case <-ctx.Done():
			log.Info("Chain pipeline cancelled")
			return
		case raw, ok := <-src.Events():
			if !ok {
				log.Info("Chain source closed")
				return
			}
			c.handle(ctx, &raw, log)
		}
	}
}

// handle decodes and applies one event. Decode failures and apply errors are
// local to the event: they are logged and counted, and the loop moves on, so
// one bad event never stalls its chain.
func (c *Coordinator) handle(ctx context.Context, raw *models.RawEvent, log *logrus.Entry) {
	ev, err := c.decoder.Decode(raw)
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordDecodeFailure(raw.ChainID, raw.EventName)
		}
		log.WithFields(logrus.Fields{
			"event": raw.EventName,
			"block": raw.BlockNumber,
			"log":   raw.LogIndex,
		}).WithError(err).Error("Failed to decode event")
		return
	}

	if err := c.engine.Apply(ctx, ev); err != nil {
		log.WithFields(logrus.Fields{
			"event": ev.Name(),
			"block": raw.BlockNumber,
		}).WithError(err).Error("Failed to apply event")
	}
}
