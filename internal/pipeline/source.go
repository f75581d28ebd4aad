package pipeline

import (
	"sync"

	"github.com/greenpill-dev-guild/garden-indexer/internal/models"
	"github.com/greenpill-dev-guild/garden-indexer/pkg/utils"
)

// Source delivers raw events for one chain. Events must come out of the
// channel in chain order; the coordinator applies them strictly in that
// order.
type Source interface {
	ChainID() uint64
	Events() <-chan models.RawEvent
}

// ChannelSource is a Source fed by Publish calls, used as the boundary to
// the external event-delivery substrate (and by tests).
type ChannelSource struct {
	chainID uint64
	events  chan models.RawEvent

	mu     sync.Mutex
	closed bool
}

// NewChannelSource creates a channel-backed source for one chain
func NewChannelSource(chainID uint64, buffer int) *ChannelSource {
	if buffer <= 0 {
		buffer = 1
	}
	return &ChannelSource{
		chainID: chainID,
		events:  make(chan models.RawEvent, buffer),
	}
}

// ChainID returns the chain this source feeds
func (s *ChannelSource) ChainID() uint64 { return s.chainID }

// Events returns the delivery channel
func (s *ChannelSource) Events() <-chan models.RawEvent { return s.events }

// Publish enqueues one raw event, blocking when the buffer is full. The
// mutex is held across the send so Close can never race a publish into a
// closed channel.
func (s *ChannelSource) Publish(raw models.RawEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return utils.NewAppError(utils.ErrCodeProcessing, "Source is closed", "")
	}
	s.events <- raw
	return nil
}

// Close stops delivery; the coordinator drains what was already published
func (s *ChannelSource) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		close(s.events)
	}
}
