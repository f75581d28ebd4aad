// Package decoder turns raw contract logs into typed domain events.
//
// Decoding is pure with respect to the per-event ABI schema: a payload that
// unpacks against the declared schema always yields a domain event, and a
// payload that does not is a fatal error for that single event. Unknown
// capital values are normalized to a sentinel instead of failing, so
// structurally valid events never abort on unknown-but-valid data.
package decoder

import (
	"fmt"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/sirupsen/logrus"

	"github.com/greenpill-dev-guild/garden-indexer/internal/models"
	"github.com/greenpill-dev-guild/garden-indexer/pkg/utils"
)

// EventDecoder decodes raw events against the fixed schema set.
type EventDecoder struct {
	logger *logrus.Logger
}

// NewEventDecoder creates a new event decoder
func NewEventDecoder() *EventDecoder {
	return &EventDecoder{
		logger: utils.GetLogger(),
	}
}

// Decode unpacks a raw event's parameter bytes and builds the typed domain
// event for its name. Any failure is returned as a DECODE_ERROR and leaves
// no entity touched.
func (d *EventDecoder) Decode(raw *models.RawEvent) (models.DomainEvent, error) {
	schema, ok := Schema(raw.EventName)
	if !ok {
		return nil, utils.NewAppError(utils.ErrCodeDecode, "Unsupported event name", raw.EventName)
	}

	values, err := schema.Unpack(raw.Data)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrCodeDecode,
			fmt.Sprintf("Failed to unpack %s payload", raw.EventName), err.Error())
	}

	meta := models.EventMeta{
		ChainID:     raw.ChainID,
		Contract:    utils.NormalizeAddress(raw.Contract),
		BlockNumber: raw.BlockNumber,
		BlockTime:   raw.BlockTime,
		LogIndex:    raw.LogIndex,
	}

	event, err := buildEvent(meta, raw.EventName, values)
	if err != nil {
		return nil, utils.NewAppError(utils.ErrCodeDecode,
			fmt.Sprintf("Malformed %s payload", raw.EventName), err.Error())
	}

	return event, nil
}

// buildEvent maps unpacked ABI values onto the event variant for name. The
// value order follows the schema declaration.
func buildEvent(meta models.EventMeta, name string, values []interface{}) (models.DomainEvent, error) {
	v := &valueReader{values: values}

	switch name {
	case models.EventActionRegistered:
		ev := &models.ActionRegistered{
			EventMeta:    meta,
			UID:          v.uint64(),
			Owner:        v.address(),
			StartTime:    v.uint64(),
			EndTime:      v.uint64(),
			Title:        v.string(),
			Instructions: v.string(),
			Capitals:     models.CapitalsFromRaw(v.uint8Slice()),
			Media:        v.stringSlice(),
		}
		return ev, v.err

	case models.EventActionStartTimeUpdated:
		ev := &models.ActionStartTimeUpdated{EventMeta: meta, UID: v.uint64(), StartTime: v.uint64()}
		return ev, v.err

	case models.EventActionEndTimeUpdated:
		ev := &models.ActionEndTimeUpdated{EventMeta: meta, UID: v.uint64(), EndTime: v.uint64()}
		return ev, v.err

	case models.EventActionTitleUpdated:
		ev := &models.ActionTitleUpdated{EventMeta: meta, UID: v.uint64(), Title: v.string()}
		return ev, v.err

	case models.EventActionInstructionsUpdated:
		ev := &models.ActionInstructionsUpdated{EventMeta: meta, UID: v.uint64(), Instructions: v.string()}
		return ev, v.err

	case models.EventActionMediaUpdated:
		ev := &models.ActionMediaUpdated{EventMeta: meta, UID: v.uint64(), Media: v.stringSlice()}
		return ev, v.err

	case models.EventGardenMinted:
		ev := &models.GardenMinted{
			EventMeta:    meta,
			Garden:       v.address(),
			TokenAddress: v.address(),
			TokenID:      v.bigString(),
			GardenName:   v.string(),
			Description:  v.string(),
			Location:     v.string(),
			BannerImage:  v.string(),
			OpenJoining:  v.bool(),
			Gardeners:    v.addressSlice(),
			Operators:    v.addressSlice(),
		}
		return ev, v.err

	case models.EventNameUpdated:
		ev := &models.NameUpdated{EventMeta: meta, Garden: v.address(), GardenName: v.string()}
		return ev, v.err

	case models.EventDescriptionUpdated:
		ev := &models.DescriptionUpdated{EventMeta: meta, Garden: v.address(), Description: v.string()}
		return ev, v.err

	case models.EventLocationUpdated:
		ev := &models.LocationUpdated{EventMeta: meta, Garden: v.address(), Location: v.string()}
		return ev, v.err

	case models.EventBannerImageUpdated:
		ev := &models.BannerImageUpdated{EventMeta: meta, Garden: v.address(), BannerImage: v.string()}
		return ev, v.err

	case models.EventOpenJoiningUpdated:
		ev := &models.OpenJoiningUpdated{EventMeta: meta, Garden: v.address(), OpenJoining: v.bool()}
		return ev, v.err

	case models.EventGardenerAdded:
		ev := &models.GardenerAdded{EventMeta: meta, Garden: v.address(), Gardener: v.address()}
		return ev, v.err

	case models.EventGardenerRemoved:
		ev := &models.GardenerRemoved{EventMeta: meta, Garden: v.address(), Gardener: v.address()}
		return ev, v.err

	case models.EventGardenOperatorAdded:
		ev := &models.GardenOperatorAdded{EventMeta: meta, Garden: v.address(), Operator: v.address()}
		return ev, v.err

	case models.EventGardenOperatorRemoved:
		ev := &models.GardenOperatorRemoved{EventMeta: meta, Garden: v.address(), Operator: v.address()}
		return ev, v.err

	case models.EventProjectLinked:
		ev := &models.ProjectLinked{EventMeta: meta, Garden: v.address(), ProjectUID: v.string()}
		return ev, v.err

	default:
		return nil, fmt.Errorf("no builder for event %s", name)
	}
}

// valueReader consumes unpacked ABI values positionally, recording the first
// mismatch instead of panicking on a bad type assertion.
type valueReader struct {
	values []interface{}
	pos    int
	err    error
}

func (r *valueReader) next() interface{} {
	if r.err != nil {
		return nil
	}
	if r.pos >= len(r.values) {
		r.err = fmt.Errorf("missing value at position %d", r.pos)
		return nil
	}
	v := r.values[r.pos]
	r.pos++
	return v
}

func (r *valueReader) fail(pos int, want string, got interface{}) {
	if r.err == nil {
		r.err = fmt.Errorf("value %d: expected %s, got %T", pos, want, got)
	}
}

func (r *valueReader) uint64() uint64 {
	pos := r.pos
	v := r.next()
	if r.err != nil {
		return 0
	}
	b, ok := v.(*big.Int)
	if !ok {
		r.fail(pos, "uint256", v)
		return 0
	}
	return b.Uint64()
}

func (r *valueReader) bigString() string {
	pos := r.pos
	v := r.next()
	if r.err != nil {
		return ""
	}
	b, ok := v.(*big.Int)
	if !ok {
		r.fail(pos, "uint256", v)
		return ""
	}
	return b.String()
}

func (r *valueReader) address() string {
	pos := r.pos
	v := r.next()
	if r.err != nil {
		return ""
	}
	a, ok := v.(common.Address)
	if !ok {
		r.fail(pos, "address", v)
		return ""
	}
	return utils.NormalizeAddress(a.Hex())
}

func (r *valueReader) addressSlice() []string {
	pos := r.pos
	v := r.next()
	if r.err != nil {
		return nil
	}
	addrs, ok := v.([]common.Address)
	if !ok {
		r.fail(pos, "address[]", v)
		return nil
	}
	out := make([]string, len(addrs))
	for i, a := range addrs {
		out[i] = utils.NormalizeAddress(a.Hex())
	}
	return out
}

func (r *valueReader) string() string {
	pos := r.pos
	v := r.next()
	if r.err != nil {
		return ""
	}
	s, ok := v.(string)
	if !ok {
		r.fail(pos, "string", v)
		return ""
	}
	return s
}

func (r *valueReader) stringSlice() []string {
	pos := r.pos
	v := r.next()
	if r.err != nil {
		return nil
	}
	s, ok := v.([]string)
	if !ok {
		r.fail(pos, "string[]", v)
		return nil
	}
	return s
}

func (r *valueReader) uint8Slice() []uint8 {
	pos := r.pos
	v := r.next()
	if r.err != nil {
		return nil
	}
	s, ok := v.([]uint8)
	if !ok {
		r.fail(pos, "uint8[]", v)
		return nil
	}
	return s
}

func (r *valueReader) bool() bool {
	pos := r.pos
	v := r.next()
	if r.err != nil {
		return false
	}
	b, ok := v.(bool)
	if !ok {
		r.fail(pos, "bool", v)
		return false
	}
	return b
}
