package models

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// Supported event names, matching the contract event declarations.
const (
	EventActionRegistered          = "ActionRegistered"
	EventActionStartTimeUpdated    = "ActionStartTimeUpdated"
	EventActionEndTimeUpdated      = "ActionEndTimeUpdated"
	EventActionTitleUpdated        = "ActionTitleUpdated"
	EventActionInstructionsUpdated = "ActionInstructionsUpdated"
	EventActionMediaUpdated        = "ActionMediaUpdated"

	EventGardenMinted          = "GardenMinted"
	EventNameUpdated           = "NameUpdated"
	EventDescriptionUpdated    = "DescriptionUpdated"
	EventLocationUpdated       = "LocationUpdated"
	EventBannerImageUpdated    = "BannerImageUpdated"
	EventOpenJoiningUpdated    = "OpenJoiningUpdated"
	EventGardenerAdded         = "GardenerAdded"
	EventGardenerRemoved       = "GardenerRemoved"
	EventGardenOperatorAdded   = "GardenOperatorAdded"
	EventGardenOperatorRemoved = "GardenOperatorRemoved"
	EventProjectLinked         = "ProjectLinked"
)

// RawEvent is a contract log as delivered by the event substrate: identified
// by name, not yet decoded. Data carries the ABI-encoded parameter tuple.
type RawEvent struct {
	ChainID     uint64        `json:"chain_id"`
	Contract    string        `json:"contract"`
	EventName   string        `json:"event_name"`
	BlockNumber uint64        `json:"block_number"`
	BlockTime   uint64        `json:"block_time"`
	LogIndex    uint          `json:"log_index"`
	Data        hexutil.Bytes `json:"data"`
}

// EventMeta is the chain context shared by every decoded event.
type EventMeta struct {
	ChainID     uint64 `json:"chain_id"`
	Contract    string `json:"contract"`
	BlockNumber uint64 `json:"block_number"`
	BlockTime   uint64 `json:"block_time"`
	LogIndex    uint   `json:"log_index"`
}

// Meta returns the event's chain context. Embedding EventMeta in a payload
// struct is what makes it a DomainEvent.
func (m EventMeta) Meta() EventMeta { return m }

func (EventMeta) domainEvent() {}

// ID returns a stable per-event identifier, unique within a chain.
func (m EventMeta) ID() string {
	return fmt.Sprintf("%d-%d-%d", m.ChainID, m.BlockNumber, m.LogIndex)
}

// DomainEvent is the closed set of decoded events. The set is sealed so the
// materialization engine can switch over it exhaustively; adding an event
// type means adding a decoder schema and an engine case.
type DomainEvent interface {
	Meta() EventMeta
	Name() string
	domainEvent()
}

// ActionRegistered creates an Action.
type ActionRegistered struct {
	EventMeta
	UID          uint64
	Owner        string
	StartTime    uint64
	EndTime      uint64
	Title        string
	Instructions string
	Capitals     []Capital
	Media        []string
}

func (ActionRegistered) Name() string { return EventActionRegistered }

// ActionStartTimeUpdated updates an Action's start time.
type ActionStartTimeUpdated struct {
	EventMeta
	UID       uint64
	StartTime uint64
}

func (ActionStartTimeUpdated) Name() string { return EventActionStartTimeUpdated }

// ActionEndTimeUpdated updates an Action's end time.
type ActionEndTimeUpdated struct {
	EventMeta
	UID     uint64
	EndTime uint64
}

func (ActionEndTimeUpdated) Name() string { return EventActionEndTimeUpdated }

// ActionTitleUpdated updates an Action's title.
type ActionTitleUpdated struct {
	EventMeta
	UID   uint64
	Title string
}

func (ActionTitleUpdated) Name() string { return EventActionTitleUpdated }

// ActionInstructionsUpdated updates an Action's instructions.
type ActionInstructionsUpdated struct {
	EventMeta
	UID          uint64
	Instructions string
}

func (ActionInstructionsUpdated) Name() string { return EventActionInstructionsUpdated }

// ActionMediaUpdated replaces an Action's media list.
type ActionMediaUpdated struct {
	EventMeta
	UID   uint64
	Media []string
}

func (ActionMediaUpdated) Name() string { return EventActionMediaUpdated }

// GardenMinted creates a Garden together with its initial member sets.
type GardenMinted struct {
	EventMeta
	Garden       string
	TokenAddress string
	TokenID      string
	GardenName   string
	Description  string
	Location     string
	BannerImage  string
	OpenJoining  bool
	Gardeners    []string
	Operators    []string
}

func (GardenMinted) Name() string { return EventGardenMinted }

// NameUpdated updates a Garden's name.
type NameUpdated struct {
	EventMeta
	Garden     string
	GardenName string
}

func (NameUpdated) Name() string { return EventNameUpdated }

// DescriptionUpdated updates a Garden's description.
type DescriptionUpdated struct {
	EventMeta
	Garden      string
	Description string
}

func (DescriptionUpdated) Name() string { return EventDescriptionUpdated }

// LocationUpdated updates a Garden's location.
type LocationUpdated struct {
	EventMeta
	Garden   string
	Location string
}

func (LocationUpdated) Name() string { return EventLocationUpdated }

// BannerImageUpdated updates a Garden's banner image URI.
type BannerImageUpdated struct {
	EventMeta
	Garden      string
	BannerImage string
}

func (BannerImageUpdated) Name() string { return EventBannerImageUpdated }

// OpenJoiningUpdated toggles a Garden's open-joining flag.
type OpenJoiningUpdated struct {
	EventMeta
	Garden      string
	OpenJoining bool
}

func (OpenJoiningUpdated) Name() string { return EventOpenJoiningUpdated }

// GardenerAdded joins a gardener to a Garden. Applied to both the Garden
// and the Gardener entity as one unit.
type GardenerAdded struct {
	EventMeta
	Garden   string
	Gardener string
}

func (GardenerAdded) Name() string { return EventGardenerAdded }

// GardenerRemoved removes a gardener from a Garden, symmetrically on both
// sides.
type GardenerRemoved struct {
	EventMeta
	Garden   string
	Gardener string
}

func (GardenerRemoved) Name() string { return EventGardenerRemoved }

// GardenOperatorAdded adds an address to a Garden's operator list.
type GardenOperatorAdded struct {
	EventMeta
	Garden   string
	Operator string
}

func (GardenOperatorAdded) Name() string { return EventGardenOperatorAdded }

// GardenOperatorRemoved removes an address from a Garden's operator list.
type GardenOperatorRemoved struct {
	EventMeta
	Garden   string
	Operator string
}

func (GardenOperatorRemoved) Name() string { return EventGardenOperatorRemoved }

// ProjectLinked links a Garden to an external GAP project.
type ProjectLinked struct {
	EventMeta
	Garden     string
	ProjectUID string
}

func (ProjectLinked) Name() string { return EventProjectLinked }
