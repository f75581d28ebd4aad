package materialize

import (
	"github.com/greenpill-dev-guild/garden-indexer/internal/identity"
	"github.com/greenpill-dev-guild/garden-indexer/internal/models"
)

// Transition functions compute the next value of an entity from its current
// value (nil when absent) and one event. They never mutate their input and
// never touch storage; the engine owns the surrounding read-modify-write.
//
// A nil return with a nil current means the event is a no-op for an absent
// entity. Creation events ignore current entirely: re-applying an identical
// creation event rebuilds the same record, which is what makes replays safe.

func applyActionRegistered(ev *models.ActionRegistered) *models.Action {
	return &models.Action{
		Key:          identity.ActionKey(ev.ChainID, ev.UID),
		ChainID:      ev.ChainID,
		UID:          ev.UID,
		Owner:        ev.Owner,
		StartTime:    ev.StartTime,
		EndTime:      ev.EndTime,
		Title:        ev.Title,
		Instructions: ev.Instructions,
		Capitals:     append([]models.Capital(nil), ev.Capitals...),
		Media:        append([]string(nil), ev.Media...),
		CreatedAt:    ev.BlockTime,
	}
}

func applyActionStartTime(current *models.Action, ev *models.ActionStartTimeUpdated) *models.Action {
	if current == nil {
		return nil
	}
	next := current.Clone()
	next.StartTime = ev.StartTime
	return next
}

func applyActionEndTime(current *models.Action, ev *models.ActionEndTimeUpdated) *models.Action {
	if current == nil {
		return nil
	}
	next := current.Clone()
	next.EndTime = ev.EndTime
	return next
}

func applyActionTitle(current *models.Action, ev *models.ActionTitleUpdated) *models.Action {
	if current == nil {
		return nil
	}
	next := current.Clone()
	next.Title = ev.Title
	return next
}

func applyActionInstructions(current *models.Action, ev *models.ActionInstructionsUpdated) *models.Action {
	if current == nil {
		return nil
	}
	next := current.Clone()
	next.Instructions = ev.Instructions
	return next
}

func applyActionMedia(current *models.Action, ev *models.ActionMediaUpdated) *models.Action {
	if current == nil {
		return nil
	}
	next := current.Clone()
	next.Media = append([]string(nil), ev.Media...)
	return next
}

// applyGardenMinted builds the full Garden record from the mint payload.
// Operators are folded into the gardener list so every operator is also a
// gardener at creation. A mint replaces any record synthesized earlier by a
// create-if-absent attribute update.
func applyGardenMinted(ev *models.GardenMinted) *models.Garden {
	gardeners := make([]string, 0, len(ev.Gardeners)+len(ev.Operators))
	for _, addr := range ev.Gardeners {
		gardeners = addAddress(gardeners, addr)
	}
	for _, addr := range ev.Operators {
		gardeners = addAddress(gardeners, addr)
	}

	operators := make([]string, 0, len(ev.Operators))
	for _, addr := range ev.Operators {
		operators = addAddress(operators, addr)
	}

	return &models.Garden{
		Key:          identity.GardenKey(ev.ChainID, ev.Garden),
		ChainID:      ev.ChainID,
		Address:      ev.Garden,
		TokenAddress: ev.TokenAddress,
		TokenID:      ev.TokenID,
		Name:         ev.GardenName,
		Description:  ev.Description,
		Location:     ev.Location,
		BannerImage:  ev.BannerImage,
		OpenJoining:  ev.OpenJoining,
		Gardeners:    gardeners,
		Operators:    operators,
		CreatedAt:    ev.BlockTime,
	}
}

// synthesizeGarden builds the minimal Garden used by create-if-absent
// attribute updates: identity fields plus empty defaults everywhere else.
func synthesizeGarden(chainID uint64, address string) *models.Garden {
	return &models.Garden{
		Key:       identity.GardenKey(chainID, address),
		ChainID:   chainID,
		Address:   address,
		Gardeners: []string{},
		Operators: []string{},
	}
}

func applyGardenName(current *models.Garden, ev *models.NameUpdated) *models.Garden {
	if current == nil {
		current = synthesizeGarden(ev.ChainID, ev.Garden)
	}
	next := current.Clone()
	next.Name = ev.GardenName
	return next
}

func applyGardenDescription(current *models.Garden, ev *models.DescriptionUpdated) *models.Garden {
	if current == nil {
		current = synthesizeGarden(ev.ChainID, ev.Garden)
	}
	next := current.Clone()
	next.Description = ev.Description
	return next
}

func applyGardenLocation(current *models.Garden, ev *models.LocationUpdated) *models.Garden {
	if current == nil {
		current = synthesizeGarden(ev.ChainID, ev.Garden)
	}
	next := current.Clone()
	next.Location = ev.Location
	return next
}

func applyGardenBannerImage(current *models.Garden, ev *models.BannerImageUpdated) *models.Garden {
	if current == nil {
		current = synthesizeGarden(ev.ChainID, ev.Garden)
	}
	next := current.Clone()
	next.BannerImage = ev.BannerImage
	return next
}

func applyOpenJoining(current *models.Garden, ev *models.OpenJoiningUpdated) *models.Garden {
	if current == nil {
		return nil
	}
	next := current.Clone()
	next.OpenJoining = ev.OpenJoining
	return next
}

func applyOperatorAdded(current *models.Garden, ev *models.GardenOperatorAdded) *models.Garden {
	if current == nil {
		return nil
	}
	next := current.Clone()
	next.Operators = addAddress(next.Operators, ev.Operator)
	return next
}

func applyOperatorRemoved(current *models.Garden, ev *models.GardenOperatorRemoved) *models.Garden {
	if current == nil {
		return nil
	}
	next := current.Clone()
	next.Operators = removeAddress(next.Operators, ev.Operator)
	return next
}

func applyProjectLinked(current *models.Garden, ev *models.ProjectLinked) *models.Garden {
	if current == nil {
		return nil
	}
	next := current.Clone()
	next.GAPProjectUID = ev.ProjectUID
	return next
}

// newGardener creates a Gardener on first observation. firstGarden is fixed
// here and never overwritten afterwards.
func newGardener(chainID uint64, address, firstGarden string, blockTime uint64) *models.Gardener {
	return &models.Gardener{
		Key:         identity.GardenerKey(chainID, address),
		ChainID:     chainID,
		Address:     address,
		FirstGarden: firstGarden,
		Gardens:     []string{firstGarden},
		CreatedAt:   blockTime,
	}
}

// addAddress appends addr unless already present.
func addAddress(list []string, addr string) []string {
	for _, a := range list {
		if a == addr {
			return list
		}
	}
	return append(list, addr)
}

// removeAddress filters addr out, preserving order. Removing an absent
// address is a no-op.
func removeAddress(list []string, addr string) []string {
	out := list[:0]
	for _, a := range list {
		if a != addr {
			out = append(out, a)
		}
	}
	return out
}
