package models

// Action represents a registered impact action template. Actions are
// chain-scoped: the same numeric UID on two chains is two distinct actions.
type Action struct {
	Key          string    `json:"key" db:"key"`
	ChainID      uint64    `json:"chain_id" db:"chain_id"`
	UID          uint64    `json:"uid" db:"uid"`
	Owner        string    `json:"owner" db:"owner"`
	StartTime    uint64    `json:"start_time" db:"start_time"`
	EndTime      uint64    `json:"end_time" db:"end_time"`
	Title        string    `json:"title" db:"title"`
	Instructions string    `json:"instructions" db:"instructions"`
	Capitals     []Capital `json:"capitals" db:"capitals"`
	Media        []string  `json:"media" db:"media"`
	CreatedAt    uint64    `json:"created_at" db:"created_at"`
}

// Clone returns a deep copy. Transition functions work on copies so the
// stored value never aliases caller-held slices.
func (a *Action) Clone() *Action {
	if a == nil {
		return nil
	}
	clone := *a
	clone.Capitals = append([]Capital(nil), a.Capitals...)
	clone.Media = append([]string(nil), a.Media...)
	return &clone
}
