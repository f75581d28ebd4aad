package models

// Gardener represents a participant address on one chain. The same address
// on two chains is two distinct gardeners. Gardens holds the garden account
// addresses the gardener currently belongs to, in join order. FirstGarden is
// set when the gardener is first observed and never overwritten.
type Gardener struct {
	Key         string   `json:"key" db:"key"`
	ChainID     uint64   `json:"chain_id" db:"chain_id"`
	Address     string   `json:"address" db:"address"`
	FirstGarden string   `json:"first_garden" db:"first_garden"`
	Gardens     []string `json:"gardens" db:"gardens"`
	CreatedAt   uint64   `json:"created_at" db:"created_at"`
}

// Clone returns a deep copy.
func (g *Gardener) Clone() *Gardener {
	if g == nil {
		return nil
	}
	clone := *g
	clone.Gardens = append([]string(nil), g.Gardens...)
	return &clone
}

// HasGarden reports whether the gardener is currently joined to addr.
func (g *Gardener) HasGarden(addr string) bool {
	for _, a := range g.Gardens {
		if a == addr {
			return true
		}
	}
	return false
}
