package models

// Garden represents a garden token-bound account and its membership.
// Membership lists hold normalized lowercase addresses; Gardens are keyed
// chain-scoped like every other entity (see internal/identity).
type Garden struct {
	Key           string   `json:"key" db:"key"`
	ChainID       uint64   `json:"chain_id" db:"chain_id"`
	Address       string   `json:"address" db:"address"`
	TokenAddress  string   `json:"token_address" db:"token_address"`
	TokenID       string   `json:"token_id" db:"token_id"`
	Name          string   `json:"name" db:"name"`
	Description   string   `json:"description" db:"description"`
	Location      string   `json:"location" db:"location"`
	BannerImage   string   `json:"banner_image" db:"banner_image"`
	OpenJoining   bool     `json:"open_joining" db:"open_joining"`
	Gardeners     []string `json:"gardeners" db:"gardeners"`
	Operators     []string `json:"operators" db:"operators"`
	GAPProjectUID string   `json:"gap_project_uid,omitempty" db:"gap_project_uid"`
	CreatedAt     uint64   `json:"created_at" db:"created_at"`
}

// Clone returns a deep copy.
func (g *Garden) Clone() *Garden {
	if g == nil {
		return nil
	}
	clone := *g
	clone.Gardeners = append([]string(nil), g.Gardeners...)
	clone.Operators = append([]string(nil), g.Operators...)
	return &clone
}

// HasGardener reports whether addr is in the gardener list.
func (g *Garden) HasGardener(addr string) bool {
	for _, a := range g.Gardeners {
		if a == addr {
			return true
		}
	}
	return false
}

// HasOperator reports whether addr is in the operator list.
func (g *Garden) HasOperator(addr string) bool {
	for _, a := range g.Operators {
		if a == addr {
			return true
		}
	}
	return false
}
