package models

import (
	"encoding/json"
	"fmt"
)

// Capital identifies which of the eight forms of capital an action
// contributes to. Values mirror the on-chain uint8 encoding.
type Capital uint8

const (
	CapitalSocial Capital = iota
	CapitalMaterial
	CapitalFinancial
	CapitalLiving
	CapitalIntellectual
	CapitalExperiential
	CapitalSpiritual
	CapitalCultural
)

// CapitalUnknown is the sentinel for raw values outside the taxonomy.
// Contracts may gain capital kinds before the indexer learns their names;
// such events still have to materialize.
const CapitalUnknown Capital = 255

var capitalNames = map[Capital]string{
	CapitalSocial:       "SOCIAL",
	CapitalMaterial:     "MATERIAL",
	CapitalFinancial:    "FINANCIAL",
	CapitalLiving:       "LIVING",
	CapitalIntellectual: "INTELLECTUAL",
	CapitalExperiential: "EXPERIENTIAL",
	CapitalSpiritual:    "SPIRITUAL",
	CapitalCultural:     "CULTURAL",
}

var capitalValues = func() map[string]Capital {
	m := make(map[string]Capital, len(capitalNames))
	for c, name := range capitalNames {
		m[name] = c
	}
	return m
}()

// CapitalFromRaw normalizes a raw on-chain value into the taxonomy.
// Out-of-range values map to CapitalUnknown, never an error.
func CapitalFromRaw(raw uint8) Capital {
	if raw > uint8(CapitalCultural) {
		return CapitalUnknown
	}
	return Capital(raw)
}

// CapitalsFromRaw normalizes a raw value slice, preserving order.
func CapitalsFromRaw(raw []uint8) []Capital {
	capitals := make([]Capital, len(raw))
	for i, v := range raw {
		capitals[i] = CapitalFromRaw(v)
	}
	return capitals
}

func (c Capital) String() string {
	if name, ok := capitalNames[c]; ok {
		return name
	}
	return "UNKNOWN"
}

// MarshalJSON serializes capitals by name so stored documents and API
// responses stay readable.
func (c Capital) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *Capital) UnmarshalJSON(data []byte) error {
	var name string
	if err := json.Unmarshal(data, &name); err != nil {
		return fmt.Errorf("capital must be a string: %w", err)
	}
	if v, ok := capitalValues[name]; ok {
		*c = v
		return nil
	}
	*c = CapitalUnknown
	return nil
}
