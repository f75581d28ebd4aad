package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCapitalFromRaw(t *testing.T) {
	assert.Equal(t, CapitalSocial, CapitalFromRaw(0))
	assert.Equal(t, CapitalCultural, CapitalFromRaw(7))
	assert.Equal(t, CapitalUnknown, CapitalFromRaw(8))
	assert.Equal(t, CapitalUnknown, CapitalFromRaw(9))
	assert.Equal(t, CapitalUnknown, CapitalFromRaw(200))
}

func TestCapitalsFromRawPreservesOrder(t *testing.T) {
	capitals := CapitalsFromRaw([]uint8{3, 0, 9, 7})
	assert.Equal(t, []Capital{CapitalLiving, CapitalSocial, CapitalUnknown, CapitalCultural}, capitals)
}

func TestCapitalJSONRoundTrip(t *testing.T) {
	capitals := []Capital{CapitalSocial, CapitalUnknown, CapitalSpiritual}

	data, err := json.Marshal(capitals)
	require.NoError(t, err)
	assert.JSONEq(t, `["SOCIAL","UNKNOWN","SPIRITUAL"]`, string(data))

	var decoded []Capital
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, capitals, decoded)
}
