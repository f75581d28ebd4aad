package identity

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActionKeyChainScoped(t *testing.T) {
	assert.Equal(t, "10-42", ActionKey(10, 42))
	assert.NotEqual(t, ActionKey(10, 42), ActionKey(137, 42),
		"same UID on two chains must produce distinct keys")
}

func TestGardenKeyNormalizesAddress(t *testing.T) {
	mixed := "0xAbCd000000000000000000000000000000000001"
	lower := "0xabcd000000000000000000000000000000000001"

	assert.Equal(t, "10-"+lower, GardenKey(10, mixed))
	assert.Equal(t, GardenKey(10, mixed), GardenKey(10, lower),
		"key derivation must not depend on address casing")
}

func TestGardenerKeyChainScoped(t *testing.T) {
	addr := "0x1111000000000000000000000000000000000001"
	assert.NotEqual(t, GardenerKey(10, addr), GardenerKey(42161, addr),
		"same address on two chains is a distinct gardener")
}

func TestKeysAreDeterministic(t *testing.T) {
	addr := "0x2222000000000000000000000000000000000002"
	for i := 0; i < 5; i++ {
		assert.Equal(t, GardenKey(10, addr), GardenKey(10, addr))
		assert.Equal(t, GardenerKey(10, addr), GardenerKey(10, addr))
		assert.Equal(t, ActionKey(10, 7), ActionKey(10, 7))
	}
}
