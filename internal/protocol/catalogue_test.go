package protocol

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLookup_KnownProtocol(t *testing.T) {
	c, ok := Lookup(NEC)
	assert.True(t, ok)
	assert.Equal(t, 38, c.CarrierKHz)
	assert.Equal(t, 32, c.NominalBits)
}

func TestLookup_Unknown(t *testing.T) {
	_, ok := Lookup(Unknown)
	assert.False(t, ok)
}

func TestName_StableStrings(t *testing.T) {
	assert.Equal(t, "NEC", NEC.Name())
	assert.Equal(t, "RAW", Raw.Name())
	assert.Equal(t, "UNKNOWN", Unknown.Name())
}

func TestACProtocols_ClosedSet(t *testing.T) {
	for id := range ACProtocols {
		_, ok := Lookup(id)
		assert.True(t, ok, "%s must have catalogue constants", id.Name())
	}
}
