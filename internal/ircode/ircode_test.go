package ircode

import (
	"testing"

	"github.com/birchlabs/irengine/internal/protocol"
	"github.com/birchlabs/irengine/internal/pulse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClone_IndependentRawBuffer(t *testing.T) {
	c := Code{Protocol: protocol.Raw, Raw: []pulse.Pair{{Mark: 9000, Space: 4500}}}
	d := c.Clone()
	d.Raw[0].Mark = 1

	require.Equal(t, 9000, c.Raw[0].Mark)
	require.Equal(t, 1, d.Raw[0].Mark)
}

func TestEqual_FieldByField(t *testing.T) {
	a := Code{Protocol: protocol.NEC, Data: 0x00FFE01F, Bits: 32}
	b := a
	assert.True(t, a.Equal(b))

	b.Data = 0
	assert.False(t, a.Equal(b))
}

func TestEqual_RawBufferContent(t *testing.T) {
	a := Code{Protocol: protocol.Raw, Raw: []pulse.Pair{{Mark: 1, Space: 2}, {Mark: 3, Space: 4}}}
	b := a.Clone()
	assert.True(t, a.Equal(b))

	b.Raw[1].Space = 5
	assert.False(t, a.Equal(b))
}

func TestAgrees_FixedProtocol(t *testing.T) {
	a := Code{Protocol: protocol.NEC, Data: 0x00FFE01F, Bits: 32}
	b := Code{Protocol: protocol.NEC, Data: 0x00FFE01F, Bits: 32}
	c := Code{Protocol: protocol.NEC, Data: 0x12345678, Bits: 32}

	assert.True(t, a.Agrees(b, 20))
	assert.False(t, a.Agrees(c, 20))
}

func TestAgrees_RawWithinTolerance(t *testing.T) {
	a := Code{Protocol: protocol.Raw, Raw: []pulse.Pair{{Mark: 9000, Space: 4500}}}
	b := Code{Protocol: protocol.Raw, Raw: []pulse.Pair{{Mark: 9500, Space: 4600}}}
	c := Code{Protocol: protocol.Raw, Raw: []pulse.Pair{{Mark: 20000, Space: 4600}}}

	assert.True(t, a.Agrees(b, 20))
	assert.False(t, a.Agrees(c, 20))
}

func TestEffectiveCarrier_FallsBackToCatalogueThen38k(t *testing.T) {
	nec := Code{Protocol: protocol.NEC}
	assert.Equal(t, 38000, nec.EffectiveCarrierHz())

	sony := Code{Protocol: protocol.Sony}
	assert.Equal(t, 40000, sony.EffectiveCarrierHz())

	explicit := Code{Protocol: protocol.Sony, CarrierHz: 56000}
	assert.Equal(t, 56000, explicit.EffectiveCarrierHz())

	unknown := Code{Protocol: protocol.Unknown}
	assert.Equal(t, 38000, unknown.EffectiveCarrierHz())
}
