package decode

import (
	"testing"

	"github.com/birchlabs/irengine/internal/ircode"
	"github.com/birchlabs/irengine/internal/protocol"
	"github.com/birchlabs/irengine/internal/pulse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func necWord(address, command byte) uint64 {
	addrInv := ^address
	cmdInv := ^command
	return uint64(address) | uint64(addrInv)<<8 | uint64(command)<<16 | uint64(cmdInv)<<24
}

// TestDecodeNEC_Nominal covers §8 scenario S1: a valid 32-bit NEC frame
// decodes to the expected address/command with no parity failure.
func TestDecodeNEC_Nominal(t *testing.T) {
	data := necWord(0x00, 0x7F)
	buf := buildPulseDistanceFrame(9000, 4500, 560, 1690, 560, data, 32)

	code, err := DecodeNEC(buf)
	require.NoError(t, err)
	assert.Equal(t, protocol.NEC, code.Protocol)
	assert.Equal(t, data, code.Data)
	assert.Equal(t, 32, code.Bits)
	assert.Equal(t, uint32(0x00), code.Address)
	assert.Equal(t, uint32(0x7F), code.Command)
	assert.False(t, code.Flags.Has(ircode.FlagParityFailed))
}

// TestDecodeNEC_InverseMismatchRejects covers §8 scenario S2: an
// invalid inverse-byte pair is a decode-failed rejection, not a
// parity-failed flag.
func TestDecodeNEC_InverseMismatchRejects(t *testing.T) {
	// address/addrInv consistent (0x00/0xFF), but command/cmdInv are
	// not inverses of one another (0x12 vs 0x34).
	data := uint64(0x00) | uint64(0xFF)<<8 | uint64(0x12)<<16 | uint64(0x34)<<24
	buf := buildPulseDistanceFrame(9000, 4500, 560, 1690, 560, data, 32)

	_, err := DecodeNEC(buf)
	assert.ErrorIs(t, err, ircode.ErrDecodeFailed)
}

// TestDecodeNEC_HeaderOutOfTolerance covers §8 property 2: a header
// mark at ±40% is rejected by the decoder.
func TestDecodeNEC_HeaderOutOfTolerance(t *testing.T) {
	data := necWord(0x01, 0x02)
	buf := buildPulseDistanceFrame(scaleUs(9000, 140), 4500, 560, 1690, 560, data, 32)

	_, err := DecodeNEC(buf)
	assert.Error(t, err)
}

// TestDecodeNEC_WithinTolerance covers §8 property 1 at ±20%.
func TestDecodeNEC_WithinTolerance(t *testing.T) {
	data := necWord(0x5A, 0xA5)
	buf := buildPulseDistanceFrame(scaleUs(9000, 120), scaleUs(4500, 80), scaleUs(560, 110), scaleUs(1690, 90), scaleUs(560, 90), data, 32)

	code, err := DecodeNEC(buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x5A), code.Address)
	assert.Equal(t, uint32(0xA5), code.Command)
}

func TestDecodeNEC_RepeatFrame(t *testing.T) {
	buf := pulse.Buffer{Pairs: []pulse.Pair{{Mark: 9000, Space: 2250}, {Mark: 560, Space: 0}}}
	code, err := DecodeNEC(buf)
	require.NoError(t, err)
	assert.True(t, code.Flags.Has(ircode.FlagRepeat))
}
