package decode

import (
	"math/rand"
	"testing"

	"github.com/birchlabs/irengine/internal/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCascade_NECWins covers the documented tie-break order: an NEC
// frame is recognized by the cascade as NEC even though later entries
// are tried too.
func TestCascade_NECWins(t *testing.T) {
	data := necWord(0x10, 0x20)
	buf := buildPulseDistanceFrame(9000, 4500, 560, 1690, 560, data, 32)

	code, err := Cascade(buf)
	require.NoError(t, err)
	assert.Equal(t, protocol.NEC, code.Protocol)
}

// TestCascade_Determinism covers §8 property 3: permuting the cascade
// order among protocols that could never both match the same buffer
// does not change the winner for a buffer only one decoder accepts.
// A 32-bit Samsung frame is such a buffer: no other cascade entry
// accepts its 4500/4500 header (an NEC frame would not do, since Apple,
// JVC and LG all accept NEC timings too).
func TestCascade_Determinism(t *testing.T) {
	data := uint64(0x33) | uint64(0x33)<<8 | uint64(0x44)<<16 | uint64(0xBB)<<24
	buf := buildPulseDistanceFrame(4500, 4500, 560, 1690, 560, data, 32)

	entries := Entries()
	expected, err := Cascade(buf)
	require.NoError(t, err)

	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 20; trial++ {
		shuffled := append([]struct {
			ID      protocol.ID
			Decoder Func
		}(nil), entries...)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })

		var got *protocol.ID
		for _, e := range shuffled {
			if code, err := e.Decoder(buf); err == nil {
				id := code.Protocol
				got = &id
				break
			}
		}
		require.NotNil(t, got)
		assert.Equal(t, expected.Protocol, *got)
	}
}

func TestCascade_NoDecoderMatches(t *testing.T) {
	_, err := Cascade(buildPulseDistanceFrame(1, 1, 1, 1, 1, 0, 4))
	assert.Error(t, err)
}
