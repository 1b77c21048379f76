package decode

import (
	"testing"

	"github.com/birchlabs/irengine/internal/protocol"
	"github.com/birchlabs/irengine/internal/pulse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestDecodeSony_Nominal covers §8 scenario S3.
func TestDecodeSony_Nominal(t *testing.T) {
	pairs := []pulse.Pair{{Mark: 2400, Space: 600}}
	data := uint64(0xA5A) // 12 bits
	for i := 0; i < 12; i++ {
		bit := (data >> uint(i)) & 1
		mark := 600
		if bit == 1 {
			mark = 1200
		}
		pairs = append(pairs, pulse.Pair{Mark: mark, Space: 600})
	}
	pairs[len(pairs)-1].Space = 0
	buf := pulse.Buffer{Pairs: pairs}

	code, err := DecodeSony(buf)
	require.NoError(t, err)
	assert.Equal(t, protocol.Sony, code.Protocol)
	assert.Equal(t, 12, code.Bits)
	assert.Equal(t, 40000, code.CarrierHz)
	assert.Equal(t, data, code.Data)
}
