package decode

import (
	"github.com/birchlabs/irengine/internal/ircode"
	"github.com/birchlabs/irengine/internal/protocol"
	"github.com/birchlabs/irengine/internal/pulse"
)

// sonySpaceUs is the (nominally) constant space between Sony SIRC
// pulse-width bits.
const sonySpaceUs = 600

// DecodeSony implements the Sony SIRC decoder (§4.C, scenario S3):
// pulse-width encoding, 2400/600 header, no stop symbol. SIRC frames
// come in 12, 15, and 20-bit variants with the same bit timings; we
// decode whichever length the buffer actually holds, preferring the
// longest that matches so a 20-bit remote isn't truncated to 12.
func DecodeSony(buf pulse.Buffer) (ircode.Code, error) {
	c, ok := protocol.Lookup(protocol.Sony)
	if !ok {
		return ircode.Code{}, ircode.ErrDecodeFailed
	}
	if !matchHeader(buf, 0, c.HeaderMark, c.HeaderSpace, defaultTolerance) {
		return ircode.Code{}, ircode.ErrDecodeFailed
	}

	for _, nbits := range []int{20, 15, 12} {
		if buf.Len() < 1+nbits {
			continue
		}
		data, consumed, ok := decodeSonyBits(buf, 1, nbits)
		if !ok {
			continue
		}
		if consumed < buf.Len() && !buf.Pairs[consumed-1].EndOfBurst() {
			// More symbols follow than this length accounts for;
			// a shorter candidate would silently drop data, so only
			// accept when the buffer is (about) exhausted.
			if buf.Len()-consumed > 1 {
				continue
			}
		}
		return ircode.Code{
			Protocol:  protocol.Sony,
			Data:      data,
			Bits:      nbits,
			Command:   uint32(data & 0x7F),
			Address:   uint32(data >> 7),
			CarrierHz: c.CarrierKHz * 1000,
		}, nil
	}
	return ircode.Code{}, ircode.ErrDecodeFailed
}

func decodeSonyBits(buf pulse.Buffer, start, nbits int) (uint64, int, bool) {
	var data uint64
	i := start
	for bitIdx := 0; bitIdx < nbits; bitIdx++ {
		if i >= len(buf.Pairs) {
			return 0, i, false
		}
		p := buf.Pairs[i]
		var bit int
		switch {
		case pulse.MatchMark(p, 1200, defaultTolerance):
			bit = 1
		case pulse.MatchMark(p, 600, defaultTolerance):
			bit = 0
		default:
			return 0, i, false
		}
		if bitIdx < nbits-1 && !pulse.MatchSpace(p, sonySpaceUs, defaultTolerance) && p.Space != 0 {
			return 0, i, false
		}
		data = packBit(data, bit, bitIdx, false)
		i++
	}
	return data, i, true
}
