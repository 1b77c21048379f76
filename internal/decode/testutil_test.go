package decode

import "github.com/birchlabs/irengine/internal/pulse"

// buildPulseDistanceFrame synthesizes a valid pulse-distance buffer for
// the given header + bit timings and LSB-first data word, used to
// exercise decoders without needing real captured hardware timing.
func buildPulseDistanceFrame(headerMark, headerSpace, bitMark, oneSpace, zeroSpace int, data uint64, nbits int) pulse.Buffer {
	pairs := []pulse.Pair{{Mark: headerMark, Space: headerSpace}}
	for i := 0; i < nbits; i++ {
		bit := (data >> uint(i)) & 1
		space := zeroSpace
		if bit == 1 {
			space = oneSpace
		}
		pairs = append(pairs, pulse.Pair{Mark: bitMark, Space: space})
	}
	pairs = append(pairs, pulse.Pair{Mark: bitMark, Space: 0})
	return pulse.Buffer{Pairs: pairs}
}

// scaleUs applies a percentage offset to a duration, e.g. scaleUs(9000, 120) == 10800.
func scaleUs(us, pct int) int {
	return us * pct / 100
}
