// Package decode holds the fixed-protocol decoder cascade (§4.C): one
// function per named protocol sharing a common header/bit-packing
// skeleton, plus the table-driven cascade dispatch (§9 design note:
// "replace the chain of conditionals with a table of decoders and a
// fixed priority").
package decode

import (
	"github.com/birchlabs/irengine/internal/pulse"
)

const defaultTolerance = pulse.DefaultTolerancePercent

// matchHeader checks pair i's mark and space against the protocol's
// header timings. A zero header mark always matches (headerless
// protocol).
func matchHeader(buf pulse.Buffer, i int, headerMark, headerSpace, tolerance int) bool {
	if headerMark == 0 {
		return true
	}
	if i >= len(buf.Pairs) {
		return false
	}
	p := buf.Pairs[i]
	return pulse.MatchMark(p, headerMark, tolerance) && pulse.MatchSpace(p, headerSpace, tolerance)
}

// packBit ORs bit into acc at position pos (LSB-first) or shifts
// acc left and ORs bit (MSB-first), per §4.C step 4.
func packBit(acc uint64, bit int, pos int, msbFirst bool) uint64 {
	if msbFirst {
		return (acc << 1) | uint64(bit)
	}
	return acc | (uint64(bit) << uint(pos))
}

// decodePulseDistanceBits decodes nbits data symbols starting at
// buf.Pairs[start], where the mark is constant (bitMark) and the space
// distinguishes a one (oneSpace) from a zero (zeroSpace). Returns the
// packed word, the index just past the consumed pairs, and whether
// every symbol matched within tolerance.
func decodePulseDistanceBits(buf pulse.Buffer, start, nbits, bitMark, oneSpace, zeroSpace, tolerance int, msbFirst bool) (uint64, int, bool) {
	var data uint64
	i := start
	for bitIdx := 0; bitIdx < nbits; bitIdx++ {
		if i >= len(buf.Pairs) {
			return 0, i, false
		}
		p := buf.Pairs[i]
		if !pulse.MatchMark(p, bitMark, tolerance) {
			return 0, i, false
		}
		var bit int
		switch {
		case pulse.MatchSpace(p, oneSpace, tolerance):
			bit = 1
		case pulse.MatchSpace(p, zeroSpace, tolerance):
			bit = 0
		default:
			return 0, i, false
		}
		data = packBit(data, bit, bitIdx, msbFirst)
		i++
	}
	return data, i, true
}

// decodePulseWidthBits decodes nbits data symbols where the space is
// constant and the mark distinguishes a one (oneMark) from a zero
// (zeroMark).
func decodePulseWidthBits(buf pulse.Buffer, start, nbits, oneMark, zeroMark, tolerance int, msbFirst bool) (uint64, int, bool) {
	var data uint64
	i := start
	for bitIdx := 0; bitIdx < nbits; bitIdx++ {
		if i >= len(buf.Pairs) {
			return 0, i, false
		}
		p := buf.Pairs[i]
		var bit int
		switch {
		case pulse.MatchMark(p, oneMark, tolerance):
			bit = 1
		case pulse.MatchMark(p, zeroMark, tolerance):
			bit = 0
		default:
			return 0, i, false
		}
		data = packBit(data, bit, bitIdx, msbFirst)
		i++
	}
	return data, i, true
}

// twosComplementChecksumOK reports whether the final byte of data is
// the two's complement of the sum of the preceding bytes.
func twosComplementChecksumOK(bytes []byte) bool {
	if len(bytes) < 2 {
		return false
	}
	var sum byte
	for _, b := range bytes[:len(bytes)-1] {
		sum += b
	}
	return byte(-sum) == bytes[len(bytes)-1]
}

// uint64ToBytesLSB splits a packed word of nbits (rounded up to whole
// bytes) into little-endian byte order, bit 0 of the word landing in
// byte 0's bit 0 — the order the NEC family's inverted-byte checksum
// is defined over.
func uint64ToBytesLSB(data uint64, nbits int) []byte {
	nbytes := (nbits + 7) / 8
	out := make([]byte, nbytes)
	for i := 0; i < nbytes; i++ {
		out[i] = byte(data >> uint(8*i))
	}
	return out
}
