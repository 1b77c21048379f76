package transmit

import (
	"github.com/birchlabs/irengine/internal/ircode"
	"github.com/birchlabs/irengine/internal/protocol"
	"github.com/birchlabs/irengine/internal/pulse"
)

// appendBiphaseBit appends halves half-units of one level then halves
// half-units of the other, implementing the same convention as
// decodeBiphaseBit in the decode package: a logical 1 is mark-then-
// space, a logical 0 is space-then-mark. halves > 1 expresses RC6's
// double-length toggle bit.
func appendBiphaseBit(levels []bool, bit int, halves int) []bool {
	first, second := true, false
	if bit == 0 {
		first, second = false, true
	}
	for i := 0; i < halves; i++ {
		levels = append(levels, first)
	}
	for i := 0; i < halves; i++ {
		levels = append(levels, second)
	}
	return levels
}

// levelsToPairs run-length encodes an active/idle half-unit stream
// into alternating pulse.Pair{Mark, Space} values, the inverse of
// flattenLevels. The stream must start active (true); every biphase
// frame built here does, since RC5/RC6 both begin with an active start
// bit's first half (or, for RC6, the header mark precedes it).
func levelsToPairs(levels []bool, halfUnit int) []pulse.Pair {
	type run struct {
		active bool
		halves int
	}
	var runs []run
	for _, lvl := range levels {
		if len(runs) > 0 && runs[len(runs)-1].active == lvl {
			runs[len(runs)-1].halves++
			continue
		}
		runs = append(runs, run{active: lvl, halves: 1})
	}

	pairs := make([]pulse.Pair, 0, (len(runs)+1)/2)
	for i := 0; i < len(runs); {
		mark := runs[i].halves * halfUnit
		i++
		space := 0
		if i < len(runs) {
			space = runs[i].halves * halfUnit
			i++
		}
		pairs = append(pairs, pulse.Pair{Mark: mark, Space: space})
	}
	if len(pairs) > 0 {
		pairs[len(pairs)-1].Space = 0
	}
	return pairs
}

// encodeRC5 builds the headerless RC5 frame: two 1-valued start bits, a
// toggle bit, 5-bit address, 6-bit command, matching DecodeRC5's field
// layout.
func encodeRC5(code ircode.Code) (pulse.Buffer, error) {
	c, ok := protocol.Lookup(protocol.RC5)
	if !ok {
		return pulse.Buffer{}, ircode.ErrUnsupported
	}
	toggle := 0
	if code.Flags.Has(ircode.FlagToggleBit) {
		toggle = 1
	}

	var levels []bool
	levels = appendBiphaseBit(levels, 1, 1)
	levels = appendBiphaseBit(levels, 1, 1)
	levels = appendBiphaseBit(levels, toggle, 1)
	for i := 4; i >= 0; i-- {
		levels = appendBiphaseBit(levels, int((code.Address>>uint(i))&1), 1)
	}
	for i := 5; i >= 0; i-- {
		levels = appendBiphaseBit(levels, int((code.Command>>uint(i))&1), 1)
	}

	return pulse.Buffer{Pairs: levelsToPairs(levels, c.BitMark)}, nil
}

// encodeRC6 builds the RC6 frame: the 2666/889 leader header, a
// 1-valued start bit, 3 mode bits, a double-length toggle bit, 8-bit
// address, 8-bit command, matching DecodeRC6's field layout. Mode is
// read back out of Code.Data's bits 16..18, the same packing
// DecodeRC6 produces.
func encodeRC6(code ircode.Code) (pulse.Buffer, error) {
	c, ok := protocol.Lookup(protocol.RC6)
	if !ok {
		return pulse.Buffer{}, ircode.ErrUnsupported
	}
	mode := uint32(code.Data>>16) & 0x7
	toggle := 0
	if code.Flags.Has(ircode.FlagToggleBit) {
		toggle = 1
	}

	var levels []bool
	levels = appendBiphaseBit(levels, 1, 1)
	for i := 2; i >= 0; i-- {
		levels = appendBiphaseBit(levels, int((mode>>uint(i))&1), 1)
	}
	levels = appendBiphaseBit(levels, toggle, 2)
	for i := 7; i >= 0; i-- {
		levels = appendBiphaseBit(levels, int((code.Address>>uint(i))&1), 1)
	}
	for i := 7; i >= 0; i-- {
		levels = appendBiphaseBit(levels, int((code.Command>>uint(i))&1), 1)
	}

	body := levelsToPairs(levels, c.BitMark)
	pairs := append([]pulse.Pair{{Mark: c.HeaderMark, Space: c.HeaderSpace}}, body...)
	return pulse.Buffer{Pairs: pairs}, nil
}
