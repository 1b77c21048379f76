package decode

import (
	"github.com/birchlabs/irengine/internal/ircode"
	"github.com/birchlabs/irengine/internal/protocol"
	"github.com/birchlabs/irengine/internal/pulse"
)

// levelRun is one contiguous active or idle run, flattened out of a
// pulse.Buffer's alternating Mark/Space pairs. Biphase/Manchester
// decoding (RC5, RC6) needs to reason in half-bit units that don't
// align with pair boundaries, so the cascade's usual pair-at-a-time
// matching doesn't apply here (§4.C step 6).
type levelRun struct {
	us     int
	active bool
}

func flattenLevels(buf pulse.Buffer) []levelRun {
	runs := make([]levelRun, 0, len(buf.Pairs)*2)
	for _, p := range buf.Pairs {
		if p.Mark > 0 {
			runs = append(runs, levelRun{p.Mark, true})
		}
		if p.Space > 0 {
			runs = append(runs, levelRun{p.Space, false})
		}
	}
	return runs
}

// halfUnitCursor walks a level-run stream half-bit-unit at a time,
// splitting a run that spans more than one half-unit rather than
// requiring pair boundaries to line up with bit boundaries.
type halfUnitCursor struct {
	runs      []levelRun
	idx       int
	remaining int
}

func newHalfUnitCursor(runs []levelRun) *halfUnitCursor {
	c := &halfUnitCursor{runs: runs}
	if len(runs) > 0 {
		c.remaining = runs[0].us
	}
	return c
}

// next returns the level active for the next halfUnit-long slice of
// the stream and advances the cursor. ok is false once the stream is
// exhausted or the current run is too short to cover a half-unit
// within tolerance.
func (c *halfUnitCursor) next(halfUnit, tolerancePercent int) (level bool, ok bool) {
	if c.idx >= len(c.runs) {
		return false, false
	}
	slack := halfUnit * tolerancePercent / 100
	if c.remaining < halfUnit-slack {
		return false, false
	}
	level = c.runs[c.idx].active
	c.remaining -= halfUnit
	if c.remaining <= slack {
		c.idx++
		if c.idx < len(c.runs) {
			c.remaining = c.runs[c.idx].us
		}
	}
	return level, true
}

// decodeBiphaseBit reads one bit as two consecutive half-units.
// Convention (internally consistent with appendBiphaseBit in the
// transmit package): a logical 1 is mark-then-space, a logical 0 is
// space-then-mark.
func decodeBiphaseBit(c *halfUnitCursor, halfUnit, tolerancePercent int) (bit int, ok bool) {
	first, ok := c.next(halfUnit, tolerancePercent)
	if !ok {
		return 0, false
	}
	second, ok := c.next(halfUnit, tolerancePercent)
	if !ok {
		return 0, false
	}
	if first == second {
		return 0, false
	}
	if first { // mark then space
		return 1, true
	}
	return 0, true // space then mark
}

// DecodeRC5 implements the headerless RC5 decoder: 2 start bits
// (both required to be 1), a toggle bit, 5-bit address, 6-bit command.
func DecodeRC5(buf pulse.Buffer) (ircode.Code, error) {
	c, ok := protocol.Lookup(protocol.RC5)
	if !ok {
		return ircode.Code{}, ircode.ErrDecodeFailed
	}
	halfUnit := c.BitMark
	cursor := newHalfUnitCursor(flattenLevels(buf))

	var bits []int
	for i := 0; i < c.NominalBits; i++ {
		bit, ok := decodeBiphaseBit(cursor, halfUnit, defaultTolerance)
		if !ok {
			return ircode.Code{}, ircode.ErrDecodeFailed
		}
		bits = append(bits, bit)
	}

	if bits[0] != 1 || bits[1] != 1 {
		return ircode.Code{}, ircode.ErrDecodeFailed
	}
	toggle := bits[2]
	var address, command uint32
	for i := 0; i < 5; i++ {
		address = address<<1 | uint32(bits[3+i])
	}
	for i := 0; i < 6; i++ {
		command = command<<1 | uint32(bits[8+i])
	}

	var data uint64
	for _, b := range bits {
		data = data<<1 | uint64(b)
	}

	flags := ircode.Flag(0)
	if toggle == 1 {
		flags |= ircode.FlagToggleBit
	}

	return ircode.Code{
		Protocol:  protocol.RC5,
		Data:      data,
		Bits:      c.NominalBits,
		Address:   address,
		Command:   command,
		Flags:     flags,
		CarrierHz: c.CarrierKHz * 1000,
	}, nil
}

// DecodeRC6 implements the RC6 decoder: a 2666/889 leader, a start bit
// of 1, 3 mode bits, a double-length toggle bit, 8-bit address, 8-bit
// command (§4.C step 6).
func DecodeRC6(buf pulse.Buffer) (ircode.Code, error) {
	c, ok := protocol.Lookup(protocol.RC6)
	if !ok {
		return ircode.Code{}, ircode.ErrDecodeFailed
	}
	if !matchHeader(buf, 0, c.HeaderMark, c.HeaderSpace, defaultTolerance) {
		return ircode.Code{}, ircode.ErrDecodeFailed
	}

	halfUnit := c.BitMark
	runs := flattenLevels(buf)
	// Skip the header's leader mark+space runs (already validated above).
	if len(runs) < 2 {
		return ircode.Code{}, ircode.ErrDecodeFailed
	}
	cursor := newHalfUnitCursor(runs[2:])

	startBit, ok := decodeBiphaseBit(cursor, halfUnit, defaultTolerance)
	if !ok || startBit != 1 {
		return ircode.Code{}, ircode.ErrDecodeFailed
	}

	var mode uint32
	for i := 0; i < 3; i++ {
		bit, ok := decodeBiphaseBit(cursor, halfUnit, defaultTolerance)
		if !ok {
			return ircode.Code{}, ircode.ErrDecodeFailed
		}
		mode = mode<<1 | uint32(bit)
	}

	// Toggle bit is double-length (2 full units, 4 half-units).
	t1, ok := decodeBiphaseBit(cursor, 2*halfUnit, defaultTolerance)
	if !ok {
		return ircode.Code{}, ircode.ErrDecodeFailed
	}

	var address, command uint32
	for i := 0; i < 8; i++ {
		bit, ok := decodeBiphaseBit(cursor, halfUnit, defaultTolerance)
		if !ok {
			return ircode.Code{}, ircode.ErrDecodeFailed
		}
		address = address<<1 | uint32(bit)
	}
	for i := 0; i < 8; i++ {
		bit, ok := decodeBiphaseBit(cursor, halfUnit, defaultTolerance)
		if !ok {
			return ircode.Code{}, ircode.ErrDecodeFailed
		}
		command = command<<1 | uint32(bit)
	}

	data := uint64(mode)<<16 | uint64(address)<<8 | uint64(command)
	flags := ircode.Flag(0)
	if t1 == 1 {
		flags |= ircode.FlagToggleBit
	}

	return ircode.Code{
		Protocol:  protocol.RC6,
		Data:      data,
		Bits:      c.NominalBits,
		Address:   address,
		Command:   command,
		Flags:     flags,
		CarrierHz: c.CarrierKHz * 1000,
	}, nil
}
