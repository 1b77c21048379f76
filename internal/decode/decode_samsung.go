package decode

import (
	"github.com/birchlabs/irengine/internal/ircode"
	"github.com/birchlabs/irengine/internal/protocol"
	"github.com/birchlabs/irengine/internal/pulse"
)

// DecodeSamsung implements the Samsung 32-bit decoder: address sent
// twice (not inverted), then command and its inverse. Unlike NEC, a
// mismatch does not reject the frame — it sets FlagParityFailed
// (§4.C step 5's general rule; NEC is the documented exception).
func DecodeSamsung(buf pulse.Buffer) (ircode.Code, error) {
	return decodeSamsungLike(buf, protocol.Samsung)
}

// DecodeSamsung48 decodes the 48-bit Samsung variant: a 16-bit address
// packed LSB-first followed by a 16-bit command and its inverse, same
// header/bit timings as 32-bit Samsung.
func DecodeSamsung48(buf pulse.Buffer) (ircode.Code, error) {
	c, ok := protocol.Lookup(protocol.Samsung48)
	if !ok {
		return ircode.Code{}, ircode.ErrDecodeFailed
	}
	if buf.Len() < 1+c.NominalBits {
		return ircode.Code{}, ircode.ErrDecodeFailed
	}
	if !matchHeader(buf, 0, c.HeaderMark, c.HeaderSpace, defaultTolerance) {
		return ircode.Code{}, ircode.ErrDecodeFailed
	}
	data, _, ok := decodePulseDistanceBits(buf, 1, c.NominalBits, c.BitMark, c.OneSpace, c.ZeroSpace, defaultTolerance, false)
	if !ok {
		return ircode.Code{}, ircode.ErrDecodeFailed
	}

	out := ircode.Code{
		Protocol:  protocol.Samsung48,
		Data:      data,
		Bits:      c.NominalBits,
		CarrierHz: c.CarrierKHz * 1000,
	}

	command := uint16(data >> 16)
	commandInv := uint16(data >> 32)
	if command != ^commandInv {
		out.Flags |= ircode.FlagParityFailed
	}
	out.Command = uint32(command)
	out.Address = uint32(data & 0xFFFF)
	return out, nil
}

func decodeSamsungLike(buf pulse.Buffer, id protocol.ID) (ircode.Code, error) {
	c, ok := protocol.Lookup(id)
	if !ok {
		return ircode.Code{}, ircode.ErrDecodeFailed
	}
	if buf.Len() < 1+c.NominalBits {
		return ircode.Code{}, ircode.ErrDecodeFailed
	}
	if !matchHeader(buf, 0, c.HeaderMark, c.HeaderSpace, defaultTolerance) {
		return ircode.Code{}, ircode.ErrDecodeFailed
	}
	data, _, ok := decodePulseDistanceBits(buf, 1, c.NominalBits, c.BitMark, c.OneSpace, c.ZeroSpace, defaultTolerance, false)
	if !ok {
		return ircode.Code{}, ircode.ErrDecodeFailed
	}

	address := byte(data)
	addressDup := byte(data >> 8)
	command := byte(data >> 16)
	commandInv := byte(data >> 24)

	out := ircode.Code{
		Protocol:  id,
		Data:      data,
		Bits:      c.NominalBits,
		Address:   uint32(address),
		Command:   uint32(command),
		CarrierHz: c.CarrierKHz * 1000,
	}
	if address != addressDup || command != ^commandInv {
		out.Flags |= ircode.FlagParityFailed
	}
	return out, nil
}
