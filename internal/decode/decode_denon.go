package decode

import (
	"github.com/birchlabs/irengine/internal/ircode"
	"github.com/birchlabs/irengine/internal/protocol"
	"github.com/birchlabs/irengine/internal/pulse"
)

// DecodeDenon implements the headerless 15-bit Denon decoder: 5-bit
// address, 8-bit command, 2 trailer bits, pulse distance LSB-first.
func DecodeDenon(buf pulse.Buffer) (ircode.Code, error) {
	c, ok := protocol.Lookup(protocol.Denon)
	if !ok {
		return ircode.Code{}, ircode.ErrDecodeFailed
	}
	if buf.Len() < c.NominalBits {
		return ircode.Code{}, ircode.ErrDecodeFailed
	}
	data, _, ok := decodePulseDistanceBits(buf, 0, c.NominalBits, c.BitMark, c.OneSpace, c.ZeroSpace, defaultTolerance, false)
	if !ok {
		return ircode.Code{}, ircode.ErrDecodeFailed
	}
	return ircode.Code{
		Protocol:  protocol.Denon,
		Data:      data,
		Bits:      c.NominalBits,
		Address:   uint32(data & 0x1F),
		Command:   uint32((data >> 5) & 0xFF),
		CarrierHz: c.CarrierKHz * 1000,
	}, nil
}
