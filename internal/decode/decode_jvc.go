package decode

import (
	"github.com/birchlabs/irengine/internal/ircode"
	"github.com/birchlabs/irengine/internal/protocol"
	"github.com/birchlabs/irengine/internal/pulse"
)

// DecodeJVC implements the JVC 16-bit decoder: 8-bit address then
// 8-bit command, LSB-first pulse distance, no inverted-byte check.
func DecodeJVC(buf pulse.Buffer) (ircode.Code, error) {
	c, ok := protocol.Lookup(protocol.JVC)
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
	return ircode.Code{
		Protocol:  protocol.JVC,
		Data:      data,
		Bits:      c.NominalBits,
		Address:   uint32(data & 0xFF),
		Command:   uint32(data >> 8),
		CarrierHz: c.CarrierKHz * 1000,
	}, nil
}
