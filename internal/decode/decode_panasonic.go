package decode

import (
	"github.com/birchlabs/irengine/internal/ircode"
	"github.com/birchlabs/irengine/internal/protocol"
	"github.com/birchlabs/irengine/internal/pulse"
)

// DecodePanasonic implements the 48-bit Panasonic/Kaseikyo decoder:
// 16-bit manufacturer code, 32-bit data, final byte an XOR checksum of
// the preceding five bytes. A checksum mismatch sets FlagParityFailed.
func DecodePanasonic(buf pulse.Buffer) (ircode.Code, error) {
	c, ok := protocol.Lookup(protocol.Panasonic)
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

	bytes := uint64ToBytesLSB(data, c.NominalBits)
	var xor byte
	for _, b := range bytes[:len(bytes)-1] {
		xor ^= b
	}

	out := ircode.Code{
		Protocol:  protocol.Panasonic,
		Data:      data,
		Bits:      c.NominalBits,
		Address:   uint32(data & 0xFFFF),
		Command:   uint32((data >> 16) & 0xFFFFFFFF),
		CarrierHz: c.CarrierKHz * 1000,
	}
	if xor != bytes[len(bytes)-1] {
		out.Flags |= ircode.FlagParityFailed
	}
	return out, nil
}
