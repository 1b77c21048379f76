package decode

import (
	"github.com/birchlabs/irengine/internal/ircode"
	"github.com/birchlabs/irengine/internal/protocol"
	"github.com/birchlabs/irengine/internal/pulse"
)

// DecodeLG implements the 28-bit LG decoder: 8-bit address, 8-bit
// command, an 8-bit nibble-sum checksum (both nibbles equal to
// (address-nibbles + command-nibbles) mod 16), and 4 reserved bits.
// A checksum mismatch sets FlagParityFailed rather than rejecting the
// frame (§4.C step 5's general rule).
func DecodeLG(buf pulse.Buffer) (ircode.Code, error) {
	c, ok := protocol.Lookup(protocol.LG)
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
	command := byte(data >> 8)
	checksum := byte(data >> 16)

	out := ircode.Code{
		Protocol:  protocol.LG,
		Data:      data,
		Bits:      c.NominalBits,
		Address:   uint32(address),
		Command:   uint32(command),
		CarrierHz: c.CarrierKHz * 1000,
	}
	if !lgNibbleChecksumOK(address, command, checksum) {
		out.Flags |= ircode.FlagParityFailed
	}
	return out, nil
}

func lgNibbleChecksum(address, command byte) byte {
	sum := (address>>4)&0xF + (address&0xF) + (command>>4)&0xF + (command & 0xF)
	nibble := sum & 0xF
	return nibble<<4 | nibble
}

func lgNibbleChecksumOK(address, command, checksum byte) bool {
	return lgNibbleChecksum(address, command) == checksum
}
