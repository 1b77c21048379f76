package decode

import (
	"github.com/birchlabs/irengine/internal/ircode"
	"github.com/birchlabs/irengine/internal/protocol"
	"github.com/birchlabs/irengine/internal/pulse"
)

// DecodeWhynter implements the Whynter A/C remote's 32-bit decoder:
// same skeleton as NEC-family framing but distinct timings, no
// inverted-byte check.
func DecodeWhynter(buf pulse.Buffer) (ircode.Code, error) {
	return decodeGenericPulseDistance(buf, protocol.Whynter, false)
}

// DecodeLego implements the LEGO Power Functions 16-bit decoder.
func DecodeLego(buf pulse.Buffer) (ircode.Code, error) {
	return decodeGenericPulseDistance(buf, protocol.LegoPF, false)
}

// DecodeBoseWave implements the Bose Wave radio 16-bit decoder.
func DecodeBoseWave(buf pulse.Buffer) (ircode.Code, error) {
	return decodeGenericPulseDistance(buf, protocol.BoseWave, false)
}

// DecodeBangOlufsen implements the Bang & Olufsen 455kHz pulse-width
// decoder (§9 open question: given a decoder since the catalogue
// already characterizes its timings).
func DecodeBangOlufsen(buf pulse.Buffer) (ircode.Code, error) {
	c, ok := protocol.Lookup(protocol.BangOlufsen)
	if !ok {
		return ircode.Code{}, ircode.ErrDecodeFailed
	}
	if buf.Len() < 1+c.NominalBits {
		return ircode.Code{}, ircode.ErrDecodeFailed
	}
	if !matchHeader(buf, 0, c.HeaderMark, c.HeaderSpace, defaultTolerance) {
		return ircode.Code{}, ircode.ErrDecodeFailed
	}
	data, _, ok := decodePulseWidthBits(buf, 1, c.NominalBits, 2*c.BitMark, c.BitMark, defaultTolerance, false)
	if !ok {
		return ircode.Code{}, ircode.ErrDecodeFailed
	}
	return ircode.Code{
		Protocol:  protocol.BangOlufsen,
		Data:      data,
		Bits:      c.NominalBits,
		CarrierHz: c.CarrierKHz * 1000,
	}, nil
}

// DecodeMagiQuest implements the MagiQuest 56-bit headerless
// pulse-width decoder.
func DecodeMagiQuest(buf pulse.Buffer) (ircode.Code, error) {
	c, ok := protocol.Lookup(protocol.MagiQuest)
	if !ok {
		return ircode.Code{}, ircode.ErrDecodeFailed
	}
	if buf.Len() < c.NominalBits {
		return ircode.Code{}, ircode.ErrDecodeFailed
	}
	data, _, ok := decodePulseWidthBits(buf, 0, c.NominalBits, 2*c.BitMark, c.BitMark, defaultTolerance, true)
	if !ok {
		return ircode.Code{}, ircode.ErrDecodeFailed
	}
	return ircode.Code{
		Protocol:  protocol.MagiQuest,
		Data:      data,
		Bits:      c.NominalBits,
		CarrierHz: c.CarrierKHz * 1000,
	}, nil
}

// DecodeFAST is intentionally a stub: FAST's real-world framing uses
// sub-microsecond variable-length symbols that this engine's
// tolerance-based mark/space matcher cannot characterize reliably.
// Per spec.md's own non-goal ("decoding of every long-tail
// manufacturer protocol... the universal decoder is the fallback"),
// FAST buffers fall through to the universal classifier instead.
func DecodeFAST(buf pulse.Buffer) (ircode.Code, error) {
	return ircode.Code{}, ircode.ErrDecodeFailed
}

func decodeGenericPulseDistance(buf pulse.Buffer, id protocol.ID, msbFirst bool) (ircode.Code, error) {
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
	data, _, ok := decodePulseDistanceBits(buf, 1, c.NominalBits, c.BitMark, c.OneSpace, c.ZeroSpace, defaultTolerance, msbFirst)
	if !ok {
		return ircode.Code{}, ircode.ErrDecodeFailed
	}
	return ircode.Code{
		Protocol:  id,
		Data:      data,
		Bits:      c.NominalBits,
		CarrierHz: c.CarrierKHz * 1000,
	}, nil
}
