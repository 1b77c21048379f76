// Package ircode is the learned/decoded artifact shared by every
// decoder, encoder, the learner, the AC state machine, and the
// persistent stores: protocol.ID plus its packed data or raw buffer.
package ircode

import (
	"github.com/birchlabs/irengine/internal/protocol"
	"github.com/birchlabs/irengine/internal/pulse"
)

// Flag is the verification/shape bitset carried on every Code.
type Flag uint32

const (
	FlagRepeat Flag = 1 << iota
	FlagAutoRepeat
	FlagParityFailed
	FlagToggleBit
	FlagExtraInfo
	FlagExtendedAddress
	FlagOverflow
	FlagMSBFirst
)

func (f Flag) Has(bit Flag) bool { return f&bit != 0 }

// DefaultCarrierHz is used when neither the code nor the protocol
// catalogue specifies a carrier frequency.
const DefaultCarrierHz = 38000

// DefaultDutyPercent is the duty cycle applied when a code or sink
// configuration does not request a specific one.
const DefaultDutyPercent = 33

// Code is the learned or decoded artifact. When Protocol is Raw, Raw is
// present and non-empty and Data/Bits have no meaning; for any other
// protocol, Raw is absent unless the protocol is a long-frame AC
// protocol whose encoder produced a raw buffer for transmission.
type Code struct {
	Protocol protocol.ID

	Data uint64 // packed data word, up to 64 bits, for short-frame protocols
	Bits int    // bit count

	Raw []pulse.Pair // owned raw buffer; present iff Protocol == Raw or a long AC frame

	Address uint32
	Command uint32

	Flags Flag

	CarrierHz   int
	DutyPercent int

	// Verification metadata, populated by the learner (package learn).
	MatchCount      int
	NoiseFiltered   bool
	GapTrimmed      bool
	CarrierDetected bool
}

// EffectiveCarrierHz resolves the carrier per §4.F step 1: the code's
// own field, else the protocol catalogue's, else 38kHz.
func (c Code) EffectiveCarrierHz() int {
	if c.CarrierHz > 0 {
		return c.CarrierHz
	}
	if constants, ok := protocol.Lookup(c.Protocol); ok && constants.CarrierKHz > 0 {
		return constants.CarrierKHz * 1000
	}
	return DefaultCarrierHz
}

// EffectiveDutyPercent resolves the duty cycle, defaulting to 33%.
func (c Code) EffectiveDutyPercent() int {
	if c.DutyPercent > 0 {
		return c.DutyPercent
	}
	return DefaultDutyPercent
}

// Clone deep-copies c, giving the raw buffer (if any) independent
// backing storage. Every Code with Protocol==Raw owns its buffer for
// its entire lifetime; callers must never alias two Codes' Raw slices.
func (c Code) Clone() Code {
	out := c
	if c.Raw != nil {
		out.Raw = make([]pulse.Pair, len(c.Raw))
		copy(out.Raw, c.Raw)
	}
	return out
}

// Equal compares two codes field-by-field, including raw buffer
// content, per §8 property 12 (action store stability).
func (c Code) Equal(o Code) bool {
	if c.Protocol != o.Protocol || c.Data != o.Data || c.Bits != o.Bits ||
		c.Address != o.Address || c.Command != o.Command || c.Flags != o.Flags ||
		c.CarrierHz != o.CarrierHz || c.DutyPercent != o.DutyPercent {
		return false
	}
	if len(c.Raw) != len(o.Raw) {
		return false
	}
	for i := range c.Raw {
		if c.Raw[i] != o.Raw[i] {
			return false
		}
	}
	return true
}

// Agrees implements the learner's multi-frame agreement test (§4.E
// Verify): fixed-protocol codes compare (protocol, data, bits); Raw
// codes compare length and per-timing values within tolerancePercent.
func (c Code) Agrees(o Code, tolerancePercent int) bool {
	if c.Protocol != o.Protocol {
		return false
	}
	if c.Protocol == protocol.Raw {
		if len(c.Raw) != len(o.Raw) {
			return false
		}
		for i := range c.Raw {
			if !pulse.MatchesWithin(o.Raw[i].Mark, c.Raw[i].Mark, tolerancePercent) {
				return false
			}
			if !pulse.MatchesWithin(o.Raw[i].Space, c.Raw[i].Space, tolerancePercent) {
				return false
			}
		}
		return true
	}
	return c.Data == o.Data && c.Bits == o.Bits
}
