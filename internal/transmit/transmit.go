// Package transmit implements the encoder/transmitter half of §4.F:
// carrier selection, the NEC/Samsung family framing encoders, the Raw
// replay path, the NEC-encoder compatibility fallback, and the
// hardware-completion wait with its 1-second watchdog.
package transmit

import (
	"context"
	"errors"
	"time"

	"github.com/birchlabs/irengine/internal/ircode"
	"github.com/birchlabs/irengine/internal/protocol"
	"github.com/birchlabs/irengine/internal/pulse"
)

// Sink is the pulse-sink external interface from §6: it accepts a
// carrier configuration request and a raw pulse-buffer for emission,
// then signals hardware completion.
type Sink interface {
	// SetCarrier configures the carrier frequency (Hz) and duty cycle
	// (a fraction in [0,1]) ahead of emission.
	SetCarrier(ctx context.Context, freqHz int, dutyFraction float64) error
	// Emit enqueues buf's symbols for transmission.
	Emit(ctx context.Context, buf pulse.Buffer) error
	// WaitComplete blocks until the hardware signals the queued symbols
	// have been fully transmitted, or ctx is done.
	WaitComplete(ctx context.Context) error
}

// Watchdog bounds how long Transmit waits for hardware completion
// before giving up (§5: "block until the hardware sink signals
// completion or a 1-second watchdog expires").
const Watchdog = 1 * time.Second

// ErrWatchdogExpired is returned when the hardware does not signal
// completion within Watchdog.
var ErrWatchdogExpired = errors.New("transmit: hardware completion watchdog expired")

// Transmit implements §4.F's three steps: resolve and apply the
// carrier, encode the code into pulse-pairs, emit them, then block for
// completion. Concurrent transmissions are not supported by this
// function; callers must serialise per §5.
func Transmit(ctx context.Context, sink Sink, code ircode.Code) error {
	freqHz := code.EffectiveCarrierHz()
	duty := float64(code.EffectiveDutyPercent()) / 100.0
	if err := sink.SetCarrier(ctx, freqHz, duty); err != nil {
		return err
	}

	buf, err := Encode(code)
	if err != nil {
		return err
	}

	if err := sink.Emit(ctx, buf); err != nil {
		return err
	}

	waitCtx, cancel := context.WithTimeout(ctx, Watchdog)
	defer cancel()
	if err := sink.WaitComplete(waitCtx); err != nil {
		if waitCtx.Err() == context.DeadlineExceeded {
			return ErrWatchdogExpired
		}
		return err
	}
	return nil
}

// Encode implements §4.F step 2. A code carrying its own Raw buffer
// (Protocol == Raw, or an AC protocol whose encoder produced a raw
// frame) transmits verbatim. NEC-family protocols (NEC, Apple, Onkyo)
// and the Samsung family get dedicated framing; RC5/RC6 get the
// biphase framing matching their decoder's convention; everything
// else reuses the NEC encoder on the packed data word, a documented
// compatibility fallback.
func Encode(code ircode.Code) (pulse.Buffer, error) {
	if code.Raw != nil {
		return pulse.Buffer{Pairs: append([]pulse.Pair(nil), code.Raw...)}, nil
	}

	switch code.Protocol {
	case protocol.NEC, protocol.Apple, protocol.Onkyo:
		return encodeNECFamily(code)
	case protocol.Samsung, protocol.Samsung48:
		return encodeSamsungFamily(code)
	case protocol.RC5:
		return encodeRC5(code)
	case protocol.RC6:
		return encodeRC6(code)
	default:
		return encodeNECFamily(code)
	}
}

func effectiveBits(code ircode.Code, fallback int) int {
	if code.Bits > 0 {
		return code.Bits
	}
	return fallback
}

// encodeNECFamily builds the 9000/4500 header, 560µs-mark
// pulse-distance body, and 560µs stop mark described in §4.F step 2.
// It is also the compatibility fallback for any protocol without a
// dedicated encoder.
func encodeNECFamily(code ircode.Code) (pulse.Buffer, error) {
	c, ok := protocol.Lookup(protocol.NEC)
	if !ok {
		return pulse.Buffer{}, ircode.ErrUnsupported
	}
	nbits := effectiveBits(code, c.NominalBits)
	return encodePulseDistanceFrame(c.HeaderMark, c.HeaderSpace, c.BitMark, c.OneSpace, c.ZeroSpace, code.Data, nbits), nil
}

// encodeSamsungFamily reuses NEC's bit timings and stop mark but with
// the Samsung family's 4500/4500 header, per §4.F step 2.
func encodeSamsungFamily(code ircode.Code) (pulse.Buffer, error) {
	nec, ok := protocol.Lookup(protocol.NEC)
	if !ok {
		return pulse.Buffer{}, ircode.ErrUnsupported
	}
	samsung, ok := protocol.Lookup(protocol.Samsung)
	if !ok {
		return pulse.Buffer{}, ircode.ErrUnsupported
	}
	nbits := effectiveBits(code, samsung.NominalBits)
	return encodePulseDistanceFrame(samsung.HeaderMark, samsung.HeaderSpace, nec.BitMark, nec.OneSpace, nec.ZeroSpace, code.Data, nbits), nil
}

// encodePulseDistanceFrame emits a header pair followed by nbits
// LSB-first pulse-distance symbols and a closing stop mark, the
// inverse of decodePulseDistanceBits.
func encodePulseDistanceFrame(headerMark, headerSpace, bitMark, oneSpace, zeroSpace int, data uint64, nbits int) pulse.Buffer {
	pairs := make([]pulse.Pair, 0, nbits+2)
	if headerMark > 0 {
		pairs = append(pairs, pulse.Pair{Mark: headerMark, Space: headerSpace})
	}
	for i := 0; i < nbits; i++ {
		bit := (data >> uint(i)) & 1
		space := zeroSpace
		if bit == 1 {
			space = oneSpace
		}
		pairs = append(pairs, pulse.Pair{Mark: bitMark, Space: space})
	}
	pairs = append(pairs, pulse.Pair{Mark: bitMark, Space: 0})
	return pulse.Buffer{Pairs: pairs}
}
