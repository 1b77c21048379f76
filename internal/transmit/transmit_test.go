package transmit

import (
	"context"
	"testing"
	"time"

	"github.com/birchlabs/irengine/internal/decode"
	"github.com/birchlabs/irengine/internal/ircode"
	"github.com/birchlabs/irengine/internal/protocol"
	"github.com/birchlabs/irengine/internal/pulse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	carrierHz  int
	dutyFrac   float64
	emitted    pulse.Buffer
	completeOK bool
}

func (f *fakeSink) SetCarrier(ctx context.Context, freqHz int, dutyFraction float64) error {
	f.carrierHz = freqHz
	f.dutyFrac = dutyFraction
	return nil
}

func (f *fakeSink) Emit(ctx context.Context, buf pulse.Buffer) error {
	f.emitted = buf.Clone()
	return nil
}

func (f *fakeSink) WaitComplete(ctx context.Context) error {
	if f.completeOK {
		return nil
	}
	<-ctx.Done()
	return ctx.Err()
}

func necWord(address, command byte) uint64 {
	return uint64(address) | uint64(^address)<<8 | uint64(command)<<16 | uint64(^command)<<24
}

// TestEncode_NECRoundTripsThroughDecoder proves the encoder's output
// decodes back to the same address/command via DecodeNEC.
func TestEncode_NECRoundTripsThroughDecoder(t *testing.T) {
	code := ircode.Code{Protocol: protocol.NEC, Data: necWord(0x10, 0x20), Bits: 32}
	buf, err := Encode(code)
	require.NoError(t, err)

	decoded, err := decode.DecodeNEC(buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x10), decoded.Address)
	assert.Equal(t, uint32(0x20), decoded.Command)
}

// TestEncode_CompatibilityFallbackUsesNECFraming covers the
// "reuse the NEC encoder on the packed data word" rule for a protocol
// with no dedicated encoder (Denon).
func TestEncode_CompatibilityFallbackUsesNECFraming(t *testing.T) {
	code := ircode.Code{Protocol: protocol.Denon, Data: 0x1234, Bits: 15}
	buf, err := Encode(code)
	require.NoError(t, err)

	nec, _ := protocol.Lookup(protocol.NEC)
	require.NotEmpty(t, buf.Pairs)
	assert.Equal(t, nec.HeaderMark, buf.Pairs[0].Mark)
	assert.Equal(t, nec.HeaderSpace, buf.Pairs[0].Space)
}

func TestEncode_RawPassesThroughVerbatim(t *testing.T) {
	raw := []pulse.Pair{{Mark: 100, Space: 200}, {Mark: 300, Space: 0}}
	code := ircode.Code{Protocol: protocol.Raw, Raw: raw}
	buf, err := Encode(code)
	require.NoError(t, err)
	assert.Equal(t, raw, buf.Pairs)
}

// TestEncode_RC5RoundTripsThroughDecoder covers the biphase encoder
// against DecodeRC5, proving the mark-then-space/space-then-mark
// convention is consistent between encode and decode.
func TestEncode_RC5RoundTripsThroughDecoder(t *testing.T) {
	code := ircode.Code{Protocol: protocol.RC5, Address: 0x11, Command: 0x2A, Flags: ircode.FlagToggleBit}
	buf, err := Encode(code)
	require.NoError(t, err)

	decoded, err := decode.DecodeRC5(buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x11), decoded.Address)
	assert.Equal(t, uint32(0x2A), decoded.Command)
	assert.True(t, decoded.Flags.Has(ircode.FlagToggleBit))
}

// TestEncode_RC6RoundTripsThroughDecoder exercises the double-length
// toggle bit path in both directions.
func TestEncode_RC6RoundTripsThroughDecoder(t *testing.T) {
	code := ircode.Code{Protocol: protocol.RC6, Data: uint64(0x5) << 16, Address: 0x7F, Command: 0x3C}
	buf, err := Encode(code)
	require.NoError(t, err)

	decoded, err := decode.DecodeRC6(buf)
	require.NoError(t, err)
	assert.Equal(t, uint32(0x7F), decoded.Address)
	assert.Equal(t, uint32(0x3C), decoded.Command)
}

func TestTransmit_SetsCarrierAndEmits(t *testing.T) {
	sink := &fakeSink{completeOK: true}
	code := ircode.Code{Protocol: protocol.NEC, Data: necWord(0x01, 0x02), Bits: 32}

	err := Transmit(context.Background(), sink, code)
	require.NoError(t, err)
	assert.Equal(t, 38000, sink.carrierHz)
	assert.NotEmpty(t, sink.emitted.Pairs)
}

// TestTransmit_WatchdogExpires covers §5's 1-second watchdog: a sink
// that never signals completion causes Transmit to give up instead of
// blocking forever.
func TestTransmit_WatchdogExpires(t *testing.T) {
	sink := &fakeSink{completeOK: false}
	code := ircode.Code{Protocol: protocol.Raw, Raw: []pulse.Pair{{Mark: 100, Space: 0}}}

	start := time.Now()
	err := Transmit(context.Background(), sink, code)
	elapsed := time.Since(start)

	assert.ErrorIs(t, err, ErrWatchdogExpired)
	assert.GreaterOrEqual(t, elapsed, Watchdog)
	assert.Less(t, elapsed, 2*Watchdog)
}
