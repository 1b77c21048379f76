package acstate

import (
	"context"
	"testing"

	"github.com/birchlabs/irengine/internal/kvstore"
	"github.com/birchlabs/irengine/internal/protocol"
	"github.com/birchlabs/irengine/internal/pulse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSink struct {
	emitted pulse.Buffer
	fail    bool
}

func (f *fakeSink) SetCarrier(ctx context.Context, freqHz int, dutyFraction float64) error {
	return nil
}
func (f *fakeSink) Emit(ctx context.Context, buf pulse.Buffer) error {
	if f.fail {
		return assert.AnError
	}
	f.emitted = buf
	return nil
}
func (f *fakeSink) WaitComplete(ctx context.Context) error { return nil }

func newTestAC(t *testing.T) *AC {
	t.Helper()
	store := kvstore.NewMemStore()
	ac := New(store)
	require.NoError(t, ac.Init())
	return ac
}

func TestAC_EncodeRejectsUnconfigured(t *testing.T) {
	ac := newTestAC(t)
	_, err := ac.Encode()
	assert.ErrorIs(t, err, ErrUnconfigured)
}

func TestAC_SetProtocolThenEncodeSucceeds(t *testing.T) {
	ac := newTestAC(t)
	require.NoError(t, ac.SetProtocol(protocol.Carrier, ""))

	code, err := ac.Encode()
	require.NoError(t, err)
	assert.Equal(t, protocol.Carrier, code.Protocol)
	assert.NotEmpty(t, code.Raw)
}

func TestAC_SetProtocolRejectsNonACProtocol(t *testing.T) {
	ac := newTestAC(t)
	err := ac.SetProtocol(protocol.NEC, "")
	assert.ErrorIs(t, err, ErrInvalidProtocol)
}

func TestAC_SetTemperatureValidatesRange(t *testing.T) {
	ac := newTestAC(t)
	require.NoError(t, ac.SetProtocol(protocol.Carrier, ""))
	sink := &fakeSink{}

	err := ac.SetTemperature(context.Background(), sink, 40)
	assert.ErrorIs(t, err, ErrInvalidTemperature)

	err = ac.SetTemperature(context.Background(), sink, 22)
	require.NoError(t, err)
	assert.Equal(t, 22, ac.GetState().TempC)
	assert.NotEmpty(t, sink.emitted.Pairs)
}

// TestAC_SetterMutatesEvenWhenTransmitFails covers the §4.G setter
// contract: a failed transmit does not revert the mutation but does
// not persist either.
func TestAC_SetterMutatesEvenWhenTransmitFails(t *testing.T) {
	ac := newTestAC(t)
	require.NoError(t, ac.SetProtocol(protocol.Carrier, ""))
	sink := &fakeSink{fail: true}

	err := ac.SetPower(context.Background(), sink, PowerOn)
	assert.Error(t, err)
	assert.Equal(t, PowerOn, ac.GetState().Power)

	// a fresh AC reading from the same store should NOT see the
	// unpersisted power change.
	reopened := New(ac.store)
	require.NoError(t, reopened.Init())
	assert.Equal(t, PowerOff, reopened.GetState().Power)
}

func TestAC_SetterNoopWhenValueUnchanged(t *testing.T) {
	ac := newTestAC(t)
	require.NoError(t, ac.SetProtocol(protocol.Carrier, ""))
	sink := &fakeSink{}
	require.NoError(t, ac.SetFan(context.Background(), sink, ac.GetState().Fan))
	assert.Empty(t, sink.emitted.Pairs) // no transmit attempted
}

func TestAC_InitLoadsPersistedState(t *testing.T) {
	store := kvstore.NewMemStore()
	ac := New(store)
	require.NoError(t, ac.Init())
	require.NoError(t, ac.SetProtocol(protocol.Midea, "v1"))
	sink := &fakeSink{}
	require.NoError(t, ac.SetTemperature(context.Background(), sink, 19))

	reopened := New(store)
	require.NoError(t, reopened.Init())
	state := reopened.GetState()
	assert.Equal(t, protocol.Midea, state.Protocol)
	assert.Equal(t, 19, state.TempC)
	assert.True(t, state.Learned)
}

// TestEncodeDecode_CarrierRoundTrip covers §4.G's stated minimum
// decode coverage for Carrier.
func TestEncodeDecode_CarrierRoundTrip(t *testing.T) {
	s := State{Protocol: protocol.Carrier, Learned: true, Power: PowerOn, Mode: ModeCool, TempC: 24, Fan: FanHigh, Swing: SwingOn}
	code, err := Encode(s)
	require.NoError(t, err)

	decoded, err := Decode(code)
	require.NoError(t, err)
	assert.Equal(t, PowerOn, decoded.Power)
	assert.Equal(t, ModeCool, decoded.Mode)
	assert.Equal(t, 24, decoded.TempC)
	assert.Equal(t, FanHigh, decoded.Fan)
	assert.Equal(t, SwingOn, decoded.Swing)
}

// TestEncodeDecode_DaikinRoundTrip exercises the resolved frame-length
// discrepancy: a 39-byte frame whose checksum and temperature still
// live at the table's literal offsets.
func TestEncodeDecode_DaikinRoundTrip(t *testing.T) {
	s := State{Protocol: protocol.Daikin, Learned: true, Mode: ModeHeat, TempC: 21, Fan: FanLow}
	code, err := Encode(s)
	require.NoError(t, err)
	assert.Equal(t, 39*8, code.Bits)

	decoded, err := Decode(code)
	require.NoError(t, err)
	assert.Equal(t, 21, decoded.TempC)
	assert.Equal(t, ModeHeat, decoded.Mode)
}

func TestEncodeDecode_MideaRoundTrip(t *testing.T) {
	s := State{Protocol: protocol.Midea, Learned: true, Mode: ModeDry, TempC: 25, Fan: FanMedium, Power: PowerOn}
	code, err := Encode(s)
	require.NoError(t, err)

	decoded, err := Decode(code)
	require.NoError(t, err)
	assert.Equal(t, 25, decoded.TempC)
	assert.Equal(t, ModeDry, decoded.Mode)
	assert.Equal(t, PowerOn, decoded.Power)
}

// TestEncodeDaikin_MatchesSpecScenarioS5 pins the encoder to §8 S5's
// literal frame bytes.
func TestEncodeDaikin_MatchesSpecScenarioS5(t *testing.T) {
	s := State{Protocol: protocol.Daikin, Learned: true, Power: PowerOn, Mode: ModeCool, TempC: 24, Fan: FanAuto, Swing: SwingOff}
	data := encodeBytesGeneric(layouts[protocol.Daikin], s)

	assert.Equal(t, []byte{0x11, 0xDA, 0x27, 0x00, 0xC5}, data[0:5])
	assert.Equal(t, byte(0x31), data[5])
	assert.Equal(t, byte(48), data[6])
	assert.Equal(t, byte(0x30), data[8])
	assert.Equal(t, byte(0xF0), data[9])

	var sum byte
	for _, b := range data[0:18] {
		sum += b
	}
	assert.Equal(t, sum, data[18])
}

// TestEncodeMidea_MatchesSpecScenarioS6 pins the encoder to §8 S6's
// literal frame bytes.
func TestEncodeMidea_MatchesSpecScenarioS6(t *testing.T) {
	s := State{Protocol: protocol.Midea, Learned: true, Power: PowerOn, Mode: ModeCool, TempC: 22, Fan: FanLow}
	data := encodeBytesGeneric(layouts[protocol.Midea], s)

	assert.Equal(t, []byte{0xB2, 0x4D}, data[0:2])
	assert.Equal(t, byte(0x21), data[2])
	assert.Equal(t, byte(0x15), data[3])

	var x byte
	for _, b := range data[0:5] {
		x ^= b
	}
	assert.Equal(t, x, data[5])
}

func TestEncodeDecode_LG2RoundTrip(t *testing.T) {
	s := State{Protocol: protocol.LG2, Learned: true, Mode: ModeFan, TempC: 20, Fan: FanAuto, Power: PowerOn, Swing: SwingOn}
	code, err := Encode(s)
	require.NoError(t, err)
	assert.Equal(t, 28, code.Bits)

	decoded, err := Decode(code)
	require.NoError(t, err)
	assert.Equal(t, 20, decoded.TempC)
	assert.Equal(t, ModeFan, decoded.Mode)
	assert.Equal(t, PowerOn, decoded.Power)
	assert.Equal(t, SwingOn, decoded.Swing)
}

// TestDecode_AutoIdentifyByBitCount covers §4.G's protocol
// auto-identification when the decoder cascade couldn't label the
// frame with an AC protocol directly.
func TestDecode_AutoIdentifyByBitCount(t *testing.T) {
	s := State{Protocol: protocol.Haier, Learned: true, Mode: ModeCool, TempC: 23, Fan: FanLow}
	code, err := Encode(s)
	require.NoError(t, err)
	code.Protocol = protocol.Unknown // simulate an unlabelled capture

	decoded, err := Decode(code)
	require.NoError(t, err)
	assert.Equal(t, protocol.Haier, decoded.Protocol)
	assert.Equal(t, 23, decoded.TempC)
}
