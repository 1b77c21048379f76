// Package acstate implements the AC state model and per-protocol
// frame encoders/decoders from §4.G: a shared declarative bit-layout
// description drives both directions (§9 design note), one entry per
// AC protocol.
package acstate

import (
	"errors"
	"sync"

	"github.com/birchlabs/irengine/internal/ircode"
	"github.com/birchlabs/irengine/internal/kvstore"
	"github.com/birchlabs/irengine/internal/logx"
	"github.com/birchlabs/irengine/internal/protocol"
	"github.com/birchlabs/irengine/internal/transmit"

	"context"
)

// Power is the unit's on/off field.
type Power int

const (
	PowerOff Power = iota
	PowerOn
)

// Mode is the operating mode field. The closed set per §3 is
// {Off, Auto, Cool, Heat, Dry, Fan}; ModeOff is appended after the
// pre-existing constants rather than reordering them, so it picks up
// a new table slot in each protocol's modeValues without renumbering
// the others.
type Mode int

const (
	ModeAuto Mode = iota
	ModeCool
	ModeHeat
	ModeDry
	ModeFan
	ModeOff
)

// FanSpeed is the fan field.
type FanSpeed int

const (
	FanAuto FanSpeed = iota
	FanLow
	FanMedium
	FanHigh
)

// Swing is the louvre-swing field.
type Swing int

const (
	SwingOff Swing = iota
	SwingOn
)

// MinTempC/MaxTempC bound set_temperature's accepted range (§4.G
// setter contract: "temperature in 16..30").
const (
	MinTempC = 16
	MaxTempC = 30
)

// State is the full AC state record, persisted under kvstore's ir_ac
// namespace (§6).
type State struct {
	Power    Power
	Mode     Mode
	TempC    int
	Fan      FanSpeed
	Swing    Swing
	Protocol protocol.ID
	Variant  string
	Learned  bool
}

// Default returns the unconfigured default state: no protocol
// selected, so encode/transmit must reject it until set_protocol runs.
func Default() State {
	return State{Mode: ModeAuto, TempC: 24, Fan: FanAuto}
}

var (
	// ErrUnconfigured is returned by Encode/Transmit when no protocol
	// has been selected via SetProtocol.
	ErrUnconfigured = errors.New("acstate: protocol not configured, call SetProtocol first")
	// ErrInvalidTemperature is returned by SetTemperature outside
	// MinTempC..MaxTempC.
	ErrInvalidTemperature = errors.New("acstate: temperature out of range")
	// ErrInvalidProtocol is returned by SetProtocol for a non-AC id.
	ErrInvalidProtocol = errors.New("acstate: not a recognised AC protocol")
	// ErrInvalidField covers an out-of-range mode/fan/swing value.
	ErrInvalidField = errors.New("acstate: invalid field value")
)

const stateKey = "state"

// AC is the serialised AC-state resource described in §5: all mutation
// paths take one mutex, readers copy under it. It is constructed with
// an explicit kvstore.Store, and the transmit.Sink is passed to each
// call that transmits, rather than reaching for package-level state,
// per the spec's redesign note on explicit context objects.
type AC struct {
	mu    sync.Mutex
	state State
	store kvstore.Store
	log   interface {
		Warn(msg interface{}, keyvals ...interface{})
	}
}

// New constructs an AC resource backed by store. Call Init to load any
// persisted state before using it.
func New(store kvstore.Store) *AC {
	return &AC{state: Default(), store: store, log: logx.Logger()}
}

// Init implements §4.G's "init: load persisted state, fall back to
// defaults."
func (a *AC) Init() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	h, err := a.store.Open(kvstore.NamespaceAC)
	if err != nil {
		return err
	}
	raw, err := a.store.Get(h, stateKey)
	if errors.Is(err, kvstore.ErrNotFound) {
		a.state = Default()
		return nil
	}
	if err != nil {
		return err
	}
	s, err := decodeStateBlob(raw)
	if err != nil {
		a.state = Default()
		return nil
	}
	a.state = s
	return nil
}

// GetState returns an immutable copy of the current state.
func (a *AC) GetState() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

func (a *AC) persist() error {
	h, err := a.store.Open(kvstore.NamespaceAC)
	if err != nil {
		return err
	}
	if err := a.store.Set(h, stateKey, encodeStateBlob(a.state)); err != nil {
		return err
	}
	return a.store.Commit(h)
}

// applyAndTransmit implements the shared setter contract from §4.G:
// mutate, encode, transmit; persist only if transmit succeeds. The
// mutation is never reverted on transmit failure.
func (a *AC) applyAndTransmit(ctx context.Context, sink transmit.Sink, mutate func(*State)) error {
	a.mu.Lock()
	defer a.mu.Unlock()

	before := a.state
	next := a.state
	mutate(&next)
	if next == before {
		return nil
	}
	a.state = next

	code, err := encodeState(a.state)
	if err != nil {
		return err
	}
	if err := transmit.Transmit(ctx, sink, code); err != nil {
		return err
	}
	if err := a.persist(); err != nil {
		a.log.Warn("acstate: persist failed after successful transmit", "err", err)
		return err
	}
	return nil
}

// SetPower implements set_power.
func (a *AC) SetPower(ctx context.Context, sink transmit.Sink, p Power) error {
	return a.applyAndTransmit(ctx, sink, func(s *State) { s.Power = p })
}

// SetMode implements set_mode.
func (a *AC) SetMode(ctx context.Context, sink transmit.Sink, m Mode) error {
	if m < ModeAuto || m > ModeOff {
		return ErrInvalidField
	}
	return a.applyAndTransmit(ctx, sink, func(s *State) { s.Mode = m })
}

// SetTemperature implements set_temperature.
func (a *AC) SetTemperature(ctx context.Context, sink transmit.Sink, tempC int) error {
	if tempC < MinTempC || tempC > MaxTempC {
		return ErrInvalidTemperature
	}
	return a.applyAndTransmit(ctx, sink, func(s *State) { s.TempC = tempC })
}

// SetFan implements set_fan.
func (a *AC) SetFan(ctx context.Context, sink transmit.Sink, f FanSpeed) error {
	if f < FanAuto || f > FanHigh {
		return ErrInvalidField
	}
	return a.applyAndTransmit(ctx, sink, func(s *State) { s.Fan = f })
}

// SetSwing implements set_swing.
func (a *AC) SetSwing(ctx context.Context, sink transmit.Sink, sw Swing) error {
	return a.applyAndTransmit(ctx, sink, func(s *State) { s.Swing = sw })
}

// SetState implements set_state(full): replaces every field at once.
func (a *AC) SetState(ctx context.Context, sink transmit.Sink, full State) error {
	if full.TempC < MinTempC || full.TempC > MaxTempC {
		return ErrInvalidTemperature
	}
	if full.Mode < ModeAuto || full.Mode > ModeOff || full.Fan < FanAuto || full.Fan > FanHigh {
		return ErrInvalidField
	}
	return a.applyAndTransmit(ctx, sink, func(s *State) {
		full.Protocol = s.Protocol
		full.Variant = s.Variant
		full.Learned = s.Learned
		*s = full
	})
}

// SetProtocol implements set_protocol: the only way to mark a state as
// learned. Protocol must be one of the AC protocol-ids.
func (a *AC) SetProtocol(id protocol.ID, variant string) error {
	if !protocol.ACProtocols[id] {
		return ErrInvalidProtocol
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.state.Protocol = id
	a.state.Variant = variant
	a.state.Learned = true
	return a.persist()
}

// Encode implements encode(state): produces the ir-code for the
// current state, or ErrUnconfigured if no protocol has been selected.
func (a *AC) Encode() (ircode.Code, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	return encodeState(a.state)
}

func encodeState(s State) (ircode.Code, error) {
	if !s.Learned || !protocol.ACProtocols[s.Protocol] {
		return ircode.Code{}, ErrUnconfigured
	}
	return Encode(s)
}

// Decode implements decode(ir-code): best-effort for the protocols
// §4.G fully specifies, default state (protocol populated only) for
// the rest.
func (a *AC) Decode(code ircode.Code) (State, error) {
	return Decode(code)
}

// TransmitCurrent implements transmit_current(): transmits encode(current).
func (a *AC) TransmitCurrent(ctx context.Context, sink transmit.Sink) error {
	a.mu.Lock()
	code, err := encodeState(a.state)
	a.mu.Unlock()
	if err != nil {
		return err
	}
	return transmit.Transmit(ctx, sink, code)
}
