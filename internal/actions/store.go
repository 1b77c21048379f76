package actions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/birchlabs/irengine/internal/ircode"
	"github.com/birchlabs/irengine/internal/kvstore"
	"github.com/birchlabs/irengine/internal/learn"
	"github.com/birchlabs/irengine/internal/logx"
	"github.com/birchlabs/irengine/internal/protocol"
	"github.com/birchlabs/irengine/internal/transmit"
	"github.com/charmbracelet/log"
)

// ErrActionNotFound is load/execute's distinct "not found" error, kept
// separate from a transmit failure per §4.H.
var ErrActionNotFound = errors.New("actions: no code stored for this device/action")

// ErrInvalidAction is returned when the action tag is not in the
// device's catalogue.
var ErrInvalidAction = errors.New("actions: action tag not valid for this device type")

// Store implements §4.H's learn/save/load/execute/clear operations
// against a kvstore.Store, namespaced under ir_actions (§6).
type Store struct {
	kv  kvstore.Store
	log *log.Logger
}

// New constructs an action store backed by kv.
func New(kv kvstore.Store) *Store {
	return &Store{kv: kv, log: logx.Logger()}
}

func rawKey(key string) string { return key + "_raw" }

func actionKey(device DeviceType, tag ActionTag) string {
	return fmt.Sprintf("%s_%d", device.Prefix(), int(tag))
}

// Learn implements learn(device, action, timeout): arms l with a
// (device, action) label (§4.E).
func (s *Store) Learn(l *learn.Learner, device DeviceType, tag ActionTag, timeout time.Duration, minimal bool) error {
	if !ValidForDevice(device, tag) {
		return ErrInvalidAction
	}
	l.Arm(learn.Target{Device: device.Prefix(), Action: tag.Name()}, timeout, minimal)
	return nil
}

// Save implements save(device, action, ir-code): persists under the
// key derived from the device prefix and action ordinal. Raw codes
// additionally persist their buffer under a sibling "_raw" key.
func (s *Store) Save(device DeviceType, tag ActionTag, code ircode.Code) error {
	if !ValidForDevice(device, tag) {
		return ErrInvalidAction
	}
	h, err := s.kv.Open(kvstore.NamespaceActions)
	if err != nil {
		return err
	}
	key := actionKey(device, tag)
	if err := s.kv.Set(h, key, encodeCodeBlob(code)); err != nil {
		return err
	}
	if code.Protocol == protocol.Raw {
		if err := s.kv.Set(h, rawKey(key), encodeRawBlob(code.Raw)); err != nil {
			return err
		}
	}
	return s.kv.Commit(h)
}

// Load implements load(device, action): reconstructs the ir-code,
// allocating a raw-buffer for Raw codes. Returns ErrActionNotFound
// (not kvstore.ErrNotFound) when nothing is stored.
func (s *Store) Load(device DeviceType, tag ActionTag) (ircode.Code, error) {
	h, err := s.kv.Open(kvstore.NamespaceActions)
	if err != nil {
		return ircode.Code{}, err
	}
	key := actionKey(device, tag)
	raw, err := s.kv.Get(h, key)
	if errors.Is(err, kvstore.ErrNotFound) {
		return ircode.Code{}, ErrActionNotFound
	}
	if err != nil {
		return ircode.Code{}, err
	}
	code, err := decodeCodeBlob(raw)
	if err != nil {
		return ircode.Code{}, err
	}
	if code.Protocol == protocol.Raw {
		rawBytes, err := s.kv.Get(h, rawKey(key))
		if err != nil {
			return ircode.Code{}, err
		}
		pairs, err := decodeRawBlob(rawBytes)
		if err != nil {
			return ircode.Code{}, err
		}
		code.Raw = pairs
	}
	return code, nil
}

// Execute implements execute(device, action): load then transmit. A
// missing action returns ErrActionNotFound, distinct from a transmit
// failure, per §4.H.
func (s *Store) Execute(ctx context.Context, sink transmit.Sink, device DeviceType, tag ActionTag) error {
	code, err := s.Load(device, tag)
	if err != nil {
		return err
	}
	return transmit.Transmit(ctx, sink, code)
}

// ExecuteRepeat implements execute_repeat(device, action, count,
// interval_ms): transmits the stored code count times, interval_ms
// apart, falling back to the protocol's repeat period when interval_ms
// is 0.
func (s *Store) ExecuteRepeat(ctx context.Context, sink transmit.Sink, device DeviceType, tag ActionTag, count int, intervalMs int) error {
	code, err := s.Load(device, tag)
	if err != nil {
		return err
	}
	interval := time.Duration(intervalMs) * time.Millisecond
	if intervalMs <= 0 {
		if c, ok := protocol.Lookup(code.Protocol); ok && c.RepeatPeriodUs > 0 {
			interval = time.Duration(c.RepeatPeriodUs) * time.Microsecond
		}
	}
	for i := 0; i < count; i++ {
		if err := transmit.Transmit(ctx, sink, code); err != nil {
			return err
		}
		if i == count-1 {
			break
		}
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return nil
}

// Clear implements clear(device, action).
func (s *Store) Clear(device DeviceType, tag ActionTag) error {
	h, err := s.kv.Open(kvstore.NamespaceActions)
	if err != nil {
		return err
	}
	key := actionKey(device, tag)
	if err := s.kv.Erase(h, key); err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		return err
	}
	if err := s.kv.Erase(h, rawKey(key)); err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		return err
	}
	return s.kv.Commit(h)
}

// ClearDevice implements clear_device(device): erases every action
// this device type's catalogue recognises.
func (s *Store) ClearDevice(device DeviceType) error {
	var errs []error
	for _, tag := range DeviceCatalogue[device] {
		if err := s.Clear(device, tag); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// ClearAll implements clear_all: erases the entire ir_actions
// namespace.
func (s *Store) ClearAll() error {
	h, err := s.kv.Open(kvstore.NamespaceActions)
	if err != nil {
		return err
	}
	if err := s.kv.EraseAll(h); err != nil {
		return err
	}
	return s.kv.Commit(h)
}
