//go:build linux

// Package gpiopulse implements the concrete pulse-source and
// pulse-sink named in §6 on Linux GPIO character-device hardware, via
// github.com/warthog618/go-gpiocdev: an IR receiver line (edge capture
// assembled into pulse-buffers) and an IR LED line (software-timed
// carrier drive). This is the external hardware collaborator spec.md
// leaves abstract; real-time carrier modulation timing itself is
// delegated further, to the line toggling below, per the Non-goal that
// names it out of scope for this repo.
package gpiopulse

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/birchlabs/irengine/internal/logx"
	"github.com/birchlabs/irengine/internal/pulse"
	"github.com/warthog618/go-gpiocdev"
)

// MinMeaningfulMark is §6's minimum width of a meaningful mark; edges
// closer together than this are treated as bounce and ignored.
const MinMeaningfulMark = 1250 * time.Nanosecond

// BurstInactivity is §6's "maximum burst length: 10ms with
// inactivity" — the idle gap after which a burst is considered
// complete and handed to the callback.
const BurstInactivity = 10 * time.Millisecond

// Receiver is the pulse-source half: it requests a GPIO line configured
// for edge-triggered capture and assembles edges into pulse.Buffer
// values, delivered to OnBurst.
type Receiver struct {
	line *gpiocdev.Line

	activeLow bool

	mu       sync.Mutex
	pairs    []pulse.Pair
	lastEdge time.Time
	pending  bool

	armed   bool
	timer   *time.Timer
	onBurst func(pulse.Buffer)

	log interface {
		Warn(msg interface{}, keyvals ...interface{})
	}
}

// NewReceiver requests chip/offset as an edge-triggered input line. If
// activeLow is true, the line's rising/falling sense is inverted
// before being folded into mark/space durations, matching §6's "the
// source must invert any active-low receiver line before emitting
// symbols".
func NewReceiver(chip string, offset int, activeLow bool, onBurst func(pulse.Buffer)) (*Receiver, error) {
	r := &Receiver{activeLow: activeLow, onBurst: onBurst, log: logx.Logger()}

	line, err := gpiocdev.RequestLine(chip, offset,
		gpiocdev.WithBothEdges,
		gpiocdev.WithEdgeEventHandler(r.handleEdge),
	)
	if err != nil {
		return nil, err
	}
	r.line = line
	return r, nil
}

func (r *Receiver) handleEdge(evt gpiocdev.LineEvent) {
	now := time.Now()
	rising := evt.Type == gpiocdev.LineEventRisingEdge
	if r.activeLow {
		rising = !rising
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.pending {
		r.pending = true
		r.lastEdge = now
		r.pairs = r.pairs[:0]
		r.scheduleFlush()
		return
	}

	delta := now.Sub(r.lastEdge)
	if delta < MinMeaningfulMark {
		return
	}
	r.lastEdge = now

	if rising {
		// once inverted, a rising edge starts a mark and so ends the idle
		// period since the previous edge; record that period as the space
		// half of the prior pair.
		if len(r.pairs) > 0 {
			r.pairs[len(r.pairs)-1].Space = int(delta / time.Microsecond)
		}
	} else {
		r.pairs = append(r.pairs, pulse.Pair{Mark: int(delta / time.Microsecond)})
	}
	r.scheduleFlush()
}

// scheduleFlush (re)arms the inactivity timer that closes out a burst.
// Caller must hold r.mu.
func (r *Receiver) scheduleFlush() {
	if r.timer != nil {
		r.timer.Stop()
	}
	r.timer = time.AfterFunc(BurstInactivity, r.flush)
}

func (r *Receiver) flush() {
	r.mu.Lock()
	if !r.pending || len(r.pairs) == 0 {
		r.pending = false
		r.mu.Unlock()
		return
	}
	buf := pulse.Buffer{Pairs: append([]pulse.Pair(nil), r.pairs...)}
	r.pending = false
	r.pairs = r.pairs[:0]
	r.mu.Unlock()

	if r.onBurst != nil {
		r.onBurst(buf)
	}
}

// Rearm implements orchestrator.Source; edge capture on a gpiocdev
// line is always active, so this only returns an error if the receiver
// has no open line.
func (r *Receiver) Rearm(ctx context.Context) error {
	if r.line == nil {
		return errors.New("gpiopulse: receiver line not open")
	}
	return nil
}

// Close releases the underlying GPIO line.
func (r *Receiver) Close() error {
	if r.timer != nil {
		r.timer.Stop()
	}
	return r.line.Close()
}

// Transmitter is the pulse-sink half: an output GPIO line driven with
// a software-timed carrier. This is necessarily a best-effort
// implementation — real-time carrier timing on a non-RTOS kernel is
// exactly the Non-goal spec.md delegates to hardware; it exists so the
// sink contract has a runnable home on commodity hardware.
type Transmitter struct {
	line *gpiocdev.Line

	mu      sync.Mutex
	freqHz  int
	duty    float64
	done    chan struct{}
}

// NewTransmitter requests chip/offset as an output line, initially
// driven low.
func NewTransmitter(chip string, offset int) (*Transmitter, error) {
	line, err := gpiocdev.RequestLine(chip, offset, gpiocdev.AsOutput(0))
	if err != nil {
		return nil, err
	}
	return &Transmitter{line: line, freqHz: 38000, duty: 0.33, done: make(chan struct{})}, nil
}

// SetCarrier implements transmit.Sink.
func (t *Transmitter) SetCarrier(ctx context.Context, freqHz int, dutyFraction float64) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if freqHz <= 0 {
		return errors.New("gpiopulse: carrier frequency must be positive")
	}
	t.freqHz = freqHz
	t.duty = dutyFraction
	return nil
}

// Emit implements transmit.Sink: drives the line at the configured
// carrier during each mark, holds it low during each space.
func (t *Transmitter) Emit(ctx context.Context, buf pulse.Buffer) error {
	t.mu.Lock()
	freq, duty := t.freqHz, t.duty
	t.mu.Unlock()

	period := time.Second / time.Duration(freq)
	onTime := time.Duration(float64(period) * duty)
	offTime := period - onTime

	done := make(chan struct{})
	t.mu.Lock()
	t.done = done
	t.mu.Unlock()

	go func() {
		defer close(done)
		for _, p := range buf.Pairs {
			if ctx.Err() != nil {
				return
			}
			markDeadline := time.Now().Add(time.Duration(p.Mark) * time.Microsecond)
			for time.Now().Before(markDeadline) {
				_ = t.line.SetValue(1)
				time.Sleep(onTime)
				_ = t.line.SetValue(0)
				time.Sleep(offTime)
			}
			if p.Space > 0 {
				time.Sleep(time.Duration(p.Space) * time.Microsecond)
			}
		}
	}()
	return nil
}

// WaitComplete implements transmit.Sink: blocks until Emit's goroutine
// finishes or ctx is done.
func (t *Transmitter) WaitComplete(ctx context.Context) error {
	t.mu.Lock()
	done := t.done
	t.mu.Unlock()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Close releases the underlying GPIO line, leaving it driven low.
func (t *Transmitter) Close() error {
	_ = t.line.SetValue(0)
	return t.line.Close()
}
