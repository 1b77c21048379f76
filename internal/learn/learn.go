// Package learn implements the pulse-buffer filter/trim pass and the
// learner/verification state machine described in §4.E: Idle, Armed,
// Learned, and Failed states driven explicitly by the caller rather
// than by a package-level singleton (per the spec's redesign note —
// every state lives in a *Learner value the caller owns).
package learn

import (
	"context"
	"errors"
	"time"

	"github.com/birchlabs/irengine/internal/decode"
	"github.com/birchlabs/irengine/internal/ircode"
	"github.com/birchlabs/irengine/internal/protocol"
	"github.com/birchlabs/irengine/internal/pulse"
	"github.com/birchlabs/irengine/internal/universal"
)

// State is the learner's coarse lifecycle position.
type State int

const (
	Idle State = iota
	Armed
	Learned
	Failed
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Armed:
		return "armed"
	case Learned:
		return "learned"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

const (
	// MinNoiseMarkUs is the filter-pass threshold: any mark shorter than
	// this is noise, not a bit.
	MinNoiseMarkUs = 100
	// IdleGapUs is the trim-pass threshold for a leading/trailing idle gap.
	IdleGapUs = 50000
	// MinRawPairs/MaxRawPairs bound the raw-fallback buffer length and
	// double as the noise-floor length check.
	MinRawPairs = 10
	MaxRawPairs = 256

	// DefaultDeadline is the default arm-to-timeout window.
	DefaultDeadline = 30 * time.Second

	// CommercialGradeFrames/MinimalFrames are the consecutive-agreement
	// counts for the two acceptance grades.
	CommercialGradeFrames = 3
	MinimalFrames         = 2
)

// ErrNoise signals a buffer classified as noise: dropped silently, no
// callback, per §4.E failure semantics.
var ErrNoise = errors.New("learn: buffer classified as noise")

// Grade records which acceptance tier a learned code met.
type Grade int

const (
	GradeNone Grade = iota
	GradeMinimal
	GradeCommercial
)

func (g Grade) String() string {
	switch g {
	case GradeMinimal:
		return "minimal"
	case GradeCommercial:
		return "commercial"
	default:
		return "none"
	}
}

// Target identifies what is being learned — opaque to this package,
// threaded through to callbacks by the caller (typically a device and
// action tag from §4.H).
type Target struct {
	Device string
	Action string
}

// Learner holds all per-session learning state explicitly; callers own
// the value and pass it to every operation rather than reaching for a
// global.
type Learner struct {
	state    State
	target   Target
	deadline time.Time

	pending      ircode.Code
	havePending  bool
	agreeCount   int
	requireCount int
}

// New constructs an idle learner.
func New() *Learner {
	return &Learner{state: Idle}
}

// CurrentState reports the learner's lifecycle position.
func (l *Learner) CurrentState() State { return l.state }

// Arm transitions Idle/Failed/Learned → Armed with a deadline. minimal
// selects the 2-frame acceptance grade; otherwise 3-frame
// commercial-grade agreement is required.
func (l *Learner) Arm(target Target, timeout time.Duration, minimal bool) {
	if timeout <= 0 {
		timeout = DefaultDeadline
	}
	l.state = Armed
	l.target = target
	l.deadline = time.Now().Add(timeout)
	l.havePending = false
	l.pending = ircode.Code{}
	l.agreeCount = 0
	l.requireCount = CommercialGradeFrames
	if minimal {
		l.requireCount = MinimalFrames
	}
}

// Stop transitions Armed → Idle without firing any callback, per the
// spec's "external stop" rule. A no-op from any other state.
func (l *Learner) Stop() {
	if l.state == Armed {
		l.state = Idle
	}
}

// Target reports the (device, action) label the learner is currently
// armed for.
func (l *Learner) Target() Target { return l.target }

// CheckDeadline transitions Armed → Failed if the deadline has passed,
// reporting whether it did.
func (l *Learner) CheckDeadline(now time.Time) bool {
	if l.state == Armed && now.After(l.deadline) {
		l.state = Failed
		return true
	}
	return false
}

// FilterResult records whether the filter/trim passes altered a buffer,
// matching the spec's marker-bit language.
type FilterResult struct {
	Buffer        pulse.Buffer
	NoiseFiltered bool
	GapTrimmed    bool
}

// FilterAndTrim applies §4.E's filter pass (absorb marks < 100µs into
// the preceding pair's space) then trim pass (drop leading/trailing
// idle gaps > 50ms).
func FilterAndTrim(buf pulse.Buffer) FilterResult {
	filtered, noiseFiltered := filterPass(buf)
	trimmed, gapTrimmed := trimPass(filtered)
	return FilterResult{Buffer: trimmed, NoiseFiltered: noiseFiltered, GapTrimmed: gapTrimmed}
}

func filterPass(buf pulse.Buffer) (pulse.Buffer, bool) {
	if buf.Len() == 0 {
		return buf, false
	}
	out := make([]pulse.Pair, 0, buf.Len())
	changed := false
	for _, p := range buf.Pairs {
		if p.Mark < MinNoiseMarkUs && len(out) > 0 {
			out[len(out)-1].Space += p.Mark + p.Space
			changed = true
			continue
		}
		out = append(out, p)
	}
	return pulse.Buffer{Pairs: out}, changed
}

func trimPass(buf pulse.Buffer) (pulse.Buffer, bool) {
	pairs := buf.Pairs
	changed := false
	for len(pairs) > 0 && pairs[0].Space > IdleGapUs {
		pairs = pairs[1:]
		changed = true
	}
	for len(pairs) > 0 && pairs[len(pairs)-1].Space > IdleGapUs {
		pairs = pairs[:len(pairs)-1]
		changed = true
	}
	return pulse.Buffer{Pairs: pairs}, changed
}

// Classify runs the fixed-protocol cascade then the universal
// classifier, matching §4.J step 2's "cascade (§4.C), then §4.D"
// ordering, and finally the raw fallback from §4.E when both fail and
// the buffer length is in the raw-eligible range.
func Classify(buf pulse.Buffer) (ircode.Code, error) {
	if code, err := decode.Cascade(buf); err == nil {
		return code, nil
	}
	if code, err := universal.Classify(buf, universal.MinBits); err == nil {
		return code, nil
	}
	if buf.Len() >= MinRawPairs && buf.Len() <= MaxRawPairs {
		return ircode.Code{Protocol: protocol.Raw, Raw: buf.Clone().Pairs, Bits: buf.Len()}, nil
	}
	return ircode.Code{}, ircode.ErrDecodeFailed
}

// Outcome reports what a single Feed call did.
type Outcome int

const (
	OutcomeNoise Outcome = iota
	OutcomeCandidate
	OutcomeLearned
	OutcomeMismatchReset
)

// Feed processes one pulse-buffer through filter, trim, decode, and
// verify, advancing the learner's state. Must only be called while
// Armed. A buffer shorter than the noise floor (or collapsed below it
// by filtering) returns ErrNoise and leaves the learner Armed, per
// §4.E's "noise is dropped silently" rule.
func (l *Learner) Feed(buf pulse.Buffer) (Outcome, ircode.Code, error) {
	if l.state != Armed {
		return OutcomeNoise, ircode.Code{}, errors.New("learn: Feed called while not armed")
	}

	filtered := FilterAndTrim(buf)
	if filtered.Buffer.Len() < MinRawPairs || filtered.Buffer.Len() > MaxRawPairs {
		return OutcomeNoise, ircode.Code{}, ErrNoise
	}

	code, err := Classify(filtered.Buffer)
	if err != nil {
		return OutcomeNoise, ircode.Code{}, ErrNoise
	}
	code.NoiseFiltered = filtered.NoiseFiltered
	code.GapTrimmed = filtered.GapTrimmed

	if !l.havePending {
		l.pending = code
		l.havePending = true
		l.agreeCount = 1
		return OutcomeCandidate, code, nil
	}

	if !l.pending.Agrees(code, pulse.DefaultTolerancePercent) {
		l.pending = code
		l.agreeCount = 1
		return OutcomeMismatchReset, code, nil
	}

	l.agreeCount++
	if l.agreeCount >= l.requireCount {
		l.state = Learned
		return OutcomeLearned, l.pending, nil
	}
	return OutcomeCandidate, code, nil
}

// Grade reports the acceptance grade a Learned outcome met.
func (l *Learner) Grade() Grade {
	if l.state != Learned {
		return GradeNone
	}
	if l.requireCount <= MinimalFrames {
		return GradeMinimal
	}
	return GradeCommercial
}

// Accepted returns the accepted ir-code once the learner has reached
// Learned; ok is false otherwise.
func (l *Learner) Accepted() (ircode.Code, bool) {
	if l.state != Learned {
		return ircode.Code{}, false
	}
	return l.pending, true
}

// Reset returns the learner to Idle, clearing all session state.
func (l *Learner) Reset() {
	*l = Learner{state: Idle}
}

// RunDeadline returns at once with a channel that is closed when ctx is
// cancelled or the learner's deadline elapses (immediately if the
// learner is not Armed). It does not change the learner's state; the
// Armed → Failed transition is made by CheckDeadline. Callers select on
// the returned channel rather than polling.
func (l *Learner) RunDeadline(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	if l.state != Armed {
		close(done)
		return done
	}
	deadline := l.deadline
	go func() {
		defer close(done)
		timer := time.NewTimer(time.Until(deadline))
		defer timer.Stop()
		select {
		case <-ctx.Done():
		case <-timer.C:
		}
	}()
	return done
}
