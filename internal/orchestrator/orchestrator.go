// Package orchestrator implements §4.J: the receive loop that ties the
// pulse source, the learner (§4.E), and the logical-action store
// (§4.H) together, plus the legacy button-index compatibility table
// and the NEC repeat-frame gating §9 calls for as an explicit state
// transition.
package orchestrator

import (
	"context"
	"sync"
	"time"

	"github.com/birchlabs/irengine/internal/actions"
	"github.com/birchlabs/irengine/internal/ircode"
	"github.com/birchlabs/irengine/internal/learn"
	"github.com/birchlabs/irengine/internal/logx"
	"github.com/birchlabs/irengine/internal/protocol"
	"github.com/birchlabs/irengine/internal/pulse"
)

// QueueCapacity bounds the receive queue between the pulse source and
// the orchestrator's single receive task (§5).
const QueueCapacity = 10

// RepeatWindow is how long after a full NEC frame a repeat-shaped
// frame is still accepted as a legitimate repeat rather than a stray
// frame (§9's "record NEC-repeat-vs-stray as a discrete transition").
const RepeatWindow = 200 * time.Millisecond

// Source is the pulse-source external interface the orchestrator
// re-arms after each burst (§4.J step 4).
type Source interface {
	Rearm(ctx context.Context) error
}

// Callbacks is the {on-learn-success, on-learn-fail, on-receive} set
// from §4.J. Any callback left nil is skipped.
type Callbacks struct {
	OnLearnSuccess func(target learn.Target, grade learn.Grade, code ircode.Code)
	OnLearnFail    func(target learn.Target)
	OnReceive      func(code ircode.Code)
}

// Orchestrator holds the receive queue, the learner, the legacy
// button-index table, and the action store, and runs the single
// receive task described in §4.J/§5.
type Orchestrator struct {
	queue  chan pulse.Buffer
	source Source
	store  *actions.Store

	learnerMu sync.Mutex
	learner   *learn.Learner

	tableMu sync.Mutex
	buttons map[int]ircode.Code

	cb Callbacks

	overflowMu  sync.Mutex
	overflowed  bool
	lastNECFull time.Time
}

// New constructs an orchestrator backed by store and source, with l as
// the shared learner (caller-owned, per §9's explicit-context redesign
// note).
func New(store *actions.Store, source Source, l *learn.Learner, cb Callbacks) *Orchestrator {
	return &Orchestrator{
		queue:   make(chan pulse.Buffer, QueueCapacity),
		source:  source,
		store:   store,
		learner: l,
		buttons: make(map[int]ircode.Code),
		cb:      cb,
	}
}

// Submit enqueues a completed pulse-buffer from the pulse source. A
// full queue is recorded as an overflow rather than blocking the
// source (§5: "otherwise discarded").
func (o *Orchestrator) Submit(buf pulse.Buffer) {
	select {
	case o.queue <- buf:
	default:
		o.overflowMu.Lock()
		o.overflowed = true
		o.overflowMu.Unlock()
	}
}

// Run blocks on the receive queue until ctx is cancelled, processing
// one buffer at a time per §5's "single receive task" rule.
func (o *Orchestrator) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case buf := <-o.queue:
			o.handle(ctx, buf)
		}
	}
}

func (o *Orchestrator) takeOverflow() bool {
	o.overflowMu.Lock()
	defer o.overflowMu.Unlock()
	v := o.overflowed
	o.overflowed = false
	return v
}

// handle implements §4.J's four receive steps for one buffer.
func (o *Orchestrator) handle(ctx context.Context, buf pulse.Buffer) {
	filtered := learn.FilterAndTrim(buf)

	o.learnerMu.Lock()
	armed := o.learner != nil && o.learner.CurrentState() == learn.Armed
	o.learnerMu.Unlock()

	if armed {
		o.handleArmed(filtered.Buffer)
	} else {
		o.handleIdle(filtered.Buffer)
	}

	if o.source != nil {
		_ = o.source.Rearm(ctx)
	}
}

func (o *Orchestrator) handleArmed(buf pulse.Buffer) {
	o.learnerMu.Lock()
	outcome, code, _ := o.learner.Feed(buf)
	var target learn.Target
	var grade learn.Grade
	if outcome == learn.OutcomeLearned {
		target = o.learner.Target()
		grade = o.learner.Grade()
		o.learner.Reset()
	}
	o.learnerMu.Unlock()

	if outcome != learn.OutcomeLearned {
		return
	}
	code = o.withOverflow(code)

	device, tag, ok := parseTarget(target)
	if ok {
		if err := o.store.Save(device, tag, code); err != nil {
			logx.WithDevice(target.Device).Warn("orchestrator: failed to persist learned action", "action", target.Action, "err", err)
		}
	}

	if o.cb.OnLearnSuccess != nil {
		o.cb.OnLearnSuccess(target, grade, code)
	}
}

func (o *Orchestrator) handleIdle(buf pulse.Buffer) {
	code, err := learn.Classify(buf)
	if err != nil {
		return
	}
	code = o.withOverflow(code)

	if code.Flags.Has(ircode.FlagRepeat) {
		if !o.acceptNECRepeat() {
			return
		}
	} else if code.Protocol == protocol.NEC || code.Protocol == protocol.Apple || code.Protocol == protocol.Onkyo {
		o.overflowMu.Lock()
		o.lastNECFull = time.Now()
		o.overflowMu.Unlock()
	}

	if o.cb.OnReceive != nil {
		o.cb.OnReceive(code)
	}
}

// acceptNECRepeat implements §9's discrete repeat-vs-stray transition:
// a repeat-shaped frame is legitimate only within RepeatWindow of the
// last full NEC-family frame.
func (o *Orchestrator) acceptNECRepeat() bool {
	o.overflowMu.Lock()
	defer o.overflowMu.Unlock()
	if o.lastNECFull.IsZero() {
		return false
	}
	return time.Since(o.lastNECFull) <= RepeatWindow
}

func (o *Orchestrator) withOverflow(code ircode.Code) ircode.Code {
	if o.takeOverflow() {
		code.Flags |= ircode.FlagOverflow
	}
	return code
}

// parseTarget recovers the (device, action) pair the learner's opaque
// Target carries as plain strings, so the orchestrator can route a
// learned code into §4.H's action store.
func parseTarget(t learn.Target) (actions.DeviceType, actions.ActionTag, bool) {
	device, ok := actions.DeviceFromPrefix(t.Device)
	if !ok {
		return 0, 0, false
	}
	tag, ok := actions.ActionFromName(t.Action)
	if !ok {
		return 0, 0, false
	}
	return device, tag, true
}

// LegacyButtonCode returns the code bound to a legacy button index, if
// any (§4.J's backward-compatibility table).
func (o *Orchestrator) LegacyButtonCode(index int) (ircode.Code, bool) {
	o.tableMu.Lock()
	defer o.tableMu.Unlock()
	c, ok := o.buttons[index]
	return c, ok
}

// BindLegacyButton associates a legacy button index with an action
// store entry, keeping the two tables in sync per §4.J.
func (o *Orchestrator) BindLegacyButton(index int, code ircode.Code) {
	o.tableMu.Lock()
	defer o.tableMu.Unlock()
	o.buttons[index] = code.Clone()
}

// Learner exposes the orchestrator's shared learner so callers can Arm
// it via §4.H's Learn or Stop it directly.
func (o *Orchestrator) Learner() *learn.Learner {
	o.learnerMu.Lock()
	defer o.learnerMu.Unlock()
	return o.learner
}

// CheckLearnerDeadline must be driven by the caller (e.g. on a ticker);
// it fires OnLearnFail when the learner's deadline has just elapsed.
func (o *Orchestrator) CheckLearnerDeadline(now time.Time) {
	o.learnerMu.Lock()
	target := o.learner.Target()
	expired := o.learner.CheckDeadline(now)
	if expired {
		o.learner.Reset()
	}
	o.learnerMu.Unlock()

	if expired && o.cb.OnLearnFail != nil {
		o.cb.OnLearnFail(target)
	}
}
