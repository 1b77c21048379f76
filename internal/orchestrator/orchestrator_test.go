package orchestrator

import (
	"context"
	"testing"
	"time"

	"github.com/birchlabs/irengine/internal/actions"
	"github.com/birchlabs/irengine/internal/ircode"
	"github.com/birchlabs/irengine/internal/kvstore"
	"github.com/birchlabs/irengine/internal/learn"
	"github.com/birchlabs/irengine/internal/protocol"
	"github.com/birchlabs/irengine/internal/pulse"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func necFrame(address, command byte) pulse.Buffer {
	data := uint64(address) | uint64(^address)<<8 | uint64(command)<<16 | uint64(^command)<<24
	pairs := []pulse.Pair{{Mark: 9000, Space: 4500}}
	for i := 0; i < 32; i++ {
		bit := (data >> uint(i)) & 1
		space := 560
		if bit == 1 {
			space = 1690
		}
		pairs = append(pairs, pulse.Pair{Mark: 560, Space: space})
	}
	pairs = append(pairs, pulse.Pair{Mark: 560, Space: 0})
	return pulse.Buffer{Pairs: pairs}
}

func necRepeatFrame() pulse.Buffer {
	return pulse.Buffer{Pairs: []pulse.Pair{
		{Mark: 9000, Space: 2250},
		{Mark: 560, Space: 0},
	}}
}

type fakeSource struct{ rearmed int }

func (f *fakeSource) Rearm(ctx context.Context) error {
	f.rearmed++
	return nil
}

func newTestOrchestrator(t *testing.T, cb Callbacks) (*Orchestrator, *fakeSource) {
	t.Helper()
	store := actions.New(kvstore.NewMemStore())
	src := &fakeSource{}
	o := New(store, src, learn.New(), cb)
	return o, src
}

func TestOrchestrator_IdleReceiveInvokesOnReceive(t *testing.T) {
	var got ircode.Code
	o, src := newTestOrchestrator(t, Callbacks{OnReceive: func(c ircode.Code) { got = c }})

	o.handle(context.Background(), necFrame(0x00, 0x0A))

	assert.Equal(t, protocol.NEC, got.Protocol)
	assert.Equal(t, 1, src.rearmed)
}

func TestOrchestrator_RepeatWithoutPriorFullFrameIsStray(t *testing.T) {
	var calls int
	o, _ := newTestOrchestrator(t, Callbacks{OnReceive: func(c ircode.Code) { calls++ }})

	o.handle(context.Background(), necRepeatFrame())
	assert.Equal(t, 0, calls)
}

func TestOrchestrator_RepeatWithinWindowIsAccepted(t *testing.T) {
	var calls int
	o, _ := newTestOrchestrator(t, Callbacks{OnReceive: func(c ircode.Code) { calls++ }})

	o.handle(context.Background(), necFrame(0x00, 0x0A))
	o.handle(context.Background(), necRepeatFrame())
	assert.Equal(t, 2, calls)
}

func TestOrchestrator_QueueOverflowFlagsNextAcceptedCode(t *testing.T) {
	o, _ := newTestOrchestrator(t, Callbacks{})
	for i := 0; i < QueueCapacity+2; i++ {
		o.Submit(necFrame(0x00, byte(i)))
	}

	var got ircode.Code
	o.cb.OnReceive = func(c ircode.Code) { got = c }
	// drain exactly one buffer through handle to observe the overflow flag.
	buf := <-o.queue
	o.handle(context.Background(), buf)
	assert.True(t, got.Flags.Has(ircode.FlagOverflow))
}

func TestOrchestrator_LearnedCodeSavedUnderActionStore(t *testing.T) {
	store := actions.New(kvstore.NewMemStore())
	l := learn.New()
	var successTarget learn.Target
	var successGrade learn.Grade
	o := New(store, &fakeSource{}, l, Callbacks{
		OnLearnSuccess: func(target learn.Target, grade learn.Grade, code ircode.Code) {
			successTarget, successGrade = target, grade
		},
	})

	require.NoError(t, store.Learn(l, actions.TV, actions.ActionPower, 5*time.Second, true))

	o.handle(context.Background(), necFrame(0x00, 0x0A))
	o.handle(context.Background(), necFrame(0x00, 0x0A))

	assert.Equal(t, "tv", successTarget.Device)
	assert.Equal(t, learn.GradeMinimal, successGrade)
	assert.Equal(t, learn.Idle, l.CurrentState())

	code, err := store.Load(actions.TV, actions.ActionPower)
	require.NoError(t, err)
	assert.Equal(t, protocol.NEC, code.Protocol)
}

func TestOrchestrator_DeadlineExpiryFiresOnLearnFail(t *testing.T) {
	l := learn.New()
	store := actions.New(kvstore.NewMemStore())
	var failed learn.Target
	o := New(store, &fakeSource{}, l, Callbacks{
		OnLearnFail: func(target learn.Target) { failed = target },
	})
	require.NoError(t, store.Learn(l, actions.TV, actions.ActionPower, time.Millisecond, false))

	time.Sleep(5 * time.Millisecond)
	o.CheckLearnerDeadline(time.Now())

	assert.Equal(t, "tv", failed.Device)
	assert.Equal(t, learn.Idle, l.CurrentState())
}

func TestOrchestrator_LegacyButtonTableBinding(t *testing.T) {
	o, _ := newTestOrchestrator(t, Callbacks{})
	code := ircode.Code{Protocol: protocol.NEC, Data: 0xABCD, Bits: 32}
	o.BindLegacyButton(3, code)

	got, ok := o.LegacyButtonCode(3)
	require.True(t, ok)
	assert.Equal(t, code.Data, got.Data)

	_, ok = o.LegacyButtonCode(99)
	assert.False(t, ok)
}
