package learn

import (
	"testing"
	"time"

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

// TestFilterPass_AbsorbsNoiseMark covers the §4.E filter pass: a mark
// under 100µs is absorbed into the previous pair's space.
func TestFilterPass_AbsorbsNoiseMark(t *testing.T) {
	buf := pulse.Buffer{Pairs: []pulse.Pair{
		{Mark: 9000, Space: 4500},
		{Mark: 560, Space: 500},
		{Mark: 50, Space: 200}, // noise mark, absorbed
		{Mark: 560, Space: 0},
	}}
	result := FilterAndTrim(buf)
	assert.True(t, result.NoiseFiltered)
	require.Len(t, result.Buffer.Pairs, 3)
	assert.Equal(t, 500+50+200, result.Buffer.Pairs[1].Space)
}

// TestTrimPass_DropsIdleGaps covers the §4.E trim pass.
func TestTrimPass_DropsIdleGaps(t *testing.T) {
	buf := pulse.Buffer{Pairs: []pulse.Pair{
		{Mark: 100, Space: 60000}, // leading idle gap, dropped
		{Mark: 560, Space: 500},
		{Mark: 560, Space: 60000}, // trailing idle gap, dropped
	}}
	result := FilterAndTrim(buf)
	assert.True(t, result.GapTrimmed)
	require.Len(t, result.Buffer.Pairs, 1)
}

// TestLearner_CommercialGradeAcceptance covers §8 property 6: three
// consecutive agreeing frames accept at commercial grade.
func TestLearner_CommercialGradeAcceptance(t *testing.T) {
	l := New()
	l.Arm(Target{Device: "tv", Action: "power"}, time.Minute, false)

	frame := necFrame(0x10, 0x20)

	outcome, _, err := l.Feed(frame)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCandidate, outcome)
	assert.Equal(t, Armed, l.CurrentState())

	outcome, _, err = l.Feed(frame)
	require.NoError(t, err)
	assert.Equal(t, OutcomeCandidate, outcome)

	outcome, code, err := l.Feed(frame)
	require.NoError(t, err)
	assert.Equal(t, OutcomeLearned, outcome)
	assert.Equal(t, Learned, l.CurrentState())
	assert.Equal(t, protocol.NEC, code.Protocol)
	assert.Equal(t, GradeCommercial, l.Grade())

	accepted, ok := l.Accepted()
	require.True(t, ok)
	assert.Equal(t, protocol.NEC, accepted.Protocol)
}

// TestLearner_MinimalGradeAcceptance covers §8 property 7: two
// consecutive agreeing frames accept at minimal grade when armed with
// minimal=true.
func TestLearner_MinimalGradeAcceptance(t *testing.T) {
	l := New()
	l.Arm(Target{Device: "ac", Action: "power"}, time.Minute, true)

	frame := necFrame(0x01, 0x02)
	_, _, err := l.Feed(frame)
	require.NoError(t, err)

	outcome, _, err := l.Feed(frame)
	require.NoError(t, err)
	assert.Equal(t, OutcomeLearned, outcome)
	assert.Equal(t, GradeMinimal, l.Grade())
}

// TestLearner_MismatchResetsPending covers the "on non-matching frame,
// reset the pending state, keep the newest as candidate" rule.
func TestLearner_MismatchResetsPending(t *testing.T) {
	l := New()
	l.Arm(Target{Device: "tv", Action: "power"}, time.Minute, false)

	first := necFrame(0x10, 0x20)
	second := necFrame(0x30, 0x40)

	_, _, err := l.Feed(first)
	require.NoError(t, err)

	outcome, _, err := l.Feed(second)
	require.NoError(t, err)
	assert.Equal(t, OutcomeMismatchReset, outcome)
	assert.Equal(t, Armed, l.CurrentState())

	// second now needs its own 2 more agreements (3 total) to accept.
	_, _, err = l.Feed(second)
	require.NoError(t, err)
	outcome, code, err := l.Feed(second)
	require.NoError(t, err)
	assert.Equal(t, OutcomeLearned, outcome)
	assert.Equal(t, uint32(0x30), code.Address)
}

// TestLearner_NoiseDroppedSilently covers §8 property 8: a too-short
// buffer is noise, dropped without error surfaced as a callback-worthy
// failure, and leaves the learner armed.
func TestLearner_NoiseDroppedSilently(t *testing.T) {
	l := New()
	l.Arm(Target{Device: "tv", Action: "power"}, time.Minute, false)

	tooShort := pulse.Buffer{Pairs: []pulse.Pair{{Mark: 560, Space: 560}}}
	outcome, _, err := l.Feed(tooShort)
	assert.Equal(t, OutcomeNoise, outcome)
	assert.ErrorIs(t, err, ErrNoise)
	assert.Equal(t, Armed, l.CurrentState())
}

func TestLearner_DeadlineTimeout(t *testing.T) {
	l := New()
	l.Arm(Target{Device: "tv", Action: "power"}, time.Millisecond, false)
	time.Sleep(5 * time.Millisecond)
	assert.True(t, l.CheckDeadline(time.Now()))
	assert.Equal(t, Failed, l.CurrentState())
}

func TestLearner_StopIsIdempotentAndSilent(t *testing.T) {
	l := New()
	l.Arm(Target{Device: "tv", Action: "power"}, time.Minute, false)
	l.Stop()
	assert.Equal(t, Idle, l.CurrentState())
	l.Stop() // idempotent
	assert.Equal(t, Idle, l.CurrentState())
}

// TestLearner_RawFallback covers the raw-fallback path: an
// undecodable-but-plausible-length buffer learns as protocol.Raw.
func TestLearner_RawFallback(t *testing.T) {
	l := New()
	l.Arm(Target{Device: "cst", Action: "custom1"}, time.Minute, true)

	pairs := make([]pulse.Pair, 12)
	for i := range pairs {
		pairs[i] = pulse.Pair{Mark: 300 + i*10, Space: 400 + i*5}
	}
	buf := pulse.Buffer{Pairs: pairs}

	_, _, err := l.Feed(buf)
	require.NoError(t, err)
	outcome, code, err := l.Feed(buf)
	require.NoError(t, err)
	assert.Equal(t, OutcomeLearned, outcome)
	assert.Equal(t, protocol.Raw, code.Protocol)
}
