package mode

import (
	"testing"

	"github.com/stretchr/testify/require"

	"domes/internal/featuremask"
)

func newFSMAt(t int64) (*FSM, *int64) {
	now := t
	clock := func() int64 { return now }
	var mask featuremask.Mask
	return NewFSM(&mask, clock), &now
}

func TestModeTimeoutSequence(t *testing.T) {
	f, now := newFSMAt(0)
	require.True(t, f.Transition(Idle))
	require.True(t, f.Transition(Triage))

	*now = 10_000_000
	f.Tick()
	require.Equal(t, Triage, f.Current())

	*now = 20_000_000
	f.Tick()
	require.Equal(t, Triage, f.Current())

	*now = 30_000_000
	f.Tick()
	require.Equal(t, Triage, f.Current())

	*now = 31_000_000
	f.Tick()
	require.Equal(t, Idle, f.Current())
	require.Equal(t, featuremask.BuildMask(featuremask.FeatureLED, featuremask.FeatureBLE), f.mask.Raw())
}

func TestModeTransitionTable(t *testing.T) {
	cases := []struct {
		from, to Mode
		want     bool
	}{
		{Booting, Idle, true},
		{Booting, Triage, false},
		{Idle, Triage, true},
		{Idle, Connected, true},
		{Idle, Game, false},
		{Triage, Connected, true},
		{Triage, Game, false},
		{Connected, Triage, true},
		{Connected, Game, true},
		{Game, Connected, true},
		{Game, Triage, false},
		{Connected, ErrorMode, true},
		{Game, ErrorMode, true},
		{ErrorMode, Idle, true},
	}
	for _, c := range cases {
		require.Equal(t, c.want, validTransition(c.from, c.to), "%v -> %v", c.from, c.to)
	}
}

func TestInvalidTransitionLeavesStateUnchanged(t *testing.T) {
	f, _ := newFSMAt(0)
	require.Equal(t, Booting, f.Current())
	ok := f.Transition(Game)
	require.False(t, ok)
	require.Equal(t, Booting, f.Current())
}

func TestResetActivityTimerKeepsTriageAlive(t *testing.T) {
	f, now := newFSMAt(0)
	f.Transition(Idle)
	f.Transition(Triage)

	*now = 25_000_000
	f.ResetActivityTimer()
	*now = 50_000_000
	f.Tick()
	require.Equal(t, Triage, f.Current()) // 25s since last activity, still under 30s

	*now = 56_000_000
	f.Tick()
	require.Equal(t, Idle, f.Current())
}
