package game

import (
	"testing"

	"github.com/stretchr/testify/require"
)

type fakeTouch struct {
	touched map[int]bool
	count   int
}

func newFakeTouch(n int) *fakeTouch {
	return &fakeTouch{touched: map[int]bool{}, count: n}
}

func (f *fakeTouch) PadCount() int          { return f.count }
func (f *fakeTouch) IsTouched(pad int) bool { return f.touched[pad] }

func newTestEngine(now *int64) (*Engine, *fakeTouch, *[]Event) {
	touch := newFakeTouch(4)
	clock := func() int64 { return *now }
	var events []Event
	e := NewEngine(7, clock, touch, FeedbackCallbacks{})
	e.EventCallback = func(ev Event) { events = append(events, ev) }
	return e, touch, &events
}

func TestArmTimeoutProducesExactlyOneMiss(t *testing.T) {
	var now int64
	e, _, events := newTestEngine(&now)

	e.Arm(ArmConfig{TimeoutMs: 100, FeedbackMode: FeedbackLED})
	e.Tick() // consumes pending arm -> Armed

	now = 150_000
	e.Tick() // timeout -> Feedback, emits Miss
	require.Len(t, *events, 1)
	require.Equal(t, Miss, (*events)[0].Type)
	require.Equal(t, uint32(0), (*events)[0].ReactionTimeUs)
	require.Equal(t, Feedback, e.State())

	now = 400_000
	e.Tick()
	require.Equal(t, Ready, e.State())
	require.Len(t, *events, 1) // still exactly one event
}

func TestArmTouchProducesExactlyOneHit(t *testing.T) {
	var now int64
	e, touch, events := newTestEngine(&now)

	e.Arm(ArmConfig{TimeoutMs: 3000, FeedbackMode: FeedbackLED | FeedbackAudio})
	e.Tick()

	now = 150_000
	touch.touched[2] = true
	e.Tick()

	require.Len(t, *events, 1)
	ev := (*events)[0]
	require.Equal(t, Hit, ev.Type)
	require.Equal(t, uint32(150_000), ev.ReactionTimeUs)
	require.Equal(t, uint8(2), ev.PadIndex)
	require.Equal(t, Feedback, e.State())

	now = 400_000
	e.Tick()
	require.Equal(t, Ready, e.State())
}

func TestDisarmFromAnyStateEmitsNoEvent(t *testing.T) {
	var now int64
	e, _, events := newTestEngine(&now)
	e.Arm(ArmConfig{TimeoutMs: 1000})
	e.Tick()
	require.Equal(t, Armed, e.State())

	e.Disarm()
	e.Tick()
	require.Equal(t, Ready, e.State())
	require.Empty(t, *events)
}

func TestTouchCheckedBeforeTimeoutOnSameTick(t *testing.T) {
	var now int64
	e, touch, events := newTestEngine(&now)
	e.Arm(ArmConfig{TimeoutMs: 50})
	e.Tick()

	now = 50_000 // exactly at the deadline AND touched
	touch.touched[1] = true
	e.Tick()

	require.Len(t, *events, 1)
	require.Equal(t, Hit, (*events)[0].Type) // touch wins over timeout
}
