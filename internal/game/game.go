// Package game implements the per-pod reaction-drill state machine:
// ready -> armed -> triggered -> feedback -> ready, driven by a ~10ms
// tick and a polled touch source.
package game

import "sync/atomic"

// State is one state of the game engine.
type State uint32

const (
	Ready State = iota
	Armed
	Triggered
	Feedback
)

func (s State) String() string {
	switch s {
	case Ready:
		return "Ready"
	case Armed:
		return "Armed"
	case Triggered:
		return "Triggered"
	case Feedback:
		return "Feedback"
	default:
		return "Unknown"
	}
}

// EventType distinguishes a hit from a timed-out miss.
type EventType uint8

const (
	Hit EventType = iota
	Miss
)

func (e EventType) String() string {
	if e == Hit {
		return "Hit"
	}
	return "Miss"
}

// Event is emitted once per completed round.
type Event struct {
	Type           EventType
	PodID          uint8
	ReactionTimeUs uint32 // 0 for Miss
	PadIndex       uint8  // 0 for Miss
}

// Feedback mode bits, §3.
const (
	FeedbackLED   uint8 = 0x01
	FeedbackAudio uint8 = 0x02
)

// ArmConfig configures one arming.
type ArmConfig struct {
	TimeoutMs    uint32
	FeedbackMode uint8
}

const feedbackDurationUs = 200_000

// TouchSource polls the pads for a touch. IsTouched reports whether pad is
// currently touched; the engine calls it for every pad index in
// [0, PadCount) each Armed tick, in order, and captures the first touched
// index.
type TouchSource interface {
	PadCount() int
	IsTouched(pad int) bool
}

// FeedbackCallbacks are invoked from the game-tick task on entry to
// Feedback; they must not block.
type FeedbackCallbacks struct {
	FlashWhite func()
	FlashRed   func()
	PlayBeep   func()
}

// Clock is the monotonic microsecond clock used for reaction-time
// measurement and feedback-duration timing.
type Clock func() int64

// pendingArm carries an arming request across the Arm/Tick boundary: Arm
// may be called from a different goroutine than Tick, so the request is
// published through an atomic.Pointer rather than written directly onto
// Engine's owned fields.
type pendingArm struct {
	cfg ArmConfig
}

// Engine is the per-pod game FSM. It is owned by exactly one task (the
// game-tick task); other tasks interact with it only through Arm/Disarm
// (which publish a request via a single atomic member) or the
// EventCallback it invokes on them.
type Engine struct {
	podID uint8
	clock Clock
	touch TouchSource
	fb    FeedbackCallbacks

	// EventCallback is invoked once per completed round, synchronously
	// from the goroutine that calls Tick.
	EventCallback func(Event)

	state State

	armConfig      ArmConfig
	armedAtUs      int64
	feedbackAtUs   int64
	lastPadIndex   uint8
	lastReactionUs uint32

	pending atomic.Pointer[pendingArm] // set by Arm, consumed by Tick
	disarm  atomic.Bool                // set by Disarm, consumed by Tick
}

// NewEngine returns an engine in Ready state for the given pod, polling
// touch and driving fb on feedback entry.
func NewEngine(podID uint8, clock Clock, touch TouchSource, fb FeedbackCallbacks) *Engine {
	return &Engine{podID: podID, clock: clock, touch: touch, fb: fb, state: Ready}
}

// PodID returns the engine's persisted pod identifier.
func (e *Engine) PodID() uint8 { return e.podID }

// State returns the current FSM state. The authoritative owner is the
// game-tick task; other callers get a best-effort snapshot.
func (e *Engine) State() State { return e.state }

// Arm publishes an arming request, applied on the next Tick. Safe to call
// from any goroutine.
func (e *Engine) Arm(cfg ArmConfig) {
	e.pending.Store(&pendingArm{cfg: cfg})
}

// Disarm requests an unconditional return to Ready on the next Tick, with
// no event emitted. Safe to call from any goroutine.
func (e *Engine) Disarm() {
	e.disarm.Store(true)
}

// Tick advances the FSM by one ~10ms step. It must only be called from
// the engine's owning task.
func (e *Engine) Tick() {
	if e.disarm.Swap(false) {
		e.state = Ready
		return
	}

	switch e.state {
	case Ready:
		if p := e.pending.Swap(nil); p != nil {
			e.armConfig = p.cfg
			e.armedAtUs = e.clock()
			e.state = Armed
		}

	case Armed:
		e.tickArmed()

	case Triggered:
		e.tickTriggered()

	case Feedback:
		if e.clock()-e.feedbackAtUs >= feedbackDurationUs {
			e.state = Ready
		}
	}

	// A fresh Arm request published while in a non-Ready state is picked
	// up only once the engine returns to Ready; nothing to do here.
}

// tickArmed polls touch first, timeout second: a tick that detects touch
// and a tick whose deadline has passed cannot both fire for the same
// arming.
func (e *Engine) tickArmed() {
	for pad := 0; pad < e.touch.PadCount(); pad++ {
		if e.touch.IsTouched(pad) {
			e.lastPadIndex = uint8(pad)
			e.lastReactionUs = uint32(e.clock() - e.armedAtUs)
			e.state = Triggered
			e.tickTriggered() // cascade: Triggered's tick fires in the same Tick call
			return
		}
	}
	if e.clock()-e.armedAtUs >= int64(e.armConfig.TimeoutMs)*1000 {
		e.enterFeedback(Miss, 0, 0)
	}
}

func (e *Engine) tickTriggered() {
	e.enterFeedback(Hit, e.lastPadIndex, e.lastReactionUs)
}

func (e *Engine) enterFeedback(typ EventType, pad uint8, reactionUs uint32) {
	e.feedbackAtUs = e.clock()
	e.state = Feedback

	switch typ {
	case Hit:
		if e.armConfig.FeedbackMode&FeedbackLED != 0 && e.fb.FlashWhite != nil {
			e.fb.FlashWhite()
		}
		if e.armConfig.FeedbackMode&FeedbackAudio != 0 && e.fb.PlayBeep != nil {
			e.fb.PlayBeep()
		}
	case Miss:
		if e.armConfig.FeedbackMode&FeedbackLED != 0 && e.fb.FlashRed != nil {
			e.fb.FlashRed()
		}
	}

	if e.EventCallback != nil {
		e.EventCallback(Event{
			Type:           typ,
			PodID:          e.podID,
			ReactionTimeUs: reactionUs,
			PadIndex:       pad,
		})
	}
}
