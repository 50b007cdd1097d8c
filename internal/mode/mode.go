// Package mode implements the system-mode state machine: the mode word
// and activity/mode-entered timestamps, each independently atomic, plus
// the per-mode feature mask applier and the timeout supervisor.
package mode

import (
	"sync/atomic"
	"time"

	"domes/internal/featuremask"
)

// Mode is one system-wide operating mode.
type Mode uint32

const (
	Booting Mode = iota
	Idle
	Triage
	Connected
	Game
	ErrorMode
)

func (m Mode) String() string {
	switch m {
	case Booting:
		return "Booting"
	case Idle:
		return "Idle"
	case Triage:
		return "Triage"
	case Connected:
		return "Connected"
	case Game:
		return "Game"
	case ErrorMode:
		return "Error"
	default:
		return "Unknown"
	}
}

// Clock abstracts the monotonic microsecond clock so timeout behaviour is
// testable without real sleeps.
type Clock func() int64

// TransitionFunc is invoked after a successful transition, with the
// (from, to) pair.
type TransitionFunc func(from, to Mode)

// FSM is the system-mode state machine described in §4.3. CurrentMode and
// both timestamps are each independently atomic; callers must not assume
// coherent reads of all three except at a transition boundary, where a
// mode-mask update is guaranteed visible before the mode word update it
// follows (release/acquire pair, see package mode's Transition).
type FSM struct {
	clock Clock

	currentMode    atomic.Uint32
	modeEnteredUs  atomic.Int64
	lastActivityUs atomic.Int64
	mask           *featuremask.Mask
	onTransition   TransitionFunc
}

// NewFSM returns an FSM starting in Booting, driving feature transitions
// on mask.
func NewFSM(mask *featuremask.Mask, clock Clock) *FSM {
	f := &FSM{clock: clock, mask: mask}
	now := clock()
	f.currentMode.Store(uint32(Booting))
	f.modeEnteredUs.Store(now)
	f.lastActivityUs.Store(now)
	return f
}

// SetTransitionCallback installs the optional (from, to) callback invoked
// after every successful transition.
func (f *FSM) SetTransitionCallback(cb TransitionFunc) {
	f.onTransition = cb
}

// Current returns the current mode.
func (f *FSM) Current() Mode {
	return Mode(f.currentMode.Load())
}

// ModeEnteredUs returns the monotonic microsecond timestamp of the last
// transition into the current mode.
func (f *FSM) ModeEnteredUs() int64 {
	return f.modeEnteredUs.Load()
}

// LastActivityUs returns the monotonic microsecond timestamp of the last
// activity reset: FSM construction, a successful Transition, or a call to
// ResetActivityTimer.
func (f *FSM) LastActivityUs() int64 {
	return f.lastActivityUs.Load()
}

// ResetActivityTimer is called by external actors on any received command
// to keep Triage alive past its idle timeout.
func (f *FSM) ResetActivityTimer() {
	f.lastActivityUs.Store(f.clock())
}

// featureMaskFor returns the feature bits a mode enables, per §4.3's table.
func featureMaskFor(m Mode) uint32 {
	switch m {
	case Booting:
		return 0
	case Idle:
		return featuremask.BuildMask(featuremask.FeatureLED, featuremask.FeatureBLE)
	case Triage:
		return featuremask.BuildMask(
			featuremask.FeatureLED, featuremask.FeatureBLE, featuremask.FeatureWifi,
			featuremask.FeatureTouch, featuremask.FeatureHaptic, featuremask.FeatureAudio,
		)
	case Connected, Game:
		return featuremask.BuildMask(
			featuremask.FeatureLED, featuremask.FeatureBLE, featuremask.FeatureRadioDatagram,
			featuremask.FeatureTouch, featuremask.FeatureHaptic, featuremask.FeatureAudio,
		)
	case ErrorMode:
		return featuremask.BuildMask(featuremask.FeatureLED, featuremask.FeatureBLE)
	default:
		return 0
	}
}

// validTransition implements the three-rule decision in §4.3.
func validTransition(from, to Mode) bool {
	if to == ErrorMode {
		return true
	}
	if to == Idle {
		return true
	}
	switch from {
	case Booting:
		return to == Idle
	case Idle:
		return to == Triage || to == Connected
	case Triage:
		return to == Connected
	case Connected:
		return to == Triage || to == Game
	case Game:
		return to == Connected
	default:
		return false
	}
}

// Transition attempts to move the FSM to target. It returns true if the
// transition was valid and applied; otherwise state is left unchanged and
// it returns false.
//
// On success: the target mode's feature mask is written before the mode
// word, so an observer that reads the new mode value is guaranteed to see
// at least the corresponding mask (never a stale one), per §5's ordering
// guarantee.
func (f *FSM) Transition(target Mode) bool {
	from := f.Current()
	if !validTransition(from, target) {
		return false
	}

	f.mask.SetMask(featureMaskFor(target))
	f.currentMode.Store(uint32(target))

	now := f.clock()
	f.modeEnteredUs.Store(now)
	f.lastActivityUs.Store(now)

	if f.onTransition != nil {
		f.onTransition(from, target)
	}
	return true
}

// Timeout rules, §4.3.
const (
	TriageTimeout = 30 * time.Second
	ErrorTimeout  = 10 * time.Second
	GameTimeout   = 5 * time.Minute
)

// Tick is called at ~10Hz by the mode supervisor task. It compares the
// current mode against its timeout rule and transitions if expired.
func (f *FSM) Tick() {
	now := f.clock()
	switch f.Current() {
	case Triage:
		if now-f.LastActivityUs() > TriageTimeout.Microseconds() {
			f.Transition(Idle)
		}
	case ErrorMode:
		if now-f.ModeEnteredUs() > ErrorTimeout.Microseconds() {
			f.Transition(Idle)
		}
	case Game:
		if now-f.ModeEnteredUs() > GameTimeout.Microseconds() {
			f.Transition(Connected)
		}
	}
}
