package peer

import (
	"log"
	"sync/atomic"
	"time"

	"domes/internal/drivers"
	"domes/internal/game"
	"domes/internal/mode"
)

// pollInterval bounds how often the master and slave loops check the
// radio and their shouldRun signal; it is not part of the wire protocol.
const pollInterval = 50 * time.Millisecond

// responseEnvelope is added to a round's arm timeout to tolerate radio
// latency on the TouchEvent/TimeoutEvent reply (§4.5 phase 3a step 3).
const responseEnvelope = 5 * time.Second

// kInterRoundDelay separates consecutive rounds in the master drill loop.
const kInterRoundDelay = 1 * time.Second

// RoundSpec configures one round of the master drill loop.
type RoundSpec struct {
	TargetPeer   bool
	Color        drivers.RGBW
	TimeoutMs    uint32
	FeedbackMode uint8
}

// RoundOutcome distinguishes why a round ended.
type RoundOutcome int

const (
	OutcomeHit RoundOutcome = iota
	OutcomeMiss
	OutcomeNoResponse // envelope elapsed with neither TouchEvent nor TimeoutEvent
)

// RoundResult is one completed round's recorded result.
type RoundResult struct {
	Outcome        RoundOutcome
	ReactionTimeUs uint32
	PadIndex       uint8
}

// touchOutcome carries a completed local arming across the game-tick
// task's EventCallback into the peer loop (§4.5, cross-thread handoff):
// the callback stores a fully-populated pointer (a release), and the
// loop swaps it out (an acquire) before acting on it.
type touchOutcome struct {
	masterMAC  MAC
	hit        bool
	reactionUs uint32
	pad        uint8
}

// Service wires the discovery/role/drill phases together over one pod's
// radio, game engine, and LED ring.
type Service struct {
	self   MAC
	radio  Radio
	clock  Clock
	engine *game.Engine
	led    drivers.LED
	fsm    *mode.FSM
	logger *log.Logger

	pendingOutcome atomic.Pointer[touchOutcome]
	localEvents    chan game.Event
}

// NewService returns a Service for self, ready to run Discover and then
// either RunMaster or RunSlave depending on the elected role.
func NewService(self MAC, radio Radio, clock Clock, engine *game.Engine, led drivers.LED, fsm *mode.FSM, logger *log.Logger) *Service {
	return &Service{
		self:        self,
		radio:       radio,
		clock:       clock,
		engine:      engine,
		led:         led,
		fsm:         fsm,
		logger:      logger,
		localEvents: make(chan game.Event, 1),
	}
}

// Discover runs phase 1 to completion (success or NoPeer), polling the
// radio at pollInterval and driving Discovery.Tick at the same cadence.
// It returns the elected peer MAC and whether self is master (phase 2);
// ok is false when discovery produced NoPeer.
func (s *Service) Discover(shouldRun func() bool) (peerMAC MAC, isMaster bool, ok bool) {
	d := NewDiscovery(s.self, s.radio, s.clock)
	d.Start()
	for shouldRun() {
		if raw, err := s.radio.Receive(pollInterval); err == nil {
			d.HandleMessage(raw)
		}
		d.Tick()
		switch d.Result() {
		case ResultSuccess:
			peer := d.RTTPeer()
			isMaster = ElectRole(s.self, peer.MAC)
			s.logf("discovery: peer %s found, rtt=%dus, master=%v", peer.MAC, peer.LastRttUs, isMaster)
			return peer.MAC, isMaster, true
		case ResultNoPeer:
			s.logf("discovery: no peer after timeout")
			return MAC{}, false, false
		}
	}
	return MAC{}, false, false
}

func (s *Service) logf(format string, args ...any) {
	if s.logger != nil {
		s.logger.Printf(format, args...)
	}
}

// RunMaster drives phase 3a: one round per entry in rounds, against
// peerMAC, returning to Connected and broadcasting StopAll at the end.
func (s *Service) RunMaster(shouldRun func() bool, peerMAC MAC, rounds []RoundSpec) []RoundResult {
	s.engine.EventCallback = func(ev game.Event) {
		select {
		case s.localEvents <- ev:
		default:
		}
	}

	results := make([]RoundResult, 0, len(rounds))
	for _, round := range rounds {
		if !shouldRun() {
			break
		}
		results = append(results, s.runRound(shouldRun, peerMAC, round))
		s.sleepOrStop(shouldRun, kInterRoundDelay)
	}

	s.broadcast(MsgStopAll, nil)
	if s.fsm != nil {
		s.fsm.Transition(mode.Connected)
	}
	return results
}

func (s *Service) runRound(shouldRun func() bool, peerMAC MAC, round RoundSpec) RoundResult {
	deadline := time.Duration(round.TimeoutMs)*time.Millisecond + responseEnvelope

	if round.TargetPeer {
		s.unicast(peerMAC, MsgSetColor, encodeSetColor(SetColorBody{R: round.Color.R, G: round.Color.G, B: round.Color.B}))
		s.unicast(peerMAC, MsgArmTouch, encodeArmTouch(ArmTouchBody{TimeoutMs: round.TimeoutMs, FeedbackMode: round.FeedbackMode}))
		return s.waitForPeerResult(shouldRun, peerMAC, deadline)
	}

	s.led.SetAll(round.Color)
	_ = s.led.Refresh()
	s.engine.Arm(game.ArmConfig{TimeoutMs: round.TimeoutMs, FeedbackMode: round.FeedbackMode})
	return s.waitForLocalResult(shouldRun, deadline)
}

func (s *Service) waitForPeerResult(shouldRun func() bool, peerMAC MAC, deadline time.Duration) RoundResult {
	deadlineAt := time.Now().Add(deadline)
	for shouldRun() && time.Now().Before(deadlineAt) {
		raw, err := s.radio.Receive(pollInterval)
		if err != nil {
			continue
		}
		hdr, body, ok := decodeHeader(raw)
		if !ok || hdr.SenderMAC != peerMAC {
			continue
		}
		switch hdr.Type {
		case MsgTouchEvent:
			if ev, ok := decodeTouchEvent(body); ok {
				return RoundResult{Outcome: OutcomeHit, ReactionTimeUs: ev.ReactionTimeUs, PadIndex: ev.PadIndex}
			}
		case MsgTimeoutEvent:
			return RoundResult{Outcome: OutcomeMiss}
		}
	}
	return RoundResult{Outcome: OutcomeNoResponse}
}

func (s *Service) waitForLocalResult(shouldRun func() bool, deadline time.Duration) RoundResult {
	timer := time.NewTimer(deadline)
	defer timer.Stop()
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()
	for {
		select {
		case ev := <-s.localEvents:
			if ev.Type == game.Hit {
				return RoundResult{Outcome: OutcomeHit, ReactionTimeUs: ev.ReactionTimeUs, PadIndex: ev.PadIndex}
			}
			return RoundResult{Outcome: OutcomeMiss}
		case <-timer.C:
			return RoundResult{Outcome: OutcomeNoResponse}
		case <-ticker.C:
			if !shouldRun() {
				return RoundResult{Outcome: OutcomeNoResponse}
			}
		}
	}
}

func (s *Service) sleepOrStop(shouldRun func() bool, d time.Duration) {
	deadlineAt := time.Now().Add(d)
	for shouldRun() && time.Now().Before(deadlineAt) {
		time.Sleep(pollInterval)
	}
}

// RunSlave drives phase 3b: a message-handler loop reacting to JoinGame,
// ArmTouch, SetColor and StopAll, until shouldRun returns false.
func (s *Service) RunSlave(shouldRun func() bool) {
	for shouldRun() {
		if raw, err := s.radio.Receive(pollInterval); err == nil {
			s.handleSlaveMessage(raw)
		}
		if outcome := s.pendingOutcome.Swap(nil); outcome != nil {
			s.reportOutcome(outcome)
		}
	}
}

func (s *Service) reportOutcome(o *touchOutcome) {
	if o.hit {
		s.unicast(o.masterMAC, MsgTouchEvent, encodeTouchEvent(TouchEventBody{ReactionTimeUs: o.reactionUs, PadIndex: o.pad}))
		return
	}
	s.unicast(o.masterMAC, MsgTimeoutEvent, nil)
}

func (s *Service) handleSlaveMessage(raw []byte) {
	hdr, body, ok := decodeHeader(raw)
	if !ok || hdr.SenderMAC == s.self {
		return
	}

	switch hdr.Type {
	case MsgJoinGame:
		if s.fsm != nil {
			s.fsm.Transition(mode.Game)
		}

	case MsgArmTouch:
		armBody, ok := decodeArmTouch(body)
		if !ok {
			return
		}
		masterMAC := hdr.SenderMAC
		s.engine.EventCallback = func(ev game.Event) {
			s.pendingOutcome.Store(&touchOutcome{
				masterMAC:  masterMAC,
				hit:        ev.Type == game.Hit,
				reactionUs: ev.ReactionTimeUs,
				pad:        ev.PadIndex,
			})
		}
		s.engine.Arm(game.ArmConfig{TimeoutMs: armBody.TimeoutMs, FeedbackMode: armBody.FeedbackMode})

	case MsgSetColor:
		colorBody, ok := decodeSetColor(body)
		if !ok {
			return
		}
		s.led.SetAll(drivers.RGBW{R: colorBody.R, G: colorBody.G, B: colorBody.B})
		_ = s.led.Refresh()

	case MsgStopAll:
		s.engine.Disarm()
		if s.fsm != nil {
			s.fsm.Transition(mode.Connected)
		}
	}
}

func (s *Service) broadcast(t MessageType, body []byte) {
	msg := encodeHeader(Header{Type: t, SenderMAC: s.self, TimestampUs: uint32(s.clock())}, body)
	_ = s.radio.Broadcast(msg)
}

func (s *Service) unicast(to MAC, t MessageType, body []byte) {
	msg := encodeHeader(Header{Type: t, SenderMAC: s.self, TimestampUs: uint32(s.clock())}, body)
	_ = s.radio.SendTo(to, msg)
}
