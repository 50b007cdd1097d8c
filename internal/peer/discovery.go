package peer

import "time"

// Clock returns monotonic microseconds, matching the clock shape used
// throughout (mode.Clock, game.Clock).
type Clock func() int64

// Discovery timing constants (§4.5 phase 1).
const (
	BeaconInterval   = 2 * time.Second
	PingAfter        = 3 * time.Second
	DiscoveryTimeout = 10 * time.Second
)

func microseconds(d time.Duration) int64 { return int64(d / time.Microsecond) }

// Result is the terminal outcome of a Discovery run.
type Result int

const (
	ResultPending Result = iota
	ResultSuccess
	ResultNoPeer
)

// Discovery runs phase 1 (§4.5): beacon broadcast, first-peer ping/pong,
// RTT measurement. It is driven by Tick (periodic, ~10Hz or coarser) and
// HandleMessage (one per inbound radio datagram); neither blocks, so a
// single goroutine can drive both from one Receive loop.
type Discovery struct {
	self  MAC
	radio Radio
	clock Clock
	Table *Table

	startedAtUs    int64
	lastBeaconAtUs int64
	pingedMAC      MAC
	havePinged     bool
	result         Result
	rttPeerMAC     MAC
}

// NewDiscovery returns a Discovery for self over radio, using clock for
// timestamps.
func NewDiscovery(self MAC, radio Radio, clock Clock) *Discovery {
	return &Discovery{self: self, radio: radio, clock: clock, Table: NewTable(), result: ResultPending}
}

// Start marks the discovery run's beginning instant, from which the 3s
// ping delay and 10s timeout are measured.
func (d *Discovery) Start() {
	now := d.clock()
	d.startedAtUs = now
	d.lastBeaconAtUs = 0
}

// Result reports the current outcome; ResultPending until either a
// ping/pong RTT is recorded (ResultSuccess) or 10s elapse with none
// (ResultNoPeer).
func (d *Discovery) Result() Result { return d.result }

// RTTPeer returns the peer Discovery completed successfully against, or
// nil if not yet successful.
func (d *Discovery) RTTPeer() *Peer {
	if d.result != ResultSuccess {
		return nil
	}
	return d.Table.Get(d.rttPeerMAC)
}

// Tick drives the beacon/ping/timeout schedule. Call at any cadence finer
// than BeaconInterval (a 100ms-class supervisor tick is sufficient).
func (d *Discovery) Tick() {
	if d.result != ResultPending {
		return
	}
	now := d.clock()
	elapsed := now - d.startedAtUs

	if now-d.lastBeaconAtUs >= microseconds(BeaconInterval) {
		d.broadcastBeacon(now)
		d.lastBeaconAtUs = now
	}

	if !d.havePinged && elapsed >= microseconds(PingAfter) {
		if first := d.Table.First(); first != nil {
			d.sendPing(first.MAC, now)
		}
	}

	if elapsed >= microseconds(DiscoveryTimeout) {
		d.result = ResultNoPeer
	}
}

func (d *Discovery) broadcastBeacon(now int64) {
	msg := encodeHeader(Header{Type: MsgBeacon, SenderMAC: d.self, TimestampUs: uint32(now)}, nil)
	_ = d.radio.Broadcast(msg)
}

func (d *Discovery) sendPing(to MAC, now int64) {
	msg := encodeHeader(Header{Type: MsgPing, SenderMAC: d.self, TimestampUs: uint32(now)}, nil)
	if err := d.radio.SendTo(to, msg); err == nil {
		d.havePinged = true
		d.pingedMAC = to
		if p := d.Table.Get(to); p != nil {
			p.PingSent = true
			p.PingSentAtUs = now
		}
	}
}

// HandleMessage decodes one inbound datagram and applies discovery-phase
// semantics: beacon table updates, Ping->Pong reply, Pong->RTT recording.
// Messages outside the discovery message set (JoinGame, ArmTouch, ...)
// are ignored here; the drill-phase loops handle those.
func (d *Discovery) HandleMessage(raw []byte) {
	hdr, _, ok := decodeHeader(raw)
	if !ok || hdr.SenderMAC == d.self {
		return
	}
	now := d.clock()

	switch hdr.Type {
	case MsgBeacon:
		d.Table.Observe(hdr.SenderMAC, now, true)

	case MsgPing:
		d.Table.Observe(hdr.SenderMAC, now, false)
		pong := encodeHeader(Header{Type: MsgPong, SenderMAC: d.self, TimestampUs: uint32(now)}, nil)
		_ = d.radio.SendTo(hdr.SenderMAC, pong)

	case MsgPong:
		d.Table.Observe(hdr.SenderMAC, now, false)
		if d.result == ResultPending && d.havePinged && hdr.SenderMAC == d.pingedMAC {
			if p := d.Table.Get(hdr.SenderMAC); p != nil && p.PingSent {
				p.LastRttUs = now - p.PingSentAtUs
				d.rttPeerMAC = hdr.SenderMAC
				d.result = ResultSuccess
			}
		}
	}
}

// ElectRole compares self against peer lexicographically (§4.5 phase 2):
// the lower MAC is master.
func ElectRole(self, peer MAC) (isMaster bool) {
	return self.Less(peer)
}
