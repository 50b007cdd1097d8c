package peer

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func fakeClock(now *int64) Clock {
	return func() int64 { return *now }
}

func TestElectRoleIsLowerMACWins(t *testing.T) {
	macA := MAC{0x02, 0x01, 0, 0, 0, 0}
	macB := MAC{0x02, 0x02, 0, 0, 0, 0}

	require.True(t, ElectRole(macA, macB))
	require.False(t, ElectRole(macB, macA))
}

func TestHandleMessagePingProducesPongAndRTT(t *testing.T) {
	bus := NewMemBus()
	macA := MAC{0x02, 0x01}
	macB := MAC{0x02, 0x02}

	radioA := bus.Join(macA)
	radioB := bus.Join(macB)

	var nowA, nowB int64
	a := NewDiscovery(macA, radioA, fakeClock(&nowA))
	b := NewDiscovery(macB, radioB, fakeClock(&nowB))
	a.Start()
	b.Start()

	// A sees a beacon from B directly (bypassing real broadcast timing).
	beaconFromB := encodeHeader(Header{Type: MsgBeacon, SenderMAC: macB}, nil)
	a.HandleMessage(beaconFromB)
	require.NotNil(t, a.Table.Get(macB))

	// Advance A past the 3s ping delay and tick: A has not beaconed yet, so
	// it first broadcasts a beacon, then sends Ping to B.
	nowA = microseconds(PingAfter)
	a.Tick()

	beacon, err := radioB.Receive(0)
	require.NoError(t, err)
	beaconHdr, _, ok := decodeHeader(beacon)
	require.True(t, ok)
	require.Equal(t, MsgBeacon, beaconHdr.Type)

	payload, err := radioB.Receive(0)
	require.NoError(t, err)
	hdr, _, ok := decodeHeader(payload)
	require.True(t, ok)
	require.Equal(t, MsgPing, hdr.Type)

	// B handles the Ping and replies with Pong.
	nowB = 1000
	b.HandleMessage(payload)

	reply, err := radioA.Receive(0)
	require.NoError(t, err)
	replyHdr, _, ok := decodeHeader(reply)
	require.True(t, ok)
	require.Equal(t, MsgPong, replyHdr.Type)

	// A handles the Pong: RTT recorded, discovery succeeds.
	nowA = microseconds(PingAfter) + 5000
	a.HandleMessage(reply)

	require.Equal(t, ResultSuccess, a.Result())
	peer := a.RTTPeer()
	require.NotNil(t, peer)
	require.Equal(t, int64(5000), peer.LastRttUs)
}

func TestDiscoveryTimesOutWithNoPeer(t *testing.T) {
	var now int64
	d := NewDiscovery(MAC{1}, NewMemBus().Join(MAC{1}), fakeClock(&now))
	d.Start()
	now = microseconds(DiscoveryTimeout)
	d.Tick()
	require.Equal(t, ResultNoPeer, d.Result())
}
