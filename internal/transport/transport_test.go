package transport

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"domes/internal/protocol"
)

var (
	_ Transport = (*SerialTransport)(nil)
	_ Transport = (*TCPTransport)(nil)
	_ Transport = (*DatagramTransport)(nil)
	_ Transport = (*GATTTransport)(nil)
)

func TestGATTPairRoundTrip(t *testing.T) {
	central, peripheral := NewGATTPair()
	require.NoError(t, central.Init())
	require.NoError(t, peripheral.Init())

	require.NoError(t, central.Send([]byte("hello")))
	buf := make([]byte, 16)
	n, err := peripheral.Receive(buf, time.Second)
	require.NoError(t, err)
	require.Equal(t, "hello", string(buf[:n]))
}

func TestGATTReceiveTimesOutWithNoData(t *testing.T) {
	central, peripheral := NewGATTPair()
	require.NoError(t, central.Init())
	require.NoError(t, peripheral.Init())

	buf := make([]byte, 16)
	_, err := central.Receive(buf, 5*time.Millisecond)
	require.ErrorIs(t, err, protocol.ErrTimeout)
}

func TestGATTOperationsBeforeInitFail(t *testing.T) {
	central, _ := NewGATTPair()
	require.ErrorIs(t, central.Send([]byte("x")), protocol.ErrNotInitialized)
	_, err := central.Receive(make([]byte, 4), time.Millisecond)
	require.ErrorIs(t, err, protocol.ErrNotInitialized)
}

func TestGATTDisconnectIsIdempotent(t *testing.T) {
	central, _ := NewGATTPair()
	require.NoError(t, central.Init())
	require.NoError(t, central.Disconnect())
	require.NoError(t, central.Disconnect())
	require.False(t, central.IsConnected())
	require.ErrorIs(t, central.Send([]byte("x")), protocol.ErrDisconnected)
}
