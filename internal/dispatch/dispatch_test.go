package dispatch

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"domes/internal/protocol"
	"domes/internal/transport"
)

func TestRouterDispatchesByTypeRange(t *testing.T) {
	r := NewRouter(nil)
	var gotOta, gotTrace, gotConfig bool
	r.SetOtaHandler(func(f Frame) ([]byte, error) { gotOta = true; return nil, nil })
	r.SetTraceHandler(func(f Frame) ([]byte, error) { gotTrace = true; return nil, nil })
	r.SetConfigHandler(func(f Frame) ([]byte, error) { gotConfig = true; return nil, nil })

	_, err := r.Dispatch(Frame{Type: protocol.TypeOtaBegin})
	require.NoError(t, err)
	_, err = r.Dispatch(Frame{Type: protocol.TypeTraceDump})
	require.NoError(t, err)
	_, err = r.Dispatch(Frame{Type: protocol.TypeConfigSetFeatureReq})
	require.NoError(t, err)

	require.True(t, gotOta)
	require.True(t, gotTrace)
	require.True(t, gotConfig)
}

func TestRouterDropsUnknownType(t *testing.T) {
	r := NewRouter(nil)
	reply, err := r.Dispatch(Frame{Type: 0x7F})
	require.NoError(t, err)
	require.Nil(t, reply)
}

func TestLoopDecodesAndRepliesOverGATTPair(t *testing.T) {
	central, peripheral := NewGATTTestPair(t)

	r := NewRouter(nil)
	r.SetConfigHandler(func(f Frame) ([]byte, error) {
		return protocol.EncodeAlloc(protocol.TypeConfigSetFeatureRsp, []byte{0x00})
	})
	loop := NewLoop(peripheral, r, nil)

	stop := make(chan struct{})
	go loop.Run(func() bool {
		select {
		case <-stop:
			return false
		default:
			return true
		}
	})
	defer close(stop)

	frame, err := protocol.EncodeAlloc(protocol.TypeConfigSetFeatureReq, []byte{0x05, 0x01})
	require.NoError(t, err)
	require.NoError(t, central.Send(frame))

	buf := make([]byte, protocol.MaxFrameSize)
	n, err := central.Receive(buf, time.Second)
	require.NoError(t, err)

	decoder := protocol.NewDecoder()
	_, state := decoder.PushBytes(buf[:n])
	require.Equal(t, protocol.Complete, state)
	require.Equal(t, protocol.TypeConfigSetFeatureRsp, decoder.Type())
}

// NewGATTTestPair exposes transport.NewGATTPair typed as transport.Transport
// for this package's tests.
func NewGATTTestPair(t *testing.T) (transport.Transport, transport.Transport) {
	t.Helper()
	central, peripheral := transport.NewGATTPair()
	require.NoError(t, central.Init())
	require.NoError(t, peripheral.Init())
	return central, peripheral
}
