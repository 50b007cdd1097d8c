package fleet

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"domes/internal/protocol"
	"domes/internal/transport"
	"domes/pkg/domespb"
)

func TestListPodsReflectsRegisteredLinks(t *testing.T) {
	g := NewGateway(nil)
	central, _ := transport.NewGATTPair()
	link := NewPodLink(3, "02:03:00:00:00:00", central)
	link.SetMode("Game")
	g.AddPod(link)

	resp, err := g.ListPods(context.Background(), &domespb.ListPodsRequest{})
	require.NoError(t, err)
	require.Len(t, resp.Pods, 1)
	require.Equal(t, uint8(3), resp.Pods[0].PodID)
	require.Equal(t, "Game", resp.Pods[0].Mode)
}

func TestArmPodRoundTripsOverTransport(t *testing.T) {
	central, peripheral := transport.NewGATTPair()
	require.NoError(t, central.Init())
	require.NoError(t, peripheral.Init())

	g := NewGateway(nil)
	g.AddPod(NewPodLink(1, "02:01:00:00:00:00", central))

	done := make(chan struct{})
	go func() {
		defer close(done)
		dec := protocol.NewDecoder()
		buf := make([]byte, protocol.MaxFrameSize)
		for {
			n, err := peripheral.Receive(buf, time.Second)
			if err != nil {
				return
			}
			if _, state := dec.PushBytes(buf[:n]); state == protocol.Complete {
				require.Equal(t, protocol.TypeConfigArmReq, dec.Type())
				reply, _ := protocol.EncodeAlloc(protocol.TypeConfigArmRsp, []byte{1})
				_ = peripheral.Send(reply)
				return
			}
		}
	}()

	resp, err := g.ArmPod(context.Background(), &domespb.ArmPodRequest{PodID: 1, TimeoutMs: 1500, FeedbackMode: 1})
	require.NoError(t, err)
	require.True(t, resp.Accepted)

	<-done
}

func TestArmPodUnknownPodReportsError(t *testing.T) {
	g := NewGateway(nil)
	resp, err := g.ArmPod(context.Background(), &domespb.ArmPodRequest{PodID: 9})
	require.NoError(t, err)
	require.False(t, resp.Accepted)
	require.NotEmpty(t, resp.Error)
}
