// Package fleet implements the host-side gateway that bridges several
// pods' framed transport connections to a gRPC + HTTP surface for human
// tooling — the explicitly out-of-core "host-side CLI" collaborator named
// in the peer-service spec, given a concrete shape modeled directly on
// internal/driver/host/bridge.go (the teacher's own host-to-device
// bridge) and internal/driver/device/server.go (the gRPC server shape).
package fleet

import (
	"fmt"
	"sync"
	"time"

	"domes/internal/protocol"
	"domes/internal/transport"
)

// PodLink is one pod's connection as seen from the gateway: a transport
// plus the bookkeeping the gateway needs to answer ListPods/ArmPod/
// TraceDump without the pod's own dispatch.Loop (that loop lives on the
// pod, not here — the gateway is a frame client, not a handler).
type PodLink struct {
	PodID       uint8
	Mac         string
	FirmwareVer string

	mu        sync.Mutex
	transport transport.Transport
	mode      string
	lastSeen  time.Time
}

// NewPodLink wraps an already-Init'd transport for podID.
func NewPodLink(podID uint8, mac string, t transport.Transport) *PodLink {
	return &PodLink{PodID: podID, Mac: mac, transport: t, mode: "unknown", lastSeen: time.Now()}
}

// SetMode records the pod's last-known mode string for ListPods. Nothing
// in this package calls it, so a link reports "unknown" until a caller
// sets the mode.
func (p *PodLink) SetMode(mode string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.mode = mode
	p.lastSeen = time.Now()
}

// Mode returns the last-known mode.
func (p *PodLink) Mode() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.mode
}

// LastSeen returns the last time this link successfully exchanged a frame.
func (p *PodLink) LastSeen() time.Time {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.lastSeen
}

// Connected reports whether the underlying transport is still up.
func (p *PodLink) Connected() bool {
	return p.transport.IsConnected()
}

// sendFrame encodes and writes one frame to the pod.
func (p *PodLink) sendFrame(frameType byte, payload []byte) error {
	buf, err := protocol.EncodeAlloc(frameType, payload)
	if err != nil {
		return fmt.Errorf("fleet: encode type=0x%02x: %w", frameType, err)
	}
	if err := p.transport.Send(buf); err != nil {
		return fmt.Errorf("fleet: send to pod %d: %w", p.PodID, err)
	}
	return nil
}

// recvFrame reads bytes from the transport until one frame decodes or
// timeout elapses.
func (p *PodLink) recvFrame(timeout time.Duration) (frameType byte, payload []byte, err error) {
	dec := protocol.NewDecoder()
	deadline := time.Now().Add(timeout)
	buf := make([]byte, protocol.MaxFrameSize)

	for time.Now().Before(deadline) {
		n, rerr := p.transport.Receive(buf, 100*time.Millisecond)
		if rerr != nil {
			continue
		}
		consumed, state := dec.PushBytes(buf[:n])
		_ = consumed
		if state == protocol.Complete {
			p.mu.Lock()
			p.lastSeen = time.Now()
			p.mu.Unlock()
			out := make([]byte, len(dec.Payload()))
			copy(out, dec.Payload())
			return dec.Type(), out, nil
		}
		if state == protocol.Error {
			dec.Reset()
		}
	}
	return 0, nil, fmt.Errorf("fleet: recv from pod %d: timeout", p.PodID)
}
