package peer

import (
	"sync"
	"time"

	"domes/internal/transport"
)

// DatagramRadio adapts a transport.DatagramTransport (real UDP) to the
// Radio interface the peer service needs, learning each MAC's network
// address from the sender_mac carried in every message header rather
// than needing out-of-band address configuration.
type DatagramRadio struct {
	dg   *transport.DatagramTransport
	self MAC

	mu   sync.Mutex
	addr map[MAC]string
}

// NewDatagramRadio wraps dg (already Init'd) for self. Peer network
// addresses are not configured here; they are learned from the sender MAC
// of each received message.
func NewDatagramRadio(dg *transport.DatagramTransport, self MAC) *DatagramRadio {
	return &DatagramRadio{dg: dg, self: self, addr: make(map[MAC]string)}
}

func (r *DatagramRadio) Broadcast(payload []byte) error {
	return r.dg.Send(payload)
}

func (r *DatagramRadio) SendTo(mac MAC, payload []byte) error {
	r.mu.Lock()
	addr, known := r.addr[mac]
	r.mu.Unlock()
	if !known {
		// No learned address yet; fall back to broadcast so ArmTouch/
		// SetColor/etc. still arrive — the recipient's own MAC check in
		// the header lets uninterested peers ignore it.
		return r.dg.Send(payload)
	}
	return r.dg.SendTo(addr, payload)
}

func (r *DatagramRadio) Receive(timeout time.Duration) ([]byte, error) {
	buf := make([]byte, 512)
	n, from, err := r.dg.ReceiveFrom(buf, timeout)
	if err != nil {
		return nil, ErrNoData
	}
	payload := buf[:n]
	if hdr, _, ok := decodeHeader(payload); ok && from != nil {
		r.mu.Lock()
		r.addr[hdr.SenderMAC] = from.String()
		r.mu.Unlock()
	}
	return payload, nil
}
