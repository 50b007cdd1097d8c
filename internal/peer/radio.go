package peer

import (
	"sync"
	"time"
)

// Radio is the narrow capability the peer service needs from the
// underlying transport (§4.6's datagram-radio concrete implementation,
// abstracted one more level): broadcast, unicast-by-MAC, and receive. The
// physical layer behind it is explicitly out of scope (§1).
type Radio interface {
	Broadcast(payload []byte) error
	SendTo(mac MAC, payload []byte) error
	Receive(timeout time.Duration) (payload []byte, err error)
}

// noDataError is the type of ErrNoData, returned by Receive when no
// datagram arrived within the timeout window.
type noDataError struct{}

func (noDataError) Error() string { return "peer: no datagram within timeout" }

// ErrNoData is the sentinel for a Receive timeout.
var ErrNoData error = noDataError{}

// busSubscriber is one MemRadio's inbox on a MemBus.
type busSubscriber struct {
	mac   MAC
	inbox chan []byte
}

// MemBus is an in-process broadcast medium shared by several MemRadios,
// standing in for the radio physical layer in tests (several simulated
// pods in one process), the way the rest of this
// module substitutes in-memory "sim" collaborators for hardware the core
// only ever touches through an interface.
type MemBus struct {
	mu   sync.Mutex
	subs []*busSubscriber
}

// NewMemBus returns an empty shared medium.
func NewMemBus() *MemBus { return &MemBus{} }

// Join registers mac on the bus and returns a Radio for it.
func (b *MemBus) Join(mac MAC) *MemRadio {
	sub := &busSubscriber{mac: mac, inbox: make(chan []byte, 64)}
	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	return &MemRadio{bus: b, self: sub}
}

func (b *MemBus) deliver(fromMAC MAC, toMAC MAC, payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, sub := range b.subs {
		if sub.mac == fromMAC {
			continue
		}
		if toMAC == BroadcastMAC || sub.mac == toMAC {
			cp := make([]byte, len(payload))
			copy(cp, payload)
			select {
			case sub.inbox <- cp:
			default:
				// Drop on a full inbox rather than block the sender, matching
				// the transport contract's producer-never-blocks-indefinitely
				// spirit for a lossy radio medium.
			}
		}
	}
}

// MemRadio is one pod's view of a MemBus.
type MemRadio struct {
	bus  *MemBus
	self *busSubscriber
}

func (r *MemRadio) Broadcast(payload []byte) error {
	r.bus.deliver(r.self.mac, BroadcastMAC, payload)
	return nil
}

func (r *MemRadio) SendTo(mac MAC, payload []byte) error {
	r.bus.deliver(r.self.mac, mac, payload)
	return nil
}

func (r *MemRadio) Receive(timeout time.Duration) ([]byte, error) {
	select {
	case payload := <-r.self.inbox:
		return payload, nil
	default:
	}
	select {
	case payload := <-r.self.inbox:
		return payload, nil
	case <-time.After(timeout):
		return nil, ErrNoData
	}
}
