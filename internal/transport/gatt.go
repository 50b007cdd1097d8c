package transport

import (
	"sync"
	"time"

	"domes/internal/protocol"
)

// GATTTransport is a thin stand-in for a BLE GATT link: a single
// notify/write characteristic pair modeled as two byte channels. The
// actual BlueZ D-Bus plumbing is explicitly out of scope (§1); this gives
// the core something that honours the Transport contract end-to-end for
// tests without a real Bluetooth adapter.
type GATTTransport struct {
	rx chan []byte
	tx chan []byte

	mu          sync.Mutex
	initialized bool
	connected   bool
}

// NewGATTPair returns two GATTTransports wired to each other, as if one
// were the central's view of a characteristic and the other the
// peripheral's.
func NewGATTPair() (central, peripheral *GATTTransport) {
	a := make(chan []byte, 64)
	b := make(chan []byte, 64)
	central = &GATTTransport{rx: a, tx: b}
	peripheral = &GATTTransport{rx: b, tx: a}
	return central, peripheral
}

func (g *GATTTransport) Init() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.initialized {
		return protocol.ErrAlreadyInit
	}
	g.initialized = true
	g.connected = true
	return nil
}

func (g *GATTTransport) Send(b []byte) error {
	g.mu.Lock()
	if !g.initialized {
		g.mu.Unlock()
		return protocol.ErrNotInitialized
	}
	if !g.connected {
		g.mu.Unlock()
		return protocol.ErrDisconnected
	}
	g.mu.Unlock()

	cp := make([]byte, len(b))
	copy(cp, b)
	g.tx <- cp
	return nil
}

func (g *GATTTransport) Receive(buf []byte, timeout time.Duration) (int, error) {
	g.mu.Lock()
	if !g.initialized {
		g.mu.Unlock()
		return 0, protocol.ErrNotInitialized
	}
	if !g.connected {
		g.mu.Unlock()
		return 0, protocol.ErrDisconnected
	}
	g.mu.Unlock()

	var timer <-chan time.Time
	if timeout > 0 {
		timer = time.After(timeout)
	} else {
		timer = time.After(time.Millisecond)
	}

	select {
	case chunk := <-g.rx:
		n := copy(buf, chunk)
		return n, nil
	case <-timer:
		return 0, protocol.ErrTimeout
	}
}

func (g *GATTTransport) IsConnected() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.connected
}

func (g *GATTTransport) Disconnect() error {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.connected = false
	return nil
}
