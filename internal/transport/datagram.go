package transport

import (
	"fmt"
	"net"
	"sync"
	"time"

	"domes/internal/protocol"
)

// DatagramTransport backs the peer service's short-range radio link with
// UDP broadcast/unicast, standing in for the real radio physical layer
// (explicitly out of scope per §1 — only the byte-channel contract above
// it matters to the core).
type DatagramTransport struct {
	localAddr     string
	broadcastAddr string

	mu          sync.Mutex
	conn        *net.UDPConn
	initialized bool
	connected   bool
}

// NewDatagramTransport returns a transport bound to localAddr (e.g.
// ":9000") that sends unicast/broadcast datagrams to broadcastAddr by
// default (e.g. "255.255.255.255:9000").
func NewDatagramTransport(localAddr, broadcastAddr string) *DatagramTransport {
	return &DatagramTransport{localAddr: localAddr, broadcastAddr: broadcastAddr}
}

func (t *DatagramTransport) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.initialized {
		return protocol.ErrAlreadyInit
	}
	addr, err := net.ResolveUDPAddr("udp4", t.localAddr)
	if err != nil {
		return fmt.Errorf("transport: resolve %s: %w", t.localAddr, err)
	}
	conn, err := net.ListenUDP("udp4", addr)
	if err != nil {
		return fmt.Errorf("transport: listen udp %s: %w", t.localAddr, err)
	}
	t.conn = conn
	t.initialized = true
	t.connected = true
	return nil
}

// Send broadcasts b to the configured broadcast address. Peer-service
// unicast addressing is handled one layer up (internal/peer tracks peer
// addresses and calls SendTo).
func (t *DatagramTransport) Send(b []byte) error {
	return t.SendTo(t.broadcastAddr, b)
}

// SendTo sends b to a specific UDP address, used for unicast Ping/Pong/
// ArmTouch/etc. messages once a peer's address is known.
func (t *DatagramTransport) SendTo(addr string, b []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.initialized {
		return protocol.ErrNotInitialized
	}
	if !t.connected {
		return protocol.ErrDisconnected
	}
	dst, err := net.ResolveUDPAddr("udp4", addr)
	if err != nil {
		return fmt.Errorf("transport: resolve dest %s: %w", addr, err)
	}
	if _, err := t.conn.WriteToUDP(b, dst); err != nil {
		return fmt.Errorf("transport: udp write: %w", err)
	}
	return nil
}

// ReceiveFrom reads one datagram and also returns the sender's address,
// which the peer service needs to learn a newly-discovered peer's
// network address (distinct from its radio MAC).
func (t *DatagramTransport) ReceiveFrom(buf []byte, timeout time.Duration) (int, *net.UDPAddr, error) {
	t.mu.Lock()
	if !t.initialized {
		t.mu.Unlock()
		return 0, nil, protocol.ErrNotInitialized
	}
	if !t.connected {
		t.mu.Unlock()
		return 0, nil, protocol.ErrDisconnected
	}
	conn := t.conn
	t.mu.Unlock()

	if timeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(timeout))
	} else {
		_ = conn.SetReadDeadline(time.Now().Add(time.Millisecond))
	}
	n, addr, err := conn.ReadFromUDP(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return 0, nil, protocol.ErrTimeout
		}
		return 0, nil, fmt.Errorf("transport: udp read: %w", err)
	}
	return n, addr, nil
}

func (t *DatagramTransport) Receive(buf []byte, timeout time.Duration) (int, error) {
	n, _, err := t.ReceiveFrom(buf, timeout)
	return n, err
}

func (t *DatagramTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

func (t *DatagramTransport) Disconnect() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return nil
	}
	t.connected = false
	if t.conn != nil {
		return t.conn.Close()
	}
	return nil
}
