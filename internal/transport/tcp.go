package transport

import (
	"fmt"
	"net"
	"sync"
	"time"

	"domes/internal/protocol"
)

// TCPTransport is a byte-stream transport over a TCP connection, used by
// cmd/fleetgw to bridge a pod's framed protocol across a network link
// where a real USB-CDC cable isn't available.
type TCPTransport struct {
	dialAddr string
	conn     net.Conn

	mu          sync.Mutex
	initialized bool
	connected   bool
}

// NewTCPTransport returns a client-side transport that dials addr on Init.
func NewTCPTransport(addr string) *TCPTransport {
	return &TCPTransport{dialAddr: addr}
}

// NewTCPTransportFromConn wraps an already-accepted connection (server
// side of a listener), skipping the dial step in Init.
func NewTCPTransportFromConn(conn net.Conn) *TCPTransport {
	return &TCPTransport{conn: conn, initialized: true, connected: true}
}

func (t *TCPTransport) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.initialized {
		return protocol.ErrAlreadyInit
	}
	conn, err := net.DialTimeout("tcp", t.dialAddr, 5*time.Second)
	if err != nil {
		return fmt.Errorf("transport: dial %s: %w", t.dialAddr, err)
	}
	t.conn = conn
	t.initialized = true
	t.connected = true
	return nil
}

func (t *TCPTransport) Send(b []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.initialized {
		return protocol.ErrNotInitialized
	}
	if !t.connected {
		return protocol.ErrDisconnected
	}
	if _, err := t.conn.Write(b); err != nil {
		t.connected = false
		return fmt.Errorf("transport: tcp write: %w", err)
	}
	return nil
}

func (t *TCPTransport) Receive(buf []byte, timeout time.Duration) (int, error) {
	t.mu.Lock()
	if !t.initialized {
		t.mu.Unlock()
		return 0, protocol.ErrNotInitialized
	}
	if !t.connected {
		t.mu.Unlock()
		return 0, protocol.ErrDisconnected
	}
	conn := t.conn
	t.mu.Unlock()

	if timeout > 0 {
		_ = conn.SetReadDeadline(time.Now().Add(timeout))
	} else {
		_ = conn.SetReadDeadline(time.Now().Add(time.Millisecond))
	}

	n, err := conn.Read(buf)
	if err != nil {
		if ne, ok := err.(net.Error); ok && ne.Timeout() {
			return 0, protocol.ErrTimeout
		}
		t.mu.Lock()
		t.connected = false
		t.mu.Unlock()
		return 0, fmt.Errorf("transport: tcp read: %w", err)
	}
	return n, nil
}

func (t *TCPTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

func (t *TCPTransport) Disconnect() error {
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
