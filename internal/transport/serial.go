package transport

import (
	"fmt"
	"sync"
	"time"

	goserial "github.com/tarm/serial"

	"domes/internal/protocol"
)

// SerialTransport is the USB-CDC byte-stream transport: a real TTY opened
// via tarm/serial, the way a pod's host-facing USB link is just a serial
// port from the process's point of view.
type SerialTransport struct {
	config goserial.Config

	mu          sync.Mutex
	port        *goserial.Port
	initialized bool
	connected   bool
}

// NewSerialTransport returns a transport that will open device at baud
// when Init is called.
func NewSerialTransport(device string, baud int) *SerialTransport {
	return &SerialTransport{config: goserial.Config{Name: device, Baud: baud}}
}

func (t *SerialTransport) Init() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.initialized {
		return protocol.ErrAlreadyInit
	}
	port, err := goserial.OpenPort(&t.config)
	if err != nil {
		return fmt.Errorf("transport: open serial %s: %w", t.config.Name, err)
	}
	t.port = port
	t.initialized = true
	t.connected = true
	return nil
}

func (t *SerialTransport) Send(b []byte) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.initialized {
		return protocol.ErrNotInitialized
	}
	if !t.connected {
		return protocol.ErrDisconnected
	}
	n := 0
	for n < len(b) {
		written, err := t.port.Write(b[n:])
		if err != nil {
			t.connected = false
			return fmt.Errorf("transport: serial write: %w", err)
		}
		n += written
	}
	return nil
}

func (t *SerialTransport) Receive(buf []byte, timeout time.Duration) (int, error) {
	t.mu.Lock()
	port := t.port
	initialized := t.initialized
	connected := t.connected
	t.mu.Unlock()

	if !initialized {
		return 0, protocol.ErrNotInitialized
	}
	if !connected {
		return 0, protocol.ErrDisconnected
	}

	type result struct {
		n   int
		err error
	}
	ch := make(chan result, 1)
	go func() {
		n, err := port.Read(buf)
		ch <- result{n, err}
	}()

	select {
	case r := <-ch:
		if r.err != nil {
			return 0, fmt.Errorf("transport: serial read: %w", r.err)
		}
		return r.n, nil
	case <-time.After(timeout):
		return 0, protocol.ErrTimeout
	}
}

func (t *SerialTransport) IsConnected() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.connected
}

func (t *SerialTransport) Disconnect() error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.connected {
		return nil
	}
	t.connected = false
	if t.port != nil {
		return t.port.Close()
	}
	return nil
}
