// Package transport defines the abstract bidirectional byte channel
// contract (§4.6) and its concrete implementations: USB-CDC serial, TCP
// stream, and a datagram radio transport plus a thin BLE GATT contract.
// A per-connection decoder+dispatcher loop (internal/dispatch) reads bytes
// from whichever Transport a pod is configured with; core logic never
// depends on which concrete transport it is talking over.
package transport

import (
	"time"

	"domes/internal/protocol"
)

// Transport is the contract every concrete byte-stream channel implements.
type Transport interface {
	// Init opens the underlying channel. Fails with ErrAlreadyInit if
	// already open. An underlying open failure is returned as the
	// concrete channel's own wrapped error (net, serial), not as
	// ErrIoError.
	Init() error
	// Send blocks until all of b is accepted by the channel. Fails with
	// ErrNotInitialized or ErrDisconnected; an underlying write failure is
	// returned as the channel's wrapped error, not as ErrIoError.
	Send(b []byte) error
	// Receive reads up to len(buf) bytes within timeout. A timeout of 0
	// is non-blocking. Returns the number of bytes read; fails with
	// ErrTimeout when nothing arrives in the window, or ErrDisconnected;
	// an underlying read failure is returned as the channel's wrapped
	// error, not as ErrIoError.
	Receive(buf []byte, timeout time.Duration) (int, error)
	// IsConnected is a pure observer.
	IsConnected() bool
	// Disconnect idempotently tears the channel down.
	Disconnect() error
}

// Flusher is an optional capability: block until the TX queue drains.
type Flusher interface {
	Flush() error
}

// Availabler is an optional capability: a best-effort count of bytes that
// can be read immediately without blocking.
type Availabler interface {
	Available() (int, error)
}

// requireInitialized translates a "not yet initialised" guard into the
// shared error taxonomy. The transports in this package check their own
// flags inline and do not call it.
func requireInitialized(initialized bool) error {
	if !initialized {
		return protocol.ErrNotInitialized
	}
	return nil
}
