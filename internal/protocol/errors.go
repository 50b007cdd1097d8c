// Package protocol implements the DOMES framed transport codec: a
// length-prefixed, CRC-checked byte encoding shared by every concrete
// transport (USB-CDC, TCP, BLE GATT, radio datagram).
package protocol

import "errors"

// TransportError is the shared error taxonomy carried across every
// framed-protocol layer: encoder, decoder, dispatcher and transport.
// Handler-level failures (OTA flash errors, invalid config features) are
// reported as status codes in reply payloads, not as TransportError.
type TransportError int

const (
	ErrNone TransportError = iota
	ErrTimeout
	ErrDisconnected
	ErrInvalidArg
	ErrBufferFull
	ErrBufferEmpty
	ErrCrcMismatch
	ErrProtocolError
	ErrNotInitialized
	ErrAlreadyInit
	ErrIoError
	ErrNoMemory
)

func (e TransportError) String() string {
	switch e {
	case ErrNone:
		return "ok"
	case ErrTimeout:
		return "timeout"
	case ErrDisconnected:
		return "disconnected"
	case ErrInvalidArg:
		return "invalid argument"
	case ErrBufferFull:
		return "buffer full"
	case ErrBufferEmpty:
		return "buffer empty"
	case ErrCrcMismatch:
		return "crc mismatch"
	case ErrProtocolError:
		return "protocol error"
	case ErrNotInitialized:
		return "not initialized"
	case ErrAlreadyInit:
		return "already initialized"
	case ErrIoError:
		return "io error"
	case ErrNoMemory:
		return "no memory"
	default:
		return "unknown transport error"
	}
}

// Error implements the error interface so a TransportError can be
// returned directly and matched with errors.Is against the same constant
// (errors.Is(err, ErrTimeout)). errors.Is does not equate a TransportError
// with its *Sentinel counterpart below; they are distinct values.
func (e TransportError) Error() string { return e.String() }

// Sentinel errors, one per TransportError value, for errors.Is comparisons
// the way the rest of this module wraps lower-level failures with %w.
var (
	ErrTimeoutSentinel      = errors.New(ErrTimeout.String())
	ErrDisconnectedSentinel = errors.New(ErrDisconnected.String())
	ErrInvalidArgSentinel   = errors.New(ErrInvalidArg.String())
	ErrBufferFullSentinel   = errors.New(ErrBufferFull.String())
	ErrBufferEmptySentinel  = errors.New(ErrBufferEmpty.String())
	ErrCrcMismatchSentinel  = errors.New(ErrCrcMismatch.String())
	ErrProtocolErrSentinel  = errors.New(ErrProtocolError.String())
	ErrNotInitSentinel      = errors.New(ErrNotInitialized.String())
	ErrAlreadyInitSentinel  = errors.New(ErrAlreadyInit.String())
	ErrIoErrorSentinel      = errors.New(ErrIoError.String())
	ErrNoMemorySentinel     = errors.New(ErrNoMemory.String())
)
