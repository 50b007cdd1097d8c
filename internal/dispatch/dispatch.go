// Package dispatch routes decoded frames to the handler that owns their
// type range (§4.6): OTA 0x01-0x05, trace 0x10-0x17, config 0x20-0x27.
// A single dispatcher loop can therefore route without any per-transport
// knowledge of which handler owns which byte.
package dispatch

import (
	"fmt"
	"log"

	"domes/internal/protocol"
)

// Frame is a decoded, dispatch-ready message: its type byte and payload.
type Frame struct {
	Type    byte
	Payload []byte
}

// Handler processes one frame and optionally returns a reply to send back
// over the same transport (nil if no reply is warranted). The reply is
// written to the transport as-is, so it must already be a complete encoded
// frame (e.g. from protocol.EncodeAlloc), not a bare payload.
type Handler func(f Frame) (reply []byte, err error)

// Router holds one Handler per named range and routes by byte value.
type Router struct {
	logger *log.Logger

	ota    Handler
	trace  Handler
	config Handler
}

// NewRouter returns a Router using logger for unknown-type and error
// reporting (log.Default() if nil).
func NewRouter(logger *log.Logger) *Router {
	if logger == nil {
		logger = log.Default()
	}
	return &Router{logger: logger}
}

// SetOtaHandler registers the handler for frame types 0x01-0x05.
func (r *Router) SetOtaHandler(h Handler) { r.ota = h }

// SetTraceHandler registers the handler for frame types 0x10-0x17.
func (r *Router) SetTraceHandler(h Handler) { r.trace = h }

// SetConfigHandler registers the handler for frame types 0x20-0x27.
func (r *Router) SetConfigHandler(h Handler) { r.config = h }

// Dispatch routes f to the handler owning its type range. Unknown types
// are logged and dropped, per §4.6.
func (r *Router) Dispatch(f Frame) ([]byte, error) {
	switch {
	case protocol.InRange(f.Type, protocol.OtaRangeLo, protocol.OtaRangeHi):
		return r.call(r.ota, f)
	case protocol.InRange(f.Type, protocol.TraceRangeLo, protocol.TraceRangeHi):
		return r.call(r.trace, f)
	case protocol.InRange(f.Type, protocol.ConfigRangeLo, protocol.ConfigRangeHi):
		return r.call(r.config, f)
	default:
		r.logger.Printf("dispatch: dropping unknown frame type 0x%02x", f.Type)
		return nil, nil
	}
}

func (r *Router) call(h Handler, f Frame) ([]byte, error) {
	if h == nil {
		r.logger.Printf("dispatch: no handler registered for frame type 0x%02x", f.Type)
		return nil, nil
	}
	reply, err := h(f)
	if err != nil {
		return nil, fmt.Errorf("dispatch: handler for type 0x%02x: %w", f.Type, err)
	}
	return reply, nil
}
