package dispatch

import (
	"errors"
	"log"
	"time"

	"domes/internal/protocol"
	"domes/internal/transport"
)

// ReceiveBackoff is how long the loop sleeps after an IoError before
// retrying, per §7's propagation policy.
const ReceiveBackoff = 100 * time.Millisecond

// ReceiveTimeout bounds each transport.Receive call; a timeout is treated
// as a normal idle signal, not an error.
const ReceiveTimeout = 200 * time.Millisecond

// Loop reads bytes from a Transport, feeds them through a streaming
// decoder, and routes complete frames to a Router — the "per-connection
// decoder + dispatcher loop" named in §4.6. Run is meant to execute as one
// supervised taskmanager task.
type Loop struct {
	transport transport.Transport
	router    *Router
	logger    *log.Logger

	// frameErrors counts frames the decoder rejected (bad length or CRC
	// mismatch) — the decoder's Error state doesn't distinguish the two,
	// so both §7 counters alias the same tally.
	frameErrors uint64
}

// NewLoop builds a Loop over t, routing complete frames through r.
func NewLoop(t transport.Transport, r *Router, logger *log.Logger) *Loop {
	if logger == nil {
		logger = log.Default()
	}
	return &Loop{transport: t, router: r, logger: logger}
}

// CrcErrors returns the number of frames the decoder rejected, counted
// for diagnostics per §7.
func (l *Loop) CrcErrors() uint64 { return l.frameErrors }

// ProtocolErrors returns the number of frames the decoder rejected,
// counted for diagnostics per §7.
func (l *Loop) ProtocolErrors() uint64 { return l.frameErrors }

// Run drives the loop until shouldRun reports false or the transport
// disconnects. It implements the §7 propagation policy: Timeout/
// BufferEmpty loop silently; Disconnected terminates cleanly; IoError is
// logged with a backoff; CrcMismatch/ProtocolError are counted and the
// decoder is reset.
func (l *Loop) Run(shouldRun func() bool) {
	decoder := protocol.NewDecoder()
	buf := make([]byte, protocol.MaxFrameSize)

	for shouldRun() {
		n, err := l.transport.Receive(buf, ReceiveTimeout)
		if err != nil {
			switch {
			case errors.Is(err, protocol.ErrTimeout), errors.Is(err, protocol.ErrBufferEmpty):
				continue
			case errors.Is(err, protocol.ErrDisconnected):
				l.logger.Printf("dispatch: transport disconnected, stopping loop")
				return
			default:
				l.logger.Printf("dispatch: transport error: %v", err)
				time.Sleep(ReceiveBackoff)
				continue
			}
		}

		consumed := 0
		for consumed < n {
			used, state := decoder.PushBytes(buf[consumed:n])
			consumed += used

			switch state {
			case protocol.Complete:
				frame := Frame{Type: decoder.Type(), Payload: append([]byte(nil), decoder.Payload()...)}
				decoder.Reset()
				reply, err := l.router.Dispatch(frame)
				if err != nil {
					l.logger.Printf("dispatch: %v", err)
					continue
				}
				if reply != nil {
					if sendErr := l.transport.Send(reply); sendErr != nil {
						l.logger.Printf("dispatch: send reply: %v", sendErr)
					}
				}
			case protocol.Error:
				l.frameErrors++
				decoder.Reset()
			default:
				// Ran out of input mid-frame; wait for more bytes.
			}
		}
	}
}
