// Package ota implements the begin/data/end/abort receiver state machine
// (§4.2): a host drives firmware onto an alternate flash partition through
// a stop-and-wait protocol, one session at a time, verified by SHA-256 on
// commit.
package ota

import (
	"crypto/sha256"
	"fmt"

	"domes/internal/drivers"
)

// Status is the OtaStatus taxonomy carried in Ack/Abort payloads, distinct
// from the transport error enum.
type Status uint8

const (
	StatusOk Status = iota
	StatusBusy
	StatusFlashError
	StatusVerifyFailed
	StatusSizeMismatch
	StatusOffsetMismatch
	StatusVersionError
	StatusPartitionError
	StatusAborted
)

func (s Status) String() string {
	switch s {
	case StatusOk:
		return "Ok"
	case StatusBusy:
		return "Busy"
	case StatusFlashError:
		return "FlashError"
	case StatusVerifyFailed:
		return "VerifyFailed"
	case StatusSizeMismatch:
		return "SizeMismatch"
	case StatusOffsetMismatch:
		return "OffsetMismatch"
	case StatusVersionError:
		return "VersionError"
	case StatusPartitionError:
		return "PartitionError"
	case StatusAborted:
		return "Aborted"
	default:
		return fmt.Sprintf("Status(%d)", uint8(s))
	}
}

const maxVersionLen = 32

// State is the implicit session state named in §4.2.
type State uint8

const (
	StateIdle State = iota
	StateReceiving
)

func (s State) String() string {
	if s == StateReceiving {
		return "Receiving"
	}
	return "Idle"
}

// BeginRequest is the decoded Begin payload: size:u32 | sha256:[u8;32] |
// version:utf8<=32.
type BeginRequest struct {
	Size    uint32
	SHA256  [32]byte
	Version string
}

// DataChunk is the decoded Data payload: offset:u32 | len:u16 | bytes.
type DataChunk struct {
	Offset uint32
	Bytes  []byte
}

// AckReply is the Ack(status, nextOffset) reply every successful step
// produces.
type AckReply struct {
	Status     Status
	NextOffset uint32
}

// Abort reasons carried in the Abort frame. Session itself emits no Abort
// frame (failures, including flash errors, are reported through
// AckReply.Status) and Session.Abort takes no reason, so these constants
// only name the reason byte.
const (
	AbortHostRequested uint8 = iota
	AbortFlashError
	AbortTransportLoss
)

// Session is the writer-side state machine for one OTA update. A Session
// is not safe for concurrent use from more than one goroutine; the
// dispatcher that owns a transport connection owns exactly one Session.
type Session struct {
	partition drivers.Partition

	state   State
	size    uint32
	sha256  [32]byte
	version string

	bytesReceived uint32
	nextOffset    uint32

	targetPartition drivers.PartitionID
	writer          drivers.WriterHandle

	// ScheduleReboot, if set, is invoked instead of drivers.Partition.Reboot
	// directly after a successful End, so callers can defer the real
	// reboot by >= 1s to let the acknowledgement flush (§4.2).
	ScheduleReboot func()
}

// NewSession returns a session bound to partition, initially Idle.
func NewSession(partition drivers.Partition) *Session {
	return &Session{partition: partition, state: StateIdle}
}

// State reports the current session state.
func (s *Session) State() State { return s.state }

// Begin handles a Begin frame in either Idle or Receiving (the latter
// first discards the in-flight session, per §4.2's "Begin in Receiving"
// row).
func (s *Session) Begin(req BeginRequest) AckReply {
	if s.state == StateReceiving {
		s.discard()
	}

	alt, err := s.partition.GetAlternate()
	if err != nil {
		return AckReply{Status: StatusPartitionError, NextOffset: 0}
	}

	// The simulated partition layer has no notion of a fixed slot size;
	// a real implementation would compare req.Size against the alternate
	// slot's capacity here. We still honour a declared zero size as
	// invalid, matching the spirit of the size check.
	if req.Size == 0 {
		return AckReply{Status: StatusSizeMismatch, NextOffset: 0}
	}

	w, err := s.partition.BeginWriter(alt, req.Size)
	if err != nil {
		return AckReply{Status: StatusPartitionError, NextOffset: 0}
	}

	s.targetPartition = alt
	s.writer = w
	s.size = req.Size
	s.sha256 = req.SHA256
	if len(req.Version) > maxVersionLen {
		req.Version = req.Version[:maxVersionLen]
	}
	s.version = req.Version
	s.bytesReceived = 0
	s.nextOffset = 0
	s.state = StateReceiving

	return AckReply{Status: StatusOk, NextOffset: 0}
}

// Data handles a Data frame. Outside Receiving it is simply Aborted, per
// the "Data in Idle" row.
func (s *Session) Data(chunk DataChunk) AckReply {
	if s.state != StateReceiving {
		return AckReply{Status: StatusAborted, NextOffset: 0}
	}

	if chunk.Offset != s.nextOffset {
		return AckReply{Status: StatusOffsetMismatch, NextOffset: s.nextOffset}
	}

	if err := s.partition.Write(s.writer, chunk.Bytes); err != nil {
		s.abortInternal()
		return AckReply{Status: StatusFlashError, NextOffset: 0}
	}

	s.bytesReceived += uint32(len(chunk.Bytes))
	s.nextOffset += uint32(len(chunk.Bytes))
	return AckReply{Status: StatusOk, NextOffset: s.nextOffset}
}

// End handles an End frame: verifies size, commits the writer (which
// re-verifies SHA-256), and on success sets the new boot partition and
// schedules a reboot.
func (s *Session) End() AckReply {
	if s.state != StateReceiving {
		return AckReply{Status: StatusAborted, NextOffset: 0}
	}

	if s.bytesReceived != s.size {
		s.abortInternal()
		return AckReply{Status: StatusSizeMismatch, NextOffset: s.bytesReceived}
	}

	if err := s.partition.Commit(s.writer, s.sha256); err != nil {
		reply := AckReply{Status: StatusVerifyFailed, NextOffset: s.bytesReceived}
		s.state = StateIdle
		s.writer = nil
		return reply
	}

	if err := s.partition.SetBoot(s.targetPartition); err != nil {
		s.state = StateIdle
		s.writer = nil
		return AckReply{Status: StatusPartitionError, NextOffset: s.bytesReceived}
	}

	received := s.bytesReceived
	s.state = StateIdle
	s.writer = nil

	if s.ScheduleReboot != nil {
		s.ScheduleReboot()
	} else {
		s.partition.Reboot()
	}

	return AckReply{Status: StatusOk, NextOffset: received}
}

// Abort handles an explicit Abort frame or a transport-loss event; valid
// in any state, a no-op in Idle.
func (s *Session) Abort() {
	if s.state == StateReceiving {
		s.discard()
	}
}

func (s *Session) abortInternal() {
	s.discard()
}

func (s *Session) discard() {
	if s.writer != nil {
		s.partition.Abort(s.writer)
	}
	s.writer = nil
	s.state = StateIdle
	s.bytesReceived = 0
	s.nextOffset = 0
}

// Version returns the declared version string of the current or most
// recent session — present only for host-side logging (§9 Open Questions);
// the receiver never validates its form.
func (s *Session) Version() string { return s.version }

// VerifySHA256 is a small helper exposed for callers (e.g. tests or an
// alternate commit path) that want to check a byte slice against a
// declared digest without going through the partition layer.
func VerifySHA256(data []byte, want [32]byte) bool {
	return sha256.Sum256(data) == want
}
