package drivers

import (
	"crypto/sha256"
	"errors"
)

// PartitionID identifies a flash partition slot.
type PartitionID int

const (
	PartitionFactory PartitionID = iota
	PartitionOtaA
	PartitionOtaB
)

// WriterHandle is an opaque handle to an in-progress partition write,
// scoped to exactly one OTA session (§3: "partition handle (opaque)").
type WriterHandle interface{}

// Partition is the OTA target abstraction (§6). The core never touches
// flash directly; it drives an in-progress write through the handle this
// interface hands back from BeginWriter.
type Partition interface {
	// BeginWriter opens a writer for partition sized for exactly size
	// bytes of incoming image data.
	BeginWriter(partition PartitionID, size uint32) (WriterHandle, error)
	// Write appends bytes to the writer in order; callers are responsible
	// for offset bookkeeping (the OTA session tracks nextOffset).
	Write(h WriterHandle, data []byte) error
	// Abort discards an in-progress write without committing it.
	Abort(h WriterHandle)
	// Commit re-reads the written partition, computes its SHA-256 and
	// compares it against expectedSHA256; on match it returns nil and the
	// partition contents are final. A mismatch returns a non-nil error and
	// leaves the boot partition unchanged.
	Commit(h WriterHandle, expectedSHA256 [32]byte) error
	// SetBoot marks partition as the one to boot on next reset.
	SetBoot(partition PartitionID) error
	// GetAlternate returns the partition slot that is not currently
	// active, i.e. the OTA target.
	GetAlternate() (PartitionID, error)
	// Reboot restarts the device. Never returns on real hardware.
	Reboot()
}

var (
	errNoSuchWriter          = errors.New("drivers: no such writer")
	errSimulatedFlashFailure = errors.New("drivers: simulated flash write failure")
	errSHAMismatch           = errors.New("drivers: image sha256 mismatch on commit")
)

// simWriter tracks one in-progress BeginWriter/Write/Commit-or-Abort
// sequence for SimPartition.
type simWriter struct {
	partition PartitionID
	size      uint32
	buf       []byte
	aborted   bool
}

// SimPartition is an in-memory Partition implementation for tests and
// cmd/podsim, in the same spirit as the seedhammer driver/mjolnir/sim.go
// simulator: a believable stand-in for hardware that a test can drive and
// inspect, not a mock.
type SimPartition struct {
	Slots      map[PartitionID][]byte
	ActiveSlot PartitionID

	// FailWrites, when true, makes every Write call fail, for exercising
	// the OTA FlashError path.
	FailWrites  bool
	RebootCount int

	writers map[WriterHandle]*simWriter
	nextID  int
}

// NewSimPartition returns a two-slot simulated flash with partition 0
// marked active/factory and partition 1 (PartitionOtaA) as the alternate.
func NewSimPartition() *SimPartition {
	return &SimPartition{
		Slots:      map[PartitionID][]byte{},
		ActiveSlot: PartitionFactory,
		writers:    map[WriterHandle]*simWriter{},
	}
}

func (p *SimPartition) BeginWriter(partition PartitionID, size uint32) (WriterHandle, error) {
	p.nextID++
	h := p.nextID
	p.writers[h] = &simWriter{partition: partition, size: size}
	return h, nil
}

func (p *SimPartition) Write(h WriterHandle, data []byte) error {
	w, ok := p.writers[h]
	if !ok || w.aborted {
		return errNoSuchWriter
	}
	if p.FailWrites {
		return errSimulatedFlashFailure
	}
	w.buf = append(w.buf, data...)
	return nil
}

func (p *SimPartition) Abort(h WriterHandle) {
	if w, ok := p.writers[h]; ok {
		w.aborted = true
		delete(p.writers, h)
	}
}

func (p *SimPartition) Commit(h WriterHandle, expectedSHA256 [32]byte) error {
	w, ok := p.writers[h]
	if !ok || w.aborted {
		return errNoSuchWriter
	}
	actual := sha256.Sum256(w.buf)
	if actual != expectedSHA256 {
		return errSHAMismatch
	}
	p.Slots[w.partition] = w.buf
	delete(p.writers, h)
	return nil
}

func (p *SimPartition) SetBoot(partition PartitionID) error {
	p.ActiveSlot = partition
	return nil
}

func (p *SimPartition) GetAlternate() (PartitionID, error) {
	if p.ActiveSlot == PartitionOtaA {
		return PartitionOtaB, nil
	}
	return PartitionOtaA, nil
}

func (p *SimPartition) Reboot() {
	p.RebootCount++
}
