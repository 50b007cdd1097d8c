package trace

import "encoding/binary"

// MaxEventsPerDataFrame caps each Data frame at 8 events, keeping every
// export frame comfortably under the 1024-byte frame payload cap and
// minimising host-side buffering.
const MaxEventsPerDataFrame = 8

// MetadataFrame is the first frame of an export: a summary plus the
// registered task name table.
type MetadataFrame struct {
	EventCount   uint32
	DroppedCount uint32
	StartTs      uint32
	EndTs        uint32
	Tasks        []TaskEntry
}

// MarshalBinary encodes the frame: eventCount:u32 | droppedCount:u32 |
// startTs:u32 | endTs:u32 | taskCount:u8 | taskEntries[taskCount].
func (m MetadataFrame) MarshalBinary() []byte {
	buf := make([]byte, 0, 4+4+4+4+1+len(m.Tasks)*(2+maxTaskNameLen))
	var tmp [4]byte

	binary.LittleEndian.PutUint32(tmp[:], m.EventCount)
	buf = append(buf, tmp[:]...)
	binary.LittleEndian.PutUint32(tmp[:], m.DroppedCount)
	buf = append(buf, tmp[:]...)
	binary.LittleEndian.PutUint32(tmp[:], m.StartTs)
	buf = append(buf, tmp[:]...)
	binary.LittleEndian.PutUint32(tmp[:], m.EndTs)
	buf = append(buf, tmp[:]...)

	buf = append(buf, uint8(len(m.Tasks)))
	for _, te := range m.Tasks {
		var idBuf [2]byte
		binary.LittleEndian.PutUint16(idBuf[:], te.TaskID)
		buf = append(buf, idBuf[:]...)
		buf = append(buf, te.Name[:]...)
	}
	return buf
}

// DataFrame is one chunk of up to MaxEventsPerDataFrame events:
// offset:u32 | count:u16 | events[count].
type DataFrame struct {
	Offset uint32
	Events []Event
}

// MarshalBinary encodes the frame.
func (d DataFrame) MarshalBinary() []byte {
	buf := make([]byte, 0, 4+2+len(d.Events)*EventSize)
	var tmp4 [4]byte
	var tmp2 [2]byte
	binary.LittleEndian.PutUint32(tmp4[:], d.Offset)
	buf = append(buf, tmp4[:]...)
	binary.LittleEndian.PutUint16(tmp2[:], uint16(len(d.Events)))
	buf = append(buf, tmp2[:]...)
	for _, ev := range d.Events {
		buf = append(buf, ev.MarshalBinary()...)
	}
	return buf
}

// EndFrame closes the export: totalEvents:u32 | checksum:u32, where
// checksum is the unsigned sum of every event's wire bytes (mod 2^32) —
// deliberately not a CRC: the transport framing already CRC-protects this
// frame, so the export checksum only needs to catch drain/chunking bugs,
// per the Open Question in §9.
type EndFrame struct {
	TotalEvents uint32
	Checksum    uint32
}

// MarshalBinary encodes the frame.
func (e EndFrame) MarshalBinary() []byte {
	buf := make([]byte, 8)
	binary.LittleEndian.PutUint32(buf[0:4], e.TotalEvents)
	binary.LittleEndian.PutUint32(buf[4:8], e.Checksum)
	return buf
}

// ChecksumEvents computes the EndFrame checksum for a slice of events: the
// unsigned sum of all their wire bytes, wrapping at 32 bits.
func ChecksumEvents(events []Event) uint32 {
	var sum uint32
	for _, ev := range events {
		for _, b := range ev.MarshalBinary() {
			sum += uint32(b)
		}
	}
	return sum
}

// ExportSink receives the three frame kinds of a dump, in order. A real
// sink encodes each payload via protocol.Encode with the corresponding
// trace frame type and writes it to a transport; tests can use a sink
// that just records calls.
type ExportSink interface {
	Metadata(MetadataFrame) error
	Data(DataFrame) error
	End(EndFrame) error
}

// Export pauses recording, drains the ring into a temporary sequence,
// sends Metadata, chunked Data frames, then End — then clears the dropped
// counter and resumes recording if it was previously enabled.
func (r *Recorder) Export(sink ExportSink) error {
	if !r.isInit() {
		return ErrNotInitialized
	}

	wasEnabled := r.enabled.Load()
	r.paused.Store(true)
	defer r.paused.Store(false)

	events := r.currentRing().Drain()

	r.mu.Lock()
	tasks := make([]TaskEntry, 0, len(r.order))
	for _, id := range r.order {
		tasks = append(tasks, r.tasks[id])
	}
	r.mu.Unlock()

	var startTs, endTs uint32
	if len(events) > 0 {
		startTs = events[0].TimestampUs
		endTs = events[len(events)-1].TimestampUs
	}

	meta := MetadataFrame{
		EventCount:   uint32(len(events)),
		DroppedCount: r.DroppedCount(),
		StartTs:      startTs,
		EndTs:        endTs,
		Tasks:        tasks,
	}
	if err := sink.Metadata(meta); err != nil {
		return err
	}

	for offset := 0; offset < len(events); offset += MaxEventsPerDataFrame {
		end := offset + MaxEventsPerDataFrame
		if end > len(events) {
			end = len(events)
		}
		chunk := DataFrame{Offset: uint32(offset), Events: events[offset:end]}
		if err := sink.Data(chunk); err != nil {
			return err
		}
	}

	end := EndFrame{
		TotalEvents: uint32(len(events)),
		Checksum:    ChecksumEvents(events),
	}
	if err := sink.End(end); err != nil {
		return err
	}

	r.dropped.Store(0)
	r.enabled.Store(wasEnabled)
	return nil
}
