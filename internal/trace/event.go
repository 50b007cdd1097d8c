// Package trace implements the fixed-size, ISR-safe trace ring buffer and
// its on-demand chunked export protocol.
package trace

import "encoding/binary"

// EventType enumerates the kinds of instants/spans a trace event records.
type EventType uint8

const (
	EventTaskSwitchIn EventType = iota
	EventTaskSwitchOut
	EventIsrEnter
	EventIsrExit
	EventTaskCreate
	EventTaskDelete
	EventQueueSend
	EventQueueReceive
	EventSpanBegin
	EventSpanEnd
	EventInstant
	EventCounter
)

// Category occupies the upper nibble of Event.Flags.
type Category uint8

const (
	CategoryKernel Category = iota
	CategoryTransport
	CategoryOta
	CategoryWifi
	CategoryLED
	CategoryAudio
	CategoryTouch
	CategoryGame
	CategoryUser
	CategoryHaptic
	CategoryBLE
	CategoryNVS
)

// EventSize is the fixed wire size of one Event: exactly 16 bytes.
const EventSize = 16

// Event is one wire-canonical, packed 16-byte trace record:
// timestamp_us:u32 | taskId:u16 | eventType:u8 | flags:u8 | arg1:u32 | arg2:u32
type Event struct {
	TimestampUs uint32
	TaskID      uint16
	EventType   EventType
	Flags       uint8 // category in upper nibble
	Arg1        uint32
	Arg2        uint32
}

// NewFlags packs a category into the upper nibble with the lower nibble
// reserved (zero).
func NewFlags(cat Category) uint8 {
	return uint8(cat) << 4
}

// Category extracts the category from Flags.
func (e Event) Category() Category {
	return Category(e.Flags >> 4)
}

// MarshalBinary encodes the event into its 16-byte wire form.
func (e Event) MarshalBinary() []byte {
	buf := make([]byte, EventSize)
	binary.LittleEndian.PutUint32(buf[0:4], e.TimestampUs)
	binary.LittleEndian.PutUint16(buf[4:6], e.TaskID)
	buf[6] = uint8(e.EventType)
	buf[7] = e.Flags
	binary.LittleEndian.PutUint32(buf[8:12], e.Arg1)
	binary.LittleEndian.PutUint32(buf[12:16], e.Arg2)
	return buf
}

// UnmarshalEvent decodes a 16-byte wire record back into an Event.
func UnmarshalEvent(buf []byte) Event {
	return Event{
		TimestampUs: binary.LittleEndian.Uint32(buf[0:4]),
		TaskID:      binary.LittleEndian.Uint16(buf[4:6]),
		EventType:   EventType(buf[6]),
		Flags:       buf[7],
		Arg1:        binary.LittleEndian.Uint32(buf[8:12]),
		Arg2:        binary.LittleEndian.Uint32(buf[12:16]),
	}
}
