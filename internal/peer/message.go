// Package peer implements the three-phase peer-to-peer game service (§4.5):
// beacon discovery + ping/pong RTT, MAC-ordered role assignment, and the
// master drill loop / slave responder that follow. It sits on top of an
// abstract datagram radio (the Radio interface here), never the physical
// layer itself (out of scope per §1).
package peer

import "encoding/binary"

// MAC is a 6-byte radio address. BroadcastMAC is all-ones, per §6.
type MAC [6]byte

// BroadcastMAC is the reserved "send to everyone" address.
var BroadcastMAC = MAC{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF}

// Less reports whether m sorts before other lexicographically, the basis
// for MAC-ordered master/slave election (§4.5 phase 2).
func (m MAC) Less(other MAC) bool {
	for i := range m {
		if m[i] != other[i] {
			return m[i] < other[i]
		}
	}
	return false
}

func (m MAC) String() string {
	const hex = "0123456789abcdef"
	buf := make([]byte, 0, 17)
	for i, b := range m {
		if i > 0 {
			buf = append(buf, ':')
		}
		buf = append(buf, hex[b>>4], hex[b&0xF])
	}
	return string(buf)
}

// MessageType is the peer-service radio message type byte (§6).
type MessageType uint8

const (
	MsgBeacon MessageType = 0x01
	MsgPing   MessageType = 0x02
	MsgPong   MessageType = 0x03

	MsgJoinGame MessageType = 0x10
	MsgArmTouch MessageType = 0x11
	MsgSetColor MessageType = 0x12
	MsgStopAll  MessageType = 0x13

	MsgTouchEvent   MessageType = 0x20
	MsgTimeoutEvent MessageType = 0x21
)

// headerSize is the wire size of the 11-byte message header (§4.5):
// type:u8 | sender_mac:[6] | timestamp_us:u32.
const headerSize = 1 + 6 + 4

// Header is the common prefix of every peer-service radio message.
type Header struct {
	Type        MessageType
	SenderMAC   MAC
	TimestampUs uint32
}

func encodeHeader(h Header, body []byte) []byte {
	buf := make([]byte, headerSize+len(body))
	buf[0] = byte(h.Type)
	copy(buf[1:7], h.SenderMAC[:])
	binary.LittleEndian.PutUint32(buf[7:11], h.TimestampUs)
	copy(buf[headerSize:], body)
	return buf
}

func decodeHeader(buf []byte) (Header, []byte, bool) {
	if len(buf) < headerSize {
		return Header{}, nil, false
	}
	var h Header
	h.Type = MessageType(buf[0])
	copy(h.SenderMAC[:], buf[1:7])
	h.TimestampUs = binary.LittleEndian.Uint32(buf[7:11])
	return h, buf[headerSize:], true
}

// ArmTouchBody is the ArmTouch (0x11) payload: timeoutMs:u32, feedbackMode:u8.
type ArmTouchBody struct {
	TimeoutMs    uint32
	FeedbackMode uint8
}

func encodeArmTouch(b ArmTouchBody) []byte {
	buf := make([]byte, 5)
	binary.LittleEndian.PutUint32(buf[0:4], b.TimeoutMs)
	buf[4] = b.FeedbackMode
	return buf
}

func decodeArmTouch(body []byte) (ArmTouchBody, bool) {
	if len(body) < 5 {
		return ArmTouchBody{}, false
	}
	return ArmTouchBody{
		TimeoutMs:    binary.LittleEndian.Uint32(body[0:4]),
		FeedbackMode: body[4],
	}, true
}

// SetColorBody is the SetColor (0x12) payload: r:u8, g:u8, b:u8.
type SetColorBody struct {
	R, G, B uint8
}

func encodeSetColor(b SetColorBody) []byte {
	return []byte{b.R, b.G, b.B}
}

func decodeSetColor(body []byte) (SetColorBody, bool) {
	if len(body) < 3 {
		return SetColorBody{}, false
	}
	return SetColorBody{R: body[0], G: body[1], B: body[2]}, true
}

// TouchEventBody is the TouchEvent (0x20) payload: reactionTimeUs:u32, padIndex:u8.
type TouchEventBody struct {
	ReactionTimeUs uint32
	PadIndex       uint8
}

func encodeTouchEvent(b TouchEventBody) []byte {
	buf := make([]byte, 5)
	binary.LittleEndian.PutUint32(buf[0:4], b.ReactionTimeUs)
	buf[4] = b.PadIndex
	return buf
}

func decodeTouchEvent(body []byte) (TouchEventBody, bool) {
	if len(body) < 5 {
		return TouchEventBody{}, false
	}
	return TouchEventBody{
		ReactionTimeUs: binary.LittleEndian.Uint32(body[0:4]),
		PadIndex:       body[4],
	}, true
}
