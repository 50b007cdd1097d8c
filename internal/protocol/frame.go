package protocol

import (
	"encoding/binary"
	"fmt"
)

// Wire constants, matching the canonical little-endian frame layout:
// 0xAA 0x55 | len:u16 | type:u8 | payload[len-1] | crc:u32
const (
	startByte0 = 0xAA
	startByte1 = 0x55

	// MaxPayload is the largest payload a frame may carry.
	MaxPayload = 1024
	// MaxFrameSize is the largest possible encoded frame: 2 start bytes +
	// 2 length bytes + type + MaxPayload + 4 CRC bytes.
	MaxFrameSize = 2 + 2 + 1 + MaxPayload + 4

	headerSize  = 2 + 2 // start bytes + length
	trailerSize = 4     // CRC
)

// Encode writes a complete frame for the given type and payload into out,
// returning the number of bytes written. It fails with an error wrapping
// ErrInvalidArgSentinel if payload exceeds MaxPayload or out is too small
// to hold the frame.
func Encode(frameType byte, payload []byte, out []byte) (int, error) {
	if len(payload) > MaxPayload {
		return 0, fmt.Errorf("encode type=0x%02x: %w: payload length %d exceeds max %d", frameType, ErrInvalidArgSentinel, len(payload), MaxPayload)
	}
	dataLen := 1 + len(payload) // type + payload
	total := headerSize + dataLen + trailerSize
	if len(out) < total {
		return 0, fmt.Errorf("encode type=0x%02x: %w: output buffer length %d too small for frame of %d bytes", frameType, ErrInvalidArgSentinel, len(out), total)
	}

	out[0] = startByte0
	out[1] = startByte1
	binary.LittleEndian.PutUint16(out[2:4], uint16(dataLen))
	out[4] = frameType
	copy(out[5:], payload)

	crc := CRC32(out[4 : 5+len(payload)])
	binary.LittleEndian.PutUint32(out[5+len(payload):total], crc)

	return total, nil
}

// EncodeAlloc is a convenience wrapper over Encode that allocates its own
// output buffer sized exactly for the resulting frame.
func EncodeAlloc(frameType byte, payload []byte) ([]byte, error) {
	out := make([]byte, headerSize+1+len(payload)+trailerSize)
	n, err := Encode(frameType, payload, out)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}
