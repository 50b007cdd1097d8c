package protocol

import "encoding/binary"

// DecoderState is one state of the streaming frame decoder.
type DecoderState int

const (
	WaitStart0 DecoderState = iota
	WaitStart1
	WaitLenLow
	WaitLenHigh
	ReceiveData
	WaitCrc
	Complete
	Error
)

func (s DecoderState) String() string {
	switch s {
	case WaitStart0:
		return "WaitStart0"
	case WaitStart1:
		return "WaitStart1"
	case WaitLenLow:
		return "WaitLenLow"
	case WaitLenHigh:
		return "WaitLenHigh"
	case ReceiveData:
		return "ReceiveData"
	case WaitCrc:
		return "WaitCrc"
	case Complete:
		return "Complete"
	case Error:
		return "Error"
	default:
		return "Unknown"
	}
}

// Decoder is a byte-at-a-time streaming frame decoder. It holds no
// allocation beyond a fixed MaxPayload+1 data buffer, so it can run on a
// hot receive path without per-frame allocation.
type Decoder struct {
	state DecoderState

	length   uint16 // captured data length (type + payload)
	data     [MaxPayload + 1]byte
	dataIdx  int
	crcBytes [4]byte
	crcIdx   int
	crcWant  uint32
	crc      CRC32Updater
}

// NewDecoder returns a decoder ready to accept bytes from a fresh stream.
func NewDecoder() *Decoder {
	d := &Decoder{}
	d.Reset()
	return d
}

// Reset returns the decoder to WaitStart0, discarding any partially
// received frame. Callers must call Reset after observing Complete or
// Error before feeding further bytes.
func (d *Decoder) Reset() {
	d.state = WaitStart0
	d.length = 0
	d.dataIdx = 0
	d.crcIdx = 0
	d.crcWant = 0
	d.crc.Reset()
}

// State returns the decoder's current state.
func (d *Decoder) State() DecoderState { return d.state }

// Type returns the frame type byte once State() == Complete.
func (d *Decoder) Type() byte { return d.data[0] }

// Payload returns the frame payload (excluding the type byte) once
// State() == Complete. The returned slice aliases the decoder's internal
// buffer and is only valid until the next Reset.
func (d *Decoder) Payload() []byte {
	if d.length == 0 {
		return nil
	}
	return d.data[1:d.length]
}

// PushByte feeds one byte into the decoder and returns the resulting
// state. Once Complete or Error is reached, further bytes are ignored
// until Reset is called.
func (d *Decoder) PushByte(b byte) DecoderState {
	switch d.state {
	case WaitStart0:
		if b == startByte0 {
			d.state = WaitStart1
		}
		// else stay in WaitStart0

	case WaitStart1:
		switch b {
		case startByte1:
			d.state = WaitLenLow
		case startByte0:
			// Re-sync on 0xAA 0xAA: stay in WaitStart1.
		default:
			d.state = WaitStart0
		}

	case WaitLenLow:
		d.length = uint16(b)
		d.state = WaitLenHigh

	case WaitLenHigh:
		d.length |= uint16(b) << 8
		if d.length == 0 || int(d.length) > MaxPayload+1 {
			d.state = Error
			break
		}
		d.dataIdx = 0
		d.state = ReceiveData

	case ReceiveData:
		d.data[d.dataIdx] = b
		d.crc.Update(b)
		d.dataIdx++
		if d.dataIdx == int(d.length) {
			d.crcIdx = 0
			d.state = WaitCrc
		}

	case WaitCrc:
		d.crcBytes[d.crcIdx] = b
		d.crcIdx++
		if d.crcIdx == 4 {
			d.crcWant = binary.LittleEndian.Uint32(d.crcBytes[:])
			if d.crc.Sum() == d.crcWant {
				d.state = Complete
			} else {
				d.state = Error
			}
		}

	case Complete, Error:
		// Terminal; ignore further bytes until Reset.
	}
	return d.state
}

// PushBytes feeds a byte slice into the decoder, stopping early (without
// consuming the remainder) once a terminal state is reached. It returns
// the number of bytes consumed and the resulting state, mirroring the
// resync-and-continue behaviour a dispatcher loop needs when multiple
// frames arrive back to back in one read.
func (d *Decoder) PushBytes(buf []byte) (consumed int, state DecoderState) {
	for i, b := range buf {
		state = d.PushByte(b)
		if state == Complete || state == Error {
			return i + 1, state
		}
	}
	return len(buf), d.state
}
