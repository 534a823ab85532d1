package protocol

import (
	"bytes"
	"errors"
	"fmt"
)

// MaxPayloadBytes is the largest payload a single length byte can describe.
const MaxPayloadBytes = 0xFF + LengthOverhead - PayloadOffset - TrailerBytes

// Frame is the parsed view of one protocol unit. It is built once by
// ParseHeader and never modified afterwards.
type Frame struct {
	Magic       [3]byte
	LengthField byte
	ServiceID   byte
	CommandID   byte
	// Payload excludes the two trailer bytes.
	Payload []byte
	Trailer []byte
	Raw     []byte
	Hex     string
}

// TotalBytes is the frame size declared by the length field.
func (f *Frame) TotalBytes() int {
	return TotalBytes(f.LengthField)
}

// TotalBytes converts a length byte to the full frame size.
func TotalBytes(lengthField byte) int {
	return int(lengthField) + LengthOverhead
}

// ValidMagic reports whether b carries the magic signature at positions 0, 1 and 3.
func ValidMagic(b []byte) bool {
	if len(b) < 4 {
		return false
	}
	return magicOf(b) == ExpectedMagic
}

func magicOf(b []byte) [3]byte {
	return [3]byte{b[0], b[1], b[3]}
}

// ParseHeader validates and parses one frame. The input is copied, so the
// returned Frame does not alias b.
func ParseHeader(b []byte) (*Frame, error) {
	if len(b) < MinHeaderBytes {
		return nil, &FrameError{Kind: ErrTruncatedFrame, Hex: Encode(b), Length: len(b)}
	}

	raw := bytes.Clone(b)
	magic := magicOf(raw)
	lengthField := raw[LengthOffset]
	if magic != ExpectedMagic {
		return nil, &FrameError{
			Kind:        ErrInvalidMagic,
			Hex:         Encode(raw),
			Length:      len(raw),
			LengthField: int(lengthField),
			Magic:       magic,
		}
	}

	f := &Frame{
		Magic:       magic,
		LengthField: lengthField,
		ServiceID:   raw[ServiceIDOffset],
		CommandID:   raw[CommandIDOffset],
		Raw:         raw,
		Hex:         Encode(raw),
	}

	// The declared size wins, but a short frame still keeps its last two
	// bytes out of the payload.
	end := TotalBytes(lengthField) - TrailerBytes
	if limit := len(raw) - TrailerBytes; end > limit {
		end = limit
	}
	if end >= PayloadOffset {
		f.Payload = raw[PayloadOffset:end]
		f.Trailer = raw[end:min(end+TrailerBytes, len(raw))]
	} else {
		f.Payload = []byte{}
	}
	return f, nil
}

// ParseFrameHex decodes frameHex and parses it. Errors carry frameHex as given.
func ParseFrameHex(frameHex string) (*Frame, error) {
	b, err := Decode(frameHex)
	if err != nil {
		return nil, err
	}
	f, err := ParseHeader(b)
	if err != nil {
		var fe *FrameError
		if errors.As(err, &fe) {
			fe.Hex = frameHex
		}
		return nil, err
	}
	f.Hex = frameHex
	return f, nil
}

// Build encodes a well-formed frame around payload.
func Build(serviceID, commandID byte, payload []byte, trailer [TrailerBytes]byte) ([]byte, error) {
	if len(payload) > MaxPayloadBytes {
		return nil, fmt.Errorf("%w: %d bytes, max %d", ErrPayloadTooLarge, len(payload), MaxPayloadBytes)
	}
	total := PayloadOffset + len(payload) + TrailerBytes
	b := make([]byte, 0, total)
	b = append(b, MagicByte0, MagicByte1, byte(total-LengthOverhead), MagicByte3, serviceID, commandID)
	b = append(b, payload...)
	b = append(b, trailer[:]...)
	return b, nil
}
