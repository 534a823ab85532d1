package protocol

import (
	"errors"
	"fmt"
)

var (
	// ErrMalformedHex occurs when a hex string has odd length or a non-hex character.
	ErrMalformedHex = errors.New("protocol: malformed hex")
	// ErrTruncatedFrame occurs when fewer than MinHeaderBytes bytes are available.
	ErrTruncatedFrame = errors.New("protocol: truncated frame")
	// ErrInvalidMagic occurs when positions 0, 1 and 3 do not hold the magic signature.
	ErrInvalidMagic = errors.New("protocol: invalid magic bytes")
)

// FrameError carries the context of a failed decode or parse. Kind is one of
// the sentinel errors above and is what errors.Is matches against.
type FrameError struct {
	Kind error
	Hex  string

	// Offset is the hex character offset of the first bad character (MalformedHex only).
	Offset int
	// Length is the number of decoded bytes that were available.
	Length int

	LengthField int
	Magic       [3]byte
}

func (e *FrameError) Error() string {
	switch e.Kind {
	case ErrMalformedHex:
		return fmt.Sprintf("%v at offset %d (%d chars): %s", e.Kind, e.Offset, len(e.Hex), e.Hex)
	case ErrTruncatedFrame:
		return fmt.Sprintf("%v: %d bytes, need %d: %s", e.Kind, e.Length, MinHeaderBytes, e.Hex)
	case ErrInvalidMagic:
		return fmt.Sprintf("%v: got % X, want % X (length field %d): %s",
			e.Kind, e.Magic[:], ExpectedMagic[:], e.LengthField, e.Hex)
	}
	return fmt.Sprintf("%v: %s", e.Kind, e.Hex)
}

func (e *FrameError) Unwrap() error {
	return e.Kind
}

// ErrPayloadTooLarge occurs when Build is asked for a payload the length byte cannot describe.
var ErrPayloadTooLarge = errors.New("protocol: payload too large")
