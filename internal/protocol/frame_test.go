package protocol

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// frameA: length 5 -> 10 bytes, service 1, command 2, payload AA BB, trailer CC DD.
const frameA = "5a0005000102aabbccdd"

// frameB: length 6 -> 11 bytes, service 3, command 4, payload 11 22 33, trailer EE FF.
const frameB = "5a000600030411223" + "3eeff"

func TestParseFrameHex_SingleFrame(t *testing.T) {
	f, err := ParseFrameHex(frameA)
	require.NoError(t, err)

	assert.Equal(t, ExpectedMagic, f.Magic)
	assert.Equal(t, byte(5), f.LengthField)
	assert.Equal(t, 10, f.TotalBytes())
	assert.Equal(t, byte(1), f.ServiceID)
	assert.Equal(t, byte(2), f.CommandID)
	assert.Equal(t, []byte{0xAA, 0xBB}, f.Payload)
	assert.Equal(t, []byte{0xCC, 0xDD}, f.Trailer)
	assert.Equal(t, frameA, f.Hex)
	assert.Len(t, f.Raw, 10)
}

func TestParseHeader_Truncated(t *testing.T) {
	for n := 0; n < MinHeaderBytes; n++ {
		b := []byte{0x5A, 0x00, 0x05, 0x00, 0x01, 0x02, 0xAA}[:n]
		_, err := ParseHeader(b)
		require.Error(t, err, "length %d", n)
		assert.True(t, errors.Is(err, ErrTruncatedFrame))

		var fe *FrameError
		require.True(t, errors.As(err, &fe))
		assert.Equal(t, n, fe.Length)
	}
}

func TestParseHeader_MinimumHeaderHasEmptyPayload(t *testing.T) {
	// length 2 -> 7 bytes, too short to carry a body
	f, err := ParseHeader([]byte{0x5A, 0x00, 0x02, 0x00, 0x09, 0x0A, 0x0B})
	require.NoError(t, err)
	assert.Equal(t, byte(9), f.ServiceID)
	assert.Equal(t, byte(10), f.CommandID)
	assert.Empty(t, f.Payload)
	assert.NotNil(t, f.Payload)
	assert.Nil(t, f.Trailer)
}

func TestParseHeader_EightBytesHasEmptyPayloadAndTrailer(t *testing.T) {
	f, err := ParseHeader([]byte{0x5A, 0x00, 0x03, 0x00, 0x01, 0x02, 0xCC, 0xDD})
	require.NoError(t, err)
	assert.Empty(t, f.Payload)
	assert.Equal(t, []byte{0xCC, 0xDD}, f.Trailer)
}

func TestParseHeader_IgnoresBytesPastDeclaredLength(t *testing.T) {
	b, err := Decode(frameA + "0102")
	require.NoError(t, err)

	f, err := ParseHeader(b)
	require.NoError(t, err)
	assert.Equal(t, []byte{0xAA, 0xBB}, f.Payload)
	assert.Equal(t, []byte{0xCC, 0xDD}, f.Trailer)
}

func TestParseHeader_ShortDataKeepsTrailerOutOfPayload(t *testing.T) {
	// declares 11 bytes but only 9 are present
	b, err := Decode(frameB[:18])
	require.NoError(t, err)

	f, err := ParseHeader(b)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x11}, f.Payload)
	assert.Equal(t, []byte{0x22, 0x33}, f.Trailer)
}

func TestParseHeader_DoesNotAliasInput(t *testing.T) {
	b, err := Decode(frameA)
	require.NoError(t, err)

	f, err := ParseHeader(b)
	require.NoError(t, err)
	b[6] = 0x00
	assert.Equal(t, byte(0xAA), f.Payload[0])
}

func TestParseFrameHex_InvalidMagic(t *testing.T) {
	input := "5a0105000102aabbccdd"

	_, err := ParseFrameHex(input)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidMagic))

	var fe *FrameError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, [3]byte{0x5A, 0x01, 0x00}, fe.Magic)
	assert.Equal(t, 5, fe.LengthField)
	assert.Equal(t, input, fe.Hex)
	assert.Contains(t, err.Error(), "5A 01 00")
	assert.Contains(t, err.Error(), "5A 00 00")
}

func TestParseFrameHex_KeepsCallerCase(t *testing.T) {
	upper := "5A0105000102AABBCCDD"
	_, err := ParseFrameHex(upper)

	var fe *FrameError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, upper, fe.Hex)
}

func TestParseFrameHex_Malformed(t *testing.T) {
	_, err := ParseFrameHex("5a0005000102aabbccd")
	assert.True(t, errors.Is(err, ErrMalformedHex))
}

func TestMagicValidation(t *testing.T) {
	base := []byte{0x5A, 0x00, 0x05, 0x00, 0x01, 0x02, 0xAA, 0xBB, 0xCC, 0xDD}

	t.Run("any length byte passes", func(t *testing.T) {
		for lf := 0; lf <= 0xFF; lf++ {
			b := append([]byte(nil), base...)
			b[LengthOffset] = byte(lf)
			assert.True(t, ValidMagic(b))
			_, err := ParseHeader(b)
			assert.NoError(t, err, "length byte %d", lf)
		}
	})

	t.Run("any other byte outside the signature passes", func(t *testing.T) {
		for pos := 4; pos < len(base); pos++ {
			b := append([]byte(nil), base...)
			b[pos] = 0xFF
			_, err := ParseHeader(b)
			assert.NoError(t, err, "position %d", pos)
		}
	})

	t.Run("deviation at a signature position fails", func(t *testing.T) {
		for _, pos := range []int{0, 1, 3} {
			for _, v := range []byte{0x01, 0x5B, 0xFF} {
				b := append([]byte(nil), base...)
				if b[pos] == v {
					continue
				}
				b[pos] = v
				assert.False(t, ValidMagic(b))
				_, err := ParseHeader(b)
				assert.True(t, errors.Is(err, ErrInvalidMagic), "position %d value %#x", pos, v)
			}
		}
	})
}

func TestBuildParseRoundTrip(t *testing.T) {
	payloads := [][]byte{
		{},
		{0x01},
		[]byte("hello world"),
		make([]byte, MaxPayloadBytes),
	}
	for i, payload := range payloads {
		raw, err := Build(byte(i), byte(0xF0+i), payload, [2]byte{0xCC, 0xDD})
		require.NoError(t, err)
		assert.Equal(t, len(raw), TotalBytes(raw[LengthOffset]))

		f, err := ParseFrameHex(Encode(raw))
		require.NoError(t, err)
		assert.Equal(t, raw[ServiceIDOffset], f.ServiceID)
		assert.Equal(t, raw[CommandIDOffset], f.CommandID)
		assert.Equal(t, raw[PayloadOffset:len(raw)-TrailerBytes], f.Payload)
		assert.Equal(t, payload, f.Payload)
	}
}

func TestBuild_PayloadTooLarge(t *testing.T) {
	_, err := Build(1, 2, make([]byte, MaxPayloadBytes+1), [2]byte{})
	assert.True(t, errors.Is(err, ErrPayloadTooLarge))
}
