package protocol

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type piece struct {
	hex     string
	divided bool
}

func collect(hexLine string) []piece {
	var out []piece
	for h, divided := range Split(hexLine) {
		out = append(out, piece{h, divided})
	}
	return out
}

func TestSplit(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []piece
	}{
		{"single frame is not divided", frameA, []piece{{frameA, false}}},
		{"consecutive duplicate is suppressed", frameA + frameA, []piece{{frameA, true}}},
		{"two different frames", frameA + frameB, []piece{{frameA, true}, {frameB, true}}},
		{"duplicate then new frame", frameA + frameA + frameB, []piece{{frameA, true}, {frameB, true}}},
		{"non consecutive repeat is kept", frameA + frameB + frameA, []piece{{frameA, true}, {frameB, true}, {frameA, true}}},
		{"short tail is dropped", frameA + "5a0005", []piece{{frameA, true}}},
		{"thirteen chars yields nothing", frameA[:13], nil},
		{"empty input yields nothing", "", nil},
		{"truncated last frame is cut short", frameA + frameB[:16], []piece{{frameA, true}, {frameB[:16], true}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, collect(tt.input))
		})
	}
}

func TestSplit_ThenParse(t *testing.T) {
	var frames []*Frame
	for h := range Split(frameA + frameA + frameB) {
		f, err := ParseFrameHex(h)
		require.NoError(t, err)
		frames = append(frames, f)
	}
	require.Len(t, frames, 2)
	assert.Equal(t, byte(1), frames[0].ServiceID)
	assert.Equal(t, []byte{0xAA, 0xBB}, frames[0].Payload)
	assert.Equal(t, byte(3), frames[1].ServiceID)
	assert.Equal(t, []byte{0x11, 0x22, 0x33}, frames[1].Payload)
}

func TestSplit_InvalidMagicStillCut(t *testing.T) {
	input := "5a0105000102aabbccdd"
	got := collect(input)
	require.Len(t, got, 1)
	assert.Equal(t, input, got[0].hex)
	assert.False(t, got[0].divided)

	_, err := ParseFrameHex(got[0].hex)
	assert.True(t, errors.Is(err, ErrInvalidMagic))
}

func TestSplit_TrustsSmallLengthField(t *testing.T) {
	// length byte 0 declares a 5 byte frame, smaller than any header
	input := "5a000000010203" + frameA
	got := collect(input)
	require.Len(t, got, 2)
	assert.Equal(t, "5a00000001", got[0].hex)
	assert.Equal(t, "0203"+frameA, got[1].hex)

	_, err := ParseFrameHex(got[0].hex)
	assert.True(t, errors.Is(err, ErrTruncatedFrame))
	_, err = ParseFrameHex(got[1].hex)
	assert.True(t, errors.Is(err, ErrInvalidMagic))
}

func TestSplit_MalformedLengthStopsWalk(t *testing.T) {
	bad := "5a00zz00010203aabb"
	got := collect(frameA + bad)
	require.Len(t, got, 2)
	assert.Equal(t, frameA, got[0].hex)
	assert.Equal(t, bad, got[1].hex)

	_, err := ParseFrameHex(got[1].hex)
	assert.True(t, errors.Is(err, ErrMalformedHex))
}

func TestSplit_UppercaseInput(t *testing.T) {
	upper := strings.ToUpper(frameA)
	got := collect(upper + upper)
	require.Len(t, got, 1)
	assert.Equal(t, upper, got[0].hex)
}

func TestSplit_DedupComparesText(t *testing.T) {
	// same bytes, different case: not a textual duplicate
	got := collect(frameA + strings.ToUpper(frameA))
	assert.Len(t, got, 2)
}

func TestSplit_StopsWhenConsumerBreaks(t *testing.T) {
	n := 0
	for range Split(frameA + frameB + frameA) {
		n++
		break
	}
	assert.Equal(t, 1, n)
}

func TestCuts_ExhaustiveAndNonOverlapping(t *testing.T) {
	inputs := []string{
		frameA,
		frameA + frameA,
		frameA + frameB + frameA + "5a00",
		"5a000000010203" + frameA + frameB,
		frameA + frameB[:16],
		frameB + frameB + frameB + frameA,
	}
	for _, input := range inputs {
		var b strings.Builder
		next := 0
		for c := range Cuts(input) {
			assert.Equal(t, next, c.Offset, "input %s", input)
			assert.Equal(t, input[c.Offset:c.Offset+len(c.Hex)], c.Hex)
			next = c.Offset + len(c.Hex)
			b.WriteString(c.Hex)
		}
		assert.True(t, strings.HasPrefix(input, b.String()))
		assert.Less(t, len(input)-b.Len(), MinSplitHexChars, "unconsumed tail must be shorter than a header")
	}
}

func TestCuts_ReportsDuplicates(t *testing.T) {
	var dups []bool
	for c := range Cuts(frameB + frameB + frameB + frameA) {
		dups = append(dups, c.Duplicate)
	}
	assert.Equal(t, []bool{false, true, true, false}, dups)
}

func TestCuts_HexLengthIsTwiceTotalBytes(t *testing.T) {
	for c := range Cuts(frameA + frameB + frameA) {
		b, err := Decode(c.Hex)
		require.NoError(t, err)
		assert.Equal(t, 2*TotalBytes(b[LengthOffset]), len(c.Hex))
	}
}
