package render

import (
	"bytes"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/charmap"

	"github.com/nkootstra/framescope/internal/classify"
	"github.com/nkootstra/framescope/internal/inspect"
	"github.com/nkootstra/framescope/internal/protocol"
)

const frameA = "5a0005000102aabbccdd"

func result(t *testing.T, hexStr string, dir classify.Direction) inspect.Result {
	t.Helper()
	f, err := protocol.ParseFrameHex(hexStr)
	require.NoError(t, err)
	return inspect.Result{
		Frame:     f,
		Direction: dir,
		RawLine:   "received length: 10 data: " + hexStr + "\n",
		FrameHex:  hexStr,
	}
}

func TestFormat(t *testing.T) {
	fixed := time.Unix(1700000000, 250000000)

	tests := []struct {
		name    string
		opts    Options
		dir     classify.Direction
		divided bool
		want    string
	}{
		{
			name: "default",
			dir:  classify.Received,
			want: "-Received-:\n{ ServiceID: 1 CommandID: 2 }\nData: [170, 187]\n\n",
		},
		{
			name: "sent",
			dir:  classify.Sent,
			want: "---Sent---:\n{ ServiceID: 1 CommandID: 2 }\nData: [170, 187]\n\n",
		},
		{
			name: "unknown direction",
			dir:  classify.Unknown,
			want: "UNKNOWN SOURCE: \n{ ServiceID: 1 CommandID: 2 }\nData: [170, 187]\n\n",
		},
		{
			name: "print time",
			opts: Options{PrintTime: true, Now: func() time.Time { return fixed }},
			dir:  classify.Received,
			want: "1700000000.250000 -Received-:\n{ ServiceID: 1 CommandID: 2 }\nData: [170, 187]\n\n",
		},
		{
			name: "verbose",
			opts: Options{Verbose: true},
			dir:  classify.Received,
			want: "-Received-:\n" + frameA + "\n[90, 0, 5, 0, 1, 2, 170, 187, 204, 221]\n" +
				"{ ServiceID: 1 CommandID: 2 }\nData: [170, 187]\n\n",
		},
		{
			name:    "very verbose divided",
			opts:    Options{VeryVerbose: true},
			dir:     classify.Received,
			divided: true,
			want: "-Received-:\nreceived length: 10 data: " + frameA + "\n" + SmartDivideNotice + "\n" +
				"{ ServiceID: 1 CommandID: 2 }\nData: [170, 187]\n\n",
		},
		{
			name: "printable",
			opts: Options{Printable: true},
			dir:  classify.Received,
			want: "-Received-:\n{ ServiceID: 1 CommandID: 2 }\nData: [170, 187]\n" +
				"=== Printable ===\nZ.....ª»ÌÝ\n=================\n\n",
		},
		{
			name: "only print",
			opts: Options{OnlyPrint: true, Printable: true},
			dir:  classify.Received,
			want: "-Received-:\nZ.....ª»ÌÝ\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := result(t, frameA, tt.dir)
			r.Divided = tt.divided
			assert.Equal(t, tt.want, New(nil, tt.opts).Format(r))
		})
	}
}

func TestFormat_Charset(t *testing.T) {
	p := New(nil, Options{OnlyPrint: true, Charset: charmap.CodePage437})
	out := p.Format(result(t, frameA, classify.Sent))
	assert.Equal(t, "---Sent---:\nZ.....¬╗╠▌\n", out)
}

func TestFormat_InvalidMagic(t *testing.T) {
	_, err := protocol.ParseFrameHex("5a0105000102aabbccdd")
	require.Error(t, err)

	out := New(nil, Options{}).Format(inspect.Result{
		Direction: classify.Received,
		FrameHex:  "5a0105000102aabbccdd",
		Err:       err,
	})
	assert.Equal(t, "-Received-:\nMAGIC BYTES NOT MAGIC!!!\nBytes: [90, 1, 0] expected [90, 0, 0]\n"+
		"Length field: 5\n5a0105000102aabbccdd\n\n", out)
}

func TestFormat_MalformedHex(t *testing.T) {
	_, err := protocol.ParseFrameHex("5a00zz")
	require.Error(t, err)

	out := New(nil, Options{}).Format(inspect.Result{Direction: classify.Sent, FrameHex: "5a00zz", Err: err})
	assert.Contains(t, out, "MALFORMED HEX\nOffset: 4\n5a00zz\n")
}

func TestFormat_Color(t *testing.T) {
	plain := New(nil, Options{}).Format(result(t, frameA, classify.Sent))
	colored := New(nil, Options{Color: true}).Format(result(t, frameA, classify.Sent))

	assert.NotContains(t, plain, "\x1b[")
	assert.Contains(t, colored, "\x1b[")
	assert.Equal(t, plain, ansi.Strip(colored))
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("pipe closed") }

func TestPrinter_Emit(t *testing.T) {
	var buf bytes.Buffer
	p := New(&buf, Options{})
	p.Emit(result(t, frameA, classify.Received))
	require.NoError(t, p.Err())
	assert.Contains(t, buf.String(), "Data: [170, 187]")

	bad := New(failingWriter{}, Options{})
	bad.Emit(result(t, frameA, classify.Received))
	assert.EqualError(t, bad.Err(), "pipe closed")
}

func TestDecimals(t *testing.T) {
	assert.Equal(t, "[]", Decimals(nil))
	assert.Equal(t, "[90]", Decimals([]byte{90}))
	assert.Equal(t, "[0, 255]", Decimals([]byte{0, 255}))
}

func TestResolveColor(t *testing.T) {
	assert.True(t, ResolveColor(ColorAlways, nil))
	assert.False(t, ResolveColor(ColorNever, os.Stdout))
	assert.False(t, ResolveColor(ColorAuto, nil))

	t.Setenv("NO_COLOR", "1")
	assert.False(t, ResolveColor(ColorAuto, os.Stdout))
}
