// Package render prints inspection results as plain text for an operator.
package render

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"
	"time"

	"golang.org/x/text/encoding/charmap"

	"github.com/nkootstra/framescope/internal/classify"
	"github.com/nkootstra/framescope/internal/inspect"
	"github.com/nkootstra/framescope/internal/protocol"
)

// SmartDivideNotice follows the raw line in very verbose mode when the line
// held more than one frame.
const SmartDivideNotice = "(Psst: Actually parsed bytes were smartly divided/ignored thanks to --smart-divide option)"

// Options selects what the Printer shows for each frame.
type Options struct {
	PrintTime   bool
	Verbose     bool
	VeryVerbose bool
	OnlyPrint   bool
	Printable   bool
	Color       bool
	Charset     *charmap.Charmap
	// Now is used for the time prefix. Defaults to time.Now.
	Now func() time.Time
}

// Printer writes one block of text per result. It implements inspect.Sink.
type Printer struct {
	w    io.Writer
	opts Options
	pal  palette

	mu  sync.Mutex
	err error
}

var _ inspect.Sink = (*Printer)(nil)

func New(w io.Writer, opts Options) *Printer {
	if opts.Charset == nil {
		opts.Charset = protocol.DefaultCharset
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Printer{w: w, opts: opts, pal: palette{color: opts.Color}}
}

// Emit prints r. The first write error is kept and returned by Err.
func (p *Printer) Emit(r inspect.Result) {
	if err := p.Print(r); err != nil {
		p.mu.Lock()
		if p.err == nil {
			p.err = err
		}
		p.mu.Unlock()
	}
}

// Err returns the first error Emit ran into.
func (p *Printer) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Print writes the block for r.
func (p *Printer) Print(r inspect.Result) error {
	_, err := io.WriteString(p.w, p.Format(r))
	return err
}

// Format renders r without writing it.
func (p *Printer) Format(r inspect.Result) string {
	var b strings.Builder

	if p.opts.PrintTime {
		b.WriteString(Epoch(p.opts.Now()))
		b.WriteByte(' ')
	}
	b.WriteString(p.header(r.Direction))
	b.WriteByte('\n')

	if p.opts.VeryVerbose {
		b.WriteString(strings.TrimRight(r.RawLine, "\r\n"))
		b.WriteByte('\n')
		if r.Divided {
			b.WriteString(p.pal.render(dimStyle, SmartDivideNotice))
			b.WriteByte('\n')
		}
	}

	if !r.OK() {
		p.writeError(&b, r)
		b.WriteByte('\n')
		return b.String()
	}
	f := r.Frame

	if p.opts.Verbose {
		b.WriteString(f.Hex)
		b.WriteByte('\n')
		b.WriteString(Decimals(f.Raw))
		b.WriteByte('\n')
	}

	chars := protocol.Printable(f.Raw, p.opts.Charset)
	if p.opts.OnlyPrint {
		b.WriteString(chars)
		b.WriteByte('\n')
		return b.String()
	}

	fmt.Fprintf(&b, "{ %s %s %s %s }\n",
		p.pal.render(labelStyle, "ServiceID:"), p.pal.render(idStyle, strconv.Itoa(int(f.ServiceID))),
		p.pal.render(labelStyle, "CommandID:"), p.pal.render(idStyle, strconv.Itoa(int(f.CommandID))))
	fmt.Fprintf(&b, "%s %s\n", p.pal.render(labelStyle, "Data:"), Decimals(f.Payload))

	if p.opts.Printable {
		b.WriteString("=== Printable ===\n")
		b.WriteString(chars)
		b.WriteString("\n=================\n")
	}
	b.WriteByte('\n')
	return b.String()
}

func (p *Printer) header(d classify.Direction) string {
	switch d {
	case classify.Sent:
		return p.pal.render(sentStyle, "---Sent---:")
	case classify.Received:
		return p.pal.render(receivedStyle, "-Received-:")
	default:
		return p.pal.render(unknownStyle, "UNKNOWN SOURCE: ")
	}
}

func (p *Printer) writeError(b *strings.Builder, r inspect.Result) {
	var fe *protocol.FrameError
	if !errors.As(r.Err, &fe) {
		fmt.Fprintf(b, "%s %v\n", p.pal.render(errorStyle, "error:"), r.Err)
		return
	}

	switch {
	case errors.Is(fe, protocol.ErrInvalidMagic):
		b.WriteString(p.pal.render(errorStyle, "MAGIC BYTES NOT MAGIC!!!"))
		b.WriteByte('\n')
		fmt.Fprintf(b, "%s %s %s\n", p.pal.render(labelStyle, "Bytes:"),
			Decimals(fe.Magic[:]), p.pal.render(dimStyle, "expected "+Decimals(protocol.ExpectedMagic[:])))
		fmt.Fprintf(b, "%s %d\n", p.pal.render(labelStyle, "Length field:"), fe.LengthField)
	case errors.Is(fe, protocol.ErrMalformedHex):
		b.WriteString(p.pal.render(errorStyle, "MALFORMED HEX"))
		b.WriteByte('\n')
		fmt.Fprintf(b, "%s %d\n", p.pal.render(labelStyle, "Offset:"), fe.Offset)
	default:
		fmt.Fprintf(b, "%s %v\n", p.pal.render(errorStyle, "error:"), fe.Kind)
	}
	b.WriteString(r.FrameHex)
	b.WriteByte('\n')
}

// Decimals formats b as a bracketed list of decimal values, "[90, 0, 5]".
func Decimals(b []byte) string {
	var sb strings.Builder
	sb.WriteByte('[')
	for i, v := range b {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(strconv.Itoa(int(v)))
	}
	sb.WriteByte(']')
	return sb.String()
}

// Epoch formats t as fractional unix seconds.
func Epoch(t time.Time) string {
	return strconv.FormatFloat(float64(t.UnixMicro())/1e6, 'f', 6, 64)
}
