package tui

import (
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/x/ansi"
	"golang.org/x/text/encoding/charmap"

	"github.com/nkootstra/framescope/internal/classify"
	"github.com/nkootstra/framescope/internal/inspect"
	"github.com/nkootstra/framescope/internal/protocol"
)

const (
	previewBytes = 12
	maxErrorHex  = 41
)

// RenderFrameLine produces one line of the frame log.
func RenderFrameLine(r inspect.Result, ts time.Time, printable bool, cs *charmap.Charmap) string {
	timeStr := dimStyle.Render(ts.Format("15:04:05"))
	dir := StyledDirection(r.Direction)

	if !r.OK() {
		return fmt.Sprintf("  %s  %s  %s", timeStr, dir, errorStyle.Render(errorSummary(r)))
	}

	f := r.Frame
	ids := fmt.Sprintf("svc %3d cmd %3d", f.ServiceID, f.CommandID)
	length := dimStyle.Render(fmt.Sprintf("len %3d", f.LengthField))

	var preview string
	if printable {
		preview = protocol.Printable(f.Payload, cs)
	} else {
		preview = hexPreview(f.Payload)
	}

	line := fmt.Sprintf("  %s  %s  %s  %s  %s", timeStr, dir, idStyle.Render(ids), length, preview)
	if r.Divided {
		line += "  " + dividedStyle.Render("÷")
	}
	return line
}

// hexPreview shows the first bytes of payload as spaced hex.
func hexPreview(payload []byte) string {
	if len(payload) == 0 {
		return dimStyle.Render("(empty)")
	}
	shown := payload
	if len(shown) > previewBytes {
		shown = shown[:previewBytes]
	}
	s := fmt.Sprintf("% x", shown)
	if len(payload) > previewBytes {
		s += dimStyle.Render(fmt.Sprintf(" +%d", len(payload)-previewBytes))
	}
	return s
}

func errorSummary(r inspect.Result) string {
	kind := "error"
	switch {
	case errors.Is(r.Err, protocol.ErrInvalidMagic):
		kind = "bad magic"
	case errors.Is(r.Err, protocol.ErrMalformedHex):
		kind = "bad hex"
	}
	return kind + " " + ansi.Truncate(r.FrameHex, maxErrorHex, "…")
}

// StyledDirection returns a short direction label, colored.
func StyledDirection(d classify.Direction) string {
	label := "??"
	switch d {
	case classify.Sent:
		label = "TX"
	case classify.Received:
		label = "RX"
	}
	if style, ok := directionStyles[d]; ok {
		return style.Render(label)
	}
	return label
}
