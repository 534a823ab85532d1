package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/nkootstra/framescope/internal/inspect"
	"github.com/nkootstra/framescope/internal/source"
)

// FormatElapsed formats a duration as "Xh Ym Zs".
func FormatElapsed(d time.Duration) string {
	seconds := int(d.Seconds())
	h := seconds / 3600
	m := (seconds % 3600) / 60
	s := seconds % 60
	return fmt.Sprintf("%dh %dm %ds", h, m, s)
}

// RenderSummary produces the counters block shown above the source list.
func RenderSummary(s inspect.Snapshot, elapsed time.Duration) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("  %s  %s\n", titleStyle.Render("framescope"), dimStyle.Render(FormatElapsed(elapsed))))
	b.WriteString("\n")
	row := func(label string, v int64) {
		b.WriteString(fmt.Sprintf("  %s %s\n", labelStyle.Render(fmt.Sprintf("%-10s", label)), countStyle.Render(fmt.Sprint(v))))
	}
	row("Lines", s.Lines)
	row("Frames", s.Frames)
	row("Duplicates", s.Duplicates)
	row("Filtered", s.Filtered)
	if s.Errors > 0 {
		b.WriteString(fmt.Sprintf("  %s %s\n", labelStyle.Render(fmt.Sprintf("%-10s", "Errors")), errorStyle.Render(fmt.Sprint(s.Errors))))
	} else {
		row("Errors", s.Errors)
	}
	return b.String()
}

// RenderSourceCard renders the status of one source. The spinner is shown
// while the source is connecting.
func RenderSourceCard(name string, status source.Status, frames int, lastError, spinner string) string {
	var b strings.Builder
	prefix := " "
	if status == source.StatusConnecting || status == source.StatusReconnecting {
		prefix = spinner
	}
	b.WriteString(fmt.Sprintf("  %s %s\n", prefix, name))
	b.WriteString(fmt.Sprintf("    %s  %s\n", StyledSourceStatus(status), dimStyle.Render(fmt.Sprintf("%d frames", frames))))
	if lastError != "" {
		b.WriteString(fmt.Sprintf("    %s\n", errorStyle.Render(lastError)))
	}
	return b.String()
}
