// Package source provides the places log lines are read from: standard
// input, files, serial consoles, external commands and websocket relays.
package source

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// Source produces log lines. Lines blocks until the source is exhausted,
// fails, or ctx is cancelled; it never closes out.
type Source interface {
	Name() string
	Lines(ctx context.Context, out chan<- string) error
}

// Status represents the state of a source.
type Status string

const (
	StatusConnecting   Status = "connecting"
	StatusConnected    Status = "connected"
	StatusReconnecting Status = "reconnecting"
	StatusDisconnected Status = "disconnected"
	StatusDone         Status = "done"
)

// Event is a status change of a source.
type Event struct {
	Source string
	Status Status
	Err    error
}

// EventSource is implemented by sources that report their own status changes.
type EventSource interface {
	Events() <-chan Event
}

// scanLines sends every line of r to out. Trailing carriage returns are
// removed so CRLF serial logs look like any other.
func scanLines(ctx context.Context, r io.Reader, out chan<- string) error {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLineBytes)
	for sc.Scan() {
		if err := send(ctx, out, strings.TrimRight(sc.Text(), "\r")); err != nil {
			return err
		}
	}
	return sc.Err()
}

func send(ctx context.Context, out chan<- string, line string) error {
	select {
	case out <- line:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
