package tui

import (
	"time"

	tea "charm.land/bubbletea/v2"

	"github.com/nkootstra/framescope/internal/inspect"
	"github.com/nkootstra/framescope/internal/source"
)

// resultMsg carries one inspection result into the program.
type resultMsg struct {
	result inspect.Result
	at     time.Time
}

// statusMsg carries a source status change.
type statusMsg source.Event

// doneMsg is sent once the pipeline has returned.
type doneMsg struct {
	err error
}

// tickMsg fires every second to refresh the counters.
type tickMsg time.Time

// tickEvery returns a command that sends a tickMsg every second.
func tickEvery() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

// sender is the part of *tea.Program the Sink needs.
type sender interface {
	Send(tea.Msg)
}

// Sink forwards pipeline output into a running program. It implements
// inspect.Sink and inspect.StatusSink.
type Sink struct {
	p   sender
	now func() time.Time
}

var (
	_ inspect.Sink       = (*Sink)(nil)
	_ inspect.StatusSink = (*Sink)(nil)
)

// NewSink creates a Sink for p.
func NewSink(p *tea.Program) *Sink {
	return &Sink{p: p, now: time.Now}
}

func (s *Sink) Emit(r inspect.Result) {
	s.p.Send(resultMsg{result: r, at: s.now()})
}

func (s *Sink) SourceStatus(ev source.Event) {
	s.p.Send(statusMsg(ev))
}

// Done tells the program the pipeline returned err.
func (s *Sink) Done(err error) {
	s.p.Send(doneMsg{err: err})
}
