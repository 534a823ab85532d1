package tui

import (
	"context"
	"fmt"

	tea "charm.land/bubbletea/v2"
	"go.uber.org/zap"

	"github.com/nkootstra/framescope/internal/inspect"
	"github.com/nkootstra/framescope/internal/source"
)

// Run drives the pipeline behind the live view. It returns when the operator
// quits; the pipeline's own error, if any, is returned after it stopped.
func Run(ctx context.Context, sources []source.Source, in *inspect.Inspector, filter inspect.Filter, opts Options, log *zap.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	names := make([]string, len(sources))
	for i, src := range sources {
		names[i] = src.Name()
	}

	p := tea.NewProgram(NewModel(names, in.Stats(), cancel, opts))
	sink := NewSink(p)

	errc := make(chan error, 1)
	go func() {
		err := inspect.Run(ctx, sources, in, filter, sink, log)
		sink.Done(err)
		errc <- err
	}()

	if _, err := p.Run(); err != nil {
		cancel()
		<-errc
		return fmt.Errorf("tui: %w", err)
	}
	cancel()
	return <-errc
}
