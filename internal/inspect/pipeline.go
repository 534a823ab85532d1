package inspect

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/nkootstra/framescope/internal/protocol"
	"github.com/nkootstra/framescope/internal/source"
)

// ErrFailFast is the cause of a run stopped by a frame with invalid magic.
var ErrFailFast = errors.New("stopped at first invalid frame")

// Sink receives results. Calls are serialized by Run.
type Sink interface {
	Emit(Result)
}

// SinkFunc adapts a function to Sink.
type SinkFunc func(Result)

func (f SinkFunc) Emit(r Result) { f(r) }

// StatusSink is implemented by sinks that also display source status.
type StatusSink interface {
	SourceStatus(source.Event)
}

// lineBuffer is how many lines a source may read ahead of the inspector.
const lineBuffer = 256

type runner struct {
	in     *Inspector
	filter Filter
	log    *zap.Logger
	cancel context.CancelCauseFunc

	mu   sync.Mutex
	sink Sink
}

// Run reads every source concurrently on a worker pool and feeds the
// filtered results to sink. Lines of one source are inspected in order.
// Run returns when all sources are exhausted or ctx is cancelled; source
// failures are joined into the returned error. With FailFast the first
// invalid-magic result is emitted and then ends the run with an error that
// wraps both ErrFailFast and the frame error.
func Run(ctx context.Context, sources []source.Source, in *Inspector, filter Filter, sink Sink, log *zap.Logger) error {
	if len(sources) == 0 {
		return errors.New("no sources")
	}
	if log == nil {
		log = zap.NewNop()
	}

	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	pool, err := ants.NewPool(len(sources)*2, ants.WithPanicHandler(func(p any) {
		log.Error("source worker panicked", zap.Any("panic", p))
	}))
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	r := &runner{in: in, filter: filter, log: log, cancel: cancel, sink: sink}

	var (
		wg    sync.WaitGroup
		errMu sync.Mutex
		errs  []error
	)
	record := func(err error) {
		errMu.Lock()
		errs = append(errs, err)
		errMu.Unlock()
	}

	stopEvents := r.forwardEvents(sources)
	defer stopEvents()

	for _, src := range sources {
		lines := make(chan string, lineBuffer)
		produced := make(chan error, 1)

		if err := pool.Submit(func() {
			var err error
			defer func() {
				close(lines)
				produced <- err
			}()
			err = src.Lines(ctx, lines)
		}); err != nil {
			record(fmt.Errorf("source %s: %w", src.Name(), err))
			continue
		}

		wg.Add(1)
		if err := pool.Submit(func() {
			defer wg.Done()
			if err := r.consume(ctx, src, lines, produced); err != nil {
				record(err)
			}
		}); err != nil {
			wg.Done()
			record(fmt.Errorf("source %s: %w", src.Name(), err))
		}
	}
	wg.Wait()

	log.Info("run finished", in.Stats().Snapshot().Field())

	if cause := context.Cause(ctx); errors.Is(cause, ErrFailFast) {
		return cause
	}
	return errors.Join(errs...)
}

func (r *runner) consume(ctx context.Context, src source.Source, lines <-chan string, produced <-chan error) error {
	name := src.Name()
	if _, ok := src.(source.EventSource); !ok {
		r.status(source.Event{Source: name, Status: source.StatusConnected})
	}

	for {
		select {
		case line, ok := <-lines:
			if !ok {
				err := <-produced
				return r.finish(name, err)
			}
			if stop := r.handle(name, line); stop {
				return nil
			}
		case <-ctx.Done():
			return nil
		}
	}
}

func (r *runner) finish(name string, err error) error {
	if err == nil || errors.Is(err, context.Canceled) {
		r.status(source.Event{Source: name, Status: source.StatusDone})
		return nil
	}
	r.log.Error("source failed", zap.String("source", name), zap.Error(err))
	r.status(source.Event{Source: name, Status: source.StatusDisconnected, Err: err})
	return fmt.Errorf("source %s: %w", name, err)
}

// handle reports whether the run must stop.
func (r *runner) handle(name, line string) bool {
	for _, res := range r.in.InspectLine(line) {
		res.Source = name
		if !r.filter.Match(res) {
			r.in.Stats().Filtered.Add(1)
			continue
		}

		r.mu.Lock()
		r.sink.Emit(res)
		r.mu.Unlock()

		if r.in.Options().FailFast && errors.Is(res.Err, protocol.ErrInvalidMagic) {
			r.cancel(fmt.Errorf("%w: %w", ErrFailFast, res.Err))
			return true
		}
	}
	return false
}

func (r *runner) status(ev source.Event) {
	ss, ok := r.sink.(StatusSink)
	if !ok {
		return
	}
	r.mu.Lock()
	ss.SourceStatus(ev)
	r.mu.Unlock()
}

// forwardEvents relays status events of sources that publish their own.
func (r *runner) forwardEvents(sources []source.Source) (stop func()) {
	if _, ok := r.sink.(StatusSink); !ok {
		return func() {}
	}
	done := make(chan struct{})
	var wg sync.WaitGroup
	for _, src := range sources {
		es, ok := src.(source.EventSource)
		if !ok {
			continue
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case ev := <-es.Events():
					r.status(ev)
				case <-done:
					return
				}
			}
		}()
	}
	return func() {
		close(done)
		wg.Wait()
	}
}
