package inspect

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nkootstra/framescope/internal/protocol"
	"github.com/nkootstra/framescope/internal/source"
)

type collector struct {
	mu       sync.Mutex
	results  []Result
	statuses []source.Event
}

func (c *collector) Emit(r Result) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.results = append(c.results, r)
}

func (c *collector) SourceStatus(ev source.Event) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.statuses = append(c.statuses, ev)
}

func (c *collector) bySource(name string) []Result {
	var out []Result
	for _, r := range c.results {
		if r.Source == name {
			out = append(out, r)
		}
	}
	return out
}

type failingSource struct{}

func (failingSource) Name() string { return "broken" }

func (failingSource) Lines(context.Context, chan<- string) error {
	return errors.New("device unplugged")
}

func memSource(name string, lines ...string) source.Source {
	return source.NewReader(name, strings.NewReader(strings.Join(lines, "\n")))
}

func TestRun_SourcesInOrder(t *testing.T) {
	var lines []string
	for range 50 {
		lines = append(lines, received(frameA), "Send [Len]: 12 [Data]: "+frameB)
	}

	sink := &collector{}
	in := New(DefaultOptions(), nil, nil)
	err := Run(context.Background(), []source.Source{
		memSource("a", lines...),
		memSource("b", lines...),
	}, in, MatchAll(), sink, nil)
	require.NoError(t, err)

	for _, name := range []string{"a", "b"} {
		got := sink.bySource(name)
		require.Len(t, got, 100)
		for i, r := range got {
			want := frameA
			if i%2 == 1 {
				want = frameB
			}
			assert.Equal(t, want, r.FrameHex, "source %s result %d", name, i)
		}
	}
	assert.Equal(t, int64(200), in.Stats().Snapshot().Frames)
}

func TestRun_FilterCountsDropped(t *testing.T) {
	sink := &collector{}
	in := New(DefaultOptions(), nil, nil)
	f := MatchAll()
	f.ServiceID = 3

	err := Run(context.Background(), []source.Source{
		memSource("a", received(frameA), received(frameB)),
	}, in, f, sink, nil)
	require.NoError(t, err)

	require.Len(t, sink.results, 1)
	assert.Equal(t, frameB, sink.results[0].FrameHex)
	assert.Equal(t, int64(1), in.Stats().Filtered.Load())
}

func TestRun_ContinuesPastInvalidMagic(t *testing.T) {
	sink := &collector{}
	in := New(DefaultOptions(), nil, nil)

	err := Run(context.Background(), []source.Source{
		memSource("a", received(frameA), received("5a0105000102aabbccdd"), received(frameB)),
	}, in, MatchAll(), sink, nil)
	require.NoError(t, err)

	require.Len(t, sink.results, 3)
	assert.ErrorIs(t, sink.results[1].Err, protocol.ErrInvalidMagic)
	assert.True(t, sink.results[2].OK())
}

func TestRun_FailFast(t *testing.T) {
	sink := &collector{}
	in := New(Options{SmartDivide: true, FailFast: true}, nil, nil)

	err := Run(context.Background(), []source.Source{
		memSource("a", received(frameA), received("5a0105000102aabbccdd"), received(frameB)),
	}, in, MatchAll(), sink, nil)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFailFast)
	assert.ErrorIs(t, err, protocol.ErrInvalidMagic)

	require.Len(t, sink.results, 2)
	assert.True(t, sink.results[0].OK())
	assert.ErrorIs(t, sink.results[1].Err, protocol.ErrInvalidMagic)
}

func TestRun_SourceError(t *testing.T) {
	sink := &collector{}
	in := New(DefaultOptions(), nil, nil)

	err := Run(context.Background(), []source.Source{
		memSource("good", received(frameA)),
		failingSource{},
	}, in, MatchAll(), sink, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "source broken")
	assert.Contains(t, err.Error(), "device unplugged")

	assert.Len(t, sink.bySource("good"), 1)

	statuses := map[string]source.Status{}
	for _, ev := range sink.statuses {
		statuses[ev.Source] = ev.Status
	}
	assert.Equal(t, source.StatusDone, statuses["good"])
	assert.Equal(t, source.StatusDisconnected, statuses["broken"])
}

func TestRun_NoSources(t *testing.T) {
	err := Run(context.Background(), nil, New(DefaultOptions(), nil, nil), MatchAll(), SinkFunc(func(Result) {}), nil)
	assert.Error(t, err)
}

func TestRun_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Run(ctx, []source.Source{memSource("a", received(frameA))},
		New(DefaultOptions(), nil, nil), MatchAll(), SinkFunc(func(Result) {}), nil)
	assert.NoError(t, err)
}
