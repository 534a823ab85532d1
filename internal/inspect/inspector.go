// Package inspect turns classified log lines into parsed frames and applies
// the operator's filters.
package inspect

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/nkootstra/framescope/internal/classify"
	"github.com/nkootstra/framescope/internal/protocol"
)

// Options is passed explicitly instead of being read from process state.
type Options struct {
	// SmartDivide splits a hex dump into the frames its length bytes
	// describe. When off the whole dump is parsed as one frame.
	SmartDivide bool
	// FailFast stops a run at the first frame with invalid magic bytes.
	FailFast bool
}

// DefaultOptions enables smart divide and keeps going on errors.
func DefaultOptions() Options {
	return Options{SmartDivide: true}
}

// Result is one frame, or one frame-sized failure, taken from a log line.
type Result struct {
	Frame     *protocol.Frame
	Direction classify.Direction
	// Divided is set when the line held more data than its first frame.
	Divided  bool
	RawLine  string
	FrameHex string
	// Source names where the line came from, when known.
	Source string
	Err    error
}

// OK reports whether the result carries a parsed frame.
func (r Result) OK() bool {
	return r.Err == nil && r.Frame != nil
}

// Inspector extracts frames from raw log lines. It holds no per-line state
// and is safe for concurrent use.
type Inspector struct {
	opts       Options
	classifier *classify.Classifier
	log        *zap.Logger
	stats      *Stats
}

// New creates an Inspector. A nil classifier uses classify.Default and a nil
// logger discards diagnostics.
func New(opts Options, classifier *classify.Classifier, log *zap.Logger) *Inspector {
	if classifier == nil {
		classifier = classify.Default()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Inspector{
		opts:       opts,
		classifier: classifier,
		log:        log,
		stats:      &Stats{},
	}
}

// Options returns the options the Inspector was built with.
func (in *Inspector) Options() Options {
	return in.opts
}

// Stats returns the live counters of this Inspector.
func (in *Inspector) Stats() *Stats {
	return in.stats
}

// InspectLine classifies line and parses every frame in its hex dump.
// Truncated frames are dropped; every other failure is returned as a Result
// with Err set so the caller can report it.
func (in *Inspector) InspectLine(line string) []Result {
	in.stats.Lines.Add(1)

	rec, ok := in.classifier.Classify(line)
	if !ok {
		return nil
	}
	in.stats.Records.Add(1)
	return in.inspect(rec)
}

// InspectHex parses a bare hex dump, as found in a record of unknown
// direction. Whitespace inside the dump is ignored.
func (in *Inspector) InspectHex(dump string) []Result {
	in.stats.Lines.Add(1)
	in.stats.Records.Add(1)
	hex := strings.Join(strings.Fields(dump), "")
	return in.inspect(classify.Record{Line: dump, Hex: hex, Direction: classify.Unknown})
}

func (in *Inspector) inspect(rec classify.Record) []Result {
	if !in.opts.SmartDivide {
		res, keep := in.parse(rec, rec.Hex, false)
		if !keep {
			return nil
		}
		return []Result{res}
	}

	var out []Result
	for c := range protocol.Cuts(rec.Hex) {
		if c.Duplicate {
			in.stats.Duplicates.Add(1)
			in.log.Debug("duplicate frame suppressed", zap.String("hex", c.Hex), zap.Int("offset", c.Offset))
			continue
		}
		if res, keep := in.parse(rec, c.Hex, c.Divided); keep {
			out = append(out, res)
		}
	}
	return out
}

func (in *Inspector) parse(rec classify.Record, frameHex string, divided bool) (Result, bool) {
	res := Result{
		Direction: rec.Direction,
		Divided:   divided,
		RawLine:   rec.Line,
		FrameHex:  frameHex,
	}

	f, err := protocol.ParseFrameHex(frameHex)
	switch {
	case err == nil:
		in.stats.Frames.Add(1)
		res.Frame = f
		return res, true
	case errors.Is(err, protocol.ErrTruncatedFrame):
		in.stats.Truncated.Add(1)
		in.log.Debug("truncated frame dropped", zap.String("hex", frameHex))
		return res, false
	default:
		in.stats.Errors.Add(1)
		in.log.Warn("frame rejected", zap.Error(err), zap.String("direction", rec.Direction.String()))
		res.Err = err
		return res, true
	}
}
