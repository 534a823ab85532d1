package inspect

import (
	"sync/atomic"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Stats counts what happened during a run. All fields are safe for
// concurrent use.
type Stats struct {
	Lines      atomic.Int64
	Records    atomic.Int64
	Frames     atomic.Int64
	Duplicates atomic.Int64
	Truncated  atomic.Int64
	Errors     atomic.Int64
	Filtered   atomic.Int64
}

// Snapshot is a point-in-time copy of Stats.
type Snapshot struct {
	Lines      int64
	Records    int64
	Frames     int64
	Duplicates int64
	Truncated  int64
	Errors     int64
	Filtered   int64
}

// Snapshot copies the current counter values.
func (s *Stats) Snapshot() Snapshot {
	return Snapshot{
		Lines:      s.Lines.Load(),
		Records:    s.Records.Load(),
		Frames:     s.Frames.Load(),
		Duplicates: s.Duplicates.Load(),
		Truncated:  s.Truncated.Load(),
		Errors:     s.Errors.Load(),
		Filtered:   s.Filtered.Load(),
	}
}

// MarshalLogObject lets a Snapshot be logged with zap.Object.
func (s Snapshot) MarshalLogObject(enc zapcore.ObjectEncoder) error {
	enc.AddInt64("lines", s.Lines)
	enc.AddInt64("records", s.Records)
	enc.AddInt64("frames", s.Frames)
	enc.AddInt64("duplicates", s.Duplicates)
	enc.AddInt64("truncated", s.Truncated)
	enc.AddInt64("errors", s.Errors)
	enc.AddInt64("filtered", s.Filtered)
	return nil
}

var _ zapcore.ObjectMarshaler = Snapshot{}

// Field returns the snapshot as a zap field.
func (s Snapshot) Field() zap.Field {
	return zap.Object("stats", s)
}
