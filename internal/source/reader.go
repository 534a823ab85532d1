package source

import (
	"context"
	"fmt"
	"io"
	"os"
)

// Reader reads lines from an io.Reader such as stdin or a file.
type Reader struct {
	name   string
	r      io.Reader
	closer io.Closer
}

// NewReader wraps r. The reader is not closed by Lines.
func NewReader(name string, r io.Reader) *Reader {
	return &Reader{name: name, r: r}
}

// Stdin reads from the process's standard input.
func Stdin() *Reader {
	return NewReader("stdin", os.Stdin)
}

// OpenFile opens path for reading. The file is closed when Lines returns.
func OpenFile(path string) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return &Reader{name: path, r: f, closer: f}, nil
}

func (s *Reader) Name() string {
	return s.name
}

func (s *Reader) Lines(ctx context.Context, out chan<- string) error {
	if s.closer != nil {
		defer s.closer.Close()
	}
	return scanLines(ctx, s.r, out)
}

// Close releases the underlying file, if Reader owns one.
func (s *Reader) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}
