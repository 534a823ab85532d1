package source

import (
	"context"
	"fmt"
	"io"

	"go.bug.st/serial"
)

// Serial reads lines from a serial console.
type Serial struct {
	device string
	baud   int
	open   func(device string, mode *serial.Mode) (io.ReadCloser, error)
}

// NewSerial creates a serial source. A zero baud rate selects DefaultBaudRate.
func NewSerial(device string, baud int) *Serial {
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	return &Serial{device: device, baud: baud, open: openPort}
}

func openPort(device string, mode *serial.Mode) (io.ReadCloser, error) {
	return serial.Open(device, mode)
}

func (s *Serial) Name() string {
	return s.device
}

// Lines reads until the port fails or ctx is cancelled. Cancelling closes
// the port, which unblocks the pending read.
func (s *Serial) Lines(ctx context.Context, out chan<- string) error {
	port, err := s.open(s.device, &serial.Mode{
		BaudRate: s.baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	})
	if err != nil {
		return fmt.Errorf("open serial port %s: %w", s.device, err)
	}
	stop := context.AfterFunc(ctx, func() { port.Close() })
	defer stop()
	defer port.Close()

	err = scanLines(ctx, port, out)
	if ctx.Err() != nil {
		return ctx.Err()
	}
	if err != nil {
		return fmt.Errorf("read serial port %s: %w", s.device, err)
	}
	return nil
}
