package source

import (
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// Command streams the standard output of an external program, for example
// "adb logcat" against a device that logs frames.
type Command struct {
	name string
	args []string
	dir  string
}

// NewCommand splits cmdline on whitespace into a program and its arguments.
func NewCommand(cmdline, dir string) (*Command, error) {
	fields := strings.Fields(cmdline)
	if len(fields) == 0 {
		return nil, errors.New("empty command")
	}
	return &Command{name: fields[0], args: fields[1:], dir: dir}, nil
}

func (c *Command) Name() string {
	return strings.Join(append([]string{c.name}, c.args...), " ")
}

// Lines runs the command and reads its stdout until it exits. The process is
// killed when ctx is cancelled.
func (c *Command) Lines(ctx context.Context, out chan<- string) error {
	cmd := exec.CommandContext(ctx, c.name, c.args...)
	if c.dir != "" {
		cmd.Dir = c.dir
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return fmt.Errorf("command %s: %w", c.name, err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("start %s: %w", c.name, err)
	}

	scanErr := scanLines(ctx, stdout, out)
	if scanErr != nil {
		// Unblock a writer that is still producing output.
		_ = cmd.Process.Kill()
	}
	waitErr := cmd.Wait()

	if ctx.Err() != nil {
		return ctx.Err()
	}
	if scanErr != nil {
		return fmt.Errorf("read %s: %w", c.name, scanErr)
	}
	if waitErr != nil {
		return fmt.Errorf("command %s: %w", c.name, waitErr)
	}
	return nil
}
