package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/nkootstra/framescope/internal/classify"
	"github.com/nkootstra/framescope/internal/config"
	"github.com/nkootstra/framescope/internal/inspect"
	"github.com/nkootstra/framescope/internal/logging"
	"github.com/nkootstra/framescope/internal/protocol"
	"github.com/nkootstra/framescope/internal/render"
	"github.com/nkootstra/framescope/internal/source"
	"github.com/nkootstra/framescope/internal/tui"
	"github.com/nkootstra/framescope/internal/version"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "framescope [flags] [file...]",
	Short: "Extract and decode binary frames from hex dumps in device logs",
	Long: `framescope reads log lines from files, stdin, a serial console, a command
or a websocket relay, finds the sent and received hex dumps in them, splits
each dump into frames using their length byte and prints every frame.`,
	Version:      version.String(),
	Args:         cobra.ArbitraryArgs,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	f := rootCmd.PersistentFlags()
	f.StringVar(&configPath, "config", "", "Path to a YAML, TOML or JSON config file")

	f.Int("filter-service", config.Unset, "Only show frames with this service id")
	f.Int("filter-command", config.Unset, "Only show frames with this command id")
	f.Int("filter-length-max", config.Unset, "Only show frames whose length byte is at most this")
	f.String("search-for-bytes", "", "Only show frames containing these bytes, in decimal, e.g. \"[90, 0, 12]\"")
	f.Bool("only-sent", false, "Only show sent data")
	f.Bool("only-received", false, "Only show received data")

	f.Bool("print", false, "Print data as text")
	f.Bool("verbose", false, "Print all raw data")
	f.Bool("very-verbose", false, "Print even the raw log lines")
	f.Bool("only-print", false, "Skip everything else and just print as text")
	f.Bool("print-time", false, "Prefix every frame with the unix time")
	f.String("charset", "latin1", "Charset for printable text: "+strings.Join(protocol.CharsetNames(), ", "))
	f.String("color", render.ColorAuto, "Color output: auto, always or never")

	f.Bool("smart-divide", true, "Divide dumps into frames using their length byte and skip repeated frames")
	f.Bool("fail-fast", false, "Stop at the first frame with invalid magic bytes")

	f.String("serial", "", "Read from a serial device, e.g. /dev/ttyUSB0")
	f.Int("baud", source.DefaultBaudRate, "Serial baud rate")
	f.String("ws", "", "Read from a websocket log relay, e.g. ws://host:8080/logs")
	f.String("exec", "", "Read the output of a command, e.g. \"adb logcat\"")
	f.Bool("tui", false, "Show a live terminal view instead of printing")

	f.String("log-level", "warn", "Diagnostic log level: debug, info, warn or error")
	f.String("log-format", "console", "Diagnostic log format: console or json")
	f.String("log-file", "", "Also write diagnostics to this file, rotated")

	rootCmd.AddCommand(decodeCmd, demoCmd)
}

func Execute() error {
	return rootCmd.Execute()
}

// setup loads configuration and builds the logger and inspector shared by
// every command.
func setup(cmd *cobra.Command) (*config.Config, *zap.Logger, *inspect.Inspector, error) {
	cfg, err := config.Load(configPath, cmd.Flags())
	if err != nil {
		return nil, nil, nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, nil, err
	}

	log, err := logging.New(cfg.Logging)
	if err != nil {
		return nil, nil, nil, err
	}

	classifier, err := classify.New(cfg.Patterns)
	if err != nil {
		return nil, nil, nil, err
	}

	in := inspect.New(inspect.Options{
		SmartDivide: cfg.Inspect.SmartDivide,
		FailFast:    cfg.Inspect.FailFast,
	}, classifier, log)
	return cfg, log, in, nil
}

func newPrinter(cfg *config.Config) *render.Printer {
	cs, _ := protocol.LookupCharset(cfg.Output.Charset)
	return render.New(os.Stdout, render.Options{
		PrintTime:   cfg.Output.PrintTime,
		Verbose:     cfg.Output.Verbose,
		VeryVerbose: cfg.Output.VeryVerbose,
		OnlyPrint:   cfg.Output.OnlyPrint,
		Printable:   cfg.Output.Printable,
		Color:       render.ResolveColor(strings.ToLower(cfg.Output.Color), os.Stdout),
		Charset:     cs,
	})
}

func run(cmd *cobra.Command, args []string) error {
	cfg, log, in, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	cfg.Sources.Files = append(cfg.Sources.Files, args...)

	filter, err := inspect.FilterFromConfig(cfg.Filter)
	if err != nil {
		return err
	}

	sources, err := openSources(cfg, log)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if cfg.TUI {
		if len(sources) == 1 && sources[0].Name() == "stdin" {
			return errors.New("the live view reads the keyboard from stdin: pass a file, --serial, --ws or --exec")
		}
		cs, _ := protocol.LookupCharset(cfg.Output.Charset)
		return tui.Run(ctx, sources, in, filter, tui.Options{
			Charset:   cs,
			Printable: cfg.Output.Printable,
		}, log)
	}

	printer := newPrinter(cfg)
	err = inspect.Run(ctx, sources, in, filter, printer, log)
	if werr := printer.Err(); werr != nil && err == nil {
		err = fmt.Errorf("write output: %w", werr)
	}
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// openSources builds every configured source, falling back to stdin.
func openSources(cfg *config.Config, log *zap.Logger) ([]source.Source, error) {
	var (
		sources []source.Source
		opened  []*source.Reader
	)
	fail := func(err error) ([]source.Source, error) {
		for _, r := range opened {
			_ = r.Close()
		}
		return nil, err
	}

	for _, path := range cfg.Sources.Files {
		if path == "-" {
			sources = append(sources, source.Stdin())
			continue
		}
		r, err := source.OpenFile(path)
		if err != nil {
			return fail(err)
		}
		opened = append(opened, r)
		sources = append(sources, r)
	}

	if dev := cfg.Sources.Serial.Device; dev != "" {
		sources = append(sources, source.NewSerial(dev, cfg.Sources.Serial.Baud))
	}

	if raw := cfg.Sources.WebSocket; raw != "" {
		url, err := normalizeWebSocketURL(raw)
		if err != nil {
			return fail(err)
		}
		sources = append(sources, source.NewWebSocket(source.WebSocketOptions{URL: url, Logger: log}))
	}

	if cmdline := cfg.Sources.Command; cmdline != "" {
		c, err := source.NewCommand(cmdline, "")
		if err != nil {
			return fail(fmt.Errorf("invalid --exec: %w", err))
		}
		sources = append(sources, c)
	}

	if len(sources) == 0 {
		sources = append(sources, source.Stdin())
	}
	return sources, nil
}

// normalizeWebSocketURL accepts ws, wss, http and https URLs as well as a
// bare host[:port]/path, which is dialled over ws.
func normalizeWebSocketURL(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, "ws://"), strings.HasPrefix(s, "wss://"):
	case strings.HasPrefix(s, "https://"):
		s = "wss://" + strings.TrimPrefix(s, "https://")
	case strings.HasPrefix(s, "http://"):
		s = "ws://" + strings.TrimPrefix(s, "http://")
	case strings.Contains(s, "://"):
		return "", fmt.Errorf("invalid --ws %q: use a ws:// or wss:// URL", raw)
	default:
		s = "ws://" + s
	}
	if s == "ws://" || s == "wss://" {
		return "", fmt.Errorf("invalid --ws %q: missing host", raw)
	}
	return s, nil
}
