package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/nkootstra/framescope/internal/classify"
	"github.com/nkootstra/framescope/internal/protocol"
)

// EnvPrefix prefixes every environment override, e.g. FRAMESCOPE_FILTER_SERVICE.
const EnvPrefix = "FRAMESCOPE"

// Unset marks an integer filter that should match anything.
const Unset = -1

// InspectConfig controls how hex dumps are turned into frames.
type InspectConfig struct {
	SmartDivide bool `mapstructure:"smartDivide"`
	FailFast    bool `mapstructure:"failFast"`
}

// FilterConfig selects which frames are shown.
type FilterConfig struct {
	Service      int    `mapstructure:"service"`
	Command      int    `mapstructure:"command"`
	LengthMax    int    `mapstructure:"lengthMax"`
	SearchBytes  string `mapstructure:"searchBytes"`
	OnlySent     bool   `mapstructure:"onlySent"`
	OnlyReceived bool   `mapstructure:"onlyReceived"`
}

// OutputConfig controls the plain text printer.
type OutputConfig struct {
	PrintTime   bool   `mapstructure:"printTime"`
	Verbose     bool   `mapstructure:"verbose"`
	VeryVerbose bool   `mapstructure:"veryVerbose"`
	OnlyPrint   bool   `mapstructure:"onlyPrint"`
	Printable   bool   `mapstructure:"printable"`
	Charset     string `mapstructure:"charset"`
	// Color is one of auto, always, never.
	Color string `mapstructure:"color"`
}

// SerialConfig describes a serial console source.
type SerialConfig struct {
	Device string `mapstructure:"device"`
	Baud   int    `mapstructure:"baud"`
}

// SourcesConfig lists where log lines come from. Stdin is used when empty.
type SourcesConfig struct {
	Files     []string     `mapstructure:"files"`
	Serial    SerialConfig `mapstructure:"serial"`
	WebSocket string       `mapstructure:"websocket"`
	Command   string       `mapstructure:"command"`
}

// LumberjackConfig holds rotation settings for the optional log file.
type LumberjackConfig struct {
	Filename   string `mapstructure:"filename"`
	MaxSizeMB  int    `mapstructure:"maxSize"`
	MaxBackups int    `mapstructure:"maxBackups"`
	MaxAgeDays int    `mapstructure:"maxAge"`
	Compress   bool   `mapstructure:"compress"`
}

// LoggingConfig sets level and output of diagnostic logs.
type LoggingConfig struct {
	Level  string           `mapstructure:"level"`
	Format string           `mapstructure:"format"`
	File   LumberjackConfig `mapstructure:"file"`
}

// Config is the top-level configuration.
type Config struct {
	Inspect  InspectConfig     `mapstructure:"inspect"`
	Filter   FilterConfig      `mapstructure:"filter"`
	Output   OutputConfig      `mapstructure:"output"`
	Patterns classify.Patterns `mapstructure:"patterns"`
	Sources  SourcesConfig     `mapstructure:"sources"`
	Logging  LoggingConfig     `mapstructure:"logging"`
	TUI      bool              `mapstructure:"tui"`
}

// FlagKeys maps command line flag names to configuration keys.
var FlagKeys = map[string]string{
	"smart-divide":      "inspect.smartDivide",
	"fail-fast":         "inspect.failFast",
	"filter-service":    "filter.service",
	"filter-command":    "filter.command",
	"filter-length-max": "filter.lengthMax",
	"search-for-bytes":  "filter.searchBytes",
	"only-sent":         "filter.onlySent",
	"only-received":     "filter.onlyReceived",
	"print-time":        "output.printTime",
	"verbose":           "output.verbose",
	"very-verbose":      "output.veryVerbose",
	"only-print":        "output.onlyPrint",
	"print":             "output.printable",
	"charset":           "output.charset",
	"color":             "output.color",
	"serial":            "sources.serial.device",
	"baud":              "sources.serial.baud",
	"ws":                "sources.websocket",
	"exec":              "sources.command",
	"log-level":         "logging.level",
	"log-format":        "logging.format",
	"log-file":          "logging.file.filename",
	"tui":               "tui",
}

// Load reads configuration from a YAML/TOML/JSON file, environment variables
// and command line flags, in increasing order of precedence.
// If path is empty FRAMESCOPE_CONFIG is consulted, then ./framescope.* is
// tried; a missing default file is not an error.
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()

	if path == "" {
		path = os.Getenv(EnvPrefix + "_CONFIG")
	}

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("framescope")
	}

	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		for name, key := range FlagKeys {
			if f := flags.Lookup(name); f != nil {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("bind flag %s: %w", name, err)
				}
			}
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("inspect.smartDivide", true)
	v.SetDefault("inspect.failFast", false)

	v.SetDefault("filter.service", Unset)
	v.SetDefault("filter.command", Unset)
	v.SetDefault("filter.lengthMax", Unset)
	v.SetDefault("filter.searchBytes", "")
	v.SetDefault("filter.onlySent", false)
	v.SetDefault("filter.onlyReceived", false)

	v.SetDefault("output.printTime", false)
	v.SetDefault("output.verbose", false)
	v.SetDefault("output.veryVerbose", false)
	v.SetDefault("output.onlyPrint", false)
	v.SetDefault("output.printable", false)
	v.SetDefault("output.charset", "latin1")
	v.SetDefault("output.color", "auto")

	def := classify.DefaultPatterns()
	v.SetDefault("patterns.record", def.Record)
	v.SetDefault("patterns.sent", def.Sent)
	v.SetDefault("patterns.received", def.Received)
	v.SetDefault("patterns.hex", def.Hex)

	v.SetDefault("sources.files", []string{})
	v.SetDefault("sources.serial.device", "")
	v.SetDefault("sources.serial.baud", 115200)
	v.SetDefault("sources.websocket", "")
	v.SetDefault("sources.command", "")

	v.SetDefault("logging.level", "warn")
	v.SetDefault("logging.format", "console")
	v.SetDefault("logging.file.filename", "")
	v.SetDefault("logging.file.maxSize", 100)
	v.SetDefault("logging.file.maxBackups", 3)
	v.SetDefault("logging.file.maxAge", 15)
	v.SetDefault("logging.file.compress", false)

	v.SetDefault("tui", false)
}

// Validate rejects settings that cannot work together.
func (c *Config) Validate() error {
	if c.Filter.OnlySent && c.Filter.OnlyReceived {
		return errors.New("only-sent and only-received are mutually exclusive")
	}
	for name, val := range map[string]int{
		"filter-service": c.Filter.Service,
		"filter-command": c.Filter.Command,
	} {
		if val < Unset || val > 0xFF {
			return fmt.Errorf("invalid %s %d: must be between 0 and 255", name, val)
		}
	}
	if c.Filter.LengthMax < Unset {
		return fmt.Errorf("invalid filter-length-max %d", c.Filter.LengthMax)
	}
	if c.Sources.Serial.Device != "" && c.Sources.Serial.Baud <= 0 {
		return fmt.Errorf("invalid baud rate %d", c.Sources.Serial.Baud)
	}
	if _, ok := protocol.LookupCharset(c.Output.Charset); !ok {
		return fmt.Errorf("unknown charset %q", c.Output.Charset)
	}
	switch strings.ToLower(c.Output.Color) {
	case "auto", "always", "never":
	default:
		return fmt.Errorf("invalid color mode %q: use auto, always or never", c.Output.Color)
	}
	switch strings.ToLower(c.Logging.Format) {
	case "console", "json":
	default:
		return fmt.Errorf("invalid log format %q: use console or json", c.Logging.Format)
	}
	return nil
}
