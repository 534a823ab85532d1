package classify

import (
	"fmt"
	"regexp"
)

// Direction tells which way the traffic in a log record went.
type Direction int

const (
	Unknown Direction = iota
	Sent
	Received
)

func (d Direction) String() string {
	switch d {
	case Sent:
		return "sent"
	case Received:
		return "received"
	default:
		return "unknown"
	}
}

// Record is a log line that carries a hex dump.
type Record struct {
	Line      string
	Hex       string
	Direction Direction
}

// Patterns holds the regular expressions used to recognize traffic records.
type Patterns struct {
	// Record must match for a line to be considered at all.
	Record   string `mapstructure:"record"`
	Sent     string `mapstructure:"sent"`
	Received string `mapstructure:"received"`
	// Hex is searched after the Record match and must start at a frame boundary.
	Hex string `mapstructure:"hex"`
}

// Classifier turns raw log lines into Records.
type Classifier struct {
	record   *regexp.Regexp
	sent     *regexp.Regexp
	received *regexp.Regexp
	hex      *regexp.Regexp
}

// New compiles p. Empty fields fall back to the defaults.
func New(p Patterns) (*Classifier, error) {
	def := DefaultPatterns()
	var (
		c   Classifier
		err error
	)
	if c.record, err = compile("record", p.Record, def.Record); err != nil {
		return nil, err
	}
	if c.sent, err = compile("sent", p.Sent, def.Sent); err != nil {
		return nil, err
	}
	if c.received, err = compile("received", p.Received, def.Received); err != nil {
		return nil, err
	}
	if c.hex, err = compile("hex", p.Hex, def.Hex); err != nil {
		return nil, err
	}
	return &c, nil
}

func compile(name, expr, fallback string) (*regexp.Regexp, error) {
	if expr == "" {
		expr = fallback
	}
	re, err := regexp.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid %s pattern %q: %w", name, expr, err)
	}
	return re, nil
}

// Default returns a Classifier using DefaultPatterns.
func Default() *Classifier {
	c, err := New(DefaultPatterns())
	if err != nil {
		panic(err)
	}
	return c
}

// Classify reports whether line is a traffic record and extracts its hex dump.
// A record line without a hex dump is not a record.
func (c *Classifier) Classify(line string) (Record, bool) {
	loc := c.record.FindStringIndex(line)
	if loc == nil {
		return Record{}, false
	}

	hex := c.hex.FindString(line[loc[1]:])
	if hex == "" {
		return Record{}, false
	}

	dir := Unknown
	switch {
	case c.sent.MatchString(line):
		dir = Sent
	case c.received.MatchString(line):
		dir = Received
	}
	return Record{Line: line, Hex: hex, Direction: dir}, true
}
