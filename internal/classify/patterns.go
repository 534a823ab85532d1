package classify

const (
	recordPattern   = `(received length: \d+ data: )|(Send \[Len]: \d+ \[Data]: )`
	sentPattern     = `Send `
	receivedPattern = `received length: `
	hexPattern      = `(?i:5a)\w+`
)

// DefaultPatterns matches the serial bridge log format:
//
//	... Send [Len]: 10 [Data]: 5a0005000102aabbccdd
//	... received length: 10 data: 5a0005000102aabbccdd
func DefaultPatterns() Patterns {
	return Patterns{
		Record:   recordPattern,
		Sent:     sentPattern,
		Received: receivedPattern,
		Hex:      hexPattern,
	}
}
