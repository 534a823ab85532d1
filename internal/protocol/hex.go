package protocol

import (
	"encoding/hex"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var charsets = map[string]*charmap.Charmap{
	"latin1":       charmap.ISO8859_1,
	"iso-8859-1":   charmap.ISO8859_1,
	"cp1252":       charmap.Windows1252,
	"windows-1252": charmap.Windows1252,
	"cp437":        charmap.CodePage437,
	"cp850":        charmap.CodePage850,
	"koi8-r":       charmap.KOI8R,
}

// DefaultCharset is used by ToPrintable.
var DefaultCharset = charmap.ISO8859_1

// Decode converts a hex string to bytes. Both cases are accepted.
func Decode(hexStr string) ([]byte, error) {
	b, err := hex.DecodeString(hexStr)
	if err != nil {
		return nil, &FrameError{Kind: ErrMalformedHex, Hex: hexStr, Offset: badHexOffset(hexStr)}
	}
	return b, nil
}

// Encode converts bytes to lowercase hex.
func Encode(b []byte) string {
	return hex.EncodeToString(b)
}

func badHexOffset(s string) int {
	if i := strings.IndexFunc(s, func(r rune) bool { return !isHexDigit(r) }); i >= 0 {
		return i
	}
	// every character is valid, so the string is one nibble short
	return len(s) - 1
}

func isHexDigit(r rune) bool {
	return (r >= '0' && r <= '9') || (r >= 'a' && r <= 'f') || (r >= 'A' && r <= 'F')
}

// LookupCharset returns the charmap registered under name (case-insensitive).
func LookupCharset(name string) (*charmap.Charmap, bool) {
	cs, ok := charsets[strings.ToLower(strings.TrimSpace(name))]
	return cs, ok
}

// CharsetNames lists the accepted charset names.
func CharsetNames() []string {
	names := make([]string, 0, len(charsets))
	for name := range charsets {
		names = append(names, name)
	}
	return names
}

// ToPrintable renders b with DefaultCharset.
func ToPrintable(b []byte) string {
	return Printable(b, DefaultCharset)
}

// Printable renders every byte as one character of cs, replacing anything
// that is not printable with PrintablePlaceholder.
func Printable(b []byte, cs *charmap.Charmap) string {
	if cs == nil {
		cs = DefaultCharset
	}
	var sb strings.Builder
	sb.Grow(len(b))
	for _, c := range b {
		r := cs.DecodeByte(c)
		if r == utf8.RuneError || !unicode.IsPrint(r) {
			r = PrintablePlaceholder
		}
		sb.WriteRune(r)
	}
	return sb.String()
}
