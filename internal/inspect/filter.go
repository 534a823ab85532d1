package inspect

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nkootstra/framescope/internal/classify"
	"github.com/nkootstra/framescope/internal/config"
	"github.com/nkootstra/framescope/internal/protocol"
)

// Filter decides which parsed frames reach the output. Integer fields set to
// config.Unset match anything. Results carrying an error always pass.
type Filter struct {
	ServiceID    int
	CommandID    int
	LengthMax    int
	Search       []byte
	OnlySent     bool
	OnlyReceived bool
}

// MatchAll returns a Filter that lets everything through.
func MatchAll() Filter {
	return Filter{ServiceID: config.Unset, CommandID: config.Unset, LengthMax: config.Unset}
}

// FilterFromConfig builds a Filter, parsing the search byte list.
func FilterFromConfig(cfg config.FilterConfig) (Filter, error) {
	search, err := ParseByteList(cfg.SearchBytes)
	if err != nil {
		return Filter{}, err
	}
	return Filter{
		ServiceID:    cfg.Service,
		CommandID:    cfg.Command,
		LengthMax:    cfg.LengthMax,
		Search:       search,
		OnlySent:     cfg.OnlySent,
		OnlyReceived: cfg.OnlyReceived,
	}, nil
}

// Match reports whether r should be shown.
func (f Filter) Match(r Result) bool {
	if !r.OK() {
		return true
	}
	fr := r.Frame
	switch {
	case f.ServiceID != config.Unset && int(fr.ServiceID) != f.ServiceID:
		return false
	case f.CommandID != config.Unset && int(fr.CommandID) != f.CommandID:
		return false
	case f.Search != nil && !protocol.Contains(fr.Raw, f.Search):
		return false
	case f.OnlySent && r.Direction != classify.Sent:
		return false
	case f.OnlyReceived && r.Direction != classify.Received:
		return false
	case f.LengthMax != config.Unset && int(fr.LengthField) > f.LengthMax:
		return false
	}
	return true
}

// ParseByteList parses a list of decimal byte values such as "[90, 0, 12]"
// or "90 0 12". An empty string yields nil, meaning no search.
func ParseByteList(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "[")
	s = strings.TrimSuffix(s, "]")
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == ' ' || r == '\t'
	})
	if len(fields) == 0 {
		return nil, nil
	}

	out := make([]byte, 0, len(fields))
	for _, field := range fields {
		v, err := strconv.Atoi(field)
		if err != nil || v < 0 || v > 0xFF {
			return nil, fmt.Errorf("invalid byte %q in search list: must be a decimal between 0 and 255", field)
		}
		out = append(out, byte(v))
	}
	return out, nil
}
