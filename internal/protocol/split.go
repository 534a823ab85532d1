package protocol

import "iter"

// Cut is one length-delimited slice of a hex line.
type Cut struct {
	// Offset is the hex character offset of Hex within the line.
	Offset int
	Hex    string
	// Divided is sticky for the rest of the line once a frame turned out to
	// be shorter than the data it was cut from.
	Divided bool
	// Duplicate marks a cut equal to the previous non-duplicate cut.
	Duplicate bool
}

// Cuts walks hexLine frame by frame using the length byte of each frame.
// Nothing is validated beyond what is needed to read the length byte: if
// that byte cannot be decoded the rest of the line becomes one cut and the
// walk stops. A tail shorter than MinSplitHexChars is dropped.
func Cuts(hexLine string) iter.Seq[Cut] {
	return func(yield func(Cut) bool) {
		var (
			last    string
			emitted bool
			divided bool
		)
		offset := 0
		remaining := hexLine
		for len(remaining) >= MinSplitHexChars {
			n := len(remaining)
			if head, err := Decode(remaining[:MinSplitHexChars]); err == nil {
				n = TotalBytes(head[LengthOffset]) * 2
			}
			if n < len(remaining) {
				divided = true
			} else {
				n = len(remaining)
			}

			c := Cut{Offset: offset, Hex: remaining[:n], Divided: divided}
			c.Duplicate = emitted && c.Hex == last
			if !c.Duplicate {
				last, emitted = c.Hex, true
			}
			if !yield(c) {
				return
			}

			offset += n
			remaining = remaining[n:]
		}
	}
}

// Split yields the frame substrings of hexLine together with the divided
// flag, skipping a frame that repeats the one emitted right before it.
// Dedup state lives only for the duration of one call.
func Split(hexLine string) iter.Seq2[string, bool] {
	return func(yield func(string, bool) bool) {
		for c := range Cuts(hexLine) {
			if c.Duplicate {
				continue
			}
			if !yield(c.Hex, c.Divided) {
				return
			}
		}
	}
}
