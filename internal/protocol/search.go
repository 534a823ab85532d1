package protocol

import "bytes"

// Contains reports whether needle occurs as a contiguous run in haystack.
// An empty needle always matches.
func Contains(haystack, needle []byte) bool {
	return bytes.Contains(haystack, needle)
}
