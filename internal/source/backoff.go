package source

import (
	"math"
	"math/rand"
	"time"
)

// CalculateBackoff computes the delay before the next reconnection attempt
// using exponential backoff with jitter.
func CalculateBackoff(attempt int) time.Duration {
	base := float64(BackoffBaseMs) * math.Pow(float64(BackoffMultiplier), float64(attempt))
	delay := math.Min(base, float64(BackoffMaxMs))
	jitter := delay * (BackoffJitterMin + rand.Float64()*(BackoffJitterMax-BackoffJitterMin))
	return time.Duration(delay+jitter) * time.Millisecond
}
