package source

const (
	// MaxLineBytes bounds a single log line; hex dumps can be long.
	MaxLineBytes = 1024 * 1024

	BackoffBaseMs      = 1_000
	BackoffMultiplier  = 2
	BackoffMaxMs       = 30_000
	BackoffMaxAttempts = 15
	BackoffJitterMin   = 0.1
	BackoffJitterMax   = 0.2

	DefaultBaudRate = 115200
)
