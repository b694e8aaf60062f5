package config

import "time"

// Default timing configurations used by session and statement waits
const (
	// DefaultPollFallback is the steady-state interval once the seed intervals are used up
	DefaultPollFallback = 1 * time.Second

	// DefaultPollMaxDuration is the cumulative polling ceiling (0 = wait forever)
	DefaultPollMaxDuration = 0

	// DefaultRequestTimeout bounds a single HTTP round trip to the gateway
	DefaultRequestTimeout = 30 * time.Second

	// DefaultCloseTimeout bounds the best-effort session deletion on teardown
	DefaultCloseTimeout = 10 * time.Second
)

// DefaultPollSeed are the first intervals of every wait
var DefaultPollSeed = []time.Duration{
	100 * time.Millisecond,
	200 * time.Millisecond,
	300 * time.Millisecond,
	500 * time.Millisecond,
}
