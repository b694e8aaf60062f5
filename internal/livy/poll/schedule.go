package poll

import (
	"errors"
	"iter"
	"time"
)

// Schedule describes a bounded-then-steady polling backoff
type Schedule struct {
	Seed        []time.Duration // Intervals yielded once, in order
	Fallback    time.Duration   // Interval yielded forever after Seed is exhausted
	MaxDuration time.Duration   // Cumulative ceiling (0 = no ceiling)
}

// Default returns the schedule used for session and statement waits
func Default() Schedule {
	return Schedule{
		Seed: []time.Duration{
			100 * time.Millisecond,
			200 * time.Millisecond,
			300 * time.Millisecond,
			500 * time.Millisecond,
		},
		Fallback: 1 * time.Second,
	}
}

// WithMaxDuration returns a copy of s with the cumulative ceiling set
func (s Schedule) WithMaxDuration(d time.Duration) Schedule {
	s.MaxDuration = d
	return s
}

// Intervals returns the wait sequence. Every call starts from the beginning.
// With a MaxDuration the sequence ends before the interval that would push the
// running total past it; without one it never ends.
func (s Schedule) Intervals() iter.Seq[time.Duration] {
	return func(yield func(time.Duration) bool) {
		var cumulative time.Duration
		emit := func(d time.Duration) bool {
			cumulative += d
			if s.MaxDuration > 0 && cumulative > s.MaxDuration {
				return false
			}
			return yield(d)
		}

		for _, d := range s.Seed {
			if !emit(d) {
				return
			}
		}
		for {
			if !emit(s.Fallback) {
				return
			}
		}
	}
}

// Validate checks that the schedule can make progress
func (s Schedule) Validate() error {
	for _, d := range s.Seed {
		if d < 0 {
			return errors.New("seed intervals must be non-negative")
		}
	}
	if s.Fallback <= 0 {
		return errors.New("fallback interval must be positive")
	}
	if s.MaxDuration < 0 {
		return errors.New("max duration must be non-negative")
	}
	return nil
}
