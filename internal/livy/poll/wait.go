package poll

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is returned when a schedule with a MaxDuration runs out before
// the probe reports completion.
var ErrTimeout = errors.New("polling schedule exhausted")

// Probe checks remote state once. It returns done=true when the awaited state
// has been observed.
type Probe func(ctx context.Context) (done bool, err error)

// Wait calls probe until it reports done, sleeping between attempts according
// to the schedule. Probe errors are returned unchanged.
func Wait(ctx context.Context, s Schedule, probe Probe) error {
	done, err := probe(ctx)
	if err != nil || done {
		return err
	}

	for interval := range s.Intervals() {
		timer := time.NewTimer(interval)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("polling canceled: %w", ctx.Err())
		case <-timer.C:
		}

		done, err = probe(ctx)
		if err != nil || done {
			return err
		}
	}

	return ErrTimeout
}
