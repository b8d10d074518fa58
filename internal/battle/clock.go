package battle

import (
	"context"
	"time"
)

// Clock separates spectator pacing from battle logic so tests run without
// wall-clock waits.
type Clock interface {
	Sleep(ctx context.Context, d time.Duration) error
}

type RealClock struct{}

func (RealClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// InstantClock never waits; used in tests.
type InstantClock struct{}

func (InstantClock) Sleep(ctx context.Context, d time.Duration) error {
	return ctx.Err()
}
