// Package governor enforces a dual rolling-window quota over remote calls:
// at most maxPerSecond calls per one-second window and maxPerMinute calls
// per minute epoch. Callers reserve admissions before issuing calls; when a
// quota is exhausted the reservation suspends until the window boundary.
package governor

import (
	"context"
	"time"
)

type Governor struct {
	maxPerSecond int
	maxPerMinute int

	usedSecond  int
	usedMinute  int
	secondStart time.Time
	minuteStart time.Time

	// injected in tests
	now   func() time.Time
	sleep func(ctx context.Context, d time.Duration) error
}

func New(maxPerSecond, maxPerMinute int) *Governor {
	if maxPerSecond < 1 {
		maxPerSecond = 1
	}
	if maxPerMinute < 1 {
		maxPerMinute = 1
	}

	return &Governor{
		maxPerSecond: maxPerSecond,
		maxPerMinute: maxPerMinute,
		now:          time.Now,
		sleep:        sleepCtx,
	}
}

// Reserve admits up to want calls, blocking until at least one admission is
// available. It returns the number of calls granted; the caller must issue
// exactly that many remote calls. Reserve is not safe for concurrent use;
// the indexer reserves once per batch and fans out afterwards.
func (g *Governor) Reserve(ctx context.Context, want int) (int, error) {
	if want < 1 {
		return 0, nil
	}

	for {
		now := g.now()

		if g.secondStart.IsZero() {
			g.secondStart = now
			g.minuteStart = now
		}

		// Expired windows restart at the reservation that finds them
		// expired, not on the old boundary grid; after an idle gap the
		// new epoch starts fresh from now.
		if elapsed := now.Sub(g.secondStart); elapsed >= time.Second {
			g.usedSecond = 0
			g.secondStart = now
		}
		if elapsed := now.Sub(g.minuteStart); elapsed >= time.Minute {
			g.usedMinute = 0
			g.minuteStart = now
		}

		if g.usedSecond >= g.maxPerSecond {
			if err := g.sleep(ctx, time.Second-now.Sub(g.secondStart)); err != nil {
				return 0, err
			}
			continue
		}
		if g.usedMinute >= g.maxPerMinute {
			if err := g.sleep(ctx, time.Minute-now.Sub(g.minuteStart)); err != nil {
				return 0, err
			}
			continue
		}

		granted := min(want, g.maxPerSecond-g.usedSecond, g.maxPerMinute-g.usedMinute)
		g.usedSecond += granted
		g.usedMinute += granted

		return granted, nil
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
