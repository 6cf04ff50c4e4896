package engine

import (
	"context"
	"fmt"
	"time"

	"appleville.bot/internal/game"
)

// waitForHarvest sleeps until the earliest planted slot matures, re-fetching
// state periodically so the deadline tracks server time rather than the local
// clock. Returns the total wait it set out to cover.
func (e *Executor) waitForHarvest(ctx context.Context, seedKey, boosterKey string) (time.Duration, error) {
	st, err := e.api.GetState(ctx)
	if err != nil {
		return 0, fmt.Errorf("wait: %w", err)
	}

	now := e.clock.Now()
	deadline, ok := game.NextHarvest(st)
	if !ok {
		// No end time in the snapshot; fall back to the catalog estimate.
		est := time.Duration(e.cat.EstimateGrow(seedKey, boosterKey)) * time.Second
		deadline = now.Add(est)
	}
	total := deadline.Sub(now)
	if total < 0 {
		total = 0
	}
	e.log.Printf("%s: %s", e.cfg.CountdownLabel, fmtDur(total))

	tick := e.cfg.IdleTick()
	if tick < time.Second {
		tick = time.Second
	}
	logEvery := e.cfg.Tick()
	refreshEvery := e.cfg.RefreshState()
	lastRefresh := now
	lastLog := now

	for {
		now = e.clock.Now()
		remain := deadline.Sub(now)
		if remain <= 0 {
			return total, nil
		}

		if refreshEvery > 0 && now.Sub(lastRefresh) >= refreshEvery {
			lastRefresh = now
			// A failed refresh is not fatal; the old deadline still stands.
			if st2, err := e.api.GetState(ctx); err == nil {
				if d2, ok := game.NextHarvest(st2); ok {
					deadline = d2
				}
			} else if ctx.Err() != nil {
				return total, ctx.Err()
			}
		}

		if now.Sub(lastLog) >= logEvery {
			e.log.Printf("%s: %s left", e.cfg.CountdownLabel, fmtDur(remain))
			lastLog = now
		}
		step := tick
		if remain < step {
			step = remain
		}
		if err := e.clock.Sleep(ctx, step); err != nil {
			return total, err
		}
	}
}

// fmtDur renders a countdown duration as 1h02m03s / 4m05s / 6s.
func fmtDur(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := int(d.Hours())
	m := int(d.Minutes()) % 60
	s := int(d.Seconds()) % 60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh%02dm%02ds", h, m, s)
	case m > 0:
		return fmt.Sprintf("%dm%02ds", m, s)
	default:
		return fmt.Sprintf("%ds", s)
	}
}
