// Package engine implements the autonomous play loop: one full plant cycle
// (harvest, expand, buy, plant, boost, wait) in both the unrestricted farm
// variant and the reserve-driven push variant, plus the pure policy pieces
// they share (seed/booster selection, reserve profiles, the buy-plot guard).
package engine

import (
	"context"
	"time"

	"appleville.bot/internal/game"
)

// API is the remote state client contract the engine consumes. All calls are
// issued strictly sequentially within one account's task. Implementations
// must report failures as classifiable errors (see the trpc package) so the
// engine can tell "insufficient balance" and "level-gated" apart from hard
// failures.
type API interface {
	GetState(ctx context.Context) (*game.AccountState, error)
	HarvestMany(ctx context.Context, slotIndexes []int) error
	PlantMany(ctx context.Context, plantings []game.Planting) error
	BuySeeds(ctx context.Context, seedKey string, quantity int) error
	BuyModifier(ctx context.Context, modifierKey string, quantity int) error
	ApplyModifier(ctx context.Context, applications []game.ModifierApplication) error
	BuyPlot(ctx context.Context) error
	ClaimBasePlot(ctx context.Context) error
	Prestige(ctx context.Context) error
}

// Clock abstracts time so waits are cancellable and deterministic in tests.
type Clock interface {
	Now() time.Time
	Sleep(ctx context.Context, d time.Duration) error
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

func (systemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// SystemClock is the real-time Clock.
var SystemClock Clock = systemClock{}
