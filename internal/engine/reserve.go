package engine

import (
	"math"

	"appleville.bot/internal/catalog"
	"appleville.bot/internal/config"
	"appleville.bot/internal/game"
)

// ReserveProfile is the effective reserve policy for one cycle of one phase.
// Recomputed per cycle; never persisted.
type ReserveProfile struct {
	EnforceSeeds    bool
	EnforcePlots    bool
	EnforceBoosters bool
	MinCoins        float64
	MinAP           float64

	// SeedKey is the phase's reference seed, the one the dynamic seed
	// reserve was derived from.
	SeedKey string
}

// SeedReserve is the dynamic floor: enough currency to replant every current
// plot with seedKey next cycle, with a small safety margin.
func (e *Executor) SeedReserve(st *game.AccountState, seedKey string) (coins, ap float64) {
	seed := e.cat.Seed(seedKey)
	need := math.Ceil(seed.Price * float64(len(st.Plots)) * e.cfg.Push.SeedReserve.Multiplier)
	if seed.Currency == catalog.AP {
		return 0, need
	}
	return need, 0
}

// ReserveForPhase combines the configured floors for a push phase with the
// dynamic seed reserve so an expansion never leaves the account unable to
// replant all plots.
func (e *Executor) ReserveForPhase(phase string, st *game.AccountState, goal catalog.Currency) ReserveProfile {
	var out ReserveProfile
	p := &e.cfg.Push
	switch p.ReserveMode {
	case config.ReserveAdaptive:
		a := p.Adaptive
		plots := float64(len(st.Plots))
		out = ReserveProfile{
			EnforcePlots:    true,
			EnforceBoosters: true,
			MinCoins:        math.Min(a.MaxCoins, a.BaseCoins+plots*a.PerPlotCoins),
			MinAP:           math.Min(a.MaxAp, a.BaseAp+plots*a.PerPlotAp),
		}
	default:
		r := p.Reserves[phase]
		out = ReserveProfile{
			EnforceSeeds:    r.EnforceSeeds,
			EnforcePlots:    r.EnforcePlots,
			EnforceBoosters: r.EnforceBoosters,
			MinCoins:        r.MinCoinsReserve,
			MinAP:           r.MinApReserve,
		}
	}

	out.SeedKey = e.PickSeed(goal, e.summarize(st).Level, nil)
	if p.SeedReserve.Enabled {
		dynCoins, dynAP := e.SeedReserve(st, out.SeedKey)
		out.MinCoins = math.Max(out.MinCoins, dynCoins)
		out.MinAP = math.Max(out.MinAP, dynAP)
	}

	e.log.Printf("[reserve] %s/%s goal=%s: coins=%.0f, ap=%.0f",
		p.ReserveMode, phase, goal, out.MinCoins, out.MinAP)
	return out
}
