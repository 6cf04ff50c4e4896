// Package push runs the prestige loop: expand the farm to the target plot
// count, rush apple points, reset, repeat. One Orchestrator per account.
package push

import (
	"context"
	"fmt"
	"time"

	"appleville.bot/internal/botlog"
	"appleville.bot/internal/catalog"
	"appleville.bot/internal/config"
	"appleville.bot/internal/engine"
)

// Phase of the prestige loop.
type Phase int

const (
	PhaseStart  Phase = iota // fresh or just-reset account: claim the base plot
	PhaseExpand              // buy plots up to the target under the buy guard
	PhaseRush                // farm AP until the prestige threshold
)

func (p Phase) String() string {
	switch p {
	case PhaseStart:
		return "start"
	case PhaseExpand:
		return "expand"
	case PhaseRush:
		return "rush"
	}
	return fmt.Sprintf("phase(%d)", int(p))
}

// Event is the outcome of running one phase.
type Event int

const (
	EvBootstrapped  Event = iota // base plot confirmed
	EvTargetReached              // plot count at or above target
	EvBelowTarget                // plot count fell under target
	EvPlotsLost                  // state shows zero plots
	EvPrestiged                  // reset performed
)

func (e Event) String() string {
	switch e {
	case EvBootstrapped:
		return "bootstrapped"
	case EvTargetReached:
		return "target-reached"
	case EvBelowTarget:
		return "below-target"
	case EvPlotsLost:
		return "plots-lost"
	case EvPrestiged:
		return "prestiged"
	}
	return fmt.Sprintf("event(%d)", int(e))
}

// nextPhase is the whole transition table. Every (phase, event) pair the
// phases can emit is listed; anything else restarts from scratch.
func nextPhase(p Phase, ev Event) Phase {
	switch {
	case p == PhaseStart && ev == EvBootstrapped:
		return PhaseExpand
	case p == PhaseExpand && ev == EvTargetReached:
		return PhaseRush
	case p == PhaseRush && ev == EvBelowTarget:
		return PhaseExpand
	case p == PhaseRush && ev == EvPlotsLost:
		return PhaseStart
	case p == PhaseRush && ev == EvPrestiged:
		return PhaseStart
	}
	return PhaseStart
}

// Orchestrator drives one account through the phase machine until the context
// is cancelled.
type Orchestrator struct {
	api engine.API
	ex  *engine.Executor
	cat *catalog.Catalogs
	cfg *config.Config
	log *botlog.Logger
}

func NewOrchestrator(api engine.API, cat *catalog.Catalogs, cfg *config.Config, log *botlog.Logger, opts ...engine.Option) *Orchestrator {
	return &Orchestrator{
		api: api,
		ex:  engine.New(api, cat, cfg, log, opts...),
		cat: cat,
		cfg: cfg,
		log: log,
	}
}

// Run loops the phase machine. It returns only on context cancellation or an
// unrecoverable error (state never obtainable, bootstrap exhausted).
func (o *Orchestrator) Run(ctx context.Context) error {
	phase := PhaseStart
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		o.log.Printf("[push] phase: %s", phase)
		var (
			ev  Event
			err error
		)
		switch phase {
		case PhaseStart:
			ev, err = o.start(ctx)
		case PhaseExpand:
			ev, err = o.expand(ctx)
		default:
			ev, err = o.rush(ctx)
		}
		if err != nil {
			return err
		}
		phase = nextPhase(phase, ev)
	}
}

// start checks whether a reset is already due (instant mode only), then makes
// sure the account owns its base plot.
func (o *Orchestrator) start(ctx context.Context) (Event, error) {
	st, err := o.api.GetState(ctx)
	if err != nil {
		return 0, fmt.Errorf("start: %w", err)
	}
	s := o.ex.Summary(st)

	if o.cfg.Push.AutoPrestige == config.PrestigeInstant {
		need := o.cfg.Push.PrestigeNeedForNext(s.Level)
		if need > 0 && s.NetAP >= need {
			o.log.Printf("[push] already at threshold (net AP %.0f >= %.0f), resetting first", s.NetAP, need)
			if o.prestige(ctx) {
				// fall through to bootstrap the post-reset account
			}
		}
	}

	if err := o.bootstrap(ctx); err != nil {
		return 0, err
	}
	return EvBootstrapped, nil
}

const bootstrapTries = 8

// bootstrap claims the base plot until state shows at least one plot.
func (o *Orchestrator) bootstrap(ctx context.Context) error {
	for i := 0; i < bootstrapTries; i++ {
		st, err := o.api.GetState(ctx)
		if err != nil {
			return fmt.Errorf("bootstrap: %w", err)
		}
		if len(st.Plots) > 0 {
			if i > 0 {
				o.log.Printf("[push] base plot confirmed (%d plot(s))", len(st.Plots))
			}
			return nil
		}
		o.log.Printf("[push] no plots yet, claiming base plot (try %d/%d)", i+1, bootstrapTries)
		if err := o.api.ClaimBasePlot(ctx); err != nil {
			o.log.Printf("[push] claim base plot: %v", err)
		}
		if err := o.ex.Clock().Sleep(ctx, 500*time.Millisecond); err != nil {
			return err
		}
	}
	return fmt.Errorf("bootstrap: no plots after %d claim attempts", bootstrapTries)
}

// expand buys plots one at a time under the buy guard, farming the deficient
// currency between attempts, until the target plot count is reached.
func (o *Orchestrator) expand(ctx context.Context) (Event, error) {
	target := o.cfg.Push.TargetPlots
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		st, err := o.api.GetState(ctx)
		if err != nil {
			return 0, fmt.Errorf("expand: %w", err)
		}
		s := o.ex.Summary(st)
		if s.Plots >= target {
			o.log.Printf("[expand] target reached: %d/%d plots", s.Plots, target)
			return EvTargetReached, nil
		}
		if s.Plots == 0 {
			if err := o.bootstrap(ctx); err != nil {
				return 0, err
			}
			continue
		}

		resv := o.ex.ReserveForPhase("expand", st, catalog.Coins)

		// Replant cost is estimated with the seed we would actually plant
		// after the purchase; an AP-priced plot means we would be farming AP.
		plantSeed := resv.SeedKey
		if price, _, found := o.cat.NextPlotCost(s.Plots); found && price.AP > 0 {
			plantSeed = o.ex.PickSeed(catalog.AP, s.Level, &engine.Budget{Coins: s.Coins, AP: s.AP})
		}

		g := o.ex.GuardBuyPlot(s.Coins, s.AP, s.Plots, plantSeed, resv)
		if !g.Found {
			o.log.Printf("[expand] no price entry for plot #%d, treating %d plots as the ceiling", s.Plots+1, s.Plots)
			return EvTargetReached, nil
		}
		o.log.Printf("[expand] plot #%d: price coins=%.0f ap=%.0f, replant(%s) coins=%.0f ap=%.0f, buffer=%.0f",
			g.PlotIndex, g.PriceCoins, g.PriceAP, plantSeed, g.ReplantCoins, g.ReplantAP, g.BufferCoins)
		o.log.Printf("[expand] must-have coins=%.0f ap=%.0f, have coins=%.0f ap=%.0f -> allow=%v",
			g.MustCoins, g.MustAP, s.Coins, s.AP, g.Allow)

		goal := catalog.Coins
		if s.Coins >= g.MustCoins && s.AP < g.MustAP {
			goal = catalog.AP
		}

		if !g.Allow {
			if _, err := o.ex.RunPushCycle(ctx, goal, resv, true); err != nil {
				return 0, err
			}
			if err := o.rest(ctx); err != nil {
				return 0, err
			}
			continue
		}

		if err := o.api.BuyPlot(ctx); err != nil {
			// The guard can be stale against the server; farm coins back
			// before the always-run cycle, then retry on the next pass.
			o.log.Printf("[expand] buy plot failed: %v", err)
			if _, err := o.ex.RunPushCycle(ctx, catalog.Coins, resv, true); err != nil {
				return 0, err
			}
		} else {
			o.log.Printf("[expand] bought plot #%d", g.PlotIndex)
		}

		if _, err := o.ex.RunPushCycle(ctx, goal, resv, true); err != nil {
			return 0, err
		}
		if err := o.rest(ctx); err != nil {
			return 0, err
		}
	}
}

// rush farms AP at full plot count until net AP crosses the next prestige
// threshold, then acts per the auto_prestige mode.
func (o *Orchestrator) rush(ctx context.Context) (Event, error) {
	target := o.cfg.Push.TargetPlots
	for {
		if err := ctx.Err(); err != nil {
			return 0, err
		}
		st, err := o.api.GetState(ctx)
		if err != nil {
			return 0, fmt.Errorf("rush: %w", err)
		}
		s := o.ex.Summary(st)
		if s.Plots == 0 {
			return EvPlotsLost, nil
		}
		if s.Plots < target {
			o.log.Printf("[rush] plots fell to %d/%d, expanding again", s.Plots, target)
			return EvBelowTarget, nil
		}

		need := o.cfg.Push.PrestigeNeedForNext(s.Level)
		if need > 0 {
			o.log.Printf("[rush] prestige %d -> %d: %.0f/%.0f AP (%.1f%%)",
				s.Level, s.Level+1, s.NetAP, need, 100*s.NetAP/need)
		} else {
			o.log.Printf("[rush] prestige table has no level past %d, farming AP", s.Level)
		}

		resv := o.ex.ReserveForPhase("rush", st, catalog.AP)
		if _, err := o.ex.RunPushCycle(ctx, catalog.AP, resv, true); err != nil {
			return 0, err
		}

		// Re-check against fresh state: the cycle's harvest moves net AP.
		st, err = o.api.GetState(ctx)
		if err != nil {
			return 0, fmt.Errorf("rush: %w", err)
		}
		s = o.ex.Summary(st)
		if need > 0 && s.NetAP >= need {
			switch o.cfg.Push.AutoPrestige {
			case config.PrestigeInstant:
				if o.prestige(ctx) {
					return EvPrestiged, nil
				}
			case config.PrestigeSafe:
				o.log.Printf("[rush] threshold met (%.0f/%.0f AP), auto_prestige=safe, holding", s.NetAP, need)
			}
		}

		if err := o.rest(ctx); err != nil {
			return 0, err
		}
	}
}

// prestige performs the reset. Failure is soft: the threshold stays met, so
// the next pass tries again.
func (o *Orchestrator) prestige(ctx context.Context) bool {
	if err := o.api.Prestige(ctx); err != nil {
		o.log.Printf("[push] prestige failed: %v", err)
		return false
	}
	o.log.Printf("[push] prestige reset done")
	o.log.Event("prestige", nil)
	// Give the server a beat before re-reading the wiped state.
	if err := o.ex.Clock().Sleep(ctx, time.Second); err != nil {
		return false
	}
	return true
}

func (o *Orchestrator) rest(ctx context.Context) error {
	return o.ex.Clock().Sleep(ctx, o.cfg.LoopRest())
}
