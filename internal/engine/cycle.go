package engine

import (
	"context"
	"fmt"

	"appleville.bot/internal/catalog"
	"appleville.bot/internal/game"
	"appleville.bot/internal/trpc"
)

// FarmCycle is the unrestricted plant cycle: harvest, refresh, auto-expand
// plots, buy seeds, plant, boost. Expected conditions (no empty slots, thin
// balance) soft-skip with a reason; remote failures not explainable that way
// abort the cycle.
func (e *Executor) FarmCycle(ctx context.Context, seedKey, boosterKey string) (*CycleResult, error) {
	res := &CycleResult{SeedKey: seedKey, BoosterKey: boosterKey}

	st, err := e.api.GetState(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := e.HarvestDue(ctx, st); err != nil {
		return nil, err
	}
	if err := e.cooldown(ctx); err != nil {
		return nil, err
	}

	st, err = e.api.GetState(ctx)
	if err != nil {
		return nil, err
	}
	s := e.summarize(st)
	e.logBalance(s)

	coins, plots := s.Coins, s.Plots

	if e.cfg.AutoExpandPlots {
		toTry := e.cfg.MaxAutoBuyPlots
		if target := e.cfg.TargetPlotCount; target > 0 {
			need := target - plots
			if need < toTry {
				toTry = need
			}
		}
		for i := 0; i < toTry; i++ {
			if e.cfg.EnforceReserveOnPlots && coins <= e.cfg.MinCoinsReserve {
				e.log.Printf("auto-buy plot skipped: coins <= reserve")
				break
			}
			if err := e.api.BuyPlot(ctx); err != nil {
				if trpc.IsInsufficient(err) {
					hint := trpc.CurrencyHint(err.Error())
					if hint == "" {
						hint = "coins?"
					}
					e.log.Printf("auto-buy plot skipped: insufficient balance (%s)", hint)
				} else {
					e.log.Printf("auto-buy plot failed: %v", err)
				}
				break
			}
			res.BoughtPlots++
			e.log.Printf("auto-bought plot #%d (this cycle)", res.BoughtPlots)
			e.log.Event("buy_plot", map[string]any{"plots_before": plots})
			if err := e.cooldown(ctx); err != nil {
				return res, err
			}

			// The price table is keyed by current plot count, so the next
			// attempt needs the post-purchase state.
			stX, err := e.api.GetState(ctx)
			if err != nil {
				break
			}
			sX := e.summarize(stX)
			coins, plots = sX.Coins, sX.Plots
		}
	}

	st, err = e.api.GetState(ctx)
	if err != nil {
		return res, err
	}
	planted, reason, err := e.plantEmpties(ctx, st, seedKey, seedReserveRule{
		enforce:  e.cfg.EnforceReserveOnSeeds,
		minCoins: e.cfg.MinCoinsReserve,
		minAP:    e.cfg.MinApReserve,
	})
	if err != nil {
		return res, err
	}
	res.Planted = len(planted)
	res.Reason = reason
	if reason != "" {
		return res, nil
	}

	if err := e.boostFarm(ctx, boosterKey, planted, res); err != nil {
		return res, err
	}
	return res, nil
}

// RunFarmCycle runs one farm cycle and, when waitUntilHarvest is set, waits
// out the grow time and harvests again.
func (e *Executor) RunFarmCycle(ctx context.Context, seedKey, boosterKey string, waitUntilHarvest bool) (*CycleResult, error) {
	res, err := e.FarmCycle(ctx, seedKey, boosterKey)
	if err != nil || !waitUntilHarvest {
		return res, err
	}
	eta, err := e.waitForHarvest(ctx, seedKey, boosterKey)
	if err != nil {
		return res, err
	}
	res.ETA = eta
	n, err := e.HarvestDue(ctx, nil)
	if err != nil {
		return res, err
	}
	res.Harvested = n
	return res, nil
}

type seedReserveRule struct {
	enforce  bool
	minCoins float64
	minAP    float64
}

// plantEmpties buys seeds for as many empty slots as the budget allows and
// plants them onto the first empty slots in ascending order. Returns the
// planted slot indexes, or a soft-skip reason.
func (e *Executor) plantEmpties(ctx context.Context, st *game.AccountState, seedKey string, rule seedReserveRule) ([]int, string, error) {
	empties := game.EmptySlots(st)
	if len(empties) == 0 {
		e.log.Printf("no empty slot, nothing to plant")
		return nil, SkipNoEmptySlot, nil
	}

	want := len(empties)
	seed := e.cat.Seed(seedKey)
	coins, ap := st.Coins, st.APBalance()

	canBuy := game.AffordableQty(seed.Price, seed.Currency, coins, ap, want)
	if rule.enforce {
		canBuy = game.AffordableQtyReserve(seed.Price, seed.Currency, coins, ap, want, rule.minCoins, rule.minAP)
	}
	if canBuy <= 0 {
		e.log.Printf("skip seeds: cannot afford a single %s (need %.0f %s)", seedKey, seed.Price, seed.Currency)
		return nil, SkipInsufficientSeed, nil
	}
	if canBuy < want {
		e.log.Printf("adjust seeds: want=%d -> buy=%d", want, canBuy)
	}

	targets := empties[:canBuy]
	if err := e.api.BuySeeds(ctx, seedKey, len(targets)); err != nil {
		return nil, "", fmt.Errorf("buy seeds: %w", err)
	}
	e.log.Printf("bought seeds: %s x%d", seedKey, len(targets))
	if err := e.cooldown(ctx); err != nil {
		return nil, "", err
	}

	plantings := make([]game.Planting, len(targets))
	for i, idx := range targets {
		plantings[i] = game.Planting{SlotIndex: idx, SeedKey: seedKey}
	}
	if err := e.api.PlantMany(ctx, plantings); err != nil {
		return nil, "", fmt.Errorf("plant: %w", err)
	}
	e.log.Printf("planted %d slot(s): %v", len(targets), targets)
	e.log.Event("plant", map[string]any{"seed": seedKey, "slots": targets})
	if err := e.cooldown(ctx); err != nil {
		return nil, "", err
	}
	return targets, "", nil
}

// boostFarm applies the farm variant's booster policy to the just-planted
// slots.
func (e *Executor) boostFarm(ctx context.Context, boosterKey string, planted []int, res *CycleResult) error {
	if boosterKey == "" || boosterKey == catalog.SkipBooster || len(planted) == 0 {
		return nil
	}
	if e.blocked[boosterKey] {
		e.log.Printf("booster %q is blocked for this run, skipping", boosterKey)
		return nil
	}

	st, err := e.api.GetState(ctx)
	if err != nil {
		return err
	}
	needBoost := game.SlotsNeedingBooster(st, planted)
	if len(needBoost) == 0 {
		e.log.Printf("all planted slots already have an active booster")
		return nil
	}

	coins, ap := st.Coins, st.APBalance()
	buyCount := len(needBoost)
	if b, ok := e.cat.Booster(boosterKey); ok && b.Price > 0 {
		if e.cfg.EnforceReserveOnBoosters {
			buyCount = game.AffordableQtyReserve(b.Price, b.Currency, coins, ap, buyCount, e.cfg.MinCoinsReserve, e.cfg.MinApReserve)
		} else {
			buyCount = game.AffordableQty(b.Price, b.Currency, coins, ap, buyCount)
		}
		if buyCount <= 0 {
			e.log.Printf("skip booster: balance too low or reserved")
			return nil
		}
	} else if e.cfg.EnforceReserveOnBoosters {
		// No price metadata: at minimum honor the reserve guard.
		if coins <= e.cfg.MinCoinsReserve || ap <= e.cfg.MinApReserve {
			e.log.Printf("skip booster: balance at reserve")
			return nil
		}
	}

	return e.buyAndApply(ctx, boosterKey, needBoost[:buyCount], res)
}

// buyAndApply purchases exactly one booster unit per target slot and applies
// them. Purchase failures soft-skip (blacklisting level-gated keys); an apply
// failure after a successful purchase is reported and not retried; the spent
// currency is sunk, the next cycle re-detects the unboosted slots.
func (e *Executor) buyAndApply(ctx context.Context, boosterKey string, slots []int, res *CycleResult) error {
	if len(slots) == 0 {
		return nil
	}
	if err := e.api.BuyModifier(ctx, boosterKey, len(slots)); err != nil {
		switch {
		case trpc.IsLevelGated(err):
			e.BlockBooster(boosterKey)
			e.log.Printf("booster %q is prestige-locked, skipping (cached for this run)", boosterKey)
		case trpc.IsInsufficient(err):
			e.log.Printf("skip booster: insufficient balance")
		default:
			e.log.Printf("buy booster failed: %v", err)
		}
		return nil
	}
	if err := e.cooldown(ctx); err != nil {
		return err
	}

	apps := make([]game.ModifierApplication, len(slots))
	for i, idx := range slots {
		apps[i] = game.ModifierApplication{SlotIndex: idx, ModifierKey: boosterKey}
	}
	if err := e.api.ApplyModifier(ctx, apps); err != nil {
		if trpc.IsLevelGated(err) {
			e.BlockBooster(boosterKey)
			e.log.Printf("booster %q is prestige-locked, skipping (cached for this run)", boosterKey)
		} else {
			e.log.Printf("apply booster failed after purchase of %d unit(s): %v", len(slots), err)
		}
		return nil
	}
	res.Applied = len(apps)
	e.log.Printf("booster applied to %d slot(s): %v", len(apps), slots)
	e.log.Event("boost", map[string]any{"booster": boosterKey, "slots": slots})
	return e.cooldown(ctx)
}
