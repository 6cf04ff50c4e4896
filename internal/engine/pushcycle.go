package engine

import (
	"context"

	"appleville.bot/internal/catalog"
	"appleville.bot/internal/game"
)

// PushCycle is the goal-driven plant cycle used by the prestige loop: it
// never buys plots (the orchestrator owns expansion), picks seed and booster
// from the priority lists for the goal currency, and applies the phase's
// reserve profile to every purchase.
func (e *Executor) PushCycle(ctx context.Context, goal catalog.Currency, resv ReserveProfile) (*CycleResult, error) {
	res := &CycleResult{}

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

	seedKey := e.PickSeed(goal, s.Level, &Budget{Coins: s.Coins, AP: s.AP})
	res.SeedKey = seedKey

	planted, reason, err := e.plantEmpties(ctx, st, seedKey, seedReserveRule{
		enforce:  resv.EnforceSeeds,
		minCoins: resv.MinCoins,
		minAP:    resv.MinAP,
	})
	if err != nil {
		return res, err
	}
	res.Planted = len(planted)
	res.Reason = reason
	if reason != "" {
		return res, nil
	}

	if err := e.boostPush(ctx, goal, planted, resv, res); err != nil {
		return res, err
	}
	return res, nil
}

// RunPushCycle runs one push cycle and optionally waits out the grow time and
// harvests the result.
func (e *Executor) RunPushCycle(ctx context.Context, goal catalog.Currency, resv ReserveProfile, waitUntilHarvest bool) (*CycleResult, error) {
	res, err := e.PushCycle(ctx, goal, resv)
	if err != nil || !waitUntilHarvest {
		return res, err
	}
	eta, err := e.waitForHarvest(ctx, res.SeedKey, res.BoosterKey)
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

// boostPush applies the push variant's booster policy: priority-list pick,
// fresh-state prestige precheck, and an AP floor that keeps prestige progress
// from being drained into boosters.
func (e *Executor) boostPush(ctx context.Context, goal catalog.Currency, planted []int, resv ReserveProfile, res *CycleResult) error {
	if len(planted) == 0 {
		return nil
	}

	st, err := e.api.GetState(ctx)
	if err != nil {
		return err
	}
	s := e.summarize(st)

	key := e.PickBooster(goal, s.Level)
	if key == catalog.SkipBooster {
		e.log.Printf("booster: skip (priority list)")
		return nil
	}

	needBoost := game.SlotsNeedingBooster(st, planted)
	if len(needBoost) == 0 {
		e.log.Printf("all planted slots already have an active booster")
		return nil
	}

	buyCount := len(needBoost)
	if b, ok := e.cat.Boosters[key]; ok {
		// The pick already filtered on level, but the fresh snapshot may
		// disagree with the one the pick saw (e.g. right after a reset).
		if b.MinPrestige > s.Level {
			e.BlockBooster(key)
			e.log.Printf("booster %q needs prestige %d, have %d (cached for this run)", key, b.MinPrestige, s.Level)
			return nil
		}
		if b.Price > 0 {
			minCoins, minAP := 0.0, 0.0
			if resv.EnforceBoosters {
				minCoins, minAP = resv.MinCoins, resv.MinAP
			}
			if b.Currency == catalog.AP {
				if floor := float64(e.cfg.Push.BoosterApReserve); floor > minAP {
					minAP = floor
				}
			}
			buyCount = game.AffordableQtyReserve(b.Price, b.Currency, st.Coins, st.APBalance(), buyCount, minCoins, minAP)
			if buyCount <= 0 {
				e.log.Printf("skip booster %q: balance at or below reserve", key)
				return nil
			}
		}
	}

	res.BoosterKey = key
	return e.buyAndApply(ctx, key, needBoost[:buyCount], res)
}
