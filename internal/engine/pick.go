package engine

import (
	"math"

	"appleville.bot/internal/catalog"
)

// Budget is a point-in-time balance pair used for affordability-aware picks.
type Budget struct {
	Coins float64
	AP    float64
}

// fallbackSeed keeps selection deterministic when the priority lists yield
// nothing usable at all.
const fallbackSeed = "wheat"

// PickSeed chooses the seed to plant for a goal currency at a prestige level.
// The configured priority list is filtered to unlocked entries; with a budget
// the first affordable goal-currency entry wins, then the cheapest
// goal-currency entry, then the first unlocked entry of any currency.
func (e *Executor) PickSeed(goal catalog.Currency, level int, budget *Budget) string {
	list := e.cfg.Push.CoinSeedsPriority
	if goal == catalog.AP {
		list = e.cfg.Push.ApSeedsPriority
	}

	var unlocked []string
	for _, k := range list {
		if s, ok := e.cat.Seeds[k]; ok && s.MinPrestige <= level {
			unlocked = append(unlocked, k)
		}
	}
	if len(unlocked) == 0 {
		return fallbackSeed
	}
	if budget == nil {
		return unlocked[0]
	}

	bal := budget.Coins
	if goal == catalog.AP {
		bal = budget.AP
	}
	for _, k := range unlocked {
		s := e.cat.Seeds[k]
		if s.Currency == goal && bal >= s.Price {
			return k
		}
	}

	cheapest, best := "", math.Inf(1)
	for _, k := range unlocked {
		s := e.cat.Seeds[k]
		if s.Currency == goal && s.Price < best {
			best = s.Price
			cheapest = k
		}
	}
	if cheapest != "" {
		return cheapest
	}
	return unlocked[0]
}

// PickBooster chooses the booster for a goal currency, skipping blacklisted
// keys (configured or level-gated earlier in this run) and entries above the
// account's prestige level. Returns SkipBooster when nothing qualifies.
func (e *Executor) PickBooster(goal catalog.Currency, level int) string {
	list := e.cfg.Push.CoinBoosterPriority
	if goal == catalog.AP {
		list = e.cfg.Push.ApBoosterPriority
	}
	for _, k := range list {
		if k == catalog.SkipBooster {
			return catalog.SkipBooster
		}
		if e.blocked[k] {
			continue
		}
		if b, ok := e.cat.Boosters[k]; ok && b.MinPrestige <= level {
			return k
		}
	}
	return catalog.SkipBooster
}
