package engine

import (
	"math"

	"appleville.bot/internal/catalog"
)

// PlotGuard is the result of the buy-plot affordability check: the must-have
// balance per currency and the numbers it was derived from, kept for the log
// line so an operator can audit the decision.
type PlotGuard struct {
	Allow bool
	Found bool // the price table has an entry for the next plot

	PlotIndex  int
	PriceCoins float64
	PriceAP    float64

	ReplantCoins float64
	ReplantAP    float64
	BufferCoins  float64

	MustCoins float64
	MustAP    float64
}

// GuardBuyPlot decides whether buying the next plot is safe: the account must
// afford the plot in its own currency plus the full cost of replanting every
// post-purchase plot with plantSeedKey, plus a coin-side purchase buffer. The
// reserve floor of the currency the plot does not cost is ignored for this
// check; the other floor still applies as a lower bound.
func (e *Executor) GuardBuyPlot(coins, ap float64, plotsNow int, plantSeedKey string, resv ReserveProfile) PlotGuard {
	price, idx, found := e.cat.NextPlotCost(plotsNow)
	g := PlotGuard{
		Found:      found,
		PlotIndex:  idx,
		PriceCoins: price.Coins,
		PriceAP:    price.AP,
	}
	if !found {
		return g
	}

	plotIsCoins := price.Coins > 0 && price.AP == 0
	plotIsAP := price.AP > 0 && price.Coins == 0

	seed := e.cat.Seed(plantSeedKey)
	plotsAfter := float64(plotsNow + 1)
	if seed.Currency == catalog.AP {
		g.ReplantAP = seed.Price * plotsAfter
	} else {
		g.ReplantCoins = seed.Price * plotsAfter
	}

	if e.cfg.PlotBuyMinCost.Auto {
		g.BufferCoins = math.Max(coinSeedUnit(seed), math.Ceil((price.Coins+g.ReplantCoins)*0.10))
	} else {
		g.BufferCoins = math.Max(0, e.cfg.PlotBuyMinCost.Value)
	}

	coinsReserve := resv.MinCoins
	if plotIsAP {
		coinsReserve = 0
	}
	apReserve := resv.MinAP
	if plotIsCoins {
		apReserve = 0
	}

	needCoins := g.ReplantCoins
	if plotIsCoins {
		needCoins += price.Coins + g.BufferCoins
	}
	needAP := g.ReplantAP
	if plotIsAP {
		needAP += price.AP
	}

	g.MustCoins = math.Max(coinsReserve, needCoins)
	g.MustAP = math.Max(apReserve, needAP)
	g.Allow = coins >= g.MustCoins && ap >= g.MustAP
	return g
}

func coinSeedUnit(seed catalog.SeedDef) float64 {
	if seed.Currency == catalog.AP {
		return 0
	}
	return seed.Price
}
