package engine

import (
	"testing"

	"appleville.bot/internal/game"
)

func guardExecutor(t *testing.T) *Executor {
	ex, _ := testExecutor(t, &fakeAPI{states: []*game.AccountState{{}}}, testConfig(t))
	return ex
}

func TestGuardBuyPlotCoinsPlot(t *testing.T) {
	cfg := testConfig(t)
	cfg.PlotBuyMinCost.Auto = true
	ex, _ := testExecutor(t, &fakeAPI{states: []*game.AccountState{{}}}, cfg)

	// 2 plots owned: plot #3 costs 100 coins. Replanting 3 plots of wheat (2c)
	// costs 6; auto buffer = max(2, ceil((100+6)*0.10)) = 11. Must-have coins
	// = 100+6+11 = 117.
	g := ex.GuardBuyPlot(117, 0, 2, "wheat", ReserveProfile{})
	if !g.Found || g.PlotIndex != 3 {
		t.Fatalf("guard = %+v, want plot #3 found", g)
	}
	if g.MustCoins != 117 {
		t.Fatalf("MustCoins = %v, want 117", g.MustCoins)
	}
	if !g.Allow {
		t.Fatalf("exact must-have balance not allowed")
	}
	if g := ex.GuardBuyPlot(116, 0, 2, "wheat", ReserveProfile{}); g.Allow {
		t.Fatalf("one coin short still allowed")
	}
}

func TestGuardBuyPlotIgnoresUnusedCurrencyReserve(t *testing.T) {
	cfg := testConfig(t)
	cfg.PlotBuyMinCost.Auto = false
	cfg.PlotBuyMinCost.Value = 0
	ex, _ := testExecutor(t, &fakeAPI{states: []*game.AccountState{{}}}, cfg)

	// 4 plots owned: plot #5 costs 300 AP. Replanting 5 golden-apples (10 AP)
	// costs 50; must-have AP = 350. The coin reserve floor must NOT block an
	// AP-priced plot: zero coins is fine.
	resv := ReserveProfile{MinCoins: 5000, MinAP: 0}
	g := ex.GuardBuyPlot(0, 350, 4, "golden-apple", resv)
	if !g.Found || g.PlotIndex != 5 {
		t.Fatalf("guard = %+v, want plot #5 found", g)
	}
	if g.MustCoins != 0 {
		t.Fatalf("MustCoins = %v, want 0 (coin reserve exempt for AP plot)", g.MustCoins)
	}
	if g.MustAP != 350 {
		t.Fatalf("MustAP = %v, want 350", g.MustAP)
	}
	if !g.Allow {
		t.Fatalf("AP plot blocked by the unused coin reserve")
	}

	// Symmetric: a coins plot ignores the AP floor.
	resv = ReserveProfile{MinCoins: 0, MinAP: 5000}
	g = ex.GuardBuyPlot(112, 0, 2, "wheat", resv)
	if g.MustAP != 0 {
		t.Fatalf("MustAP = %v, want 0 (AP reserve exempt for coins plot)", g.MustAP)
	}
}

func TestGuardBuyPlotReserveStillFloorsOwnCurrency(t *testing.T) {
	cfg := testConfig(t)
	cfg.PlotBuyMinCost.Value = 0
	cfg.PlotBuyMinCost.Auto = false
	ex, _ := testExecutor(t, &fakeAPI{states: []*game.AccountState{{}}}, cfg)

	// Plot #2 costs 25 coins, replant 2 wheat = 4, need = 29, but the coin
	// reserve of 500 is higher: must-have = 500.
	resv := ReserveProfile{MinCoins: 500}
	g := ex.GuardBuyPlot(499, 0, 1, "wheat", resv)
	if g.MustCoins != 500 {
		t.Fatalf("MustCoins = %v, want the reserve floor 500", g.MustCoins)
	}
	if g.Allow {
		t.Fatalf("purchase allowed below the coin reserve")
	}
}

func TestGuardBuyPlotFixedBuffer(t *testing.T) {
	cfg := testConfig(t)
	cfg.PlotBuyMinCost.Auto = false
	cfg.PlotBuyMinCost.Value = 40
	ex, _ := testExecutor(t, &fakeAPI{states: []*game.AccountState{{}}}, cfg)

	g := ex.GuardBuyPlot(0, 0, 2, "wheat", ReserveProfile{})
	if g.BufferCoins != 40 {
		t.Fatalf("BufferCoins = %v, want fixed 40", g.BufferCoins)
	}
	if g.MustCoins != 100+6+40 {
		t.Fatalf("MustCoins = %v, want 146", g.MustCoins)
	}
}

func TestGuardBuyPlotLadderEnd(t *testing.T) {
	ex := guardExecutor(t)
	g := ex.GuardBuyPlot(1e9, 1e9, 12, "wheat", ReserveProfile{})
	if g.Found || g.Allow {
		t.Fatalf("guard past the price ladder = %+v, want not found", g)
	}
}
