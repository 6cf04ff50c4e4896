package engine

import (
	"testing"

	"appleville.bot/internal/catalog"
	"appleville.bot/internal/config"
	"appleville.bot/internal/game"
)

func TestSeedReserveScalesWithPlots(t *testing.T) {
	cfg := testConfig(t)
	ex, _ := testExecutor(t, &fakeAPI{states: []*game.AccountState{{}}}, cfg)

	st := &game.AccountState{Plots: []game.Plot{{SlotIndex: 1}, {SlotIndex: 2}, {SlotIndex: 3}}}
	// wheat: 2 coins * 3 plots * 1.05 = 6.3, ceil = 7.
	coins, ap := ex.SeedReserve(st, "wheat")
	if coins != 7 || ap != 0 {
		t.Fatalf("wheat reserve = %v/%v, want 7 coins", coins, ap)
	}
	// golden-apple: 10 AP * 3 * 1.05 = 31.5, ceil = 32, on the AP side.
	coins, ap = ex.SeedReserve(st, "golden-apple")
	if coins != 0 || ap != 32 {
		t.Fatalf("golden-apple reserve = %v/%v, want 32 ap", coins, ap)
	}
}

func TestReserveForPhaseProfiles(t *testing.T) {
	cfg := testConfig(t)
	ex, _ := testExecutor(t, &fakeAPI{states: []*game.AccountState{{}}}, cfg)

	st := &game.AccountState{Plots: []game.Plot{{SlotIndex: 1}, {SlotIndex: 2}, {SlotIndex: 3}}}
	r := ex.ReserveForPhase("rush", st, catalog.Coins)

	// Configured rush floors: 1000 coins / 100 AP. The dynamic wheat reserve
	// (7) is below both, so the configured floors stand.
	if r.MinCoins != 1000 || r.MinAP != 100 {
		t.Fatalf("rush floors = %v/%v, want 1000/100", r.MinCoins, r.MinAP)
	}
	if !r.EnforcePlots || !r.EnforceBoosters || r.EnforceSeeds {
		t.Fatalf("rush enforcement = %+v, want plots+boosters only", r)
	}
	if r.SeedKey != "wheat" {
		t.Fatalf("rush reference seed = %q, want wheat", r.SeedKey)
	}
}

func TestReserveForPhaseDynamicFloorWins(t *testing.T) {
	cfg := testConfig(t)
	ex, _ := testExecutor(t, &fakeAPI{states: []*game.AccountState{{}}}, cfg)

	// The expand profile has zero floors; with 3 plots the dynamic wheat
	// reserve (7 coins) becomes the floor.
	st := &game.AccountState{Plots: []game.Plot{{SlotIndex: 1}, {SlotIndex: 2}, {SlotIndex: 3}}}
	r := ex.ReserveForPhase("expand", st, catalog.Coins)
	if r.MinCoins != 7 {
		t.Fatalf("expand MinCoins = %v, want dynamic 7", r.MinCoins)
	}
}

func TestReserveForPhaseUnknownPhaseIsZero(t *testing.T) {
	cfg := testConfig(t)
	cfg.Push.SeedReserve.Enabled = false
	ex, _ := testExecutor(t, &fakeAPI{states: []*game.AccountState{{}}}, cfg)

	r := ex.ReserveForPhase("no-such-phase", &game.AccountState{}, catalog.Coins)
	if r.MinCoins != 0 || r.MinAP != 0 || r.EnforceSeeds || r.EnforcePlots || r.EnforceBoosters {
		t.Fatalf("unknown phase profile = %+v, want zero value", r)
	}
}

func TestReserveForPhaseAdaptive(t *testing.T) {
	cfg := testConfig(t)
	cfg.Push.ReserveMode = config.ReserveAdaptive
	cfg.Push.SeedReserve.Enabled = false
	ex, _ := testExecutor(t, &fakeAPI{states: []*game.AccountState{{}}}, cfg)

	// Defaults: 80 coins + 5 AP per plot, capped at 2000/150.
	st := &game.AccountState{Plots: make([]game.Plot, 10)}
	for i := range st.Plots {
		st.Plots[i].SlotIndex = i + 1
	}
	r := ex.ReserveForPhase("rush", st, catalog.AP)
	if r.MinCoins != 800 || r.MinAP != 50 {
		t.Fatalf("adaptive floors = %v/%v, want 800/50", r.MinCoins, r.MinAP)
	}
	if !r.EnforcePlots || !r.EnforceBoosters {
		t.Fatalf("adaptive mode must enforce plots and boosters: %+v", r)
	}

	// Past the cap.
	st = &game.AccountState{Plots: make([]game.Plot, 100)}
	r = ex.ReserveForPhase("rush", st, catalog.AP)
	if r.MinCoins != 2000 || r.MinAP != 150 {
		t.Fatalf("adaptive caps = %v/%v, want 2000/150", r.MinCoins, r.MinAP)
	}
}
