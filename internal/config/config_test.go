package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load defaults: %v", err)
	}
	if cfg.Push.AutoPrestige != PrestigeInstant {
		t.Fatalf("auto_prestige = %q, want instant", cfg.Push.AutoPrestige)
	}
	if cfg.Push.TargetPlots != 12 {
		t.Fatalf("target_plots = %d, want 12", cfg.Push.TargetPlots)
	}
	if cfg.CoolDown() != 400*time.Millisecond {
		t.Fatalf("cooldown = %v, want 400ms", cfg.CoolDown())
	}
	if cfg.Push.SeedReserve.Multiplier != 1.05 {
		t.Fatalf("seed reserve multiplier = %v, want 1.05", cfg.Push.SeedReserve.Multiplier)
	}
}

func TestLoadFileOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bot.yaml")
	doc := `
min_coins_reserve: 9000
plot_buy_min_cost: auto
push:
  target_plots: 5
  auto_prestige: SAFE
  coin_seeds_priority: [" Carrot ", wheat]
`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.MinCoinsReserve != 9000 {
		t.Fatalf("min_coins_reserve = %v, want 9000", cfg.MinCoinsReserve)
	}
	if !cfg.PlotBuyMinCost.Auto {
		t.Fatalf("plot_buy_min_cost: auto not recognized")
	}
	if cfg.Push.TargetPlots != 5 {
		t.Fatalf("target_plots = %d, want 5", cfg.Push.TargetPlots)
	}
	if cfg.Push.AutoPrestige != PrestigeSafe {
		t.Fatalf("auto_prestige = %q, want safe after normalization", cfg.Push.AutoPrestige)
	}
	if got := cfg.Push.CoinSeedsPriority; len(got) != 2 || got[0] != "carrot" || got[1] != "wheat" {
		t.Fatalf("coin_seeds_priority = %v, want lowercased trimmed list", got)
	}
	// Untouched sections keep defaults.
	if cfg.Push.BoosterApReserve != 120 {
		t.Fatalf("booster_ap_reserve = %v, want default 120", cfg.Push.BoosterApReserve)
	}
}

func TestLoadRejectsBadPrestigeMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bot.yaml")
	if err := os.WriteFile(path, []byte("push:\n  auto_prestige: yolo\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatalf("unknown auto_prestige mode passed validation")
	}
}

func TestBoosterApReserveEnvOverride(t *testing.T) {
	t.Setenv("APV_MIN_AP_RESERVE_BOOST", "333")
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Push.BoosterApReserve != 333 {
		t.Fatalf("booster_ap_reserve = %v, want env override 333", cfg.Push.BoosterApReserve)
	}

	t.Setenv("APV_MIN_AP_RESERVE_BOOST", "not-a-number")
	if _, err := Load(""); err == nil {
		t.Fatalf("bad env override accepted")
	}
}

func TestPrestigeNeedForNext(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatal(err)
	}
	if got := cfg.Push.PrestigeNeedForNext(0); got != 60000 {
		t.Fatalf("need for level 1 = %v, want 60000", got)
	}
	if got := cfg.Push.PrestigeNeedForNext(6); got != 1000000 {
		t.Fatalf("need for level 7 = %v, want 1000000", got)
	}
	if got := cfg.Push.PrestigeNeedForNext(7); got != 0 {
		t.Fatalf("need past the table = %v, want 0", got)
	}
}

func TestBuyBufferNumber(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bot.yaml")
	if err := os.WriteFile(path, []byte("plot_buy_min_cost: 42\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.PlotBuyMinCost.Auto || cfg.PlotBuyMinCost.Value != 42 {
		t.Fatalf("plot_buy_min_cost = %+v, want fixed 42", cfg.PlotBuyMinCost)
	}
}

func TestNormalizeClampsIntervals(t *testing.T) {
	cfg := defaults()
	cfg.TickMs = 1
	cfg.IdleTickMs = 5
	cfg.Push.TargetPlots = 0
	cfg.Normalize()
	if cfg.TickMs < 100 || cfg.IdleTickMs < 1000 {
		t.Fatalf("intervals not clamped: tick=%d idle=%d", cfg.TickMs, cfg.IdleTickMs)
	}
	if cfg.Push.TargetPlots != 1 {
		t.Fatalf("target_plots = %d, want clamp to 1", cfg.Push.TargetPlots)
	}
}
