package engine

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"appleville.bot/internal/botlog"
	"appleville.bot/internal/catalog"
	"appleville.bot/internal/game"
)

func TestWaitForHarvestUntilDeadline(t *testing.T) {
	cfg := testConfig(t)
	cfg.IdleTickMs = 1000

	clkProbe := newFakeClock()
	deadline := clkProbe.Now().Add(5 * time.Second)
	st := &game.AccountState{Plots: []game.Plot{growingPlot(1, deadline)}}
	api := &fakeAPI{states: []*game.AccountState{st}}
	ex, clk := testExecutor(t, api, cfg)

	total, err := ex.waitForHarvest(context.Background(), "wheat", "")
	if err != nil {
		t.Fatalf("waitForHarvest: %v", err)
	}
	if total != 5*time.Second {
		t.Fatalf("total wait = %v, want 5s", total)
	}
	if clk.Now().Before(deadline) {
		t.Fatalf("returned before the deadline: now=%v deadline=%v", clk.Now(), deadline)
	}
}

func TestWaitForHarvestRefreshShortensDeadline(t *testing.T) {
	cfg := testConfig(t)
	cfg.IdleTickMs = 1000
	cfg.RefreshStateMs = 1000

	clkProbe := newFakeClock()
	first := &game.AccountState{Plots: []game.Plot{growingPlot(1, clkProbe.Now().Add(time.Hour))}}
	// The refresh reveals the server finishing much earlier.
	second := &game.AccountState{Plots: []game.Plot{growingPlot(1, clkProbe.Now().Add(2*time.Second))}}
	api := &fakeAPI{states: []*game.AccountState{first, second}}
	ex, clk := testExecutor(t, api, cfg)

	if _, err := ex.waitForHarvest(context.Background(), "wheat", ""); err != nil {
		t.Fatalf("waitForHarvest: %v", err)
	}
	if waited := clk.Now().Sub(clkProbe.Now()); waited > 10*time.Second {
		t.Fatalf("waited %v, refresh did not shorten the deadline", waited)
	}
}

func TestWaitForHarvestEstimateFallback(t *testing.T) {
	cfg := testConfig(t)
	cfg.IdleTickMs = 1000

	// No planted slot carries an end time: the catalog estimate (wheat, 5s)
	// is the deadline.
	st := &game.AccountState{Plots: []game.Plot{{SlotIndex: 1}}}
	api := &fakeAPI{states: []*game.AccountState{st}}
	ex, _ := testExecutor(t, api, cfg)

	total, err := ex.waitForHarvest(context.Background(), "wheat", "")
	if err != nil {
		t.Fatalf("waitForHarvest: %v", err)
	}
	if total != 5*time.Second {
		t.Fatalf("fallback wait = %v, want the 5s wheat estimate", total)
	}
}

func TestWaitForHarvestCountdownCadence(t *testing.T) {
	cfg := testConfig(t)
	cfg.IdleTickMs = 1000
	cfg.TickMs = 3000

	clk := newFakeClock()
	deadline := clk.Now().Add(5 * time.Second)
	st := &game.AccountState{Plots: []game.Plot{growingPlot(1, deadline)}}
	api := &fakeAPI{states: []*game.AccountState{st}}

	var buf bytes.Buffer
	ex := New(api, catalog.Defaults(), cfg, botlog.New("test", botlog.WithOutput(&buf)), WithClock(clk))

	if _, err := ex.waitForHarvest(context.Background(), "wheat", ""); err != nil {
		t.Fatalf("waitForHarvest: %v", err)
	}
	// Wakes every second; only the 3s mark crosses the tick_ms cadence.
	if got := strings.Count(buf.String(), "left"); got != 1 {
		t.Fatalf("countdown lines = %d, want 1 over a 5s wait at a 3s cadence", got)
	}
}

func TestWaitForHarvestCancellation(t *testing.T) {
	cfg := testConfig(t)
	st := &game.AccountState{Plots: []game.Plot{growingPlot(1, newFakeClock().Now().Add(time.Hour))}}
	api := &fakeAPI{states: []*game.AccountState{st}}
	ex, _ := testExecutor(t, api, cfg)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := ex.waitForHarvest(ctx, "wheat", ""); err == nil {
		t.Fatalf("cancelled wait returned nil")
	}
}

func TestFmtDur(t *testing.T) {
	cases := map[time.Duration]string{
		6 * time.Second:                           "6s",
		4*time.Minute + 5*time.Second:             "4m05s",
		time.Hour + 2*time.Minute + 3*time.Second: "1h02m03s",
		-time.Second:                              "0s",
	}
	for in, want := range cases {
		if got := fmtDur(in); got != want {
			t.Fatalf("fmtDur(%v) = %q, want %q", in, got, want)
		}
	}
}
