package engine

import (
	"context"
	"io"
	"testing"
	"time"

	"appleville.bot/internal/botlog"
	"appleville.bot/internal/catalog"
	"appleville.bot/internal/config"
	"appleville.bot/internal/game"
	"appleville.bot/internal/trpc"
)

// fakeClock advances instantly on Sleep so waits are deterministic.
type fakeClock struct{ now time.Time }

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) Sleep(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if d > 0 {
		c.now = c.now.Add(d)
	}
	return nil
}

type apiCall struct {
	Op  string
	Key string
	N   int
}

// fakeAPI serves states from a queue (the last one repeats) and records every
// mutation.
type fakeAPI struct {
	states []*game.AccountState
	idx    int
	calls  []apiCall

	harvestErr error
	seedsErr   error
	modErr     error
	applyErr   error
	plotErr    error
	claimErr   error
	resetErr   error
}

func (f *fakeAPI) record(op, key string, n int) {
	f.calls = append(f.calls, apiCall{Op: op, Key: key, N: n})
}

func (f *fakeAPI) count(op string) int {
	n := 0
	for _, c := range f.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

func (f *fakeAPI) GetState(context.Context) (*game.AccountState, error) {
	st := f.states[f.idx]
	if f.idx < len(f.states)-1 {
		f.idx++
	}
	return st, nil
}

func (f *fakeAPI) HarvestMany(_ context.Context, slots []int) error {
	f.record("harvest", "", len(slots))
	return f.harvestErr
}

func (f *fakeAPI) PlantMany(_ context.Context, plantings []game.Planting) error {
	key := ""
	if len(plantings) > 0 {
		key = plantings[0].SeedKey
	}
	f.record("plant", key, len(plantings))
	return nil
}

func (f *fakeAPI) BuySeeds(_ context.Context, seedKey string, quantity int) error {
	f.record("buySeeds", seedKey, quantity)
	return f.seedsErr
}

func (f *fakeAPI) BuyModifier(_ context.Context, modifierKey string, quantity int) error {
	f.record("buyModifier", modifierKey, quantity)
	return f.modErr
}

func (f *fakeAPI) ApplyModifier(_ context.Context, apps []game.ModifierApplication) error {
	key := ""
	if len(apps) > 0 {
		key = apps[0].ModifierKey
	}
	f.record("applyModifier", key, len(apps))
	return f.applyErr
}

func (f *fakeAPI) BuyPlot(context.Context) error {
	f.record("buyPlot", "", 1)
	return f.plotErr
}

func (f *fakeAPI) ClaimBasePlot(context.Context) error {
	f.record("claimBasePlot", "", 1)
	return f.claimErr
}

func (f *fakeAPI) Prestige(context.Context) error {
	f.record("prestige", "", 1)
	return f.resetErr
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.Load("")
	if err != nil {
		t.Fatalf("default config: %v", err)
	}
	cfg.CoolDownMs = 0
	cfg.LoopRestMs = 0
	cfg.AutoExpandPlots = false
	return &cfg
}

func testExecutor(t *testing.T, api *fakeAPI, cfg *config.Config) (*Executor, *fakeClock) {
	t.Helper()
	cat := catalog.Defaults()
	log := botlog.New("test", botlog.WithOutput(io.Discard))
	clk := newFakeClock()
	return New(api, cat, cfg, log, WithClock(clk)), clk
}

func callErr(reason trpc.Reason, msg string) error {
	return &trpc.CallError{Op: "test", Msg: msg, Reason: reason}
}
