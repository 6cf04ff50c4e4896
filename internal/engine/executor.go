package engine

import (
	"context"
	"fmt"
	"time"

	"appleville.bot/internal/botlog"
	"appleville.bot/internal/catalog"
	"appleville.bot/internal/config"
	"appleville.bot/internal/game"
)

// Soft-skip reasons carried in CycleResult.Reason.
const (
	SkipNoEmptySlot      = "no empty slot"
	SkipInsufficientSeed = "insufficient for seeds"
)

// CycleResult reports what one plant cycle actually did.
type CycleResult struct {
	Planted     int
	Applied     int
	BoughtPlots int
	Harvested   int
	Reason      string // non-empty on a soft-skip
	ETA         time.Duration

	// What the cycle chose to plant and boost. Cycles with fixed inputs echo
	// them back; goal-driven cycles record the pick.
	SeedKey    string
	BoosterKey string
}

// Executor runs plant cycles for a single account. It owns the account-scoped
// booster blacklist; the blacklist is deliberately not shared across accounts
// so one account's prestige level never gates another's purchases.
type Executor struct {
	api   API
	cat   *catalog.Catalogs
	cfg   *config.Config
	log   *botlog.Logger
	clock Clock

	// Booster keys the server rejected as level-gated, plus the configured
	// static blacklist. Never retried for the remainder of this run.
	blocked map[string]bool
}

type Option func(*Executor)

func WithClock(c Clock) Option { return func(e *Executor) { e.clock = c } }

func New(api API, cat *catalog.Catalogs, cfg *config.Config, log *botlog.Logger, opts ...Option) *Executor {
	e := &Executor{
		api:     api,
		cat:     cat,
		cfg:     cfg,
		log:     log,
		clock:   SystemClock,
		blocked: make(map[string]bool),
	}
	for _, k := range cfg.Push.BoosterBlacklist {
		e.blocked[k] = true
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

func (e *Executor) Clock() Clock { return e.clock }

// BlockBooster marks a booster key as level-gated for the rest of this run.
func (e *Executor) BlockBooster(key string) { e.blocked[key] = true }

func (e *Executor) BoosterBlocked(key string) bool { return e.blocked[key] }

func (e *Executor) cooldown(ctx context.Context) error {
	return e.clock.Sleep(ctx, e.cfg.CoolDown())
}

// HarvestDue harvests every ready slot in one batched call. A nil snapshot is
// fetched first. An empty ready set is a successful no-op.
func (e *Executor) HarvestDue(ctx context.Context, st *game.AccountState) (int, error) {
	if st == nil {
		var err error
		st, err = e.api.GetState(ctx)
		if err != nil {
			return 0, fmt.Errorf("harvest: %w", err)
		}
	}
	due := game.ReadySlots(st, e.clock.Now())
	if len(due) == 0 {
		e.log.Printf("no ready plots to harvest")
		return 0, nil
	}
	if err := e.api.HarvestMany(ctx, due); err != nil {
		return 0, fmt.Errorf("harvest: %w", err)
	}
	e.log.Printf("harvested %d slot(s): %v", len(due), due)
	e.log.Event("harvest", map[string]any{"slots": due})
	return len(due), nil
}

func (e *Executor) summarize(st *game.AccountState) game.Summary {
	return game.Summarize(st, e.clock.Now(), e.cfg.Push.UseApBalanceAsPrestigeProgress)
}

// Summary exposes the executor's view of a snapshot: its clock, its AP
// fallback setting.
func (e *Executor) Summary(st *game.AccountState) game.Summary { return e.summarize(st) }

func (e *Executor) logBalance(s game.Summary) {
	reserve := ""
	if e.cfg.ShowReserveInBalance {
		reserve = fmt.Sprintf(" | reserve: coins>=%.0f, ap>=%.0f", e.cfg.MinCoinsReserve, e.cfg.MinApReserve)
	}
	e.log.Printf("balance: coins=%.0f, ap=%.0f%s | plots=%d (empty=%d, ready=%d, growing=%d)",
		s.Coins, s.AP, reserve, s.Plots, s.Empty, s.Ready, s.Growing)
}
