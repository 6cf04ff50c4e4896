package push

import (
	"context"
	"errors"
	"io"
	"sync"

	"appleville.bot/internal/botlog"
	"appleville.bot/internal/catalog"
	"appleville.bot/internal/config"
	"appleville.bot/internal/engine"
)

// Driver fans a list of accounts out to one worker goroutine each. Workers
// are fully isolated: separate API client, logger, executor, and booster
// blacklist, sharing only the config, the catalogs, and the journal.
type Driver struct {
	Cfg     *config.Config
	Cat     *catalog.Catalogs
	Journal *botlog.Journal

	// Out overrides the console destination, stdout when nil.
	Out io.Writer

	// NewAPI builds the per-account client.
	NewAPI func(acct config.Account) engine.API
}

func (d *Driver) logger(name string) *botlog.Logger {
	var opts []botlog.Option
	if d.Journal != nil {
		opts = append(opts, botlog.WithJournal(d.Journal))
	}
	if d.Out != nil {
		opts = append(opts, botlog.WithOutput(d.Out))
	}
	return botlog.New(name, opts...)
}

// PushAll runs the prestige loop for every account until the context is
// cancelled. A worker that dies takes only its own account down.
func (d *Driver) PushAll(ctx context.Context, accounts []config.Account) {
	var wg sync.WaitGroup
	for _, a := range accounts {
		wg.Add(1)
		go func(a config.Account) {
			defer wg.Done()
			log := d.logger(a.Name)
			log.Printf("push worker starting (run %s)", log.RunID())
			o := NewOrchestrator(d.NewAPI(a), d.Cat, d.Cfg, log)
			if err := o.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("push worker stopped: %v", err)
			}
		}(a)
	}
	wg.Wait()
}

// FarmAll runs the fixed seed/booster farm loop for every account until the
// context is cancelled.
func (d *Driver) FarmAll(ctx context.Context, accounts []config.Account, seedKey, boosterKey string) {
	var wg sync.WaitGroup
	for _, a := range accounts {
		wg.Add(1)
		go func(a config.Account) {
			defer wg.Done()
			d.farmWorker(ctx, a, seedKey, boosterKey)
		}(a)
	}
	wg.Wait()
}

func (d *Driver) farmWorker(ctx context.Context, a config.Account, seedKey, boosterKey string) {
	log := d.logger(a.Name)
	ex := engine.New(d.NewAPI(a), d.Cat, d.Cfg, log)
	log.Printf("farm worker starting: seed=%s booster=%s (run %s)", seedKey, boosterKey, log.RunID())

	for cycle := 1; ; cycle++ {
		if ctx.Err() != nil {
			return
		}
		log.Printf("--- cycle %d ---", cycle)
		res, err := ex.RunFarmCycle(ctx, seedKey, boosterKey, true)
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			log.Printf("cycle %d failed: %v", cycle, err)
		} else if res.Reason != "" {
			log.Printf("cycle %d: skipped (%s)", cycle, res.Reason)
		} else {
			log.Printf("cycle %d: planted=%d boosted=%d plots+%d harvested=%d",
				cycle, res.Planted, res.Applied, res.BoughtPlots, res.Harvested)
		}
		if err := ex.Clock().Sleep(ctx, d.Cfg.LoopRest()); err != nil {
			return
		}
	}
}
