// Command bot farms Appleville accounts. "farm" loops a fixed seed/booster
// combo, "push" runs the expand/rush/prestige loop, "state" prints one
// snapshot per account and exits.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"

	"appleville.bot/internal/botlog"
	"appleville.bot/internal/catalog"
	"appleville.bot/internal/config"
	"appleville.bot/internal/engine"
	"appleville.bot/internal/push"
	"appleville.bot/internal/trpc"
)

func main() {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "warning: .env: %v\n", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "bot: %v\n", err)
		os.Exit(1)
	}
}

func newApp() *cli.Command {
	commonFlags := []cli.Flag{
		&cli.StringFlag{Name: "config", Usage: "bot.yaml path (empty = built-in defaults)"},
		&cli.StringFlag{Name: "accounts", Value: "accounts.json", Usage: "accounts file"},
		&cli.StringFlag{Name: "catalogs", Usage: "directory with seeds.json / boosters.json / plot_prices.json overrides"},
		&cli.StringFlag{Name: "events-dir", Usage: "write compressed event journal files here"},
		&cli.StringFlag{Name: "banner", Usage: "banner file printed at startup"},
	}

	return &cli.Command{
		Name:  "bot",
		Usage: "appleville farm bot",
		Commands: []*cli.Command{
			{
				Name:  "farm",
				Usage: "loop plant cycles with a fixed seed and booster",
				Flags: append([]cli.Flag{
					&cli.StringFlag{Name: "seed", Value: "wheat", Usage: "seed key to plant"},
					&cli.StringFlag{Name: "booster", Value: catalog.SkipBooster, Usage: "booster key, or \"skip\""},
				}, commonFlags...),
				Action: runFarm,
			},
			{
				Name:   "push",
				Usage:  "run the expand / AP rush / prestige loop",
				Flags:  commonFlags,
				Action: runPush,
			},
			{
				Name:   "state",
				Usage:  "print one state snapshot per account",
				Flags:  commonFlags,
				Action: runState,
			},
		},
	}
}

// env holds everything a subcommand needs after flag parsing.
type env struct {
	cfg      config.Config
	cat      *catalog.Catalogs
	accounts []config.Account
	journal  *botlog.Journal
}

func setup(cmd *cli.Command) (*env, error) {
	printBanner(cmd.String("banner"))

	cfg, err := config.Load(cmd.String("config"))
	if err != nil {
		return nil, err
	}
	cat, err := catalog.Load(cmd.String("catalogs"))
	if err != nil {
		return nil, err
	}
	accounts, err := config.LoadAccounts(cmd.String("accounts"))
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg, cat: cat, accounts: accounts}
	if dir := cmd.String("events-dir"); dir != "" {
		e.journal = botlog.NewJournal(dir)
	}
	return e, nil
}

func (e *env) close() {
	if e.journal != nil {
		_ = e.journal.Close()
	}
}

func (e *env) newAPI(a config.Account) engine.API {
	return trpc.New(a.Cookie,
		trpc.WithBaseURL(e.cfg.BaseURL),
		trpc.WithAuthToken(a.AuthToken),
	)
}

func (e *env) driver() *push.Driver {
	return &push.Driver{
		Cfg:     &e.cfg,
		Cat:     e.cat,
		Journal: e.journal,
		NewAPI:  e.newAPI,
	}
}

func runFarm(ctx context.Context, cmd *cli.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	seed := cmd.String("seed")
	if _, ok := e.cat.Seeds[seed]; !ok {
		return fmt.Errorf("unknown seed %q", seed)
	}
	booster := cmd.String("booster")
	if _, ok := e.cat.Boosters[booster]; !ok && booster != catalog.SkipBooster && booster != "" {
		return fmt.Errorf("unknown booster %q", booster)
	}

	e.driver().FarmAll(ctx, e.accounts, seed, booster)
	return nil
}

func runPush(ctx context.Context, cmd *cli.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	e.driver().PushAll(ctx, e.accounts)
	return nil
}

func runState(ctx context.Context, cmd *cli.Command) error {
	e, err := setup(cmd)
	if err != nil {
		return err
	}
	defer e.close()

	var firstErr error
	for _, a := range e.accounts {
		log := botlog.New(a.Name)
		log.Printf("cookie: %s", trpc.RedactCookie(a.Cookie))
		st, err := e.newAPI(a).GetState(ctx)
		if err != nil {
			log.Printf("state: %v", err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		ex := engine.New(e.newAPI(a), e.cat, &e.cfg, log)
		s := ex.Summary(st)
		log.Printf("coins=%.0f ap=%.0f plots=%d (empty=%d ready=%d growing=%d) prestige=%d netAP=%.0f",
			s.Coins, s.AP, s.Plots, s.Empty, s.Ready, s.Growing, s.Level, s.NetAP)
		if s.FromBalance {
			log.Printf("netAP approximated from AP balance (no net field in snapshot)")
		}
	}
	return firstErr
}

func printBanner(path string) {
	if path == "" {
		return
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "warning: banner: %v\n", err)
		return
	}
	fmt.Print(string(raw))
}
