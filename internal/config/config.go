// Package config loads the bot configuration (bot.yaml) and the accounts
// file. Missing config paths fall back to built-in defaults so the bot runs
// with nothing but an accounts file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AutoPrestige modes.
const (
	PrestigeInstant = "instant" // reset as soon as the threshold is met
	PrestigeSafe    = "safe"    // log readiness, never act
	PrestigeOff     = "off"     // never auto-trigger
)

// Reserve modes.
const (
	ReserveProfiles = "profiles"
	ReserveAdaptive = "adaptive"
)

type Config struct {
	BaseURL string `yaml:"base_url"`

	// TickMs is the minimum interval between countdown log lines while
	// waiting out a grow; IdleTickMs is the sleep granularity of that wait.
	TickMs         int `yaml:"tick_ms"`
	RefreshStateMs int `yaml:"refresh_state_ms"`
	CoolDownMs     int `yaml:"cooldown_ms"`
	LoopRestMs     int `yaml:"loop_rest_ms"`
	IdleTickMs     int `yaml:"idle_tick_ms"`

	AutoExpandPlots bool `yaml:"auto_expand_plots"`
	TargetPlotCount int  `yaml:"target_plot_count"`
	MaxAutoBuyPlots int  `yaml:"max_auto_buy_plots"`

	MinCoinsReserve float64 `yaml:"min_coins_reserve"`
	MinApReserve    float64 `yaml:"min_ap_reserve"`

	EnforceReserveOnSeeds    bool `yaml:"enforce_reserve_on_seeds"`
	EnforceReserveOnPlots    bool `yaml:"enforce_reserve_on_plots"`
	EnforceReserveOnBoosters bool `yaml:"enforce_reserve_on_boosters"`

	// Coin buffer that must remain on top of plot+replant cost before a plot
	// purchase; "auto" derives it from the purchase size.
	PlotBuyMinCost BuyBuffer `yaml:"plot_buy_min_cost"`

	ShowReserveInBalance bool   `yaml:"show_reserve_in_balance"`
	CountdownLabel       string `yaml:"countdown_label"`

	Push PushConfig `yaml:"push"`
}

type PushConfig struct {
	TargetPlots  int    `yaml:"target_plots"`
	AutoPrestige string `yaml:"auto_prestige"`

	MinCoinsReserve          float64 `yaml:"min_coins_reserve"`
	MinApReserve             float64 `yaml:"min_ap_reserve"`
	EnforceReserveOnSeeds    bool    `yaml:"enforce_reserve_on_seeds"`
	EnforceReserveOnPlots    bool    `yaml:"enforce_reserve_on_plots"`
	EnforceReserveOnBoosters bool    `yaml:"enforce_reserve_on_boosters"`

	// When the snapshot carries no net-AP-since-reset field, use the AP
	// balance as prestige progress. Approximation: overstates progress if AP
	// was spent since the reset.
	UseApBalanceAsPrestigeProgress bool `yaml:"use_ap_balance_as_prestige_progress"`

	CoinSeedsPriority   []string `yaml:"coin_seeds_priority"`
	ApSeedsPriority     []string `yaml:"ap_seeds_priority"`
	CoinBoosterPriority []string `yaml:"coin_booster_priority"`
	ApBoosterPriority   []string `yaml:"ap_booster_priority"`
	BoosterBlacklist    []string `yaml:"booster_blacklist"`

	// AP threshold to reach each level, keyed by the target level.
	PrestigeReq map[int]float64 `yaml:"prestige_req"`

	SeedReserve SeedReserve `yaml:"seed_reserve"`

	ReserveMode string                    `yaml:"reserve_mode"`
	Reserves    map[string]ReserveProfile `yaml:"reserves"`
	Adaptive    AdaptiveReserve           `yaml:"adaptive"`

	// Minimum AP kept aside when buying AP-priced boosters during push.
	BoosterApReserve float64 `yaml:"booster_ap_reserve"`
}

type ReserveProfile struct {
	MinCoinsReserve float64 `yaml:"min_coins_reserve"`
	MinApReserve    float64 `yaml:"min_ap_reserve"`
	EnforceSeeds    bool    `yaml:"enforce_seeds"`
	EnforcePlots    bool    `yaml:"enforce_plots"`
	EnforceBoosters bool    `yaml:"enforce_boosters"`
}

type AdaptiveReserve struct {
	BaseCoins    float64 `yaml:"base_coins"`
	BaseAp       float64 `yaml:"base_ap"`
	PerPlotCoins float64 `yaml:"per_plot_coins"`
	PerPlotAp    float64 `yaml:"per_plot_ap"`
	MaxCoins     float64 `yaml:"max_coins"`
	MaxAp        float64 `yaml:"max_ap"`
}

type SeedReserve struct {
	Enabled    bool    `yaml:"enabled"`
	Multiplier float64 `yaml:"multiplier"`
}

// BuyBuffer is either a fixed coin amount or "auto".
type BuyBuffer struct {
	Auto  bool
	Value float64
}

func (b *BuyBuffer) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err == nil {
		if strings.EqualFold(strings.TrimSpace(s), "auto") {
			*b = BuyBuffer{Auto: true}
			return nil
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("plot_buy_min_cost: %q is neither a number nor \"auto\"", s)
		}
		*b = BuyBuffer{Value: v}
		return nil
	}
	var v float64
	if err := node.Decode(&v); err != nil {
		return fmt.Errorf("plot_buy_min_cost: %w", err)
	}
	*b = BuyBuffer{Value: v}
	return nil
}

func (b BuyBuffer) MarshalYAML() (any, error) {
	if b.Auto {
		return "auto", nil
	}
	return b.Value, nil
}

func defaults() Config {
	return Config{
		BaseURL: "https://app.appleville.xyz/api/trpc",

		TickMs:         1000,
		RefreshStateMs: 30000,
		CoolDownMs:     400,
		LoopRestMs:     1500,
		IdleTickMs:     10000,

		AutoExpandPlots: true,
		TargetPlotCount: 12,
		MaxAutoBuyPlots: 3,

		MinCoinsReserve: 2000,
		MinApReserve:    50,

		EnforceReserveOnSeeds:    false,
		EnforceReserveOnPlots:    true,
		EnforceReserveOnBoosters: true,

		PlotBuyMinCost: BuyBuffer{Value: 10},
		CountdownLabel: "Wait For Harvest",

		Push: PushConfig{
			TargetPlots:  12,
			AutoPrestige: PrestigeInstant,

			MinCoinsReserve:          500,
			MinApReserve:             50,
			EnforceReserveOnSeeds:    false,
			EnforceReserveOnPlots:    true,
			EnforceReserveOnBoosters: true,

			UseApBalanceAsPrestigeProgress: true,

			CoinSeedsPriority:   []string{"wheat", "lettuce", "carrot", "tomato", "onion", "strawberry", "pumpkin"},
			ApSeedsPriority:     []string{"ascendant-apple", "golden-apple", "crystal-apple", "diamond-apple", "royal-apple"},
			CoinBoosterPriority: []string{"deadly-mix", "silver-tonic", "super-fertiliser", "skip"},
			ApBoosterPriority:   []string{"deadly-mix", "quantum-fertilizer", "golden-tonic", "skip"},
			BoosterBlacklist:    []string{"deadly-mix"},

			PrestigeReq: map[int]float64{
				1: 60000, 2: 150000, 3: 300000,
				4: 500000, 5: 750000, 6: 900000, 7: 1000000,
			},

			SeedReserve: SeedReserve{Enabled: true, Multiplier: 1.05},

			ReserveMode: ReserveProfiles,
			Reserves: map[string]ReserveProfile{
				"expand": {EnforcePlots: true, EnforceBoosters: true},
				"rush": {
					MinCoinsReserve: 1000,
					MinApReserve:    100,
					EnforcePlots:    true,
					EnforceBoosters: true,
				},
			},
			Adaptive: AdaptiveReserve{
				PerPlotCoins: 80, PerPlotAp: 5,
				MaxCoins: 2000, MaxAp: 150,
			},

			BoosterApReserve: 120,
		},
	}
}

// Load reads path over the defaults. An empty path returns the defaults.
// The APV_MIN_AP_RESERVE_BOOST environment variable overrides the push
// booster AP reserve after the file is applied.
func Load(path string) (Config, error) {
	cfg := defaults()
	if strings.TrimSpace(path) != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("bot.yaml: %w", err)
		}
	}
	if v := strings.TrimSpace(os.Getenv("APV_MIN_AP_RESERVE_BOOST")); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return cfg, fmt.Errorf("APV_MIN_AP_RESERVE_BOOST: %w", err)
		}
		cfg.Push.BoosterApReserve = f
	}
	cfg.Normalize()
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("bot.yaml: %w", err)
	}
	return cfg, nil
}

func (c *Config) Normalize() {
	c.BaseURL = strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	clampIntMin(&c.TickMs, 100)
	clampIntMin(&c.RefreshStateMs, 1000)
	clampIntMin(&c.CoolDownMs, 0)
	clampIntMin(&c.LoopRestMs, 0)
	clampIntMin(&c.IdleTickMs, 1000)
	clampIntMin(&c.TargetPlotCount, 0)
	clampIntMin(&c.MaxAutoBuyPlots, 0)
	clampFloatMin(&c.MinCoinsReserve, 0)
	clampFloatMin(&c.MinApReserve, 0)
	if c.CountdownLabel == "" {
		c.CountdownLabel = "Wait For Harvest"
	}

	p := &c.Push
	if p.TargetPlots < 1 {
		p.TargetPlots = 1
	}
	p.AutoPrestige = strings.ToLower(strings.TrimSpace(p.AutoPrestige))
	if p.AutoPrestige == "" {
		p.AutoPrestige = PrestigeInstant
	}
	p.ReserveMode = strings.ToLower(strings.TrimSpace(p.ReserveMode))
	if p.ReserveMode == "" {
		p.ReserveMode = ReserveProfiles
	}
	clampFloatMin(&p.MinCoinsReserve, 0)
	clampFloatMin(&p.MinApReserve, 0)
	clampFloatMin(&p.BoosterApReserve, 0)
	if p.SeedReserve.Multiplier <= 0 {
		p.SeedReserve.Multiplier = 1.05
	}
	p.CoinSeedsPriority = lowerAll(p.CoinSeedsPriority)
	p.ApSeedsPriority = lowerAll(p.ApSeedsPriority)
	p.CoinBoosterPriority = lowerAll(p.CoinBoosterPriority)
	p.ApBoosterPriority = lowerAll(p.ApBoosterPriority)
	p.BoosterBlacklist = lowerAll(p.BoosterBlacklist)
	if p.Reserves == nil {
		p.Reserves = map[string]ReserveProfile{}
	}
	for name, r := range p.Reserves {
		clampFloatMin(&r.MinCoinsReserve, 0)
		clampFloatMin(&r.MinApReserve, 0)
		p.Reserves[name] = r
	}
}

func (c *Config) Validate() error {
	switch c.Push.AutoPrestige {
	case PrestigeInstant, PrestigeSafe, PrestigeOff:
	default:
		return fmt.Errorf("push.auto_prestige: unknown mode %q", c.Push.AutoPrestige)
	}
	switch c.Push.ReserveMode {
	case ReserveProfiles, ReserveAdaptive:
	default:
		return fmt.Errorf("push.reserve_mode: unknown mode %q", c.Push.ReserveMode)
	}
	for lvl, need := range c.Push.PrestigeReq {
		if lvl < 1 || need < 0 {
			return fmt.Errorf("push.prestige_req: bad entry %d: %v", lvl, need)
		}
	}
	return nil
}

// PrestigeNeedForNext returns the AP threshold to reach level+1, zero when the
// table has no next level.
func (p *PushConfig) PrestigeNeedForNext(level int) float64 {
	return p.PrestigeReq[level+1]
}

func (c *Config) CoolDown() time.Duration { return time.Duration(c.CoolDownMs) * time.Millisecond }
func (c *Config) LoopRest() time.Duration { return time.Duration(c.LoopRestMs) * time.Millisecond }
func (c *Config) Tick() time.Duration     { return time.Duration(c.TickMs) * time.Millisecond }
func (c *Config) IdleTick() time.Duration { return time.Duration(c.IdleTickMs) * time.Millisecond }
func (c *Config) RefreshState() time.Duration {
	return time.Duration(c.RefreshStateMs) * time.Millisecond
}

func clampIntMin(v *int, min int) {
	if *v < min {
		*v = min
	}
}

func clampFloatMin(v *float64, min float64) {
	if *v < min {
		*v = min
	}
}

func lowerAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out
}
