// Package catalog holds the static game data the engine consults: seed and
// booster definitions and the plot price ladder. The tables ship with built-in
// defaults mirroring the live game and can be overridden from JSON files in a
// config directory. Loaded catalogs are immutable; nothing mutates them at
// runtime.
package catalog

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Currency is the two-value money type. The remote API speaks loose strings
// ("coins", "AP", "apples"); ParseCurrency normalizes them once at the edge so
// the rest of the code never does substring matching.
type Currency int

const (
	Coins Currency = iota
	AP
)

func (c Currency) String() string {
	if c == AP {
		return "ap"
	}
	return "coins"
}

// ParseCurrency maps any string containing "ap" (case-insensitive) to AP and
// everything else, including the empty string, to Coins.
func ParseCurrency(s string) Currency {
	if strings.Contains(strings.ToLower(s), "ap") {
		return AP
	}
	return Coins
}

// SkipBooster is the sentinel booster key meaning "do not boost".
const SkipBooster = "skip"

type SeedDef struct {
	Key         string
	Name        string
	GrowSeconds int
	Currency    Currency
	Price       float64
	Yield       float64
	MinPrestige int
}

type BoosterDef struct {
	Key             string
	Name            string
	DurationSeconds int
	Currency        Currency
	Price           float64
	SpeedMult       float64
	YieldMult       float64
	MinPrestige     int
}

// EffectiveSpeed floors non-positive multipliers to 1 so ETA math never
// divides by zero or goes negative.
func (b BoosterDef) EffectiveSpeed() float64 {
	if b.SpeedMult <= 0 {
		return 1
	}
	return b.SpeedMult
}

// PlotPrice is the cost of buying one specific plot. Exactly one side is
// positive for every purchasable plot; the base plot is free on both sides.
type PlotPrice struct {
	Coins float64
	AP    float64
}

func (p PlotPrice) Currency() Currency {
	if p.AP > 0 && p.Coins == 0 {
		return AP
	}
	return Coins
}

func (p PlotPrice) Free() bool { return p.Coins == 0 && p.AP == 0 }

type Catalogs struct {
	Seeds      map[string]SeedDef
	Boosters   map[string]BoosterDef
	PlotPrices map[int]PlotPrice // keyed by the index of the plot being bought (1-based)
}

// Seed returns the definition for key, falling back to a free coins seed so
// price math on an unknown key degrades to "always affordable" rather than
// panicking.
func (c *Catalogs) Seed(key string) SeedDef {
	if s, ok := c.Seeds[key]; ok {
		return s
	}
	return SeedDef{Key: key, Currency: Coins}
}

func (c *Catalogs) Booster(key string) (BoosterDef, bool) {
	b, ok := c.Boosters[key]
	return b, ok
}

// NextPlotCost returns the price of the next plot when the account currently
// owns plotsNow plots, plus the 1-based index of that plot. ok is false when
// the ladder has no entry, i.e. the account is already at the table's cap.
func (c *Catalogs) NextPlotCost(plotsNow int) (price PlotPrice, idx int, ok bool) {
	idx = plotsNow + 1
	price, ok = c.PlotPrices[idx]
	return price, idx, ok
}

// EstimateGrow returns the expected grow duration in seconds for seedKey under
// boosterKey. Unknown seeds default to 30s, unknown boosters to speed 1.
func (c *Catalogs) EstimateGrow(seedKey, boosterKey string) int {
	base := 30.0
	if s, ok := c.Seeds[seedKey]; ok && s.GrowSeconds > 0 {
		base = float64(s.GrowSeconds)
	}
	speed := 1.0
	if b, ok := c.Boosters[boosterKey]; ok {
		speed = b.EffectiveSpeed()
	}
	out := int(base/speed + 0.999999)
	if out < 1 {
		out = 1
	}
	return out
}

func (c *Catalogs) Validate() error {
	for k, s := range c.Seeds {
		if k == "" || s.Key != k {
			return fmt.Errorf("seed %q: key mismatch", k)
		}
		if s.GrowSeconds <= 0 {
			return fmt.Errorf("seed %q: grow_seconds must be positive", k)
		}
		if s.Price < 0 || s.MinPrestige < 0 {
			return fmt.Errorf("seed %q: negative price or min_prestige", k)
		}
	}
	for k, b := range c.Boosters {
		if k == "" || b.Key != k {
			return fmt.Errorf("booster %q: key mismatch", k)
		}
		if k == SkipBooster {
			return fmt.Errorf("booster %q: reserved key", k)
		}
		if b.Price < 0 || b.MinPrestige < 0 {
			return fmt.Errorf("booster %q: negative price or min_prestige", k)
		}
	}
	for idx, p := range c.PlotPrices {
		if idx < 1 {
			return fmt.Errorf("plot price %d: index must be >= 1", idx)
		}
		if p.Coins < 0 || p.AP < 0 {
			return fmt.Errorf("plot price %d: negative cost", idx)
		}
		if p.Coins > 0 && p.AP > 0 {
			return fmt.Errorf("plot price %d: must cost exactly one currency", idx)
		}
		if idx > 1 && p.Free() {
			return fmt.Errorf("plot price %d: only the base plot may be free", idx)
		}
	}
	return nil
}

// Load builds the catalogs from built-in defaults, then overlays any of
// seeds.json, boosters.json and plot_prices.json found under configDir.
// An empty configDir returns the defaults unchanged.
func Load(configDir string) (*Catalogs, error) {
	c := Defaults()
	if strings.TrimSpace(configDir) == "" {
		return c, c.Validate()
	}
	if err := overlaySeeds(filepath.Join(configDir, "seeds.json"), c); err != nil {
		return nil, err
	}
	if err := overlayBoosters(filepath.Join(configDir, "boosters.json"), c); err != nil {
		return nil, err
	}
	if err := overlayPlotPrices(filepath.Join(configDir, "plot_prices.json"), c); err != nil {
		return nil, err
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// JSON override shapes. Currency arrives as a string and is normalized on
// conversion.

type seedJSON struct {
	Key         string  `json:"key"`
	Name        string  `json:"name"`
	GrowSeconds int     `json:"growSeconds"`
	Currency    string  `json:"currency"`
	Price       float64 `json:"price"`
	Yield       float64 `json:"yield"`
	MinPrestige int     `json:"minPrestige"`
}

type boosterJSON struct {
	Key             string  `json:"key"`
	Name            string  `json:"name"`
	DurationSeconds int     `json:"durationSeconds"`
	Currency        string  `json:"currency"`
	Price           float64 `json:"price"`
	SpeedMult       float64 `json:"speedMult"`
	YieldMult       float64 `json:"yieldMult"`
	MinPrestige     int     `json:"minPrestige"`
}

type plotPriceJSON struct {
	Index int     `json:"index"`
	Coins float64 `json:"coins"`
	AP    float64 `json:"ap"`
}

func overlaySeeds(path string, c *Catalogs) error {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	var defs []seedJSON
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("seeds.json: %w", err)
	}
	for _, d := range defs {
		if d.Key == "" {
			return fmt.Errorf("seeds.json: empty key")
		}
		name := d.Name
		if name == "" {
			name = d.Key
		}
		c.Seeds[d.Key] = SeedDef{
			Key:         d.Key,
			Name:        name,
			GrowSeconds: d.GrowSeconds,
			Currency:    ParseCurrency(d.Currency),
			Price:       d.Price,
			Yield:       d.Yield,
			MinPrestige: d.MinPrestige,
		}
	}
	return nil
}

func overlayBoosters(path string, c *Catalogs) error {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	var defs []boosterJSON
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("boosters.json: %w", err)
	}
	for _, d := range defs {
		if d.Key == "" {
			return fmt.Errorf("boosters.json: empty key")
		}
		name := d.Name
		if name == "" {
			name = d.Key
		}
		c.Boosters[d.Key] = BoosterDef{
			Key:             d.Key,
			Name:            name,
			DurationSeconds: d.DurationSeconds,
			Currency:        ParseCurrency(d.Currency),
			Price:           d.Price,
			SpeedMult:       d.SpeedMult,
			YieldMult:       d.YieldMult,
			MinPrestige:     d.MinPrestige,
		}
	}
	return nil
}

func overlayPlotPrices(path string, c *Catalogs) error {
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	var defs []plotPriceJSON
	if err := json.Unmarshal(raw, &defs); err != nil {
		return fmt.Errorf("plot_prices.json: %w", err)
	}
	for _, d := range defs {
		c.PlotPrices[d.Index] = PlotPrice{Coins: d.Coins, AP: d.AP}
	}
	return nil
}
