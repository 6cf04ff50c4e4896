package catalog

// Defaults returns the built-in tables. Values mirror the live game shop as of
// the current season; drop JSON overrides next to the bot config when the shop
// rotates.
func Defaults() *Catalogs {
	seeds := []SeedDef{
		{Key: "wheat", Name: "wheat", GrowSeconds: 5, Currency: Coins, Price: 2, Yield: 2},
		{Key: "lettuce", Name: "lettuce", GrowSeconds: 30, Currency: Coins, Price: 8, Yield: 8},
		{Key: "golden-apple", Name: "golden-apple", GrowSeconds: 120, Currency: AP, Price: 10, Yield: 10},
		{Key: "carrot", Name: "carrot", GrowSeconds: 180, Currency: Coins, Price: 25, Yield: 25},
		{Key: "crystal-apple", Name: "crystal-apple", GrowSeconds: 600, Currency: AP, Price: 40, Yield: 40},
		{Key: "tomato", Name: "tomato", GrowSeconds: 900, Currency: Coins, Price: 80, Yield: 80},
		{Key: "onion", Name: "onion", GrowSeconds: 3600, Currency: Coins, Price: 200, Yield: 200},
		{Key: "diamond-apple", Name: "diamond-apple", GrowSeconds: 3600, Currency: AP, Price: 150, Yield: 150},
		{Key: "strawberry", Name: "strawberry", GrowSeconds: 14400, Currency: Coins, Price: 600, Yield: 600},
		{Key: "platinum-apple", Name: "Platinum Apple", GrowSeconds: 14400, Currency: AP, Price: 500, Yield: 500},
		{Key: "pumpkin", Name: "pumpkin", GrowSeconds: 43200, Currency: Coins, Price: 750, Yield: 750},
		{Key: "royal-apple", Name: "Royal Apple", GrowSeconds: 43200, Currency: AP, Price: 1500, Yield: 1500},

		// Prestige-gated apples.
		{Key: "legacy-apple", Name: "Legacy Apple (P1)", GrowSeconds: 60, Currency: AP, Price: 8, Yield: 8, MinPrestige: 1},
		{Key: "ascendant-apple", Name: "Ascendant Apple (P2)", GrowSeconds: 300, Currency: AP, Price: 60, Yield: 60, MinPrestige: 2},
		{Key: "relic-apple", Name: "Relic Apple (P3)", GrowSeconds: 2700, Currency: AP, Price: 120, Yield: 120, MinPrestige: 3},
		{Key: "ethereal-apple", Name: "Ethereal Apple (P4)", GrowSeconds: 7200, Currency: AP, Price: 400, Yield: 400, MinPrestige: 4},
		{Key: "quantum-apple", Name: "Quantum Apple (P5)", GrowSeconds: 28800, Currency: AP, Price: 1500, Yield: 1500, MinPrestige: 5},
		{Key: "celestial-apple", Name: "Celestial Apple (P6)", GrowSeconds: 36000, Currency: AP, Price: 2500, Yield: 2500, MinPrestige: 6},
		{Key: "apex-apple", Name: "Apex Apple (P7)", GrowSeconds: 43200, Currency: AP, Price: 3000, Yield: 3000, MinPrestige: 7},
	}

	boosters := []BoosterDef{
		{Key: "fertiliser", Name: "Fertiliser", DurationSeconds: 43200, Currency: Coins, Price: 10, SpeedMult: 1.43, YieldMult: 1.0},
		{Key: "silver-tonic", Name: "Silver Tonic", DurationSeconds: 43200, Currency: Coins, Price: 15, SpeedMult: 1.0, YieldMult: 1.25},
		{Key: "super-fertiliser", Name: "Super Fertiliser", DurationSeconds: 43200, Currency: AP, Price: 25, SpeedMult: 2.0, YieldMult: 1.0},
		{Key: "golden-tonic", Name: "Golden Tonic", DurationSeconds: 43200, Currency: AP, Price: 50, SpeedMult: 1.0, YieldMult: 2.0},
		{Key: "deadly-mix", Name: "Deadly Mix", DurationSeconds: 43200, Currency: AP, Price: 150, SpeedMult: 8.0, YieldMult: 0.6},
		{Key: "quantum-fertilizer", Name: "Quantum Fertilizer", DurationSeconds: 43200, Currency: AP, Price: 175, SpeedMult: 2.5, YieldMult: 1.5},
		{Key: "potion-of-gains", Name: "Potion of Gains", DurationSeconds: 43200, Currency: AP, Price: 15, SpeedMult: 1.67, YieldMult: 1.0},
		{Key: "elixir-of-degens", Name: "Elixir of Degens", DurationSeconds: 43200, Currency: AP, Price: 30, SpeedMult: 1.0, YieldMult: 1.75},
		{Key: "giga-brew", Name: "Giga Brew", DurationSeconds: 43200, Currency: AP, Price: 75, SpeedMult: 1.67, YieldMult: 1.4},
		{Key: "wild-growth", Name: "Wild Growth", DurationSeconds: 43200, Currency: AP, Price: 100, SpeedMult: 0.8, YieldMult: 3.0},
		{Key: "warp-time-elixir", Name: "Warp-Time Elixir", DurationSeconds: 43200, Currency: AP, Price: 500, SpeedMult: 5.0, YieldMult: 1.0},
		{Key: "titans-growth", Name: "Titan's Growth", DurationSeconds: 86400, Currency: AP, Price: 1000, SpeedMult: 0.67, YieldMult: 5.0},
		{Key: "apex-potion", Name: "Apex Potion", DurationSeconds: 43200, Currency: AP, Price: 5000, SpeedMult: 3.33, YieldMult: 2.0},
	}

	// Cost of plot N when going from N-1 to N plots. The base plot is a free
	// claim, not a purchase.
	prices := map[int]PlotPrice{
		1:  {},
		2:  {Coins: 25},
		3:  {Coins: 100},
		4:  {Coins: 500},
		5:  {AP: 300},
		6:  {AP: 1000},
		7:  {Coins: 2500},
		8:  {AP: 2500},
		9:  {Coins: 10000},
		10: {AP: 5000},
		11: {Coins: 25000},
		12: {AP: 15000},
	}

	c := &Catalogs{
		Seeds:      make(map[string]SeedDef, len(seeds)),
		Boosters:   make(map[string]BoosterDef, len(boosters)),
		PlotPrices: prices,
	}
	for _, s := range seeds {
		c.Seeds[s.Key] = s
	}
	for _, b := range boosters {
		c.Boosters[b.Key] = b
	}
	return c
}
