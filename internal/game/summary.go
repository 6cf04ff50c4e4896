package game

import "time"

// Summary is the derived view of one snapshot at a frozen instant.
type Summary struct {
	Coins   float64
	AP      float64
	Plots   int
	Empty   int
	Ready   int
	Growing int

	Level int
	// NetAP is the prestige progress metric. When FromBalance is true the
	// value is the raw AP balance standing in for an absent net-AP field;
	// that approximation can overstate progress if AP was spent since the
	// last reset, so callers should surface it in logs rather than hide it.
	NetAP       float64
	FromBalance bool
}

// Summarize classifies every plot as exactly one of empty/ready/growing and
// reads prestige progress. Pure function of the snapshot and now; summarizing
// the same snapshot twice with the same now yields identical results.
//
// apBalanceFallback enables using the AP balance as prestige progress when no
// net-AP field is present or the field is zero.
func Summarize(s *AccountState, now time.Time, apBalanceFallback bool) Summary {
	sum := Summary{
		Coins: s.Coins,
		AP:    s.APBalance(),
		Plots: len(s.Plots),
	}
	for i := range s.Plots {
		p := &s.Plots[i]
		switch {
		case !p.HasSeed():
			sum.Empty++
		case p.Ready(now):
			sum.Ready++
		default:
			sum.Growing++
		}
	}

	sum.Level = s.PrestigeLevel
	if sum.Level == 0 && s.Prestige != nil {
		sum.Level = s.Prestige.Level
	}

	sum.NetAP = netAP(s)
	if sum.NetAP == 0 && apBalanceFallback {
		if bal := s.APBalance(); bal > 0 {
			sum.NetAP = bal
			sum.FromBalance = true
		}
	}
	return sum
}

// netAP picks the first present, non-negative net-AP field across the shapes
// the server has used.
func netAP(s *AccountState) float64 {
	var candidates []*float64
	if s.Prestige != nil {
		candidates = append(candidates, s.Prestige.NetAP, s.Prestige.NetAPSnake)
	}
	candidates = append(candidates, s.NetAP)
	if s.Stats != nil {
		candidates = append(candidates, s.Stats.APEarned)
	}
	candidates = append(candidates, s.APEarned)

	for _, c := range candidates {
		if c != nil && *c >= 0 {
			return *c
		}
	}
	return 0
}
