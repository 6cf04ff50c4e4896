package game

import (
	"testing"
	"time"
)

func TestSummarizePartitionsPlots(t *testing.T) {
	now := time.Now()
	st := testState(now)
	s := Summarize(st, now, false)

	if s.Plots != 3 || s.Empty != 1 || s.Ready != 1 || s.Growing != 1 {
		t.Fatalf("partition = plots:%d empty:%d ready:%d growing:%d, want 3/1/1/1",
			s.Plots, s.Empty, s.Ready, s.Growing)
	}
	if s.Empty+s.Ready+s.Growing != s.Plots {
		t.Fatalf("classes do not partition the plots")
	}
	if s.Coins != 500 || s.AP != 40 {
		t.Fatalf("balances = %v/%v, want 500/40", s.Coins, s.AP)
	}

	// Same snapshot, same instant: identical result.
	if again := Summarize(st, now, false); again != s {
		t.Fatalf("Summarize not deterministic: %+v vs %+v", again, s)
	}
}

func TestNetAPPrecedence(t *testing.T) {
	cases := []struct {
		name string
		st   AccountState
		want float64
	}{
		{"prestigeNested", AccountState{Prestige: &PrestigeInfo{NetAP: fp(10)}, NetAP: fp(99)}, 10},
		{"prestigeSnake", AccountState{Prestige: &PrestigeInfo{NetAPSnake: fp(11)}}, 11},
		{"topLevel", AccountState{NetAP: fp(12)}, 12},
		{"stats", AccountState{Stats: &AccountStats{APEarned: fp(13)}}, 13},
		{"apEarned", AccountState{APEarned: fp(14)}, 14},
		{"negativeSkipped", AccountState{NetAP: fp(-5), APEarned: fp(15)}, 15},
		{"none", AccountState{}, 0},
	}
	for _, tc := range cases {
		s := Summarize(&tc.st, time.Now(), false)
		if s.NetAP != tc.want {
			t.Fatalf("%s: NetAP = %v, want %v", tc.name, s.NetAP, tc.want)
		}
		if s.FromBalance {
			t.Fatalf("%s: FromBalance set without fallback enabled", tc.name)
		}
	}
}

func TestNetAPBalanceFallback(t *testing.T) {
	st := &AccountState{AP: fp(250)}

	s := Summarize(st, time.Now(), true)
	if s.NetAP != 250 || !s.FromBalance {
		t.Fatalf("fallback: NetAP = %v FromBalance = %v, want 250/true", s.NetAP, s.FromBalance)
	}

	// A real net field wins over the balance even when fallback is on.
	st.NetAP = fp(90)
	s = Summarize(st, time.Now(), true)
	if s.NetAP != 90 || s.FromBalance {
		t.Fatalf("explicit field: NetAP = %v FromBalance = %v, want 90/false", s.NetAP, s.FromBalance)
	}

	// Fallback off: balance is never used.
	st.NetAP = nil
	s = Summarize(st, time.Now(), false)
	if s.NetAP != 0 || s.FromBalance {
		t.Fatalf("disabled: NetAP = %v FromBalance = %v, want 0/false", s.NetAP, s.FromBalance)
	}
}

func TestSummaryLevel(t *testing.T) {
	s := Summarize(&AccountState{PrestigeLevel: 3}, time.Now(), false)
	if s.Level != 3 {
		t.Fatalf("Level = %d, want 3", s.Level)
	}
	s = Summarize(&AccountState{Prestige: &PrestigeInfo{Level: 2}}, time.Now(), false)
	if s.Level != 2 {
		t.Fatalf("nested Level = %d, want 2", s.Level)
	}
}
