// Package game holds the read-only snapshot model and the pure decision
// helpers built on it: slot classification, balance summaries and
// affordability math. Nothing here talks to the network or the clock; callers
// pass a frozen "now".
package game

import (
	"bytes"
	"encoding/json"
	"sort"
	"time"
)

// AccountState is one snapshot of the remote account. It is never mutated
// locally; a decision that needs fresher data re-fetches. Field aliases cover
// the shapes the server has used across versions.
type AccountState struct {
	Coins float64  `json:"coins"`
	AP    *float64 `json:"ap"`
	// Older payloads report the AP balance as "apples".
	Apples float64 `json:"apples"`

	Plots []Plot `json:"plots"`

	PrestigeLevel int           `json:"prestigeLevel"`
	Prestige      *PrestigeInfo `json:"prestige"`
	NetAP         *float64      `json:"netAp"`
	APEarned      *float64      `json:"apEarned"`
	Stats         *AccountStats `json:"stats"`
}

type PrestigeInfo struct {
	Level      int      `json:"level"`
	NetAP      *float64 `json:"netAp"`
	NetAPSnake *float64 `json:"net_ap"`
}

type AccountStats struct {
	APEarned *float64 `json:"apEarned"`
}

type Plot struct {
	SlotIndex int          `json:"slotIndex"`
	Seed      *PlantedSeed `json:"seed"`

	// Modifier state appears in three shapes depending on server version; any
	// truthy one of them counts as an active modifier.
	ActiveModifier json.RawMessage `json:"activeModifier,omitempty"`
	Modifier       *ModifierInfo   `json:"modifier,omitempty"`
	Modifiers      []ModifierInfo  `json:"modifiers,omitempty"`
}

type PlantedSeed struct {
	Key    string    `json:"key"`
	EndsAt time.Time `json:"endsAt"`
}

type ModifierInfo struct {
	Key    string `json:"key"`
	Active bool   `json:"active"`
}

// Planting pairs a slot with the seed to plant on it.
type Planting struct {
	SlotIndex int    `json:"slotIndex"`
	SeedKey   string `json:"seedKey"`
}

// ModifierApplication pairs a slot with the modifier to apply to it.
type ModifierApplication struct {
	SlotIndex   int    `json:"slotIndex"`
	ModifierKey string `json:"modifierKey"`
}

// APBalance prefers the explicit ap field and falls back to the legacy apples
// field only when ap is absent entirely.
func (s *AccountState) APBalance() float64 {
	if s.AP != nil {
		return *s.AP
	}
	return s.Apples
}

func (p *Plot) HasSeed() bool { return p.Seed != nil && p.Seed.Key != "" }

func (p *Plot) EndTime() (time.Time, bool) {
	if p.Seed == nil || p.Seed.EndsAt.IsZero() {
		return time.Time{}, false
	}
	return p.Seed.EndsAt, true
}

func (p *Plot) Ready(now time.Time) bool {
	if !p.HasSeed() {
		return false
	}
	end, ok := p.EndTime()
	return ok && !end.After(now)
}

var (
	jsonNull  = []byte("null")
	jsonFalse = []byte("false")
)

// HasActiveModifier reports whether any of the modifier shapes marks the plot
// as boosted.
func (p *Plot) HasActiveModifier() bool {
	if raw := bytes.TrimSpace(p.ActiveModifier); len(raw) > 0 &&
		!bytes.Equal(raw, jsonNull) && !bytes.Equal(raw, jsonFalse) {
		return true
	}
	if p.Modifier != nil && (p.Modifier.Active || p.Modifier.Key != "") {
		return true
	}
	for _, m := range p.Modifiers {
		if m.Active || m.Key != "" {
			return true
		}
	}
	return false
}

// SlotIndexes returns every slot index in ascending order. Iteration order is
// deterministic regardless of the order the server sent the plots in.
func SlotIndexes(s *AccountState) []int {
	out := make([]int, 0, len(s.Plots))
	for i := range s.Plots {
		out = append(out, s.Plots[i].SlotIndex)
	}
	sort.Ints(out)
	return out
}

func plotsByIndex(s *AccountState) map[int]*Plot {
	m := make(map[int]*Plot, len(s.Plots))
	for i := range s.Plots {
		m[s.Plots[i].SlotIndex] = &s.Plots[i]
	}
	return m
}

// EmptySlots returns the slots without a seed, ascending.
func EmptySlots(s *AccountState) []int {
	m := plotsByIndex(s)
	out := make([]int, 0, len(m))
	for _, idx := range SlotIndexes(s) {
		if p := m[idx]; p != nil && !p.HasSeed() {
			out = append(out, idx)
		}
	}
	return out
}

// ReadySlots returns the slots whose seed finished growing at or before now,
// ascending.
func ReadySlots(s *AccountState, now time.Time) []int {
	m := plotsByIndex(s)
	out := make([]int, 0, len(m))
	for _, idx := range SlotIndexes(s) {
		if p := m[idx]; p != nil && p.Ready(now) {
			out = append(out, idx)
		}
	}
	return out
}

// SlotsNeedingBooster filters candidates down to slots that exist and have no
// active modifier, preserving candidate order.
func SlotsNeedingBooster(s *AccountState, candidates []int) []int {
	m := plotsByIndex(s)
	out := make([]int, 0, len(candidates))
	for _, idx := range candidates {
		if p := m[idx]; p != nil && !p.HasActiveModifier() {
			out = append(out, idx)
		}
	}
	return out
}

// NextHarvest returns the earliest finish time across growing plots.
func NextHarvest(s *AccountState) (time.Time, bool) {
	var best time.Time
	found := false
	for i := range s.Plots {
		end, ok := s.Plots[i].EndTime()
		if !ok || !s.Plots[i].HasSeed() {
			continue
		}
		if !found || end.Before(best) {
			best = end
			found = true
		}
	}
	return best, found
}
