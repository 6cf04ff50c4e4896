package game

import (
	"testing"

	"appleville.bot/internal/catalog"
)

func TestAffordableQty(t *testing.T) {
	cases := []struct {
		name       string
		price      float64
		cur        catalog.Currency
		coins, ap  float64
		want, wgot int
	}{
		{"exact", 10, catalog.Coins, 100, 0, 10, 10},
		{"clampToWant", 10, catalog.Coins, 1000, 0, 5, 5},
		{"floor", 30, catalog.Coins, 100, 0, 10, 3},
		{"broke", 10, catalog.Coins, 9, 0, 5, 0},
		{"apCurrency", 5, catalog.AP, 0, 27, 10, 5},
		{"freeIsUnlimited", 0, catalog.Coins, 0, 0, 7, 7},
		{"negativeWant", 10, catalog.Coins, 100, 0, -3, 0},
	}
	for _, tc := range cases {
		got := AffordableQty(tc.price, tc.cur, tc.coins, tc.ap, tc.want)
		if got != tc.wgot {
			t.Fatalf("%s: AffordableQty = %d, want %d", tc.name, got, tc.wgot)
		}
	}
}

func TestAffordableQtyReserve(t *testing.T) {
	// 120 coins, floor 100: only 20 spendable.
	if got := AffordableQtyReserve(10, catalog.Coins, 120, 0, 9, 100, 0); got != 2 {
		t.Fatalf("reserve: got %d, want 2", got)
	}
	// Balance below the floor: zero, never negative.
	if got := AffordableQtyReserve(10, catalog.Coins, 50, 0, 9, 100, 0); got != 0 {
		t.Fatalf("underwater: got %d, want 0", got)
	}
	// The floor of the other currency is irrelevant.
	if got := AffordableQtyReserve(10, catalog.Coins, 120, 0, 9, 0, 1e9); got != 9 {
		t.Fatalf("cross-currency floor applied: got %d, want 9", got)
	}
	// Negative floors are treated as zero.
	if got := AffordableQtyReserve(10, catalog.Coins, 50, 0, 9, -100, 0); got != 5 {
		t.Fatalf("negative floor: got %d, want 5", got)
	}
	// AP-priced purchase against the AP floor.
	if got := AffordableQtyReserve(20, catalog.AP, 0, 150, 9, 0, 120); got != 1 {
		t.Fatalf("ap floor: got %d, want 1", got)
	}
}
