package game

import (
	"math"

	"appleville.bot/internal/catalog"
)

// AffordableQty is the raw max-affordable quantity: floor(balance/price)
// clamped to [0, want]. A zero or negative price is treated as always
// affordable.
func AffordableQty(price float64, cur catalog.Currency, coins, ap float64, want int) int {
	return affordable(price, cur, coins, ap, want, 0, 0)
}

// AffordableQtyReserve is the reserve-aware variant: only the balance above
// the reserve floor for the price's currency is spendable.
func AffordableQtyReserve(price float64, cur catalog.Currency, coins, ap float64, want int, minCoins, minAP float64) int {
	if minCoins < 0 {
		minCoins = 0
	}
	if minAP < 0 {
		minAP = 0
	}
	return affordable(price, cur, coins, ap, want, minCoins, minAP)
}

func affordable(price float64, cur catalog.Currency, coins, ap float64, want int, minCoins, minAP float64) int {
	if want < 0 {
		want = 0
	}
	if price <= 0 {
		return want
	}
	bal := coins - minCoins
	if cur == catalog.AP {
		bal = ap - minAP
	}
	if bal < 0 {
		bal = 0
	}
	max := int(math.Floor(bal / price))
	if max < want {
		return max
	}
	return want
}
