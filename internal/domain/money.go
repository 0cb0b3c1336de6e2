package domain

import (
	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// FormatUSD renders an amount for display, e.g. "$1,234.50"
func FormatUSD(amount float64) string {
	cur := money.GetCurrency(money.USD)
	minor := decimal.NewFromFloat(amount).Shift(int32(cur.Fraction)).Round(0)
	return money.New(minor.IntPart(), money.USD).Display()
}
