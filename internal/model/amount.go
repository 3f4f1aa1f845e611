package model

import "github.com/shopspring/decimal"

func init() {
	// Amounts travel as JSON numbers, matching the field contract of the UI.
	decimal.MarshalJSONWithoutQuotes = true
}

// Amount is an exact monetary value in major units.
type Amount = decimal.Decimal

// Amt builds an Amount from an integer number of major units.
func Amt(v int64) Amount { return decimal.NewFromInt(v) }

// SumAmounts adds every value in xs.
func SumAmounts(xs ...Amount) Amount {
	total := decimal.Zero
	for _, x := range xs {
		total = total.Add(x)
	}
	return total
}
