package tax

import "github.com/shopspring/decimal"

// TenderType identifies how a total is settled.
type TenderType string

const (
	// TenderCash settles in physical currency and is subject to rounding.
	TenderCash TenderType = "cash"
	// TenderCard settles electronically; totals pass through untouched.
	TenderCard TenderType = "card"
)

// CashRounding rounds cash-settled totals to the nearest legal denomination.
// It is a terminal display/settlement transform and must never run before
// tax aggregation. The denomination varies by jurisdiction ($0.05 in Canada
// since the penny was withdrawn) and is injected from configuration.
type CashRounding struct {
	Denomination decimal.Decimal
}

// RoundForTender returns the amount adjusted for the tender type. Non-cash
// tenders are returned unchanged.
func (c CashRounding) RoundForTender(amount decimal.Decimal, tender TenderType) decimal.Decimal {
	if tender != TenderCash {
		return amount
	}
	denom := c.Denomination
	if !denom.IsPositive() {
		return amount
	}
	// Half-denomination amounts round to even (10.025 settles at 10.00).
	return amount.Div(denom).RoundBank(0).Mul(denom)
}
