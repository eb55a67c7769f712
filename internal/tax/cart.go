package tax

import "github.com/shopspring/decimal"

// CartInput carries the order-level figures for a cart calculation.
// Subtotal may be supplied by the caller; when nil it is derived as the sum
// of item subtotals.
type CartInput struct {
	Items             []LineItem
	DiscountAmount    decimal.Decimal
	LoyaltyRedemption decimal.Decimal
	Subtotal          *decimal.Decimal
}

// ItemDetail is the per-line view inside a cart result.
type ItemDetail struct {
	Index         int             `json:"index"`
	Subtotal      decimal.Decimal `json:"subtotal"`
	TaxableAmount decimal.Decimal `json:"taxableAmount"`
	ItemTax
}

// CartTax aggregates item calculations into cart-level totals.
type CartTax struct {
	Subtotal decimal.Decimal `json:"subtotal"`
	TotalTax decimal.Decimal `json:"totalTax"`
	Taxes    *Breakdown      `json:"aggregatedTaxes"`
	Rebates  *Breakdown      `json:"aggregatedRebates"`
	Items    []ItemDetail    `json:"perItemDetails"`
}

// ComputeCartTax spreads order-level discount and loyalty value across items
// in proportion to each item's share of the pre-discount subtotal, then
// resolves and computes tax per item. No intermediate rounding happens here;
// rounding is a settlement-time concern (see CashRounding).
func (rs RuleSet) ComputeCartTax(in CartInput) CartTax {
	subtotal := decimal.Zero
	if in.Subtotal != nil {
		subtotal = *in.Subtotal
	} else {
		for _, item := range in.Items {
			subtotal = subtotal.Add(item.Subtotal)
		}
	}

	reduction := in.DiscountAmount.Add(in.LoyaltyRedemption)
	ratio := decimal.Zero
	if subtotal.IsPositive() {
		ratio = reduction.Div(subtotal)
	}
	keep := decimal.NewFromInt(1).Sub(ratio)

	result := CartTax{
		Subtotal: subtotal,
		TotalTax: decimal.Zero,
		Taxes:    NewBreakdown(),
		Rebates:  NewBreakdown(),
		Items:    make([]ItemDetail, 0, len(in.Items)),
	}
	for i, item := range in.Items {
		taxable := item.Subtotal.Mul(keep)
		itemTax := rs.ComputeItemTax(rs.Resolve(item), taxable)
		result.TotalTax = result.TotalTax.Add(itemTax.TaxAmount)
		result.Taxes.Merge(itemTax.Taxes)
		result.Rebates.Merge(itemTax.Rebates)
		result.Items = append(result.Items, ItemDetail{
			Index:         i,
			Subtotal:      item.Subtotal,
			TaxableAmount: taxable,
			ItemTax:       itemTax,
		})
	}
	return result
}
