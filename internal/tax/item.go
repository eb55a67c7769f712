package tax

import "github.com/shopspring/decimal"

// ItemTax is the net tax owed on one line item plus its composition.
type ItemTax struct {
	TaxAmount     decimal.Decimal `json:"taxAmount"`
	EffectiveRate decimal.Decimal `json:"effectiveRate"`
	Taxes         *Breakdown      `json:"taxBreakdown"`
	Rebates       *Breakdown      `json:"rebateBreakdown"`
	Exempt        bool            `json:"isExempt"`
}

// ComputeItemTax calculates net tax for a taxable subtotal under the resolved
// rules. An exemption rule dominates everything else. Taxes accumulate by
// rule name; rebates net against the combined tax total, never below zero.
//
// A full-exemption rebate nets out exactly what each referenced tax would
// have contributed on this subtotal, looked up from the rule set, so it
// applies even when the referenced tax was not itself resolved for the item.
// Rebates are computed independently and summed: two rebates referencing the
// same tax net it out twice. That matches the shipped behavior and stays.
func (rs RuleSet) ComputeItemTax(rules []Rule, taxableSubtotal decimal.Decimal) ItemTax {
	taxes := NewBreakdown()
	rebates := NewBreakdown()

	for _, rule := range rules {
		if rule.Kind == KindExemption {
			return ItemTax{
				TaxAmount:     decimal.Zero,
				EffectiveRate: decimal.Zero,
				Taxes:         NewBreakdown(),
				Rebates:       NewBreakdown(),
				Exempt:        true,
			}
		}
	}

	for _, rule := range rules {
		if rule.Kind != KindTax {
			continue
		}
		taxes.Add(rule.Name, taxableSubtotal.Mul(rule.Rate))
	}

	for _, rule := range rules {
		if rule.Kind != KindRebate {
			continue
		}
		switch rule.RebateMode() {
		case RebateFullExemption:
			for _, ref := range rule.Affects {
				referenced, ok := rs.Rule(ref)
				if !ok {
					continue
				}
				rebates.Add(rule.Name, taxableSubtotal.Mul(referenced.Rate))
			}
		case RebatePercentage:
			rebates.Add(rule.Name, taxableSubtotal.Mul(rule.Rate))
		}
	}

	net := taxes.Total().Sub(rebates.Total())
	if net.IsNegative() {
		net = decimal.Zero
	}
	rate := decimal.Zero
	if taxableSubtotal.IsPositive() {
		rate = net.Div(taxableSubtotal)
	}
	return ItemTax{
		TaxAmount:     net,
		EffectiveRate: rate,
		Taxes:         taxes,
		Rebates:       rebates,
	}
}
