package tax

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RuleKind classifies how a tax rule participates in a calculation.
type RuleKind string

const (
	// KindTax adds rate*subtotal to the amount owed.
	KindTax RuleKind = "tax"
	// KindRebate reduces the amount owed, either by reference or by percentage.
	KindRebate RuleKind = "rebate"
	// KindExemption zeroes the item's tax entirely.
	KindExemption RuleKind = "exemption"
)

// RebateKind is the explicit variant behind a rebate rule's configuration.
type RebateKind int

const (
	// RebateInert marks a rebate whose configuration produces no effect
	// (rate zero and nothing referenced). Surfaced to config validation,
	// never a calculation-time failure.
	RebateInert RebateKind = iota
	// RebateFullExemption nets out the referenced taxes in full.
	RebateFullExemption
	// RebatePercentage discounts the taxable base by the rule's rate.
	RebatePercentage
)

// Rule is one row of tax configuration. Rate is a fraction in [0,1].
// Affects lists referenced rule ids and is only meaningful for rebates.
type Rule struct {
	ID      uuid.UUID       `json:"id"`
	Name    string          `json:"name"`
	Kind    RuleKind        `json:"kind"`
	Rate    decimal.Decimal `json:"rate"`
	Affects []uuid.UUID     `json:"affects,omitempty"`
	Active  bool            `json:"active"`
}

// RebateMode resolves the rebate duality into an explicit variant. A rebate
// with rate zero and a non-empty Affects list fully exempts the referenced
// taxes; a positive rate is a percentage discount on the taxable base
// regardless of Affects.
func (r Rule) RebateMode() RebateKind {
	if r.Kind != KindRebate {
		return RebateInert
	}
	if r.Rate.IsPositive() {
		return RebatePercentage
	}
	if r.Rate.IsZero() && len(r.Affects) > 0 {
		return RebateFullExemption
	}
	return RebateInert
}

// CategoryBinding links a product category to the rule ids applied by default.
type CategoryBinding struct {
	CategoryID uuid.UUID   `json:"categoryId"`
	RuleIDs    []uuid.UUID `json:"ruleIds"`
}

// LineItem is one taxable cart line. Subtotal is unit price times quantity
// plus modifier prices, already computed by the caller. CategoryID may be
// uuid.Nil for uncategorized items.
type LineItem struct {
	Subtotal        decimal.Decimal
	CategoryID      uuid.UUID
	OverrideRuleIDs []uuid.UUID
}

// RuleSet is the immutable configuration snapshot a calculation runs against.
type RuleSet struct {
	rules    map[uuid.UUID]Rule
	bindings map[uuid.UUID][]uuid.UUID
}

// NewRuleSet indexes the provided rules and category bindings.
func NewRuleSet(rules []Rule, bindings []CategoryBinding) RuleSet {
	rs := RuleSet{
		rules:    make(map[uuid.UUID]Rule, len(rules)),
		bindings: make(map[uuid.UUID][]uuid.UUID, len(bindings)),
	}
	for _, r := range rules {
		rs.rules[r.ID] = r
	}
	for _, b := range bindings {
		rs.bindings[b.CategoryID] = append(rs.bindings[b.CategoryID], b.RuleIDs...)
	}
	return rs
}

// Rule returns the rule for the given id.
func (rs RuleSet) Rule(id uuid.UUID) (Rule, bool) {
	r, ok := rs.rules[id]
	return r, ok
}

// Len reports the number of rules in the set.
func (rs RuleSet) Len() int { return len(rs.rules) }

// Resolve returns the deduplicated rules applying to the item: the
// category's default bindings unioned with any explicit overrides. Inactive
// and unknown rule ids are skipped. An item with no category and no
// overrides resolves to nothing and is untaxed.
func (rs RuleSet) Resolve(item LineItem) []Rule {
	var resolved []Rule
	seen := make(map[uuid.UUID]struct{})
	appendRule := func(id uuid.UUID) {
		if _, dup := seen[id]; dup {
			return
		}
		rule, ok := rs.rules[id]
		if !ok || !rule.Active {
			return
		}
		seen[id] = struct{}{}
		resolved = append(resolved, rule)
	}
	if item.CategoryID != uuid.Nil {
		for _, id := range rs.bindings[item.CategoryID] {
			appendRule(id)
		}
	}
	for _, id := range item.OverrideRuleIDs {
		appendRule(id)
	}
	return resolved
}
