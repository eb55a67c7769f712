package store

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/maplehq/backend-maple/internal/tax"
)

const loadTaxRulesSQL = `
SELECT id, name, kind, rate, COALESCE(affects, '{}'), active
FROM tax_rules
WHERE active
ORDER BY name, id`

const loadCategoryBindingsSQL = `
SELECT category_id, tax_rule_id
FROM category_tax_rules
ORDER BY category_id, position, tax_rule_id`

// LoadTaxConfig reads the active tax rules and category bindings as one
// immutable configuration snapshot.
func (s *Store) LoadTaxConfig(ctx context.Context) (tax.Config, error) {
	var cfg tax.Config

	rows, err := s.Pool.Query(ctx, loadTaxRulesSQL)
	if err != nil {
		return tax.Config{}, fmt.Errorf("query tax rules: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			rule tax.Rule
			kind string
			rate decimal.Decimal
		)
		if err := rows.Scan(&rule.ID, &rule.Name, &kind, &rate, &rule.Affects, &rule.Active); err != nil {
			return tax.Config{}, fmt.Errorf("scan tax rule: %w", err)
		}
		rule.Kind = tax.RuleKind(kind)
		rule.Rate = rate
		cfg.Rules = append(cfg.Rules, rule)
	}
	if err := rows.Err(); err != nil {
		return tax.Config{}, fmt.Errorf("iterate tax rules: %w", err)
	}

	bindingRows, err := s.Pool.Query(ctx, loadCategoryBindingsSQL)
	if err != nil {
		return tax.Config{}, fmt.Errorf("query category bindings: %w", err)
	}
	defer bindingRows.Close()
	byCategory := make(map[uuid.UUID]int)
	for bindingRows.Next() {
		var categoryID, ruleID uuid.UUID
		if err := bindingRows.Scan(&categoryID, &ruleID); err != nil {
			return tax.Config{}, fmt.Errorf("scan category binding: %w", err)
		}
		if idx, ok := byCategory[categoryID]; ok {
			cfg.Bindings[idx].RuleIDs = append(cfg.Bindings[idx].RuleIDs, ruleID)
			continue
		}
		byCategory[categoryID] = len(cfg.Bindings)
		cfg.Bindings = append(cfg.Bindings, tax.CategoryBinding{
			CategoryID: categoryID,
			RuleIDs:    []uuid.UUID{ruleID},
		})
	}
	if err := bindingRows.Err(); err != nil {
		return tax.Config{}, fmt.Errorf("iterate category bindings: %w", err)
	}
	return cfg, nil
}
