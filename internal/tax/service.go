package tax

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const ruleSetCacheKey = "tax:ruleset:v1"

// Config is the serialisable form of the tax configuration tables.
type Config struct {
	Rules    []Rule            `json:"rules"`
	Bindings []CategoryBinding `json:"bindings"`
}

// Store loads tax configuration from persistence.
type Store interface {
	LoadTaxConfig(ctx context.Context) (Config, error)
}

// Service loads the rule-set snapshot (cached) and runs cart calculations
// against it.
type Service struct {
	Store    Store
	Cache    *Cache
	Rounding CashRounding
	Logger   *zerolog.Logger
}

// Quote is a cart calculation plus the settlement figures derived from it.
type Quote struct {
	CartTax
	TotalDue        decimal.Decimal `json:"totalDue"`
	SettlementTotal decimal.Decimal `json:"settlementTotal"`
	TenderType      TenderType      `json:"tenderType"`
}

// RuleSet returns the current configuration snapshot, preferring the cache.
// Cache failures fall through to the store; the snapshot is immutable for
// the duration of one calculation.
func (s *Service) RuleSet(ctx context.Context) (RuleSet, error) {
	if s == nil || s.Store == nil {
		return RuleSet{}, errors.New("tax service not configured")
	}
	var cfg Config
	if hit, err := s.Cache.GetJSON(ctx, ruleSetCacheKey, &cfg); err != nil {
		s.logWarn(err, "read rule-set cache")
	} else if hit {
		return NewRuleSet(cfg.Rules, cfg.Bindings), nil
	}
	cfg, err := s.Store.LoadTaxConfig(ctx)
	if err != nil {
		return RuleSet{}, fmt.Errorf("load tax config: %w", err)
	}
	if err := s.Cache.SetJSON(ctx, ruleSetCacheKey, cfg); err != nil {
		s.logWarn(err, "write rule-set cache")
	}
	return NewRuleSet(cfg.Rules, cfg.Bindings), nil
}

// QuoteCart computes cart tax and the tender-adjusted settlement total.
func (s *Service) QuoteCart(ctx context.Context, in CartInput, tender TenderType) (Quote, error) {
	rs, err := s.RuleSet(ctx)
	if err != nil {
		return Quote{}, err
	}
	cart := rs.ComputeCartTax(in)
	due := cart.Subtotal.
		Sub(in.DiscountAmount).
		Sub(in.LoyaltyRedemption).
		Add(cart.TotalTax)
	if due.IsNegative() {
		due = decimal.Zero
	}
	if tender == "" {
		tender = TenderCard
	}
	return Quote{
		CartTax:         cart,
		TotalDue:        due,
		SettlementTotal: s.Rounding.RoundForTender(due, tender),
		TenderType:      tender,
	}, nil
}

// InvalidateRuleSet drops the cached configuration after an external edit.
func (s *Service) InvalidateRuleSet(ctx context.Context) error {
	return s.Cache.Invalidate(ctx, ruleSetCacheKey)
}

func (s *Service) logWarn(err error, msg string) {
	if s == nil || s.Logger == nil || err == nil {
		return
	}
	s.Logger.Warn().Err(err).Msg(msg)
}
