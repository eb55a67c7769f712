package tax_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"github.com/maplehq/backend-maple/internal/tax"
)

type stubStore struct {
	cfg   tax.Config
	calls int
}

func (s *stubStore) LoadTaxConfig(ctx context.Context) (tax.Config, error) {
	s.calls++
	return s.cfg, nil
}

func testConfig() tax.Config {
	hst := uuid.New()
	return tax.Config{
		Rules: []tax.Rule{
			{ID: hst, Name: "HST", Kind: tax.KindTax, Rate: decimal.RequireFromString("0.13"), Active: true},
		},
		Bindings: []tax.CategoryBinding{
			{CategoryID: uuid.New(), RuleIDs: []uuid.UUID{hst}},
		},
	}
}

func TestRuleSetCached(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	store := &stubStore{cfg: testConfig()}
	svc := &tax.Service{Store: store, Cache: tax.NewCache(rdb, time.Minute)}

	for i := 0; i < 2; i++ {
		rs, err := svc.RuleSet(context.Background())
		if err != nil {
			t.Fatalf("call %d: %v", i, err)
		}
		if rs.Len() != 1 {
			t.Fatalf("call %d: expected 1 rule, got %d", i, rs.Len())
		}
	}
	if store.calls != 1 {
		t.Fatalf("expected 1 store load, got %d", store.calls)
	}
}

func TestInvalidateRuleSetForcesReload(t *testing.T) {
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	defer mr.Close()
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})

	store := &stubStore{cfg: testConfig()}
	svc := &tax.Service{Store: store, Cache: tax.NewCache(rdb, time.Minute)}

	if _, err := svc.RuleSet(context.Background()); err != nil {
		t.Fatalf("first load: %v", err)
	}
	if err := svc.InvalidateRuleSet(context.Background()); err != nil {
		t.Fatalf("invalidate: %v", err)
	}
	if _, err := svc.RuleSet(context.Background()); err != nil {
		t.Fatalf("reload: %v", err)
	}
	if store.calls != 2 {
		t.Fatalf("expected 2 store loads after invalidation, got %d", store.calls)
	}
}

func TestRuleSetWithoutCache(t *testing.T) {
	store := &stubStore{cfg: testConfig()}
	svc := &tax.Service{Store: store, Cache: tax.NewCache(nil, 0)}
	if _, err := svc.RuleSet(context.Background()); err != nil {
		t.Fatalf("nil-cache load: %v", err)
	}
	if _, err := svc.RuleSet(context.Background()); err != nil {
		t.Fatalf("second load: %v", err)
	}
	if store.calls != 2 {
		t.Fatalf("expected store hit per call without cache, got %d", store.calls)
	}
}

func TestQuoteCartSettlement(t *testing.T) {
	hst := uuid.New()
	store := &stubStore{cfg: tax.Config{
		Rules: []tax.Rule{{ID: hst, Name: "HST", Kind: tax.KindTax, Rate: decimal.RequireFromString("0.13"), Active: true}},
	}}
	svc := &tax.Service{
		Store:    store,
		Cache:    tax.NewCache(nil, 0),
		Rounding: tax.CashRounding{Denomination: decimal.RequireFromString("0.05")},
	}

	in := tax.CartInput{
		Items: []tax.LineItem{{Subtotal: decimal.RequireFromString("8.87"), OverrideRuleIDs: []uuid.UUID{hst}}},
	}
	quote, err := svc.QuoteCart(context.Background(), in, tax.TenderCash)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	// 8.87 * 1.13 = 10.0231, rounded to the nearest nickel for cash.
	if !quote.TotalDue.Equal(decimal.RequireFromString("10.0231")) {
		t.Fatalf("expected total due 10.0231, got %s", quote.TotalDue)
	}
	if !quote.SettlementTotal.Equal(decimal.RequireFromString("10.00")) {
		t.Fatalf("expected cash settlement 10.00, got %s", quote.SettlementTotal)
	}

	card, err := svc.QuoteCart(context.Background(), in, "")
	if err != nil {
		t.Fatalf("card quote: %v", err)
	}
	if card.TenderType != tax.TenderCard {
		t.Fatalf("empty tender must default to card, got %s", card.TenderType)
	}
	if !card.SettlementTotal.Equal(card.TotalDue) {
		t.Fatalf("card settlement must equal total due, got %s vs %s", card.SettlementTotal, card.TotalDue)
	}
}

func TestQuoteCartDueFloorsAtZero(t *testing.T) {
	store := &stubStore{cfg: tax.Config{}}
	svc := &tax.Service{Store: store, Cache: tax.NewCache(nil, 0)}
	in := tax.CartInput{
		Items:          []tax.LineItem{{Subtotal: decimal.RequireFromString("5")}},
		DiscountAmount: decimal.RequireFromString("10"),
	}
	quote, err := svc.QuoteCart(context.Background(), in, tax.TenderCard)
	if err != nil {
		t.Fatalf("quote: %v", err)
	}
	if !quote.TotalDue.IsZero() {
		t.Fatalf("over-discounted cart must owe zero, got %s", quote.TotalDue)
	}
}
