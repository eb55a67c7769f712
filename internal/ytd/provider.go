// Package ytd maintains and serves precomputed year-to-date payroll
// snapshots. A snapshot may race an in-progress payroll run; consumers
// tolerate that by falling back to a full recompute instead of locking.
package ytd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/maplehq/backend-maple/internal/payroll"
)

// Store persists snapshots.
type Store interface {
	GetSnapshot(ctx context.Context, employeeID uuid.UUID, taxYear int) (*payroll.Snapshot, error)
	UpsertSnapshot(ctx context.Context, snap payroll.Snapshot) error
}

// Provider serves snapshots with a Redis cache in front of the store. It
// implements payroll.SnapshotSource.
type Provider struct {
	Store  Store
	R      *redis.Client
	TTL    time.Duration
	MaxAge time.Duration
	Now    func() time.Time
}

func (p *Provider) now() time.Time {
	if p != nil && p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func cacheKey(employeeID uuid.UUID, taxYear int) string {
	return fmt.Sprintf("payroll:ytd:%s:%d", employeeID, taxYear)
}

// CurrentSnapshot returns the employee's snapshot for the tax year, or nil
// when none exists. A snapshot older than MaxAge is returned with Current
// unset so the caller recomputes instead of trusting it.
func (p *Provider) CurrentSnapshot(ctx context.Context, employeeID uuid.UUID, taxYear int) (*payroll.Snapshot, error) {
	if p == nil || p.Store == nil {
		return nil, errors.New("ytd provider not configured")
	}
	key := cacheKey(employeeID, taxYear)
	if snap, ok := p.fromCache(ctx, key); ok {
		return p.withFreshness(snap), nil
	}
	snap, err := p.Store.GetSnapshot(ctx, employeeID, taxYear)
	if err != nil {
		return nil, fmt.Errorf("get ytd snapshot: %w", err)
	}
	if snap == nil {
		return nil, nil
	}
	p.toCache(ctx, key, snap)
	return p.withFreshness(snap), nil
}

func (p *Provider) withFreshness(snap *payroll.Snapshot) *payroll.Snapshot {
	if snap == nil {
		return nil
	}
	out := *snap
	if p.MaxAge > 0 && p.now().Sub(out.AsOf) > p.MaxAge {
		out.Current = false
	}
	return &out
}

func (p *Provider) fromCache(ctx context.Context, key string) (*payroll.Snapshot, bool) {
	if p.R == nil || p.TTL <= 0 {
		return nil, false
	}
	data, err := p.R.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	var snap payroll.Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false
	}
	return &snap, true
}

func (p *Provider) toCache(ctx context.Context, key string, snap *payroll.Snapshot) {
	if p.R == nil || p.TTL <= 0 || snap == nil {
		return
	}
	data, err := json.Marshal(snap)
	if err != nil {
		return
	}
	_ = p.R.Set(ctx, key, data, p.TTL).Err()
}

// Refresher recomputes a snapshot from period history and writes it through
// the store and cache. The worker runs this per active employee.
type Refresher struct {
	Periods payroll.Store
	Store   Store
	R       *redis.Client
	TTL     time.Duration
	Now     func() time.Time
}

// Refresh rebuilds and persists the snapshot for one employee and tax year.
func (r *Refresher) Refresh(ctx context.Context, employeeID uuid.UUID, taxYear int) (payroll.Snapshot, error) {
	if r == nil || r.Periods == nil || r.Store == nil {
		return payroll.Snapshot{}, errors.New("ytd refresher not configured")
	}
	from := time.Date(taxYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(taxYear+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	periods, err := r.Periods.ListPayPeriodsInRange(ctx, employeeID, from, to)
	if err != nil {
		return payroll.Snapshot{}, fmt.Errorf("list pay periods: %w", err)
	}
	// Snapshot components stay uncapped; caps are applied when boxes are
	// assembled so both T4 paths share semantics.
	components := payroll.ComputeT4Full(periods, payroll.Limits{}).Components
	now := time.Now()
	if r.Now != nil {
		now = r.Now()
	}
	snap := payroll.Snapshot{
		EmployeeID:    employeeID,
		TaxYear:       taxYear,
		GrossPay:      components.GrossPay,
		VacationPay:   components.VacationPay,
		PremiumPay:    components.PremiumPay,
		FederalTax:    components.FederalTax,
		ProvincialTax: components.ProvincialTax,
		CPPDeduction:  components.CPPDeduction,
		EIDeduction:   components.EIDeduction,
		AsOf:          now,
		Current:       true,
	}
	if err := r.Store.UpsertSnapshot(ctx, snap); err != nil {
		return payroll.Snapshot{}, fmt.Errorf("upsert ytd snapshot: %w", err)
	}
	if r.R != nil && r.TTL > 0 {
		if data, err := json.Marshal(snap); err == nil {
			_ = r.R.Set(ctx, cacheKey(employeeID, taxYear), data, r.TTL).Err()
		}
	}
	return snap, nil
}
