package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/maplehq/backend-maple/internal/obs"
)

// DefaultLookback bounds how much history frequency detection and the
// weekly breakdown read; roughly 15 months covers a full ROE window at any
// supported cadence.
const DefaultLookback = 15 * 31 * 24 * time.Hour

// Store fetches payroll history. Implementations return periods ordered by
// pay date descending.
type Store interface {
	ListRecentPayPeriods(ctx context.Context, employeeID uuid.UUID, limit int32) ([]PayPeriodRecord, error)
	ListPayPeriodsInRange(ctx context.Context, employeeID uuid.UUID, from, to time.Time) ([]PayPeriodRecord, error)
}

// Service bounds history fetches and runs the payroll aggregators over the
// resulting immutable snapshots.
type Service struct {
	Store     Store
	Snapshots SnapshotSource
	Limits    Limits
	Lookback  time.Duration
	UseYTD    bool
	Logger    *zerolog.Logger
	Now       func() time.Time
}

func (s *Service) now() time.Time {
	if s != nil && s.Now != nil {
		return s.Now()
	}
	return time.Now()
}

func (s *Service) lookback() time.Duration {
	if s != nil && s.Lookback > 0 {
		return s.Lookback
	}
	return DefaultLookback
}

func (s *Service) ready() error {
	if s == nil || s.Store == nil {
		return errors.New("payroll service not configured")
	}
	return nil
}

// Frequency detects the employee's pay cadence from recent history.
func (s *Service) Frequency(ctx context.Context, employeeID uuid.UUID) (FrequencyResult, error) {
	if err := s.ready(); err != nil {
		return FrequencyResult{}, err
	}
	to := s.now()
	periods, err := s.Store.ListPayPeriodsInRange(ctx, employeeID, to.Add(-s.lookback()), to)
	if err != nil {
		return FrequencyResult{}, fmt.Errorf("list pay periods: %w", err)
	}
	dates := make([]time.Time, 0, len(periods))
	for _, period := range periods {
		dates = append(dates, period.PayDate)
	}
	result := DetectFrequency(dates)
	obs.ObserveFrequencyDetection(string(result.Frequency), result.Confidence)
	return result, nil
}

// ROE computes the Record of Employment totals over the trailing window.
// A nil result with nil error means the employee has no payroll history.
func (s *Service) ROE(ctx context.Context, employeeID uuid.UUID) (*ROEResult, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	periods, err := s.Store.ListRecentPayPeriods(ctx, employeeID, ROEMaxPeriods)
	if err != nil {
		return nil, fmt.Errorf("list pay periods: %w", err)
	}
	result := ComputeROE(periods, s.Limits)
	if result != nil {
		obs.ObservePayrollReport("roe", "full")
	}
	return result, nil
}

// WeeklyROE buckets recent history into ISO calendar weeks for the ROE's
// per-week disclosure block.
func (s *Service) WeeklyROE(ctx context.Context, employeeID uuid.UUID) ([]WeekBucket, error) {
	if err := s.ready(); err != nil {
		return nil, err
	}
	periods, err := s.Store.ListRecentPayPeriods(ctx, employeeID, ROEMaxPeriods)
	if err != nil {
		return nil, fmt.Errorf("list pay periods: %w", err)
	}
	buckets := WeeklyBreakdown(periods, s.Limits)
	obs.ObservePayrollReport("roe_weekly", "full")
	return buckets, nil
}

// T4 computes annual box totals for the given tax year, taking the YTD
// snapshot shortcut when enabled and available.
func (s *Service) T4(ctx context.Context, employeeID uuid.UUID, taxYear int) (T4Result, error) {
	if err := s.ready(); err != nil {
		return T4Result{}, err
	}
	from := time.Date(taxYear, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(taxYear+1, time.January, 1, 0, 0, 0, 0, time.UTC)
	loadPeriods := func(ctx context.Context) ([]PayPeriodRecord, error) {
		periods, err := s.Store.ListPayPeriodsInRange(ctx, employeeID, from, to)
		if err != nil {
			return nil, fmt.Errorf("list pay periods: %w", err)
		}
		return periods, nil
	}
	result, err := ComputeT4(ctx, loadPeriods, s.Limits, T4Options{
		EmployeeID: employeeID,
		TaxYear:    taxYear,
		UseYTD:     s.UseYTD,
		Snapshots:  s.Snapshots,
		Logger:     s.Logger,
	})
	if err != nil {
		return T4Result{}, err
	}
	obs.ObservePayrollReport("t4", string(result.CalculationMethod))
	if result.CalculationMethod == MethodYTDFallback {
		obs.ObserveYTDFallback()
	}
	return result, nil
}
