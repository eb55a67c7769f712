package payroll

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// CalculationMethod records which path produced a T4 result. Both paths
// share units and caps; callers may only observe different metadata.
type CalculationMethod string

const (
	// MethodFull means every period in range was summed.
	MethodFull CalculationMethod = "full"
	// MethodYTDOptimized means a current YTD snapshot short-circuited the sum.
	MethodYTDOptimized CalculationMethod = "ytdOptimized"
	// MethodYTDFallback means the snapshot path was attempted but degraded
	// to a full recompute.
	MethodYTDFallback CalculationMethod = "ytdFallback"
)

// T4Components breaks employment income and deductions into the figures the
// boxes are assembled from.
type T4Components struct {
	GrossPay      decimal.Decimal `json:"grossPay"`
	VacationPay   decimal.Decimal `json:"vacationPay"`
	PremiumPay    decimal.Decimal `json:"premiumPay"`
	FederalTax    decimal.Decimal `json:"federalTax"`
	ProvincialTax decimal.Decimal `json:"provincialTax"`
	CPPDeduction  decimal.Decimal `json:"cppDeduction"`
	EIDeduction   decimal.Decimal `json:"eiDeduction"`
}

// T4Result carries the annual tax-form box totals. Field names map directly
// onto the printed T4 layout and must stay stable.
type T4Result struct {
	Box14EmploymentIncome       decimal.Decimal   `json:"box14_employmentIncome"`
	Box16CPPContributions       decimal.Decimal   `json:"box16_cppContributions"`
	Box18EIPremiums             decimal.Decimal   `json:"box18_eiPremiums"`
	Box22IncomeTax              decimal.Decimal   `json:"box22_incomeTax"`
	Box24EIInsurableEarnings    decimal.Decimal   `json:"box24_eiInsurableEarnings"`
	Box26CPPPensionableEarnings decimal.Decimal   `json:"box26_cppPensionableEarnings"`
	Components                  T4Components      `json:"components"`
	CalculationMethod           CalculationMethod `json:"calculationMethod"`
}

// Snapshot is a precomputed year-to-date rollup of one employee's payroll
// totals, maintained by the payroll-run process.
type Snapshot struct {
	EmployeeID    uuid.UUID       `json:"employeeId"`
	TaxYear       int             `json:"taxYear"`
	GrossPay      decimal.Decimal `json:"grossPay"`
	VacationPay   decimal.Decimal `json:"vacationPay"`
	PremiumPay    decimal.Decimal `json:"premiumPay"`
	FederalTax    decimal.Decimal `json:"federalTax"`
	ProvincialTax decimal.Decimal `json:"provincialTax"`
	CPPDeduction  decimal.Decimal `json:"cppDeduction"`
	EIDeduction   decimal.Decimal `json:"eiDeduction"`
	AsOf          time.Time       `json:"asOf"`
	Current       bool            `json:"current"`
}

// SnapshotSource looks up the current YTD snapshot for an employee and tax
// year. A nil snapshot without error means none is available.
type SnapshotSource interface {
	CurrentSnapshot(ctx context.Context, employeeID uuid.UUID, taxYear int) (*Snapshot, error)
}

// T4Options controls the YTD-optimized path of ComputeT4.
type T4Options struct {
	EmployeeID uuid.UUID
	TaxYear    int
	UseYTD     bool
	Snapshots  SnapshotSource
	Logger     *zerolog.Logger
}

// ComputeT4Full sums every period in the requested range into box totals.
func ComputeT4Full(periods []PayPeriodRecord, limits Limits) T4Result {
	var c T4Components
	for _, period := range periods {
		c.GrossPay = c.GrossPay.Add(period.GrossPay)
		c.VacationPay = c.VacationPay.Add(period.VacationPay)
		c.PremiumPay = c.PremiumPay.Add(period.PremiumPay())
		c.FederalTax = c.FederalTax.Add(period.FederalTax)
		c.ProvincialTax = c.ProvincialTax.Add(period.ProvincialTax)
		c.CPPDeduction = c.CPPDeduction.Add(period.CPPDeduction)
		c.EIDeduction = c.EIDeduction.Add(period.EIDeduction)
	}
	return t4FromComponents(c, limits, MethodFull)
}

// ComputeT4 produces annual box totals, preferring a current YTD snapshot
// when enabled. The period history is loaded lazily so the snapshot path
// never scans it. Any snapshot failure -- missing, stale, wrong year, or a
// lookup error -- degrades silently to the full recompute; it is logged and
// tagged ytdFallback but never surfaced to the caller.
func ComputeT4(ctx context.Context, loadPeriods func(context.Context) ([]PayPeriodRecord, error), limits Limits, opts T4Options) (T4Result, error) {
	method := MethodFull
	if opts.UseYTD && opts.Snapshots != nil {
		snap, err := opts.Snapshots.CurrentSnapshot(ctx, opts.EmployeeID, opts.TaxYear)
		switch {
		case err != nil:
			if opts.Logger != nil {
				opts.Logger.Warn().Err(err).
					Str("employee_id", opts.EmployeeID.String()).
					Int("tax_year", opts.TaxYear).
					Msg("ytd snapshot lookup failed; recomputing from history")
			}
		case snap == nil || !snap.Current || snap.TaxYear != opts.TaxYear:
			if opts.Logger != nil {
				opts.Logger.Debug().
					Str("employee_id", opts.EmployeeID.String()).
					Int("tax_year", opts.TaxYear).
					Msg("ytd snapshot missing or stale; recomputing from history")
			}
		default:
			return t4FromComponents(T4Components{
				GrossPay:      snap.GrossPay,
				VacationPay:   snap.VacationPay,
				PremiumPay:    snap.PremiumPay,
				FederalTax:    snap.FederalTax,
				ProvincialTax: snap.ProvincialTax,
				CPPDeduction:  snap.CPPDeduction,
				EIDeduction:   snap.EIDeduction,
			}, limits, MethodYTDOptimized), nil
		}
		method = MethodYTDFallback
	}
	periods, err := loadPeriods(ctx)
	if err != nil {
		return T4Result{}, err
	}
	result := ComputeT4Full(periods, limits)
	result.CalculationMethod = method
	return result, nil
}

func t4FromComponents(c T4Components, limits Limits, method CalculationMethod) T4Result {
	income := c.GrossPay.Add(c.VacationPay).Add(c.PremiumPay)
	eiInsurable := income
	if limits.AnnualEIInsurableMax.IsPositive() && eiInsurable.GreaterThan(limits.AnnualEIInsurableMax) {
		eiInsurable = limits.AnnualEIInsurableMax
	}
	cppPensionable := income
	if limits.AnnualCPPPensionableMax.IsPositive() && cppPensionable.GreaterThan(limits.AnnualCPPPensionableMax) {
		cppPensionable = limits.AnnualCPPPensionableMax
	}
	return T4Result{
		Box14EmploymentIncome:       income,
		Box16CPPContributions:       c.CPPDeduction,
		Box18EIPremiums:             c.EIDeduction,
		Box22IncomeTax:              c.FederalTax.Add(c.ProvincialTax),
		Box24EIInsurableEarnings:    eiInsurable,
		Box26CPPPensionableEarnings: cppPensionable,
		Components:                  c,
		CalculationMethod:           method,
	}
}
