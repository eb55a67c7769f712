package payroll

import (
	"time"

	"github.com/shopspring/decimal"
)

// ROEMaxPeriods is the trailing window a Record of Employment reports on:
// exactly the most recent 53 pay periods, or fewer when history is shorter.
const ROEMaxPeriods = 53

// ROEResult carries the totals an ROE form is filled from. Field names are a
// compatibility contract with the report renderer.
type ROEResult struct {
	TotalInsurableEarnings decimal.Decimal `json:"totalInsurableEarnings"`
	TotalHours             decimal.Decimal `json:"totalHours"`
	PeriodsUsed            int             `json:"periodsUsed"`
	FirstPeriodStart       time.Time       `json:"firstPeriodStart"`
	LastPeriodEnd          time.Time       `json:"lastPeriodEnd"`
	AverageWeeklyEarnings  decimal.Decimal `json:"averageWeeklyEarnings"`
}

// ComputeROE aggregates capped insurable earnings over the trailing ROE
// window. Periods must arrive ordered by pay date descending; the result is
// nil when there are none. Per-period earnings (gross + vacation + premiums)
// are capped at the weekly insurable maximum before summing. Periods with
// missing or malformed premium data simply contribute zero premium pay,
// which ParsePremiums already guarantees upstream.
func ComputeROE(periodsDescending []PayPeriodRecord, limits Limits) *ROEResult {
	if len(periodsDescending) == 0 {
		return nil
	}
	window := periodsDescending
	if len(window) > ROEMaxPeriods {
		window = window[:ROEMaxPeriods]
	}

	result := &ROEResult{
		TotalInsurableEarnings: decimal.Zero,
		TotalHours:             decimal.Zero,
		PeriodsUsed:            len(window),
	}
	for _, period := range window {
		earnings := period.Earnings()
		if limits.WeeklyInsurableMax.IsPositive() && earnings.GreaterThan(limits.WeeklyInsurableMax) {
			earnings = limits.WeeklyInsurableMax
		}
		result.TotalInsurableEarnings = result.TotalInsurableEarnings.Add(earnings)
		result.TotalHours = result.TotalHours.Add(period.WorkedHours())

		if result.FirstPeriodStart.IsZero() || period.PeriodStart.Before(result.FirstPeriodStart) {
			result.FirstPeriodStart = period.PeriodStart
		}
		if period.PeriodEnd.After(result.LastPeriodEnd) {
			result.LastPeriodEnd = period.PeriodEnd
		}
	}
	result.AverageWeeklyEarnings = result.TotalInsurableEarnings.
		Div(decimal.NewFromInt(int64(result.PeriodsUsed)))
	return result
}
