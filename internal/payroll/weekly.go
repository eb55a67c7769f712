package payroll

import (
	"fmt"
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// WeekBucket accumulates one ISO calendar week of the ROE's per-week
// disclosure block. Multiple pay periods landing in the same ISO week merge
// into a single bucket.
type WeekBucket struct {
	Week              string          `json:"week"`
	LatestPayDate     time.Time       `json:"latestPayDate"`
	Periods           int             `json:"periods"`
	RegularHours      decimal.Decimal `json:"regularHours"`
	OvertimeHours     decimal.Decimal `json:"overtimeHours"`
	LieuHours         decimal.Decimal `json:"lieuHours"`
	GrossEarnings     decimal.Decimal `json:"grossEarnings"`
	InsurableEarnings decimal.Decimal `json:"insurableEarnings"`
	VacationPay       decimal.Decimal `json:"vacationPay"`
	PremiumPay        decimal.Decimal `json:"premiumPay"`
}

// weekKey renders the stable bucket key, e.g. "2025-W07".
func weekKey(payDate time.Time) string {
	isoYear, week := ISOWeek(payDate.Year(), int(payDate.Month()), payDate.Day())
	return fmt.Sprintf("%04d-W%02d", isoYear, week)
}

// WeeklyBreakdown buckets pay periods into ISO calendar weeks by pay date,
// capping each period's insurable earnings at the weekly maximum before
// accumulation. Buckets come back sorted by latest pay date descending.
func WeeklyBreakdown(periods []PayPeriodRecord, limits Limits) []WeekBucket {
	buckets := make(map[string]*WeekBucket)
	for _, period := range periods {
		key := weekKey(period.PayDate)
		bucket, ok := buckets[key]
		if !ok {
			bucket = &WeekBucket{
				Week:              key,
				RegularHours:      decimal.Zero,
				OvertimeHours:     decimal.Zero,
				LieuHours:         decimal.Zero,
				GrossEarnings:     decimal.Zero,
				InsurableEarnings: decimal.Zero,
				VacationPay:       decimal.Zero,
				PremiumPay:        decimal.Zero,
			}
			buckets[key] = bucket
		}
		insurable := period.Earnings()
		if limits.WeeklyInsurableMax.IsPositive() && insurable.GreaterThan(limits.WeeklyInsurableMax) {
			insurable = limits.WeeklyInsurableMax
		}
		bucket.Periods++
		bucket.RegularHours = bucket.RegularHours.Add(period.RegularHours)
		bucket.OvertimeHours = bucket.OvertimeHours.Add(period.OvertimeHours)
		bucket.LieuHours = bucket.LieuHours.Add(period.LieuHours)
		bucket.GrossEarnings = bucket.GrossEarnings.Add(period.GrossPay)
		bucket.InsurableEarnings = bucket.InsurableEarnings.Add(insurable)
		bucket.VacationPay = bucket.VacationPay.Add(period.VacationPay)
		bucket.PremiumPay = bucket.PremiumPay.Add(period.PremiumPay())
		if period.PayDate.After(bucket.LatestPayDate) {
			bucket.LatestPayDate = period.PayDate
		}
	}

	out := make([]WeekBucket, 0, len(buckets))
	for _, bucket := range buckets {
		out = append(out, *bucket)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LatestPayDate.After(out[j].LatestPayDate)
	})
	return out
}
