package payroll

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
)

func dec(value string) decimal.Decimal {
	d, err := decimal.NewFromString(value)
	if err != nil {
		panic(err)
	}
	return d
}

func testLimits() Limits {
	return Limits{
		WeeklyInsurableMax:      dec("1263"),
		AnnualEIInsurableMax:    dec("65700"),
		AnnualCPPPensionableMax: dec("71300"),
	}
}

// periodsDescending builds count weekly periods with the given gross pay,
// most recent first.
func periodsDescending(count int, gross string) []PayPeriodRecord {
	latest := time.Date(2025, 6, 27, 0, 0, 0, 0, time.UTC)
	periods := make([]PayPeriodRecord, 0, count)
	for i := 0; i < count; i++ {
		payDate := latest.AddDate(0, 0, -7*i)
		periods = append(periods, PayPeriodRecord{
			PayDate:      payDate,
			PeriodStart:  payDate.AddDate(0, 0, -6),
			PeriodEnd:    payDate,
			GrossPay:     dec(gross),
			RegularHours: dec("40"),
		})
	}
	return periods
}

func TestComputeROECapsAtWeeklyMax(t *testing.T) {
	// 53 periods all above the cap: every one contributes exactly 1263.
	result := ComputeROE(periodsDescending(53, "1500"), testLimits())
	if result == nil {
		t.Fatal("expected a result")
	}
	if result.PeriodsUsed != 53 {
		t.Fatalf("expected 53 periods used, got %d", result.PeriodsUsed)
	}
	if !result.TotalInsurableEarnings.Equal(dec("66939")) {
		t.Fatalf("expected 66939 insurable earnings, got %s", result.TotalInsurableEarnings)
	}
	if !result.AverageWeeklyEarnings.Equal(dec("1263")) {
		t.Fatalf("expected average 1263, got %s", result.AverageWeeklyEarnings)
	}
}

func TestComputeROEWindowLimit(t *testing.T) {
	result := ComputeROE(periodsDescending(60, "1000"), testLimits())
	if result.PeriodsUsed != ROEMaxPeriods {
		t.Fatalf("expected window of %d periods, got %d", ROEMaxPeriods, result.PeriodsUsed)
	}
	if !result.TotalInsurableEarnings.Equal(dec("53000")) {
		t.Fatalf("expected 53000, got %s", result.TotalInsurableEarnings)
	}
}

func TestComputeROEShortHistory(t *testing.T) {
	result := ComputeROE(periodsDescending(5, "1000"), testLimits())
	if result.PeriodsUsed != 5 {
		t.Fatalf("expected 5 periods, got %d", result.PeriodsUsed)
	}
	if !result.TotalHours.Equal(dec("200")) {
		t.Fatalf("expected 200 hours, got %s", result.TotalHours)
	}
	if !result.AverageWeeklyEarnings.Equal(dec("1000")) {
		t.Fatalf("expected average 1000, got %s", result.AverageWeeklyEarnings)
	}
}

func TestComputeROEEmptyHistory(t *testing.T) {
	if result := ComputeROE(nil, testLimits()); result != nil {
		t.Fatalf("expected nil for empty history, got %+v", result)
	}
}

func TestComputeROEPeriodBounds(t *testing.T) {
	periods := periodsDescending(4, "1000")
	result := ComputeROE(periods, testLimits())
	if !result.FirstPeriodStart.Equal(periods[3].PeriodStart) {
		t.Fatalf("expected earliest period start %s, got %s", periods[3].PeriodStart, result.FirstPeriodStart)
	}
	if !result.LastPeriodEnd.Equal(periods[0].PeriodEnd) {
		t.Fatalf("expected latest period end %s, got %s", periods[0].PeriodEnd, result.LastPeriodEnd)
	}
}

func TestComputeROEIncludesVacationAndPremiums(t *testing.T) {
	var premiums PremiumBreakdown
	premiums.Set("night", Premium{Rate: dec("1.50"), Hours: dec("10"), TotalPay: dec("15")})
	periods := []PayPeriodRecord{{
		PayDate:     time.Date(2025, 6, 27, 0, 0, 0, 0, time.UTC),
		PeriodStart: time.Date(2025, 6, 21, 0, 0, 0, 0, time.UTC),
		PeriodEnd:   time.Date(2025, 6, 27, 0, 0, 0, 0, time.UTC),
		GrossPay:    dec("1000"),
		VacationPay: dec("40"),
		Premiums:    premiums,
	}}
	result := ComputeROE(periods, testLimits())
	if !result.TotalInsurableEarnings.Equal(dec("1055")) {
		t.Fatalf("expected 1000+40+15=1055, got %s", result.TotalInsurableEarnings)
	}
}

func TestComputeROENoCapWhenUnset(t *testing.T) {
	result := ComputeROE(periodsDescending(2, "5000"), Limits{})
	if !result.TotalInsurableEarnings.Equal(dec("10000")) {
		t.Fatalf("unset cap must not clamp, got %s", result.TotalInsurableEarnings)
	}
}
