package payroll

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

func t4Periods() []PayPeriodRecord {
	var premiums PremiumBreakdown
	premiums.Set("night", Premium{Rate: dec("1.50"), Hours: dec("20"), TotalPay: dec("30")})
	return []PayPeriodRecord{
		{
			GrossPay:      dec("2000"),
			VacationPay:   dec("80"),
			Premiums:      premiums,
			FederalTax:    dec("300"),
			ProvincialTax: dec("150"),
			CPPDeduction:  dec("110"),
			EIDeduction:   dec("33"),
		},
		{
			GrossPay:      dec("2000"),
			VacationPay:   dec("80"),
			FederalTax:    dec("300"),
			ProvincialTax: dec("150"),
			CPPDeduction:  dec("110"),
			EIDeduction:   dec("33"),
		},
	}
}

func TestComputeT4Full(t *testing.T) {
	result := ComputeT4Full(t4Periods(), testLimits())
	if !result.Box14EmploymentIncome.Equal(dec("4190")) {
		t.Fatalf("expected box 14 = 4190, got %s", result.Box14EmploymentIncome)
	}
	if !result.Box22IncomeTax.Equal(dec("900")) {
		t.Fatalf("expected box 22 = 900, got %s", result.Box22IncomeTax)
	}
	if !result.Box16CPPContributions.Equal(dec("220")) || !result.Box18EIPremiums.Equal(dec("66")) {
		t.Fatalf("expected boxes 16/18 = 220/66, got %s/%s", result.Box16CPPContributions, result.Box18EIPremiums)
	}
	if !result.Box24EIInsurableEarnings.Equal(dec("4190")) {
		t.Fatalf("income below the cap passes through, got %s", result.Box24EIInsurableEarnings)
	}
	if result.CalculationMethod != MethodFull {
		t.Fatalf("expected method full, got %s", result.CalculationMethod)
	}
}

func TestComputeT4FullAppliesAnnualCaps(t *testing.T) {
	periods := []PayPeriodRecord{{GrossPay: dec("90000")}}
	result := ComputeT4Full(periods, testLimits())
	if !result.Box14EmploymentIncome.Equal(dec("90000")) {
		t.Fatalf("box 14 stays uncapped, got %s", result.Box14EmploymentIncome)
	}
	if !result.Box24EIInsurableEarnings.Equal(dec("65700")) {
		t.Fatalf("expected EI insurable capped at 65700, got %s", result.Box24EIInsurableEarnings)
	}
	if !result.Box26CPPPensionableEarnings.Equal(dec("71300")) {
		t.Fatalf("expected CPP pensionable capped at 71300, got %s", result.Box26CPPPensionableEarnings)
	}
}

type stubSnapshots struct {
	snap  *Snapshot
	err   error
	calls int
}

func (s *stubSnapshots) CurrentSnapshot(ctx context.Context, employeeID uuid.UUID, taxYear int) (*Snapshot, error) {
	s.calls++
	return s.snap, s.err
}

func snapshotFromPeriods(employeeID uuid.UUID, taxYear int, periods []PayPeriodRecord) *Snapshot {
	snap := &Snapshot{EmployeeID: employeeID, TaxYear: taxYear, AsOf: time.Now(), Current: true}
	for _, p := range periods {
		snap.GrossPay = snap.GrossPay.Add(p.GrossPay)
		snap.VacationPay = snap.VacationPay.Add(p.VacationPay)
		snap.PremiumPay = snap.PremiumPay.Add(p.PremiumPay())
		snap.FederalTax = snap.FederalTax.Add(p.FederalTax)
		snap.ProvincialTax = snap.ProvincialTax.Add(p.ProvincialTax)
		snap.CPPDeduction = snap.CPPDeduction.Add(p.CPPDeduction)
		snap.EIDeduction = snap.EIDeduction.Add(p.EIDeduction)
	}
	return snap
}

func loader(periods []PayPeriodRecord) func(context.Context) ([]PayPeriodRecord, error) {
	return func(context.Context) ([]PayPeriodRecord, error) { return periods, nil }
}

func TestComputeT4SnapshotPathMatchesFull(t *testing.T) {
	employeeID := uuid.New()
	periods := t4Periods()
	snapshots := &stubSnapshots{snap: snapshotFromPeriods(employeeID, 2025, periods)}

	failIfLoaded := func(context.Context) ([]PayPeriodRecord, error) {
		t.Fatal("snapshot path must not load period history")
		return nil, nil
	}
	optimized, err := ComputeT4(context.Background(), failIfLoaded, testLimits(), T4Options{
		EmployeeID: employeeID,
		TaxYear:    2025,
		UseYTD:     true,
		Snapshots:  snapshots,
	})
	if err != nil {
		t.Fatalf("optimized: %v", err)
	}
	full := ComputeT4Full(periods, testLimits())

	if optimized.CalculationMethod != MethodYTDOptimized {
		t.Fatalf("expected ytdOptimized, got %s", optimized.CalculationMethod)
	}
	if !optimized.Box14EmploymentIncome.Equal(full.Box14EmploymentIncome) ||
		!optimized.Box22IncomeTax.Equal(full.Box22IncomeTax) ||
		!optimized.Box24EIInsurableEarnings.Equal(full.Box24EIInsurableEarnings) ||
		!optimized.Box26CPPPensionableEarnings.Equal(full.Box26CPPPensionableEarnings) {
		t.Fatal("snapshot path must produce identical box totals")
	}
}

func TestComputeT4FallbackOnLookupError(t *testing.T) {
	periods := t4Periods()
	snapshots := &stubSnapshots{err: errors.New("redis down")}
	result, err := ComputeT4(context.Background(), loader(periods), testLimits(), T4Options{
		EmployeeID: uuid.New(),
		TaxYear:    2025,
		UseYTD:     true,
		Snapshots:  snapshots,
	})
	if err != nil {
		t.Fatalf("fallback must not surface the snapshot error, got %v", err)
	}
	if result.CalculationMethod != MethodYTDFallback {
		t.Fatalf("expected ytdFallback, got %s", result.CalculationMethod)
	}
	full := ComputeT4Full(periods, testLimits())
	if !result.Box14EmploymentIncome.Equal(full.Box14EmploymentIncome) {
		t.Fatal("fallback totals must match the full recompute")
	}
}

func TestComputeT4FallbackOnStaleSnapshot(t *testing.T) {
	employeeID := uuid.New()
	periods := t4Periods()
	stale := snapshotFromPeriods(employeeID, 2025, periods)
	stale.Current = false
	snapshots := &stubSnapshots{snap: stale}

	result, err := ComputeT4(context.Background(), loader(periods), testLimits(), T4Options{
		EmployeeID: employeeID,
		TaxYear:    2025,
		UseYTD:     true,
		Snapshots:  snapshots,
	})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if result.CalculationMethod != MethodYTDFallback {
		t.Fatalf("stale snapshot must fall back, got %s", result.CalculationMethod)
	}
}

func TestComputeT4FallbackOnWrongYear(t *testing.T) {
	employeeID := uuid.New()
	periods := t4Periods()
	snapshots := &stubSnapshots{snap: snapshotFromPeriods(employeeID, 2024, periods)}

	result, err := ComputeT4(context.Background(), loader(periods), testLimits(), T4Options{
		EmployeeID: employeeID,
		TaxYear:    2025,
		UseYTD:     true,
		Snapshots:  snapshots,
	})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if result.CalculationMethod != MethodYTDFallback {
		t.Fatalf("wrong-year snapshot must fall back, got %s", result.CalculationMethod)
	}
}

func TestComputeT4DisabledSkipsSnapshots(t *testing.T) {
	snapshots := &stubSnapshots{}
	result, err := ComputeT4(context.Background(), loader(t4Periods()), testLimits(), T4Options{
		EmployeeID: uuid.New(),
		TaxYear:    2025,
		UseYTD:     false,
		Snapshots:  snapshots,
	})
	if err != nil {
		t.Fatalf("compute: %v", err)
	}
	if snapshots.calls != 0 {
		t.Fatalf("disabled optimization must not consult snapshots, got %d calls", snapshots.calls)
	}
	if result.CalculationMethod != MethodFull {
		t.Fatalf("expected method full, got %s", result.CalculationMethod)
	}
}

func TestComputeT4LoadErrorSurfaces(t *testing.T) {
	wantErr := errors.New("db gone")
	failing := func(context.Context) ([]PayPeriodRecord, error) { return nil, wantErr }
	_, err := ComputeT4(context.Background(), failing, testLimits(), T4Options{})
	if !errors.Is(err, wantErr) {
		t.Fatalf("expected load error to surface, got %v", err)
	}
}
