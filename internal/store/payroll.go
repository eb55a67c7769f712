package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/maplehq/backend-maple/internal/payroll"
)

const payPeriodColumns = `
pay_date, period_start, period_end, gross_pay, vacation_pay,
regular_hours, overtime_hours, lieu_hours, premiums,
federal_tax, provincial_tax, cpp_deduction, ei_deduction`

// ListRecentPayPeriods returns at most limit periods for the employee,
// newest pay date first.
func (s *Store) ListRecentPayPeriods(ctx context.Context, employeeID uuid.UUID, limit int32) ([]payroll.PayPeriodRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM pay_periods WHERE employee_id = $1 ORDER BY pay_date DESC LIMIT $2`, payPeriodColumns)
	rows, err := s.Pool.Query(ctx, query, employeeID, limit)
	if err != nil {
		return nil, fmt.Errorf("query pay periods: %w", err)
	}
	defer rows.Close()
	return scanPayPeriods(rows)
}

// ListPayPeriodsInRange returns periods with pay dates in [from, to),
// newest first.
func (s *Store) ListPayPeriodsInRange(ctx context.Context, employeeID uuid.UUID, from, to time.Time) ([]payroll.PayPeriodRecord, error) {
	query := fmt.Sprintf(`SELECT %s FROM pay_periods WHERE employee_id = $1 AND pay_date >= $2 AND pay_date < $3 ORDER BY pay_date DESC`, payPeriodColumns)
	rows, err := s.Pool.Query(ctx, query, employeeID, from, to)
	if err != nil {
		return nil, fmt.Errorf("query pay periods: %w", err)
	}
	defer rows.Close()
	return scanPayPeriods(rows)
}

func scanPayPeriods(rows pgx.Rows) ([]payroll.PayPeriodRecord, error) {
	var periods []payroll.PayPeriodRecord
	for rows.Next() {
		var (
			record   payroll.PayPeriodRecord
			premiums []byte
		)
		if err := rows.Scan(
			&record.PayDate, &record.PeriodStart, &record.PeriodEnd,
			&record.GrossPay, &record.VacationPay,
			&record.RegularHours, &record.OvertimeHours, &record.LieuHours,
			&premiums,
			&record.FederalTax, &record.ProvincialTax,
			&record.CPPDeduction, &record.EIDeduction,
		); err != nil {
			return nil, fmt.Errorf("scan pay period: %w", err)
		}
		record.Premiums = payroll.ParsePremiums(premiums)
		periods = append(periods, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate pay periods: %w", err)
	}
	return periods, nil
}

// GetSnapshot fetches one employee's YTD snapshot for a tax year, nil when
// none has been built yet.
func (s *Store) GetSnapshot(ctx context.Context, employeeID uuid.UUID, taxYear int) (*payroll.Snapshot, error) {
	const query = `
SELECT employee_id, tax_year, gross_pay, vacation_pay, premium_pay,
       federal_tax, provincial_tax, cpp_deduction, ei_deduction,
       as_of, current
FROM payroll_ytd_snapshots
WHERE employee_id = $1 AND tax_year = $2`
	var snap payroll.Snapshot
	err := s.Pool.QueryRow(ctx, query, employeeID, taxYear).Scan(
		&snap.EmployeeID, &snap.TaxYear,
		&snap.GrossPay, &snap.VacationPay, &snap.PremiumPay,
		&snap.FederalTax, &snap.ProvincialTax,
		&snap.CPPDeduction, &snap.EIDeduction,
		&snap.AsOf, &snap.Current,
	)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query ytd snapshot: %w", err)
	}
	return &snap, nil
}

// UpsertSnapshot writes a freshly computed snapshot.
func (s *Store) UpsertSnapshot(ctx context.Context, snap payroll.Snapshot) error {
	const query = `
INSERT INTO payroll_ytd_snapshots (
  employee_id, tax_year, gross_pay, vacation_pay, premium_pay,
  federal_tax, provincial_tax, cpp_deduction, ei_deduction, as_of, current
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (employee_id, tax_year) DO UPDATE SET
  gross_pay = EXCLUDED.gross_pay,
  vacation_pay = EXCLUDED.vacation_pay,
  premium_pay = EXCLUDED.premium_pay,
  federal_tax = EXCLUDED.federal_tax,
  provincial_tax = EXCLUDED.provincial_tax,
  cpp_deduction = EXCLUDED.cpp_deduction,
  ei_deduction = EXCLUDED.ei_deduction,
  as_of = EXCLUDED.as_of,
  current = EXCLUDED.current`
	_, err := s.Pool.Exec(ctx, query,
		snap.EmployeeID, snap.TaxYear,
		snap.GrossPay, snap.VacationPay, snap.PremiumPay,
		snap.FederalTax, snap.ProvincialTax,
		snap.CPPDeduction, snap.EIDeduction,
		snap.AsOf, snap.Current,
	)
	if err != nil {
		return fmt.Errorf("upsert ytd snapshot: %w", err)
	}
	return nil
}

// ListActiveEmployees returns the ids the snapshot refresh worker iterates.
func (s *Store) ListActiveEmployees(ctx context.Context) ([]uuid.UUID, error) {
	rows, err := s.Pool.Query(ctx, `SELECT id FROM employees WHERE active ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("query employees: %w", err)
	}
	defer rows.Close()
	var ids []uuid.UUID
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan employee id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate employees: %w", err)
	}
	return ids, nil
}
