package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/seyi-aluko/payrun/internal/domain"
)

const slipColumns = `id, payroll_run_id, employee_id, organization_id, pay_period,
	base_salary, total_additions, gross_salary, paye_tax, pension_deduction,
	nhf_deduction, nhis_deduction, other_deductions, total_deductions, net_salary,
	gateway_reference, payment_status, created_at`

type SlipRepository struct {
	db *sql.DB
}

func NewSlipRepository(db *sql.DB) *SlipRepository {
	return &SlipRepository{db: db}
}

// Upsert persists the outcome for one employee within one run. Keyed on
// (payroll_run_id, employee_id) so re-processing a run after a crash rewrites
// the slip instead of appending a duplicate.
func (r *SlipRepository) Upsert(ctx context.Context, slip *domain.PayrollSlip) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO payroll_slips (
			id, payroll_run_id, employee_id, organization_id, pay_period,
			base_salary, total_additions, gross_salary, paye_tax, pension_deduction,
			nhf_deduction, nhis_deduction, other_deductions, total_deductions, net_salary,
			gateway_reference, payment_status, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
			$11, $12, $13, $14, $15, $16, $17, $18
		)
		ON CONFLICT (payroll_run_id, employee_id) DO UPDATE
		SET base_salary = EXCLUDED.base_salary,
		    total_additions = EXCLUDED.total_additions,
		    gross_salary = EXCLUDED.gross_salary,
		    paye_tax = EXCLUDED.paye_tax,
		    pension_deduction = EXCLUDED.pension_deduction,
		    nhf_deduction = EXCLUDED.nhf_deduction,
		    nhis_deduction = EXCLUDED.nhis_deduction,
		    other_deductions = EXCLUDED.other_deductions,
		    total_deductions = EXCLUDED.total_deductions,
		    net_salary = EXCLUDED.net_salary,
		    gateway_reference = EXCLUDED.gateway_reference,
		    payment_status = EXCLUDED.payment_status`,
		slip.ID, slip.PayrollRunID, slip.EmployeeID, slip.OrganizationID, slip.PayPeriod,
		slip.BaseSalary, slip.TotalAdditions, slip.GrossSalary, slip.PayeTax, slip.PensionDeduction,
		slip.NHFDeduction, slip.NHISDeduction, slip.OtherDeductions, slip.TotalDeductions, slip.NetSalary,
		slip.GatewayReference, slip.PaymentStatus, slip.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	return nil
}

func (r *SlipRepository) ListByRun(ctx context.Context, runID uuid.UUID) ([]domain.PayrollSlip, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+slipColumns+` FROM payroll_slips
		 WHERE payroll_run_id = $1
		 ORDER BY created_at`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByRun: %w", err)
	}
	defer rows.Close()

	var slips []domain.PayrollSlip
	for rows.Next() {
		slip, err := scanSlip(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByRun: scan: %w", err)
		}
		slips = append(slips, *slip)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByRun: rows: %w", err)
	}
	return slips, nil
}

func scanSlip(s scanner) (*domain.PayrollSlip, error) {
	var slip domain.PayrollSlip
	err := s.Scan(
		&slip.ID, &slip.PayrollRunID, &slip.EmployeeID, &slip.OrganizationID, &slip.PayPeriod,
		&slip.BaseSalary, &slip.TotalAdditions, &slip.GrossSalary, &slip.PayeTax, &slip.PensionDeduction,
		&slip.NHFDeduction, &slip.NHISDeduction, &slip.OtherDeductions, &slip.TotalDeductions, &slip.NetSalary,
		&slip.GatewayReference, &slip.PaymentStatus, &slip.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &slip, nil
}
