package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/seyi-aluko/payrun/internal/domain"
)

const adjustmentColumns = `id, employee_id, organization_id, adjustment_type, amount, description, pay_period, created_at`

type AdjustmentRepository struct {
	db *sql.DB
}

func NewAdjustmentRepository(db *sql.DB) *AdjustmentRepository {
	return &AdjustmentRepository{db: db}
}

func (r *AdjustmentRepository) Create(ctx context.Context, a *domain.PayrollAdjustment) error {
	if err := a.Validate(); err != nil {
		return fmt.Errorf("Create: %w", err)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO payroll_adjustments (id, employee_id, organization_id, adjustment_type, amount, description, pay_period, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		a.ID, a.EmployeeID, a.OrganizationID, a.Type, a.Amount, a.Description, a.PayPeriod, a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// ListForEmployeePeriod returns the adjustments included in a run: those
// tagged with exactly this employee and pay period, nothing else.
func (r *AdjustmentRepository) ListForEmployeePeriod(ctx context.Context, employeeID uuid.UUID, payPeriod string) ([]domain.PayrollAdjustment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+adjustmentColumns+` FROM payroll_adjustments
		 WHERE employee_id = $1 AND pay_period = $2
		 ORDER BY created_at`,
		employeeID, payPeriod,
	)
	if err != nil {
		return nil, fmt.Errorf("ListForEmployeePeriod: %w", err)
	}
	defer rows.Close()

	var adjustments []domain.PayrollAdjustment
	for rows.Next() {
		a, err := scanAdjustment(rows)
		if err != nil {
			return nil, fmt.Errorf("ListForEmployeePeriod: scan: %w", err)
		}
		adjustments = append(adjustments, *a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListForEmployeePeriod: rows: %w", err)
	}
	return adjustments, nil
}

func scanAdjustment(s scanner) (*domain.PayrollAdjustment, error) {
	var a domain.PayrollAdjustment
	err := s.Scan(
		&a.ID, &a.EmployeeID, &a.OrganizationID, &a.Type, &a.Amount,
		&a.Description, &a.PayPeriod, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
