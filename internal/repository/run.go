package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/seyi-aluko/payrun/internal/domain"
)

const runColumns = `id, organization_id, pay_period, status, total_gross,
	total_deductions, total_net, employee_count, initiated_at, completed_at`

type RunRepository struct {
	db *sql.DB
}

func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create inserts a pending run. A partial unique index on
// (organization_id, pay_period) WHERE status <> 'failed' makes the admission
// check atomic: two concurrent triggers race on the insert itself, and the
// loser gets domain.ErrPayrollAlreadyProcessed.
func (r *RunRepository) Create(ctx context.Context, run *domain.PayrollRun) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO payroll_runs (
			id, organization_id, pay_period, status,
			total_gross, total_deductions, total_net, employee_count, initiated_at
		) VALUES ($1, $2, $3, $4, 0, 0, 0, 0, $5)`,
		run.ID, run.OrganizationID, run.PayPeriod, run.Status, run.InitiatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return fmt.Errorf("Create: %w", domain.ErrPayrollAlreadyProcessed)
		}
		return fmt.Errorf("Create: %w", err)
	}
	return nil
}

// MarkProcessing moves a pending run into processing. The WHERE clause keeps
// terminal and already-processing runs untouched.
func (r *RunRepository) MarkProcessing(ctx context.Context, id uuid.UUID) error {
	return r.transition(ctx, id,
		`UPDATE payroll_runs SET status = 'processing' WHERE id = $1 AND status = 'pending'`,
		"MarkProcessing")
}

// MarkFailed is terminal and only reachable from pending or processing.
func (r *RunRepository) MarkFailed(ctx context.Context, id uuid.UUID) error {
	return r.transition(ctx, id,
		`UPDATE payroll_runs SET status = 'failed' WHERE id = $1 AND status IN ('pending', 'processing')`,
		"MarkFailed")
}

func (r *RunRepository) transition(ctx context.Context, id uuid.UUID, query, op string) error {
	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if rows == 0 {
		return fmt.Errorf("%s: %w", op, domain.ErrInvalidStatusTransition)
	}
	return nil
}

// Finalize completes a processing run, writing the aggregate totals exactly
// once. Finalizing anything but a processing run is a transition error.
func (r *RunRepository) Finalize(ctx context.Context, id uuid.UUID, totals domain.RunTotals, completedAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE payroll_runs
		 SET status = 'completed',
		     total_gross = $1,
		     total_deductions = $2,
		     total_net = $3,
		     employee_count = $4,
		     completed_at = $5
		 WHERE id = $6 AND status = 'processing'`,
		totals.Gross, totals.Deductions, totals.Net, totals.EmployeeCount, completedAt, id,
	)
	if err != nil {
		return fmt.Errorf("Finalize: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("Finalize: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("Finalize: %w", domain.ErrInvalidStatusTransition)
	}
	return nil
}

func (r *RunRepository) GetForOrganization(ctx context.Context, id, orgID uuid.UUID) (*domain.PayrollRun, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+runColumns+` FROM payroll_runs WHERE id = $1 AND organization_id = $2`,
		id, orgID,
	)
	run, err := scanRun(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetForOrganization: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetForOrganization: %w", err)
	}
	return run, nil
}

func (r *RunRepository) ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]domain.PayrollRun, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM payroll_runs
		 WHERE organization_id = $1
		 ORDER BY initiated_at DESC`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListByOrganization: %w", err)
	}
	defer rows.Close()

	var runs []domain.PayrollRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("ListByOrganization: scan: %w", err)
		}
		runs = append(runs, *run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListByOrganization: rows: %w", err)
	}
	return runs, nil
}

func scanRun(s scanner) (*domain.PayrollRun, error) {
	var run domain.PayrollRun
	err := s.Scan(
		&run.ID, &run.OrganizationID, &run.PayPeriod, &run.Status,
		&run.TotalGross, &run.TotalDeductions, &run.TotalNet,
		&run.EmployeeCount, &run.InitiatedAt, &run.CompletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &run, nil
}
