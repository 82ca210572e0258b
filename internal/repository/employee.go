package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/seyi-aluko/payrun/internal/domain"
)

const employeeColumns = `id, organization_id, first_name, last_name, email,
	bank_account_number, bank_code, bank_name, base_salary, is_active,
	created_at, updated_at`

type EmployeeRepository struct {
	db *sql.DB
}

func NewEmployeeRepository(db *sql.DB) *EmployeeRepository {
	return &EmployeeRepository{db: db}
}

// ListActiveByOrganization returns the employees a payroll run must pay, in
// insertion order. Deactivated employees are excluded.
func (r *EmployeeRepository) ListActiveByOrganization(ctx context.Context, orgID uuid.UUID) ([]domain.Employee, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT `+employeeColumns+` FROM employees
		 WHERE organization_id = $1 AND is_active = true
		 ORDER BY created_at`,
		orgID,
	)
	if err != nil {
		return nil, fmt.Errorf("ListActiveByOrganization: %w", err)
	}
	defer rows.Close()

	var employees []domain.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, fmt.Errorf("ListActiveByOrganization: scan: %w", err)
		}
		employees = append(employees, *e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("ListActiveByOrganization: rows: %w", err)
	}
	return employees, nil
}

func scanEmployee(s scanner) (*domain.Employee, error) {
	var e domain.Employee
	err := s.Scan(
		&e.ID, &e.OrganizationID, &e.FirstName, &e.LastName, &e.Email,
		&e.BankAccountNumber, &e.BankCode, &e.BankName, &e.BaseSalary, &e.IsActive,
		&e.CreatedAt, &e.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &e, nil
}
