package testutil

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/seyi-aluko/payrun/internal/domain"
)

func SeedOrganization(t *testing.T, db *sql.DB, name string, walletBalance decimal.Decimal) uuid.UUID {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte("password123"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("hash password: %v", err)
	}

	id := uuid.New()
	_, err = db.Exec(
		`INSERT INTO organizations (id, name, email, password_hash, wallet_balance)
		 VALUES ($1, $2, $3, $4, $5)`,
		id, name, name+"@example.com", string(hash), walletBalance,
	)
	if err != nil {
		t.Fatalf("seed organization: %v", err)
	}
	return id
}

func SeedEmployee(t *testing.T, db *sql.DB, orgID uuid.UUID, firstName, lastName string, baseSalary decimal.Decimal, active bool) uuid.UUID {
	t.Helper()

	id := uuid.New()
	_, err := db.Exec(
		`INSERT INTO employees
		   (id, organization_id, first_name, last_name, email,
		    bank_account_number, bank_code, bank_name, base_salary, is_active)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		id, orgID, firstName, lastName, firstName+"."+lastName+"@example.com",
		"0123456789", "058", "Test Bank", baseSalary, active,
	)
	if err != nil {
		t.Fatalf("seed employee: %v", err)
	}
	return id
}

func SeedTaxConfig(t *testing.T, db *sql.DB, orgID uuid.UUID, paye, pension, nhf, nhis string) {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO tax_configs (id, organization_id, paye_rate, pension_rate, nhf_rate, nhis_rate)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		uuid.New(), orgID, paye, pension, nhf, nhis,
	)
	if err != nil {
		t.Fatalf("seed tax config: %v", err)
	}
}

func SeedAdjustment(t *testing.T, db *sql.DB, orgID, employeeID uuid.UUID, typ domain.AdjustmentType, amount decimal.Decimal, payPeriod string) {
	t.Helper()

	_, err := db.Exec(
		`INSERT INTO payroll_adjustments
		   (id, employee_id, organization_id, adjustment_type, amount, description, pay_period)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		uuid.New(), employeeID, orgID, string(typ), amount, "seeded", payPeriod,
	)
	if err != nil {
		t.Fatalf("seed adjustment: %v", err)
	}
}

func GetWalletBalance(t *testing.T, db *sql.DB, orgID uuid.UUID) decimal.Decimal {
	t.Helper()

	var balance decimal.Decimal
	err := db.QueryRow(
		`SELECT wallet_balance FROM organizations WHERE id = $1`, orgID,
	).Scan(&balance)
	if err != nil {
		t.Fatalf("read wallet balance: %v", err)
	}
	return balance
}
