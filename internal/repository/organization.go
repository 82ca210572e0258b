package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/seyi-aluko/payrun/internal/domain"
)

const organizationColumns = `id, name, email, password_hash, wallet_balance, created_at, updated_at`

type OrganizationRepository struct {
	db *sql.DB
}

func NewOrganizationRepository(db *sql.DB) *OrganizationRepository {
	return &OrganizationRepository{db: db}
}

func (r *OrganizationRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+organizationColumns+` FROM organizations WHERE id = $1`, id,
	)
	o, err := scanOrganization(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByID: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByID: %w", err)
	}
	return o, nil
}

func (r *OrganizationRepository) WalletBalance(ctx context.Context, id uuid.UUID) (decimal.Decimal, error) {
	var balance decimal.Decimal
	err := r.db.QueryRowContext(ctx,
		`SELECT wallet_balance FROM organizations WHERE id = $1`, id,
	).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return decimal.Zero, fmt.Errorf("WalletBalance: %w", domain.ErrNotFound)
		}
		return decimal.Zero, fmt.Errorf("WalletBalance: %w", err)
	}
	return balance, nil
}

// DebitWallet decrements the wallet only when the balance covers the amount.
// The guard runs inside the UPDATE so concurrent debits cannot interleave a
// stale read with the write; zero rows means the funds were not there.
func (r *OrganizationRepository) DebitWallet(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE organizations
		 SET wallet_balance = wallet_balance - $1, updated_at = now()
		 WHERE id = $2 AND wallet_balance >= $1`,
		amount, id,
	)
	if err != nil {
		return fmt.Errorf("DebitWallet: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("DebitWallet: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("DebitWallet: %w", domain.ErrInsufficientFunds)
	}
	return nil
}

// CreditWallet records an external top-up landing in the store.
func (r *OrganizationRepository) CreditWallet(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE organizations
		 SET wallet_balance = wallet_balance + $1, updated_at = now()
		 WHERE id = $2`,
		amount, id,
	)
	if err != nil {
		return fmt.Errorf("CreditWallet: %w", err)
	}

	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("CreditWallet: rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("CreditWallet: %w", domain.ErrNotFound)
	}
	return nil
}

func scanOrganization(s scanner) (*domain.Organization, error) {
	var o domain.Organization
	err := s.Scan(
		&o.ID, &o.Name, &o.Email, &o.PasswordHash, &o.WalletBalance,
		&o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &o, nil
}
