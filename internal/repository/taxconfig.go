package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/seyi-aluko/payrun/internal/domain"
)

const taxConfigColumns = `id, organization_id, paye_rate, pension_rate, nhf_rate, nhis_rate, created_at, updated_at`

type TaxConfigRepository struct {
	db *sql.DB
}

func NewTaxConfigRepository(db *sql.DB) *TaxConfigRepository {
	return &TaxConfigRepository{db: db}
}

func (r *TaxConfigRepository) GetByOrganization(ctx context.Context, orgID uuid.UUID) (*domain.TaxConfig, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+taxConfigColumns+` FROM tax_configs WHERE organization_id = $1`, orgID,
	)
	c, err := scanTaxConfig(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("GetByOrganization: %w", domain.ErrNotFound)
		}
		return nil, fmt.Errorf("GetByOrganization: %w", err)
	}
	return c, nil
}

// Upsert keeps at most one config per organization.
func (r *TaxConfigRepository) Upsert(ctx context.Context, cfg *domain.TaxConfig) error {
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}

	_, err := r.db.ExecContext(ctx,
		`INSERT INTO tax_configs (id, organization_id, paye_rate, pension_rate, nhf_rate, nhis_rate, created_at, updated_at)
		 VALUES ($1, $2, $3, $4, $5, $6, now(), now())
		 ON CONFLICT (organization_id) DO UPDATE
		 SET paye_rate = EXCLUDED.paye_rate,
		     pension_rate = EXCLUDED.pension_rate,
		     nhf_rate = EXCLUDED.nhf_rate,
		     nhis_rate = EXCLUDED.nhis_rate,
		     updated_at = now()`,
		cfg.ID, cfg.OrganizationID, cfg.PayeRate, cfg.PensionRate, cfg.NHFRate, cfg.NHISRate,
	)
	if err != nil {
		return fmt.Errorf("Upsert: %w", err)
	}
	return nil
}

func scanTaxConfig(s scanner) (*domain.TaxConfig, error) {
	var c domain.TaxConfig
	err := s.Scan(
		&c.ID, &c.OrganizationID, &c.PayeRate, &c.PensionRate, &c.NHFRate, &c.NHISRate,
		&c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}
