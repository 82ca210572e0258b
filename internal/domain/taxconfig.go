package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxConfig holds an organization's statutory deduction rates, each expressed
// as a percentage (7.5 means 7.5%). At most one config exists per organization;
// an organization without one is treated as all-zero rates.
type TaxConfig struct {
	ID             uuid.UUID
	OrganizationID uuid.UUID
	PayeRate       decimal.Decimal
	PensionRate    decimal.Decimal
	NHFRate        decimal.Decimal
	NHISRate       decimal.Decimal
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// ZeroTaxConfig is the fallback for organizations that have not configured
// rates yet: every component computes to zero and net equals gross.
func ZeroTaxConfig(orgID uuid.UUID) TaxConfig {
	return TaxConfig{
		ID:             uuid.New(),
		OrganizationID: orgID,
		PayeRate:       decimal.Zero,
		PensionRate:    decimal.Zero,
		NHFRate:        decimal.Zero,
		NHISRate:       decimal.Zero,
	}
}

var hundred = decimal.NewFromInt(100)

func (c TaxConfig) Validate() error {
	rates := map[string]decimal.Decimal{
		"paye_rate":    c.PayeRate,
		"pension_rate": c.PensionRate,
		"nhf_rate":     c.NHFRate,
		"nhis_rate":    c.NHISRate,
	}
	for name, rate := range rates {
		if rate.IsNegative() || rate.GreaterThan(hundred) {
			return fmt.Errorf("%s: %w", name, ErrInvalidRate)
		}
	}
	return nil
}
