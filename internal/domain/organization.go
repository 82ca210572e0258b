package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Organization struct {
	ID            uuid.UUID
	Name          string
	Email         string
	PasswordHash  string
	WalletBalance decimal.Decimal
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
