package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Employee struct {
	ID                uuid.UUID
	OrganizationID    uuid.UUID
	FirstName         string
	LastName          string
	Email             string
	BankAccountNumber string
	BankCode          string
	BankName          string
	BaseSalary        decimal.Decimal
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

func (e Employee) FullName() string {
	return e.FirstName + " " + e.LastName
}
