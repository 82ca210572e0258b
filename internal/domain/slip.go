package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentStatusSuccess PaymentStatus = "success"
	PaymentStatusFailed  PaymentStatus = "failed"
)

// PayrollSlip is the durable per-employee outcome record of a run. One slip
// exists per (run, employee); re-processing a run overwrites it rather than
// appending a duplicate.
type PayrollSlip struct {
	ID               uuid.UUID
	PayrollRunID     uuid.UUID
	EmployeeID       uuid.UUID
	OrganizationID   uuid.UUID
	PayPeriod        string
	BaseSalary       decimal.Decimal
	TotalAdditions   decimal.Decimal
	GrossSalary      decimal.Decimal
	PayeTax          decimal.Decimal
	PensionDeduction decimal.Decimal
	NHFDeduction     decimal.Decimal
	NHISDeduction    decimal.Decimal
	OtherDeductions  decimal.Decimal
	TotalDeductions  decimal.Decimal
	NetSalary        decimal.Decimal
	GatewayReference *string
	PaymentStatus    PaymentStatus
	CreatedAt        time.Time
}
