package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type AdjustmentType string

const (
	AdjustmentOvertime            AdjustmentType = "overtime"
	AdjustmentBonus               AdjustmentType = "bonus"
	AdjustmentCommission          AdjustmentType = "commission"
	AdjustmentLateDayDeduction    AdjustmentType = "late_day_deduction"
	AdjustmentUnpaidLeaveDeduction AdjustmentType = "unpaid_leave_deduction"
	AdjustmentOtherDeduction      AdjustmentType = "other_deduction"
	AdjustmentOtherAddition       AdjustmentType = "other_addition"
)

func (t AdjustmentType) IsValid() bool {
	switch t {
	case AdjustmentOvertime, AdjustmentBonus, AdjustmentCommission,
		AdjustmentLateDayDeduction, AdjustmentUnpaidLeaveDeduction,
		AdjustmentOtherDeduction, AdjustmentOtherAddition:
		return true
	}
	return false
}

// IsAddition reports whether the adjustment increases gross salary. Every
// valid type is either an addition or a deduction; the calculation engine
// relies on this partition being total.
func (t AdjustmentType) IsAddition() bool {
	switch t {
	case AdjustmentOvertime, AdjustmentBonus, AdjustmentCommission, AdjustmentOtherAddition:
		return true
	}
	return false
}

func (t AdjustmentType) IsDeduction() bool {
	switch t {
	case AdjustmentLateDayDeduction, AdjustmentUnpaidLeaveDeduction, AdjustmentOtherDeduction:
		return true
	}
	return false
}

// PayrollAdjustment is a one-off addition or deduction applied to an employee
// for a single pay period. Immutable once created.
type PayrollAdjustment struct {
	ID             uuid.UUID
	EmployeeID     uuid.UUID
	OrganizationID uuid.UUID
	Type           AdjustmentType
	Amount         decimal.Decimal
	Description    string
	PayPeriod      string
	CreatedAt      time.Time
}

func (a PayrollAdjustment) Validate() error {
	if !a.Type.IsValid() {
		return fmt.Errorf("adjustment_type %q: %w", a.Type, ErrInvalidAdjustmentType)
	}
	if !a.Amount.IsPositive() {
		return fmt.Errorf("amount: %w", ErrInvalidAmount)
	}
	if err := ValidatePayPeriod(a.PayPeriod); err != nil {
		return err
	}
	return nil
}
