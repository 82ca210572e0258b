package domain

import "errors"

var (
	ErrNotFound                = errors.New("not found")
	ErrInsufficientFunds       = errors.New("insufficient wallet balance")
	ErrPayrollAlreadyProcessed = errors.New("payroll already processed for this period")
	ErrInvalidPayPeriod        = errors.New("pay period must be in YYYY-MM format")
	ErrInvalidAmount           = errors.New("amount must be greater than zero")
	ErrInvalidAdjustmentType   = errors.New("invalid adjustment type")
	ErrInvalidRate             = errors.New("rates must be between 0 and 100")
	ErrInvalidStatusTransition = errors.New("invalid payroll run status transition")
	ErrInvalidRequest          = errors.New("invalid request")
)
