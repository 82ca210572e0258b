package handler

import "net/http"

type AppError struct {
	Status  int
	Code    string
	Message string
}

func (e *AppError) Error() string { return e.Message }

var (
	ErrInvalidRequest   = &AppError{http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body"}
	ErrValidationFailed = &AppError{http.StatusBadRequest, "VALIDATION_FAILED", "Validation failed"}
	ErrResourceNotFound = &AppError{http.StatusNotFound, "RESOURCE_NOT_FOUND", "Resource not found"}
	ErrInternalError    = &AppError{http.StatusInternalServerError, "INTERNAL_ERROR", "An unexpected error occurred"}

	ErrInvalidPayPeriod        = &AppError{http.StatusBadRequest, "INVALID_PAY_PERIOD", "Pay period must be formatted YYYY-MM"}
	ErrPayrollAlreadyProcessed = &AppError{http.StatusUnprocessableEntity, "PAYROLL_ALREADY_PROCESSED", "Payroll for this period has already been processed"}
	ErrInsufficientFunds       = &AppError{http.StatusUnprocessableEntity, "INSUFFICIENT_FUNDS", "Insufficient wallet balance"}
)
