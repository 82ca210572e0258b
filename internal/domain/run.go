package domain

import (
	"fmt"
	"regexp"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RunStatus string

const (
	RunStatusPending    RunStatus = "pending"
	RunStatusProcessing RunStatus = "processing"
	RunStatusCompleted  RunStatus = "completed"
	RunStatusFailed     RunStatus = "failed"
)

func (s RunStatus) IsValid() bool {
	switch s {
	case RunStatusPending, RunStatusProcessing, RunStatusCompleted, RunStatusFailed:
		return true
	}
	return false
}

// IsTerminal reports whether no further transition may leave the status.
func (s RunStatus) IsTerminal() bool {
	return s == RunStatusCompleted || s == RunStatusFailed
}

// CanTransitionTo encodes the run lifecycle:
// pending -> processing -> completed | failed, and pending -> failed when the
// orchestrator cannot start at all. Terminal states accept nothing.
func (s RunStatus) CanTransitionTo(next RunStatus) bool {
	switch s {
	case RunStatusPending:
		return next == RunStatusProcessing || next == RunStatusFailed
	case RunStatusProcessing:
		return next == RunStatusCompleted || next == RunStatusFailed
	case RunStatusCompleted, RunStatusFailed:
		return false
	}
	return false
}

var payPeriodPattern = regexp.MustCompile(`^\d{4}-(0[1-9]|1[0-2])$`)

func ValidatePayPeriod(period string) error {
	if !payPeriodPattern.MatchString(period) {
		return fmt.Errorf("pay_period %q: %w", period, ErrInvalidPayPeriod)
	}
	return nil
}

// PayrollRun is one payroll execution for an organization and pay period.
// Totals stay zero until the run completes and are finalized exactly once.
type PayrollRun struct {
	ID              uuid.UUID
	OrganizationID  uuid.UUID
	PayPeriod       string
	Status          RunStatus
	TotalGross      decimal.Decimal
	TotalDeductions decimal.Decimal
	TotalNet        decimal.Decimal
	EmployeeCount   int
	InitiatedAt     time.Time
	CompletedAt     *time.Time
}

// RunTotals accumulates the aggregate figures written back to a run on
// completion. Only successful slips contribute.
type RunTotals struct {
	Gross         decimal.Decimal
	Deductions    decimal.Decimal
	Net           decimal.Decimal
	EmployeeCount int
}

func NewRunTotals() RunTotals {
	return RunTotals{
		Gross:      decimal.Zero,
		Deductions: decimal.Zero,
		Net:        decimal.Zero,
	}
}

func (t *RunTotals) Add(gross, deductions, net decimal.Decimal) {
	t.Gross = t.Gross.Add(gross)
	t.Deductions = t.Deductions.Add(deductions)
	t.Net = t.Net.Add(net)
	t.EmployeeCount++
}
