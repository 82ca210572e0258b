package payroll

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/seyi-aluko/payrun/internal/domain"
)

// CalculatedSlip is the engine's output for one employee. It lives only for
// the duration of per-employee processing; the persisted record is
// domain.PayrollSlip.
type CalculatedSlip struct {
	EmployeeID       uuid.UUID
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
}

var hundred = decimal.NewFromInt(100)

// Calculate computes an employee's payslip figures from the base salary, the
// adjustments tagged with the run's pay period, and the organization's tax
// rates. Pure and deterministic: no I/O, no error paths, exact decimal
// arithmetic with no intermediate rounding. Net salary is clamped at zero;
// excess deduction is absorbed, never carried forward.
func Calculate(employee domain.Employee, adjustments []domain.PayrollAdjustment, taxCfg domain.TaxConfig) CalculatedSlip {
	totalAdditions := decimal.Zero
	otherDeductions := decimal.Zero

	for _, a := range adjustments {
		switch {
		case a.Type.IsAddition():
			totalAdditions = totalAdditions.Add(a.Amount)
		case a.Type.IsDeduction():
			otherDeductions = otherDeductions.Add(a.Amount)
		}
	}

	grossSalary := employee.BaseSalary.Add(totalAdditions)

	payeTax := grossSalary.Mul(taxCfg.PayeRate).Div(hundred)
	pensionDeduction := grossSalary.Mul(taxCfg.PensionRate).Div(hundred)
	nhfDeduction := grossSalary.Mul(taxCfg.NHFRate).Div(hundred)
	nhisDeduction := grossSalary.Mul(taxCfg.NHISRate).Div(hundred)

	totalDeductions := payeTax.
		Add(pensionDeduction).
		Add(nhfDeduction).
		Add(nhisDeduction).
		Add(otherDeductions)

	netSalary := grossSalary.Sub(totalDeductions)
	if netSalary.IsNegative() {
		netSalary = decimal.Zero
	}

	return CalculatedSlip{
		EmployeeID:       employee.ID,
		BaseSalary:       employee.BaseSalary,
		TotalAdditions:   totalAdditions,
		GrossSalary:      grossSalary,
		PayeTax:          payeTax,
		PensionDeduction: pensionDeduction,
		NHFDeduction:     nhfDeduction,
		NHISDeduction:    nhisDeduction,
		OtherDeductions:  otherDeductions,
		TotalDeductions:  totalDeductions,
		NetSalary:        netSalary,
	}
}
