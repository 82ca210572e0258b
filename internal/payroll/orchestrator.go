package payroll

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/seyi-aluko/payrun/internal/domain"
	"github.com/seyi-aluko/payrun/internal/gateway"
	"github.com/seyi-aluko/payrun/internal/logging"
	"github.com/seyi-aluko/payrun/internal/notify"
)

type walletStore interface {
	WalletBalance(ctx context.Context, id uuid.UUID) (decimal.Decimal, error)
	DebitWallet(ctx context.Context, id uuid.UUID, amount decimal.Decimal) error
}

type employeeLister interface {
	ListActiveByOrganization(ctx context.Context, orgID uuid.UUID) ([]domain.Employee, error)
}

type taxConfigGetter interface {
	GetByOrganization(ctx context.Context, orgID uuid.UUID) (*domain.TaxConfig, error)
}

type adjustmentLister interface {
	ListForEmployeePeriod(ctx context.Context, employeeID uuid.UUID, payPeriod string) ([]domain.PayrollAdjustment, error)
}

type runLifecycle interface {
	MarkProcessing(ctx context.Context, id uuid.UUID) error
	MarkFailed(ctx context.Context, id uuid.UUID) error
	Finalize(ctx context.Context, id uuid.UUID, totals domain.RunTotals, completedAt time.Time) error
}

type slipWriter interface {
	Upsert(ctx context.Context, slip *domain.PayrollSlip) error
}

type transferClient interface {
	SubmitTransfer(ctx context.Context, req gateway.TransferRequest) (*gateway.TransferResult, error)
}

// Runner executes one payroll run end to end: computes every active
// employee's slip, pays it out through the disbursement gateway and records
// the per-employee outcome. One employee failing never aborts the run.
type Runner struct {
	wallets     walletStore
	employees   employeeLister
	taxConfigs  taxConfigGetter
	adjustments adjustmentLister
	runs        runLifecycle
	slips       slipWriter
	transfers   transferClient
	mailer      notify.Mailer
	locks       *orgLocks
}

func NewRunner(
	wallets walletStore,
	employees employeeLister,
	taxConfigs taxConfigGetter,
	adjustments adjustmentLister,
	runs runLifecycle,
	slips slipWriter,
	transfers transferClient,
	mailer notify.Mailer,
) *Runner {
	return &Runner{
		wallets:     wallets,
		employees:   employees,
		taxConfigs:  taxConfigs,
		adjustments: adjustments,
		runs:        runs,
		slips:       slips,
		transfers:   transfers,
		mailer:      mailer,
		locks:       newOrgLocks(),
	}
}

// Process drives the run lifecycle: processing -> completed, or failed when
// the run cannot start (no active employees, employee load error, lost the
// pending->processing race). Employee-level payment failures are recorded on
// slips and do not fail the run.
func (r *Runner) Process(ctx context.Context, run domain.PayrollRun, orgName string) {
	ctx = logging.WithAttrs(ctx,
		"run_id", run.ID,
		"organization_id", run.OrganizationID,
		"pay_period", run.PayPeriod,
	)
	log := logging.FromContext(ctx)

	if err := r.runs.MarkProcessing(ctx, run.ID); err != nil {
		log.Error("cannot move run to processing", "error", err)
		return
	}

	employees, err := r.employees.ListActiveByOrganization(ctx, run.OrganizationID)
	if err != nil {
		log.Error("loading active employees failed", "error", err)
		r.fail(ctx, run.ID)
		return
	}
	if len(employees) == 0 {
		log.Warn("no active employees, run failed")
		r.fail(ctx, run.ID)
		return
	}

	taxCfg := r.loadTaxConfig(ctx, run.OrganizationID)

	totals := domain.NewRunTotals()
	for _, emp := range employees {
		r.processEmployee(ctx, run, orgName, emp, taxCfg, &totals)
	}

	if err := r.runs.Finalize(ctx, run.ID, totals, time.Now().UTC()); err != nil {
		log.Error("finalizing run failed", "error", err)
		return
	}

	log.Info("payroll run completed",
		"paid_employees", totals.EmployeeCount,
		"total_net", totals.Net,
	)
}

// loadTaxConfig falls back to zero rates when the organization has none
// configured. A read error also degrades to zero rates rather than failing
// the whole run.
func (r *Runner) loadTaxConfig(ctx context.Context, orgID uuid.UUID) domain.TaxConfig {
	cfg, err := r.taxConfigs.GetByOrganization(ctx, orgID)
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			logging.FromContext(ctx).Warn("loading tax config failed, using zero rates", "error", err)
		}
		return domain.ZeroTaxConfig(orgID)
	}
	return *cfg
}

func (r *Runner) processEmployee(
	ctx context.Context,
	run domain.PayrollRun,
	orgName string,
	emp domain.Employee,
	taxCfg domain.TaxConfig,
	totals *domain.RunTotals,
) {
	log := logging.FromContext(ctx).With("employee_id", emp.ID)

	adjustments, err := r.adjustments.ListForEmployeePeriod(ctx, emp.ID, run.PayPeriod)
	if err != nil {
		log.Warn("loading adjustments failed, proceeding without", "error", err)
		adjustments = nil
	}

	calc := Calculate(emp, adjustments, taxCfg)

	// The lock covers balance check, transfer and debit so concurrent runs
	// for the same organization cannot overdraw the wallet between the check
	// and the debit.
	unlock := r.locks.Lock(run.OrganizationID)

	balance, err := r.wallets.WalletBalance(ctx, run.OrganizationID)
	if err != nil {
		unlock()
		log.Error("reading wallet balance failed, skipping employee", "error", err)
		return
	}
	if balance.LessThan(calc.NetSalary) {
		unlock()
		log.Warn("insufficient wallet balance",
			"balance", balance,
			"net_salary", calc.NetSalary,
		)
		r.recordSlip(ctx, run, emp, calc, nil, domain.PaymentStatusFailed)
		return
	}

	res, err := r.transfers.SubmitTransfer(ctx, gateway.TransferRequest{
		Amount:        calc.NetSalary,
		Reference:     fmt.Sprintf("PAY-%s-%s", run.ID, emp.ID),
		Narration:     fmt.Sprintf("%s Salary - %s", orgName, run.PayPeriod),
		BankCode:      emp.BankCode,
		AccountNumber: emp.BankAccountNumber,
		AccountName:   emp.FullName(),
	})
	if err != nil {
		unlock()
		log.Warn("salary transfer failed", "error", err)
		r.recordSlip(ctx, run, emp, calc, nil, domain.PaymentStatusFailed)
		return
	}

	if err := r.wallets.DebitWallet(ctx, run.OrganizationID, calc.NetSalary); err != nil {
		// Money already left via the gateway; reconciliation has to settle
		// the ledger, the run keeps going.
		log.Error("wallet debit failed after successful transfer", "error", err)
	}
	unlock()

	totals.Add(calc.GrossSalary, calc.TotalDeductions, calc.NetSalary)
	slip := r.recordSlip(ctx, run, emp, calc, &res.Reference, domain.PaymentStatusSuccess)

	if slip != nil {
		if err := r.mailer.SendPayslip(ctx, emp, orgName, *slip); err != nil {
			log.Warn("payslip email failed", "error", err)
		}
	}
}

func (r *Runner) recordSlip(
	ctx context.Context,
	run domain.PayrollRun,
	emp domain.Employee,
	calc CalculatedSlip,
	gatewayRef *string,
	status domain.PaymentStatus,
) *domain.PayrollSlip {
	slip := &domain.PayrollSlip{
		ID:               uuid.New(),
		PayrollRunID:     run.ID,
		EmployeeID:       emp.ID,
		OrganizationID:   run.OrganizationID,
		PayPeriod:        run.PayPeriod,
		BaseSalary:       calc.BaseSalary,
		TotalAdditions:   calc.TotalAdditions,
		GrossSalary:      calc.GrossSalary,
		PayeTax:          calc.PayeTax,
		PensionDeduction: calc.PensionDeduction,
		NHFDeduction:     calc.NHFDeduction,
		NHISDeduction:    calc.NHISDeduction,
		OtherDeductions:  calc.OtherDeductions,
		TotalDeductions:  calc.TotalDeductions,
		NetSalary:        calc.NetSalary,
		GatewayReference: gatewayRef,
		PaymentStatus:    status,
		CreatedAt:        time.Now().UTC(),
	}
	if err := r.slips.Upsert(ctx, slip); err != nil {
		logging.FromContext(ctx).Error("persisting payroll slip failed",
			"employee_id", emp.ID,
			"error", err,
		)
		return nil
	}
	return slip
}

func (r *Runner) fail(ctx context.Context, runID uuid.UUID) {
	if err := r.runs.MarkFailed(ctx, runID); err != nil {
		logging.FromContext(ctx).Error("cannot move run to failed", "error", err)
	}
}
