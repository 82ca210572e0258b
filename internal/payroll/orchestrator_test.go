package payroll

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seyi-aluko/payrun/internal/domain"
	"github.com/seyi-aluko/payrun/internal/gateway"
)

type fakeWallets struct {
	mu         sync.Mutex
	balance    decimal.Decimal
	debits     []decimal.Decimal
	balanceErr error
	debitErr   error
}

func (f *fakeWallets) WalletBalance(_ context.Context, _ uuid.UUID) (decimal.Decimal, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.balanceErr != nil {
		return decimal.Zero, f.balanceErr
	}
	return f.balance, nil
}

func (f *fakeWallets) DebitWallet(_ context.Context, _ uuid.UUID, amount decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.debitErr != nil {
		return f.debitErr
	}
	if f.balance.LessThan(amount) {
		return domain.ErrInsufficientFunds
	}
	f.balance = f.balance.Sub(amount)
	f.debits = append(f.debits, amount)
	return nil
}

type fakeEmployees struct {
	employees []domain.Employee
	err       error
}

func (f *fakeEmployees) ListActiveByOrganization(context.Context, uuid.UUID) ([]domain.Employee, error) {
	return f.employees, f.err
}

type fakeTaxConfigs struct {
	cfg *domain.TaxConfig
	err error
}

func (f *fakeTaxConfigs) GetByOrganization(_ context.Context, orgID uuid.UUID) (*domain.TaxConfig, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.cfg == nil {
		return nil, fmt.Errorf("GetByOrganization: %w", domain.ErrNotFound)
	}
	return f.cfg, nil
}

type fakeAdjustments struct {
	byEmployee map[uuid.UUID][]domain.PayrollAdjustment
	err        error
}

func (f *fakeAdjustments) ListForEmployeePeriod(_ context.Context, employeeID uuid.UUID, _ string) ([]domain.PayrollAdjustment, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.byEmployee[employeeID], nil
}

type fakeRuns struct {
	mu          sync.Mutex
	status      map[uuid.UUID]domain.RunStatus
	totals      map[uuid.UUID]domain.RunTotals
	completedAt map[uuid.UUID]time.Time
}

func newFakeRuns() *fakeRuns {
	return &fakeRuns{
		status:      make(map[uuid.UUID]domain.RunStatus),
		totals:      make(map[uuid.UUID]domain.RunTotals),
		completedAt: make(map[uuid.UUID]time.Time),
	}
}

func (f *fakeRuns) MarkProcessing(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status[id] != domain.RunStatusPending {
		return domain.ErrInvalidStatusTransition
	}
	f.status[id] = domain.RunStatusProcessing
	return nil
}

func (f *fakeRuns) MarkFailed(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status[id].IsTerminal() {
		return domain.ErrInvalidStatusTransition
	}
	f.status[id] = domain.RunStatusFailed
	return nil
}

func (f *fakeRuns) Finalize(_ context.Context, id uuid.UUID, totals domain.RunTotals, completedAt time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.status[id] != domain.RunStatusProcessing {
		return domain.ErrInvalidStatusTransition
	}
	f.status[id] = domain.RunStatusCompleted
	f.totals[id] = totals
	f.completedAt[id] = completedAt
	return nil
}

func (f *fakeRuns) statusOf(id uuid.UUID) domain.RunStatus {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.status[id]
}

type fakeSlips struct {
	mu    sync.Mutex
	slips map[string]domain.PayrollSlip
	err   error
}

func newFakeSlips() *fakeSlips {
	return &fakeSlips{slips: make(map[string]domain.PayrollSlip)}
}

func (f *fakeSlips) Upsert(_ context.Context, slip *domain.PayrollSlip) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.slips[slip.PayrollRunID.String()+"/"+slip.EmployeeID.String()] = *slip
	return nil
}

func (f *fakeSlips) forEmployee(runID, empID uuid.UUID) (domain.PayrollSlip, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	s, ok := f.slips[runID.String()+"/"+empID.String()]
	return s, ok
}

func (f *fakeSlips) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.slips)
}

type fakeTransfers struct {
	mu       sync.Mutex
	requests []gateway.TransferRequest
	failFor  map[string]bool // bank code -> fail
}

func (f *fakeTransfers) SubmitTransfer(_ context.Context, req gateway.TransferRequest) (*gateway.TransferResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if f.failFor[req.BankCode] {
		return nil, &gateway.Error{Op: "SubmitTransfer", Message: "destination bank unavailable"}
	}
	return &gateway.TransferResult{Reference: req.Reference, Status: "SUCCESS"}, nil
}

type fakeMailer struct {
	mu   sync.Mutex
	sent []uuid.UUID
	err  error
}

func (f *fakeMailer) SendPayslip(_ context.Context, emp domain.Employee, _ string, _ domain.PayrollSlip) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sent = append(f.sent, emp.ID)
	return nil
}

type runnerFixture struct {
	wallets     *fakeWallets
	employees   *fakeEmployees
	taxConfigs  *fakeTaxConfigs
	adjustments *fakeAdjustments
	runs        *fakeRuns
	slips       *fakeSlips
	transfers   *fakeTransfers
	mailer      *fakeMailer
	runner      *Runner
}

func newRunnerFixture() *runnerFixture {
	f := &runnerFixture{
		wallets:     &fakeWallets{balance: dec("1000000")},
		employees:   &fakeEmployees{},
		taxConfigs:  &fakeTaxConfigs{},
		adjustments: &fakeAdjustments{byEmployee: make(map[uuid.UUID][]domain.PayrollAdjustment)},
		runs:        newFakeRuns(),
		slips:       newFakeSlips(),
		transfers:   &fakeTransfers{failFor: make(map[string]bool)},
		mailer:      &fakeMailer{},
	}
	f.runner = NewRunner(
		f.wallets, f.employees, f.taxConfigs, f.adjustments,
		f.runs, f.slips, f.transfers, f.mailer,
	)
	return f
}

func (f *runnerFixture) newRun(orgID uuid.UUID) domain.PayrollRun {
	run := domain.PayrollRun{
		ID:             uuid.New(),
		OrganizationID: orgID,
		PayPeriod:      "2025-06",
		Status:         domain.RunStatusPending,
		InitiatedAt:    time.Now().UTC(),
	}
	f.runs.status[run.ID] = domain.RunStatusPending
	return run
}

func activeEmployee(orgID uuid.UUID, baseSalary, bankCode string) domain.Employee {
	return domain.Employee{
		ID:                uuid.New(),
		OrganizationID:    orgID,
		FirstName:         "Ada",
		LastName:          "Obi",
		Email:             "ada.obi@example.com",
		BankAccountNumber: "0123456789",
		BankCode:          bankCode,
		BankName:          "Test Bank",
		BaseSalary:        dec(baseSalary),
		IsActive:          true,
	}
}

func TestProcessHappyPath(t *testing.T) {
	f := newRunnerFixture()
	orgID := uuid.New()

	emp1 := activeEmployee(orgID, "300000", "058")
	emp2 := activeEmployee(orgID, "200000", "044")
	f.employees.employees = []domain.Employee{emp1, emp2}
	f.taxConfigs.cfg = &domain.TaxConfig{
		OrganizationID: orgID,
		PayeRate:       dec("7.5"),
		PensionRate:    dec("8"),
		NHFRate:        dec("2.5"),
		NHISRate:       dec("1.75"),
	}
	f.adjustments.byEmployee[emp1.ID] = []domain.PayrollAdjustment{
		adjustment(domain.AdjustmentBonus, "50000"),
	}
	f.wallets.balance = dec("1000000")

	run := f.newRun(orgID)
	f.runner.Process(context.Background(), run, "Acme Ltd")

	require.Equal(t, domain.RunStatusCompleted, f.runs.statusOf(run.ID))

	totals := f.runs.totals[run.ID]
	assert.Equal(t, 2, totals.EmployeeCount)
	// emp1: gross 350000, net 280875; emp2: gross 200000, net 160500
	assertDecEqual(t, dec("550000"), totals.Gross, "total gross")
	assertDecEqual(t, dec("441375"), totals.Net, "total net")
	assertDecEqual(t, dec("108625"), totals.Deductions, "total deductions")

	// wallet debited by the sum of both nets
	assertDecEqual(t, dec("558625"), f.wallets.balance, "remaining balance")
	assert.Len(t, f.wallets.debits, 2)

	slip1, ok := f.slips.forEmployee(run.ID, emp1.ID)
	require.True(t, ok)
	assert.Equal(t, domain.PaymentStatusSuccess, slip1.PaymentStatus)
	require.NotNil(t, slip1.GatewayReference)
	assert.Equal(t, fmt.Sprintf("PAY-%s-%s", run.ID, emp1.ID), *slip1.GatewayReference)
	assertDecEqual(t, dec("280875"), slip1.NetSalary, "emp1 net")

	require.Len(t, f.transfers.requests, 2)
	assert.Equal(t, "Acme Ltd Salary - 2025-06", f.transfers.requests[0].Narration)
	assert.Equal(t, emp1.FullName(), f.transfers.requests[0].AccountName)

	assert.Len(t, f.mailer.sent, 2)
}

func TestProcessInsufficientFunds(t *testing.T) {
	f := newRunnerFixture()
	orgID := uuid.New()
	emp := activeEmployee(orgID, "300000", "058")
	f.employees.employees = []domain.Employee{emp}
	f.wallets.balance = dec("1000")

	run := f.newRun(orgID)
	f.runner.Process(context.Background(), run, "Acme Ltd")

	// shortfall is an employee-level failure, the run still completes
	require.Equal(t, domain.RunStatusCompleted, f.runs.statusOf(run.ID))
	assert.Equal(t, 0, f.runs.totals[run.ID].EmployeeCount)
	assertDecEqual(t, decimal.Zero, f.runs.totals[run.ID].Net, "total net")

	slip, ok := f.slips.forEmployee(run.ID, emp.ID)
	require.True(t, ok)
	assert.Equal(t, domain.PaymentStatusFailed, slip.PaymentStatus)
	assert.Nil(t, slip.GatewayReference)

	assert.Empty(t, f.transfers.requests, "no transfer attempted on shortfall")
	assertDecEqual(t, dec("1000"), f.wallets.balance, "wallet untouched")
	assert.Empty(t, f.mailer.sent)
}

func TestProcessGatewayFailureIsolated(t *testing.T) {
	f := newRunnerFixture()
	orgID := uuid.New()
	failing := activeEmployee(orgID, "100000", "999")
	healthy := activeEmployee(orgID, "100000", "058")
	f.employees.employees = []domain.Employee{failing, healthy}
	f.transfers.failFor["999"] = true

	run := f.newRun(orgID)
	f.runner.Process(context.Background(), run, "Acme Ltd")

	require.Equal(t, domain.RunStatusCompleted, f.runs.statusOf(run.ID))
	assert.Equal(t, 1, f.runs.totals[run.ID].EmployeeCount)
	assertDecEqual(t, dec("100000"), f.runs.totals[run.ID].Net, "only healthy employee counted")

	failedSlip, ok := f.slips.forEmployee(run.ID, failing.ID)
	require.True(t, ok)
	assert.Equal(t, domain.PaymentStatusFailed, failedSlip.PaymentStatus)

	okSlip, ok := f.slips.forEmployee(run.ID, healthy.ID)
	require.True(t, ok)
	assert.Equal(t, domain.PaymentStatusSuccess, okSlip.PaymentStatus)

	// only the successful payment debits the wallet
	assert.Len(t, f.wallets.debits, 1)
}

func TestProcessNoActiveEmployeesFailsRun(t *testing.T) {
	f := newRunnerFixture()
	run := f.newRun(uuid.New())

	f.runner.Process(context.Background(), run, "Acme Ltd")

	assert.Equal(t, domain.RunStatusFailed, f.runs.statusOf(run.ID))
	assert.Equal(t, 0, f.slips.count())
}

func TestProcessEmployeeLoadErrorFailsRun(t *testing.T) {
	f := newRunnerFixture()
	f.employees.err = errors.New("connection reset")
	run := f.newRun(uuid.New())

	f.runner.Process(context.Background(), run, "Acme Ltd")

	assert.Equal(t, domain.RunStatusFailed, f.runs.statusOf(run.ID))
	assert.Empty(t, f.transfers.requests)
}

func TestProcessMissingTaxConfigUsesZeroRates(t *testing.T) {
	f := newRunnerFixture()
	orgID := uuid.New()
	emp := activeEmployee(orgID, "250000", "058")
	f.employees.employees = []domain.Employee{emp}
	f.taxConfigs.cfg = nil

	run := f.newRun(orgID)
	f.runner.Process(context.Background(), run, "Acme Ltd")

	require.Equal(t, domain.RunStatusCompleted, f.runs.statusOf(run.ID))
	slip, ok := f.slips.forEmployee(run.ID, emp.ID)
	require.True(t, ok)
	assertDecEqual(t, decimal.Zero, slip.TotalDeductions, "no deductions without config")
	assertDecEqual(t, dec("250000"), slip.NetSalary, "net equals gross")
}

func TestProcessTaxConfigReadErrorUsesZeroRates(t *testing.T) {
	f := newRunnerFixture()
	orgID := uuid.New()
	emp := activeEmployee(orgID, "250000", "058")
	f.employees.employees = []domain.Employee{emp}
	f.taxConfigs.err = errors.New("timeout")

	run := f.newRun(orgID)
	f.runner.Process(context.Background(), run, "Acme Ltd")

	require.Equal(t, domain.RunStatusCompleted, f.runs.statusOf(run.ID))
	slip, _ := f.slips.forEmployee(run.ID, emp.ID)
	assertDecEqual(t, dec("250000"), slip.NetSalary, "net equals gross")
}

func TestProcessAdjustmentLoadErrorDegradesToNone(t *testing.T) {
	f := newRunnerFixture()
	orgID := uuid.New()
	emp := activeEmployee(orgID, "100000", "058")
	f.employees.employees = []domain.Employee{emp}
	f.adjustments.err = errors.New("timeout")

	run := f.newRun(orgID)
	f.runner.Process(context.Background(), run, "Acme Ltd")

	require.Equal(t, domain.RunStatusCompleted, f.runs.statusOf(run.ID))
	slip, ok := f.slips.forEmployee(run.ID, emp.ID)
	require.True(t, ok)
	assertDecEqual(t, decimal.Zero, slip.TotalAdditions, "base salary only")
	assert.Equal(t, domain.PaymentStatusSuccess, slip.PaymentStatus)
}

func TestProcessWalletReadErrorSkipsEmployee(t *testing.T) {
	f := newRunnerFixture()
	orgID := uuid.New()
	emp := activeEmployee(orgID, "100000", "058")
	f.employees.employees = []domain.Employee{emp}
	f.wallets.balanceErr = errors.New("connection reset")

	run := f.newRun(orgID)
	f.runner.Process(context.Background(), run, "Acme Ltd")

	// no slip at all for the skipped employee, run still completes
	require.Equal(t, domain.RunStatusCompleted, f.runs.statusOf(run.ID))
	assert.Equal(t, 0, f.slips.count())
	assert.Empty(t, f.transfers.requests)
}

func TestProcessMailerFailureAbsorbed(t *testing.T) {
	f := newRunnerFixture()
	orgID := uuid.New()
	emp := activeEmployee(orgID, "100000", "058")
	f.employees.employees = []domain.Employee{emp}
	f.mailer.err = &notifyError{}

	run := f.newRun(orgID)
	f.runner.Process(context.Background(), run, "Acme Ltd")

	require.Equal(t, domain.RunStatusCompleted, f.runs.statusOf(run.ID))
	slip, ok := f.slips.forEmployee(run.ID, emp.ID)
	require.True(t, ok)
	assert.Equal(t, domain.PaymentStatusSuccess, slip.PaymentStatus)
}

type notifyError struct{}

func (*notifyError) Error() string { return "smtp unreachable" }

func TestProcessLostPendingRaceDoesNothing(t *testing.T) {
	f := newRunnerFixture()
	orgID := uuid.New()
	f.employees.employees = []domain.Employee{activeEmployee(orgID, "100000", "058")}

	run := f.newRun(orgID)
	f.runs.status[run.ID] = domain.RunStatusProcessing // someone else got there first

	f.runner.Process(context.Background(), run, "Acme Ltd")

	assert.Equal(t, domain.RunStatusProcessing, f.runs.statusOf(run.ID))
	assert.Empty(t, f.transfers.requests)
	assert.Equal(t, 0, f.slips.count())
}
