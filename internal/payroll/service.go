package payroll

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/seyi-aluko/payrun/internal/domain"
	"github.com/seyi-aluko/payrun/internal/logging"
)

type organizationGetter interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Organization, error)
}

type runStore interface {
	Create(ctx context.Context, run *domain.PayrollRun) error
	GetForOrganization(ctx context.Context, id, orgID uuid.UUID) (*domain.PayrollRun, error)
	ListByOrganization(ctx context.Context, orgID uuid.UUID) ([]domain.PayrollRun, error)
}

type slipLister interface {
	ListByRun(ctx context.Context, runID uuid.UUID) ([]domain.PayrollSlip, error)
}

// Service admits payroll runs and serves run reads. Processing itself happens
// on the Runner via the Dispatcher; TriggerRun returns as soon as the run is
// durably admitted.
type Service struct {
	orgs       organizationGetter
	runs       runStore
	slips      slipLister
	runner     *Runner
	dispatcher *Dispatcher
}

func NewService(orgs organizationGetter, runs runStore, slips slipLister, runner *Runner, dispatcher *Dispatcher) *Service {
	return &Service{
		orgs:       orgs,
		runs:       runs,
		slips:      slips,
		runner:     runner,
		dispatcher: dispatcher,
	}
}

// TriggerRun validates the request, inserts the pending run and schedules
// background processing. The insert is the admission guard: a concurrent or
// repeated trigger for the same organization and period fails with
// domain.ErrPayrollAlreadyProcessed unless the earlier run ended failed.
func (s *Service) TriggerRun(ctx context.Context, orgID uuid.UUID, payPeriod string) (*domain.PayrollRun, error) {
	if err := domain.ValidatePayPeriod(payPeriod); err != nil {
		return nil, fmt.Errorf("TriggerRun: %w", err)
	}

	org, err := s.orgs.GetByID(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("TriggerRun: %w", err)
	}

	run := &domain.PayrollRun{
		ID:              uuid.New(),
		OrganizationID:  org.ID,
		PayPeriod:       payPeriod,
		Status:          domain.RunStatusPending,
		TotalGross:      decimal.Zero,
		TotalDeductions: decimal.Zero,
		TotalNet:        decimal.Zero,
		InitiatedAt:     time.Now().UTC(),
	}
	if err := s.runs.Create(ctx, run); err != nil {
		return nil, fmt.Errorf("TriggerRun: %w", err)
	}

	logging.FromContext(ctx).Info("payroll run admitted",
		"run_id", run.ID,
		"organization_id", org.ID,
		"pay_period", payPeriod,
	)

	// The background context inherits nothing from the request; the run must
	// survive the trigger connection closing.
	runCopy := *run
	orgName := org.Name
	s.dispatcher.Dispatch(func(ctx context.Context) {
		s.runner.Process(ctx, runCopy, orgName)
	})

	return run, nil
}

func (s *Service) GetRun(ctx context.Context, orgID, runID uuid.UUID) (*domain.PayrollRun, []domain.PayrollSlip, error) {
	run, err := s.runs.GetForOrganization(ctx, runID, orgID)
	if err != nil {
		return nil, nil, fmt.Errorf("GetRun: %w", err)
	}
	slips, err := s.slips.ListByRun(ctx, runID)
	if err != nil {
		return nil, nil, fmt.Errorf("GetRun: %w", err)
	}
	return run, slips, nil
}

func (s *Service) ListRuns(ctx context.Context, orgID uuid.UUID) ([]domain.PayrollRun, error) {
	if _, err := s.orgs.GetByID(ctx, orgID); err != nil {
		return nil, fmt.Errorf("ListRuns: %w", err)
	}
	runs, err := s.runs.ListByOrganization(ctx, orgID)
	if err != nil {
		return nil, fmt.Errorf("ListRuns: %w", err)
	}
	return runs, nil
}
