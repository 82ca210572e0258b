package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/seyi-aluko/payrun/internal/domain"
	"github.com/seyi-aluko/payrun/internal/logging"
)

type payrollService interface {
	TriggerRun(ctx context.Context, orgID uuid.UUID, payPeriod string) (*domain.PayrollRun, error)
	GetRun(ctx context.Context, orgID, runID uuid.UUID) (*domain.PayrollRun, []domain.PayrollSlip, error)
	ListRuns(ctx context.Context, orgID uuid.UUID) ([]domain.PayrollRun, error)
}

type PayrollHandler struct {
	payroll payrollService
}

func NewPayrollHandler(payroll payrollService) *PayrollHandler {
	return &PayrollHandler{payroll: payroll}
}

type triggerRunRequest struct {
	PayPeriod string `json:"pay_period"`
}

func (r triggerRunRequest) Validate() []FieldError {
	var errs []FieldError
	if r.PayPeriod == "" {
		errs = append(errs, FieldError{Field: "pay_period", Message: "required"})
	} else if err := domain.ValidatePayPeriod(r.PayPeriod); err != nil {
		errs = append(errs, FieldError{Field: "pay_period", Message: "must be formatted YYYY-MM"})
	}
	return errs
}

type runDTO struct {
	ID              uuid.UUID       `json:"id"`
	OrganizationID  uuid.UUID       `json:"organization_id"`
	PayPeriod       string          `json:"pay_period"`
	Status          string          `json:"status"`
	TotalGross      decimal.Decimal `json:"total_gross"`
	TotalDeductions decimal.Decimal `json:"total_deductions"`
	TotalNet        decimal.Decimal `json:"total_net"`
	EmployeeCount   int             `json:"employee_count"`
	InitiatedAt     time.Time       `json:"initiated_at"`
	CompletedAt     *time.Time      `json:"completed_at"`
}

func toRunDTO(run *domain.PayrollRun) runDTO {
	return runDTO{
		ID:              run.ID,
		OrganizationID:  run.OrganizationID,
		PayPeriod:       run.PayPeriod,
		Status:          string(run.Status),
		TotalGross:      run.TotalGross,
		TotalDeductions: run.TotalDeductions,
		TotalNet:        run.TotalNet,
		EmployeeCount:   run.EmployeeCount,
		InitiatedAt:     run.InitiatedAt,
		CompletedAt:     run.CompletedAt,
	}
}

type slipDTO struct {
	ID               uuid.UUID       `json:"id"`
	EmployeeID       uuid.UUID       `json:"employee_id"`
	PayPeriod        string          `json:"pay_period"`
	BaseSalary       decimal.Decimal `json:"base_salary"`
	TotalAdditions   decimal.Decimal `json:"total_additions"`
	GrossSalary      decimal.Decimal `json:"gross_salary"`
	PayeTax          decimal.Decimal `json:"paye_tax"`
	PensionDeduction decimal.Decimal `json:"pension_deduction"`
	NHFDeduction     decimal.Decimal `json:"nhf_deduction"`
	NHISDeduction    decimal.Decimal `json:"nhis_deduction"`
	OtherDeductions  decimal.Decimal `json:"other_deductions"`
	TotalDeductions  decimal.Decimal `json:"total_deductions"`
	NetSalary        decimal.Decimal `json:"net_salary"`
	GatewayReference *string         `json:"gateway_reference"`
	PaymentStatus    string          `json:"payment_status"`
	CreatedAt        time.Time       `json:"created_at"`
}

func toSlipDTO(s *domain.PayrollSlip) slipDTO {
	return slipDTO{
		ID:               s.ID,
		EmployeeID:       s.EmployeeID,
		PayPeriod:        s.PayPeriod,
		BaseSalary:       s.BaseSalary,
		TotalAdditions:   s.TotalAdditions,
		GrossSalary:      s.GrossSalary,
		PayeTax:          s.PayeTax,
		PensionDeduction: s.PensionDeduction,
		NHFDeduction:     s.NHFDeduction,
		NHISDeduction:    s.NHISDeduction,
		OtherDeductions:  s.OtherDeductions,
		TotalDeductions:  s.TotalDeductions,
		NetSalary:        s.NetSalary,
		GatewayReference: s.GatewayReference,
		PaymentStatus:    string(s.PaymentStatus),
		CreatedAt:        s.CreatedAt,
	}
}

type runDetailDTO struct {
	runDTO
	Slips []slipDTO `json:"slips"`
}

func orgIDFromPath(r *http.Request) (uuid.UUID, *AppError) {
	id, err := uuid.Parse(chi.URLParam(r, "orgID"))
	if err != nil {
		return uuid.Nil, ErrResourceNotFound
	}
	return id, nil
}

// Trigger admits a payroll run and returns 202; processing happens in the
// background and the caller polls the run until it reaches a terminal status.
func (h *PayrollHandler) Trigger(w http.ResponseWriter, r *http.Request) {
	orgID, appErr := orgIDFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	var req triggerRunRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		RespondAppError(w, ErrInvalidRequest, nil)
		return
	}

	if fields := req.Validate(); len(fields) > 0 {
		RespondValidationError(w, fields)
		return
	}

	run, err := h.payroll.TriggerRun(r.Context(), orgID, req.PayPeriod)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to trigger payroll run", "error", err)
		RespondDomainError(w, err)
		return
	}

	RespondSuccess(w, http.StatusAccepted, toRunDTO(run))
}

func (h *PayrollHandler) List(w http.ResponseWriter, r *http.Request) {
	orgID, appErr := orgIDFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	runs, err := h.payroll.ListRuns(r.Context(), orgID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to list payroll runs", "error", err)
		RespondDomainError(w, err)
		return
	}

	dtos := make([]runDTO, len(runs))
	for i := range runs {
		dtos[i] = toRunDTO(&runs[i])
	}

	RespondSuccess(w, http.StatusOK, dtos)
}

func (h *PayrollHandler) Get(w http.ResponseWriter, r *http.Request) {
	orgID, appErr := orgIDFromPath(r)
	if appErr != nil {
		RespondAppError(w, appErr, nil)
		return
	}

	runID, err := uuid.Parse(chi.URLParam(r, "runID"))
	if err != nil {
		RespondAppError(w, ErrResourceNotFound, nil)
		return
	}

	run, slips, err := h.payroll.GetRun(r.Context(), orgID, runID)
	if err != nil {
		logging.FromContext(r.Context()).Error("failed to get payroll run", "error", err)
		RespondDomainError(w, err)
		return
	}

	detail := runDetailDTO{runDTO: toRunDTO(run), Slips: make([]slipDTO, len(slips))}
	for i := range slips {
		detail.Slips[i] = toSlipDTO(&slips[i])
	}

	RespondSuccess(w, http.StatusOK, detail)
}
