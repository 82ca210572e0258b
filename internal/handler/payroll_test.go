package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seyi-aluko/payrun/internal/domain"
)

type stubPayrollService struct {
	triggerRun *domain.PayrollRun
	triggerErr error
	getRun     *domain.PayrollRun
	getSlips   []domain.PayrollSlip
	getErr     error
	listRuns   []domain.PayrollRun
	listErr    error
	gotOrgID   uuid.UUID
	gotPeriod  string
}

func (s *stubPayrollService) TriggerRun(_ context.Context, orgID uuid.UUID, payPeriod string) (*domain.PayrollRun, error) {
	s.gotOrgID = orgID
	s.gotPeriod = payPeriod
	return s.triggerRun, s.triggerErr
}

func (s *stubPayrollService) GetRun(context.Context, uuid.UUID, uuid.UUID) (*domain.PayrollRun, []domain.PayrollSlip, error) {
	return s.getRun, s.getSlips, s.getErr
}

func (s *stubPayrollService) ListRuns(context.Context, uuid.UUID) ([]domain.PayrollRun, error) {
	return s.listRuns, s.listErr
}

func newTestRouter(svc *stubPayrollService) http.Handler {
	h := NewPayrollHandler(svc)
	r := chi.NewRouter()
	r.Route("/api/v1/organizations/{orgID}/payroll/runs", func(r chi.Router) {
		r.Post("/", h.Trigger)
		r.Get("/", h.List)
		r.Get("/{runID}", h.Get)
	})
	return r
}

func pendingRun(orgID uuid.UUID) *domain.PayrollRun {
	return &domain.PayrollRun{
		ID:              uuid.New(),
		OrganizationID:  orgID,
		PayPeriod:       "2025-06",
		Status:          domain.RunStatusPending,
		TotalGross:      decimal.Zero,
		TotalDeductions: decimal.Zero,
		TotalNet:        decimal.Zero,
		InitiatedAt:     time.Now().UTC(),
	}
}

func TestTriggerAccepted(t *testing.T) {
	orgID := uuid.New()
	svc := &stubPayrollService{triggerRun: pendingRun(orgID)}
	router := newTestRouter(svc)

	body := bytes.NewBufferString(`{"pay_period": "2025-06"}`)
	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/v1/organizations/%s/payroll/runs", orgID), body)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusAccepted, rec.Code)
	assert.Equal(t, orgID, svc.gotOrgID)
	assert.Equal(t, "2025-06", svc.gotPeriod)

	var resp struct {
		Success bool `json:"success"`
		Data    struct {
			Status    string `json:"status"`
			PayPeriod string `json:"pay_period"`
			TotalNet  string `json:"total_net"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "pending", resp.Data.Status)
	assert.Equal(t, "2025-06", resp.Data.PayPeriod)
	assert.Equal(t, "0", resp.Data.TotalNet)
}

func TestTriggerValidation(t *testing.T) {
	orgID := uuid.New()

	tests := []struct {
		name     string
		body     string
		wantCode string
	}{
		{"missing period", `{}`, "VALIDATION_FAILED"},
		{"bad period format", `{"pay_period": "June 2025"}`, "VALIDATION_FAILED"},
		{"bad month", `{"pay_period": "2025-00"}`, "VALIDATION_FAILED"},
		{"malformed json", `{`, "INVALID_REQUEST"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubPayrollService{}
			router := newTestRouter(svc)

			req := httptest.NewRequest(http.MethodPost,
				fmt.Sprintf("/api/v1/organizations/%s/payroll/runs", orgID),
				bytes.NewBufferString(tt.body))
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)

			var resp struct {
				Error *APIError `json:"error"`
			}
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			require.NotNil(t, resp.Error)
			assert.Equal(t, tt.wantCode, resp.Error.Code)
		})
	}
}

func TestTriggerConflict(t *testing.T) {
	orgID := uuid.New()
	svc := &stubPayrollService{
		triggerErr: fmt.Errorf("TriggerRun: %w", domain.ErrPayrollAlreadyProcessed),
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodPost,
		fmt.Sprintf("/api/v1/organizations/%s/payroll/runs", orgID),
		bytes.NewBufferString(`{"pay_period": "2025-06"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	var resp struct {
		Error *APIError `json:"error"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, "PAYROLL_ALREADY_PROCESSED", resp.Error.Code)
}

func TestTriggerBadOrgID(t *testing.T) {
	router := newTestRouter(&stubPayrollService{})

	req := httptest.NewRequest(http.MethodPost,
		"/api/v1/organizations/not-a-uuid/payroll/runs",
		bytes.NewBufferString(`{"pay_period": "2025-06"}`))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRunNotFound(t *testing.T) {
	orgID := uuid.New()
	svc := &stubPayrollService{
		getErr: fmt.Errorf("GetRun: %w", domain.ErrNotFound),
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/v1/organizations/%s/payroll/runs/%s", orgID, uuid.New()), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRunWithSlips(t *testing.T) {
	orgID := uuid.New()
	completed := pendingRun(orgID)
	now := time.Now().UTC()
	completed.Status = domain.RunStatusCompleted
	completed.TotalNet = decimal.RequireFromString("280875")
	completed.EmployeeCount = 1
	completed.CompletedAt = &now

	ref := "PAY-ref"
	svc := &stubPayrollService{
		getRun: completed,
		getSlips: []domain.PayrollSlip{{
			ID:               uuid.New(),
			PayrollRunID:     completed.ID,
			EmployeeID:       uuid.New(),
			PayPeriod:        "2025-06",
			NetSalary:        decimal.RequireFromString("280875"),
			GatewayReference: &ref,
			PaymentStatus:    domain.PaymentStatusSuccess,
		}},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/v1/organizations/%s/payroll/runs/%s", orgID, completed.ID), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data struct {
			Status string `json:"status"`
			Slips  []struct {
				NetSalary        string  `json:"net_salary"`
				GatewayReference *string `json:"gateway_reference"`
				PaymentStatus    string  `json:"payment_status"`
			} `json:"slips"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp.Data.Status)
	require.Len(t, resp.Data.Slips, 1)
	assert.Equal(t, "280875", resp.Data.Slips[0].NetSalary)
	require.NotNil(t, resp.Data.Slips[0].GatewayReference)
	assert.Equal(t, "PAY-ref", *resp.Data.Slips[0].GatewayReference)
	assert.Equal(t, "success", resp.Data.Slips[0].PaymentStatus)
}

func TestListRuns(t *testing.T) {
	orgID := uuid.New()
	svc := &stubPayrollService{
		listRuns: []domain.PayrollRun{*pendingRun(orgID), *pendingRun(orgID)},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/v1/organizations/%s/payroll/runs", orgID), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data []json.RawMessage `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Len(t, resp.Data, 2)
}
