package main

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/seyi-aluko/payrun/internal/logging"
)

// Stand-in for the disbursement provider, for local development and manual
// testing. Issues a token on the auth endpoint and accepts any transfer
// except those destined for bank code 999, which always fail.

const failingBankCode = "999"

type server struct {
	mu     sync.Mutex
	tokens map[string]bool
}

type envelope struct {
	RequestSuccessful bool   `json:"requestSuccessful"`
	ResponseMessage   string `json:"responseMessage"`
	ResponseBody      any    `json:"responseBody"`
}

func main() {
	logging.Init("mock-gateway", "info", os.Getenv("APP_ENV"))

	s := &server{tokens: make(map[string]bool)}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/v2/disbursements/single", s.handleTransfer)
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	addr := ":8081"
	if v := os.Getenv("PORT"); v != "" {
		addr = ":" + v
	}

	slog.Info("mock gateway started", "addr", addr)
	if err := http.ListenAndServe(addr, mux); err != nil {
		slog.Error("server error", "error", err)
		os.Exit(1)
	}
}

func (s *server) handleLogin(w http.ResponseWriter, r *http.Request) {
	authz := r.Header.Get("Authorization")
	if !strings.HasPrefix(authz, "Basic ") {
		respond(w, http.StatusUnauthorized, envelope{
			RequestSuccessful: false,
			ResponseMessage:   "missing basic credentials",
		})
		return
	}
	if _, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(authz, "Basic ")); err != nil {
		respond(w, http.StatusUnauthorized, envelope{
			RequestSuccessful: false,
			ResponseMessage:   "malformed basic credentials",
		})
		return
	}

	token := newToken()
	s.mu.Lock()
	s.tokens[token] = true
	s.mu.Unlock()

	respond(w, http.StatusOK, envelope{
		RequestSuccessful: true,
		ResponseMessage:   "success",
		ResponseBody:      map[string]string{"accessToken": token},
	})
}

type transferRequest struct {
	Amount                   decimal.Decimal `json:"amount"`
	Reference                string          `json:"reference"`
	DestinationBankCode      string          `json:"destinationBankCode"`
	DestinationAccountNumber string          `json:"destinationAccountNumber"`
	Currency                 string          `json:"currency"`
}

func (s *server) handleTransfer(w http.ResponseWriter, r *http.Request) {
	token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
	s.mu.Lock()
	valid := s.tokens[token]
	s.mu.Unlock()
	if !valid {
		respond(w, http.StatusUnauthorized, envelope{
			RequestSuccessful: false,
			ResponseMessage:   "invalid token",
		})
		return
	}

	var req transferRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond(w, http.StatusBadRequest, envelope{
			RequestSuccessful: false,
			ResponseMessage:   "malformed request",
		})
		return
	}

	if !req.Amount.IsPositive() {
		respond(w, http.StatusBadRequest, envelope{
			RequestSuccessful: false,
			ResponseMessage:   "amount must be positive",
		})
		return
	}

	if req.DestinationBankCode == failingBankCode {
		slog.Info("rejecting transfer", "reference", req.Reference, "bank_code", req.DestinationBankCode)
		respond(w, http.StatusOK, envelope{
			RequestSuccessful: false,
			ResponseMessage:   "destination bank unavailable",
		})
		return
	}

	slog.Info("transfer accepted",
		"reference", req.Reference,
		"amount", req.Amount,
		"account", req.DestinationAccountNumber,
	)
	respond(w, http.StatusOK, envelope{
		RequestSuccessful: true,
		ResponseMessage:   "success",
		ResponseBody: map[string]string{
			"reference": req.Reference,
			"status":    "SUCCESS",
		},
	})
}

func respond(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		slog.Error("failed to write response", "error", err)
	}
}

func newToken() string {
	b := make([]byte, 16)
	if _, err := rand.Read(b); err != nil {
		return "static-fallback-token"
	}
	return hex.EncodeToString(b)
}
