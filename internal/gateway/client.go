// Package gateway wraps the external disbursement provider: credential
// exchange for a short-lived bearer token, then a single funds transfer per
// call. The client never retries; the orchestrator treats any failure here as
// a per-employee failure.
package gateway

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seyi-aluko/payrun/internal/logging"
)

// Error is the typed failure returned for any transport, authentication, or
// provider-level problem. Callers can errors.As on it to distinguish external
// faults from local ones.
type Error struct {
	Op      string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("gateway: %s: %s", e.Op, e.Message)
}

type Client struct {
	baseURL       string
	apiKey        string
	secretKey     string
	sourceAccount string
	httpClient    *http.Client
}

func NewClient(baseURL, apiKey, secretKey, sourceAccount string) *Client {
	return &Client{
		baseURL:       baseURL,
		apiKey:        apiKey,
		secretKey:     secretKey,
		sourceAccount: sourceAccount,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type TransferRequest struct {
	Amount        decimal.Decimal
	Reference     string
	Narration     string
	BankCode      string
	AccountNumber string
	AccountName   string
}

type TransferResult struct {
	Reference string
	Status    string
}

type authResponse struct {
	RequestSuccessful bool   `json:"requestSuccessful"`
	ResponseMessage   string `json:"responseMessage"`
	ResponseBody      *struct {
		AccessToken string `json:"accessToken"`
	} `json:"responseBody"`
}

type transferPayload struct {
	Amount                   decimal.Decimal `json:"amount"`
	Reference                string          `json:"reference"`
	Narration                string          `json:"narration"`
	DestinationBankCode      string          `json:"destinationBankCode"`
	DestinationAccountNumber string          `json:"destinationAccountNumber"`
	Currency                 string          `json:"currency"`
	SourceAccountNumber      string          `json:"sourceAccountNumber"`
	DestinationAccountName   string          `json:"destinationAccountName"`
}

type transferResponse struct {
	RequestSuccessful bool   `json:"requestSuccessful"`
	ResponseMessage   string `json:"responseMessage"`
	ResponseBody      *struct {
		Reference string `json:"reference"`
		Status    string `json:"status"`
	} `json:"responseBody"`
}

// authenticate exchanges the API key pair for a bearer token. Tokens are
// short-lived and fetched per call rather than cached.
func (c *Client) authenticate(ctx context.Context) (string, error) {
	url := c.baseURL + "/api/v1/auth/login"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, nil)
	if err != nil {
		return "", &Error{Op: "authenticate", Message: err.Error()}
	}

	credentials := base64.StdEncoding.EncodeToString([]byte(c.apiKey + ":" + c.secretKey))
	req.Header.Set("Authorization", "Basic "+credentials)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", &Error{Op: "authenticate", Message: err.Error()}
	}
	defer resp.Body.Close()

	var auth authResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&auth); err != nil {
		return "", &Error{Op: "authenticate", Message: "decode response: " + err.Error()}
	}

	if !auth.RequestSuccessful {
		return "", &Error{Op: "authenticate", Message: "auth failed: " + auth.ResponseMessage}
	}
	if auth.ResponseBody == nil || auth.ResponseBody.AccessToken == "" {
		return "", &Error{Op: "authenticate", Message: "no access token in response"}
	}

	return auth.ResponseBody.AccessToken, nil
}

// SubmitTransfer moves money to an employee's bank account and returns the
// provider-assigned reference.
func (c *Client) SubmitTransfer(ctx context.Context, req TransferRequest) (*TransferResult, error) {
	log := logging.FromContext(ctx)

	token, err := c.authenticate(ctx)
	if err != nil {
		return nil, err
	}

	payload := transferPayload{
		Amount:                   req.Amount,
		Reference:                req.Reference,
		Narration:                req.Narration,
		DestinationBankCode:      req.BankCode,
		DestinationAccountNumber: req.AccountNumber,
		Currency:                 "NGN",
		SourceAccountNumber:      c.sourceAccount,
		DestinationAccountName:   req.AccountName,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, &Error{Op: "SubmitTransfer", Message: "marshal: " + err.Error()}
	}

	url := c.baseURL + "/api/v2/disbursements/single"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, &Error{Op: "SubmitTransfer", Message: "build request: " + err.Error()}
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+token)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, &Error{Op: "SubmitTransfer", Message: "send: " + err.Error()}
	}
	defer resp.Body.Close()

	log.Debug("gateway transfer response",
		"reference", req.Reference,
		"status", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	var result transferResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&result); err != nil {
		return nil, &Error{Op: "SubmitTransfer", Message: "decode response: " + err.Error()}
	}

	if !result.RequestSuccessful {
		return nil, &Error{Op: "SubmitTransfer", Message: result.ResponseMessage}
	}
	if result.ResponseBody == nil {
		return nil, &Error{Op: "SubmitTransfer", Message: "no transfer body in response"}
	}

	return &TransferResult{
		Reference: result.ResponseBody.Reference,
		Status:    result.ResponseBody.Status,
	}, nil
}
