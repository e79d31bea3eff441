// Package txapi is the HTTP client for the external transaction-processing
// API: transaction submission, account-status lookup, authentication, and
// dashboard aggregation. The API is an opaque collaborator; this package
// only shapes requests and decodes its response contracts.
package txapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"github.com/banking-fraud-console/internal/config"
	"github.com/banking-fraud-console/internal/domain/account"
	"github.com/banking-fraud-console/internal/domain/transaction"
)

const defaultConfirmation = "Transaction saved successfully"

var (
	// ErrUnauthorized signals a 401/403 from the API; callers treat it as
	// non-fatal and fall back to optimistic behavior.
	ErrUnauthorized = errors.New("transaction api: unauthorized")

	// ErrInvalidCredentials signals a rejected login attempt.
	ErrInvalidCredentials = errors.New("transaction api: invalid credentials")
)

// TokenSource supplies the bearer token for the current operator session.
// An empty token means the session is unauthenticated.
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed-token source, used by the CLI generator.
type StaticToken string

// Token implements TokenSource
func (t StaticToken) Token() string { return string(t) }

// FieldError is one field-level validation failure returned by the API.
// Spring-style payloads carry either message or defaultMessage, and either
// field or objectName.
type FieldError struct {
	Field          string `json:"field"`
	ObjectName     string `json:"objectName"`
	Message        string `json:"message"`
	DefaultMessage string `json:"defaultMessage"`
}

func (e FieldError) render() string {
	field := e.Field
	if field == "" {
		field = e.ObjectName
	}
	if field == "" {
		field = "field"
	}
	message := e.DefaultMessage
	if message == "" {
		message = e.Message
	}
	if message == "" {
		message = "Invalid value"
	}
	return field + ": " + message
}

// SubmissionError carries the combined human-readable reason a submission
// was rejected.
type SubmissionError struct {
	StatusCode int
	Message    string
}

func (e *SubmissionError) Error() string {
	return e.Message
}

// DashboardSummary is the aggregate view served by the dashboard endpoint.
type DashboardSummary struct {
	TotalTransactions   int64   `json:"totalTransactions"`
	FraudTransactions   int64   `json:"fraudTransactions"`
	SuccessTransactions int64   `json:"successTransactions"`
	FailedTransactions  int64   `json:"failedTransactions"`
	PendingTransactions int64   `json:"pendingTransactions"`
	FraudPercentage     float64 `json:"fraudPercentage"`
}

// Client talks to the external transaction API over HTTP.
type Client struct {
	logger     *slog.Logger
	httpClient *http.Client
	baseURL    string
	tokens     TokenSource
}

// NewClient creates a transaction API client. The token source is consulted
// per request so token changes (login/logout) take effect immediately.
func NewClient(logger *slog.Logger, cfg *config.TxAPIConfig, tokens TokenSource) *Client {
	return &Client{
		logger:     logger,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		tokens:     tokens,
	}
}

// SubmitTransaction posts a draft to the submission endpoint and returns the
// confirmation string. Rejections are decoded into a single combined
// *SubmissionError message.
func (c *Client) SubmitTransaction(ctx context.Context, draft transaction.Draft) (string, error) {
	body, err := json.Marshal(draft)
	if err != nil {
		return "", fmt.Errorf("failed to marshal transaction draft: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/transactions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build submission request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("submission request failed: %w", err)
	}
	defer resp.Body.Close()

	payload, readErr := io.ReadAll(resp.Body)
	if readErr != nil {
		// Keep whatever was read; the status line still carries the outcome.
		c.logger.Debug("failed to read full submission response body",
			"transaction_id", draft.TransactionID,
			"error", readErr,
		)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		subErr := decodeSubmissionError(resp.StatusCode, resp.Status, payload)
		c.logger.Warn("submission rejected",
			"transaction_id", draft.TransactionID,
			"status_code", resp.StatusCode,
			"reason", subErr.Message,
		)
		return "", subErr
	}

	confirmation := strings.TrimSpace(string(payload))
	if confirmation == "" {
		confirmation = defaultConfirmation
	}
	return confirmation, nil
}

// AccountStatus fetches the authoritative risk status for an account.
// A 404 means the account is unknown to the authority and resolves as ACTIVE
// with zero failed attempts; 401/403 resolve to ErrUnauthorized.
func (c *Client) AccountStatus(ctx context.Context, accountNumber string) (*account.RiskStatus, error) {
	endpoint := c.baseURL + "/api/accounts/status/" + url.PathEscape(accountNumber)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build account status request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("account status request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// New accounts default to unblocked.
		return account.NewActive(accountNumber), nil
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, ErrUnauthorized
	case resp.StatusCode < 200 || resp.StatusCode >= 300:
		return nil, fmt.Errorf("account status lookup returned %s", resp.Status)
	}

	var status account.RiskStatus
	if err := json.NewDecoder(resp.Body).Decode(&status); err != nil {
		return nil, fmt.Errorf("failed to decode account status response: %w", err)
	}
	if status.AccountNumber == "" {
		status.AccountNumber = accountNumber
	}
	return &status, nil
}

// Login exchanges operator credentials for a bearer token.
func (c *Client) Login(ctx context.Context, username, password string) (string, error) {
	body, err := json.Marshal(map[string]string{"username": username, "password": password})
	if err != nil {
		return "", fmt.Errorf("failed to marshal login request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/auth/login", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to build login request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("login request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return "", ErrInvalidCredentials
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("login returned %s", resp.Status)
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return "", fmt.Errorf("failed to decode login response: %w", err)
	}
	if payload.Token == "" {
		return "", errors.New("login response carried no token")
	}
	return payload.Token, nil
}

// DashboardSummary fetches the aggregate transaction/fraud counters.
func (c *Client) DashboardSummary(ctx context.Context) (*DashboardSummary, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/dashboard/summary", nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build dashboard request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("dashboard request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		return nil, ErrUnauthorized
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("dashboard summary returned %s", resp.Status)
	}

	var summary DashboardSummary
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, fmt.Errorf("failed to decode dashboard summary: %w", err)
	}
	return &summary, nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
}

// decodeSubmissionError flattens the API's three rejection shapes into one
// message: a field-level validation error array, an object with a message,
// or plain body text.
func decodeSubmissionError(statusCode int, status string, payload []byte) *SubmissionError {
	message := fmt.Sprintf("HTTP %s", status)

	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) > 0 {
		var fieldErrors []FieldError
		if err := json.Unmarshal(trimmed, &fieldErrors); err == nil && len(fieldErrors) > 0 {
			parts := make([]string, 0, len(fieldErrors))
			for _, fe := range fieldErrors {
				parts = append(parts, fe.render())
			}
			return &SubmissionError{
				StatusCode: statusCode,
				Message:    "Validation failed: " + strings.Join(parts, ", "),
			}
		}

		var object struct {
			Message string `json:"message"`
		}
		if err := json.Unmarshal(trimmed, &object); err == nil && object.Message != "" {
			message = object.Message
		} else if !json.Valid(trimmed) {
			message = string(trimmed)
		}
	}

	return &SubmissionError{StatusCode: statusCode, Message: message}
}
