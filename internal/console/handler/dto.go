package handler

import "github.com/banking-fraud-console/internal/domain/account"

// LoginRequest carries operator credentials for the upstream API
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// SessionResponse represents a session in API responses
type SessionResponse struct {
	SessionID     string `json:"session_id"`
	Authenticated bool   `json:"authenticated"`
}

// SenderAccountRequest is one edit of the sender-account field. An empty
// value clears the field and resets the risk gate.
type SenderAccountRequest struct {
	Value string `json:"value"`
}

// RiskStatusResponse reports the gate state and the status to display
type RiskStatusResponse struct {
	State  string              `json:"state"`
	Status *account.RiskStatus `json:"status,omitempty"`
}

// SubmitTransactionRequest mirrors the manual submission form. Amount arrives
// as the raw field text so malformed input gets the form's own error message
// instead of a JSON type error.
type SubmitTransactionRequest struct {
	TransactionID   string `json:"transactionId"`
	SenderAccount   string `json:"senderAccount"`
	ReceiverAccount string `json:"receiverAccount"`
	Amount          string `json:"amount"`
	Currency        string `json:"currency"`
	TransactionType string `json:"transactionType"`
	Channel         string `json:"channel"`
	IPAddress       string `json:"ipAddress,omitempty"`
	Location        string `json:"location,omitempty"`
}

// SubmitTransactionResponse reports an accepted manual submission
type SubmitTransactionResponse struct {
	TransactionID string `json:"transaction_id"`
	Message       string `json:"message"`
}

// GenerateRequest asks for one synthesis batch run
type GenerateRequest struct {
	SessionID string `json:"session_id" binding:"required"`
	Count     int    `json:"count"`
}

// GenerateResponse reports the outcome of a batch run
type GenerateResponse struct {
	RunID     string `json:"run_id"`
	Requested int    `json:"requested"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	Message   string `json:"message"`
}
