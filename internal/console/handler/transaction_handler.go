package handler

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/banking-fraud-console/internal/domain/transaction"
	"github.com/banking-fraud-console/internal/platform/metrics"
	"github.com/banking-fraud-console/internal/platform/txapi"
	"github.com/banking-fraud-console/internal/session"
)

// Submitter sends one draft to the external transaction API
type Submitter interface {
	SubmitTransaction(ctx context.Context, draft transaction.Draft) (string, error)
}

// SubmitterFactory binds a submitter to a session's credentials
type SubmitterFactory func(tokens txapi.TokenSource) Submitter

// TransactionHandler handles manual risk-gated transaction submission
type TransactionHandler struct {
	logger     *slog.Logger
	sessions   *session.Manager
	submitters SubmitterFactory
	metrics    *metrics.Collector
	now        func() time.Time
}

// NewTransactionHandler creates a new transaction handler
func NewTransactionHandler(logger *slog.Logger, sessions *session.Manager, submitters SubmitterFactory, collector *metrics.Collector) *TransactionHandler {
	return &TransactionHandler{
		logger:     logger,
		sessions:   sessions,
		submitters: submitters,
		metrics:    collector,
		now:        time.Now,
	}
}

// Submit validates the manual form, consults the session's risk gate, and
// forwards the draft upstream. A BLOCKED resolution is rejected locally
// without any network call. Validation and gate checks run in the form's
// order: required fields, block check, then amount.
func (h *TransactionHandler) Submit(c *gin.Context) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		RespondNotFound(c, "Session not found")
		return
	}

	var req SubmitTransactionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	if req.TransactionID == "" || req.Amount == "" || req.SenderAccount == "" || req.ReceiverAccount == "" {
		RespondBadRequest(c, "Please fill in all required fields")
		return
	}

	if permitted, status := s.Gate().Permitted(); !permitted {
		h.metrics.RecordGateDenial()
		message := "This account is blocked. Transactions cannot be processed until the account is unblocked."
		if status != nil && status.UnblockAt != "" {
			message = "This account is blocked. Transactions cannot be processed until " + status.UnblockAt + "."
		}
		h.logger.Info("manual submission denied by risk gate",
			"session_id", s.ID,
			"sender_account", req.SenderAccount,
		)
		RespondConflict(c, "ACCOUNT_BLOCKED", message)
		return
	}

	amount, err := strconv.ParseFloat(req.Amount, 64)
	if err != nil || amount <= 0 {
		RespondBadRequest(c, "Amount must be a positive number")
		return
	}

	draft := transaction.Draft{
		TransactionID:   req.TransactionID,
		Timestamp:       h.now().UTC().Format(transaction.TimestampLayout),
		Amount:          transaction.RoundAmount(amount),
		Currency:        defaultCurrency(req.Currency),
		SenderAccount:   req.SenderAccount,
		ReceiverAccount: req.ReceiverAccount,
		TransactionType: defaultType(req.TransactionType),
		Channel:         defaultChannel(req.Channel),
		IPAddress:       req.IPAddress,
		Location:        req.Location,
	}

	if err := draft.Validate(); err != nil {
		if errors.Is(err, transaction.ErrSameAccounts) {
			RespondBadRequest(c, "Sender and receiver accounts must be different")
			return
		}
		RespondBadRequest(c, err.Error())
		return
	}

	start := time.Now()
	confirmation, err := h.submitters(s).SubmitTransaction(c.Request.Context(), draft)
	if err != nil {
		h.metrics.ObserveSubmission("failure", time.Since(start))

		var subErr *txapi.SubmissionError
		if errors.As(err, &subErr) {
			RespondUnprocessable(c, "SUBMISSION_REJECTED", subErr.Message)
			return
		}
		h.logger.Error("manual submission failed",
			"session_id", s.ID,
			"transaction_id", draft.TransactionID,
			"error", err,
		)
		RespondInternalError(c, "An unexpected error occurred. Please try again.")
		return
	}
	h.metrics.ObserveSubmission("success", time.Since(start))

	if confirmation == "" {
		confirmation = "Transaction submitted successfully!"
	}
	RespondCreated(c, SubmitTransactionResponse{
		TransactionID: draft.TransactionID,
		Message:       confirmation,
	})
}

func defaultCurrency(v string) transaction.Currency {
	if v == "" {
		return transaction.CurrencyINR
	}
	return transaction.Currency(v)
}

func defaultType(v string) transaction.Type {
	if v == "" {
		return transaction.TypeTransfer
	}
	return transaction.Type(v)
}

func defaultChannel(v string) transaction.Channel {
	if v == "" {
		return transaction.ChannelMobile
	}
	return transaction.Channel(v)
}
