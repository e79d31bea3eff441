package handler

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/banking-fraud-console/internal/batch"
	"github.com/banking-fraud-console/internal/domain/transaction"
	"github.com/banking-fraud-console/internal/platform/messaging"
	"github.com/banking-fraud-console/internal/platform/metrics"
	"github.com/banking-fraud-console/internal/platform/txapi"
	"github.com/banking-fraud-console/internal/session"
)

const auditPublishTimeout = 5 * time.Second

// RunnerFactory binds a batch runner to a session's credentials
type RunnerFactory func(tokens txapi.TokenSource) batch.Runner

// SessionStore resolves live sessions by id
type SessionStore interface {
	Get(id string) (*session.Session, error)
}

// GenerateHandler triggers synthesis batch runs through the bounded run pool
type GenerateHandler struct {
	logger   *slog.Logger
	sessions SessionStore
	pool     *batch.Pool
	runners  RunnerFactory
	audit    messaging.AuditPublisher
	metrics  *metrics.Collector
}

// NewGenerateHandler creates a new generate handler
func NewGenerateHandler(logger *slog.Logger, sessions SessionStore, pool *batch.Pool, runners RunnerFactory, audit messaging.AuditPublisher, collector *metrics.Collector) *GenerateHandler {
	return &GenerateHandler{
		logger:   logger,
		sessions: sessions,
		pool:     pool,
		runners:  runners,
		audit:    audit,
		metrics:  collector,
	}
}

// Generate runs one batch for the requesting session. The run executes on the
// shared pool so concurrent operator requests stay bounded; within the run,
// submissions remain strictly sequential.
func (h *GenerateHandler) Generate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	s, err := h.sessions.Get(req.SessionID)
	if err != nil {
		RespondNotFound(c, "Session not found")
		return
	}

	runID := uuid.New().String()
	startedAt := time.Now().UTC()

	result, err := h.pool.Run(c.Request.Context(), h.runners(s), req.Count)
	if err != nil {
		if errors.Is(err, batch.ErrSizeOutOfRange) {
			RespondBadRequest(c, err.Error())
			return
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			h.logger.Warn("batch run interrupted",
				"run_id", runID,
				"session_id", s.ID,
				"succeeded", result.Succeeded,
				"failed", result.Failed,
			)
		} else {
			h.logger.Error("batch run failed to execute", "run_id", runID, "error", err)
			RespondInternalError(c, "")
			return
		}
	}

	h.metrics.RecordBatchRun(runOutcome(result))
	h.publishAudit(runID, s.ID, startedAt, result)

	RespondOK(c, GenerateResponse{
		RunID:     runID,
		Requested: result.Requested,
		Succeeded: result.Succeeded,
		Failed:    result.Failed,
		Message:   result.Summary(),
	})
}

// publishAudit emits the audit event without holding up the response; a
// failed publish is logged and otherwise ignored.
func (h *GenerateHandler) publishAudit(runID, sessionID string, startedAt time.Time, result batch.Result) {
	event := messaging.BatchRunEvent{
		RunID:       runID,
		SessionID:   sessionID,
		Requested:   result.Requested,
		Succeeded:   result.Succeeded,
		Failed:      result.Failed,
		StartedAt:   startedAt.Format(transaction.TimestampLayout),
		CompletedAt: time.Now().UTC().Format(transaction.TimestampLayout),
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), auditPublishTimeout)
		defer cancel()
		if err := h.audit.PublishBatchRun(ctx, event); err != nil {
			h.logger.Warn("failed to publish batch run audit event", "run_id", runID, "error", err)
		}
	}()
}

func runOutcome(result batch.Result) string {
	switch {
	case result.Failed == 0:
		return "success"
	case result.Succeeded == 0:
		return "failure"
	default:
		return "partial"
	}
}
