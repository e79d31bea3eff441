package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/banking-fraud-console/internal/platform/txapi"
)

// DashboardSource fetches the upstream aggregate counters
type DashboardSource interface {
	DashboardSummary(ctx context.Context) (*txapi.DashboardSummary, error)
}

// DashboardFactory binds a dashboard source to a session's credentials
type DashboardFactory func(tokens txapi.TokenSource) DashboardSource

// DashboardHandler proxies the upstream dashboard aggregation
type DashboardHandler struct {
	logger     *slog.Logger
	sessions   SessionStore
	dashboards DashboardFactory
}

// NewDashboardHandler creates a new dashboard handler
func NewDashboardHandler(logger *slog.Logger, sessions SessionStore, dashboards DashboardFactory) *DashboardHandler {
	return &DashboardHandler{
		logger:     logger,
		sessions:   sessions,
		dashboards: dashboards,
	}
}

// Summary proxies the aggregate transaction/fraud counters for the session
// identified by the session_id query parameter
func (h *DashboardHandler) Summary(c *gin.Context) {
	sessionID := c.Query("session_id")
	if sessionID == "" {
		RespondBadRequest(c, "session_id query parameter is required")
		return
	}

	s, err := h.sessions.Get(sessionID)
	if err != nil {
		RespondNotFound(c, "Session not found")
		return
	}

	summary, err := h.dashboards(s).DashboardSummary(c.Request.Context())
	if err != nil {
		if errors.Is(err, txapi.ErrUnauthorized) {
			RespondUnauthorized(c, "Session is not authenticated")
			return
		}
		h.logger.Error("dashboard summary fetch failed", "session_id", s.ID, "error", err)
		RespondInternalError(c, "")
		return
	}

	RespondOK(c, summary)
}
