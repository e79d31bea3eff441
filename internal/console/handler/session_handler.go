package handler

import (
	"context"
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/banking-fraud-console/internal/platform/metrics"
	"github.com/banking-fraud-console/internal/platform/txapi"
	"github.com/banking-fraud-console/internal/session"
)

// Authenticator exchanges operator credentials for an upstream bearer token
type Authenticator interface {
	Login(ctx context.Context, username, password string) (string, error)
}

// SessionHandler handles the operator session lifecycle and the
// sender-account risk gate feed
type SessionHandler struct {
	logger   *slog.Logger
	sessions *session.Manager
	auth     Authenticator
	metrics  *metrics.Collector
}

// NewSessionHandler creates a new session handler
func NewSessionHandler(logger *slog.Logger, sessions *session.Manager, auth Authenticator, collector *metrics.Collector) *SessionHandler {
	return &SessionHandler{
		logger:   logger,
		sessions: sessions,
		auth:     auth,
		metrics:  collector,
	}
}

// Create opens a new unauthenticated operator session
func (h *SessionHandler) Create(c *gin.Context) {
	s := h.sessions.Create()
	h.metrics.SessionOpened()
	h.logger.Info("session created", "session_id", s.ID)

	RespondCreated(c, SessionResponse{SessionID: s.ID, Authenticated: false})
}

// Login authenticates a session against the upstream transaction API
func (h *SessionHandler) Login(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	token, err := h.auth.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, txapi.ErrInvalidCredentials) {
			RespondUnauthorized(c, "Invalid username or password")
			return
		}
		h.logger.Error("login against upstream API failed", "session_id", s.ID, "error", err)
		RespondInternalError(c, "")
		return
	}

	s.SetToken(token)
	h.logger.Info("session authenticated", "session_id", s.ID)

	RespondOK(c, SessionResponse{SessionID: s.ID, Authenticated: true})
}

// Delete discards a session together with its token and risk-gate state
func (h *SessionHandler) Delete(c *gin.Context) {
	id := c.Param("id")
	if err := h.sessions.Delete(id); err != nil {
		RespondNotFound(c, "Session not found")
		return
	}
	h.metrics.SessionClosed()
	h.logger.Info("session deleted", "session_id", id)

	RespondNoContent(c)
}

// SetSenderAccount feeds one sender-account field edit into the session's
// risk gate and reports the state the operator should see right now
func (h *SessionHandler) SetSenderAccount(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	var req SenderAccountRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondBadRequest(c, "Invalid request body: "+err.Error())
		return
	}

	gate := s.Gate()
	gate.SetSenderAccount(req.Value)

	RespondOK(c, RiskStatusResponse{
		State:  string(gate.State()),
		Status: gate.Status(),
	})
}

// RiskStatus reports the current gate state for display
func (h *SessionHandler) RiskStatus(c *gin.Context) {
	s, ok := h.session(c)
	if !ok {
		return
	}

	gate := s.Gate()
	RespondOK(c, RiskStatusResponse{
		State:  string(gate.State()),
		Status: gate.Status(),
	})
}

func (h *SessionHandler) session(c *gin.Context) (*session.Session, bool) {
	s, err := h.sessions.Get(c.Param("id"))
	if err != nil {
		RespondNotFound(c, "Session not found")
		return nil, false
	}
	return s, true
}
