package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/banking-fraud-console/internal/batch"
	"github.com/banking-fraud-console/internal/platform/messaging"
	"github.com/banking-fraud-console/internal/platform/txapi"
	"github.com/banking-fraud-console/internal/session"
)

// stubRunner returns canned batch results, enforcing the size bounds the real
// orchestrator applies.
type stubRunner struct {
	mu        sync.Mutex
	runs      []int
	seenToken string
}

func (r *stubRunner) factory(tokens txapi.TokenSource) batch.Runner {
	r.mu.Lock()
	r.seenToken = tokens.Token()
	r.mu.Unlock()
	return r
}

func (r *stubRunner) Run(ctx context.Context, count int) (batch.Result, error) {
	if count < batch.MinSize || count > batch.MaxSize {
		return batch.Result{}, batch.ErrSizeOutOfRange
	}
	r.mu.Lock()
	r.runs = append(r.runs, count)
	r.mu.Unlock()
	return batch.Result{Requested: count, Succeeded: count - 1, Failed: 1}, nil
}

// recordingPublisher captures audit events for assertions.
type recordingPublisher struct {
	mu     sync.Mutex
	events []messaging.BatchRunEvent
	done   chan struct{}
}

func newRecordingPublisher() *recordingPublisher {
	return &recordingPublisher{done: make(chan struct{}, 8)}
}

func (p *recordingPublisher) PublishBatchRun(ctx context.Context, event messaging.BatchRunEvent) error {
	p.mu.Lock()
	p.events = append(p.events, event)
	p.mu.Unlock()
	p.done <- struct{}{}
	return nil
}

func (p *recordingPublisher) Close() error { return nil }

func (p *recordingPublisher) waitForEvent(t *testing.T) messaging.BatchRunEvent {
	t.Helper()
	select {
	case <-p.done:
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for audit event")
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.events[len(p.events)-1]
}

func newGenerateRouter(t *testing.T, sessions *session.Manager, runner *stubRunner, audit messaging.AuditPublisher) *gin.Engine {
	t.Helper()
	pool, err := batch.NewPool(testLogger(), 2)
	require.NoError(t, err)
	t.Cleanup(pool.Shutdown)

	h := NewGenerateHandler(testLogger(), sessions, pool, runner.factory, audit, testCollector())
	r := gin.New()
	r.POST("/api/v1/generate", h.Generate)
	return r
}

func postGenerate(router *gin.Engine, req GenerateRequest) *httptest.ResponseRecorder {
	body, _ := json.Marshal(req)
	httpReq, _ := http.NewRequest(http.MethodPost, "/api/v1/generate", bytes.NewReader(body))
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httpReq)
	return rr
}

func TestGenerateHandler_Generate(t *testing.T) {
	t.Run("RunsBatchAndPublishesAudit", func(t *testing.T) {
		sessions := newTestSessions(newStubGate())
		runner := &stubRunner{}
		audit := newRecordingPublisher()
		router := newGenerateRouter(t, sessions, runner, audit)
		s := sessions.Create()
		s.SetToken("jwt-abc")

		rr := postGenerate(router, GenerateRequest{SessionID: s.ID, Count: 10})

		require.Equal(t, http.StatusOK, rr.Code)
		data := decodeData(t, rr.Body)
		assert.NotEmpty(t, data["run_id"])
		assert.Equal(t, float64(10), data["requested"])
		assert.Equal(t, float64(9), data["succeeded"])
		assert.Equal(t, float64(1), data["failed"])
		assert.Equal(t, "Successfully generated 9 transactions (1 failed)!", data["message"])
		assert.Equal(t, "jwt-abc", runner.seenToken)

		event := audit.waitForEvent(t)
		assert.Equal(t, data["run_id"], event.RunID)
		assert.Equal(t, s.ID, event.SessionID)
		assert.Equal(t, 10, event.Requested)
		assert.Equal(t, 9, event.Succeeded)
		assert.Equal(t, 1, event.Failed)
		assert.NotEmpty(t, event.StartedAt)
		assert.NotEmpty(t, event.CompletedAt)
	})

	t.Run("CountOutOfRange", func(t *testing.T) {
		sessions := newTestSessions(newStubGate())
		runner := &stubRunner{}
		router := newGenerateRouter(t, sessions, runner, newRecordingPublisher())
		s := sessions.Create()

		for _, count := range []int{0, -3, 101} {
			rr := postGenerate(router, GenerateRequest{SessionID: s.ID, Count: count})
			assert.Equal(t, http.StatusBadRequest, rr.Code)
		}
		assert.Empty(t, runner.runs)
	})

	t.Run("UnknownSession", func(t *testing.T) {
		router := newGenerateRouter(t, newTestSessions(newStubGate()), &stubRunner{}, newRecordingPublisher())

		rr := postGenerate(router, GenerateRequest{SessionID: "nope", Count: 5})
		assert.Equal(t, http.StatusNotFound, rr.Code)
	})

	t.Run("MissingSessionID", func(t *testing.T) {
		router := newGenerateRouter(t, newTestSessions(newStubGate()), &stubRunner{}, newRecordingPublisher())

		rr := postGenerate(router, GenerateRequest{Count: 5})
		assert.Equal(t, http.StatusBadRequest, rr.Code)
	})
}
