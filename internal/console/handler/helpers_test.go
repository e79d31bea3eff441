package handler

import (
	"log/slog"
	"os"
	"sync"

	"github.com/gin-gonic/gin"

	"github.com/banking-fraud-console/internal/domain/account"
	"github.com/banking-fraud-console/internal/platform/metrics"
	"github.com/banking-fraud-console/internal/riskgate"
	"github.com/banking-fraud-console/internal/session"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func testCollector() *metrics.Collector {
	return metrics.NewCollector("fraud_console_handler_test")
}

// stubGate is a controllable risk gate for handler tests.
type stubGate struct {
	mu        sync.Mutex
	state     riskgate.State
	status    *account.RiskStatus
	lastValue string
}

func newStubGate() *stubGate {
	return &stubGate{state: riskgate.StateEmpty}
}

func (g *stubGate) SetSenderAccount(value string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.lastValue = value
	if value == "" {
		g.state = riskgate.StateEmpty
		g.status = nil
		return
	}
	g.state = riskgate.StateOptimisticActive
	g.status = account.NewActive(value)
}

func (g *stubGate) Permitted() (bool, *account.RiskStatus) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state != riskgate.StateResolvedBlocked, g.status.Clone()
}

func (g *stubGate) State() riskgate.State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

func (g *stubGate) Status() *account.RiskStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status.Clone()
}

func (g *stubGate) Close() {}

func (g *stubGate) resolveBlocked(status *account.RiskStatus) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.state = riskgate.StateResolvedBlocked
	g.status = status
}

// newTestSessions returns a manager whose sessions all share the given gate.
func newTestSessions(gate riskgate.FieldGate) *session.Manager {
	return session.NewManager(func(session.Credentials) riskgate.FieldGate {
		return gate
	})
}
