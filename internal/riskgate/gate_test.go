package riskgate

import (
	"context"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/banking-fraud-console/internal/domain/account"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testDebounce = 25 * time.Millisecond

// fakeLookup records every lookup and serves canned statuses per account.
type fakeLookup struct {
	mu       sync.Mutex
	calls    []string
	statuses map[string]*account.RiskStatus
	err      error
	release  chan struct{} // when set, lookups block until it is closed
}

func (f *fakeLookup) AccountStatus(ctx context.Context, accountNumber string) (*account.RiskStatus, error) {
	f.mu.Lock()
	f.calls = append(f.calls, accountNumber)
	release := f.release
	f.mu.Unlock()

	if release != nil {
		<-release
	}
	if f.err != nil {
		return nil, f.err
	}
	if status, ok := f.statuses[accountNumber]; ok {
		return status.Clone(), nil
	}
	return account.NewActive(accountNumber), nil
}

func (f *fakeLookup) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func (f *fakeLookup) lastCall() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.calls) == 0 {
		return ""
	}
	return f.calls[len(f.calls)-1]
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

func authenticated() bool   { return true }
func unauthenticated() bool { return false }

func waitForState(t *testing.T, g *Gate, want State) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if g.State() == want {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	require.Equal(t, want, g.State())
}

func TestGate_EmptyFieldClearsStatus(t *testing.T) {
	lookup := &fakeLookup{}
	g := New(testLogger(), lookup, authenticated, testDebounce)
	defer g.Close()

	assert.Equal(t, StateEmpty, g.State())

	g.SetSenderAccount("AC12345678")
	assert.Equal(t, StateOptimisticActive, g.State())

	g.SetSenderAccount("   ")
	assert.Equal(t, StateEmpty, g.State())
	assert.Nil(t, g.Status())

	permitted, status := g.Permitted()
	assert.True(t, permitted)
	assert.Nil(t, status)
}

func TestGate_OptimisticBeforeResolution(t *testing.T) {
	lookup := &fakeLookup{}
	g := New(testLogger(), lookup, authenticated, testDebounce)
	defer g.Close()

	g.SetSenderAccount("AC12345678")

	// Submission must be permitted immediately, before the debounce fires.
	permitted, status := g.Permitted()
	assert.True(t, permitted)
	require.NotNil(t, status)
	assert.Equal(t, account.StatusActive, status.Status)
	assert.Equal(t, "AC12345678", status.AccountNumber)
	assert.Zero(t, lookup.callCount())
}

func TestGate_DebounceCollapsesEdits(t *testing.T) {
	lookup := &fakeLookup{}
	g := New(testLogger(), lookup, authenticated, testDebounce)
	defer g.Close()

	g.SetSenderAccount("AC1")
	g.SetSenderAccount("AC12")
	g.SetSenderAccount("AC12345678")

	waitForState(t, g, StateResolvedActive)

	assert.Equal(t, 1, lookup.callCount(), "rapid edits must collapse into one lookup")
	assert.Equal(t, "AC12345678", lookup.lastCall())
}

func TestGate_ResolvesBlocked(t *testing.T) {
	blocked := &account.RiskStatus{
		AccountNumber:       "AC99999999",
		Status:              account.StatusBlocked,
		BlockedAt:           "2025-03-14T02:10:00",
		UnblockAt:           "2025-03-15T02:10:00",
		FailedCountLast5Min: 4,
	}
	lookup := &fakeLookup{statuses: map[string]*account.RiskStatus{"AC99999999": blocked}}
	g := New(testLogger(), lookup, authenticated, testDebounce)
	defer g.Close()

	g.SetSenderAccount("AC99999999")
	waitForState(t, g, StateResolvedBlocked)

	permitted, status := g.Permitted()
	assert.False(t, permitted)
	require.NotNil(t, status)
	assert.Equal(t, "2025-03-15T02:10:00", status.UnblockAt)
	assert.Equal(t, 4, status.FailedCountLast5Min)
}

func TestGate_LookupFailureFallsBackToOptimistic(t *testing.T) {
	lookup := &fakeLookup{err: context.DeadlineExceeded}
	g := New(testLogger(), lookup, authenticated, testDebounce)
	defer g.Close()

	g.SetSenderAccount("AC12345678")
	time.Sleep(4 * testDebounce)

	assert.Equal(t, StateOptimisticActive, g.State())
	permitted, status := g.Permitted()
	assert.True(t, permitted)
	require.NotNil(t, status)
	assert.Equal(t, account.StatusActive, status.Status)
}

func TestGate_UnauthenticatedNeverLooksUp(t *testing.T) {
	lookup := &fakeLookup{}
	g := New(testLogger(), lookup, unauthenticated, testDebounce)
	defer g.Close()

	g.SetSenderAccount("AC12345678")
	time.Sleep(4 * testDebounce)

	assert.Equal(t, StateOptimisticActive, g.State())
	assert.Zero(t, lookup.callCount())
}

func TestGate_StaleLookupResultDiscarded(t *testing.T) {
	release := make(chan struct{})
	blocked := &account.RiskStatus{AccountNumber: "AC1", Status: account.StatusBlocked}
	lookup := &fakeLookup{
		statuses: map[string]*account.RiskStatus{"AC1": blocked},
		release:  release,
	}
	g := New(testLogger(), lookup, authenticated, testDebounce)
	defer g.Close()

	g.SetSenderAccount("AC1")
	waitForState(t, g, StateChecking)

	// The field changes while the first lookup is still in flight. Its
	// BLOCKED result must be discarded when it finally lands.
	g.SetSenderAccount("AC2")

	lookup.mu.Lock()
	lookup.release = nil
	lookup.mu.Unlock()
	close(release)

	waitForState(t, g, StateResolvedActive)
	status := g.Status()
	require.NotNil(t, status)
	assert.Equal(t, "AC2", status.AccountNumber)
	assert.Equal(t, account.StatusActive, status.Status)

	permitted, _ := g.Permitted()
	assert.True(t, permitted)
}

func TestGate_CloseCancelsPendingTimer(t *testing.T) {
	lookup := &fakeLookup{}
	g := New(testLogger(), lookup, authenticated, testDebounce)

	g.SetSenderAccount("AC12345678")
	g.Close()
	time.Sleep(4 * testDebounce)

	assert.Zero(t, lookup.callCount())
}
