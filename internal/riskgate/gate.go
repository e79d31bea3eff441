// Package riskgate derives whether the sender account currently typed into
// the submission form is blocked. It shows an optimistic ACTIVE status the
// moment a value is entered and reconciles it against the external authority
// after a debounce window, without ever blocking the operator's typing.
package riskgate

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/banking-fraud-console/internal/domain/account"
)

// State identifies where the gate is in its lookup lifecycle
type State string

const (
	StateEmpty            State = "EMPTY"
	StateOptimisticActive State = "OPTIMISTIC_ACTIVE"
	StateChecking         State = "CHECKING"
	StateResolvedActive   State = "RESOLVED_ACTIVE"
	StateResolvedBlocked  State = "RESOLVED_BLOCKED"
)

// StatusLookup resolves the authoritative risk status for an account number.
// Implementations map "not found" to an ACTIVE status with zero failures.
type StatusLookup interface {
	AccountStatus(ctx context.Context, accountNumber string) (*account.RiskStatus, error)
}

// FieldGate is the contract the console consults before permitting a manual
// submission for the current sender-account field value.
type FieldGate interface {
	// SetSenderAccount feeds the latest field value into the gate
	SetSenderAccount(value string)
	// Permitted reports whether submission is allowed and returns the
	// current status for display
	Permitted() (bool, *account.RiskStatus)
	// State returns the current lifecycle state
	State() State
	// Status returns a copy of the current status, nil when the field is empty
	Status() *account.RiskStatus
	// Close cancels any pending debounce timer
	Close()
}

// Gate is the per-session risk gate for the sender-account field. Only the
// most recently scheduled debounce timer is honored; lookups carry a sequence
// token so a slow response for an earlier value can never overwrite a newer
// one. In-flight lookups are not aborted, their results are discarded.
type Gate struct {
	logger        *slog.Logger
	lookup        StatusLookup
	authenticated func() bool
	debounce      time.Duration

	mu            sync.Mutex
	state         State
	status        *account.RiskStatus
	accountNumber string
	timer         *time.Timer
	seq           uint64
}

// New creates a risk gate. The authenticated callback is consulted before
// scheduling any authoritative lookup; unauthenticated sessions stay on the
// optimistic path permanently.
func New(logger *slog.Logger, lookup StatusLookup, authenticated func() bool, debounce time.Duration) *Gate {
	if debounce <= 0 {
		debounce = 500 * time.Millisecond
	}
	return &Gate{
		logger:        logger,
		lookup:        lookup,
		authenticated: authenticated,
		debounce:      debounce,
		state:         StateEmpty,
	}
}

// SetSenderAccount handles one edit of the sender-account field. It cancels
// any pending lookup timer, supersedes in-flight lookups, and immediately
// reflects an optimistic ACTIVE status for a non-empty value.
func (g *Gate) SetSenderAccount(value string) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.seq++
	g.cancelTimerLocked()

	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		g.state = StateEmpty
		g.status = nil
		g.accountNumber = ""
		return
	}

	g.accountNumber = trimmed
	g.status = account.NewActive(trimmed)
	g.state = StateOptimisticActive

	if g.authenticated == nil || !g.authenticated() {
		// No authoritative check without credentials; the optimistic
		// status stands for this field value.
		return
	}

	seq := g.seq
	g.timer = time.AfterFunc(g.debounce, func() {
		g.check(seq, trimmed)
	})
}

// check runs the authoritative lookup scheduled for the given edit. Stale
// invocations (the field changed again in the meantime) are dropped both
// before and after the network call.
func (g *Gate) check(seq uint64, accountNumber string) {
	g.mu.Lock()
	if seq != g.seq {
		g.mu.Unlock()
		return
	}
	g.state = StateChecking
	g.mu.Unlock()

	status, err := g.lookup.AccountStatus(context.Background(), accountNumber)

	g.mu.Lock()
	defer g.mu.Unlock()
	if seq != g.seq {
		g.logger.Debug("discarding superseded account status result", "account_number", accountNumber)
		return
	}

	if err != nil {
		// Lookup failures never surface to the operator; the optimistic
		// status stands and the form remains usable.
		g.logger.Debug("account status lookup failed, keeping optimistic status",
			"account_number", accountNumber,
			"error", err,
		)
		g.status = account.NewActive(accountNumber)
		g.state = StateOptimisticActive
		return
	}

	g.status = status
	if status.Blocked() {
		g.state = StateResolvedBlocked
		g.logger.Info("sender account resolved as blocked",
			"account_number", accountNumber,
			"unblock_at", status.UnblockAt,
			"failed_count_last_5min", status.FailedCountLast5Min,
		)
		return
	}
	g.state = StateResolvedActive
}

// Permitted reports whether submission is allowed for the current field
// value. Submission is denied only on an authoritative BLOCKED resolution;
// optimistic and in-flight states never block the operator.
func (g *Gate) Permitted() (bool, *account.RiskStatus) {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state != StateResolvedBlocked, g.status.Clone()
}

// State returns the current lifecycle state
func (g *Gate) State() State {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.state
}

// Status returns a copy of the current status, nil when the field is empty
func (g *Gate) Status() *account.RiskStatus {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.status.Clone()
}

// Close cancels any pending debounce timer and supersedes in-flight lookups.
// Called when the owning session is discarded.
func (g *Gate) Close() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.seq++
	g.cancelTimerLocked()
}

func (g *Gate) cancelTimerLocked() {
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
}
