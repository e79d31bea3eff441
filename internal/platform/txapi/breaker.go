package txapi

import (
	"context"
	"log/slog"

	"github.com/sony/gobreaker"

	"github.com/banking-fraud-console/internal/config"
	"github.com/banking-fraud-console/internal/domain/account"
)

// StatusLookup is the account-status dependency the breaker wraps.
type StatusLookup interface {
	AccountStatus(ctx context.Context, accountNumber string) (*account.RiskStatus, error)
}

// LookupObserver receives the outcome of every status lookup ("active",
// "blocked" or "error"). The metrics collector satisfies it.
type LookupObserver interface {
	RecordStatusLookup(result string)
}

// BreakerLookup wraps a status lookup in a circuit breaker. When the upstream
// authority fails repeatedly the breaker opens and lookups fail fast, which
// the risk gate already degrades into its optimistic fallback. Unauthorized
// responses do not count as failures; they are an expected session state.
type BreakerLookup struct {
	logger   *slog.Logger
	base     StatusLookup
	breaker  *gobreaker.CircuitBreaker
	observer LookupObserver
}

// NewBreakerLookup creates a breaker-protected status lookup. The observer is
// optional; pass nil to skip lookup accounting.
func NewBreakerLookup(logger *slog.Logger, base StatusLookup, cfg *config.RiskGateConfig, observer LookupObserver) *BreakerLookup {
	settings := gobreaker.Settings{
		Name:    "account-status-lookup",
		Timeout: cfg.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerMaxFailures
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warn("status lookup breaker state changed",
				"breaker", name,
				"from", from.String(),
				"to", to.String(),
			)
		},
		IsSuccessful: func(err error) bool {
			return err == nil || err == ErrUnauthorized
		},
	}

	return &BreakerLookup{
		logger:   logger,
		base:     base,
		breaker:  gobreaker.NewCircuitBreaker(settings),
		observer: observer,
	}
}

// AccountStatus implements StatusLookup through the breaker. Every lookup,
// including fast failures from an open breaker, is reported to the observer.
func (b *BreakerLookup) AccountStatus(ctx context.Context, accountNumber string) (*account.RiskStatus, error) {
	result, err := b.breaker.Execute(func() (interface{}, error) {
		return b.base.AccountStatus(ctx, accountNumber)
	})
	if err != nil {
		b.observe("error")
		return nil, err
	}

	status := result.(*account.RiskStatus)
	if status.Blocked() {
		b.observe("blocked")
	} else {
		b.observe("active")
	}
	return status, nil
}

func (b *BreakerLookup) observe(result string) {
	if b.observer != nil {
		b.observer.RecordStatusLookup(result)
	}
}
