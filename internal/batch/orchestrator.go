// Package batch drives synthesis batches: sequential synthesize-then-submit
// cycles with partial-failure accounting and a fixed inter-submission
// throttle.
package batch

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/banking-fraud-console/internal/domain/transaction"
)

const (
	// MinSize and MaxSize bound a single batch request.
	MinSize = 1
	MaxSize = 100

	// DefaultThrottle is the pause between consecutive submissions.
	DefaultThrottle = 100 * time.Millisecond
)

// ErrSizeOutOfRange rejects a batch request before any work begins.
var ErrSizeOutOfRange = fmt.Errorf("batch size must be between %d and %d", MinSize, MaxSize)

// DraftSource produces one validated draft per batch position.
type DraftSource interface {
	Generate(index, total int) (transaction.Draft, error)
}

// Submitter sends a draft to the external transaction API and returns the
// confirmation message.
type Submitter interface {
	SubmitTransaction(ctx context.Context, draft transaction.Draft) (string, error)
}

// Result is the aggregate outcome of one batch run.
type Result struct {
	Requested int `json:"requested"`
	Succeeded int `json:"succeeded"`
	Failed    int `json:"failed"`
}

// AllFailed reports whether not a single unit went through; such a run is
// reported as an overall failure even though individual reasons vary.
func (r Result) AllFailed() bool {
	return r.Succeeded == 0
}

// Summary renders the operator-facing outcome message.
func (r Result) Summary() string {
	if r.AllFailed() {
		return fmt.Sprintf("Failed to generate transactions. %d transaction%s failed.",
			r.Failed, plural(r.Failed))
	}
	msg := fmt.Sprintf("Successfully generated %d transaction%s", r.Succeeded, plural(r.Succeeded))
	if r.Failed > 0 {
		msg += fmt.Sprintf(" (%d failed)", r.Failed)
	}
	return msg + "!"
}

func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// Orchestrator runs batches strictly sequentially: cycle i+1 does not begin
// until cycle i's submission has resolved and the throttle has elapsed. Two
// submissions are never in flight at once, which keeps the fixed throttle
// meaningful and avoids tripping the backend's own fraud triggers with
// concurrent sender-account churn.
type Orchestrator struct {
	logger    *slog.Logger
	source    DraftSource
	submitter Submitter
	throttle  time.Duration
}

// NewOrchestrator creates a batch orchestrator. A non-positive throttle falls
// back to DefaultThrottle.
func NewOrchestrator(logger *slog.Logger, source DraftSource, submitter Submitter, throttle time.Duration) *Orchestrator {
	if throttle <= 0 {
		throttle = DefaultThrottle
	}
	return &Orchestrator{
		logger:    logger,
		source:    source,
		submitter: submitter,
		throttle:  throttle,
	}
}

// Run executes count synthesize-then-submit cycles. Per-unit failures are
// recorded and never abort the run; context cancellation is the only early
// exit, returning the counts accumulated so far alongside ctx.Err().
func (o *Orchestrator) Run(ctx context.Context, count int) (Result, error) {
	if count < MinSize || count > MaxSize {
		return Result{}, ErrSizeOutOfRange
	}

	o.logger.Info("starting batch run", "requested", count, "throttle", o.throttle.String())

	result := Result{Requested: count}
	for i := 0; i < count; i++ {
		o.runUnit(ctx, i, count, &result)

		if i < count-1 {
			select {
			case <-ctx.Done():
				o.logger.Warn("batch run cancelled",
					"requested", count,
					"succeeded", result.Succeeded,
					"failed", result.Failed,
				)
				return result, ctx.Err()
			case <-time.After(o.throttle):
			}
		}
	}

	o.logger.Info("batch run complete",
		"requested", count,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
	)
	return result, nil
}

// runUnit executes one synthesize-then-submit cycle. Detailed failure reasons
// are logged here and deliberately not carried into the aggregate result.
func (o *Orchestrator) runUnit(ctx context.Context, index, count int, result *Result) {
	draft, err := o.source.Generate(index, count)
	if err != nil {
		result.Failed++
		o.logger.Error("draft synthesis failed", "index", index, "error", err)
		return
	}

	if _, err := o.submitter.SubmitTransaction(ctx, draft); err != nil {
		result.Failed++
		o.logger.Warn("submission failed",
			"index", index,
			"transaction_id", draft.TransactionID,
			"error", err,
		)
		return
	}

	result.Succeeded++
	o.logger.Debug("submission accepted", "index", index, "transaction_id", draft.TransactionID)
}
