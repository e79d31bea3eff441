package synth

import (
	"fmt"

	"github.com/banking-fraud-console/internal/domain/transaction"
)

// DraftSource produces one draft per (index, total) batch position.
type DraftSource interface {
	Generate(index, total int) transaction.Draft
}

// Enforcer wraps a draft source and guarantees the structural invariants of
// every draft it hands out: distinct accounts, positive amount, non-empty
// transaction id. The source already retries collisions internally; the
// enforcer is the fail-closed backstop should a draft slip through invalid.
//
// Transaction-id uniqueness within a batch stays structural (wall-clock +
// index + random suffix); there is deliberately no seen-set check.
type Enforcer struct {
	source DraftSource
}

// NewEnforcer creates an enforcer around the given draft source
func NewEnforcer(source DraftSource) *Enforcer {
	return &Enforcer{source: source}
}

// Generate produces one validated draft for the given batch position
func (e *Enforcer) Generate(index, total int) (transaction.Draft, error) {
	draft := e.source.Generate(index, total)
	if err := draft.Validate(); err != nil {
		return transaction.Draft{}, fmt.Errorf("generated draft %d/%d violates invariants: %w", index, total, err)
	}
	return draft, nil
}
