// Package account defines the ephemeral per-account risk status fetched from
// the external account-status authority.
package account

// Status defines possible account risk states
type Status string

const (
	StatusActive  Status = "ACTIVE"
	StatusBlocked Status = "BLOCKED"
)

// RiskStatus is the per-account block/risk state as reported by the external
// authority. It is session-scoped and never persisted: created optimistically
// when an account number is entered, superseded by the authoritative fetch,
// and discarded when the field is cleared or changed.
//
// BlockedAt and UnblockAt are kept as the API's local-datetime strings; the
// console only displays them, it never does arithmetic on them.
type RiskStatus struct {
	AccountNumber       string `json:"accountNumber"`
	Status              Status `json:"status"`
	BlockedAt           string `json:"blockedAt,omitempty"`
	UnblockAt           string `json:"unblockAt,omitempty"`
	FailedCountLast5Min int    `json:"failedCountLast5Min"`
}

// NewActive returns the optimistic default status assumed for an account
// before the authoritative lookup resolves
func NewActive(accountNumber string) *RiskStatus {
	return &RiskStatus{
		AccountNumber: accountNumber,
		Status:        StatusActive,
	}
}

// Blocked reports whether the account is currently blocked
func (s *RiskStatus) Blocked() bool {
	return s != nil && s.Status == StatusBlocked
}

// Clone returns a copy safe to hand out to callers
func (s *RiskStatus) Clone() *RiskStatus {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}
