package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// StatementStatus is the lifecycle state of a billing statement.
// Transitions: OPEN -> CLOSED -> {PAID | PARTIAL}; PARTIAL -> PAID via a later
// autopay re-run. PAID and PARTIAL never go back to OPEN or CLOSED.
type StatementStatus string

const (
	StatementOpen    StatementStatus = "OPEN"
	StatementClosed  StatementStatus = "CLOSED"
	StatementPartial StatementStatus = "PARTIAL"
	StatementPaid    StatementStatus = "PAID"
)

// Statement is the computed summary of a credit-card account's activity for one
// billing cycle. At most one statement exists per (account, closing date).
// Period bounds and the closing/due dates are civil dates at UTC midnight.
type Statement struct {
	StatementID string          `json:"statementID"`
	AccountID   string          `json:"accountID"` // Always a credit-card account
	PeriodStart time.Time       `json:"periodStart"`
	PeriodEnd   time.Time       `json:"periodEnd"` // Equals ClosingDate
	ClosingDate time.Time       `json:"closingDate"`
	DueDate     time.Time       `json:"dueDate"`
	Balance     decimal.Decimal `json:"balance"` // Outstanding amount owed
	Status      StatementStatus `json:"status"`

	// PlannedTransactionID references the PENDING placeholder for a future
	// autopay; PaidTransactionID references the executed POSTED transfer.
	PlannedTransactionID *string `json:"plannedTransactionID,omitempty"`
	PaidTransactionID    *string `json:"paidTransactionID,omitempty"`

	AuditFields
}

// IsSettled reports whether the statement has left the CLOSED state via autopay.
func (s *Statement) IsSettled() bool {
	return s.Status == StatementPaid || s.Status == StatementPartial
}
