package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransactionKind is the balance effect category of a ledger entry.
type TransactionKind string

const (
	Income   TransactionKind = "INCOME"
	Expense  TransactionKind = "EXPENSE"
	Transfer TransactionKind = "TRANSFER"
)

// TransactionStatus distinguishes planned autopay placeholders from entries
// whose balance effect has been applied.
type TransactionStatus string

const (
	Pending TransactionStatus = "PENDING"
	Posted  TransactionStatus = "POSTED"
)

// Transaction is a single balance-affecting ledger entry. Exactly one of
// AccountID or the SourceAccountID/TargetAccountID pair is populated,
// matching Kind (single account for INCOME/EXPENSE, pair for TRANSFER).
type Transaction struct {
	TransactionID string            `json:"transactionID"`
	OwnerID       string            `json:"ownerID"`
	Kind          TransactionKind   `json:"kind"`
	Amount        decimal.Decimal   `json:"amount"` // Always positive
	OccurredAt    time.Time         `json:"occurredAt"`
	CurrencyCode  string            `json:"currencyCode"`
	Status        TransactionStatus `json:"status"`

	AccountID       *string `json:"accountID,omitempty"`       // INCOME/EXPENSE
	SourceAccountID *string `json:"sourceAccountID,omitempty"` // TRANSFER
	TargetAccountID *string `json:"targetAccountID,omitempty"` // TRANSFER

	CategoryID  *string `json:"categoryID,omitempty"`
	StatementID *string `json:"statementID,omitempty"` // Set on planned/posted autopay entries
	Notes       string  `json:"notes"`

	AuditFields
}

// IsAutopay reports whether this entry is owned by the billing engine.
func (t *Transaction) IsAutopay() bool {
	return t.StatementID != nil
}
