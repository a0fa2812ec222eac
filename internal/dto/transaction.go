package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/pocketfolio/pocketfolio/internal/core/domain"
)

// CreateTransactionRequest is the payload for recording a ledger entry.
// For INCOME/EXPENSE, AccountID is required; for TRANSFER, SourceAccountID and
// TargetAccountID are required instead.
type CreateTransactionRequest struct {
	OwnerID         string                 `json:"ownerID,omitempty"`
	Kind            domain.TransactionKind `json:"kind" binding:"required,oneof=INCOME EXPENSE TRANSFER"`
	Amount          decimal.Decimal        `json:"amount" binding:"required"`
	OccurredAt      time.Time              `json:"occurredAt" binding:"required"`
	CurrencyCode    string                 `json:"currencyCode" binding:"required,iso4217code"`
	AccountID       *string                `json:"accountID,omitempty"`
	SourceAccountID *string                `json:"sourceAccountID,omitempty"`
	TargetAccountID *string                `json:"targetAccountID,omitempty"`
	CategoryID      *string                `json:"categoryID,omitempty"`
	Notes           string                 `json:"notes"`
}

// ListTransactionsParams are the query parameters for listing ledger entries.
// Omitted owner falls back to the configured default owner; omitted bounds are
// unbounded (epoch to now).
type ListTransactionsParams struct {
	OwnerID   string
	From      *time.Time
	To        *time.Time
	Limit     int
	NextToken *string
}

// TransactionResponse is the API representation of a ledger entry.
type TransactionResponse struct {
	TransactionID   string                   `json:"transactionID"`
	OwnerID         string                   `json:"ownerID"`
	Kind            domain.TransactionKind   `json:"kind"`
	Amount          decimal.Decimal          `json:"amount"`
	OccurredAt      time.Time                `json:"occurredAt"`
	CurrencyCode    string                   `json:"currencyCode"`
	Status          domain.TransactionStatus `json:"status"`
	AccountID       *string                  `json:"accountID,omitempty"`
	SourceAccountID *string                  `json:"sourceAccountID,omitempty"`
	TargetAccountID *string                  `json:"targetAccountID,omitempty"`
	CategoryID      *string                  `json:"categoryID,omitempty"`
	StatementID     *string                  `json:"statementID,omitempty"`
	Notes           string                   `json:"notes,omitempty"`
	CreatedAt       time.Time                `json:"createdAt"`
}

// ListTransactionsResponse wraps a page of ledger entries with the token to
// resume listing from.
type ListTransactionsResponse struct {
	Transactions []TransactionResponse `json:"transactions"`
	NextToken    *string               `json:"nextToken,omitempty"`
}

// ToTransactionResponse maps a domain transaction to its API representation.
func ToTransactionResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		TransactionID:   t.TransactionID,
		OwnerID:         t.OwnerID,
		Kind:            t.Kind,
		Amount:          t.Amount,
		OccurredAt:      t.OccurredAt,
		CurrencyCode:    t.CurrencyCode,
		Status:          t.Status,
		AccountID:       t.AccountID,
		SourceAccountID: t.SourceAccountID,
		TargetAccountID: t.TargetAccountID,
		CategoryID:      t.CategoryID,
		StatementID:     t.StatementID,
		Notes:           t.Notes,
		CreatedAt:       t.CreatedAt,
	}
}

// ToTransactionResponses maps a slice of domain transactions.
func ToTransactionResponses(txns []domain.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, len(txns))
	for i := range txns {
		out[i] = ToTransactionResponse(&txns[i])
	}
	return out
}
