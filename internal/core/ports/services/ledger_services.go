package services

import (
	"context"

	"github.com/pocketfolio/pocketfolio/internal/core/domain"
	"github.com/pocketfolio/pocketfolio/internal/dto"
)

// LedgerSvcFacade exposes the transaction ledger: validated creation and
// deletion of balance-affecting entries plus range listing.
type LedgerSvcFacade interface {
	CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, creatorUserID string) (*domain.Transaction, error)
	DeleteTransaction(ctx context.Context, transactionID string, userID string) error
	GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)
	ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error)
}
