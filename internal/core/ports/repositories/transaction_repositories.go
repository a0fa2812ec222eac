package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/pocketfolio/pocketfolio/internal/core/domain"
)

// TransactionReader defines read operations for ledger entries.
type TransactionReader interface {
	// FindTransactionByID retrieves a single ledger entry.
	FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error)

	// ListTransactions retrieves an owner's entries with occurrence time in
	// [from, to), ordered by occurrence time ascending, using token-based
	// pagination. It returns the entries and a token for the next page.
	ListTransactions(ctx context.Context, ownerID string, from, to time.Time, limit int, nextToken *string) ([]domain.Transaction, *string, error)
}

// TransactionWriter defines write operations for ledger entries. All writes
// happen inside an enclosing unit of work.
type TransactionWriter interface {
	// SaveTransactionInTx inserts a ledger entry within the given transaction.
	SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error

	// UpdateTransactionInTx updates an entry's amount, status, occurrence time
	// and audit fields (used to sync and promote planned autopay entries).
	UpdateTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error

	// DeleteTransactionInTx removes an entry within the given transaction.
	DeleteTransactionInTx(ctx context.Context, tx pgx.Tx, transactionID string) error
}

// TransactionStatementSupport defines the queries the billing engine runs
// against the ledger while settling or reconciling a statement.
type TransactionStatementSupport interface {
	// SumAccountPeriodInTx computes the statement balance contribution of an
	// account's entries with occurrence time in [from, to): EXPENSE adds,
	// INCOME subtracts, TRANSFER is excluded.
	SumAccountPeriodInTx(ctx context.Context, tx pgx.Tx, accountID string, from, to time.Time) (decimal.Decimal, error)

	// CountPostedByStatementInTx counts POSTED entries linked to a statement.
	// The autopay idempotency guard runs this inside the settlement transaction.
	CountPostedByStatementInTx(ctx context.Context, tx pgx.Tx, statementID string) (int64, error)

	// FindTransactionByIDForUpdate locks and returns a ledger entry.
	FindTransactionByIDForUpdate(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.Transaction, error)
}

// TransactionRepositoryFacade combines all ledger-entry repository interfaces.
type TransactionRepositoryFacade interface {
	TransactionReader
	TransactionWriter
	TransactionStatementSupport
}
