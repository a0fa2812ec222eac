package services

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pocketfolio/pocketfolio/internal/core/domain"
)

// BillingSvcFacade owns the statement lifecycle (OPEN -> CLOSED ->
// PARTIAL/PAID) and the autopay/recalculation protocol.
type BillingSvcFacade interface {
	// EnsureOpenStatement returns the statement for (account, closingDate),
	// creating it OPEN (with a planned autopay placeholder when configured)
	// if it does not exist. Idempotent.
	EnsureOpenStatement(ctx context.Context, accountID string, closingDate time.Time) (*domain.Statement, error)

	// CloseForAccountOnDate freezes the period ending at closingDate for a
	// credit-card account. Idempotent by (account, closingDate).
	CloseForAccountOnDate(ctx context.Context, accountID string, closingDate time.Time) (*domain.Statement, error)

	// AutoCloseForDay closes every credit card whose closing day matches the
	// given civil date (31 = month-end). Failures are isolated per account.
	AutoCloseForDay(ctx context.Context, today time.Time) error

	// AutopayDueStatements settles every CLOSED statement due on the given
	// civil date. Failures are isolated per statement.
	AutopayDueStatements(ctx context.Context, today time.Time) error

	// ListStatements returns an account's statements, newest first.
	ListStatements(ctx context.Context, accountID string, limit int, offset int) ([]domain.Statement, error)

	// GetStatementByID retrieves a single statement.
	GetStatementByID(ctx context.Context, statementID string) (*domain.Statement, error)
}

// StatementReconciler is the coordinator seam the ledger calls inside its own
// unit of work after every create/delete touching a credit-card account.
type StatementReconciler interface {
	// ReconcileInTx resolves the billing period containing occurredAt, ensures
	// an open statement, re-sums the period and applies the reconciliation
	// cascade (planned refresh, posted delta with fund movement, or plain
	// balance store) within the caller's transaction.
	ReconcileInTx(ctx context.Context, tx pgx.Tx, card domain.Account, occurredAt time.Time) error
}
