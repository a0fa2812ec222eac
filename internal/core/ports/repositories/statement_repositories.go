package repositories

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/pocketfolio/pocketfolio/internal/core/domain"
)

// StatementReader defines read operations for statements.
type StatementReader interface {
	// FindStatementByID retrieves a statement by id.
	FindStatementByID(ctx context.Context, statementID string) (*domain.Statement, error)

	// FindStatementsDueOn retrieves all statements with the given due date and
	// status (the autopay job's work list).
	FindStatementsDueOn(ctx context.Context, dueDate time.Time, status domain.StatementStatus) ([]domain.Statement, error)

	// ListStatementsByAccount retrieves an account's statements, most recent
	// closing date first.
	ListStatementsByAccount(ctx context.Context, accountID string, limit int, offset int) ([]domain.Statement, error)
}

// StatementWriter defines statement mutations; all run inside a unit of work.
type StatementWriter interface {
	// SaveStatementInTx inserts a statement. The (account, closing date) unique
	// constraint surfaces as apperrors.ErrDuplicate when a concurrent writer won.
	SaveStatementInTx(ctx context.Context, tx pgx.Tx, st domain.Statement) error

	// UpdateStatementInTx updates a statement's balance, status, due date and
	// transaction links.
	UpdateStatementInTx(ctx context.Context, tx pgx.Tx, st domain.Statement) error

	// FindStatementByAccountAndClosingDateInTx reads the unique statement for
	// (account, closing date) within the transaction, locking it for update.
	FindStatementByAccountAndClosingDateInTx(ctx context.Context, tx pgx.Tx, accountID string, closingDate time.Time) (*domain.Statement, error)

	// FindStatementByIDForUpdate locks a statement row for settlement.
	FindStatementByIDForUpdate(ctx context.Context, tx pgx.Tx, statementID string) (*domain.Statement, error)
}

// StatementRepositoryFacade combines the statement repository interfaces.
type StatementRepositoryFacade interface {
	StatementReader
	StatementWriter
}
