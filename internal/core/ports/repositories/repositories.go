package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager runs a function inside a single database transaction.
// Every exposed ledger/billing operation is one such unit of work: all reads,
// balance mutations and statement writes commit or roll back together.
type TransactionManager interface {
	WithTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}

// RepositoryProvider bundles the repository implementations handed to the
// service container.
type RepositoryProvider struct {
	AccountRepo     AccountRepositoryFacade
	TransactionRepo TransactionRepositoryFacade
	StatementRepo   StatementRepositoryFacade
	CategoryRepo    CategoryRepositoryFacade
	UserRepo        UserRepositoryFacade
	TxManager       TransactionManager
}
