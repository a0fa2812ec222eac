package pgsql

import (
	"github.com/jackc/pgx/v5/pgxpool"

	portsrepo "github.com/pocketfolio/pocketfolio/internal/core/ports/repositories"
)

// NewRepositoryProvider wires the pgx-backed repositories onto a shared pool.
func NewRepositoryProvider(dbPool *pgxpool.Pool) portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		AccountRepo:     newPgxAccountRepository(dbPool),
		TransactionRepo: newPgxTransactionRepository(dbPool),
		StatementRepo:   newPgxStatementRepository(dbPool),
		CategoryRepo:    newPgxCategoryRepository(dbPool),
		UserRepo:        newPgxUserRepository(dbPool),
		TxManager:       &BaseRepository{Pool: dbPool},
	}
}
