package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/pocketfolio/pocketfolio/internal/core/domain"
	portsrepo "github.com/pocketfolio/pocketfolio/internal/core/ports/repositories"
	"github.com/pocketfolio/pocketfolio/internal/utils/pagination"
)

const transactionColumns = `transaction_id, owner_id, kind, amount, occurred_at, currency_code, status,
	account_id, source_account_id, target_account_id, category_id, statement_id, notes,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxTransactionRepository struct {
	BaseRepository
}

func newPgxTransactionRepository(pool *pgxpool.Pool) portsrepo.TransactionRepositoryFacade {
	return &PgxTransactionRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.TransactionRepositoryFacade = (*PgxTransactionRepository)(nil)

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var t domain.Transaction
	err := row.Scan(
		&t.TransactionID,
		&t.OwnerID,
		&t.Kind,
		&t.Amount,
		&t.OccurredAt,
		&t.CurrencyCode,
		&t.Status,
		&t.AccountID,
		&t.SourceAccountID,
		&t.TargetAccountID,
		&t.CategoryID,
		&t.StatementID,
		&t.Notes,
		&t.CreatedAt,
		&t.CreatedBy,
		&t.LastUpdatedAt,
		&t.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func (r *PgxTransactionRepository) FindTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1;`
	txn, err := scanTransaction(r.Pool.QueryRow(ctx, query, transactionID))
	if err != nil {
		return nil, mapPgError(err, "failed to find transaction "+transactionID)
	}
	return txn, nil
}

// ListTransactions pages through an owner's entries ordered by
// (occurred_at, transaction_id). The token marks the last row of the previous
// page; one extra row is fetched to decide whether another page exists.
func (r *PgxTransactionRepository) ListTransactions(ctx context.Context, ownerID string, from, to time.Time, limit int, nextToken *string) ([]domain.Transaction, *string, error) {
	query := `
		SELECT ` + transactionColumns + `
		FROM transactions
		WHERE owner_id = $1 AND occurred_at >= $2 AND occurred_at < $3
	`
	args := []any{ownerID, from, to}

	if nextToken != nil && *nextToken != "" {
		afterTime, afterID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid pagination token: %w", err)
		}
		query += ` AND (occurred_at, transaction_id) > ($4, $5)`
		args = append(args, afterTime, afterID)
	}
	query += fmt.Sprintf(` ORDER BY occurred_at, transaction_id LIMIT $%d;`, len(args)+1)
	args = append(args, limit+1)

	rows, err := r.Pool.Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	var txns []domain.Transaction
	for rows.Next() {
		txn, err := scanTransaction(rows)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		txns = append(txns, *txn)
	}
	if err := rows.Err(); err != nil {
		return nil, nil, fmt.Errorf("transaction rows: %w", err)
	}

	var token *string
	if len(txns) > limit {
		txns = txns[:limit]
		last := txns[len(txns)-1]
		t := pagination.EncodeToken(last.OccurredAt, last.TransactionID)
		token = &t
	}
	return txns, token, nil
}

func (r *PgxTransactionRepository) SaveTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	query := `
		INSERT INTO transactions (` + transactionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := tx.Exec(ctx, query,
		txn.TransactionID,
		txn.OwnerID,
		txn.Kind,
		txn.Amount,
		txn.OccurredAt,
		txn.CurrencyCode,
		txn.Status,
		txn.AccountID,
		txn.SourceAccountID,
		txn.TargetAccountID,
		txn.CategoryID,
		txn.StatementID,
		txn.Notes,
		txn.CreatedAt,
		txn.CreatedBy,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	)
	return mapPgError(err, "failed to save transaction "+txn.TransactionID)
}

func (r *PgxTransactionRepository) UpdateTransactionInTx(ctx context.Context, tx pgx.Tx, txn domain.Transaction) error {
	query := `
		UPDATE transactions
		SET amount = $2, occurred_at = $3, status = $4, notes = $5, last_updated_at = $6, last_updated_by = $7
		WHERE transaction_id = $1;
	`
	tag, err := tx.Exec(ctx, query,
		txn.TransactionID,
		txn.Amount,
		txn.OccurredAt,
		txn.Status,
		txn.Notes,
		txn.LastUpdatedAt,
		txn.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError(err, "failed to update transaction "+txn.TransactionID)
	}
	if tag.RowsAffected() == 0 {
		return mapPgError(pgx.ErrNoRows, "transaction "+txn.TransactionID)
	}
	return nil
}

func (r *PgxTransactionRepository) DeleteTransactionInTx(ctx context.Context, tx pgx.Tx, transactionID string) error {
	tag, err := tx.Exec(ctx, `DELETE FROM transactions WHERE transaction_id = $1;`, transactionID)
	if err != nil {
		return mapPgError(err, "failed to delete transaction "+transactionID)
	}
	if tag.RowsAffected() == 0 {
		return mapPgError(pgx.ErrNoRows, "transaction "+transactionID)
	}
	return nil
}

// SumAccountPeriodInTx computes the statement contribution of an account's
// POSTED entries in [from, to): expenses add to what is owed, income (refunds)
// subtracts, transfers (payments) are excluded.
func (r *PgxTransactionRepository) SumAccountPeriodInTx(ctx context.Context, tx pgx.Tx, accountID string, from, to time.Time) (decimal.Decimal, error) {
	query := `
		SELECT COALESCE(SUM(
			CASE kind
				WHEN 'EXPENSE' THEN amount
				WHEN 'INCOME' THEN -amount
				ELSE 0
			END
		), 0)
		FROM transactions
		WHERE account_id = $1
		  AND status = 'POSTED'
		  AND occurred_at >= $2 AND occurred_at < $3;
	`
	var sum decimal.Decimal
	if err := tx.QueryRow(ctx, query, accountID, from, to).Scan(&sum); err != nil {
		return decimal.Zero, fmt.Errorf("failed to sum account period: %w", err)
	}
	return sum, nil
}

func (r *PgxTransactionRepository) CountPostedByStatementInTx(ctx context.Context, tx pgx.Tx, statementID string) (int64, error) {
	var count int64
	query := `SELECT COUNT(*) FROM transactions WHERE statement_id = $1 AND status = 'POSTED';`
	if err := tx.QueryRow(ctx, query, statementID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count posted statement transactions: %w", err)
	}
	return count, nil
}

func (r *PgxTransactionRepository) FindTransactionByIDForUpdate(ctx context.Context, tx pgx.Tx, transactionID string) (*domain.Transaction, error) {
	query := `SELECT ` + transactionColumns + ` FROM transactions WHERE transaction_id = $1 FOR UPDATE;`
	txn, err := scanTransaction(tx.QueryRow(ctx, query, transactionID))
	if err != nil {
		return nil, mapPgError(err, "failed to lock transaction "+transactionID)
	}
	return txn, nil
}
