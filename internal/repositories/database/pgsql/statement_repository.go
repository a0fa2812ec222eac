package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/pocketfolio/pocketfolio/internal/core/domain"
	portsrepo "github.com/pocketfolio/pocketfolio/internal/core/ports/repositories"
)

const statementColumns = `statement_id, account_id, period_start, period_end, closing_date, due_date,
	balance, status, planned_transaction_id, paid_transaction_id,
	created_at, created_by, last_updated_at, last_updated_by`

type PgxStatementRepository struct {
	BaseRepository
}

func newPgxStatementRepository(pool *pgxpool.Pool) portsrepo.StatementRepositoryFacade {
	return &PgxStatementRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.StatementRepositoryFacade = (*PgxStatementRepository)(nil)

func scanStatement(row pgx.Row) (*domain.Statement, error) {
	var s domain.Statement
	err := row.Scan(
		&s.StatementID,
		&s.AccountID,
		&s.PeriodStart,
		&s.PeriodEnd,
		&s.ClosingDate,
		&s.DueDate,
		&s.Balance,
		&s.Status,
		&s.PlannedTransactionID,
		&s.PaidTransactionID,
		&s.CreatedAt,
		&s.CreatedBy,
		&s.LastUpdatedAt,
		&s.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func (r *PgxStatementRepository) FindStatementByID(ctx context.Context, statementID string) (*domain.Statement, error) {
	query := `SELECT ` + statementColumns + ` FROM statements WHERE statement_id = $1;`
	st, err := scanStatement(r.Pool.QueryRow(ctx, query, statementID))
	if err != nil {
		return nil, mapPgError(err, "failed to find statement "+statementID)
	}
	return st, nil
}

func (r *PgxStatementRepository) FindStatementsDueOn(ctx context.Context, dueDate time.Time, status domain.StatementStatus) ([]domain.Statement, error) {
	query := `SELECT ` + statementColumns + ` FROM statements WHERE due_date = $1 AND status = $2 ORDER BY account_id;`
	rows, err := r.Pool.Query(ctx, query, dueDate, status)
	if err != nil {
		return nil, fmt.Errorf("failed to find statements due on %s: %w", dueDate.Format("2006-01-02"), err)
	}
	defer rows.Close()
	return collectStatements(rows)
}

func (r *PgxStatementRepository) ListStatementsByAccount(ctx context.Context, accountID string, limit int, offset int) ([]domain.Statement, error) {
	query := `SELECT ` + statementColumns + ` FROM statements WHERE account_id = $1 ORDER BY closing_date DESC LIMIT $2 OFFSET $3;`
	rows, err := r.Pool.Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list statements: %w", err)
	}
	defer rows.Close()
	return collectStatements(rows)
}

func (r *PgxStatementRepository) SaveStatementInTx(ctx context.Context, tx pgx.Tx, st domain.Statement) error {
	query := `
		INSERT INTO statements (` + statementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14);
	`
	_, err := tx.Exec(ctx, query,
		st.StatementID,
		st.AccountID,
		st.PeriodStart,
		st.PeriodEnd,
		st.ClosingDate,
		st.DueDate,
		st.Balance,
		st.Status,
		st.PlannedTransactionID,
		st.PaidTransactionID,
		st.CreatedAt,
		st.CreatedBy,
		st.LastUpdatedAt,
		st.LastUpdatedBy,
	)
	return mapPgError(err, "statement for account "+st.AccountID+" closing "+st.ClosingDate.Format("2006-01-02"))
}

func (r *PgxStatementRepository) UpdateStatementInTx(ctx context.Context, tx pgx.Tx, st domain.Statement) error {
	query := `
		UPDATE statements
		SET balance = $2, status = $3, due_date = $4,
			planned_transaction_id = $5, paid_transaction_id = $6,
			last_updated_at = $7, last_updated_by = $8
		WHERE statement_id = $1;
	`
	tag, err := tx.Exec(ctx, query,
		st.StatementID,
		st.Balance,
		st.Status,
		st.DueDate,
		st.PlannedTransactionID,
		st.PaidTransactionID,
		st.LastUpdatedAt,
		st.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError(err, "failed to update statement "+st.StatementID)
	}
	if tag.RowsAffected() == 0 {
		return mapPgError(pgx.ErrNoRows, "statement "+st.StatementID)
	}
	return nil
}

func (r *PgxStatementRepository) FindStatementByAccountAndClosingDateInTx(ctx context.Context, tx pgx.Tx, accountID string, closingDate time.Time) (*domain.Statement, error) {
	query := `SELECT ` + statementColumns + ` FROM statements WHERE account_id = $1 AND closing_date = $2 FOR UPDATE;`
	st, err := scanStatement(tx.QueryRow(ctx, query, accountID, closingDate))
	if err != nil {
		return nil, mapPgError(err, "failed to find statement for account "+accountID)
	}
	return st, nil
}

func (r *PgxStatementRepository) FindStatementByIDForUpdate(ctx context.Context, tx pgx.Tx, statementID string) (*domain.Statement, error) {
	query := `SELECT ` + statementColumns + ` FROM statements WHERE statement_id = $1 FOR UPDATE;`
	st, err := scanStatement(tx.QueryRow(ctx, query, statementID))
	if err != nil {
		return nil, mapPgError(err, "failed to lock statement "+statementID)
	}
	return st, nil
}

func collectStatements(rows pgx.Rows) ([]domain.Statement, error) {
	var stmts []domain.Statement
	for rows.Next() {
		st, err := scanStatement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan statement: %w", err)
		}
		stmts = append(stmts, *st)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("statement rows: %w", err)
	}
	return stmts, nil
}
