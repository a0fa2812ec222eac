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
)

const accountColumns = `account_id, owner_id, name, account_type, currency_code, initial_balance, current_balance,
	include_in_net_worth, archived, notes, closing_day, due_day, due_month_offset, due_holiday_policy,
	autopay_enabled, autopay_account_id, created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

func newPgxAccountRepository(pool *pgxpool.Pool) portsrepo.AccountRepositoryFacade {
	return &PgxAccountRepository{BaseRepository{Pool: pool}}
}

var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (*domain.Account, error) {
	var a domain.Account
	err := row.Scan(
		&a.AccountID,
		&a.OwnerID,
		&a.Name,
		&a.AccountType,
		&a.CurrencyCode,
		&a.InitialBalance,
		&a.CurrentBalance,
		&a.IncludeInNetWorth,
		&a.Archived,
		&a.Notes,
		&a.ClosingDay,
		&a.DueDay,
		&a.DueMonthOffset,
		&a.DueHolidayPolicy,
		&a.AutopayEnabled,
		&a.AutopayAccountID,
		&a.CreatedAt,
		&a.CreatedBy,
		&a.LastUpdatedAt,
		&a.LastUpdatedBy,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (r *PgxAccountRepository) SaveAccount(ctx context.Context, account domain.Account) error {
	query := `
		INSERT INTO accounts (` + accountColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20);
	`
	_, err := r.Pool.Exec(ctx, query,
		account.AccountID,
		account.OwnerID,
		account.Name,
		account.AccountType,
		account.CurrencyCode,
		account.InitialBalance,
		account.CurrentBalance,
		account.IncludeInNetWorth,
		account.Archived,
		account.Notes,
		account.ClosingDay,
		account.DueDay,
		account.DueMonthOffset,
		account.DueHolidayPolicy,
		account.AutopayEnabled,
		account.AutopayAccountID,
		account.CreatedAt,
		account.CreatedBy,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	return mapPgError(err, "failed to save account "+account.AccountID)
}

func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, account domain.Account) error {
	query := `
		UPDATE accounts SET
			name = $2,
			include_in_net_worth = $3,
			archived = $4,
			notes = $5,
			closing_day = $6,
			due_day = $7,
			due_month_offset = $8,
			due_holiday_policy = $9,
			autopay_enabled = $10,
			autopay_account_id = $11,
			last_updated_at = $12,
			last_updated_by = $13
		WHERE account_id = $1;
	`
	tag, err := r.Pool.Exec(ctx, query,
		account.AccountID,
		account.Name,
		account.IncludeInNetWorth,
		account.Archived,
		account.Notes,
		account.ClosingDay,
		account.DueDay,
		account.DueMonthOffset,
		account.DueHolidayPolicy,
		account.AutopayEnabled,
		account.AutopayAccountID,
		account.LastUpdatedAt,
		account.LastUpdatedBy,
	)
	if err != nil {
		return mapPgError(err, "failed to update account "+account.AccountID)
	}
	if tag.RowsAffected() == 0 {
		return mapPgError(pgx.ErrNoRows, "account "+account.AccountID)
	}
	return nil
}

func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	account, err := scanAccount(r.Pool.QueryRow(ctx, query, accountID))
	if err != nil {
		return nil, mapPgError(err, "failed to find account "+accountID)
	}
	return account, nil
}

func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1);`
	rows, err := r.Pool.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to find accounts by ids: %w", err)
	}
	defer rows.Close()
	return collectAccountMap(rows)
}

func (r *PgxAccountRepository) FindAccountsByType(ctx context.Context, ownerID string, accountType domain.AccountType) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_id = $1 AND account_type = $2 ORDER BY created_at;`
	rows, err := r.Pool.Query(ctx, query, ownerID, accountType)
	if err != nil {
		return nil, fmt.Errorf("failed to find accounts by type: %w", err)
	}
	defer rows.Close()
	return collectAccounts(rows)
}

func (r *PgxAccountRepository) ListAccounts(ctx context.Context, ownerID string, limit int, offset int) ([]domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE owner_id = $1 ORDER BY created_at LIMIT $2 OFFSET $3;`
	rows, err := r.Pool.Query(ctx, query, ownerID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()
	return collectAccounts(rows)
}

// FindAccountsByIDsForUpdate locks the account rows for the duration of the
// transaction. IDs are sorted by the query to keep lock order stable across
// concurrent units of work.
func (r *PgxAccountRepository) FindAccountsByIDsForUpdate(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1) ORDER BY account_id FOR UPDATE;`
	rows, err := tx.Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}
	defer rows.Close()
	return collectAccountMap(rows)
}

func (r *PgxAccountRepository) UpdateAccountBalancesInTx(ctx context.Context, tx pgx.Tx, balanceChanges map[string]decimal.Decimal, userID string, now time.Time) error {
	query := `
		UPDATE accounts
		SET current_balance = current_balance + $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1;
	`
	batch := &pgx.Batch{}
	for accountID, delta := range balanceChanges {
		batch.Queue(query, accountID, delta, now, userID)
	}
	br := tx.SendBatch(ctx, batch)
	defer br.Close()

	for range balanceChanges {
		tag, err := br.Exec()
		if err != nil {
			return fmt.Errorf("failed to update account balance: %w", err)
		}
		if tag.RowsAffected() == 0 {
			return mapPgError(pgx.ErrNoRows, "account for balance update")
		}
	}
	return nil
}

func collectAccounts(rows pgx.Rows) ([]domain.Account, error) {
	var accounts []domain.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("account rows: %w", err)
	}
	return accounts, nil
}

func collectAccountMap(rows pgx.Rows) (map[string]domain.Account, error) {
	accounts, err := collectAccounts(rows)
	if err != nil {
		return nil, err
	}
	out := make(map[string]domain.Account, len(accounts))
	for _, account := range accounts {
		out[account.AccountID] = account
	}
	return out, nil
}
