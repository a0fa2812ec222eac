package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/pocketfolio/pocketfolio/internal/apperrors"
	"github.com/pocketfolio/pocketfolio/internal/core/domain"
	portsrepo "github.com/pocketfolio/pocketfolio/internal/core/ports/repositories"
	"github.com/pocketfolio/pocketfolio/internal/middleware"
	"github.com/pocketfolio/pocketfolio/internal/utils/billing"
)

// BillingService owns the statement lifecycle: opening and closing statements,
// settling them via autopay, and reconciling them when ledger entries change
// inside a closed or settled period.
type BillingService struct {
	accountRepo    portsrepo.AccountRepositoryFacade
	txnRepo        portsrepo.TransactionRepositoryFacade
	stmtRepo       portsrepo.StatementRepositoryFacade
	txManager      portsrepo.TransactionManager
	defaultOwnerID string
}

func NewBillingService(
	accountRepo portsrepo.AccountRepositoryFacade,
	txnRepo portsrepo.TransactionRepositoryFacade,
	stmtRepo portsrepo.StatementRepositoryFacade,
	txManager portsrepo.TransactionManager,
	defaultOwnerID string,
) *BillingService {
	return &BillingService{
		accountRepo:    accountRepo,
		txnRepo:        txnRepo,
		stmtRepo:       stmtRepo,
		txManager:      txManager,
		defaultOwnerID: defaultOwnerID,
	}
}

// EnsureOpenStatement returns the statement for (account, closingDate),
// creating it OPEN when absent. Existing statements are returned unchanged
// whatever their status.
func (s *BillingService) EnsureOpenStatement(ctx context.Context, accountID string, closingDate time.Time) (*domain.Statement, error) {
	card, err := s.loadCreditCard(ctx, accountID)
	if err != nil {
		return nil, err
	}

	var st *domain.Statement
	err = s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		st, err = s.ensureStatementInTx(ctx, tx, *card, billing.DateOf(closingDate))
		return err
	})
	if err != nil {
		return nil, err
	}
	return st, nil
}

// CloseForAccountOnDate freezes the billing period ending at closingDate.
// A statement already CLOSED, PARTIAL or PAID is returned unchanged, which
// makes the operation safe to repeat.
func (s *BillingService) CloseForAccountOnDate(ctx context.Context, accountID string, closingDate time.Time) (*domain.Statement, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	card, err := s.loadCreditCard(ctx, accountID)
	if err != nil {
		return nil, err
	}
	closingDate = billing.DateOf(closingDate)

	var st *domain.Statement
	err = s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		st, err = s.ensureStatementInTx(ctx, tx, *card, closingDate)
		if err != nil {
			return err
		}
		if st.Status != domain.StatementOpen {
			// Already closed or settled; closing is idempotent.
			return nil
		}

		// Freeze the period with a fresh sum so late inserts before the close
		// are captured.
		sum, err := s.periodSumInTx(ctx, tx, card.AccountID, st)
		if err != nil {
			return err
		}
		st.Balance = sum
		st.DueDate = billing.ComputeDueDate(st.ClosingDate, card.DueMonthOffset, card.DueDay, card.DueHolidayPolicy)
		st.Status = domain.StatementClosed
		st.LastUpdatedAt = time.Now()
		st.LastUpdatedBy = card.OwnerID

		if err := s.syncPlannedTransactionInTx(ctx, tx, *card, st); err != nil {
			return err
		}
		return s.stmtRepo.UpdateStatementInTx(ctx, tx, *st)
	})
	if err != nil {
		logger.Error("Failed to close statement", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, err
	}

	logger.Info("Statement closed",
		slog.String("account_id", accountID),
		slog.String("statement_id", st.StatementID),
		slog.String("status", string(st.Status)),
		slog.String("balance", st.Balance.String()),
	)
	return st, nil
}

// AutoCloseForDay closes every credit card whose closing day falls on the
// given civil date. A closing day past the month's end matches the last day of
// the month. Per-account failures are logged and do not stop the run.
func (s *BillingService) AutoCloseForDay(ctx context.Context, today time.Time) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	today = billing.DateOf(today)

	cards, err := s.accountRepo.FindAccountsByType(ctx, s.defaultOwnerID, domain.CreditCard)
	if err != nil {
		logger.Error("Failed to list credit cards for auto close", slog.String("error", err.Error()))
		return err
	}

	var failed int
	for i := range cards {
		card := cards[i]
		if card.Archived || card.ClosingDay == nil {
			continue
		}
		if !closingDayMatches(*card.ClosingDay, today) {
			continue
		}
		if _, err := s.CloseForAccountOnDate(ctx, card.AccountID, today); err != nil {
			failed++
			logger.Error("Auto close failed for account",
				slog.String("error", err.Error()),
				slog.String("account_id", card.AccountID),
			)
		}
	}

	if failed > 0 {
		return fmt.Errorf("auto close: %d account(s) failed", failed)
	}
	return nil
}

// closingDayMatches reports whether a configured closing day falls on the
// given civil date, treating days past the month's end as the last day.
func closingDayMatches(closingDay int, today time.Time) bool {
	last := billing.LastDayOfMonth(today.Year(), today.Month())
	effective := closingDay
	if effective > last {
		effective = last
	}
	return today.Day() == effective
}

// AutopayDueStatements settles every CLOSED statement due on the given civil
// date. Each statement settles in its own transaction so one failure cannot
// poison the batch, and a POSTED-payment guard makes re-runs no-ops.
func (s *BillingService) AutopayDueStatements(ctx context.Context, today time.Time) error {
	logger := middleware.GetLoggerFromCtx(ctx)
	today = billing.DateOf(today)

	due, err := s.stmtRepo.FindStatementsDueOn(ctx, today, domain.StatementClosed)
	if err != nil {
		logger.Error("Failed to list due statements", slog.String("error", err.Error()))
		return err
	}

	var failed int
	for i := range due {
		stID := due[i].StatementID
		err := s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
			return s.settleStatementInTx(ctx, tx, stID, today)
		})
		if err != nil {
			failed++
			logger.Error("Autopay failed for statement",
				slog.String("error", err.Error()),
				slog.String("statement_id", stID),
			)
		}
	}

	if failed > 0 {
		return fmt.Errorf("autopay: %d statement(s) failed", failed)
	}
	return nil
}

// ListStatements returns an account's statements, newest closing date first.
func (s *BillingService) ListStatements(ctx context.Context, accountID string, limit int, offset int) ([]domain.Statement, error) {
	if _, err := s.accountRepo.FindAccountByID(ctx, accountID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = 50
	}
	stmts, err := s.stmtRepo.ListStatementsByAccount(ctx, accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	if stmts == nil {
		return []domain.Statement{}, nil
	}
	return stmts, nil
}

// ReconcileInTx re-derives the statement covering occurredAt after a ledger
// mutation on a credit card, within the caller's transaction. Unsettled
// statements get a fresh balance and planned-payment sync; settled statements
// get the posted-payment cascade, moving funds in either direction as the
// period sum drifts from what was paid.
func (s *BillingService) ReconcileInTx(ctx context.Context, tx pgx.Tx, card domain.Account, occurredAt time.Time) error {
	closingDate := billing.NextClosingDate(occurredAt, card.ClosingDay)

	st, err := s.stmtRepo.FindStatementByAccountAndClosingDateInTx(ctx, tx, card.AccountID, closingDate)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			_, err = s.ensureStatementInTx(ctx, tx, card, closingDate)
			return err
		}
		return err
	}

	sum, err := s.periodSumInTx(ctx, tx, card.AccountID, st)
	if err != nil {
		return err
	}

	now := time.Now()
	if !st.IsSettled() {
		st.Balance = sum
		st.LastUpdatedAt = now
		st.LastUpdatedBy = card.OwnerID
		if err := s.syncPlannedTransactionInTx(ctx, tx, card, st); err != nil {
			return err
		}
		return s.stmtRepo.UpdateStatementInTx(ctx, tx, *st)
	}

	return s.reconcileSettledInTx(ctx, tx, card, st, sum, now)
}

// reconcileSettledInTx applies the posted-payment cascade. When the period now
// sums below what was paid, the payment shrinks (never below zero) and the
// overpayment flows card -> autopay source. When new charges push the sum above
// what was paid, the payment grows by whatever the source can still cover and
// that increment flows source -> card; anything the source cannot cover stays
// outstanding as PARTIAL.
func (s *BillingService) reconcileSettledInTx(ctx context.Context, tx pgx.Tx, card domain.Account, st *domain.Statement, sum decimal.Decimal, now time.Time) error {
	if st.PaidTransactionID == nil {
		// Settled with nothing paid (zero-balance statement); just store the sum.
		st.Balance = sum
		if sum.IsPositive() {
			st.Status = domain.StatementPartial
		}
		st.LastUpdatedAt = now
		st.LastUpdatedBy = card.OwnerID
		return s.stmtRepo.UpdateStatementInTx(ctx, tx, *st)
	}

	posted, err := s.txnRepo.FindTransactionByIDForUpdate(ctx, tx, *st.PaidTransactionID)
	if err != nil {
		return err
	}
	paid := posted.Amount

	target := sum
	if target.IsNegative() {
		target = decimal.Zero
	}
	delta := target.Sub(paid)

	if posted.SourceAccountID != nil && !delta.IsZero() {
		sourceID := *posted.SourceAccountID
		locked, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, []string{card.AccountID, sourceID})
		if err != nil {
			return err
		}

		var changes map[string]decimal.Decimal
		newAmount := paid
		if delta.IsNegative() {
			// Give the overpayment back: card -> autopay source.
			refund := delta.Neg()
			changes = map[string]decimal.Decimal{
				card.AccountID: refund.Neg(),
				sourceID:       refund,
			}
			newAmount = target
		} else {
			// New charges landed after settlement; top the payment up with what
			// the source can cover.
			source, ok := locked[sourceID]
			if !ok {
				return fmt.Errorf("%w: autopay source account %s", apperrors.ErrNotFound, sourceID)
			}
			topUp := decimal.Min(delta, source.CurrentBalance)
			if topUp.IsPositive() {
				changes = map[string]decimal.Decimal{
					sourceID:       topUp.Neg(),
					card.AccountID: topUp,
				}
				newAmount = paid.Add(topUp)
			}
		}

		if changes != nil {
			if err := s.accountRepo.UpdateAccountBalancesInTx(ctx, tx, changes, card.OwnerID, now); err != nil {
				return err
			}
			posted.Amount = newAmount
			posted.LastUpdatedAt = now
			posted.LastUpdatedBy = card.OwnerID
			if err := s.txnRepo.UpdateTransactionInTx(ctx, tx, *posted); err != nil {
				return err
			}
		}
	}

	st.Balance = sum.Sub(posted.Amount)
	if st.Balance.IsPositive() {
		st.Status = domain.StatementPartial
	} else {
		st.Status = domain.StatementPaid
	}
	st.LastUpdatedAt = now
	st.LastUpdatedBy = card.OwnerID
	return s.stmtRepo.UpdateStatementInTx(ctx, tx, *st)
}

// settleStatementInTx executes autopay for one statement under row locks.
func (s *BillingService) settleStatementInTx(ctx context.Context, tx pgx.Tx, statementID string, today time.Time) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	st, err := s.stmtRepo.FindStatementByIDForUpdate(ctx, tx, statementID)
	if err != nil {
		return err
	}
	if st.Status != domain.StatementClosed {
		return nil
	}

	card, err := s.accountRepo.FindAccountByID(ctx, st.AccountID)
	if err != nil {
		return err
	}
	if !card.AutopayEnabled || card.AutopayAccountID == nil {
		logger.Info("Statement due but autopay not configured", slog.String("statement_id", st.StatementID))
		return nil
	}

	// Idempotency guard: a POSTED entry linked to this statement means a
	// previous run already moved funds, whatever the statement row says.
	count, err := s.txnRepo.CountPostedByStatementInTx(ctx, tx, st.StatementID)
	if err != nil {
		return err
	}
	if count > 0 {
		logger.Warn("Statement already has a posted payment, skipping", slog.String("statement_id", st.StatementID))
		return nil
	}

	now := time.Now()

	if !st.Balance.IsPositive() {
		// Nothing owed; retire the statement and any planned placeholder.
		if err := s.deletePlannedTransactionInTx(ctx, tx, st); err != nil {
			return err
		}
		st.Status = domain.StatementPaid
		st.LastUpdatedAt = now
		st.LastUpdatedBy = card.OwnerID
		return s.stmtRepo.UpdateStatementInTx(ctx, tx, *st)
	}

	locked, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, []string{card.AccountID, *card.AutopayAccountID})
	if err != nil {
		return err
	}
	source, ok := locked[*card.AutopayAccountID]
	if !ok {
		return fmt.Errorf("%w: autopay source account %s", apperrors.ErrNotFound, *card.AutopayAccountID)
	}

	pay := decimal.Min(source.CurrentBalance, st.Balance)
	if !pay.IsPositive() {
		logger.Warn("Autopay source has no funds, statement left closed",
			slog.String("statement_id", st.StatementID),
			slog.String("source_account_id", source.AccountID),
		)
		return nil
	}

	changes := map[string]decimal.Decimal{
		source.AccountID: pay.Neg(),
		card.AccountID:   pay,
	}
	if err := s.accountRepo.UpdateAccountBalancesInTx(ctx, tx, changes, card.OwnerID, now); err != nil {
		return err
	}

	paidTxnID, err := s.postPaymentInTx(ctx, tx, *card, st, pay, today, now)
	if err != nil {
		return err
	}

	st.Balance = st.Balance.Sub(pay)
	if st.Balance.IsPositive() {
		st.Status = domain.StatementPartial
	} else {
		st.Status = domain.StatementPaid
	}
	st.PaidTransactionID = &paidTxnID
	st.PlannedTransactionID = nil
	st.LastUpdatedAt = now
	st.LastUpdatedBy = card.OwnerID
	if err := s.stmtRepo.UpdateStatementInTx(ctx, tx, *st); err != nil {
		return err
	}

	logger.Info("Statement settled",
		slog.String("statement_id", st.StatementID),
		slog.String("status", string(st.Status)),
		slog.String("paid", pay.String()),
	)
	return nil
}

// postPaymentInTx records the executed payment, promoting the planned
// placeholder to POSTED when one exists and inserting a fresh POSTED transfer
// otherwise.
func (s *BillingService) postPaymentInTx(ctx context.Context, tx pgx.Tx, card domain.Account, st *domain.Statement, pay decimal.Decimal, today time.Time, now time.Time) (string, error) {
	if st.PlannedTransactionID != nil {
		planned, err := s.txnRepo.FindTransactionByIDForUpdate(ctx, tx, *st.PlannedTransactionID)
		if err == nil {
			planned.Amount = pay
			planned.Status = domain.Posted
			planned.OccurredAt = today
			planned.LastUpdatedAt = now
			planned.LastUpdatedBy = card.OwnerID
			if err := s.txnRepo.UpdateTransactionInTx(ctx, tx, *planned); err != nil {
				return "", err
			}
			return planned.TransactionID, nil
		}
		if !errors.Is(err, apperrors.ErrNotFound) {
			return "", err
		}
		// Placeholder vanished; fall through to a fresh entry.
	}

	txn := domain.Transaction{
		TransactionID:   uuid.NewString(),
		OwnerID:         card.OwnerID,
		Kind:            domain.Transfer,
		Amount:          pay,
		OccurredAt:      today,
		CurrencyCode:    card.CurrencyCode,
		Status:          domain.Posted,
		SourceAccountID: card.AutopayAccountID,
		TargetAccountID: &card.AccountID,
		StatementID:     &st.StatementID,
		Notes:           "Autopay for statement " + st.ClosingDate.Format("2006-01-02"),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     card.OwnerID,
			LastUpdatedAt: now,
			LastUpdatedBy: card.OwnerID,
		},
	}
	if err := s.txnRepo.SaveTransactionInTx(ctx, tx, txn); err != nil {
		return "", err
	}
	return txn.TransactionID, nil
}

// ensureStatementInTx returns the statement for (card, closingDate), creating
// it OPEN with a freshly summed balance and, when autopay is configured, a
// PENDING planned payment. Losing the insert race to a concurrent writer
// degrades to returning the winner's row.
func (s *BillingService) ensureStatementInTx(ctx context.Context, tx pgx.Tx, card domain.Account, closingDate time.Time) (*domain.Statement, error) {
	st, err := s.stmtRepo.FindStatementByAccountAndClosingDateInTx(ctx, tx, card.AccountID, closingDate)
	if err == nil {
		return st, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}

	periodStart, periodEnd := billing.PeriodBounds(closingDate, card.ClosingDay)
	now := time.Now()

	st = &domain.Statement{
		StatementID: uuid.NewString(),
		AccountID:   card.AccountID,
		PeriodStart: periodStart,
		PeriodEnd:   periodEnd,
		ClosingDate: closingDate,
		DueDate:     billing.ComputeDueDate(closingDate, card.DueMonthOffset, card.DueDay, card.DueHolidayPolicy),
		Status:      domain.StatementOpen,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     card.OwnerID,
			LastUpdatedAt: now,
			LastUpdatedBy: card.OwnerID,
		},
	}

	sum, err := s.periodSumInTx(ctx, tx, card.AccountID, st)
	if err != nil {
		return nil, err
	}
	st.Balance = sum

	if err := s.stmtRepo.SaveStatementInTx(ctx, tx, *st); err != nil {
		if errors.Is(err, apperrors.ErrDuplicate) {
			return s.stmtRepo.FindStatementByAccountAndClosingDateInTx(ctx, tx, card.AccountID, closingDate)
		}
		return nil, err
	}

	if err := s.syncPlannedTransactionInTx(ctx, tx, card, st); err != nil {
		return nil, err
	}
	if st.PlannedTransactionID != nil {
		if err := s.stmtRepo.UpdateStatementInTx(ctx, tx, *st); err != nil {
			return nil, err
		}
	}
	return st, nil
}

// syncPlannedTransactionInTx keeps the PENDING placeholder aligned with the
// statement: created when autopay is configured and a positive balance is
// owed, updated when the balance or due date moved, deleted when nothing is
// owed anymore. Only meaningful while the statement is unsettled.
func (s *BillingService) syncPlannedTransactionInTx(ctx context.Context, tx pgx.Tx, card domain.Account, st *domain.Statement) error {
	wantPlanned := card.AutopayEnabled && card.AutopayAccountID != nil && st.Balance.IsPositive()
	now := time.Now()

	if st.PlannedTransactionID != nil {
		planned, err := s.txnRepo.FindTransactionByIDForUpdate(ctx, tx, *st.PlannedTransactionID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				st.PlannedTransactionID = nil
			} else {
				return err
			}
		} else if !wantPlanned {
			if err := s.txnRepo.DeleteTransactionInTx(ctx, tx, planned.TransactionID); err != nil {
				return err
			}
			st.PlannedTransactionID = nil
		} else {
			planned.Amount = st.Balance
			planned.OccurredAt = st.DueDate
			planned.LastUpdatedAt = now
			planned.LastUpdatedBy = card.OwnerID
			return s.txnRepo.UpdateTransactionInTx(ctx, tx, *planned)
		}
	}

	if !wantPlanned || st.PlannedTransactionID != nil {
		return nil
	}

	planned := domain.Transaction{
		TransactionID:   uuid.NewString(),
		OwnerID:         card.OwnerID,
		Kind:            domain.Transfer,
		Amount:          st.Balance,
		OccurredAt:      st.DueDate,
		CurrencyCode:    card.CurrencyCode,
		Status:          domain.Pending,
		SourceAccountID: card.AutopayAccountID,
		TargetAccountID: &card.AccountID,
		StatementID:     &st.StatementID,
		Notes:           "Planned autopay for statement " + st.ClosingDate.Format("2006-01-02"),
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     card.OwnerID,
			LastUpdatedAt: now,
			LastUpdatedBy: card.OwnerID,
		},
	}
	if err := s.txnRepo.SaveTransactionInTx(ctx, tx, planned); err != nil {
		return err
	}
	st.PlannedTransactionID = &planned.TransactionID
	return nil
}

func (s *BillingService) deletePlannedTransactionInTx(ctx context.Context, tx pgx.Tx, st *domain.Statement) error {
	if st.PlannedTransactionID == nil {
		return nil
	}
	err := s.txnRepo.DeleteTransactionInTx(ctx, tx, *st.PlannedTransactionID)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return err
	}
	st.PlannedTransactionID = nil
	return nil
}

// periodSumInTx computes the statement balance for the statement's period.
func (s *BillingService) periodSumInTx(ctx context.Context, tx pgx.Tx, accountID string, st *domain.Statement) (decimal.Decimal, error) {
	from, to := billing.PeriodInstants(st.PeriodStart, st.PeriodEnd)
	return s.txnRepo.SumAccountPeriodInTx(ctx, tx, accountID, from, to)
}

// GetStatementByID retrieves a single statement.
func (s *BillingService) GetStatementByID(ctx context.Context, statementID string) (*domain.Statement, error) {
	return s.stmtRepo.FindStatementByID(ctx, statementID)
}

// loadCreditCard fetches an account and verifies it participates in billing.
func (s *BillingService) loadCreditCard(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}
	if !account.IsCreditCard() {
		return nil, apperrors.NewBusinessError(apperrors.CodeNotCreditCard, "statements exist only for credit card accounts")
	}
	return account, nil
}
