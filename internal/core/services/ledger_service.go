package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/pocketfolio/pocketfolio/internal/apperrors"
	"github.com/pocketfolio/pocketfolio/internal/core/domain"
	portsrepo "github.com/pocketfolio/pocketfolio/internal/core/ports/repositories"
	portssvc "github.com/pocketfolio/pocketfolio/internal/core/ports/services"
	"github.com/pocketfolio/pocketfolio/internal/dto"
	"github.com/pocketfolio/pocketfolio/internal/middleware"
	"github.com/pocketfolio/pocketfolio/internal/utils"
)

const (
	defaultListLimit = 50
	maxListLimit     = 100
)

// LedgerService records and removes balance-affecting entries. Every mutation
// runs as one unit of work: account rows lock, balances move, the entry lands,
// and any credit card touched gets its statement reconciled before commit.
type LedgerService struct {
	accountRepo    portsrepo.AccountRepositoryFacade
	txnRepo        portsrepo.TransactionRepositoryFacade
	categoryRepo   portsrepo.CategoryRepositoryFacade
	txManager      portsrepo.TransactionManager
	reconciler     portssvc.StatementReconciler
	defaultOwnerID string
}

func NewLedgerService(
	accountRepo portsrepo.AccountRepositoryFacade,
	txnRepo portsrepo.TransactionRepositoryFacade,
	categoryRepo portsrepo.CategoryRepositoryFacade,
	txManager portsrepo.TransactionManager,
	reconciler portssvc.StatementReconciler,
	defaultOwnerID string,
) *LedgerService {
	return &LedgerService{
		accountRepo:    accountRepo,
		txnRepo:        txnRepo,
		categoryRepo:   categoryRepo,
		txManager:      txManager,
		reconciler:     reconciler,
		defaultOwnerID: defaultOwnerID,
	}
}

func (s *LedgerService) CreateTransaction(ctx context.Context, req dto.CreateTransactionRequest, creatorUserID string) (*domain.Transaction, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !req.Amount.IsPositive() {
		return nil, fmt.Errorf("%w: amount must be positive", apperrors.ErrValidation)
	}
	accountIDs, err := accountIDsForKind(req)
	if err != nil {
		return nil, err
	}

	if req.CategoryID != nil {
		if req.Kind == domain.Transfer {
			return nil, fmt.Errorf("%w: transfers cannot carry a category", apperrors.ErrValidation)
		}
		if _, err := s.categoryRepo.FindCategoryByID(ctx, *req.CategoryID); err != nil {
			return nil, fmt.Errorf("category %s: %w", *req.CategoryID, err)
		}
	}

	ownerID := req.OwnerID
	if ownerID == "" {
		ownerID = s.defaultOwnerID
	}

	now := time.Now()
	txn := domain.Transaction{
		TransactionID:   uuid.NewString(),
		OwnerID:         ownerID,
		Kind:            req.Kind,
		Amount:          req.Amount,
		OccurredAt:      req.OccurredAt,
		CurrencyCode:    utils.NormalizeCurrencyCode(req.CurrencyCode),
		Status:          domain.Posted,
		AccountID:       req.AccountID,
		SourceAccountID: req.SourceAccountID,
		TargetAccountID: req.TargetAccountID,
		CategoryID:      req.CategoryID,
		Notes:           req.Notes,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	err = s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		accounts, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs)
		if err != nil {
			return err
		}
		if err := validateAccountsForEntry(&txn, accounts, accountIDs); err != nil {
			return err
		}

		changes := balanceChanges(&txn)
		if err := s.accountRepo.UpdateAccountBalancesInTx(ctx, tx, changes, creatorUserID, now); err != nil {
			return err
		}
		if err := s.txnRepo.SaveTransactionInTx(ctx, tx, txn); err != nil {
			return err
		}
		return s.reconcileTouchedCardsInTx(ctx, tx, accounts, txn.OccurredAt)
	})
	if err != nil {
		logger.Error("Failed to create transaction", slog.String("error", err.Error()), slog.String("kind", string(txn.Kind)))
		return nil, err
	}

	logger.Info("Transaction created",
		slog.String("transaction_id", txn.TransactionID),
		slog.String("kind", string(txn.Kind)),
		slog.String("amount", txn.Amount.String()),
	)
	return &txn, nil
}

// DeleteTransaction removes an entry and rolls its balance effect back.
// Entries owned by the billing engine are protected; settled statements are
// kept consistent through the same reconcile pass a create gets.
func (s *LedgerService) DeleteTransaction(ctx context.Context, transactionID string, userID string) error {
	logger := middleware.GetLoggerFromCtx(ctx)

	err := s.txManager.WithTx(ctx, func(tx pgx.Tx) error {
		txn, err := s.txnRepo.FindTransactionByIDForUpdate(ctx, tx, transactionID)
		if err != nil {
			return err
		}
		if txn.IsAutopay() {
			return apperrors.NewBusinessError(apperrors.CodeAutopayTxnProtected, "autopay transactions belong to their statement and cannot be deleted directly")
		}

		accountIDs := touchedAccountIDs(txn)
		accounts, err := s.accountRepo.FindAccountsByIDsForUpdate(ctx, tx, accountIDs)
		if err != nil {
			return err
		}

		if txn.Status == domain.Posted {
			changes := balanceChanges(txn)
			for id, delta := range changes {
				changes[id] = delta.Neg()
			}
			if err := s.accountRepo.UpdateAccountBalancesInTx(ctx, tx, changes, userID, time.Now()); err != nil {
				return err
			}
		}
		if err := s.txnRepo.DeleteTransactionInTx(ctx, tx, transactionID); err != nil {
			return err
		}
		return s.reconcileTouchedCardsInTx(ctx, tx, accounts, txn.OccurredAt)
	})
	if err != nil {
		logger.Error("Failed to delete transaction", slog.String("error", err.Error()), slog.String("transaction_id", transactionID))
		return err
	}

	logger.Info("Transaction deleted", slog.String("transaction_id", transactionID))
	return nil
}

func (s *LedgerService) GetTransactionByID(ctx context.Context, transactionID string) (*domain.Transaction, error) {
	return s.txnRepo.FindTransactionByID(ctx, transactionID)
}

func (s *LedgerService) ListTransactions(ctx context.Context, params dto.ListTransactionsParams) (*dto.ListTransactionsResponse, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	ownerID := params.OwnerID
	if ownerID == "" {
		ownerID = s.defaultOwnerID
	}
	from := time.Unix(0, 0).UTC()
	if params.From != nil {
		from = *params.From
	}
	to := time.Now()
	if params.To != nil {
		to = *params.To
	}
	limit := params.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}

	txns, nextToken, err := s.txnRepo.ListTransactions(ctx, ownerID, from, to, limit, params.NextToken)
	if err != nil {
		logger.Error("Failed to list transactions", slog.String("error", err.Error()))
		return nil, err
	}

	return &dto.ListTransactionsResponse{
		Transactions: dto.ToTransactionResponses(txns),
		NextToken:    nextToken,
	}, nil
}

// reconcileTouchedCardsInTx runs the statement reconcile for every credit card
// among the locked accounts, inside the caller's transaction.
func (s *LedgerService) reconcileTouchedCardsInTx(ctx context.Context, tx pgx.Tx, accounts map[string]domain.Account, occurredAt time.Time) error {
	for _, account := range accounts {
		if !account.IsCreditCard() {
			continue
		}
		if err := s.reconciler.ReconcileInTx(ctx, tx, account, occurredAt); err != nil {
			return fmt.Errorf("reconcile statement for account %s: %w", account.AccountID, err)
		}
	}
	return nil
}

// accountIDsForKind checks the kind/account-field pairing and returns the
// account IDs the entry touches.
func accountIDsForKind(req dto.CreateTransactionRequest) ([]string, error) {
	switch req.Kind {
	case domain.Income, domain.Expense:
		if req.AccountID == nil || *req.AccountID == "" {
			return nil, fmt.Errorf("%w: accountID is required for %s", apperrors.ErrValidation, req.Kind)
		}
		if req.SourceAccountID != nil || req.TargetAccountID != nil {
			return nil, fmt.Errorf("%w: source/target accounts are only valid for transfers", apperrors.ErrValidation)
		}
		return []string{*req.AccountID}, nil
	case domain.Transfer:
		if req.AccountID != nil {
			return nil, fmt.Errorf("%w: accountID is not valid for transfers", apperrors.ErrValidation)
		}
		if req.SourceAccountID == nil || *req.SourceAccountID == "" || req.TargetAccountID == nil || *req.TargetAccountID == "" {
			return nil, apperrors.NewBusinessError(apperrors.CodeTransferPairInvalid, "transfers require both source and target accounts")
		}
		if *req.SourceAccountID == *req.TargetAccountID {
			return nil, apperrors.NewBusinessError(apperrors.CodeSameAccount, "source and target accounts must differ")
		}
		return []string{*req.SourceAccountID, *req.TargetAccountID}, nil
	default:
		return nil, fmt.Errorf("%w: unknown transaction kind %q", apperrors.ErrValidation, req.Kind)
	}
}

// validateAccountsForEntry checks existence, archival, currency agreement and
// the credit-card transfer direction rule against the locked account rows.
func validateAccountsForEntry(txn *domain.Transaction, accounts map[string]domain.Account, accountIDs []string) error {
	for _, id := range accountIDs {
		account, ok := accounts[id]
		if !ok {
			return fmt.Errorf("account %s: %w", id, apperrors.ErrNotFound)
		}
		if account.Archived {
			return apperrors.NewBusinessError(apperrors.CodeAccountArchived, "account "+id+" is archived")
		}
		if account.CurrencyCode != txn.CurrencyCode {
			return apperrors.NewBusinessError(apperrors.CodeCrossCurrencyUnsupported, "transaction currency must match account currency")
		}
	}

	if txn.Kind == domain.Transfer {
		source := accounts[*txn.SourceAccountID]
		target := accounts[*txn.TargetAccountID]
		if source.IsCreditCard() && target.IsCreditCard() {
			return apperrors.NewBusinessError(apperrors.CodeTransferPairInvalid, "transfers between two credit cards are not allowed")
		}
		if source.IsCreditCard() {
			return apperrors.NewBusinessError(apperrors.CodeTransferDirectionInvalid, "transfers out of a credit card are not allowed")
		}
	}
	return nil
}

// balanceChanges maps the entry to signed per-account balance deltas.
func balanceChanges(txn *domain.Transaction) map[string]decimal.Decimal {
	changes := make(map[string]decimal.Decimal, 2)
	switch txn.Kind {
	case domain.Income:
		changes[*txn.AccountID] = txn.Amount
	case domain.Expense:
		changes[*txn.AccountID] = txn.Amount.Neg()
	case domain.Transfer:
		changes[*txn.SourceAccountID] = txn.Amount.Neg()
		changes[*txn.TargetAccountID] = txn.Amount
	}
	return changes
}

// touchedAccountIDs lists the accounts an existing entry affects.
func touchedAccountIDs(txn *domain.Transaction) []string {
	if txn.Kind == domain.Transfer {
		return []string{*txn.SourceAccountID, *txn.TargetAccountID}
	}
	return []string{*txn.AccountID}
}
