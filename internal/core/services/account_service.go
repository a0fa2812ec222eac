package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pocketfolio/pocketfolio/internal/apperrors"
	"github.com/pocketfolio/pocketfolio/internal/core/domain"
	portsrepo "github.com/pocketfolio/pocketfolio/internal/core/ports/repositories"
	"github.com/pocketfolio/pocketfolio/internal/dto"
	"github.com/pocketfolio/pocketfolio/internal/middleware"
	"github.com/pocketfolio/pocketfolio/internal/utils"
)

// AccountService manages the account directory, including the credit-card
// billing configuration that drives the statement cycle.
type AccountService struct {
	accountRepo    portsrepo.AccountRepositoryFacade
	defaultOwnerID string
}

func NewAccountService(accountRepo portsrepo.AccountRepositoryFacade, defaultOwnerID string) *AccountService {
	return &AccountService{
		accountRepo:    accountRepo,
		defaultOwnerID: defaultOwnerID,
	}
}

func (s *AccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if !utils.IsValidCurrencyCode(req.CurrencyCode) {
		return nil, fmt.Errorf("%w: unknown currency code %q", apperrors.ErrValidation, req.CurrencyCode)
	}

	now := time.Now()
	account := domain.Account{
		AccountID:         uuid.NewString(),
		OwnerID:           s.defaultOwnerID,
		Name:              req.Name,
		AccountType:       req.AccountType,
		CurrencyCode:      utils.NormalizeCurrencyCode(req.CurrencyCode),
		InitialBalance:    req.InitialBalance,
		CurrentBalance:    req.InitialBalance, // Balance starts at the declared opening value
		IncludeInNetWorth: req.IncludeInNetWorth,
		Notes:             req.Notes,
		ClosingDay:        req.ClosingDay,
		DueDay:            req.DueDay,
		DueMonthOffset:    1,
		DueHolidayPolicy:  domain.HolidayNone,
		AutopayEnabled:    req.AutopayEnabled,
		AutopayAccountID:  req.AutopayAccountID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}
	if req.DueMonthOffset != nil {
		account.DueMonthOffset = *req.DueMonthOffset
	}
	if req.DueHolidayPolicy != "" {
		account.DueHolidayPolicy = domain.HolidayPolicy(req.DueHolidayPolicy)
	}

	if err := s.validateBillingConfig(ctx, &account); err != nil {
		return nil, err
	}

	if err := s.accountRepo.SaveAccount(ctx, account); err != nil {
		logger.Error("Failed to save account in repository", slog.String("error", err.Error()), slog.String("account_id", account.AccountID))
		return nil, err
	}

	logger.Info("Account created", slog.String("account_id", account.AccountID), slog.String("account_type", string(account.AccountType)))
	return &account, nil
}

func (s *AccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			logger.Error("Failed to find account by ID", slog.String("error", err.Error()), slog.String("account_id", accountID))
		}
		return nil, err
	}
	return account, nil
}

func (s *AccountService) ListAccounts(ctx context.Context, ownerID string, limit int, offset int) ([]domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)
	if ownerID == "" {
		ownerID = s.defaultOwnerID
	}
	if limit <= 0 {
		limit = 50
	}

	accounts, err := s.accountRepo.ListAccounts(ctx, ownerID, limit, offset)
	if err != nil {
		logger.Error("Failed to list accounts", slog.String("error", err.Error()))
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

func (s *AccountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, updaterUserID string) (*domain.Account, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	account, err := s.accountRepo.FindAccountByID(ctx, accountID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		account.Name = *req.Name
	}
	if req.IncludeInNetWorth != nil {
		account.IncludeInNetWorth = *req.IncludeInNetWorth
	}
	if req.Archived != nil {
		account.Archived = *req.Archived
	}
	if req.Notes != nil {
		account.Notes = *req.Notes
	}
	if req.ClosingDay != nil {
		account.ClosingDay = req.ClosingDay
	}
	if req.DueDay != nil {
		account.DueDay = req.DueDay
	}
	if req.DueMonthOffset != nil {
		account.DueMonthOffset = *req.DueMonthOffset
	}
	if req.DueHolidayPolicy != nil {
		account.DueHolidayPolicy = domain.HolidayPolicy(*req.DueHolidayPolicy)
	}
	if req.AutopayEnabled != nil {
		account.AutopayEnabled = *req.AutopayEnabled
	}
	if req.AutopayAccountID != nil {
		if *req.AutopayAccountID == "" {
			account.AutopayAccountID = nil
		} else {
			account.AutopayAccountID = req.AutopayAccountID
		}
	}

	if err := s.validateBillingConfig(ctx, account); err != nil {
		return nil, err
	}

	account.LastUpdatedAt = time.Now()
	account.LastUpdatedBy = updaterUserID

	if err := s.accountRepo.UpdateAccount(ctx, *account); err != nil {
		logger.Error("Failed to update account", slog.String("error", err.Error()), slog.String("account_id", accountID))
		return nil, err
	}

	logger.Info("Account updated", slog.String("account_id", accountID))
	return account, nil
}

// validateBillingConfig enforces the rules around credit-card billing fields
// and the autopay link.
func (s *AccountService) validateBillingConfig(ctx context.Context, account *domain.Account) error {
	if !account.IsCreditCard() {
		if account.AutopayEnabled || account.AutopayAccountID != nil {
			return apperrors.NewBusinessError(apperrors.CodeAutopayNotSupported, "autopay is only available on credit card accounts")
		}
		if account.ClosingDay != nil || account.DueDay != nil {
			return apperrors.NewBusinessError(apperrors.CodeNotCreditCard, "billing configuration is only available on credit card accounts")
		}
		return nil
	}

	if account.ClosingDay != nil && (*account.ClosingDay < 1 || *account.ClosingDay > 31) {
		return apperrors.NewBusinessError(apperrors.CodeClosingDayInvalid, "closing day must be between 1 and 31")
	}
	if account.DueMonthOffset < 0 || account.DueMonthOffset > 2 {
		return apperrors.NewBusinessError(apperrors.CodeDueMonthOffsetInvalid, "due month offset must be 0, 1 or 2")
	}
	switch account.DueHolidayPolicy {
	case domain.HolidayNone, domain.HolidayAdvance, domain.HolidayPostpone:
	default:
		return apperrors.NewBusinessError(apperrors.CodeDueHolidayPolicyInvalid, "due holiday policy must be NONE, ADVANCE or POSTPONE")
	}

	// Enabled and target must agree: both set or both unset.
	if account.AutopayEnabled != (account.AutopayAccountID != nil) {
		return apperrors.NewBusinessError(apperrors.CodeAutopayConflict, "autopayEnabled and autopayAccountID must be set together")
	}
	if account.AutopayAccountID == nil {
		return nil
	}

	targetID := *account.AutopayAccountID
	if targetID == account.AccountID {
		return apperrors.NewBusinessError(apperrors.CodeAutopayCircular, "an account cannot pay its own statements")
	}

	target, err := s.accountRepo.FindAccountByID(ctx, targetID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewBusinessError(apperrors.CodeAutopayAccountInvalid, "autopay source account does not exist")
		}
		return err
	}
	if target.Archived {
		return apperrors.NewBusinessError(apperrors.CodeAutopayAccountInvalid, "autopay source account is archived")
	}
	if target.IsCreditCard() {
		return apperrors.NewBusinessError(apperrors.CodeAutopayAccountInvalid, "a credit card cannot be an autopay source")
	}
	if target.AutopayAccountID != nil && *target.AutopayAccountID == account.AccountID {
		return apperrors.NewBusinessError(apperrors.CodeAutopayCircular, "autopay configuration forms a cycle")
	}
	return nil
}
