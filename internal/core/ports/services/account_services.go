package services

import (
	"context"

	"github.com/pocketfolio/pocketfolio/internal/core/domain"
	"github.com/pocketfolio/pocketfolio/internal/dto"
)

// AccountSvcFacade exposes the account directory to handlers and sibling
// services.
type AccountSvcFacade interface {
	CreateAccount(ctx context.Context, req dto.CreateAccountRequest, creatorUserID string) (*domain.Account, error)
	GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error)
	ListAccounts(ctx context.Context, ownerID string, limit int, offset int) ([]domain.Account, error)
	UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, updaterUserID string) (*domain.Account, error)
}
