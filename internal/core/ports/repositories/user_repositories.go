package repositories

import (
	"context"

	"github.com/pocketfolio/pocketfolio/internal/core/domain"
)

// UserRepositoryFacade defines persistence for account owners.
type UserRepositoryFacade interface {
	FindUserByID(ctx context.Context, userID string) (*domain.User, error)
	FindUserByEmail(ctx context.Context, email string) (*domain.User, error)
	SaveUser(ctx context.Context, user domain.User) error
}
