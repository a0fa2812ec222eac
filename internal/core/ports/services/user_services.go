package services

import (
	"context"

	"github.com/pocketfolio/pocketfolio/internal/core/domain"
	"github.com/pocketfolio/pocketfolio/internal/dto"
)

// UserSvcFacade exposes owner management and credential verification.
type UserSvcFacade interface {
	CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error)
	GetUserByID(ctx context.Context, userID string) (*domain.User, error)
	// Authenticate verifies credentials and returns the matching user, or
	// apperrors.ErrForbidden when they do not match.
	Authenticate(ctx context.Context, email string, password string) (*domain.User, error)
}
