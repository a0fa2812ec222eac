package services

import (
	"context"

	"github.com/pocketfolio/pocketfolio/internal/core/domain"
	"github.com/pocketfolio/pocketfolio/internal/dto"
)

// CategorySvcFacade exposes the category directory.
type CategorySvcFacade interface {
	CreateCategory(ctx context.Context, req dto.CreateCategoryRequest, creatorUserID string) (*domain.Category, error)
	GetCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error)
	ListCategories(ctx context.Context, ownerID string) ([]domain.Category, error)
}
