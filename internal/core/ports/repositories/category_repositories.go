package repositories

import (
	"context"

	"github.com/pocketfolio/pocketfolio/internal/core/domain"
)

// CategoryRepositoryFacade is the category directory. The ledger only ever
// looks categories up by id to stamp transactions.
type CategoryRepositoryFacade interface {
	FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error)
	SaveCategory(ctx context.Context, category domain.Category) error
	ListCategories(ctx context.Context, ownerID string) ([]domain.Category, error)
}
