package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/pocketfolio/pocketfolio/internal/apperrors"
	"github.com/pocketfolio/pocketfolio/internal/core/domain"
	portsrepo "github.com/pocketfolio/pocketfolio/internal/core/ports/repositories"
	"github.com/pocketfolio/pocketfolio/internal/dto"
	"github.com/pocketfolio/pocketfolio/internal/middleware"
)

// CategoryService manages the category directory.
type CategoryService struct {
	categoryRepo   portsrepo.CategoryRepositoryFacade
	defaultOwnerID string
}

func NewCategoryService(categoryRepo portsrepo.CategoryRepositoryFacade, defaultOwnerID string) *CategoryService {
	return &CategoryService{
		categoryRepo:   categoryRepo,
		defaultOwnerID: defaultOwnerID,
	}
}

func (s *CategoryService) CreateCategory(ctx context.Context, req dto.CreateCategoryRequest, creatorUserID string) (*domain.Category, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	if req.ParentCategoryID != nil {
		parent, err := s.categoryRepo.FindCategoryByID(ctx, *req.ParentCategoryID)
		if err != nil {
			return nil, fmt.Errorf("parent category %s: %w", *req.ParentCategoryID, err)
		}
		if parent.Kind != req.Kind {
			return nil, fmt.Errorf("%w: parent category kind must match", apperrors.ErrValidation)
		}
	}

	now := time.Now()
	category := domain.Category{
		CategoryID:       uuid.NewString(),
		OwnerID:          s.defaultOwnerID,
		Name:             req.Name,
		Kind:             req.Kind,
		ParentCategoryID: req.ParentCategoryID,
		AuditFields: domain.AuditFields{
			CreatedAt:     now,
			CreatedBy:     creatorUserID,
			LastUpdatedAt: now,
			LastUpdatedBy: creatorUserID,
		},
	}

	if err := s.categoryRepo.SaveCategory(ctx, category); err != nil {
		logger.Error("Failed to save category", slog.String("error", err.Error()))
		return nil, err
	}

	logger.Info("Category created", slog.String("category_id", category.CategoryID))
	return &category, nil
}

func (s *CategoryService) GetCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	return s.categoryRepo.FindCategoryByID(ctx, categoryID)
}

func (s *CategoryService) ListCategories(ctx context.Context, ownerID string) ([]domain.Category, error) {
	if ownerID == "" {
		ownerID = s.defaultOwnerID
	}
	categories, err := s.categoryRepo.ListCategories(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if categories == nil {
		return []domain.Category{}, nil
	}
	return categories, nil
}
