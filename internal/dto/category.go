package dto

import (
	"github.com/pocketfolio/pocketfolio/internal/core/domain"
)

// CreateCategoryRequest is the payload for creating a category.
type CreateCategoryRequest struct {
	Name             string                 `json:"name" binding:"required"`
	Kind             domain.TransactionKind `json:"kind" binding:"required,oneof=INCOME EXPENSE"`
	ParentCategoryID *string                `json:"parentCategoryID,omitempty"`
}

// CategoryResponse is the API representation of a category.
type CategoryResponse struct {
	CategoryID       string                 `json:"categoryID"`
	OwnerID          string                 `json:"ownerID"`
	Name             string                 `json:"name"`
	Kind             domain.TransactionKind `json:"kind"`
	ParentCategoryID *string                `json:"parentCategoryID,omitempty"`
}

// ListCategoriesResponse wraps an owner's categories.
type ListCategoriesResponse struct {
	Categories []CategoryResponse `json:"categories"`
}

// ToCategoryResponse maps a domain category to its API representation.
func ToCategoryResponse(c *domain.Category) CategoryResponse {
	return CategoryResponse{
		CategoryID:       c.CategoryID,
		OwnerID:          c.OwnerID,
		Name:             c.Name,
		Kind:             c.Kind,
		ParentCategoryID: c.ParentCategoryID,
	}
}

// ToCategoryResponses maps a slice of domain categories.
func ToCategoryResponses(categories []domain.Category) []CategoryResponse {
	out := make([]CategoryResponse, len(categories))
	for i := range categories {
		out[i] = ToCategoryResponse(&categories[i])
	}
	return out
}
