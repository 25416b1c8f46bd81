package services

import (
	"context"

	"github.com/SscSPs/expenseflow/internal/core/domain"
	"github.com/SscSPs/expenseflow/internal/dto"
)

// CategoryReaderSvc defines read operations for category data
type CategoryReaderSvc interface {
	// ListCategories retrieves categories, optionally only the active ones.
	ListCategories(ctx context.Context, activeOnly bool) ([]domain.Category, error)
}

// CategoryWriterSvc defines administrative operations on categories
type CategoryWriterSvc interface {
	// CreateCategory creates a new active category. Requires an administrator.
	CreateCategory(ctx context.Context, req dto.CreateCategoryRequest, creatorUserID string) (*domain.Category, error)

	// SetCategoryActive activates or deactivates a category. Requires an administrator.
	SetCategoryActive(ctx context.Context, categoryID string, isActive bool, requestingUserID string) (*domain.Category, error)
}

// CategorySvcFacade combines all category-related service interfaces
type CategorySvcFacade interface {
	CategoryReaderSvc
	CategoryWriterSvc
}
