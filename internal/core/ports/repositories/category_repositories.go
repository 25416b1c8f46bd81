package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/expenseflow/internal/core/domain"
)

// CategoryReader defines read operations for category data
type CategoryReader interface {
	// FindCategoryByID retrieves a category regardless of its active flag.
	FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error)

	// ListCategories retrieves categories ordered by name, optionally only active ones.
	ListCategories(ctx context.Context, activeOnly bool) ([]domain.Category, error)
}

// CategoryWriter defines write operations for category data
type CategoryWriter interface {
	// SaveCategory persists a new category. A duplicate name yields apperrors.ErrConflict.
	SaveCategory(ctx context.Context, category domain.Category) error

	// UpdateCategoryStatus flips the active flag, the only mutable field of a category.
	UpdateCategoryStatus(ctx context.Context, categoryID string, isActive bool, updatedBy string, updatedAt time.Time) error
}

// CategoryRepositoryFacade combines all category-related repository interfaces
type CategoryRepositoryFacade interface {
	CategoryReader
	CategoryWriter
}
