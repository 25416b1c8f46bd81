package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	"github.com/SscSPs/expenseflow/internal/core/domain"
	portsrepo "github.com/SscSPs/expenseflow/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/expenseflow/internal/core/ports/services"
	"github.com/SscSPs/expenseflow/internal/dto"
	"github.com/google/uuid"
)

// categoryService implements the CategorySvcFacade interface
type categoryService struct {
	BaseService
	categoryRepo portsrepo.CategoryRepositoryFacade
}

// NewCategoryService creates a new category service with the provided dependencies
func NewCategoryService(categoryRepo portsrepo.CategoryRepositoryFacade, userRepo portsrepo.UserReader) portssvc.CategorySvcFacade {
	return &categoryService{
		BaseService:  BaseService{UserReader: userRepo},
		categoryRepo: categoryRepo,
	}
}

// Ensure categoryService implements the CategorySvcFacade interface
var _ portssvc.CategorySvcFacade = (*categoryService)(nil)

func (s *categoryService) ListCategories(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	categories, err := s.categoryRepo.ListCategories(ctx, activeOnly)
	if err != nil {
		s.LogError(ctx, err, "Failed to list categories", slog.Bool("active_only", activeOnly))
		return nil, err
	}
	if categories == nil {
		return []domain.Category{}, nil
	}
	return categories, nil
}

func (s *categoryService) CreateCategory(ctx context.Context, req dto.CreateCategoryRequest, creatorUserID string) (*domain.Category, error) {
	if err := s.AuthorizeAdmin(ctx, creatorUserID); err != nil {
		return nil, err
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationFailedError("category name is required")
	}

	category := domain.Category{
		CategoryID:  uuid.NewString(),
		Name:        name,
		Description: strings.TrimSpace(req.Description),
		IsActive:    true,
		AuditFields: domain.NewAuditFields(creatorUserID, time.Now().UTC()),
	}

	if err := s.categoryRepo.SaveCategory(ctx, category); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			s.LogInfo(ctx, "Duplicate category name rejected", slog.String("name", name))
			return nil, apperrors.NewConflictError(fmt.Sprintf("category %q already exists", name))
		}
		s.LogError(ctx, err, "Failed to save category", slog.String("name", name))
		return nil, err
	}

	s.LogInfo(ctx, "Category created",
		slog.String("category_id", category.CategoryID),
		slog.String("name", category.Name))
	return &category, nil
}

func (s *categoryService) SetCategoryActive(ctx context.Context, categoryID string, isActive bool, requestingUserID string) (*domain.Category, error) {
	if err := s.AuthorizeAdmin(ctx, requestingUserID); err != nil {
		return nil, err
	}

	category, err := s.categoryRepo.FindCategoryByID(ctx, categoryID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("category not found")
		}
		s.LogError(ctx, err, "Failed to find category", slog.String("category_id", categoryID))
		return nil, err
	}
	if category.IsActive == isActive {
		return category, nil
	}

	now := time.Now().UTC()
	if err := s.categoryRepo.UpdateCategoryStatus(ctx, categoryID, isActive, requestingUserID, now); err != nil {
		s.LogError(ctx, err, "Failed to update category status", slog.String("category_id", categoryID))
		return nil, err
	}

	category.IsActive = isActive
	category.Touch(requestingUserID, now)
	category.Version++
	s.LogInfo(ctx, "Category status changed",
		slog.String("category_id", categoryID),
		slog.Bool("is_active", isActive))
	return category, nil
}
