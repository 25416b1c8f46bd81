// Package cache holds read-through caches layered over the database repositories.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/SscSPs/expenseflow/internal/core/domain"
	portsrepo "github.com/SscSPs/expenseflow/internal/core/ports/repositories"
	"github.com/SscSPs/expenseflow/internal/middleware"
	"github.com/redis/go-redis/v9"
)

const (
	categoryKeyPrefix     = "expenseflow:categories:"
	categoryGenerationKey = categoryKeyPrefix + "generation"
)

// CategoryCache caches category listings in Redis. Redis failures are logged
// and the call falls through to the wrapped repository.
//
// Listing keys carry a generation that every write bumps. A listing that read
// the database before a write stores under the old generation, which no reader
// asks for again, and old generations expire with the TTL.
type CategoryCache struct {
	next   portsrepo.CategoryRepositoryFacade
	client *redis.Client
	ttl    time.Duration
}

// NewCategoryCache wraps next with a Redis-backed listing cache.
func NewCategoryCache(next portsrepo.CategoryRepositoryFacade, client *redis.Client, ttl time.Duration) *CategoryCache {
	return &CategoryCache{next: next, client: client, ttl: ttl}
}

var _ portsrepo.CategoryRepositoryFacade = (*CategoryCache)(nil)

// WithCategoryCache returns a repository option that layers the cache over the category repository.
func WithCategoryCache(client *redis.Client, ttl time.Duration) func(*portsrepo.RepositoryProvider) {
	return func(p *portsrepo.RepositoryProvider) {
		p.CategoryRepo = NewCategoryCache(p.CategoryRepo, client, ttl)
	}
}

func listingKey(generation int64, activeOnly bool) string {
	filter := "all"
	if activeOnly {
		filter = "active"
	}
	return fmt.Sprintf("%sv%d:%s", categoryKeyPrefix, generation, filter)
}

func (c *CategoryCache) FindCategoryByID(ctx context.Context, categoryID string) (*domain.Category, error) {
	return c.next.FindCategoryByID(ctx, categoryID)
}

func (c *CategoryCache) ListCategories(ctx context.Context, activeOnly bool) ([]domain.Category, error) {
	logger := middleware.GetLoggerFromCtx(ctx)

	generation, err := c.client.Get(ctx, categoryGenerationKey).Int64()
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.Warn("Category cache generation read failed", slog.String("error", err.Error()))
		return c.next.ListCategories(ctx, activeOnly)
	}
	key := listingKey(generation, activeOnly)

	raw, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var categories []domain.Category
		jsonErr := json.Unmarshal(raw, &categories)
		if jsonErr == nil {
			return categories, nil
		}
		logger.Warn("Discarding undecodable category cache entry", slog.String("key", key), slog.String("error", jsonErr.Error()))
	case errors.Is(err, redis.Nil):
	default:
		logger.Warn("Category cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	categories, err := c.next.ListCategories(ctx, activeOnly)
	if err != nil {
		return nil, err
	}

	if payload, err := json.Marshal(categories); err == nil {
		if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
			logger.Warn("Category cache write failed", slog.String("key", key), slog.String("error", err.Error()))
		}
	}
	return categories, nil
}

func (c *CategoryCache) SaveCategory(ctx context.Context, category domain.Category) error {
	if err := c.next.SaveCategory(ctx, category); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *CategoryCache) UpdateCategoryStatus(ctx context.Context, categoryID string, isActive bool, updatedBy string, updatedAt time.Time) error {
	if err := c.next.UpdateCategoryStatus(ctx, categoryID, isActive, updatedBy, updatedAt); err != nil {
		return err
	}
	c.invalidate(ctx)
	return nil
}

func (c *CategoryCache) invalidate(ctx context.Context) {
	if err := c.client.Incr(ctx, categoryGenerationKey).Err(); err != nil {
		middleware.GetLoggerFromCtx(ctx).Warn("Category cache invalidation failed", slog.String("error", err.Error()))
	}
}
