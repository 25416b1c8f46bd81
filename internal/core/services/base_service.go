package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SscSPs/expenseflow/internal/apperrors"
	portsrepo "github.com/SscSPs/expenseflow/internal/core/ports/repositories"
	"github.com/SscSPs/expenseflow/internal/middleware"
)

// BaseService provides common functionality for all services
type BaseService struct {
	// UserReader resolves callers for capability checks. Services that never
	// check capabilities may leave it nil.
	UserReader portsrepo.UserReader
}

// GetLogger gets the logger from context or returns a default one
func (s *BaseService) GetLogger(ctx context.Context) *slog.Logger {
	return middleware.GetLoggerFromCtx(ctx)
}

// LogError logs an error with consistent formatting
func (s *BaseService) LogError(ctx context.Context, err error, msg string, keyvals ...any) {
	logger := s.GetLogger(ctx)
	args := make([]any, 0, len(keyvals)+1)
	args = append(args, slog.String("error", err.Error()))
	args = append(args, keyvals...)
	logger.Error(msg, args...)
}

// LogWarn logs a warning with consistent formatting
func (s *BaseService) LogWarn(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Warn(msg, keyvals...)
}

// LogInfo logs an info message with consistent formatting
func (s *BaseService) LogInfo(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Info(msg, keyvals...)
}

// LogDebug logs a debug message with consistent formatting
func (s *BaseService) LogDebug(ctx context.Context, msg string, keyvals ...any) {
	s.GetLogger(ctx).Debug(msg, keyvals...)
}

// AuthorizeAdmin checks that userID holds the administrator capability.
func (s *BaseService) AuthorizeAdmin(ctx context.Context, userID string) error {
	if s.UserReader == nil {
		return apperrors.NewAppError(500, "no user reader configured for authorization", nil)
	}
	user, err := s.UserReader.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return apperrors.NewUnauthorizedError("caller no longer exists")
		}
		s.LogError(ctx, err, "Failed to resolve caller for authorization", slog.String("user_id", userID))
		return err
	}
	if !user.IsActive || !user.IsAdmin {
		s.LogWarn(ctx, "Administrator capability required", slog.String("user_id", userID))
		return apperrors.NewForbiddenError("administrator capability required")
	}
	return nil
}
