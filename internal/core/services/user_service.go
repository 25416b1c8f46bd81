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
	"github.com/SscSPs/expenseflow/internal/utils"
	"github.com/SscSPs/expenseflow/internal/utils/pagination"
	"github.com/google/uuid"
)

const (
	defaultUserPageLimit = 50
	maxUserPageLimit     = 200
)

// userService implements the UserSvcFacade interface
type userService struct {
	BaseService
	userRepo         portsrepo.UserRepositoryFacade
	adminUsernames   map[string]struct{}
	defaultPageLimit int
	maxPageLimit     int
}

// UserServiceOption is a functional option for configuring the user service
type UserServiceOption func(*userService)

// WithAdminUsernames grants the administrator capability to users registering with one of these names.
func WithAdminUsernames(usernames ...string) UserServiceOption {
	return func(s *userService) {
		for _, u := range usernames {
			if u = strings.TrimSpace(u); u != "" {
				s.adminUsernames[u] = struct{}{}
			}
		}
	}
}

// WithUserPageLimits sets the default and maximum page size of the user directory.
func WithUserPageLimits(defaultLimit, maxLimit int) UserServiceOption {
	return func(s *userService) {
		if defaultLimit > 0 {
			s.defaultPageLimit = defaultLimit
		}
		if maxLimit > 0 {
			s.maxPageLimit = maxLimit
		}
	}
}

// NewUserService creates a new user service.
func NewUserService(userRepo portsrepo.UserRepositoryFacade, options ...UserServiceOption) portssvc.UserSvcFacade {
	svc := &userService{
		BaseService:      BaseService{UserReader: userRepo},
		userRepo:         userRepo,
		adminUsernames:   make(map[string]struct{}),
		defaultPageLimit: defaultUserPageLimit,
		maxPageLimit:     maxUserPageLimit,
	}
	for _, option := range options {
		option(svc)
	}
	return svc
}

var _ portssvc.UserSvcFacade = (*userService)(nil)

func (s *userService) CreateUser(ctx context.Context, req dto.CreateUserRequest) (*domain.User, error) {
	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		return nil, apperrors.NewValidationFailedError("username and password are required")
	}

	if _, err := s.userRepo.FindUserByUsername(ctx, username); err == nil {
		return nil, apperrors.NewConflictError(fmt.Sprintf("username %q is already taken", username))
	} else if !errors.Is(err, apperrors.ErrNotFound) {
		s.LogError(ctx, err, "Failed to check username availability", slog.String("username", username))
		return nil, err
	}

	if req.ManagerID != nil {
		if _, err := s.userRepo.FindUserByID(ctx, *req.ManagerID); err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewNotFoundError("manager not found")
			}
			s.LogError(ctx, err, "Failed to find manager", slog.String("manager_id", *req.ManagerID))
			return nil, err
		}
	}

	hash, err := utils.HashPassword(req.Password)
	if err != nil {
		return nil, apperrors.NewValidationFailedError(fmt.Sprintf("password cannot be used: %v", err))
	}

	userID := uuid.NewString()
	_, isAdmin := s.adminUsernames[username]
	user := domain.User{
		UserID:       userID,
		Username:     username,
		PasswordHash: hash,
		Name:         strings.TrimSpace(req.Name),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		Department:   req.Department,
		Position:     req.Position,
		ManagerID:    req.ManagerID,
		IsAdmin:      isAdmin,
		IsActive:     true,
		AuditFields:  domain.NewAuditFields(userID, time.Now().UTC()),
	}

	if err := s.userRepo.SaveUser(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrConflict) {
			return nil, apperrors.NewConflictError("username or email is already registered")
		}
		s.LogError(ctx, err, "Failed to save user", slog.String("username", username))
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.LogInfo(ctx, "User registered",
		slog.String("user_id", userID),
		slog.Bool("is_admin", isAdmin))
	return &user, nil
}

func (s *userService) GetUserByID(ctx context.Context, userID string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get user by ID", slog.String("user_id", userID))
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	user, err := s.userRepo.FindUserByUsername(ctx, username)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to get user by username", slog.String("username", username))
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context, params dto.ListUsersParams, requestingUserID string) ([]domain.User, error) {
	if err := s.AuthorizeAdmin(ctx, requestingUserID); err != nil {
		return nil, err
	}

	window := pagination.Normalize(params.Skip, params.Limit, s.defaultPageLimit, s.maxPageLimit)
	users, err := s.userRepo.FindUsers(ctx, window.Limit, window.Skip)
	if err != nil {
		s.LogError(ctx, err, "Failed to list users",
			slog.Int("skip", window.Skip),
			slog.Int("limit", window.Limit))
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	if users == nil {
		return []domain.User{}, nil
	}
	return users, nil
}

func (s *userService) AuthenticateUser(ctx context.Context, username, password string) (*domain.User, error) {
	invalid := apperrors.NewUnauthorizedError("invalid username or password")

	user, err := s.userRepo.FindUserByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, invalid
		}
		s.LogError(ctx, err, "Failed to look up user for authentication")
		return nil, err
	}
	if !user.IsActive || !utils.CheckPasswordHash(password, user.PasswordHash) {
		s.LogInfo(ctx, "Authentication failed", slog.String("user_id", user.UserID))
		return nil, invalid
	}
	return user, nil
}

func (s *userService) AssignManager(ctx context.Context, userID string, managerID *string, requestingUserID string) (*domain.User, error) {
	if err := s.AuthorizeAdmin(ctx, requestingUserID); err != nil {
		return nil, err
	}

	user, err := s.userRepo.FindUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.NewNotFoundError("user not found")
		}
		s.LogError(ctx, err, "Failed to find user", slog.String("user_id", userID))
		return nil, err
	}

	if managerID != nil {
		if *managerID == userID {
			return nil, apperrors.NewValidationFailedError("a user cannot approve their own expenses")
		}
		manager, err := s.userRepo.FindUserByID(ctx, *managerID)
		if err != nil {
			if errors.Is(err, apperrors.ErrNotFound) {
				return nil, apperrors.NewNotFoundError("manager not found")
			}
			s.LogError(ctx, err, "Failed to find manager", slog.String("manager_id", *managerID))
			return nil, err
		}
		if !manager.IsActive {
			return nil, apperrors.NewValidationFailedError("manager is not active")
		}
	}

	user.ManagerID = managerID
	user.Touch(requestingUserID, time.Now().UTC())
	if err := s.userRepo.UpdateUser(ctx, *user); err != nil {
		s.LogError(ctx, err, "Failed to assign manager", slog.String("user_id", userID))
		return nil, err
	}
	user.Version++

	s.LogInfo(ctx, "Manager assigned", slog.String("user_id", userID))
	return user, nil
}
