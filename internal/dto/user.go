package dto

import (
	"time"

	"github.com/SscSPs/expenseflow/internal/core/domain"
)

// UserResponse is the public view of a user. The password hash never leaves the service.
type UserResponse struct {
	UserID     string    `json:"userID"`
	Username   string    `json:"username"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Department *string   `json:"department,omitempty"`
	Position   *string   `json:"position,omitempty"`
	ManagerID  *string   `json:"managerID,omitempty"`
	IsAdmin    bool      `json:"isAdmin"`
	IsActive   bool      `json:"isActive"`
	CreatedAt  time.Time `json:"createdAt"`
}

// AssignManagerRequest sets or clears (null) the designated approver of a user.
type AssignManagerRequest struct {
	ManagerID *string `json:"managerID" binding:"omitempty,uuid"`
}

// ListUsersParams defines query parameters for the administrator user directory.
type ListUsersParams struct {
	Skip  int `form:"skip,default=0" binding:"min=0"`
	Limit int `form:"limit" binding:"min=0"`
}

// ToUserResponse converts a domain.User to UserResponse DTO
func ToUserResponse(u *domain.User) UserResponse {
	return UserResponse{
		UserID:     u.UserID,
		Username:   u.Username,
		Name:       u.Name,
		Email:      u.Email,
		Department: u.Department,
		Position:   u.Position,
		ManagerID:  u.ManagerID,
		IsAdmin:    u.IsAdmin,
		IsActive:   u.IsActive,
		CreatedAt:  u.CreatedAt,
	}
}

// ToUserResponses converts a slice of users.
func ToUserResponses(users []domain.User) []UserResponse {
	out := make([]UserResponse, len(users))
	for i := range users {
		out[i] = ToUserResponse(&users[i])
	}
	return out
}
