package dto

import "time"

// LoginRequest holds the credentials submitted to the login endpoint.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse represents the response for a successful login.
type LoginResponse struct {
	Token     string    `json:"token"`
	TokenType string    `json:"tokenType"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// CreateUserRequest defines the data needed to register a new user.
type CreateUserRequest struct {
	Username   string  `json:"username" binding:"required,min=3,max=50"`
	Password   string  `json:"password" binding:"required,min=8,max=72"`
	Name       string  `json:"name" binding:"required,notblank,max=100"`
	Email      string  `json:"email" binding:"required,email"`
	Department *string `json:"department" binding:"omitempty,max=100"`
	Position   *string `json:"position" binding:"omitempty,max=100"`
	ManagerID  *string `json:"managerID" binding:"omitempty,uuid"`
}
