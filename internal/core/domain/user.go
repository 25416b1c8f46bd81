package domain

import "time"

// User represents an employee, approver or administrator of the application.
type User struct {
	UserID       string  `json:"userID"` // Primary Key (e.g., UUID)
	Username     string  `json:"username"`
	PasswordHash string  `json:"-"`
	Name         string  `json:"name"`
	Email        string  `json:"email"`
	Department   *string `json:"department,omitempty"`
	Position     *string `json:"position,omitempty"`
	ManagerID    *string `json:"managerID,omitempty"` // Designated approver for this user's expenses
	IsAdmin      bool    `json:"isAdmin"`
	IsActive     bool    `json:"isActive"`
	AuditFields
	DeletedAt *time.Time `json:"deletedAt,omitempty"` // Used for soft delete
}

// ApproverID returns the user's designated approver, if any.
func (u *User) ApproverID() (string, bool) {
	if u.ManagerID == nil || *u.ManagerID == "" {
		return "", false
	}
	return *u.ManagerID, true
}
