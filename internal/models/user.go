package models

import (
	"database/sql"
	"time"
)

// User represents a row of the users table.
type User struct {
	UserID       string         `db:"user_id"`
	Username     string         `db:"username"`
	PasswordHash string         `db:"password_hash"`
	Name         string         `db:"name"`
	Email        string         `db:"email"`
	Department   sql.NullString `db:"department"`
	Position     sql.NullString `db:"position"`
	ManagerID    sql.NullString `db:"manager_id"`
	IsAdmin      bool           `db:"is_admin"`
	IsActive     bool           `db:"is_active"`
	AuditFields
	DeletedAt *time.Time `db:"deleted_at"`
}
