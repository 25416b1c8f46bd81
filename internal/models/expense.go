package models

import (
	"database/sql"
	"time"

	"github.com/shopspring/decimal"
)

// Expense represents a row of the expenses table.
type Expense struct {
	ExpenseID       string          `db:"expense_id"`
	EmployeeID      string          `db:"employee_id"`
	CategoryID      string          `db:"category_id"`
	Amount          decimal.Decimal `db:"amount"`
	CurrencyCode    string          `db:"currency_code"`
	Description     string          `db:"description"`
	ExpenseDate     time.Time       `db:"expense_date"`
	ProjectCode     sql.NullString  `db:"project_code"`
	BusinessPurpose sql.NullString  `db:"business_purpose"`
	Status          string          `db:"status"`
	SubmittedAt     sql.NullTime    `db:"submitted_at"`
	ApprovedAt      sql.NullTime    `db:"approved_at"`
	RejectedAt      sql.NullTime    `db:"rejected_at"`
	RejectionReason sql.NullString  `db:"rejection_reason"`
	AuditFields
}

// Approval represents a row of the approvals table.
type Approval struct {
	ApprovalID string         `db:"approval_id"`
	ExpenseID  string         `db:"expense_id"`
	ApproverID string         `db:"approver_id"`
	Status     string         `db:"status"`
	Comments   sql.NullString `db:"comments"`
	DecidedAt  sql.NullTime   `db:"decided_at"`
	AuditFields
}
