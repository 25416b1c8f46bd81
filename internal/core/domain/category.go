package domain

// Category is a named expense classification. Only IsActive changes after creation.
type Category struct {
	CategoryID  string `json:"categoryID"` // Primary Key (UUID)
	Name        string `json:"name"`       // Unique, case-sensitive
	Description string `json:"description"`
	IsActive    bool   `json:"isActive"`
	AuditFields
}
