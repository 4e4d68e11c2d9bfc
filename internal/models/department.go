package models

import "time"

// Department is an organisational unit owning services and staff.
// Departments are soft-deactivated, never hard-deleted.
type Department struct {
	ID          string    `db:"id" json:"id"`
	Name        string    `db:"name" json:"name"`
	Description *string   `db:"description" json:"description,omitempty"`
	Email       *string   `db:"email" json:"email,omitempty"`
	Phone       *string   `db:"phone" json:"phone,omitempty"`
	Active      bool      `db:"is_active" json:"isActive"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// DepartmentFilter captures filtering criteria for listing departments.
type DepartmentFilter struct {
	Active *bool
}
