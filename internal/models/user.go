package models

import "time"

// UserRole represents the available roles for the RBAC system.
type UserRole string

const (
	RoleCitizen        UserRole = "citizen"
	RoleOfficer        UserRole = "officer"
	RoleDepartmentHead UserRole = "department_head"
	RoleAdmin          UserRole = "admin"
)

// IsStaff reports whether the role belongs to department or portal staff.
func (r UserRole) IsStaff() bool {
	return r == RoleOfficer || r == RoleDepartmentHead || r == RoleAdmin
}

// User represents an application user stored in the users table.
// Officers and department heads carry a department binding; citizens never do.
type User struct {
	ID           string     `db:"id" json:"id"`
	Name         string     `db:"name" json:"name"`
	Email        string     `db:"email" json:"email"`
	PasswordHash string     `db:"password_hash" json:"-"`
	Role         UserRole   `db:"role" json:"role"`
	NationalID   *string    `db:"national_id" json:"nationalId,omitempty"`
	DateOfBirth  *time.Time `db:"date_of_birth" json:"dateOfBirth,omitempty"`
	PhoneNumber  *string    `db:"phone_number" json:"phoneNumber,omitempty"`
	Address      *string    `db:"address" json:"address,omitempty"`
	JobTitle     *string    `db:"job_title" json:"jobTitle,omitempty"`
	DepartmentID *string    `db:"department_id" json:"departmentId,omitempty"`
	Active       bool       `db:"is_active" json:"isActive"`
	LastLogin    *time.Time `db:"last_login" json:"lastLogin,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time  `db:"updated_at" json:"updatedAt"`
}

// UserFilter captures filtering criteria for listing users.
type UserFilter struct {
	Role         *UserRole
	DepartmentID *string
	Active       *bool
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

// UserStats summarises the user base by role.
type UserStats struct {
	Total           int `json:"total"`
	Citizens        int `json:"citizens"`
	Officers        int `json:"officers"`
	DepartmentHeads int `json:"departmentHeads"`
	Admins          int `json:"admins"`
	Active          int `json:"active"`
}

// Pagination contains pagination metadata returned in list responses.
type Pagination struct {
	Page       int `json:"page"`
	PageSize   int `json:"pageSize"`
	TotalCount int `json:"totalCount"`
}
