package models

import "time"

// Service is a catalog item offered by exactly one department.
// The department binding is the authorization scoping key for staff access
// to the service's requests.
type Service struct {
	ID                string    `db:"id" json:"id"`
	Name              string    `db:"name" json:"name"`
	Description       *string   `db:"description" json:"description,omitempty"`
	DepartmentID      string    `db:"department_id" json:"departmentId"`
	Fee               float64   `db:"fee" json:"fee"`
	ProcessingTime    *string   `db:"processing_time" json:"processingTime,omitempty"`
	RequiredDocuments *string   `db:"required_documents" json:"requiredDocuments,omitempty"`
	Active            bool      `db:"is_active" json:"isActive"`
	CreatedAt         time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt         time.Time `db:"updated_at" json:"updatedAt"`

	Department *Department `db:"-" json:"department,omitempty"`
}

// ServiceFilter captures filtering criteria for listing catalog services.
type ServiceFilter struct {
	DepartmentID *string
	Active       *bool
}
