package models

import "time"

// RequestStatus enumerates the lifecycle states of a service request.
type RequestStatus string

const (
	StatusSubmitted   RequestStatus = "submitted"
	StatusUnderReview RequestStatus = "under_review"
	StatusApproved    RequestStatus = "approved"
	StatusRejected    RequestStatus = "rejected"
	StatusCompleted   RequestStatus = "completed"
)

// RequestPriority enumerates priority levels.
type RequestPriority string

const (
	PriorityLow    RequestPriority = "low"
	PriorityMedium RequestPriority = "medium"
	PriorityHigh   RequestPriority = "high"
	PriorityUrgent RequestPriority = "urgent"
)

// Request is the central workflow entity: a citizen's application for a
// catalog service, reviewed by department staff.
type Request struct {
	ID             string          `db:"id" json:"id"`
	RequestNumber  string          `db:"request_number" json:"requestNumber"`
	UserID         string          `db:"user_id" json:"userId"`
	ServiceID      string          `db:"service_id" json:"serviceId"`
	Status         RequestStatus   `db:"status" json:"status"`
	Priority       RequestPriority `db:"priority" json:"priority"`
	Notes          *string         `db:"notes" json:"notes,omitempty"`
	ReviewedBy     *string         `db:"reviewed_by" json:"reviewedBy,omitempty"`
	ReviewComments *string         `db:"review_comments" json:"reviewComments,omitempty"`
	ReviewedAt     *time.Time      `db:"reviewed_at" json:"reviewedAt,omitempty"`
	CompletedAt    *time.Time      `db:"completed_at" json:"completedAt,omitempty"`
	CreatedAt      time.Time       `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updatedAt"`

	// Denormalised joins populated by the repository.
	ServiceName  string   `db:"service_name" json:"serviceName,omitempty"`
	DepartmentID string   `db:"department_id" json:"departmentId,omitempty"`
	CitizenName  string   `db:"citizen_name" json:"citizenName,omitempty"`
	CitizenEmail string   `db:"citizen_email" json:"citizenEmail,omitempty"`
	ServiceFee   float64  `db:"service_fee" json:"serviceFee,omitempty"`
	Citizen      *User    `db:"-" json:"citizen,omitempty"`
	Service      *Service `db:"-" json:"service,omitempty"`
	Reviewer     *User    `db:"-" json:"reviewer,omitempty"`
}

// RequestFilter captures listing criteria for requests.
type RequestFilter struct {
	Status       *RequestStatus
	Priority     *RequestPriority
	ServiceID    *string
	DepartmentID *string
	UserID       *string
	Search       string
	Page         int
	PageSize     int
	SortBy       string
	SortOrder    string
}

// RequestScope narrows a listing or aggregate to what the caller may see.
type RequestScope struct {
	UserID       *string
	DepartmentID *string
}

// RequestStats aggregates request counts by status.
type RequestStats struct {
	Total       int `json:"total"`
	Submitted   int `json:"submitted"`
	UnderReview int `json:"underReview"`
	Approved    int `json:"approved"`
	Rejected    int `json:"rejected"`
	Completed   int `json:"completed"`
}
