package models

import "time"

// NotificationType enumerates notification severities.
type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
	NotificationError   NotificationType = "error"
)

// Notification is a user-scoped in-app message, created only as a side
// effect of lifecycle events.
type Notification struct {
	ID        string           `db:"id" json:"id"`
	UserID    string           `db:"user_id" json:"userId"`
	RequestID *string          `db:"request_id" json:"requestId,omitempty"`
	Title     string           `db:"title" json:"title"`
	Message   string           `db:"message" json:"message"`
	Type      NotificationType `db:"type" json:"type"`
	IsRead    bool             `db:"is_read" json:"isRead"`
	EmailSent bool             `db:"email_sent" json:"emailSent"`
	CreatedAt time.Time        `db:"created_at" json:"createdAt"`
	UpdatedAt time.Time        `db:"updated_at" json:"updatedAt"`
}

// NotificationFilter captures inbox listing criteria.
type NotificationFilter struct {
	UserID   string
	IsRead   *bool
	Page     int
	PageSize int
}
