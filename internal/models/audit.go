package models

import (
	"encoding/json"
	"time"
)

// Audit actions recorded by services.
const (
	AuditActionLogin         = "auth.login"
	AuditActionRegister      = "auth.register"
	AuditActionUserCreate    = "user.create"
	AuditActionUserUpdate    = "user.update"
	AuditActionUserDelete    = "user.delete"
	AuditActionStatusChange  = "request.status_change"
	AuditActionRequestDelete = "request.delete"
	AuditActionRefund        = "payment.refund"
)

// AuditLog captures who did what to which resource.
type AuditLog struct {
	ID         string          `db:"id" json:"id"`
	UserID     *string         `db:"user_id" json:"userId,omitempty"`
	Action     string          `db:"action" json:"action"`
	Resource   string          `db:"resource" json:"resource"`
	ResourceID *string         `db:"resource_id" json:"resourceId,omitempty"`
	OldValues  json.RawMessage `db:"old_values" json:"oldValues,omitempty"`
	NewValues  json.RawMessage `db:"new_values" json:"newValues,omitempty"`
	IPAddress  string          `db:"ip_address" json:"ipAddress"`
	UserAgent  string          `db:"user_agent" json:"userAgent"`
	CreatedAt  time.Time       `db:"created_at" json:"createdAt"`
}
