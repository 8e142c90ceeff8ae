package models

import "time"

// Audit actions recorded by the API and the operator CLI.
const (
	AuditActionSessionCreate     = "SESSION_CREATE"
	AuditActionSessionTransition = "SESSION_TRANSITION"
	AuditActionPostModerate      = "POST_MODERATE"
	AuditActionAdminSeed         = "ADMIN_SEED"
	AuditActionStatementExport   = "STATEMENT_EXPORT"
)

// AuditLog represents an audit trail record.
type AuditLog struct {
	ID         string    `db:"id" json:"id"`
	UserID     *string   `db:"user_id" json:"userId,omitempty"`
	Action     string    `db:"action" json:"action"`
	Resource   string    `db:"resource" json:"resource"`
	ResourceID *string   `db:"resource_id" json:"resourceId,omitempty"`
	OldValues  []byte    `db:"old_values" json:"oldValues,omitempty"`
	NewValues  []byte    `db:"new_values" json:"newValues,omitempty"`
	IPAddress  string    `db:"ip_address" json:"ipAddress"`
	UserAgent  string    `db:"user_agent" json:"userAgent"`
	CreatedAt  time.Time `db:"created_at" json:"createdAt"`
}
