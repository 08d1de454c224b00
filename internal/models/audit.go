package models

import "time"

// AuditEntry represents a single audit log entry. Reparent operations are
// the main consumer: they record the old and new parent in Detail.
type AuditEntry struct {
	ID        int64          `json:"id"`
	TenantID  string         `json:"-"`
	Action    string         `json:"action"`
	NodeID    string         `json:"node_id"`
	Actor     string         `json:"actor,omitempty"`
	Detail    map[string]any `json:"detail,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

// AuditQueryOpts holds filters for querying the audit log.
type AuditQueryOpts struct {
	NodeID string
	Action string
	Since  *time.Time
	Limit  int
	Offset int
}
