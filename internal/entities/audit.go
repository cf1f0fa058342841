package entities

import "time"

type AuditEventType string

const (
	AuditEventBackup  AuditEventType = "backup"
	AuditEventRestore AuditEventType = "restore"
	AuditEventExport  AuditEventType = "export"
	AuditEventDelete  AuditEventType = "delete"
	AuditEventSync    AuditEventType = "sync"
)

type AuditStatus string

const (
	AuditStatusSuccess AuditStatus = "success"
	AuditStatusFailed  AuditStatus = "failed"
)

// AuditEvent is one entry of the operations journal.
type AuditEvent struct {
	ID          string         `json:"id"`
	EventType   AuditEventType `json:"event_type"`
	Action      string         `json:"action"`      // e.g. "restore_merge", "sync_enable"
	Description string         `json:"description"` // human-readable summary
	Word        string         `json:"word,omitempty"`
	Metadata    map[string]any `json:"metadata,omitempty"`
	Status      AuditStatus    `json:"status"`
	ErrorMsg    string         `json:"error_msg,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}
