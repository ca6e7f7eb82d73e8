package models

import (
	"time"

	"github.com/google/uuid"
)

// AuditEvent records one state-mutating API call that passed through the front door.
type AuditEvent struct {
	ID         uuid.UUID `db:"id"          json:"id"`
	RequestID  string    `db:"request_id"  json:"request_id"`
	Method     string    `db:"method"      json:"method"`
	Path       string    `db:"path"        json:"path"`
	Status     int       `db:"status"      json:"status"`
	DurationMS int64     `db:"duration_ms" json:"duration_ms"`
	RemoteAddr string    `db:"remote_addr" json:"remote_addr"`
	CreatedAt  time.Time `db:"created_at"  json:"created_at"`
}
