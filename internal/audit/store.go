package audit

import (
	"context"

	"github.com/kiranshivaraju/dicanalyzer/pkg/models"
)

// MaxListLimit caps ListRecent.
const MaxListLimit = 500

// Store is the audit trail interface. All database operations go through here.
type Store interface {
	Ping(ctx context.Context) error
	Record(ctx context.Context, event *models.AuditEvent) error
	ListRecent(ctx context.Context, limit int) ([]*models.AuditEvent, error)
}
