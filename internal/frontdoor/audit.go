package frontdoor

import (
	"net/http"
	"strconv"

	"github.com/kiranshivaraju/dicanalyzer/internal/audit"
	"github.com/kiranshivaraju/dicanalyzer/internal/frontdoor/response"
	"github.com/kiranshivaraju/dicanalyzer/pkg/models"
)

const defaultAuditLimit = 50

// AuditHandler lists the most recent audited API calls. ?limit= is optional,
// 1..audit.MaxListLimit.
func AuditHandler(s audit.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultAuditLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 || n > audit.MaxListLimit {
				response.Error(w, http.StatusBadRequest, "VALIDATION_ERROR",
					"limit must be an integer between 1 and "+strconv.Itoa(audit.MaxListLimit),
					map[string]string{"limit": v})
				return
			}
			limit = n
		}

		events, err := s.ListRecent(r.Context(), limit)
		if err != nil {
			response.Error(w, http.StatusInternalServerError,
				"INTERNAL_ERROR", "Failed to list audit events", nil)
			return
		}
		if events == nil {
			events = []*models.AuditEvent{}
		}

		response.Collection(w, events, response.CollectionMeta{Limit: limit, Count: len(events)})
	}
}
