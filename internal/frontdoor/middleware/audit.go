package middleware

import (
	"net/http"
	"strings"
	"time"

	"github.com/kiranshivaraju/dicanalyzer/pkg/models"
)

// AuditSink accepts events without blocking. audit.Recorder implements it.
type AuditSink interface {
	Enqueue(event *models.AuditEvent) bool
}

// Audit records every mutating call under the API prefix.
type Audit struct {
	sink   AuditSink
	prefix string
}

// NewAudit creates a new Audit middleware.
func NewAudit(sink AuditSink, prefix string) *Audit {
	return &Audit{sink: sink, prefix: "/" + strings.Trim(prefix, "/")}
}

func (a *Audit) Record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isMutating(r.Method) || !strings.HasPrefix(r.URL.Path, a.prefix+"/") {
			next.ServeHTTP(w, r)
			return
		}

		start := time.Now()
		rec := newStatusRecorder(w)
		next.ServeHTTP(rec, r)

		requestID, _ := GetRequestID(r)
		a.sink.Enqueue(&models.AuditEvent{
			RequestID:  requestID,
			Method:     r.Method,
			Path:       r.URL.Path,
			Status:     rec.status,
			DurationMS: time.Since(start).Milliseconds(),
			RemoteAddr: r.RemoteAddr,
			CreatedAt:  start.UTC(),
		})
	})
}
