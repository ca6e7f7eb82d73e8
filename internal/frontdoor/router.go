// Package frontdoor serves the built single-page app and forwards API calls to
// the DIC backend.
package frontdoor

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	mw "github.com/kiranshivaraju/dicanalyzer/internal/frontdoor/middleware"
	"github.com/kiranshivaraju/dicanalyzer/internal/frontdoor/response"
)

// Dependencies holds all handler and middleware dependencies for the router.
// Nil middleware is skipped.
type Dependencies struct {
	APIPrefix string

	Auth           *mw.Auth
	RateLimit      *mw.RateLimit
	Audit          *mw.Audit
	AggregateCache *mw.AggregateCache

	Proxy         http.Handler
	Static        http.Handler
	HealthHandler http.HandlerFunc
	AuditHandler  http.HandlerFunc
}

// NewRouter builds the Chi router with middleware stack and all routes.
func NewRouter(deps Dependencies) http.Handler {
	r := chi.NewRouter()
	prefix := "/" + strings.Trim(deps.APIPrefix, "/")

	// Global middleware
	r.Use(mw.RequestID)
	r.Use(mw.Logger)
	r.Use(mw.Recovery)

	// Public health check
	r.Get("/healthz", orNotImplemented(deps.HealthHandler))

	r.Group(func(r chi.Router) {
		if deps.Auth != nil {
			r.Use(deps.Auth.Authenticate)
		}

		r.Get("/_frontdoor/audit", orNotImplemented(deps.AuditHandler))

		// Backend API
		r.Group(func(r chi.Router) {
			if deps.RateLimit != nil {
				r.Use(deps.RateLimit.Limit)
			}
			if deps.Audit != nil {
				r.Use(deps.Audit.Record)
			}
			if deps.AggregateCache != nil {
				r.Use(deps.AggregateCache.Handle)
			}
			r.Handle(prefix+"/*", orNotImplemented(handlerFunc(deps.Proxy)))
		})

		// Everything else is the SPA
		r.Handle("/*", orNotImplemented(handlerFunc(deps.Static)))
	})

	return r
}

func handlerFunc(h http.Handler) http.HandlerFunc {
	if h == nil {
		return nil
	}
	return h.ServeHTTP
}

// orNotImplemented returns the handler if non-nil, or a 501 placeholder.
func orNotImplemented(h http.HandlerFunc) http.HandlerFunc {
	if h != nil {
		return h
	}
	return func(w http.ResponseWriter, r *http.Request) {
		response.Error(w, http.StatusNotImplemented, "NOT_IMPLEMENTED", "Endpoint not enabled", nil)
	}
}
