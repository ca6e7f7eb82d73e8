package middleware

import (
	"net/http"

	"github.com/google/uuid"
)

const (
	RequestIDHeader   = "X-Request-ID"
	maxRequestIDBytes = 128
)

// RequestID tags every request with an ID, reusing a sane inbound
// X-Request-ID so proxied calls can be correlated with backend logs.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDBytes {
			id = uuid.NewString()
			r.Header.Set(RequestIDHeader, id)
		}
		w.Header().Set(RequestIDHeader, id)
		next.ServeHTTP(w, r.WithContext(SetRequestID(r.Context(), id)))
	})
}
