package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/kiranshivaraju/dicanalyzer/internal/cache"
)

const (
	CacheHeader        = "X-Cache"
	maxCachedBodyBytes = 1 << 20
	invalidateTimeout  = 2 * time.Second
)

// replayHeaders are the backend response headers stored with a cached
// aggregate and written back on a HIT. Set-Cookie is never among them.
var replayHeaders = []string{"Cache-Control", "Content-Language", "ETag", "Last-Modified", "Vary"}

// cachedResponse is what AggregateCache stores per aggregate endpoint.
type cachedResponse struct {
	ContentType string              `json:"content_type"`
	Header      map[string][]string `json:"header,omitempty"`
	Body        []byte              `json:"body"`
}

// AggregateCache caches the dashboard aggregates (stats, summary, recent) for
// a short TTL and drops them whenever a mutating call on the analyses
// collection succeeds.
type AggregateCache struct {
	cache  cache.Cache
	prefix string
	ttl    time.Duration
}

// NewAggregateCache creates a new AggregateCache middleware for the API under prefix.
func NewAggregateCache(c cache.Cache, prefix string, ttl time.Duration) *AggregateCache {
	return &AggregateCache{
		cache:  c,
		prefix: "/" + strings.Trim(prefix, "/"),
		ttl:    ttl,
	}
}

func (ac *AggregateCache) Handle(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && r.URL.RawQuery == "" && cache.IsAggregatePath(ac.prefix, r.URL.Path):
			ac.serveCached(w, r, next)
		case isMutating(r.Method) && strings.HasPrefix(r.URL.Path, ac.prefix+"/analyses/"):
			rec := newStatusRecorder(w)
			next.ServeHTTP(rec, r)
			if rec.status >= 200 && rec.status < 300 {
				ac.invalidate(r.Context())
			}
		default:
			next.ServeHTTP(w, r)
		}
	})
}

func (ac *AggregateCache) serveCached(w http.ResponseWriter, r *http.Request, next http.Handler) {
	key := cache.AggregateKey(r.URL.Path)

	raw, found, err := ac.cache.Get(r.Context(), key)
	if err != nil {
		slog.Warn("aggregate cache read failed", "key", key, "error", err)
	}
	if found {
		var cr cachedResponse
		if err := json.Unmarshal(raw, &cr); err == nil {
			for k, v := range cr.Header {
				w.Header()[k] = v
			}
			w.Header().Set("Content-Type", cr.ContentType)
			w.Header().Set(CacheHeader, "HIT")
			w.WriteHeader(http.StatusOK)
			w.Write(cr.Body)
			return
		}
	}

	w.Header().Set(CacheHeader, "MISS")
	tee := &teeRecorder{statusRecorder: newStatusRecorder(w)}
	next.ServeHTTP(tee, r)

	if tee.status != http.StatusOK || tee.overflow || !cacheable(tee.Header()) {
		return
	}
	data, err := json.Marshal(cachedResponse{
		ContentType: tee.Header().Get("Content-Type"),
		Header:      pickHeaders(tee.Header()),
		Body:        tee.buf.Bytes(),
	})
	if err != nil {
		return
	}
	if err := ac.cache.Set(r.Context(), key, data, ac.ttl); err != nil {
		slog.Warn("aggregate cache write failed", "key", key, "error", err)
	}
}

func (ac *AggregateCache) invalidate(ctx context.Context) {
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), invalidateTimeout)
	defer cancel()
	if err := ac.cache.Delete(ctx, cache.AggregateKeys(ac.prefix)...); err != nil {
		slog.Warn("aggregate cache invalidation failed", "error", err)
	}
}

// cacheable rejects encoded bodies, responses that set a cookie (the CSRF
// cookie must not reach other clients) and ones the backend marked private.
func cacheable(h http.Header) bool {
	if h.Get("Content-Encoding") != "" || len(h.Values("Set-Cookie")) > 0 {
		return false
	}
	for _, v := range h.Values("Cache-Control") {
		v = strings.ToLower(v)
		if strings.Contains(v, "no-store") || strings.Contains(v, "private") {
			return false
		}
	}
	return true
}

func pickHeaders(h http.Header) map[string][]string {
	var out map[string][]string
	for _, k := range replayHeaders {
		if v := h.Values(k); len(v) > 0 {
			if out == nil {
				out = make(map[string][]string, len(replayHeaders))
			}
			out[k] = append([]string(nil), v...)
		}
	}
	return out
}

// teeRecorder copies the response body aside, up to maxCachedBodyBytes.
type teeRecorder struct {
	*statusRecorder
	buf      bytes.Buffer
	overflow bool
}

func (t *teeRecorder) Write(b []byte) (int, error) {
	if !t.overflow {
		if t.buf.Len()+len(b) > maxCachedBodyBytes {
			t.overflow = true
			t.buf.Reset()
		} else {
			t.buf.Write(b)
		}
	}
	return t.statusRecorder.Write(b)
}

func isMutating(method string) bool {
	switch method {
	case http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete:
		return true
	}
	return false
}
