package frontdoor_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/kiranshivaraju/dicanalyzer/internal/audit"
	"github.com/kiranshivaraju/dicanalyzer/internal/cache"
	"github.com/kiranshivaraju/dicanalyzer/internal/frontdoor"
	mw "github.com/kiranshivaraju/dicanalyzer/internal/frontdoor/middleware"
	"github.com/kiranshivaraju/dicanalyzer/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// --- stub cache ---

type memCache struct {
	mu      sync.Mutex
	data    map[string][]byte
	counter int64
}

func newMemCache() *memCache { return &memCache{data: map[string][]byte{}} }

func (c *memCache) Set(_ context.Context, k string, v []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.data[k] = v
	return nil
}
func (c *memCache) Get(_ context.Context, k string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	v, ok := c.data[k]
	return v, ok, nil
}
func (c *memCache) Delete(_ context.Context, keys ...string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, k := range keys {
		delete(c.data, k)
	}
	return nil
}
func (c *memCache) Ping(_ context.Context) error { return nil }
func (c *memCache) IncrWithExpiry(_ context.Context, _ string, _ time.Duration) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.counter++
	return c.counter, nil
}

// --- stub audit store / sink ---

type stubAuditStore struct {
	events []*models.AuditEvent
	err    error
	limit  int
}

func (s *stubAuditStore) Ping(_ context.Context) error { return nil }
func (s *stubAuditStore) Record(_ context.Context, e *models.AuditEvent) error {
	s.events = append(s.events, e)
	return nil
}
func (s *stubAuditStore) ListRecent(_ context.Context, limit int) ([]*models.AuditEvent, error) {
	s.limit = limit
	return s.events, s.err
}

type sliceSink struct {
	mu     sync.Mutex
	events []*models.AuditEvent
}

func (s *sliceSink) Enqueue(e *models.AuditEvent) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, e)
	return true
}

// --- helpers ---

func errCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body["error"].(map[string]any)["code"].(string)
}

func marker(name string) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"handler":"` + name + `"}`))
	}
}

func newTestRouter(deps frontdoor.Dependencies) http.Handler {
	deps.APIPrefix = "/api"
	if deps.Proxy == nil {
		deps.Proxy = marker("proxy")
	}
	if deps.Static == nil {
		deps.Static = marker("static")
	}
	if deps.HealthHandler == nil {
		deps.HealthHandler = marker("health")
	}
	return frontdoor.NewRouter(deps)
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

// --- router tests ---

func TestRouter_Dispatch(t *testing.T) {
	router := newTestRouter(frontdoor.Dependencies{})

	cases := []struct {
		method, path, want string
	}{
		{"GET", "/healthz", "health"},
		{"GET", "/api/analyses/", "proxy"},
		{"POST", "/api/analyses/", "proxy"},
		{"DELETE", "/api/analyses/a1/", "proxy"},
		{"GET", "/api/", "proxy"},
		{"GET", "/", "static"},
		{"GET", "/analyses/42", "static"},
		{"GET", "/apiary", "static"},
	}
	for _, tc := range cases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			w := serve(router, tc.method, tc.path)
			assert.Equal(t, http.StatusOK, w.Code)
			assert.JSONEq(t, `{"handler":"`+tc.want+`"}`, w.Body.String())
		})
	}
}

func TestRouter_SetsRequestID(t *testing.T) {
	router := newTestRouter(frontdoor.Dependencies{})

	w := serve(router, "GET", "/")
	assert.NotEmpty(t, w.Header().Get(mw.RequestIDHeader))
}

func TestRouter_AuditDisabledIsNotImplemented(t *testing.T) {
	router := newTestRouter(frontdoor.Dependencies{})

	w := serve(router, "GET", "/_frontdoor/audit")
	assert.Equal(t, http.StatusNotImplemented, w.Code)
	assert.Equal(t, "NOT_IMPLEMENTED", errCode(t, w))
}

func TestRouter_AuthGuardsEverythingButHealth(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	require.NoError(t, err)
	router := newTestRouter(frontdoor.Dependencies{Auth: mw.NewAuth("admin", string(hash))})

	assert.Equal(t, http.StatusOK, serve(router, "GET", "/healthz").Code)

	for _, path := range []string{"/", "/api/analyses/", "/_frontdoor/audit"} {
		w := serve(router, "GET", path)
		assert.Equal(t, http.StatusUnauthorized, w.Code, path)
		assert.Equal(t, "INVALID_CREDENTIALS", errCode(t, w))
	}

	req := httptest.NewRequest("GET", "/api/analyses/", nil)
	req.SetBasicAuth("admin", "s3cret")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_RateLimitOnlyOnAPI(t *testing.T) {
	mc := newMemCache()
	mc.counter = 100
	router := newTestRouter(frontdoor.Dependencies{RateLimit: mw.NewRateLimit(mc, 100)})

	assert.Equal(t, http.StatusOK, serve(router, "GET", "/").Code)

	w := serve(router, "GET", "/api/analyses/")
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRouter_AuditsMutatingAPICalls(t *testing.T) {
	sink := &sliceSink{}
	router := newTestRouter(frontdoor.Dependencies{Audit: mw.NewAudit(sink, "/api")})

	serve(router, "GET", "/api/analyses/")
	serve(router, "POST", "/api/analyses/bulk_delete/")
	serve(router, "GET", "/")

	require.Len(t, sink.events, 1)
	assert.Equal(t, "POST", sink.events[0].Method)
	assert.Equal(t, "/api/analyses/bulk_delete/", sink.events[0].Path)
	assert.NotEmpty(t, sink.events[0].RequestID)
}

func TestRouter_AggregateCache(t *testing.T) {
	mc := newMemCache()
	calls := 0
	proxy := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"total_tasks":3}`))
	})
	router := newTestRouter(frontdoor.Dependencies{
		Proxy:          proxy,
		AggregateCache: mw.NewAggregateCache(mc, "/api", time.Minute),
	})

	w := serve(router, "GET", "/api/analyses/summary/")
	assert.Equal(t, "MISS", w.Header().Get(mw.CacheHeader))

	w = serve(router, "GET", "/api/analyses/summary/")
	assert.Equal(t, "HIT", w.Header().Get(mw.CacheHeader))
	assert.JSONEq(t, `{"total_tasks":3}`, w.Body.String())
	assert.Equal(t, 1, calls)

	serve(router, "POST", "/api/analyses/a1/cancel/")

	w = serve(router, "GET", "/api/analyses/summary/")
	assert.Equal(t, "MISS", w.Header().Get(mw.CacheHeader))
	assert.Equal(t, 3, calls)
}

// --- audit handler ---

func TestAuditHandler_List(t *testing.T) {
	store := &stubAuditStore{events: []*models.AuditEvent{
		{Method: "POST", Path: "/api/analyses/", Status: 201},
	}}
	router := newTestRouter(frontdoor.Dependencies{AuditHandler: frontdoor.AuditHandler(store)})

	w := serve(router, "GET", "/_frontdoor/audit?limit=5")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 5, store.limit)

	var body struct {
		Data []models.AuditEvent `json:"data"`
		Meta struct {
			Limit int `json:"limit"`
			Count int `json:"count"`
		} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	require.Len(t, body.Data, 1)
	assert.Equal(t, 201, body.Data[0].Status)
	assert.Equal(t, 5, body.Meta.Limit)
	assert.Equal(t, 1, body.Meta.Count)
}

func TestAuditHandler_DefaultLimit(t *testing.T) {
	store := &stubAuditStore{}
	h := frontdoor.AuditHandler(store)

	w := serve(h, "GET", "/_frontdoor/audit")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 50, store.limit)

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, []any{}, body["data"])
}

func TestAuditHandler_InvalidLimit(t *testing.T) {
	h := frontdoor.AuditHandler(&stubAuditStore{})

	for _, v := range []string{"0", "-1", "abc", "501"} {
		w := serve(h, "GET", "/_frontdoor/audit?limit="+v)
		assert.Equal(t, http.StatusBadRequest, w.Code, v)
		assert.Equal(t, "VALIDATION_ERROR", errCode(t, w))
	}
}

func TestAuditHandler_StoreError(t *testing.T) {
	h := frontdoor.AuditHandler(&stubAuditStore{err: errors.New("db down")})

	w := serve(h, "GET", "/_frontdoor/audit")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// Verify stubs satisfy the interfaces
var _ cache.Cache = (*memCache)(nil)
var _ audit.Store = (*stubAuditStore)(nil)
var _ mw.AuditSink = (*sliceSink)(nil)
