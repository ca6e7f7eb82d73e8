// Package state holds the client-side snapshot of what the user is looking
// at: one page of analyses, the active filters and pagination cursor, the
// analysis in the detail view, and the dashboard aggregates. Every mutation
// goes through a dic.Client.
package state

import (
	"context"
	"log/slog"
	"sync"

	"github.com/kiranshivaraju/dicanalyzer/internal/dic"
	"github.com/kiranshivaraju/dicanalyzer/pkg/models"
)

const DefaultPageSize = 10

// Fallback messages used when the backend gives no detail.
const (
	msgFetchAnalyses   = "Failed to fetch analyses"
	msgFetchAnalysis   = "Failed to fetch analysis"
	msgCreateAnalysis  = "Failed to create analysis"
	msgCancelAnalysis  = "Failed to cancel analysis"
	msgDeleteAnalyses  = "Failed to delete analyses"
	msgDownloadResults = "Failed to download results"
	msgDownloadReport  = "Failed to download report"
	msgFetchImage      = "Failed to fetch image"
)

// Filters are the list constraints owned by the client. A nil HasResults
// means "any".
type Filters struct {
	Status     string
	Search     string
	Ordering   string
	DateFrom   string
	DateTo     string
	HasResults *bool
}

// State is a point-in-time copy of the store, safe to read without locking.
type State struct {
	Analyses []models.Analysis
	Current  *models.Analysis
	Stats    *models.Stats
	Summary  *models.Summary
	Recent   []models.Analysis

	Loading bool
	Error   string

	CurrentPage     int
	PageSize        int
	TotalCount      int
	HasNextPage     bool
	HasPreviousPage bool

	Filters Filters
}

// Store is the single in-memory snapshot of the analyses UI.
//
// The lock is never held across a backend call. Loading and Error are one
// shared slot for all actions, so a later action may overwrite the error of
// an earlier one that is still in flight.
type Store struct {
	client dic.Client
	logger *slog.Logger

	mu       sync.Mutex
	analyses []models.Analysis
	current  *models.Analysis
	stats    *models.Stats
	summary  *models.Summary
	recent   []models.Analysis
	loading  bool
	errMsg   string

	currentPage int
	pageSize    int
	totalCount  int
	hasNext     bool
	hasPrevious bool

	filters Filters
}

// Option configures a Store.
type Option func(*Store)

// WithPageSize sets the initial page size. Non-positive values are ignored.
func WithPageSize(n int) Option {
	return func(s *Store) {
		if n > 0 {
			s.pageSize = n
		}
	}
}

// WithLogger routes the store's failure logs to l.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithFilters sets the initial filters without fetching.
func WithFilters(f Filters) Option {
	return func(s *Store) {
		s.filters = f
		if f.HasResults != nil {
			v := *f.HasResults
			s.filters.HasResults = &v
		}
	}
}

// New creates an empty store that talks to the backend through client.
func New(client dic.Client, opts ...Option) *Store {
	s := &Store{
		client:      client,
		logger:      slog.Default(),
		analyses:    []models.Analysis{},
		currentPage: 1,
		pageSize:    DefaultPageSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// --- list & pagination ---

// FetchAnalyses loads the given page with the active filters.
func (s *Store) FetchAnalyses(ctx context.Context, page int) error {
	if page < 1 {
		page = 1
	}

	s.mu.Lock()
	s.startLocked()
	params := s.listParamsLocked(page)
	s.mu.Unlock()

	resp, err := s.client.ListAnalyses(ctx, params)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		return s.failLocked(err, msgFetchAnalyses)
	}

	s.analyses = resp.Results
	if s.analyses == nil {
		s.analyses = []models.Analysis{}
	}
	s.totalCount = resp.Count
	s.currentPage = page
	s.hasNext = resp.Next != nil && *resp.Next != ""
	s.hasPrevious = resp.Previous != nil && *resp.Previous != ""
	s.loading = false
	return nil
}

// NextPage loads the following page, but only if the server said there is one.
func (s *Store) NextPage(ctx context.Context) error {
	s.mu.Lock()
	if !s.hasNext {
		s.mu.Unlock()
		return nil
	}
	page := s.currentPage + 1
	s.mu.Unlock()

	return s.FetchAnalyses(ctx, page)
}

// PreviousPage loads the preceding page, but only if the server said there is one.
func (s *Store) PreviousPage(ctx context.Context) error {
	s.mu.Lock()
	if !s.hasPrevious {
		s.mu.Unlock()
		return nil
	}
	page := s.currentPage - 1
	s.mu.Unlock()

	return s.FetchAnalyses(ctx, page)
}

// GoToPage loads an arbitrary page.
func (s *Store) GoToPage(ctx context.Context, page int) error {
	return s.FetchAnalyses(ctx, page)
}

func (s *Store) listParamsLocked(page int) dic.ListParams {
	return dic.ListParams{
		Page:       page,
		PageSize:   s.pageSize,
		Status:     s.filters.Status,
		Search:     s.filters.Search,
		Ordering:   s.filters.Ordering,
		DateFrom:   s.filters.DateFrom,
		DateTo:     s.filters.DateTo,
		HasResults: s.filters.HasResults,
	}
}

// --- single analysis ---

// FetchAnalysis loads one analysis into the detail view.
func (s *Store) FetchAnalysis(ctx context.Context, id string) (*models.Analysis, error) {
	s.begin()
	a, err := s.client.GetAnalysis(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		return nil, s.failLocked(err, msgFetchAnalysis)
	}
	cur := *a
	s.current = &cur
	s.loading = false
	return a, nil
}

// CreateAnalysis submits a new analysis and puts it at the front of the
// current page without refetching. The list is newest-first, so the next real
// fetch agrees with this.
func (s *Store) CreateAnalysis(ctx context.Context, req models.CreateRequest) (*models.Analysis, error) {
	s.begin()
	created, err := s.client.CreateAnalysis(ctx, req)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		return nil, s.failLocked(err, msgCreateAnalysis)
	}
	s.analyses = append([]models.Analysis{*created}, s.analyses...)
	s.totalCount++
	s.loading = false
	return created, nil
}

// CancelAnalysis asks the backend to cancel id and marks it cancelled locally,
// both in the list and in the detail view.
func (s *Store) CancelAnalysis(ctx context.Context, id string) (*models.CancelResult, error) {
	s.begin()
	res, err := s.client.CancelAnalysis(ctx, id)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		return nil, s.failLocked(err, msgCancelAnalysis)
	}
	for i := range s.analyses {
		if s.analyses[i].ID == id {
			s.analyses[i].Status = models.StatusCancelled
		}
	}
	if s.current != nil && s.current.ID == id {
		s.current.Status = models.StatusCancelled
	}
	s.loading = false
	return res, nil
}

// BulkDelete deletes ids. Every requested id leaves the local page, while the
// total count drops by what the server reports as actually deleted.
func (s *Store) BulkDelete(ctx context.Context, ids []string) (*models.BulkDeleteResult, error) {
	s.begin()
	res, err := s.client.BulkDelete(ctx, ids)

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		return nil, s.failLocked(err, msgDeleteAnalyses)
	}

	drop := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		drop[id] = struct{}{}
	}
	kept := make([]models.Analysis, 0, len(s.analyses))
	for _, a := range s.analyses {
		if _, ok := drop[a.ID]; !ok {
			kept = append(kept, a)
		}
	}
	s.analyses = kept
	s.totalCount -= res.DeletedCount
	s.loading = false
	return res, nil
}

// --- artifacts ---

func (s *Store) DownloadResults(ctx context.Context, id string) (*dic.Blob, error) {
	return s.blob(msgDownloadResults, func() (*dic.Blob, error) {
		return s.client.DownloadResults(ctx, id)
	})
}

func (s *Store) DownloadReport(ctx context.Context, id string) (*dic.Blob, error) {
	return s.blob(msgDownloadReport, func() (*dic.Blob, error) {
		return s.client.DownloadReport(ctx, id)
	})
}

func (s *Store) FetchImage(ctx context.Context, id string, variant dic.ImageVariant) (*dic.Blob, error) {
	return s.blob(msgFetchImage, func() (*dic.Blob, error) {
		return s.client.FetchImage(ctx, id, variant)
	})
}

func (s *Store) blob(fallback string, fetch func() (*dic.Blob, error)) (*dic.Blob, error) {
	s.begin()
	b, err := fetch()

	s.mu.Lock()
	defer s.mu.Unlock()
	if err != nil {
		return nil, s.failLocked(err, fallback)
	}
	s.loading = false
	return b, nil
}

// --- aggregates ---
//
// Aggregate fetches never fail from the caller's point of view: errors are
// logged and the previous value stays in place.

func (s *Store) FetchStats(ctx context.Context) {
	st, err := s.client.FetchStats(ctx)
	if err != nil {
		s.logger.Error("error fetching stats", "error", err)
		return
	}
	s.mu.Lock()
	s.stats = st
	s.mu.Unlock()
}

func (s *Store) FetchSummary(ctx context.Context) {
	sum, err := s.client.FetchSummary(ctx)
	if err != nil {
		s.logger.Error("error fetching summary", "error", err)
		return
	}
	s.mu.Lock()
	s.summary = sum
	s.mu.Unlock()
}

func (s *Store) FetchRecent(ctx context.Context) {
	recent, err := s.client.FetchRecent(ctx)
	if err != nil {
		s.logger.Error("error fetching recent analyses", "error", err)
		return
	}
	s.mu.Lock()
	s.recent = recent
	s.mu.Unlock()
}

// --- shared loading/error slot ---

func (s *Store) begin() {
	s.mu.Lock()
	s.startLocked()
	s.mu.Unlock()
}

func (s *Store) startLocked() {
	s.loading = true
	s.errMsg = ""
}

func (s *Store) failLocked(err error, fallback string) error {
	s.loading = false
	s.errMsg = dic.Message(err, fallback)
	s.logger.Error("store action failed", "action", fallback, "error", err)
	return err
}
