package state

import "context"

// Every filter change refetches page 1, so the cursor is never stale
// relative to the filters.

func (s *Store) SetStatusFilter(ctx context.Context, status string) error {
	s.mu.Lock()
	s.filters.Status = status
	s.mu.Unlock()
	return s.FetchAnalyses(ctx, 1)
}

func (s *Store) SetSearchQuery(ctx context.Context, query string) error {
	s.mu.Lock()
	s.filters.Search = query
	s.mu.Unlock()
	return s.FetchAnalyses(ctx, 1)
}

func (s *Store) SetDateRange(ctx context.Context, from, to string) error {
	s.mu.Lock()
	s.filters.DateFrom = from
	s.filters.DateTo = to
	s.mu.Unlock()
	return s.FetchAnalyses(ctx, 1)
}

// SetHasResultsFilter restricts the list to analyses with (true) or without
// (false) a displacement map; nil removes the restriction.
func (s *Store) SetHasResultsFilter(ctx context.Context, hasResults *bool) error {
	s.mu.Lock()
	if hasResults == nil {
		s.filters.HasResults = nil
	} else {
		v := *hasResults
		s.filters.HasResults = &v
	}
	s.mu.Unlock()
	return s.FetchAnalyses(ctx, 1)
}

// SetOrdering sets the backend ordering key, e.g. "-created_at" or "max_displacement".
func (s *Store) SetOrdering(ctx context.Context, ordering string) error {
	s.mu.Lock()
	s.filters.Ordering = ordering
	s.mu.Unlock()
	return s.FetchAnalyses(ctx, 1)
}

func (s *Store) SetPageSize(ctx context.Context, size int) error {
	if size <= 0 {
		size = DefaultPageSize
	}
	s.mu.Lock()
	s.pageSize = size
	s.mu.Unlock()
	return s.FetchAnalyses(ctx, 1)
}

// ClearFilters resets every filter and refetches page 1.
func (s *Store) ClearFilters(ctx context.Context) error {
	s.mu.Lock()
	s.filters = Filters{}
	s.mu.Unlock()
	return s.FetchAnalyses(ctx, 1)
}

// ApplyFilters replaces all filters at once and refetches page 1.
func (s *Store) ApplyFilters(ctx context.Context, f Filters) error {
	s.mu.Lock()
	s.filters = f
	if f.HasResults != nil {
		v := *f.HasResults
		s.filters.HasResults = &v
	}
	s.mu.Unlock()
	return s.FetchAnalyses(ctx, 1)
}
