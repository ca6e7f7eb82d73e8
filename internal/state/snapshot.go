package state

import "github.com/kiranshivaraju/dicanalyzer/pkg/models"

// Snapshot copies the current state.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()

	st := State{
		Analyses:        append([]models.Analysis(nil), s.analyses...),
		Stats:           s.stats,
		Summary:         s.summary,
		Recent:          append([]models.Analysis(nil), s.recent...),
		Loading:         s.loading,
		Error:           s.errMsg,
		CurrentPage:     s.currentPage,
		PageSize:        s.pageSize,
		TotalCount:      s.totalCount,
		HasNextPage:     s.hasNext,
		HasPreviousPage: s.hasPrevious,
		Filters:         s.filters,
	}
	if s.current != nil {
		cur := *s.current
		st.Current = &cur
	}
	if s.filters.HasResults != nil {
		v := *s.filters.HasResults
		st.Filters.HasResults = &v
	}
	return st
}

func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Err returns the shared error message, empty when the last action succeeded.
func (s *Store) Err() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.errMsg
}

// Groupings of the current page by status, derived on every call.

func (s *Store) Completed() []models.Analysis  { return s.byStatus(models.StatusCompleted) }
func (s *Store) Processing() []models.Analysis { return s.byStatus(models.StatusProcessing) }
func (s *Store) Pending() []models.Analysis    { return s.byStatus(models.StatusPending) }
func (s *Store) Errored() []models.Analysis    { return s.byStatus(models.StatusError) }

func (s *Store) byStatus(status models.Status) []models.Analysis {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := []models.Analysis{}
	for _, a := range s.analyses {
		if a.Status == status {
			out = append(out, a)
		}
	}
	return out
}
