package cli

import (
	"fmt"
	"io"
	"strconv"

	"github.com/kiranshivaraju/dicanalyzer/internal/state"
	"github.com/kiranshivaraju/dicanalyzer/pkg/models"
	"github.com/spf13/cobra"
)

type listOptions struct {
	status     string
	search     string
	ordering   string
	dateFrom   string
	dateTo     string
	hasResults string
	page       int
	pageSize   int
}

func (a *app) listCommand() *cobra.Command {
	var o listOptions

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List analyses, one page at a time",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			filters, err := o.filters()
			if err != nil {
				return err
			}
			if o.page < 1 {
				return fmt.Errorf("--page must be at least 1, got %d", o.page)
			}

			st := a.store(state.WithPageSize(o.pageSize), state.WithFilters(filters))
			if err := st.GoToPage(cmd.Context(), o.page); err != nil {
				return fail(st, err)
			}

			snap := st.Snapshot()
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), listJSON{
					Count:       snap.TotalCount,
					Page:        snap.CurrentPage,
					PageSize:    snap.PageSize,
					HasNext:     snap.HasNextPage,
					HasPrevious: snap.HasPreviousPage,
					Results:     snap.Analyses,
				})
			}
			return printList(cmd.OutOrStdout(), snap)
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.status, "status", "", "Filter by status (pending|processing|completed|error|cancelled)")
	f.StringVar(&o.search, "search", "", "Search name, sample, material and manufacturer")
	f.StringVar(&o.ordering, "ordering", "", "Sort field, prefix with - for descending (e.g. -created_at)")
	f.StringVar(&o.dateFrom, "from", "", "Created on or after (YYYY-MM-DD)")
	f.StringVar(&o.dateTo, "to", "", "Created on or before (YYYY-MM-DD)")
	f.StringVar(&o.hasResults, "has-results", "", "Only analyses with (true) or without (false) results")
	f.IntVar(&o.page, "page", 1, "Page number")
	f.IntVar(&o.pageSize, "page-size", 0, "Page size (default $DIC_PAGE_SIZE)")
	return cmd
}

func (o listOptions) filters() (state.Filters, error) {
	f := state.Filters{
		Status:   o.status,
		Search:   o.search,
		Ordering: o.ordering,
		DateFrom: o.dateFrom,
		DateTo:   o.dateTo,
	}
	if o.status != "" && !models.Status(o.status).Valid() {
		return f, fmt.Errorf("unknown status %q", o.status)
	}
	if o.hasResults != "" {
		v, err := strconv.ParseBool(o.hasResults)
		if err != nil {
			return f, fmt.Errorf("--has-results must be true or false, got %q", o.hasResults)
		}
		f.HasResults = &v
	}
	return f, nil
}

type listJSON struct {
	Count       int               `json:"count"`
	Page        int               `json:"page"`
	PageSize    int               `json:"page_size"`
	HasNext     bool              `json:"has_next"`
	HasPrevious bool              `json:"has_previous"`
	Results     []models.Analysis `json:"results"`
}

func printList(w io.Writer, snap state.State) error {
	if len(snap.Analyses) == 0 {
		fmt.Fprintln(w, "No analyses found.")
		return nil
	}

	if err := printAnalyses(w, snap.Analyses); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nPage %d, %d of %d analyses", snap.CurrentPage, len(snap.Analyses), snap.TotalCount)
	switch {
	case snap.HasPreviousPage && snap.HasNextPage:
		fmt.Fprint(w, " (more before and after)")
	case snap.HasNextPage:
		fmt.Fprint(w, " (more after)")
	case snap.HasPreviousPage:
		fmt.Fprint(w, " (more before)")
	}
	fmt.Fprintln(w)
	return nil
}
