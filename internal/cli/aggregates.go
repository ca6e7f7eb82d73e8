package cli

import (
	"fmt"
	"io"
	"sort"
	"text/tabwriter"

	"github.com/kiranshivaraju/dicanalyzer/pkg/models"
	"github.com/spf13/cobra"
)

const noData = "no data"

// Aggregate fetches never fail from the caller's side; a failed fetch leaves
// nothing to print.

func (a *app) statsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show dashboard statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := a.store()
			st.FetchStats(cmd.Context())
			stats := st.Snapshot().Stats
			w := cmd.OutOrStdout()
			switch {
			case stats == nil:
				fmt.Fprintln(w, noData)
				return nil
			case a.jsonOut:
				return writeJSON(w, stats)
			}
			return printStats(w, stats)
		},
	}
}

func (a *app) summaryCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "summary",
		Short: "Show a short summary of all analyses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := a.store()
			st.FetchSummary(cmd.Context())
			summary := st.Snapshot().Summary
			w := cmd.OutOrStdout()
			switch {
			case summary == nil:
				fmt.Fprintln(w, noData)
				return nil
			case a.jsonOut:
				return writeJSON(w, summary)
			}
			return printSummary(w, summary)
		},
	}
}

func (a *app) recentCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "recent",
		Short: "Show the most recent analyses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			st := a.store()
			st.FetchRecent(cmd.Context())
			recent := st.Snapshot().Recent
			w := cmd.OutOrStdout()
			switch {
			case len(recent) == 0:
				fmt.Fprintln(w, noData)
				return nil
			case a.jsonOut:
				return writeJSON(w, recent)
			}
			return printAnalyses(w, recent)
		},
	}
}

func printStats(w io.Writer, s *models.Stats) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	o := s.Overview
	fmt.Fprintf(tw, "Total:\t%d\n", o.Total)
	fmt.Fprintf(tw, "Completed:\t%d\n", o.Completed)
	fmt.Fprintf(tw, "Processing:\t%d\n", o.Processing)
	fmt.Fprintf(tw, "Pending:\t%d\n", o.Pending)
	fmt.Fprintf(tw, "Error:\t%d\n", o.Error)
	fmt.Fprintf(tw, "Cancelled:\t%d\n", o.Cancelled)
	fmt.Fprintf(tw, "Success rate:\t%s%%\n", formatFloat(o.SuccessRate))
	fmt.Fprintf(tw, "Avg processing time:\t%ss\n", formatFloat(s.ProcessingStats.AvgProcessingTime))
	fmt.Fprintf(tw, "Avg max displacement:\t%s\n", formatFloat(s.DeformationStats.AvgMaxDisplacement))
	fmt.Fprintf(tw, "Avg mean displacement:\t%s\n", formatFloat(s.DeformationStats.AvgMeanDisplacement))
	fmt.Fprintf(tw, "Last 24h / week / month:\t%d / %d / %d\n",
		s.Timeline.Last24Hours, s.Timeline.LastWeek, s.Timeline.LastMonth)
	return tw.Flush()
}

func printSummary(w io.Writer, s *models.Summary) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintf(tw, "Total:\t%d\n", s.TotalTasks)
	fmt.Fprintf(tw, "Completed:\t%d\n", s.CompletedTasks)
	fmt.Fprintf(tw, "Success rate:\t%s%%\n", formatFloat(s.SuccessRate))

	statuses := make([]string, 0, len(s.TasksByStatus))
	for status := range s.TasksByStatus {
		statuses = append(statuses, string(status))
	}
	sort.Strings(statuses)
	for _, status := range statuses {
		fmt.Fprintf(tw, "  %s:\t%d\n", status, s.TasksByStatus[models.Status(status)])
	}
	fmt.Fprintf(tw, "Processing now:\t%d\n", len(s.ProcessingTasks))
	return tw.Flush()
}

func printAnalyses(w io.Writer, analyses []models.Analysis) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tSTATUS\tCREATED")
	for _, an := range analyses {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			an.ID, an.Name, an.Status, an.CreatedAt.Format("2006-01-02 15:04"))
	}
	return tw.Flush()
}
