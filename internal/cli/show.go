package cli

import (
	"fmt"
	"io"
	"strconv"
	"text/tabwriter"

	"github.com/kiranshivaraju/dicanalyzer/pkg/models"
	"github.com/spf13/cobra"
)

func (a *app) showCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "show ID",
		Short: "Show one analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.store()
			an, err := st.FetchAnalysis(cmd.Context(), args[0])
			if err != nil {
				return fail(st, err)
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), an)
			}
			return printAnalysis(cmd.OutOrStdout(), an)
		},
	}
}

func printAnalysis(w io.Writer, an *models.Analysis) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	row := func(k, v string) { fmt.Fprintf(tw, "%s:\t%s\n", k, v) }

	row("ID", an.ID)
	row("Name", an.Name)
	row("Status", statusText(an))
	row("Parameters", fmt.Sprintf("subset_size=%d step=%d max_iter=%d min_correlation=%s",
		an.SubsetSize, an.Step, an.MaxIter, formatFloat(an.MinCorrelation)))
	row("Created", an.CreatedAt.Format("2006-01-02 15:04:05"))
	if an.StartedAt != nil {
		row("Started", an.StartedAt.Format("2006-01-02 15:04:05"))
	}
	if an.CompletedAt != nil {
		row("Completed", an.CompletedAt.Format("2006-01-02 15:04:05"))
	}
	if an.ProcessingTime != nil {
		row("Processing time", formatFloat(*an.ProcessingTime)+"s")
	}

	if an.HasResults() {
		optRow(row, "Mean displacement", an.MeanDisplacement)
		optRow(row, "Max displacement", an.MaxDisplacement)
		optRow(row, "Median displacement", an.MedianDisplacement)
		optRow(row, "Std displacement", an.StdDisplacement)
		optRow(row, "Correlation quality", an.CorrelationQuality)
		optRow(row, "Reliable points %", an.ReliablePointsPercentage)
	}
	if an.Failed() && an.ErrorMessage != nil {
		row("Error", *an.ErrorMessage)
	}
	return tw.Flush()
}

func statusText(an *models.Analysis) string {
	if an.StatusDisplay != "" {
		return an.StatusDisplay
	}
	return string(an.Status)
}

func optRow(row func(k, v string), k string, v *float64) {
	if v != nil {
		row(k, formatFloat(*v))
	}
}

func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}
