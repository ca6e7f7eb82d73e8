package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/kiranshivaraju/dicanalyzer/pkg/models"
	"github.com/spf13/cobra"
)

type createOptions struct {
	name           string
	before         string
	after          string
	subsetSize     int
	step           int
	maxIter        int
	minCorrelation float64
	sampleName     string
	material       string
	manufacture    string
	testDate       string
}

func (a *app) createCommand() *cobra.Command {
	var o createOptions

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Upload a before/after image pair and start an analysis",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			before, err := openImage(o.before)
			if err != nil {
				return err
			}
			defer before.Close()
			after, err := openImage(o.after)
			if err != nil {
				return err
			}
			defer after.Close()

			req := models.CreateRequest{
				Name:        o.name,
				ImageBefore: &models.ImageFile{Filename: filepath.Base(o.before), Content: before},
				ImageAfter:  &models.ImageFile{Filename: filepath.Base(o.after), Content: after},
				SampleName:  o.sampleName,
				Material:    o.material,
				Manufacture: o.manufacture,
				TestDate:    o.testDate,
			}
			// Unset parameters are left to the backend defaults.
			f := cmd.Flags()
			if f.Changed("subset-size") {
				req.SubsetSize = &o.subsetSize
			}
			if f.Changed("step") {
				req.Step = &o.step
			}
			if f.Changed("max-iter") {
				req.MaxIter = &o.maxIter
			}
			if f.Changed("min-correlation") {
				req.MinCorrelation = &o.minCorrelation
			}

			st := a.store()
			created, err := st.CreateAnalysis(cmd.Context(), req)
			if err != nil {
				return fail(st, err)
			}
			if a.jsonOut {
				return writeJSON(cmd.OutOrStdout(), created)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created analysis %s (%s)\n", created.ID, created.Status)
			return nil
		},
	}

	f := cmd.Flags()
	f.StringVar(&o.name, "name", "", "Analysis name")
	f.StringVar(&o.before, "before", "", "Reference (before) image file")
	f.StringVar(&o.after, "after", "", "Deformed (after) image file")
	f.IntVar(&o.subsetSize, "subset-size", models.DefaultSubsetSize, "Correlation subset size in pixels")
	f.IntVar(&o.step, "step", models.DefaultStep, "Grid step in pixels")
	f.IntVar(&o.maxIter, "max-iter", models.DefaultMaxIter, "Maximum optimisation iterations")
	f.Float64Var(&o.minCorrelation, "min-correlation", models.DefaultMinCorrelation, "Minimum correlation, 0..1")
	f.StringVar(&o.sampleName, "sample-name", "", "Sample name")
	f.StringVar(&o.material, "material", "", "Sample material")
	f.StringVar(&o.manufacture, "manufacture", "", "Manufacturing method")
	f.StringVar(&o.testDate, "test-date", "", "Test date (YYYY-MM-DD)")
	cmd.MarkFlagRequired("name")
	cmd.MarkFlagRequired("before")
	cmd.MarkFlagRequired("after")
	return cmd
}

func openImage(path string) (*os.File, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open image: %w", err)
	}
	return f, nil
}
