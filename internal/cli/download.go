package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/kiranshivaraju/dicanalyzer/internal/dic"
	"github.com/spf13/cobra"
)

func (a *app) downloadCommand() *cobra.Command {
	var report bool
	var output string

	cmd := &cobra.Command{
		Use:   "download ID",
		Short: "Download the results archive (or the PDF report) of a completed analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			st := a.store()
			fetch := st.DownloadResults
			if report {
				fetch = st.DownloadReport
			}
			blob, err := fetch(cmd.Context(), args[0])
			if err != nil {
				return fail(st, err)
			}
			return saveBlob(cmd.OutOrStdout(), blob, output)
		},
	}

	cmd.Flags().BoolVar(&report, "report", false, "Download the PDF report instead of the results archive")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, - for stdout (default: server-provided name)")
	return cmd
}

func (a *app) imageCommand() *cobra.Command {
	var variant string
	var output string

	cmd := &cobra.Command{
		Use:   "image ID",
		Short: "Download an image of an analysis",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v := dic.ImageVariant(variant)
			if !v.Valid() {
				return fmt.Errorf("unknown image type %q (want displacement, before or after)", variant)
			}
			st := a.store()
			blob, err := st.FetchImage(cmd.Context(), args[0], v)
			if err != nil {
				return fail(st, err)
			}
			return saveBlob(cmd.OutOrStdout(), blob, output)
		},
	}

	cmd.Flags().StringVar(&variant, "type", string(dic.ImageDisplacement), "Image type: displacement, before or after")
	cmd.Flags().StringVarP(&output, "output", "o", "", "Output file, - for stdout (default: server-provided name)")
	return cmd
}

// saveBlob writes blob to path, to stdout for "-", or to its own filename.
// The confirmation goes to stdout unless the data itself does.
func saveBlob(stdout io.Writer, blob *dic.Blob, path string) error {
	if path == "-" {
		_, err := stdout.Write(blob.Data)
		return err
	}
	if path == "" {
		path = blob.Filename
	}
	if err := os.WriteFile(path, blob.Data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	fmt.Fprintf(stdout, "Saved %s (%d bytes, %s)\n", path, len(blob.Data), blob.ContentType)
	return nil
}
