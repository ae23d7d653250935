package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"paperlens/internal/app"
)

func newAddImageCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:     "add-image <path>",
		Short:   "Index an image file",
		Example: `  paperlens add-image photo.jpg`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.withApp(cmd, func(a *app.App) error {
				res, err := a.Images.Add(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "✓ Image added: %s\n", res.FileName)
				return nil
			})
		},
	}
}

func newSearchImageCmd(st *state) *cobra.Command {
	var (
		topK   int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:     "search-image <query>",
		Short:   "Find images from a text description",
		Example: `  paperlens search-image "sunset at the beach"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.withApp(cmd, func(a *app.App) error {
				results, err := a.Images.Search(cmd.Context(), args[0], topK)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, results)
				}
				printImageResults(cmd.OutOrStdout(), results)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&topK, "top-k", "k", 5, "number of results to return")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output results as JSON")
	return cmd
}

func newIndexImagesCmd(st *state) *cobra.Command {
	return &cobra.Command{
		Use:   "index-images <source_dir>",
		Short: "Index every image directly inside a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.withApp(cmd, func(a *app.App) error {
				report, err := a.Images.Index(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				printReport(cmd.OutOrStdout(), "images", report)
				return nil
			})
		},
	}
}

func newProcessImagesCmd(st *state) *cobra.Command {
	var recursive, noRecursive bool
	cmd := &cobra.Command{
		Use:   "process-images [source_dir]",
		Short: "Index new images, skipping ones already indexed",
		Long: `Scans a directory (the configured images inbox by default) and indexes
every image whose path is not in the images collection yet. Subdirectories
are scanned unless --no-recursive is given.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.withApp(cmd, func(a *app.App) error {
				dir := a.Config.Library.ImagesInbox
				if len(args) == 1 {
					dir = args[0]
				}
				report, err := a.Images.Process(cmd.Context(), dir, recursive && !noRecursive)
				if err != nil {
					return err
				}
				if report.Skipped > 0 {
					fmt.Fprintf(cmd.OutOrStdout(), "Skipped %d already indexed images\n", report.Skipped)
				}
				printReport(cmd.OutOrStdout(), "images", report)
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&recursive, "recursive", "r", true, "scan subdirectories")
	cmd.Flags().BoolVar(&noRecursive, "no-recursive", false, "only scan the top-level directory")
	cmd.MarkFlagsMutuallyExclusive("recursive", "no-recursive")
	return cmd
}
