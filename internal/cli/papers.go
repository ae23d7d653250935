package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"paperlens/internal/app"
)

func newAddPaperCmd(st *state) *cobra.Command {
	var topics []string
	cmd := &cobra.Command{
		Use:   "add-paper <path>",
		Short: "Index a PDF paper",
		Long: `Extracts the text of a PDF, embeds it and stores it in the documents
collection. With --topics the file is also copied into every topic
directory whose name occurs in the text, or into the first topic otherwise.`,
		Example: `  paperlens add-paper paper.pdf --topics "CV,NLP"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.withApp(cmd, func(a *app.App) error {
				res, err := a.Papers.Add(cmd.Context(), args[0], topics)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "✓ Paper added: %s\n", res.FileName)
				if len(res.Topics) > 0 {
					fmt.Fprintf(out, "  Topics: %s\n", strings.Join(res.Topics, ", "))
				}
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVarP(&topics, "topics", "t", nil, `comma-separated topics, e.g. "CV,NLP,RL"`)
	return cmd
}

func newSearchPaperCmd(st *state) *cobra.Command {
	var (
		topK   int
		asJSON bool
	)
	cmd := &cobra.Command{
		Use:     "search-paper <query>",
		Short:   "Semantic search over indexed papers",
		Example: `  paperlens search-paper "core architecture of the Transformer"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.withApp(cmd, func(a *app.App) error {
				results, err := a.Papers.Search(cmd.Context(), args[0], topK)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, results)
				}
				printPaperResults(cmd.OutOrStdout(), results)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&topK, "top-k", "k", 5, "number of results to return")
	cmd.Flags().BoolVar(&asJSON, "json", false, "output results as JSON")
	return cmd
}

func newOrganizePapersCmd(st *state) *cobra.Command {
	var topics []string
	cmd := &cobra.Command{
		Use:     "organize-papers <source_dir>",
		Short:   "Index and file every PDF in a directory",
		Example: `  paperlens organize-papers ./papers --topics "CV,NLP,RL"`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.withApp(cmd, func(a *app.App) error {
				fmt.Fprintf(cmd.OutOrStdout(), "Organizing %s\n", args[0])
				report, err := a.Papers.Organize(cmd.Context(), args[0], topics)
				if err != nil {
					return err
				}
				printReport(cmd.OutOrStdout(), "papers", report)
				return nil
			})
		},
	}
	cmd.Flags().StringSliceVarP(&topics, "topics", "t", nil, `comma-separated topics, e.g. "CV,NLP,RL"`)
	_ = cmd.MarkFlagRequired("topics")
	return cmd
}

func newListPapersCmd(st *state) *cobra.Command {
	var query string
	cmd := &cobra.Command{
		Use:   "list-papers",
		Short: "List indexed paper files",
		Long: `Without --query prints every indexed paper path. With --query prints the
paths of the most related papers.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return st.withApp(cmd, func(a *app.App) error {
				paths, err := a.Papers.List(cmd.Context(), query)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(paths) == 0 {
					fmt.Fprintln(out, "No papers found.")
					return nil
				}
				fmt.Fprintf(out, "Found %d files:\n\n", len(paths))
				for _, p := range paths {
					fmt.Fprintf(out, "  %s\n", p)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&query, "query", "q", "", "optional search query")
	return cmd
}
