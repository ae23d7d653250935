package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"

	"paperlens/internal/domain"
)

func writeJSON(cmd *cobra.Command, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(data))
	return nil
}

func printPaperResults(out io.Writer, results []domain.PaperResult) {
	if len(results) == 0 {
		fmt.Fprintln(out, "No matching papers.")
		return
	}
	fmt.Fprintf(out, "Found %d related papers:\n\n", len(results))
	for i, r := range results {
		fmt.Fprintf(out, "%d. %s\n", i+1, r.FileName)
		fmt.Fprintf(out, "   Path: %s\n", r.FilePath)
		if r.Topics != "" {
			fmt.Fprintf(out, "   Topics: %s\n", r.Topics)
		}
		if sim, ok := domain.Similarity(r.Distance); ok {
			fmt.Fprintf(out, "   Similarity: %.3f\n", sim)
		}
		fmt.Fprintf(out, "   Snippet: %s\n\n", r.Snippet)
	}
}

func printImageResults(out io.Writer, results []domain.ImageResult) {
	if len(results) == 0 {
		fmt.Fprintln(out, "No matching images.")
		return
	}
	fmt.Fprintf(out, "Found %d related images:\n\n", len(results))
	for i, r := range results {
		fmt.Fprintf(out, "%d. %s\n", i+1, r.FileName)
		fmt.Fprintf(out, "   Path: %s\n", r.FilePath)
		if sim, ok := domain.Similarity(r.Distance); ok {
			fmt.Fprintf(out, "   Similarity: %.3f\n", sim)
		}
		fmt.Fprintln(out)
	}
}

func printReport(out io.Writer, kind string, r *domain.BatchReport) {
	for _, f := range r.Failures {
		fmt.Fprintf(out, "✗ %s: %v\n", filepath.Base(f.Path), f.Err)
	}
	fmt.Fprintf(out, "✓ Done: %d/%d %s indexed\n", r.Succeeded, r.Processed, kind)
}
