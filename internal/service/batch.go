package service

import (
	"context"
	"log/slog"
	"path/filepath"

	"paperlens/internal/domain"
)

// runBatch feeds paths to add one at a time. A failing item is logged and
// recorded; it never stops the loop.
func runBatch(ctx context.Context, logger *slog.Logger, report *domain.BatchReport, paths []string, add func(context.Context, string) error) error {
	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		report.Processed++
		if err := add(ctx, path); err != nil {
			logger.Warn("skipping file", "file", filepath.Base(path), "error", err)
			report.Failures = append(report.Failures, domain.BatchFailure{Path: path, Err: err})
			continue
		}
		report.Succeeded++
		logger.Info("indexed file", "file", filepath.Base(path), "n", i+1, "of", len(paths))
	}
	logger.Info("batch finished", "succeeded", report.Succeeded, "processed", report.Processed, "found", report.Found)
	return nil
}
