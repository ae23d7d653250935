// Package pdf extracts plain text from PDF files.
//
// Extraction is tried in a fixed order: the structured reader first, then a
// raw content-stream scan. Each attempt produces a Result rather than
// panicking or returning early, so the caller picks the first usable text.
package pdf

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"paperlens/internal/domain"
)

// Result is the outcome of one extraction method.
type Result struct {
	Method string
	Text   string
	Err    error
}

// OK reports whether the method produced usable text without error.
func (r Result) OK() bool { return r.Err == nil && r.Text != "" }

func (r Result) reason() string {
	switch {
	case r.Err != nil:
		return r.Err.Error()
	case r.Text == "":
		return "no text"
	default:
		return "ok"
	}
}

// Method is one extraction strategy.
type Method struct {
	Name string
	Run  func(path string) Result
}

// Extractor implements domain.TextExtractor with a primary and a fallback method.
type Extractor struct {
	methods []Method
	logger  *slog.Logger
}

var _ domain.TextExtractor = (*Extractor)(nil)

// NewExtractor returns the default two-tier extractor.
func NewExtractor(logger *slog.Logger) *Extractor {
	return NewExtractorWith(logger,
		Method{Name: "reader", Run: ReadPages},
		Method{Name: "stream-scan", Run: ScanStreams},
	)
}

// NewExtractorWith builds an extractor from explicit methods, tried in order.
func NewExtractorWith(logger *slog.Logger, methods ...Method) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{methods: methods, logger: logger}
}

// Extract returns the document text, pages in order separated by newlines.
func (e *Extractor) Extract(ctx context.Context, path string) (string, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return "", fmt.Errorf("%w: %v", domain.ErrExtraction, err)
	}

	var results []Result
	for _, m := range e.methods {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		r := m.Run(path)
		r.Method = m.Name
		r.Text = strings.TrimSpace(r.Text)
		if r.OK() {
			return r.Text, nil
		}
		e.logger.Debug("pdf extraction method failed", "method", m.Name, "path", path, "reason", r.reason())
		results = append(results, r)
	}

	// A method that failed part-way may still have recovered some pages.
	for _, r := range results {
		if r.Text != "" {
			e.logger.Warn("using partial pdf text", "method", r.Method, "path", path, "error", r.Err)
			return r.Text, nil
		}
	}

	reasons := make([]string, len(results))
	for i, r := range results {
		reasons[i] = r.Method + ": " + r.reason()
	}
	return "", fmt.Errorf("%w: no text in %s (%s)", domain.ErrExtraction, path, strings.Join(reasons, "; "))
}
