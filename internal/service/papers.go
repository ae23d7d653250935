package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"paperlens/internal/domain"
	"paperlens/internal/organizer"
)

// Options holds the query and storage limits shared by both services.
type Options struct {
	TopK          int
	SnippetLength int
	ContentCap    int
	ListLimit     int
}

func (o Options) withDefaults() Options {
	if o.TopK <= 0 {
		o.TopK = 5
	}
	if o.SnippetLength <= 0 {
		o.SnippetLength = 200
	}
	if o.ContentCap <= 0 {
		o.ContentCap = 10000
	}
	if o.ListLimit <= 0 {
		o.ListLimit = 10
	}
	return o
}

// PaperExtensions is the extension accepted by the paper pipeline.
var PaperExtensions = []string{".pdf"}

// Papers indexes and searches PDF papers in the documents collection.
type Papers struct {
	extractor domain.TextExtractor
	embedder  domain.TextEmbedder
	index     domain.VectorIndex
	organizer *organizer.Organizer
	opts      Options
	logger    *slog.Logger
}

func NewPapers(extractor domain.TextExtractor, embedder domain.TextEmbedder, index domain.VectorIndex, org *organizer.Organizer, opts Options, logger *slog.Logger) *Papers {
	if logger == nil {
		logger = slog.Default()
	}
	return &Papers{
		extractor: extractor,
		embedder:  embedder,
		index:     index,
		organizer: org,
		opts:      opts.withDefaults(),
		logger:    logger,
	}
}

// Add extracts, embeds and indexes one paper. When topics are given the file
// is also copied into the matching topic directories.
func (p *Papers) Add(ctx context.Context, path string, topics []string) (*domain.PaperAdded, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrNotFound, path)
		}
		return nil, err
	}
	if info.IsDir() || !strings.EqualFold(filepath.Ext(abs), ".pdf") {
		return nil, fmt.Errorf("%w: only PDF files are accepted: %s", domain.ErrUnsupportedFormat, path)
	}
	topics = organizer.Normalize(topics)

	p.logger.Info("processing paper", "file", info.Name())
	text, err := p.extractor.Extract(ctx, abs)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("%w: no text in %s", domain.ErrExtraction, path)
	}

	vec, err := p.embedder.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	id := PaperID(abs)
	item := domain.IndexedItem{
		ID:        id,
		Embedding: vec,
		Content:   truncateRunes(text, p.opts.ContentCap),
		Metadata: domain.Metadata{
			domain.MetaFilePath: abs,
			domain.MetaFileName: info.Name(),
			domain.MetaTopics:   strings.Join(topics, ","),
		},
	}
	if err := p.index.Insert(ctx, item); err != nil {
		return nil, err
	}

	added := &domain.PaperAdded{
		ID:         id,
		FileName:   info.Name(),
		FilePath:   abs,
		TextLength: utf8.RuneCountInString(text),
	}
	if len(topics) > 0 {
		placed, err := p.organizer.Place(ctx, abs, topics, text)
		if err != nil {
			return nil, err
		}
		added.Topics = placed
	}
	p.logger.Info("paper added", "file", info.Name(), "id", id)
	return added, nil
}

// Organize adds every PDF directly inside dir, classifying each against topics.
func (p *Papers) Organize(ctx context.Context, dir string, topics []string) (*domain.BatchReport, error) {
	topics = organizer.Normalize(topics)
	if len(topics) == 0 {
		return nil, fmt.Errorf("%w: at least one topic is required", domain.ErrInvalidInput)
	}
	paths, err := scanDir(dir, false, PaperExtensions)
	if err != nil {
		return nil, err
	}
	p.logger.Info("found papers", "count", len(paths), "dir", dir)

	report := &domain.BatchReport{Found: len(paths)}
	err = runBatch(ctx, p.logger, report, paths, func(ctx context.Context, path string) error {
		_, err := p.Add(ctx, path, topics)
		return err
	})
	return report, err
}

// Search returns the topK papers closest to query.
func (p *Papers) Search(ctx context.Context, query string, topK int) ([]domain.PaperResult, error) {
	if topK <= 0 {
		topK = p.opts.TopK
	}
	p.logger.Info("searching papers", "query", query, "top_k", topK)
	vec, err := p.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	hits, err := p.index.Query(ctx, vec, topK)
	if err != nil {
		return nil, err
	}
	out := make([]domain.PaperResult, 0, len(hits))
	for _, h := range hits {
		d := h.Distance
		out = append(out, domain.PaperResult{
			FileName: h.Metadata.String(domain.MetaFileName),
			FilePath: h.Metadata.String(domain.MetaFilePath),
			Topics:   h.Metadata.String(domain.MetaTopics),
			Distance: &d,
			Snippet:  Snippet(h.Content, p.opts.SnippetLength),
		})
	}
	return out, nil
}

// List returns the paths of the papers most related to query, or of every
// indexed paper when query is empty.
func (p *Papers) List(ctx context.Context, query string) ([]string, error) {
	if strings.TrimSpace(query) != "" {
		results, err := p.Search(ctx, query, p.opts.ListLimit)
		if err != nil {
			return nil, err
		}
		paths := make([]string, len(results))
		for i, r := range results {
			paths[i] = r.FilePath
		}
		return paths, nil
	}
	all, err := p.index.All(ctx)
	if err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(all))
	for _, m := range all {
		paths = append(paths, m.String(domain.MetaFilePath))
	}
	return paths, nil
}

// Snippet returns the first n characters of content, with "..." appended
// when something was cut.
func Snippet(content string, n int) string {
	if utf8.RuneCountInString(content) <= n {
		return content
	}
	return truncateRunes(content, n) + "..."
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
