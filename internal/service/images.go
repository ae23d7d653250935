package service

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"paperlens/internal/domain"
	"paperlens/internal/embedding/visual"
)

// Images indexes and searches pictures in the images collection.
type Images struct {
	embedder domain.ImageEmbedder
	index    domain.VectorIndex
	opts     Options
	logger   *slog.Logger
}

func NewImages(embedder domain.ImageEmbedder, index domain.VectorIndex, opts Options, logger *slog.Logger) *Images {
	if logger == nil {
		logger = slog.Default()
	}
	return &Images{embedder: embedder, index: index, opts: opts.withDefaults(), logger: logger}
}

// Add decodes, embeds and indexes one image file.
func (s *Images) Add(ctx context.Context, path string) (*domain.ImageAdded, error) {
	if !visual.Supported(path) {
		return nil, fmt.Errorf("%w: %s (accepted: %v)", domain.ErrUnsupportedFormat, path, visual.Extensions)
	}
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

	img, err := visual.Load(abs)
	if err != nil {
		return nil, err
	}
	vec, err := s.embedder.EmbedImage(ctx, img)
	if err != nil {
		return nil, err
	}

	id := ImageID(abs)
	item := domain.IndexedItem{
		ID:        id,
		Embedding: vec,
		Content:   abs,
		Metadata: domain.Metadata{
			domain.MetaFilePath: abs,
			domain.MetaFileName: info.Name(),
			domain.MetaFileSize: info.Size(),
		},
	}
	if err := s.index.Insert(ctx, item); err != nil {
		return nil, err
	}
	s.logger.Info("image added", "file", info.Name(), "id", id)
	return &domain.ImageAdded{ID: id, FileName: info.Name(), FilePath: abs, FileSize: info.Size()}, nil
}

// Index adds every supported image directly inside dir.
func (s *Images) Index(ctx context.Context, dir string) (*domain.BatchReport, error) {
	paths, err := scanDir(dir, false, visual.Extensions)
	if err != nil {
		return nil, err
	}
	s.logger.Info("found images", "count", len(paths), "dir", dir)
	report := &domain.BatchReport{Found: len(paths)}
	return report, runBatch(ctx, s.logger, report, paths, s.addOne)
}

// Process adds the images under dir whose path is not indexed yet.
func (s *Images) Process(ctx context.Context, dir string, recursive bool) (*domain.BatchReport, error) {
	paths, err := scanDir(dir, recursive, visual.Extensions)
	if err != nil {
		return nil, err
	}
	indexed, err := s.IndexedPaths(ctx)
	if err != nil {
		return nil, fmt.Errorf("reading indexed images: %w", err)
	}

	report := &domain.BatchReport{Found: len(paths)}
	pending := make([]string, 0, len(paths))
	for _, p := range paths {
		if _, ok := indexed[p]; ok {
			report.Skipped++
			continue
		}
		pending = append(pending, p)
	}
	s.logger.Info("found images", "count", len(paths), "new", len(pending), "dir", dir)
	return report, runBatch(ctx, s.logger, report, pending, s.addOne)
}

// IndexedPaths returns the file_path of every indexed image. A store that
// has never been written to yields an empty set; read failures are returned.
func (s *Images) IndexedPaths(ctx context.Context) (map[string]struct{}, error) {
	all, err := s.index.All(ctx)
	if err != nil {
		return nil, err
	}
	set := make(map[string]struct{}, len(all))
	for _, m := range all {
		if p := m.String(domain.MetaFilePath); p != "" {
			set[p] = struct{}{}
		}
	}
	return set, nil
}

func (s *Images) addOne(ctx context.Context, path string) error {
	_, err := s.Add(ctx, path)
	return err
}

// Search returns the topK images closest to a text query.
func (s *Images) Search(ctx context.Context, query string, topK int) ([]domain.ImageResult, error) {
	if topK <= 0 {
		topK = s.opts.TopK
	}
	s.logger.Info("searching images", "query", query, "top_k", topK)
	vec, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	hits, err := s.index.Query(ctx, vec, topK)
	if err != nil {
		return nil, err
	}
	out := make([]domain.ImageResult, 0, len(hits))
	for _, h := range hits {
		d := h.Distance
		out = append(out, domain.ImageResult{
			FileName: h.Metadata.String(domain.MetaFileName),
			FilePath: h.Metadata.String(domain.MetaFilePath),
			FileSize: h.Metadata.Int64(domain.MetaFileSize),
			Distance: &d,
		})
	}
	return out, nil
}
