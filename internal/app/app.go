// Package app wires configuration into the services used by commands.
package app

import (
	"context"
	"fmt"
	"log/slog"

	"paperlens/internal/config"
	"paperlens/internal/domain"
	"paperlens/internal/embedding"
	"paperlens/internal/extract/pdf"
	"paperlens/internal/organizer"
	"paperlens/internal/service"
	"paperlens/internal/vectorstore"
)

// App owns the process-wide components. It is built once and passed to
// every command that needs it.
type App struct {
	Config *config.AppConfig
	Logger *slog.Logger
	Store  vectorstore.Store
	Papers *service.Papers
	Images *service.Images
}

// New builds embedders, opens the vector store and binds one collection to
// each service.
func New(ctx context.Context, cfg *config.AppConfig, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	textEmbedder, err := embedding.NewText(cfg.Embedder.Text)
	if err != nil {
		return nil, fmt.Errorf("text embedder: %w", err)
	}
	logger.Info("loaded text embedder", "name", textEmbedder.Name(), "dimension", textEmbedder.Dimension())
	imageEmbedder, err := embedding.NewImage(cfg.Embedder.Image)
	if err != nil {
		return nil, fmt.Errorf("image embedder: %w", err)
	}
	logger.Info("loaded image embedder", "name", imageEmbedder.Name(), "dimension", imageEmbedder.Dimension())

	store, err := vectorstore.Open(cfg.VectorStore)
	if err != nil {
		return nil, fmt.Errorf("vector store: %w", err)
	}
	docs, err := store.Collection(ctx, domain.DocumentsCollection)
	if err != nil {
		store.Close()
		return nil, err
	}
	imgs, err := store.Collection(ctx, domain.ImagesCollection)
	if err != nil {
		store.Close()
		return nil, err
	}
	logger.Info("opened vector store", "type", cfg.VectorStore.Type)

	opts := service.Options{
		TopK:          cfg.Search.TopK,
		SnippetLength: cfg.Search.SnippetLength,
		ContentCap:    cfg.Search.ContentCap,
		ListLimit:     cfg.Search.ListLimit,
	}
	org := organizer.New(cfg.Library.DocumentRoot, logger)
	return &App{
		Config: cfg,
		Logger: logger,
		Store:  store,
		Papers: service.NewPapers(pdf.NewExtractor(logger), textEmbedder, docs, org, opts, logger),
		Images: service.NewImages(imageEmbedder, imgs, opts, logger),
	}, nil
}

// Close releases the vector store.
func (a *App) Close() error {
	return a.Store.Close()
}
