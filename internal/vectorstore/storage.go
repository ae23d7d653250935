// Package vectorstore opens the configured vector store backend.
package vectorstore

import (
	"context"
	"fmt"
	"time"

	"paperlens/internal/config"
	"paperlens/internal/domain"
	"paperlens/internal/vectorstore/memory"
	"paperlens/internal/vectorstore/qdrant"
	"paperlens/internal/vectorstore/sqlite"
)

// Store hands out named collections backed by one storage location.
type Store interface {
	Collection(ctx context.Context, name string) (domain.VectorIndex, error)
	Close() error
}

// Open builds the store selected by cfg.Type.
func Open(cfg config.VectorStoreConfig) (Store, error) {
	switch cfg.Type {
	case "sqlite", "":
		path := "data/vectors.db"
		if cfg.SQLite != nil && cfg.SQLite.Path != "" {
			path = cfg.SQLite.Path
		}
		s, err := sqlite.Open(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "memory":
		return memory.NewStore(), nil
	case "qdrant":
		if cfg.Qdrant == nil {
			return nil, fmt.Errorf("qdrant config missing")
		}
		return qdrant.NewStore(qdrant.Config{
			URL:              cfg.Qdrant.URL,
			APIKey:           cfg.Qdrant.APIKey,
			CollectionPrefix: cfg.Qdrant.CollectionPrefix,
			Timeout:          time.Duration(cfg.Qdrant.TimeoutSecs) * time.Second,
		}), nil
	default:
		return nil, fmt.Errorf("unknown vector store type: %s", cfg.Type)
	}
}
