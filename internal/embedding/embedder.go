// Package embedding selects embedder implementations from configuration.
package embedding

import (
	"fmt"
	"time"

	"paperlens/internal/config"
	"paperlens/internal/domain"
	"paperlens/internal/embedding/hashing"
	"paperlens/internal/embedding/openai"
	"paperlens/internal/embedding/visual"
)

// NewText builds the embedder bound to the documents collection.
func NewText(cfg config.ModelConfig) (domain.TextEmbedder, error) {
	switch cfg.Type {
	case "hashing", "":
		return hashing.NewEmbedder(cfg.Dimension), nil
	case "openai":
		oc := cfg.OpenAI
		if oc == nil {
			oc = &config.OpenAIEmbedderConfig{}
		}
		dim := oc.Dimension
		if dim == 0 {
			dim = cfg.Dimension
		}
		c, err := openai.NewClient(openai.Config{
			BaseURL:           oc.BaseURL,
			APIKeyEnv:         oc.APIKeyEnv,
			Model:             oc.Model,
			Timeout:           time.Duration(oc.TimeoutSecs) * time.Second,
			Dimension:         dim,
			RequestsPerSecond: oc.RequestsPerSecond,
		})
		if err != nil {
			return nil, err
		}
		return c, nil
	default:
		return nil, fmt.Errorf("unknown text embedder type: %s", cfg.Type)
	}
}

// NewImage builds the cross-modal embedder bound to the images collection.
func NewImage(cfg config.ModelConfig) (domain.ImageEmbedder, error) {
	switch cfg.Type {
	case "visual", "":
		return visual.NewEmbedder(cfg.Dimension), nil
	default:
		return nil, fmt.Errorf("unknown image embedder type: %s", cfg.Type)
	}
}
