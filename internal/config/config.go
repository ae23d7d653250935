package config

import (
	"errors"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// LibraryConfig locates the on-disk library.
type LibraryConfig struct {
	// DocumentRoot receives one subdirectory per topic when papers are classified.
	DocumentRoot string `yaml:"document_root"`
	// ImagesInbox is the default source directory of process-images.
	ImagesInbox string `yaml:"images_inbox"`
}

// OpenAIEmbedderConfig holds configuration for the OpenAI-compatible embedder.
type OpenAIEmbedderConfig struct {
	BaseURL     string `yaml:"base_url"`
	APIKeyEnv   string `yaml:"api_key_env"`
	Model       string `yaml:"model"`
	TimeoutSecs int    `yaml:"timeout_secs"`
	Dimension   int    `yaml:"dimension"`

	// RequestsPerSecond throttles calls to the API; 0 means unthrottled.
	RequestsPerSecond float64 `yaml:"requests_per_second"`
}

// ModelConfig selects one embedder implementation.
type ModelConfig struct {
	Type      string                `yaml:"type"`
	Dimension int                   `yaml:"dimension"`
	OpenAI    *OpenAIEmbedderConfig `yaml:"openai,omitempty"`
}

// EmbedderConfig binds an embedder to each collection family.
type EmbedderConfig struct {
	Text  ModelConfig `yaml:"text"`
	Image ModelConfig `yaml:"image"`
}

// VectorStoreConfig selects and configures the vector store implementation.
type VectorStoreConfig struct {
	Type   string        `yaml:"type"`
	SQLite *SQLiteConfig `yaml:"sqlite,omitempty"`
	Qdrant *QdrantConfig `yaml:"qdrant,omitempty"`
}

// SQLiteConfig points at the embedded database file.
type SQLiteConfig struct {
	Path string `yaml:"path"`
}

// QdrantConfig contains connection details for a Qdrant vector store.
type QdrantConfig struct {
	URL              string `yaml:"url"`
	APIKey           string `yaml:"api_key"`
	CollectionPrefix string `yaml:"collection_prefix"`
	TimeoutSecs      int    `yaml:"timeout_secs"`
}

// SearchConfig holds query and display defaults.
type SearchConfig struct {
	TopK          int `yaml:"top_k"`
	SnippetLength int `yaml:"snippet_length"`
	ContentCap    int `yaml:"content_cap"`
	ListLimit     int `yaml:"list_limit"`
}

// LogConfig configures the process logger.
type LogConfig struct {
	Level string `yaml:"level"`
	File  string `yaml:"file"`
}

// AppConfig is the root application configuration structure.
type AppConfig struct {
	Library     LibraryConfig     `yaml:"library"`
	Embedder    EmbedderConfig    `yaml:"embedder"`
	VectorStore VectorStoreConfig `yaml:"vector_store"`
	Search      SearchConfig      `yaml:"search"`
	Log         LogConfig         `yaml:"log"`
}

// Load reads a config from a specified path. If the file does not exist, returns defaults.
func Load(path string) (*AppConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Default(), nil
		}
		return nil, err
	}
	var cfg AppConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	applyConfigDefaults(&cfg)
	return &cfg, nil
}

// LoadDefault tries ./config.yaml first, then ~/.config/paperlens/config.yaml.
// If neither exists, it writes defaults to ~/.config/paperlens/config.yaml and returns them.
func LoadDefault() (*AppConfig, string, error) {
	cwdPath := "config.yaml"
	if _, err := os.Stat(cwdPath); err == nil {
		cfg, err := Load(cwdPath)
		return cfg, cwdPath, err
	}
	userPath, err := defaultUserConfigPath()
	if err != nil {
		return nil, "", err
	}
	if _, err := os.Stat(userPath); err == nil {
		cfg, err := Load(userPath)
		return cfg, userPath, err
	}
	cfg := Default()
	if err := Save(userPath, cfg); err != nil {
		return nil, "", err
	}
	return cfg, userPath, nil
}

// Save writes the config to the given path, creating directories as needed.
func Save(path string, cfg *AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func defaultUserConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "paperlens", "config.yaml"), nil
}

// Default returns the configuration used when no file is present.
func Default() *AppConfig {
	cfg := &AppConfig{
		Library: LibraryConfig{DocumentRoot: "data/documents", ImagesInbox: "images"},
		Embedder: EmbedderConfig{
			Text:  ModelConfig{Type: "hashing"},
			Image: ModelConfig{Type: "visual"},
		},
		VectorStore: VectorStoreConfig{Type: "sqlite"},
	}
	applyConfigDefaults(cfg)
	return cfg
}

func applyConfigDefaults(cfg *AppConfig) {
	if cfg.Library.DocumentRoot == "" {
		cfg.Library.DocumentRoot = "data/documents"
	}
	if cfg.Library.ImagesInbox == "" {
		cfg.Library.ImagesInbox = "images"
	}
	if cfg.Embedder.Text.Type == "" {
		cfg.Embedder.Text.Type = "hashing"
	}
	if cfg.Embedder.Image.Type == "" {
		cfg.Embedder.Image.Type = "visual"
	}
	for _, m := range []*ModelConfig{&cfg.Embedder.Text, &cfg.Embedder.Image} {
		if m.Type == "openai" {
			if m.OpenAI == nil {
				m.OpenAI = &OpenAIEmbedderConfig{}
			}
			if m.OpenAI.BaseURL == "" {
				m.OpenAI.BaseURL = "https://api.openai.com/v1"
			}
			if m.OpenAI.APIKeyEnv == "" {
				m.OpenAI.APIKeyEnv = "OPENAI_API_KEY"
			}
			if m.OpenAI.Model == "" {
				m.OpenAI.Model = "text-embedding-3-small"
			}
			if m.OpenAI.TimeoutSecs == 0 {
				m.OpenAI.TimeoutSecs = 30
			}
		}
	}

	if cfg.VectorStore.Type == "" {
		cfg.VectorStore.Type = "sqlite"
	}
	if cfg.VectorStore.Type == "sqlite" {
		if cfg.VectorStore.SQLite == nil {
			cfg.VectorStore.SQLite = &SQLiteConfig{}
		}
		if cfg.VectorStore.SQLite.Path == "" {
			cfg.VectorStore.SQLite.Path = "data/vectors.db"
		}
	}
	if cfg.VectorStore.Type == "qdrant" {
		if cfg.VectorStore.Qdrant == nil {
			cfg.VectorStore.Qdrant = &QdrantConfig{}
		}
		if cfg.VectorStore.Qdrant.URL == "" {
			cfg.VectorStore.Qdrant.URL = "http://localhost:6333"
		}
		if cfg.VectorStore.Qdrant.TimeoutSecs == 0 {
			cfg.VectorStore.Qdrant.TimeoutSecs = 15
		}
	}

	if cfg.Search.TopK <= 0 {
		cfg.Search.TopK = 5
	}
	if cfg.Search.SnippetLength <= 0 {
		cfg.Search.SnippetLength = 200
	}
	if cfg.Search.ContentCap <= 0 {
		cfg.Search.ContentCap = 10000
	}
	if cfg.Search.ListLimit <= 0 {
		cfg.Search.ListLimit = 10
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "warn"
	}
}
