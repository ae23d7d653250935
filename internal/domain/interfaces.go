package domain

import (
	"context"
	"image"
)

// Collection names and the distance space shared by both.
const (
	DocumentsCollection = "documents"
	ImagesCollection    = "images"
	CosineSpace         = "cosine"
)

// Metadata keys persisted with every item.
const (
	MetaFilePath = "file_path"
	MetaFileName = "file_name"
	MetaTopics   = "topics"
	MetaFileSize = "file_size"
)

// Metadata holds the string or numeric attributes stored next to an embedding.
type Metadata map[string]any

// String returns the value under key as a string, or "" when absent.
func (m Metadata) String(key string) string {
	if v, ok := m[key].(string); ok {
		return v
	}
	return ""
}

// Int64 returns the numeric value under key. Stores that round-trip through
// JSON hand numbers back as float64, so both shapes are accepted.
func (m Metadata) Int64(key string) int64 {
	switch v := m[key].(type) {
	case int:
		return int64(v)
	case int64:
		return v
	case float64:
		return int64(v)
	case float32:
		return int64(v)
	default:
		return 0
	}
}

// IndexedItem is one vector store entry.
type IndexedItem struct {
	ID        string
	Embedding []float32
	// Content is the primary content snapshot: truncated text for papers,
	// the absolute source path for images.
	Content  string
	Metadata Metadata
}

// Hit is a single nearest-neighbour match. Distance is the cosine distance.
type Hit struct {
	ID       string
	Content  string
	Metadata Metadata
	Distance float64
}

// TextEmbedder maps text to a fixed-length vector.
type TextEmbedder interface {
	Name() string
	Dimension() int
	Embed(ctx context.Context, text string) ([]float32, error)
}

// ImageEmbedder is a cross-modal embedder: images and text land in the same space.
type ImageEmbedder interface {
	TextEmbedder
	EmbedImage(ctx context.Context, img image.Image) ([]float32, error)
}

// VectorIndex is one named collection of embeddings in cosine space.
type VectorIndex interface {
	Name() string
	// Insert adds one entry. Duplicate ids are not rejected.
	Insert(ctx context.Context, item IndexedItem) error
	// Query returns at most k hits by ascending distance, ties in insertion order.
	Query(ctx context.Context, vector []float32, k int) ([]Hit, error)
	// All returns the metadata of every committed entry.
	All(ctx context.Context) ([]Metadata, error)
}

// TextExtractor converts a source document into plain text.
type TextExtractor interface {
	Extract(ctx context.Context, path string) (string, error)
}
