// Package visual provides a cross-modal embedder: images are described as
// colour and layout words and text queries are expanded through a concept
// lexicon, so both land in the same hashed vector space.
package visual

import (
	"context"
	"fmt"
	"image"
	"regexp"
	"strings"

	"paperlens/internal/domain"
	"paperlens/internal/embedding/hashing"
)

// Embedder implements domain.ImageEmbedder on top of a hashing text embedder.
type Embedder struct {
	text *hashing.Embedder
}

var _ domain.ImageEmbedder = (*Embedder)(nil)

// NewEmbedder creates a cross-modal embedder with the given vector size.
func NewEmbedder(dimension int) *Embedder {
	return &Embedder{text: hashing.NewEmbedder(dimension)}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "visual" }

// Dimension returns the dimensionality of the produced embedding vectors.
func (e *Embedder) Dimension() int { return e.text.Dimension() }

// EmbedImage embeds the word description of img.
func (e *Embedder) EmbedImage(ctx context.Context, img image.Image) ([]float32, error) {
	if img == nil {
		return nil, fmt.Errorf("%w: nil image", domain.ErrEmbedding)
	}
	words := Describe(img)
	if len(words) == 0 {
		return nil, fmt.Errorf("%w: empty image", domain.ErrEmbedding)
	}
	return e.text.Embed(ctx, strings.Join(words, " "))
}

// Embed embeds a text query after lexicon expansion.
func (e *Embedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return e.text.Embed(ctx, Expand(text))
}

var wordRe = regexp.MustCompile(`\p{L}+`)

// Expand appends the visual vocabulary associated with concepts found in text.
func Expand(text string) string {
	lower := strings.ToLower(text)
	var extra []string
	for _, w := range wordRe.FindAllString(lower, -1) {
		extra = append(extra, lexicon[w]...)
	}
	for _, c := range hanConcepts {
		if strings.Contains(lower, c.key) {
			extra = append(extra, c.words...)
		}
	}
	if len(extra) == 0 {
		return text
	}
	return text + " " + strings.Join(extra, " ")
}
