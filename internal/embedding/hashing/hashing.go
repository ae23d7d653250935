package hashing

import (
	"context"
	"fmt"
	"hash/fnv"
	"math"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"paperlens/internal/domain"
)

// DefaultDimension matches the output size of common sentence encoders.
const DefaultDimension = 384

// Embedder is a fixed-dimension feature-hashing text vectorizer.
// Every token is hashed into one of Dimension signed buckets, weighted by
// sublinear term frequency and L2 normalized. It needs no corpus, so vectors
// from separate runs are comparable.
type Embedder struct {
	dimension    int
	tokenPattern *regexp.Regexp
	stopwords    map[string]struct{}
}

// NewEmbedder creates a hashing embedder. A non-positive dimension selects DefaultDimension.
func NewEmbedder(dimension int) *Embedder {
	if dimension <= 0 {
		dimension = DefaultDimension
	}
	return &Embedder{
		dimension: dimension,
		// Han runs are split into characters later; other scripts form words.
		tokenPattern: regexp.MustCompile(`\p{Han}+|(?:[^\P{L}\p{Han}]|\p{N})+`),
		stopwords:    defaultStopwords(),
	}
}

// Name returns the identifier of this embedder implementation.
func (e *Embedder) Name() string { return "hashing" }

// Dimension returns the dimensionality of the produced embedding vectors.
func (e *Embedder) Dimension() int { return e.dimension }

// Embed computes the hashed embedding for the given text.
func (e *Embedder) Embed(_ context.Context, text string) ([]float32, error) {
	features := e.Features(text)
	if len(features) == 0 {
		return nil, fmt.Errorf("%w: no tokens in input", domain.ErrEmbedding)
	}
	tf := make(map[string]int, len(features))
	for _, f := range features {
		tf[f]++
	}
	// Stable ordering keeps bucket sums bit-identical between calls.
	terms := make([]string, 0, len(tf))
	for f := range tf {
		terms = append(terms, f)
	}
	sort.Strings(terms)
	acc := make([]float64, e.dimension)
	for _, f := range terms {
		idx, sign := e.bucket(f)
		acc[idx] += sign * (1 + math.Log(float64(tf[f])))
	}
	norm := 0.0
	for _, v := range acc {
		norm += v * v
	}
	norm = math.Sqrt(norm)
	if norm == 0 {
		return nil, fmt.Errorf("%w: degenerate vector", domain.ErrEmbedding)
	}
	vec := make([]float32, e.dimension)
	for i, v := range acc {
		vec[i] = float32(v / norm)
	}
	return vec, nil
}

// Features returns the hashed features of text in document order.
func (e *Embedder) Features(text string) []string {
	raw := e.tokenPattern.FindAllString(strings.ToLower(text), -1)
	out := make([]string, 0, len(raw))
	for _, tok := range raw {
		r, _ := utf8.DecodeRuneInString(tok)
		if unicode.Is(unicode.Han, r) {
			out = appendHan(out, tok)
			continue
		}
		if _, isStop := e.stopwords[tok]; isStop {
			continue
		}
		out = append(out, "w:"+stem(tok))
	}
	return out
}

func (e *Embedder) bucket(feature string) (int, float64) {
	h := fnv.New64a()
	_, _ = h.Write([]byte(feature))
	sum := h.Sum64()
	sign := 1.0
	if sum>>63 == 1 {
		sign = -1.0
	}
	return int(sum % uint64(e.dimension)), sign
}

// appendHan emits unigrams and bigrams for a run of Han characters.
func appendHan(out []string, run string) []string {
	runes := []rune(run)
	for i, r := range runes {
		out = append(out, "h:"+string(r))
		if i+1 < len(runes) {
			out = append(out, "h2:"+string(runes[i:i+2]))
		}
	}
	return out
}

// stem strips a plural suffix so "transformers" and "transformer" share a bucket.
func stem(tok string) string {
	if len(tok) <= 3 || !strings.HasSuffix(tok, "s") {
		return tok
	}
	for _, keep := range []string{"ss", "us", "is"} {
		if strings.HasSuffix(tok, keep) {
			return tok
		}
	}
	if strings.HasSuffix(tok, "ies") && len(tok) > 4 {
		return tok[:len(tok)-3] + "y"
	}
	return tok[:len(tok)-1]
}

func defaultStopwords() map[string]struct{} {
	words := []string{
		"a", "an", "the", "and", "or", "but", "if", "then", "else", "for", "to", "of", "in", "on", "at", "by", "with", "as", "is", "are", "was", "were", "be", "been", "being", "it", "this", "that", "these", "those", "from", "up", "down", "over", "under", "again", "further", "than", "so", "such", "into", "about", "between", "through", "during", "before", "after", "above", "below", "out", "off", "own", "same", "too", "very", "can", "will", "just", "don", "should", "now",
	}
	m := make(map[string]struct{}, len(words))
	for _, w := range words {
		m[w] = struct{}{}
	}
	return m
}
