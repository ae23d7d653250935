package memory

import (
	"context"
	"fmt"
	"maps"
	"sync"

	"paperlens/internal/domain"
	"paperlens/internal/vectorstore/vecmath"
)

// Store keeps collections in process memory. Nothing survives Close.
type Store struct {
	mu          sync.Mutex
	collections map[string]*Collection
}

func NewStore() *Store { return &Store{collections: make(map[string]*Collection)} }

// Collection returns the named collection, creating it on first use.
func (s *Store) Collection(_ context.Context, name string) (domain.VectorIndex, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.collections[name]
	if !ok {
		c = &Collection{name: name}
		s.collections[name] = c
	}
	return c, nil
}

func (s *Store) Close() error { return nil }

// Collection is a brute-force cosine index over an append-only slice.
type Collection struct {
	name string

	mu        sync.RWMutex
	dimension int
	items     []domain.IndexedItem
}

func (c *Collection) Name() string { return c.name }

func (c *Collection) Insert(_ context.Context, item domain.IndexedItem) error {
	if len(item.Embedding) == 0 {
		return fmt.Errorf("%w: %s: empty embedding for %s", domain.ErrIndexStorage, c.name, item.ID)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.dimension == 0 {
		c.dimension = len(item.Embedding)
	}
	if len(item.Embedding) != c.dimension {
		return fmt.Errorf("%w: %s: vector dimension %d, collection has %d",
			domain.ErrIndexStorage, c.name, len(item.Embedding), c.dimension)
	}
	stored := domain.IndexedItem{
		ID:        item.ID,
		Embedding: append([]float32(nil), item.Embedding...),
		Content:   item.Content,
		Metadata:  maps.Clone(item.Metadata),
	}
	c.items = append(c.items, stored)
	return nil
}

func (c *Collection) Query(_ context.Context, vector []float32, k int) ([]domain.Hit, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.items) == 0 || k <= 0 {
		return []domain.Hit{}, nil
	}
	if len(vector) != c.dimension {
		return nil, fmt.Errorf("%w: %s: query dimension %d, collection has %d",
			domain.ErrIndexStorage, c.name, len(vector), c.dimension)
	}
	distances := make([]float64, len(c.items))
	for i := range c.items {
		distances[i] = vecmath.CosineDistance(c.items[i].Embedding, vector)
	}
	idxs := vecmath.Rank(distances, k)
	hits := make([]domain.Hit, 0, len(idxs))
	for _, j := range idxs {
		it := c.items[j]
		hits = append(hits, domain.Hit{
			ID:       it.ID,
			Content:  it.Content,
			Metadata: maps.Clone(it.Metadata),
			Distance: distances[j],
		})
	}
	return hits, nil
}

func (c *Collection) All(_ context.Context) ([]domain.Metadata, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]domain.Metadata, len(c.items))
	for i, it := range c.items {
		out[i] = maps.Clone(it.Metadata)
	}
	return out, nil
}
