package qdrant

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperlens/internal/domain"
	"paperlens/internal/vectorstore/vecmath"
	"paperlens/internal/vectorstore/vectorstoretest"
)

type fakePoint struct {
	ID      string          `json:"id"`
	Vector  []float32       `json:"vector"`
	Payload json.RawMessage `json:"payload"`
}

type fakeCollection struct {
	size   int
	points []fakePoint
}

// fakeQdrant implements the handful of REST endpoints the client uses.
type fakeQdrant struct {
	mu          sync.Mutex
	collections map[string]*fakeCollection
	apiKeys     []string
}

func newFakeQdrant(t *testing.T) (*fakeQdrant, *httptest.Server) {
	f := &fakeQdrant{collections: map[string]*fakeCollection{}}
	srv := httptest.NewServer(http.HandlerFunc(f.serve))
	t.Cleanup(srv.Close)
	return f, srv
}

func (f *fakeQdrant) serve(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.apiKeys = append(f.apiKeys, r.Header.Get("api-key"))

	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if len(parts) < 2 || parts[0] != "collections" {
		http.NotFound(w, r)
		return
	}
	name := parts[1]
	c := f.collections[name]
	op := strings.Join(parts[2:], "/")

	switch {
	case op == "" && r.Method == http.MethodPut:
		var body struct {
			Vectors struct {
				Size     int    `json:"size"`
				Distance string `json:"distance"`
			} `json:"vectors"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		if c != nil || body.Vectors.Distance != "Cosine" {
			http.Error(w, "bad request", http.StatusBadRequest)
			return
		}
		f.collections[name] = &fakeCollection{size: body.Vectors.Size}
		writeResult(w, true)
	case c == nil:
		http.NotFound(w, r)
	case op == "" && r.Method == http.MethodGet:
		writeResult(w, map[string]any{"config": map[string]any{"params": map[string]any{"vectors": map[string]any{"size": c.size}}}})
	case op == "points" && r.Method == http.MethodPut:
		var body struct {
			Points []fakePoint `json:"points"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		for _, p := range body.Points {
			if len(p.Vector) != c.size {
				http.Error(w, "wrong vector size", http.StatusBadRequest)
				return
			}
		}
		c.points = append(c.points, body.Points...)
		writeResult(w, map[string]any{"status": "completed"})
	case op == "points/search":
		var body struct {
			Vector []float32 `json:"vector"`
			Limit  int       `json:"limit"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		type scored struct {
			Score   float64         `json:"score"`
			Payload json.RawMessage `json:"payload"`
		}
		// Newest first so ties come back reversed; the client must restore insertion order.
		res := make([]scored, 0, len(c.points))
		for i := len(c.points) - 1; i >= 0; i-- {
			p := c.points[i]
			res = append(res, scored{Score: 1 - vecmath.CosineDistance(p.Vector, body.Vector), Payload: p.Payload})
		}
		sort.SliceStable(res, func(i, j int) bool { return res[i].Score > res[j].Score })
		if body.Limit < len(res) {
			res = res[:body.Limit]
		}
		writeResult(w, res)
	case op == "points/scroll":
		var body struct {
			Limit  int  `json:"limit"`
			Offset *int `json:"offset"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		start := 0
		if body.Offset != nil {
			start = *body.Offset
		}
		end := min(start+body.Limit, len(c.points))
		var next any
		if end < len(c.points) {
			next = end
		}
		writeResult(w, map[string]any{"points": c.points[start:end], "next_page_offset": next})
	default:
		http.NotFound(w, r)
	}
}

func writeResult(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]any{"result": v, "status": "ok"})
}

func TestConformance(t *testing.T) {
	vectorstoretest.Run(t, func(t *testing.T) (domain.VectorIndex, func() domain.VectorIndex) {
		_, srv := newFakeQdrant(t)
		cfg := Config{URL: srv.URL, CollectionPrefix: "test_"}
		idx, err := NewStore(cfg).Collection(context.Background(), domain.ImagesCollection)
		require.NoError(t, err)
		reopen := func() domain.VectorIndex {
			again, err := NewStore(cfg).Collection(context.Background(), domain.ImagesCollection)
			require.NoError(t, err)
			return again
		}
		return idx, reopen
	})
}

func TestInsert_CreatesPrefixedCosineCollection(t *testing.T) {
	fake, srv := newFakeQdrant(t)
	s := NewStore(Config{URL: srv.URL + "/", APIKey: "secret", CollectionPrefix: "pl_"})
	idx, err := s.Collection(context.Background(), domain.DocumentsCollection)
	require.NoError(t, err)

	require.NoError(t, idx.Insert(context.Background(), domain.IndexedItem{ID: "doc_a", Embedding: []float32{1, 0}}))

	fake.mu.Lock()
	defer fake.mu.Unlock()
	require.Contains(t, fake.collections, "pl_documents")
	assert.Equal(t, 2, fake.collections["pl_documents"].size)
	for _, k := range fake.apiKeys {
		assert.Equal(t, "secret", k)
	}
}

func TestQuery_TiesAcrossLimitKeepInsertionOrder(t *testing.T) {
	ctx := context.Background()
	_, srv := newFakeQdrant(t)
	idx, err := NewStore(Config{URL: srv.URL}).Collection(ctx, "c")
	require.NoError(t, err)

	for _, id := range []string{"first", "second", "third"} {
		require.NoError(t, idx.Insert(ctx, domain.IndexedItem{ID: id, Embedding: []float32{1, 0}, Content: id}))
	}
	require.NoError(t, idx.Insert(ctx, domain.IndexedItem{ID: "far", Embedding: []float32{0, 1}, Content: "far"}))

	hits, err := idx.Query(ctx, []float32{1, 0}, 2)
	require.NoError(t, err)
	require.Len(t, hits, 2)
	assert.Equal(t, "first", hits[0].ID)
	assert.Equal(t, "second", hits[1].ID)
}

func TestAll_Paginates(t *testing.T) {
	ctx := context.Background()
	_, srv := newFakeQdrant(t)
	idx, err := NewStore(Config{URL: srv.URL}).Collection(ctx, "c")
	require.NoError(t, err)
	for i := 0; i < scrollPage+3; i++ {
		require.NoError(t, idx.Insert(ctx, domain.IndexedItem{ID: "x", Embedding: []float32{1, float32(i)}, Metadata: domain.Metadata{"n": i}}))
	}

	all, err := idx.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, scrollPage+3)
}

func TestServerErrorIsStorageError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()
	idx, err := NewStore(Config{URL: srv.URL}).Collection(context.Background(), "c")
	require.NoError(t, err)

	_, err = idx.Query(context.Background(), []float32{1}, 1)
	assert.ErrorIs(t, err, domain.ErrIndexStorage)
	err = idx.Insert(context.Background(), domain.IndexedItem{ID: "a", Embedding: []float32{1}})
	assert.ErrorIs(t, err, domain.ErrIndexStorage)
}
