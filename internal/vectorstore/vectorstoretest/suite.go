// Package vectorstoretest is a behavioural test suite shared by every
// domain.VectorIndex implementation.
package vectorstoretest

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperlens/internal/domain"
)

// Harness opens an empty collection for one subtest. Reopen, when non-nil,
// returns the same collection through a fresh handle on the same backing store.
type Harness func(t *testing.T) (idx domain.VectorIndex, reopen func() domain.VectorIndex)

// Run executes the suite.
func Run(t *testing.T, open Harness) {
	t.Run("EmptyCollection", func(t *testing.T) { testEmpty(t, open) })
	t.Run("RoundTrip", func(t *testing.T) { testRoundTrip(t, open) })
	t.Run("OrderedByDistance", func(t *testing.T) { testOrdering(t, open) })
	t.Run("TiesKeepInsertionOrder", func(t *testing.T) { testTies(t, open) })
	t.Run("KBound", func(t *testing.T) { testKBound(t, open) })
	t.Run("AllReadsOwnWrites", func(t *testing.T) { testAll(t, open) })
	t.Run("DuplicateIDs", func(t *testing.T) { testDuplicates(t, open) })
	t.Run("DimensionMismatch", func(t *testing.T) { testDimension(t, open) })
	t.Run("Persistence", func(t *testing.T) { testPersistence(t, open) })
}

func item(id string, vec ...float32) domain.IndexedItem {
	return domain.IndexedItem{
		ID:        id,
		Embedding: vec,
		Content:   "content of " + id,
		Metadata: domain.Metadata{
			domain.MetaFilePath: "/library/" + id + ".pdf",
			domain.MetaFileName: id + ".pdf",
			domain.MetaFileSize: int64(len(id) * 100),
		},
	}
}

func ids(hits []domain.Hit) []string {
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = h.ID
	}
	return out
}

func testEmpty(t *testing.T, open Harness) {
	ctx := context.Background()
	idx, _ := open(t)

	hits, err := idx.Query(ctx, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Empty(t, hits)

	all, err := idx.All(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func testRoundTrip(t *testing.T, open Harness) {
	ctx := context.Background()
	idx, _ := open(t)
	require.NoError(t, idx.Insert(ctx, item("alpha", 0.6, 0.8, 0)))

	hits, err := idx.Query(ctx, []float32{0.6, 0.8, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)

	h := hits[0]
	assert.Equal(t, "alpha", h.ID)
	assert.Equal(t, "content of alpha", h.Content)
	assert.InDelta(t, 0, h.Distance, 1e-5)
	assert.Equal(t, "/library/alpha.pdf", h.Metadata.String(domain.MetaFilePath))
	assert.Equal(t, "alpha.pdf", h.Metadata.String(domain.MetaFileName))
	assert.Equal(t, int64(500), h.Metadata.Int64(domain.MetaFileSize))
}

func testOrdering(t *testing.T, open Harness) {
	ctx := context.Background()
	idx, _ := open(t)
	require.NoError(t, idx.Insert(ctx, item("far", 0, 1, 0)))
	require.NoError(t, idx.Insert(ctx, item("near", 1, 0, 0)))
	require.NoError(t, idx.Insert(ctx, item("mid", 0.8, 0.6, 0)))

	hits, err := idx.Query(ctx, []float32{1, 0, 0}, 3)
	require.NoError(t, err)

	assert.Equal(t, []string{"near", "mid", "far"}, ids(hits))
	for i := 1; i < len(hits); i++ {
		assert.LessOrEqual(t, hits[i-1].Distance, hits[i].Distance)
	}
	assert.InDelta(t, 0.2, hits[1].Distance, 1e-5)
	assert.InDelta(t, 1.0, hits[2].Distance, 1e-5)
}

func testTies(t *testing.T, open Harness) {
	ctx := context.Background()
	idx, _ := open(t)
	for _, id := range []string{"t1", "t2", "t3"} {
		require.NoError(t, idx.Insert(ctx, item(id, 0, 0, 1)))
	}
	require.NoError(t, idx.Insert(ctx, item("best", 1, 0, 0)))

	hits, err := idx.Query(ctx, []float32{1, 0, 0}, 4)
	require.NoError(t, err)

	assert.Equal(t, []string{"best", "t1", "t2", "t3"}, ids(hits))
}

func testKBound(t *testing.T, open Harness) {
	ctx := context.Background()
	idx, _ := open(t)
	for i := 0; i < 5; i++ {
		require.NoError(t, idx.Insert(ctx, item(fmt.Sprintf("k%d", i), 1, float32(i), 0)))
	}

	hits, err := idx.Query(ctx, []float32{1, 0, 0}, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"k0", "k1"}, ids(hits))

	hits, err = idx.Query(ctx, []float32{1, 0, 0}, 50)
	require.NoError(t, err)
	assert.Len(t, hits, 5)
}

func testAll(t *testing.T, open Harness) {
	ctx := context.Background()
	idx, _ := open(t)
	require.NoError(t, idx.Insert(ctx, item("a", 1, 0, 0)))
	require.NoError(t, idx.Insert(ctx, item("b", 0, 1, 0)))

	all, err := idx.All(ctx)
	require.NoError(t, err)

	var paths []string
	for _, m := range all {
		paths = append(paths, m.String(domain.MetaFilePath))
	}
	assert.ElementsMatch(t, []string{"/library/a.pdf", "/library/b.pdf"}, paths)
}

func testDuplicates(t *testing.T, open Harness) {
	ctx := context.Background()
	idx, _ := open(t)
	require.NoError(t, idx.Insert(ctx, item("same", 1, 0, 0)))
	require.NoError(t, idx.Insert(ctx, item("same", 1, 0, 0)))

	all, err := idx.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	hits, err := idx.Query(ctx, []float32{1, 0, 0}, 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"same", "same"}, ids(hits))
}

func testDimension(t *testing.T, open Harness) {
	ctx := context.Background()
	idx, _ := open(t)
	require.NoError(t, idx.Insert(ctx, item("three", 1, 0, 0)))

	err := idx.Insert(ctx, item("two", 1, 0))
	assert.ErrorIs(t, err, domain.ErrIndexStorage)

	all, err := idx.All(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func testPersistence(t *testing.T, open Harness) {
	ctx := context.Background()
	idx, reopen := open(t)
	if reopen == nil {
		t.Skip("store is not persistent")
	}
	require.NoError(t, idx.Insert(ctx, item("kept", 0, 1, 0)))

	again := reopen()
	hits, err := again.Query(ctx, []float32{0, 1, 0}, 1)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, "kept", hits[0].ID)
	assert.Equal(t, "kept.pdf", hits[0].Metadata.String(domain.MetaFileName))
}
