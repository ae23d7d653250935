package app

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperlens/internal/config"
	"paperlens/internal/testutil"
)

func testConfig(t *testing.T) *config.AppConfig {
	t.Helper()
	dir := t.TempDir()
	cfg := config.Default()
	cfg.Library.DocumentRoot = filepath.Join(dir, "documents")
	cfg.VectorStore.SQLite.Path = filepath.Join(dir, "vectors.db")
	return cfg
}

func TestNew_PersistsAcrossInstances(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig(t)
	paper := filepath.Join(t.TempDir(), "attention.pdf")
	testutil.WritePDF(t, paper, "Transformers use self-attention")

	a, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	_, err = a.Papers.Add(ctx, paper, []string{"NLP"})
	require.NoError(t, err)
	require.NoError(t, a.Close())

	b, err := New(ctx, cfg, nil)
	require.NoError(t, err)
	defer b.Close()

	results, err := b.Papers.Search(ctx, "self-attention mechanism", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "attention.pdf", results[0].FileName)
	assert.Equal(t, "NLP", results[0].Topics)
	assert.FileExists(t, filepath.Join(cfg.Library.DocumentRoot, "NLP", "attention.pdf"))

	images, err := b.Images.Search(ctx, "sunset", 5)
	require.NoError(t, err)
	assert.Empty(t, images)
}

func TestNew_RejectsUnknownComponents(t *testing.T) {
	cfg := testConfig(t)
	cfg.Embedder.Text.Type = "bert"
	_, err := New(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "text embedder")

	cfg = testConfig(t)
	cfg.VectorStore.Type = "faiss"
	_, err = New(context.Background(), cfg, nil)
	assert.ErrorContains(t, err, "vector store")
}
