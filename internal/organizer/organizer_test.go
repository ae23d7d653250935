package organizer

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperlens/internal/domain"
)

func TestClassify(t *testing.T) {
	text := "We study Graph Neural Networks for molecule property prediction."

	tests := []struct {
		name   string
		topics []string
		want   []string
	}{
		{"case insensitive match", []string{"vision", "graph neural"}, []string{"graph neural"}},
		{"several matches keep order", []string{"molecule", "GRAPH"}, []string{"molecule", "GRAPH"}},
		{"fallback to first topic", []string{"robotics", "audio"}, []string{"robotics"}},
		{"labels are trimmed", []string{"  graph  ", ""}, []string{"graph"}},
		{"empty list", nil, nil},
		{"blank list", []string{" ", ""}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.topics, text)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, Normalize([]string{" a", "b ", "a", ""}))
}

func writeSource(t *testing.T, dir string) string {
	t.Helper()
	path := filepath.Join(dir, "paper.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 fake"), 0o640))
	old := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	require.NoError(t, os.Chtimes(path, old, old))
	return path
}

func TestPlace_CopiesIntoEveryMatchedTopic(t *testing.T) {
	src := writeSource(t, t.TempDir())
	root := filepath.Join(t.TempDir(), "documents")
	o := New(root, nil)

	matched, err := o.Place(context.Background(), src, []string{"transformers", "attention", "robotics"}, "Attention in Transformers")
	require.NoError(t, err)
	assert.Equal(t, []string{"transformers", "attention"}, matched)

	srcInfo, err := os.Stat(src)
	require.NoError(t, err)
	for _, topic := range matched {
		dst := filepath.Join(root, topic, "paper.pdf")
		data, err := os.ReadFile(dst)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4 fake", string(data))

		info, err := os.Stat(dst)
		require.NoError(t, err)
		assert.Equal(t, srcInfo.Mode().Perm(), info.Mode().Perm())
		assert.True(t, srcInfo.ModTime().Equal(info.ModTime()))
	}
	assert.NoDirExists(t, filepath.Join(root, "robotics"))
	assert.FileExists(t, src, "source must be copied, not moved")
}

func TestPlace_FallbackAndRepeat(t *testing.T) {
	src := writeSource(t, t.TempDir())
	root := t.TempDir()
	o := New(root, nil)

	for i := 0; i < 2; i++ {
		matched, err := o.Place(context.Background(), src, []string{"misc", "physics"}, "nothing relevant")
		require.NoError(t, err)
		assert.Equal(t, []string{"misc"}, matched)
	}
	assert.FileExists(t, filepath.Join(root, "misc", "paper.pdf"))
}

func TestPlace_SamePathIsSkipped(t *testing.T) {
	root := t.TempDir()
	dir := filepath.Join(root, "ml")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	src := writeSource(t, dir)

	matched, err := New(root, nil).Place(context.Background(), src, []string{"ml"}, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"ml"}, matched)

	data, err := os.ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, "%PDF-1.4 fake", string(data))
}

func TestPlace_SameFileThroughLinksIsSkipped(t *testing.T) {
	t.Run("symlinked root", func(t *testing.T) {
		lib := t.TempDir()
		dir := filepath.Join(lib, "CV")
		require.NoError(t, os.MkdirAll(dir, 0o755))
		src := writeSource(t, dir)
		root := filepath.Join(t.TempDir(), "link")
		require.NoError(t, os.Symlink(lib, root))

		matched, err := New(root, nil).Place(context.Background(), src, []string{"CV"}, "cv paper")
		require.NoError(t, err)
		assert.Equal(t, []string{"CV"}, matched)

		data, err := os.ReadFile(src)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4 fake", string(data))
	})

	t.Run("hard link", func(t *testing.T) {
		src := writeSource(t, t.TempDir())
		root := t.TempDir()
		require.NoError(t, os.MkdirAll(filepath.Join(root, "ml"), 0o755))
		require.NoError(t, os.Link(src, filepath.Join(root, "ml", "paper.pdf")))

		_, err := New(root, nil).Place(context.Background(), src, []string{"ml"}, "")
		require.NoError(t, err)

		data, err := os.ReadFile(src)
		require.NoError(t, err)
		assert.Equal(t, "%PDF-1.4 fake", string(data))
	})
}

func TestPlace_TopicCannotEscapeRoot(t *testing.T) {
	src := writeSource(t, t.TempDir())
	root := t.TempDir()

	_, err := New(root, nil).Place(context.Background(), src, []string{"../outside"}, "")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(root, ".._outside", "paper.pdf"))
}

func TestPlace_Errors(t *testing.T) {
	src := writeSource(t, t.TempDir())

	_, err := New(t.TempDir(), nil).Place(context.Background(), src, []string{" "}, "text")
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	// A regular file where the root directory should be.
	blocker := filepath.Join(t.TempDir(), "file")
	require.NoError(t, os.WriteFile(blocker, nil, 0o644))
	_, err = New(blocker, nil).Place(context.Background(), src, []string{"topic"}, "text")
	assert.ErrorIs(t, err, domain.ErrClassificationIO)

	_, err = New(t.TempDir(), nil).Place(context.Background(), filepath.Join(t.TempDir(), "gone.pdf"), []string{"topic"}, "")
	assert.ErrorIs(t, err, domain.ErrClassificationIO)
}
