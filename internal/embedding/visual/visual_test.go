package visual

import (
	"context"
	"image"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paperlens/internal/domain"
	"paperlens/internal/testutil"
)

func solid(w, h int, c color.Color) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, c)
		}
	}
	return img
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}

func TestDescribe_SolidColours(t *testing.T) {
	red := Describe(solid(40, 20, color.RGBA{R: 230, G: 10, B: 10, A: 255}))
	assert.Contains(t, red, "red")
	assert.Contains(t, red, "colorful")
	assert.Contains(t, red, "landscape")

	night := Describe(solid(10, 30, color.Black))
	assert.Contains(t, night, "black")
	assert.Contains(t, night, "dark")
	assert.Contains(t, night, "portrait")

	snow := Describe(solid(16, 16, color.White))
	assert.Contains(t, snow, "white")
	assert.Contains(t, snow, "bright")
	assert.Contains(t, snow, "muted")
	assert.Contains(t, snow, "square")
}

func TestDescribe_EmptyImage(t *testing.T) {
	assert.Empty(t, Describe(image.NewRGBA(image.Rect(0, 0, 0, 0))))
}

func TestEmbedder_ImageRoundTripIsDeterministic(t *testing.T) {
	e := NewEmbedder(0)
	img := solid(32, 32, color.RGBA{R: 20, G: 40, B: 220, A: 255})

	a, err := e.EmbedImage(context.Background(), img)
	require.NoError(t, err)
	b, err := e.EmbedImage(context.Background(), img)
	require.NoError(t, err)

	assert.Equal(t, a, b)
	assert.InDelta(t, 1.0, cosine(a, b), 1e-6)
}

func TestEmbedder_TextFindsMatchingColour(t *testing.T) {
	e := NewEmbedder(0)
	ctx := context.Background()

	redImg, err := e.EmbedImage(ctx, solid(40, 20, color.RGBA{R: 230, G: 10, B: 10, A: 255}))
	require.NoError(t, err)
	blueImg, err := e.EmbedImage(ctx, solid(40, 20, color.RGBA{R: 10, G: 10, B: 230, A: 255}))
	require.NoError(t, err)

	q, err := e.Embed(ctx, "a red car")
	require.NoError(t, err)
	assert.Greater(t, cosine(q, redImg), cosine(q, blueImg))

	q, err = e.Embed(ctx, "ocean")
	require.NoError(t, err)
	assert.Greater(t, cosine(q, blueImg), cosine(q, redImg))
}

func TestEmbedder_RejectsEmptyInput(t *testing.T) {
	e := NewEmbedder(0)

	_, err := e.EmbedImage(context.Background(), nil)
	assert.ErrorIs(t, err, domain.ErrEmbedding)

	_, err = e.EmbedImage(context.Background(), image.NewRGBA(image.Rect(0, 0, 0, 0)))
	assert.ErrorIs(t, err, domain.ErrEmbedding)

	_, err = e.Embed(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrEmbedding)
}

func TestExpand(t *testing.T) {
	assert.Equal(t, "Sunset over hills orange red pink", Expand("Sunset over hills"))
	assert.Equal(t, "海边的日落 orange red pink blue cyan", Expand("海边的日落"))
	assert.Equal(t, "a cat", Expand("a cat"))
}

func TestSupported(t *testing.T) {
	for _, p := range []string{"a.jpg", "b.JPEG", "c.Png", "d.bmp", "e.gif", "f.webp"} {
		assert.True(t, Supported(p), p)
	}
	for _, p := range []string{"file.txt", "x.pdf", "noext", "x.tiff"} {
		assert.False(t, Supported(p), p)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "green.png")
	testutil.WritePNG(t, path, color.RGBA{G: 200, A: 255}, 8, 4)

	img, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Contains(t, Describe(img), "green")

	_, err = Load(filepath.Join(dir, "missing.png"))
	assert.ErrorIs(t, err, domain.ErrNotFound)

	bad := filepath.Join(dir, "bad.png")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o644))
	_, err = Load(bad)
	assert.ErrorIs(t, err, domain.ErrExtraction)
}
