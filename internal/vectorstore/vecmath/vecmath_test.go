package vecmath

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCosineDistance(t *testing.T) {
	assert.InDelta(t, 0, CosineDistance([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 1, CosineDistance([]float32{1, 0}, []float32{0, 3}), 1e-9)
	assert.InDelta(t, 2, CosineDistance([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 1.0, CosineDistance([]float32{0, 0}, []float32{1, 0}))
}

func TestRank_StableAndTruncated(t *testing.T) {
	d := []float64{0.5, 0.1, 0.5, 0.1, 0.9}

	assert.Equal(t, []int{1, 3, 0, 2, 4}, Rank(d, 10))
	assert.Equal(t, []int{1, 3}, Rank(d, 2))
	assert.Empty(t, Rank(d, 0))
	assert.Empty(t, Rank(nil, 3))
}
