// Package vecmath holds the brute-force distance and ranking helpers shared
// by the local vector stores.
package vecmath

import (
	"math"
	"sort"
)

// CosineDistance returns 1 - cos(a, b). A zero vector is treated as
// orthogonal to everything, giving distance 1.
func CosineDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		x, y := float64(a[i]), float64(b[i])
		dot += x * y
		na += x * x
		nb += y * y
	}
	if na == 0 || nb == 0 {
		return 1
	}
	d := 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
	if d < 0 {
		d = 0
	}
	return d
}

// Rank returns the indexes of distances in ascending order, keeping the
// original order for equal values, truncated to k.
func Rank(distances []float64, k int) []int {
	if k <= 0 {
		return nil
	}
	idxs := make([]int, len(distances))
	for i := range idxs {
		idxs[i] = i
	}
	sort.SliceStable(idxs, func(i, j int) bool {
		return distances[idxs[i]] < distances[idxs[j]]
	})
	if k < len(idxs) {
		idxs = idxs[:k]
	}
	return idxs
}
