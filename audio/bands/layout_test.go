package bands

import (
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCenteredIndex(t *testing.T) {
	idx := func(n int) []int {
		out := make([]int, n)
		for k := range out {
			out[k] = Centered.Index(k, n)
		}
		return out
	}
	assert.Equal(t, []int{2, 3, 1, 4, 0}, idx(5))
	assert.Equal(t, []int{1, 2, 0, 3}, idx(4))
	assert.Equal(t, []int{0}, idx(1))
}

func TestLayoutIsPermutation(t *testing.T) {
	for _, l := range []Layout{LeftAligned, Centered} {
		for n := 1; n <= 12; n++ {
			seen := make([]bool, n)
			for k := 0; k < n; k++ {
				i := l.Index(k, n)
				if assert.True(t, i >= 0 && i < n, "%v n=%d k=%d -> %d", l, n, k, i) {
					assert.False(t, seen[i], "%v n=%d index %d reused", l, n, i)
					seen[i] = true
				}
			}
		}
	}
}

func TestArrangeKeepsAmplitudes(t *testing.T) {
	spectral := []float64{0.9, 0.7, 0.5, 0.3, 0.1}
	assert.Equal(t, spectral, LeftAligned.Arrange(spectral))

	got := Centered.Arrange(spectral)
	assert.Equal(t, []float64{0.1, 0.5, 0.9, 0.7, 0.3}, got)

	sorted := append([]float64(nil), got...)
	sort.Float64s(sorted)
	assert.Equal(t, []float64{0.1, 0.3, 0.5, 0.7, 0.9}, sorted)
}
