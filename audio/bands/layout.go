package bands

import "fmt"

// Layout decides which display position each spectral band occupies.
type Layout int

// Layouts
const (
	// LeftAligned puts the lowest band on the left.
	LeftAligned Layout = iota
	// Centered puts the lowest band in the middle and alternates higher
	// bands to the right and left of it.
	Centered
)

func (l Layout) String() string {
	switch l {
	case LeftAligned:
		return "left"
	case Centered:
		return "centered"
	default:
		return fmt.Sprintf("layout(%d)", int(l))
	}
}

// Index returns the display index of spectral band k out of n. For every
// layout it is a permutation of [0, n).
func (l Layout) Index(k, n int) int {
	switch l {
	case Centered:
		c := (n - 1) / 2
		if k%2 == 1 {
			return c + (k+1)/2
		}
		return c - k/2
	default:
		return k
	}
}

// Arrange reorders spectral bands into display order.
func (l Layout) Arrange(spectral []float64) []float64 {
	n := len(spectral)
	out := make([]float64, n)
	for k, v := range spectral {
		out[l.Index(k, n)] = v
	}
	return out
}
