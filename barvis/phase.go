// Package barvis draws the audio bar visualizer and animates which bars are
// highlighted for each agent state.
package barvis

import (
	"sort"
	"time"

	"github.com/peragwin/agentfx/agent"
)

// VeryLongCadence stands in for "never advance" in states with a static
// highlight.
const VeryLongCadence = 1000 * time.Second

// Highlight is a sorted set of bar indices.
type Highlight []int

// NewHighlight builds a Highlight from indices in any order, dropping
// duplicates.
func NewHighlight(idx ...int) Highlight {
	h := append(Highlight{}, idx...)
	sort.Ints(h)
	out := h[:0]
	for i, v := range h {
		if i == 0 || v != h[i-1] {
			out = append(out, v)
		}
	}
	return out
}

// Contains reports whether bar i is highlighted.
func (h Highlight) Contains(i int) bool {
	j := sort.SearchInts(h, i)
	return j < len(h) && h[j] == i
}

// Properties holds the per-state animation table for a fixed bar count.
type Properties struct {
	BarCount int
}

// Cadence is how long each phase of s lasts.
func (p Properties) Cadence(s agent.State) time.Duration {
	switch s {
	case agent.Initializing:
		return time.Duration(2 * float64(time.Second) / float64(p.BarCount))
	case agent.Listening:
		return 500 * time.Millisecond
	case agent.Thinking:
		return 150 * time.Millisecond
	case agent.Speaking:
		return VeryLongCadence
	default:
		return VeryLongCadence
	}
}

// Pattern is the cyclic highlight sequence for s. It is never empty.
func (p Properties) Pattern(s agent.State) []Highlight {
	n := p.BarCount
	switch s {
	case agent.Initializing:
		seq := make([]Highlight, n)
		for i := range seq {
			seq[i] = NewHighlight(i, n-1-i)
		}
		return seq
	case agent.Listening:
		if n%2 == 0 {
			return []Highlight{NewHighlight(n/2-1, n/2), {}}
		}
		return []Highlight{NewHighlight(n / 2), {}}
	case agent.Thinking:
		seq := make([]Highlight, 0, 2*n)
		for i := 0; i < n; i++ {
			seq = append(seq, NewHighlight(i))
		}
		for i := n - 1; i >= 0; i-- {
			seq = append(seq, NewHighlight(i))
		}
		return seq
	case agent.Speaking:
		all := make(Highlight, n)
		for i := range all {
			all[i] = i
		}
		return []Highlight{all}
	default:
		return []Highlight{{}}
	}
}
