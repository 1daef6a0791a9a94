package barvis

import (
	"testing"
	"time"

	"github.com/peragwin/agentfx/agent"
	"github.com/stretchr/testify/assert"
)

func TestNewHighlight(t *testing.T) {
	assert.Equal(t, Highlight{1, 2, 3}, NewHighlight(3, 1, 2, 1))
	assert.Equal(t, Highlight{}, NewHighlight())

	h := NewHighlight(4, 0)
	assert.True(t, h.Contains(0))
	assert.True(t, h.Contains(4))
	assert.False(t, h.Contains(2))
	assert.False(t, Highlight{}.Contains(0))
}

func TestCadence(t *testing.T) {
	p := Properties{BarCount: 4}
	assert.Equal(t, VeryLongCadence, p.Cadence(agent.Idle))
	assert.Equal(t, VeryLongCadence, p.Cadence(agent.Speaking))
	assert.Equal(t, 500*time.Millisecond, p.Cadence(agent.Initializing))
	assert.Equal(t, 500*time.Millisecond, p.Cadence(agent.Listening))
	assert.Equal(t, 150*time.Millisecond, p.Cadence(agent.Thinking))
	assert.Equal(t, 400*time.Millisecond, Properties{BarCount: 5}.Cadence(agent.Initializing))
	assert.Equal(t, VeryLongCadence, p.Cadence(agent.State(99)))
}

func TestPatterns(t *testing.T) {
	four := Properties{BarCount: 4}
	five := Properties{BarCount: 5}

	assert.Equal(t, []Highlight{{}}, four.Pattern(agent.Idle))
	assert.Equal(t, []Highlight{{}}, four.Pattern(agent.State(-1)), "unknown states behave as idle")

	assert.Equal(t, []Highlight{{0, 1, 2, 3}}, four.Pattern(agent.Speaking))
	assert.Equal(t, []Highlight{{0, 1, 2, 3, 4}}, five.Pattern(agent.Speaking))

	assert.Equal(t, []Highlight{{1, 2}, {}}, four.Pattern(agent.Listening))
	assert.Equal(t, []Highlight{{2}, {}}, five.Pattern(agent.Listening))

	assert.Equal(t, []Highlight{{0, 3}, {1, 2}, {1, 2}, {0, 3}}, four.Pattern(agent.Initializing))
	assert.Equal(t, []Highlight{{0, 4}, {1, 3}, {2}, {1, 3}, {0, 4}}, five.Pattern(agent.Initializing))

	assert.Equal(t,
		[]Highlight{{0}, {1}, {2}, {3}, {3}, {2}, {1}, {0}},
		four.Pattern(agent.Thinking))
	assert.Len(t, five.Pattern(agent.Thinking), 10)
}

func TestPatternsNeverEmpty(t *testing.T) {
	for n := 1; n <= 9; n++ {
		p := Properties{BarCount: n}
		for _, s := range agent.States {
			seq := p.Pattern(s)
			assert.NotEmpty(t, seq, "n=%d %v", n, s)
			for _, h := range seq {
				for _, i := range h {
					assert.True(t, i >= 0 && i < n, "n=%d %v highlights %d", n, s, i)
				}
			}
		}
	}
}
