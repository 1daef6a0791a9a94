package barvis

import (
	colorful "github.com/lucasb-eyer/go-colorful"
)

// GradientStop is one keypoint of a Gradient. Pos lives in [0,1].
type GradientStop struct {
	Col colorful.Color
	Pos float64
}

// Gradient colours bars by amplitude. Stops must be sorted by Pos.
type Gradient []GradientStop

// At returns the HCL blend between the two stops around t.
func (g Gradient) At(t float64) colorful.Color {
	if len(g) == 0 {
		return colorful.Color{R: 1, G: 1, B: 1}
	}
	if t <= g[0].Pos {
		return g[0].Col
	}
	if last := g[len(g)-1]; t >= last.Pos {
		return last.Col
	}
	for i := 0; i < len(g)-1; i++ {
		c1 := g[i]
		c2 := g[i+1]
		if t == c1.Pos {
			return c1.Col
		}
		if c1.Pos < t && t < c2.Pos {
			t := (t - c1.Pos) / (c2.Pos - c1.Pos)
			return c1.Col.BlendHcl(c2.Col, t).Clamped()
		}
	}
	return g[len(g)-1].Col
}

// NewGradient spreads colors evenly over [0,1].
func NewGradient(colors ...colorful.Color) Gradient {
	g := make(Gradient, len(colors))
	for i, c := range colors {
		pos := 0.0
		if len(colors) > 1 {
			pos = float64(i) / float64(len(colors)-1)
		}
		g[i] = GradientStop{Col: c, Pos: pos}
	}
	return g
}
