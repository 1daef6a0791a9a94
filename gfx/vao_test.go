package gfx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestVAOConfigValidate(t *testing.T) {
	quad := []float32{-1, 1, -1, -1, 1, 1, 1, -1}

	cases := []struct {
		name string
		cfg  VAOConfig
		ok   bool
	}{
		{"position only quad", VAOConfig{Vertices: quad, Size: 2, Stride: 2}, true},
		{"zero size", VAOConfig{Vertices: quad, Size: 0, Stride: 2}, false},
		{"stride below size", VAOConfig{Vertices: quad, Size: 3, Stride: 2}, false},
		{"ragged", VAOConfig{Vertices: quad[:7], Size: 2, Stride: 2}, false},
		{"empty", VAOConfig{Size: 2, Stride: 2}, false},
		{"tex without room", VAOConfig{Vertices: quad, Size: 2, Stride: 2, TexAttr: "tex"}, false},
		{"tex", VAOConfig{Vertices: append(quad, quad...), Size: 2, Stride: 4, TexAttr: "tex"}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := c.cfg.validate()
			if c.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestVAOVertexCount(t *testing.T) {
	cfg := VAOConfig{Vertices: []float32{-1, 1, -1, -1, 1, 1, 1, -1}, Size: 2, Stride: 2}
	assert.EqualValues(t, 4, cfg.VertexCount())
}
