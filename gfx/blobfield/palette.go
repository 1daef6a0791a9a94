package blobfield

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"

	"github.com/hsluv/hsluv-go"
	colorful "github.com/lucasb-eyer/go-colorful"
)

// NeutralColor fills palette slots that have no configured colour.
var NeutralColor = colorful.Color{R: 1, G: 1, B: 1}

// namedColors are the platform system colours hosts usually configure by name.
var namedColors = map[string]string{
	"blue":   "#007AFF",
	"green":  "#34C759",
	"red":    "#FF3B30",
	"purple": "#AF52DE",
	"orange": "#FF9500",
	"yellow": "#FFCC00",
	"pink":   "#FF2D55",
	"teal":   "#30B0C7",
	"indigo": "#5856D6",
	"white":  "#FFFFFF",
	"black":  "#000000",
}

// ParseColor accepts a #rrggbb hex string or a named system colour.
func ParseColor(s string) (colorful.Color, error) {
	name := strings.ToLower(strings.TrimSpace(s))
	if hex, ok := namedColors[name]; ok {
		name = hex
	}
	c, err := colorful.Hex(name)
	if err != nil {
		return colorful.Color{}, fmt.Errorf("%w: color %q", ErrInvalidConfig, s)
	}
	return c, nil
}

func mustParseColor(s string) colorful.Color {
	c, err := ParseColor(s)
	if err != nil {
		panic(err)
	}
	return c
}

// Palette is the ordered list of blob colours. It may be shorter or longer
// than the blob count.
type Palette []colorful.Color

// Padded returns exactly n colours: the palette in order, then NeutralColor
// for any missing slot. Entries past n are dropped.
func (p Palette) Padded(n int) Palette {
	if n < 0 {
		n = 0
	}
	out := make(Palette, n)
	for i := range out {
		if i < len(p) {
			out[i] = p[i]
		} else {
			out[i] = NeutralColor
		}
	}
	return out
}

// Float32s flattens the palette to rgb triples for the colour uniform array.
func (p Palette) Float32s() []float32 {
	out := make([]float32, 0, 3*len(p))
	for _, c := range p {
		out = append(out, float32(c.R), float32(c.G), float32(c.B))
	}
	return out
}

// MarshalJSON writes the palette as hex strings.
func (p Palette) MarshalJSON() ([]byte, error) {
	hs := make([]string, len(p))
	for i, c := range p {
		hs[i] = c.Clamped().Hex()
	}
	return json.Marshal(hs)
}

// UnmarshalJSON reads hex strings or colour names.
func (p *Palette) UnmarshalJSON(data []byte) error {
	var hs []string
	if err := json.Unmarshal(data, &hs); err != nil {
		return err
	}
	pal := make(Palette, len(hs))
	for i, h := range hs {
		c, err := ParseColor(h)
		if err != nil {
			return err
		}
		pal[i] = c
	}
	*p = pal
	return nil
}

// Strings returns the palette as hex strings.
func (p Palette) Strings() []string {
	hs := make([]string, len(p))
	for i, c := range p {
		hs[i] = c.Clamped().Hex()
	}
	return hs
}

// HSLuvPalette generates n colours with evenly spaced hues in HSLuv space, so
// neighbouring blobs differ by the same perceived amount. Saturation and
// lightness are in [0,100].
func HSLuvPalette(n int, saturation, lightness float64) Palette {
	if n <= 0 {
		return Palette{}
	}
	p := make(Palette, n)
	for i := range p {
		hue := math.Mod(360*float64(i)/float64(n), 360)
		r, g, b := hsluv.HsluvToRGB(hue, saturation, lightness)
		p[i] = colorful.Color{R: r, G: g, B: b}.Clamped()
	}
	return p
}
