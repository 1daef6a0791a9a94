package blobfield

import (
	"github.com/chewxy/math32"
	ml "github.com/go-gl/mathgl/mgl32"
)

// minWeight keeps the blend denominator away from zero where no blob reaches.
const minWeight = 1e-4

// whiteMix is how far every pixel is pulled toward white.
const whiteMix = 0.01

var white = ml.Vec3{1, 1, 1}

func fract(x float32) float32 { return x - math32.Floor(x) }

// Hash22 maps a 2D point to a pseudo-random point in [0,1)².
func Hash22(p ml.Vec2) ml.Vec2 {
	p = ml.Vec2{fract(p[0] * 5.3983), fract(p[1] * 5.4427)}
	d := p.Dot(ml.Vec2{p[1] + 19.19, p[0] + 19.19})
	p = ml.Vec2{p[0] + d, p[1] + d}
	return ml.Vec2{fract(p[0] * p[1]), fract(p[0] + p[1])}
}

// BlobCenter returns the centre of blob i at time t in normalized [-1,1]
// space. The first four blobs sit fixed near the corners; the rest drift
// slowly around a hashed anchor.
func BlobCenter(i int, t float32) ml.Vec2 {
	if i < 4 {
		c := ml.Vec2{-0.9, 0.9}
		if i&1 != 0 {
			c[0] = 0.9
		}
		if i&2 != 0 {
			c[1] = -0.9
		}
		return c
	}
	h := Hash22(ml.Vec2{float32(i), 42})
	a := 6.2831 * h[0]
	drift := ml.Vec2{math32.Sin(t*0.55 + a), math32.Cos(t*0.44 + a*1.3)}.Mul(0.12)
	return ml.Vec2{h[0]*1.8 - 0.9, h[1]*1.8 - 0.9}.Add(drift)
}

// Warp displaces p by three layered sinusoidal fields.
func Warp(p ml.Vec2, u Uniforms) ml.Vec2 {
	t := u.Time
	x, y := p[0], p[1]
	w1 := ml.Vec2{math32.Sin(y*2 + t*0.65), math32.Cos(x*2 - t*0.48)}.Mul(u.Warp1)
	w2 := ml.Vec2{math32.Cos(y*3.3 - t*0.45), math32.Sin(x*3.3 + t*0.38)}.Mul(u.Warp2)
	w3 := ml.Vec2{math32.Sin((x+y)*2.4 + t*0.55), math32.Cos((x-y)*2.4 - t*0.43)}.Mul(u.Warp3)
	return p.Add(w1).Add(w2).Add(w3)
}

// paletteColor reads colour i from a flattened rgb palette, wrapping around
// a short palette. An empty palette reads as white.
func paletteColor(palette []float32, i int) ml.Vec3 {
	n := len(palette) / 3
	if n == 0 {
		return white
	}
	j := 3 * (i % n)
	return ml.Vec3{palette[j], palette[j+1], palette[j+2]}
}

// Evaluate computes the colour at uv in [0,1]² with the same arithmetic as
// the fragment shader. palette is the flattened, padded colour array.
func Evaluate(uv ml.Vec2, u Uniforms, palette []float32) ml.Vec4 {
	p := uv.Mul(2).Sub(ml.Vec2{1, 1})
	warped := Warp(p, u)

	var weightSum float32
	var colorSum ml.Vec3
	for i := 0; i < int(u.BlobCount); i++ {
		d := warped.Sub(BlobCenter(i, u.Time))
		w := math32.Exp(-d.LenSqr() * u.Tightness)
		w = math32.Pow(w, u.Sharpness)
		weightSum += w
		colorSum = colorSum.Add(paletteColor(palette, i).Mul(w))
	}

	rgb := colorSum.Mul(1 / math32.Max(weightSum, minWeight))
	rgb = rgb.Mul(1 - whiteMix).Add(white.Mul(whiteMix))
	return rgb.Vec4(1)
}
