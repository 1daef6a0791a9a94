package util

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Scale maps frequency in Hz to a perceptual axis and back.
type Scale interface {
	To(float64) float64
	From(float64) float64
}

type melScale struct{}

// MelScale spaces buckets by the mel scale.
var MelScale Scale = melScale{}

func (melScale) To(val float64) float64 {
	return 1127 * math.Log(1+val/700)
}

func (melScale) From(val float64) float64 {
	return 700 * (math.Exp(val/1127.0) - 1)
}

type logScale struct{}

// LogScale spaces buckets evenly in octaves.
var LogScale Scale = logScale{}

func (logScale) To(val float64) float64 {
	return math.Log2(val)
}

func (logScale) From(val float64) float64 {
	return math.Exp2(val)
}

// ErrBucketSize is returned for frames that do not match the bucketer.
var ErrBucketSize = errors.New("frame size does not match bucketer")

// Bucketer averages a half spectrum into N buckets spaced on a Scale.
type Bucketer struct {
	Buckets int
	Size    int
	Scale   Scale

	// Buckets+1 bin edges; bucket i spans [edges[i], edges[i+1])
	edges []int
}

// NewBucketer builds a bucketer for half spectra of size bins taken at
// sampleRate, covering fMin to fMax. Every bucket gets at least one bin.
func NewBucketer(scale Scale, buckets, size int, sampleRate, fMin, fMax float64) (*Bucketer, error) {
	if buckets < 1 || size < buckets {
		return nil, fmt.Errorf("cannot split %d bins into %d buckets", size, buckets)
	}
	if fMin <= 0 || fMax <= fMin {
		return nil, fmt.Errorf("invalid frequency range %g-%g Hz", fMin, fMax)
	}
	binHz := sampleRate / 2 / float64(size)
	sMin := scale.To(fMin)
	sMax := scale.To(fMax)
	space := (sMax - sMin) / float64(buckets)

	edges := make([]int, buckets+1)
	for i := range edges {
		f := scale.From(sMin + float64(i)*space)
		idx := int(math.Round(f / binHz))
		if i > 0 && idx <= edges[i-1] {
			idx = edges[i-1] + 1
		}
		edges[i] = idx
	}
	if edges[buckets] > size {
		return nil, fmt.Errorf("%d buckets from %g Hz need %d bins, have %d",
			buckets, fMin, edges[buckets], size)
	}
	return &Bucketer{
		Buckets: buckets,
		Size:    size,
		Scale:   scale,
		edges:   edges,
	}, nil
}

// Edges returns the bin edges of each bucket.
func (b *Bucketer) Edges() []int {
	return append([]int(nil), b.edges...)
}

// Bucket returns the mean of each bucket's bins.
func (b *Bucketer) Bucket(frame []float64) ([]float64, error) {
	if len(frame) != b.Size {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrBucketSize, len(frame), b.Size)
	}
	buckets := make([]float64, b.Buckets)
	for i := range buckets {
		start, stop := b.edges[i], b.edges[i+1]
		buckets[i] = floats.Sum(frame[start:stop]) / float64(stop-start)
	}
	return buckets, nil
}
