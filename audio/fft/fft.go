// Package fft turns sample frames into log power spectra.
package fft

import (
	"context"
	"fmt"
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"github.com/mjibson/go-dsp/window"
	"gonum.org/v1/gonum/floats"
)

// FFTProcessor windows frames of a fixed size with a Hann window and returns
// their log power spectrum.
type FFTProcessor struct {
	SampleRate float64
	Size       int

	window []float64
}

// NewFFTProcessor returns a processor for frames of size samples.
func NewFFTProcessor(sampleRate float64, size int) *FFTProcessor {
	return &FFTProcessor{
		SampleRate: sampleRate,
		Size:       size,
		window:     window.Hann(size),
	}
}

// Bins is the number of spectrum bins Spectrum returns.
func (f *FFTProcessor) Bins() int { return f.Size / 2 }

// BinHz is the width of one bin.
func (f *FFTProcessor) BinHz() float64 { return f.SampleRate / float64(f.Size) }

// Spectrum returns the log power of the lower half of frame's spectrum. frame
// is left untouched.
func (f *FFTProcessor) Spectrum(frame []float64) ([]float64, error) {
	if len(frame) != f.Size {
		return nil, fmt.Errorf("fft frame has %d samples, want %d", len(frame), f.Size)
	}
	fx := make([]float64, f.Size)
	floats.MulTo(fx, frame, f.window)
	return PowerSpectrum(fft.FFTReal(fx)), nil
}

// Process runs Spectrum over every frame from in. Frames of the wrong size
// are dropped.
func (f *FFTProcessor) Process(ctx context.Context, in <-chan []float64) <-chan []float64 {
	out := make(chan []float64)

	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case fx, ok := <-in:
				if !ok {
					return
				}
				px, err := f.Spectrum(fx)
				if err != nil {
					continue
				}
				select {
				case out <- px:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

// PowerSpectrum returns log(1 + |X|²/N) for the lower half of Fx.
func PowerSpectrum(Fx []complex128) []float64 {
	N := float64(len(Fx))
	Px := make([]float64, len(Fx)/2)
	for i := range Px {
		f := Fx[i]
		Px[i] = math.Log(1 + real(cmplx.Conj(f)*f)/N)
	}
	return Px
}
