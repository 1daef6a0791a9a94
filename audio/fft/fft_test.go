package fft

import (
	"context"
	"math"
	"testing"

	"github.com/peragwin/agentfx/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
)

func TestMain(m *testing.M) {
	testutil.VerifyTestMain(m)
}

func tone(n int, hz, fs float64) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = math.Sin(2 * math.Pi * hz * float64(i) / fs)
	}
	return x
}

func TestSpectrumPeak(t *testing.T) {
	f := NewFFTProcessor(44100, 1024)
	require.Equal(t, 512, f.Bins())

	// put the tone exactly on bin 40
	hz := 40 * f.BinHz()
	frame := tone(1024, hz, 44100)
	orig := append([]float64(nil), frame...)

	px, err := f.Spectrum(frame)
	require.NoError(t, err)
	require.Len(t, px, 512)
	assert.Equal(t, 40, floats.MaxIdx(px))
	assert.Equal(t, orig, frame, "input frame must not be windowed in place")

	for _, v := range px {
		assert.GreaterOrEqual(t, v, 0.0)
	}
}

func TestSpectrumSilence(t *testing.T) {
	f := NewFFTProcessor(44100, 256)
	px, err := f.Spectrum(make([]float64, 256))
	require.NoError(t, err)
	assert.Equal(t, 0.0, floats.Max(px))

	_, err = f.Spectrum(make([]float64, 100))
	assert.Error(t, err)
}

func TestProcess(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	f := NewFFTProcessor(8000, 64)
	in := make(chan []float64)
	out := f.Process(ctx, in)

	go func() {
		in <- make([]float64, 10) // dropped
		in <- tone(64, 8*f.BinHz(), 8000)
		close(in)
	}()

	px := <-out
	assert.Equal(t, 8, floats.MaxIdx(px))
	_, ok := <-out
	assert.False(t, ok)
}
