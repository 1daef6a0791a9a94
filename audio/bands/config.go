package bands

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned for sampler configs that cannot run.
var ErrInvalidConfig = errors.New("invalid band sampler config")

// Config holds the band sampler parameters.
type Config struct {
	Bands  int
	Layout Layout

	// SampleRate and FrameSize describe the sample frames given to
	// ProcessSamples; spectra handed to ProcessSpectrum have FrameSize/2 bins.
	SampleRate float64
	FrameSize  int
	MinFreq    float64
	MaxFreq    float64

	// Floor and Ceiling map mean log power onto [0,1].
	Floor   float64
	Ceiling float64

	// Attack and Release weight the new value when a band rises or falls.
	Attack  float64
	Release float64

	// Decay multiplies every band per refresh tick while no audio arrives.
	Decay       float64
	RefreshRate float64

	PreGain bool
}

// DefaultConfig returns the config for n bands.
func DefaultConfig(n int) Config {
	return Config{
		Bands:       n,
		Layout:      Centered,
		SampleRate:  44100,
		FrameSize:   1024,
		MinFreq:     32,
		MaxFreq:     16000,
		Floor:       0,
		Ceiling:     4,
		Attack:      0.6,
		Release:     0.25,
		Decay:       0.8,
		RefreshRate: 60,
		PreGain:     true,
	}
}

// Validate checks the config.
func (c Config) Validate() error {
	switch {
	case c.Bands < 1:
		return fmt.Errorf("%w: need at least one band", ErrInvalidConfig)
	case c.FrameSize < 2*c.Bands:
		return fmt.Errorf("%w: frame size %d too small for %d bands", ErrInvalidConfig, c.FrameSize, c.Bands)
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %g", ErrInvalidConfig, c.SampleRate)
	case c.MaxFreq > c.SampleRate/2:
		return fmt.Errorf("%w: max frequency %g above nyquist", ErrInvalidConfig, c.MaxFreq)
	case c.Ceiling <= c.Floor:
		return fmt.Errorf("%w: ceiling %g not above floor %g", ErrInvalidConfig, c.Ceiling, c.Floor)
	case c.Attack <= 0 || c.Attack > 1, c.Release <= 0 || c.Release > 1:
		return fmt.Errorf("%w: smoothing weights must be in (0, 1]", ErrInvalidConfig)
	case c.Decay <= 0 || c.Decay >= 1:
		return fmt.Errorf("%w: decay %g not in (0, 1)", ErrInvalidConfig, c.Decay)
	case c.RefreshRate < 30:
		return fmt.Errorf("%w: refresh rate %g below 30 Hz", ErrInvalidConfig, c.RefreshRate)
	}
	return nil
}

// Period is the time between refresh ticks.
func (c Config) Period() time.Duration {
	return time.Duration(float64(time.Second) / c.RefreshRate)
}
