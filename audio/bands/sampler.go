// Package bands reduces live audio to a small array of normalized frequency
// band levels for the bar visualizer.
package bands

import (
	"context"
	"sync"
	"time"

	"github.com/golang/glog"
	"github.com/peragwin/agentfx/audio/fft"
	"github.com/peragwin/agentfx/audio/util"
	"gonum.org/v1/gonum/floats"
)

// silence is the level below which a decaying band snaps to zero.
const silence = 1e-3

// Option configures a Sampler.
type Option func(*Sampler)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Sampler) { s.now = now }
}

// WithTicker replaces the refresh ticker. The returned func stops it.
func WithTicker(newTicker func(time.Duration) (<-chan time.Time, func())) Option {
	return func(s *Sampler) { s.newTicker = newTicker }
}

// Sampler keeps Bands() up to date from whatever audio track is attached.
// Without a track, or when the track stalls, bands decay smoothly to zero.
type Sampler struct {
	cfg       Config
	bucketer  *util.Bucketer
	fft       *fft.FFTProcessor
	pregain   *util.PreGain
	now       func() time.Time
	newTicker func(time.Duration) (<-chan time.Time, func())

	mu        sync.RWMutex
	bands     []float64 // spectral order
	lastFrame time.Time

	trackMu sync.Mutex
	track   <-chan []float64
	changed chan struct{}
}

// NewSampler validates cfg and returns an idle sampler.
func NewSampler(cfg Config, opts ...Option) (*Sampler, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	proc := fft.NewFFTProcessor(cfg.SampleRate, cfg.FrameSize)
	b, err := util.NewBucketer(util.LogScale, cfg.Bands, proc.Bins(), cfg.SampleRate, cfg.MinFreq, cfg.MaxFreq)
	if err != nil {
		return nil, err
	}
	s := &Sampler{
		cfg:      cfg,
		bucketer: b,
		fft:      proc,
		now:      time.Now,
		newTicker: func(d time.Duration) (<-chan time.Time, func()) {
			t := time.NewTicker(d)
			return t.C, t.Stop
		},
		bands:   make([]float64, cfg.Bands),
		changed: make(chan struct{}),
	}
	if cfg.PreGain {
		s.pregain = util.NewPreGain(util.DefaultPreGainParams)
	}
	for _, o := range opts {
		o(s)
	}
	return s, nil
}

// Config returns the sampler's config.
func (s *Sampler) Config() Config { return s.cfg }

// SetTrack attaches a source of log power spectra with FrameSize/2 bins, as
// produced by fft.FFTProcessor. A nil track detaches; the bands then decay.
// It may be called at any time, from any goroutine.
func (s *Sampler) SetTrack(track <-chan []float64) {
	s.trackMu.Lock()
	defer s.trackMu.Unlock()
	s.track = track
	close(s.changed)
	s.changed = make(chan struct{})
	glog.V(2).Infof("band sampler track attached: %v", track != nil)
}

func (s *Sampler) currentTrack() (<-chan []float64, <-chan struct{}) {
	s.trackMu.Lock()
	defer s.trackMu.Unlock()
	return s.track, s.changed
}

// detach clears track if it is still the attached one.
func (s *Sampler) detach(track <-chan []float64) {
	s.trackMu.Lock()
	defer s.trackMu.Unlock()
	if s.track == track {
		s.track = nil
		glog.V(2).Infof("band sampler track ended")
	}
}

// Bands returns a copy of the current levels in display order, each in [0,1].
func (s *Sampler) Bands() []float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.Layout.Arrange(s.bands)
}

// Level is the loudest current band.
func (s *Sampler) Level() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return floats.Max(s.bands)
}

// Run processes the attached track and refreshes the bands until ctx is
// cancelled.
func (s *Sampler) Run(ctx context.Context) {
	tick, stop := s.newTicker(s.cfg.Period())
	defer stop()

	for {
		track, changed := s.currentTrack()
		select {
		case <-ctx.Done():
			return
		case <-changed:
		case px, ok := <-track:
			if !ok {
				s.detach(track)
				continue
			}
			if err := s.ProcessSpectrum(px); err != nil {
				glog.V(2).Infof("band sampler dropped frame: %v", err)
			}
		case <-tick:
			s.Tick()
		}
	}
}

// Tick is one refresh. When no frame arrived within the last period the
// bands decay toward zero.
func (s *Sampler) Tick() {
	track, _ := s.currentTrack()
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	if track != nil && now.Sub(s.lastFrame) <= s.cfg.Period() {
		return
	}
	for i, v := range s.bands {
		v *= s.cfg.Decay
		if v < silence {
			v = 0
		}
		s.bands[i] = v
	}
}

// ProcessSamples runs one frame of FrameSize samples through pre-gain, the
// Hann windowed FFT and ProcessSpectrum. frame is modified by pre-gain.
func (s *Sampler) ProcessSamples(frame []float64) error {
	if s.pregain != nil {
		s.pregain.Apply(frame)
	}
	px, err := s.fft.Spectrum(frame)
	if err != nil {
		return err
	}
	return s.ProcessSpectrum(px)
}

// ProcessSpectrum folds one log power spectrum into the bands.
func (s *Sampler) ProcessSpectrum(px []float64) error {
	raw, err := s.bucketer.Bucket(px)
	if err != nil {
		return err
	}
	span := s.cfg.Ceiling - s.cfg.Floor
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, b := range raw {
		v := clamp((b-s.cfg.Floor)/span, 0, 1)
		prev := s.bands[i]
		w := s.cfg.Release
		if v > prev {
			w = s.cfg.Attack
		}
		s.bands[i] = clamp(w*v+(1-w)*prev, 0, 1)
	}
	s.lastFrame = now
	return nil
}

func clamp(v, lo, hi float64) float64 {
	if v < lo || v != v {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
