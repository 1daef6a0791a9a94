package bands

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/peragwin/agentfx/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"
)

func TestMain(m *testing.M) {
	testutil.VerifyTestMain(m)
}

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

func newTestSampler(t *testing.T, cfg Config) (*Sampler, *testClock) {
	t.Helper()
	clk := &testClock{t: time.Unix(1700000000, 0)}
	s, err := NewSampler(cfg, WithClock(clk.now))
	require.NoError(t, err)
	return s, clk
}

func flat(n int, v float64) []float64 {
	px := make([]float64, n)
	for i := range px {
		px[i] = v
	}
	return px
}

func TestConfigValidate(t *testing.T) {
	require.NoError(t, DefaultConfig(5).Validate())
	assert.InDelta(t, float64(time.Second)/60, float64(DefaultConfig(5).Period()), 1)

	bad := []func(*Config){
		func(c *Config) { c.Bands = 0 },
		func(c *Config) { c.RefreshRate = 20 },
		func(c *Config) { c.Decay = 1 },
		func(c *Config) { c.Ceiling = c.Floor },
		func(c *Config) { c.Attack = 0 },
		func(c *Config) { c.MaxFreq = 30000 },
		func(c *Config) { c.FrameSize = 4 },
	}
	for i, mutate := range bad {
		cfg := DefaultConfig(5)
		mutate(&cfg)
		assert.True(t, errors.Is(cfg.Validate(), ErrInvalidConfig), "case %d", i)
		_, err := NewSampler(cfg)
		assert.Error(t, err, "case %d", i)
	}
}

func TestAttackAndRelease(t *testing.T) {
	cfg := DefaultConfig(5)
	s, _ := newTestSampler(t, cfg)
	bins := cfg.FrameSize / 2

	require.NoError(t, s.ProcessSpectrum(flat(bins, 4)))
	for _, v := range s.Bands() {
		assert.InDelta(t, 0.6, v, 1e-12)
	}
	require.NoError(t, s.ProcessSpectrum(flat(bins, 4)))
	for _, v := range s.Bands() {
		assert.InDelta(t, 0.84, v, 1e-12)
	}
	require.NoError(t, s.ProcessSpectrum(flat(bins, 0)))
	for _, v := range s.Bands() {
		assert.InDelta(t, 0.63, v, 1e-12)
	}
}

func TestBandsClamped(t *testing.T) {
	cfg := DefaultConfig(7)
	s, _ := newTestSampler(t, cfg)
	bins := cfg.FrameSize / 2

	for i := 0; i < 20; i++ {
		require.NoError(t, s.ProcessSpectrum(flat(bins, 1e9)))
	}
	for _, v := range s.Bands() {
		assert.LessOrEqual(t, v, 1.0)
		assert.Greater(t, v, 0.99)
	}
	for i := 0; i < 200; i++ {
		require.NoError(t, s.ProcessSpectrum(flat(bins, -50)))
	}
	for _, v := range s.Bands() {
		assert.GreaterOrEqual(t, v, 0.0)
	}
	nan := flat(bins, math.NaN())
	require.NoError(t, s.ProcessSpectrum(nan))
	for _, v := range s.Bands() {
		assert.False(t, math.IsNaN(v))
	}

	assert.Error(t, s.ProcessSpectrum(flat(10, 1)))
}

func TestDecayWithoutSource(t *testing.T) {
	cfg := DefaultConfig(5)
	s, _ := newTestSampler(t, cfg)
	require.NoError(t, s.ProcessSpectrum(flat(cfg.FrameSize/2, 4)))

	var levels []float64
	prev := s.Level()
	levels = append(levels, prev)
	for i := 0; i < 40; i++ {
		s.Tick()
		l := s.Level()
		assert.LessOrEqual(t, l, prev)
		if l > 0 {
			assert.InDelta(t, prev*cfg.Decay, l, 1e-12, "decay must be smooth")
		} else {
			assert.Less(t, prev*cfg.Decay, silence)
		}
		levels = append(levels, l)
		prev = l
	}
	assert.Zero(t, s.Level())
	assert.Equal(t, make([]float64, 5), s.Bands())

	p := plot.New()
	p.Title.Text = "band decay without source"
	p.X.Label.Text = "tick"
	p.Y.Label.Text = "level"
	require.NoError(t, plotutil.AddLinePoints(p, "level", newPlotter(levels)))
	require.NoError(t, p.Save(6*vg.Inch, 4*vg.Inch, filepath.Join(t.TempDir(), "decay.png")))
}

func TestNoDecayWhileTrackIsFresh(t *testing.T) {
	cfg := DefaultConfig(5)
	s, clk := newTestSampler(t, cfg)
	s.SetTrack(make(chan []float64))

	require.NoError(t, s.ProcessSpectrum(flat(cfg.FrameSize/2, 4)))
	before := s.Bands()

	clk.advance(cfg.Period() / 2)
	s.Tick()
	assert.Equal(t, before, s.Bands())

	// a stalled track decays like no track at all
	clk.advance(2 * cfg.Period())
	s.Tick()
	assert.InDelta(t, 0.6*cfg.Decay, s.Level(), 1e-12)
}

func TestLayoutOnlyMovesBands(t *testing.T) {
	left := DefaultConfig(5)
	left.Layout = LeftAligned
	centered := DefaultConfig(5)

	sl, _ := newTestSampler(t, left)
	sc, _ := newTestSampler(t, centered)

	px := make([]float64, left.FrameSize/2)
	for i := range px {
		px[i] = 4 * float64(i) / float64(len(px))
	}
	require.NoError(t, sl.ProcessSpectrum(px))
	require.NoError(t, sc.ProcessSpectrum(px))

	l, c := sl.Bands(), sc.Bands()
	for k := range l {
		assert.Equal(t, l[k], c[Centered.Index(k, 5)])
	}
	assert.Equal(t, l[0], c[2], "lowest band sits in the middle")
}

func TestProcessSamplesTone(t *testing.T) {
	cfg := DefaultConfig(5)
	cfg.Layout = LeftAligned
	cfg.PreGain = false
	s, _ := newTestSampler(t, cfg)

	frame := make([]float64, cfg.FrameSize)
	for i := range frame {
		frame[i] = math.Sin(2 * math.Pi * 1000 * float64(i) / cfg.SampleRate)
	}
	require.NoError(t, s.ProcessSamples(frame))

	b := s.Bands()
	assert.Equal(t, 2, floats.MaxIdx(b))
	assert.Greater(t, b[2], 0.0)

	assert.Error(t, s.ProcessSamples(make([]float64, 3)))
}

func TestRunFollowsTrack(t *testing.T) {
	cfg := DefaultConfig(5)
	ticks := make(chan time.Time)
	clk := &testClock{t: time.Unix(1700000000, 0)}
	s, err := NewSampler(cfg, WithClock(clk.now), WithTicker(func(time.Duration) (<-chan time.Time, func()) {
		return ticks, func() {}
	}))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		s.Run(ctx)
	}()

	track := make(chan []float64)
	s.SetTrack(track)
	track <- flat(cfg.FrameSize/2, 4)
	assert.Eventually(t, func() bool { return s.Level() > 0.5 }, time.Second, time.Millisecond)

	// replacing the track mid-run takes effect
	next := make(chan []float64)
	s.SetTrack(next)
	next <- flat(cfg.FrameSize/2, 4)
	assert.Eventually(t, func() bool { return s.Level() > 0.8 }, time.Second, time.Millisecond)

	// a closed track detaches; ticks then decay the bands
	close(next)
	assert.Eventually(t, func() bool {
		track, _ := s.currentTrack()
		return track == nil
	}, time.Second, time.Millisecond)
	level := s.Level()
	for i := 0; i < 3; i++ {
		ticks <- clk.now()
	}
	assert.Eventually(t, func() bool { return s.Level() < level }, time.Second, time.Millisecond)

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func newPlotter(data []float64) plotter.XYs {
	pts := make(plotter.XYs, len(data))
	for i := range pts {
		pts[i].X = float64(i)
		pts[i].Y = data[i]
	}
	return pts
}
