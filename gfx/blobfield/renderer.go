package blobfield

import (
	"sync/atomic"
	"time"

	"github.com/golang/glog"
)

// Backend is a drawable target for the blob field.
type Backend interface {
	// Size reports the current drawable size. ok is false when no drawable
	// is available this tick.
	Size() (width, height int, ok bool)
	// Draw renders one frame of the field. palette holds exactly
	// u.BlobCount rgb triples.
	Draw(u Uniforms, palette []float32) error
	// Present shows the frame drawn by the last successful Draw.
	Present()
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock replaces time.Now as the renderer's clock.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

// Renderer produces one blob field frame per display refresh. Apart from the
// start timestamp and the config it keeps no state between frames.
type Renderer struct {
	backend Backend
	cfg     atomic.Pointer[Config]
	now     func() time.Time
	start   time.Time

	skipped int
}

// warnEvery rate-limits the warning about consecutive skipped frames.
const warnEvery = 300

// NewRenderer binds a validated config to backend and starts the clock.
func NewRenderer(backend Backend, cfg *Config, opts ...Option) (*Renderer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Renderer{backend: backend, now: time.Now}
	for _, o := range opts {
		o(r)
	}
	r.cfg.Store(cfg.Clone())
	r.start = r.now()
	return r, nil
}

// Config returns a copy of the live config.
func (r *Renderer) Config() *Config {
	return r.cfg.Load().Clone()
}

// UpdateConfig replaces the config. The next frame uses it; the shader
// program is never rebuilt. An invalid config is rejected and the previous
// one stays live.
func (r *Renderer) UpdateConfig(cfg *Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	r.cfg.Store(cfg.Clone())
	glog.V(2).Infof("blob field config updated: %d blobs", cfg.BlobCount)
	return nil
}

// NotifyResize is advisory; the size is read from the backend every frame.
func (r *Renderer) NotifyResize(width, height int) {
	glog.V(2).Infof("renderer notified of resize to %dx%d", width, height)
}

// Elapsed returns the time since the renderer started.
func (r *Renderer) Elapsed() time.Duration {
	return r.now().Sub(r.start)
}

// RenderFrame draws and presents one frame. It returns false when the tick
// was skipped, either because no drawable was available or the draw failed.
func (r *Renderer) RenderFrame() bool {
	w, h, ok := r.backend.Size()
	if !ok || w <= 0 || h <= 0 {
		r.skip("no drawable")
		return false
	}

	cfg := r.cfg.Load()
	u := NewUniforms(cfg, r.Elapsed(), w, h)
	palette := cfg.Colors.Padded(cfg.BlobCount).Float32s()

	if err := r.backend.Draw(u, palette); err != nil {
		r.skip(err.Error())
		return false
	}
	r.backend.Present()
	r.skipped = 0
	return true
}

func (r *Renderer) skip(reason string) {
	r.skipped++
	glog.V(2).Infof("frame skipped: %s", reason)
	if r.skipped%warnEvery == 0 {
		glog.Warningf("%d consecutive frames skipped, last: %s", r.skipped, reason)
	}
}
