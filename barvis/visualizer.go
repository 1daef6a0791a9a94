package barvis

import (
	"image"
	"image/color"
	"math"

	"github.com/golang/glog"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/peragwin/agentfx/agent"
	"github.com/peragwin/agentfx/audio/bands"
)

// Options style the bar visualizer.
type Options struct {
	BarCount      int
	Centered      bool
	BarColor      colorful.Color
	MinOpacity    float64
	SpacingFactor float64

	// Gradient, when set, colours each bar by its amplitude instead of
	// BarColor.
	Gradient Gradient
}

// DefaultOptions are five centred white bars.
func DefaultOptions() Options {
	return Options{
		BarCount:      5,
		Centered:      true,
		BarColor:      colorful.Color{R: 1, G: 1, B: 1},
		MinOpacity:    0.16,
		SpacingFactor: 0.015,
	}
}

// BandLayout is the sampler layout matching the options.
func (o Options) BandLayout() bands.Layout {
	if o.Centered {
		return bands.Centered
	}
	return bands.LeftAligned
}

// BandSource supplies per-bar amplitudes in display order.
type BandSource interface {
	Bands() []float64
}

// Bar is the render state of one bar.
type Bar struct {
	Index       int
	Amplitude   float64
	Highlighted bool
	Opacity     float64
}

// Rect is a bar's box in pixels.
type Rect struct {
	X, Y, W, H float64
}

// Visualizer combines band levels with the state animation.
type Visualizer struct {
	opts  Options
	src   BandSource
	sched *Scheduler
}

// New returns a visualizer in the idle state. src may be nil, in which case
// every bar sits at its minimum height.
func New(opts Options, src BandSource, schedOpts ...SchedulerOption) *Visualizer {
	if opts.BarCount < 1 {
		opts.BarCount = DefaultOptions().BarCount
	}
	return &Visualizer{
		opts:  opts,
		src:   src,
		sched: NewScheduler(opts.BarCount, schedOpts...),
	}
}

// SetState changes the animation. See Scheduler.SetState.
func (v *Visualizer) SetState(s agent.State) {
	v.sched.SetState(s)
}

// State is the current agent state.
func (v *Visualizer) State() agent.State {
	return v.sched.State()
}

// Close stops the animation.
func (v *Visualizer) Close() {
	v.sched.Stop()
}

// Frame snapshots every bar.
func (v *Visualizer) Frame() []Bar {
	var levels []float64
	if v.src != nil {
		levels = v.src.Bands()
	}
	if len(levels) != v.opts.BarCount {
		glog.V(2).Infof("band source has %d bands for %d bars", len(levels), v.opts.BarCount)
	}
	hl := v.sched.Highlighted()

	out := make([]Bar, v.opts.BarCount)
	for i := range out {
		var amp float64
		if i < len(levels) {
			amp = math.Max(0, math.Min(1, levels[i]))
		}
		out[i] = Bar{
			Index:       i,
			Amplitude:   amp,
			Highlighted: hl.Contains(i),
			Opacity:     v.opts.MinOpacity,
		}
		if out[i].Highlighted {
			out[i].Opacity = 1
		}
	}
	return out
}

// Layout returns the box of each bar in a w x h area. Bars are separated and
// inset by w*SpacingFactor, never shorter than they are wide, and centred
// vertically.
func (v *Visualizer) Layout(w, h float64, bars []Bar) []Rect {
	n := float64(len(bars))
	spacing := w * v.opts.SpacingFactor
	barW := math.Max(0, (w-spacing*(n+1))/n)
	minH := math.Min(barW, h)

	rects := make([]Rect, len(bars))
	for i, b := range bars {
		height := (h-minH)*b.Amplitude + minH
		rects[i] = Rect{
			X: spacing + float64(i)*(barW+spacing),
			Y: (h - height) / 2,
			W: barW,
			H: height,
		}
	}
	return rects
}

// Draw composites the current frame of bars over dst as rounded capsules.
func (v *Visualizer) Draw(dst *image.RGBA) {
	bnd := dst.Bounds()
	bars := v.Frame()
	rects := v.Layout(float64(bnd.Dx()), float64(bnd.Dy()), bars)

	for i, r := range rects {
		c := v.opts.BarColor
		if v.opts.Gradient != nil {
			c = v.opts.Gradient.At(bars[i].Amplitude)
		}
		fillCapsule(dst, r, c, bars[i].Opacity)
	}
}

func fillCapsule(dst *image.RGBA, r Rect, c colorful.Color, alpha float64) {
	bnd := dst.Bounds()
	rad := math.Min(r.W, r.H) / 2
	x0, x1 := int(math.Floor(r.X)), int(math.Ceil(r.X+r.W))
	y0, y1 := int(math.Floor(r.Y)), int(math.Ceil(r.Y+r.H))

	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			px, py := float64(x)+0.5, float64(y)+0.5
			if !insideRounded(px, py, r, rad) {
				continue
			}
			dx, dy := bnd.Min.X+x, bnd.Min.Y+y
			if !(image.Point{dx, dy}.In(bnd)) {
				continue
			}
			under := dst.RGBAAt(dx, dy)
			base, _ := colorful.MakeColor(color.RGBA{under.R, under.G, under.B, 255})
			out := base.BlendRgb(c, alpha).Clamped()
			cr, cg, cb := out.RGB255()
			dst.SetRGBA(dx, dy, color.RGBA{cr, cg, cb, 255})
		}
	}
}

func insideRounded(px, py float64, r Rect, rad float64) bool {
	if px < r.X || px > r.X+r.W || py < r.Y || py > r.Y+r.H {
		return false
	}
	// distance to the inner rectangle shrunk by rad
	cx := math.Max(r.X+rad, math.Min(px, r.X+r.W-rad))
	cy := math.Max(r.Y+rad, math.Min(py, r.Y+r.H-rad))
	return (px-cx)*(px-cx)+(py-cy)*(py-cy) <= rad*rad
}
