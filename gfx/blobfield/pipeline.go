package blobfield

import (
	"context"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	ml "github.com/go-gl/mathgl/mgl32"
	"github.com/golang/glog"
	"github.com/peragwin/agentfx/gfx"
)

// quad covers the viewport as a four vertex triangle strip.
var quad = [4]ml.Vec2{
	{-1, 1},
	{-1, -1},
	{1, 1},
	{1, -1},
}

func quadVertices() []float32 {
	vs := make([]float32, 0, 2*len(quad))
	for _, v := range quad {
		vs = append(vs, v[0], v[1])
	}
	return vs
}

// Pipeline owns the window, the compiled field program and the quad vertex
// buffer. It implements Backend on the GPU.
type Pipeline struct {
	Gfx *gfx.Context

	// set by Draw, consumed by the VAO's OnDraw hook
	uniforms Uniforms
	palette  []float32
}

// DefaultWindowConfig is used when NewPipeline is given no window config.
func DefaultWindowConfig() *gfx.WindowConfig {
	return &gfx.WindowConfig{Width: 800, Height: 600, Title: "agentfx", SwapInterval: 1}
}

// NewPipeline validates cfg, opens the window, compiles and links the field
// program and uploads the quad. A device or shader failure is returned as a
// *gfx.InitError and is fatal to the caller.
func NewPipeline(ctx context.Context, cfg *Config, win *gfx.WindowConfig) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if win == nil {
		win = DefaultWindowConfig()
	}

	g, err := gfx.NewContext(ctx, win, []*gfx.ShaderConfig{
		{
			Typ:            gfx.VertexShaderType,
			Source:         vertexShaderSource,
			AttributeNames: []string{aVertPos},
		},
		{
			Typ:    gfx.FragmentShaderType,
			Source: fragmentShaderSource,
			UniformNames: []string{
				uTime, uResolution, uBlobCount, uTightness, uSharpness,
				uWarp1, uWarp2, uWarp3, uColors,
			},
		},
	})
	if err != nil {
		return nil, err
	}

	p := &Pipeline{Gfx: g}
	if err := g.AddVertexArrayObject(&gfx.VAOConfig{
		Vertices:   quadVertices(),
		VertAttr:   aVertPos,
		Size:       2,
		Stride:     2,
		GLDrawType: gl.TRIANGLE_STRIP,
		OnDraw:     p.setUniforms,
	}); err != nil {
		g.Terminate()
		return nil, err
	}

	g.Window.OnResize(p.NotifyResize)
	glog.Infof("blob field pipeline ready (%dx%d)", win.Width, win.Height)
	return p, nil
}

// NotifyResize is advisory. The resolution is re-read every frame.
func (p *Pipeline) NotifyResize(width, height int) {
	glog.V(2).Infof("drawable resized to %dx%d", width, height)
}

// Size implements Backend.
func (p *Pipeline) Size() (int, int, bool) {
	w, h := p.Gfx.Window.FramebufferSize()
	return w, h, w > 0 && h > 0
}

// Draw implements Backend.
func (p *Pipeline) Draw(u Uniforms, palette []float32) error {
	p.uniforms = u
	p.palette = palette

	p.Gfx.Viewport(int(u.Resolution[0]), int(u.Resolution[1]))
	p.Gfx.Clear()
	p.Gfx.Draw()
	if e := gl.GetError(); e != gl.NO_ERROR {
		return &drawError{code: e}
	}
	return nil
}

// Present implements Backend.
func (p *Pipeline) Present() {
	p.Gfx.SwapBuffers()
}

// Run drives r once per display refresh until the window closes or ctx is
// cancelled. It must be called from the main goroutine.
func (p *Pipeline) Run(r *Renderer) {
	p.Gfx.EventLoop(func(*gfx.Context) { r.RenderFrame() })
}

// Close releases the window.
func (p *Pipeline) Close() {
	p.Gfx.Terminate()
}

func (p *Pipeline) setUniforms(c *gfx.Context) bool {
	u := p.uniforms
	n := int32(len(p.palette) / 3)
	if n > MaxBlobs {
		n = MaxBlobs
	}
	if n == 0 {
		return false
	}
	gl.Uniform1f(c.GetUniformLocation(uTime), u.Time)
	gl.Uniform2f(c.GetUniformLocation(uResolution), u.Resolution[0], u.Resolution[1])
	gl.Uniform1ui(c.GetUniformLocation(uBlobCount), u.BlobCount)
	gl.Uniform1f(c.GetUniformLocation(uTightness), u.Tightness)
	gl.Uniform1f(c.GetUniformLocation(uSharpness), u.Sharpness)
	gl.Uniform1f(c.GetUniformLocation(uWarp1), u.Warp1)
	gl.Uniform1f(c.GetUniformLocation(uWarp2), u.Warp2)
	gl.Uniform1f(c.GetUniformLocation(uWarp3), u.Warp3)
	gl.Uniform3fv(c.GetUniformLocation(uColors), n, &p.palette[0])
	return true
}

type drawError struct {
	code uint32
}

func (e *drawError) Error() string {
	return fmt.Sprintf("gl error 0x%x", e.code)
}
