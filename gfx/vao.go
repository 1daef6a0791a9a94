package gfx

import (
	"errors"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// VertexArrayObject points to a vertex buffer that has already been
// loaded into grpahics memory.
type VertexArrayObject struct {
	vaoID      uint32
	vboID      uint32
	length     int32
	glDrawType uint32
	onDraw     func(ctx *Context) bool
}

// VAOConfig represents a configuration for creating a new VAO.
// OnDraw is a function that returns true if the VAO should be drawn, but can
// also be used to set uniforms.
//
// Size is the number of position components per vertex and Stride the total
// number of floats per vertex. TexAttr is optional; when set, two texture
// coordinates follow the position in each vertex.
type VAOConfig struct {
	Vertices   []float32
	VertAttr   string
	TexAttr    string
	Stride     int32
	Size       int
	GLDrawType uint32
	OnDraw     func(ctx *Context) bool
}

func (cfg *VAOConfig) validate() error {
	if cfg.Size <= 0 || cfg.Stride <= 0 {
		return errors.New("vertex size and stride must be positive")
	}
	if int(cfg.Stride) < cfg.Size {
		return errors.New("stride is smaller than vertex size")
	}
	if cfg.TexAttr != "" && int(cfg.Stride) < cfg.Size+2 {
		return errors.New("stride leaves no room for texture coordinates")
	}
	if len(cfg.Vertices) == 0 || len(cfg.Vertices)%int(cfg.Stride) != 0 {
		return errors.New("invalid length for vertices must be multiple of stride")
	}
	return nil
}

// VertexCount returns how many vertices cfg describes.
func (cfg *VAOConfig) VertexCount() int32 {
	return int32(len(cfg.Vertices)) / cfg.Stride
}

// NewVertexArrayObject creates a VertexArrayObject
func (c *Context) NewVertexArrayObject(cfg *VAOConfig) (*VertexArrayObject, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	vattr, err := c.GetAttributeLocation(cfg.VertAttr)
	if err != nil {
		return nil, err
	}
	stride := 4 * cfg.Stride

	var vbo uint32
	gl.GenBuffers(1, &vbo)
	gl.BindBuffer(gl.ARRAY_BUFFER, vbo)
	gl.BufferData(gl.ARRAY_BUFFER, 4*len(cfg.Vertices), gl.Ptr(cfg.Vertices), gl.STATIC_DRAW)

	var vao uint32
	gl.GenVertexArrays(1, &vao)
	gl.BindVertexArray(vao)

	gl.EnableVertexAttribArray(vattr)
	gl.VertexAttribPointer(vattr, int32(cfg.Size), gl.FLOAT, false, stride, gl.PtrOffset(0))

	if cfg.TexAttr != "" {
		tattr, err := c.GetAttributeLocation(cfg.TexAttr)
		if err != nil {
			return nil, err
		}
		gl.EnableVertexAttribArray(tattr)
		gl.VertexAttribPointer(tattr, 2, gl.FLOAT, false, stride, gl.PtrOffset(cfg.Size*4))
	}

	gl.BindVertexArray(0)

	return &VertexArrayObject{
		vaoID:      vao,
		vboID:      vbo,
		length:     cfg.VertexCount(),
		glDrawType: cfg.GLDrawType,
		onDraw:     cfg.OnDraw,
	}, nil
}

// Draw draws a VertexArrayObject to the current frame buffer
func (v *VertexArrayObject) Draw(ctx *Context) {
	gl.BindVertexArray(v.vaoID)
	if v.onDraw != nil {
		if !v.onDraw(ctx) {
			return
		}
	}
	gl.DrawArrays(v.glDrawType, 0, v.length)
}
