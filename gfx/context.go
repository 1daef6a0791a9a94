package gfx

import (
	"context"
	"fmt"
	"runtime"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/glfw/v3.2/glfw"
	"github.com/golang/glog"
)

// Context is a context for doing opengl graphics
type Context struct {
	Window  *Window
	Program *Program

	uniforms   map[string]int32
	attributes map[string]int32
	vaos       []*VertexArrayObject

	ctx context.Context
}

// NewContext creates the window, initializes GL and links a program from
// shaderConfigs. Every error it returns is an *InitError.
func NewContext(ctx context.Context,
	windowConfig *WindowConfig, shaderConfigs []*ShaderConfig) (*Context, error) {
	window, err := NewWindow(windowConfig)
	if err != nil {
		return nil, err
	}

	if err := gl.Init(); err != nil {
		glfw.Terminate()
		return nil, initErr("gl", err)
	}
	glog.Infof("OpenGL version %s", gl.GoStr(gl.GetString(gl.VERSION)))

	program, err := NewProgram()
	if err != nil {
		glfw.Terminate()
		return nil, err
	}
	for _, cfg := range shaderConfigs {
		if err := program.AttachShader(cfg); err != nil {
			glfw.Terminate()
			return nil, err
		}
	}
	if err := program.Link(); err != nil {
		glfw.Terminate()
		return nil, err
	}

	uniforms := make(map[string]int32)
	attributes := make(map[string]int32)
	for _, sh := range program.Shaders {
		for uname, uloc := range sh.UniformLocations {
			uniforms[uname] = uloc
		}
		for aname, aloc := range sh.AttributeLocations {
			attributes[aname] = aloc
		}
	}

	return &Context{
		Window:     window,
		Program:    program,
		uniforms:   uniforms,
		attributes: attributes,
		ctx:        ctx,
	}, nil
}

// EventLoop runs frame once per iteration until the window is closed or the
// context is cancelled. frame is responsible for drawing and presenting.
func (c *Context) EventLoop(frame func(*Context)) {

	// OpenGL requires that rendering functions be called from the main thread
	runtime.LockOSThread()

	for !c.Window.GlfwWindow.ShouldClose() {
		select {
		case <-c.ctx.Done():
			return
		default:
		}

		frame(c)

		glfw.PollEvents()
	}
}

// Clear clears the framebuffer and makes the context's program current.
func (c *Context) Clear() {
	gl.Clear(gl.COLOR_BUFFER_BIT)
	gl.UseProgram(c.Program.ProgramID)
}

// Viewport sets the GL viewport to the given framebuffer size.
func (c *Context) Viewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

// Draw draws every VAO that's attached to the context.
func (c *Context) Draw() {
	for _, v := range c.vaos {
		v.Draw(c)
	}
}

// SwapBuffers presents the back buffer.
func (c *Context) SwapBuffers() {
	c.Window.GlfwWindow.SwapBuffers()
}

// Terminate ends the glfw session
func (c *Context) Terminate() {
	glfw.Terminate()
}

// AddVertexArrayObject uploads cfg.Vertices and attaches the VAO to the context.
func (c *Context) AddVertexArrayObject(cfg *VAOConfig) error {
	vao, err := c.NewVertexArrayObject(cfg)
	if err != nil {
		return initErr("vao", err)
	}
	c.vaos = append(c.vaos, vao)
	return nil
}

// GetUniformLocation returns the location of a uniform within the context's
// program. Inactive uniforms report -1, which GL ignores on upload.
func (c *Context) GetUniformLocation(uname string) int32 {
	uloc, ok := c.uniforms[uname]
	if !ok {
		panic(fmt.Sprintf("unknown uniform name %q", uname))
	}
	return uloc
}

// GetAttributeLocation returns the location of a vertex attribute.
func (c *Context) GetAttributeLocation(aname string) (uint32, error) {
	aloc, ok := c.attributes[aname]
	if !ok || aloc < 0 {
		return 0, fmt.Errorf("unknown attribute name %q", aname)
	}
	return uint32(aloc), nil
}
