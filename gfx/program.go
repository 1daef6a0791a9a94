package gfx

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/golang/glog"
)

// Program represents an OpenGL program.
type Program struct {
	ProgramID uint32
	Shaders   []*Shader
}

// NewProgram creates a new Program
func NewProgram() (*Program, error) {
	prog := gl.CreateProgram()
	if prog == 0 {
		return nil, initErr("link", errors.New("no programs available"))
	}
	return &Program{
		ProgramID: prog,
		Shaders:   []*Shader{},
	}, nil
}

// AttachShader attaches a shader from source to a program, defering compilation
// so that calls can be chained together and finished with a call to Link()
func (p *Program) AttachShader(cfg *ShaderConfig) error {
	shader, err := NewShader(cfg)
	if err != nil {
		return err
	}
	p.Shaders = append(p.Shaders, shader)
	gl.AttachShader(p.ProgramID, shader.ShaderID)

	return nil
}

// Link links the program and retrieves all variable locations.
//
// Uniforms the driver optimized away resolve to -1. Setting them is a no-op in
// GL, so they are logged rather than treated as an error.
func (p *Program) Link() error {
	gl.LinkProgram(p.ProgramID)

	var status int32
	gl.GetProgramiv(p.ProgramID, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(p.ProgramID, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(p.ProgramID, logLength, nil, gl.Str(log))

		return initErr("link", fmt.Errorf("failed to link program: %v", strings.TrimRight(log, "\x00")))
	}

	for _, sh := range p.Shaders {
		for uname := range sh.UniformLocations {
			uloc := gl.GetUniformLocation(p.ProgramID, gl.Str(uname+"\x00"))
			if uloc == -1 {
				glog.V(2).Infof("uniform %q is inactive in the linked program", uname)
			}
			sh.UniformLocations[uname] = uloc
		}
		for aname := range sh.AttributeLocations {
			aloc := gl.GetAttribLocation(p.ProgramID, gl.Str(aname+"\x00"))
			if aloc < 0 {
				return initErr("link", fmt.Errorf("location of attribute '%s' not found", aname))
			}
			sh.AttributeLocations[aname] = aloc
		}
	}

	// shaders are owned by the program once linked
	for _, sh := range p.Shaders {
		gl.DetachShader(p.ProgramID, sh.ShaderID)
		gl.DeleteShader(sh.ShaderID)
	}

	return nil
}
