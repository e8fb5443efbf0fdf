package display

import (
	"errors"
	"fmt"
	"strings"

	"Caustics/internal/logger"
	"Caustics/internal/renderer"

	"github.com/go-gl/gl/v4.1-core/gl"
	"go.uber.org/zap"
)

// Presenter uploads float textures and draws them over the whole viewport.
type Presenter struct {
	shader  Shader
	vao     uint32
	texture uint32
	texW    int
	texH    int
}

// Init compiles the present shader and allocates the GL objects. A GL context
// must be current.
func (p *Presenter) Init(width, height int) error {
	var cleanup Unwind
	defer cleanup.Unwind()

	p.shader = InitPresentShader()
	if err := p.shader.Compile(); err != nil {
		return err
	}
	cleanup.Add(p.shader.Delete)

	gl.GenVertexArrays(1, &p.vao)
	cleanup.Add(func() { gl.DeleteVertexArrays(1, &p.vao) })

	gl.GenTextures(1, &p.texture)
	if p.texture == 0 {
		return errors.New("could not create frame texture")
	}
	gl.BindTexture(gl.TEXTURE_2D, p.texture)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)

	gl.Disable(gl.DEPTH_TEST)
	gl.ClearColor(0.0, 0.0, 0.0, 1.0)
	p.UpdateViewport(width, height)

	cleanup.Discard()
	logger.Log.Info("OpenGL presenter initialized",
		zap.String("version", gl.GoStr(gl.GetString(gl.VERSION))))
	return nil
}

// Upload copies tex into the frame texture, reallocating it when the size
// changes. Texture row 0 is the bottom row, as GL expects.
func (p *Presenter) Upload(tex *renderer.Texture) {
	if tex == nil || len(tex.Pixels) == 0 {
		return
	}
	gl.BindTexture(gl.TEXTURE_2D, p.texture)
	if tex.Width != p.texW || tex.Height != p.texH {
		gl.TexImage2D(gl.TEXTURE_2D, 0, gl.RGBA32F, int32(tex.Width), int32(tex.Height), 0, gl.RGBA, gl.FLOAT, gl.Ptr(&tex.Pixels[0]))
		p.texW, p.texH = tex.Width, tex.Height
		return
	}
	gl.TexSubImage2D(gl.TEXTURE_2D, 0, 0, 0, int32(tex.Width), int32(tex.Height), gl.RGBA, gl.FLOAT, gl.Ptr(&tex.Pixels[0]))
}

// Present draws the uploaded texture. channel < 0 shows colours; otherwise
// that channel is shown as grey after value*scale + offset.
func (p *Presenter) Present(channel int, scale, offset float32) {
	gl.Clear(gl.COLOR_BUFFER_BIT)
	p.shader.Use()
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, p.texture)
	p.shader.SetInt("frame", 0)
	p.shader.SetInt("channel", int32(channel))
	p.shader.SetFloat("scale", scale)
	p.shader.SetFloat("offset", offset)
	gl.BindVertexArray(p.vao)
	gl.DrawArrays(gl.TRIANGLES, 0, 3)
}

// UpdateViewport updates the OpenGL viewport to match the current framebuffer size
func (p *Presenter) UpdateViewport(width, height int) {
	gl.Viewport(0, 0, int32(width), int32(height))
}

func (p *Presenter) Cleanup() {
	gl.DeleteTextures(1, &p.texture)
	gl.DeleteVertexArrays(1, &p.vao)
	p.shader.Delete()
}

func GenShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	cSources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, cSources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))
		gl.DeleteShader(shader)

		logger.Log.Error("Failed to compile", zap.String("shader", shaderTypeName(shaderType)), zap.String("log", log))
		return 0, fmt.Errorf("compiling %s shader: %s", shaderTypeName(shaderType), strings.TrimRight(log, "\x00"))
	}
	return shader, nil
}

func GenShaderProgram(vertexShader, fragmentShader uint32) (uint32, error) {
	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	gl.DetachShader(program, vertexShader)
	gl.DeleteShader(vertexShader)
	gl.DetachShader(program, fragmentShader)
	gl.DeleteShader(fragmentShader)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		gl.DeleteProgram(program)

		logger.Log.Error("Failed to link program", zap.String("log", log))
		return 0, fmt.Errorf("linking shader program: %s", strings.TrimRight(log, "\x00"))
	}
	return program, nil
}
