package display

import (
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
)

// =============================================================
//
//	Shaders
//
// =============================================================
type Shader struct {
	vertexSource   string
	fragmentSource string
	program        uint32
	isCompiled     bool
	uniforms       *UniformCache
}

// Compile builds and links the program. It is a no-op once compiled.
func (shader *Shader) Compile() error {
	if shader.isCompiled {
		return nil
	}
	vertex, err := GenShader(shader.vertexSource, gl.VERTEX_SHADER)
	if err != nil {
		return err
	}
	fragment, err := GenShader(shader.fragmentSource, gl.FRAGMENT_SHADER)
	if err != nil {
		gl.DeleteShader(vertex)
		return err
	}
	program, err := GenShaderProgram(vertex, fragment)
	if err != nil {
		return err
	}
	shader.program = program
	shader.uniforms = NewUniformCache(program)
	shader.isCompiled = true
	return nil
}

func (shader *Shader) Use() {
	gl.UseProgram(shader.program)
}

func (shader *Shader) SetFloat(name string, value float32) {
	shader.uniforms.SetFloat(name, value)
}

func (shader *Shader) SetVec2(name string, x, y float32) {
	shader.uniforms.SetVec2(name, x, y)
}

func (shader *Shader) SetInt(name string, value int32) {
	shader.uniforms.SetInt(name, value)
}

func (shader *Shader) Delete() {
	if shader.isCompiled {
		gl.DeleteProgram(shader.program)
		shader.isCompiled = false
	}
}

// The presenter draws one triangle covering the viewport, with no vertex
// buffer, and samples the uploaded frame.
var presentVertexSource = `#version 410 core

out vec2 uv;

void main() {
    vec2 pos = vec2((gl_VertexID << 1) & 2, gl_VertexID & 2);
    uv = pos;
    gl_Position = vec4(pos * 2.0 - 1.0, 0.0, 1.0);
}` + "\x00"

// channel < 0 shows the colour channels; otherwise one channel is mapped to
// grey through value * scale + offset.
var presentFragmentSource = `#version 410 core

in vec2 uv;
out vec4 FragColor;

uniform sampler2D frame;
uniform int channel;
uniform float scale;
uniform float offset;

void main() {
    vec4 texel = texture(frame, uv);
    if (channel < 0) {
        FragColor = vec4(clamp(texel.rgb, 0.0, 1.0), 1.0);
        return;
    }
    float v = clamp(texel[channel] * scale + offset, 0.0, 1.0);
    FragColor = vec4(v, v, v, 1.0);
}` + "\x00"

func InitPresentShader() Shader {
	return Shader{
		vertexSource:   presentVertexSource,
		fragmentSource: presentFragmentSource,
	}
}

func shaderTypeName(shaderType uint32) string {
	switch shaderType {
	case gl.VERTEX_SHADER:
		return "vertex"
	case gl.FRAGMENT_SHADER:
		return "fragment"
	}
	return fmt.Sprintf("type %d", shaderType)
}
