package glvideo

import (
	"strings"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/pkg/errors"
)

const (
	vertexShaderSource = `
		#version 410
		layout (location = 0) in vec3 position;
		layout (location = 1) in vec2 vertTexCoord;
		layout (location = 2) in vec2 vertLightmapCoord;
		out vec2 fragTexCoord;
		out vec2 fragLightmapCoord;

		uniform mat4 view;
		uniform mat4 projection;
		uniform vec3 offset;

		void main() {
			fragTexCoord = vertTexCoord;
			fragLightmapCoord = vertLightmapCoord;

			gl_Position = projection * view * vec4(position + offset, 1.0);
		}
	` + "\x00"

	fragmentShaderSource = `
		#version 410

		uniform sampler2D diffuse;
		uniform sampler2D lightmap;
		in vec2 fragTexCoord;
		in vec2 fragLightmapCoord;
		out vec4 fragColor;

		void main() {
			vec4 diffuseColor = texture(diffuse, fragTexCoord.st);
			if (diffuseColor.a < 0.5) {
				discard;
			}
			vec4 lightColor = texture(lightmap, fragLightmapCoord.st);
			fragColor = vec4(diffuseColor.rgb * lightColor.rgb, 1.0);
		}
	` + "\x00"
)

type shader struct {
	program    uint32
	view       int32
	projection int32
	offset     int32
	diffuse    int32
	lightmap   int32
}

func newShader() (*shader, error) {
	vertexShader, err := compileShader(vertexShaderSource, gl.VERTEX_SHADER)
	if err != nil {
		return nil, err
	}
	fragmentShader, err := compileShader(fragmentShaderSource, gl.FRAGMENT_SHADER)
	if err != nil {
		return nil, err
	}

	program := gl.CreateProgram()
	gl.AttachShader(program, vertexShader)
	gl.AttachShader(program, fragmentShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetProgramiv(program, gl.INFO_LOG_LENGTH, &logLength)
		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetProgramInfoLog(program, logLength, nil, gl.Str(log))
		return nil, errors.Errorf("failed to link program: %v", log)
	}
	gl.DeleteShader(vertexShader)
	gl.DeleteShader(fragmentShader)

	return &shader{
		program:    program,
		view:       gl.GetUniformLocation(program, gl.Str("view\x00")),
		projection: gl.GetUniformLocation(program, gl.Str("projection\x00")),
		offset:     gl.GetUniformLocation(program, gl.Str("offset\x00")),
		diffuse:    gl.GetUniformLocation(program, gl.Str("diffuse\x00")),
		lightmap:   gl.GetUniformLocation(program, gl.Str("lightmap\x00")),
	}, nil
}

func compileShader(source string, shaderType uint32) (uint32, error) {
	shader := gl.CreateShader(shaderType)

	csources, free := gl.Strs(source)
	gl.ShaderSource(shader, 1, csources, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		var logLength int32
		gl.GetShaderiv(shader, gl.INFO_LOG_LENGTH, &logLength)

		log := strings.Repeat("\x00", int(logLength+1))
		gl.GetShaderInfoLog(shader, logLength, nil, gl.Str(log))

		return 0, errors.Errorf("failed to compile shader: %v", log)
	}

	return shader, nil
}
