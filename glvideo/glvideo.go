// Package glvideo uploads textures and vertex buffers to OpenGL 4.1 and
// draws them. The host owns the window and must make a context current
// before calling New.
package glvideo

import (
	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/samuelyuan/go-halfmapper/render"
)

type System struct {
	shader *shader
	// One vertex array per buffer, attributes bound at upload
	vaos map[render.BufferHandle]uint32

	view       mgl32.Mat4
	projection mgl32.Mat4
	log        zerolog.Logger
}

func New(logger zerolog.Logger) (*System, error) {
	if err := gl.Init(); err != nil {
		return nil, errors.Wrap(err, "could not initialize OpenGL")
	}
	logger.Info().Str("version", gl.GoStr(gl.GetString(gl.VERSION))).Msg("OpenGL initialized")

	sh, err := newShader()
	if err != nil {
		return nil, err
	}

	gl.Enable(gl.DEPTH_TEST)
	gl.DepthFunc(gl.LESS)

	return &System{
		shader:     sh,
		vaos:       make(map[render.BufferHandle]uint32),
		view:       mgl32.Ident4(),
		projection: mgl32.Ident4(),
		log:        logger,
	}, nil
}

// SetCamera sets the matrices used by the next frames
func (s *System) SetCamera(view mgl32.Mat4, projection mgl32.Mat4) {
	s.view = view
	s.projection = projection
}

func (s *System) CreateTexture(kind render.TextureKind) render.TextureHandle {
	var texture uint32
	gl.GenTextures(1, &texture)
	gl.BindTexture(gl.TEXTURE_2D, texture)

	gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAG_FILTER, gl.LINEAR)
	switch kind {
	case render.MaterialTexture:
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR_MIPMAP_LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MAX_LEVEL, 3)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.REPEAT)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.REPEAT)
	case render.LightmapTexture:
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_MIN_FILTER, gl.LINEAR)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_S, gl.CLAMP_TO_EDGE)
		gl.TexParameteri(gl.TEXTURE_2D, gl.TEXTURE_WRAP_T, gl.CLAMP_TO_EDGE)
	}
	return render.TextureHandle(texture)
}

func (s *System) UploadTexture(handle render.TextureHandle, level int, width int, height int, pixels []uint8, kind render.TextureKind) {
	format := pixelFormat(kind)
	if kind == render.LightmapTexture {
		// rows of the atlas are tightly packed RGB
		gl.PixelStorei(gl.UNPACK_ALIGNMENT, 1)
	}
	gl.BindTexture(gl.TEXTURE_2D, uint32(handle))
	gl.TexImage2D(gl.TEXTURE_2D, int32(level), int32(format), int32(width), int32(height),
		0, format, gl.UNSIGNED_BYTE, gl.Ptr(pixels))
	if kind == render.LightmapTexture {
		gl.PixelStorei(gl.UNPACK_ALIGNMENT, 4)
	}
}

// Material levels are RGBA, the lightmap atlas is RGB
func pixelFormat(kind render.TextureKind) uint32 {
	if kind == render.LightmapTexture {
		return gl.RGB
	}
	return gl.RGBA
}

func (s *System) CreateBuffers(n int) []render.BufferHandle {
	if n == 0 {
		return nil
	}
	vbos := make([]uint32, n)
	vaos := make([]uint32, n)
	gl.GenBuffers(int32(n), &vbos[0])
	gl.GenVertexArrays(int32(n), &vaos[0])

	handles := make([]render.BufferHandle, n)
	for i := range vbos {
		handles[i] = render.BufferHandle(vbos[i])
		s.vaos[handles[i]] = vaos[i]
	}
	return handles
}

// UploadBuffer stores interleaved vertices: position, texture uv, lightmap uv.
func (s *System) UploadBuffer(handle render.BufferHandle, data []byte) {
	vao, ok := s.vaos[handle]
	if !ok {
		s.log.Error().Uint32("buffer", uint32(handle)).Msg("Upload to unknown buffer")
		return
	}
	gl.BindVertexArray(vao)
	gl.BindBuffer(gl.ARRAY_BUFFER, uint32(handle))
	if len(data) > 0 {
		gl.BufferData(gl.ARRAY_BUFFER, len(data), gl.Ptr(data), gl.STATIC_DRAW)
	}

	stride := int32(render.VertexStride)
	gl.VertexAttribPointer(0, 3, gl.FLOAT, false, stride, gl.PtrOffset(0))
	gl.EnableVertexAttribArray(0)
	gl.VertexAttribPointer(1, 2, gl.FLOAT, false, stride, gl.PtrOffset(3*render.FloatSize))
	gl.EnableVertexAttribArray(1)
	gl.VertexAttribPointer(2, 2, gl.FLOAT, false, stride, gl.PtrOffset(5*render.FloatSize))
	gl.EnableVertexAttribArray(2)

	gl.BindVertexArray(0)
}

func (s *System) BeginFrame(offset mgl32.Vec3, lightmap render.TextureHandle) {
	gl.UseProgram(s.shader.program)
	gl.UniformMatrix4fv(s.shader.view, 1, false, &s.view[0])
	gl.UniformMatrix4fv(s.shader.projection, 1, false, &s.projection[0])
	gl.Uniform3f(s.shader.offset, offset.X(), offset.Y(), offset.Z())

	// diffuse on unit 0, lightmap on unit 1
	gl.Uniform1i(s.shader.diffuse, 0)
	gl.ActiveTexture(gl.TEXTURE1)
	gl.BindTexture(gl.TEXTURE_2D, uint32(lightmap))
	gl.Uniform1i(s.shader.lightmap, 1)
}

func (s *System) DrawBatch(buffer render.BufferHandle, texture render.TextureHandle, stride int, count int) {
	gl.BindVertexArray(s.vaos[buffer])
	gl.ActiveTexture(gl.TEXTURE0)
	gl.BindTexture(gl.TEXTURE_2D, uint32(texture))
	gl.DrawArrays(gl.TRIANGLES, 0, int32(count))
}

func (s *System) EndFrame() {
	gl.BindVertexArray(0)
}

// Clear resets color and depth before a new frame
func (s *System) Clear() {
	gl.ClearColor(0.1, 0.1, 0.1, 1)
	gl.Clear(gl.COLOR_BUFFER_BIT | gl.DEPTH_BUFFER_BIT)
}

var _ render.VideoSystem = (*System)(nil)
