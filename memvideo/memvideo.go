// Package memvideo keeps textures and vertex buffers in memory instead of on a GPU.
// It backs headless runs and tests.
package memvideo

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/samuelyuan/go-halfmapper/render"
)

type Level struct {
	Width  int
	Height int
	Pixels []uint8
}

type Texture struct {
	Kind   render.TextureKind
	Levels map[int]Level
}

type Draw struct {
	Offset   mgl32.Vec3
	Lightmap render.TextureHandle
	Buffer   render.BufferHandle
	Texture  render.TextureHandle
	Stride   int
	Count    int
}

type System struct {
	Textures map[render.TextureHandle]*Texture
	Buffers  map[render.BufferHandle][]byte
	Draws    []Draw
	// Number of UploadTexture calls
	TextureUploads int

	nextTexture render.TextureHandle
	nextBuffer  render.BufferHandle
	inFrame     bool
	offset      mgl32.Vec3
	lightmap    render.TextureHandle
}

func New() *System {
	return &System{
		Textures: make(map[render.TextureHandle]*Texture),
		Buffers:  make(map[render.BufferHandle][]byte),
	}
}

// Handles start at 1 so that 0 never names a texture
func (s *System) CreateTexture(kind render.TextureKind) render.TextureHandle {
	s.nextTexture++
	s.Textures[s.nextTexture] = &Texture{Kind: kind, Levels: make(map[int]Level)}
	return s.nextTexture
}

func (s *System) UploadTexture(handle render.TextureHandle, level int, width int, height int, pixels []uint8, kind render.TextureKind) {
	texture, ok := s.Textures[handle]
	if !ok {
		panic(fmt.Sprintf("memvideo: upload to unknown texture %d", handle))
	}
	data := make([]uint8, len(pixels))
	copy(data, pixels)
	texture.Levels[level] = Level{Width: width, Height: height, Pixels: data}
	s.TextureUploads++
}

func (s *System) CreateBuffers(n int) []render.BufferHandle {
	handles := make([]render.BufferHandle, n)
	for i := range handles {
		s.nextBuffer++
		handles[i] = s.nextBuffer
		s.Buffers[s.nextBuffer] = nil
	}
	return handles
}

func (s *System) UploadBuffer(handle render.BufferHandle, data []byte) {
	if _, ok := s.Buffers[handle]; !ok {
		panic(fmt.Sprintf("memvideo: upload to unknown buffer %d", handle))
	}
	s.Buffers[handle] = append([]byte(nil), data...)
}

func (s *System) BeginFrame(offset mgl32.Vec3, lightmap render.TextureHandle) {
	if s.inFrame {
		panic("memvideo: BeginFrame inside a frame")
	}
	s.inFrame = true
	s.offset = offset
	s.lightmap = lightmap
}

func (s *System) DrawBatch(buffer render.BufferHandle, texture render.TextureHandle, stride int, count int) {
	if !s.inFrame {
		panic("memvideo: DrawBatch outside a frame")
	}
	s.Draws = append(s.Draws, Draw{
		Offset:   s.offset,
		Lightmap: s.lightmap,
		Buffer:   buffer,
		Texture:  texture,
		Stride:   stride,
		Count:    count,
	})
}

func (s *System) EndFrame() {
	s.inFrame = false
}

// Bytes held by all textures and buffers
func (s *System) MemoryUsage() int {
	total := 0
	for _, texture := range s.Textures {
		for _, level := range texture.Levels {
			total += len(level.Pixels)
		}
	}
	for _, buffer := range s.Buffers {
		total += len(buffer)
	}
	return total
}

var _ render.VideoSystem = (*System)(nil)
