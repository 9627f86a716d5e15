package render

import "github.com/go-gl/mathgl/mgl32"

type TextureKind int

const (
	// Mipmapped RGBA material
	MaterialTexture TextureKind = iota
	// Single level RGB lightmap atlas
	LightmapTexture
)

type TextureHandle uint32

type BufferHandle uint32

type TextureUploader interface {
	CreateTexture(kind TextureKind) TextureHandle
	// Upload one mip level. Material pixels are RGBA, lightmap pixels RGB.
	UploadTexture(handle TextureHandle, level int, width int, height int, pixels []uint8, kind TextureKind)
}

type BufferUploader interface {
	CreateBuffers(n int) []BufferHandle
	UploadBuffer(handle BufferHandle, data []byte)
}

type BatchDrawer interface {
	// Start drawing one map translated by offset and lit by the lightmap
	BeginFrame(offset mgl32.Vec3, lightmap TextureHandle)
	DrawBatch(buffer BufferHandle, texture TextureHandle, stride int, count int)
	EndFrame()
}

// VideoSystem is everything the loader needs from the graphics backend.
type VideoSystem interface {
	TextureUploader
	BufferUploader
	BatchDrawer
}
