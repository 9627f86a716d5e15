package render

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/samuelyuan/go-halfmapper/hlfile"
)

var planar = hlfile.TexInfo{
	S: [3]float32{1, 0, 0},
	T: [3]float32{0, 1, 0},
}

func square(size float32) []hlfile.Vertex3f {
	return []hlfile.Vertex3f{
		{X: 0, Y: 0}, {X: size, Y: 0}, {X: size, Y: size},
		{X: 0, Y: 0}, {X: size, Y: size}, {X: 0, Y: size},
	}
}

func TestLightmapDimensions(t *testing.T) {
	tests := []struct {
		name      string
		size      float32
		extent    int
		oversized bool
	}{
		{"one luxel", 0, 1, false},
		{"exact multiple", 48, 4, false},
		{"partial luxel", 50, 5, false},
		{"largest", 256, 17, false},
		{"too large", 272, 18, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dims := getLightmapDimensions(square(tt.size), planar)
			assert.Equal(t, tt.extent, dims.Width)
			assert.Equal(t, tt.extent, dims.Height)
			assert.Equal(t, tt.oversized, dims.Oversized())
		})
	}
}

func TestLightmapDimensionsShifted(t *testing.T) {
	texInfo := planar
	texInfo.SShift = -8
	texInfo.TShift = 8
	dims := getLightmapDimensions(square(32), texInfo)
	// u in [-8,24]: ceil(1.5) - floor(-0.5) + 1
	assert.Equal(t, 4, dims.Width)
	// v in [8,40]: ceil(2.5) - floor(0.5) + 1
	assert.Equal(t, 4, dims.Height)
	assert.Equal(t, float32(-8), dims.MinU)
	assert.Equal(t, float32(40), dims.MaxV)
}

func TestFaceVerticesFan(t *testing.T) {
	mapData := &hlfile.MapData{
		VerticesPrime: []hlfile.Vertex3f{{X: 9}, {X: 0}, {X: 1}, {X: 2}, {X: 3}, {X: 4}},
	}
	verts := faceVertices(mapData, hlfile.Face{FirstEdge: 1, NumEdges: 5})
	assert.Equal(t, []hlfile.Vertex3f{
		{X: 0}, {X: 1}, {X: 2},
		{X: 0}, {X: 2}, {X: 3},
		{X: 0}, {X: 3}, {X: 4},
	}, verts)

	assert.Empty(t, faceVertices(mapData, hlfile.Face{FirstEdge: 0, NumEdges: 2}))
}

func TestNewSurface(t *testing.T) {
	verts := []hlfile.Vertex3f{{X: 0, Y: 0, Z: 5}, {X: 48, Y: 0, Z: 5}, {X: 0, Y: 48, Z: 5}}
	dims := getLightmapDimensions(verts, planar)
	rect := &LightmapRect{Width: dims.Width, Height: dims.Height, X: 10, Y: 20}
	texture := MapTexture{Width: 64, Height: 32}

	vertices := newSurface(verts, planar, dims, rect, texture)
	assert.Equal(t, TexturedVertex{
		X: -48, Y: 5, Z: 0,
		TextureU: 0.75, TextureV: 0,
		LightU: (2 + 1.5 + 10) / AtlasSize,
		LightV: (2 - 1.5 + 20) / AtlasSize,
	}, vertices[1])
	assert.Equal(t, float32(1.5), vertices[2].TextureV)
}
