package render_test

import (
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samuelyuan/go-halfmapper/hlfile"
	"github.com/samuelyuan/go-halfmapper/hlfile/hlfiletest"
	"github.com/samuelyuan/go-halfmapper/memvideo"
	"github.com/samuelyuan/go-halfmapper/render"
)

func newBuilder() (*render.Builder, *memvideo.System) {
	video := memvideo.New()
	return &render.Builder{
		Textures: render.NewTextureTable(video, zerolog.Nop()),
		Video:    video,
		Log:      zerolog.Nop(),
	}, video
}

func TestBuildMapSingleTriangle(t *testing.T) {
	bsp := hlfiletest.BSPBuilder{
		TexInfos: []hlfile.TexInfo{hlfiletest.PlanarTexInfo(0)},
		Textures: []hlfiletest.MipTex{{Name: "WALL1", Width: 64, Height: 64}},
		Lighting: make([]byte, 4*4*3),
	}
	bsp.Polygon([]hlfile.Vertex3f{{X: 0, Y: 0}, {X: 48, Y: 0}, {X: 0, Y: 48}}, 0, 0)

	builder, video := newBuilder()
	m, err := builder.BuildMap(bsp.Reader(), render.MapOptions{ID: "test"})
	require.NoError(t, err)

	require.Len(t, m.Rects, 1)
	rect := m.Rects[0]
	assert.Equal(t, 4, rect.Width)
	assert.Equal(t, 4, rect.Height)
	assert.True(t, rect.Placed)

	require.Len(t, m.Batches, 1)
	batch := m.Batches[0]
	assert.Equal(t, "WALL1", batch.Name)
	assert.Equal(t, 1, m.TotalTriangles)
	require.Len(t, batch.Vertices, 3)

	// texture space is x,y; the lightmap is centered on (24,24)
	for i, source := range []hlfile.Vertex3f{{X: 0, Y: 0}, {X: 48, Y: 0}, {X: 0, Y: 48}} {
		vertex := batch.Vertices[i]
		assert.Equal(t, source.X/64, vertex.TextureU)
		assert.Equal(t, source.Y/64, vertex.TextureV)
		assert.Equal(t, (2+(source.X-24)/16+float32(rect.X))/render.AtlasSize, vertex.LightU)
		assert.Equal(t, (2+(source.Y-24)/16+float32(rect.Y))/render.AtlasSize, vertex.LightV)
		assert.Equal(t, source.FixHand(), hlfile.Vertex3f{X: vertex.X, Y: vertex.Y, Z: vertex.Z})
	}

	lightmap := video.Textures[m.Lightmap]
	require.NotNil(t, lightmap)
	assert.Equal(t, render.LightmapTexture, lightmap.Kind)
	assert.Equal(t, render.AtlasSize, lightmap.Levels[0].Width)
	assert.Len(t, video.Buffers[batch.Buffer], 3*render.VertexStride)
}

func TestBuildMapSuppression(t *testing.T) {
	bsp := hlfiletest.BSPBuilder{
		Entities: "{\n\"classname\" \"trigger_changelevel\"\n\"model\" \"*1\"\n\"landmark\" \"lm\"\n}\n",
		TexInfos: []hlfile.TexInfo{hlfiletest.PlanarTexInfo(0)},
		Textures: []hlfiletest.MipTex{{Name: "WALL1", Width: 16, Height: 16}},
	}
	bsp.Quad(0, 0, 32, 0, -1)
	bsp.Quad(64, 0, 32, 0, -1)
	bsp.Quad(128, 0, 32, 0, -1)
	bsp.Models = []hlfile.Model{
		{FirstFace: 0, NumFaces: 1},
		{FirstFace: 1, NumFaces: 2},
	}

	builder, _ := newBuilder()
	m, err := builder.BuildMap(bsp.Reader(), render.MapOptions{ID: "test"})
	require.NoError(t, err)

	assert.Equal(t, map[int]bool{1: true, 2: true}, m.Suppressed)
	require.Len(t, m.Rects, 1)
	assert.Equal(t, 0, m.Rects[0].Face)
	assert.Equal(t, 2, m.TotalTriangles)
	for _, vertex := range m.Batches[0].Vertices {
		assert.LessOrEqual(t, -vertex.X, float32(32))
	}
}

func TestBuildMapReservedTextures(t *testing.T) {
	names := []string{"sky", "clip", "origin", "aaatrigger", "{fence", "WALL1"}
	bsp := hlfiletest.BSPBuilder{}
	for i, name := range names {
		bsp.Textures = append(bsp.Textures, hlfiletest.MipTex{Name: name, Width: 16, Height: 16})
		bsp.TexInfos = append(bsp.TexInfos, hlfiletest.PlanarTexInfo(uint32(i)))
		bsp.Quad(float32(i*64), 0, 32, uint16(i), -1)
	}

	builder, _ := newBuilder()
	m, err := builder.BuildMap(bsp.Reader(), render.MapOptions{ID: "test"})
	require.NoError(t, err)

	require.Len(t, m.Batches, 1)
	assert.Equal(t, "WALL1", m.Batches[0].Name)
	assert.Equal(t, 2, m.TotalTriangles)
}

func TestBuildMapLightmapExtentBoundary(t *testing.T) {
	bsp := hlfiletest.BSPBuilder{
		TexInfos: []hlfile.TexInfo{hlfiletest.PlanarTexInfo(0)},
		Textures: []hlfiletest.MipTex{{Name: "WALL1", Width: 16, Height: 16}},
	}
	included := bsp.Quad(0, 0, 256, 0, -1)
	bsp.Quad(0, 512, 272, 0, -1)

	builder, _ := newBuilder()
	m, err := builder.BuildMap(bsp.Reader(), render.MapOptions{ID: "test"})
	require.NoError(t, err)

	require.Len(t, m.Rects, 1)
	assert.Equal(t, included, m.Rects[0].Face)
	assert.Equal(t, 17, m.Rects[0].Width)
	assert.Equal(t, 2, m.TotalTriangles)
}

func TestBuildMapDegenerateAndUntextured(t *testing.T) {
	bsp := hlfiletest.BSPBuilder{
		TexInfos: []hlfile.TexInfo{hlfiletest.PlanarTexInfo(0), hlfiletest.PlanarTexInfo(1), hlfiletest.PlanarTexInfo(7)},
		Textures: []hlfiletest.MipTex{{Name: "WALL1", Width: 16, Height: 16}},
		// slot 1 is empty
		EmptyTextureSlots: 1,
	}
	bsp.Polygon([]hlfile.Vertex3f{{X: 0}, {X: 16}}, 0, -1)
	bsp.Quad(0, 0, 16, 1, -1)
	bsp.Quad(0, 0, 16, 2, -1)
	// no edges, starting one past the last surfedge
	bsp.Faces = append(bsp.Faces, hlfile.Face{FirstEdge: uint32(len(bsp.SurfEdges))})

	builder, _ := newBuilder()
	m, err := builder.BuildMap(bsp.Reader(), render.MapOptions{ID: "test"})
	require.NoError(t, err)
	assert.Empty(t, m.Batches)
	assert.Zero(t, m.TotalTriangles)
}

func TestBuildMapBadVersion(t *testing.T) {
	builder, video := newBuilder()
	_, err := builder.BuildMap(hlfiletest.BSPBuilder{Version: 29}.Reader(), render.MapOptions{ID: "old"})
	require.Error(t, err)
	assert.True(t, hlfile.IsFormatError(err))
	assert.Empty(t, video.Textures)
}

func TestMapDraw(t *testing.T) {
	bsp := hlfiletest.BSPBuilder{
		TexInfos: []hlfile.TexInfo{hlfiletest.PlanarTexInfo(0), hlfiletest.PlanarTexInfo(1)},
		Textures: []hlfiletest.MipTex{{Name: "B", Width: 16, Height: 16}, {Name: "A", Width: 16, Height: 16}},
	}
	bsp.Quad(0, 0, 16, 0, -1)
	bsp.Quad(0, 32, 16, 1, -1)
	bsp.Quad(0, 64, 16, 1, -1)

	builder, video := newBuilder()
	m, err := builder.BuildMap(bsp.Reader(), render.MapOptions{ID: "test", ChapterOffset: mgl32.Vec3{0, 100, 0}})
	require.NoError(t, err)
	m.Offset = mgl32.Vec3{1, 2, 3}

	m.Draw(video)
	require.Len(t, video.Draws, 2)
	a, _ := builder.Textures.Lookup("A")
	assert.Equal(t, memvideo.Draw{
		Offset:   mgl32.Vec3{1, 102, 3},
		Lightmap: m.Lightmap,
		Buffer:   m.Batches[0].Buffer,
		Texture:  a.Handle,
		Stride:   render.VertexStride,
		Count:    12,
	}, video.Draws[0])
	assert.Equal(t, 6, video.Draws[1].Count)
}
