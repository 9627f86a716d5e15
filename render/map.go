package render

import (
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/samuelyuan/go-halfmapper/hlfile"
)

// Tool textures that are never drawn
var reservedTextures = map[string]bool{
	"aaatrigger": true,
	"origin":     true,
	"clip":       true,
	"sky":        true,
}

func IsReservedTexture(name string) bool {
	return reservedTextures[name] || strings.HasPrefix(name, "{")
}

// All triangles of a map that share one texture
type TextureBatch struct {
	Name     string
	Texture  MapTexture
	Vertices []TexturedVertex
	Buffer   BufferHandle
}

func (batch *TextureBatch) Triangles() int {
	return len(batch.Vertices) / 3
}

type Uploader interface {
	TextureUploader
	BufferUploader
}

type MapOptions struct {
	ID            string
	ChapterOffset mgl32.Vec3
	// Optional fixup for one of this map's landmarks
	Correction *hlfile.LandmarkCorrection
}

type Map struct {
	ID            string
	ChapterOffset mgl32.Vec3
	// Landmark offset, set once the map is stitched into the world
	Offset mgl32.Vec3

	Entities  []hlfile.Entity
	Landmarks []hlfile.Landmark
	// Faces hidden by triggers and other special entities
	Suppressed    map[int]bool
	VerticesPrime []hlfile.Vertex3f

	Rects    []*LightmapRect
	Atlas    *LightmapAtlas
	Lightmap TextureHandle

	Batches        []*TextureBatch // sorted by texture name
	TotalTriangles int
}

type Builder struct {
	Textures *TextureTable
	Video    Uploader
	Log      zerolog.Logger
}

// BuildMap decodes a BSP file, packs its lightmaps and uploads its geometry.
func (b *Builder) BuildMap(r io.ReaderAt, opts MapOptions) (*Map, error) {
	log := b.Log.With().Str("map", opts.ID).Logger()

	mapData, err := hlfile.LoadBSP(r)
	if err != nil {
		return nil, errors.Wrapf(err, "map %s", opts.ID)
	}
	info := hlfile.ParseEntities(mapData.Entities, opts.Correction)
	textureNames := b.Textures.LoadTextures(r, mapData.TextureOffsets)

	m := &Map{
		ID:            opts.ID,
		ChapterOffset: opts.ChapterOffset,
		Entities:      info.Entities,
		Landmarks:     info.Landmarks,
		VerticesPrime: mapData.VerticesPrime,
	}
	m.Suppressed = suppressedFaces(mapData, info.SuppressedModels, log)
	m.assemble(mapData, textureNames, b.Textures, log)
	m.upload(b.Video)

	log.Info().
		Int("faces", len(mapData.Faces)).
		Int("suppressed", len(m.Suppressed)).
		Int("lightmaps", len(m.Rects)).
		Int("triangles", m.TotalTriangles).
		Msg("Map loaded")
	return m, nil
}

// Every face of every model referenced as "*N" by a special entity
func suppressedFaces(mapData *hlfile.MapData, modelRefs []string, log zerolog.Logger) map[int]bool {
	suppressed := make(map[int]bool)
	for _, ref := range modelRefs {
		modelIdx, err := strconv.Atoi(strings.TrimPrefix(ref, "*"))
		if err != nil || modelIdx < 0 || modelIdx >= len(mapData.Models) {
			log.Warn().Str("model", ref).Int("models", len(mapData.Models)).Msg("Entity references unknown model")
			continue
		}
		model := mapData.Models[modelIdx]
		for face := model.FirstFace; face < model.FirstFace+model.NumFaces; face++ {
			if face >= 0 && int(face) < len(mapData.Faces) {
				suppressed[int(face)] = true
			}
		}
	}
	return suppressed
}

type faceGeometry struct {
	vertices []hlfile.Vertex3f
	texInfo  hlfile.TexInfo
	dims     LightmapDimensions
	texture  MapTexture
	rect     *LightmapRect
}

func (m *Map) assemble(mapData *hlfile.MapData, textureNames []string, textures TextureLookup, log zerolog.Logger) {
	faces := make([]faceGeometry, 0, len(mapData.Faces))
	for i, face := range mapData.Faces {
		if m.Suppressed[i] {
			continue
		}

		texInfo := mapData.TexInfos[face.TextureInfo]
		if int(texInfo.MipTex) >= len(textureNames) || textureNames[texInfo.MipTex] == "" {
			log.Debug().Int("face", i).Uint32("miptex", texInfo.MipTex).Msg("Face has no texture")
			continue
		}
		name := textureNames[texInfo.MipTex]
		if IsReservedTexture(name) {
			continue
		}
		texture, ok := textures.Lookup(name)
		if !ok {
			log.Debug().Int("face", i).Str("texture", name).Msg("Face texture not loaded")
			continue
		}

		vertices := faceVertices(mapData, face)
		if len(vertices) == 0 {
			continue
		}
		dims := getLightmapDimensions(vertices, texInfo)
		if dims.Oversized() {
			continue
		}

		faces = append(faces, faceGeometry{
			vertices: vertices,
			texInfo:  texInfo,
			dims:     dims,
			texture:  texture,
			rect: &LightmapRect{
				Face:   i,
				Width:  dims.Width,
				Height: dims.Height,
				Offset: face.LightmapOffset,
			},
		})
	}

	m.Rects = make([]*LightmapRect, len(faces))
	for i := range faces {
		m.Rects[i] = faces[i].rect
	}
	m.Atlas = NewLightmapAtlas()
	if err := m.Atlas.Pack(m.Rects, mapData.Lighting); err != nil {
		log.Warn().Err(err).Msg("Lightmap atlas too small")
	}

	batches := make(map[string]*TextureBatch)
	for _, face := range faces {
		batch, ok := batches[face.texture.Name]
		if !ok {
			batch = &TextureBatch{Name: face.texture.Name, Texture: face.texture}
			batches[face.texture.Name] = batch
		}
		batch.Vertices = append(batch.Vertices, newSurface(face.vertices, face.texInfo, face.dims, face.rect, face.texture)...)
	}

	names := make([]string, 0, len(batches))
	for name := range batches {
		names = append(names, name)
	}
	sort.Strings(names)

	m.Batches = make([]*TextureBatch, len(names))
	m.TotalTriangles = 0
	for i, name := range names {
		m.Batches[i] = batches[name]
		m.TotalTriangles += batches[name].Triangles()
	}
}

func (m *Map) upload(video Uploader) {
	m.Lightmap = m.Atlas.Upload(video)

	handles := video.CreateBuffers(len(m.Batches))
	for i, batch := range m.Batches {
		batch.Buffer = handles[i]
		video.UploadBuffer(batch.Buffer, NewPolygonBuffer(batch.Vertices).Bytes())
	}
}

// Translation of the map in the stitched world
func (m *Map) Translation() mgl32.Vec3 {
	return m.Offset.Add(m.ChapterOffset)
}

// Draw issues one batch per texture, translated into the world.
func (m *Map) Draw(drawer BatchDrawer) {
	drawer.BeginFrame(m.Translation(), m.Lightmap)
	for _, batch := range m.Batches {
		if len(batch.Vertices) == 0 || IsReservedTexture(batch.Name) {
			continue
		}
		drawer.DrawBatch(batch.Buffer, batch.Texture.Handle, VertexStride, len(batch.Vertices))
	}
	drawer.EndFrame()
}
