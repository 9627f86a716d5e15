package render

import (
	"github.com/chewxy/math32"

	"github.com/samuelyuan/go-halfmapper/hlfile"
)

type TexturedVertex struct {
	// Position coordinates, already converted with FixHand
	X float32
	Y float32
	Z float32

	// Texture coordinates
	TextureU float32
	TextureV float32

	// Lightmap coordinates
	LightU float32
	LightV float32
}

// Texture space bounds of a face and the lightmap size they imply
type LightmapDimensions struct {
	Width  int
	Height int
	MinU   float32
	MinV   float32
	MaxU   float32
	MaxV   float32
}

func (d LightmapDimensions) Oversized() bool {
	return d.Width > MaxLightmapExtent || d.Height > MaxLightmapExtent
}

// Fan triangulation (v0, vk, vk+1) of a face. Faces with fewer than 3 edges give nothing.
func faceVertices(mapData *hlfile.MapData, face hlfile.Face) []hlfile.Vertex3f {
	faceVertices := make([]hlfile.Vertex3f, 0)
	if face.NumEdges < 3 {
		return faceVertices
	}
	first := int(face.FirstEdge)

	v0 := mapData.VerticesPrime[first]
	for k := 1; k+1 < int(face.NumEdges); k++ {
		v1 := mapData.VerticesPrime[first+k]
		v2 := mapData.VerticesPrime[first+k+1]
		faceVertices = append(faceVertices, v0, v1, v2)
	}
	return faceVertices
}

// Get the width and height of the lightmap
func getLightmapDimensions(faceVertices []hlfile.Vertex3f, texInfo hlfile.TexInfo) LightmapDimensions {
	dims := LightmapDimensions{
		MinU: 99999,
		MinV: 99999,
		MaxU: -99999,
		MaxV: -99999,
	}
	for _, vertex := range faceVertices {
		u, v := getTextureUV(vertex, texInfo)
		dims.MinU = math32.Min(dims.MinU, u)
		dims.MinV = math32.Min(dims.MinV, v)
		dims.MaxU = math32.Max(dims.MaxU, u)
		dims.MaxV = math32.Max(dims.MaxV, v)
	}
	dims.Width = lightmapExtent(dims.MinU, dims.MaxU)
	dims.Height = lightmapExtent(dims.MinV, dims.MaxV)
	return dims
}

func lightmapExtent(min float32, max float32) int {
	return int(math32.Ceil(max/LuxelSize) - math32.Floor(min/LuxelSize) + 1)
}

func getTextureUV(vtx hlfile.Vertex3f, tex hlfile.TexInfo) (float32, float32) {
	u := tex.SShift + vtx.X*tex.S[0] + vtx.Y*tex.S[1] + vtx.Z*tex.S[2]
	v := tex.TShift + vtx.X*tex.T[0] + vtx.Y*tex.T[1] + vtx.Z*tex.T[2]
	return u, v
}

// Build the render vertices of one face. The lightmap coordinates are centered
// on the face's rectangle at its atlas placement.
func newSurface(
	faceVertices []hlfile.Vertex3f,
	texInfo hlfile.TexInfo,
	dims LightmapDimensions,
	rect *LightmapRect,
	texture MapTexture,
) []TexturedVertex {
	midPolyU := (dims.MinU + dims.MaxU) / 2
	midPolyV := (dims.MinV + dims.MaxV) / 2
	midTexU := float32(dims.Width) / 2
	midTexV := float32(dims.Height) / 2

	vertices := make([]TexturedVertex, len(faceVertices))
	for i, vertex := range faceVertices {
		u, v := getTextureUV(vertex, texInfo)
		position := vertex.FixHand()

		lightU := midTexU + (u-midPolyU)/LuxelSize + float32(rect.X)
		lightV := midTexV + (v-midPolyV)/LuxelSize + float32(rect.Y)

		vertices[i] = TexturedVertex{
			X:        position.X,
			Y:        position.Y,
			Z:        position.Z,
			TextureU: u / float32(texture.Width),
			TextureV: v / float32(texture.Height),
			LightU:   lightU / AtlasSize,
			LightV:   lightV / AtlasSize,
		}
	}
	return vertices
}
