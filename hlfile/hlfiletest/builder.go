// Package hlfiletest builds small BSP and WAD3 files in memory for tests.
package hlfiletest

import (
	"bytes"
	"encoding/binary"

	"github.com/samuelyuan/go-halfmapper/hlfile"
)

// MipTex describes a texture to encode in miptex layout.
type MipTex struct {
	Name   string
	Width  int
	Height int
	// Level 0 palette indices; lower levels repeat the first indices. Zero filled when nil.
	Indices []byte
	// 256 RGB entries. Zero filled when nil.
	Palette []byte
	// Write zero mip offsets
	MissingMips bool
}

// EncodeMipTex returns the header, the four index levels, the pad and the palette.
func EncodeMipTex(t MipTex) []byte {
	header := hlfile.MipTexHeader{
		Width:  uint32(t.Width),
		Height: uint32(t.Height),
	}
	copy(header.Name[:], t.Name)

	var levels bytes.Buffer
	offset := uint32(binary.Size(header))
	for level := 0; level < hlfile.MipLevels; level++ {
		size := (t.Width * t.Height) >> (2 * uint(level))
		if !t.MissingMips {
			header.Offsets[level] = offset + uint32(levels.Len())
		}
		indices := make([]byte, size)
		copy(indices, t.Indices)
		levels.Write(indices)
	}
	levels.Write([]byte{0, 0})
	palette := make([]byte, hlfile.PaletteSize)
	copy(palette, t.Palette)
	levels.Write(palette)

	var out bytes.Buffer
	binary.Write(&out, binary.LittleEndian, header)
	out.Write(levels.Bytes())
	return out.Bytes()
}

type WADBuilder struct {
	Magic    string // defaults to WAD3
	Textures []MipTex
	// Extra directory entries with a non-miptex type
	Other []string
}

func (w WADBuilder) Bytes() []byte {
	magic := w.Magic
	if magic == "" {
		magic = "WAD3"
	}

	var body bytes.Buffer
	headerSize := 12
	entries := []hlfile.WADEntry{}
	for _, texture := range w.Textures {
		data := EncodeMipTex(texture)
		entry := hlfile.WADEntry{
			Offset:   uint32(headerSize + body.Len()),
			DiskSize: uint32(len(data)),
			Size:     uint32(len(data)),
			Type:     hlfile.WADTypeMipTex,
		}
		copy(entry.Name[:], texture.Name)
		entries = append(entries, entry)
		body.Write(data)
	}
	for _, name := range w.Other {
		entry := hlfile.WADEntry{
			Offset: uint32(headerSize + body.Len()),
			Type:   0x42,
		}
		copy(entry.Name[:], name)
		entries = append(entries, entry)
	}

	header := hlfile.WADHeader{
		NumLumps:  uint32(len(entries)),
		DirOffset: uint32(headerSize + body.Len()),
	}
	copy(header.Magic[:], magic)

	var out bytes.Buffer
	binary.Write(&out, binary.LittleEndian, header)
	out.Write(body.Bytes())
	binary.Write(&out, binary.LittleEndian, entries)
	return out.Bytes()
}

func (w WADBuilder) Reader() *bytes.Reader {
	return bytes.NewReader(w.Bytes())
}

type BSPBuilder struct {
	Version   int32 // defaults to 30
	Entities  string
	Vertices  []hlfile.Vertex3f
	Edges     []hlfile.Edge
	SurfEdges []int32
	TexInfos  []hlfile.TexInfo
	Faces     []hlfile.Face
	Models    []hlfile.Model
	Lighting  []byte
	Textures  []MipTex
	// Embedded directory slots written as -1 after the textures
	EmptyTextureSlots int
}

func (b BSPBuilder) Bytes() []byte {
	lumps := make([][]byte, hlfile.LumpCount)
	lumps[hlfile.LumpEntities] = append([]byte(b.Entities), 0)
	lumps[hlfile.LumpVertices] = encode(b.Vertices)
	lumps[hlfile.LumpEdges] = encode(b.Edges)
	lumps[hlfile.LumpSurfEdges] = encode(b.SurfEdges)
	lumps[hlfile.LumpTexInfo] = encode(b.TexInfos)
	lumps[hlfile.LumpFaces] = encode(b.Faces)
	lumps[hlfile.LumpModels] = encode(b.Models)
	lumps[hlfile.LumpLighting] = b.Lighting
	lumps[hlfile.LumpTextures] = b.textureLump()

	header := hlfile.Header{Version: b.Version}
	if header.Version == 0 {
		header.Version = hlfile.BSPVersion
	}

	var body bytes.Buffer
	headerSize := binary.Size(header)
	for i, data := range lumps {
		header.Lumps[i] = hlfile.Lump{
			Offset: int32(headerSize + body.Len()),
			Length: int32(len(data)),
		}
		body.Write(data)
		for body.Len()%4 != 0 {
			body.WriteByte(0)
		}
	}

	var out bytes.Buffer
	binary.Write(&out, binary.LittleEndian, header)
	out.Write(body.Bytes())
	return out.Bytes()
}

func (b BSPBuilder) Reader() *bytes.Reader {
	return bytes.NewReader(b.Bytes())
}

// Count, relative offsets, then the miptex blobs
func (b BSPBuilder) textureLump() []byte {
	if len(b.Textures) == 0 && b.EmptyTextureSlots == 0 {
		return nil
	}
	count := len(b.Textures) + b.EmptyTextureSlots
	offsets := make([]int32, count)
	var blobs bytes.Buffer
	start := 4 + 4*count
	for i, texture := range b.Textures {
		offsets[i] = int32(start + blobs.Len())
		blobs.Write(EncodeMipTex(texture))
	}
	for i := len(b.Textures); i < count; i++ {
		offsets[i] = -1
	}

	var out bytes.Buffer
	binary.Write(&out, binary.LittleEndian, uint32(count))
	binary.Write(&out, binary.LittleEndian, offsets)
	out.Write(blobs.Bytes())
	return out.Bytes()
}

func encode(data interface{}) []byte {
	var out bytes.Buffer
	binary.Write(&out, binary.LittleEndian, data)
	return out.Bytes()
}

// Quad appends a four sided face on the z=0 plane spanning (x,y) to (x+size,y+size)
// and returns its face index.
func (b *BSPBuilder) Quad(x float32, y float32, size float32, texInfo uint16, lightmapOffset int32) int {
	return b.Polygon([]hlfile.Vertex3f{
		{X: x, Y: y},
		{X: x + size, Y: y},
		{X: x + size, Y: y + size},
		{X: x, Y: y + size},
	}, texInfo, lightmapOffset)
}

// Polygon appends a face through points, one edge per point, and returns its face index.
func (b *BSPBuilder) Polygon(points []hlfile.Vertex3f, texInfo uint16, lightmapOffset int32) int {
	base := uint16(len(b.Vertices))
	b.Vertices = append(b.Vertices, points...)
	if len(b.Edges) == 0 {
		// edge 0 is never referenced by a surfedge
		b.Edges = append(b.Edges, hlfile.Edge{})
	}
	n := uint16(len(points))
	firstEdge := uint32(len(b.SurfEdges))
	for i := uint16(0); i < n; i++ {
		b.SurfEdges = append(b.SurfEdges, int32(len(b.Edges)))
		b.Edges = append(b.Edges, hlfile.Edge{V1: base + i, V2: base + (i+1)%n})
	}
	b.Faces = append(b.Faces, hlfile.Face{
		FirstEdge:      firstEdge,
		NumEdges:       n,
		TextureInfo:    texInfo,
		LightmapOffset: lightmapOffset,
	})
	return len(b.Faces) - 1
}

// PlanarTexInfo projects X to S and Y to T, one texel per world unit.
func PlanarTexInfo(mipTex uint32) hlfile.TexInfo {
	return hlfile.TexInfo{
		S:      [3]float32{1, 0, 0},
		T:      [3]float32{0, 1, 0},
		MipTex: mipTex,
	}
}
