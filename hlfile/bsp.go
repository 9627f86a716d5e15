package hlfile

import (
	"encoding/binary"
	"io"
	"os"

	"github.com/pkg/errors"
)

const BSPVersion = 30

const (
	LumpEntities = iota
	LumpPlanes
	LumpTextures
	LumpVertices
	LumpVisibility
	LumpNodes
	LumpTexInfo
	LumpFaces
	LumpLighting
	LumpClipNodes
	LumpLeaves
	LumpMarkSurfaces
	LumpEdges
	LumpSurfEdges
	LumpModels
	LumpCount
)

var lumpNames = [LumpCount]string{
	"entities", "planes", "textures", "vertices", "visibility", "nodes", "texinfo", "faces",
	"lighting", "clipnodes", "leaves", "marksurfaces", "edges", "surfedges", "models",
}

type Header struct {
	Version int32           // version of the BSP format (30)
	Lumps   [LumpCount]Lump // directory of the lumps
}

type Lump struct {
	Offset int32 // offset (in bytes) of the data from the beginning of the file
	Length int32 // length (in bytes) of the data
}

// Each edge is stored as a pair of indices into the vertex array
type Edge struct {
	V1 uint16
	V2 uint16
}

type Face struct {
	Plane     uint16 // index of the plane the face is parallel to
	PlaneSide uint16 // set if the normal is parallel to the plane normal

	FirstEdge uint32 // index of the first surfedge
	NumEdges  uint16 // number of consecutive surfedges

	TextureInfo uint16 // index of the texture info structure

	LightmapStyles [4]uint8 // lighting styles for the lightmaps
	LightmapOffset int32    // offset of the lightmap (in bytes) in the lighting lump, -1 if unlit
}

type TexInfo struct {
	S      [3]float32
	SShift float32
	T      [3]float32
	TShift float32
	MipTex uint32 // index into the embedded texture directory
	Flags  uint32
}

type Model struct {
	Mins      [3]float32
	Maxs      [3]float32
	Origin    [3]float32
	HeadNodes [4]int32
	VisLeafs  int32
	FirstFace int32
	NumFaces  int32
}

type MapData struct {
	Entities []byte
	Models   []Model
	Vertices []Vertex3f
	Edges    []Edge
	// Signed edge references; the sign selects the edge's start vertex.
	SurfEdges []int32
	// One vertex per surfedge, so a face's vertices are VerticesPrime[FirstEdge:FirstEdge+NumEdges].
	VerticesPrime []Vertex3f
	Lighting      []uint8
	// Absolute file offsets of the embedded miptex headers, -1 for an empty slot.
	TextureOffsets []int64
	TexInfos       []TexInfo
	Faces          []Face
}

// Read header to verify the file is valid
// Parse the lumps needed for static geometry and lighting
func LoadBSP(r io.ReaderAt) (*MapData, error) {
	header := Header{}
	headerReader := io.NewSectionReader(r, 0, int64(binary.Size(header)))
	if err := binary.Read(headerReader, binary.LittleEndian, &header); err != nil {
		return nil, formatErrorf("BSP", "short header: %v", err)
	}

	if header.Version != BSPVersion {
		return nil, formatErrorf("BSP", "wrong version %v", header.Version)
	}
	size, sized := readerSize(r)
	for i, lump := range header.Lumps {
		if lump.Offset < 0 || lump.Length < 0 {
			return nil, formatErrorf("BSP", "lump %s has negative bounds", lumpNames[i])
		}
		if sized && int64(lump.Offset)+int64(lump.Length) > size {
			return nil, formatErrorf("BSP", "lump %s [%d,+%d) exceeds file size %d", lumpNames[i], lump.Offset, lump.Length, size)
		}
	}

	entities, err := loadLump[byte](r, header.Lumps[LumpEntities])
	if err != nil {
		return nil, errors.Wrap(err, "failed to load entities")
	}
	models, err := loadLump[Model](r, header.Lumps[LumpModels])
	if err != nil {
		return nil, errors.Wrap(err, "failed to load models")
	}
	vertices, err := loadLump[Vertex3f](r, header.Lumps[LumpVertices])
	if err != nil {
		return nil, errors.Wrap(err, "failed to load vertices")
	}
	edges, err := loadLump[Edge](r, header.Lumps[LumpEdges])
	if err != nil {
		return nil, errors.Wrap(err, "failed to load edges")
	}
	surfEdges, err := loadLump[int32](r, header.Lumps[LumpSurfEdges])
	if err != nil {
		return nil, errors.Wrap(err, "failed to load surfedges")
	}
	verticesPrime, err := resolveSurfEdges(vertices, edges, surfEdges)
	if err != nil {
		return nil, err
	}
	lighting, err := loadLump[uint8](r, header.Lumps[LumpLighting])
	if err != nil {
		return nil, errors.Wrap(err, "failed to load lighting")
	}
	textureOffsets, err := loadTextureOffsets(r, header.Lumps[LumpTextures])
	if err != nil {
		return nil, errors.Wrap(err, "failed to load texture directory")
	}
	texInfos, err := loadLump[TexInfo](r, header.Lumps[LumpTexInfo])
	if err != nil {
		return nil, errors.Wrap(err, "failed to load texture info")
	}
	faces, err := loadLump[Face](r, header.Lumps[LumpFaces])
	if err != nil {
		return nil, errors.Wrap(err, "failed to load faces")
	}
	if err := validateFaces(faces, texInfos, len(verticesPrime)); err != nil {
		return nil, err
	}

	logger.Debug().
		Int("entityBytes", len(entities)).
		Int("models", len(models)).
		Int("vertices", len(vertices)).
		Int("edges", len(edges)).
		Int("surfedges", len(surfEdges)).
		Int("lightingBytes", len(lighting)).
		Int("textures", len(textureOffsets)).
		Int("texinfos", len(texInfos)).
		Int("faces", len(faces)).
		Msg("BSP lumps loaded")

	mapData := &MapData{
		Entities:       entities,
		Models:         models,
		Vertices:       vertices,
		Edges:          edges,
		SurfEdges:      surfEdges,
		VerticesPrime:  verticesPrime,
		Lighting:       lighting,
		TextureOffsets: textureOffsets,
		TexInfos:       texInfos,
		Faces:          faces,
	}
	return mapData, nil
}

// Size of readers that know it: bytes.Reader, io.SectionReader and os.File
func readerSize(r io.ReaderAt) (int64, bool) {
	switch sized := r.(type) {
	case interface{ Size() int64 }:
		return sized.Size(), true
	case *os.File:
		info, err := sized.Stat()
		if err != nil {
			return 0, false
		}
		return info.Size(), true
	}
	return 0, false
}

// Load every fixed-size record of a lump. A trailing partial record is ignored.
func loadLump[T any](r io.ReaderAt, lump Lump) ([]T, error) {
	var item T
	size := binary.Size(item)
	num := int(lump.Length) / size

	data := make([]T, num)
	if num == 0 {
		return data, nil
	}
	reader := io.NewSectionReader(r, int64(lump.Offset), int64(lump.Length))
	if err := binary.Read(reader, binary.LittleEndian, data); err != nil {
		return nil, formatErrorf("BSP", "lump at %d is truncated: %v", lump.Offset, err)
	}
	return data, nil
}

// The texture lump starts with a count followed by offsets relative to the lump.
func loadTextureOffsets(r io.ReaderAt, lump Lump) ([]int64, error) {
	if lump.Length == 0 {
		return nil, nil
	}
	reader := io.NewSectionReader(r, int64(lump.Offset), int64(lump.Length))

	count := uint32(0)
	if err := binary.Read(reader, binary.LittleEndian, &count); err != nil {
		return nil, formatErrorf("BSP", "texture directory is truncated: %v", err)
	}
	if int64(count)*4+4 > int64(lump.Length) {
		return nil, formatErrorf("BSP", "texture directory claims %d entries in %d bytes", count, lump.Length)
	}

	relative := make([]int32, count)
	if err := binary.Read(reader, binary.LittleEndian, relative); err != nil {
		return nil, formatErrorf("BSP", "texture directory is truncated: %v", err)
	}

	offsets := make([]int64, count)
	for i, offset := range relative {
		if offset < 0 {
			offsets[i] = -1
			continue
		}
		offsets[i] = int64(lump.Offset) + int64(offset)
	}
	return offsets, nil
}

// Follow each surfedge to the vertex that starts it
func resolveSurfEdges(vertices []Vertex3f, edges []Edge, surfEdges []int32) ([]Vertex3f, error) {
	verticesPrime := make([]Vertex3f, len(surfEdges))
	for i, surfEdge := range surfEdges {
		edgeIdx := int(surfEdge)
		if edgeIdx < 0 {
			edgeIdx = -edgeIdx
		}
		if edgeIdx >= len(edges) {
			return nil, formatErrorf("BSP", "surfedge %d references edge %d of %d", i, edgeIdx, len(edges))
		}

		// Positive index starts at the edge's first vertex, negative at its second
		vertexIdx := int(edges[edgeIdx].V1)
		if surfEdge < 0 {
			vertexIdx = int(edges[edgeIdx].V2)
		}
		if vertexIdx >= len(vertices) {
			return nil, formatErrorf("BSP", "edge %d references vertex %d of %d", edgeIdx, vertexIdx, len(vertices))
		}
		verticesPrime[i] = vertices[vertexIdx]
	}
	return verticesPrime, nil
}

func validateFaces(faces []Face, texInfos []TexInfo, numSurfEdges int) error {
	for i, face := range faces {
		if int(face.TextureInfo) >= len(texInfos) {
			return formatErrorf("BSP", "face %d references texinfo %d of %d", i, face.TextureInfo, len(texInfos))
		}
		if int64(face.FirstEdge)+int64(face.NumEdges) > int64(numSurfEdges) {
			return formatErrorf("BSP", "face %d surfedges [%d,+%d) exceed %d", i, face.FirstEdge, face.NumEdges, numSurfEdges)
		}
	}
	return nil
}
