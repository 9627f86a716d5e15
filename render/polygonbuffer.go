package render

import (
	"encoding/binary"
	"math"
)

const (
	// 3 floats for position, 2 for texture UV, 2 for lightmap UV
	TexturedVertexSize = 7
	FloatSize          = 4
	VertexStride       = TexturedVertexSize * FloatSize
)

// Flattened vertex data of one texture batch
type PolygonBuffer struct {
	Buffer []float32
}

func NewPolygonBuffer(vertices []TexturedVertex) *PolygonBuffer {
	polygonBuffer := &PolygonBuffer{
		Buffer: make([]float32, len(vertices)*TexturedVertexSize),
	}
	for i, vertex := range vertices {
		bufferOffset := i * TexturedVertexSize
		polygonBuffer.setVertexPosition(bufferOffset, vertex)
		polygonBuffer.setTextureUV(bufferOffset, vertex)
		polygonBuffer.setLightmapUV(bufferOffset, vertex)
	}
	return polygonBuffer
}

func (polygonBuffer *PolygonBuffer) setVertexPosition(bufferOffset int, vertex TexturedVertex) {
	polygonBuffer.Buffer[bufferOffset+0] = vertex.X
	polygonBuffer.Buffer[bufferOffset+1] = vertex.Y
	polygonBuffer.Buffer[bufferOffset+2] = vertex.Z
}

func (polygonBuffer *PolygonBuffer) setTextureUV(bufferOffset int, vertex TexturedVertex) {
	polygonBuffer.Buffer[bufferOffset+3] = vertex.TextureU
	polygonBuffer.Buffer[bufferOffset+4] = vertex.TextureV
}

func (polygonBuffer *PolygonBuffer) setLightmapUV(bufferOffset int, vertex TexturedVertex) {
	polygonBuffer.Buffer[bufferOffset+5] = vertex.LightU
	polygonBuffer.Buffer[bufferOffset+6] = vertex.LightV
}

func (polygonBuffer *PolygonBuffer) VertexCount() int {
	return len(polygonBuffer.Buffer) / TexturedVertexSize
}

// Little endian bytes as uploaded to the GPU
func (polygonBuffer *PolygonBuffer) Bytes() []byte {
	data := make([]byte, len(polygonBuffer.Buffer)*FloatSize)
	for i, f := range polygonBuffer.Buffer {
		binary.LittleEndian.PutUint32(data[i*FloatSize:], math.Float32bits(f))
	}
	return data
}
