package hlfile

import (
	"encoding/binary"
	"image"
	"io"
)

const (
	MipLevels = 4

	// Palette of 256 RGB colors stored after the smallest mip.
	PaletteSize = 256 * 3

	maxTextureSize = 4096
)

// Header shared by WAD3 entries and textures embedded in a BSP file.
// Offsets are relative to the start of this header.
type MipTexHeader struct {
	Name    [16]byte
	Width   uint32
	Height  uint32
	Offsets [MipLevels]uint32
}

func (h MipTexHeader) TextureName() string {
	return cString(h.Name[:])
}

// One decoded mip level, 4 bytes per pixel.
type MipLevel struct {
	Width  int
	Height int
	Pixels []uint8
}

func (level MipLevel) Image() *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, level.Width, level.Height))
	copy(img.Pix, level.Pixels)
	return img
}

type MipTexture struct {
	Name   string
	Width  int
	Height int
	Levels []MipLevel // finest first
}

func ReadMipTexHeader(r io.ReaderAt, offset int64) (MipTexHeader, error) {
	header := MipTexHeader{}
	reader := io.NewSectionReader(r, offset, int64(binary.Size(header)))
	if err := binary.Read(reader, binary.LittleEndian, &header); err != nil {
		return header, formatErrorf("miptex", "header at %d is truncated: %v", offset, err)
	}
	if header.Width == 0 || header.Height == 0 || header.Width > maxTextureSize || header.Height > maxTextureSize {
		return header, formatErrorf("miptex", "%q has implausible size %dx%d", header.TextureName(), header.Width, header.Height)
	}
	return header, nil
}

// DecodeMipTexture decodes all mip levels of the texture whose header starts at offset.
// If any mip offset is missing it returns the texture without levels and a *MissingMipError.
func DecodeMipTexture(r io.ReaderAt, offset int64, header MipTexHeader) (*MipTexture, error) {
	texture := &MipTexture{
		Name:   header.TextureName(),
		Width:  int(header.Width),
		Height: int(header.Height),
	}
	for _, mipOffset := range header.Offsets {
		if mipOffset == 0 {
			return texture, &MissingMipError{Name: texture.Name}
		}
	}

	// The palette sits after the level 3 indices and a 2 byte pad
	size := indexedSize(texture.Width, texture.Height, MipLevels-1)
	paletteOffset := offset + int64(header.Offsets[MipLevels-1]) + int64(size) + 2
	palette := make([]uint8, PaletteSize)
	if _, err := r.ReadAt(palette, paletteOffset); err != nil {
		return nil, formatErrorf("miptex", "%q palette is truncated: %v", texture.Name, err)
	}

	texture.Levels = make([]MipLevel, MipLevels)
	for level := 0; level < MipLevels; level++ {
		indices := make([]uint8, indexedSize(texture.Width, texture.Height, level))
		if _, err := r.ReadAt(indices, offset+int64(header.Offsets[level])); err != nil {
			return nil, formatErrorf("miptex", "%q mip %d is truncated: %v", texture.Name, level, err)
		}
		texture.Levels[level] = expandIndices(indices, palette, texture.Width>>level, texture.Height>>level)
	}
	return texture, nil
}

// Indexed pixel count of a mip level: width*height / 4^level
func indexedSize(width int, height int, level int) int {
	return (width * height) >> (2 * uint(level))
}

// Look up every index in the palette. Pure blue is the transparency key.
func expandIndices(indices []uint8, palette []uint8, width int, height int) MipLevel {
	level := MipLevel{
		Width:  width,
		Height: height,
		Pixels: make([]uint8, width*height*4),
	}
	for i := 0; i < width*height && i < len(indices); i++ {
		color := palette[int(indices[i])*3:]
		r, g, b := color[0], color[1], color[2]

		alpha := uint8(255)
		if r == 0 && g == 0 && b == 255 {
			alpha = 0
		}

		level.Pixels[i*4+0] = r
		level.Pixels[i*4+1] = g
		level.Pixels[i*4+2] = b
		level.Pixels[i*4+3] = alpha
	}
	return level
}

// convert a NUL padded byte array to string
func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
