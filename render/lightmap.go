package render

import (
	"image"

	"github.com/chewxy/math32"
)

const (
	AtlasSize = 1024

	// Faces wider or taller than this many luxels are not lightmapped
	MaxLightmapExtent = 17

	// World units per luxel
	LuxelSize = 16
)

var gammaTable [256]uint8

func init() {
	for i := range gammaTable {
		gammaTable[i] = uint8(math32.Round(255 * math32.Pow(float32(i)/255, 1.0/3.0)))
	}
}

// A face's rectangle in the atlas
type LightmapRect struct {
	Face   int
	Width  int
	Height int
	// Byte offset of the face's RGB samples in the lighting lump, -1 if unlit
	Offset int32

	X      int
	Y      int
	Placed bool
}

// LightmapAtlas packs lightmaps bottom-up: rover[x] is the first free row of column x.
type LightmapAtlas struct {
	Pixels []uint8 // AtlasSize*AtlasSize RGB
	rover  [AtlasSize]int
}

func NewLightmapAtlas() *LightmapAtlas {
	return &LightmapAtlas{
		Pixels: make([]uint8, AtlasSize*AtlasSize*3),
	}
}

// Allocate finds the lowest row where width free columns start, preferring the
// leftmost column, and reserves width x height there.
func (atlas *LightmapAtlas) Allocate(width int, height int) (int, int, bool) {
	best := AtlasSize
	x, y := 0, 0
	for a := 0; a < AtlasSize-width; a++ {
		best2 := 0
		j := 0
		for ; j < width; j++ {
			if atlas.rover[a+j] >= best {
				break
			}
			if atlas.rover[a+j] > best2 {
				best2 = atlas.rover[a+j]
			}
		}
		if j == width {
			// this is a valid spot
			x = a
			y = best2
			best = best2
		}
	}

	if best+height > AtlasSize {
		return 0, 0, false
	}

	for i := 0; i < width; i++ {
		atlas.rover[x+i] = best + height
	}
	return x, y, true
}

// Pack places every rect in order and copies its samples into the atlas.
// On overflow the remaining rects are left unplaced and a *PackingOverflowError is returned.
func (atlas *LightmapAtlas) Pack(rects []*LightmapRect, lighting []uint8) error {
	for i, rect := range rects {
		x, y, ok := atlas.Allocate(rect.Width, rect.Height)
		if !ok {
			return &PackingOverflowError{
				Width:     rect.Width,
				Height:    rect.Height,
				Placed:    i,
				Remaining: len(rects) - i,
			}
		}
		rect.X = x
		rect.Y = y
		rect.Placed = true
		atlas.blit(rect, lighting)
	}
	return nil
}

// Copy a face's samples into its rect, gamma corrected.
// Unlit faces and samples past the end of the lump are drawn full bright.
func (atlas *LightmapAtlas) blit(rect *LightmapRect, lighting []uint8) {
	size := rect.Width * rect.Height * 3
	source := []uint8(nil)
	if rect.Offset >= 0 && int(rect.Offset)+size <= len(lighting) {
		source = lighting[rect.Offset : int(rect.Offset)+size]
	}

	for y := 0; y < rect.Height; y++ {
		for x := 0; x < rect.Width; x++ {
			dst := atlasIndex(rect.X+x, rect.Y+y)
			if source == nil {
				atlas.Pixels[dst+0] = 255
				atlas.Pixels[dst+1] = 255
				atlas.Pixels[dst+2] = 255
				continue
			}
			src := lightmapIndex(x, y, rect.Width)
			atlas.Pixels[dst+0] = gammaTable[source[src+0]]
			atlas.Pixels[dst+1] = gammaTable[source[src+1]]
			atlas.Pixels[dst+2] = gammaTable[source[src+2]]
		}
	}
}

func (atlas *LightmapAtlas) Upload(uploader TextureUploader) TextureHandle {
	handle := uploader.CreateTexture(LightmapTexture)
	uploader.UploadTexture(handle, 0, AtlasSize, AtlasSize, atlas.Pixels, LightmapTexture)
	return handle
}

func (atlas *LightmapAtlas) Image() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, AtlasSize, AtlasSize))
	for i := 0; i < AtlasSize*AtlasSize; i++ {
		img.Pix[i*4+0] = atlas.Pixels[i*3+0]
		img.Pix[i*4+1] = atlas.Pixels[i*3+1]
		img.Pix[i*4+2] = atlas.Pixels[i*3+2]
		img.Pix[i*4+3] = 255
	}
	return img
}

// Byte index of an atlas texel
func atlasIndex(x int, y int) int {
	if x < 0 || x >= AtlasSize || y < 0 || y >= AtlasSize {
		panic("render: atlas texel out of range")
	}
	return (x + y*AtlasSize) * 3
}

// Byte index of a texel inside one face's samples
func lightmapIndex(x int, y int, width int) int {
	return (x + y*width) * 3
}
