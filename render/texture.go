package render

import (
	"io"
	"sort"
	"sync"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/samuelyuan/go-halfmapper/hlfile"
)

type MapTexture struct {
	Name   string
	Handle TextureHandle
	Width  int
	Height int
	// False when the texture has no decoded mips
	Uploaded bool
}

type TextureLookup interface {
	Lookup(name string) (MapTexture, bool)
}

// TextureTable holds every texture of the run by name. The first texture
// with a given name wins, whether it came from a WAD or a map.
type TextureTable struct {
	mu       sync.Mutex
	textures map[string]MapTexture
	uploader TextureUploader
	log      zerolog.Logger
}

func NewTextureTable(uploader TextureUploader, logger zerolog.Logger) *TextureTable {
	return &TextureTable{
		textures: make(map[string]MapTexture),
		uploader: uploader,
		log:      logger,
	}
}

func (t *TextureTable) Lookup(name string) (MapTexture, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	texture, ok := t.textures[name]
	return texture, ok
}

func (t *TextureTable) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.textures)
}

func (t *TextureTable) Names() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	names := make([]string, 0, len(t.textures))
	for name := range t.textures {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadWAD adds every miptex of a WAD3 archive and returns how many were new.
func (t *TextureTable) LoadWAD(r io.ReaderAt) (int, error) {
	wad, err := hlfile.LoadWAD(r)
	if err != nil {
		return 0, err
	}
	before := t.Len()
	t.LoadTextures(r, wad.TextureOffsets())
	return t.Len() - before, nil
}

// LoadTextures decodes the miptex headers at offsets and returns their names
// in order. Textures already in the table are not decoded again. A slot that
// cannot be read gets an empty name.
func (t *TextureTable) LoadTextures(r io.ReaderAt, offsets []int64) []string {
	names := make([]string, len(offsets))
	for i, offset := range offsets {
		if offset < 0 {
			continue
		}
		header, err := hlfile.ReadMipTexHeader(r, offset)
		if err != nil {
			t.log.Warn().Err(err).Int64("offset", offset).Msg("Skipping unreadable texture")
			continue
		}
		names[i] = header.TextureName()

		if err := t.add(r, offset, header); err != nil {
			t.log.Warn().Err(err).Str("texture", names[i]).Msg("Skipping texture")
			names[i] = ""
		}
	}
	return names
}

func (t *TextureTable) add(r io.ReaderAt, offset int64, header hlfile.MipTexHeader) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	name := header.TextureName()
	if _, exists := t.textures[name]; exists {
		return nil
	}

	texture, err := hlfile.DecodeMipTexture(r, offset, header)
	var missing *hlfile.MissingMipError
	if errors.As(err, &missing) {
		t.log.Warn().Str("texture", name).Msg("Missing mip offsets, texture has no pixels")
		t.textures[name] = MapTexture{Name: name, Width: texture.Width, Height: texture.Height}
		return nil
	}
	if err != nil {
		return err
	}

	handle := t.uploader.CreateTexture(MaterialTexture)
	for level, mip := range texture.Levels {
		t.uploader.UploadTexture(handle, level, mip.Width, mip.Height, mip.Pixels, MaterialTexture)
	}
	t.textures[name] = MapTexture{
		Name:     name,
		Handle:   handle,
		Width:    texture.Width,
		Height:   texture.Height,
		Uploaded: true,
	}
	t.log.Debug().Str("texture", name).Int("width", texture.Width).Int("height", texture.Height).Msg("Texture uploaded")
	return nil
}
