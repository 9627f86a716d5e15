package render_test

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/samuelyuan/go-halfmapper/hlfile"
	"github.com/samuelyuan/go-halfmapper/hlfile/hlfiletest"
	"github.com/samuelyuan/go-halfmapper/memvideo"
	"github.com/samuelyuan/go-halfmapper/render"
)

func TestTextureTableLoadWAD(t *testing.T) {
	video := memvideo.New()
	table := render.NewTextureTable(video, zerolog.Nop())

	wad := hlfiletest.WADBuilder{Textures: []hlfiletest.MipTex{
		{Name: "BRICK", Width: 32, Height: 16},
		{Name: "DOT", Width: 1, Height: 1},
	}}
	added, err := table.LoadWAD(wad.Reader())
	require.NoError(t, err)
	assert.Equal(t, 2, added)
	assert.Equal(t, []string{"BRICK", "DOT"}, table.Names())

	dot, ok := table.Lookup("DOT")
	require.True(t, ok)
	assert.Equal(t, 1, dot.Width)
	assert.Equal(t, 1, dot.Height)
	assert.True(t, dot.Uploaded)

	brick, ok := table.Lookup("BRICK")
	require.True(t, ok)
	uploaded := video.Textures[brick.Handle]
	require.NotNil(t, uploaded)
	assert.Equal(t, render.MaterialTexture, uploaded.Kind)
	require.Len(t, uploaded.Levels, hlfile.MipLevels)
	assert.Equal(t, 4, uploaded.Levels[3].Width)
	assert.Equal(t, 2, uploaded.Levels[3].Height)
	assert.Equal(t, 2*hlfile.MipLevels, video.TextureUploads)

	_, ok = table.Lookup("brick")
	assert.False(t, ok, "names are case sensitive")
}

func TestTextureTableFirstWins(t *testing.T) {
	video := memvideo.New()
	table := render.NewTextureTable(video, zerolog.Nop())

	wad := hlfiletest.WADBuilder{Textures: []hlfiletest.MipTex{{Name: "WALL1", Width: 64, Height: 64}}}
	_, err := table.LoadWAD(wad.Reader())
	require.NoError(t, err)
	uploads := video.TextureUploads

	bsp := hlfiletest.BSPBuilder{Textures: []hlfiletest.MipTex{
		{Name: "WALL1", Width: 16, Height: 16},
		{Name: "WALL2", Width: 16, Height: 16},
	}}
	mapData, err := hlfile.LoadBSP(bsp.Reader())
	require.NoError(t, err)

	names := table.LoadTextures(bsp.Reader(), mapData.TextureOffsets)
	assert.Equal(t, []string{"WALL1", "WALL2"}, names)
	assert.Equal(t, uploads+hlfile.MipLevels, video.TextureUploads)

	wall, _ := table.Lookup("WALL1")
	assert.Equal(t, 64, wall.Width)

	// loading the same textures again is a no-op
	again := table.LoadTextures(bsp.Reader(), mapData.TextureOffsets)
	assert.Equal(t, names, again)
	assert.Equal(t, uploads+hlfile.MipLevels, video.TextureUploads)
	assert.Equal(t, 2, table.Len())
}

func TestTextureTableMissingMips(t *testing.T) {
	video := memvideo.New()
	table := render.NewTextureTable(video, zerolog.Nop())

	wad := hlfiletest.WADBuilder{Textures: []hlfiletest.MipTex{{Name: "EXTERN", Width: 128, Height: 64, MissingMips: true}}}
	added, err := table.LoadWAD(wad.Reader())
	require.NoError(t, err)
	assert.Equal(t, 1, added)

	texture, ok := table.Lookup("EXTERN")
	require.True(t, ok)
	assert.False(t, texture.Uploaded)
	assert.Equal(t, 128, texture.Width)
	assert.Zero(t, video.TextureUploads)
}

func TestTextureTableBadWAD(t *testing.T) {
	table := render.NewTextureTable(memvideo.New(), zerolog.Nop())
	_, err := table.LoadWAD(hlfiletest.WADBuilder{Magic: "WAD2"}.Reader())
	assert.True(t, hlfile.IsFormatError(err))
	assert.Zero(t, table.Len())
}

func TestTextureTableEmptySlot(t *testing.T) {
	table := render.NewTextureTable(memvideo.New(), zerolog.Nop())
	bsp := hlfiletest.BSPBuilder{EmptyTextureSlots: 2}
	mapData, err := hlfile.LoadBSP(bsp.Reader())
	require.NoError(t, err)
	assert.Equal(t, []string{"", ""}, table.LoadTextures(bsp.Reader(), mapData.TextureOffsets))
}
