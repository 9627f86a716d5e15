package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMaps = `
origin: c1a0
wads: [halflife, decals]
chapters:
  - name: Black Mesa Inbound
    render: false
    maps:
      - name: c0a0
  - name: Anomalous Materials
    offset: {x: 0, y: 100, z: 0}
    maps:
      - name: c1a0
      - name: c1a1
        render: false
      - name: c1a1b
        offset:
          targetname: c1a1b
          x: 1
          y: 2
          z: 3
`

func TestDefault(t *testing.T) {
	program := Default()
	assert.Equal(t, []string{"./valve/"}, program.GamePaths)
	assert.Equal(t, "halflife.yaml", program.MapConfig)
	assert.Equal(t, "info", program.Log.Level)
	assert.True(t, program.Log.Console)
}

func TestLoadProgramWritesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "halfmapper.yaml")

	program, err := LoadProgram(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), program)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, DEFAULT, data)

	program, err = LoadProgram(path)
	require.NoError(t, err)
	assert.Equal(t, Default(), program)
}

func TestParseProgram(t *testing.T) {
	_, err := ParseProgram([]byte("gamepaths: []\n"))
	assert.Error(t, err)

	_, err = ParseProgram([]byte("gamepaths: {"))
	assert.Error(t, err)
}

func TestParseMaps(t *testing.T) {
	maps, err := ParseMaps([]byte(testMaps))
	require.NoError(t, err)

	assert.Equal(t, []string{"halflife", "decals"}, maps.WADs)
	require.Len(t, maps.Chapters, 2)
	assert.False(t, maps.Chapters[0].Rendered())
	assert.True(t, maps.Chapters[1].Rendered())
	assert.Equal(t, Vector{Y: 100}, maps.Chapters[1].Offset)

	chapterMaps := maps.Chapters[1].Maps
	assert.True(t, chapterMaps[0].Rendered())
	assert.False(t, chapterMaps[1].Rendered())
	require.NotNil(t, chapterMaps[2].Offset)
	assert.Equal(t, Correction{TargetName: "c1a1b", Vector: Vector{X: 1, Y: 2, Z: 3}}, *chapterMaps[2].Offset)
	assert.Equal(t, "c1a0", maps.OriginMap())
}

func TestOriginMapDefault(t *testing.T) {
	maps, err := ParseMaps([]byte(`
chapters:
  - name: hidden
    render: false
    maps: [{name: a}]
  - name: shown
    maps: [{name: b, render: false}, {name: c}]
`))
	require.NoError(t, err)
	assert.Equal(t, "c", maps.OriginMap())
}

func TestParseMapsInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"unnamed chapter", "chapters: [{maps: [{name: a}]}]"},
		{"unnamed map", "chapters: [{name: x, maps: [{render: true}]}]"},
		{"duplicate map", "chapters: [{name: x, maps: [{name: a}]}, {name: y, maps: [{name: a}]}]"},
		{"unknown origin", "origin: z\nchapters: [{name: x, maps: [{name: a}]}]"},
		{"bad yaml", "chapters: ["},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMaps([]byte(tt.data))
			assert.Error(t, err)
		})
	}
}
func TestShippedMapConfig(t *testing.T) {
	maps, err := LoadMaps("../halflife.yaml")
	require.NoError(t, err)
	assert.Equal(t, "c0a0", maps.OriginMap())
	assert.Contains(t, maps.WADs, "halflife")

	last := maps.Chapters[len(maps.Chapters)-1]
	assert.False(t, last.Rendered())
	assert.Equal(t, float32(20000), last.Offset.Y)
}
