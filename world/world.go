// Package world loads a set of maps and stitches them into one coordinate space.
package world

import (
	"io"
	"time"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/samuelyuan/go-halfmapper/config"
	"github.com/samuelyuan/go-halfmapper/gamefs"
	"github.com/samuelyuan/go-halfmapper/hlfile"
	"github.com/samuelyuan/go-halfmapper/render"
)

// World owns everything shared between maps: the texture table, the
// landmark table and the resolved offsets.
type World struct {
	Textures  *render.TextureTable
	Landmarks *LandmarkTable
	Resolver  *OffsetResolver
	Maps      []*render.Map

	paths   gamefs.SearchPaths
	builder *render.Builder
	log     zerolog.Logger
}

type Stats struct {
	MapsFound    int
	MapsRendered int
	MapsSkipped  int // render: false
	MapsFailed   int
	WADsLoaded   int
	Textures     int
	Triangles    int
	Unresolved   int
	LoadTime     time.Duration
}

func (s Stats) MarshalZerologObject(e *zerolog.Event) {
	e.Int("mapsFound", s.MapsFound).
		Int("mapsRendered", s.MapsRendered).
		Int("mapsSkipped", s.MapsSkipped).
		Int("mapsFailed", s.MapsFailed).
		Int("wads", s.WADsLoaded).
		Int("textures", s.Textures).
		Int("triangles", s.Triangles).
		Int("unresolved", s.Unresolved).
		Dur("loadTime", s.LoadTime)
}

func New(video render.Uploader, paths gamefs.SearchPaths, logger zerolog.Logger) *World {
	textures := render.NewTextureTable(video, logger)
	landmarks := NewLandmarkTable()
	return &World{
		Textures:  textures,
		Landmarks: landmarks,
		Resolver:  NewOffsetResolver(landmarks, "", logger),
		paths:     paths,
		builder: &render.Builder{
			Textures: textures,
			Video:    video,
			Log:      logger,
		},
		log: logger,
	}
}

// LoadWAD adds the textures of <name>.wad and returns how many were new.
func (w *World) LoadWAD(name string) (int, error) {
	f, err := w.paths.Open(name + ".wad")
	if err != nil {
		return 0, err
	}
	defer f.Close()

	added, err := w.Textures.LoadWAD(f)
	if err != nil {
		return 0, errors.Wrapf(err, "wad %s", name)
	}
	w.log.Info().Str("wad", name).Int("textures", added).Msg("WAD loaded")
	return added, nil
}

// LoadMap decodes maps/<id>.bsp from the search paths.
func (w *World) LoadMap(opts render.MapOptions) (*render.Map, error) {
	f, err := w.paths.Open("maps/" + opts.ID + ".bsp")
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return w.AddMap(f, opts)
}

// AddMap decodes a map and publishes its transition landmarks.
// The first map added becomes the origin unless one was set.
func (w *World) AddMap(r io.ReaderAt, opts render.MapOptions) (*render.Map, error) {
	m, err := w.builder.BuildMap(r, opts)
	if err != nil {
		return nil, err
	}
	w.Landmarks.Publish(m.ID, m.Landmarks)
	w.Maps = append(w.Maps, m)
	if w.Resolver.Origin() == "" {
		w.Resolver.SetOrigin(m.ID)
	}
	return m, nil
}

// ResolveOffsets runs the resolver once per map in load order and returns
// how many maps stayed at a zero offset.
func (w *World) ResolveOffsets() int {
	unresolved := 0
	for _, m := range w.Maps {
		offset, err := w.Resolver.Resolve(m.ID)
		if err != nil {
			unresolved++
		}
		m.Offset = offset
	}
	return unresolved
}

// Load reads every WAD and rendered map of the config. A file that fails
// to load is logged and counted but does not stop the run.
func (w *World) Load(maps *config.Maps) Stats {
	start := time.Now()
	stats := Stats{}

	if origin := maps.OriginMap(); origin != "" {
		w.Resolver.SetOrigin(origin)
	}

	for _, name := range maps.WADs {
		if _, err := w.LoadWAD(name); err != nil {
			w.log.Error().Err(err).Str("wad", name).Msg("Could not load WAD")
			continue
		}
		stats.WADsLoaded++
	}

	for _, chapter := range maps.Chapters {
		chapterOffset := mgl32.Vec3{chapter.Offset.X, chapter.Offset.Y, chapter.Offset.Z}
		for _, entry := range chapter.Maps {
			stats.MapsFound++
			if !chapter.Rendered() || !entry.Rendered() {
				stats.MapsSkipped++
				continue
			}

			opts := render.MapOptions{
				ID:            entry.Name,
				ChapterOffset: chapterOffset,
				Correction:    correction(entry.Offset),
			}
			if _, err := w.LoadMap(opts); err != nil {
				w.log.Error().Err(err).Str("map", entry.Name).Str("chapter", chapter.Name).Msg("Could not load map")
				stats.MapsFailed++
				continue
			}
			stats.MapsRendered++
		}
	}

	stats.Unresolved = w.ResolveOffsets()
	stats.Textures = w.Textures.Len()
	stats.Triangles = w.Triangles()
	stats.LoadTime = time.Since(start)

	w.log.Info().EmbedObject(stats).Msg("World loaded")
	return stats
}

func correction(offset *config.Correction) *hlfile.LandmarkCorrection {
	if offset == nil || offset.TargetName == "" {
		return nil
	}
	return &hlfile.LandmarkCorrection{
		TargetName: offset.TargetName,
		Offset:     hlfile.Vertex3f{X: offset.X, Y: offset.Y, Z: offset.Z},
	}
}

func (w *World) Triangles() int {
	total := 0
	for _, m := range w.Maps {
		total += m.TotalTriangles
	}
	return total
}

func (w *World) Draw(drawer render.BatchDrawer) {
	for _, m := range w.Maps {
		m.Draw(drawer)
	}
}
