package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/alecthomas/kong"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/samuelyuan/go-halfmapper/config"
	"github.com/samuelyuan/go-halfmapper/gamefs"
	"github.com/samuelyuan/go-halfmapper/hlfile"
	"github.com/samuelyuan/go-halfmapper/imagefile"
	"github.com/samuelyuan/go-halfmapper/logging"
	"github.com/samuelyuan/go-halfmapper/memvideo"
	"github.com/samuelyuan/go-halfmapper/meshexport"
	"github.com/samuelyuan/go-halfmapper/render"
	"github.com/samuelyuan/go-halfmapper/world"
)

var CLI struct {
	ConfigFile string `name:"config" help:"Program configuration file, written with defaults when missing." default:"halfmapper.yaml" type:"path"`
	Debug      bool   `help:"Whether to enable debug logging."`

	Load struct {
	} `cmd:"" help:"Decode every configured map and print a summary."`

	Export struct {
		Out string `arg:"" name:"out" help:"Binary glTF file to write." type:"path"`
	} `cmd:"" help:"Load every configured map and write the stitched world as glTF."`

	Textures struct {
		WAD    string `arg:"" name:"wad" help:"WAD3 texture archive." type:"existingfile"`
		Dir    string `arg:"" name:"dir" help:"Directory for the images." type:"path"`
		Format string `help:"Image format." enum:"png,bmp,tiff" default:"png"`
	} `cmd:"" help:"Write the first mip level of every texture in a WAD as an image."`

	Atlas struct {
		Map string `arg:"" name:"map" help:"BSP v30 map file." type:"existingfile"`
		Out string `arg:"" name:"out" help:"Image to write (.png, .bmp or .tiff)." type:"path"`
	} `cmd:"" help:"Write the packed lightmap atlas of one map as an image."`

	Config struct {
	} `cmd:"" help:"Write the default program configuration to standard output."`
}

func writeError(err error) {
	fmt.Fprintf(os.Stderr, "%+v\n", err)
	os.Exit(1)
}

// Reads the program config and opens its log sinks
func setup() (*config.Program, zerolog.Logger, *logging.Sinks, error) {
	program, err := config.LoadProgram(CLI.ConfigFile)
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}

	opts := logging.Options{
		Level: program.Log.Level,
		File:  program.Log.File,
	}
	if program.Log.Console {
		opts.Console = os.Stdout
	}
	if CLI.Debug {
		opts.Level = "debug"
	}
	logger, sinks, err := logging.New(opts)
	if err != nil {
		return nil, zerolog.Nop(), nil, err
	}
	hlfile.SetLogger(logger.With().Str("component", "hlfile").Logger())
	if CLI.Debug {
		logger.Warn().Msg("debug logging enabled")
	}
	return program, logger, sinks, nil
}

func loadWorld(program *config.Program, logger zerolog.Logger) (*world.World, *memvideo.System, error) {
	maps, err := config.LoadMaps(program.MapConfig)
	if err != nil {
		return nil, nil, err
	}

	video := memvideo.New()
	w := world.New(video, gamefs.SearchPaths(program.GamePaths), logger)
	stats := w.Load(maps)
	if stats.MapsRendered == 0 {
		return nil, nil, errors.Errorf("none of the %d configured maps could be loaded", stats.MapsFound)
	}
	return w, video, nil
}

func loadCommand() error {
	program, logger, sinks, err := setup()
	if err != nil {
		return err
	}
	defer sinks.Close()

	w, video, err := loadWorld(program, logger)
	if err != nil {
		return err
	}
	logger.Info().
		Int("maps", len(w.Maps)).
		Int("landmarks", len(w.Landmarks.Names())).
		Int("memory", video.MemoryUsage()).
		Msg("Done")
	return nil
}

func exportCommand(out string) error {
	program, logger, sinks, err := setup()
	if err != nil {
		return err
	}
	defer sinks.Close()

	w, _, err := loadWorld(program, logger)
	if err != nil {
		return err
	}
	exporter := meshexport.New(logger)
	for _, m := range w.Maps {
		exporter.AddMap(m)
	}
	return exporter.Save(out)
}

func texturesCommand(wadPath string, dir string, format string) error {
	_, logger, sinks, err := setup()
	if err != nil {
		return err
	}
	defer sinks.Close()

	f, err := os.Open(wadPath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	wad, err := hlfile.LoadWAD(f)
	if err != nil {
		return errors.Wrapf(err, "wad %s", wadPath)
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return errors.WithStack(err)
	}

	written := 0
	for _, offset := range wad.TextureOffsets() {
		header, err := hlfile.ReadMipTexHeader(f, offset)
		if err != nil {
			logger.Warn().Err(err).Int64("offset", offset).Msg("Skipping unreadable texture")
			continue
		}
		texture, err := hlfile.DecodeMipTexture(f, offset, header)
		if err != nil {
			logger.Warn().Err(err).Str("texture", header.TextureName()).Msg("Skipping texture")
			continue
		}
		path := filepath.Join(dir, texture.Name+"."+format)
		if err := imagefile.Save(path, texture.Levels[0].Image()); err != nil {
			return err
		}
		written++
	}
	logger.Info().Str("wad", wadPath).Int("textures", written).Msg("Textures written")
	return nil
}

func atlasCommand(mapPath string, out string) error {
	_, logger, sinks, err := setup()
	if err != nil {
		return err
	}
	defer sinks.Close()

	f, err := os.Open(mapPath)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()

	video := memvideo.New()
	builder := &render.Builder{
		Textures: render.NewTextureTable(video, logger),
		Video:    video,
		Log:      logger,
	}
	id := filepath.Base(mapPath)
	m, err := builder.BuildMap(f, render.MapOptions{ID: id[:len(id)-len(filepath.Ext(id))]})
	if err != nil {
		return err
	}
	if err := imagefile.Save(out, m.Atlas.Image()); err != nil {
		return err
	}
	logger.Info().Str("map", m.ID).Int("lightmaps", len(m.Rects)).Str("out", out).Msg("Atlas written")
	return nil
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("halfmapper"),
		kong.Description("Loads GoldSrc BSP maps and stitches them into one world."),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact: true,
			Summary: true,
		}))

	var err error
	switch ctx.Command() {
	case "load":
		err = loadCommand()
	case "export <out>":
		err = exportCommand(CLI.Export.Out)
	case "textures <wad> <dir>":
		err = texturesCommand(CLI.Textures.WAD, CLI.Textures.Dir, CLI.Textures.Format)
	case "atlas <map> <out>":
		err = atlasCommand(CLI.Atlas.Map, CLI.Atlas.Out)
	case "config":
		os.Stdout.Write(config.DEFAULT)
	}
	if err != nil {
		writeError(err)
	}
}
