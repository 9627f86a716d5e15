package config

import (
	_ "embed"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

//go:embed default.yaml
var DEFAULT []byte

type Program struct {
	GamePaths []string `yaml:"gamepaths"`
	MapConfig string   `yaml:"mapconfig"`
	Log       Log      `yaml:"log"`
}

type Log struct {
	Level   string `yaml:"level"`
	File    string `yaml:"file"`
	Console bool   `yaml:"console"`
}

type Vector struct {
	X float32 `yaml:"x"`
	Y float32 `yaml:"y"`
	Z float32 `yaml:"z"`
}

// Correction moves the landmark named TargetName in one map
type Correction struct {
	TargetName string `yaml:"targetname"`
	Vector     `yaml:",inline"`
}

type Map struct {
	Name   string      `yaml:"name"`
	Render *bool       `yaml:"render"`
	Offset *Correction `yaml:"offset"`
}

func (m Map) Rendered() bool {
	return m.Render == nil || *m.Render
}

type Chapter struct {
	Name   string `yaml:"name"`
	Render *bool  `yaml:"render"`
	Offset Vector `yaml:"offset"`
	Maps   []Map  `yaml:"maps"`
}

func (c Chapter) Rendered() bool {
	return c.Render == nil || *c.Render
}

type Maps struct {
	// Map pinned at the world origin. Defaults to the first rendered map.
	Origin   string    `yaml:"origin"`
	WADs     []string  `yaml:"wads"`
	Chapters []Chapter `yaml:"chapters"`
}

func Default() *Program {
	program, err := ParseProgram(DEFAULT)
	if err != nil {
		panic(err)
	}
	return program
}

func ParseProgram(data []byte) (*Program, error) {
	program := &Program{}
	if err := yaml.Unmarshal(data, program); err != nil {
		return nil, errors.Wrap(err, "invalid program config")
	}
	if len(program.GamePaths) == 0 {
		return nil, errors.New("program config has no gamepaths")
	}
	return program, nil
}

// LoadProgram reads the program config at path. When the file does not
// exist the default config is written there and returned.
func LoadProgram(path string) (*Program, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		if err := os.WriteFile(path, DEFAULT, 0644); err != nil {
			return nil, errors.Wrap(err, "could not write default config")
		}
		return Default(), nil
	}
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return ParseProgram(data)
}

func ParseMaps(data []byte) (*Maps, error) {
	maps := &Maps{}
	if err := yaml.Unmarshal(data, maps); err != nil {
		return nil, errors.Wrap(err, "invalid map config")
	}
	if err := maps.validate(); err != nil {
		return nil, err
	}
	return maps, nil
}

func LoadMaps(path string) (*Maps, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return ParseMaps(data)
}

func (m *Maps) validate() error {
	seen := make(map[string]string)
	for i, chapter := range m.Chapters {
		if chapter.Name == "" {
			return errors.Errorf("chapter %d has no name", i)
		}
		for j, entry := range chapter.Maps {
			if entry.Name == "" {
				return errors.Errorf("map %d of chapter %s has no name", j, chapter.Name)
			}
			if other, ok := seen[entry.Name]; ok {
				return errors.Errorf("map %s is listed in chapters %s and %s", entry.Name, other, chapter.Name)
			}
			seen[entry.Name] = chapter.Name
		}
	}
	if m.Origin != "" {
		if _, ok := seen[m.Origin]; !ok {
			return errors.Errorf("origin map %s is not listed in any chapter", m.Origin)
		}
	}
	return nil
}

// OriginMap returns the configured origin or the first rendered map.
func (m *Maps) OriginMap() string {
	if m.Origin != "" {
		return m.Origin
	}
	for _, chapter := range m.Chapters {
		if !chapter.Rendered() {
			continue
		}
		for _, entry := range chapter.Maps {
			if entry.Rendered() {
				return entry.Name
			}
		}
	}
	return ""
}
