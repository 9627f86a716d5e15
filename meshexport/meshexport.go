// Package meshexport writes loaded maps to a binary glTF file, one node per map.
package meshexport

import (
	"github.com/pkg/errors"
	"github.com/qmuntal/gltf"
	"github.com/qmuntal/gltf/modeler"
	"github.com/rs/zerolog"

	"github.com/samuelyuan/go-halfmapper/render"
)

type Exporter struct {
	doc       *gltf.Document
	materials map[string]int
	log       zerolog.Logger
}

func New(logger zerolog.Logger) *Exporter {
	doc := gltf.NewDocument()
	doc.Asset.Generator = "go-halfmapper"
	return &Exporter{
		doc:       doc,
		materials: make(map[string]int),
		log:       logger,
	}
}

func (e *Exporter) Document() *gltf.Document {
	return e.doc
}

// AddMap appends a node translated to the map's place in the world with one
// primitive per drawable texture batch.
func (e *Exporter) AddMap(m *render.Map) {
	mesh := &gltf.Mesh{Name: m.ID}
	for _, batch := range m.Batches {
		if len(batch.Vertices) == 0 || render.IsReservedTexture(batch.Name) {
			continue
		}
		positions := make([][3]float32, len(batch.Vertices))
		textureUVs := make([][2]float32, len(batch.Vertices))
		lightUVs := make([][2]float32, len(batch.Vertices))
		for i, vertex := range batch.Vertices {
			positions[i] = [3]float32{vertex.X, vertex.Y, vertex.Z}
			textureUVs[i] = [2]float32{vertex.TextureU, vertex.TextureV}
			lightUVs[i] = [2]float32{vertex.LightU, vertex.LightV}
		}

		mesh.Primitives = append(mesh.Primitives, &gltf.Primitive{
			Attributes: map[string]int{
				"POSITION":   modeler.WritePosition(e.doc, positions),
				"TEXCOORD_0": modeler.WriteTextureCoord(e.doc, textureUVs),
				"TEXCOORD_1": modeler.WriteTextureCoord(e.doc, lightUVs),
			},
			Material: gltf.Index(e.material(batch.Name)),
			Mode:     gltf.PrimitiveTriangles,
		})
	}

	if len(mesh.Primitives) == 0 {
		e.log.Debug().Str("map", m.ID).Msg("Nothing to export")
		return
	}

	e.doc.Meshes = append(e.doc.Meshes, mesh)
	translation := m.Translation()
	e.doc.Nodes = append(e.doc.Nodes, &gltf.Node{
		Name:        m.ID,
		Mesh:        gltf.Index(len(e.doc.Meshes) - 1),
		Translation: [3]float64{float64(translation.X()), float64(translation.Y()), float64(translation.Z())},
	})
	e.doc.Scenes[0].Nodes = append(e.doc.Scenes[0].Nodes, len(e.doc.Nodes)-1)
	e.log.Debug().Str("map", m.ID).Int("primitives", len(mesh.Primitives)).Msg("Map exported")
}

// Materials are shared by name across maps
func (e *Exporter) material(name string) int {
	if index, ok := e.materials[name]; ok {
		return index
	}
	e.doc.Materials = append(e.doc.Materials, &gltf.Material{Name: name, DoubleSided: true})
	index := len(e.doc.Materials) - 1
	e.materials[name] = index
	return index
}

func (e *Exporter) Save(path string) error {
	if err := gltf.SaveBinary(e.doc, path); err != nil {
		return errors.Wrapf(err, "save %s", path)
	}
	e.log.Info().Str("path", path).Int("nodes", len(e.doc.Nodes)).Int("materials", len(e.doc.Materials)).Msg("glTF written")
	return nil
}
