package world

import (
	"fmt"
	"sort"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/rs/zerolog"

	"github.com/samuelyuan/go-halfmapper/hlfile"
)

type LandmarkRef struct {
	MapID    string
	Position mgl32.Vec3
}

// LandmarkTable maps a landmark name to every map that uses it for a level
// transition, in load order.
type LandmarkTable struct {
	chains map[string][]LandmarkRef
}

func NewLandmarkTable() *LandmarkTable {
	return &LandmarkTable{chains: make(map[string][]LandmarkRef)}
}

func (t *LandmarkTable) Publish(mapID string, landmarks []hlfile.Landmark) {
	for _, landmark := range landmarks {
		t.chains[landmark.Name] = append(t.chains[landmark.Name], LandmarkRef{
			MapID:    mapID,
			Position: landmark.Position.Vec3(),
		})
	}
}

func (t *LandmarkTable) Chain(name string) []LandmarkRef {
	return t.chains[name]
}

func (t *LandmarkTable) Names() []string {
	names := make([]string, 0, len(t.chains))
	for name := range t.chains {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

type UnresolvedLandmarkError struct {
	MapID string
}

func (e *UnresolvedLandmarkError) Error() string {
	return fmt.Sprintf("cant find matching landmarks for %s", e.MapID)
}

// OffsetResolver places maps relative to each other through shared landmarks.
// Only the direct neighbour in a chain is consulted, so a map resolves only
// once the map next to it in the chain has resolved.
type OffsetResolver struct {
	landmarks *LandmarkTable
	offsets   map[string]mgl32.Vec3
	origin    string
	log       zerolog.Logger
}

func NewOffsetResolver(landmarks *LandmarkTable, origin string, logger zerolog.Logger) *OffsetResolver {
	return &OffsetResolver{
		landmarks: landmarks,
		offsets:   make(map[string]mgl32.Vec3),
		origin:    origin,
		log:       logger,
	}
}

func (r *OffsetResolver) Origin() string {
	return r.origin
}

func (r *OffsetResolver) SetOrigin(mapID string) {
	r.origin = mapID
}

// Offset returns the resolved offset of a map, if any. The origin is always resolved.
func (r *OffsetResolver) Offset(mapID string) (mgl32.Vec3, bool) {
	if mapID == r.origin {
		return mgl32.Vec3{}, true
	}
	offset, ok := r.offsets[mapID]
	return offset, ok
}

// Resolve returns the translation that moves mapID into the origin map's space.
// An unresolvable map gets a zero offset and an *UnresolvedLandmarkError. The
// zero is remembered, so later maps may chain off it.
func (r *OffsetResolver) Resolve(mapID string) (mgl32.Vec3, error) {
	if offset, ok := r.Offset(mapID); ok {
		return offset, nil
	}

	for _, name := range r.landmarks.Names() {
		chain := r.landmarks.Chain(name)
		if len(chain) < 2 {
			continue
		}
		for i, ref := range chain {
			if ref.MapID != mapID {
				continue
			}
			// the first entry pairs with the second, every other entry with the one before it
			var neighbour LandmarkRef
			if i == 0 {
				neighbour = chain[1]
			} else {
				neighbour = chain[i-1]
			}
			neighbourOffset, ok := r.Offset(neighbour.MapID)
			if !ok {
				break
			}
			offset := neighbour.Position.Add(neighbourOffset).Sub(ref.Position)
			r.offsets[mapID] = offset
			r.log.Info().Str("map", mapID).Str("neighbour", neighbour.MapID).Str("landmark", name).Msg("Matched landmarks")
			return offset, nil
		}
	}

	r.log.Warn().Str("map", mapID).Msg("Cant find matching landmarks")
	r.offsets[mapID] = mgl32.Vec3{}
	return mgl32.Vec3{}, &UnresolvedLandmarkError{MapID: mapID}
}
