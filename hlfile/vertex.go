package hlfile

import "github.com/go-gl/mathgl/mgl32"

type Vertex3f struct {
	X float32
	Y float32
	Z float32
}

// FixHand converts from the map's Z-up coordinate system to the Y-up one used
// for rendering: Y and Z are swapped and X is negated.
func (v Vertex3f) FixHand() Vertex3f {
	return Vertex3f{X: -v.X, Y: v.Z, Z: v.Y}
}

func (v Vertex3f) Add(o Vertex3f) Vertex3f {
	return Vertex3f{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

func (v Vertex3f) Vec3() mgl32.Vec3 {
	return mgl32.Vec3{v.X, v.Y, v.Z}
}
