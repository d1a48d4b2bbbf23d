package meshgradient

import "github.com/gogpu/meshgradient/gpucore"

// ControlPoint is one node of the control mesh.
//
// UTangent is the derivative of the surface along the grid's x direction
// at this point, VTangent along y. Colours are interpolated with the same
// patch structure as positions. Neighbouring cells share the point, so
// keeping tangents consistent across a shared edge keeps the surface
// smooth there.
type ControlPoint struct {
	Location Vec2
	UTangent Vec2
	VTangent Vec2
	Color    RGBA
}

// Add returns the component-wise sum of two control points.
func (p ControlPoint) Add(q ControlPoint) ControlPoint {
	return ControlPoint{
		Location: p.Location.Add(q.Location),
		UTangent: p.UTangent.Add(q.UTangent),
		VTangent: p.VTangent.Add(q.VTangent),
		Color:    RGBA{R: p.Color.R + q.Color.R, G: p.Color.G + q.Color.G, B: p.Color.B + q.Color.B, A: p.Color.A + q.Color.A},
	}
}

// Sub returns the component-wise difference of two control points.
func (p ControlPoint) Sub(q ControlPoint) ControlPoint {
	return p.Add(q.Scale(-1))
}

// Scale multiplies every component by s.
func (p ControlPoint) Scale(s float32) ControlPoint {
	return ControlPoint{
		Location: p.Location.Scale(s),
		UTangent: p.UTangent.Scale(s),
		VTangent: p.VTangent.Scale(s),
		Color:    RGBA{R: p.Color.R * s, G: p.Color.G * s, B: p.Color.B * s, A: p.Color.A * s},
	}
}

// Lerp interpolates every component between p and q.
func (p ControlPoint) Lerp(q ControlPoint, t float32) ControlPoint {
	return ControlPoint{
		Location: p.Location.Lerp(q.Location, t),
		UTangent: p.UTangent.Lerp(q.UTangent, t),
		VTangent: p.VTangent.Lerp(q.VTangent, t),
		Color:    p.Color.Lerp(q.Color, t),
	}
}

func (p ControlPoint) gpu() gpucore.ControlPoint {
	return gpucore.ControlPoint{
		Location: p.Location.gpu(),
		UTangent: p.UTangent.gpu(),
		VTangent: p.VTangent.gpu(),
		Color:    p.Color.vec4(),
	}
}
