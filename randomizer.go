package meshgradient

import "math/rand/v2"

// LocationFunc perturbs the location of the control point at (x, y) of a
// width x height mesh.
type LocationFunc func(r *rand.Rand, loc *Vec2, x, y, width, height int)

// TangentFunc perturbs one tangent of the control point at (x, y).
type TangentFunc func(r *rand.Rand, tangent *Vec2, x, y, width, height int)

// ColorFunc picks a new colour for the control point at (x, y). initial is
// the point's colour before randomisation.
type ColorFunc func(r *rand.Rand, c *RGBA, initial RGBA, x, y, width, height int)

// Randomizer perturbs control points. Nil funcs leave their part of the
// point unchanged.
type Randomizer struct {
	Location LocationFunc
	Tangent  TangentFunc
	Color    ColorFunc
}

// DefaultRandomizer returns the randomiser used by the animator when none
// is configured: interior rows drift vertically, interior tangents vary by
// up to 0.25 and colours come from a palette of 16 random colours.
func DefaultRandomizer(r *rand.Rand) Randomizer {
	return Randomizer{
		Location: RandomizeLocationYExceptEdges(),
		Tangent:  RandomizeTangentsExceptEdges(-0.25, 0.25),
		Color:    PaletteColors(RandomPalette(r, 16)),
	}
}

// Apply returns a randomised copy of p. Both tangents go through Tangent.
func (rz Randomizer) Apply(r *rand.Rand, p ControlPoint, x, y, width, height int) ControlPoint {
	if rz.Location != nil {
		rz.Location(r, &p.Location, x, y, width, height)
	}
	if rz.Tangent != nil {
		rz.Tangent(r, &p.UTangent, x, y, width, height)
		rz.Tangent(r, &p.VTangent, x, y, width, height)
	}
	if rz.Color != nil {
		rz.Color(r, &p.Color, p.Color, x, y, width, height)
	}
	return p
}

// RandomizeMesh returns a randomised copy of mesh.
func (rz Randomizer) RandomizeMesh(r *rand.Rand, mesh *ControlMesh) *ControlMesh {
	out := mesh.Clone()
	for y := range out.Height {
		for x := range out.Width {
			out.Set(x, y, rz.Apply(r, out.At(x, y), x, y, out.Width, out.Height))
		}
	}
	return out
}

func uniform(r *rand.Rand, lo, hi float32) float32 {
	return lo + r.Float32()*(hi-lo)
}

// RandomizeLocationYExceptEdges moves points of interior rows up or down
// by up to 1.2/height. Rows are laid out along y, so moving only y keeps
// neighbouring columns from crossing.
func RandomizeLocationYExceptEdges() LocationFunc {
	return func(r *rand.Rand, loc *Vec2, _, y, _, height int) {
		if y == 0 || y == height-1 {
			return
		}
		d := 1.2 / float32(height)
		loc.Y += uniform(r, -d, d)
	}
}

// RandomizeLocationExceptEdges offsets each coordinate by a value from
// [lo, hi], except along the mesh border where that coordinate is pinned.
func RandomizeLocationExceptEdges(lo, hi float32) LocationFunc {
	return func(r *rand.Rand, loc *Vec2, x, y, width, height int) {
		if x != 0 && x != width-1 {
			loc.X += uniform(r, lo, hi)
		}
		if y != 0 && y != height-1 {
			loc.Y += uniform(r, lo, hi)
		}
	}
}

// RandomizeTangentsExceptEdges offsets both tangent components of
// interior points by values from [lo, hi].
func RandomizeTangentsExceptEdges(lo, hi float32) TangentFunc {
	return func(r *rand.Rand, t *Vec2, x, y, width, height int) {
		if x == 0 || y == 0 || x == width-1 || y == height-1 {
			return
		}
		t.X += uniform(r, lo, hi)
		t.Y += uniform(r, lo, hi)
	}
}

// PaletteColors picks every colour uniformly from palette. An empty
// palette keeps the initial colour.
func PaletteColors(palette []RGBA) ColorFunc {
	return func(r *rand.Rand, c *RGBA, initial RGBA, _, _, _, _ int) {
		if len(palette) == 0 {
			*c = initial
			return
		}
		*c = palette[r.IntN(len(palette))]
	}
}

// RandomPalette returns n random opaque colours.
func RandomPalette(r *rand.Rand, n int) []RGBA {
	palette := make([]RGBA, max(n, 0))
	for i := range palette {
		palette[i] = RGB(r.Float32(), r.Float32(), r.Float32())
	}
	return palette
}

// NewRand returns a deterministic random source for seed.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}
