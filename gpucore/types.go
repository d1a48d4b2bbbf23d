package gpucore

import "math"

// Buffer element sizes in bytes. They match the WGSL struct layouts.
const (
	ControlPointSize      = 48
	PatchCoefficientsSize = 336
	SampleVertexSize      = 32
	NoiseUniformsSize     = 20
	GridSizeSize          = 8
)

// Vec2 matches WGSL vec2<f32>.
type Vec2 struct {
	X, Y float32
}

// Vec4 matches WGSL vec4<f32>.
type Vec4 struct {
	X, Y, Z, W float32
}

// Mat4 matches WGSL mat4x4<f32>: four columns of four floats.
// Element (row, col) lives at index col*4+row.
type Mat4 [16]float32

// At returns the element at row, col.
func (m *Mat4) At(row, col int) float32 {
	return m[col*4+row]
}

// Set stores v at row, col.
func (m *Mat4) Set(row, col int, v float32) {
	m[col*4+row] = v
}

// ControlPoint is the GPU layout of one mesh control point.
//
//	struct ControlPoint {
//	    location: vec2<f32>,
//	    u_tangent: vec2<f32>,
//	    v_tangent: vec2<f32>,
//	    color: vec4<f32>,
//	}
type ControlPoint struct {
	Location Vec2
	UTangent Vec2
	VTangent Vec2
	_        [2]float32
	Color    Vec4
}

// PatchCoefficients holds the Hermite geometry matrices of one grid cell.
//
// Row i of each matrix selects the u basis function and column j the v
// basis function, in the order: value at 0, value at 1, derivative at 0,
// derivative at 1. The lower right 2x2 block is the twist term.
type PatchCoefficients struct {
	X, Y    Mat4
	R, G, B Mat4
	CellX   uint32
	CellY   uint32
	_       [2]uint32
}

// SampleVertex is one tessellated sample: a position and an RGBA colour.
type SampleVertex struct {
	Position Vec2
	_        [2]float32
	Color    Vec4
}

// Triangle is three consecutive vertices of a triangle list.
type Triangle [3]SampleVertex

// NoiseUniforms configures the noise field stage.
// Color1..Color3 are grey levels on a 0-255 scale.
type NoiseUniforms struct {
	IsSmooth   int32
	Color1     float32
	Color2     float32
	Color3     float32
	NoiseAlpha float32
}

// GridSize is a two-dimensional element count, matching WGSL vec2<u32>.
type GridSize struct {
	Width, Height uint32
}

// Count returns Width*Height.
func (g GridSize) Count() int {
	return int(g.Width) * int(g.Height)
}

// Bound is an explicit dispatch bound. Invocations whose (x, y) lies
// outside the bound do nothing.
type Bound struct {
	X, Y uint32
}

// Contains reports whether (x, y) lies inside the bound.
func (b Bound) Contains(x, y uint32) bool {
	return x < b.X && y < b.Y
}

// Count returns X*Y.
func (b Bound) Count() int {
	return int(b.X) * int(b.Y)
}

// TessellateParams are the uniform inputs of the tessellator.
// Width and Depth count cells, not control points.
type TessellateParams struct {
	Width        uint32
	Depth        uint32
	Subdivisions uint32
}

// SampleGrid returns the dense sample grid produced for p.
// Both dimensions are zero when the cell grid is empty or when a dimension
// does not fit in a uint32 (see Overflows).
func (p TessellateParams) SampleGrid() GridSize {
	if p.Width == 0 || p.Depth == 0 || p.Overflows() {
		return GridSize{}
	}
	step := p.Subdivisions + 1
	return GridSize{Width: p.Width*step + 1, Height: p.Depth*step + 1}
}

// Overflows reports whether the sample grid of p has a dimension that does
// not fit in a uint32.
func (p TessellateParams) Overflows() bool {
	step := uint64(p.Subdivisions) + 1
	return uint64(p.Width)*step+1 > math.MaxUint32 || uint64(p.Depth)*step+1 > math.MaxUint32
}

// CellGrid returns the number of cells spanned by a control grid.
func CellGrid(grid GridSize) GridSize {
	if grid.Width < 2 || grid.Height < 2 {
		return GridSize{}
	}
	return GridSize{Width: grid.Width - 1, Height: grid.Height - 1}
}

// QuadGrid returns the number of quads spanned by a sample grid.
func QuadGrid(samples GridSize) GridSize {
	return CellGrid(samples)
}

// TriangleVertexCount returns the vertex count of the triangle list
// built from a sample grid: six per quad.
func TriangleVertexCount(samples GridSize) int {
	return 6 * QuadGrid(samples).Count()
}

// Clamp01 clamps v to [0, 1]. NaN maps to 0.
func Clamp01(v float32) float32 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ColorVec converts an RGB colour to a Vec4 with alpha 1.
func ColorVec(r, g, b float32) Vec4 {
	return Vec4{X: r, Y: g, Z: b, W: 1}
}

