package gpucore

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
)

// DefaultMaxVertices limits the triangle list of one run when
// PipelineConfig.MaxVertices is zero.
const DefaultMaxVertices = 1 << 24

// Plan validation errors.
var (
	// ErrGridTooSmall is returned when the control grid has fewer than two
	// points along an axis.
	ErrGridTooSmall = errors.New("gpucore: control grid must be at least 2x2")

	// ErrInvalidSubdivisions is returned for a negative subdivision count.
	ErrInvalidSubdivisions = errors.New("gpucore: subdivisions must not be negative")

	// ErrTooManyVertices is returned when a run would exceed the vertex limit
	// or the 32-bit index range of the GPU buffers.
	ErrTooManyVertices = errors.New("gpucore: vertex count exceeds limit")
)

// PipelineConfig describes one run of the mesh pipeline.
type PipelineConfig struct {
	// GridWidth and GridHeight are the control grid dimensions.
	GridWidth  int
	GridHeight int

	// Subdivisions is the number of interior samples per cell edge.
	Subdivisions int

	// MaxVertices caps the triangle list length.
	// If 0, defaults to DefaultMaxVertices.
	MaxVertices int
}

// Plan holds every buffer size and dispatch bound of one pipeline run.
// A Plan is a value; equal plans describe buffers of identical shape.
type Plan struct {
	Grid         GridSize
	Cells        GridSize
	Subdivisions uint32
	Samples      GridSize
	Quads        GridSize
}

// NewPlan validates config and derives the run's buffer shapes.
func NewPlan(config PipelineConfig) (Plan, error) {
	if config.GridWidth < 2 || config.GridHeight < 2 {
		return Plan{}, fmt.Errorf("%w: got %dx%d", ErrGridTooSmall, config.GridWidth, config.GridHeight)
	}
	if config.Subdivisions < 0 {
		return Plan{}, fmt.Errorf("%w: got %d", ErrInvalidSubdivisions, config.Subdivisions)
	}
	limit := config.MaxVertices
	if limit <= 0 {
		limit = DefaultMaxVertices
	}

	step := uint64(config.Subdivisions) + 1
	if step > math.MaxUint32 || uint64(config.GridWidth) > math.MaxUint32 || uint64(config.GridHeight) > math.MaxUint32 {
		return Plan{}, fmt.Errorf("%w: %d subdivisions on a %dx%d grid", ErrTooManyVertices, config.Subdivisions, config.GridWidth, config.GridHeight)
	}
	sw := uint64(config.GridWidth-1)*step + 1
	sh := uint64(config.GridHeight-1)*step + 1
	if sw > math.MaxUint32 || sh > math.MaxUint32 {
		return Plan{}, fmt.Errorf("%w: sample grid %dx%d", ErrTooManyVertices, sw, sh)
	}
	hi, quads := bits.Mul64(sw-1, sh-1)
	if hi != 0 || quads > uint64(limit)/6 || 6*quads > math.MaxUint32 {
		return Plan{}, fmt.Errorf("%w: sample grid %dx%d, limit %d", ErrTooManyVertices, sw, sh, limit)
	}

	grid := GridSize{Width: uint32(config.GridWidth), Height: uint32(config.GridHeight)}
	cells := CellGrid(grid)
	samples := TessellateParams{
		Width:        cells.Width,
		Depth:        cells.Height,
		Subdivisions: uint32(config.Subdivisions),
	}.SampleGrid()

	return Plan{
		Grid:         grid,
		Cells:        cells,
		Subdivisions: uint32(config.Subdivisions),
		Samples:      samples,
		Quads:        QuadGrid(samples),
	}, nil
}

// PatchBound is the dispatch bound of the patch interpolator.
func (p Plan) PatchBound() Bound { return Bound{X: p.Cells.Width, Y: p.Cells.Height} }

// TessellateBound is the dispatch bound of the tessellator.
func (p Plan) TessellateBound() Bound { return Bound{X: p.Samples.Width, Y: p.Samples.Height} }

// TriangulateBound is the dispatch bound of the triangulator.
func (p Plan) TriangulateBound() Bound { return Bound{X: p.Quads.Width, Y: p.Quads.Height} }

// TessellateParams returns the tessellator uniforms.
func (p Plan) TessellateParams() TessellateParams {
	return TessellateParams{Width: p.Cells.Width, Depth: p.Cells.Height, Subdivisions: p.Subdivisions}
}

// PatchCount returns the number of cells.
func (p Plan) PatchCount() int { return p.Cells.Count() }

// SampleCount returns the number of dense grid samples.
func (p Plan) SampleCount() int { return p.Samples.Count() }

// TriangleVertexCount returns the length of the triangle list.
func (p Plan) TriangleVertexCount() int { return TriangleVertexCount(p.Samples) }

// TriangleCount returns the number of triangles.
func (p Plan) TriangleCount() int { return p.TriangleVertexCount() / 3 }

// Bytes returns the total size of the run's GPU buffers.
func (p Plan) Bytes() int {
	return p.Grid.Count()*ControlPointSize +
		p.PatchCount()*PatchCoefficientsSize +
		p.SampleCount()*SampleVertexSize +
		p.TriangleVertexCount()*SampleVertexSize
}
