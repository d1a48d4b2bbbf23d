package compute

import (
	"fmt"

	"github.com/gogpu/meshgradient/gpucore"
	"github.com/gogpu/meshgradient/internal/parallel"
)

// corners holds one scalar quantity at the four corners of a cell.
// The first index runs along u (grid x), the second along v (grid y).
type corners struct {
	c00, c10, c01, c11 float32
}

// geometry assembles a Hermite geometry matrix from corner values, corner
// u and v derivatives and a shared twist term.
func geometry(f, fu, fv corners, twist float32) gpucore.Mat4 {
	var m gpucore.Mat4
	m.Set(0, 0, f.c00)
	m.Set(0, 1, f.c01)
	m.Set(1, 0, f.c10)
	m.Set(1, 1, f.c11)

	m.Set(0, 2, fv.c00)
	m.Set(0, 3, fv.c01)
	m.Set(1, 2, fv.c10)
	m.Set(1, 3, fv.c11)

	m.Set(2, 0, fu.c00)
	m.Set(2, 1, fu.c01)
	m.Set(3, 0, fu.c10)
	m.Set(3, 1, fu.c11)

	m.Set(2, 2, twist)
	m.Set(2, 3, twist)
	m.Set(3, 2, twist)
	m.Set(3, 3, twist)
	return m
}

// colorGeometry builds the matrix of one colour channel.
// Smooth colours keep flat derivatives at every corner, which eases each
// edge with the cubic Hermite profile. Otherwise the derivatives are the
// edge differences and the twist is the mixed difference, which makes the
// patch an exact bilinear blend.
func colorGeometry(c corners, smooth bool) gpucore.Mat4 {
	if smooth {
		return geometry(c, corners{}, corners{}, 0)
	}
	du0 := c.c10 - c.c00 // v = 0 edge
	du1 := c.c11 - c.c01 // v = 1 edge
	dv0 := c.c01 - c.c00 // u = 0 edge
	dv1 := c.c11 - c.c10 // u = 1 edge
	fu := corners{c00: du0, c10: du0, c01: du1, c11: du1}
	fv := corners{c00: dv0, c01: dv0, c10: dv1, c11: dv1}
	return geometry(c, fu, fv, c.c11-c.c10-c.c01+c.c00)
}

// PatchCell derives the coefficients of cell (x, y) from its four corner
// control points. The caller guarantees the cell lies inside grid.
func PatchCell(points []gpucore.ControlPoint, grid gpucore.GridSize, smooth bool, x, y uint32) gpucore.PatchCoefficients {
	w := grid.Width
	p00 := &points[x+y*w]
	p10 := &points[x+1+y*w]
	p01 := &points[x+(y+1)*w]
	p11 := &points[x+1+(y+1)*w]

	pick := func(f func(*gpucore.ControlPoint) float32) corners {
		return corners{c00: f(p00), c10: f(p10), c01: f(p01), c11: f(p11)}
	}

	return gpucore.PatchCoefficients{
		X: geometry(
			pick(func(p *gpucore.ControlPoint) float32 { return p.Location.X }),
			pick(func(p *gpucore.ControlPoint) float32 { return p.UTangent.X }),
			pick(func(p *gpucore.ControlPoint) float32 { return p.VTangent.X }),
			0,
		),
		Y: geometry(
			pick(func(p *gpucore.ControlPoint) float32 { return p.Location.Y }),
			pick(func(p *gpucore.ControlPoint) float32 { return p.UTangent.Y }),
			pick(func(p *gpucore.ControlPoint) float32 { return p.VTangent.Y }),
			0,
		),
		R:     colorGeometry(pick(func(p *gpucore.ControlPoint) float32 { return p.Color.X }), smooth),
		G:     colorGeometry(pick(func(p *gpucore.ControlPoint) float32 { return p.Color.Y }), smooth),
		B:     colorGeometry(pick(func(p *gpucore.ControlPoint) float32 { return p.Color.Z }), smooth),
		CellX: x,
		CellY: y,
	}
}

// ComputePatches runs the patch interpolator over a control grid.
//
// The result holds one entry per cell, stored at x + y*(grid.Width-1).
// A grid narrower or shorter than two points has no cells and yields an
// empty result. Invocations outside bound write nothing.
func ComputePatches(
	pool *parallel.WorkerPool, arena *gpucore.Arena,
	points []gpucore.ControlPoint, grid gpucore.GridSize, smooth bool, bound gpucore.Bound,
) ([]gpucore.PatchCoefficients, error) {
	if len(points) < grid.Count() {
		return nil, fmt.Errorf("%w: %d control points for a %dx%d grid", ErrBufferTooSmall, len(points), grid.Width, grid.Height)
	}
	cells := gpucore.CellGrid(grid)
	out := arena.Coefficients(cells.Count())
	if len(out) == 0 {
		return out, nil
	}

	pool.DispatchBound(bound.X, bound.Y, func(x, y uint32) {
		if !bound.Contains(x, y) || x >= cells.Width || y >= cells.Height {
			return
		}
		out[x+y*cells.Width] = PatchCell(points, grid, smooth, x, y)
	})
	return out, nil
}
