package compute

import (
	"fmt"

	"github.com/gogpu/meshgradient/gpucore"
	"github.com/gogpu/meshgradient/internal/parallel"
)

// Triangulate splits every quad of a width x height sample grid into two
// triangles and returns the flat triangle list.
//
// Quad (x, y) owns the six slots starting at 6*(x + y*(width-1)) and emits
// (v00, v10, v11) and (v00, v11, v01), where vij = grid[x+i, y+j]. With x
// growing right and y growing up both triangles wind counter-clockwise.
// Invocations outside bound write nothing.
func Triangulate(
	pool *parallel.WorkerPool, arena *gpucore.Arena,
	vertices []gpucore.SampleVertex, width, height uint32, bound gpucore.Bound,
) ([]gpucore.SampleVertex, error) {
	grid := gpucore.GridSize{Width: width, Height: height}
	if len(vertices) < grid.Count() {
		return nil, fmt.Errorf("%w: %d vertices for a %dx%d grid", ErrBufferTooSmall, len(vertices), width, height)
	}
	quads := gpucore.QuadGrid(grid)
	out := arena.Triangles(6 * quads.Count())
	if len(out) == 0 {
		return out, nil
	}

	pool.DispatchBound(bound.X, bound.Y, func(x, y uint32) {
		if !bound.Contains(x, y) || x >= quads.Width || y >= quads.Height {
			return
		}
		v00 := vertices[x+y*width]
		v10 := vertices[x+1+y*width]
		v01 := vertices[x+(y+1)*width]
		v11 := vertices[x+1+(y+1)*width]

		dst := out[6*(x+y*quads.Width):][:6]
		dst[0], dst[1], dst[2] = v00, v10, v11
		dst[3], dst[4], dst[5] = v00, v11, v01
	})
	return out, nil
}
