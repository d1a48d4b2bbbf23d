package compute

import (
	"fmt"

	"github.com/gogpu/meshgradient/gpucore"
	"github.com/gogpu/meshgradient/internal/parallel"
)

// sampleCoord maps a dense grid coordinate to its owning cell and the
// local parameter in [0, 1]. The last sample of a cell row belongs to the
// last cell at t = 1.
func sampleCoord(p, cells, step uint32) (cell uint32, t float32) {
	cell = min(p/step, cells-1)
	return cell, float32(p-cell*step) / float32(step)
}

// TessellateSample evaluates the dense grid sample at (px, py).
// params must not overflow; see gpucore.TessellateParams.Overflows.
func TessellateSample(coeffs []gpucore.PatchCoefficients, params gpucore.TessellateParams, px, py uint32) gpucore.SampleVertex {
	step := params.Subdivisions + 1
	cx, u := sampleCoord(px, params.Width, step)
	cy, v := sampleCoord(py, params.Depth, step)

	c := &coeffs[cx+cy*params.Width]
	wu := HermiteWeights(u)
	wv := HermiteWeights(v)

	return gpucore.SampleVertex{
		Position: gpucore.Vec2{
			X: EvalPatch(&c.X, wu, wv),
			Y: EvalPatch(&c.Y, wu, wv),
		},
		Color: gpucore.Vec4{
			X: gpucore.Clamp01(EvalPatch(&c.R, wu, wv)),
			Y: gpucore.Clamp01(EvalPatch(&c.G, wu, wv)),
			Z: gpucore.Clamp01(EvalPatch(&c.B, wu, wv)),
			W: 1,
		},
	}
}

// Tessellate evaluates every patch at Subdivisions+1 even steps per cell
// edge and returns the dense sample grid, row-major with width
// params.SampleGrid().Width.
//
// Each invocation writes only its own (px, py) slot. Invocations outside
// bound write nothing.
func Tessellate(
	pool *parallel.WorkerPool, arena *gpucore.Arena,
	coeffs []gpucore.PatchCoefficients, params gpucore.TessellateParams, bound gpucore.Bound,
) ([]gpucore.SampleVertex, error) {
	if params.Overflows() {
		return nil, fmt.Errorf("%w: %dx%d cells at %d subdivisions", ErrGridOverflow, params.Width, params.Depth, params.Subdivisions)
	}
	if need := int(params.Width) * int(params.Depth); len(coeffs) < need {
		return nil, fmt.Errorf("%w: %d patches for %dx%d cells", ErrBufferTooSmall, len(coeffs), params.Width, params.Depth)
	}
	grid := params.SampleGrid()
	out := arena.Samples(grid.Count())
	if len(out) == 0 {
		return out, nil
	}

	pool.DispatchBound(bound.X, bound.Y, func(px, py uint32) {
		if !bound.Contains(px, py) || px >= grid.Width || py >= grid.Height {
			return
		}
		out[px+py*grid.Width] = TessellateSample(coeffs, params, px, py)
	})
	return out, nil
}
