// Package compute holds the CPU reference kernels of the mesh gradient
// pipeline.
//
// Each stage is a pure function over immutable input buffers. It takes an
// explicit dispatch bound, runs one kernel invocation per output element on
// a parallel.WorkerPool and returns a fresh output buffer taken from the
// run's gpucore.Arena. Invocations write disjoint slots and take no locks.
//
// The WGSL kernels in backend/wgpu implement the same math; tests in both
// packages pin the two to identical results.
package compute

import "errors"

var (
	// ErrBufferTooSmall is returned when an input buffer holds fewer elements
	// than its grid dimensions require.
	ErrBufferTooSmall = errors.New("compute: input buffer too small")

	// ErrGridOverflow is returned when the tessellated sample grid does not
	// fit in uint32 coordinates.
	ErrGridOverflow = errors.New("compute: sample grid overflows uint32")
)
