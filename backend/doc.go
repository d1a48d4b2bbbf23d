// Package backend provides the pluggable compute backend of the mesh
// gradient pipeline.
//
// A backend executes the four pipeline stages (patch interpolation,
// tessellation, triangulation and the noise field). The software backend
// runs the CPU kernels on a worker pool and is always available. The wgpu
// backend in backend/wgpu runs the same stages as WGSL compute shaders.
//
// # Backend Registration
//
// Backends are registered via init() functions and selected at runtime.
// The software backend is registered on import:
//
//	import _ "github.com/gogpu/meshgradient/backend"
//
// Importing github.com/gogpu/meshgradient/gpu adds the wgpu backend.
//
// # Backend Selection
//
// Use Default() to get the best available backend, or Get() to request
// a specific backend by name:
//
//	b := backend.Default()
//	b := backend.Get(backend.BackendSoftware)
//
// InitDefault selects and initializes in one step:
//
//	b, err := backend.InitDefault()
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer b.Close()
//
// # Available Backends
//
//   - "software": CPU kernels on a work-stealing goroutine pool
//   - "wgpu": WGSL compute shaders via gogpu/wgpu
package backend
