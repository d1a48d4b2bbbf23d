package backend

import (
	"errors"
	"image"

	"github.com/gogpu/meshgradient/gpucore"
)

// Common backend errors.
var (
	// ErrBackendNotAvailable is returned when a requested backend is not available.
	ErrBackendNotAvailable = errors.New("backend: not available")

	// ErrNotInitialized is returned when operations are called before Init.
	ErrNotInitialized = errors.New("backend: not initialized")
)

// Backend name constants.
const (
	// BackendSoftware is the name of the CPU backend.
	BackendSoftware = "software"
	// BackendWGPU is the name of the WebGPU compute backend (gogpu/wgpu).
	BackendWGPU = "wgpu"
)

// ComputeBackend executes the stages of the mesh gradient pipeline.
//
// Every stage is a pure function of its inputs: it reads immutable input
// buffers, takes its output buffer from the run's arena and honours the
// explicit dispatch bound. A stage returns only when all of its
// invocations have finished.
//
// Backends must be registered via Register() and are selected via
// Get() or Default().
type ComputeBackend interface {
	// Name returns the backend identifier (e.g., "software", "wgpu").
	Name() string

	// Init initializes the backend.
	// This should be called before any stage is executed.
	Init() error

	// Close releases all backend resources.
	// The backend should not be used after Close is called.
	Close()

	// ComputePatches derives one PatchCoefficients per grid cell.
	ComputePatches(arena *gpucore.Arena, points []gpucore.ControlPoint, grid gpucore.GridSize,
		smooth bool, bound gpucore.Bound) ([]gpucore.PatchCoefficients, error)

	// Tessellate evaluates the patches into a dense sample grid.
	Tessellate(arena *gpucore.Arena, coeffs []gpucore.PatchCoefficients,
		params gpucore.TessellateParams, bound gpucore.Bound) ([]gpucore.SampleVertex, error)

	// Triangulate turns a width x height sample grid into a triangle list.
	Triangulate(arena *gpucore.Arena, vertices []gpucore.SampleVertex,
		width, height uint32, bound gpucore.Bound) ([]gpucore.SampleVertex, error)

	// ComputeNoise renders the procedural noise field.
	ComputeNoise(width, height int, uniforms gpucore.NoiseUniforms,
		bound gpucore.Bound) (*image.NRGBA, error)
}
