package meshgradient

import (
	"errors"

	"github.com/gogpu/meshgradient/gpucore"
)

// Validation errors returned by Renderer.Render and the grid constructors.
// Errors are wrapped with context; test them with errors.Is.
var (
	// ErrGridTooSmall means the control mesh is narrower or shorter than
	// two points.
	ErrGridTooSmall = gpucore.ErrGridTooSmall

	// ErrInvalidSubdivisions means the subdivision count is negative.
	ErrInvalidSubdivisions = gpucore.ErrInvalidSubdivisions

	// ErrSubdivisionOverflow means the sample grid or triangle list would
	// exceed the vertex limit or 32-bit indexing.
	ErrSubdivisionOverflow = gpucore.ErrTooManyVertices

	// ErrNilSource means NewRenderer got no mesh source, or the source
	// returned no mesh.
	ErrNilSource = errors.New("meshgradient: nil mesh source")

	// ErrRendererClosed is returned by a Renderer after Close.
	ErrRendererClosed = errors.New("meshgradient: renderer closed")

	// ErrInvalidGrid means grid dimensions do not match its elements.
	ErrInvalidGrid = errors.New("meshgradient: invalid grid")
)
