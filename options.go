package meshgradient

import (
	"github.com/gogpu/meshgradient/backend"
	"github.com/gogpu/meshgradient/gpucore"
)

// DefaultSubdivisions is the number of interior samples per cell edge.
const DefaultSubdivisions = 18

// Option configures a Renderer.
//
// Example:
//
//	r, err := meshgradient.NewRenderer(src,
//		meshgradient.WithSubdivisions(24),
//		meshgradient.WithNoise(meshgradient.NoiseConfig{Alpha: 0}),
//	)
type Option func(*options)

type options struct {
	subdivisions int
	smooth       bool
	noise        NoiseConfig
	backend      backend.ComputeBackend
	maxVertices  int
	pool         *gpucore.ArenaPool
}

func defaultOptions() options {
	return options{
		subdivisions: DefaultSubdivisions,
		smooth:       true,
		noise:        DefaultNoiseConfig(),
		maxVertices:  gpucore.DefaultMaxVertices,
	}
}

// WithSubdivisions sets the number of interior samples per cell edge.
// Negative values make Render fail with ErrInvalidSubdivisions.
func WithSubdivisions(n int) Option {
	return func(o *options) {
		o.subdivisions = n
	}
}

// WithSmoothColors selects how colours blend across cells. With smooth
// colours (the default) colour tangents are zero, so colour eases in and
// out at every control point. Without, colour follows the bilinear blend
// of the cell corners.
func WithSmoothColors(smooth bool) Option {
	return func(o *options) {
		o.smooth = smooth
	}
}

// WithNoise sets the noise overlay. A zero Alpha disables it.
func WithNoise(c NoiseConfig) Option {
	return func(o *options) {
		o.noise = c
	}
}

// WithBackend runs the pipeline on b instead of backend.InitDefault().
// The renderer initializes b but does not close it.
func WithBackend(b backend.ComputeBackend) Option {
	return func(o *options) {
		o.backend = b
	}
}

// WithMaxVertices caps the length of the triangle list. Zero or negative
// restores gpucore.DefaultMaxVertices.
func WithMaxVertices(n int) Option {
	return func(o *options) {
		o.maxVertices = n
	}
}

// WithArenaPool shares stage buffers with other renderers using the same
// pool. By default each renderer has a private pool.
func WithArenaPool(p *gpucore.ArenaPool) Option {
	return func(o *options) {
		o.pool = p
	}
}
