package meshgradient

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/gogpu/meshgradient/backend"
	"github.com/gogpu/meshgradient/gpucore"
	"github.com/gogpu/meshgradient/internal/cache"
)

// Renderer runs the mesh gradient pipeline for a MeshSource.
//
// Render pulls the current mesh and produces a Frame. When neither the
// mesh nor the render settings changed since the previous call, the
// previous frame is returned without running the pipeline. Otherwise every
// buffer is produced afresh in a new arena.
//
// Renderer is safe for concurrent use; runs are serialised.
type Renderer struct {
	mu sync.Mutex

	source      MeshSource
	backend     backend.ComputeBackend
	ownsBackend bool
	pool        *gpucore.ArenaPool
	opts        options

	// Last run, reused while its inputs are unchanged.
	lastMesh     *ControlMesh
	lastSubdiv   int
	lastSmooth   bool
	lastMaxVerts int
	frame        *Frame
	arena        *gpucore.Arena

	noiseCache *cache.Cache[noiseKey, *image.NRGBA]

	closed bool
}

// noiseCacheSize is the number of viewport sizes whose noise image is kept.
const noiseCacheSize = 4

type noiseKey struct {
	width, height int
	config        NoiseConfig
}

// NewRenderer creates a renderer for source.
//
// Without WithBackend the best registered backend is selected and
// initialized via backend.InitDefault; it is closed with the renderer.
func NewRenderer(source MeshSource, opts ...Option) (*Renderer, error) {
	if source == nil {
		return nil, ErrNilSource
	}
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}
	if o.maxVertices <= 0 {
		o.maxVertices = gpucore.DefaultMaxVertices
	}

	r := &Renderer{
		source:     source,
		opts:       o,
		pool:       o.pool,
		noiseCache: cache.New[noiseKey, *image.NRGBA](noiseCacheSize),
	}
	if r.pool == nil {
		r.pool = gpucore.NewArenaPool(2)
	}

	if o.backend != nil {
		if err := o.backend.Init(); err != nil {
			return nil, fmt.Errorf("meshgradient: init backend %s: %w", o.backend.Name(), err)
		}
		r.backend = o.backend
	} else {
		b, err := backend.InitDefault()
		if err != nil {
			return nil, fmt.Errorf("meshgradient: %w", err)
		}
		r.backend = b
		r.ownsBackend = true
	}
	Logger().Info("meshgradient: renderer ready", "backend", r.backend.Name(), "subdivisions", o.subdivisions)
	return r, nil
}

// Backend returns the compute backend the renderer runs on.
func (r *Renderer) Backend() backend.ComputeBackend {
	return r.backend
}

// Subdivisions returns the number of interior samples per cell edge.
func (r *Renderer) Subdivisions() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opts.subdivisions
}

// SetSubdivisions changes the sample density used by the next Render.
func (r *Renderer) SetSubdivisions(n int) error {
	if n < 0 {
		return fmt.Errorf("meshgradient: %w: got %d", ErrInvalidSubdivisions, n)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opts.subdivisions = n
	return nil
}

// SetSmoothColors changes the colour blend used by the next Render.
func (r *Renderer) SetSmoothColors(smooth bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opts.smooth = smooth
}

// NoiseConfig returns the noise overlay configuration.
func (r *Renderer) NoiseConfig() NoiseConfig {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.opts.noise
}

// SetNoise changes the noise overlay configuration.
func (r *Renderer) SetNoise(c NoiseConfig) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.opts.noise = c
}

// Render runs the pipeline on the source's current mesh.
//
// The returned frame stays valid until a later Render returns a different
// frame, or the renderer is closed.
func (r *Renderer) Render() (*Frame, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRendererClosed
	}
	mesh := r.source.Mesh()
	if mesh == nil {
		return nil, ErrNilSource
	}
	if !mesh.Valid() {
		return nil, fmt.Errorf("%w: %dx%d with %d points", ErrInvalidGrid, mesh.Width, mesh.Height, len(mesh.Elements))
	}

	if r.frame != nil && r.unchanged(mesh) {
		Logger().Debug("meshgradient: mesh unchanged, reusing frame")
		return r.frame, nil
	}

	plan, err := gpucore.NewPlan(gpucore.PipelineConfig{
		GridWidth:    mesh.Width,
		GridHeight:   mesh.Height,
		Subdivisions: r.opts.subdivisions,
		MaxVertices:  r.opts.maxVertices,
	})
	if err != nil {
		return nil, fmt.Errorf("meshgradient: render: %w", err)
	}

	start := time.Now()
	arena := r.pool.Get(plan)
	frame, err := r.run(arena, plan, mesh)
	if err != nil {
		r.pool.Put(arena)
		return nil, fmt.Errorf("meshgradient: render: %w", err)
	}
	Logger().Debug("meshgradient: rendered",
		"grid", fmt.Sprintf("%dx%d", mesh.Width, mesh.Height),
		"samples", plan.SampleCount(),
		"triangles", frame.TriangleCount(),
		"bytes", plan.Bytes(),
		"elapsed", time.Since(start))

	r.releaseFrame()
	r.frame = frame
	r.arena = arena
	r.lastMesh = mesh.Clone()
	r.lastSubdiv = r.opts.subdivisions
	r.lastSmooth = r.opts.smooth
	r.lastMaxVerts = r.opts.maxVertices
	return frame, nil
}

func (r *Renderer) unchanged(mesh *ControlMesh) bool {
	return r.lastSubdiv == r.opts.subdivisions &&
		r.lastSmooth == r.opts.smooth &&
		r.lastMaxVerts == r.opts.maxVertices &&
		Equal(r.lastMesh, mesh)
}

// run executes the three mesh stages. Each backend call returns only after
// its stage has finished, which is the barrier between stages.
func (r *Renderer) run(arena *gpucore.Arena, plan gpucore.Plan, mesh *ControlMesh) (*Frame, error) {
	points := arena.ControlPoints(plan.Grid.Count())
	for i, p := range mesh.Elements {
		points[i] = p.gpu()
	}

	coeffs, err := r.backend.ComputePatches(arena, points, plan.Grid, r.opts.smooth, plan.PatchBound())
	if err != nil {
		return nil, err
	}
	samples, err := r.backend.Tessellate(arena, coeffs, plan.TessellateParams(), plan.TessellateBound())
	if err != nil {
		return nil, err
	}
	triangles, err := r.backend.Triangulate(arena, samples, plan.Samples.Width, plan.Samples.Height, plan.TriangulateBound())
	if err != nil {
		return nil, err
	}

	return &Frame{
		Plan:         plan,
		Coefficients: coeffs,
		Vertices:     samples,
		VertexWidth:  int(plan.Samples.Width),
		VertexHeight: int(plan.Samples.Height),
		Triangles:    triangles,
	}, nil
}

// releaseFrame returns the current frame's arena to the pool.
func (r *Renderer) releaseFrame() {
	if r.arena != nil {
		r.pool.Put(r.arena)
	}
	r.arena = nil
	r.frame = nil
	r.lastMesh = nil
}

// Noise renders the noise overlay for a width x height viewport.
//
// It returns nil when the overlay is disabled (Alpha <= 0) or the viewport
// is empty. Images of recently used sizes are cached per configuration.
func (r *Renderer) Noise(width, height int) (*image.NRGBA, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrRendererClosed
	}
	config := r.opts.noise
	if !config.Enabled() || width <= 0 || height <= 0 {
		return nil, nil
	}
	key := noiseKey{width: width, height: height, config: config}
	if img, ok := r.noiseCache.Get(key); ok {
		return img, nil
	}

	bound := gpucore.Bound{X: uint32(width), Y: uint32(height)}
	img, err := r.backend.ComputeNoise(width, height, config.Uniforms(), bound)
	if err != nil {
		return nil, fmt.Errorf("meshgradient: noise: %w", err)
	}
	r.noiseCache.Set(key, img)
	return img, nil
}

// Close releases the renderer's buffers and, when the renderer selected
// its own backend, the backend. Close is safe to call multiple times.
func (r *Renderer) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return
	}
	r.closed = true
	r.releaseFrame()
	r.noiseCache.Clear()
	if r.ownsBackend {
		r.backend.Close()
	}
}
