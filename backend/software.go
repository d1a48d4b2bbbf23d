package backend

import (
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/gogpu/meshgradient/gpucore"
	"github.com/gogpu/meshgradient/internal/compute"
	"github.com/gogpu/meshgradient/internal/parallel"
)

// SoftwareBackend runs the pipeline stages as CPU kernels on a
// work-stealing goroutine pool.
type SoftwareBackend struct {
	mu      sync.RWMutex
	workers int
	pool    *parallel.WorkerPool
}

// init registers the software backend on package import.
func init() {
	Register(BackendSoftware, func() ComputeBackend {
		return NewSoftwareBackend(0)
	})
}

// NewSoftwareBackend creates a CPU backend with the given number of
// workers. Zero or a negative count uses GOMAXPROCS.
func NewSoftwareBackend(workers int) *SoftwareBackend {
	return &SoftwareBackend{workers: workers}
}

// Name returns the backend identifier.
func (b *SoftwareBackend) Name() string {
	return BackendSoftware
}

// Init starts the worker pool. Calling Init twice is a no-op.
func (b *SoftwareBackend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pool == nil {
		b.pool = parallel.NewWorkerPool(b.workers)
		logger().Debug("software backend ready", "workers", b.pool.Workers())
	}
	return nil
}

// Close stops the worker pool.
func (b *SoftwareBackend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.pool != nil {
		b.pool.Close()
		b.pool = nil
	}
}

// Workers returns the worker count, or 0 before Init.
func (b *SoftwareBackend) Workers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.pool == nil {
		return 0
	}
	return b.pool.Workers()
}

// acquire returns the running pool while holding the read lock, so Close
// waits for in-flight stages.
func (b *SoftwareBackend) acquire() (*parallel.WorkerPool, error) {
	b.mu.RLock()
	if b.pool == nil {
		b.mu.RUnlock()
		return nil, ErrNotInitialized
	}
	return b.pool, nil
}

func (b *SoftwareBackend) release() { b.mu.RUnlock() }

// ComputePatches runs the patch interpolator.
func (b *SoftwareBackend) ComputePatches(arena *gpucore.Arena, points []gpucore.ControlPoint, grid gpucore.GridSize,
	smooth bool, bound gpucore.Bound,
) ([]gpucore.PatchCoefficients, error) {
	pool, err := b.acquire()
	if err != nil {
		return nil, err
	}
	defer b.release()

	start := time.Now()
	out, err := compute.ComputePatches(pool, arena, points, grid, smooth, bound)
	if err != nil {
		return nil, fmt.Errorf("backend: patch stage: %w", err)
	}
	logger().Debug("patch stage", "cells", len(out), "elapsed", time.Since(start))
	return out, nil
}

// Tessellate runs the tessellator.
func (b *SoftwareBackend) Tessellate(arena *gpucore.Arena, coeffs []gpucore.PatchCoefficients,
	params gpucore.TessellateParams, bound gpucore.Bound,
) ([]gpucore.SampleVertex, error) {
	pool, err := b.acquire()
	if err != nil {
		return nil, err
	}
	defer b.release()

	start := time.Now()
	out, err := compute.Tessellate(pool, arena, coeffs, params, bound)
	if err != nil {
		return nil, fmt.Errorf("backend: tessellate stage: %w", err)
	}
	logger().Debug("tessellate stage", "samples", len(out), "elapsed", time.Since(start))
	return out, nil
}

// Triangulate runs the triangulator.
func (b *SoftwareBackend) Triangulate(arena *gpucore.Arena, vertices []gpucore.SampleVertex,
	width, height uint32, bound gpucore.Bound,
) ([]gpucore.SampleVertex, error) {
	pool, err := b.acquire()
	if err != nil {
		return nil, err
	}
	defer b.release()

	start := time.Now()
	out, err := compute.Triangulate(pool, arena, vertices, width, height, bound)
	if err != nil {
		return nil, fmt.Errorf("backend: triangulate stage: %w", err)
	}
	logger().Debug("triangulate stage", "vertices", len(out), "elapsed", time.Since(start))
	return out, nil
}

// ComputeNoise renders the noise field.
func (b *SoftwareBackend) ComputeNoise(width, height int, uniforms gpucore.NoiseUniforms,
	bound gpucore.Bound,
) (*image.NRGBA, error) {
	pool, err := b.acquire()
	if err != nil {
		return nil, err
	}
	defer b.release()

	start := time.Now()
	img := compute.ComputeNoise(pool, width, height, uniforms, bound)
	logger().Debug("noise stage", "width", width, "height", height, "elapsed", time.Since(start))
	return img, nil
}
