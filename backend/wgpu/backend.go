package wgpu

import (
	"errors"
	"fmt"
	"image"
	"sync"
	"time"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/meshgradient/backend"
	"github.com/gogpu/meshgradient/gpucore"
	"github.com/gogpu/meshgradient/internal/compute"
	"github.com/gogpu/meshgradient/internal/parallel"
	"github.com/gogpu/wgpu/hal"
)

// ErrNoGPU reports that no usable adapter exists.
var ErrNoGPU = errors.New("wgpu: no GPU adapter")

// Backend runs the pipeline stages as WGSL compute shaders.
//
// All stages are serialised on one device. When the device is missing or
// a dispatch fails the stage runs on the CPU kernels.
type Backend struct {
	mu sync.Mutex

	instance hal.Instance
	device   hal.Device
	queue    hal.Queue

	pipelines *PipelineCache
	cpu       *parallel.WorkerPool

	adapterName    string
	initialized    bool
	gpuReady       bool
	externalDevice bool // shared device, not destroyed on Close

	// gpuErr is why the last GPU initialization failed, if it did.
	gpuErr error
}

var _ backend.ComputeBackend = (*Backend)(nil)

// New creates a GPU backend. Call Init before use.
func New() *Backend {
	return &Backend{}
}

// NewWithDevice creates a backend on an existing device and queue and
// builds its pipelines. The device is not destroyed by Close.
func NewWithDevice(device hal.Device, queue hal.Queue) (*Backend, error) {
	if device == nil || queue == nil {
		return nil, fmt.Errorf("wgpu: nil device or queue")
	}
	b := &Backend{device: device, queue: queue, externalDevice: true}
	if err := b.Init(); err != nil {
		return nil, err
	}
	if !b.gpuReady {
		err := b.gpuErr
		b.Close()
		return nil, fmt.Errorf("wgpu: pipelines unavailable on shared device: %w", err)
	}
	return b, nil
}

// Name returns the backend identifier.
func (b *Backend) Name() string {
	return backend.BackendWGPU
}

// Init opens a device when none was supplied and builds the compute
// pipelines. A missing GPU is not an error: the backend logs a warning and
// runs every stage on the CPU.
func (b *Backend) Init() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.initialized {
		return nil
	}
	b.cpu = parallel.NewWorkerPool(0)
	b.initialized = true

	if err := b.initGPU(); err != nil {
		b.gpuErr = err
		logger().Warn("wgpu: GPU init failed, using CPU kernels", "err", err)
	}
	return nil
}

func (b *Backend) initGPU() error {
	if b.device == nil {
		if err := b.openDevice(); err != nil {
			return err
		}
	}
	pc, err := NewPipelineCache(b.device)
	if err != nil {
		b.releaseDevice()
		return fmt.Errorf("create pipelines: %w", err)
	}
	b.pipelines = pc
	b.gpuReady = true
	logger().Info("wgpu: compute backend initialized", "adapter", b.adapterName, "pipelines", pc.PipelineCount())
	return nil
}

func (b *Backend) openDevice() error {
	halBackend, ok := hal.GetBackend(gputypes.BackendVulkan)
	if !ok {
		return fmt.Errorf("vulkan backend not available")
	}
	instance, err := halBackend.CreateInstance(&hal.InstanceDescriptor{Flags: 0})
	if err != nil {
		return fmt.Errorf("create instance: %w", err)
	}
	b.instance = instance

	adapters := instance.EnumerateAdapters(nil)
	if len(adapters) == 0 {
		b.releaseDevice()
		return ErrNoGPU
	}
	selected := &adapters[0]
	for i := range adapters {
		if adapters[i].Info.DeviceType == gputypes.DeviceTypeDiscreteGPU ||
			adapters[i].Info.DeviceType == gputypes.DeviceTypeIntegratedGPU {
			selected = &adapters[i]
			break
		}
	}

	open, err := selected.Adapter.Open(gputypes.Features(0), gputypes.DefaultLimits())
	if err != nil {
		b.releaseDevice()
		return fmt.Errorf("open device: %w", err)
	}
	b.device = open.Device
	b.queue = open.Queue
	b.adapterName = selected.Info.Name
	return nil
}

// releaseDevice drops the device and instance, destroying them unless
// they are shared.
func (b *Backend) releaseDevice() {
	if !b.externalDevice {
		if b.device != nil {
			b.device.Destroy()
		}
		if b.instance != nil {
			b.instance.Destroy()
		}
	}
	b.device = nil
	b.queue = nil
	b.instance = nil
	b.externalDevice = false
}

// Close releases the pipelines, the device (unless shared) and the CPU
// worker pool.
func (b *Backend) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pipelines != nil {
		b.pipelines.Close()
		b.pipelines = nil
	}
	b.releaseDevice()
	b.cpu.Close()
	b.cpu = nil
	b.gpuReady = false
	b.initialized = false
}

// GPUReady reports whether stages dispatch on the GPU.
func (b *Backend) GPUReady() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.gpuReady
}

// SetDeviceProvider switches the backend to a device shared by the
// application. The provider must expose HalDevice() and HalQueue()
// returning hal.Device and hal.Queue, as gogpu's device provider does.
func (b *Backend) SetDeviceProvider(provider any) error {
	type halProvider interface {
		HalDevice() any
		HalQueue() any
	}
	hp, ok := provider.(halProvider)
	if !ok {
		return fmt.Errorf("wgpu: provider does not expose HAL types")
	}
	device, ok := hp.HalDevice().(hal.Device)
	if !ok || device == nil {
		return fmt.Errorf("wgpu: provider HalDevice is not hal.Device")
	}
	queue, ok := hp.HalQueue().(hal.Queue)
	if !ok || queue == nil {
		return fmt.Errorf("wgpu: provider HalQueue is not hal.Queue")
	}

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.pipelines != nil {
		b.pipelines.Close()
		b.pipelines = nil
	}
	b.releaseDevice()
	b.gpuReady = false

	b.device = device
	b.queue = queue
	b.externalDevice = true
	b.adapterName = "shared"

	if !b.initialized {
		// Init builds the pipelines on the shared device.
		return nil
	}
	if err := b.initGPU(); err != nil {
		return fmt.Errorf("wgpu: create pipelines with shared device: %w", err)
	}
	return nil
}

// fallback logs a failed dispatch. The caller then runs the CPU kernel.
func fallback(stage gpucore.Stage, err error) {
	logger().Warn("wgpu: dispatch failed, using CPU kernel", "stage", stage.String(), "err", err)
}

// ComputePatches runs the patch interpolator.
func (b *Backend) ComputePatches(arena *gpucore.Arena, points []gpucore.ControlPoint, grid gpucore.GridSize,
	smooth bool, bound gpucore.Bound,
) ([]gpucore.PatchCoefficients, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return nil, backend.ErrNotInitialized
	}
	if len(points) < grid.Count() {
		return nil, fmt.Errorf("wgpu: patch stage: %w: %d control points for a %dx%d grid",
			compute.ErrBufferTooSmall, len(points), grid.Width, grid.Height)
	}

	start := time.Now()
	if b.gpuReady {
		out, err := b.gpuPatches(arena, points, grid, smooth, bound)
		if err == nil {
			logger().Debug("patch stage", "device", "gpu", "cells", len(out), "elapsed", time.Since(start))
			return out, nil
		}
		fallback(gpucore.StagePatch, err)
	}
	out, err := compute.ComputePatches(b.cpu, arena, points, grid, smooth, bound)
	if err != nil {
		return nil, fmt.Errorf("wgpu: patch stage: %w", err)
	}
	logger().Debug("patch stage", "device", "cpu", "cells", len(out), "elapsed", time.Since(start))
	return out, nil
}

func (b *Backend) gpuPatches(arena *gpucore.Arena, points []gpucore.ControlPoint, grid gpucore.GridSize,
	smooth bool, bound gpucore.Bound,
) ([]gpucore.PatchCoefficients, error) {
	cells := gpucore.CellGrid(grid)
	out := arena.Coefficients(cells.Count())
	if len(out) == 0 {
		return out, nil
	}
	entry := entryPatchLinear
	if smooth {
		entry = entryPatchSmooth
	}
	sp, pipeline, err := b.pipelines.stage(gpucore.StagePatch, entry)
	if err != nil {
		return nil, err
	}

	f := newFrame(b.device, b.queue)
	defer f.release()

	pointBytes := sliceBytes(points[:grid.Count()])
	pointBuf, err := f.upload("control_points", pointBytes, gputypes.BufferUsageStorage)
	if err != nil {
		return nil, err
	}
	gridBuf, err := uniform(f, "grid_size", grid)
	if err != nil {
		return nil, err
	}
	boundBuf, err := uniform(f, "bound", bound)
	if err != nil {
		return nil, err
	}
	size := uint64(len(out)) * gpucore.PatchCoefficientsSize
	result, err := f.buffer("patch_result", size, gputypes.BufferUsageStorage|gputypes.BufferUsageCopySrc|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	staging, err := f.buffer("patch_staging", size, gputypes.BufferUsageMapRead|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}

	err = f.run(computePass{
		label:    "patch",
		layout:   sp.bindLayout,
		pipeline: pipeline,
		entries: []gputypes.BindGroupEntry{
			bufferEntry(uint32(gpucore.PatchSlotControlPoints), pointBuf, uint64(len(pointBytes))),
			bufferEntry(uint32(gpucore.PatchSlotGridSize), gridBuf, gpucore.GridSizeSize),
			bufferEntry(uint32(gpucore.PatchSlotResult), result, size),
			bufferEntry(uint32(gpucore.PatchSlotBound), boundBuf, gpucore.GridSizeSize),
		},
		bound:   bound,
		prepare: clearBuffer(result, size),
		copyOut: copyBuffer(result, staging, size),
	})
	if err != nil {
		return nil, err
	}
	if err := readback(f, staging, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Tessellate runs the tessellator.
func (b *Backend) Tessellate(arena *gpucore.Arena, coeffs []gpucore.PatchCoefficients,
	params gpucore.TessellateParams, bound gpucore.Bound,
) ([]gpucore.SampleVertex, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return nil, backend.ErrNotInitialized
	}
	if params.Overflows() {
		return nil, fmt.Errorf("wgpu: tessellate stage: %w: %dx%d cells at %d subdivisions",
			compute.ErrGridOverflow, params.Width, params.Depth, params.Subdivisions)
	}
	if need := int(params.Width) * int(params.Depth); len(coeffs) < need {
		return nil, fmt.Errorf("wgpu: tessellate stage: %w: %d patches for %dx%d cells",
			compute.ErrBufferTooSmall, len(coeffs), params.Width, params.Depth)
	}

	start := time.Now()
	if b.gpuReady {
		out, err := b.gpuTessellate(arena, coeffs, params, bound)
		if err == nil {
			logger().Debug("tessellate stage", "device", "gpu", "samples", len(out), "elapsed", time.Since(start))
			return out, nil
		}
		fallback(gpucore.StageTessellate, err)
	}
	out, err := compute.Tessellate(b.cpu, arena, coeffs, params, bound)
	if err != nil {
		return nil, fmt.Errorf("wgpu: tessellate stage: %w", err)
	}
	logger().Debug("tessellate stage", "device", "cpu", "samples", len(out), "elapsed", time.Since(start))
	return out, nil
}

func (b *Backend) gpuTessellate(arena *gpucore.Arena, coeffs []gpucore.PatchCoefficients,
	params gpucore.TessellateParams, bound gpucore.Bound,
) ([]gpucore.SampleVertex, error) {
	out := arena.Samples(params.SampleGrid().Count())
	if len(out) == 0 {
		return out, nil
	}
	sp, pipeline, err := b.pipelines.stage(gpucore.StageTessellate, entryMain)
	if err != nil {
		return nil, err
	}

	f := newFrame(b.device, b.queue)
	defer f.release()

	patchBytes := sliceBytes(coeffs[:int(params.Width)*int(params.Depth)])
	patchBuf, err := f.upload("patches", patchBytes, gputypes.BufferUsageStorage)
	if err != nil {
		return nil, err
	}
	widthBuf, err := uniform(f, "width", params.Width)
	if err != nil {
		return nil, err
	}
	depthBuf, err := uniform(f, "depth", params.Depth)
	if err != nil {
		return nil, err
	}
	subBuf, err := uniform(f, "subdivisions", params.Subdivisions)
	if err != nil {
		return nil, err
	}
	boundBuf, err := uniform(f, "bound", bound)
	if err != nil {
		return nil, err
	}
	size := uint64(len(out)) * gpucore.SampleVertexSize
	result, err := f.buffer("tessellate_result", size, gputypes.BufferUsageStorage|gputypes.BufferUsageCopySrc|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	staging, err := f.buffer("tessellate_staging", size, gputypes.BufferUsageMapRead|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}

	err = f.run(computePass{
		label:    "tessellate",
		layout:   sp.bindLayout,
		pipeline: pipeline,
		entries: []gputypes.BindGroupEntry{
			bufferEntry(uint32(gpucore.TessellateSlotCoefficients), patchBuf, uint64(len(patchBytes))),
			bufferEntry(uint32(gpucore.TessellateSlotWidth), widthBuf, 4),
			bufferEntry(uint32(gpucore.TessellateSlotDepth), depthBuf, 4),
			bufferEntry(uint32(gpucore.TessellateSlotSubdivisions), subBuf, 4),
			bufferEntry(uint32(gpucore.TessellateSlotResult), result, size),
			bufferEntry(uint32(gpucore.TessellateSlotBound), boundBuf, gpucore.GridSizeSize),
		},
		bound:   bound,
		prepare: clearBuffer(result, size),
		copyOut: copyBuffer(result, staging, size),
	})
	if err != nil {
		return nil, err
	}
	if err := readback(f, staging, out); err != nil {
		return nil, err
	}
	return out, nil
}

// Triangulate runs the triangulator.
func (b *Backend) Triangulate(arena *gpucore.Arena, vertices []gpucore.SampleVertex,
	width, height uint32, bound gpucore.Bound,
) ([]gpucore.SampleVertex, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return nil, backend.ErrNotInitialized
	}
	grid := gpucore.GridSize{Width: width, Height: height}
	if len(vertices) < grid.Count() {
		return nil, fmt.Errorf("wgpu: triangulate stage: %w: %d vertices for a %dx%d grid",
			compute.ErrBufferTooSmall, len(vertices), width, height)
	}

	start := time.Now()
	if b.gpuReady {
		out, err := b.gpuTriangulate(arena, vertices, grid, bound)
		if err == nil {
			logger().Debug("triangulate stage", "device", "gpu", "vertices", len(out), "elapsed", time.Since(start))
			return out, nil
		}
		fallback(gpucore.StageTriangulate, err)
	}
	out, err := compute.Triangulate(b.cpu, arena, vertices, width, height, bound)
	if err != nil {
		return nil, fmt.Errorf("wgpu: triangulate stage: %w", err)
	}
	logger().Debug("triangulate stage", "device", "cpu", "vertices", len(out), "elapsed", time.Since(start))
	return out, nil
}

func (b *Backend) gpuTriangulate(arena *gpucore.Arena, vertices []gpucore.SampleVertex,
	grid gpucore.GridSize, bound gpucore.Bound,
) ([]gpucore.SampleVertex, error) {
	out := arena.Triangles(gpucore.TriangleVertexCount(grid))
	if len(out) == 0 {
		return out, nil
	}
	sp, pipeline, err := b.pipelines.stage(gpucore.StageTriangulate, entryMain)
	if err != nil {
		return nil, err
	}

	f := newFrame(b.device, b.queue)
	defer f.release()

	vertexBytes := sliceBytes(vertices[:grid.Count()])
	vertexBuf, err := f.upload("vertices", vertexBytes, gputypes.BufferUsageStorage)
	if err != nil {
		return nil, err
	}
	widthBuf, err := uniform(f, "width", grid.Width)
	if err != nil {
		return nil, err
	}
	heightBuf, err := uniform(f, "height", grid.Height)
	if err != nil {
		return nil, err
	}
	boundBuf, err := uniform(f, "bound", bound)
	if err != nil {
		return nil, err
	}
	size := uint64(len(out)) * gpucore.SampleVertexSize
	result, err := f.buffer("triangulate_result", size, gputypes.BufferUsageStorage|gputypes.BufferUsageCopySrc|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}
	staging, err := f.buffer("triangulate_staging", size, gputypes.BufferUsageMapRead|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}

	err = f.run(computePass{
		label:    "triangulate",
		layout:   sp.bindLayout,
		pipeline: pipeline,
		entries: []gputypes.BindGroupEntry{
			bufferEntry(uint32(gpucore.TriangulateSlotVertices), vertexBuf, uint64(len(vertexBytes))),
			bufferEntry(uint32(gpucore.TriangulateSlotWidth), widthBuf, 4),
			bufferEntry(uint32(gpucore.TriangulateSlotHeight), heightBuf, 4),
			bufferEntry(uint32(gpucore.TriangulateSlotResult), result, size),
			bufferEntry(uint32(gpucore.TriangulateSlotBound), boundBuf, gpucore.GridSizeSize),
		},
		bound:   bound,
		prepare: clearBuffer(result, size),
		copyOut: copyBuffer(result, staging, size),
	})
	if err != nil {
		return nil, err
	}
	if err := readback(f, staging, out); err != nil {
		return nil, err
	}
	return out, nil
}

// ComputeNoise renders the noise field. Only the part of the image inside
// bound is dispatched; the rest stays transparent.
func (b *Backend) ComputeNoise(width, height int, uniforms gpucore.NoiseUniforms,
	bound gpucore.Bound,
) (*image.NRGBA, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.initialized {
		return nil, backend.ErrNotInitialized
	}

	start := time.Now()
	if b.gpuReady {
		img, err := b.gpuNoise(width, height, uniforms, bound)
		if err == nil {
			logger().Debug("noise stage", "device", "gpu", "width", width, "height", height, "elapsed", time.Since(start))
			return img, nil
		}
		fallback(gpucore.StageNoise, err)
	}
	img := compute.ComputeNoise(b.cpu, width, height, uniforms, bound)
	logger().Debug("noise stage", "device", "cpu", "width", width, "height", height, "elapsed", time.Since(start))
	return img, nil
}

func (b *Backend) gpuNoise(width, height int, uniforms gpucore.NoiseUniforms, bound gpucore.Bound) (*image.NRGBA, error) {
	img := image.NewNRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
	if width <= 0 || height <= 0 {
		return img, nil
	}
	// Noise at (x, y) depends only on (x, y), so the texture covers just
	// the bounded region.
	tw := min(uint32(width), bound.X)
	th := min(uint32(height), bound.Y)
	if tw == 0 || th == 0 {
		return img, nil
	}
	sp, pipeline, err := b.pipelines.stage(gpucore.StageNoise, entryMain)
	if err != nil {
		return nil, err
	}

	f := newFrame(b.device, b.queue)
	defer f.release()

	tex, view, err := f.storageTexture("noise_output", tw, th)
	if err != nil {
		return nil, err
	}
	uniformBuf, err := uniform(f, "noise_uniforms", uniforms)
	if err != nil {
		return nil, err
	}
	rowPitch := alignRow(tw * 4)
	size := uint64(rowPitch) * uint64(th)
	staging, err := f.buffer("noise_staging", size, gputypes.BufferUsageMapRead|gputypes.BufferUsageCopyDst)
	if err != nil {
		return nil, err
	}

	full := hal.TextureRange{Aspect: gputypes.TextureAspectAll, MipLevelCount: 1, ArrayLayerCount: 1}
	err = f.run(computePass{
		label:    "noise",
		layout:   sp.bindLayout,
		pipeline: pipeline,
		entries: []gputypes.BindGroupEntry{
			{Binding: uint32(gpucore.NoiseSlotOutput), Resource: gputypes.TextureViewBinding{TextureView: view.NativeHandle()}},
			bufferEntry(uint32(gpucore.NoiseSlotUniforms), uniformBuf, gpucore.NoiseUniformsSize),
		},
		bound: gpucore.Bound{X: tw, Y: th},
		prepare: func(enc hal.CommandEncoder) {
			enc.TransitionTextures([]hal.TextureBarrier{{
				Texture: tex,
				Range:   full,
				Usage:   hal.TextureUsageTransition{NewUsage: gputypes.TextureUsageStorageBinding},
			}})
		},
		copyOut: func(enc hal.CommandEncoder) {
			enc.TransitionTextures([]hal.TextureBarrier{{
				Texture: tex,
				Range:   full,
				Usage: hal.TextureUsageTransition{
					OldUsage: gputypes.TextureUsageStorageBinding,
					NewUsage: gputypes.TextureUsageCopySrc,
				},
			}})
			enc.CopyTextureToBuffer(tex, staging, []hal.BufferTextureCopy{{
				BufferLayout: hal.ImageDataLayout{Offset: 0, BytesPerRow: rowPitch, RowsPerImage: th},
				TextureBase: hal.ImageCopyTexture{
					Texture:  tex,
					MipLevel: 0,
					Origin:   hal.Origin3D{},
					Aspect:   gputypes.TextureAspectAll,
				},
				Size: hal.Extent3D{Width: tw, Height: th, DepthOrArrayLayers: 1},
			}})
		},
	})
	if err != nil {
		return nil, err
	}

	rows := make([]byte, size)
	if err := readback(f, staging, rows); err != nil {
		return nil, err
	}
	for y := range int(th) {
		src := rows[y*int(rowPitch):][:tw*4]
		copy(img.Pix[img.PixOffset(0, y):], src)
	}
	return img, nil
}
