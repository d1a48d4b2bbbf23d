package wgpu

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/gogpu/gputypes"
	"github.com/gogpu/meshgradient/backend"
	"github.com/gogpu/meshgradient/gpucore"
	"github.com/gogpu/meshgradient/internal/compute"
	"github.com/gogpu/meshgradient/internal/parallel"
	"github.com/gogpu/wgpu/hal"
	"github.com/gogpu/wgpu/hal/noop"
)

// createNoopDevice creates a noop HAL device for testing.
func createNoopDevice(t *testing.T) (hal.Device, hal.Queue, func()) {
	t.Helper()
	api := noop.API{}
	instance, err := api.CreateInstance(nil)
	if err != nil {
		t.Fatalf("CreateInstance failed: %v", err)
	}
	adapters := instance.EnumerateAdapters(nil)
	openDev, err := adapters[0].Adapter.Open(0, gputypes.DefaultLimits())
	if err != nil {
		instance.Destroy()
		t.Fatalf("Open failed: %v", err)
	}
	cleanup := func() {
		openDev.Device.Destroy()
		instance.Destroy()
	}
	return openDev.Device, openDev.Queue, cleanup
}

// newNoopBackend builds a backend on a noop device. The noop device
// accepts every command but executes none, so stage outputs are zero.
func newNoopBackend(t *testing.T) *Backend {
	t.Helper()
	device, queue, cleanup := createNoopDevice(t)
	t.Cleanup(cleanup)

	b, err := NewWithDevice(device, queue)
	if err != nil {
		skipNagaLimitation(t, err)
		t.Fatalf("NewWithDevice: %v", err)
	}
	t.Cleanup(b.Close)
	return b
}

func testGrid(w, h int) ([]gpucore.ControlPoint, gpucore.GridSize) {
	points := make([]gpucore.ControlPoint, w*h)
	for y := range h {
		for x := range w {
			fx := float32(x) / float32(w-1)
			fy := float32(y) / float32(h-1)
			points[x+y*w] = gpucore.ControlPoint{
				Location: gpucore.Vec2{X: fx*2 - 1, Y: fy*2 - 1},
				UTangent: gpucore.Vec2{X: 2 / float32(w-1)},
				VTangent: gpucore.Vec2{Y: 2 / float32(h-1)},
				Color:    gpucore.ColorVec(fx, fy, 1-fx),
			}
		}
	}
	return points, gpucore.GridSize{Width: uint32(w), Height: uint32(h)}
}

func TestBackendName(t *testing.T) {
	if got := New().Name(); got != backend.BackendWGPU {
		t.Errorf("Name() = %q, want %q", got, backend.BackendWGPU)
	}
}

func TestBackendNotInitialized(t *testing.T) {
	b := New()
	points, grid := testGrid(3, 3)
	arena := gpucore.NewArena(gpucore.Plan{})

	_, err := b.ComputePatches(arena, points, grid, true, gpucore.Bound{X: 2, Y: 2})
	if !errors.Is(err, backend.ErrNotInitialized) {
		t.Errorf("ComputePatches err = %v, want ErrNotInitialized", err)
	}
	_, err = b.Tessellate(arena, nil, gpucore.TessellateParams{}, gpucore.Bound{})
	if !errors.Is(err, backend.ErrNotInitialized) {
		t.Errorf("Tessellate err = %v, want ErrNotInitialized", err)
	}
	_, err = b.Triangulate(arena, nil, 0, 0, gpucore.Bound{})
	if !errors.Is(err, backend.ErrNotInitialized) {
		t.Errorf("Triangulate err = %v, want ErrNotInitialized", err)
	}
	_, err = b.ComputeNoise(4, 4, gpucore.NoiseUniforms{}, gpucore.Bound{X: 4, Y: 4})
	if !errors.Is(err, backend.ErrNotInitialized) {
		t.Errorf("ComputeNoise err = %v, want ErrNotInitialized", err)
	}
}

func TestNewWithDeviceNil(t *testing.T) {
	if _, err := NewWithDevice(nil, nil); err == nil {
		t.Error("expected error for nil device")
	}
}

func TestNewWithDeviceCreatesPipelines(t *testing.T) {
	b := newNoopBackend(t)
	if !b.GPUReady() {
		t.Fatal("GPUReady() = false on noop device")
	}
	// patch_smooth, patch_linear and one main per other stage.
	if got := b.pipelines.PipelineCount(); got != 5 {
		t.Errorf("PipelineCount() = %d, want 5", got)
	}
}

func TestNoopDispatchShapes(t *testing.T) {
	b := newNoopBackend(t)

	points, grid := testGrid(4, 3)
	plan, err := gpucore.NewPlan(gpucore.PipelineConfig{GridWidth: 4, GridHeight: 3, Subdivisions: 2})
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}
	arena := gpucore.NewArena(plan)

	coeffs, err := b.ComputePatches(arena, points, grid, false, plan.PatchBound())
	if err != nil {
		t.Fatalf("ComputePatches: %v", err)
	}
	if len(coeffs) != plan.PatchCount() {
		t.Errorf("patches = %d, want %d", len(coeffs), plan.PatchCount())
	}

	samples, err := b.Tessellate(arena, coeffs, plan.TessellateParams(), plan.TessellateBound())
	if err != nil {
		t.Fatalf("Tessellate: %v", err)
	}
	if len(samples) != plan.SampleCount() {
		t.Errorf("samples = %d, want %d", len(samples), plan.SampleCount())
	}

	tris, err := b.Triangulate(arena, samples, plan.Samples.Width, plan.Samples.Height, plan.TriangulateBound())
	if err != nil {
		t.Fatalf("Triangulate: %v", err)
	}
	if len(tris) != plan.TriangleVertexCount() {
		t.Errorf("triangle vertices = %d, want %d", len(tris), plan.TriangleVertexCount())
	}

	img, err := b.ComputeNoise(70, 33, gpucore.NoiseUniforms{Color1: 94, Color2: 168, Color3: 147, NoiseAlpha: 0.1},
		gpucore.Bound{X: 70, Y: 33})
	if err != nil {
		t.Fatalf("ComputeNoise: %v", err)
	}
	if got := img.Bounds().Dx(); got != 70 {
		t.Errorf("noise width = %d, want 70", got)
	}
	if got := img.Bounds().Dy(); got != 33 {
		t.Errorf("noise height = %d, want 33", got)
	}
}

func TestBufferTooSmall(t *testing.T) {
	b := newNoopBackend(t)
	arena := gpucore.NewArena(gpucore.Plan{})
	points, _ := testGrid(2, 2)

	_, err := b.ComputePatches(arena, points, gpucore.GridSize{Width: 3, Height: 3}, true, gpucore.Bound{X: 2, Y: 2})
	if !errors.Is(err, compute.ErrBufferTooSmall) {
		t.Errorf("err = %v, want ErrBufferTooSmall", err)
	}
}

func TestTessellateOverflow(t *testing.T) {
	b := newNoopBackend(t)
	params := gpucore.TessellateParams{Width: 1, Depth: 1, Subdivisions: math.MaxUint32}
	coeffs := make([]gpucore.PatchCoefficients, 1)

	_, err := b.Tessellate(gpucore.NewArena(gpucore.Plan{}), coeffs, params, gpucore.Bound{X: 1, Y: 1})
	if !errors.Is(err, compute.ErrGridOverflow) {
		t.Errorf("err = %v, want ErrGridOverflow", err)
	}
}

// TestCPUFallbackMatchesKernels initializes without a Vulkan driver
// registered, so every stage runs on the CPU kernels.
func TestCPUFallbackMatchesKernels(t *testing.T) {
	if _, ok := hal.GetBackend(gputypes.BackendVulkan); ok {
		t.Skip("vulkan registered; fallback path not taken")
	}
	b := New()
	if err := b.Init(); err != nil {
		t.Fatalf("Init: %v", err)
	}
	defer b.Close()
	if b.GPUReady() {
		t.Fatal("GPUReady() = true without a GPU backend")
	}

	points, grid := testGrid(3, 3)
	plan, err := gpucore.NewPlan(gpucore.PipelineConfig{GridWidth: 3, GridHeight: 3, Subdivisions: 3})
	if err != nil {
		t.Fatalf("NewPlan: %v", err)
	}

	got, err := b.ComputePatches(gpucore.NewArena(plan), points, grid, true, plan.PatchBound())
	if err != nil {
		t.Fatalf("ComputePatches: %v", err)
	}

	pool := parallel.NewWorkerPool(2)
	defer pool.Close()
	want, err := compute.ComputePatches(pool, gpucore.NewArena(plan), points, grid, true, plan.PatchBound())
	if err != nil {
		t.Fatalf("compute.ComputePatches: %v", err)
	}
	if len(got) != len(want) {
		t.Fatalf("len = %d, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("patch %d differs from CPU kernel", i)
		}
	}
}

type fakeProvider struct {
	device any
	queue  any
}

func (p fakeProvider) HalDevice() any { return p.device }
func (p fakeProvider) HalQueue() any  { return p.queue }

func TestSetDeviceProvider(t *testing.T) {
	device, queue, cleanup := createNoopDevice(t)
	defer cleanup()

	t.Run("rejects non-provider", func(t *testing.T) {
		if err := New().SetDeviceProvider(struct{}{}); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("rejects wrong types", func(t *testing.T) {
		err := New().SetDeviceProvider(fakeProvider{device: "device", queue: queue})
		if err == nil || !strings.Contains(err.Error(), "HalDevice") {
			t.Errorf("err = %v, want HalDevice error", err)
		}
	})

	t.Run("shared device before init", func(t *testing.T) {
		b := New()
		if err := b.SetDeviceProvider(fakeProvider{device: device, queue: queue}); err != nil {
			t.Fatalf("SetDeviceProvider: %v", err)
		}
		if err := b.Init(); err != nil {
			t.Fatalf("Init: %v", err)
		}
		defer b.Close()
		if !b.GPUReady() {
			t.Skip("pipelines unavailable on noop device")
		}
		if !b.externalDevice {
			t.Error("shared device not marked external")
		}
	})
}

func TestAlignRow(t *testing.T) {
	tests := []struct {
		in, want uint32
	}{
		{0, 0},
		{4, 256},
		{256, 256},
		{257, 512},
		{1024, 1024},
	}
	for _, tt := range tests {
		if got := alignRow(tt.in); got != tt.want {
			t.Errorf("alignRow(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestSliceBytes(t *testing.T) {
	if got := sliceBytes([]gpucore.SampleVertex(nil)); got != nil {
		t.Errorf("sliceBytes(nil) = %v, want nil", got)
	}
	v := make([]gpucore.SampleVertex, 3)
	if got := len(sliceBytes(v)); got != 3*gpucore.SampleVertexSize {
		t.Errorf("len = %d, want %d", got, 3*gpucore.SampleVertexSize)
	}
	u := gpucore.NoiseUniforms{}
	if got := len(valueBytes(&u)); got != gpucore.NoiseUniformsSize {
		t.Errorf("uniform bytes = %d, want %d", got, gpucore.NoiseUniformsSize)
	}
}
