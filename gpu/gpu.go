//go:build !nogpu

// Package gpu registers the WebGPU compute backend.
//
// Import this package to run the mesh gradient stages as compute shaders:
//
//	import _ "github.com/gogpu/meshgradient/gpu"
//
// The backend is then preferred by backend.Default. If GPU initialization
// fails (no Vulkan driver, no adapter) the backend runs the CPU kernels, so
// importing this package never breaks rendering.
//
// Build with the nogpu tag to leave the GPU backend out entirely.
package gpu

import (
	"fmt"
	"sync"

	"github.com/gogpu/gpucontext"
	"github.com/gogpu/meshgradient/backend"
	"github.com/gogpu/meshgradient/backend/wgpu"

	_ "github.com/gogpu/wgpu/hal/vulkan"
)

var (
	providerMu sync.Mutex
	provider   gpucontext.DeviceProvider
)

func init() {
	backend.Register(backend.BackendWGPU, newBackend)
}

func newBackend() backend.ComputeBackend {
	b := wgpu.New()

	providerMu.Lock()
	p := provider
	providerMu.Unlock()

	if p != nil {
		if err := b.SetDeviceProvider(p); err != nil {
			backend.Logger().Warn("gpu: shared device rejected, opening own device", "err", err)
		}
	}
	return b
}

// SetDeviceProvider makes backends created afterwards share the device of
// an external provider (e.g., a gogpu application) instead of opening
// their own. The provider must also expose its HAL device and queue via
// HalDevice() and HalQueue(). Pass nil to go back to private devices.
func SetDeviceProvider(p gpucontext.DeviceProvider) error {
	if p != nil {
		if _, ok := p.(interface {
			HalDevice() any
			HalQueue() any
		}); !ok {
			return fmt.Errorf("gpu: provider %T does not expose HAL types", p)
		}
	}

	providerMu.Lock()
	defer providerMu.Unlock()
	provider = p
	return nil
}
