package backend

import (
	"os"
	"slices"
	"sync"
)

// EnvBackend names an environment variable that, when set to a registered
// backend name, overrides the priority order of Default.
const EnvBackend = "MESHGRADIENT_BACKEND"

// BackendFactory creates a new backend instance.
type BackendFactory func() ComputeBackend

// registry holds registered backends.
var (
	registryMu sync.RWMutex
	backends   = make(map[string]BackendFactory)
	// Priority order for backend selection (first available wins).
	backendPriority = []string{BackendWGPU, BackendSoftware}
)

// Register registers a backend factory with the given name.
// This is typically called from init() functions in backend packages.
// If a backend with the same name is already registered, it will be replaced.
func Register(name string, factory BackendFactory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	backends[name] = factory
}

// Unregister removes a backend from the registry.
// This is useful for testing.
func Unregister(name string) {
	registryMu.Lock()
	defer registryMu.Unlock()
	delete(backends, name)
}

// Available returns the registered backend names in sorted order.
func Available() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// IsRegistered checks if a backend with the given name is registered.
func IsRegistered(name string) bool {
	registryMu.RLock()
	defer registryMu.RUnlock()
	_, ok := backends[name]
	return ok
}

// Get returns a backend instance by name.
// Returns nil if the backend is not registered.
func Get(name string) ComputeBackend {
	registryMu.RLock()
	factory, ok := backends[name]
	registryMu.RUnlock()
	if !ok {
		return nil
	}
	return factory()
}

// Default returns the best available backend based on priority.
// Priority order: $MESHGRADIENT_BACKEND > wgpu > software.
// Returns nil if no backends are registered.
func Default() ComputeBackend {
	registryMu.RLock()
	defer registryMu.RUnlock()

	if name := os.Getenv(EnvBackend); name != "" {
		if factory, ok := backends[name]; ok {
			if b := factory(); b != nil {
				return b
			}
		}
		logger().Warn("backend: requested backend not registered", "env", EnvBackend, "backend", name)
	}

	for _, name := range backendPriority {
		if factory, ok := backends[name]; ok {
			if b := factory(); b != nil {
				return b
			}
		}
	}

	// Fallback: first non-nil backend in name order.
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if b := backends[name](); b != nil {
			return b
		}
	}
	return nil
}

// MustDefault returns the default backend or panics.
func MustDefault() ComputeBackend {
	b := Default()
	if b == nil {
		panic("backend: no backend available")
	}
	return b
}

// InitDefault initializes the default backend. When the preferred backend
// fails to initialize, the software backend is tried before giving up.
func InitDefault() (ComputeBackend, error) {
	b := Default()
	if b == nil {
		return nil, ErrBackendNotAvailable
	}

	err := b.Init()
	if err == nil {
		return b, nil
	}
	if b.Name() == BackendSoftware {
		return nil, err
	}

	logger().Warn("backend: init failed, using software", "backend", b.Name(), "err", err)
	sw := Get(BackendSoftware)
	if sw == nil {
		return nil, err
	}
	if swErr := sw.Init(); swErr != nil {
		return nil, swErr
	}
	return sw, nil
}
