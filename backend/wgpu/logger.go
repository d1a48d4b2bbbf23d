package wgpu

import (
	"log/slog"

	"github.com/gogpu/meshgradient/backend"
)

// logger shares the backend logger, so meshgradient.SetLogger reaches the
// GPU backend without an import cycle.
func logger() *slog.Logger { return backend.Logger() }
