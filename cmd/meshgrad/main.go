// Command meshgrad renders a mesh gradient to PNG.
//
// Usage:
//
//	meshgrad [-config gradient.yml] [-out gradient.png] [-size 800x600]
//
// With an animation section in the config, numbered frames are written
// next to -out instead.
package main

import (
	"errors"
	"flag"
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/gogpu/meshgradient"
	"github.com/gogpu/meshgradient/backend"
	_ "github.com/gogpu/meshgradient/gpu" // registers the wgpu backend
	"github.com/schollz/progressbar/v3"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "meshgrad: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath  = flag.String("config", "", "YAML gradient description (default: built-in 3x3)")
		out         = flag.String("out", "gradient.png", "output PNG")
		size        = flag.String("size", "800x600", "output size WxH")
		backendName = flag.String("backend", "", "compute backend (software, wgpu; default: best available)")
		noNoise     = flag.Bool("no-noise", false, "disable the noise overlay")
		verbose     = flag.Bool("v", false, "debug logging")
	)
	flag.Parse()

	level := slog.LevelInfo
	if *verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	meshgradient.SetLogger(logger)

	width, height, err := parseSize(*size)
	if err != nil {
		return err
	}
	config, err := LoadConfig(*configPath)
	if err != nil {
		return err
	}
	mesh, err := config.Mesh()
	if err != nil {
		return err
	}
	opts, err := config.Options()
	if err != nil {
		return err
	}
	if *noNoise {
		opts = append(opts, meshgradient.WithNoise(meshgradient.NoiseConfig{}))
	}
	if *backendName != "" {
		b := backend.Get(*backendName)
		if b == nil {
			return fmt.Errorf("backend %q not available (have %s)", *backendName, strings.Join(backend.Available(), ", "))
		}
		defer b.Close()
		opts = append(opts, meshgradient.WithBackend(b))
	}

	animConfig, frames, animate := config.Animator()
	var source meshgradient.MeshSource = meshgradient.StaticSource(mesh)
	if animate {
		source = meshgradient.NewAnimator(mesh, animConfig)
	} else {
		frames = 1
	}

	r, err := meshgradient.NewRenderer(source, opts...)
	if err != nil {
		return err
	}
	defer r.Close()

	noise, err := r.Noise(width, height)
	if err != nil {
		return err
	}

	var bar *progressbar.ProgressBar
	if animate {
		bar = progressbar.Default(int64(frames), "rendering")
		defer bar.Close()
	}
	for i := range frames {
		frame, err := r.Render()
		if err != nil {
			return err
		}
		img := image.NewNRGBA(image.Rect(0, 0, width, height))
		frame.Composite(img, noise)

		path := *out
		if animate {
			path = framePath(*out, i)
		}
		if err := savePNG(path, img); err != nil {
			return err
		}
		if bar != nil {
			_ = bar.Add(1)
		}
	}

	slog.Info("done", "out", *out, "frames", frames, "backend", r.Backend().Name())
	return nil
}

func parseSize(s string) (int, int, error) {
	var w, h int
	if _, err := fmt.Sscanf(s, "%dx%d", &w, &h); err != nil {
		return 0, 0, fmt.Errorf("invalid size %q: %w", s, err)
	}
	if w <= 0 || h <= 0 {
		return 0, 0, errors.New("size must be positive")
	}
	return w, h, nil
}

// framePath inserts a zero-padded frame number before the extension.
func framePath(out string, i int) string {
	ext := filepath.Ext(out)
	return fmt.Sprintf("%s_%04d%s", strings.TrimSuffix(out, ext), i, ext)
}

func savePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := png.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}
