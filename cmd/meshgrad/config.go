package main

import (
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/gogpu/meshgradient"
	"gopkg.in/yaml.v3"
)

// maxConfigSize bounds the config file read from disk.
const maxConfigSize = 1024 * 1024

// Config is the YAML description of a gradient.
//
//	width: 3
//	height: 3
//	colors: ["#ff5e62", "#ff9966", "#ffd194", ...]
//	subdivisions: 24
//	noise:
//	  alpha: 0.08
//	animation:
//	  frames: 120
//	  min_duration: 1s
type Config struct {
	Width        int      `yaml:"width"`
	Height       int      `yaml:"height"`
	Colors       []string `yaml:"colors"` // row-major, bottom row first
	Subdivisions *int     `yaml:"subdivisions"`
	Smooth       *bool    `yaml:"smooth"` // pointer to distinguish unset vs false
	Seed         uint64   `yaml:"seed"`

	Noise     *NoiseConfig     `yaml:"noise"`
	Animation *AnimationConfig `yaml:"animation"`
}

// NoiseConfig overrides the default noise overlay.
type NoiseConfig struct {
	Smooth *bool    `yaml:"smooth"`
	Colors []uint8  `yaml:"colors"` // three grey levels
	Alpha  *float32 `yaml:"alpha"`
}

// AnimationConfig enables animated output.
type AnimationConfig struct {
	Frames          int           `yaml:"frames"`
	FramesPerSecond int           `yaml:"fps"`
	MinDuration     time.Duration `yaml:"min_duration"`
	MaxDuration     time.Duration `yaml:"max_duration"`
}

// defaultConfig is a warm 3x3 gradient.
func defaultConfig() Config {
	return Config{
		Width:  3,
		Height: 3,
		Colors: []string{
			"#2b1055", "#7597de", "#c6ffdd",
			"#ff5e62", "#ff9966", "#fbd786",
			"#f7797d", "#ffd194", "#70e1f5",
		},
	}
}

// LoadConfig reads a YAML config. An empty path returns the default.
func LoadConfig(path string) (Config, error) {
	if path == "" {
		return defaultConfig(), nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return Config{}, err
	}
	if info.Size() > maxConfigSize {
		return Config{}, fmt.Errorf("config %s too large: %d bytes", path, info.Size())
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return Config{}, fmt.Errorf("parse %s: %w", path, err)
	}
	slog.Debug("loaded config", "path", path, "grid", fmt.Sprintf("%dx%d", config.Width, config.Height))
	return config, nil
}

// Mesh builds the control mesh described by the config.
func (c Config) Mesh() (*meshgradient.ControlMesh, error) {
	colors := make([]meshgradient.RGBA, len(c.Colors))
	for i, s := range c.Colors {
		rgba, err := meshgradient.ParseHex(s)
		if err != nil {
			return nil, err
		}
		colors[i] = rgba
	}
	grid, err := meshgradient.GridFromSlice(c.Width, colors)
	if err != nil {
		return nil, err
	}
	if grid.Height != c.Height {
		return nil, fmt.Errorf("%d colours do not fill a %dx%d grid", len(colors), c.Width, c.Height)
	}
	return meshgradient.GenerateMesh(grid), nil
}

// Options converts the config to renderer options.
func (c Config) Options() ([]meshgradient.Option, error) {
	var opts []meshgradient.Option
	if c.Subdivisions != nil {
		opts = append(opts, meshgradient.WithSubdivisions(*c.Subdivisions))
	}
	if c.Smooth != nil {
		opts = append(opts, meshgradient.WithSmoothColors(*c.Smooth))
	}
	if c.Noise != nil {
		noise, err := c.Noise.config()
		if err != nil {
			return nil, err
		}
		opts = append(opts, meshgradient.WithNoise(noise))
	}
	return opts, nil
}

func (n *NoiseConfig) config() (meshgradient.NoiseConfig, error) {
	out := meshgradient.DefaultNoiseConfig()
	if n.Smooth != nil {
		out.Smooth = *n.Smooth
	}
	switch len(n.Colors) {
	case 0:
	case 3:
		out.Color1, out.Color2, out.Color3 = float32(n.Colors[0]), float32(n.Colors[1]), float32(n.Colors[2])
	default:
		return out, fmt.Errorf("noise needs 3 colours, got %d", len(n.Colors))
	}
	if n.Alpha != nil {
		out.Alpha = *n.Alpha
	}
	return out, nil
}

// Animator returns the animator config, or false when animation is off.
func (c Config) Animator() (meshgradient.AnimatorConfig, int, bool) {
	if c.Animation == nil || c.Animation.Frames <= 0 {
		return meshgradient.AnimatorConfig{}, 0, false
	}
	return meshgradient.AnimatorConfig{
		FramesPerSecond: c.Animation.FramesPerSecond,
		MinDuration:     c.Animation.MinDuration,
		MaxDuration:     c.Animation.MaxDuration,
		Seed:            c.Seed,
	}, c.Animation.Frames, true
}
