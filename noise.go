package meshgradient

import "github.com/gogpu/meshgradient/gpucore"

// NoiseConfig configures the noise field overlay.
type NoiseConfig struct {
	// Smooth selects three octaves of value noise instead of white noise.
	Smooth bool

	// Color1, Color2 and Color3 are the grey levels, on a 0-255 scale, the
	// noise intensity ramps through at 0, 0.5 and 1.
	Color1, Color2, Color3 float32

	// Alpha is the opacity of the overlay in [0, 1]. At 0 no noise image
	// is produced.
	Alpha float32
}

// Default noise parameters.
const (
	DefaultNoiseColor1 = 94
	DefaultNoiseColor2 = 168
	DefaultNoiseColor3 = 147
	DefaultNoiseAlpha  = 0.05
)

// DefaultNoiseConfig returns the smooth grain overlay used when no
// WithNoise option is given.
func DefaultNoiseConfig() NoiseConfig {
	return NoiseConfig{
		Smooth: true,
		Color1: DefaultNoiseColor1,
		Color2: DefaultNoiseColor2,
		Color3: DefaultNoiseColor3,
		Alpha:  DefaultNoiseAlpha,
	}
}

// Enabled reports whether the config produces a noise image.
func (c NoiseConfig) Enabled() bool {
	return c.Alpha > 0
}

// Uniforms converts the config to the noise stage's uniform block.
func (c NoiseConfig) Uniforms() gpucore.NoiseUniforms {
	u := gpucore.NoiseUniforms{
		Color1:     c.Color1,
		Color2:     c.Color2,
		Color3:     c.Color3,
		NoiseAlpha: gpucore.Clamp01(c.Alpha),
	}
	if c.Smooth {
		u.IsSmooth = 1
	}
	return u
}
