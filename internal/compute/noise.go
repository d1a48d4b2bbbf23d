package compute

import (
	"image"
	"math"

	"github.com/gogpu/meshgradient/gpucore"
	"github.com/gogpu/meshgradient/internal/parallel"
)

// Smooth noise is three octaves of value noise. Lattice periods are in
// pixels; amplitudes sum to one.
var noiseOctaves = [3]struct {
	period    float32
	amplitude float32
	seed      uint32
}{
	{period: 16, amplitude: 4.0 / 7.0, seed: 0x9e3779b9},
	{period: 8, amplitude: 2.0 / 7.0, seed: 0x85ebca6b},
	{period: 4, amplitude: 1.0 / 7.0, seed: 0xc2b2ae35},
}

// pcgHash is the 32-bit PCG output permutation used as an integer hash.
func pcgHash(v uint32) uint32 {
	state := v*747796405 + 2891336453
	word := ((state >> ((state >> 28) + 4)) ^ state) * 277803737
	return (word >> 22) ^ word
}

// hash2 maps a lattice point to [0, 1].
func hash2(x, y uint32) float32 {
	return float32(pcgHash(x+pcgHash(y))) / math.MaxUint32
}

func smoothstep(t float32) float32 {
	return t * t * (3 - 2*t)
}

func lerp(a, b, t float32) float32 {
	return a + (b-a)*t
}

// valueNoise interpolates hashed lattice values around pixel (x, y).
func valueNoise(x, y uint32, period float32, seed uint32) float32 {
	fx := (float32(x) + 0.5) / period
	fy := (float32(y) + 0.5) / period
	ix, iy := uint32(fx), uint32(fy)
	tx := smoothstep(fx - float32(ix))
	ty := smoothstep(fy - float32(iy))

	ix += seed
	a := hash2(ix, iy)
	b := hash2(ix+1, iy)
	c := hash2(ix, iy+1)
	d := hash2(ix+1, iy+1)
	return lerp(lerp(a, b, tx), lerp(c, d, tx), ty)
}

// NoiseValue returns the noise intensity in [0, 1] at pixel (x, y).
// Without smoothing every pixel is independent white noise.
func NoiseValue(x, y uint32, smooth bool) float32 {
	if !smooth {
		return hash2(x, y)
	}
	var n float32
	for _, o := range noiseOctaves {
		n += o.amplitude * valueNoise(x, y, o.period, o.seed)
	}
	return gpucore.Clamp01(n)
}

// NoiseGray maps an intensity through the three colour stops (0-255 scale)
// at 0, 0.5 and 1 and returns a grey level in [0, 1].
func NoiseGray(n float32, u gpucore.NoiseUniforms) float32 {
	var g float32
	if n < 0.5 {
		g = lerp(u.Color1, u.Color2, n*2)
	} else {
		g = lerp(u.Color2, u.Color3, (n-0.5)*2)
	}
	return gpucore.Clamp01(g / 255)
}

func toByte(v float32) uint8 {
	return uint8(gpucore.Clamp01(v)*255 + 0.5)
}

// ComputeNoise fills a width x height image with grey noise whose alpha is
// the configured noise alpha. The noise field is deterministic and does not
// depend on any mesh state. Pixels outside bound stay transparent.
func ComputeNoise(pool *parallel.WorkerPool, width, height int, u gpucore.NoiseUniforms, bound gpucore.Bound) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, max(width, 0), max(height, 0)))
	if width <= 0 || height <= 0 {
		return img
	}
	w, h := uint32(width), uint32(height)
	smooth := u.IsSmooth != 0
	alpha := toByte(u.NoiseAlpha)

	pool.DispatchBound(bound.X, bound.Y, func(x, y uint32) {
		if !bound.Contains(x, y) || x >= w || y >= h {
			return
		}
		g := toByte(NoiseGray(NoiseValue(x, y, smooth), u))
		i := img.PixOffset(int(x), int(y))
		px := img.Pix[i : i+4 : i+4]
		px[0], px[1], px[2], px[3] = g, g, g, alpha
	})
	return img
}
