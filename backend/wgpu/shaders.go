package wgpu

import (
	_ "embed"
	"fmt"

	"github.com/gogpu/meshgradient/gpucore"
	"github.com/gogpu/naga"
)

//go:embed shaders/patch.wgsl
var patchShaderSource string

//go:embed shaders/tessellate.wgsl
var tessellateShaderSource string

//go:embed shaders/triangulate.wgsl
var triangulateShaderSource string

//go:embed shaders/noise.wgsl
var noiseShaderSource string

// Compute entry points.
const (
	entryPatchSmooth = "patch_smooth"
	entryPatchLinear = "patch_linear"
	entryMain        = "main"
)

// ShaderSource returns the WGSL source of a stage.
func ShaderSource(stage gpucore.Stage) string {
	switch stage {
	case gpucore.StagePatch:
		return patchShaderSource
	case gpucore.StageTessellate:
		return tessellateShaderSource
	case gpucore.StageTriangulate:
		return triangulateShaderSource
	case gpucore.StageNoise:
		return noiseShaderSource
	default:
		return ""
	}
}

// EntryPoints returns the compute entry points a stage's shader exports.
func EntryPoints(stage gpucore.Stage) []string {
	if stage == gpucore.StagePatch {
		return []string{entryPatchSmooth, entryPatchLinear}
	}
	return []string{entryMain}
}

// compileSPIRV compiles WGSL to SPIR-V words.
func compileSPIRV(label, source string) ([]uint32, error) {
	spirv, err := naga.Compile(source)
	if err != nil {
		return nil, fmt.Errorf("compile %s shader: %w", label, err)
	}
	if len(spirv)%4 != 0 {
		return nil, fmt.Errorf("compile %s shader: SPIR-V size %d is not word aligned", label, len(spirv))
	}

	// SPIR-V is a stream of little-endian 32-bit words.
	words := make([]uint32, len(spirv)/4)
	for i := range words {
		words[i] = uint32(spirv[i*4]) |
			uint32(spirv[i*4+1])<<8 |
			uint32(spirv[i*4+2])<<16 |
			uint32(spirv[i*4+3])<<24
	}
	return words, nil
}
