package gpucore

import (
	"fmt"

	"github.com/gogpu/gputypes"
)

// BindingKind describes how a stage accesses a binding.
type BindingKind uint8

// Binding kinds.
const (
	// BindingReadOnly is a read-only storage buffer.
	BindingReadOnly BindingKind = iota + 1
	// BindingReadWrite is a read-write storage buffer the stage writes.
	BindingReadWrite
	// BindingUniform is a uniform buffer.
	BindingUniform
	// BindingStorageTexture is a write-only RGBA8 storage texture.
	BindingStorageTexture
)

// String returns the WGSL address space spelling of the kind.
func (k BindingKind) String() string {
	switch k {
	case BindingReadOnly:
		return "storage, read"
	case BindingReadWrite:
		return "storage, read_write"
	case BindingUniform:
		return "uniform"
	case BindingStorageTexture:
		return "texture_storage_2d"
	default:
		return fmt.Sprintf("BindingKind(%d)", k)
	}
}

// NoiseSlot addresses a binding of the noise field stage.
type NoiseSlot uint32

// Noise field slots.
const (
	NoiseSlotOutput   NoiseSlot = 0
	NoiseSlotUniforms NoiseSlot = 1
)

// PatchSlot addresses a binding of the patch interpolator stage.
type PatchSlot uint32

// Patch interpolator slots.
const (
	PatchSlotControlPoints PatchSlot = 0
	PatchSlotGridSize      PatchSlot = 1
	PatchSlotResult        PatchSlot = 2
	PatchSlotBound         PatchSlot = 3
)

// TessellateSlot addresses a binding of the tessellator stage.
type TessellateSlot uint32

// Tessellator slots.
const (
	TessellateSlotCoefficients TessellateSlot = 0
	TessellateSlotWidth        TessellateSlot = 1
	TessellateSlotDepth        TessellateSlot = 2
	TessellateSlotSubdivisions TessellateSlot = 3
	TessellateSlotResult       TessellateSlot = 4
	TessellateSlotBound        TessellateSlot = 5
)

// TriangulateSlot addresses a binding of the triangulator stage.
type TriangulateSlot uint32

// Triangulator slots.
const (
	TriangulateSlotVertices TriangulateSlot = 0
	TriangulateSlotWidth    TriangulateSlot = 1
	TriangulateSlotHeight   TriangulateSlot = 2
	TriangulateSlotResult   TriangulateSlot = 3
	TriangulateSlotBound    TriangulateSlot = 4
)

// TextureSlot addresses a texture consumed by the external rasteriser.
type TextureSlot uint32

// TextureSlotBaseColor is the base colour image.
const TextureSlotBaseColor TextureSlot = 0

// Slot is the set of per-stage slot types.
type Slot interface {
	NoiseSlot | PatchSlot | TessellateSlot | TriangulateSlot
}

// Binding describes one binding of a compute stage.
type Binding[S Slot] struct {
	Slot S
	Kind BindingKind
	// Name is the WGSL variable name bound at Slot.
	Name string
	// MinSize is the minimum binding size in bytes, 0 for runtime-sized arrays.
	MinSize uint64
}

// String formats the binding as its WGSL declaration prefix.
func (b Binding[S]) String() string {
	if b.Kind == BindingStorageTexture {
		return fmt.Sprintf("@group(0) @binding(%d) var %s: %s", uint32(b.Slot), b.Name, b.Kind)
	}
	return fmt.Sprintf("@group(0) @binding(%d) var<%s> %s", uint32(b.Slot), b.Kind, b.Name)
}

// Stage identifies a compute stage.
type Stage uint8

// Pipeline stages.
const (
	StagePatch Stage = iota
	StageTessellate
	StageTriangulate
	StageNoise
)

// Stages lists every stage in pipeline order.
var Stages = []Stage{StagePatch, StageTessellate, StageTriangulate, StageNoise}

// String returns the stage name.
func (s Stage) String() string {
	switch s {
	case StagePatch:
		return "patch"
	case StageTessellate:
		return "tessellate"
	case StageTriangulate:
		return "triangulate"
	case StageNoise:
		return "noise"
	default:
		return fmt.Sprintf("Stage(%d)", s)
	}
}

// PatchBindings returns the binding table of the patch interpolator.
func PatchBindings() []Binding[PatchSlot] {
	return []Binding[PatchSlot]{
		{Slot: PatchSlotControlPoints, Kind: BindingReadOnly, Name: "control_points"},
		{Slot: PatchSlotGridSize, Kind: BindingUniform, Name: "grid_size", MinSize: GridSizeSize},
		{Slot: PatchSlotResult, Kind: BindingReadWrite, Name: "result"},
		{Slot: PatchSlotBound, Kind: BindingUniform, Name: "bound", MinSize: GridSizeSize},
	}
}

// TessellateBindings returns the binding table of the tessellator.
func TessellateBindings() []Binding[TessellateSlot] {
	return []Binding[TessellateSlot]{
		{Slot: TessellateSlotCoefficients, Kind: BindingReadOnly, Name: "patches"},
		{Slot: TessellateSlotWidth, Kind: BindingUniform, Name: "width", MinSize: 4},
		{Slot: TessellateSlotDepth, Kind: BindingUniform, Name: "depth", MinSize: 4},
		{Slot: TessellateSlotSubdivisions, Kind: BindingUniform, Name: "subdivisions", MinSize: 4},
		{Slot: TessellateSlotResult, Kind: BindingReadWrite, Name: "result"},
		{Slot: TessellateSlotBound, Kind: BindingUniform, Name: "bound", MinSize: GridSizeSize},
	}
}

// TriangulateBindings returns the binding table of the triangulator.
func TriangulateBindings() []Binding[TriangulateSlot] {
	return []Binding[TriangulateSlot]{
		{Slot: TriangulateSlotVertices, Kind: BindingReadOnly, Name: "vertices"},
		{Slot: TriangulateSlotWidth, Kind: BindingUniform, Name: "width", MinSize: 4},
		{Slot: TriangulateSlotHeight, Kind: BindingUniform, Name: "height", MinSize: 4},
		{Slot: TriangulateSlotResult, Kind: BindingReadWrite, Name: "result"},
		{Slot: TriangulateSlotBound, Kind: BindingUniform, Name: "bound", MinSize: GridSizeSize},
	}
}

// NoiseBindings returns the binding table of the noise field.
func NoiseBindings() []Binding[NoiseSlot] {
	return []Binding[NoiseSlot]{
		{Slot: NoiseSlotOutput, Kind: BindingStorageTexture, Name: "output"},
		{Slot: NoiseSlotUniforms, Kind: BindingUniform, Name: "uniforms", MinSize: NoiseUniformsSize},
	}
}

// LayoutEntries converts a binding table into compute-visible bind group
// layout entries.
func LayoutEntries[S Slot](bindings []Binding[S]) []gputypes.BindGroupLayoutEntry {
	entries := make([]gputypes.BindGroupLayoutEntry, 0, len(bindings))
	for _, b := range bindings {
		e := gputypes.BindGroupLayoutEntry{
			Binding:    uint32(b.Slot),
			Visibility: gputypes.ShaderStageCompute,
		}
		switch b.Kind {
		case BindingReadOnly:
			e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeReadOnlyStorage, MinBindingSize: b.MinSize}
		case BindingReadWrite:
			e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeStorage, MinBindingSize: b.MinSize}
		case BindingUniform:
			e.Buffer = &gputypes.BufferBindingLayout{Type: gputypes.BufferBindingTypeUniform, MinBindingSize: b.MinSize}
		case BindingStorageTexture:
			e.StorageTexture = &gputypes.StorageTextureBindingLayout{
				Access:        gputypes.StorageTextureAccessWriteOnly,
				Format:        gputypes.TextureFormatRGBA8Unorm,
				ViewDimension: gputypes.TextureViewDimension2D,
			}
		}
		entries = append(entries, e)
	}
	return entries
}

// StageLayout returns the layout entries of a stage.
func StageLayout(s Stage) []gputypes.BindGroupLayoutEntry {
	switch s {
	case StagePatch:
		return LayoutEntries(PatchBindings())
	case StageTessellate:
		return LayoutEntries(TessellateBindings())
	case StageTriangulate:
		return LayoutEntries(TriangulateBindings())
	case StageNoise:
		return LayoutEntries(NoiseBindings())
	default:
		return nil
	}
}

// StageDeclarations returns the WGSL declaration prefixes of a stage's
// bindings, as produced by Binding.String.
func StageDeclarations(s Stage) []string {
	var out []string
	switch s {
	case StagePatch:
		out = declarations(PatchBindings())
	case StageTessellate:
		out = declarations(TessellateBindings())
	case StageTriangulate:
		out = declarations(TriangulateBindings())
	case StageNoise:
		out = declarations(NoiseBindings())
	}
	return out
}

func declarations[S Slot](bindings []Binding[S]) []string {
	out := make([]string, len(bindings))
	for i, b := range bindings {
		out[i] = b.String()
	}
	return out
}

// BaseColorLayout is the layout entry of the base colour image sampled by
// the external rasteriser's fragment stage.
func BaseColorLayout() gputypes.BindGroupLayoutEntry {
	return gputypes.BindGroupLayoutEntry{
		Binding:    uint32(TextureSlotBaseColor),
		Visibility: gputypes.ShaderStageFragment,
		Texture: &gputypes.TextureBindingLayout{
			SampleType:    gputypes.TextureSampleTypeFloat,
			ViewDimension: gputypes.TextureViewDimension2D,
		},
	}
}
