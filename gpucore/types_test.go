package gpucore

import (
	"math"
	"testing"
	"unsafe"
)

func TestLayoutSizes(t *testing.T) {
	tests := []struct {
		name string
		got  uintptr
		want uintptr
	}{
		{"ControlPoint", unsafe.Sizeof(ControlPoint{}), ControlPointSize},
		{"PatchCoefficients", unsafe.Sizeof(PatchCoefficients{}), PatchCoefficientsSize},
		{"SampleVertex", unsafe.Sizeof(SampleVertex{}), SampleVertexSize},
		{"NoiseUniforms", unsafe.Sizeof(NoiseUniforms{}), NoiseUniformsSize},
		{"GridSize", unsafe.Sizeof(GridSize{}), GridSizeSize},
		{"Mat4", unsafe.Sizeof(Mat4{}), 64},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("Sizeof = %d, want %d", tt.got, tt.want)
			}
		})
	}
}

func TestLayoutOffsets(t *testing.T) {
	var cp ControlPoint
	if off := unsafe.Offsetof(cp.Color); off != 32 {
		t.Errorf("ControlPoint.Color offset = %d, want 32", off)
	}
	var pc PatchCoefficients
	if off := unsafe.Offsetof(pc.CellX); off != 320 {
		t.Errorf("PatchCoefficients.CellX offset = %d, want 320", off)
	}
	var sv SampleVertex
	if off := unsafe.Offsetof(sv.Color); off != 16 {
		t.Errorf("SampleVertex.Color offset = %d, want 16", off)
	}
}

func TestMat4ColumnMajor(t *testing.T) {
	var m Mat4
	m.Set(1, 2, 7)
	if m[2*4+1] != 7 {
		t.Errorf("Set(1, 2) wrote index other than 9: %v", m)
	}
	if got := m.At(1, 2); got != 7 {
		t.Errorf("At(1, 2) = %v, want 7", got)
	}
	if got := m.At(2, 1); got != 0 {
		t.Errorf("At(2, 1) = %v, want 0", got)
	}
}

func TestTessellateParamsSampleGrid(t *testing.T) {
	tests := []struct {
		name   string
		params TessellateParams
		want   GridSize
	}{
		{"empty width", TessellateParams{Width: 0, Depth: 3, Subdivisions: 4}, GridSize{}},
		{"empty depth", TessellateParams{Width: 3, Depth: 0, Subdivisions: 4}, GridSize{}},
		{"corners only", TessellateParams{Width: 1, Depth: 1}, GridSize{2, 2}},
		{"one subdivision", TessellateParams{Width: 1, Depth: 1, Subdivisions: 1}, GridSize{3, 3}},
		{"3x2 cells s=18", TessellateParams{Width: 3, Depth: 2, Subdivisions: 18}, GridSize{58, 39}},
		{"step wraps", TessellateParams{Width: 1, Depth: 1, Subdivisions: math.MaxUint32}, GridSize{}},
		{"width overflows", TessellateParams{Width: 1 << 20, Depth: 1, Subdivisions: 1 << 12}, GridSize{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.params.SampleGrid(); got != tt.want {
				t.Errorf("SampleGrid() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestCellGrid(t *testing.T) {
	tests := []struct {
		grid GridSize
		want int
	}{
		{GridSize{0, 0}, 0},
		{GridSize{1, 5}, 0},
		{GridSize{5, 1}, 0},
		{GridSize{2, 2}, 1},
		{GridSize{4, 3}, 6},
	}
	for _, tt := range tests {
		if got := CellGrid(tt.grid).Count(); got != tt.want {
			t.Errorf("CellGrid(%+v).Count() = %d, want %d", tt.grid, got, tt.want)
		}
	}
}

func TestClamp01(t *testing.T) {
	nan := float32(0)
	nan /= nan
	tests := []struct {
		in, want float32
	}{
		{-3, 0}, {0, 0}, {0.25, 0.25}, {1, 1}, {7, 1}, {nan, 0},
	}
	for _, tt := range tests {
		if got := Clamp01(tt.in); got != tt.want {
			t.Errorf("Clamp01(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestBoundContains(t *testing.T) {
	b := Bound{X: 3, Y: 2}
	if !b.Contains(2, 1) {
		t.Error("Contains(2, 1) = false, want true")
	}
	if b.Contains(3, 0) || b.Contains(0, 2) {
		t.Error("Contains reported a point on the bound edge")
	}
	if b.Count() != 6 {
		t.Errorf("Count() = %d, want 6", b.Count())
	}
}
