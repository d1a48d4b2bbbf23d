package meshgradient

import (
	"testing"
)

func TestRandomizeLocationYExceptEdges(t *testing.T) {
	r := NewRand(1)
	fn := RandomizeLocationYExceptEdges()
	const height = 4
	for y := range height {
		for range 50 {
			loc := V2(0.3, 0.4)
			fn(r, &loc, 1, y, 3, height)
			if loc.X != 0.3 {
				t.Fatalf("row %d: x moved to %v", y, loc.X)
			}
			if y == 0 || y == height-1 {
				if loc.Y != 0.4 {
					t.Fatalf("edge row %d moved to %v", y, loc.Y)
				}
				continue
			}
			if d := loc.Y - 0.4; d < -1.2/height-1e-6 || d > 1.2/height+1e-6 {
				t.Fatalf("row %d offset %v exceeds %v", y, d, 1.2/height)
			}
		}
	}
}

func TestRandomizeLocationExceptEdges(t *testing.T) {
	r := NewRand(2)
	fn := RandomizeLocationExceptEdges(-0.1, 0.1)

	loc := V2(0, 0)
	fn(r, &loc, 0, 0, 3, 3)
	if loc != V2(0, 0) {
		t.Errorf("corner moved to %v", loc)
	}

	loc = V2(0, 0)
	fn(r, &loc, 1, 0, 3, 3)
	if loc.Y != 0 {
		t.Errorf("top edge y moved to %v", loc.Y)
	}
	if loc.X < -0.1 || loc.X > 0.1 {
		t.Errorf("x offset %v outside [-0.1, 0.1]", loc.X)
	}
}

func TestRandomizeTangentsExceptEdges(t *testing.T) {
	r := NewRand(3)
	fn := RandomizeTangentsExceptEdges(-0.25, 0.25)

	edge := V2(1, 0)
	fn(r, &edge, 0, 1, 3, 3)
	if edge != V2(1, 0) {
		t.Errorf("edge tangent changed to %v", edge)
	}

	for range 100 {
		tan := V2(1, 0)
		fn(r, &tan, 1, 1, 3, 3)
		if tan.X < 0.75 || tan.X > 1.25 || tan.Y < -0.25 || tan.Y > 0.25 {
			t.Fatalf("interior tangent %v outside range", tan)
		}
	}
}

func TestPaletteColors(t *testing.T) {
	r := NewRand(4)
	palette := []RGBA{RGB(1, 0, 0), RGB(0, 1, 0)}
	fn := PaletteColors(palette)
	for range 20 {
		var c RGBA
		fn(r, &c, RGB(0, 0, 1), 0, 0, 2, 2)
		if c != palette[0] && c != palette[1] {
			t.Fatalf("colour %v not from palette", c)
		}
	}

	var c RGBA
	PaletteColors(nil)(r, &c, RGB(0, 0, 1), 0, 0, 2, 2)
	if c != RGB(0, 0, 1) {
		t.Errorf("empty palette gave %v, want initial colour", c)
	}
}

func TestRandomPalette(t *testing.T) {
	p := RandomPalette(NewRand(5), 16)
	if len(p) != 16 {
		t.Fatalf("len = %d, want 16", len(p))
	}
	for _, c := range p {
		if c.A != 1 || c.R < 0 || c.R >= 1 {
			t.Errorf("colour %v out of range", c)
		}
	}
	if got := RandomPalette(NewRand(5), -1); len(got) != 0 {
		t.Errorf("negative size gave %d colours", len(got))
	}
}

func TestRandomizeMeshDeterministic(t *testing.T) {
	mesh := GenerateMesh(NewGrid[RGBA](4, 4))
	a := DefaultRandomizer(NewRand(9)).RandomizeMesh(NewRand(10), mesh)
	b := DefaultRandomizer(NewRand(9)).RandomizeMesh(NewRand(10), mesh)
	if !Equal(a, b) {
		t.Error("same seeds produced different meshes")
	}
	if Equal(a, mesh) {
		t.Error("randomised mesh equals the input")
	}
	if a.At(0, 0).Location != mesh.At(0, 0).Location {
		t.Error("corner location moved")
	}
}

func TestRandomizerNilFuncs(t *testing.T) {
	p := ControlPoint{Location: V2(1, 2), UTangent: V2(3, 4), Color: RGB(1, 1, 1)}
	if got := (Randomizer{}).Apply(NewRand(1), p, 1, 1, 3, 3); got != p {
		t.Errorf("empty randomizer changed point: %+v", got)
	}
}
