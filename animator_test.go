package meshgradient

import (
	"testing"
	"time"
)

func TestAnimatorConfigDefaults(t *testing.T) {
	c := AnimatorConfig{}.withDefaults()
	if c.FramesPerSecond != 60 || c.MinDuration != 2*time.Second || c.MaxDuration != 5*time.Second {
		t.Errorf("defaults = %+v", c)
	}

	c = AnimatorConfig{MinDuration: 8 * time.Second}.withDefaults()
	if c.MaxDuration != 8*time.Second {
		t.Errorf("MaxDuration = %v, want clamped to MinDuration", c.MaxDuration)
	}
}

func TestTrackSmoothstep(t *testing.T) {
	tr := track{
		start:  ControlPoint{Location: V2(0, 0)},
		target: ControlPoint{Location: V2(1, 0)},
	}
	tests := []struct {
		progress float64
		want     float32
	}{
		{0, 0},
		{0.5, 0.5},
		{1, 1},
		{1.5, 1},
		{0.25, 0.15625},
	}
	for _, tt := range tests {
		tr.progress = tt.progress
		if got := tr.point().Location.X; !approx(got, tt.want) {
			t.Errorf("progress %v: x = %v, want %v", tt.progress, got, tt.want)
		}
	}
}

func TestAnimatorStartsAtInitial(t *testing.T) {
	mesh := GenerateMesh(NewGrid[RGBA](3, 3))
	a := NewAnimator(mesh, AnimatorConfig{Seed: 1})

	// One frame at 60 fps over at least 2s moves every point by a small
	// fraction of its path.
	first := a.Mesh()
	for i, p := range first.Elements {
		d := p.Location.Sub(mesh.Elements[i].Location)
		if d.X*d.X+d.Y*d.Y > 0.01 {
			t.Errorf("point %d jumped by %v on the first frame", i, d)
		}
	}
	if !Equal(a.Initial(), mesh) {
		t.Error("Initial() differs from the input mesh")
	}
}

func TestAnimatorDeterministic(t *testing.T) {
	mesh := GenerateMesh(NewGrid[RGBA](3, 3))
	a := NewAnimator(mesh, AnimatorConfig{Seed: 42})
	b := NewAnimator(mesh, AnimatorConfig{Seed: 42})
	for range 30 {
		if !Equal(a.Mesh(), b.Mesh()) {
			t.Fatal("animators with the same seed diverged")
		}
	}
}

func TestAnimatorRetargets(t *testing.T) {
	mesh := GenerateMesh(NewGrid[RGBA](3, 3))
	// One frame per second with 1s durations finishes every track each call.
	config := AnimatorConfig{FramesPerSecond: 1, MinDuration: time.Second, MaxDuration: time.Second, Seed: 7}
	a := NewAnimator(mesh, config)

	first := a.Mesh()
	for _, tr := range a.tracks {
		if tr.progress != 0 {
			t.Fatalf("finished track not restarted: progress %v", tr.progress)
		}
	}
	for i, tr := range a.tracks {
		if tr.start != first.Elements[i] {
			t.Fatalf("track %d does not start from the last emitted point", i)
		}
	}
}

func TestAnimatorEdgesPinned(t *testing.T) {
	mesh := GenerateMesh(NewGrid[RGBA](4, 4))
	a := NewAnimator(mesh, AnimatorConfig{Seed: 3})
	for range 200 {
		m := a.Mesh()
		for x := range m.Width {
			if got, want := m.At(x, 0).Location.Y, mesh.At(x, 0).Location.Y; !approx(got, want) {
				t.Fatalf("top row y moved to %v", got)
			}
		}
	}
}

func TestAnimatorIsMeshSource(t *testing.T) {
	var _ MeshSource = NewAnimator(GenerateMesh(NewGrid[RGBA](2, 2)), AnimatorConfig{})
}
