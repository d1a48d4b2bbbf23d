package meshgradient

import (
	"math/rand/v2"
	"sync"
	"time"
)

// AnimatorConfig configures an Animator. Zero fields take defaults.
type AnimatorConfig struct {
	// FramesPerSecond is the rate Mesh is called at. Default 60.
	FramesPerSecond int

	// MinDuration and MaxDuration bound how long one point takes to reach
	// its target. Defaults 2s and 5s.
	MinDuration time.Duration
	MaxDuration time.Duration

	// Randomizer picks targets. Nil uses DefaultRandomizer.
	Randomizer *Randomizer

	// Seed makes the animation reproducible.
	Seed uint64
}

func (c AnimatorConfig) withDefaults() AnimatorConfig {
	if c.FramesPerSecond <= 0 {
		c.FramesPerSecond = 60
	}
	if c.MinDuration <= 0 {
		c.MinDuration = 2 * time.Second
	}
	if c.MaxDuration < c.MinDuration {
		c.MaxDuration = max(5*time.Second, c.MinDuration)
	}
	return c
}

// track is the animation state of one control point.
type track struct {
	start, target ControlPoint
	progress      float64 // [0, 1]
	step          float64 // progress per frame
}

// point returns the eased position along the track.
func (t *track) point() ControlPoint {
	p := min(t.progress, 1)
	eased := p * p * (3 - 2*p)
	return t.start.Lerp(t.target, float32(eased))
}

// Animator is a MeshSource that moves every control point from its current
// state to a randomised variant of the initial mesh, easing with
// smoothstep, then picks a new target. Each point has its own duration.
//
// Animator is safe for concurrent use.
type Animator struct {
	mu         sync.Mutex
	initial    *ControlMesh
	config     AnimatorConfig
	randomizer Randomizer
	rng        *rand.Rand
	tracks     []track
}

// NewAnimator starts an animation from mesh. The mesh is copied.
func NewAnimator(mesh *ControlMesh, config AnimatorConfig) *Animator {
	config = config.withDefaults()
	a := &Animator{
		initial: mesh.Clone(),
		config:  config,
		rng:     NewRand(config.Seed),
	}
	if a.initial == nil {
		a.initial = NewGrid[ControlPoint](0, 0)
	}
	if config.Randomizer != nil {
		a.randomizer = *config.Randomizer
	} else {
		a.randomizer = DefaultRandomizer(a.rng)
	}

	a.tracks = make([]track, a.initial.Len())
	for y := range a.initial.Height {
		for x := range a.initial.Width {
			i := a.initial.Index(x, y)
			a.tracks[i] = a.nextTrack(x, y, a.initial.Elements[i])
		}
	}
	return a
}

func (a *Animator) nextTrack(x, y int, start ControlPoint) track {
	lo, hi := a.config.MinDuration.Seconds(), a.config.MaxDuration.Seconds()
	duration := lo + a.rng.Float64()*(hi-lo)
	target := a.randomizer.Apply(a.rng, a.initial.At(x, y), x, y, a.initial.Width, a.initial.Height)
	return track{
		start:  start,
		target: target,
		step:   1 / (float64(a.config.FramesPerSecond) * duration),
	}
}

// Mesh advances the animation by one frame and returns the new mesh.
func (a *Animator) Mesh() *ControlMesh {
	a.mu.Lock()
	defer a.mu.Unlock()

	out := NewGrid[ControlPoint](a.initial.Width, a.initial.Height)
	for y := range out.Height {
		for x := range out.Width {
			i := out.Index(x, y)
			t := &a.tracks[i]
			t.progress += t.step
			out.Elements[i] = t.point()
			if t.progress >= 1 {
				*t = a.nextTrack(x, y, out.Elements[i])
			}
		}
	}
	return out
}

// Initial returns a copy of the mesh the animation varies.
func (a *Animator) Initial() *ControlMesh {
	return a.initial.Clone()
}

// Config returns the effective configuration.
func (a *Animator) Config() AnimatorConfig {
	return a.config
}
