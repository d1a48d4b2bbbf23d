package gpucore

import "sync"

// Arena owns the buffers of one pipeline run.
//
// Each stage asks the arena for its output buffer exactly once per run and
// receives a zeroed slice of exactly the requested length. Buffers handed
// out by an arena never alias each other. A second request for the same
// buffer kind within one run gets freshly allocated memory.
//
// Arena is not safe for concurrent use; a run allocates its buffers
// sequentially between stage barriers.
type Arena struct {
	plan Plan

	points    []ControlPoint
	coeffs    []PatchCoefficients
	samples   []SampleVertex
	triangles []SampleVertex

	used arenaUse
}

type arenaUse struct {
	points, coeffs, samples, triangles bool
}

// NewArena creates an empty arena for plan.
func NewArena(plan Plan) *Arena {
	return &Arena{plan: plan}
}

// Plan returns the plan the arena was created for.
func (a *Arena) Plan() Plan {
	return a.plan
}

// ControlPoints returns a zeroed control point buffer of length n.
func (a *Arena) ControlPoints(n int) []ControlPoint {
	return take(&a.points, &a.used.points, n)
}

// Coefficients returns a zeroed patch coefficient buffer of length n.
func (a *Arena) Coefficients(n int) []PatchCoefficients {
	return take(&a.coeffs, &a.used.coeffs, n)
}

// Samples returns a zeroed dense sample buffer of length n.
func (a *Arena) Samples(n int) []SampleVertex {
	return take(&a.samples, &a.used.samples, n)
}

// Triangles returns a zeroed triangle vertex buffer of length n.
func (a *Arena) Triangles(n int) []SampleVertex {
	return take(&a.triangles, &a.used.triangles, n)
}

// Reset makes all buffers available for the next run. Buffer contents are
// left intact until a later request takes the buffer, which clears it.
func (a *Arena) Reset() {
	a.used = arenaUse{}
}

func take[T any](buf *[]T, used *bool, n int) []T {
	if n <= 0 {
		return nil
	}
	if *used {
		return make([]T, n)
	}
	*used = true
	if cap(*buf) < n {
		*buf = make([]T, n)
		return *buf
	}
	*buf = (*buf)[:n]
	clear(*buf)
	return *buf
}

// ArenaPool recycles arenas between runs.
//
// Arenas are grouped by plan, so a run whose grid and subdivision count
// did not change reuses the buffers of an earlier run with the same shape.
//
// Thread safety: all methods are safe for concurrent use.
type ArenaPool struct {
	mu      sync.Mutex
	buckets map[Plan][]*Arena
	maxSize int // max arenas per bucket
}

// NewArenaPool creates a pool retaining at most maxPerBucket arenas per
// plan. A maxPerBucket of 0 means unlimited.
func NewArenaPool(maxPerBucket int) *ArenaPool {
	return &ArenaPool{
		buckets: make(map[Plan][]*Arena),
		maxSize: maxPerBucket,
	}
}

// Get returns a reset arena for plan, reusing a pooled one when available.
func (p *ArenaPool) Get(plan Plan) *Arena {
	p.mu.Lock()
	bucket := p.buckets[plan]
	if len(bucket) > 0 {
		a := bucket[len(bucket)-1]
		p.buckets[plan] = bucket[:len(bucket)-1]
		p.mu.Unlock()
		a.Reset()
		return a
	}
	p.mu.Unlock()
	return NewArena(plan)
}

// Put returns an arena to the pool. Slices handed out by the arena keep
// their contents until a later Get reuses it.
// A nil arena or a full bucket discards the arena.
func (p *ArenaPool) Put(a *Arena) {
	if a == nil {
		return
	}
	a.Reset()

	p.mu.Lock()
	defer p.mu.Unlock()

	bucket := p.buckets[a.plan]
	if p.maxSize > 0 && len(bucket) >= p.maxSize {
		return
	}
	p.buckets[a.plan] = append(bucket, a)
}

// Len returns the number of pooled arenas.
func (p *ArenaPool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	n := 0
	for _, b := range p.buckets {
		n += len(b)
	}
	return n
}
