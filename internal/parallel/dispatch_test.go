package parallel

import (
	"sync"
	"testing"
)

func TestWorkgroups(t *testing.T) {
	tests := []struct {
		n, want uint32
	}{
		{0, 0}, {1, 1}, {8, 1}, {9, 2}, {64, 8}, {65, 9},
	}
	for _, tt := range tests {
		if got := Workgroups(tt.n); got != tt.want {
			t.Errorf("Workgroups(%d) = %d, want %d", tt.n, got, tt.want)
		}
	}
}

func TestDispatchBound_CoversRoundedGrid(t *testing.T) {
	pool := NewWorkerPool(4)
	defer pool.Close()

	const w, h = 13, 5
	var mu sync.Mutex
	seen := make(map[[2]uint32]int)
	pool.DispatchBound(w, h, func(x, y uint32) {
		mu.Lock()
		seen[[2]uint32{x, y}]++
		mu.Unlock()
	})

	// 13x5 rounds up to 2x1 workgroups of 8x8.
	if len(seen) != 16*8 {
		t.Fatalf("invocations = %d, want %d", len(seen), 16*8)
	}
	for y := range uint32(8) {
		for x := range uint32(16) {
			if seen[[2]uint32{x, y}] != 1 {
				t.Errorf("(%d, %d) invoked %d times, want 1", x, y, seen[[2]uint32{x, y}])
			}
		}
	}
}

func TestDispatchBound_DisjointWrites(t *testing.T) {
	pool := NewWorkerPool(8)
	defer pool.Close()

	const w, h = 37, 29
	out := make([]uint32, w*h)
	pool.DispatchBound(w, h, func(x, y uint32) {
		if x >= w || y >= h {
			return
		}
		out[x+y*w] = x*1000 + y
	})
	for y := range uint32(h) {
		for x := range uint32(w) {
			if got := out[x+y*w]; got != x*1000+y {
				t.Fatalf("out[%d,%d] = %d", x, y, got)
			}
		}
	}
}

func TestDispatchBound_Empty(t *testing.T) {
	called := false
	var pool *WorkerPool
	pool.DispatchBound(0, 10, func(uint32, uint32) { called = true })
	pool.DispatchBound(10, 0, func(uint32, uint32) { called = true })
	if called {
		t.Error("kernel invoked for an empty dispatch")
	}
}

func TestDispatch2D_NilPoolRunsInline(t *testing.T) {
	var pool *WorkerPool
	count := 0
	pool.Dispatch2D(2, 3, func(uint32, uint32) { count++ })
	if count != 2*3*WorkgroupSize*WorkgroupSize {
		t.Errorf("count = %d, want %d", count, 2*3*WorkgroupSize*WorkgroupSize)
	}
}
