package parallel

import (
	"sync/atomic"
	"testing"
)

func BenchmarkWorkerPool_Create(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		pool := NewWorkerPool(0) // Use GOMAXPROCS
		pool.Close()
	}
}

func BenchmarkWorkerPool_ExecuteAll_100(b *testing.B) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	work := make([]func(), 100)
	for i := range work {
		work[i] = func() {}
	}

	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pool.ExecuteAll(work)
	}
}

// BenchmarkDispatchBound_Samples covers the tessellator's sample grid for
// a 4x4 control mesh at 18 subdivisions.
func BenchmarkDispatchBound_Samples(b *testing.B) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	var n atomic.Int64
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		pool.DispatchBound(58, 58, func(x, y uint32) {
			n.Add(int64(x ^ y))
		})
	}
}

func BenchmarkDispatchBound_Noise1080p(b *testing.B) {
	pool := NewWorkerPool(0)
	defer pool.Close()

	out := make([]uint8, 1920*1080)
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		pool.DispatchBound(1920, 1080, func(x, y uint32) {
			if x < 1920 && y < 1080 {
				out[x+y*1920] = uint8(x + y)
			}
		})
	}
}
