package workerpool

import (
	"testing"
)

// BenchmarkSubmitCollect measures a full submit/collect round trip.
func BenchmarkSubmitCollect(b *testing.B) {
	pool := New(4, identity)
	defer pool.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pool.Submit(i)
		pool.CollectResult()
	}
}

// BenchmarkParallelSubmit measures submission contention from many goroutines.
func BenchmarkParallelSubmit(b *testing.B) {
	pool := New(4, identity)

	done := make(chan struct{})
	go func() {
		defer close(done)
		for range pool.Results() {
		}
	}()

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		i := 0
		for pb.Next() {
			pool.Submit(i)
			i++
		}
	})
	b.StopTimer()

	pool.Close()
	<-done
}

// BenchmarkTaskExecutionWithWork measures performance with actual work
func BenchmarkTaskExecutionWithWork(b *testing.B) {
	pool := New(4, func(n int) int {
		sum := 0
		for i := 0; i < 1000; i++ {
			sum += i * n
		}
		return sum
	})

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pool.Submit(i)
	}
	pool.AwaitCompletion()
	b.StopTimer()

	for range pool.Results() {
	}
}

// BenchmarkMetricsPool measures the overhead added by metrics collection.
func BenchmarkMetricsPool(b *testing.B) {
	pool := NewWithMetrics(4, "bench", identity)
	defer pool.Close()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		pool.Submit(i)
		pool.CollectResult()
	}
}
