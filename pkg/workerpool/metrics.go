package workerpool

import (
	"iter"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	lperrors "github.com/vnykmshr/linepool/pkg/common/errors"
	"github.com/vnykmshr/linepool/pkg/metrics"
)

// stamped carries the submission time of a task through the task queue.
type stamped[In any] struct {
	task   In
	queued time.Time
}

// MetricsPool wraps a worker Pool with Prometheus metrics collection.
type MetricsPool[In, Out any] struct {
	pool     Pool[stamped[In], Out]
	name     string
	registry atomic.Pointer[metrics.Registry]
	enabled  atomic.Bool
}

var (
	_ Pool[string, int]      = (*MetricsPool[string, int])(nil)
	_ metrics.Instrumentable = (*MetricsPool[string, int])(nil)
)

// NewWithMetrics creates a new worker pool with metrics enabled.
// Metrics go to a private registry; use NewWithConfigAndMetrics to expose them.
func NewWithMetrics[In, Out any](workerCount int, name string, fn Func[In, Out]) *MetricsPool[In, Out] {
	pool, err := NewWithConfigAndMetrics(Config[In, Out]{
		WorkerCount: workerCount,
		Func:        fn,
	}, name, metrics.Config{
		Enabled:  true,
		Registry: prometheus.NewRegistry(),
	})
	if err != nil {
		panic(err)
	}
	return pool
}

// NewWithConfigAndMetrics creates a new worker pool with custom config and metrics.
func NewWithConfigAndMetrics[In, Out any](config Config[In, Out], name string, metricsConfig metrics.Config) (*MetricsPool[In, Out], error) {
	if config.Func == nil {
		return nil, lperrors.NewValidationError("workerpool", "func", nil, "cannot be nil").
			WithHint("provide the function applied to each task")
	}

	mp := &MetricsPool[In, Out]{name: name}
	mp.registry.Store(metrics.NewRegistryWithConfig(metricsConfig))
	mp.enabled.Store(metricsConfig.Enabled)

	fn := config.Func
	inner, err := NewWithConfig(Config[stamped[In], Out]{
		WorkerCount: config.WorkerCount,
		Func: func(s stamped[In]) Out {
			start := time.Now()
			out := fn(s.task)
			if reg := mp.metrics(); reg != nil {
				reg.TaskQueueWait.WithLabelValues(mp.name).Observe(start.Sub(s.queued).Seconds())
				reg.TaskDuration.WithLabelValues(mp.name).Observe(time.Since(start).Seconds())
			}
			return out
		},
		OnWorkerStart: config.OnWorkerStart,
		OnWorkerStop:  config.OnWorkerStop,
		OnTaskComplete: func(workerID int, duration time.Duration) {
			if reg := mp.metrics(); reg != nil {
				reg.TasksCompleted.WithLabelValues(mp.name).Inc()
			}
			mp.updateMetrics()
			if config.OnTaskComplete != nil {
				config.OnTaskComplete(workerID, duration)
			}
		},
	})
	if err != nil {
		return nil, err
	}
	mp.pool = inner

	// Workers decrement the active count after OnWorkerStop returns, so the
	// final gauge values are taken once all of them are gone.
	go func() {
		<-inner.Done()
		mp.updateMetrics()
	}()

	mp.updateMetrics()
	return mp, nil
}

// metrics returns the active registry, or nil when collection is disabled.
func (mp *MetricsPool[In, Out]) metrics() *metrics.Registry {
	if !mp.enabled.Load() {
		return nil
	}
	return mp.registry.Load()
}

// updateMetrics updates the current state metrics.
func (mp *MetricsPool[In, Out]) updateMetrics() {
	reg := mp.metrics()
	if reg == nil || mp.pool == nil {
		return
	}

	reg.PoolSize.WithLabelValues(mp.name).Set(float64(mp.pool.Size()))
	reg.PoolActiveWorkers.WithLabelValues(mp.name).Set(float64(mp.pool.ActiveWorkers()))
	reg.PoolQueuedTasks.WithLabelValues(mp.name).Set(float64(mp.pool.QueueSize()))
}

// Submit adds a task to the pool and records whether it was accepted.
func (mp *MetricsPool[In, Out]) Submit(task In) bool {
	ok := mp.pool.Submit(stamped[In]{task: task, queued: time.Now()})

	if reg := mp.metrics(); reg != nil {
		if ok {
			reg.TasksSubmitted.WithLabelValues(mp.name).Inc()
		} else {
			reg.TasksRejected.WithLabelValues(mp.name).Inc()
		}
		mp.updateMetrics()
	}

	return ok
}

// CollectResult pops the next result.
func (mp *MetricsPool[In, Out]) CollectResult() (Out, bool) {
	return mp.pool.CollectResult()
}

// Results returns an iterator over the remaining results.
func (mp *MetricsPool[In, Out]) Results() iter.Seq[Out] {
	return mp.pool.Results()
}

// AwaitCompletion stops the pool and waits for the workers to drain the queue.
func (mp *MetricsPool[In, Out]) AwaitCompletion() {
	mp.pool.AwaitCompletion()
	mp.updateMetrics()
}

// Stop stops the task queue without waiting.
func (mp *MetricsPool[In, Out]) Stop() {
	mp.pool.Stop()
}

// Close stops the pool and joins every worker.
func (mp *MetricsPool[In, Out]) Close() {
	mp.pool.Close()
	mp.updateMetrics()
}

// Done returns a channel closed after the last worker exits.
func (mp *MetricsPool[In, Out]) Done() <-chan struct{} {
	return mp.pool.Done()
}

// Size returns the number of workers.
func (mp *MetricsPool[In, Out]) Size() int {
	return mp.pool.Size()
}

// ActiveWorkers returns the number of running workers.
func (mp *MetricsPool[In, Out]) ActiveWorkers() int {
	activeWorkers := mp.pool.ActiveWorkers()

	if reg := mp.metrics(); reg != nil {
		reg.PoolActiveWorkers.WithLabelValues(mp.name).Set(float64(activeWorkers))
	}

	return activeWorkers
}

// QueueSize returns the current number of queued tasks.
func (mp *MetricsPool[In, Out]) QueueSize() int {
	queueSize := mp.pool.QueueSize()

	if reg := mp.metrics(); reg != nil {
		reg.PoolQueuedTasks.WithLabelValues(mp.name).Set(float64(queueSize))
	}

	return queueSize
}

// TotalSubmitted returns the total number of tasks submitted.
func (mp *MetricsPool[In, Out]) TotalSubmitted() int64 {
	return mp.pool.TotalSubmitted()
}

// TotalCompleted returns the total number of tasks completed.
func (mp *MetricsPool[In, Out]) TotalCompleted() int64 {
	return mp.pool.TotalCompleted()
}

// EnableMetrics enables metrics collection. A non-nil config.Registry
// replaces the current registry.
func (mp *MetricsPool[In, Out]) EnableMetrics(config metrics.Config) error {
	if config.Registry != nil {
		mp.registry.Store(metrics.NewRegistryWithConfig(config))
	}
	mp.enabled.Store(config.Enabled)

	mp.updateMetrics()
	return nil
}

// DisableMetrics disables metrics collection.
func (mp *MetricsPool[In, Out]) DisableMetrics() {
	mp.enabled.Store(false)
}

// MetricsEnabled returns true if metrics are currently enabled.
func (mp *MetricsPool[In, Out]) MetricsEnabled() bool {
	return mp.enabled.Load()
}

// Registry returns the registry the pool reports to.
func (mp *MetricsPool[In, Out]) Registry() *metrics.Registry {
	return mp.registry.Load()
}
