package metrics

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Registry holds all metric instances for linepool components.
type Registry struct {
	// Worker Pool Metrics
	PoolSize          *prometheus.GaugeVec
	PoolActiveWorkers *prometheus.GaugeVec
	PoolQueuedTasks   *prometheus.GaugeVec
	TasksSubmitted    *prometheus.CounterVec
	TasksRejected     *prometheus.CounterVec
	TasksCompleted    *prometheus.CounterVec
	TaskDuration      *prometheus.HistogramVec
	TaskQueueWait     *prometheus.HistogramVec

	// Line Counting Metrics
	FilesProcessed *prometheus.CounterVec
	FilesFailed    *prometheus.CounterVec
	LinesCounted   *prometheus.CounterVec
	RunDuration    *prometheus.HistogramVec

	// Cache Metrics
	CacheHits   *prometheus.CounterVec
	CacheMisses *prometheus.CounterVec
	CacheErrors *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
// Registering twice against the same registerer returns the collectors that are
// already registered, so several runs in one process share their series.
func NewRegistry(reg prometheus.Registerer) *Registry {
	return NewRegistryWithConfig(Config{Registry: reg})
}

// NewRegistryWithConfig creates a registry honoring the namespace and constant
// labels of config.
func NewRegistryWithConfig(config Config) *Registry {
	reg := config.Registry
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	ns := config.Namespace
	if ns == "" {
		ns = DefaultNamespace
	}
	labels := config.Labels

	poolLabels := []string{"pool_name"}
	runLabels := []string{"run_name"}
	cacheLabels := []string{"cache_name"}

	return &Registry{
		// Worker Pool Metrics
		PoolSize: register(reg, prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "workerpool",
				Name:        "size",
				Help:        "Number of workers in the pool",
				ConstLabels: labels,
			},
			poolLabels,
		)),

		PoolActiveWorkers: register(reg, prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "workerpool",
				Name:        "active_workers",
				Help:        "Number of workers that have started and not yet exited",
				ConstLabels: labels,
			},
			poolLabels,
		)),

		PoolQueuedTasks: register(reg, prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace:   ns,
				Subsystem:   "workerpool",
				Name:        "queued_tasks",
				Help:        "Number of tasks waiting in the task queue",
				ConstLabels: labels,
			},
			poolLabels,
		)),

		TasksSubmitted: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "workerpool",
				Name:        "tasks_submitted_total",
				Help:        "Total number of tasks accepted by the task queue",
				ConstLabels: labels,
			},
			poolLabels,
		)),

		TasksRejected: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "workerpool",
				Name:        "tasks_rejected_total",
				Help:        "Total number of tasks dropped because the pool was stopped",
				ConstLabels: labels,
			},
			poolLabels,
		)),

		TasksCompleted: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "workerpool",
				Name:        "tasks_completed_total",
				Help:        "Total number of tasks whose result was published",
				ConstLabels: labels,
			},
			poolLabels,
		)),

		TaskDuration: register(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   ns,
				Subsystem:   "workerpool",
				Name:        "task_duration_seconds",
				Help:        "Time spent running the task function",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: labels,
			},
			poolLabels,
		)),

		TaskQueueWait: register(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   ns,
				Subsystem:   "workerpool",
				Name:        "task_queue_wait_seconds",
				Help:        "Time a task spent queued before a worker picked it up",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: labels,
			},
			poolLabels,
		)),

		// Line Counting Metrics
		FilesProcessed: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "linecount",
				Name:        "files_processed_total",
				Help:        "Total number of files whose result was collected",
				ConstLabels: labels,
			},
			runLabels,
		)),

		FilesFailed: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "linecount",
				Name:        "files_failed_total",
				Help:        "Total number of files that could not be read",
				ConstLabels: labels,
			},
			runLabels,
		)),

		LinesCounted: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "linecount",
				Name:        "lines_total",
				Help:        "Total number of lines counted",
				ConstLabels: labels,
			},
			runLabels,
		)),

		RunDuration: register(reg, prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace:   ns,
				Subsystem:   "linecount",
				Name:        "run_duration_seconds",
				Help:        "Wall time of a complete counting run",
				Buckets:     prometheus.DefBuckets,
				ConstLabels: labels,
			},
			runLabels,
		)),

		// Cache Metrics
		CacheHits: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "cache",
				Name:        "hits_total",
				Help:        "Total number of line counts served from the cache",
				ConstLabels: labels,
			},
			cacheLabels,
		)),

		CacheMisses: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "cache",
				Name:        "misses_total",
				Help:        "Total number of cache lookups that required a recount",
				ConstLabels: labels,
			},
			cacheLabels,
		)),

		CacheErrors: register(reg, prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace:   ns,
				Subsystem:   "cache",
				Name:        "errors_total",
				Help:        "Total number of cache operations that failed",
				ConstLabels: labels,
			},
			cacheLabels,
		)),
	}
}

// register adds c to reg, returning the existing collector when an identical
// one was registered before.
func register[C prometheus.Collector](reg prometheus.Registerer, c C) C {
	if err := reg.Register(c); err != nil {
		var are prometheus.AlreadyRegisteredError
		if errors.As(err, &are) {
			if existing, ok := are.ExistingCollector.(C); ok {
				return existing
			}
		}
		panic(err)
	}
	return c
}
