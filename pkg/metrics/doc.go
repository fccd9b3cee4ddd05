// Package metrics provides Prometheus instrumentation for linepool components.
//
// # Overview
//
// The metrics package provides instrumentation for:
//   - Worker pools (pool size, active workers, queued tasks, task durations)
//   - Line counting runs (files processed, failed files, lines counted)
//   - The Redis count cache (hits, misses, errors)
//
// # Quick Start
//
// Enable metrics by using the metrics-enabled constructors. A nil Registry
// in the config selects prometheus.DefaultRegisterer:
//
//	pool, err := workerpool.NewWithConfigAndMetrics(workerpool.Config[string, linecount.Result]{
//		WorkerCount: 4,
//		Func:        linecount.CountLines,
//	}, "line_counter", metrics.DefaultConfig())
//
// Then expose metrics via HTTP:
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":9090", nil))
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation:
//
//	reg := prometheus.NewRegistry()
//	registry := metrics.NewRegistry(reg)
//
// NewRegistry may be called repeatedly with the same registerer; later calls
// reuse the collectors registered by the first one.
//
// # Available Metrics
//
//   - linepool_workerpool_size
//   - linepool_workerpool_active_workers
//   - linepool_workerpool_queued_tasks
//   - linepool_workerpool_tasks_submitted_total
//   - linepool_workerpool_tasks_rejected_total
//   - linepool_workerpool_tasks_completed_total
//   - linepool_workerpool_task_duration_seconds
//   - linepool_workerpool_task_queue_wait_seconds
//   - linepool_linecount_files_processed_total
//   - linepool_linecount_files_failed_total
//   - linepool_linecount_lines_total
//   - linepool_linecount_run_duration_seconds
//   - linepool_cache_hits_total
//   - linepool_cache_misses_total
//   - linepool_cache_errors_total
//
// # Labels
//
//   - pool_name: User-provided name for the worker pool instance
//   - run_name: Name of the counting run (default "linecount")
//   - cache_name: Name of the cache instance
package metrics
