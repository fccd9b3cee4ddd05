/*
Package workerpool provides a fixed-size worker pool that applies a task
function to submitted inputs and publishes the outputs on a result queue.

A pool owns two queue.BlockingQueue values: one for tasks and one for
results. Every worker runs the same loop: pop a task, apply the task
function, push the output. Workers start in the constructor and exit once
the task queue is stopped and drained.

Basic usage:

	pool := workerpool.New(4, linecount.CountLines)
	defer pool.Close()

	for _, path := range files {
		pool.Submit(path)
	}

	total := 0
	for range files {
		res, ok := pool.CollectResult()
		if !ok {
			break
		}
		total += res.Lines
	}

	pool.AwaitCompletion()

Shutdown:

  - Stop stops the task queue and returns immediately. Queued tasks are
    still processed; later submissions are dropped and Submit returns false.
  - AwaitCompletion stops the task queue and blocks until every worker has
    exited.
  - Close does the same and may be called any number of times. Always defer
    it so no worker outlives the pool.

Once the last worker exits the result queue is stopped too, so
CollectResult and Results report end-of-stream after the remaining results
have been collected instead of blocking forever.

Ordering:

Tasks are taken in submission order, but results appear in completion
order. Correlate them through the output value (for example by returning
the input alongside the computed value).

Task functions:

The pool never inspects, retries or recovers the task function. It must be
total: report failures through its return value rather than by panicking.

Configuration Options:

	pool, err := workerpool.NewWithConfig(workerpool.Config[string, int]{
		WorkerCount:    8,
		Func:           count,
		OnWorkerStart:  func(id int) { log.Printf("worker %d started", id) },
		OnWorkerStop:   func(id int) { log.Printf("worker %d stopped", id) },
		OnTaskComplete: func(id int, d time.Duration) { observe(d) },
	})

A WorkerCount of zero selects DefaultWorkerCount, the number of CPUs.

Metrics:

NewWithMetrics and NewWithConfigAndMetrics return a MetricsPool that
records submissions, rejections, completions, task durations, queue wait
times and pool gauges in a metrics.Registry.
*/
package workerpool
