/*
Package linepool counts the lines of text files on a fixed pool of workers.

The building blocks are usable on their own:

  - pkg/queue: unbounded FIFO blocking queue with a one-shot stop
  - pkg/workerpool: fixed worker pool over a task queue and a result queue
  - pkg/linecount: the per-file task function and input discovery
  - pkg/report: the results file writer
  - pkg/metrics: Prometheus collectors for the pool and the counting runs

The linepool command (cmd/linepool) wires them together with a YAML config,
an optional Redis cache of per-file counts, a Prometheus endpoint and a cron
schedule for repeated runs.

Example usage:

	import "github.com/vnykmshr/linepool/pkg/workerpool"

	pool := workerpool.New(4, linecount.CountLines)
	defer pool.Close()

	for _, f := range files {
		pool.Submit(f)
	}
	for range files {
		r, _ := pool.CollectResult()
		total += r.Lines
	}
*/
package linepool
