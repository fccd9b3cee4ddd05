// Package coordinator runs a line count over a set of files on a worker pool
// and aggregates the results.
package coordinator

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/linepool/internal/cache"
	"github.com/vnykmshr/linepool/pkg/linecount"
	"github.com/vnykmshr/linepool/pkg/metrics"
	"github.com/vnykmshr/linepool/pkg/workerpool"
)

// DefaultName labels the metrics of a run when Options.Name is empty.
const DefaultName = "linecount"

// CountCache stores line counts between runs. *cache.RedisCache implements it.
type CountCache interface {
	Lookup(ctx context.Context, fp cache.Fingerprint) (int, bool, error)
	Store(ctx context.Context, fp cache.Fingerprint, lines int) error
}

// ProgressFunc is called from the collecting goroutine after each result,
// with done counting from 1.
type ProgressFunc func(done, total int, r linecount.Result)

// Options configures a run.
type Options struct {
	// Threads is the worker count; zero or negative selects the CPU count.
	Threads int

	// Name labels the pool and run metrics.
	Name string

	// Cache, when set, is consulted before counting a file and updated after.
	Cache CountCache

	// Registerer, when set, receives the pool, run and cache metrics.
	Registerer prometheus.Registerer

	Progress ProgressFunc
}

// Summary is the aggregate of a run.
type Summary struct {
	// Results in completion order.
	Results []linecount.Result

	TotalLines int
	Files      int
	Failed     int
	Threads    int
	CacheHits  int
	Elapsed    time.Duration
}

// outcome is what a worker hands back for one file.
type outcome struct {
	linecount.Result
	cached bool
}

// Run counts the lines of every file and blocks until all results are
// collected and the pool has shut down. Cancelling ctx makes the remaining
// tasks finish immediately with ctx's error as their Err; Run then returns
// the partial summary together with ctx.Err().
func Run(ctx context.Context, files []string, opts Options) (*Summary, error) {
	if opts.Name == "" {
		opts.Name = DefaultName
	}

	var reg *metrics.Registry
	if opts.Registerer != nil {
		reg = metrics.NewRegistry(opts.Registerer)
	}

	start := time.Now()
	pool, err := newPool(ctx, opts, reg)
	if err != nil {
		return nil, err
	}
	defer pool.Close()

	for _, f := range files {
		pool.Submit(f)
	}

	summary := &Summary{
		Results: make([]linecount.Result, 0, len(files)),
		Threads: pool.Size(),
	}
	for i := 0; i < len(files); i++ {
		out, ok := pool.CollectResult()
		if !ok {
			break
		}
		summary.add(out)
		if opts.Progress != nil {
			opts.Progress(summary.Files, len(files), out.Result)
		}
	}

	pool.AwaitCompletion()
	summary.Elapsed = time.Since(start)

	if reg != nil {
		reg.FilesProcessed.WithLabelValues(opts.Name).Add(float64(summary.Files))
		reg.FilesFailed.WithLabelValues(opts.Name).Add(float64(summary.Failed))
		reg.LinesCounted.WithLabelValues(opts.Name).Add(float64(summary.TotalLines))
		reg.RunDuration.WithLabelValues(opts.Name).Observe(summary.Elapsed.Seconds())
	}

	return summary, ctx.Err()
}

func (s *Summary) add(out outcome) {
	s.Results = append(s.Results, out.Result)
	s.Files++
	s.TotalLines += out.Lines
	if out.Failed() {
		s.Failed++
	}
	if out.cached {
		s.CacheHits++
	}
}

func newPool(ctx context.Context, opts Options, reg *metrics.Registry) (workerpool.Pool[string, outcome], error) {
	config := workerpool.Config[string, outcome]{
		WorkerCount: opts.Threads,
		Func:        countFunc(ctx, opts.Cache, opts.Name, reg),
	}
	if opts.Registerer == nil {
		return workerpool.NewWithConfig(config)
	}
	pool, err := workerpool.NewWithConfigAndMetrics(config, opts.Name, metrics.Config{
		Enabled:  true,
		Registry: opts.Registerer,
	})
	if err != nil {
		return nil, err
	}
	return pool, nil
}

// countFunc returns the task function run by the workers. It never fails:
// cache errors fall back to counting, and read errors end up in the Result.
func countFunc(ctx context.Context, cc CountCache, name string, reg *metrics.Registry) workerpool.Func[string, outcome] {
	return func(path string) outcome {
		if err := ctx.Err(); err != nil {
			return outcome{Result: linecount.Result{Path: path, Err: err}}
		}
		if cc == nil {
			return outcome{Result: linecount.CountLines(path)}
		}

		fp, err := cache.Stat(path)
		if err != nil {
			// Unreadable; CountLines reports the error.
			return outcome{Result: linecount.CountLines(path)}
		}

		lines, ok, err := cc.Lookup(ctx, fp)
		switch {
		case err != nil:
			countCache(reg, name, "error")
		case ok:
			countCache(reg, name, "hit")
			return outcome{Result: linecount.Result{Path: path, Lines: lines}, cached: true}
		default:
			countCache(reg, name, "miss")
		}

		r := linecount.CountLines(path)
		if r.Failed() {
			return outcome{Result: r}
		}
		// A file edited while it was being counted would store the new
		// count under the old fingerprint.
		if after, err := cache.Stat(path); err != nil || !after.Same(fp) {
			return outcome{Result: r}
		}
		if err := cc.Store(ctx, fp, r.Lines); err != nil {
			countCache(reg, name, "error")
		}
		return outcome{Result: r}
	}
}

func countCache(reg *metrics.Registry, name, event string) {
	if reg == nil {
		return
	}
	switch event {
	case "hit":
		reg.CacheHits.WithLabelValues(name).Inc()
	case "miss":
		reg.CacheMisses.WithLabelValues(name).Inc()
	default:
		reg.CacheErrors.WithLabelValues(name).Inc()
	}
}
