// Command linepool counts the lines of text files on a pool of workers.
//
// Usage:
//
//	linepool [--input DIR] [--out FILE] [--ext .txt] [--threads N]
//	         [--config FILE] [--metrics-addr :9090] [--redis-addr HOST:PORT]
//	         [--schedule CRON] [files...]
//
// With no input directory and no files, test_file_1.txt through
// test_file_5.txt are counted.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"

	"github.com/vnykmshr/linepool/internal/cache"
	"github.com/vnykmshr/linepool/internal/config"
	"github.com/vnykmshr/linepool/internal/coordinator"
	"github.com/vnykmshr/linepool/pkg/linecount"
	"github.com/vnykmshr/linepool/pkg/report"
	"github.com/vnykmshr/linepool/pkg/workerpool"
)

// defaultInputCount is the number of test_file_N.txt inputs used when none
// are given.
const defaultInputCount = 5

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	err := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	switch {
	case err == nil:
	case errors.Is(err, flag.ErrHelp):
	case errors.Is(err, errUsage):
		os.Exit(2)
	default:
		log.New(os.Stderr, "[linepool] ", log.LstdFlags).Fatal(err)
	}
}

var errUsage = errors.New("usage")

// app holds what a single counting run needs.
type app struct {
	cfg      *config.Config
	files    []string
	threads  int
	cache    coordinator.CountCache
	registry prometheus.Registerer
	stdout   io.Writer
	logger   *log.Logger
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	logger := log.New(stderr, "[linepool] ", log.LstdFlags)

	cfg, err := parseConfig(args, stderr)
	if err != nil {
		return err
	}

	files, err := inputs(cfg)
	if err != nil {
		return err
	}

	threads := cfg.Threads
	if threads <= 0 {
		threads = workerpool.DefaultWorkerCount()
	}

	a := &app{
		cfg:     cfg,
		files:   files,
		threads: threads,
		stdout:  stdout,
		logger:  logger,
	}

	if cfg.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		a.registry = reg

		srv := serveMetrics(cfg.MetricsAddr, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	if cfg.CacheEnabled() {
		ttl, _ := cfg.CacheTTL()
		rc, err := cache.Dial(ctx, cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.Prefix, ttl)
		if err != nil {
			logger.Printf("cache disabled: %v", err)
		} else {
			defer func() { _ = rc.Close() }()
			a.cache = rc
			logger.Printf("caching line counts in redis at %s", cfg.Redis.Addr)
		}
	}

	if cfg.Schedule == "" {
		return a.count(ctx)
	}

	logger.Printf("running on schedule %q until interrupted", cfg.Schedule)
	return coordinator.RunScheduled(ctx, cfg.Schedule, coordinator.ScheduleOptions{
		Logger: cron.PrintfLogger(logger),
	}, func(ctx context.Context) {
		if err := a.count(ctx); err != nil && !errors.Is(err, context.Canceled) {
			logger.Printf("scheduled run failed: %v", err)
		}
	})
}

// parseConfig merges the config file, when given, with the flags set on the
// command line. Flags win.
func parseConfig(args []string, stderr io.Writer) (*config.Config, error) {
	fs := flag.NewFlagSet("linepool", flag.ContinueOnError)
	fs.SetOutput(stderr)

	var (
		configPath  = fs.String("config", "", "YAML or JSON config file")
		input       = fs.String("input", "", "directory whose files are counted")
		output      = fs.String("out", "", "write a report to this file")
		ext         = fs.String("ext", linecount.DefaultExt, "extension of the files counted in --input")
		threads     = fs.Int("threads", 0, "number of workers (0 = number of CPUs)")
		metricsAddr = fs.String("metrics-addr", "", "serve Prometheus metrics on this address")
		redisAddr   = fs.String("redis-addr", "", "cache line counts in the Redis server at this address")
		schedule    = fs.String("schedule", "", "repeat the count on this cron schedule")
	)
	fs.Usage = func() {
		fmt.Fprintln(fs.Output(), "Usage: linepool [flags] [files...]")
		fs.PrintDefaults()
	}

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, errUsage
	}

	cfg := config.Default()
	if *configPath != "" {
		loaded, err := config.LoadFile(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "input":
			cfg.Input = *input
		case "out":
			cfg.Output = *output
		case "ext":
			cfg.Ext = *ext
		case "threads":
			cfg.Threads = *threads
		case "metrics-addr":
			cfg.MetricsAddr = *metricsAddr
		case "redis-addr":
			cfg.Redis.Addr = *redisAddr
		case "schedule":
			cfg.Schedule = *schedule
		}
	})
	cfg.Files = append(cfg.Files, fs.Args()...)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// inputs lists the files to count.
func inputs(cfg *config.Config) ([]string, error) {
	var files []string
	if cfg.Input != "" {
		found, err := linecount.FindFiles(cfg.Input, cfg.Ext)
		if err != nil {
			return nil, err
		}
		files = append(files, found...)
	}
	files = append(files, cfg.Files...)

	if cfg.Input == "" && len(files) == 0 {
		files = linecount.DefaultInputs(defaultInputCount)
	}
	return files, nil
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *log.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		logger.Printf("metrics server listening on %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Printf("metrics server failed: %v", err)
		}
	}()
	return srv
}

// count runs one pass over the inputs and prints the results.
func (a *app) count(ctx context.Context) error {
	fmt.Fprintf(a.stdout, "Starting parallel text processing with %d threads...\n", a.threads)
	fmt.Fprintf(a.stdout, "Processing %d files...\n", len(a.files))

	summary, err := coordinator.Run(ctx, a.files, coordinator.Options{
		Threads:    a.threads,
		Cache:      a.cache,
		Registerer: a.registry,
		Progress: func(done, total int, r linecount.Result) {
			if r.Failed() {
				a.logger.Printf("cannot count %s: %v", r.Path, r.Err)
			}
			fmt.Fprintf(a.stdout, "Processed file %d/%d, lines: %d\n", done, total, r.Lines)
		},
	})
	if err != nil {
		return err
	}

	fmt.Fprintln(a.stdout)
	fmt.Fprintln(a.stdout, "===== RESULTS =====")
	fmt.Fprintf(a.stdout, "Total lines: %d\n", summary.TotalLines)
	fmt.Fprintf(a.stdout, "Files processed: %d\n", summary.Files)
	if summary.Failed > 0 {
		fmt.Fprintf(a.stdout, "Files failed: %d\n", summary.Failed)
	}
	if a.cache != nil {
		fmt.Fprintf(a.stdout, "Cache hits: %d\n", summary.CacheHits)
	}
	fmt.Fprintf(a.stdout, "Threads used: %d\n", summary.Threads)
	fmt.Fprintf(a.stdout, "Time taken: %d ms\n", summary.Elapsed.Milliseconds())

	if a.cfg.Output != "" {
		if err := report.WriteFile(a.cfg.Output, summary.Results, summary.TotalLines); err != nil {
			return err
		}
		fmt.Fprintf(a.stdout, "Done. Results written to %s\n", a.cfg.Output)
	}
	return nil
}
