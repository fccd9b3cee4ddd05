package coordinator

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"

	lperrors "github.com/vnykmshr/linepool/pkg/common/errors"
)

// ScheduleOptions configures RunScheduled.
type ScheduleOptions struct {
	// Logger receives cron's own messages, such as skipped runs.
	// Defaults to cron.DiscardLogger.
	Logger cron.Logger

	// Location evaluates the expression in a time zone other than time.Local.
	Location *time.Location

	// MaxRuns stops the schedule after that many runs; 0 means unlimited.
	MaxRuns int
}

// ParseSchedule parses a standard five-field cron expression or a descriptor
// such as "@hourly" or "@every 10m".
func ParseSchedule(expr string) (cron.Schedule, error) {
	sched, err := cron.ParseStandard(expr)
	if err != nil {
		return nil, lperrors.NewValidationError("coordinator", "schedule", expr, err.Error()).
			WithHint("use a five-field cron expression such as \"*/5 * * * *\"")
	}
	return sched, nil
}

// RunScheduled calls job on every activation of expr until ctx is cancelled
// or MaxRuns is reached. A run that is still going when the next activation
// fires causes that activation to be skipped. RunScheduled returns after the
// last job has finished.
func RunScheduled(ctx context.Context, expr string, opts ScheduleOptions, job func(ctx context.Context)) error {
	sched, err := ParseSchedule(expr)
	if err != nil {
		return err
	}

	logger := opts.Logger
	if logger == nil {
		logger = cron.DiscardLogger
	}
	cronOpts := []cron.Option{
		cron.WithLogger(logger),
		cron.WithChain(cron.SkipIfStillRunning(logger)),
	}
	if opts.Location != nil {
		cronOpts = append(cronOpts, cron.WithLocation(opts.Location))
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var runs atomic.Int64
	c := cron.New(cronOpts...)
	c.Schedule(sched, cron.FuncJob(func() {
		n := runs.Add(1)
		if opts.MaxRuns > 0 && n > int64(opts.MaxRuns) {
			return
		}
		job(ctx)
		if opts.MaxRuns > 0 && n == int64(opts.MaxRuns) {
			cancel()
		}
	}))

	c.Start()
	<-ctx.Done()
	<-c.Stop().Done()
	return nil
}
