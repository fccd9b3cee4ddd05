package workerpool

import (
	"iter"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	lperrors "github.com/vnykmshr/linepool/pkg/common/errors"
	"github.com/vnykmshr/linepool/pkg/queue"
)

// Func is the task function applied by the workers to every submitted task.
// It must always return a value; the pool does not recover panics and never
// inspects the output.
type Func[In, Out any] func(In) Out

// Pool represents a fixed set of workers that apply a Func to submitted tasks
// and publish the outputs on a result queue.
type Pool[In, Out any] interface {
	// Submit adds a task to the task queue without blocking.
	// It returns false, and drops the task, once the pool has been stopped.
	Submit(task In) bool

	// CollectResult blocks until a result is available. It returns false once
	// every worker has exited and all results have been collected.
	CollectResult() (Out, bool)

	// Results iterates over CollectResult until end-of-stream.
	Results() iter.Seq[Out]

	// AwaitCompletion stops the task queue and blocks until every worker has
	// drained the remaining tasks and exited.
	AwaitCompletion()

	// Stop stops the task queue without waiting for the workers.
	// Tasks already queued are still processed.
	Stop()

	// Close stops the pool and waits for every worker to exit.
	// It is safe to call more than once.
	Close()

	// Done returns a channel that is closed once every worker has exited.
	Done() <-chan struct{}

	// Size returns the number of workers in the pool.
	Size() int

	// ActiveWorkers returns the number of workers that have started and not yet exited.
	ActiveWorkers() int

	// QueueSize returns the current number of queued tasks waiting for execution.
	QueueSize() int

	// TotalSubmitted returns the total number of tasks accepted by the pool.
	TotalSubmitted() int64

	// TotalCompleted returns the total number of results published by the workers.
	TotalCompleted() int64
}

// Config holds configuration options for creating a worker pool.
type Config[In, Out any] struct {
	// WorkerCount is the number of workers in the pool.
	// Zero or a negative value selects DefaultWorkerCount().
	WorkerCount int

	// Func is applied to every task. Required.
	Func Func[In, Out]

	// OnWorkerStart is called when a worker starts, from the worker goroutine.
	OnWorkerStart func(workerID int)

	// OnWorkerStop is called when a worker exits, from the worker goroutine.
	OnWorkerStop func(workerID int)

	// OnTaskComplete is called after a result has been published.
	OnTaskComplete func(workerID int, duration time.Duration)
}

// workerPool implements the Pool interface.
type workerPool[In, Out any] struct {
	config Config[In, Out]

	taskQueue   *queue.BlockingQueue[In]
	resultQueue *queue.BlockingQueue[Out]

	// State tracking
	activeWorkers  atomic.Int64
	totalSubmitted atomic.Int64
	totalCompleted atomic.Int64

	// Worker management
	workerWg sync.WaitGroup
	done     chan struct{}
}

// DefaultWorkerCount is the worker count used when none is configured.
func DefaultWorkerCount() int {
	if n := runtime.NumCPU(); n > 0 {
		return n
	}
	return 1
}

// New creates a pool of workerCount workers applying fn.
// It panics if fn is nil.
func New[In, Out any](workerCount int, fn Func[In, Out]) Pool[In, Out] {
	pool, err := NewWithConfig(Config[In, Out]{
		WorkerCount: workerCount,
		Func:        fn,
	})
	if err != nil {
		panic(err)
	}
	return pool
}

// NewWithConfig creates a new worker pool with the specified configuration.
// The workers are running when NewWithConfig returns.
func NewWithConfig[In, Out any](config Config[In, Out]) (Pool[In, Out], error) {
	if config.Func == nil {
		return nil, lperrors.NewValidationError("workerpool", "func", nil, "cannot be nil").
			WithHint("provide the function applied to each task")
	}

	if config.WorkerCount <= 0 {
		config.WorkerCount = DefaultWorkerCount()
	}

	pool := &workerPool[In, Out]{
		config:      config,
		taskQueue:   queue.New[In](),
		resultQueue: queue.New[Out](),
		done:        make(chan struct{}),
	}

	pool.workerWg.Add(config.WorkerCount)
	for i := 0; i < config.WorkerCount; i++ {
		go pool.run(i)
	}

	// The result queue is stopped only after the last worker has pushed its
	// final result, so collectors drain everything before end-of-stream.
	go func() {
		pool.workerWg.Wait()
		pool.resultQueue.Stop()
		close(pool.done)
	}()

	return pool, nil
}
