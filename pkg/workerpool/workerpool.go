package workerpool

import (
	"iter"
	"time"
)

// Submit adds a task to the pool for execution.
// The task is counted before it becomes visible to the workers, so
// TotalCompleted never exceeds TotalSubmitted.
func (p *workerPool[In, Out]) Submit(task In) bool {
	p.totalSubmitted.Add(1)
	if !p.taskQueue.Push(task) {
		p.totalSubmitted.Add(-1)
		return false
	}
	return true
}

// CollectResult pops the next result, blocking until one is available or the
// pool has shut down and every result has been collected.
func (p *workerPool[In, Out]) CollectResult() (Out, bool) {
	return p.resultQueue.Pop()
}

// Results returns an iterator over the remaining results.
func (p *workerPool[In, Out]) Results() iter.Seq[Out] {
	return func(yield func(Out) bool) {
		for {
			out, ok := p.resultQueue.Pop()
			if !ok || !yield(out) {
				return
			}
		}
	}
}

// AwaitCompletion stops accepting tasks and waits for the workers to drain the queue.
func (p *workerPool[In, Out]) AwaitCompletion() {
	p.taskQueue.Stop()
	<-p.done
}

// Stop stops the task queue. It does not wait for the workers.
func (p *workerPool[In, Out]) Stop() {
	p.taskQueue.Stop()
}

// Close stops the pool and joins every worker. It must not be called from
// inside the task function.
func (p *workerPool[In, Out]) Close() {
	p.AwaitCompletion()
}

// Done returns a channel closed after the last worker exits.
func (p *workerPool[In, Out]) Done() <-chan struct{} {
	return p.done
}

// Size returns the number of workers in the pool.
func (p *workerPool[In, Out]) Size() int {
	return p.config.WorkerCount
}

// ActiveWorkers returns the number of running workers.
func (p *workerPool[In, Out]) ActiveWorkers() int {
	return int(p.activeWorkers.Load())
}

// QueueSize returns the current number of queued tasks waiting for execution.
func (p *workerPool[In, Out]) QueueSize() int {
	return p.taskQueue.Len()
}

// TotalSubmitted returns the total number of tasks accepted by the pool.
func (p *workerPool[In, Out]) TotalSubmitted() int64 {
	return p.totalSubmitted.Load()
}

// TotalCompleted returns the total number of results published.
func (p *workerPool[In, Out]) TotalCompleted() int64 {
	return p.totalCompleted.Load()
}

// run is the main loop for a worker.
func (p *workerPool[In, Out]) run(id int) {
	defer p.workerWg.Done()

	p.activeWorkers.Add(1)
	defer p.activeWorkers.Add(-1)

	if p.config.OnWorkerStart != nil {
		p.config.OnWorkerStart(id)
	}
	if p.config.OnWorkerStop != nil {
		defer p.config.OnWorkerStop(id)
	}

	for {
		task, ok := p.taskQueue.Pop()
		if !ok {
			return
		}
		p.execute(id, task)
	}
}

// execute applies the task function and publishes its output.
func (p *workerPool[In, Out]) execute(id int, task In) {
	start := time.Now()
	out := p.config.Func(task)
	duration := time.Since(start)

	p.resultQueue.Push(out)
	p.totalCompleted.Add(1)

	if p.config.OnTaskComplete != nil {
		p.config.OnTaskComplete(id, duration)
	}
}
