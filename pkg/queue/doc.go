/*
Package queue provides an unbounded, thread-safe FIFO queue with blocking
consumption and a one-shot stop signal.

A BlockingQueue can be shared by any number of producers and consumers.
Pop blocks until an item is available or the queue has been stopped and
drained, which makes it a natural hand-off point between a coordinator and
a set of worker goroutines.

Basic usage:

	q := queue.New[string]()

	go func() {
		for {
			item, ok := q.Pop()
			if !ok {
				return // stopped and drained
			}
			process(item)
		}
	}()

	q.Push("a.txt")
	q.Push("b.txt")
	q.Stop() // queued items are still delivered

Stop semantics:

Stop is terminal. Once stopped, Push discards its argument and reports
false, and Pop keeps returning the remaining items in order before it
starts reporting end-of-stream. After that every Pop returns immediately
with ok == false.

Len and Empty are point-in-time snapshots and may be stale as soon as they
return when other goroutines are pushing or popping.
*/
package queue
