package liststore

import (
	"context"
	"sync"
)

type job struct {
	run  func(context.Context)
	done chan struct{}
}

// writer runs persistence jobs one at a time in submission order.
type writer struct {
	mu     sync.Mutex
	queue  []job
	closed bool

	wake    chan struct{}
	stopped chan struct{}
}

func newWriter() *writer {
	w := &writer{
		wake:    make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
	go w.loop()
	return w
}

// enqueue reports false once the writer is closed.
func (w *writer) enqueue(run func(context.Context)) bool {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return false
	}
	w.queue = append(w.queue, job{run: run})
	w.mu.Unlock()
	w.signal()
	return true
}

// flush waits until every job enqueued before the call has run.
func (w *writer) flush(ctx context.Context) error {
	done := make(chan struct{})
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return w.wait(ctx)
	}
	w.queue = append(w.queue, job{done: done})
	w.mu.Unlock()
	w.signal()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// close stops accepting jobs and waits for the queue to drain.
func (w *writer) close(ctx context.Context) error {
	w.mu.Lock()
	w.closed = true
	w.mu.Unlock()
	w.signal()
	return w.wait(ctx)
}

func (w *writer) wait(ctx context.Context) error {
	select {
	case <-w.stopped:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (w *writer) signal() {
	select {
	case w.wake <- struct{}{}:
	default:
	}
}

func (w *writer) loop() {
	defer close(w.stopped)
	for {
		w.mu.Lock()
		if len(w.queue) == 0 {
			closed := w.closed
			w.queue = nil
			w.mu.Unlock()
			if closed {
				return
			}
			<-w.wake
			continue
		}
		j := w.queue[0]
		w.queue = w.queue[1:]
		w.mu.Unlock()

		if j.run != nil {
			j.run(context.Background())
		}
		if j.done != nil {
			close(j.done)
		}
	}
}
