package dispatch

import (
	"context"
	"sync"
	"time"

	"github.com/noorhashem/devflow-backend/internal/logger"
	"github.com/noorhashem/devflow-backend/internal/metrics"
)

// Dispatcher runs best-effort work strictly after the transaction that
// enqueued it has committed. Callers must only Enqueue once commit is
// confirmed; the dispatcher itself never sees the transaction.
//
// Delivery is at-most-once: a failed task is logged and dropped, and a full
// queue drops the task immediately. Neither outcome is reported back to the
// primary operation.
type Dispatcher struct {
	tasks   chan task
	log     *logger.Logger
	wg      sync.WaitGroup
	timeout time.Duration

	mu     sync.Mutex
	closed bool
}

type task struct {
	name string
	run  func(context.Context) error
}

func New(logg *logger.Logger, buffer int) *Dispatcher {
	d := &Dispatcher{
		tasks:   make(chan task, buffer),
		log:     logg.With("service", "dispatcher"),
		timeout: 10 * time.Second,
	}
	d.wg.Add(1)
	go d.worker()
	return d
}

// Enqueue schedules fn to run on the dispatcher goroutine. It never blocks:
// when the queue is full the task is dropped and counted.
func (d *Dispatcher) Enqueue(name string, fn func(context.Context) error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.closed {
		d.log.Warn("dispatcher closed, dropping task", "task", name)
		metrics.SideEffectTasks.WithLabelValues("dropped").Inc()
		return
	}
	select {
	case d.tasks <- task{name: name, run: fn}:
	default:
		d.log.Warn("dispatch queue full, dropping task", "task", name)
		metrics.SideEffectTasks.WithLabelValues("dropped").Inc()
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for t := range d.tasks {
		// Tasks run against a fresh context: cancellation of the request
		// that enqueued them must not cancel post-commit work.
		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		if err := t.run(ctx); err != nil {
			d.log.Error("side-effect task failed", "task", t.name, "error", err)
			metrics.SideEffectTasks.WithLabelValues("failed").Inc()
		} else {
			metrics.SideEffectTasks.WithLabelValues("ok").Inc()
		}
		cancel()
	}
}

// Close stops accepting tasks and waits for queued ones to finish.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	if d.closed {
		d.mu.Unlock()
		return
	}
	d.closed = true
	d.mu.Unlock()

	close(d.tasks)
	d.wg.Wait()
}
