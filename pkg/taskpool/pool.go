// Package taskpool runs closures on a fixed set of worker goroutines.
//
// Tasks are taken from a FIFO queue. AwaitIdle tracks tasks that were
// enqueued but have not finished, so it returns only after the last running
// task completes, not when the queue merely drains.
package taskpool

import (
	"errors"
	"runtime"
	"sync"
)

// ErrClosed is returned by Enqueue after Shutdown.
var ErrClosed = errors.New("taskpool: pool is shut down")

// Task is a unit of work. It runs exactly once on some worker.
type Task func()

// Pool is a fixed-size worker pool. It is safe for concurrent use.
type Pool struct {
	mu   sync.Mutex
	work *sync.Cond // signalled when a task is queued or on shutdown
	idle *sync.Cond // signalled when outstanding drops to zero

	queue       []Task
	outstanding int
	closed      bool

	workers int
	wg      sync.WaitGroup
}

// DefaultWorkers returns max(NumCPU-1, 1), leaving one core for the
// goroutine that produces work.
func DefaultWorkers() int {
	return max(runtime.NumCPU()-1, 1)
}

// New starts a pool with the given number of workers.
// If workers <= 0, DefaultWorkers is used.
func New(workers int) *Pool {
	if workers <= 0 {
		workers = DefaultWorkers()
	}

	p := &Pool{workers: workers}
	p.work = sync.NewCond(&p.mu)
	p.idle = sync.NewCond(&p.mu)

	p.wg.Add(workers)
	for range workers {
		go p.worker()
	}
	return p
}

// Workers returns the number of worker goroutines.
func (p *Pool) Workers() int {
	return p.workers
}

// Enqueue appends t to the queue and wakes one idle worker.
func (p *Pool) Enqueue(t Task) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	p.queue = append(p.queue, t)
	p.outstanding++
	p.mu.Unlock()

	p.work.Signal()
	return nil
}

// Pending returns the number of tasks enqueued but not yet finished.
func (p *Pool) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.outstanding
}

// AwaitIdle blocks until every enqueued task has finished running.
func (p *Pool) AwaitIdle() {
	p.mu.Lock()
	for p.outstanding > 0 {
		p.idle.Wait()
	}
	p.mu.Unlock()
}

// Shutdown stops accepting tasks, lets the workers drain the queue and
// waits for them to exit. Calling it more than once is a no-op.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		p.wg.Wait()
		return
	}
	p.closed = true
	p.mu.Unlock()

	p.work.Broadcast()
	p.wg.Wait()
}

func (p *Pool) worker() {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.closed {
			p.work.Wait()
		}
		if len(p.queue) == 0 {
			// closed and drained
			p.mu.Unlock()
			return
		}
		t := p.queue[0]
		p.queue[0] = nil
		p.queue = p.queue[1:]
		p.mu.Unlock()

		p.run(t)
	}
}

// run executes t and retires it even if t panics; the panic then continues
// up the worker goroutine.
func (p *Pool) run(t Task) {
	defer p.done()
	t()
}

func (p *Pool) done() {
	p.mu.Lock()
	p.outstanding--
	if p.outstanding == 0 {
		p.idle.Broadcast()
	}
	p.mu.Unlock()
}
