package taskpool

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultWorkers(t *testing.T) {
	assert.GreaterOrEqual(t, DefaultWorkers(), 1)

	p := New(0)
	defer p.Shutdown()
	assert.Equal(t, DefaultWorkers(), p.Workers())
}

func TestEveryTaskRunsOnce(t *testing.T) {
	for _, workers := range []int{1, 2, 8} {
		p := New(workers)

		const n = 1000
		var counter atomic.Int64
		for range n {
			require.NoError(t, p.Enqueue(func() { counter.Add(1) }))
		}
		p.AwaitIdle()

		assert.Equal(t, int64(n), counter.Load(), "workers=%d", workers)
		assert.Equal(t, 0, p.Pending())
		p.Shutdown()
	}
}

func TestAwaitIdleWaitsForRunningTask(t *testing.T) {
	p := New(2)
	defer p.Shutdown()

	started := make(chan struct{})
	release := make(chan struct{})
	var finished atomic.Bool

	require.NoError(t, p.Enqueue(func() {
		close(started)
		<-release
		finished.Store(true)
	}))

	<-started
	// the queue is empty now but the task is still running
	returned := make(chan struct{})
	go func() {
		p.AwaitIdle()
		close(returned)
	}()

	select {
	case <-returned:
		t.Fatal("AwaitIdle returned while a task was still running")
	case <-time.After(20 * time.Millisecond):
	}

	close(release)
	<-returned
	assert.True(t, finished.Load())
}

func TestAwaitIdleWithNoWork(t *testing.T) {
	p := New(1)
	defer p.Shutdown()

	done := make(chan struct{})
	go func() {
		p.AwaitIdle()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("AwaitIdle blocked on an empty pool")
	}
}

func TestSingleWorkerIsFIFO(t *testing.T) {
	p := New(1)
	defer p.Shutdown()

	var (
		mu    sync.Mutex
		order []int
	)
	for i := range 50 {
		require.NoError(t, p.Enqueue(func() {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
		}))
	}
	p.AwaitIdle()

	require.Len(t, order, 50)
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestPoolIsReusableAcrossBatches(t *testing.T) {
	p := New(3)
	defer p.Shutdown()

	var counter atomic.Int64
	for batch := 1; batch <= 5; batch++ {
		for range 100 {
			require.NoError(t, p.Enqueue(func() { counter.Add(1) }))
		}
		p.AwaitIdle()
		assert.Equal(t, int64(batch*100), counter.Load())
	}
}

func TestShutdownDrainsQueue(t *testing.T) {
	p := New(2)

	var counter atomic.Int64
	for range 200 {
		require.NoError(t, p.Enqueue(func() { counter.Add(1) }))
	}
	p.Shutdown()

	assert.Equal(t, int64(200), counter.Load())
}

func TestShutdownIsIdempotent(t *testing.T) {
	p := New(2)
	p.Shutdown()
	p.Shutdown()

	err := p.Enqueue(func() {})
	assert.ErrorIs(t, err, ErrClosed)
	assert.Equal(t, 0, p.Pending())
}

func TestConcurrentProducers(t *testing.T) {
	p := New(4)
	defer p.Shutdown()

	var (
		counter atomic.Int64
		wg      sync.WaitGroup
	)
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 250 {
				assert.NoError(t, p.Enqueue(func() { counter.Add(1) }))
			}
		}()
	}
	wg.Wait()
	p.AwaitIdle()

	assert.Equal(t, int64(2000), counter.Load())
}

func BenchmarkEnqueueAwait(b *testing.B) {
	p := New(0)
	defer p.Shutdown()

	for b.Loop() {
		for range 64 {
			_ = p.Enqueue(func() {})
		}
		p.AwaitIdle()
	}
}
