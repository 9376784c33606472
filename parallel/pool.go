// Package parallel provides the worker pool threaded through command
// Run methods. Matching work for distinct source colors is fanned out
// over it.
package parallel

import (
	"runtime"
	"sync"
)

type (
	WorkerFunc func(func())
	WaitFunc   func(done bool)
	CancelFunc func()
)

type Pool struct {
	wg     sync.WaitGroup
	Do     WorkerFunc
	Wait   WaitFunc
	Cancel CancelFunc
}

// Start launches numWorkers goroutines pulling submitted tasks off a
// shared channel. With fewer than two workers the pool degenerates to
// synchronous in-place execution and Wait/Cancel are no-ops.
func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{
		Do:     func(task func()) { task() },
		Wait:   func(bool) {},
		Cancel: func() {},
	}
	if numWorkers < 2 {
		return pool
	}

	tasks := make(chan func(), numWorkers)
	for range numWorkers {
		pool.wg.Go(func() {
			for task := range tasks {
				task()
			}
		})
	}

	pool.Do = func(task func()) {
		tasks <- task
	}
	pool.Cancel = sync.OnceFunc(func() { close(tasks) })
	pool.Wait = func(done bool) {
		if done {
			pool.Cancel()
		}
		pool.wg.Wait()
	}

	return pool
}
