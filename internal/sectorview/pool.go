// Package sectorview implements the stream-oriented sector writer (View) and
// the worker pool that fans EDC/ECC computation out across cores, turning a
// sequential fill-and-pad write loop into a concurrent codec-dispatching
// writer.
package sectorview

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// WorkerPool bounds how many EDC/ECC codec tasks run concurrently across all
// SectorViews sharing it. Each View keeps its own errgroup of pending
// futures (so a View's Close only waits on its own work); the pool's
// semaphore is what actually bounds concurrency to hardware parallelism.
type WorkerPool struct {
	sem chan struct{}
}

// NewWorkerPool creates a pool sized to the available hardware parallelism.
func NewWorkerPool() *WorkerPool {
	n := runtime.GOMAXPROCS(0)
	return &WorkerPool{sem: make(chan struct{}, n)}
}

// Submit schedules a pure-CPU codec task under g, acquiring a pool slot for
// its duration. Submission order need not match completion order; a task
// only ever touches the disjoint byte range its caller gave it.
func (p *WorkerPool) Submit(g *errgroup.Group, task func() error) {
	g.Go(func() error {
		p.sem <- struct{}{}
		defer func() { <-p.sem }()
		return task()
	})
}
