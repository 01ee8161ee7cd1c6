package parallel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// Job is one unit of work. A non-nil error counts the job as failed.
type Job func() error

// Stats counts the jobs a Pool ran.
type Stats struct {
	Processed uint64
	Failed    uint64
}

func (s Stats) Total() uint64 {
	return s.Processed + s.Failed
}

// Pool runs jobs on a fixed set of workers. A pool with a single worker runs
// every job inline in Submit. After Wait the pool is closed and must not be
// given more work.
type Pool struct {
	wg        sync.WaitGroup
	jobs      chan Job
	closeJobs func()

	processed atomic.Uint64
	failed    atomic.Uint64
}

// Start launches numWorkers workers, or GOMAXPROCS workers if numWorkers < 1.
func Start(numWorkers int) *Pool {
	if numWorkers < 1 {
		numWorkers = runtime.GOMAXPROCS(0)
	}

	pool := &Pool{
		closeJobs: func() {},
	}

	if numWorkers > 1 {
		pool.jobs = make(chan Job, numWorkers)
		for range numWorkers {
			pool.wg.Go(func() {
				for job := range pool.jobs {
					pool.run(job)
				}
			})
		}
		pool.closeJobs = sync.OnceFunc(func() { close(pool.jobs) })
	}

	return pool
}

func (p *Pool) run(job Job) {
	if err := job(); err != nil {
		p.failed.Add(1)
		return
	}
	p.processed.Add(1)
}

// Submit queues job, blocking while every worker is busy.
func (p *Pool) Submit(job Job) {
	if p.jobs == nil {
		p.run(job)
		return
	}
	p.jobs <- job
}

// Wait closes the pool, waits for queued jobs and returns the final counts.
func (p *Pool) Wait() Stats {
	p.closeJobs()
	p.wg.Wait()
	return Stats{
		Processed: p.processed.Load(),
		Failed:    p.failed.Load(),
	}
}
