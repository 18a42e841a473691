package worker

import (
	"context"
	"log"
	"runtime"
	"sync"

	"profile-clip/src/screenshot"
)

// RecognizeFunc performs OCR on a region and returns text fragments.
type RecognizeFunc func(region screenshot.Region) ([]string, error)

// ResultCallback is invoked on completion from a worker goroutine. The event
// loop passes a closure that posts back into the loop safely.
type ResultCallback func(fragments []string, err error)

// Pool is a fixed-size recognition worker pool with a 1-slot input queue
// (strict back-pressure: a second submission while one is queued is dropped).
type Pool struct {
	jobs      chan job
	recognize RecognizeFunc
	wg        sync.WaitGroup
}

type job struct {
	ctx    context.Context
	region screenshot.Region
	cb     ResultCallback
}

// New creates a pool running recognize. Size defaults to NumCPU when size<=0.
func New(size int, recognize RecognizeFunc) *Pool {
	if size <= 0 {
		size = runtime.NumCPU()
	}
	p := &Pool{jobs: make(chan job, 1), recognize: recognize}
	p.start(size)
	return p
}

func (p *Pool) start(n int) {
	for i := 0; i < n; i++ {
		p.wg.Add(1)
		go func() {
			defer p.wg.Done()
			for j := range p.jobs {
				fragments, err := p.recognizeWithContext(j.ctx, j.region)
				log.Printf("Worker: recognition completed, fragments=%d, err=%v", len(fragments), err)
				j.cb(fragments, err)
			}
		}()
	}
}

// Submit enqueues a job if the single-slot queue is free. Returns false if dropped.
func (p *Pool) Submit(ctx context.Context, region screenshot.Region, cb ResultCallback) bool {
	select {
	case p.jobs <- job{ctx: ctx, region: region, cb: cb}:
		return true
	default:
		return false
	}
}

// Close stops the pool after draining current work.
func (p *Pool) Close() {
	close(p.jobs)
	p.wg.Wait()
}

// recognizeWithContext runs recognition in a sub-goroutine and honors the
// ctx deadline. A timed-out recognition keeps running in the background but
// its result is discarded.
func (p *Pool) recognizeWithContext(ctx context.Context, region screenshot.Region) ([]string, error) {
	if _, ok := ctx.Deadline(); !ok && ctx.Done() == nil {
		return p.recognize(region)
	}
	type result struct {
		fragments []string
		err       error
	}
	resCh := make(chan result, 1)
	go func() {
		fragments, err := p.recognize(region)
		resCh <- result{fragments, err}
	}()
	select {
	case r := <-resCh:
		return r.fragments, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
