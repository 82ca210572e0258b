package payroll

import (
	"context"
	"sync"
	"time"
)

// Dispatcher runs payroll processing in the background with a cap on
// concurrent runs. Each run gets its own context detached from the triggering
// HTTP request, bounded by a per-run timeout so a stuck gateway cannot pin a
// run in processing forever.
type Dispatcher struct {
	sem     chan struct{}
	timeout time.Duration
	wg      sync.WaitGroup
}

func NewDispatcher(maxConcurrent int, timeout time.Duration) *Dispatcher {
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}
	return &Dispatcher{
		sem:     make(chan struct{}, maxConcurrent),
		timeout: timeout,
	}
}

// Dispatch schedules process on a new goroutine. It returns immediately; the
// goroutine blocks on the concurrency semaphore before doing any work, so a
// burst of triggers queues rather than overwhelming the gateway.
func (d *Dispatcher) Dispatch(process func(ctx context.Context)) {
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()

		d.sem <- struct{}{}
		defer func() { <-d.sem }()

		ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()

		process(ctx)
	}()
}

// Wait blocks until every dispatched run has finished. Called during
// shutdown so in-flight runs complete before the process exits.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
