package service

import (
	"context"
	"log"
	"sync"
	"time"

	"tallyflow/internal/pipeline"
)

// runTimeout bounds one dispatched run end to end.
const runTimeout = 15 * time.Minute

// RunDispatcher executes runs asynchronously with bounded concurrency.
type RunDispatcher struct {
	coordinator *pipeline.Coordinator
	sem         chan struct{}
	wg          sync.WaitGroup
}

// NewRunDispatcher creates a dispatcher allowing up to concurrency
// simultaneous runs.
func NewRunDispatcher(coordinator *pipeline.Coordinator, concurrency int) *RunDispatcher {
	if concurrency < 1 {
		concurrency = 1
	}
	return &RunDispatcher{
		coordinator: coordinator,
		sem:         make(chan struct{}, concurrency),
	}
}

// Dispatch blocks until a worker slot is free, then executes the run in
// the background. The run gets a fresh context so an in-flight run
// survives the caller's request ending.
func (d *RunDispatcher) Dispatch(ctx context.Context, req pipeline.Request) error {
	select {
	case d.sem <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}

	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer func() { <-d.sem }()

		runCtx, cancel := context.WithTimeout(context.Background(), runTimeout)
		defer cancel()

		log.Printf("runDispatcher: executing run %s (%s %s %s)",
			req.RunID, req.Channel, req.GSTIN, req.Month)
		if _, err := d.coordinator.Execute(runCtx, req); err != nil {
			log.Printf("runDispatcher: run %s failed: %v", req.RunID, err)
		}
	}()
	return nil
}

// Shutdown waits for all in-flight runs to finish.
func (d *RunDispatcher) Shutdown() {
	log.Printf("runDispatcher: shutting down, waiting for in-flight runs...")
	d.wg.Wait()
	log.Printf("runDispatcher: shutdown complete")
}
