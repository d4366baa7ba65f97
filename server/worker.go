package server

import (
	"fmt"
)

// runRequest represents a unit of work for the execution goroutine.
type runRequest struct {
	fn   func() any
	done chan runResult
}

// runResult holds the return value from an execution.
type runResult struct {
	value any
	err   error
}

// Worker serializes all program executions through a single goroutine.
// Fuel metering keeps each run finite; running them back to back keeps
// the server's CPU use predictable and stash updates ordered with the
// runs that read them.
type Worker struct {
	requests chan runRequest
	quit     chan struct{}
}

// NewWorker creates a Worker and starts the processing goroutine.
func NewWorker() *Worker {
	w := &Worker{
		requests: make(chan runRequest, 64),
		quit:     make(chan struct{}),
	}
	go w.loop()
	return w
}

// loop processes requests sequentially on a dedicated goroutine.
func (w *Worker) loop() {
	for {
		select {
		case req := <-w.requests:
			req.done <- w.execute(req.fn)
		case <-w.quit:
			return
		}
	}
}

// execute runs a function, recovering from panics.
func (w *Worker) execute(fn func() any) runResult {
	var result runResult
	func() {
		defer func() {
			if r := recover(); r != nil {
				result.err = fmt.Errorf("%v", r)
			}
		}()
		result.value = fn()
	}()
	return result
}

// Do submits work to the worker and waits for the result.
func (w *Worker) Do(fn func() any) (any, error) {
	done := make(chan runResult, 1)
	w.requests <- runRequest{fn: fn, done: done}
	result := <-done
	return result.value, result.err
}

// Stop shuts down the worker goroutine.
func (w *Worker) Stop() {
	close(w.quit)
}
