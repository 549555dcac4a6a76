package utils

import (
	"context"
	"sync"

	goutils "go.viam.com/utils"
)

// StoppableWorkers is a collection of goroutines sharing one cancellable context.
type StoppableWorkers interface {
	// AddWorkers starts one goroutine per function. It reports false, starting nothing, once the
	// workers have been cancelled.
	AddWorkers(...func(context.Context)) bool
	// Cancel cancels the shared context without waiting. Workers that ignore their context keep
	// running.
	Cancel()
	// Wait blocks until every started goroutine has returned.
	Wait()
}

// stoppableWorkersImpl is the implementation of StoppableWorkers. The linter will complain if you
// try to make a copy of something that contains a sync.WaitGroup, so everything goes through the
// StoppableWorkers interface.
type stoppableWorkersImpl struct {
	mu                      sync.Mutex
	cancelCtx               context.Context
	cancelFunc              func()
	activeBackgroundWorkers sync.WaitGroup
}

// NewStoppableWorkersWithContext runs the functions in separate goroutines sharing a context
// derived from ctx, so cancelling ctx also cancels the workers.
func NewStoppableWorkersWithContext(ctx context.Context, funcs ...func(context.Context)) StoppableWorkers {
	cancelCtx, cancelFunc := context.WithCancel(ctx)
	workers := &stoppableWorkersImpl{cancelCtx: cancelCtx, cancelFunc: cancelFunc}
	workers.AddWorkers(funcs...)
	return workers
}

func (sw *stoppableWorkersImpl) AddWorkers(funcs ...func(context.Context)) bool {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.cancelCtx.Err() != nil {
		return false
	}

	sw.activeBackgroundWorkers.Add(len(funcs))
	for _, f := range funcs {
		goutils.PanicCapturingGo(func() {
			defer sw.activeBackgroundWorkers.Done()
			f(sw.cancelCtx)
		})
	}
	return true
}

func (sw *stoppableWorkersImpl) Cancel() {
	sw.mu.Lock()
	defer sw.mu.Unlock()
	sw.cancelFunc()
}

// Wait does not hold the lock so that a running worker may still call AddWorkers (which will be
// refused once cancelled) without deadlocking.
func (sw *stoppableWorkersImpl) Wait() {
	sw.activeBackgroundWorkers.Wait()
}
