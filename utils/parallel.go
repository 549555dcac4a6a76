package utils

import (
	"context"
	"fmt"
	"sync"

	"go.uber.org/multierr"
)

// SimpleFunc is for RunAllInParallel.
type SimpleFunc func(ctx context.Context) error

// RunAllInParallel runs every function to completion in parallel and combines all of their
// errors. One failure does not cancel the others.
func RunAllInParallel(ctx context.Context, fs []SimpleFunc) error {
	var wg sync.WaitGroup

	var bigError error
	var bigErrorMutex sync.Mutex
	storeError := func(err error) {
		bigErrorMutex.Lock()
		defer bigErrorMutex.Unlock()
		bigError = multierr.Combine(bigError, err)
	}

	helper := func(f SimpleFunc) {
		defer func() {
			if thePanic := recover(); thePanic != nil {
				storeError(fmt.Errorf("got panic running something in parallel: %v", thePanic))
			}
			wg.Done()
		}()
		if err := f(ctx); err != nil {
			storeError(err)
		}
	}

	for _, f := range fs {
		wg.Add(1)
		go helper(f)
	}

	wg.Wait()
	return bigError
}
