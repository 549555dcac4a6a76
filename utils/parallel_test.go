package utils

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"go.uber.org/atomic"
	"go.viam.com/test"
	gutils "go.viam.com/utils"
)

func TestRunAllInParallel(t *testing.T) {
	var finished atomic.Int32
	wait10ms := func(ctx context.Context) error {
		gutils.SelectContextOrWait(ctx, 10*time.Millisecond)
		finished.Inc()
		return nil
	}

	err := RunAllInParallel(context.Background(), []SimpleFunc{wait10ms, wait10ms})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, finished.Load(), test.ShouldEqual, 2)

	errFunc := func(ctx context.Context) error {
		return errors.New("bad")
	}

	// one failure does not stop the others from running to completion
	finished.Store(0)
	err = RunAllInParallel(context.Background(), []SimpleFunc{wait10ms, errFunc, wait10ms, errFunc})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldEqual, "bad; bad")
	test.That(t, finished.Load(), test.ShouldEqual, 2)

	panicFunc := func(ctx context.Context) error {
		panic(1)
	}

	err = RunAllInParallel(context.Background(), []SimpleFunc{panicFunc})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "got panic")
}

func TestDegToRad(t *testing.T) {
	test.That(t, DegToRad(180), test.ShouldAlmostEqual, math.Pi)
	test.That(t, DegToRad(-90), test.ShouldAlmostEqual, -math.Pi/2)
}
