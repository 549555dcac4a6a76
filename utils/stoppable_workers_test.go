package utils

import (
	"context"
	"testing"
	"time"

	"go.uber.org/atomic"
	"go.viam.com/test"
)

func TestStoppableWorkers(t *testing.T) {
	t.Run("cancel then wait joins every worker", func(t *testing.T) {
		var stopped atomic.Int32
		worker := func(ctx context.Context) {
			<-ctx.Done()
			stopped.Inc()
		}
		sw := NewStoppableWorkersWithContext(context.Background(), worker, worker)
		test.That(t, sw.AddWorkers(worker), test.ShouldBeTrue)
		sw.Cancel()
		sw.Wait()
		test.That(t, stopped.Load(), test.ShouldEqual, 3)
	})

	t.Run("no workers start after cancel", func(t *testing.T) {
		var ran atomic.Bool
		sw := NewStoppableWorkersWithContext(context.Background())
		sw.Cancel()
		test.That(t, sw.AddWorkers(func(ctx context.Context) { ran.Store(true) }), test.ShouldBeFalse)
		sw.Wait()
		test.That(t, ran.Load(), test.ShouldBeFalse)
	})

	t.Run("workers may add workers", func(t *testing.T) {
		var children atomic.Int32
		started := make(chan struct{})
		sw := NewStoppableWorkersWithContext(context.Background())
		sw.AddWorkers(func(ctx context.Context) {
			for i := 0; i < 3; i++ {
				sw.AddWorkers(func(ctx context.Context) {
					children.Inc()
					<-ctx.Done()
				})
			}
			close(started)
			<-ctx.Done()
		})
		<-started
		sw.Cancel()
		sw.Wait()
		test.That(t, children.Load(), test.ShouldEqual, 3)
	})

	t.Run("cancel does not wait for workers ignoring context", func(t *testing.T) {
		release := make(chan struct{})
		var done atomic.Bool
		sw := NewStoppableWorkersWithContext(context.Background(), func(ctx context.Context) {
			<-release
			done.Store(true)
		})
		sw.Cancel()
		test.That(t, done.Load(), test.ShouldBeFalse)
		close(release)
		sw.Wait()
		test.That(t, done.Load(), test.ShouldBeTrue)
	})

	t.Run("parent context cancels workers", func(t *testing.T) {
		parent, cancel := context.WithCancel(context.Background())
		exited := make(chan struct{})
		sw := NewStoppableWorkersWithContext(parent, func(ctx context.Context) {
			<-ctx.Done()
			close(exited)
		})
		cancel()
		select {
		case <-exited:
		case <-time.After(time.Second):
			t.Fatal("worker did not observe parent cancellation")
		}
		sw.Wait()
	})

	t.Run("panics are captured", func(t *testing.T) {
		sw := NewStoppableWorkersWithContext(context.Background(), func(ctx context.Context) {
			panic("boom")
		})
		sw.Wait()
	})
}
