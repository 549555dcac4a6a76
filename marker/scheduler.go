package marker

import (
	"container/heap"
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/atomic"
	"golang.org/x/sync/semaphore"

	"github.com/drivepath/drivepath/logging"
	"github.com/drivepath/drivepath/utils"
)

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithClock makes the scheduler measure trigger times on clk.
func WithClock(clk clock.Clock) Option {
	return func(s *Scheduler) {
		s.clk = clk
	}
}

// WithMaxConcurrent bounds how many actions may run at once. Due markers wait for a free slot.
func WithMaxConcurrent(n int) Option {
	return func(s *Scheduler) {
		s.maxConcurrent = n
	}
}

// A Scheduler dispatches each marker of a list once, no earlier than its trigger time, to its own
// goroutine. Markers that are due together are dispatched in list order.
type Scheduler struct {
	list          *List
	logger        logging.Logger
	clk           clock.Clock
	maxConcurrent int
	sem           *semaphore.Weighted

	started    []atomic.Bool
	dispatched atomic.Int32

	mu      sync.Mutex
	workers utils.StoppableWorkers
}

// NewScheduler returns an inactive scheduler for list. A nil logger logs to stdout.
func NewScheduler(list *List, logger logging.Logger, opts ...Option) (*Scheduler, error) {
	if list == nil {
		return nil, errors.New("marker list is not set")
	}
	if logger == nil {
		logger = logging.NewLogger("marker")
	}
	s := &Scheduler{
		list:          list,
		logger:        logger,
		clk:           clock.New(),
		maxConcurrent: list.Len(),
		started:       make([]atomic.Bool, list.Len()),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.maxConcurrent < 1 {
		s.maxConcurrent = 1
	}
	s.sem = semaphore.NewWeighted(int64(s.maxConcurrent))
	return s, nil
}

// Activate starts the trigger clock and the supervising goroutine. Cancelling ctx has the same
// effect as Stop. A scheduler can be activated once.
func (s *Scheduler) Activate(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workers != nil {
		return errors.New("marker scheduler already activated")
	}
	start := s.clk.Now()
	s.workers = utils.NewStoppableWorkersWithContext(ctx)
	s.workers.AddWorkers(func(ctx context.Context) {
		s.supervise(ctx, start)
	})
	s.logger.Debugw("marker scheduler activated", "markers", s.list.Len(), "max_concurrent", s.maxConcurrent)
	return nil
}

func (s *Scheduler) supervise(ctx context.Context, start time.Time) {
	waiting := &queue{entries: make([]entry, 0, s.list.Len())}
	for i := 0; i < s.list.Len(); i++ {
		if at := s.list.Time(i); at != Never {
			waiting.entries = append(waiting.entries, entry{at: at, index: i})
		}
	}
	heap.Init(waiting)
	due := &queue{byIndex: true}

	for waiting.Len() > 0 || due.Len() > 0 {
		s.promote(waiting, due, start)
		if due.Len() == 0 {
			if wait := waiting.peek().at - s.clk.Since(start); wait > 0 {
				timer := s.clk.Timer(wait)
				select {
				case <-ctx.Done():
					timer.Stop()
					return
				case <-timer.C:
				}
			}
			continue
		}
		if ctx.Err() != nil {
			return
		}
		if err := s.sem.Acquire(ctx, 1); err != nil {
			return
		}
		// markers that came due while waiting for a slot compete in list order
		s.promote(waiting, due, start)
		next := heap.Pop(due).(entry)
		if !s.dispatch(next.index) {
			s.sem.Release(1)
			return
		}
	}
}

// promote moves every marker whose trigger time has passed from waiting to due.
func (s *Scheduler) promote(waiting, due *queue, start time.Time) {
	elapsed := s.clk.Since(start)
	for waiting.Len() > 0 && waiting.peek().at <= elapsed {
		heap.Push(due, heap.Pop(waiting))
	}
}

func (s *Scheduler) dispatch(i int) bool {
	m := s.list.At(i)
	ok := s.workers.AddWorkers(func(ctx context.Context) {
		defer s.sem.Release(1)
		s.logger.Debugw("marker started", "marker", m.Name, "at", m.At)
		m.Action(ctx)
	})
	if !ok {
		return false
	}
	s.started[i].Store(true)
	s.dispatched.Inc()
	return true
}

// Started reports whether marker i has been dispatched.
func (s *Scheduler) Started(i int) bool {
	return s.started[i].Load()
}

// Dispatched returns how many markers have been dispatched.
func (s *Scheduler) Dispatched() int {
	return int(s.dispatched.Load())
}

// Stop cancels the supervisor and every running action without waiting for them. No marker is
// dispatched after Stop returns.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.workers != nil {
		s.workers.Cancel()
	}
}

// Wait blocks until the supervisor and every dispatched action have returned.
func (s *Scheduler) Wait() {
	s.mu.Lock()
	workers := s.workers
	s.mu.Unlock()
	if workers != nil {
		workers.Wait()
	}
}
