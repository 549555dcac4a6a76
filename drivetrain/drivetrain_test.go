package drivetrain

import (
	"context"
	"sync"
	"time"

	"github.com/benbjohnson/clock"

	"github.com/drivepath/drivepath/motor/fake"
	"github.com/drivepath/drivepath/trajectory"
)

// steppingClock advances by step on every reading so busy loops make progress without sleeping.
type steppingClock struct {
	*clock.Mock
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newSteppingClock(step time.Duration) *steppingClock {
	return &steppingClock{Mock: clock.NewMock(), now: time.Unix(0, 0), step: step}
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

func (c *steppingClock) Since(t time.Time) time.Duration {
	return c.Now().Sub(t)
}

// stubPath returns constant velocities and completes after limit left velocity queries. A zero
// limit never completes.
type stubPath struct {
	typ               trajectory.Type
	left, right       float64
	podLeft, podRight float64
	limit, queries    int
	built, completed  bool
	buildErr          error
}

func (s *stubPath) Build() error {
	if s.buildErr != nil {
		return s.buildErr
	}
	s.built = true
	return nil
}

func (s *stubPath) Built() bool { return s.built }
func (s *stubPath) Completed() bool { return s.completed }
func (s *stubPath) ResetCompletion() { s.completed = false }
func (s *stubPath) Type() trajectory.Type { return s.typ }
func (s *stubPath) Direction() trajectory.Direction { return trajectory.Forward }
func (s *stubPath) ExecuteTime() float64 { return float64(s.limit) }
func (s *stubPath) RightVelocity(t float64) float64 { return s.right }
func (s *stubPath) LeftAngularVelocity(float64) float64 { return s.podLeft }
func (s *stubPath) RightAngularVelocity(float64) float64 { return s.podRight }

func (s *stubPath) LeftVelocity(t float64) float64 {
	s.queries++
	if s.limit > 0 && s.queries > s.limit {
		s.completed = true
		return 0
	}
	return s.left
}

// cancelingMotor cancels its context once it has been written to after times.
type cancelingMotor struct {
	*fake.Motor
	after  int64
	cancel context.CancelFunc
}

func (m *cancelingMotor) SetVelocity(ctx context.Context, radPerSec float64) error {
	err := m.Motor.SetVelocity(ctx, radPerSec)
	if m.Writes() >= m.after {
		m.cancel()
	}
	return err
}
