// Package fake implements a simulated motor.
package fake

import (
	"context"
	"math"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/atomic"

	"github.com/drivepath/drivepath/logging"
	"github.com/drivepath/drivepath/motor"
)

var _ motor.Motor = &Motor{}

// A Motor tracks its commanded velocity with a first order lag applied on every read.
type Motor struct {
	name   string
	logger logging.Logger

	mu        sync.Mutex
	commanded float64
	velocity  float64
	response  float64
	maxAbs    float64
	velErr    error
	setErr    error

	reads   atomic.Int64
	writes  atomic.Int64
	stopped atomic.Bool
}

// NewMotor returns a simulated motor. response in (0, 1] is the fraction of the gap to the
// commanded velocity closed on each Velocity call; 1 follows commands instantly.
func NewMotor(name string, response float64, logger logging.Logger) (*Motor, error) {
	if !(response > 0 && response <= 1) {
		return nil, errors.Errorf("fake motor %q response must be in (0, 1], got %v", name, response)
	}
	return &Motor{name: name, response: response, logger: logger}, nil
}

// Name returns the motor name.
func (m *Motor) Name() string {
	return m.name
}

// Velocity advances the simulation one step and returns the new velocity.
func (m *Motor) Velocity(ctx context.Context) (float64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.velErr != nil {
		return 0, m.velErr
	}
	m.reads.Inc()
	m.velocity += m.response * (m.commanded - m.velocity)
	return m.velocity, nil
}

// SetVelocity records the commanded velocity.
func (m *Motor) SetVelocity(ctx context.Context, radPerSec float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.writes.Inc()
	m.stopped.Store(false)
	m.commanded = radPerSec
	if abs := math.Abs(radPerSec); abs > m.maxAbs {
		m.maxAbs = abs
	}
	return nil
}

// Stop zeroes the commanded and current velocity.
func (m *Motor) Stop(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.commanded = 0
	m.velocity = 0
	m.stopped.Store(true)
	if m.logger != nil {
		m.logger.Debugw("fake motor stopped", "motor", m.name, "writes", m.writes.Load())
	}
	return nil
}

// Commanded returns the last commanded velocity.
func (m *Motor) Commanded() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.commanded
}

// MaxCommanded returns the largest absolute velocity ever commanded.
func (m *Motor) MaxCommanded() float64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.maxAbs
}

// Reads returns how many times Velocity succeeded.
func (m *Motor) Reads() int64 {
	return m.reads.Load()
}

// Writes returns how many times SetVelocity succeeded.
func (m *Motor) Writes() int64 {
	return m.writes.Load()
}

// Stopped reports whether Stop was the last command.
func (m *Motor) Stopped() bool {
	return m.stopped.Load()
}

// FailVelocity makes subsequent Velocity calls return err. A nil err clears the failure.
func (m *Motor) FailVelocity(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.velErr = err
}

// FailSetVelocity makes subsequent SetVelocity calls return err. A nil err clears the failure.
func (m *Motor) FailSetVelocity(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.setErr = err
}
