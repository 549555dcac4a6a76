// Package motor defines the motor channels a drivetrain commands.
package motor

import (
	"context"

	"github.com/pkg/errors"
)

// A Motor is one velocity-controlled drivetrain channel: a wheel or a swerve pod motor.
type Motor interface {
	// Name identifies the motor in logs and errors.
	Name() string

	// Velocity reports the measured angular velocity in rad/s.
	Velocity(ctx context.Context) (float64, error)

	// SetVelocity commands an angular velocity in rad/s.
	SetVelocity(ctx context.Context, radPerSec float64) error

	// Stop brings the motor to rest.
	Stop(ctx context.Context) error
}

// NewUnsetError is returned when a required motor slot was left empty.
func NewUnsetError(slot string) error {
	return errors.Errorf("motor %q is not set", slot)
}
