package trajectory

import (
	"math"

	"github.com/pkg/errors"
)

// ConstantHeadingSpline drives a spline without rotating the chassis. Both sides get the same
// linear speed and the differential the spline would have applied goes to the swerve pods as
// angular velocity.
type ConstantHeadingSpline struct {
	Spline
}

// NewConstantHeadingSpline returns an unbuilt constant heading spline. Arguments are those of
// NewSpline.
func NewConstantHeadingSpline(
	geom Geometry, radii, lengths []float64, velocity, accelTime float64, dir Direction,
) (*ConstantHeadingSpline, error) {
	s, err := NewSpline(geom, radii, lengths, velocity, accelTime, dir)
	if err != nil {
		return nil, errors.Wrap(err, "constant heading")
	}
	s.typ = ConstantHeadingSplineType
	return &ConstantHeadingSpline{Spline: *s}, nil
}

func (c *ConstantHeadingSpline) linear(t float64) float64 {
	l := c.Spline.LeftVelocity(t)
	r := c.Spline.RightVelocity(t)
	v := math.Abs(l - r)
	if l < 0 {
		return -v
	}
	return v
}

// LeftVelocity returns the shared side speed at t.
func (c *ConstantHeadingSpline) LeftVelocity(t float64) float64 {
	return c.linear(t)
}

// RightVelocity returns the shared side speed at t.
func (c *ConstantHeadingSpline) RightVelocity(t float64) float64 {
	return c.linear(t)
}

func (c *ConstantHeadingSpline) pod(t float64) float64 {
	center := c.Spline.Velocity(t)
	return 2 * (center - c.Spline.LeftVelocity(t))
}

// LeftAngularVelocity returns the pod angular velocity at t.
func (c *ConstantHeadingSpline) LeftAngularVelocity(t float64) float64 {
	return c.pod(t)
}

// RightAngularVelocity returns the pod angular velocity at t.
func (c *ConstantHeadingSpline) RightAngularVelocity(t float64) float64 {
	return c.pod(t)
}
