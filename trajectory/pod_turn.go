package trajectory

import (
	"math"

	"github.com/pkg/errors"
)

// PodTurn spins the swerve pods in place along a half-sine angular velocity profile. The chassis
// sides do not move.
type PodTurn struct {
	base
	angle      float64
	maxAngular float64
}

// NewPodTurn returns an unbuilt pod turn of angle radians peaking at maxAngularVelocity rad/s.
func NewPodTurn(geom Geometry, angle, maxAngularVelocity float64, dir Direction) (*PodTurn, error) {
	b, err := newBase(geom, PodTurnType, dir)
	if err != nil {
		return nil, err
	}
	if angle == 0 || math.IsNaN(angle) || math.IsInf(angle, 0) {
		return nil, errors.Errorf("pod turn angle must be finite and non-zero, got %v", angle)
	}
	if !(maxAngularVelocity > 0) || math.IsInf(maxAngularVelocity, 0) {
		return nil, errors.Errorf("pod turn max angular velocity must be positive, got %v", maxAngularVelocity)
	}
	return &PodTurn{base: b, angle: angle, maxAngular: maxAngularVelocity}, nil
}

// Angle returns the pod rotation in radians.
func (p *PodTurn) Angle() float64 {
	return p.angle
}

// Build computes the execute time. Repeated calls do nothing.
func (p *PodTurn) Build() error {
	if p.status == Built {
		return nil
	}
	p.executeTime = math.Pi * math.Abs(p.angle) / (2 * p.maxAngular)
	p.status = Built
	return nil
}

func (p *PodTurn) angular(t float64) float64 {
	p.checkQuery(t)
	if p.finished(t) {
		return 0
	}
	w := p.maxAngular * math.Sin(math.Pi*t/p.executeTime)
	if (p.angle < 0) != (p.dir == Reverse) {
		return -w
	}
	return w
}

// LeftVelocity is always zero.
func (p *PodTurn) LeftVelocity(t float64) float64 {
	p.angular(t)
	return 0
}

// RightVelocity is always zero.
func (p *PodTurn) RightVelocity(t float64) float64 {
	p.angular(t)
	return 0
}

// LeftAngularVelocity returns the pod angular velocity at t.
func (p *PodTurn) LeftAngularVelocity(t float64) float64 {
	return p.angular(t)
}

// RightAngularVelocity returns the pod angular velocity at t.
func (p *PodTurn) RightAngularVelocity(t float64) float64 {
	return p.angular(t)
}
