package trajectory

import (
	"math"

	"github.com/pkg/errors"
)

// Line drives straight along a half-sine speed profile whose integral over the execute time is
// the absolute distance.
type Line struct {
	base
	distance    float64
	maxVelocity float64
	signs       signTable
}

// NewLine returns an unbuilt line. A negative distance drives backwards; dir independently
// selects the wheel-sign row.
func NewLine(geom Geometry, distance, maxVelocity float64, dir Direction) (*Line, error) {
	b, err := newBase(geom, LineType, dir)
	if err != nil {
		return nil, err
	}
	if distance == 0 || math.IsNaN(distance) || math.IsInf(distance, 0) {
		return nil, errors.Errorf("line distance must be finite and non-zero, got %v", distance)
	}
	if !(maxVelocity > 0) || math.IsInf(maxVelocity, 0) {
		return nil, errors.Errorf("line max velocity must be positive, got %v", maxVelocity)
	}
	return &Line{base: b, distance: distance, maxVelocity: maxVelocity, signs: lineSigns[geom.Symmetry]}, nil
}

// Distance returns the signed distance in meters.
func (l *Line) Distance() float64 {
	return l.distance
}

// MaxVelocity returns the peak speed in m/s.
func (l *Line) MaxVelocity() float64 {
	return l.maxVelocity
}

// Build computes the execute time. Repeated calls do nothing.
func (l *Line) Build() error {
	if l.status == Built {
		return nil
	}
	l.executeTime = math.Pi * math.Abs(l.distance) / (2 * l.maxVelocity)
	l.status = Built
	return nil
}

// Velocity returns the signed centerline speed at t.
func (l *Line) Velocity(t float64) float64 {
	l.checkQuery(t)
	if l.finished(t) {
		return 0
	}
	v := l.maxVelocity * math.Sin(math.Pi*t/l.executeTime)
	if l.distance < 0 {
		return -v
	}
	return v
}

// LeftVelocity returns the left side speed at t in m/s.
func (l *Line) LeftVelocity(t float64) float64 {
	return l.Velocity(t) * l.signs.coefficient(left, l.dir)
}

// RightVelocity returns the right side speed at t in m/s.
func (l *Line) RightVelocity(t float64) float64 {
	return l.Velocity(t) * l.signs.coefficient(right, l.dir)
}

// LeftAngularVelocity is always zero; lines do not rotate pods.
func (l *Line) LeftAngularVelocity(t float64) float64 {
	l.checkQuery(t)
	return 0
}

// RightAngularVelocity is always zero; lines do not rotate pods.
func (l *Line) RightAngularVelocity(t float64) float64 {
	l.checkQuery(t)
	return 0
}

// Turn rotates the chassis in place by driving each side along the arc of radius
// TrackWidth/2 that covers the requested angle.
type Turn struct {
	Line
	angle float64
}

// NewTurn returns an unbuilt in-place turn of angle degrees. Positive and negative angles turn
// in opposite directions.
func NewTurn(geom Geometry, angle, maxVelocity float64, dir Direction) (*Turn, error) {
	if err := geom.Validate(); err != nil {
		return nil, err
	}
	if angle == 0 || math.IsNaN(angle) || math.IsInf(angle, 0) {
		return nil, errors.Errorf("turn angle must be finite and non-zero, got %v", angle)
	}
	l, err := NewLine(geom, TurnDistance(angle, geom.TrackWidth), maxVelocity, dir)
	if err != nil {
		return nil, errors.Wrap(err, "turn")
	}
	l.typ = TurnType
	l.signs = turnSigns[geom.Symmetry]
	return &Turn{Line: *l, angle: angle}, nil
}

// TurnDistance is the distance each side travels to turn angle degrees in place.
func TurnDistance(angle, trackWidth float64) float64 {
	return math.Pi * angle * trackWidth / 360
}

// Angle returns the turn angle in degrees.
func (t *Turn) Angle() float64 {
	return t.angle
}
