package drivetrain

import (
	"math"

	"github.com/drivepath/drivepath/trajectory"
)

const (
	// DefaultPodConversionFactor converts swerve pod linear targets to motor angular velocity.
	DefaultPodConversionFactor = 6.803
	// DefaultSqrt2 is the square root of two used to split pod targets between the pod motors.
	DefaultSqrt2 = 1.4142
)

// SwerveConfig holds the differential swerve pod constants.
type SwerveConfig struct {
	ConversionFactor float64 `json:"conversion_factor,omitempty"`
	Sqrt2            float64 `json:"sqrt2,omitempty"`
}

// WithDefaults fills zero fields with the default constants.
func (cfg SwerveConfig) WithDefaults() SwerveConfig {
	if cfg.ConversionFactor == 0 {
		cfg.ConversionFactor = DefaultPodConversionFactor
	}
	if cfg.Sqrt2 == 0 {
		cfg.Sqrt2 = DefaultSqrt2
	}
	return cfg
}

// A mixer writes the angular velocity target of every channel at time t into out.
type mixer interface {
	targets(p trajectory.Path, t float64, out []float64)
}

type side int

const (
	leftSide side = iota
	rightSide
)

// differentialMixer drives every wheel of a side at the side's linear velocity.
type differentialMixer struct {
	radius float64
	sides  []side
}

func newDifferentialMixer(radius float64, motors int) *differentialMixer {
	sides := make([]side, motors)
	for i := motors / 2; i < motors; i++ {
		sides[i] = rightSide
	}
	return &differentialMixer{radius: radius, sides: sides}
}

// AngularVelocity converts a wheel's linear velocity in m/s to the motor's angular target.
func AngularVelocity(linear, radius float64) float64 {
	return linear / (radius * 2 * math.Pi)
}

func (m *differentialMixer) targets(p trajectory.Path, t float64, out []float64) {
	l := AngularVelocity(p.LeftVelocity(t), m.radius)
	r := AngularVelocity(p.RightVelocity(t), m.radius)
	for i, s := range m.sides {
		if s == leftSide {
			out[i] = l
		} else {
			out[i] = r
		}
	}
}

// diffSwerveMixer splits each pod's linear and angular velocity between its two motors.
type diffSwerveMixer struct {
	cfg SwerveConfig
}

func (m *diffSwerveMixer) targets(p trajectory.Path, t float64, out []float64) {
	l, r := p.LeftVelocity(t), p.RightVelocity(t)
	podL, podR := p.LeftAngularVelocity(t), p.RightAngularVelocity(t)
	k, sqrt2 := m.cfg.ConversionFactor, m.cfg.Sqrt2
	out[0] = k * (podL - l) / sqrt2
	out[1] = k * (podL + l) / sqrt2
	out[2] = k * (podR + r) / sqrt2
	out[3] = k * (podR - r) / sqrt2
}
