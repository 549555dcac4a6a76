package control

import (
	"github.com/pkg/errors"
)

const (
	// DefaultForgetLength is the number of samples after which old errors leave the PID window.
	DefaultForgetLength = 64
	// DefaultIntegralTimeScale divides millisecond timestamps inside the integral term.
	DefaultIntegralTimeScale = 160.0
	// DefaultDerivativeScale multiplies the derivative term.
	DefaultDerivativeScale = 1e-8
)

// PIDConfig holds the gains and tuning constants of a PID.
type PIDConfig struct {
	Kp                float64 `json:"kp"`
	Ki                float64 `json:"ki"`
	Kd                float64 `json:"kd"`
	ForgetLength      int     `json:"forget_length,omitempty"`
	IntegralTimeScale float64 `json:"integral_time_scale,omitempty"`
	DerivativeScale   float64 `json:"derivative_scale,omitempty"`
}

// StraightPIDConfig returns the gains tuned for driving straight.
func StraightPIDConfig() PIDConfig {
	return PIDConfig{
		Kp:                0.4,
		Ki:                0.5,
		Kd:                0.3,
		ForgetLength:      DefaultForgetLength,
		IntegralTimeScale: DefaultIntegralTimeScale,
		DerivativeScale:   DefaultDerivativeScale,
	}
}

// TurnPIDConfig returns the gains tuned for turning in place.
func TurnPIDConfig() PIDConfig {
	return PIDConfig{
		Kp:                0.8,
		Ki:                0.8,
		Kd:                0.3,
		ForgetLength:      DefaultForgetLength,
		IntegralTimeScale: DefaultIntegralTimeScale,
		DerivativeScale:   DefaultDerivativeScale,
	}
}

// WithDefaults fills the zero-valued tuning constants.
func (cfg PIDConfig) WithDefaults() PIDConfig {
	if cfg.ForgetLength == 0 {
		cfg.ForgetLength = DefaultForgetLength
	}
	if cfg.IntegralTimeScale == 0 {
		cfg.IntegralTimeScale = DefaultIntegralTimeScale
	}
	if cfg.DerivativeScale == 0 {
		cfg.DerivativeScale = DefaultDerivativeScale
	}
	return cfg
}

// Validate ensures the tuning constants are usable. Zero constants mean the defaults.
func (cfg PIDConfig) Validate() error {
	if cfg.ForgetLength < 0 {
		return errors.Errorf("pid forget length must not be negative, got %d", cfg.ForgetLength)
	}
	if cfg.IntegralTimeScale < 0 {
		return errors.Errorf("pid integral time scale must not be negative, got %v", cfg.IntegralTimeScale)
	}
	return nil
}

// KalmanConfig holds the model and noise coefficients of a scalar Kalman filter.
type KalmanConfig struct {
	// R is the process noise.
	R float64 `json:"r"`
	// Q is the measurement noise.
	Q float64 `json:"q"`
	// A is the state coefficient.
	A float64 `json:"a"`
	// B is the control coefficient.
	B float64 `json:"b"`
	// C is the measurement coefficient.
	C float64 `json:"c"`
}

// DefaultKalmanConfig returns the coefficients used for drivetrain motors.
func DefaultKalmanConfig() KalmanConfig {
	return KalmanConfig{R: 18, Q: 6, A: 1.5, B: 10, C: 2.7}
}

// Validate ensures the measurement coefficient can be inverted.
func (cfg KalmanConfig) Validate() error {
	if cfg.C == 0 {
		return errors.New("kalman measurement coefficient C must not be zero")
	}
	return nil
}

// Config is the per-channel control configuration handed to drivetrain engines.
type Config struct {
	Straight PIDConfig    `json:"straight"`
	Turn     PIDConfig    `json:"turn"`
	Kalman   KalmanConfig `json:"kalman"`
}

// DefaultConfig returns the straight and turn gains with the drivetrain Kalman coefficients.
func DefaultConfig() Config {
	return Config{
		Straight: StraightPIDConfig(),
		Turn:     TurnPIDConfig(),
		Kalman:   DefaultKalmanConfig(),
	}
}

// Validate checks every section.
func (cfg Config) Validate() error {
	if err := cfg.Straight.Validate(); err != nil {
		return errors.Wrap(err, "straight")
	}
	if err := cfg.Turn.Validate(); err != nil {
		return errors.Wrap(err, "turn")
	}
	if err := cfg.Kalman.Validate(); err != nil {
		return errors.Wrap(err, "kalman")
	}
	return nil
}
