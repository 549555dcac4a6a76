package control

import "math"

// KalmanFilter is a one dimensional Kalman filter. Filter several dimensions with one instance
// each. The state and covariance are NaN until the first measurement.
type KalmanFilter struct {
	cfg KalmanConfig
	x   float64
	cov float64
}

// NewKalmanFilter returns an uninitialized filter with the given coefficients.
func NewKalmanFilter(cfg KalmanConfig) (*KalmanFilter, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &KalmanFilter{cfg: cfg, x: math.NaN(), cov: math.NaN()}, nil
}

// Filter feeds a measurement with no control input and returns the new estimate.
func (kf *KalmanFilter) Filter(measurement float64) float64 {
	return kf.FilterWithControl(measurement, 0)
}

// FilterWithControl feeds a measurement and control input u and returns the new estimate.
func (kf *KalmanFilter) FilterWithControl(measurement, u float64) float64 {
	a, b, c := kf.cfg.A, kf.cfg.B, kf.cfg.C
	if math.IsNaN(kf.x) {
		kf.x = measurement / c
		kf.cov = kf.cfg.Q / (c * c)
		return kf.x
	}

	predX := a*kf.x + b*u
	predCov := a*kf.cov*a + kf.cfg.R

	gain := predCov * c / (c*predCov*c + kf.cfg.Q)

	kf.x = predX + gain*(measurement-c*predX)
	kf.cov = predCov - gain*c*predCov
	return kf.x
}

// LastEstimate returns the most recent estimate, NaN before the first measurement.
func (kf *KalmanFilter) LastEstimate() float64 {
	return kf.x
}

// Covariance returns the current estimate covariance, NaN before the first measurement.
func (kf *KalmanFilter) Covariance() float64 {
	return kf.cov
}

// SetMeasurementNoise sets Q.
func (kf *KalmanFilter) SetMeasurementNoise(noise float64) {
	kf.cfg.Q = noise
}

// SetProcessNoise sets R.
func (kf *KalmanFilter) SetProcessNoise(noise float64) {
	kf.cfg.R = noise
}
