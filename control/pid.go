package control

import (
	"time"

	"github.com/benbjohnson/clock"
	"gonum.org/v1/gonum/integrate"
)

// PID is a windowed PID controller. Until the window holds ForgetLength+1 samples it is a pure
// proportional controller; afterwards the integral runs over the retained window only and the
// derivative spans the window.
//
// A PID is owned by exactly one control loop and is not safe for concurrent use.
type PID struct {
	cfg   PIDConfig
	clk   clock.Clock
	start time.Time

	// times are in milliseconds since start; errs are target minus measured.
	times []float64
	errs  []float64

	scaled []float64
}

// NewPID returns a PID using the given clock for sample timestamps. A nil clock uses the wall
// clock.
func NewPID(cfg PIDConfig, clk clock.Clock) (*PID, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if clk == nil {
		clk = clock.New()
	}
	return &PID{
		cfg:    cfg,
		clk:    clk,
		start:  clk.Now(),
		times:  make([]float64, 0, cfg.ForgetLength+1),
		errs:   make([]float64, 0, cfg.ForgetLength+1),
		scaled: make([]float64, 0, cfg.ForgetLength+1),
	}, nil
}

// Config returns the configuration the PID was built with.
func (p *PID) Config() PIDConfig {
	return p.cfg
}

// Samples returns how many samples are currently retained.
func (p *PID) Samples() int {
	return len(p.errs)
}

// Update records a sample and returns the correction to add to the target.
func (p *PID) Update(target, measured float64) float64 {
	now := float64(p.clk.Since(p.start)) / float64(time.Millisecond)
	e := target - measured
	p.times = append(p.times, now)
	p.errs = append(p.errs, e)

	window := p.cfg.ForgetLength
	if len(p.errs) < window+1 {
		return p.cfg.Kp * e
	}
	if drop := len(p.errs) - (window + 1); drop > 0 {
		p.times = append(p.times[:0], p.times[drop:]...)
		p.errs = append(p.errs[:0], p.errs[drop:]...)
	}

	n := len(p.errs)
	dNum := p.errs[n-1] - p.errs[n-window]
	dDen := p.times[n-1] - p.times[n-window]
	if dDen == 0 {
		dDen = 1
	}

	return p.cfg.Kp*e + p.cfg.Ki*p.integral() + p.cfg.DerivativeScale*p.cfg.Kd*dNum/dDen
}

// integral is the trapezoidal integral of the retained errors over time/IntegralTimeScale.
func (p *PID) integral() float64 {
	if len(p.times) <= 2 {
		return 0
	}
	p.scaled = p.scaled[:0]
	for _, t := range p.times {
		p.scaled = append(p.scaled, t/p.cfg.IntegralTimeScale)
	}
	return integrate.Trapezoidal(p.scaled, p.errs)
}

// Reset drops every retained sample.
func (p *PID) Reset() {
	p.times = p.times[:0]
	p.errs = p.errs[:0]
	p.start = p.clk.Now()
}
