package drivetrain

import (
	"context"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"github.com/drivepath/drivepath/control"
	"github.com/drivepath/drivepath/logging"
	"github.com/drivepath/drivepath/motor"
	"github.com/drivepath/drivepath/trajectory"
	"github.com/drivepath/drivepath/utils"
)

const (
	stopTimeout = 2 * time.Second
	// loopPeriodWindow is how many iterations the reported loop period averages over.
	loopPeriodWindow = 64
)

// Engine runs the closed loop that follows one path at a time. It is not safe for concurrent
// use; a path is followed on the calling goroutine.
type Engine struct {
	motors []motor.Motor
	mixer  mixer
	ctrl   control.Config
	clk    clock.Clock
	logger logging.Logger

	targets    []float64
	loopPeriod *utils.RollingAverage
}

func newEngine(motors []motor.Motor, mix mixer, ctrl control.Config, clk clock.Clock, logger logging.Logger) *Engine {
	return &Engine{
		motors:     motors,
		mixer:      mix,
		ctrl:       ctrl,
		clk:        clk,
		logger:     logger,
		targets:    make([]float64, len(motors)),
		loopPeriod: utils.NewRollingAverage(loopPeriodWindow),
	}
}

// channel is the correction state of one motor for one path.
type channel struct {
	pid    *control.PID
	filter *control.KalmanFilter
}

func (e *Engine) newChannels(p trajectory.Path) ([]channel, error) {
	gains := e.ctrl.Straight
	if p.Type().IsTurn() {
		gains = e.ctrl.Turn
	}
	channels := make([]channel, len(e.motors))
	for i := range channels {
		pid, err := control.NewPID(gains, e.clk)
		if err != nil {
			return nil, err
		}
		kf, err := control.NewKalmanFilter(e.ctrl.Kalman)
		if err != nil {
			return nil, err
		}
		channels[i] = channel{pid: pid, filter: kf}
	}
	return channels, nil
}

// Run builds p if needed and follows it until it reports completion. The loop does not sleep
// between iterations. If p fails to build, ctx is cancelled or a motor fails, every motor is
// stopped and the error returned.
func (e *Engine) Run(ctx context.Context, p trajectory.Path) error {
	if err := p.Build(); err != nil {
		return e.abort(ctx, errors.Wrapf(err, "building %s path", p.Type()))
	}
	channels, err := e.newChannels(p)
	if err != nil {
		return e.abort(ctx, err)
	}

	e.logger.Debugw("following path", "type", p.Type(), "execute_time", p.ExecuteTime())
	start := e.clk.Now()
	last := start
	var iterations int
	for !p.Completed() {
		if err := ctx.Err(); err != nil {
			return e.abort(ctx, err)
		}
		elapsed := e.clk.Since(start).Seconds()
		e.mixer.targets(p, elapsed, e.targets)
		if p.Completed() {
			break
		}
		if err := e.step(ctx, channels); err != nil {
			return e.abort(ctx, err)
		}
		iterations++
		now := e.clk.Now()
		e.loopPeriod.Add(now.Sub(last).Seconds())
		last = now
	}
	e.logger.Debugw("path complete",
		"type", p.Type(),
		"iterations", iterations,
		"elapsed", e.clk.Since(start),
		"mean_loop_period", e.LoopPeriod())
	return nil
}

// LoopPeriod returns the mean duration of the most recent control loop iterations.
func (e *Engine) LoopPeriod() time.Duration {
	return time.Duration(e.loopPeriod.Average() * float64(time.Second))
}

// step runs one sample, filter, correct, write cycle over every channel.
func (e *Engine) step(ctx context.Context, channels []channel) error {
	for i, m := range e.motors {
		measured, err := m.Velocity(ctx)
		if err != nil {
			return errors.Wrapf(err, "reading motor %q", m.Name())
		}
		target := e.targets[i]
		filtered := channels[i].filter.Filter(measured)
		correction := channels[i].pid.Update(target, filtered)
		if err := m.SetVelocity(ctx, target+correction); err != nil {
			return errors.Wrapf(err, "commanding motor %q", m.Name())
		}
	}
	return nil
}

func (e *Engine) abort(ctx context.Context, cause error) error {
	e.logger.Warnw("stopping motors", "error", cause)
	return multierr.Combine(cause, e.StopAll(ctx))
}

// StopAll stops every motor in parallel, even when ctx is already cancelled.
func (e *Engine) StopAll(ctx context.Context) error {
	stopCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), stopTimeout)
	defer cancel()
	defer utils.SlowLogger(stopCtx, e.clk, "waiting for motors to stop", e.logger, "motors", len(e.motors))()
	fs := make([]utils.SimpleFunc, 0, len(e.motors))
	for _, m := range e.motors {
		fs = append(fs, func(ctx context.Context) error {
			return errors.Wrapf(m.Stop(ctx), "stopping motor %q", m.Name())
		})
	}
	return utils.RunAllInParallel(stopCtx, fs)
}
