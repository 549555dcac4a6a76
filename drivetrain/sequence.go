package drivetrain

import (
	"context"
	"fmt"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"

	"github.com/drivepath/drivepath/control"
	"github.com/drivepath/drivepath/logging"
	"github.com/drivepath/drivepath/motor"
	"github.com/drivepath/drivepath/trajectory"
)

// SequenceConfig describes a drivetrain and the paths it should follow.
type SequenceConfig struct {
	Kind Kind
	// WheelRadius is in meters. Diffy pods use Swerve instead.
	WheelRadius float64
	// Motors are ordered as documented on Kind.
	Motors []motor.Motor
	Paths  []trajectory.Path

	// Control defaults to control.DefaultConfig when zero.
	Control control.Config
	Swerve  SwerveConfig
	// Clock defaults to the wall clock.
	Clock  clock.Clock
	Logger logging.Logger
}

// Validate ensures the configuration describes a runnable sequence.
func (cfg *SequenceConfig) Validate() error {
	want := cfg.Kind.MotorCount()
	if want == 0 {
		return errors.Errorf("unknown drivetrain kind %d", cfg.Kind)
	}
	if len(cfg.Motors) != want {
		return errors.Errorf("%s drivetrain needs %d motors, got %d", cfg.Kind, want, len(cfg.Motors))
	}
	for i, m := range cfg.Motors {
		if m == nil {
			return motor.NewUnsetError(fmt.Sprintf("%s[%d]", cfg.Kind, i))
		}
	}
	if len(cfg.Paths) == 0 {
		return errors.New("sequence has no paths")
	}
	for i, p := range cfg.Paths {
		if p == nil {
			return errors.Errorf("path %d is not set", i)
		}
	}
	if cfg.Kind != Diffy && !(cfg.WheelRadius > 0) {
		return errors.Errorf("wheel radius must be positive, got %v", cfg.WheelRadius)
	}
	if cfg.Control != (control.Config{}) {
		if err := cfg.Control.Validate(); err != nil {
			return errors.Wrap(err, "control")
		}
	}
	return nil
}

// A Sequence follows an ordered list of paths on one drivetrain.
type Sequence struct {
	kind   Kind
	paths  []trajectory.Path
	engine *Engine
	logger logging.Logger
}

// NewSequence validates cfg and selects the engine for its kind.
func NewSequence(cfg SequenceConfig) (*Sequence, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ctrl := cfg.Control
	if ctrl == (control.Config{}) {
		ctrl = control.DefaultConfig()
	}
	clk := cfg.Clock
	if clk == nil {
		clk = clock.New()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NewLogger("drivetrain")
	}

	var mix mixer
	if cfg.Kind == Diffy {
		mix = &diffSwerveMixer{cfg: cfg.Swerve.WithDefaults()}
	} else {
		mix = newDifferentialMixer(cfg.WheelRadius, len(cfg.Motors))
	}
	motors := append([]motor.Motor(nil), cfg.Motors...)

	return &Sequence{
		kind:   cfg.Kind,
		paths:  append([]trajectory.Path(nil), cfg.Paths...),
		engine: newEngine(motors, mix, ctrl, clk, logger),
		logger: logger,
	}, nil
}

// Kind returns the drivetrain topology.
func (s *Sequence) Kind() Kind {
	return s.kind
}

// Paths returns the paths in order.
func (s *Sequence) Paths() []trajectory.Path {
	return append([]trajectory.Path(nil), s.paths...)
}

// Build builds path i.
func (s *Sequence) Build(i int) error {
	if i < 0 || i >= len(s.paths) {
		return errors.Errorf("path index %d out of range [0, %d)", i, len(s.paths))
	}
	return errors.Wrapf(s.paths[i].Build(), "building path %d", i)
}

// BuildAll builds every path ahead of time so Follow does not pay for it.
func (s *Sequence) BuildAll() error {
	for i := range s.paths {
		if err := s.Build(i); err != nil {
			return err
		}
	}
	return nil
}

// Follow drives every path in order and blocks until the last one completes, then stops the
// motors. Path completion is reset afterwards, also on failure, so the sequence can run again.
func (s *Sequence) Follow(ctx context.Context) error {
	defer s.ResetPaths()
	for i, p := range s.paths {
		if err := s.engine.Run(ctx, p); err != nil {
			return errors.Wrapf(err, "following path %d (%s)", i, p.Type())
		}
	}
	s.logger.Infow("sequence complete", "kind", s.kind, "paths", len(s.paths), "mean_loop_period", s.engine.LoopPeriod())
	return s.engine.StopAll(ctx)
}

// LoopPeriod returns the mean duration of the most recent control loop iterations.
func (s *Sequence) LoopPeriod() time.Duration {
	return s.engine.LoopPeriod()
}

// ResetPaths clears the completion flag of every path.
func (s *Sequence) ResetPaths() {
	for _, p := range s.paths {
		p.ResetCompletion()
	}
}
