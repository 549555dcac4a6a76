// Package main runs a configured path sequence with markers against simulated motors.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.viam.com/utils"

	"github.com/drivepath/drivepath/config"
	"github.com/drivepath/drivepath/drivetrain"
	"github.com/drivepath/drivepath/logging"
	"github.com/drivepath/drivepath/marker"
	"github.com/drivepath/drivepath/motor"
	"github.com/drivepath/drivepath/motor/fake"
	"github.com/drivepath/drivepath/trajectory"
)

const (
	flagConfig = "config"
	flagDebug  = "debug"
	flagRepeat = "repeat"
	flagLog    = "log-file"
	flagLevel  = "log-level"
)

func main() {
	app := &cli.App{
		Name:  "pathsim",
		Usage: "follow a path sequence on simulated motors",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     flagConfig,
				Aliases:  []string{"c"},
				Usage:    "load configuration from `FILE`",
				Required: true,
			},
			&cli.BoolFlag{
				Name:  flagDebug,
				Usage: "enable debug logging, same as --log-level debug",
			},
			&cli.StringFlag{
				Name:  flagLevel,
				Usage: "log `LEVEL` (debug, info, warn, error), overrides the config's log_level",
			},
			&cli.StringFlag{
				Name:  flagLog,
				Usage: "also write logs to `FILE`, rotated at 10MB",
			},
			&cli.IntFlag{
				Name:  flagRepeat,
				Value: 1,
				Usage: "follow the sequence `N` times",
			},
		},
		Action: func(c *cli.Context) error {
			logger := logging.NewLogger("pathsim")
			if c.Bool(flagDebug) {
				logger = logging.NewDebugLogger("pathsim")
			}
			if filename := c.String(flagLog); filename != "" {
				appender := logging.NewFileAppender(filename, 10, 3)
				defer func() {
					if err := appender.Close(); err != nil {
						fmt.Fprintln(os.Stderr, err)
					}
				}()
				logger.AddAppender(appender)
			}
			ctx, stop := signal.NotifyContext(c.Context, os.Interrupt)
			defer stop()

			cfg, err := config.Read(c.String(flagConfig), logger)
			if err != nil {
				return err
			}
			level, err := logLevel(c.String(flagLevel), c.Bool(flagDebug), cfg)
			if err != nil {
				return err
			}
			logger.SetLevel(level)
			defer func() {
				utils.UncheckedError(logger.Sync())
			}()

			if err := simulate(ctx, cfg, c.Int(flagRepeat), logger, c.App.Writer); err != nil {
				logger.Errorw("simulation failed", "error", err)
				return err
			}
			return nil
		},
	}
	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// logLevel picks the log level: --debug wins over --log-level, which wins over the config.
func logLevel(flagValue string, debug bool, cfg *config.Config) (logging.Level, error) {
	switch {
	case debug:
		return logging.DEBUG, nil
	case flagValue != "":
		return logging.LevelFromString(flagValue)
	default:
		return cfg.LogLevel, nil
	}
}

type result struct {
	paths   []trajectory.Path
	motors  []*fake.Motor
	list    *marker.List
	sched   *marker.Scheduler
	elapsed time.Duration
	period  time.Duration
}

// simulate follows the configured sequence repeat times and writes a summary to out.
func simulate(ctx context.Context, cfg *config.Config, repeat int, logger logging.Logger, out io.Writer) error {
	if repeat < 1 {
		return errors.Errorf("repeat must be at least 1, got %d", repeat)
	}
	kind, err := drivetrain.ParseKind(cfg.Drivetrain.Kind)
	if err != nil {
		return err
	}
	paths, err := cfg.BuildPaths()
	if err != nil {
		return err
	}

	fakes := make([]*fake.Motor, 0, len(cfg.Drivetrain.Motors))
	motors := make([]motor.Motor, 0, len(cfg.Drivetrain.Motors))
	for _, mc := range cfg.Drivetrain.Motors {
		response := mc.Response
		if response == 0 {
			response = 1
		}
		m, err := fake.NewMotor(mc.Name, response, logger.Sublogger("motor"))
		if err != nil {
			return err
		}
		fakes = append(fakes, m)
		motors = append(motors, m)
	}

	seq, err := drivetrain.NewSequence(drivetrain.SequenceConfig{
		Kind:        kind,
		WheelRadius: cfg.Drivetrain.WheelRadius,
		Motors:      motors,
		Paths:       paths,
		Control:     cfg.ControlConfig(),
		Swerve:      cfg.Swerve,
		Logger:      logger.Sublogger("drivetrain"),
	})
	if err != nil {
		return err
	}
	if err := seq.BuildAll(); err != nil {
		return err
	}

	markerLogger := logger.Sublogger("marker")
	list, err := cfg.MarkerList(func(name string) marker.Action {
		return func(ctx context.Context) {
			markerLogger.Infow("marker fired", "marker", name)
		}
	})
	if err != nil {
		return err
	}

	res := result{paths: paths, motors: fakes, list: list}
	start := time.Now()
	for i := 0; i < repeat; i++ {
		sched, err := marker.NewScheduler(list, markerLogger)
		if err != nil {
			return err
		}
		if err := sched.Activate(ctx); err != nil {
			return err
		}
		err = seq.Follow(ctx)
		sched.Stop()
		sched.Wait()
		res.sched = sched
		if err != nil {
			return err
		}
		logger.Infow("pass complete", "pass", i+1, "of", repeat)
	}
	res.elapsed = time.Since(start)
	res.period = seq.LoopPeriod()

	_, err = io.WriteString(out, res.render())
	return err
}

func (r result) render() string {
	paths := table.NewWriter()
	paths.SetTitle("paths")
	paths.AppendHeader(table.Row{"#", "Type", "Direction", "Execute Time"})
	for i, p := range r.paths {
		paths.AppendRow(table.Row{i, p.Type(), p.Direction(), fmt.Sprintf("%.3fs", p.ExecuteTime())})
	}
	paths.AppendFooter(table.Row{"", "", "elapsed", r.elapsed.Round(time.Millisecond)})

	motors := table.NewWriter()
	motors.SetTitle("motors")
	motors.AppendHeader(table.Row{"Name", "Writes", "Max Command (rad/s)"})
	for _, m := range r.motors {
		motors.AppendRow(table.Row{m.Name(), m.Writes(), fmt.Sprintf("%.3f", m.MaxCommanded())})
	}
	motors.AppendFooter(table.Row{"", "loop period", r.period})

	markers := table.NewWriter()
	markers.SetTitle("markers")
	markers.AppendHeader(table.Row{"Name", "At", "Started"})
	for i := 0; i < r.list.Len(); i++ {
		m := r.list.At(i)
		at := m.At.String()
		if m.At == marker.Never {
			at = "never"
		}
		markers.AppendRow(table.Row{m.Name, at, r.sched != nil && r.sched.Started(i)})
	}

	return paths.Render() + "\n" + motors.Render() + "\n" + markers.Render() + "\n"
}
