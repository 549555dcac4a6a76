package config

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.viam.com/test"

	"github.com/drivepath/drivepath/control"
	"github.com/drivepath/drivepath/logging"
	"github.com/drivepath/drivepath/marker"
	"github.com/drivepath/drivepath/trajectory"
)

func TestFromReaderValidate(t *testing.T) {
	logger := logging.NewTestLogger(t)

	_, err := FromReader("somepath", strings.NewReader(""), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "EOF")

	_, err = FromReader("somepath", strings.NewReader(`{"drivetrain": 1}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "unmarshal")

	_, err = FromReader("somepath", strings.NewReader(`{"log_level": "loud"}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, `unknown log level: "loud"`)

	_, err = FromReader("somepath", strings.NewReader(`{}`), logger)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "drivetrain")
	test.That(t, err.Error(), test.ShouldContainSubstring, `"kind" is required`)

	conf, err := FromReader("somepath", strings.NewReader(`{
		"drivetrain": {"kind": "twowd", "wheel_radius": 0.1, "track_width": 0.3, "motors": [{"name": "l"}, {"name": "r"}]},
		"paths": [{"type": "line", "attributes": {"distance": 2, "max_velocity": 1}}]
	}`), logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, conf, test.ShouldResemble, &Config{
		ConfigFilePath: "somepath",
		Drivetrain: DrivetrainConfig{
			Kind:        "twowd",
			WheelRadius: 0.1,
			TrackWidth:  0.3,
			Motors:      []MotorConfig{{Name: "l"}, {Name: "r"}},
		},
		Paths: []PathConfig{
			{Type: "line", Attributes: map[string]interface{}{"distance": 2.0, "max_velocity": 1.0}},
		},
	})
}

func TestRead(t *testing.T) {
	logger := logging.NewTestLogger(t)
	t.Setenv("DRIVEPATH_WHEEL_RADIUS", "0.05")

	cfg, err := Read("testdata/fourwd.json", logger)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, cfg.ConfigFilePath, test.ShouldEqual, "testdata/fourwd.json")
	test.That(t, cfg.Drivetrain.WheelRadius, test.ShouldEqual, 0.05)
	test.That(t, cfg.Drivetrain.Motors[3].Response, test.ShouldEqual, 0.5)
	test.That(t, cfg.LogLevel, test.ShouldEqual, logging.WARN)

	ctrl := cfg.ControlConfig()
	test.That(t, ctrl.Straight.Kp, test.ShouldEqual, 0.5)
	test.That(t, ctrl.Turn, test.ShouldResemble, control.TurnPIDConfig())
	test.That(t, ctrl.Kalman, test.ShouldResemble, control.DefaultKalmanConfig())

	paths, err := cfg.BuildPaths()
	test.That(t, err, test.ShouldBeNil)
	test.That(t, paths, test.ShouldHaveLength, 3)
	test.That(t, paths[0].Type(), test.ShouldEqual, trajectory.LineType)
	test.That(t, paths[1].Type(), test.ShouldEqual, trajectory.TurnType)
	test.That(t, paths[1].Direction(), test.ShouldEqual, trajectory.Reverse)
	test.That(t, paths[2].Type(), test.ShouldEqual, trajectory.SplineType)
	for _, p := range paths {
		test.That(t, p.Built(), test.ShouldBeFalse)
	}

	var names []string
	list, err := cfg.MarkerList(func(name string) marker.Action {
		names = append(names, name)
		return func(ctx context.Context) {}
	})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, names, test.ShouldResemble, []string{"raise_arm", "spare"})
	test.That(t, list.Len(), test.ShouldEqual, 2)
	test.That(t, list.Time(0), test.ShouldEqual, 500*time.Millisecond)
	test.That(t, list.Time(1), test.ShouldEqual, marker.Never)

	_, err = Read("testdata/missing.json", logger)
	test.That(t, err, test.ShouldNotBeNil)
}
