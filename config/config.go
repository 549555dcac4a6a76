// Package config reads and validates drivepath robot configuration files.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"
	"go.viam.com/utils"

	"github.com/drivepath/drivepath/control"
	"github.com/drivepath/drivepath/drivetrain"
	"github.com/drivepath/drivepath/logging"
	"github.com/drivepath/drivepath/marker"
	"github.com/drivepath/drivepath/trajectory"
	rutils "github.com/drivepath/drivepath/utils"
)

// A Config describes a drivetrain, its tuning, and the paths and markers it should run.
type Config struct {
	ConfigFilePath string `json:"-"`

	Drivetrain DrivetrainConfig        `json:"drivetrain"`
	Control    control.Config          `json:"control,omitempty"`
	Swerve     drivetrain.SwerveConfig `json:"swerve,omitempty"`
	Paths      []PathConfig            `json:"paths"`
	Markers    []MarkerConfig          `json:"markers,omitempty"`

	// LogLevel is one of "debug", "info", "warn" or "error". Empty means info.
	LogLevel logging.Level `json:"log_level,omitempty"`
}

// DrivetrainConfig is the physical description of the drivetrain.
type DrivetrainConfig struct {
	Kind              string        `json:"kind"`
	WheelRadius       float64       `json:"wheel_radius,omitempty"`
	TrackWidth        float64       `json:"track_width"`
	Symmetry          string        `json:"symmetry,omitempty"`
	MirrorSplineRight bool          `json:"mirror_spline_right,omitempty"`
	Motors            []MotorConfig `json:"motors"`
}

// MotorConfig names one motor slot. Response is used by simulated motors.
type MotorConfig struct {
	Name     string  `json:"name"`
	Response float64 `json:"response,omitempty"`
}

// PathConfig is one path of the sequence. Attributes depend on Type.
type PathConfig struct {
	Type       string                 `json:"type"`
	Direction  string                 `json:"direction,omitempty"`
	Attributes map[string]interface{} `json:"attributes"`
}

// LineAttributes configure a line path.
type LineAttributes struct {
	Distance    float64 `json:"distance"`
	MaxVelocity float64 `json:"max_velocity"`
}

// TurnAttributes configure a turn path. Angle is in degrees.
type TurnAttributes struct {
	Angle       float64 `json:"angle"`
	MaxVelocity float64 `json:"max_velocity"`
}

// SplineAttributes configure spline and constant heading spline paths.
type SplineAttributes struct {
	Radii      []float64 `json:"radii"`
	ArcLengths []float64 `json:"arc_lengths"`
	Velocity   float64   `json:"velocity"`
	AccelTime  float64   `json:"accel_time"`
}

// PodTurnAttributes configure a pod turn. Angle is in degrees, like TurnAttributes.
type PodTurnAttributes struct {
	Angle              float64 `json:"angle"`
	MaxAngularVelocity float64 `json:"max_angular_velocity"`
}

// MarkerConfig schedules a named marker. At is a duration such as "1.5s", or "never".
type MarkerConfig struct {
	Name string `json:"name"`
	At   string `json:"at"`
}

func joinPath(path, field string) string {
	if path == "" {
		return field
	}
	return path + "." + field
}

// Validate returns the first problem found in the config. path prefixes the reported fields.
func (c *Config) Validate(path string) error {
	if err := c.Drivetrain.Validate(joinPath(path, "drivetrain")); err != nil {
		return err
	}
	if err := c.ControlConfig().Validate(); err != nil {
		return utils.NewConfigValidationError(joinPath(path, "control"), err)
	}
	if len(c.Paths) == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "paths")
	}
	for i, p := range c.Paths {
		if err := p.Validate(joinPath(path, fmt.Sprintf("paths.%d", i))); err != nil {
			return err
		}
	}
	seen := map[string]bool{}
	for i, m := range c.Markers {
		markerPath := joinPath(path, fmt.Sprintf("markers.%d", i))
		if err := m.Validate(markerPath); err != nil {
			return err
		}
		if seen[m.Name] {
			return utils.NewConfigValidationError(markerPath, errors.Errorf("duplicate marker name %q", m.Name))
		}
		seen[m.Name] = true
	}
	return nil
}

// Validate checks the drivetrain description.
func (d *DrivetrainConfig) Validate(path string) error {
	if d.Kind == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "kind")
	}
	kind, err := drivetrain.ParseKind(d.Kind)
	if err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	if kind != drivetrain.Diffy && d.WheelRadius == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "wheel_radius")
	}
	if d.WheelRadius < 0 {
		return utils.NewConfigValidationError(path, errors.Errorf("wheel_radius must be positive, got %v", d.WheelRadius))
	}
	if d.TrackWidth == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "track_width")
	}
	if _, err := d.Geometry(); err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	if len(d.Motors) != kind.MotorCount() {
		return utils.NewConfigValidationError(path,
			errors.Errorf("%s drivetrain needs %d motors, got %d", kind, kind.MotorCount(), len(d.Motors)))
	}
	for i, m := range d.Motors {
		if m.Name == "" {
			return utils.NewConfigValidationFieldRequiredError(joinPath(path, fmt.Sprintf("motors.%d", i)), "name")
		}
	}
	return nil
}

// Geometry returns the path geometry of the drivetrain.
func (d *DrivetrainConfig) Geometry() (trajectory.Geometry, error) {
	sym, err := trajectory.ParseSymmetry(d.Symmetry)
	if err != nil {
		return trajectory.Geometry{}, err
	}
	geom := trajectory.Geometry{TrackWidth: d.TrackWidth, Symmetry: sym, MirrorSplineRight: d.MirrorSplineRight}
	return geom, geom.Validate()
}

// ControlConfig returns the control section with defaults for every section left out.
func (c *Config) ControlConfig() control.Config {
	ctrl := c.Control
	if ctrl.Straight == (control.PIDConfig{}) {
		ctrl.Straight = control.StraightPIDConfig()
	}
	if ctrl.Turn == (control.PIDConfig{}) {
		ctrl.Turn = control.TurnPIDConfig()
	}
	if ctrl.Kalman == (control.KalmanConfig{}) {
		ctrl.Kalman = control.DefaultKalmanConfig()
	}
	return ctrl
}

// BuildPaths creates the configured paths, unbuilt, in order.
func (c *Config) BuildPaths() ([]trajectory.Path, error) {
	geom, err := c.Drivetrain.Geometry()
	if err != nil {
		return nil, err
	}
	paths := make([]trajectory.Path, 0, len(c.Paths))
	for i, pc := range c.Paths {
		p, err := pc.Path(geom)
		if err != nil {
			return nil, errors.Wrapf(err, "path %d", i)
		}
		paths = append(paths, p)
	}
	return paths, nil
}

// Validate decodes the attributes for the path type and checks the required ones.
func (pc *PathConfig) Validate(path string) error {
	if pc.Type == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "type")
	}
	typ, err := trajectory.ParseType(pc.Type)
	if err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	if _, err := trajectory.ParseDirection(pc.Direction); err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	attrPath := joinPath(path, "attributes")
	switch typ {
	case trajectory.LineType:
		var attrs LineAttributes
		if err := decodeAttributes(pc.Attributes, &attrs); err != nil {
			return utils.NewConfigValidationError(attrPath, err)
		}
		if attrs.Distance == 0 {
			return utils.NewConfigValidationFieldRequiredError(attrPath, "distance")
		}
		if attrs.MaxVelocity == 0 {
			return utils.NewConfigValidationFieldRequiredError(attrPath, "max_velocity")
		}
	case trajectory.TurnType:
		var attrs TurnAttributes
		if err := decodeAttributes(pc.Attributes, &attrs); err != nil {
			return utils.NewConfigValidationError(attrPath, err)
		}
		if attrs.Angle == 0 {
			return utils.NewConfigValidationFieldRequiredError(attrPath, "angle")
		}
		if attrs.MaxVelocity == 0 {
			return utils.NewConfigValidationFieldRequiredError(attrPath, "max_velocity")
		}
	case trajectory.SplineType, trajectory.ConstantHeadingSplineType:
		var attrs SplineAttributes
		if err := decodeAttributes(pc.Attributes, &attrs); err != nil {
			return utils.NewConfigValidationError(attrPath, err)
		}
		if len(attrs.Radii) == 0 {
			return utils.NewConfigValidationFieldRequiredError(attrPath, "radii")
		}
		if len(attrs.ArcLengths) == 0 {
			return utils.NewConfigValidationFieldRequiredError(attrPath, "arc_lengths")
		}
		if attrs.Velocity == 0 {
			return utils.NewConfigValidationFieldRequiredError(attrPath, "velocity")
		}
		if attrs.AccelTime == 0 {
			return utils.NewConfigValidationFieldRequiredError(attrPath, "accel_time")
		}
	case trajectory.PodTurnType:
		var attrs PodTurnAttributes
		if err := decodeAttributes(pc.Attributes, &attrs); err != nil {
			return utils.NewConfigValidationError(attrPath, err)
		}
		if attrs.Angle == 0 {
			return utils.NewConfigValidationFieldRequiredError(attrPath, "angle")
		}
		if attrs.MaxAngularVelocity == 0 {
			return utils.NewConfigValidationFieldRequiredError(attrPath, "max_angular_velocity")
		}
	}
	return nil
}

// Path creates the unbuilt path described by pc.
func (pc *PathConfig) Path(geom trajectory.Geometry) (trajectory.Path, error) {
	typ, err := trajectory.ParseType(pc.Type)
	if err != nil {
		return nil, err
	}
	dir, err := trajectory.ParseDirection(pc.Direction)
	if err != nil {
		return nil, err
	}
	switch typ {
	case trajectory.LineType:
		var attrs LineAttributes
		if err := decodeAttributes(pc.Attributes, &attrs); err != nil {
			return nil, err
		}
		return trajectory.NewLine(geom, attrs.Distance, attrs.MaxVelocity, dir)
	case trajectory.TurnType:
		var attrs TurnAttributes
		if err := decodeAttributes(pc.Attributes, &attrs); err != nil {
			return nil, err
		}
		return trajectory.NewTurn(geom, attrs.Angle, attrs.MaxVelocity, dir)
	case trajectory.SplineType:
		var attrs SplineAttributes
		if err := decodeAttributes(pc.Attributes, &attrs); err != nil {
			return nil, err
		}
		return trajectory.NewSpline(geom, attrs.Radii, attrs.ArcLengths, attrs.Velocity, attrs.AccelTime, dir)
	case trajectory.ConstantHeadingSplineType:
		var attrs SplineAttributes
		if err := decodeAttributes(pc.Attributes, &attrs); err != nil {
			return nil, err
		}
		return trajectory.NewConstantHeadingSpline(geom, attrs.Radii, attrs.ArcLengths, attrs.Velocity, attrs.AccelTime, dir)
	case trajectory.PodTurnType:
		var attrs PodTurnAttributes
		if err := decodeAttributes(pc.Attributes, &attrs); err != nil {
			return nil, err
		}
		return trajectory.NewPodTurn(geom, rutils.DegToRad(attrs.Angle), attrs.MaxAngularVelocity, dir)
	default:
		return nil, errors.Errorf("unsupported path type %s", typ)
	}
}

// decodeAttributes converts an attribute map into a typed struct using its json tags. Unknown
// attributes are an error.
func decodeAttributes(attributes map[string]interface{}, out interface{}) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           out,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return err
	}
	return decoder.Decode(attributes)
}

// Duration parses At. "never" returns marker.Never.
func (m *MarkerConfig) Duration() (time.Duration, error) {
	if strings.EqualFold(m.At, "never") {
		return marker.Never, nil
	}
	d, err := time.ParseDuration(m.At)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, errors.Errorf("marker time must not be negative, got %v", d)
	}
	return d, nil
}

// Validate checks the marker fields.
func (m *MarkerConfig) Validate(path string) error {
	if m.Name == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if m.At == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "at")
	}
	if _, err := m.Duration(); err != nil {
		return utils.NewConfigValidationError(path, err)
	}
	return nil
}

// MarkerList pairs every configured marker with the action returned by actionFor.
func (c *Config) MarkerList(actionFor func(name string) marker.Action) (*marker.List, error) {
	markers := make([]marker.Marker, 0, len(c.Markers))
	for _, mc := range c.Markers {
		at, err := mc.Duration()
		if err != nil {
			return nil, errors.Wrapf(err, "marker %q", mc.Name)
		}
		markers = append(markers, marker.Marker{Name: mc.Name, At: at, Action: actionFor(mc.Name)})
	}
	return marker.NewList(markers...)
}
