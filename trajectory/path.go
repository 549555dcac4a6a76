// Package trajectory defines time-parameterized drive paths. Each path answers, for a time in
// seconds since its own start, the linear velocity of each chassis side and the angular velocity
// of each swerve pod side.
package trajectory

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Type tags the kind of a path.
type Type int

// The known path kinds.
const (
	LineType Type = iota
	TurnType
	SplineType
	ConstantHeadingSplineType
	PodTurnType
)

var typeNames = map[Type]string{
	LineType:                  "line",
	TurnType:                  "turn",
	SplineType:                "spline",
	ConstantHeadingSplineType: "constant_heading_spline",
	PodTurnType:               "pod_turn",
}

func (t Type) String() string {
	if name, ok := typeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// ParseType returns the Type named by s, as printed by Type.String.
func ParseType(s string) (Type, error) {
	for t, name := range typeNames {
		if strings.EqualFold(name, s) {
			return t, nil
		}
	}
	return 0, errors.Errorf("unknown path type %q", s)
}

// IsTurn reports whether paths of this type rotate in place.
func (t Type) IsTurn() bool {
	return t == TurnType || t == PodTurnType
}

// Direction selects the row of a wheel-sign table. It is independent of the sign of a path's
// distance.
type Direction int

// Path directions.
const (
	Forward Direction = iota
	Reverse
)

func (d Direction) String() string {
	if d == Reverse {
		return "reverse"
	}
	return "forward"
}

// ParseDirection accepts "forward", "reverse" or the empty string (forward).
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "", "forward":
		return Forward, nil
	case "reverse":
		return Reverse, nil
	default:
		return 0, errors.Errorf("unknown direction %q", s)
	}
}

// Symmetry describes how the motors on the two chassis sides are mounted.
type Symmetry int

// Drivetrain symmetries.
const (
	Asymmetrical Symmetry = iota
	Symmetrical
)

func (s Symmetry) String() string {
	if s == Symmetrical {
		return "symmetrical"
	}
	return "asymmetrical"
}

// ParseSymmetry accepts "symmetrical", "asymmetrical" or the empty string (asymmetrical).
func ParseSymmetry(s string) (Symmetry, error) {
	switch strings.ToLower(s) {
	case "", "asymmetrical":
		return Asymmetrical, nil
	case "symmetrical":
		return Symmetrical, nil
	default:
		return 0, errors.Errorf("unknown symmetry %q", s)
	}
}

// BuildStatus reports whether a path's derived timing has been computed.
type BuildStatus int

// Build statuses.
const (
	Unbuilt BuildStatus = iota
	Built
)

// Geometry is the drivetrain description shared by every path of a sequence.
type Geometry struct {
	// TrackWidth is the distance between the left and right wheel contact lines in meters.
	TrackWidth float64
	Symmetry   Symmetry
	// MirrorSplineRight makes spline paths compute the right side as the outer wheel of the arc
	// instead of repeating the left side computation.
	MirrorSplineRight bool
}

// Validate ensures the geometry can be used by paths.
func (g Geometry) Validate() error {
	if g.TrackWidth <= 0 {
		return errors.Errorf("track width must be positive, got %v", g.TrackWidth)
	}
	if g.Symmetry != Symmetrical && g.Symmetry != Asymmetrical {
		return errors.Errorf("unknown symmetry %d", g.Symmetry)
	}
	return nil
}

// Path is a velocity trajectory for one maneuver. Times are seconds since the path started.
//
// Build must be called before any velocity query; querying an unbuilt path or a negative time
// panics. A velocity query at or past ExecuteTime returns zero and marks the path completed.
type Path interface {
	Build() error
	Built() bool
	Completed() bool
	ResetCompletion()
	Type() Type
	Direction() Direction
	ExecuteTime() float64

	LeftVelocity(t float64) float64
	RightVelocity(t float64) float64
	LeftAngularVelocity(t float64) float64
	RightAngularVelocity(t float64) float64
}

type side int

const (
	left side = iota
	right
)

// signTable holds the wheel sign for each side and direction, indexed [side][direction].
type signTable [2][2]float64

func (tbl signTable) coefficient(s side, d Direction) float64 {
	return tbl[s][d]
}

var (
	lineSigns = map[Symmetry]signTable{
		Asymmetrical: {{-1, 1}, {1, -1}},
		Symmetrical:  {{1, -1}, {1, -1}},
	}
	turnSigns = map[Symmetry]signTable{
		Asymmetrical: {{1, -1}, {1, -1}},
		Symmetrical:  {{-1, 1}, {1, -1}},
	}
)

// base holds the state common to all paths.
type base struct {
	geom        Geometry
	typ         Type
	dir         Direction
	status      BuildStatus
	completed   bool
	executeTime float64
}

func newBase(geom Geometry, typ Type, dir Direction) (base, error) {
	if err := geom.Validate(); err != nil {
		return base{}, err
	}
	if dir != Forward && dir != Reverse {
		return base{}, errors.Errorf("unknown direction %d", dir)
	}
	return base{geom: geom, typ: typ, dir: dir}, nil
}

func (b *base) Built() bool {
	return b.status == Built
}

func (b *base) Completed() bool {
	return b.completed
}

func (b *base) ResetCompletion() {
	b.completed = false
}

func (b *base) Type() Type {
	return b.typ
}

func (b *base) Direction() Direction {
	return b.dir
}

// ExecuteTime is the nominal duration in seconds. It is zero until the path is built.
func (b *base) ExecuteTime() float64 {
	return b.executeTime
}

// Geometry returns the geometry the path was created with.
func (b *base) Geometry() Geometry {
	return b.geom
}

// checkQuery panics when a path is misused.
func (b *base) checkQuery(t float64) {
	if b.status != Built {
		panic(fmt.Sprintf("%s path queried before Build", b.typ))
	}
	if t < 0 {
		panic(fmt.Sprintf("%s path queried at negative time %v", b.typ, t))
	}
}

// finished marks the path completed when t has reached the execute time.
func (b *base) finished(t float64) bool {
	if t < b.executeTime {
		return false
	}
	b.completed = true
	return true
}
