package trajectory

import (
	"math"
	"testing"

	"go.viam.com/test"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/integrate"
)

var testGeometry = Geometry{TrackWidth: 0.4, Symmetry: Asymmetrical}

func TestNewLineErrors(t *testing.T) {
	for _, tc := range []struct {
		name     string
		geom     Geometry
		distance float64
		velocity float64
		err      string
	}{
		{"zero distance", testGeometry, 0, 1, "line distance must be finite and non-zero, got 0"},
		{"zero velocity", testGeometry, 1, 0, "line max velocity must be positive, got 0"},
		{"negative velocity", testGeometry, 1, -1, "line max velocity must be positive, got -1"},
		{"bad geometry", Geometry{}, 1, 1, "track width must be positive, got 0"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewLine(tc.geom, tc.distance, tc.velocity, Forward)
			test.That(t, err, test.ShouldBeError, tc.err)
		})
	}
}

func TestLineProfile(t *testing.T) {
	l, err := NewLine(testGeometry, 1.0, 0.5, Forward)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, l.Built(), test.ShouldBeFalse)
	test.That(t, func() { l.LeftVelocity(0) }, test.ShouldPanic)

	test.That(t, l.Build(), test.ShouldBeNil)
	T := l.ExecuteTime()
	test.That(t, T, test.ShouldAlmostEqual, math.Pi, 1e-9)

	test.That(t, l.Velocity(0), test.ShouldEqual, 0)
	test.That(t, l.Velocity(T/2), test.ShouldAlmostEqual, 0.5, 1e-9)
	test.That(t, l.Velocity(T-1e-9), test.ShouldAlmostEqual, 0, 1e-6)
	test.That(t, l.Completed(), test.ShouldBeFalse)

	test.That(t, l.Velocity(T), test.ShouldEqual, 0)
	test.That(t, l.Completed(), test.ShouldBeTrue)

	l.ResetCompletion()
	test.That(t, l.Completed(), test.ShouldBeFalse)

	test.That(t, func() { l.Velocity(-1) }, test.ShouldPanic)
}

func TestLineIntegral(t *testing.T) {
	for _, tc := range []struct {
		distance, velocity float64
	}{
		{1, 0.5},
		{2.5, 1.2},
		{-0.75, 0.3},
	} {
		l, err := NewLine(testGeometry, tc.distance, tc.velocity, Forward)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, l.Build(), test.ShouldBeNil)
		test.That(t, l.ExecuteTime(), test.ShouldAlmostEqual, math.Pi*math.Abs(tc.distance)/(2*tc.velocity), 1e-12)

		ts := floats.Span(make([]float64, 4001), 0, l.ExecuteTime())
		vs := make([]float64, len(ts))
		for i, at := range ts {
			vs[i] = math.Abs(l.Velocity(at))
		}
		test.That(t, integrate.Trapezoidal(ts, vs), test.ShouldAlmostEqual, math.Abs(tc.distance), 1e-5)
	}
}

func TestLineSigns(t *testing.T) {
	at := func(p Path) (float64, float64) {
		test.That(t, p.Build(), test.ShouldBeNil)
		mid := p.ExecuteTime() / 2
		return p.LeftVelocity(mid), p.RightVelocity(mid)
	}

	for _, tc := range []struct {
		name        string
		symmetry    Symmetry
		distance    float64
		dir         Direction
		left, right float64
	}{
		{"asymmetrical forward", Asymmetrical, 1, Forward, -1, 1},
		{"asymmetrical reverse", Asymmetrical, 1, Reverse, 1, -1},
		{"asymmetrical negative distance", Asymmetrical, -1, Forward, 1, -1},
		{"asymmetrical negative distance reverse", Asymmetrical, -1, Reverse, -1, 1},
		{"symmetrical forward", Symmetrical, 1, Forward, 1, 1},
		{"symmetrical reverse", Symmetrical, 1, Reverse, -1, -1},
	} {
		t.Run(tc.name, func(t *testing.T) {
			l, err := NewLine(Geometry{TrackWidth: 0.4, Symmetry: tc.symmetry}, tc.distance, 1, tc.dir)
			test.That(t, err, test.ShouldBeNil)
			left, right := at(l)
			test.That(t, left, test.ShouldAlmostEqual, tc.left)
			test.That(t, right, test.ShouldAlmostEqual, tc.right)
			test.That(t, l.LeftAngularVelocity(0), test.ShouldEqual, 0)
			test.That(t, l.RightAngularVelocity(0), test.ShouldEqual, 0)
		})
	}
}

func TestTurn(t *testing.T) {
	_, err := NewTurn(testGeometry, 0, 1, Forward)
	test.That(t, err, test.ShouldBeError, "turn angle must be finite and non-zero, got 0")

	turn, err := NewTurn(testGeometry, 90, 0.5, Forward)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, turn.Type(), test.ShouldEqual, TurnType)
	test.That(t, turn.Angle(), test.ShouldEqual, 90)

	expectedDistance := math.Pi * 90 * 0.4 / 360
	test.That(t, turn.Distance(), test.ShouldAlmostEqual, expectedDistance)
	test.That(t, turn.Distance(), test.ShouldAlmostEqual, math.Pi/2*0.4/2)

	test.That(t, turn.Build(), test.ShouldBeNil)
	test.That(t, turn.ExecuteTime(), test.ShouldAlmostEqual, math.Pi*expectedDistance/(2*0.5))

	// both sides share a sign so the chassis counter-rotates its wheels
	mid := turn.ExecuteTime() / 2
	test.That(t, turn.LeftVelocity(mid), test.ShouldAlmostEqual, 0.5)
	test.That(t, turn.RightVelocity(mid), test.ShouldAlmostEqual, 0.5)

	sym, err := NewTurn(Geometry{TrackWidth: 0.4, Symmetry: Symmetrical}, -90, 0.5, Forward)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sym.Build(), test.ShouldBeNil)
	test.That(t, sym.LeftVelocity(mid), test.ShouldAlmostEqual, 0.5)
	test.That(t, sym.RightVelocity(mid), test.ShouldAlmostEqual, -0.5)
}

func TestBuildIdempotent(t *testing.T) {
	l, err := NewLine(testGeometry, 2, 1, Forward)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, l.Build(), test.ShouldBeNil)
	first := l.ExecuteTime()
	test.That(t, l.Build(), test.ShouldBeNil)
	test.That(t, l.ExecuteTime(), test.ShouldEqual, first)
}

func TestParse(t *testing.T) {
	for typ, name := range typeNames {
		parsed, err := ParseType(name)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, parsed, test.ShouldEqual, typ)
	}
	_, err := ParseType("zigzag")
	test.That(t, err, test.ShouldBeError, `unknown path type "zigzag"`)

	dir, err := ParseDirection("Reverse")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dir, test.ShouldEqual, Reverse)
	_, err = ParseDirection("sideways")
	test.That(t, err, test.ShouldNotBeNil)

	sym, err := ParseSymmetry("")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, sym, test.ShouldEqual, Asymmetrical)
	test.That(t, Type(42).String(), test.ShouldEqual, "Type(42)")
}
