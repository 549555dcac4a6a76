package trajectory

import (
	"math"
	"sort"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
)

// PastEnd is returned by Spline.Arc for times at or beyond the final breakpoint.
const PastEnd = -1

// Spline follows a chain of circular arcs. The first and last arcs are entry and exit ramps
// measured in meters; interior arc lengths are fractions of a full turn.
type Spline struct {
	base
	radii     []float64
	lengths   []float64
	velocity  float64
	accelTime float64
	signs     signTable

	times      []float64
	extraStart float64
	extraEnd   float64
}

// NewSpline returns an unbuilt spline over the arcs (radii[i], lengths[i]) cruising at velocity
// m/s with accelTime seconds of sqrt ramp at each end. The slices are copied.
func NewSpline(geom Geometry, radii, lengths []float64, velocity, accelTime float64, dir Direction) (*Spline, error) {
	b, err := newBase(geom, SplineType, dir)
	if err != nil {
		return nil, err
	}
	if len(radii) != len(lengths) {
		return nil, errors.Errorf("spline has %d radii but %d arc lengths", len(radii), len(lengths))
	}
	if len(radii) < 2 {
		return nil, errors.Errorf("spline needs at least 2 arcs, got %d", len(radii))
	}
	for i, r := range radii {
		if r == 0 || math.IsNaN(r) {
			return nil, errors.Errorf("spline arc %d has invalid radius %v", i, r)
		}
	}
	if !(velocity > 0) || math.IsInf(velocity, 0) {
		return nil, errors.Errorf("spline velocity must be positive, got %v", velocity)
	}
	if !(accelTime > 0) || math.IsInf(accelTime, 0) {
		return nil, errors.Errorf("spline acceleration time must be positive, got %v", accelTime)
	}
	return &Spline{
		base:      b,
		radii:     append([]float64(nil), radii...),
		lengths:   append([]float64(nil), lengths...),
		velocity:  velocity,
		accelTime: accelTime,
		signs:     lineSigns[geom.Symmetry],
	}, nil
}

// Build scales the interior arcs to full-turn fractions and computes the breakpoint times.
// Repeated calls do nothing.
func (s *Spline) Build() error {
	if s.status == Built {
		return nil
	}
	n := len(s.lengths)
	lengths := append([]float64(nil), s.lengths...)
	for i := 1; i < n-1; i++ {
		lengths[i] *= 2 * math.Pi
	}

	v, ta := s.velocity, s.accelTime
	extraStart := (3*math.Abs(lengths[0]) - 2*v*ta) / (3 * v)
	extraEnd := (math.Abs(lengths[n-1]) - v*ta/3) / v

	durations := make([]float64, n)
	durations[0] = ta + extraStart
	for i := 1; i < n-1; i++ {
		durations[i] = math.Abs(lengths[i]) * v
	}
	durations[n-1] = ta + extraEnd
	for i, d := range durations {
		if !(d > 0) {
			return errors.Errorf("spline arc %d has non-positive duration %v", i, d)
		}
	}

	s.lengths = lengths
	s.extraStart, s.extraEnd = extraStart, extraEnd
	s.times = floats.CumSum(make([]float64, n), durations)
	s.executeTime = s.times[n-1]
	s.status = Built
	return nil
}

// Breakpoints returns a copy of the cumulative arc end times.
func (s *Spline) Breakpoints() []float64 {
	return append([]float64(nil), s.times...)
}

// ArcLengths returns a copy of the arc lengths, interior ones scaled once built.
func (s *Spline) ArcLengths() []float64 {
	return append([]float64(nil), s.lengths...)
}

// Arc returns the index of the arc being driven at t, or PastEnd.
func (s *Spline) Arc(t float64) int {
	s.checkQuery(t)
	i := sort.Search(len(s.times), func(i int) bool { return s.times[i] > t })
	if i == len(s.times) {
		return PastEnd
	}
	return i
}

// sample returns the arc and the centerline speed at t, marking completion past the end.
func (s *Spline) sample(t float64) (int, float64) {
	arc := s.Arc(t)
	n := len(s.times)
	v, ta := s.velocity, s.accelTime
	switch arc {
	case PastEnd:
		s.completed = true
		return PastEnd, 0
	case 0:
		if t < ta {
			return arc, v * math.Sqrt(t/ta)
		}
		return arc, v
	case n - 1:
		rampStart := s.times[n-2] + s.extraEnd
		if t < rampStart {
			return arc, v
		}
		return arc, v - v*math.Sqrt((t-rampStart)/ta)
	default:
		return arc, v
	}
}

// Velocity returns the centerline speed at t.
func (s *Spline) Velocity(t float64) float64 {
	_, v := s.sample(t)
	return v
}

func (s *Spline) inner(t float64) float64 {
	arc, v := s.sample(t)
	if arc == PastEnd {
		return 0
	}
	return v - v*s.geom.TrackWidth/(2*s.radii[arc])
}

// LeftVelocity returns the left side speed at t.
func (s *Spline) LeftVelocity(t float64) float64 {
	return s.inner(t) * s.signs.coefficient(left, s.dir)
}

// RightVelocity returns the right side speed at t. Unless the geometry mirrors spline sides it
// equals LeftVelocity.
func (s *Spline) RightVelocity(t float64) float64 {
	if !s.geom.MirrorSplineRight {
		return s.LeftVelocity(t)
	}
	arc, v := s.sample(t)
	if arc == PastEnd {
		return 0
	}
	return (v + v*s.geom.TrackWidth/(2*s.radii[arc])) * s.signs.coefficient(right, s.dir)
}

// LeftAngularVelocity is always zero.
func (s *Spline) LeftAngularVelocity(t float64) float64 {
	s.checkQuery(t)
	return 0
}

// RightAngularVelocity is always zero.
func (s *Spline) RightAngularVelocity(t float64) float64 {
	s.checkQuery(t)
	return 0
}
