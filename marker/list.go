// Package marker schedules side actions at fixed times after a trajectory starts. Actions run
// on their own goroutines next to the drive loop and never block it.
package marker

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/pkg/errors"
)

// Never is the trigger time of a slot that should not fire.
const Never = time.Duration(math.MaxInt64)

// An Action is run once when its marker triggers. It should return when ctx is done.
type Action func(ctx context.Context)

// A Marker is a named action triggered At after the scheduler is activated.
type Marker struct {
	Name   string
	At     time.Duration
	Action Action
}

// List is an immutable, ordered set of markers.
type List struct {
	markers []Marker
}

// NewList returns a list of the given markers. Unnamed markers are named by position. A nil
// action is only allowed on a marker that never fires.
func NewList(markers ...Marker) (*List, error) {
	l := &List{markers: make([]Marker, len(markers))}
	for i, m := range markers {
		if m.At < 0 {
			return nil, errors.Errorf("marker %d has negative trigger time %v", i, m.At)
		}
		if m.Action == nil && m.At != Never {
			return nil, errors.Errorf("marker %d has no action", i)
		}
		if m.Name == "" {
			m.Name = fmt.Sprintf("marker-%d", i)
		}
		l.markers[i] = m
	}
	return l, nil
}

// NewListFromSlices pairs actions[i] with times[i].
func NewListFromSlices(actions []Action, times []time.Duration) (*List, error) {
	if len(actions) != len(times) {
		return nil, errors.Errorf("marker list has %d actions but %d times", len(actions), len(times))
	}
	markers := make([]Marker, len(actions))
	for i := range actions {
		markers[i] = Marker{At: times[i], Action: actions[i]}
	}
	return NewList(markers...)
}

// Len returns the number of markers.
func (l *List) Len() int {
	return len(l.markers)
}

// At returns marker i.
func (l *List) At(i int) Marker {
	return l.markers[i]
}

// Time returns the trigger time of marker i.
func (l *List) Time(i int) time.Duration {
	return l.markers[i].At
}
