package marker

import (
	"context"
	"testing"
	"time"

	"go.viam.com/test"
)

func TestNewList(t *testing.T) {
	noop := func(context.Context) {}

	l, err := NewList(Marker{Name: "arm", At: time.Second, Action: noop}, Marker{At: 2 * time.Second, Action: noop})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, l.Len(), test.ShouldEqual, 2)
	test.That(t, l.At(0).Name, test.ShouldEqual, "arm")
	test.That(t, l.At(1).Name, test.ShouldEqual, "marker-1")
	test.That(t, l.Time(1), test.ShouldEqual, 2*time.Second)

	_, err = NewList(Marker{At: -time.Second, Action: noop})
	test.That(t, err, test.ShouldBeError, "marker 0 has negative trigger time -1s")

	_, err = NewList(Marker{At: time.Second})
	test.That(t, err, test.ShouldBeError, "marker 0 has no action")

	l, err = NewList(Marker{At: Never})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, l.Time(0), test.ShouldEqual, Never)
}

func TestNewListFromSlices(t *testing.T) {
	noop := func(context.Context) {}

	_, err := NewListFromSlices([]Action{noop, noop}, []time.Duration{time.Second})
	test.That(t, err, test.ShouldBeError, "marker list has 2 actions but 1 times")

	l, err := NewListFromSlices([]Action{noop, nil}, []time.Duration{time.Second, Never})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, l.Len(), test.ShouldEqual, 2)
	test.That(t, l.At(0).Name, test.ShouldEqual, "marker-0")
}
