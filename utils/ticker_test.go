package utils

import (
	"context"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"go.viam.com/test"
	"go.viam.com/utils/testutils"

	"github.com/drivepath/drivepath/logging"
)

func TestSlowLogger(t *testing.T) {
	logger, logs := logging.NewObservedTestLogger(t)
	clk := clock.NewMock()
	done := SlowLogger(context.Background(), clk, "still waiting", logger, "motors", 4)
	defer done()

	test.That(t, logs.FilterMessage("still waiting").Len(), test.ShouldEqual, 0)
	clk.Add(2 * time.Second)
	testutils.WaitForAssertion(t, func(tb testing.TB) {
		tb.Helper()
		test.That(tb, logs.FilterMessage("still waiting").Len(), test.ShouldEqual, 1)
	})
	entry := logs.FilterMessage("still waiting").All()[0]
	test.That(t, entry.ContextMap()["motors"], test.ShouldEqual, int64(4))
	test.That(t, entry.ContextMap()["time_elapsed"], test.ShouldEqual, "2s")
}
