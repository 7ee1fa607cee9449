package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/gridpulse/csgstat/internal/model"
	"github.com/gridpulse/csgstat/pkg/csg"
)

// All engine tests run on 2026-08-20: late in the month, so historical
// refreshes depend only on the cycle state marker.
var testNow = time.Date(2026, time.August, 20, 9, 0, 0, 0, time.UTC)

func fl(v float64) *float64 { return &v }

func seededMock() *mockClient {
	m := newMockClient()
	thisYM := model.YearMonth{Year: 2026, Month: time.August}
	lastYM := thisYM.Prev()

	m.yearStats[2026] = csg.YearStats{TotalKWh: 900, TotalCost: 450}
	m.yearStats[2025] = csg.YearStats{TotalKWh: 1200, TotalCost: 600}
	m.usage[thisYM] = csg.MonthUsage{TotalKWh: 10, ByDay: model.DailySeries{
		{Date: model.NewDate(2026, time.August, 1), KWh: 3},
		{Date: model.NewDate(2026, time.August, 2), KWh: 7},
	}}
	m.cost[thisYM] = csg.MonthCost{TotalKWh: 10, TotalCost: 5, ByDay: model.DailySeries{
		{Date: model.NewDate(2026, time.August, 1), KWh: 3, Cost: fl(1.5)},
		{Date: model.NewDate(2026, time.August, 2), KWh: 7, Cost: fl(3.5)},
	}}
	m.usage[lastYM] = csg.MonthUsage{TotalKWh: 90, ByDay: model.DailySeries{
		{Date: model.NewDate(2026, time.July, 31), KWh: 4},
	}}
	return m
}

func testAccounts() []csg.Account {
	return []csg.Account{{Number: "1234567890", MeteringPoint: "mp-1", AreaCode: "050100"}}
}

func newTestEngine(m *mockClient, opts ...Option) *Engine {
	opts = append([]Option{
		WithNow(func() time.Time { return testNow }),
		WithLogger(zap.NewNop()),
	}, opts...)
	return New(m, testAccounts(), 2*time.Minute, opts...)
}

func TestRunCycleSuccess(t *testing.T) {
	t.Parallel()

	e := newTestEngine(seededMock())
	snaps, err := e.RunCycle(context.Background())
	require.NoError(t, err)
	require.Contains(t, snaps, "1234567890")

	snap := snaps["1234567890"]
	bal, ok := snap.Balance.Float64()
	require.True(t, ok)
	assert.Equal(t, 20.5, bal)

	// First cycle ever fetches all historical data.
	lyk, ok := snap.LastYearKWh.Float64()
	require.True(t, ok)
	assert.Equal(t, 1200.0, lyk)
	assert.Equal(t, model.KindValue, snap.LastMonthKWh.Kind())

	kwh, ok := snap.LatestDayKWh.Float64()
	require.True(t, ok)
	assert.Equal(t, 7.0, kwh)
}

func TestRunCycleSecondCycleSkipsHistorical(t *testing.T) {
	t.Parallel()

	m := seededMock()
	e := newTestEngine(m)

	_, err := e.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, m.callCount("last_month_usage"))

	// Day 20 with a marker set: both historical fetches are skipped and
	// their fields are marked unchanged.
	snaps, err := e.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, m.callCount("last_month_usage"), "no second last-month fetch")

	snap := snaps["1234567890"]
	assert.Equal(t, model.KindUnchanged, snap.LastYearKWh.Kind())
	assert.Equal(t, model.KindUnchanged, snap.LastMonthByDay.Kind())
}

func TestRunCycleEmptyThisMonthForcesLastMonthFetch(t *testing.T) {
	t.Parallel()

	m := seededMock()
	thisYM := model.YearMonth{Year: 2026, Month: time.August}
	m.usage[thisYM] = csg.MonthUsage{}
	m.cost[thisYM] = csg.MonthCost{}

	e := newTestEngine(m)
	_, err := e.RunCycle(context.Background())
	require.NoError(t, err)

	// Second cycle: policy says skip, but the empty this-month series
	// forces the fetch anyway and latest-day falls back to it.
	snaps, err := e.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, m.callCount("last_month_usage"))

	snap := snaps["1234567890"]
	kwh, ok := snap.LatestDayKWh.Float64()
	require.True(t, ok)
	assert.Equal(t, 4.0, kwh)
	assert.Equal(t, model.KindUnknown, snap.LatestDayCost.Kind())
}

func TestRunCycleFieldFailureIsIsolated(t *testing.T) {
	t.Parallel()

	m := seededMock()
	m.failOps["balance"] = &csg.APIError{Code: "99", Message: "backend unavailable"}

	e := newTestEngine(m)
	snaps, err := e.RunCycle(context.Background())
	require.NoError(t, err, "a per-field failure must not fail the cycle")

	snap := snaps["1234567890"]
	assert.Equal(t, model.KindUnavailable, snap.Balance.Kind())
	assert.Equal(t, model.KindUnavailable, snap.Arrears.Kind())

	// Everything else keeps its computed value.
	yk, ok := snap.YesterdayKWh.Float64()
	require.True(t, ok)
	assert.Equal(t, 6.5, yk)
	assert.Equal(t, model.KindValue, snap.ThisMonthKWh.Kind())
}

func TestRunCycleFailureKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		mutate   func(*mockClient)
		wantKind FailureKind
	}{
		{
			name:     "session rejected",
			mutate:   func(m *mockClient) { m.loginValid = false },
			wantKind: FailureSessionInvalid,
		},
		{
			name:     "session invalidated mid-cycle",
			mutate:   func(m *mockClient) { m.failOps["yesterday"] = csg.ErrNotLoggedIn },
			wantKind: FailureSessionInvalid,
		},
		{
			name:     "deadline exceeded",
			mutate:   func(m *mockClient) { m.failOps["month_cost"] = context.DeadlineExceeded },
			wantKind: FailureTimeout,
		},
		{
			name:     "verification api error",
			mutate:   func(m *mockClient) { m.failOps["verify_login"] = &csg.APIError{Code: "77", Message: "maintenance"} },
			wantKind: FailureRemoteAPI,
		},
		{
			name:     "unexpected error",
			mutate:   func(m *mockClient) { m.failOps["year_stats"] = errors.New("boom") },
			wantKind: FailureUnexpected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := seededMock()
			tt.mutate(m)

			e := newTestEngine(m)
			snaps, err := e.RunCycle(context.Background())
			assert.Nil(t, snaps, "no partial snapshot on a failed cycle")

			var ce *CycleError
			require.ErrorAs(t, err, &ce)
			assert.Equal(t, tt.wantKind, ce.Kind)
			assert.NotEmpty(t, ce.Reason)
		})
	}
}

func TestRunCycleTimeoutFloorSubstituted(t *testing.T) {
	t.Parallel()

	core, logs := observer.New(zap.WarnLevel)
	e := New(seededMock(), testAccounts(), 10*time.Second,
		WithNow(func() time.Time { return testNow }),
		WithLogger(zap.New(core)),
	)

	_, err := e.RunCycle(context.Background())
	require.NoError(t, err)

	entries := logs.FilterMessageSnippet("timeout below floor").All()
	require.Len(t, entries, 1, "floor substitution must be observable")
	assert.Equal(t, MinCycleTimeout, entries[0].ContextMap()["floor"])
}

func TestRunCycleNoAccounts(t *testing.T) {
	t.Parallel()

	e := New(seededMock(), nil, 2*time.Minute,
		WithNow(func() time.Time { return testNow }),
		WithLogger(zap.NewNop()),
	)
	snaps, err := e.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Empty(t, snaps)
}

func TestRunCycleMultipleAccounts(t *testing.T) {
	t.Parallel()

	accounts := []csg.Account{
		{Number: "111", AreaCode: "050100"},
		{Number: "222", AreaCode: "050100"},
		{Number: "333", AreaCode: "050100"},
	}
	e := New(seededMock(), accounts, 2*time.Minute,
		WithNow(func() time.Time { return testNow }),
		WithLogger(zap.NewNop()),
	)

	snaps, err := e.RunCycle(context.Background())
	require.NoError(t, err)
	assert.Len(t, snaps, 3)
	for _, n := range []string{"111", "222", "333"} {
		assert.Contains(t, snaps, n)
	}
}
