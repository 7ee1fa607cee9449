package engine

import (
	"context"
	"sync"
	"time"

	"github.com/gridpulse/csgstat/internal/model"
	"github.com/gridpulse/csgstat/pkg/csg"
)

// mockClient implements csg.Client for testing. Per-operation errors are
// injected through failOps; everything else succeeds with canned data.
type mockClient struct {
	mu      sync.Mutex
	calls   []string
	failOps map[string]error

	loginValid bool
	loginErr   error

	balance   csg.BalanceResult
	yesterday float64
	yearStats map[int]csg.YearStats
	usage     map[model.YearMonth]csg.MonthUsage
	cost      map[model.YearMonth]csg.MonthCost
}

func newMockClient() *mockClient {
	return &mockClient{
		failOps:    map[string]error{},
		loginValid: true,
		balance:    csg.BalanceResult{Balance: 20.5, Arrears: 0},
		yesterday:  6.5,
		yearStats:  map[int]csg.YearStats{},
		usage:      map[model.YearMonth]csg.MonthUsage{},
		cost:       map[model.YearMonth]csg.MonthCost{},
	}
}

func (m *mockClient) record(op string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, op)
	return m.failOps[op]
}

func (m *mockClient) callCount(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c == op {
			n++
		}
	}
	return n
}

func (m *mockClient) VerifyLogin(_ context.Context) (bool, error) {
	if err := m.record("verify_login"); err != nil {
		return false, err
	}
	return m.loginValid, m.loginErr
}

func (m *mockClient) BalanceAndArrears(_ context.Context, _ csg.Account) (csg.BalanceResult, error) {
	if err := m.record("balance"); err != nil {
		return csg.BalanceResult{}, err
	}
	return m.balance, nil
}

func (m *mockClient) YesterdayKWh(_ context.Context, _ csg.Account) (float64, error) {
	if err := m.record("yesterday"); err != nil {
		return 0, err
	}
	return m.yesterday, nil
}

func (m *mockClient) YearMonthStats(_ context.Context, _ csg.Account, year int) (csg.YearStats, error) {
	if err := m.record("year_stats"); err != nil {
		return csg.YearStats{}, err
	}
	return m.yearStats[year], nil
}

func (m *mockClient) MonthDailyUsage(_ context.Context, _ csg.Account, ym model.YearMonth) (csg.MonthUsage, error) {
	op := "month_usage"
	if ym != (model.YearMonth{Year: 2026, Month: time.August}) {
		op = "last_month_usage"
	}
	if err := m.record(op); err != nil {
		return csg.MonthUsage{}, err
	}
	return m.usage[ym], nil
}

func (m *mockClient) MonthDailyCost(_ context.Context, _ csg.Account, ym model.YearMonth) (csg.MonthCost, error) {
	if err := m.record("month_cost"); err != nil {
		return csg.MonthCost{}, err
	}
	return m.cost[ym], nil
}
