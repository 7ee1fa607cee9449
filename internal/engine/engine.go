// Package engine runs refresh cycles: it decides which provider queries
// to issue, fetches them with per-field failure isolation, reconciles the
// overlapping feeds and publishes one snapshot per account.
package engine

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/gridpulse/csgstat/internal/model"
	"github.com/gridpulse/csgstat/internal/reconcile"
	"github.com/gridpulse/csgstat/internal/refresh"
	"github.com/gridpulse/csgstat/pkg/csg"
)

// MinCycleTimeout is the enforced deadline floor. A misconfigured lower
// timeout would make every cycle fail spuriously, so it is substituted
// with a logged warning instead of honored.
const MinCycleTimeout = 60 * time.Second

// maxParallelAccounts bounds the per-account fan-out within one cycle.
const maxParallelAccounts = 4

// Engine fetches and reconciles data for all configured accounts. It owns
// the cycle state marker; construct one per integration and drop it at
// teardown.
type Engine struct {
	client   csg.Client
	accounts []csg.Account
	timeout  time.Duration
	state    *refresh.State
	metrics  *Metrics
	log      *zap.Logger
	now      func() time.Time
}

// Option configures the engine.
type Option func(*Engine)

// WithLogger overrides the global zap logger.
func WithLogger(log *zap.Logger) Option {
	return func(e *Engine) { e.log = log }
}

// WithMetrics attaches prometheus collectors.
func WithMetrics(m *Metrics) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithNow sets a fixed clock for testing.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) { e.now = now }
}

// New creates an engine for the given accounts with a per-cycle timeout.
func New(client csg.Client, accounts []csg.Account, timeout time.Duration, opts ...Option) *Engine {
	e := &Engine{
		client:   client,
		accounts: accounts,
		timeout:  timeout,
		state:    refresh.NewState(),
		log:      zap.L(),
		now:      time.Now,
	}
	for _, o := range opts {
		o(e)
	}
	return e
}

// RunCycle performs one full refresh across all configured accounts under
// a single deadline. On success it returns the snapshot map and advances
// the cycle state marker; on failure it returns a *CycleError and the
// caller keeps its previously published snapshots. An empty account list
// is a no-op success.
func (e *Engine) RunCycle(ctx context.Context) (model.Snapshots, error) {
	log := e.log.With(zap.String("cycle_id", uuid.NewString()))

	if len(e.accounts) == 0 {
		log.Info("no accounts configured, skipping cycle")
		return model.Snapshots{}, nil
	}

	timeout := e.timeout
	if timeout < MinCycleTimeout {
		log.Warn("configured cycle timeout below floor, substituting",
			zap.Duration("configured", timeout),
			zap.Duration("floor", MinCycleTimeout),
		)
		timeout = MinCycleTimeout
	}

	start := e.now()
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	snaps, err := e.runCycle(ctx, log, start)
	elapsed := time.Since(start)

	if err != nil {
		ce := classifyCycleErr(err)
		if ce.Kind == FailureUnexpected {
			log.Error("cycle failed unexpectedly", zap.Error(ce.Err))
		}
		log.Warn("cycle failed",
			zap.String("kind", string(ce.Kind)),
			zap.String("reason", ce.Reason),
			zap.Duration("elapsed", elapsed),
		)
		e.metrics.observeCycle(string(ce.Kind), elapsed)
		return nil, ce
	}

	// One marker write per cycle, dated at the cycle's start.
	e.state.MarkUpdated(start.Day())
	e.metrics.observeCycle("success", elapsed)
	e.metrics.observeSnapshots(snaps)
	log.Info("cycle done",
		zap.Int("accounts", len(snaps)),
		zap.Duration("elapsed", elapsed),
	)
	return snaps, nil
}

func (e *Engine) runCycle(ctx context.Context, log *zap.Logger, start time.Time) (model.Snapshots, error) {
	valid, err := e.client.VerifyLogin(ctx)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, &CycleError{Kind: FailureSessionInvalid, Reason: "session token rejected by provider"}
	}

	dec := refresh.Decide(start, e.state)
	if dec.LastMonth || dec.LastYear {
		log.Info("historical refresh due",
			zap.Bool("last_month", dec.LastMonth),
			zap.Bool("last_year", dec.LastYear),
		)
	}

	var (
		mu    sync.Mutex
		snaps = make(model.Snapshots, len(e.accounts))
	)
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelAccounts)
	for _, acct := range e.accounts {
		g.Go(func() error {
			snap, err := e.fetchAccount(gctx, log.With(zap.String("account", acct.Number)), acct, start, dec)
			if err != nil {
				return err
			}
			mu.Lock()
			snaps[acct.Number] = snap
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return snaps, nil
}

// fetchAccount issues every remote query for one account and reconciles
// the results. Only classified provider failures degrade fields; any
// other error aborts the whole cycle.
func (e *Engine) fetchAccount(ctx context.Context, log *zap.Logger, acct csg.Account, start time.Time, dec refresh.Decision) (model.AccountSnapshot, error) {
	var (
		in     reconcile.Inputs
		thisYM = model.YearMonth{Year: start.Year(), Month: start.Month()}
	)

	bal, err := safeFetch(log, "balance_and_arrears", func() (csg.BalanceResult, error) {
		return e.client.BalanceAndArrears(ctx, acct)
	})
	if err != nil {
		return model.AccountSnapshot{}, err
	}
	in.Balance = bal

	yesterday, err := safeFetch(log, "yesterday_kwh", func() (float64, error) {
		return e.client.YesterdayKWh(ctx, acct)
	})
	if err != nil {
		return model.AccountSnapshot{}, err
	}
	in.YesterdayKWh = yesterday

	in.ThisYear, err = safeFetch(log, "this_year_stats", func() (csg.YearStats, error) {
		return e.client.YearMonthStats(ctx, acct, start.Year())
	})
	if err != nil {
		return model.AccountSnapshot{}, err
	}

	usage, err := safeFetch(log, "this_month_usage", func() (csg.MonthUsage, error) {
		return e.client.MonthDailyUsage(ctx, acct, thisYM)
	})
	if err != nil {
		return model.AccountSnapshot{}, err
	}
	in.ThisMonthCost, err = safeFetch(log, "this_month_cost", func() (csg.MonthCost, error) {
		return e.client.MonthDailyCost(ctx, acct, thisYM)
	})
	if err != nil {
		return model.AccountSnapshot{}, err
	}
	in.ThisMonth = reconcile.MergeThisMonth(usage, in.ThisMonthCost)

	if dec.LastYear {
		in.LastYearFetched = true
		in.LastYear, err = safeFetch(log, "last_year_stats", func() (csg.YearStats, error) {
			return e.client.YearMonthStats(ctx, acct, start.Year()-1)
		})
		if err != nil {
			return model.AccountSnapshot{}, err
		}
	} else {
		log.Debug("skipping last-year fetch")
	}

	// The early-month window can leave this month with zero days of data;
	// in that case last month is fetched regardless of policy so the
	// latest-day fallback has something to land on.
	if dec.LastMonth || !in.ThisMonth.OK || len(in.ThisMonth.ByDay) == 0 {
		in.LastMonthFetched = true
		in.LastMonth, err = safeFetch(log, "last_month_usage", func() (csg.MonthUsage, error) {
			return e.client.MonthDailyUsage(ctx, acct, thisYM.Prev())
		})
		if err != nil {
			return model.AccountSnapshot{}, err
		}
	} else {
		log.Debug("skipping last-month fetch")
	}

	return reconcile.BuildSnapshot(in), nil
}
