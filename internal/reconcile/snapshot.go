package reconcile

import (
	"github.com/gridpulse/csgstat/internal/model"
	"github.com/gridpulse/csgstat/pkg/csg"
)

// Inputs carries one account's fetch results into the snapshot build. A
// nil result pointer means that fetch failed and its fields degrade to
// unavailable. For the historical sources, Fetched=false means the refresh
// policy skipped the query this cycle and its fields are marked unchanged
// instead.
type Inputs struct {
	Balance      *csg.BalanceResult
	YesterdayKWh *float64
	ThisYear     *csg.YearStats

	ThisMonth     Merged
	ThisMonthCost *csg.MonthCost

	LastYear        *csg.YearStats
	LastYearFetched bool

	LastMonth        *csg.MonthUsage
	LastMonthFetched bool
}

// historicalSentinel maps the failure modes of a slow-changing source:
// skipped this cycle (unchanged) or fetched but failed (unavailable).
func historicalSentinel(fetched bool) model.Field {
	if !fetched {
		return model.Unchanged()
	}
	return model.Unavailable()
}

// BuildSnapshot assembles the per-account output record from one cycle's
// fetch results.
func BuildSnapshot(in Inputs) model.AccountSnapshot {
	var snap model.AccountSnapshot

	snap.Balance = model.Unavailable()
	snap.Arrears = model.Unavailable()
	if in.Balance != nil {
		snap.Balance = model.Val(in.Balance.Balance)
		snap.Arrears = model.Val(in.Balance.Arrears)
	}

	snap.YesterdayKWh = model.Unavailable()
	if in.YesterdayKWh != nil {
		snap.YesterdayKWh = model.Val(*in.YesterdayKWh)
	}

	snap.ThisYearKWh = model.Unavailable()
	snap.ThisYearCost = model.Unavailable()
	snap.ThisYearByMonth = model.Unavailable()
	if in.ThisYear != nil {
		snap.ThisYearKWh = model.Val(in.ThisYear.TotalKWh)
		snap.ThisYearCost = model.Val(in.ThisYear.TotalCost)
		snap.ThisYearByMonth = model.Val(in.ThisYear.ByMonth)
	}

	snap.LastYearKWh = historicalSentinel(in.LastYearFetched)
	snap.LastYearCost = snap.LastYearKWh
	snap.LastYearByMonth = snap.LastYearKWh
	if in.LastYearFetched && in.LastYear != nil {
		snap.LastYearKWh = model.Val(in.LastYear.TotalKWh)
		snap.LastYearCost = model.Val(in.LastYear.TotalCost)
		snap.LastYearByMonth = model.Val(in.LastYear.ByMonth)
	}

	snap.ThisMonthKWh = model.Unavailable()
	snap.ThisMonthByDay = model.Unavailable()
	if in.ThisMonth.OK {
		snap.ThisMonthKWh = model.Val(in.ThisMonth.KWh)
		snap.ThisMonthByDay = model.Val(in.ThisMonth.ByDay)
	}

	// This month's total cost only ever comes from the cost feed; the
	// merge cannot recover it from the usage feed.
	snap.ThisMonthCost = model.Unavailable()
	if in.ThisMonthCost != nil {
		snap.ThisMonthCost = model.Val(in.ThisMonthCost.TotalCost)
	}

	snap.LastMonthKWh = historicalSentinel(in.LastMonthFetched)
	snap.LastMonthByDay = snap.LastMonthKWh
	if in.LastMonthFetched && in.LastMonth != nil {
		snap.LastMonthKWh = model.Val(in.LastMonth.TotalKWh)
		snap.LastMonthByDay = model.Val(in.LastMonth.ByDay)
	}

	var ladder *csg.Ladder
	if in.ThisMonthCost != nil {
		ladder = in.ThisMonthCost.Ladder
	}
	lf := ExtractLadder(ladder)
	snap.LadderStage = lf.Stage
	snap.LadderRemainingKWh = lf.RemainingKWh
	snap.LadderTariff = lf.Tariff
	snap.LadderStartDate = lf.StartDate

	latest := ResolveLatestDay(in.ThisMonth, in.LastMonth, in.LastMonthFetched)
	snap.LatestDayKWh = latest.KWh
	snap.LatestDayCost = latest.Cost
	snap.LatestDayDate = latest.Date

	return snap
}
