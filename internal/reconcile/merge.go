// Package reconcile combines the provider's partially-overlapping feeds
// into one coherent per-account snapshot, degrading per field when an
// individual feed is missing.
package reconcile

import (
	"github.com/gridpulse/csgstat/internal/model"
	"github.com/gridpulse/csgstat/pkg/csg"
)

// Merged is the reconciled view of the current month. OK is false when
// neither feed produced a series.
type Merged struct {
	OK    bool
	KWh   float64
	ByDay model.DailySeries
}

// MergeThisMonth reconciles the usage feed's and the cost feed's daily
// series for the current month. A nil input means that feed's fetch
// failed.
//
// When both feeds are present, series length is the freshness proxy: the
// feeds lag the meter by different amounts and the one reporting more days
// is the more current. A cost series at least as long as the usage series
// wins outright (it carries cost too). A strictly longer usage series
// becomes the base and cost values are copied in by position: both feeds
// report full calendar months starting on day 1, so index i is the same
// day in both, with the cost series a prefix of the usage series.
func MergeThisMonth(usage *csg.MonthUsage, cost *csg.MonthCost) Merged {
	switch {
	case usage == nil && cost == nil:
		return Merged{}
	case usage == nil:
		return Merged{OK: true, KWh: cost.TotalKWh, ByDay: cost.ByDay}
	case cost == nil:
		return Merged{OK: true, KWh: usage.TotalKWh, ByDay: usage.ByDay}
	}

	if len(cost.ByDay) >= len(usage.ByDay) {
		return Merged{OK: true, KWh: cost.TotalKWh, ByDay: cost.ByDay}
	}

	merged := make(model.DailySeries, len(usage.ByDay))
	copy(merged, usage.ByDay)
	for i, rec := range cost.ByDay {
		merged[i].Cost = rec.Cost
	}
	return Merged{OK: true, KWh: usage.TotalKWh, ByDay: merged}
}
