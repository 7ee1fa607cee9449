package reconcile

import (
	"github.com/gridpulse/csgstat/internal/model"
	"github.com/gridpulse/csgstat/pkg/csg"
)

// LatestDay is the most recent day with any data: its usage, its cost if
// the feed that supplied it carries cost, and its date.
type LatestDay struct {
	KWh  model.Field
	Cost model.Field
	Date model.Field
}

// ResolveLatestDay finds the most recent day with data. Early in a
// calendar month the current month's feeds can have zero days yet, so the
// fallback order is: this month's merged series, then last month's series
// if it was fetched this cycle, then nothing.
//
// Last month comes from the usage feed, which never carries cost, so its
// cost is unknown rather than unavailable. The same applies to a merged
// record whose cost was never filled in.
func ResolveLatestDay(thisMonth Merged, lastMonth *csg.MonthUsage, lastMonthFetched bool) LatestDay {
	if rec, ok := thisMonth.ByDay.Latest(); thisMonth.OK && ok {
		cost := model.Unknown()
		if rec.Cost != nil {
			cost = model.Val(*rec.Cost)
		}
		return LatestDay{
			KWh:  model.Val(rec.KWh),
			Cost: cost,
			Date: model.Val(rec.Date),
		}
	}

	if lastMonthFetched && lastMonth != nil {
		if rec, ok := lastMonth.ByDay.Latest(); ok {
			return LatestDay{
				KWh:  model.Val(rec.KWh),
				Cost: model.Unknown(),
				Date: model.Val(rec.Date),
			}
		}
	}

	return LatestDay{
		KWh:  model.Unavailable(),
		Cost: model.Unavailable(),
		Date: model.Unavailable(),
	}
}
