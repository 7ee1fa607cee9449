package reconcile

import (
	"github.com/gridpulse/csgstat/internal/model"
	"github.com/gridpulse/csgstat/pkg/csg"
)

// LadderFields are the four tiered-pricing snapshot fields.
type LadderFields struct {
	Stage        model.Field
	RemainingKWh model.Field
	Tariff       model.Field
	StartDate    model.Field
}

// ExtractLadder pulls the ladder fields out of the cost feed's result. A
// nil ladder (the cost fetch failed, or the feed omitted the object) makes
// all four unavailable; otherwise each sub-field degrades individually,
// since the feed can return a ladder object with some members null even on
// success.
func ExtractLadder(l *csg.Ladder) LadderFields {
	if l == nil {
		return LadderFields{
			Stage:        model.Unavailable(),
			RemainingKWh: model.Unavailable(),
			Tariff:       model.Unavailable(),
			StartDate:    model.Unavailable(),
		}
	}

	f := LadderFields{
		Stage:        model.Unavailable(),
		RemainingKWh: model.Unavailable(),
		Tariff:       model.Unavailable(),
		StartDate:    model.Unavailable(),
	}
	if l.Stage != nil {
		f.Stage = model.Val(*l.Stage)
	}
	if l.RemainingKWh != nil {
		f.RemainingKWh = model.Val(*l.RemainingKWh)
	}
	if l.Tariff != nil {
		f.Tariff = model.Val(*l.Tariff)
	}
	if l.StartDate != nil {
		f.StartDate = model.Val(*l.StartDate)
	}
	return f
}
