package model

// AccountSnapshot is the per-account output of one successful refresh
// cycle. Every field independently carries one of the Field states; a
// consumer must treat unchanged as "keep the previous value" and
// unavailable as "not available", never as literal zero or empty.
type AccountSnapshot struct {
	Balance      Field `json:"balance" yaml:"balance"`
	Arrears      Field `json:"arrears" yaml:"arrears"`
	YesterdayKWh Field `json:"yesterday_kwh" yaml:"yesterday_kwh"`

	LatestDayKWh  Field `json:"latest_day_kwh" yaml:"latest_day_kwh"`
	LatestDayCost Field `json:"latest_day_cost" yaml:"latest_day_cost"`
	LatestDayDate Field `json:"latest_day_date" yaml:"latest_day_date"`

	ThisYearKWh     Field `json:"this_year_kwh" yaml:"this_year_kwh"`
	ThisYearCost    Field `json:"this_year_cost" yaml:"this_year_cost"`
	ThisYearByMonth Field `json:"this_year_by_month" yaml:"this_year_by_month"`

	LastYearKWh     Field `json:"last_year_kwh" yaml:"last_year_kwh"`
	LastYearCost    Field `json:"last_year_cost" yaml:"last_year_cost"`
	LastYearByMonth Field `json:"last_year_by_month" yaml:"last_year_by_month"`

	ThisMonthKWh   Field `json:"this_month_kwh" yaml:"this_month_kwh"`
	ThisMonthCost  Field `json:"this_month_cost" yaml:"this_month_cost"`
	ThisMonthByDay Field `json:"this_month_by_day" yaml:"this_month_by_day"`

	LastMonthKWh   Field `json:"last_month_kwh" yaml:"last_month_kwh"`
	LastMonthByDay Field `json:"last_month_by_day" yaml:"last_month_by_day"`

	LadderStage        Field `json:"ladder_stage" yaml:"ladder_stage"`
	LadderRemainingKWh Field `json:"ladder_remaining_kwh" yaml:"ladder_remaining_kwh"`
	LadderTariff       Field `json:"ladder_tariff" yaml:"ladder_tariff"`
	LadderStartDate    Field `json:"ladder_start_date" yaml:"ladder_start_date"`
}

// Fields returns the snapshot's scalar and attribute fields keyed by their
// wire names, for consumers that iterate rather than address fields
// directly (the status surface and the availability collector).
func (s AccountSnapshot) Fields() map[string]Field {
	return map[string]Field{
		"balance":              s.Balance,
		"arrears":              s.Arrears,
		"yesterday_kwh":        s.YesterdayKWh,
		"latest_day_kwh":       s.LatestDayKWh,
		"latest_day_cost":      s.LatestDayCost,
		"latest_day_date":      s.LatestDayDate,
		"this_year_kwh":        s.ThisYearKWh,
		"this_year_cost":       s.ThisYearCost,
		"this_year_by_month":   s.ThisYearByMonth,
		"last_year_kwh":        s.LastYearKWh,
		"last_year_cost":       s.LastYearCost,
		"last_year_by_month":   s.LastYearByMonth,
		"this_month_kwh":       s.ThisMonthKWh,
		"this_month_cost":      s.ThisMonthCost,
		"this_month_by_day":    s.ThisMonthByDay,
		"last_month_kwh":       s.LastMonthKWh,
		"last_month_by_day":    s.LastMonthByDay,
		"ladder_stage":         s.LadderStage,
		"ladder_remaining_kwh": s.LadderRemainingKWh,
		"ladder_tariff":        s.LadderTariff,
		"ladder_start_date":    s.LadderStartDate,
	}
}

// Snapshots is one cycle's output: account snapshots keyed by account
// number.
type Snapshots map[string]AccountSnapshot
