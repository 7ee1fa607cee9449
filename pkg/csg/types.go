package csg

import (
	"github.com/gridpulse/csgstat/internal/model"
)

// Account identifies one electricity account at the provider. All three
// identifiers come from the account-linking flow and are opaque to the
// engine.
type Account struct {
	Number        string `json:"number" yaml:"number" mapstructure:"number"`
	MeteringPoint string `json:"metering_point" yaml:"metering_point" mapstructure:"metering_point"`
	AreaCode      string `json:"area_code" yaml:"area_code" mapstructure:"area_code"`
}

// BalanceResult is the response of the balance/arrears query.
type BalanceResult struct {
	Balance float64
	Arrears float64
}

// YearStats aggregates one calendar year: totals plus a per-month series.
type YearStats struct {
	TotalCost float64
	TotalKWh  float64
	ByMonth   []model.MonthlyRecord
}

// MonthUsage is the usage feed's view of one calendar month. Records never
// carry cost.
type MonthUsage struct {
	TotalKWh float64
	ByDay    model.DailySeries
}

// Ladder is the current tiered-pricing bracket as reported by the cost
// feed. The call can succeed with individual fields null, so all of them
// are pointers.
type Ladder struct {
	Stage        *int
	RemainingKWh *float64
	Tariff       *float64
	StartDate    *model.Date
}

// MonthCost is the cost feed's view of one calendar month: totals, the
// current ladder bracket, and a per-day series whose records carry cost.
type MonthCost struct {
	TotalCost float64
	TotalKWh  float64
	Ladder    *Ladder
	ByDay     model.DailySeries
}
