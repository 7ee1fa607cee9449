package model

import (
	"encoding/json"
	"time"

	"github.com/rotisserie/eris"
)

const dateLayout = "2006-01-02"

// Date is a calendar day without a time-of-day component. The provider
// reports all series dates in Asia/Shanghai; we keep them as plain days and
// never do timezone math on them.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// NewDate builds a Date from its components.
func NewDate(year int, month time.Month, day int) Date {
	return Date{Year: year, Month: month, Day: day}
}

// DateOf truncates a time.Time to its calendar day.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// ParseDate parses a provider date string (YYYY-MM-DD).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return Date{}, eris.Wrapf(err, "model: parse date %q", s)
	}
	return DateOf(t), nil
}

func (d Date) String() string {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Format(dateLayout)
}

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a "YYYY-MM-DD" string.
func (d *Date) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return eris.Wrap(err, "model: unmarshal date")
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DailyRecord is one day's usage as reported by either the usage feed or the
// cost feed. The usage feed never populates Cost; the cost feed does.
type DailyRecord struct {
	Date Date     `json:"date" yaml:"date"`
	KWh  float64  `json:"kwh" yaml:"kwh"`
	Cost *float64 `json:"cost,omitempty" yaml:"cost,omitempty"`
}

// DailySeries is one calendar month of daily records in ascending date
// order. Order is load-bearing: the last element is read as the most recent
// day with data, and the reconciliation merge aligns two series by position
// assuming both start on day 1.
type DailySeries []DailyRecord

// Latest returns the most recent record, i.e. the last element.
func (s DailySeries) Latest() (DailyRecord, bool) {
	if len(s) == 0 {
		return DailyRecord{}, false
	}
	return s[len(s)-1], true
}

// MonthlyRecord is one month's usage and cost within a year aggregate.
type MonthlyRecord struct {
	Year  int        `json:"year" yaml:"year"`
	Month time.Month `json:"month" yaml:"month"`
	KWh   float64    `json:"kwh" yaml:"kwh"`
	Cost  float64    `json:"cost" yaml:"cost"`
}

// YearMonth identifies a calendar month for a detail query.
type YearMonth struct {
	Year  int
	Month time.Month
}

// Prev returns the calendar month before ym, crossing the year boundary
// when ym is January.
func (ym YearMonth) Prev() YearMonth {
	if ym.Month == time.January {
		return YearMonth{Year: ym.Year - 1, Month: time.December}
	}
	return YearMonth{Year: ym.Year, Month: ym.Month - 1}
}
