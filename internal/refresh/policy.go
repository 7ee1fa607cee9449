package refresh

import "time"

// earlyMonthWindow is the day-of-month up to which last-month data is
// still refreshed every cycle. Past it the provider's figures for the
// closed month no longer move.
const earlyMonthWindow = 5

// Decision says which historical queries this cycle should re-issue.
// Fields left false are marked unchanged in the snapshot instead of being
// fetched.
type Decision struct {
	LastMonth bool
	LastYear  bool
}

// Decide applies the low-frequency cache policy for historical data:
//
//   - first cycle ever: fetch everything, there is nothing to fall back on
//     (and a snapshot must never say unchanged when no prior value exists);
//   - day 1-5 of any month: refresh last month every cycle;
//   - day 1-5 of January: additionally refresh last year, but only on the
//     first cycle of the day; the stored marker equaling today means a
//     cycle already ran today;
//   - any other day: refresh neither.
func Decide(now time.Time, st *State) Decision {
	lastDay, ran := st.LastDay()
	if !ran {
		return Decision{LastMonth: true, LastYear: true}
	}

	var d Decision
	if now.Day() <= earlyMonthWindow {
		d.LastMonth = true
		if now.Month() == time.January && lastDay != now.Day() {
			d.LastYear = true
		}
	}
	return d
}
