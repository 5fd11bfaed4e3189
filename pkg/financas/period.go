package financas

import (
	"math"
	"time"
)

// PeriodKind selects the dashboard's date window
type PeriodKind string

const (
	PeriodWeek     PeriodKind = "week"
	PeriodBiweekly PeriodKind = "biweekly"
	PeriodMonth    PeriodKind = "month"
)

// DefaultPeriod is used when nothing valid is persisted
const DefaultPeriod = PeriodMonth

// minUpcomingDays is the floor for the upcoming-transactions lookahead
const minUpcomingDays = 7

// ParsePeriodKind accepts week, biweekly or month
func ParsePeriodKind(s string) (PeriodKind, bool) {
	switch k := PeriodKind(s); k {
	case PeriodWeek, PeriodBiweekly, PeriodMonth:
		return k, true
	}
	return "", false
}

// Label is the Portuguese name shown next to the window
func (k PeriodKind) Label() string {
	switch k {
	case PeriodWeek:
		return "Semana"
	case PeriodBiweekly:
		return "Quinzena"
	default:
		return "Mês"
	}
}

// Window is a date interval in local calendar time. Both ends are
// inclusive: End is 23:59:59 of the last day.
type Window struct {
	Start time.Time
	End   time.Time
}

// WindowFor computes the window of kind that contains now, in now's location:
//
//	week:     Sunday 00:00:00 through Saturday 23:59:59
//	biweekly: 1st..15th or 16th..last day of the month
//	month:    1st..last day of the month
//
// Unknown kinds fall back to month.
func WindowFor(kind PeriodKind, now time.Time) Window {
	y, m, d := now.Date()
	loc := now.Location()

	switch kind {
	case PeriodWeek:
		start := time.Date(y, m, d-int(now.Weekday()), 0, 0, 0, 0, loc)
		sy, sm, sd := start.Date()
		return Window{
			Start: start,
			End:   time.Date(sy, sm, sd+6, 23, 59, 59, 0, loc),
		}

	case PeriodBiweekly:
		if d <= 15 {
			return Window{
				Start: time.Date(y, m, 1, 0, 0, 0, 0, loc),
				End:   time.Date(y, m, 15, 23, 59, 59, 0, loc),
			}
		}
		return Window{
			Start: time.Date(y, m, 16, 0, 0, 0, 0, loc),
			End:   endOfMonth(y, m, loc),
		}

	default:
		return Window{
			Start: time.Date(y, m, 1, 0, 0, 0, 0, loc),
			End:   endOfMonth(y, m, loc),
		}
	}
}

func endOfMonth(y int, m time.Month, loc *time.Location) time.Time {
	// day 0 of next month is the last day of this one
	return time.Date(y, m+1, 0, 23, 59, 59, 0, loc)
}

// Contains reports whether t falls inside the window, ends included
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && !t.After(w.End)
}

// UpcomingDays is how far ahead to look for upcoming transactions: the
// whole days left until the window closes, never fewer than seven.
func (w Window) UpcomingDays(now time.Time) int {
	days := int(math.Ceil(w.End.Sub(now).Hours() / 24))
	if days < minUpcomingDays {
		return minUpcomingDays
	}
	return days
}
