package financas

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(y int, m time.Month, d, hh, mm, ss int) time.Time {
	return time.Date(y, m, d, hh, mm, ss, 0, time.Local)
}

func TestWindowFor_Biweekly(t *testing.T) {
	tests := []struct {
		name      string
		now       time.Time
		wantStart time.Time
		wantEnd   time.Time
	}{
		{
			name:      "first half",
			now:       day(2024, 3, 10, 14, 0, 0),
			wantStart: day(2024, 3, 1, 0, 0, 0),
			wantEnd:   day(2024, 3, 15, 23, 59, 59),
		},
		{
			name:      "fifteenth is still first half",
			now:       day(2024, 3, 15, 23, 0, 0),
			wantStart: day(2024, 3, 1, 0, 0, 0),
			wantEnd:   day(2024, 3, 15, 23, 59, 59),
		},
		{
			name:      "second half",
			now:       day(2024, 3, 20, 8, 0, 0),
			wantStart: day(2024, 3, 16, 0, 0, 0),
			wantEnd:   day(2024, 3, 31, 23, 59, 59),
		},
		{
			name:      "second half of leap february",
			now:       day(2024, 2, 16, 0, 0, 0),
			wantStart: day(2024, 2, 16, 0, 0, 0),
			wantEnd:   day(2024, 2, 29, 23, 59, 59),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := WindowFor(PeriodBiweekly, tt.now)
			assert.True(t, tt.wantStart.Equal(w.Start), "start = %v", w.Start)
			assert.True(t, tt.wantEnd.Equal(w.End), "end = %v", w.End)
		})
	}
}

func TestWindowFor_Week(t *testing.T) {
	wantStart := day(2024, 3, 10, 0, 0, 0)
	wantEnd := day(2024, 3, 16, 23, 59, 59)

	// 2024-03-10 is a Sunday; every day through Saturday maps to the same week
	for d := 10; d <= 16; d++ {
		w := WindowFor(PeriodWeek, day(2024, 3, d, 12, 30, 0))
		assert.True(t, wantStart.Equal(w.Start), "day %d start = %v", d, w.Start)
		assert.True(t, wantEnd.Equal(w.End), "day %d end = %v", d, w.End)
	}

	next := WindowFor(PeriodWeek, day(2024, 3, 17, 0, 0, 0))
	assert.True(t, day(2024, 3, 17, 0, 0, 0).Equal(next.Start))
}

func TestWindowFor_WeekAcrossMonths(t *testing.T) {
	w := WindowFor(PeriodWeek, day(2024, 3, 1, 9, 0, 0)) // Friday
	assert.True(t, day(2024, 2, 25, 0, 0, 0).Equal(w.Start))
	assert.True(t, day(2024, 3, 2, 23, 59, 59).Equal(w.End))
}

func TestWindowFor_Month(t *testing.T) {
	w := WindowFor(PeriodMonth, day(2024, 4, 18, 9, 0, 0))
	assert.True(t, day(2024, 4, 1, 0, 0, 0).Equal(w.Start))
	assert.True(t, day(2024, 4, 30, 23, 59, 59).Equal(w.End))

	dec := WindowFor(PeriodMonth, day(2023, 12, 31, 23, 0, 0))
	assert.True(t, day(2023, 12, 31, 23, 59, 59).Equal(dec.End))
}

func TestWindowFor_UnknownKindIsMonth(t *testing.T) {
	now := day(2024, 3, 10, 0, 0, 0)
	assert.Equal(t, WindowFor(PeriodMonth, now), WindowFor(PeriodKind("quarter"), now))
}

func TestWindow_Contains(t *testing.T) {
	w := WindowFor(PeriodBiweekly, day(2024, 3, 10, 0, 0, 0))
	assert.True(t, w.Contains(day(2024, 3, 1, 0, 0, 0)))
	assert.True(t, w.Contains(day(2024, 3, 15, 23, 59, 59)))
	assert.False(t, w.Contains(day(2024, 3, 16, 0, 0, 0)))
}

func TestWindow_UpcomingDays(t *testing.T) {
	w := WindowFor(PeriodMonth, day(2024, 3, 1, 0, 0, 0))
	assert.Equal(t, 31, w.UpcomingDays(day(2024, 3, 1, 0, 0, 0)))
	assert.Equal(t, 7, w.UpcomingDays(day(2024, 3, 29, 0, 0, 0)))
}

func TestParsePeriodKind(t *testing.T) {
	k, ok := ParsePeriodKind("biweekly")
	assert.True(t, ok)
	assert.Equal(t, PeriodBiweekly, k)

	_, ok = ParsePeriodKind("year")
	assert.False(t, ok)
}
