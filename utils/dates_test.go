package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestAddMonthsClamped(t *testing.T) {
	tests := []struct {
		name   string
		start  time.Time
		months int
		day    int
		want   time.Time
	}{
		{"plain month", date(2025, time.January, 15), 1, 15, date(2025, time.February, 15)},
		{"clamps to feb", date(2025, time.January, 31), 1, 31, date(2025, time.February, 28)},
		{"leap february", date(2024, time.January, 31), 1, 31, date(2024, time.February, 29)},
		{"recovers after short month", date(2025, time.January, 31), 2, 31, date(2025, time.March, 31)},
		{"thirty day month", date(2025, time.March, 31), 1, 31, date(2025, time.April, 30)},
		{"year rollover", date(2025, time.November, 5), 3, 5, date(2026, time.February, 5)},
		{"day floor", date(2025, time.June, 10), 1, 0, date(2025, time.July, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, AddMonthsClamped(tt.start, tt.months, tt.day))
		})
	}
}

func TestDaysInMonth(t *testing.T) {
	assert.Equal(t, 31, DaysInMonth(date(2025, time.January, 10)))
	assert.Equal(t, 28, DaysInMonth(date(2025, time.February, 1)))
	assert.Equal(t, 29, DaysInMonth(date(2024, time.February, 1)))
	assert.Equal(t, 30, DaysInMonth(date(2025, time.April, 30)))
}

func TestDaysBetween(t *testing.T) {
	assert.Equal(t, 0, DaysBetween(date(2025, time.May, 1), date(2025, time.May, 1)))
	assert.Equal(t, 9, DaysBetween(date(2025, time.May, 1), date(2025, time.May, 10)))
	assert.Equal(t, -3, DaysBetween(date(2025, time.May, 10), date(2025, time.May, 7)))

	// time-of-day is ignored
	morning := time.Date(2025, 5, 1, 8, 0, 0, 0, time.UTC)
	night := time.Date(2025, 5, 2, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, 1, DaysBetween(morning, night))
}

func TestBoundaries(t *testing.T) {
	at := time.Date(2025, 8, 17, 14, 35, 12, 0, time.UTC)
	assert.Equal(t, date(2025, time.August, 17), BeginningOfDay(at))
	assert.Equal(t, date(2025, time.August, 1), BeginningOfMonth(at))
	assert.Equal(t, time.Date(2025, 8, 17, 23, 59, 59, 0, time.UTC), EndOfDay(at))
}
