package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDate(t *testing.T) {
	loc := time.UTC

	iso, err := ParseDate("2026-03-15", loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, loc), iso)

	display, err := ParseDate("15.03.2026", loc)
	require.NoError(t, err)
	assert.Equal(t, iso, display)

	_, err = ParseDate("15/03/2026", loc)
	assert.Error(t, err)

	_, err = ParseDate("", loc)
	assert.Error(t, err)

	_, err = ParseDate("2026-13-40", loc)
	assert.Error(t, err)
}

func TestParseClock(t *testing.T) {
	min, err := ParseClock("09:30")
	require.NoError(t, err)
	assert.Equal(t, 570, min)

	min, err = ParseClock("00:00")
	require.NoError(t, err)
	assert.Equal(t, 0, min)

	min, err = ParseClock("23:59")
	require.NoError(t, err)
	assert.Equal(t, 1439, min)

	_, err = ParseClock("9:30am")
	assert.Error(t, err)

	_, err = ParseClock("25:00")
	assert.Error(t, err)
}

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "09:30", FormatClock(570))
	assert.Equal(t, "00:00", FormatClock(0))
	assert.Equal(t, "16:30", FormatClock(990))
}

func TestParseWeekday(t *testing.T) {
	d, err := ParseWeekday("monday")
	require.NoError(t, err)
	assert.Equal(t, Monday, d)

	_, err = ParseWeekday("Monday")
	assert.Error(t, err)

	_, err = ParseWeekday("someday")
	assert.Error(t, err)
}

func TestWeekdayOf(t *testing.T) {
	// 2026-03-16 is a Monday.
	assert.Equal(t, Monday, WeekdayOf(time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)))
	assert.Equal(t, Sunday, WeekdayOf(time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)))
}

func TestOverlaps(t *testing.T) {
	tests := []struct {
		name                           string
		aStart, aEnd, bStart, bEnd     int
		want                           bool
	}{
		{"disjoint before", 60, 120, 180, 240, false},
		{"disjoint after", 180, 240, 60, 120, false},
		{"touching end to start", 60, 120, 120, 180, false},
		{"touching start to end", 120, 180, 60, 120, false},
		{"partial overlap", 60, 130, 120, 180, true},
		{"contained", 120, 150, 60, 240, true},
		{"containing", 60, 240, 120, 150, true},
		{"identical", 60, 120, 60, 120, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Overlaps(tt.aStart, tt.aEnd, tt.bStart, tt.bEnd))
		})
	}
}

func TestWorkingHoursInterval(t *testing.T) {
	wh := &WorkingHours{Weekday: Monday, OpensAt: "09:00", ClosesAt: "17:00", IsOpen: true}
	iv, ok := wh.Interval()
	require.True(t, ok)
	assert.Equal(t, OpenInterval{Start: 540, End: 1020}, iv)

	closed := &WorkingHours{Weekday: Monday, OpensAt: "09:00", ClosesAt: "17:00", IsOpen: false}
	_, ok = closed.Interval()
	assert.False(t, ok)

	inverted := &WorkingHours{Weekday: Monday, OpensAt: "17:00", ClosesAt: "09:00", IsOpen: true}
	_, ok = inverted.Interval()
	assert.False(t, ok)

	var missing *WorkingHours
	_, ok = missing.Interval()
	assert.False(t, ok)
}

func TestOpenIntervalIntersect(t *testing.T) {
	staff := OpenInterval{Start: 540, End: 1020}  // 09:00-17:00
	salon := OpenInterval{Start: 480, End: 720}   // 08:00-12:00

	iv, ok := staff.Intersect(salon)
	require.True(t, ok)
	assert.Equal(t, OpenInterval{Start: 540, End: 720}, iv)

	disjoint := OpenInterval{Start: 1080, End: 1200}
	_, ok = staff.Intersect(disjoint)
	assert.False(t, ok)

	touching := OpenInterval{Start: 1020, End: 1200}
	_, ok = staff.Intersect(touching)
	assert.False(t, ok)
}

func TestWeekScheduleIntervalFor(t *testing.T) {
	ws := NewWeekSchedule([]*WorkingHours{
		{Weekday: Monday, OpensAt: "09:00", ClosesAt: "17:00", IsOpen: true},
		{Weekday: Tuesday, OpensAt: "09:00", ClosesAt: "17:00", IsOpen: false},
	})

	monday := time.Date(2026, 3, 16, 0, 0, 0, 0, time.UTC)
	iv, ok := ws.IntervalFor(monday)
	require.True(t, ok)
	assert.Equal(t, 540, iv.Start)

	tuesday := monday.AddDate(0, 0, 1)
	_, ok = ws.IntervalFor(tuesday)
	assert.False(t, ok, "explicitly closed day")

	wednesday := monday.AddDate(0, 0, 2)
	_, ok = ws.IntervalFor(wednesday)
	assert.False(t, ok, "missing day means closed")
}
