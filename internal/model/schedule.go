package model

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Weekday names as stored in working_hours and weekly break day sets.
// Kept as lowercase strings at the storage boundary and validated on input.
type Weekday string

const (
	Monday    Weekday = "monday"
	Tuesday   Weekday = "tuesday"
	Wednesday Weekday = "wednesday"
	Thursday  Weekday = "thursday"
	Friday    Weekday = "friday"
	Saturday  Weekday = "saturday"
	Sunday    Weekday = "sunday"
)

var weekdayNames = map[time.Weekday]Weekday{
	time.Monday:    Monday,
	time.Tuesday:   Tuesday,
	time.Wednesday: Wednesday,
	time.Thursday:  Thursday,
	time.Friday:    Friday,
	time.Saturday:  Saturday,
	time.Sunday:    Sunday,
}

var validWeekdays = map[Weekday]bool{
	Monday: true, Tuesday: true, Wednesday: true, Thursday: true,
	Friday: true, Saturday: true, Sunday: true,
}

// WeekdayOf maps a calendar date to its weekday name.
func WeekdayOf(date time.Time) Weekday {
	return weekdayNames[date.Weekday()]
}

// ParseWeekday validates a weekday name received at the API boundary.
func ParseWeekday(s string) (Weekday, error) {
	d := Weekday(s)
	if !validWeekdays[d] {
		return "", fmt.Errorf("invalid weekday %q", s)
	}
	return d, nil
}

const (
	dateLayoutISO     = "2006-01-02"
	dateLayoutDisplay = "02.01.2006"
	clockLayout       = "15:04"
)

// ParseDate accepts a date in ISO (2006-01-02) or display (02.01.2006)
// form and normalizes it to a midnight time.Time in loc. ISO is the
// canonical internal form; the display form exists for legacy clients.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(dateLayoutISO, s, loc)
	if err == nil {
		return t, nil
	}
	t, err = time.ParseInLocation(dateLayoutDisplay, s, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: want YYYY-MM-DD or DD.MM.YYYY", s)
	}
	return t, nil
}

// FormatDate emits the canonical ISO form.
func FormatDate(t time.Time) string {
	return t.Format(dateLayoutISO)
}

// ParseClock converts "HH:MM" to minutes after midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse(clockLayout, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: want HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock converts minutes after midnight back to "HH:MM".
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// SameDate reports whether two times fall on the same calendar date.
func SameDate(a, b time.Time) bool {
	return a.Year() == b.Year() && a.YearDay() == b.YearDay()
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect. Touching intervals do not overlap.
func Overlaps(aStart, aEnd, bStart, bEnd int) bool {
	return aStart < bEnd && aEnd > bStart
}

// WorkingHours is the template entry for one weekday of one owner.
// A missing row for a weekday means the owner is closed that day.
type WorkingHours struct {
	ID        uuid.UUID `db:"id" json:"id"`
	OwnerType OwnerType `db:"owner_type" json:"owner_type"`
	OwnerID   uuid.UUID `db:"owner_id" json:"owner_id"`
	Weekday   Weekday   `db:"weekday" json:"weekday"`
	OpensAt   string    `db:"opens_at" json:"opens_at"`
	ClosesAt  string    `db:"closes_at" json:"closes_at"`
	IsOpen    bool      `db:"is_open" json:"is_open"`
}

// OpenInterval is an owner's open window for a date, in minutes of day.
type OpenInterval struct {
	Start int
	End   int
}

// Interval returns the open window in minutes of day, or ok=false when
// the entry is closed or malformed.
func (w *WorkingHours) Interval() (OpenInterval, bool) {
	if w == nil || !w.IsOpen {
		return OpenInterval{}, false
	}
	start, err := ParseClock(w.OpensAt)
	if err != nil {
		return OpenInterval{}, false
	}
	end, err := ParseClock(w.ClosesAt)
	if err != nil {
		return OpenInterval{}, false
	}
	if start >= end {
		return OpenInterval{}, false
	}
	return OpenInterval{Start: start, End: end}, true
}

// Intersect narrows the interval to the part shared with other.
// ok=false when the windows do not intersect.
func (iv OpenInterval) Intersect(other OpenInterval) (OpenInterval, bool) {
	start := iv.Start
	if other.Start > start {
		start = other.Start
	}
	end := iv.End
	if other.End < end {
		end = other.End
	}
	if start >= end {
		return OpenInterval{}, false
	}
	return OpenInterval{Start: start, End: end}, true
}

// WeekSchedule indexes an owner's working hours by weekday.
type WeekSchedule map[Weekday]*WorkingHours

// NewWeekSchedule builds the weekday index, last entry wins per day.
func NewWeekSchedule(rows []*WorkingHours) WeekSchedule {
	ws := make(WeekSchedule, len(rows))
	for _, row := range rows {
		ws[row.Weekday] = row
	}
	return ws
}

// IntervalFor resolves the open interval for a date's weekday.
func (ws WeekSchedule) IntervalFor(date time.Time) (OpenInterval, bool) {
	return ws[WeekdayOf(date)].Interval()
}

// UpsertWorkingHoursRequest replaces one weekday entry of an owner's template.
type UpsertWorkingHoursRequest struct {
	Weekday  string `json:"weekday" validate:"required"`
	OpensAt  string `json:"opens_at" validate:"required"`
	ClosesAt string `json:"closes_at" validate:"required"`
	IsOpen   bool   `json:"is_open"`
}
