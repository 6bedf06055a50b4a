package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

type BreakKind string

const (
	BreakDaily        BreakKind = "daily"
	BreakWeekly       BreakKind = "weekly"
	BreakSpecificDate BreakKind = "specific_date"
	BreakDateRange    BreakKind = "date_range"
)

// Break is a recurring or bounded exclusion window within a day.
// Which dates it applies to depends on Kind; the time window never
// spans midnight.
type Break struct {
	Base
	OwnerType OwnerType      `db:"owner_type" json:"owner_type"`
	OwnerID   uuid.UUID      `db:"owner_id" json:"owner_id"`
	Title     string         `db:"title" json:"title"`
	Kind      BreakKind      `db:"kind" json:"kind"`
	StartsAt  string         `db:"starts_at" json:"starts_at"`
	EndsAt    string         `db:"ends_at" json:"ends_at"`
	Days      pq.StringArray `db:"days" json:"days,omitempty"`
	Date      *time.Time     `db:"date" json:"date,omitempty"`
	StartDate *time.Time     `db:"start_date" json:"start_date,omitempty"`
	EndDate   *time.Time     `db:"end_date" json:"end_date,omitempty"`
	IsActive  bool           `db:"is_active" json:"is_active"`
}

// AppliesTo reports whether the break is in effect on the given date.
func (b *Break) AppliesTo(date time.Time) bool {
	if !b.IsActive {
		return false
	}
	switch b.Kind {
	case BreakDaily:
		return true
	case BreakWeekly:
		day := string(WeekdayOf(date))
		for _, d := range b.Days {
			if d == day {
				return true
			}
		}
		return false
	case BreakSpecificDate:
		return b.Date != nil && SameDate(*b.Date, date)
	case BreakDateRange:
		if b.StartDate == nil || b.EndDate == nil {
			return false
		}
		return !date.Before(truncateDay(*b.StartDate)) && !date.After(endOfDay(*b.EndDate))
	}
	return false
}

// Blocks reports whether the break removes the candidate window
// [startMin, endMin) on the given date.
func (b *Break) Blocks(date time.Time, startMin, endMin int) bool {
	if !b.AppliesTo(date) {
		return false
	}
	bStart, err := ParseClock(b.StartsAt)
	if err != nil {
		return false
	}
	bEnd, err := ParseClock(b.EndsAt)
	if err != nil {
		return false
	}
	return Overlaps(startMin, endMin, bStart, bEnd)
}

type VacationCategory string

const (
	VacationRegular  VacationCategory = "vacation"
	VacationSick     VacationCategory = "sick_leave"
	VacationPersonal VacationCategory = "personal"
	VacationOther    VacationCategory = "other"
)

// Vacation blocks whole days in [StartDate, EndDate], both inclusive.
type Vacation struct {
	Base
	OwnerType OwnerType        `db:"owner_type" json:"owner_type"`
	OwnerID   uuid.UUID        `db:"owner_id" json:"owner_id"`
	Title     string           `db:"title" json:"title"`
	StartDate time.Time        `db:"start_date" json:"start_date"`
	EndDate   time.Time        `db:"end_date" json:"end_date"`
	Category  VacationCategory `db:"category" json:"category"`
	IsActive  bool             `db:"is_active" json:"is_active"`
}

// Covers reports whether the date falls inside the vacation.
func (v *Vacation) Covers(date time.Time) bool {
	if !v.IsActive {
		return false
	}
	return !date.Before(truncateDay(v.StartDate)) && !date.After(endOfDay(v.EndDate))
}

func truncateDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

func endOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}

// Exclusions bundles one owner's active breaks and vacations.
type Exclusions struct {
	Breaks    []*Break
	Vacations []*Vacation
}

// Blocked reports whether the candidate window [startMin, endMin) on date
// is removed by any exclusion. A covering vacation blocks the whole day
// regardless of the time window.
func (e Exclusions) Blocked(date time.Time, startMin, endMin int) bool {
	for _, v := range e.Vacations {
		if v.Covers(date) {
			return true
		}
	}
	for _, b := range e.Breaks {
		if b.Blocks(date, startMin, endMin) {
			return true
		}
	}
	return false
}

// OnVacation reports whether any vacation covers the date.
func (e Exclusions) OnVacation(date time.Time) bool {
	for _, v := range e.Vacations {
		if v.Covers(date) {
			return true
		}
	}
	return false
}

// CreateBreakRequest carries break management input.
type CreateBreakRequest struct {
	Title     string   `json:"title" validate:"required,max=200"`
	Kind      string   `json:"kind" validate:"required,oneof=daily weekly specific_date date_range"`
	StartsAt  string   `json:"starts_at" validate:"required"`
	EndsAt    string   `json:"ends_at" validate:"required"`
	Days      []string `json:"days,omitempty"`
	Date      string   `json:"date,omitempty"`
	StartDate string   `json:"start_date,omitempty"`
	EndDate   string   `json:"end_date,omitempty"`
	IsActive  *bool    `json:"is_active,omitempty"`
}

// CreateVacationRequest carries vacation management input.
type CreateVacationRequest struct {
	Title     string `json:"title" validate:"required,max=200"`
	StartDate string `json:"start_date" validate:"required"`
	EndDate   string `json:"end_date" validate:"required"`
	Category  string `json:"category" validate:"omitempty,oneof=vacation sick_leave personal other"`
	IsActive  *bool  `json:"is_active,omitempty"`
}
