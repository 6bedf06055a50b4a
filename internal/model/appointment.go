package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusPending    AppointmentStatus = "pending"
	AppointmentStatusConfirmed  AppointmentStatus = "confirmed"
	AppointmentStatusInProgress AppointmentStatus = "in_progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"
	AppointmentStatusNoShow     AppointmentStatus = "no_show"
)

// ActiveStatuses count toward double-booking prevention and are the
// scope of the storage-level slot uniqueness constraint.
var ActiveStatuses = []AppointmentStatus{
	AppointmentStatusPending,
	AppointmentStatusConfirmed,
	AppointmentStatusInProgress,
}

// statusTransitions encodes the appointment lifecycle. Completed,
// cancelled and no_show are terminal.
var statusTransitions = map[AppointmentStatus][]AppointmentStatus{
	AppointmentStatusPending: {
		AppointmentStatusConfirmed,
		AppointmentStatusCancelled,
		AppointmentStatusNoShow,
	},
	AppointmentStatusConfirmed: {
		AppointmentStatusInProgress,
		AppointmentStatusCompleted,
		AppointmentStatusCancelled,
		AppointmentStatusNoShow,
	},
	AppointmentStatusInProgress: {
		AppointmentStatusCompleted,
	},
}

// CanTransition reports whether the status machine allows from → to.
func CanTransition(from, to AppointmentStatus) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

func (s AppointmentStatus) IsActive() bool {
	for _, a := range ActiveStatuses {
		if s == a {
			return true
		}
	}
	return false
}

func (s AppointmentStatus) IsTerminal() bool {
	return s == AppointmentStatusCompleted ||
		s == AppointmentStatusCancelled ||
		s == AppointmentStatusNoShow
}

type PaymentStatus string

const (
	PaymentStatusUnpaid PaymentStatus = "unpaid"
	PaymentStatusPaid   PaymentStatus = "paid"
)

type Appointment struct {
	Base
	SalonID       uuid.UUID         `db:"salon_id" json:"salon_id"`
	StaffID       uuid.UUID         `db:"staff_id" json:"staff_id"`
	ServiceID     uuid.UUID         `db:"service_id" json:"service_id"`
	ClientID      *uuid.UUID        `db:"client_id" json:"client_id,omitempty"`
	GuestName     string            `db:"guest_name" json:"guest_name,omitempty"`
	GuestEmail    string            `db:"guest_email" json:"guest_email,omitempty"`
	GuestPhone    string            `db:"guest_phone" json:"guest_phone,omitempty"`
	StartTime     time.Time         `db:"start_time" json:"start_time"`
	EndTime       time.Time         `db:"end_time" json:"end_time"`
	Status        AppointmentStatus `db:"status" json:"status"`
	PaymentStatus PaymentStatus     `db:"payment_status" json:"payment_status"`
	Notes         string            `db:"notes" json:"notes,omitempty"`
	CancelReason  *string           `db:"cancel_reason" json:"cancel_reason,omitempty"`
}

// WindowPassed reports whether the appointment's booked window has ended.
func (a *Appointment) WindowPassed(now time.Time) bool {
	return !a.EndTime.After(now)
}

// BookAppointmentRequest is the booking input for both authenticated
// clients and guests. Date and Time are textual; Date may arrive in
// ISO (YYYY-MM-DD) or display (DD.MM.YYYY) form.
type BookAppointmentRequest struct {
	SalonID    string     `json:"salon_id" validate:"required,uuid"`
	StaffID    string     `json:"staff_id" validate:"required,uuid"`
	ServiceID  string     `json:"service_id" validate:"required,uuid"`
	ClientID   *uuid.UUID `json:"client_id,omitempty"`
	GuestName  string     `json:"guest_name" validate:"max=200"`
	GuestEmail string     `json:"guest_email" validate:"omitempty,email"`
	GuestPhone string     `json:"guest_phone" validate:"max=30"`
	Date       string     `json:"date" validate:"required"`
	Time       string     `json:"time" validate:"required"`
	Notes      string     `json:"notes" validate:"max=1000"`
}

type RescheduleAppointmentRequest struct {
	Date string `json:"date" validate:"required"`
	Time string `json:"time" validate:"required"`
}

type AppointmentFilters struct {
	SalonID   uuid.UUID
	StaffID   uuid.UUID
	ClientID  uuid.UUID
	Status    AppointmentStatus
	StartDate time.Time
	EndDate   time.Time
}

// DayAvailability is one entry of the staff-facing calendar view.
type DayAvailability struct {
	IsWorking     bool `json:"is_working"`
	IsOnVacation  bool `json:"is_on_vacation"`
	IsSalonClosed bool `json:"is_salon_closed"`
	IsAvailable   bool `json:"is_available"`
}
