package repository

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/salonflow/salon-api/internal/model"
)

// ErrDuplicateSlot is returned by AppointmentRepository.Create when the
// storage-level slot uniqueness constraint rejects the insert. It is the
// authoritative double-booking signal; availability pre-checks are advisory.
var ErrDuplicateSlot = errors.New("slot already booked")

// ErrNotFound is returned when a referenced row does not exist.
var ErrNotFound = errors.New("not found")

// All repository interfaces in one file
type (
	SalonRepository interface {
		Create(ctx context.Context, salon *model.Salon) error
		Get(ctx context.Context, id uuid.UUID) (*model.Salon, error)
		Update(ctx context.Context, salon *model.Salon) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context) ([]*model.Salon, error)
	}

	StaffRepository interface {
		Create(ctx context.Context, staff *model.Staff) error
		Get(ctx context.Context, id uuid.UUID) (*model.Staff, error)
		Update(ctx context.Context, staff *model.Staff) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListBySalon(ctx context.Context, salonID uuid.UUID) ([]*model.Staff, error)
		ListActiveBySalon(ctx context.Context, salonID uuid.UUID) ([]*model.Staff, error)
		AssignService(ctx context.Context, staffID, serviceID uuid.UUID) error
		UnassignService(ctx context.Context, staffID, serviceID uuid.UUID) error
		OffersService(ctx context.Context, staffID, serviceID uuid.UUID) (bool, error)
	}

	ServiceRepository interface {
		Create(ctx context.Context, service *model.Service) error
		Get(ctx context.Context, id uuid.UUID) (*model.Service, error)
		Update(ctx context.Context, service *model.Service) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListBySalon(ctx context.Context, salonID uuid.UUID) ([]*model.Service, error)
	}

	// ScheduleRepository serves working-hours templates, breaks and
	// vacations for either owner type.
	ScheduleRepository interface {
		GetWorkingHours(ctx context.Context, ownerType model.OwnerType, ownerID uuid.UUID) ([]*model.WorkingHours, error)
		UpsertWorkingHours(ctx context.Context, wh *model.WorkingHours) error
		DeleteWorkingHours(ctx context.Context, ownerType model.OwnerType, ownerID uuid.UUID, weekday model.Weekday) error

		CreateBreak(ctx context.Context, br *model.Break) error
		UpdateBreak(ctx context.Context, br *model.Break) error
		DeleteBreak(ctx context.Context, id uuid.UUID) error
		GetBreak(ctx context.Context, id uuid.UUID) (*model.Break, error)
		ListBreaks(ctx context.Context, ownerType model.OwnerType, ownerID uuid.UUID) ([]*model.Break, error)
		ListActiveBreaks(ctx context.Context, ownerType model.OwnerType, ownerID uuid.UUID) ([]*model.Break, error)

		CreateVacation(ctx context.Context, v *model.Vacation) error
		UpdateVacation(ctx context.Context, v *model.Vacation) error
		DeleteVacation(ctx context.Context, id uuid.UUID) error
		GetVacation(ctx context.Context, id uuid.UUID) (*model.Vacation, error)
		ListVacations(ctx context.Context, ownerType model.OwnerType, ownerID uuid.UUID) ([]*model.Vacation, error)
		ListActiveVacations(ctx context.Context, ownerType model.OwnerType, ownerID uuid.UUID) ([]*model.Vacation, error)
	}

	AppointmentRepository interface {
		Create(ctx context.Context, appointment *model.Appointment) error
		Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error)
		Update(ctx context.Context, appointment *model.Appointment) error
		UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, cancelReason *string) error
		List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error)
		ListForStaffDay(ctx context.Context, staffID uuid.UUID, dayStart, dayEnd time.Time) ([]*model.Appointment, error)
		HasOverlap(ctx context.Context, staffID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error)
		ExpireFinished(ctx context.Context, now time.Time) (int64, error)
	}
)
