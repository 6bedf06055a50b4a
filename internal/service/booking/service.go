package booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/salonflow/salon-api/internal/model"
	"github.com/salonflow/salon-api/internal/repository"
	"github.com/salonflow/salon-api/internal/service/availability"
	apperrors "github.com/salonflow/salon-api/pkg/errors"
	"github.com/salonflow/salon-api/pkg/messaging"
	"github.com/salonflow/salon-api/pkg/metrics"
)

const eventChannel = "appointment.events"

// Service writes reservations. The availability pre-check gives callers
// a fast, friendly error; the storage-level slot uniqueness constraint
// is the actual double-booking guarantee, and its violation surfaces
// here as a conflict.
type Service struct {
	apptRepo    repository.AppointmentRepository
	staffRepo   repository.StaffRepository
	salonRepo   repository.SalonRepository
	serviceRepo repository.ServiceRepository
	availSvc    *availability.Service
	publisher   messaging.Publisher
	metrics     *metrics.Metrics
	nowFn       func() time.Time
}

func NewService(
	apptRepo repository.AppointmentRepository,
	staffRepo repository.StaffRepository,
	salonRepo repository.SalonRepository,
	serviceRepo repository.ServiceRepository,
	availSvc *availability.Service,
	publisher messaging.Publisher,
	m *metrics.Metrics,
) *Service {
	if publisher == nil {
		publisher = messaging.NopPublisher{}
	}
	return &Service{
		apptRepo:    apptRepo,
		staffRepo:   staffRepo,
		salonRepo:   salonRepo,
		serviceRepo: serviceRepo,
		availSvc:    availSvc,
		publisher:   publisher,
		metrics:     m,
		nowFn:       time.Now,
	}
}

// SetNowFunc overrides the clock; used by tests and nowhere else.
func (s *Service) SetNowFunc(fn func() time.Time) {
	s.nowFn = fn
}

// Book reserves a slot. The insert either fully completes or fully
// fails; a uniqueness violation means another booking won the slot and
// is reported as a conflict, never retried with the same slot.
func (s *Service) Book(ctx context.Context, req *model.BookAppointmentRequest) (*model.Appointment, error) {
	salonID, staffID, serviceID, err := parseBookingIDs(req)
	if err != nil {
		return nil, err
	}

	if req.ClientID == nil && (req.GuestName == "" || req.GuestPhone == "") {
		return nil, apperrors.Validation("client_id or guest name and phone required", nil)
	}

	salon, err := s.salonRepo.Get(ctx, salonID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("salon", err)
		}
		return nil, apperrors.Internal(err)
	}

	staff, err := s.staffRepo.Get(ctx, staffID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("staff", err)
		}
		return nil, apperrors.Internal(err)
	}
	if staff.SalonID != salonID {
		return nil, apperrors.Validation("staff does not belong to this salon", nil)
	}

	service, err := s.serviceRepo.Get(ctx, serviceID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("service", err)
		}
		return nil, apperrors.Internal(err)
	}

	offers, err := s.staffRepo.OffersService(ctx, staffID, serviceID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	if !offers {
		return nil, apperrors.Validation("service not offered by this staff member", nil)
	}

	date, err := s.availSvc.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	startMin, err := model.ParseClock(req.Time)
	if err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}

	// Advisory pre-check, racing bookings slip past it; the unique
	// index below is the arbiter.
	ok, err := s.availSvc.IsAvailable(ctx, staffID, date, startMin, service.Duration, nil)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.Closed("requested time is not available")
	}

	loc := s.availSvc.Location()
	start := time.Date(date.Year(), date.Month(), date.Day(), startMin/60, startMin%60, 0, 0, loc)

	status := model.AppointmentStatusPending
	if salon.AutoConfirm {
		status = model.AppointmentStatusConfirmed
	}

	apt := &model.Appointment{
		SalonID:       salonID,
		StaffID:       staffID,
		ServiceID:     serviceID,
		ClientID:      req.ClientID,
		GuestName:     req.GuestName,
		GuestEmail:    req.GuestEmail,
		GuestPhone:    req.GuestPhone,
		StartTime:     start,
		EndTime:       start.Add(time.Duration(service.Duration) * time.Minute),
		Status:        status,
		PaymentStatus: model.PaymentStatusUnpaid,
		Notes:         req.Notes,
	}

	if err := s.apptRepo.Create(ctx, apt); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlot) {
			if s.metrics != nil {
				s.metrics.BookingConflicts.Inc()
			}
			return nil, apperrors.Conflict("slot no longer available", err)
		}
		return nil, apperrors.Internal(err)
	}

	if s.metrics != nil {
		s.metrics.BookingsCreated.Inc()
	}
	s.publish(ctx, "appointment.created", apt)

	return apt, nil
}

func parseBookingIDs(req *model.BookAppointmentRequest) (salonID, staffID, serviceID uuid.UUID, err error) {
	salonID, err = uuid.Parse(req.SalonID)
	if err != nil {
		return salonID, staffID, serviceID, apperrors.Validation("invalid salon id", err)
	}
	staffID, err = uuid.Parse(req.StaffID)
	if err != nil {
		return salonID, staffID, serviceID, apperrors.Validation("invalid staff id", err)
	}
	serviceID, err = uuid.Parse(req.ServiceID)
	if err != nil {
		return salonID, staffID, serviceID, apperrors.Validation("invalid service id", err)
	}
	return salonID, staffID, serviceID, nil
}

func (s *Service) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	apt, err := s.apptRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, apperrors.Internal(err)
	}
	return apt, nil
}

func (s *Service) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	appointments, err := s.apptRepo.List(ctx, filters)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return appointments, nil
}

// Reschedule moves an appointment to a new slot, checking availability
// with the appointment's own row excluded from the overlap set.
func (s *Service) Reschedule(ctx context.Context, id uuid.UUID, req *model.RescheduleAppointmentRequest) (*model.Appointment, error) {
	apt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if apt.Status.IsTerminal() {
		return nil, apperrors.Validation(fmt.Sprintf("cannot reschedule a %s appointment", apt.Status), nil)
	}

	service, err := s.serviceRepo.Get(ctx, apt.ServiceID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	date, err := s.availSvc.ParseDate(req.Date)
	if err != nil {
		return nil, err
	}
	startMin, err := model.ParseClock(req.Time)
	if err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}

	ok, err := s.availSvc.IsAvailable(ctx, apt.StaffID, date, startMin, service.Duration, &apt.ID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, apperrors.Closed("requested time is not available")
	}

	loc := s.availSvc.Location()
	start := time.Date(date.Year(), date.Month(), date.Day(), startMin/60, startMin%60, 0, 0, loc)
	apt.StartTime = start
	apt.EndTime = start.Add(time.Duration(service.Duration) * time.Minute)

	if err := s.apptRepo.Update(ctx, apt); err != nil {
		if errors.Is(err, repository.ErrDuplicateSlot) {
			if s.metrics != nil {
				s.metrics.BookingConflicts.Inc()
			}
			return nil, apperrors.Conflict("slot no longer available", err)
		}
		return nil, apperrors.Internal(err)
	}

	s.publish(ctx, "appointment.rescheduled", apt)
	return apt, nil
}

func (s *Service) Confirm(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.transition(ctx, id, model.AppointmentStatusConfirmed, nil)
}

func (s *Service) Start(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.transition(ctx, id, model.AppointmentStatusInProgress, nil)
}

func (s *Service) Complete(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.transition(ctx, id, model.AppointmentStatusCompleted, nil)
}

func (s *Service) Cancel(ctx context.Context, id uuid.UUID, reason string) (*model.Appointment, error) {
	return s.transition(ctx, id, model.AppointmentStatusCancelled, &reason)
}

func (s *Service) MarkNoShow(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	return s.transition(ctx, id, model.AppointmentStatusNoShow, nil)
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, to model.AppointmentStatus, cancelReason *string) (*model.Appointment, error) {
	apt, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if !model.CanTransition(apt.Status, to) {
		return nil, apperrors.Validation(
			fmt.Sprintf("cannot move appointment from %s to %s", apt.Status, to), nil)
	}

	if err := s.apptRepo.UpdateStatus(ctx, id, to, cancelReason); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("appointment", err)
		}
		return nil, apperrors.Internal(err)
	}

	apt.Status = to
	apt.CancelReason = cancelReason
	if s.metrics != nil {
		s.metrics.StatusChanges.WithLabelValues(string(to)).Inc()
	}
	s.publish(ctx, "appointment."+string(to), apt)

	return apt, nil
}

// ExpireOverdue sweeps confirmed and in-progress appointments whose
// window has passed into completed. Triggered by an external scheduler.
func (s *Service) ExpireOverdue(ctx context.Context) (int64, error) {
	swept, err := s.apptRepo.ExpireFinished(ctx, s.nowFn())
	if err != nil {
		return 0, fmt.Errorf("failed to expire appointments: %w", err)
	}
	if s.metrics != nil && swept > 0 {
		s.metrics.BookingsExpired.Add(float64(swept))
	}
	return swept, nil
}

func (s *Service) publish(ctx context.Context, eventType string, apt *model.Appointment) {
	// Event delivery is best effort; booking state is already durable.
	_ = s.publisher.Publish(ctx, eventChannel, messaging.Event{
		Type:          eventType,
		AppointmentID: apt.ID.String(),
		SalonID:       apt.SalonID.String(),
		StaffID:       apt.StaffID.String(),
		Payload:       apt,
	})
}
