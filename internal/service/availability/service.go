package availability

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"github.com/salonflow/salon-api/internal/model"
	"github.com/salonflow/salon-api/internal/repository"
	apperrors "github.com/salonflow/salon-api/pkg/errors"
	"github.com/salonflow/salon-api/pkg/metrics"
)

// DefaultSlotInterval is the slot granularity used when none is configured.
const DefaultSlotInterval = 30

// Config tunes the engine.
type Config struct {
	SlotIntervalMinutes int
	LookaheadDays       int
	Location            *time.Location
	ScheduleCacheTTL    time.Duration
}

// Service computes open slots for staff and salons. Reads are pure
// functions of the stored schedule and appointment state; results are
// advisory with respect to concurrent bookings.
type Service struct {
	staffRepo    repository.StaffRepository
	salonRepo    repository.SalonRepository
	serviceRepo  repository.ServiceRepository
	scheduleRepo repository.ScheduleRepository
	apptRepo     repository.AppointmentRepository
	schedules    *cache.Cache
	metrics      *metrics.Metrics
	interval     int
	lookahead    int
	loc          *time.Location
	nowFn        func() time.Time
}

func NewService(
	staffRepo repository.StaffRepository,
	salonRepo repository.SalonRepository,
	serviceRepo repository.ServiceRepository,
	scheduleRepo repository.ScheduleRepository,
	apptRepo repository.AppointmentRepository,
	m *metrics.Metrics,
	cfg Config,
) *Service {
	if cfg.SlotIntervalMinutes <= 0 {
		cfg.SlotIntervalMinutes = DefaultSlotInterval
	}
	if cfg.LookaheadDays <= 0 {
		cfg.LookaheadDays = 30
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.ScheduleCacheTTL <= 0 {
		cfg.ScheduleCacheTTL = time.Minute
	}

	return &Service{
		staffRepo:    staffRepo,
		salonRepo:    salonRepo,
		serviceRepo:  serviceRepo,
		scheduleRepo: scheduleRepo,
		apptRepo:     apptRepo,
		schedules:    cache.New(cfg.ScheduleCacheTTL, 5*time.Minute),
		metrics:      m,
		interval:     cfg.SlotIntervalMinutes,
		lookahead:    cfg.LookaheadDays,
		loc:          cfg.Location,
		nowFn:        time.Now,
	}
}

// SetNowFunc overrides the clock; used by tests and nowhere else.
func (s *Service) SetNowFunc(fn func() time.Time) {
	s.nowFn = fn
}

// Location returns the location "today" is resolved in.
func (s *Service) Location() *time.Location {
	return s.loc
}

// ParseDate normalizes a textual date in either accepted format.
func (s *Service) ParseDate(value string) (time.Time, error) {
	date, err := model.ParseDate(value, s.loc)
	if err != nil {
		return time.Time{}, apperrors.Validation(err.Error(), err)
	}
	return date, nil
}

// ownerSchedule is the per-owner snapshot the engine works on: the
// weekly template plus active exclusions.
type ownerSchedule struct {
	week model.WeekSchedule
	excl model.Exclusions
}

func (s *Service) loadSchedule(ctx context.Context, ownerType model.OwnerType, ownerID uuid.UUID) (*ownerSchedule, error) {
	key := string(ownerType) + ":" + ownerID.String()
	if cached, ok := s.schedules.Get(key); ok {
		return cached.(*ownerSchedule), nil
	}

	hours, err := s.scheduleRepo.GetWorkingHours(ctx, ownerType, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load working hours: %w", err)
	}
	breaks, err := s.scheduleRepo.ListActiveBreaks(ctx, ownerType, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load breaks: %w", err)
	}
	vacations, err := s.scheduleRepo.ListActiveVacations(ctx, ownerType, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to load vacations: %w", err)
	}

	sched := &ownerSchedule{
		week: model.NewWeekSchedule(hours),
		excl: model.Exclusions{Breaks: breaks, Vacations: vacations},
	}
	s.schedules.SetDefault(key, sched)
	return sched, nil
}

// resolveOpenInterval merges the staff template with the salon's
// operating hours for the date. ok=false when either side is closed or
// the windows do not intersect.
func resolveOpenInterval(staffSched, salonSched *ownerSchedule, date time.Time) (model.OpenInterval, bool) {
	staffIv, ok := staffSched.week.IntervalFor(date)
	if !ok {
		return model.OpenInterval{}, false
	}
	salonIv, ok := salonSched.week.IntervalFor(date)
	if !ok {
		return model.OpenInterval{}, false
	}
	return staffIv.Intersect(salonIv)
}

// generateSlots yields candidate start minutes across the open window,
// stepping by interval, stopping strictly before the closing minute.
func generateSlots(open model.OpenInterval, interval int) []int {
	var slots []int
	for t := open.Start; t < open.End; t += interval {
		slots = append(slots, t)
	}
	return slots
}

// blocked runs the exclusion calculator against both owners.
func blocked(staffSched, salonSched *ownerSchedule, date time.Time, startMin, endMin int) bool {
	return staffSched.excl.Blocked(date, startMin, endMin) ||
		salonSched.excl.Blocked(date, startMin, endMin)
}

// slotAt anchors a minute-of-day on a date in the engine's location.
func (s *Service) slotAt(date time.Time, minute int) time.Time {
	return time.Date(date.Year(), date.Month(), date.Day(), minute/60, minute%60, 0, 0, s.loc)
}

func minuteOf(t *time.Location, at time.Time) int {
	local := at.In(t)
	return local.Hour()*60 + local.Minute()
}

// IsAvailable answers the single-slot check for a staff member: the
// window [startMin, startMin+duration) on date must fall inside the
// effective open interval, clear of exclusions, clear of active
// appointments, and strictly in the future when date is today.
// excludeID skips one appointment's own row when validating an update.
func (s *Service) IsAvailable(ctx context.Context, staffID uuid.UUID, date time.Time, startMin, durationMin int, excludeID *uuid.UUID) (bool, error) {
	staff, err := s.staffRepo.Get(ctx, staffID)
	if err != nil {
		if err == repository.ErrNotFound {
			return false, apperrors.NotFound("staff", err)
		}
		return false, apperrors.Internal(err)
	}
	if !staff.IsActive() {
		return false, nil
	}

	staffSched, err := s.loadSchedule(ctx, model.OwnerStaff, staffID)
	if err != nil {
		return false, apperrors.Internal(err)
	}
	salonSched, err := s.loadSchedule(ctx, model.OwnerSalon, staff.SalonID)
	if err != nil {
		return false, apperrors.Internal(err)
	}

	open, ok := resolveOpenInterval(staffSched, salonSched, date)
	if !ok {
		return false, nil
	}

	endMin := startMin + durationMin
	if startMin < open.Start || endMin > open.End {
		return false, nil
	}

	if blocked(staffSched, salonSched, date, startMin, endMin) {
		return false, nil
	}

	now := s.nowFn().In(s.loc)
	if model.SameDate(date, now) && startMin <= minuteOf(s.loc, now) {
		return false, nil
	}

	overlap, err := s.apptRepo.HasOverlap(ctx, staffID, s.slotAt(date, startMin), s.slotAt(date, endMin), excludeID)
	if err != nil {
		return false, apperrors.Internal(err)
	}
	return !overlap, nil
}

// GetAvailableSlots returns all open start times for the staff member
// and service on the date, ascending, formatted HH:MM.
func (s *Service) GetAvailableSlots(ctx context.Context, staffID, serviceID uuid.UUID, date time.Time) ([]string, error) {
	started := time.Now()
	if s.metrics != nil {
		s.metrics.SlotQueries.Inc()
		defer func() {
			s.metrics.SlotQueryLatency.Observe(time.Since(started).Seconds())
		}()
	}

	staff, err := s.staffRepo.Get(ctx, staffID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("staff", err)
		}
		return nil, apperrors.Internal(err)
	}
	if !staff.IsActive() {
		return []string{}, nil
	}

	service, err := s.serviceRepo.Get(ctx, serviceID)
	if err != nil {
		if err == repository.ErrNotFound {
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

	return s.slotsForStaff(ctx, staff, service.Duration, date)
}

// slotsForStaff is the batch path: one appointments query per day, then
// in-memory filtering of every generated candidate.
func (s *Service) slotsForStaff(ctx context.Context, staff *model.Staff, durationMin int, date time.Time) ([]string, error) {
	staffSched, err := s.loadSchedule(ctx, model.OwnerStaff, staff.ID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	salonSched, err := s.loadSchedule(ctx, model.OwnerSalon, staff.SalonID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	open, ok := resolveOpenInterval(staffSched, salonSched, date)
	if !ok {
		return []string{}, nil
	}

	dayStart := s.slotAt(date, 0)
	appointments, err := s.apptRepo.ListForStaffDay(ctx, staff.ID, dayStart, dayStart.AddDate(0, 0, 1))
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	now := s.nowFn().In(s.loc)
	isToday := model.SameDate(date, now)
	nowMin := minuteOf(s.loc, now)

	slots := []string{}
	for _, start := range generateSlots(open, s.interval) {
		end := start + durationMin
		if end > open.End {
			continue
		}
		if isToday && start <= nowMin {
			continue
		}
		if blocked(staffSched, salonSched, date, start, end) {
			continue
		}
		if overlapsAny(appointments, s.loc, start, end) {
			continue
		}
		slots = append(slots, model.FormatClock(start))
	}
	return slots, nil
}

func overlapsAny(appointments []*model.Appointment, loc *time.Location, startMin, endMin int) bool {
	for _, apt := range appointments {
		aptStart := minuteOf(loc, apt.StartTime)
		aptEnd := minuteOf(loc, apt.EndTime)
		if model.Overlaps(startMin, endMin, aptStart, aptEnd) {
			return true
		}
	}
	return false
}

// IsSalonAvailable reports whether at least one active staff member of
// the salon can take the window. When startMin is negative no specific
// time was requested and any open slot that day counts.
func (s *Service) IsSalonAvailable(ctx context.Context, salonID uuid.UUID, date time.Time, startMin, durationMin int) (bool, error) {
	if _, err := s.salonRepo.Get(ctx, salonID); err != nil {
		if err == repository.ErrNotFound {
			return false, apperrors.NotFound("salon", err)
		}
		return false, apperrors.Internal(err)
	}

	staff, err := s.staffRepo.ListActiveBySalon(ctx, salonID)
	if err != nil {
		return false, apperrors.Internal(err)
	}
	if durationMin <= 0 {
		durationMin = s.interval
	}

	for _, st := range staff {
		if startMin < 0 {
			slots, err := s.slotsForStaff(ctx, st, durationMin, date)
			if err != nil {
				return false, err
			}
			if len(slots) > 0 {
				return true, nil
			}
			continue
		}

		ok, err := s.IsAvailable(ctx, st.ID, date, startMin, durationMin, nil)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

// AvailableSalonIDs filters the candidate salons down to the ones with
// at least one open staff member for the date/time; used by search.
func (s *Service) AvailableSalonIDs(ctx context.Context, salonIDs []uuid.UUID, date time.Time, startMin, durationMin int) ([]uuid.UUID, error) {
	available := []uuid.UUID{}
	for _, id := range salonIDs {
		ok, err := s.IsSalonAvailable(ctx, id, date, startMin, durationMin)
		if err != nil {
			if apperrors.IsNotFound(err) {
				continue
			}
			return nil, err
		}
		if ok {
			available = append(available, id)
		}
	}
	return available, nil
}

// GetAvailableDates scans the next `days` dates starting at from; a
// date counts when the batch generator yields at least one slot.
func (s *Service) GetAvailableDates(ctx context.Context, staffID, serviceID uuid.UUID, from time.Time, days int) ([]string, error) {
	if days <= 0 {
		days = s.lookahead
	}

	dates := []string{}
	for i := 0; i < days; i++ {
		date := from.AddDate(0, 0, i)
		slots, err := s.GetAvailableSlots(ctx, staffID, serviceID, date)
		if err != nil {
			return nil, err
		}
		if len(slots) > 0 {
			dates = append(dates, model.FormatDate(date))
		}
	}
	return dates, nil
}

// GetStaffCalendar produces the per-date flags map for staff-facing
// calendar views across [startDate, endDate] inclusive.
func (s *Service) GetStaffCalendar(ctx context.Context, staffID uuid.UUID, startDate, endDate time.Time) (map[string]model.DayAvailability, error) {
	staff, err := s.staffRepo.Get(ctx, staffID)
	if err != nil {
		if err == repository.ErrNotFound {
			return nil, apperrors.NotFound("staff", err)
		}
		return nil, apperrors.Internal(err)
	}

	staffSched, err := s.loadSchedule(ctx, model.OwnerStaff, staffID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	salonSched, err := s.loadSchedule(ctx, model.OwnerSalon, staff.SalonID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}

	calendar := make(map[string]model.DayAvailability)
	for date := startDate; !date.After(endDate); date = date.AddDate(0, 0, 1) {
		_, staffOpen := staffSched.week.IntervalFor(date)
		_, salonOpen := salonSched.week.IntervalFor(date)
		onVacation := staffSched.excl.OnVacation(date) || salonSched.excl.OnVacation(date)

		day := model.DayAvailability{
			IsWorking:     staffOpen,
			IsOnVacation:  onVacation,
			IsSalonClosed: !salonOpen,
		}

		if staffOpen && salonOpen && !onVacation {
			slots, err := s.slotsForStaff(ctx, staff, s.interval, date)
			if err != nil {
				return nil, err
			}
			day.IsAvailable = len(slots) > 0
		}

		calendar[model.FormatDate(date)] = day
	}
	return calendar, nil
}

// InvalidateSchedule drops the cached snapshot after schedule mutations.
func (s *Service) InvalidateSchedule(ownerType model.OwnerType, ownerID uuid.UUID) {
	s.schedules.Delete(string(ownerType) + ":" + ownerID.String())
}
