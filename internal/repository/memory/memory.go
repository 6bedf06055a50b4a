// Package memory implements the repository interfaces on plain maps.
// It backs service tests and enforces the same slot uniqueness rule as
// the Postgres layer.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/salonflow/salon-api/internal/model"
	"github.com/salonflow/salon-api/internal/repository"
)

type Store struct {
	mu            sync.Mutex
	salons        map[uuid.UUID]*model.Salon
	staff         map[uuid.UUID]*model.Staff
	services      map[uuid.UUID]*model.Service
	staffServices map[uuid.UUID]map[uuid.UUID]bool
	workingHours  map[string][]*model.WorkingHours
	breaks        map[uuid.UUID]*model.Break
	vacations     map[uuid.UUID]*model.Vacation
	appointments  map[uuid.UUID]*model.Appointment
}

func NewStore() *Store {
	return &Store{
		salons:        make(map[uuid.UUID]*model.Salon),
		staff:         make(map[uuid.UUID]*model.Staff),
		services:      make(map[uuid.UUID]*model.Service),
		staffServices: make(map[uuid.UUID]map[uuid.UUID]bool),
		workingHours:  make(map[string][]*model.WorkingHours),
		breaks:        make(map[uuid.UUID]*model.Break),
		vacations:     make(map[uuid.UUID]*model.Vacation),
		appointments:  make(map[uuid.UUID]*model.Appointment),
	}
}

func (s *Store) Salons() repository.SalonRepository             { return &salonRepo{s} }
func (s *Store) Staff() repository.StaffRepository              { return &staffRepo{s} }
func (s *Store) Services() repository.ServiceRepository         { return &serviceRepo{s} }
func (s *Store) Schedules() repository.ScheduleRepository       { return &scheduleRepo{s} }
func (s *Store) Appointments() repository.AppointmentRepository { return &appointmentRepo{s} }

func ownerKey(ownerType model.OwnerType, ownerID uuid.UUID) string {
	return string(ownerType) + ":" + ownerID.String()
}

func ensureID(id *uuid.UUID) {
	if *id == uuid.Nil {
		*id = uuid.New()
	}
}

type salonRepo struct{ s *Store }

func (r *salonRepo) Create(_ context.Context, salon *model.Salon) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&salon.ID)
	r.s.salons[salon.ID] = salon
	return nil
}

func (r *salonRepo) Get(_ context.Context, id uuid.UUID) (*model.Salon, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	salon, ok := r.s.salons[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return salon, nil
}

func (r *salonRepo) Update(_ context.Context, salon *model.Salon) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.salons[salon.ID]; !ok {
		return repository.ErrNotFound
	}
	r.s.salons[salon.ID] = salon
	return nil
}

func (r *salonRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.salons[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.salons, id)
	return nil
}

func (r *salonRepo) List(_ context.Context) ([]*model.Salon, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*model.Salon, 0, len(r.s.salons))
	for _, salon := range r.s.salons {
		out = append(out, salon)
	}
	return out, nil
}

type staffRepo struct{ s *Store }

func (r *staffRepo) Create(_ context.Context, staff *model.Staff) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&staff.ID)
	r.s.staff[staff.ID] = staff
	return nil
}

func (r *staffRepo) Get(_ context.Context, id uuid.UUID) (*model.Staff, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	staff, ok := r.s.staff[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return staff, nil
}

func (r *staffRepo) Update(_ context.Context, staff *model.Staff) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.staff[staff.ID]; !ok {
		return repository.ErrNotFound
	}
	r.s.staff[staff.ID] = staff
	return nil
}

func (r *staffRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.staff[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.staff, id)
	return nil
}

func (r *staffRepo) ListBySalon(_ context.Context, salonID uuid.UUID) ([]*model.Staff, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.Staff{}
	for _, staff := range r.s.staff {
		if staff.SalonID == salonID {
			out = append(out, staff)
		}
	}
	return out, nil
}

func (r *staffRepo) ListActiveBySalon(ctx context.Context, salonID uuid.UUID) ([]*model.Staff, error) {
	all, err := r.ListBySalon(ctx, salonID)
	if err != nil {
		return nil, err
	}
	out := []*model.Staff{}
	for _, staff := range all {
		if staff.IsActive() {
			out = append(out, staff)
		}
	}
	return out, nil
}

func (r *staffRepo) AssignService(_ context.Context, staffID, serviceID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.s.staffServices[staffID] == nil {
		r.s.staffServices[staffID] = make(map[uuid.UUID]bool)
	}
	r.s.staffServices[staffID][serviceID] = true
	return nil
}

func (r *staffRepo) UnassignService(_ context.Context, staffID, serviceID uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.staffServices[staffID], serviceID)
	return nil
}

func (r *staffRepo) OffersService(_ context.Context, staffID, serviceID uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.s.staffServices[staffID][serviceID], nil
}

type serviceRepo struct{ s *Store }

func (r *serviceRepo) Create(_ context.Context, service *model.Service) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&service.ID)
	r.s.services[service.ID] = service
	return nil
}

func (r *serviceRepo) Get(_ context.Context, id uuid.UUID) (*model.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	service, ok := r.s.services[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return service, nil
}

func (r *serviceRepo) Update(_ context.Context, service *model.Service) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.services[service.ID]; !ok {
		return repository.ErrNotFound
	}
	r.s.services[service.ID] = service
	return nil
}

func (r *serviceRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.services[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.services, id)
	return nil
}

func (r *serviceRepo) ListBySalon(_ context.Context, salonID uuid.UUID) ([]*model.Service, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.Service{}
	for _, service := range r.s.services {
		if service.SalonID == salonID {
			out = append(out, service)
		}
	}
	return out, nil
}

type scheduleRepo struct{ s *Store }

func (r *scheduleRepo) GetWorkingHours(_ context.Context, ownerType model.OwnerType, ownerID uuid.UUID) ([]*model.WorkingHours, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return append([]*model.WorkingHours{}, r.s.workingHours[ownerKey(ownerType, ownerID)]...), nil
}

func (r *scheduleRepo) UpsertWorkingHours(_ context.Context, wh *model.WorkingHours) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&wh.ID)
	key := ownerKey(wh.OwnerType, wh.OwnerID)
	rows := r.s.workingHours[key]
	for i, row := range rows {
		if row.Weekday == wh.Weekday {
			rows[i] = wh
			return nil
		}
	}
	r.s.workingHours[key] = append(rows, wh)
	return nil
}

func (r *scheduleRepo) DeleteWorkingHours(_ context.Context, ownerType model.OwnerType, ownerID uuid.UUID, weekday model.Weekday) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	key := ownerKey(ownerType, ownerID)
	rows := r.s.workingHours[key]
	for i, row := range rows {
		if row.Weekday == weekday {
			r.s.workingHours[key] = append(rows[:i], rows[i+1:]...)
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *scheduleRepo) CreateBreak(_ context.Context, br *model.Break) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&br.ID)
	r.s.breaks[br.ID] = br
	return nil
}

func (r *scheduleRepo) UpdateBreak(_ context.Context, br *model.Break) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.breaks[br.ID]; !ok {
		return repository.ErrNotFound
	}
	r.s.breaks[br.ID] = br
	return nil
}

func (r *scheduleRepo) DeleteBreak(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.breaks[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.breaks, id)
	return nil
}

func (r *scheduleRepo) GetBreak(_ context.Context, id uuid.UUID) (*model.Break, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	br, ok := r.s.breaks[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return br, nil
}

func (r *scheduleRepo) ListBreaks(_ context.Context, ownerType model.OwnerType, ownerID uuid.UUID) ([]*model.Break, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.Break{}
	for _, br := range r.s.breaks {
		if br.OwnerType == ownerType && br.OwnerID == ownerID {
			out = append(out, br)
		}
	}
	return out, nil
}

func (r *scheduleRepo) ListActiveBreaks(ctx context.Context, ownerType model.OwnerType, ownerID uuid.UUID) ([]*model.Break, error) {
	all, err := r.ListBreaks(ctx, ownerType, ownerID)
	if err != nil {
		return nil, err
	}
	out := []*model.Break{}
	for _, br := range all {
		if br.IsActive {
			out = append(out, br)
		}
	}
	return out, nil
}

func (r *scheduleRepo) CreateVacation(_ context.Context, v *model.Vacation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	ensureID(&v.ID)
	r.s.vacations[v.ID] = v
	return nil
}

func (r *scheduleRepo) UpdateVacation(_ context.Context, v *model.Vacation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.vacations[v.ID]; !ok {
		return repository.ErrNotFound
	}
	r.s.vacations[v.ID] = v
	return nil
}

func (r *scheduleRepo) DeleteVacation(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.vacations[id]; !ok {
		return repository.ErrNotFound
	}
	delete(r.s.vacations, id)
	return nil
}

func (r *scheduleRepo) GetVacation(_ context.Context, id uuid.UUID) (*model.Vacation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	v, ok := r.s.vacations[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return v, nil
}

func (r *scheduleRepo) ListVacations(_ context.Context, ownerType model.OwnerType, ownerID uuid.UUID) ([]*model.Vacation, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.Vacation{}
	for _, v := range r.s.vacations {
		if v.OwnerType == ownerType && v.OwnerID == ownerID {
			out = append(out, v)
		}
	}
	return out, nil
}

func (r *scheduleRepo) ListActiveVacations(ctx context.Context, ownerType model.OwnerType, ownerID uuid.UUID) ([]*model.Vacation, error) {
	all, err := r.ListVacations(ctx, ownerType, ownerID)
	if err != nil {
		return nil, err
	}
	out := []*model.Vacation{}
	for _, v := range all {
		if v.IsActive {
			out = append(out, v)
		}
	}
	return out, nil
}

type appointmentRepo struct{ s *Store }

// Create mirrors the partial unique index: two active appointments for
// the same staff member may not share a start time.
func (r *appointmentRepo) Create(_ context.Context, apt *model.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if r.slotTaken(apt.StaffID, apt.StartTime, nil) {
		return repository.ErrDuplicateSlot
	}
	ensureID(&apt.ID)
	apt.CreatedAt = time.Now()
	apt.UpdatedAt = apt.CreatedAt
	r.s.appointments[apt.ID] = apt
	return nil
}

func (r *appointmentRepo) slotTaken(staffID uuid.UUID, start time.Time, excludeID *uuid.UUID) bool {
	for _, other := range r.s.appointments {
		if excludeID != nil && other.ID == *excludeID {
			continue
		}
		if other.StaffID == staffID && other.Status.IsActive() && other.StartTime.Equal(start) {
			return true
		}
	}
	return false
}

func (r *appointmentRepo) Get(_ context.Context, id uuid.UUID) (*model.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	apt, ok := r.s.appointments[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return apt, nil
}

func (r *appointmentRepo) Update(_ context.Context, apt *model.Appointment) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if _, ok := r.s.appointments[apt.ID]; !ok {
		return repository.ErrNotFound
	}
	if apt.Status.IsActive() && r.slotTaken(apt.StaffID, apt.StartTime, &apt.ID) {
		return repository.ErrDuplicateSlot
	}
	apt.UpdatedAt = time.Now()
	r.s.appointments[apt.ID] = apt
	return nil
}

func (r *appointmentRepo) UpdateStatus(_ context.Context, id uuid.UUID, status model.AppointmentStatus, cancelReason *string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	apt, ok := r.s.appointments[id]
	if !ok {
		return repository.ErrNotFound
	}
	apt.Status = status
	apt.CancelReason = cancelReason
	apt.UpdatedAt = time.Now()
	return nil
}

func (r *appointmentRepo) List(_ context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.Appointment{}
	for _, apt := range r.s.appointments {
		if filters != nil {
			if filters.SalonID != uuid.Nil && apt.SalonID != filters.SalonID {
				continue
			}
			if filters.StaffID != uuid.Nil && apt.StaffID != filters.StaffID {
				continue
			}
			if filters.ClientID != uuid.Nil && (apt.ClientID == nil || *apt.ClientID != filters.ClientID) {
				continue
			}
			if filters.Status != "" && apt.Status != filters.Status {
				continue
			}
			if !filters.StartDate.IsZero() && apt.StartTime.Before(filters.StartDate) {
				continue
			}
			if !filters.EndDate.IsZero() && !apt.StartTime.Before(filters.EndDate) {
				continue
			}
		}
		out = append(out, apt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *appointmentRepo) ListForStaffDay(_ context.Context, staffID uuid.UUID, dayStart, dayEnd time.Time) ([]*model.Appointment, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := []*model.Appointment{}
	for _, apt := range r.s.appointments {
		if apt.StaffID != staffID || !apt.Status.IsActive() {
			continue
		}
		if apt.StartTime.Before(dayStart) || !apt.StartTime.Before(dayEnd) {
			continue
		}
		out = append(out, apt)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartTime.Before(out[j].StartTime) })
	return out, nil
}

func (r *appointmentRepo) HasOverlap(_ context.Context, staffID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, apt := range r.s.appointments {
		if excludeID != nil && apt.ID == *excludeID {
			continue
		}
		if apt.StaffID != staffID || !apt.Status.IsActive() {
			continue
		}
		if apt.StartTime.Before(end) && apt.EndTime.After(start) {
			return true, nil
		}
	}
	return false, nil
}

func (r *appointmentRepo) ExpireFinished(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var swept int64
	for _, apt := range r.s.appointments {
		if apt.Status != model.AppointmentStatusConfirmed && apt.Status != model.AppointmentStatusInProgress {
			continue
		}
		if apt.EndTime.After(now) {
			continue
		}
		apt.Status = model.AppointmentStatusCompleted
		apt.UpdatedAt = now
		swept++
	}
	return swept, nil
}
