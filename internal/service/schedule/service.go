package schedule

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/salonflow/salon-api/internal/model"
	"github.com/salonflow/salon-api/internal/repository"
	apperrors "github.com/salonflow/salon-api/pkg/errors"
)

// Invalidator drops cached schedule snapshots after mutations; the
// availability engine implements it.
type Invalidator interface {
	InvalidateSchedule(ownerType model.OwnerType, ownerID uuid.UUID)
}

// Service manages working-hours templates, breaks and vacations for
// salons and staff.
type Service struct {
	repo        repository.ScheduleRepository
	invalidator Invalidator
	loc         *time.Location
}

func NewService(repo repository.ScheduleRepository, invalidator Invalidator, loc *time.Location) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{repo: repo, invalidator: invalidator, loc: loc}
}

func (s *Service) invalidate(ownerType model.OwnerType, ownerID uuid.UUID) {
	if s.invalidator != nil {
		s.invalidator.InvalidateSchedule(ownerType, ownerID)
	}
}

func (s *Service) GetWorkingHours(ctx context.Context, ownerType model.OwnerType, ownerID uuid.UUID) ([]*model.WorkingHours, error) {
	hours, err := s.repo.GetWorkingHours(ctx, ownerType, ownerID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return hours, nil
}

// UpsertWorkingHours replaces one weekday entry of the owner's template.
func (s *Service) UpsertWorkingHours(ctx context.Context, ownerType model.OwnerType, ownerID uuid.UUID, req *model.UpsertWorkingHoursRequest) (*model.WorkingHours, error) {
	weekday, err := model.ParseWeekday(req.Weekday)
	if err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}

	opens, err := model.ParseClock(req.OpensAt)
	if err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}
	closes, err := model.ParseClock(req.ClosesAt)
	if err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}
	if req.IsOpen && opens >= closes {
		return nil, apperrors.Validation("closing time must be after opening time", nil)
	}

	wh := &model.WorkingHours{
		OwnerType: ownerType,
		OwnerID:   ownerID,
		Weekday:   weekday,
		OpensAt:   req.OpensAt,
		ClosesAt:  req.ClosesAt,
		IsOpen:    req.IsOpen,
	}
	if err := s.repo.UpsertWorkingHours(ctx, wh); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.invalidate(ownerType, ownerID)
	return wh, nil
}

func (s *Service) CreateBreak(ctx context.Context, ownerType model.OwnerType, ownerID uuid.UUID, req *model.CreateBreakRequest) (*model.Break, error) {
	br, err := s.breakFromRequest(ownerType, ownerID, req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateBreak(ctx, br); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.invalidate(ownerType, ownerID)
	return br, nil
}

func (s *Service) UpdateBreak(ctx context.Context, id uuid.UUID, req *model.CreateBreakRequest) (*model.Break, error) {
	existing, err := s.repo.GetBreak(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("break", err)
		}
		return nil, apperrors.Internal(err)
	}

	br, err := s.breakFromRequest(existing.OwnerType, existing.OwnerID, req)
	if err != nil {
		return nil, err
	}
	br.ID = existing.ID

	if err := s.repo.UpdateBreak(ctx, br); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.invalidate(existing.OwnerType, existing.OwnerID)
	return br, nil
}

func (s *Service) DeleteBreak(ctx context.Context, id uuid.UUID) error {
	br, err := s.repo.GetBreak(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("break", err)
		}
		return apperrors.Internal(err)
	}

	if err := s.repo.DeleteBreak(ctx, id); err != nil {
		return apperrors.Internal(err)
	}

	s.invalidate(br.OwnerType, br.OwnerID)
	return nil
}

func (s *Service) ListBreaks(ctx context.Context, ownerType model.OwnerType, ownerID uuid.UUID) ([]*model.Break, error) {
	breaks, err := s.repo.ListBreaks(ctx, ownerType, ownerID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return breaks, nil
}

// breakFromRequest validates kind-specific fields. Break windows are
// within-day; a break never spans midnight.
func (s *Service) breakFromRequest(ownerType model.OwnerType, ownerID uuid.UUID, req *model.CreateBreakRequest) (*model.Break, error) {
	starts, err := model.ParseClock(req.StartsAt)
	if err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}
	ends, err := model.ParseClock(req.EndsAt)
	if err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}
	if ends <= starts {
		return nil, apperrors.Validation("break end time must be after start time", nil)
	}

	br := &model.Break{
		OwnerType: ownerType,
		OwnerID:   ownerID,
		Title:     req.Title,
		Kind:      model.BreakKind(req.Kind),
		StartsAt:  req.StartsAt,
		EndsAt:    req.EndsAt,
		IsActive:  true,
	}
	if req.IsActive != nil {
		br.IsActive = *req.IsActive
	}

	switch br.Kind {
	case model.BreakDaily:
	case model.BreakWeekly:
		if len(req.Days) == 0 {
			return nil, apperrors.Validation("weekly break requires at least one day", nil)
		}
		for _, d := range req.Days {
			if _, err := model.ParseWeekday(d); err != nil {
				return nil, apperrors.Validation(err.Error(), err)
			}
		}
		br.Days = req.Days
	case model.BreakSpecificDate:
		date, err := model.ParseDate(req.Date, s.loc)
		if err != nil {
			return nil, apperrors.Validation(err.Error(), err)
		}
		br.Date = &date
	case model.BreakDateRange:
		start, err := model.ParseDate(req.StartDate, s.loc)
		if err != nil {
			return nil, apperrors.Validation(err.Error(), err)
		}
		end, err := model.ParseDate(req.EndDate, s.loc)
		if err != nil {
			return nil, apperrors.Validation(err.Error(), err)
		}
		if end.Before(start) {
			return nil, apperrors.Validation("break end date must not precede start date", nil)
		}
		br.StartDate = &start
		br.EndDate = &end
	default:
		return nil, apperrors.Validation("invalid break kind", nil)
	}

	return br, nil
}

func (s *Service) CreateVacation(ctx context.Context, ownerType model.OwnerType, ownerID uuid.UUID, req *model.CreateVacationRequest) (*model.Vacation, error) {
	v, err := s.vacationFromRequest(ownerType, ownerID, req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.CreateVacation(ctx, v); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.invalidate(ownerType, ownerID)
	return v, nil
}

func (s *Service) UpdateVacation(ctx context.Context, id uuid.UUID, req *model.CreateVacationRequest) (*model.Vacation, error) {
	existing, err := s.repo.GetVacation(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("vacation", err)
		}
		return nil, apperrors.Internal(err)
	}

	v, err := s.vacationFromRequest(existing.OwnerType, existing.OwnerID, req)
	if err != nil {
		return nil, err
	}
	v.ID = existing.ID

	if err := s.repo.UpdateVacation(ctx, v); err != nil {
		return nil, apperrors.Internal(err)
	}

	s.invalidate(existing.OwnerType, existing.OwnerID)
	return v, nil
}

func (s *Service) DeleteVacation(ctx context.Context, id uuid.UUID) error {
	v, err := s.repo.GetVacation(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("vacation", err)
		}
		return apperrors.Internal(err)
	}

	if err := s.repo.DeleteVacation(ctx, id); err != nil {
		return apperrors.Internal(err)
	}

	s.invalidate(v.OwnerType, v.OwnerID)
	return nil
}

func (s *Service) ListVacations(ctx context.Context, ownerType model.OwnerType, ownerID uuid.UUID) ([]*model.Vacation, error) {
	vacations, err := s.repo.ListVacations(ctx, ownerType, ownerID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return vacations, nil
}

func (s *Service) vacationFromRequest(ownerType model.OwnerType, ownerID uuid.UUID, req *model.CreateVacationRequest) (*model.Vacation, error) {
	start, err := model.ParseDate(req.StartDate, s.loc)
	if err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}
	end, err := model.ParseDate(req.EndDate, s.loc)
	if err != nil {
		return nil, apperrors.Validation(err.Error(), err)
	}
	if end.Before(start) {
		return nil, apperrors.Validation("vacation end date must not precede start date", nil)
	}

	category := model.VacationRegular
	if req.Category != "" {
		category = model.VacationCategory(req.Category)
	}

	v := &model.Vacation{
		OwnerType: ownerType,
		OwnerID:   ownerID,
		Title:     req.Title,
		StartDate: start,
		EndDate:   end,
		Category:  category,
		IsActive:  true,
	}
	if req.IsActive != nil {
		v.IsActive = *req.IsActive
	}
	return v, nil
}
