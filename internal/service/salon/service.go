package salon

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/salonflow/salon-api/internal/model"
	"github.com/salonflow/salon-api/internal/repository"
	apperrors "github.com/salonflow/salon-api/pkg/errors"
)

// Service manages the salon catalog: salons, their staff and the
// services they offer.
type Service struct {
	salonRepo   repository.SalonRepository
	staffRepo   repository.StaffRepository
	serviceRepo repository.ServiceRepository
}

func NewService(salonRepo repository.SalonRepository, staffRepo repository.StaffRepository, serviceRepo repository.ServiceRepository) *Service {
	return &Service{
		salonRepo:   salonRepo,
		staffRepo:   staffRepo,
		serviceRepo: serviceRepo,
	}
}

func (s *Service) CreateSalon(ctx context.Context, req *model.CreateSalonRequest) (*model.Salon, error) {
	salon := &model.Salon{
		Name:        req.Name,
		Description: req.Description,
		Location:    req.Location,
		Phone:       req.Phone,
		Timezone:    req.Timezone,
		AutoConfirm: req.AutoConfirm,
		Status:      "active",
	}
	if err := s.salonRepo.Create(ctx, salon); err != nil {
		return nil, apperrors.Internal(err)
	}
	return salon, nil
}

func (s *Service) GetSalon(ctx context.Context, id uuid.UUID) (*model.Salon, error) {
	salon, err := s.salonRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("salon", err)
		}
		return nil, apperrors.Internal(err)
	}
	return salon, nil
}

func (s *Service) UpdateSalon(ctx context.Context, id uuid.UUID, req *model.UpdateSalonRequest) (*model.Salon, error) {
	salon, err := s.GetSalon(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		salon.Name = *req.Name
	}
	if req.Description != nil {
		salon.Description = *req.Description
	}
	if req.Location != nil {
		salon.Location = *req.Location
	}
	if req.Phone != nil {
		salon.Phone = *req.Phone
	}
	if req.Timezone != nil {
		salon.Timezone = *req.Timezone
	}
	if req.AutoConfirm != nil {
		salon.AutoConfirm = *req.AutoConfirm
	}
	if req.Status != nil {
		salon.Status = *req.Status
	}

	if err := s.salonRepo.Update(ctx, salon); err != nil {
		return nil, apperrors.Internal(err)
	}
	return salon, nil
}

func (s *Service) DeleteSalon(ctx context.Context, id uuid.UUID) error {
	if err := s.salonRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("salon", err)
		}
		return apperrors.Internal(err)
	}
	return nil
}

func (s *Service) ListSalons(ctx context.Context) ([]*model.Salon, error) {
	salons, err := s.salonRepo.List(ctx)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return salons, nil
}

func (s *Service) CreateStaff(ctx context.Context, salonID uuid.UUID, req *model.CreateStaffRequest) (*model.Staff, error) {
	if _, err := s.GetSalon(ctx, salonID); err != nil {
		return nil, err
	}

	staff := &model.Staff{
		SalonID: salonID,
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Status:  "active",
	}
	if err := s.staffRepo.Create(ctx, staff); err != nil {
		return nil, apperrors.Internal(err)
	}
	return staff, nil
}

func (s *Service) GetStaff(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	staff, err := s.staffRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("staff", err)
		}
		return nil, apperrors.Internal(err)
	}
	return staff, nil
}

func (s *Service) UpdateStaff(ctx context.Context, id uuid.UUID, req *model.UpdateStaffRequest) (*model.Staff, error) {
	staff, err := s.GetStaff(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		staff.Name = *req.Name
	}
	if req.Email != nil {
		staff.Email = *req.Email
	}
	if req.Phone != nil {
		staff.Phone = *req.Phone
	}
	if req.Status != nil {
		staff.Status = *req.Status
	}

	if err := s.staffRepo.Update(ctx, staff); err != nil {
		return nil, apperrors.Internal(err)
	}
	return staff, nil
}

func (s *Service) DeleteStaff(ctx context.Context, id uuid.UUID) error {
	if err := s.staffRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("staff", err)
		}
		return apperrors.Internal(err)
	}
	return nil
}

func (s *Service) ListStaff(ctx context.Context, salonID uuid.UUID) ([]*model.Staff, error) {
	staff, err := s.staffRepo.ListBySalon(ctx, salonID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return staff, nil
}

func (s *Service) CreateService(ctx context.Context, salonID uuid.UUID, req *model.CreateServiceRequest) (*model.Service, error) {
	if _, err := s.GetSalon(ctx, salonID); err != nil {
		return nil, err
	}

	service := &model.Service{
		SalonID:     salonID,
		Name:        req.Name,
		Description: req.Description,
		Duration:    req.Duration,
		Price:       req.Price,
		Status:      "active",
	}
	if err := s.serviceRepo.Create(ctx, service); err != nil {
		return nil, apperrors.Internal(err)
	}
	return service, nil
}

func (s *Service) GetService(ctx context.Context, id uuid.UUID) (*model.Service, error) {
	service, err := s.serviceRepo.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NotFound("service", err)
		}
		return nil, apperrors.Internal(err)
	}
	return service, nil
}

func (s *Service) UpdateService(ctx context.Context, id uuid.UUID, req *model.UpdateServiceRequest) (*model.Service, error) {
	service, err := s.GetService(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		service.Name = *req.Name
	}
	if req.Description != nil {
		service.Description = *req.Description
	}
	if req.Duration != nil {
		service.Duration = *req.Duration
	}
	if req.Price != nil {
		service.Price = *req.Price
	}
	if req.Status != nil {
		service.Status = *req.Status
	}

	if err := s.serviceRepo.Update(ctx, service); err != nil {
		return nil, apperrors.Internal(err)
	}
	return service, nil
}

func (s *Service) DeleteService(ctx context.Context, id uuid.UUID) error {
	if err := s.serviceRepo.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.NotFound("service", err)
		}
		return apperrors.Internal(err)
	}
	return nil
}

func (s *Service) ListServices(ctx context.Context, salonID uuid.UUID) ([]*model.Service, error) {
	services, err := s.serviceRepo.ListBySalon(ctx, salonID)
	if err != nil {
		return nil, apperrors.Internal(err)
	}
	return services, nil
}

// AssignService links a staff member to a service they can perform.
// Both must belong to the same salon.
func (s *Service) AssignService(ctx context.Context, staffID, serviceID uuid.UUID) error {
	staff, err := s.GetStaff(ctx, staffID)
	if err != nil {
		return err
	}
	service, err := s.GetService(ctx, serviceID)
	if err != nil {
		return err
	}
	if staff.SalonID != service.SalonID {
		return apperrors.Validation("staff and service belong to different salons", nil)
	}

	if err := s.staffRepo.AssignService(ctx, staffID, serviceID); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}

func (s *Service) UnassignService(ctx context.Context, staffID, serviceID uuid.UUID) error {
	if err := s.staffRepo.UnassignService(ctx, staffID, serviceID); err != nil {
		return apperrors.Internal(err)
	}
	return nil
}
