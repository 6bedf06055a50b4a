package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/salonflow/salon-api/internal/model"
	"github.com/salonflow/salon-api/internal/repository"
)

func (r *staffRepository) Create(ctx context.Context, staff *model.Staff) error {
	query := `
		INSERT INTO staff (
			id, salon_id, name, email, phone, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	staff.ID = uuid.New()
	staff.CreatedAt = time.Now()
	staff.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		staff.ID,
		staff.SalonID,
		staff.Name,
		staff.Email,
		staff.Phone,
		staff.Status,
		staff.CreatedAt,
		staff.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create staff: %w", err)
	}
	return nil
}

func (r *staffRepository) Get(ctx context.Context, id uuid.UUID) (*model.Staff, error) {
	query := `
		SELECT id, salon_id, name, email, phone, status, created_at, updated_at
		FROM staff
		WHERE id = $1
	`
	var staff model.Staff
	err := r.db.GetContext(ctx, &staff, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get staff: %w", err)
	}
	return &staff, nil
}

func (r *staffRepository) Update(ctx context.Context, staff *model.Staff) error {
	query := `
		UPDATE staff
		SET name = $1, email = $2, phone = $3, status = $4, updated_at = $5
		WHERE id = $6
	`
	staff.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		staff.Name,
		staff.Email,
		staff.Phone,
		staff.Status,
		staff.UpdatedAt,
		staff.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update staff: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *staffRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM staff
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete staff: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return repository.ErrNotFound
	}

	return nil
}

func (r *staffRepository) ListBySalon(ctx context.Context, salonID uuid.UUID) ([]*model.Staff, error) {
	query := `
		SELECT id, salon_id, name, email, phone, status, created_at, updated_at
		FROM staff
		WHERE salon_id = $1
		ORDER BY name ASC
	`
	var staff []*model.Staff
	err := r.db.SelectContext(ctx, &staff, query, salonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff: %w", err)
	}
	return staff, nil
}

func (r *staffRepository) ListActiveBySalon(ctx context.Context, salonID uuid.UUID) ([]*model.Staff, error) {
	query := `
		SELECT id, salon_id, name, email, phone, status, created_at, updated_at
		FROM staff
		WHERE salon_id = $1
		AND status = 'active'
		ORDER BY name ASC
	`
	var staff []*model.Staff
	err := r.db.SelectContext(ctx, &staff, query, salonID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active staff: %w", err)
	}
	return staff, nil
}

func (r *staffRepository) AssignService(ctx context.Context, staffID, serviceID uuid.UUID) error {
	query := `
		INSERT INTO staff_services (staff_id, service_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`
	_, err := r.db.ExecContext(ctx, query, staffID, serviceID)
	if err != nil {
		return fmt.Errorf("failed to assign service: %w", err)
	}
	return nil
}

func (r *staffRepository) UnassignService(ctx context.Context, staffID, serviceID uuid.UUID) error {
	query := `
		DELETE FROM staff_services
		WHERE staff_id = $1 AND service_id = $2
	`
	_, err := r.db.ExecContext(ctx, query, staffID, serviceID)
	if err != nil {
		return fmt.Errorf("failed to unassign service: %w", err)
	}
	return nil
}

func (r *staffRepository) OffersService(ctx context.Context, staffID, serviceID uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM staff_services
			WHERE staff_id = $1 AND service_id = $2
		)
	`
	var offers bool
	err := r.db.GetContext(ctx, &offers, query, staffID, serviceID)
	if err != nil {
		return false, fmt.Errorf("failed to check staff service: %w", err)
	}
	return offers, nil
}
