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

func (r *scheduleRepository) GetWorkingHours(ctx context.Context, ownerType model.OwnerType, ownerID uuid.UUID) ([]*model.WorkingHours, error) {
	query := `
		SELECT id, owner_type, owner_id, weekday, opens_at, closes_at, is_open
		FROM working_hours
		WHERE owner_type = $1 AND owner_id = $2
	`
	var hours []*model.WorkingHours
	err := r.db.SelectContext(ctx, &hours, query, ownerType, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to get working hours: %w", err)
	}
	return hours, nil
}

func (r *scheduleRepository) UpsertWorkingHours(ctx context.Context, wh *model.WorkingHours) error {
	query := `
		INSERT INTO working_hours (id, owner_type, owner_id, weekday, opens_at, closes_at, is_open)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (owner_type, owner_id, weekday)
		DO UPDATE SET opens_at = $5, closes_at = $6, is_open = $7
	`
	if wh.ID == uuid.Nil {
		wh.ID = uuid.New()
	}
	_, err := r.db.ExecContext(ctx, query,
		wh.ID,
		wh.OwnerType,
		wh.OwnerID,
		wh.Weekday,
		wh.OpensAt,
		wh.ClosesAt,
		wh.IsOpen,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert working hours: %w", err)
	}
	return nil
}

func (r *scheduleRepository) DeleteWorkingHours(ctx context.Context, ownerType model.OwnerType, ownerID uuid.UUID, weekday model.Weekday) error {
	query := `
		DELETE FROM working_hours
		WHERE owner_type = $1 AND owner_id = $2 AND weekday = $3
	`
	_, err := r.db.ExecContext(ctx, query, ownerType, ownerID, weekday)
	if err != nil {
		return fmt.Errorf("failed to delete working hours: %w", err)
	}
	return nil
}

func (r *scheduleRepository) CreateBreak(ctx context.Context, br *model.Break) error {
	query := `
		INSERT INTO breaks (
			id, owner_type, owner_id, title, kind, starts_at, ends_at,
			days, date, start_date, end_date, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
	`
	br.ID = uuid.New()
	br.CreatedAt = time.Now()
	br.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		br.ID,
		br.OwnerType,
		br.OwnerID,
		br.Title,
		br.Kind,
		br.StartsAt,
		br.EndsAt,
		br.Days,
		br.Date,
		br.StartDate,
		br.EndDate,
		br.IsActive,
		br.CreatedAt,
		br.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create break: %w", err)
	}
	return nil
}

func (r *scheduleRepository) UpdateBreak(ctx context.Context, br *model.Break) error {
	query := `
		UPDATE breaks
		SET title = $1, kind = $2, starts_at = $3, ends_at = $4, days = $5,
			date = $6, start_date = $7, end_date = $8, is_active = $9, updated_at = $10
		WHERE id = $11
	`
	br.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		br.Title,
		br.Kind,
		br.StartsAt,
		br.EndsAt,
		br.Days,
		br.Date,
		br.StartDate,
		br.EndDate,
		br.IsActive,
		br.UpdatedAt,
		br.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update break: %w", err)
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

func (r *scheduleRepository) DeleteBreak(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM breaks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete break: %w", err)
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

func (r *scheduleRepository) GetBreak(ctx context.Context, id uuid.UUID) (*model.Break, error) {
	query := `
		SELECT id, owner_type, owner_id, title, kind, starts_at, ends_at,
			   days, date, start_date, end_date, is_active, created_at, updated_at
		FROM breaks
		WHERE id = $1
	`
	var br model.Break
	err := r.db.GetContext(ctx, &br, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get break: %w", err)
	}
	return &br, nil
}

func (r *scheduleRepository) ListBreaks(ctx context.Context, ownerType model.OwnerType, ownerID uuid.UUID) ([]*model.Break, error) {
	query := `
		SELECT id, owner_type, owner_id, title, kind, starts_at, ends_at,
			   days, date, start_date, end_date, is_active, created_at, updated_at
		FROM breaks
		WHERE owner_type = $1 AND owner_id = $2
		ORDER BY created_at ASC
	`
	var breaks []*model.Break
	err := r.db.SelectContext(ctx, &breaks, query, ownerType, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list breaks: %w", err)
	}
	return breaks, nil
}

func (r *scheduleRepository) ListActiveBreaks(ctx context.Context, ownerType model.OwnerType, ownerID uuid.UUID) ([]*model.Break, error) {
	query := `
		SELECT id, owner_type, owner_id, title, kind, starts_at, ends_at,
			   days, date, start_date, end_date, is_active, created_at, updated_at
		FROM breaks
		WHERE owner_type = $1 AND owner_id = $2 AND is_active = true
		ORDER BY created_at ASC
	`
	var breaks []*model.Break
	err := r.db.SelectContext(ctx, &breaks, query, ownerType, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active breaks: %w", err)
	}
	return breaks, nil
}

func (r *scheduleRepository) CreateVacation(ctx context.Context, v *model.Vacation) error {
	query := `
		INSERT INTO vacations (
			id, owner_type, owner_id, title, start_date, end_date,
			category, is_active, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	v.ID = uuid.New()
	v.CreatedAt = time.Now()
	v.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		v.ID,
		v.OwnerType,
		v.OwnerID,
		v.Title,
		v.StartDate,
		v.EndDate,
		v.Category,
		v.IsActive,
		v.CreatedAt,
		v.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create vacation: %w", err)
	}
	return nil
}

func (r *scheduleRepository) UpdateVacation(ctx context.Context, v *model.Vacation) error {
	query := `
		UPDATE vacations
		SET title = $1, start_date = $2, end_date = $3, category = $4,
			is_active = $5, updated_at = $6
		WHERE id = $7
	`
	v.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		v.Title,
		v.StartDate,
		v.EndDate,
		v.Category,
		v.IsActive,
		v.UpdatedAt,
		v.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update vacation: %w", err)
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

func (r *scheduleRepository) DeleteVacation(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM vacations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete vacation: %w", err)
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

func (r *scheduleRepository) GetVacation(ctx context.Context, id uuid.UUID) (*model.Vacation, error) {
	query := `
		SELECT id, owner_type, owner_id, title, start_date, end_date,
			   category, is_active, created_at, updated_at
		FROM vacations
		WHERE id = $1
	`
	var v model.Vacation
	err := r.db.GetContext(ctx, &v, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get vacation: %w", err)
	}
	return &v, nil
}

func (r *scheduleRepository) ListVacations(ctx context.Context, ownerType model.OwnerType, ownerID uuid.UUID) ([]*model.Vacation, error) {
	query := `
		SELECT id, owner_type, owner_id, title, start_date, end_date,
			   category, is_active, created_at, updated_at
		FROM vacations
		WHERE owner_type = $1 AND owner_id = $2
		ORDER BY start_date ASC
	`
	var vacations []*model.Vacation
	err := r.db.SelectContext(ctx, &vacations, query, ownerType, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list vacations: %w", err)
	}
	return vacations, nil
}

func (r *scheduleRepository) ListActiveVacations(ctx context.Context, ownerType model.OwnerType, ownerID uuid.UUID) ([]*model.Vacation, error) {
	query := `
		SELECT id, owner_type, owner_id, title, start_date, end_date,
			   category, is_active, created_at, updated_at
		FROM vacations
		WHERE owner_type = $1 AND owner_id = $2 AND is_active = true
		ORDER BY start_date ASC
	`
	var vacations []*model.Vacation
	err := r.db.SelectContext(ctx, &vacations, query, ownerType, ownerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list active vacations: %w", err)
	}
	return vacations, nil
}
