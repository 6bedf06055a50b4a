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

func (r *salonRepository) Create(ctx context.Context, salon *model.Salon) error {
	query := `
		INSERT INTO salons (
			id, name, description, location, phone, timezone,
			auto_confirm, status, created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	salon.ID = uuid.New()
	salon.CreatedAt = time.Now()
	salon.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		salon.ID,
		salon.Name,
		salon.Description,
		salon.Location,
		salon.Phone,
		salon.Timezone,
		salon.AutoConfirm,
		salon.Status,
		salon.CreatedAt,
		salon.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create salon: %w", err)
	}
	return nil
}

func (r *salonRepository) Get(ctx context.Context, id uuid.UUID) (*model.Salon, error) {
	query := `
		SELECT id, name, description, location, phone, timezone,
			   auto_confirm, status, created_at, updated_at
		FROM salons
		WHERE id = $1
	`
	var salon model.Salon
	err := r.db.GetContext(ctx, &salon, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get salon: %w", err)
	}
	return &salon, nil
}

func (r *salonRepository) Update(ctx context.Context, salon *model.Salon) error {
	query := `
		UPDATE salons
		SET name = $1, description = $2, location = $3, phone = $4,
			timezone = $5, auto_confirm = $6, status = $7, updated_at = $8
		WHERE id = $9
	`
	salon.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		salon.Name,
		salon.Description,
		salon.Location,
		salon.Phone,
		salon.Timezone,
		salon.AutoConfirm,
		salon.Status,
		salon.UpdatedAt,
		salon.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update salon: %w", err)
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

func (r *salonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM salons
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete salon: %w", err)
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

func (r *salonRepository) List(ctx context.Context) ([]*model.Salon, error) {
	query := `
		SELECT id, name, description, location, phone, timezone,
			   auto_confirm, status, created_at, updated_at
		FROM salons
		ORDER BY name ASC
	`
	var salons []*model.Salon
	err := r.db.SelectContext(ctx, &salons, query)
	if err != nil {
		return nil, fmt.Errorf("failed to list salons: %w", err)
	}
	return salons, nil
}
