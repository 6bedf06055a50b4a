package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/salonflow/salon-api/internal/model"
	"github.com/salonflow/salon-api/internal/repository"
)

// The appointments table carries a partial unique index
//
//	CREATE UNIQUE INDEX uq_appointments_staff_slot_active
//	    ON appointments (staff_id, start_time)
//	    WHERE status IN ('pending', 'confirmed', 'in_progress');
//
// which is the single serialization point for concurrent bookings of the
// same slot. Create translates its violation into ErrDuplicateSlot.

const pqUniqueViolation = "23505"

func (r *appointmentRepository) Create(ctx context.Context, appointment *model.Appointment) error {
	query := `
		INSERT INTO appointments (
			id, salon_id, staff_id, service_id, client_id,
			guest_name, guest_email, guest_phone,
			start_time, end_time, status, payment_status, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	appointment.ID = uuid.New()
	appointment.CreatedAt = time.Now()
	appointment.UpdatedAt = time.Now()

	_, err := r.db.ExecContext(ctx, query,
		appointment.ID,
		appointment.SalonID,
		appointment.StaffID,
		appointment.ServiceID,
		appointment.ClientID,
		appointment.GuestName,
		appointment.GuestEmail,
		appointment.GuestPhone,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Status,
		appointment.PaymentStatus,
		appointment.Notes,
		appointment.CreatedAt,
		appointment.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return repository.ErrDuplicateSlot
		}
		return fmt.Errorf("failed to create appointment: %w", err)
	}
	return nil
}

func (r *appointmentRepository) Get(ctx context.Context, id uuid.UUID) (*model.Appointment, error) {
	query := `
		SELECT id, salon_id, staff_id, service_id, client_id,
			   guest_name, guest_email, guest_phone,
			   start_time, end_time, status, payment_status, notes,
			   cancel_reason, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`
	var appointment model.Appointment
	err := r.db.GetContext(ctx, &appointment, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, repository.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get appointment: %w", err)
	}
	return &appointment, nil
}

func (r *appointmentRepository) Update(ctx context.Context, appointment *model.Appointment) error {
	query := `
		UPDATE appointments
		SET start_time = $1, end_time = $2, status = $3, notes = $4, updated_at = $5
		WHERE id = $6
	`
	appointment.UpdatedAt = time.Now()

	result, err := r.db.ExecContext(ctx, query,
		appointment.StartTime,
		appointment.EndTime,
		appointment.Status,
		appointment.Notes,
		appointment.UpdatedAt,
		appointment.ID,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return repository.ErrDuplicateSlot
		}
		return fmt.Errorf("failed to update appointment: %w", err)
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

func (r *appointmentRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus, cancelReason *string) error {
	query := `
		UPDATE appointments
		SET status = $1, cancel_reason = COALESCE($2, cancel_reason), updated_at = $3
		WHERE id = $4
	`
	result, err := r.db.ExecContext(ctx, query, status, cancelReason, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to update appointment status: %w", err)
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

func (r *appointmentRepository) List(ctx context.Context, filters *model.AppointmentFilters) ([]*model.Appointment, error) {
	query := `
		SELECT id, salon_id, staff_id, service_id, client_id,
			   guest_name, guest_email, guest_phone,
			   start_time, end_time, status, payment_status, notes,
			   cancel_reason, created_at, updated_at
		FROM appointments
		WHERE 1=1
	`
	args := []interface{}{}
	argCount := 1

	if filters.SalonID != uuid.Nil {
		query += fmt.Sprintf(" AND salon_id = $%d", argCount)
		args = append(args, filters.SalonID)
		argCount++
	}

	if filters.StaffID != uuid.Nil {
		query += fmt.Sprintf(" AND staff_id = $%d", argCount)
		args = append(args, filters.StaffID)
		argCount++
	}

	if filters.ClientID != uuid.Nil {
		query += fmt.Sprintf(" AND client_id = $%d", argCount)
		args = append(args, filters.ClientID)
		argCount++
	}

	if filters.Status != "" {
		query += fmt.Sprintf(" AND status = $%d", argCount)
		args = append(args, filters.Status)
		argCount++
	}

	if !filters.StartDate.IsZero() {
		query += fmt.Sprintf(" AND start_time >= $%d", argCount)
		args = append(args, filters.StartDate)
		argCount++
	}

	if !filters.EndDate.IsZero() {
		query += fmt.Sprintf(" AND start_time < $%d", argCount)
		args = append(args, filters.EndDate)
		argCount++
	}

	query += " ORDER BY start_time ASC"

	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) ListForStaffDay(ctx context.Context, staffID uuid.UUID, dayStart, dayEnd time.Time) ([]*model.Appointment, error) {
	query := `
		SELECT id, salon_id, staff_id, service_id, client_id,
			   guest_name, guest_email, guest_phone,
			   start_time, end_time, status, payment_status, notes,
			   cancel_reason, created_at, updated_at
		FROM appointments
		WHERE staff_id = $1
		AND start_time >= $2
		AND start_time < $3
		AND status IN ('pending', 'confirmed', 'in_progress')
		ORDER BY start_time ASC
	`
	var appointments []*model.Appointment
	err := r.db.SelectContext(ctx, &appointments, query, staffID, dayStart, dayEnd)
	if err != nil {
		return nil, fmt.Errorf("failed to list staff appointments: %w", err)
	}
	return appointments, nil
}

func (r *appointmentRepository) HasOverlap(ctx context.Context, staffID uuid.UUID, start, end time.Time, excludeID *uuid.UUID) (bool, error) {
	query := `
		SELECT EXISTS (
			SELECT 1 FROM appointments
			WHERE staff_id = $1
			AND status IN ('pending', 'confirmed', 'in_progress')
			AND start_time < $3
			AND end_time > $2
	`
	args := []interface{}{staffID, start, end}

	if excludeID != nil {
		query += " AND id != $4"
		args = append(args, *excludeID)
	}

	query += ")"

	var hasOverlap bool
	err := r.db.GetContext(ctx, &hasOverlap, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to check overlap: %w", err)
	}
	return hasOverlap, nil
}

func (r *appointmentRepository) ExpireFinished(ctx context.Context, now time.Time) (int64, error) {
	query := `
		UPDATE appointments
		SET status = 'completed', updated_at = $1
		WHERE status IN ('confirmed', 'in_progress')
		AND end_time <= $1
	`
	result, err := r.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("failed to expire appointments: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get rows affected: %w", err)
	}
	return rows, nil
}
