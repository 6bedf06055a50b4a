package model

import (
	"time"

	"github.com/google/uuid"
)

// Base contains common fields for all models
type Base struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// Pagination represents common pagination parameters
type Pagination struct {
	Page     int `json:"page" form:"page"`
	PageSize int `json:"page_size" form:"page_size"`
}

// OwnerType distinguishes salon-level from staff-level schedule records.
// Breaks, vacations and working hours are owned by one or the other.
type OwnerType string

const (
	OwnerSalon OwnerType = "salon"
	OwnerStaff OwnerType = "staff"
)
