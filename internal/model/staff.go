package model

import (
	"github.com/google/uuid"
)

type Staff struct {
	Base
	SalonID uuid.UUID `db:"salon_id" json:"salon_id"`
	Name    string    `db:"name" json:"name"`
	Email   string    `db:"email" json:"email,omitempty"`
	Phone   string    `db:"phone" json:"phone,omitempty"`
	Status  string    `db:"status" json:"status"`
}

func (s *Staff) IsActive() bool {
	return s.Status == "active"
}

type CreateStaffRequest struct {
	Name  string `json:"name" validate:"required,max=200"`
	Email string `json:"email" validate:"omitempty,email"`
	Phone string `json:"phone" validate:"max=30"`
}

type UpdateStaffRequest struct {
	Name   *string `json:"name"`
	Email  *string `json:"email" validate:"omitempty,email"`
	Phone  *string `json:"phone"`
	Status *string `json:"status" validate:"omitempty,oneof=active inactive"`
}
