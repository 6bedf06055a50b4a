package model

import (
	"github.com/google/uuid"
)

type Service struct {
	Base
	SalonID     uuid.UUID `db:"salon_id" json:"salon_id"`
	Name        string    `db:"name" json:"name"`
	Description string    `db:"description" json:"description"`
	Duration    int       `db:"duration" json:"duration"` // in minutes
	Price       float64   `db:"price" json:"price"`
	Status      string    `db:"status" json:"status"`
}

type CreateServiceRequest struct {
	Name        string  `json:"name" validate:"required,max=200"`
	Description string  `json:"description" validate:"max=2000"`
	Duration    int     `json:"duration" validate:"required,gt=0,lte=480"`
	Price       float64 `json:"price" validate:"gte=0"`
}

type UpdateServiceRequest struct {
	Name        *string  `json:"name"`
	Description *string  `json:"description"`
	Duration    *int     `json:"duration" validate:"omitempty,gt=0,lte=480"`
	Price       *float64 `json:"price" validate:"omitempty,gte=0"`
	Status      *string  `json:"status" validate:"omitempty,oneof=active inactive"`
}
