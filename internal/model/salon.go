package model

type Salon struct {
	Base
	Name        string `db:"name" json:"name"`
	Description string `db:"description" json:"description,omitempty"`
	Location    string `db:"location" json:"location"`
	Phone       string `db:"phone" json:"phone,omitempty"`
	Timezone    string `db:"timezone" json:"timezone,omitempty"`
	AutoConfirm bool   `db:"auto_confirm" json:"auto_confirm"`
	Status      string `db:"status" json:"status"`
}

type CreateSalonRequest struct {
	Name        string `json:"name" validate:"required,max=200"`
	Description string `json:"description" validate:"max=2000"`
	Location    string `json:"location" validate:"required,max=500"`
	Phone       string `json:"phone" validate:"max=30"`
	Timezone    string `json:"timezone" validate:"max=60"`
	AutoConfirm bool   `json:"auto_confirm"`
}

type UpdateSalonRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	Location    *string `json:"location"`
	Phone       *string `json:"phone"`
	Timezone    *string `json:"timezone"`
	AutoConfirm *bool   `json:"auto_confirm"`
	Status      *string `json:"status" validate:"omitempty,oneof=active inactive"`
}
