package validator

import (
	"github.com/go-playground/validator/v10"
)

// Validator checks request DTOs against their `validate` struct tags.
type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	return &Validator{v: validator.New(validator.WithRequiredStructEnabled())}
}

func (val *Validator) Validate(obj interface{}) error {
	return val.v.Struct(obj)
}
