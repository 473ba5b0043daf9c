package validators

import "github.com/go-playground/validator/v10"

// Validator wraps a single shared validate instance for request structs
type Validator struct {
	validator *validator.Validate
}

// NewValidator creates a new Validator
func NewValidator() *Validator {
	return &Validator{validator: validator.New()}
}

// Validate validates the given struct against its validate tags
func (v *Validator) Validate(i interface{}) error {
	return v.validator.Struct(i)
}
