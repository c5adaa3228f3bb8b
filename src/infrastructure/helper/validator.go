package helper

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

// Validator translates validator.FieldError values into user-facing messages.
type Validator struct{}

func NewValidator() Validator {
	return Validator{}
}

func (v Validator) GetErrorMsg(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "This field is required"
	case "min":
		return fmt.Sprintf("Should be at least %s characters long", fe.Param())
	case "max":
		return fmt.Sprintf("Should be at most %s characters long", fe.Param())
	case "email":
		return "Invalid email format"
	case "gt":
		return fmt.Sprintf("Should be greater than %s", fe.Param())
	default:
		return "Invalid value"
	}
}
