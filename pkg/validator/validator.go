package validator

import (
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	once     sync.Once
	validate *validator.Validate
)

// Get returns the shared validator instance.
func Get() *validator.Validate {
	once.Do(func() {
		validate = validator.New()

		// Report field names from the json tag so validation errors match
		// the request payload instead of Go struct fields.
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})

	return validate
}

// Struct validates the provided struct using the shared instance.
func Struct(s interface{}) error {
	return Get().Struct(s)
}

// ValidationErrors extracts a field->message map from a validation error.
func ValidationErrors(err error) map[string]string {
	result := make(map[string]string)

	validationErrors, ok := err.(validator.ValidationErrors)
	if !ok {
		return result
	}

	for _, fieldErr := range validationErrors {
		result[fieldErr.Field()] = messageForTag(fieldErr)
	}

	return result
}

func messageForTag(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "This field is required"
	case "email":
		return "Must be a valid email address"
	case "min":
		return "Must be at least " + fieldErr.Param() + " characters"
	case "max":
		return "Must be at most " + fieldErr.Param() + " characters"
	case "oneof":
		return "Must be one of: " + fieldErr.Param()
	case "uuid":
		return "Must be a valid UUID"
	default:
		return "Invalid value"
	}
}
