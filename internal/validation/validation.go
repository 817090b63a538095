package validation

import (
	"errors"
	"fmt"
	"reflect"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/terraincognita07/khare/internal/models"
)

// FieldErrors maps a request field, named by its json tag, to a message.
type FieldErrors struct {
	Errors map[string]string
}

func (e *FieldErrors) Error() string {
	fields := make([]string, 0, len(e.Errors))
	for field := range e.Errors {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	messages := make([]string, 0, len(fields))
	for _, field := range fields {
		messages = append(messages, fmt.Sprintf("%s: %s", field, e.Errors[field]))
	}
	return strings.Join(messages, "; ")
}

type Validator struct {
	validate *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	mustRegister(v, "role", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if value == "" {
			return true
		}
		_, ok := models.ParseRole(value)
		return ok
	})
	mustRegister(v, "project_status", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		return value == "" || models.ValidProjectStatus(value)
	})
	mustRegister(v, "otp", func(fl validator.FieldLevel) bool {
		value := fl.Field().String()
		if len(value) != 6 {
			return false
		}
		for _, r := range value {
			if r < '0' || r > '9' {
				return false
			}
		}
		return true
	})

	return &Validator{validate: v}
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register validation %q: %v", tag, err))
	}
}

// Struct validates input and returns *FieldErrors when any rule fails.
func (v *Validator) Struct(input any) error {
	err := v.validate.Struct(input)
	if err == nil {
		return nil
	}

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return err
	}

	fields := make(map[string]string, len(validationErrors))
	for _, fieldError := range validationErrors {
		fields[fieldError.Field()] = messageFor(fieldError)
	}
	return &FieldErrors{Errors: fields}
}

func messageFor(fieldError validator.FieldError) string {
	switch fieldError.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fieldError.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fieldError.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fieldError.Param())
	case "url", "http_url":
		return "must be a valid URL"
	case "role":
		return "must be admin, contractor or client"
	case "project_status":
		return "must be pending, in_progress or completed"
	case "otp":
		return "must be a 6 digit code"
	default:
		return fmt.Sprintf("failed %s validation", fieldError.Tag())
	}
}
