package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/edusehat/education-service/internal/models"
)

// ValidationError describes a single failed validation rule
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule"`
}

// ValidationErrors is a collection of validation errors
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return ""
	}

	messages := make([]string, 0, len(ve))
	for _, e := range ve {
		messages = append(messages, fmt.Sprintf("%s: %s", e.Field, e.Message))
	}
	return strings.Join(messages, "; ")
}

// HasErrors reports whether any validation errors exist
func (ve ValidationErrors) HasErrors() bool {
	return len(ve) > 0
}

// ToValidationErrors converts go-playground validator errors into our format
func ToValidationErrors(err error) ValidationErrors {
	if err == nil {
		return nil
	}

	var errors ValidationErrors

	validationErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{
			Field:   "request",
			Message: err.Error(),
			Rule:    "unknown",
		}}
	}

	for _, fieldErr := range validationErrs {
		errors = append(errors, ValidationError{
			Field:   strings.ToLower(fieldErr.Field()),
			Message: messageForTag(fieldErr),
			Value:   fieldErr.Value(),
			Rule:    fieldErr.Tag(),
		})
	}

	return errors
}

func messageForTag(fieldErr validator.FieldError) string {
	switch fieldErr.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return fmt.Sprintf("must be at least %s", fieldErr.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fieldErr.Param())
	case "stage_id":
		return "must be a valid pipeline stage"
	case "education_stage":
		return "must be an education stage"
	default:
		return fmt.Sprintf("failed validation rule %s", fieldErr.Tag())
	}
}

// Validator wraps go-playground validator with domain rules registered
type Validator struct {
	validate *validator.Validate
}

// New creates a validator with all custom rules registered
func New() *Validator {
	validate := validator.New()

	// Pipeline stage identifiers
	validate.RegisterValidation("stage_id", func(fl validator.FieldLevel) bool {
		return models.IsValidStage(models.StageID(fl.Field().String()))
	})

	// Only education stages collect monitoring responses
	validate.RegisterValidation("education_stage", func(fl validator.FieldLevel) bool {
		return models.IsEducationStage(models.StageID(fl.Field().String()))
	})

	return &Validator{validate: validate}
}

// Validate validates a struct and returns domain validation errors
func (v *Validator) Validate(s interface{}) ValidationErrors {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// Var validates a single value against a rule expression
func (v *Validator) Var(value interface{}, rule string) error {
	return v.validate.Var(value, rule)
}
