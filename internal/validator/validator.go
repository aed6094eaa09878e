package validator

import (
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/examforge/exam-service/internal/models"
)

// Validator wraps go-playground/validator with the service's custom
// tags. One instance is shared across all services and handlers.
type Validator struct {
	validate *validator.Validate
}

// ValidationError represents a single field-level validation failure.
type ValidationError struct {
	Field   string      `json:"field"`
	Message string      `json:"message"`
	Value   interface{} `json:"value,omitempty"`
	Rule    string      `json:"rule,omitempty"`
}

type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	if len(ve) == 0 {
		return "validation failed"
	}
	if len(ve) == 1 {
		return fmt.Sprintf("validation failed: %s %s", ve[0].Field, ve[0].Message)
	}
	return fmt.Sprintf("validation failed: %d field errors", len(ve))
}

func New() *Validator {
	validate := validator.New()

	v := &Validator{validate: validate}
	v.registerRules()

	return v
}

// Validate validates any struct against its tags and returns field
// errors, or nil when the struct is valid.
func (v *Validator) Validate(s interface{}) ValidationErrors {
	if err := v.validate.Struct(s); err != nil {
		return ToValidationErrors(err)
	}
	return nil
}

// ToValidationErrors converts a validator.ValidationErrors into the
// service's error shape.
func ToValidationErrors(err error) ValidationErrors {
	var errors ValidationErrors

	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return ValidationErrors{{Field: "", Message: err.Error()}}
	}

	for _, fe := range fieldErrs {
		errors = append(errors, ValidationError{
			Field:   fe.Field(),
			Message: messageFor(fe),
			Value:   fe.Value(),
			Rule:    fe.Tag(),
		})
	}

	return errors
}

func (v *Validator) registerRules() {
	v.validate.RegisterValidation("question_type", func(fl validator.FieldLevel) bool {
		switch models.QuestionType(fl.Field().String()) {
		case models.MultipleChoice, models.TrueFalse, models.FillBlank:
			return true
		}
		return false
	})

	v.validate.RegisterValidation("difficulty_level", func(fl validator.FieldLevel) bool {
		switch models.DifficultyLevel(fl.Field().String()) {
		case models.DifficultyEasy, models.DifficultyMedium, models.DifficultyHard:
			return true
		}
		return false
	})

	// Marks per question are capped to keep exam totals sane.
	v.validate.RegisterValidation("marks_range", func(fl validator.FieldLevel) bool {
		marks := fl.Field().Int()
		return marks >= 1 && marks <= 100
	})

	// Manual bulk entry allows at most 50 questions per batch.
	v.validate.RegisterValidation("bulk_count", func(fl validator.FieldLevel) bool {
		count := fl.Field().Int()
		return count >= 1 && count <= 50
	})

	v.validate.RegisterValidation("subject_name", func(fl validator.FieldLevel) bool {
		subject := strings.TrimSpace(fl.Field().String())
		return subject != "" && len(subject) <= 100
	})
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "question_type":
		return "must be one of multiple_choice, true_false, fill_blank"
	case "difficulty_level":
		return "must be one of easy, medium, hard"
	case "marks_range":
		return "must be between 1 and 100"
	case "bulk_count":
		return "must be between 1 and 50"
	case "subject_name":
		return "must be a non-empty subject name"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
