package validator

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/bhojsoft/testseries-service/internal/models"
)

// registerDomainRules wires the custom tags used by the request DTOs.
func (v *Validator) registerDomainRules() {
	// Duration in minutes, 5-300.
	v.validate.RegisterValidation("test_duration", func(fl validator.FieldLevel) bool {
		duration := fl.Field().Int()
		return duration >= 5 && duration <= 300
	})

	v.validate.RegisterValidation("marks_range", func(fl validator.FieldLevel) bool {
		marks := fl.Field().Int()
		return marks >= 0 && marks <= 1000
	})

	v.validate.RegisterValidation("role", func(fl validator.FieldLevel) bool {
		return models.Role(fl.Field().String()).Valid()
	})

	v.validate.RegisterValidation("visibility", func(fl validator.FieldLevel) bool {
		vis := models.Visibility(fl.Field().String())
		return vis == models.VisibilityAll || vis == models.VisibilityInstitute
	})

	v.validate.RegisterValidation("future_date", func(fl validator.FieldLevel) bool {
		field := fl.Field()
		if field.Kind() == reflect.Ptr && field.IsNil() {
			return true
		}
		var t time.Time
		if field.Kind() == reflect.Ptr {
			t = field.Elem().Interface().(time.Time)
		} else {
			t = field.Interface().(time.Time)
		}
		return t.After(time.Now())
	})
}

// ValidateTestCreate runs struct validation plus the cross-field rules a
// tag cannot express.
func (v *Validator) ValidateTestCreate(req *models.TestCreateRequest) ValidationErrors {
	errors := v.Validate(req)
	errors = append(errors, v.validateTestRules(req)...)
	return errors
}

func (v *Validator) validateTestRules(req *models.TestCreateRequest) ValidationErrors {
	var errors ValidationErrors

	if req.PassingMarks > req.TotalMarks {
		errors = append(errors, ValidationError{
			Field:   "passing_marks",
			Message: "cannot exceed total marks",
			Value:   req.PassingMarks,
			Rule:    "marks_consistency",
		})
	}

	// Practice tests carry no schedule, so duration and start time only
	// bind the scheduled kind.
	if req.Kind != models.TestKindPractice && req.Duration == 0 {
		errors = append(errors, ValidationError{
			Field:   "duration",
			Message: "is required for scheduled tests",
			Value:   req.Duration,
			Rule:    "required",
		})
	}

	if req.Kind != models.TestKindPractice && req.StartTime != nil && req.StartTime.Before(time.Now()) {
		errors = append(errors, ValidationError{
			Field:   "start_time",
			Message: "must be in the future",
			Value:   req.StartTime,
			Rule:    "future_date",
		})
	}

	for i, q := range req.Questions {
		errors = append(errors, validateQuestionInput(i, q)...)
	}

	return errors
}

// ValidateTestUpdate validates partial updates against the stored test.
func (v *Validator) ValidateTestUpdate(req *models.TestUpdateRequest, existing *models.Test) ValidationErrors {
	errors := v.Validate(req)

	total := existing.TotalMarks
	if req.TotalMarks != nil {
		total = *req.TotalMarks
	}
	passing := existing.PassingMarks
	if req.PassingMarks != nil {
		passing = *req.PassingMarks
	}
	if passing > total {
		errors = append(errors, ValidationError{
			Field:   "passing_marks",
			Message: "cannot exceed total marks",
			Value:   passing,
			Rule:    "marks_consistency",
		})
	}

	return errors
}

// ValidateQuestionInput validates a single authored question.
func (v *Validator) ValidateQuestionInput(q models.QuestionInput) ValidationErrors {
	errors := v.Validate(&q)
	errors = append(errors, validateQuestionInput(0, q)...)
	return errors
}

func validateQuestionInput(index int, q models.QuestionInput) ValidationErrors {
	var errors ValidationErrors

	seen := make(map[string]bool, len(q.Options))
	for j, opt := range q.Options {
		trimmed := strings.TrimSpace(opt)
		if trimmed == "" {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("questions[%d].options[%d]", index, j),
				Message: "option cannot be blank",
				Value:   opt,
				Rule:    "option_text",
			})
			continue
		}
		key := strings.ToLower(trimmed)
		if seen[key] {
			errors = append(errors, ValidationError{
				Field:   fmt.Sprintf("questions[%d].options[%d]", index, j),
				Message: "duplicate option",
				Value:   opt,
				Rule:    "option_unique",
			})
		}
		seen[key] = true
	}

	if !answerInOptions(q.CorrectAnswer, q.Options) {
		errors = append(errors, ValidationError{
			Field:   fmt.Sprintf("questions[%d].correct_answer", index),
			Message: "must match one of the options",
			Value:   q.CorrectAnswer,
			Rule:    "answer_in_options",
		})
	}

	return errors
}

func answerInOptions(answer string, options []string) bool {
	want := strings.ToLower(strings.TrimSpace(answer))
	for _, opt := range options {
		if strings.ToLower(strings.TrimSpace(opt)) == want {
			return true
		}
	}
	return false
}
