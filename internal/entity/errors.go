package entity

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrLeadNotFound         = errors.New("lead not found")
	ErrTaskNotFound         = errors.New("task not found")
	ErrMeetingNotFound      = errors.New("meeting not found")
	ErrInvalidMeetingType   = errors.New("invalid meeting type")
	ErrInvalidMeetingStatus = errors.New("invalid meeting status")
)

type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every field problem found in one pass.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	parts := make([]string, len(e))
	for i, v := range e {
		parts[i] = v.Error()
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func IsValidationError(err error) bool {
	var many ValidationErrors
	if errors.As(err, &many) {
		return true
	}
	var one ValidationError
	return errors.As(err, &one)
}

// AsValidationErrors flattens err into field errors, or returns nil if err is not a validation error.
func AsValidationErrors(err error) ValidationErrors {
	var many ValidationErrors
	if errors.As(err, &many) {
		return many
	}
	var one ValidationError
	if errors.As(err, &one) {
		return ValidationErrors{one}
	}
	return nil
}
