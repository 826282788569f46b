package services

import (
	"errors"
	"fmt"

	"github.com/eklavya-edu/assessment-service/internal/validator"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")

	ErrAssessmentNotFound = errors.New("assessment not found")
	ErrQuestionNotFound   = errors.New("question not found")
	ErrSessionNotFound    = errors.New("session not found")
	ErrResponseNotFound   = errors.New("response not found")
	ErrCourseNotFound     = errors.New("course not found")
)

type (
	ValidationError  = validator.ValidationError
	ValidationErrors = validator.ValidationErrors
)

// PermissionError reports an authenticated caller acting outside their rights
type PermissionError struct {
	UserID     string
	ResourceID string
	Resource   string
	Action     string
	Reason     string
}

func NewPermissionError(userID, resourceID, resource, action, reason string) *PermissionError {
	return &PermissionError{
		UserID:     userID,
		ResourceID: resourceID,
		Resource:   resource,
		Action:     action,
		Reason:     reason,
	}
}

func (e *PermissionError) Error() string {
	if e.ResourceID == "" {
		return fmt.Sprintf("user %s cannot %s %s: %s", e.UserID, e.Action, e.Resource, e.Reason)
	}
	return fmt.Sprintf("user %s cannot %s %s %s: %s", e.UserID, e.Action, e.Resource, e.ResourceID, e.Reason)
}

func (e *PermissionError) Is(target error) bool {
	return target == ErrForbidden
}

// IsNotFound reports whether err is one of the service not-found sentinels
func IsNotFound(err error) bool {
	return errors.Is(err, ErrAssessmentNotFound) ||
		errors.Is(err, ErrQuestionNotFound) ||
		errors.Is(err, ErrSessionNotFound) ||
		errors.Is(err, ErrResponseNotFound) ||
		errors.Is(err, ErrCourseNotFound)
}
