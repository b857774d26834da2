package services

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrFull               = errors.New("meetup is full")
	ErrAlreadyJoined      = errors.New("already joined this meetup")
	ErrNotParticipant     = errors.New("not a participant of this meetup")
	ErrValidation         = errors.New("validation failed")
	ErrPersistence        = errors.New("storage unavailable")
	ErrMeetupClosed       = errors.New("meetup is no longer active")
	ErrForbidden          = errors.New("not allowed")
	ErrInvariantViolation = errors.New("participant count invariant violated")
)

// validationError keeps the user-facing reason while matching ErrValidation.
type validationError struct{ reason string }

func (e *validationError) Error() string { return e.reason }
func (e *validationError) Is(target error) bool {
	return target == ErrValidation
}

// Invalid returns an error carrying reason that satisfies errors.Is(err, ErrValidation).
func Invalid(format string, args ...any) error {
	return &validationError{reason: fmt.Sprintf(format, args...)}
}

// storageErr classifies a repository error: missing rows become ErrNotFound,
// domain errors pass through, anything else is a persistence failure.
func storageErr(what string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	for _, known := range []error{
		ErrNotFound, ErrFull, ErrAlreadyJoined, ErrNotParticipant, ErrValidation,
		ErrPersistence, ErrMeetupClosed, ErrForbidden, ErrInvariantViolation,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	return fmt.Errorf("%s: %w: %w", what, ErrPersistence, err)
}
