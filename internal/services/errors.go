package services

import (
	"errors"
	"fmt"

	"github.com/YasminCastro/malucas-awards-v2/internal/models"
	"github.com/YasminCastro/malucas-awards-v2/internal/repositories"
)

var (
	// ErrPhaseViolation is matched by every PhaseError
	ErrPhaseViolation = errors.New("operation not permitted in the current voting phase")
	// ErrNotFound is returned when a referenced record does not exist
	ErrNotFound = repositories.ErrNotFound
	// ErrConflict is returned when a name or handle is already taken
	ErrConflict = errors.New("already exists")
	// ErrUnauthorized is returned for bad credentials
	ErrUnauthorized = errors.New("invalid credentials")
	// ErrForbidden is returned when an authenticated user lacks a permission
	ErrForbidden = errors.New("forbidden")
	// ErrPasswordCreationNotAvailable is returned while only admins may set passwords
	ErrPasswordCreationNotAvailable = errors.New("password creation is not available yet")
)

// PhaseError reports an operation attempted outside the phase that allows it
type PhaseError struct {
	Required models.VotingPhase
	Current  models.VotingPhase
}

func (e *PhaseError) Error() string {
	switch e.Required {
	case models.PhaseVoting:
		return "voting is not open"
	case models.PhaseResults:
		return "results not yet available"
	}
	return fmt.Sprintf("requires phase %s, current phase is %s", e.Required, e.Current)
}

// Is makes errors.Is(err, ErrPhaseViolation) match
func (e *PhaseError) Is(target error) bool {
	return target == ErrPhaseViolation
}

// ValidationError reports malformed input
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

func invalid(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}

// ConsistencyError reports a ballot replacement that deleted the old votes but
// could not store the new ones. The user's ballot is empty, or partial when the
// cleanup also failed, until they resubmit.
type ConsistencyError struct {
	UserID string
	Err    error
}

func (e *ConsistencyError) Error() string {
	return "votes of user " + e.UserID + " could not be replaced: " + e.Err.Error()
}

func (e *ConsistencyError) Unwrap() error { return e.Err }

// fromRepo maps repository sentinels onto service errors
func fromRepo(err error) error {
	if errors.Is(err, repositories.ErrDuplicate) {
		return fmt.Errorf("%w: %w", ErrConflict, err)
	}
	return err
}
