package services

import (
	"fmt"

	"github.com/ogforum/excovote/internal/errors"
	"github.com/ogforum/excovote/internal/repository"
)

// Service errors
var (
	ErrNotOnRoster        = &ServiceError{Message: "name is not on the eligible voter roster"}
	ErrAlreadyVoted       = &ServiceError{Message: "nominations have already been submitted under this name"}
	ErrGuardUnavailable   = &ServiceError{Message: "eligibility could not be verified, please try again"}
	ErrMatcherUnavailable = &ServiceError{Message: "name matching is unavailable, submission was not recorded"}
	ErrUnresolvedDecision = &ServiceError{Message: "a flagged name is missing its confirmation decision"}
)

// ServiceError represents a service-level error
type ServiceError struct {
	Message string
}

func (e *ServiceError) Error() string {
	return e.Message
}

// InvalidPositionError represents an unknown position key error
type InvalidPositionError struct {
	Position string
}

func (e *InvalidPositionError) Error() string {
	return fmt.Sprintf("invalid position: %s", e.Position)
}

// mapStorageErr classifies a storage failure by its driver code so
// callers can tell a permission problem from an outage. action reads
// as "failed to <action>".
func mapStorageErr(err error, action string) error {
	if repository.IsAccessDenied(err) {
		return errors.AccessDenied("not authorized to " + action)
	}
	if repository.IsTransient(err) {
		return errors.Unavailable("storage is unavailable, please try again", err)
	}
	return errors.Wrap(err, errors.ErrInternal, "failed to "+action)
}
