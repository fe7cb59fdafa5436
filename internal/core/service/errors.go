package service

import (
	"errors"

	"github.com/martijn/homedash/internal/core/domain"
)

// InternalError wraps a storage or filesystem failure. Op names the failed
// step for logs; clients only ever see a generic message.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

// internal passes domain errors through untouched and wraps everything else.
func internal(op string, err error) error {
	if err == nil || isDomainError(err) {
		return err
	}
	var ie *InternalError
	if errors.As(err, &ie) {
		return err
	}
	return &InternalError{Op: op, Err: err}
}

func isDomainError(err error) bool {
	var (
		validation *domain.ValidationError
		conflict   *domain.ConflictError
		auth       *domain.AuthError
		notFound   *domain.NotFoundError
	)
	return errors.As(err, &validation) ||
		errors.As(err, &conflict) ||
		errors.As(err, &auth) ||
		errors.As(err, &notFound)
}
