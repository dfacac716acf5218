package services

import (
	"errors"

	"matchday-system/store"
)

// Engine error taxonomy. Handlers map these onto HTTP statuses;
// everything else surfaces as an internal error.
var (
	ErrNotFound          = errors.New("not found")
	ErrUnauthorized      = errors.New("unauthorized")
	ErrInvalidState      = errors.New("invalid state")
	ErrValidation        = errors.New("validation failed")
	ErrDependencyTimeout = errors.New("dependency unavailable")
)

// isVersionConflict reports whether err is a lost conditional replace.
func isVersionConflict(err error) bool {
	return errors.Is(err, store.ErrVersionConflict)
}

// fromStore lifts store-level failures into the engine taxonomy.
func fromStore(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, store.ErrNotFound):
		return errors.Join(ErrNotFound, err)
	case errors.Is(err, store.ErrAlreadyExists):
		return errors.Join(ErrInvalidState, err)
	case errors.Is(err, store.ErrUnavailable):
		return errors.Join(ErrDependencyTimeout, err)
	default:
		return err
	}
}
