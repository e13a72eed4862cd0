package repository

import (
	"errors"
	"fmt"

	apperrors "github.com/jwalitptl/hpms-api/pkg/errors"
)

// ToAppError maps a store error onto the API error taxonomy. resource and id
// describe the row the caller was working on.
func ToAppError(err error, resource string, id any) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, ErrNotFound):
		return apperrors.NotFound(resource, id)
	case errors.Is(err, ErrDuplicate):
		return apperrors.Conflict(fmt.Sprintf("%s already exists", resource))
	case errors.Is(err, ErrReferenced):
		return apperrors.Conflict(fmt.Sprintf("%s %v still has dependent records", resource, id))
	case errors.Is(err, ErrMissingReference):
		return apperrors.InvalidFormat("", fmt.Sprintf("%s references a record that does not exist", resource), err)
	}
	if _, ok := apperrors.As(err); ok {
		return err
	}
	return apperrors.StoreUnavailable(err)
}
