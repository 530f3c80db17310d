package repositories

import (
	stderrors "errors"
	"fmt"

	"github.com/ga-dutra/batepapo-uol-api/errors"
)

// asStoreErr folds backend failures into ErrStoreUnavailable so the
// service boundary can translate them uniformly. Domain sentinels
// raised inside a transaction pass through untouched.
func asStoreErr(err error) error {
	if err == nil {
		return nil
	}
	for _, sentinel := range []error{
		errors.ErrNameTaken,
		errors.ErrNotFound,
		errors.ErrForbidden,
	} {
		if stderrors.Is(err, sentinel) {
			return err
		}
	}
	return fmt.Errorf("%w: %v", errors.ErrStoreUnavailable, err)
}
