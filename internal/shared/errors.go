package shared

import (
	"errors"
	"fmt"
)

// Error taxonomy shared across the engine. Domain packages wrap these
// sentinels so the HTTP layer can map them without knowing the details.
var (
	// ErrValidation indicates malformed or missing input. No writes were
	// attempted when this is returned.
	ErrValidation = errors.New("validation failed")
	// ErrNotFound indicates a referenced product, sale or customer is absent.
	ErrNotFound = errors.New("not found")
	// ErrConflict indicates a state conflict such as an oversell attempt or
	// a duplicate stock record for one product and location.
	ErrConflict = errors.New("conflict")
	// ErrPersistence indicates the backing store failed or the transaction
	// aborted. The unit of work guarantees no partial effect remains, so
	// this is the only class a caller may safely retry.
	ErrPersistence = errors.New("persistence failure")
)

// WrapPersistence tags infrastructure errors as ErrPersistence while
// leaving already-classified domain errors untouched.
func WrapPersistence(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrValidation) || errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrConflict) || errors.Is(err, ErrPersistence) {
		return err
	}
	return fmt.Errorf("%w: %v", ErrPersistence, err)
}
