package cms

import (
	"errors"
	"fmt"
)

// ErrUpstreamStatus marks a non-success response from the content store.
var ErrUpstreamStatus = errors.New("cms: unexpected upstream status")

// ErrUnknownCollection is returned when no collection id is configured for a name.
var ErrUnknownCollection = errors.New("cms: collection not configured")

// FetchError is an upstream fetch failure for one collection.
// Status is the HTTP status when the store answered, 0 otherwise.
type FetchError struct {
	Collection Collection
	Status     int
	Err        error
}

func (e *FetchError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("cms fetch %s: status %d: %v", e.Collection, e.Status, e.Err)
	}
	return fmt.Sprintf("cms fetch %s: %v", e.Collection, e.Err)
}

func (e *FetchError) Unwrap() error { return e.Err }

// IsFetchError reports whether err carries a FetchError.
func IsFetchError(err error) bool {
	var fe *FetchError
	return errors.As(err, &fe)
}
