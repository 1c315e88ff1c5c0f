package api

import (
	"errors"
	"fmt"
)

// NotFoundError indicates the backend returned 404 for a mailbox or
// email lookup. The entity has expired or never existed; callers treat
// this as stale local state and run recovery, not as a hard failure.
type NotFoundError struct {
	Kind string // "mailbox", "email", or "attachment"
	ID   string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found (expired or missing)", e.Kind, e.ID)
}

// IsNotFound reports whether err (or any error in its chain) is a
// NotFoundError.
func IsNotFound(err error) bool {
	var nf *NotFoundError
	return errors.As(err, &nf)
}
