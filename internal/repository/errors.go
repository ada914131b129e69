package repository

import "fmt"

// ErrNotFound represents a resource not found at the repository layer. It
// also covers failed conditional writes: when DynamoDB rejects an update or
// delete because the item is gone (or owned by someone else), the
// repository reports not-found rather than leaking the condition detail.
type ErrNotFound struct {
	Resource string // "project" or "task"
	ID       string // the identifier that was not found
	UserID   string // the requesting user, when the condition involved ownership
}

func (e ErrNotFound) Error() string {
	if e.UserID != "" {
		return fmt.Sprintf("%s with ID '%s' not found for user '%s'", e.Resource, e.ID, e.UserID)
	}
	return fmt.Sprintf("%s with ID '%s' not found", e.Resource, e.ID)
}

// IsNotFound checks if an error is a repository not found error.
func IsNotFound(err error) bool {
	_, ok := err.(ErrNotFound)
	return ok
}

// ErrConflict represents a write rejected because the item already exists.
// With UUID ids this is effectively unreachable, but the conditional create
// keeps it honest.
type ErrConflict struct {
	Resource string
	ID       string
	Reason   string
}

func (e ErrConflict) Error() string {
	return fmt.Sprintf("conflict with %s '%s': %s", e.Resource, e.ID, e.Reason)
}

// IsConflict checks if an error is a repository conflict error.
func IsConflict(err error) bool {
	_, ok := err.(ErrConflict)
	return ok
}

// NewNotFound creates a new ErrNotFound.
func NewNotFound(resource, id string) ErrNotFound {
	return ErrNotFound{Resource: resource, ID: id}
}

// NewNotFoundWithUser creates a new ErrNotFound with user context.
func NewNotFoundWithUser(resource, id, userID string) ErrNotFound {
	return ErrNotFound{Resource: resource, ID: id, UserID: userID}
}

// NewConflict creates a new ErrConflict.
func NewConflict(resource, id, reason string) ErrConflict {
	return ErrConflict{Resource: resource, ID: id, Reason: reason}
}
