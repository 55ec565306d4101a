package store

import (
	"errors"
	"fmt"

	"github.com/clubsync/clubsync/supabase"
)

var (
	// ErrNotAuthenticated means the operation requires an identity that is
	// absent.
	ErrNotAuthenticated = errors.New("not authenticated")
	// ErrNotFound means a looked-up entity is absent. Empty lists are never
	// an error.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate means a uniqueness constraint was violated, e.g. joining
	// a club twice.
	ErrDuplicate = errors.New("already exists")
	// ErrAuthentication means the remote service rejected the credentials.
	ErrAuthentication = errors.New("authentication failed")
)

// RemoteError wraps any remote failure that is not one of the recognized
// kinds above. Stores never retry; the cached state is left unchanged.
type RemoteError struct {
	Op  string
	Err error
}

func (e *RemoteError) Error() string {
	return fmt.Sprintf("remote operation %q failed: %s", e.Op, e.Err)
}

func (e *RemoteError) Unwrap() error {
	return e.Err
}

func remoteErr(op string, err error) error {
	var apiErr *supabase.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.IsNotFound():
			return fmt.Errorf("%s: %w", op, ErrNotFound)
		case apiErr.IsDuplicate():
			return fmt.Errorf("%s: %w", op, ErrDuplicate)
		}
	}
	if errors.Is(err, supabase.ErrInvalidCredentials) {
		return fmt.Errorf("%s: %w", op, ErrAuthentication)
	}
	return &RemoteError{Op: op, Err: err}
}
