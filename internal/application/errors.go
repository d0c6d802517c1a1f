package application

import (
	"errors"
)

var (
	// ErrInvalidCredentials is the single outcome for an unknown email and
	// a wrong password alike.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailTaken         = errors.New("email already in use")
	ErrUserNotFound       = errors.New("user not found")
	ErrDependency         = errors.New("dependency failure")
)

// DependencyError wraps a store, hashing or signing failure. Op names the
// step that failed; Err is kept for server-side logs only.
type DependencyError struct {
	Op  string
	Err error
}

func (e *DependencyError) Error() string {
	return e.Op + ": " + e.Err.Error()
}

func (e *DependencyError) Unwrap() error { return e.Err }

func (e *DependencyError) Is(target error) bool { return target == ErrDependency }
