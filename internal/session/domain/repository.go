package domain

import (
	"errors"
	"fmt"
)

// ErrNoSession is returned when no session exists for a registry.
var ErrNoSession = errors.New("no session")

// NoSessionError carries the registry the lookup was scoped to.
type NoSessionError struct {
	RegistryURL string
}

func (e *NoSessionError) Error() string {
	return fmt.Sprintf("no session for registry %s", e.RegistryURL)
}

func (e *NoSessionError) Unwrap() error { return ErrNoSession }

// Repository defines the persistence interface for Session entities.
// Implementations may use SQLite, in-memory storage, or other backends.
// At most one session exists per registry URL.
type Repository interface {
	// Save persists a session. For new sessions (ID == 0) this creates a
	// record and sets the ID, replacing any prior session for the same
	// registry. For existing sessions it updates the record.
	Save(session *Session) error

	// Current retrieves the session for a registry.
	// Returns a *NoSessionError when none exists.
	Current(registryURL string) (*Session, error)

	// Clear removes the session for a registry. Clearing a registry with
	// no session is not an error.
	Clear(registryURL string) error

	// Close releases any resources held by the repository.
	Close() error
}
