// Package domain provides the pure domain layer for registry sessions with no
// infrastructure dependencies.
//
// The Session entity holds the opaque token proving an authenticated operator
// identity to one registry. Presence of a session implies authenticated; the
// token's meaning is entirely up to the registry.
package domain

import "time"

// Session represents an authenticated operator identity against one registry.
// All fields are unexported to enforce encapsulation; use the constructor
// and getter methods to access data.
type Session struct {
	id          int64
	guid        string
	registryURL string
	username    string
	token       string
	createdAt   time.Time
	updatedAt   time.Time
}

// NewSession creates a Session for the given registry with an opaque token.
// The ID is left as zero; it is assigned by the persistence layer.
func NewSession(guid, registryURL, username, token string) *Session {
	now := time.Now()
	return &Session{
		guid:        guid,
		registryURL: registryURL,
		username:    username,
		token:       token,
		createdAt:   now,
		updatedAt:   now,
	}
}

// Rehydrate reconstructs a Session from persisted state.
func Rehydrate(id int64, guid, registryURL, username, token string, createdAt, updatedAt time.Time) *Session {
	return &Session{
		id:          id,
		guid:        guid,
		registryURL: registryURL,
		username:    username,
		token:       token,
		createdAt:   createdAt,
		updatedAt:   updatedAt,
	}
}

// ID returns the internal database identifier (zero until persisted).
func (s *Session) ID() int64 { return s.id }

// SetID assigns the database identifier. Called by the persistence layer.
func (s *Session) SetID(id int64) { s.id = id }

// GUID returns the stable unique identifier of this session.
func (s *Session) GUID() string { return s.guid }

// RegistryURL returns the registry this session authenticates against.
func (s *Session) RegistryURL() string { return s.registryURL }

// Username returns the operator name the token was issued for.
// May be empty when the registry does not report one.
func (s *Session) Username() string { return s.username }

// Token returns the opaque session token.
func (s *Session) Token() string { return s.token }

// CreatedAt returns when the session was created.
func (s *Session) CreatedAt() time.Time { return s.createdAt }

// UpdatedAt returns when the session was last modified.
func (s *Session) UpdatedAt() time.Time { return s.updatedAt }

// RotateToken replaces the token, e.g. after a fresh login.
func (s *Session) RotateToken(token string) {
	s.token = token
	s.updatedAt = time.Now()
}
