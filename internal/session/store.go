// Package session binds the session domain to a single registry so callers
// deal in tokens instead of entities.
package session

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"pitcrew/internal/session/domain"
)

// Store scopes a domain.Repository to one registry URL. It satisfies the
// engine's SessionStore and adds the Set side used by login.
type Store struct {
	repo        domain.Repository
	registryURL string
}

// NewStore builds a Store for registryURL.
func NewStore(repo domain.Repository, registryURL string) *Store {
	return &Store{repo: repo, registryURL: registryURL}
}

// Get resolves the stored token. ok is false when no session exists, which
// is a normal condition rather than an error.
func (s *Store) Get(_ context.Context) (string, bool, error) {
	sess, err := s.repo.Current(s.registryURL)
	if err != nil {
		if errors.Is(err, domain.ErrNoSession) {
			return "", false, nil
		}
		return "", false, err
	}
	return sess.Token(), true, nil
}

// Set replaces the stored session with a fresh one for username/token.
func (s *Store) Set(_ context.Context, username, token string) error {
	sess := domain.NewSession(uuid.NewString(), s.registryURL, username, token)
	return s.repo.Save(sess)
}

// Clear drops the stored session. Clearing an absent session is a no-op.
func (s *Store) Clear(_ context.Context) error {
	return s.repo.Clear(s.registryURL)
}

// Username reports who the stored session belongs to, or "" when absent.
func (s *Store) Username(_ context.Context) (string, error) {
	sess, err := s.repo.Current(s.registryURL)
	if err != nil {
		if errors.Is(err, domain.ErrNoSession) {
			return "", nil
		}
		return "", err
	}
	return sess.Username(), nil
}
