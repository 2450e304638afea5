package sqlite

import (
	"time"

	"pitcrew/internal/session/domain"
)

// SessionModel represents the database row for the sessions table.
// Fields map directly to SQL columns with Unix timestamps for time values.
type SessionModel struct {
	ID          int64
	GUID        string
	RegistryURL string
	Username    *string // nullable
	Token       string
	CreatedAt   int64 // Unix timestamp
	UpdatedAt   int64 // Unix timestamp
}

// toSessionModel converts a domain Session entity to a database SessionModel.
func toSessionModel(s *domain.Session) *SessionModel {
	m := &SessionModel{
		ID:          s.ID(),
		GUID:        s.GUID(),
		RegistryURL: s.RegistryURL(),
		Token:       s.Token(),
		CreatedAt:   s.CreatedAt().Unix(),
		UpdatedAt:   s.UpdatedAt().Unix(),
	}
	if s.Username() != "" {
		username := s.Username()
		m.Username = &username
	}
	return m
}

// toDomainSession converts a database SessionModel to a domain Session entity.
func (m *SessionModel) toDomainSession() *domain.Session {
	username := ""
	if m.Username != nil {
		username = *m.Username
	}
	return domain.Rehydrate(
		m.ID, m.GUID, m.RegistryURL, username, m.Token,
		time.Unix(m.CreatedAt, 0), time.Unix(m.UpdatedAt, 0),
	)
}
