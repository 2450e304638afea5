package sqlite

import (
	"database/sql"
	"errors"
	"fmt"

	"pitcrew/internal/session/domain"
)

// sessionColumns is the list of columns to select for session queries.
const sessionColumns = `id, guid, registry_url, username, token, created_at, updated_at`

// sessionRepository implements domain.Repository using SQLite.
type sessionRepository struct {
	db *sql.DB
}

func newSessionRepository(db *sql.DB) *sessionRepository {
	return &sessionRepository{db: db}
}

// Ensure sessionRepository implements domain.Repository.
var _ domain.Repository = (*sessionRepository)(nil)

// scanSession scans a row into a SessionModel.
func scanSession(scanner interface{ Scan(...any) error }) (*SessionModel, error) {
	var model SessionModel
	err := scanner.Scan(
		&model.ID, &model.GUID, &model.RegistryURL, &model.Username,
		&model.Token, &model.CreatedAt, &model.UpdatedAt,
	)
	return &model, err
}

// Save persists a session. New sessions (ID == 0) replace any existing row
// for the same registry; existing sessions are updated in place.
func (r *sessionRepository) Save(session *domain.Session) error {
	model := toSessionModel(session)

	if session.ID() == 0 {
		// One session per registry: logging in again replaces the old row.
		if err := r.Clear(model.RegistryURL); err != nil {
			return err
		}

		result, err := r.db.Exec(
			`INSERT INTO sessions (guid, registry_url, username, token, created_at, updated_at)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			model.GUID, model.RegistryURL, model.Username, model.Token,
			model.CreatedAt, model.UpdatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert session: %w", err)
		}
		id, err := result.LastInsertId()
		if err != nil {
			return fmt.Errorf("failed to get last insert id: %w", err)
		}
		session.SetID(id)
		return nil
	}

	_, err := r.db.Exec(
		`UPDATE sessions SET username = ?, token = ?, updated_at = ? WHERE id = ?`,
		model.Username, model.Token, model.UpdatedAt, model.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update session: %w", err)
	}
	return nil
}

// Current retrieves the session for a registry.
func (r *sessionRepository) Current(registryURL string) (*domain.Session, error) {
	row := r.db.QueryRow(
		`SELECT `+sessionColumns+` FROM sessions WHERE registry_url = ?`,
		registryURL,
	)

	model, err := scanSession(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &domain.NoSessionError{RegistryURL: registryURL}
		}
		return nil, fmt.Errorf("failed to query session: %w", err)
	}

	return model.toDomainSession(), nil
}

// Clear removes the session for a registry. A missing row is not an error.
func (r *sessionRepository) Clear(registryURL string) error {
	if _, err := r.db.Exec(`DELETE FROM sessions WHERE registry_url = ?`, registryURL); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// Close releases the underlying database handle.
func (r *sessionRepository) Close() error {
	return r.db.Close()
}
