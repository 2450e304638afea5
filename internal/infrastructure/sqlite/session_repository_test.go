package sqlite

import (
	"database/sql"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pitcrew/internal/session/domain"
)

func newTestRepository(t *testing.T) domain.Repository {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	_, err = db.Exec(Schema)
	require.NoError(t, err)

	repo := NewRepositoryWithDB(db)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestSaveAssignsID(t *testing.T) {
	repo := newTestRepository(t)

	s := domain.NewSession(uuid.NewString(), "http://r1", "alice", "tok-1")
	require.NoError(t, repo.Save(s))
	assert.Positive(t, s.ID())
}

func TestCurrentRoundTrip(t *testing.T) {
	repo := newTestRepository(t)

	s := domain.NewSession(uuid.NewString(), "http://r1", "alice", "tok-1")
	require.NoError(t, repo.Save(s))

	got, err := repo.Current("http://r1")
	require.NoError(t, err)
	assert.Equal(t, s.GUID(), got.GUID())
	assert.Equal(t, "alice", got.Username())
	assert.Equal(t, "tok-1", got.Token())
	assert.Equal(t, s.CreatedAt().Unix(), got.CreatedAt().Unix())
}

func TestCurrentMissingReturnsNoSessionError(t *testing.T) {
	repo := newTestRepository(t)

	_, err := repo.Current("http://unknown")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoSession)

	var noSession *domain.NoSessionError
	require.ErrorAs(t, err, &noSession)
	assert.Equal(t, "http://unknown", noSession.RegistryURL)
}

func TestSaveReplacesSessionForSameRegistry(t *testing.T) {
	repo := newTestRepository(t)

	first := domain.NewSession(uuid.NewString(), "http://r1", "alice", "tok-1")
	require.NoError(t, repo.Save(first))

	second := domain.NewSession(uuid.NewString(), "http://r1", "alice", "tok-2")
	require.NoError(t, repo.Save(second))

	got, err := repo.Current("http://r1")
	require.NoError(t, err)
	assert.Equal(t, second.GUID(), got.GUID())
	assert.Equal(t, "tok-2", got.Token())
}

func TestSaveUpdatesExistingSession(t *testing.T) {
	repo := newTestRepository(t)

	s := domain.NewSession(uuid.NewString(), "http://r1", "alice", "tok-1")
	require.NoError(t, repo.Save(s))

	s.RotateToken("tok-rotated")
	require.NoError(t, repo.Save(s))

	got, err := repo.Current("http://r1")
	require.NoError(t, err)
	assert.Equal(t, s.GUID(), got.GUID())
	assert.Equal(t, "tok-rotated", got.Token())
}

func TestSessionsAreScopedByRegistry(t *testing.T) {
	repo := newTestRepository(t)

	require.NoError(t, repo.Save(domain.NewSession(uuid.NewString(), "http://r1", "alice", "tok-1")))
	require.NoError(t, repo.Save(domain.NewSession(uuid.NewString(), "http://r2", "bob", "tok-2")))

	got1, err := repo.Current("http://r1")
	require.NoError(t, err)
	got2, err := repo.Current("http://r2")
	require.NoError(t, err)

	assert.Equal(t, "tok-1", got1.Token())
	assert.Equal(t, "tok-2", got2.Token())
}

func TestClear(t *testing.T) {
	repo := newTestRepository(t)

	require.NoError(t, repo.Save(domain.NewSession(uuid.NewString(), "http://r1", "alice", "tok-1")))
	require.NoError(t, repo.Clear("http://r1"))

	_, err := repo.Current("http://r1")
	assert.ErrorIs(t, err, domain.ErrNoSession)

	// Clearing again is not an error.
	require.NoError(t, repo.Clear("http://r1"))
}

func TestEmptyUsernameRoundTripsAsEmpty(t *testing.T) {
	repo := newTestRepository(t)

	require.NoError(t, repo.Save(domain.NewSession(uuid.NewString(), "http://r1", "", "tok-1")))

	got, err := repo.Current("http://r1")
	require.NoError(t, err)
	assert.Empty(t, got.Username())
}
