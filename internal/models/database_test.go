package models

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDatabase(t *testing.T) *Database {
	t.Helper()
	db, err := NewDatabase(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestSessionRoundTrip(t *testing.T) {
	db := openTestDatabase(t)

	_, err := db.GetSession("default")
	require.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, db.SaveSession(&Session{
		Profile:      "default",
		AccessToken:  "access-1",
		RefreshToken: "refresh-1",
		UserID:       7,
		Username:     "ana",
	}))

	s, err := db.GetSession("default")
	require.NoError(t, err)
	assert.Equal(t, "access-1", s.AccessToken)
	assert.Equal(t, "ana", s.Username)

	// Saving again for the same profile replaces the row
	require.NoError(t, db.SaveSession(&Session{
		Profile:      "default",
		AccessToken:  "access-2",
		RefreshToken: "refresh-2",
		UserID:       7,
		Username:     "ana",
	}))
	s, err = db.GetSession("default")
	require.NoError(t, err)
	assert.Equal(t, "access-2", s.AccessToken)
	assert.Equal(t, "refresh-2", s.RefreshToken)
}

func TestUpdateAccessToken(t *testing.T) {
	db := openTestDatabase(t)

	err := db.UpdateAccessToken("missing", "x")
	require.ErrorIs(t, err, ErrSessionNotFound)

	require.NoError(t, db.SaveSession(&Session{Profile: "p", AccessToken: "old", RefreshToken: "r"}))
	require.NoError(t, db.UpdateAccessToken("p", "new"))

	s, err := db.GetSession("p")
	require.NoError(t, err)
	assert.Equal(t, "new", s.AccessToken)
	assert.Equal(t, "r", s.RefreshToken)
}

func TestDeleteSession(t *testing.T) {
	db := openTestDatabase(t)
	require.NoError(t, db.SaveSession(&Session{Profile: "p", AccessToken: "a"}))
	require.NoError(t, db.DeleteSession("p"))

	_, err := db.GetSession("p")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}
