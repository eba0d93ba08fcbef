package token

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/oauth2"
)

func TestLoadNotFound(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "missing.json"))
	// Avoid the default candidates picking up a real token.json
	store.candidates = store.candidates[:1]

	_, err := store.Load()

	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := NewStore(path).Load()

	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoadMissingAccessToken(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"refresh_token":"r"}`), 0600))

	_, err := NewStore(path).Load()

	assert.ErrorIs(t, err, ErrInvalid)
}

func TestLoadValid(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"access_token":"abc","refresh_token":"r","token_type":"Bearer"}`), 0600))

	tok, err := NewStore(path).Load()

	require.NoError(t, err)
	assert.Equal(t, "abc", tok.AccessToken)
	assert.Equal(t, "r", tok.RefreshToken)
}

func TestExplicitPathTakesPriority(t *testing.T) {
	dir := t.TempDir()
	explicit := filepath.Join(dir, "explicit.json")
	require.NoError(t, os.WriteFile(explicit, []byte(`{"access_token":"from-explicit"}`), 0600))

	store := NewStore(explicit)

	assert.Equal(t, explicit, store.candidates[0])
	tok, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "from-explicit", tok.AccessToken)
}

func TestSaveThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token.json")
	store := NewStore(path)

	tok := &oauth2.Token{
		AccessToken:  "saved",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		Expiry:       time.Now().Add(time.Hour).Truncate(time.Second),
	}
	require.NoError(t, store.Save(tok))

	loaded, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, tok.AccessToken, loaded.AccessToken)
	assert.Equal(t, tok.RefreshToken, loaded.RefreshToken)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
