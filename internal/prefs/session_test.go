package prefs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dewinglab/coinmatch/internal/api"
)

func TestSessionRoundTrip(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	loaded, err := LoadSession()
	require.NoError(t, err)
	require.Nil(t, loaded)

	s := StoredSession{Token: "tok-1", User: api.User{Name: "Ada", Email: "ada@museum.example"}}
	require.NoError(t, SaveSession(s))

	loaded, err = LoadSession()
	require.NoError(t, err)
	require.NotNil(t, loaded)
	require.Equal(t, s, *loaded)

	require.NoError(t, ClearSession())
	loaded, err = LoadSession()
	require.NoError(t, err)
	require.Nil(t, loaded)

	// clearing twice is fine
	require.NoError(t, ClearSession())
}

func TestLoadSessionCorrupt(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path := filepath.Join(dir, "coinmatch", "session.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	_, err := LoadSession()
	require.Error(t, err)
}

func TestLoadSessionEmptyToken(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	require.NoError(t, SaveSession(StoredSession{Token: ""}))
	loaded, err := LoadSession()
	require.NoError(t, err)
	require.Nil(t, loaded)
}
