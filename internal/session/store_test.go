package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/dewinglab/coinmatch/internal/api"
	"github.com/dewinglab/coinmatch/internal/prefs"
)

func newServerClient(t *testing.T, handler http.HandlerFunc) *api.Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c, err := api.New(api.Config{BaseURL: srv.URL, HTTPClient: srv.Client()})
	require.NoError(t, err)
	return c
}

func TestRestoreWithoutBlob(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	s := New(client)
	require.Equal(t, StateLoading, s.State())

	s.Restore(context.Background())
	require.Equal(t, StateAnonymous, s.State())
	require.Empty(t, s.Token())
}

func TestRestoreRefreshesProfile(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	require.NoError(t, prefs.SaveSession(prefs.StoredSession{
		Token: "tok-1",
		User:  api.User{Name: "Cached Name", Email: "ada@museum.example"},
	}))

	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "tok-1", r.Header.Get(api.SessionHeader))
		w.Write([]byte(`{"name":"Ada Lovelace","email":"ada@museum.example","role":"curator"}`))
	})
	s := New(client)
	s.Restore(context.Background())

	require.Equal(t, StateAuthenticated, s.State())
	require.Equal(t, "tok-1", s.Token())
	require.Equal(t, "Ada Lovelace", s.User().Name)

	// refreshed profile is persisted
	stored, err := prefs.LoadSession()
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, "Ada Lovelace", stored.User.Name)
}

func TestRestoreKeepsCachedProfileOnRefreshFailure(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	require.NoError(t, prefs.SaveSession(prefs.StoredSession{
		Token: "tok-1",
		User:  api.User{Name: "Cached Name"},
	}))

	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	s := New(client)
	s.Restore(context.Background())

	require.Equal(t, StateAuthenticated, s.State())
	require.Equal(t, "Cached Name", s.User().Name)
}

func TestRestoreClearsCorruptBlob(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	path := filepath.Join(dir, "coinmatch", "session.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o600))

	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("no request expected")
	})
	s := New(client)
	s.Restore(context.Background())

	require.Equal(t, StateAnonymous, s.State())
	_, err := os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestLoginPersistsSession(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"token":"tok-9","user":{"name":"Ada","email":"ada@museum.example"}}`))
	})
	s := New(client)
	require.NoError(t, s.Login(context.Background(), "ada@museum.example", "pw"))

	require.Equal(t, StateAuthenticated, s.State())
	require.Equal(t, "tok-9", s.Token())

	stored, err := prefs.LoadSession()
	require.NoError(t, err)
	require.NotNil(t, stored)
	require.Equal(t, "tok-9", stored.Token)
}

func TestLoginFailureStaysAnonymous(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"detail":"invalid credentials"}`))
	})
	s := New(client)
	s.Restore(context.Background())
	err := s.Login(context.Background(), "ada@museum.example", "wrong")
	require.Error(t, err)
	require.Equal(t, StateAnonymous, s.State())
	require.Empty(t, s.Token())
}

func TestLogoutClearsEvenWhenServerFails(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	require.NoError(t, prefs.SaveSession(prefs.StoredSession{Token: "tok-1", User: api.User{Name: "Ada"}}))

	client := newServerClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/logout" {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"name":"Ada"}`))
	})
	s := New(client)
	s.Restore(context.Background())
	require.Equal(t, StateAuthenticated, s.State())

	s.Logout(context.Background())
	require.Equal(t, StateAnonymous, s.State())
	require.Empty(t, s.Token())

	stored, err := prefs.LoadSession()
	require.NoError(t, err)
	require.Nil(t, stored)
}
