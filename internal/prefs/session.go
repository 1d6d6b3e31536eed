// Package prefs persists small client-side state under the user config dir.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/dewinglab/coinmatch/internal/api"
)

const sessionFile = "session.json"

// StoredSession is the persisted session blob.
type StoredSession struct {
	Token string   `json:"token"`
	User  api.User `json:"user"`
}

func sessionPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", err
	}
	dir = filepath.Join(dir, "coinmatch")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, sessionFile), nil
}

// SaveSession writes the session blob atomically.
func SaveSession(s StoredSession) error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadSession reads the persisted session. A missing file means no
// session (nil, nil); a corrupt file returns an error so the caller can
// clear it.
func LoadSession() (*StoredSession, error) {
	path, err := sessionPath()
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	var s StoredSession
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, err
	}
	if s.Token == "" {
		return nil, nil
	}
	return &s, nil
}

// ClearSession removes the persisted session if present.
func ClearSession() error {
	path, err := sessionPath()
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
