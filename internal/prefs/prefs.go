// Package prefs persists small UI preferences that outlive a session.
package prefs

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

const prefsFile = "prefs.json"

type Prefs struct {
	LastUser  string    `json:"last_user,omitempty"`
	LastLogin time.Time `json:"last_login,omitempty"`
}

func prefsPath(dir string) (string, error) {
	if dir == "" {
		base, err := os.UserConfigDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(base, "sceneflow")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return filepath.Join(dir, prefsFile), nil
}

// Save writes p under dir (the user config dir when empty).
func Save(dir string, p Prefs) error {
	path, err := prefsPath(dir)
	if err != nil {
		return err
	}
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// Load returns the saved prefs, or zero Prefs if none were saved yet.
func Load(dir string) (Prefs, error) {
	path, err := prefsPath(dir)
	if err != nil {
		return Prefs{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Prefs{}, nil
		}
		return Prefs{}, err
	}
	var p Prefs
	if err := json.Unmarshal(data, &p); err != nil {
		return Prefs{}, err
	}
	return p, nil
}
