// Package xdg resolves XDG Base Directory paths for dbgate. Directories are
// created on first use with private permissions.
package xdg

import (
	"os"
	"path/filepath"
)

const appDir = "dbgate"

func resolve(envVar string, fallback ...string) (string, error) {
	base := os.Getenv(envVar)
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		base = filepath.Join(append([]string{home}, fallback...)...)
	}
	dir := filepath.Join(base, appDir)
	if err := os.MkdirAll(dir, 0o700); err != nil { // private dir
		return "", err
	}
	return dir, nil
}

// ConfigDir returns $XDG_CONFIG_HOME/dbgate, defaulting to ~/.config/dbgate.
func ConfigDir() (string, error) {
	return resolve("XDG_CONFIG_HOME", ".config")
}

// StateDir returns $XDG_STATE_HOME/dbgate, defaulting to ~/.local/state/dbgate.
// The shell keeps its history here.
func StateDir() (string, error) {
	return resolve("XDG_STATE_HOME", ".local", "state")
}
