// Package paths resolves smbox's per-user file locations.
package paths

import (
	"os"
	"path/filepath"
)

// LocalConfig is the project-local config location, checked before the
// user config.
const LocalConfig = ".smbox/config.yaml"

// DataDir returns $XDG_DATA_HOME/smbox, falling back to
// ~/.local/share/smbox. Returns "" if no home directory is available.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "smbox")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".local", "share", "smbox")
}

// TrashDB returns the default trash database path.
func TrashDB() string {
	dir := DataDir()
	if dir == "" {
		return ""
	}
	return filepath.Join(dir, "trash.db")
}

// LogFile returns the debug log path, or "debug.log" in the working
// directory when there is no data dir.
func LogFile() string {
	dir := DataDir()
	if dir == "" {
		return "debug.log"
	}
	return filepath.Join(dir, "debug.log")
}

// UserConfig returns ~/.config/smbox/config.yaml, or "" without a home
// directory.
func UserConfig() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "smbox", "config.yaml")
}
