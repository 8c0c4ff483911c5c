//go:build !windows && !darwin

package chromium

import (
	"os"
	"path/filepath"
)

func defaultUserDataDir() string {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "google-chrome")
}

func defaultExecutables() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".local", "bin", "google-chrome"))
	}
	return append(paths,
		"/opt/google/chrome/chrome",
		"/usr/bin/google-chrome-stable",
		"/usr/bin/google-chrome",
	)
}
