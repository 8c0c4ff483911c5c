//go:build darwin

package chromium

import (
	"os"
	"path/filepath"
)

const macBinary = "Google Chrome.app/Contents/MacOS/Google Chrome"

func defaultUserDataDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, "Library", "Application Support", "Google", "Chrome")
}

func defaultExecutables() []string {
	var paths []string
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, "Applications", macBinary))
	}
	return append(paths, filepath.Join("/Applications", macBinary))
}
