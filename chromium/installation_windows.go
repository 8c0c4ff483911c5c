//go:build windows

package chromium

import (
	"os"
	"path/filepath"
)

func defaultUserDataDir() string {
	local := os.Getenv("LOCALAPPDATA")
	if local == "" {
		return ""
	}
	return filepath.Join(local, "Google", "Chrome", "User Data")
}

// defaultExecutables lists the per-user install first, then the system-wide
// ones.
func defaultExecutables() []string {
	var paths []string
	if local := os.Getenv("LOCALAPPDATA"); local != "" {
		paths = append(paths, filepath.Join(local, "Google", "Chrome", "Application", "chrome.exe"))
	}
	return append(paths,
		`C:\Program Files\Google\Chrome\Application\chrome.exe`,
		`C:\Program Files (x86)\Google\Chrome\Application\chrome.exe`,
	)
}
