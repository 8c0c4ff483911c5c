// Package chromium is responsible for locating a Chrome installation,
// launching a headless Chrome process and managing its lifetime.
package chromium

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/afero"

	"github.com/livedesk/cookiegrab/log"
)

// ErrNotInstalled is returned when the browser's user data directory or
// executable cannot be found.
var ErrNotInstalled = errors.New("chrome is not installed")

// Installation describes where Chrome keeps its user data and binary.
type Installation struct {
	fs          afero.Fs
	userDataDir string
	executables []string
	logger      *log.Logger
}

// NewInstallation returns an Installation rooted at userDataDir whose binary
// is the first existing path of executables, in order.
func NewInstallation(fs afero.Fs, userDataDir string, executables []string, logger *log.Logger) *Installation {
	return &Installation{
		fs:          fs,
		userDataDir: userDataDir,
		executables: executables,
		logger:      logger,
	}
}

// DefaultInstallation returns the Installation at the platform's standard
// Chrome locations.
func DefaultInstallation(logger *log.Logger) *Installation {
	return NewInstallation(afero.NewOsFs(), defaultUserDataDir(), defaultExecutables(), logger)
}

// LocalInstallation returns the Installation on the local disk. An empty
// userDataDir or executablePath selects the platform's standard location.
func LocalInstallation(userDataDir, executablePath string, logger *log.Logger) *Installation {
	inst := DefaultInstallation(logger)
	if userDataDir != "" {
		inst.userDataDir = userDataDir
	}
	if executablePath != "" {
		inst.executables = []string{executablePath}
	}
	return inst
}

// UserDataDir returns the browser's user data directory.
func (i *Installation) UserDataDir() (string, error) {
	if i.userDataDir == "" {
		return "", fmt.Errorf("%w: user data directory could not be resolved", ErrNotInstalled)
	}
	ok, err := afero.DirExists(i.fs, i.userDataDir)
	if err != nil || !ok {
		return "", fmt.Errorf("%w: no user data directory at %q", ErrNotInstalled, i.userDataDir)
	}
	return i.userDataDir, nil
}

// FindExecutable returns the first candidate executable path that exists.
func (i *Installation) FindExecutable() (string, error) {
	for _, path := range i.executables {
		if path == "" {
			continue
		}
		if ok, _ := afero.Exists(i.fs, path); ok {
			i.logger.Debugf("Installation:FindExecutable", "using %q", path)
			return path, nil
		}
	}
	return "", fmt.Errorf("%w: none of [%s] exist", ErrNotInstalled, strings.Join(i.executables, ", "))
}
