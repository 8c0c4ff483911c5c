package chromium

import (
	"errors"
	"fmt"
	"strconv"
	"time"
)

// Defaults applied by NewLaunchOptions.
const (
	// DefaultLaunchTimeout bounds process start and the DevTools handshake.
	DefaultLaunchTimeout = 30 * time.Second
	// DefaultCommandTimeout bounds a single CDP command.
	DefaultCommandTimeout = 30 * time.Second
	// DefaultGracefulTimeout is how long Close waits for the browser to exit
	// before killing it.
	DefaultGracefulTimeout = 5 * time.Second
	// DefaultConnectAttempts is the number of websocket dial attempts.
	DefaultConnectAttempts = 3

	quietLogLevel = 3
)

// LaunchOptions is the full set of arguments a headless browser is started
// with.
type LaunchOptions struct {
	ExecutablePath   string
	UserDataDir      string
	ProfileDirectory string

	Headless          bool
	DisableGPU        bool
	NoFirstRun        bool
	DisableExtensions bool
	DisableLogging    bool
	LogLevel          int
	// RemoteDebuggingPort 0 lets the browser pick a free port, which it
	// reports on stderr.
	RemoteDebuggingPort int

	// Env is appended to the current environment of the browser process.
	Env []string

	// LaunchTimeout bounds process startup and the DevTools handshake.
	LaunchTimeout time.Duration
	// CommandTimeout bounds each CDP command.
	CommandTimeout time.Duration
	// GracefulTimeout is how long teardown waits for the browser to exit
	// before killing it.
	GracefulTimeout time.Duration
	// ConnectAttempts is the number of websocket dials made to the DevTools
	// endpoint.
	ConnectAttempts int
}

// NewLaunchOptions returns the fixed headless configuration for running the
// browser at executablePath with the given user data directory and profile.
func NewLaunchOptions(executablePath, userDataDir, profile string) *LaunchOptions {
	return &LaunchOptions{
		ExecutablePath:    executablePath,
		UserDataDir:       userDataDir,
		ProfileDirectory:  profile,
		Headless:          true,
		DisableGPU:        true,
		NoFirstRun:        true,
		DisableExtensions: true,
		DisableLogging:    true,
		LogLevel:          quietLogLevel,
		LaunchTimeout:     DefaultLaunchTimeout,
		CommandTimeout:    DefaultCommandTimeout,
		GracefulTimeout:   DefaultGracefulTimeout,
		ConnectAttempts:   DefaultConnectAttempts,
	}
}

// Validate checks that the options name a browser, a user data directory
// and a profile.
func (o *LaunchOptions) Validate() error {
	switch {
	case o.ExecutablePath == "":
		return errors.New("executable path is empty")
	case o.UserDataDir == "":
		return errors.New("user data directory is empty")
	case o.ProfileDirectory == "":
		return errors.New("profile directory is empty")
	case o.RemoteDebuggingPort < 0:
		return fmt.Errorf("invalid remote debugging port %d", o.RemoteDebuggingPort)
	}
	return nil
}

// Args renders the options as browser command line flags.
func (o *LaunchOptions) Args() []string {
	args := []string{
		"--remote-debugging-port=" + strconv.Itoa(o.RemoteDebuggingPort),
		"--user-data-dir=" + o.UserDataDir,
		"--profile-directory=" + o.ProfileDirectory,
	}
	if o.Headless {
		args = append(args, "--headless=new")
	}
	if o.DisableGPU {
		args = append(args, "--disable-gpu")
	}
	if o.NoFirstRun {
		args = append(args, "--no-first-run")
	}
	if o.DisableExtensions {
		args = append(args, "--disable-extensions")
	}
	if o.DisableLogging {
		args = append(args, "--disable-logging", "--log-level="+strconv.Itoa(o.LogLevel))
	}
	return args
}
