package cdptest

import (
	"fmt"
	"os"
	"time"
)

// Fake browser process modes.
const (
	// ModeListen announces the DevTools URL and waits to be killed.
	ModeListen = ""
	// ModeNoDisplay prints a fatal error and exits with status 1.
	ModeNoDisplay = "no-display"
	// ModeSilent never announces a DevTools URL.
	ModeSilent = "silent"
)

const (
	envFakeBrowser     = "COOKIEGRAB_FAKE_BROWSER"
	envFakeBrowserWS   = "COOKIEGRAB_FAKE_BROWSER_WS"
	envFakeBrowserMode = "COOKIEGRAB_FAKE_BROWSER_MODE"
)

// RunFakeBrowser turns the current process into a fake Chrome when it was
// started with the environment from FakeBrowserEnv. It reports false
// otherwise. Call it first thing in TestMain so that the test binary can be
// launched as the browser executable.
func RunFakeBrowser() bool {
	if os.Getenv(envFakeBrowser) != "1" {
		return false
	}

	switch os.Getenv(envFakeBrowserMode) {
	case ModeNoDisplay:
		fmt.Fprintln(os.Stderr, "[6497:6497:1013/103521.932979:ERROR:ozone_platform_x11.cc(247)] Missing X server or $DISPLAY")
		os.Exit(1)
	case ModeSilent:
	default:
		fmt.Fprintln(os.Stderr, "[23400:23418:1028/115455.877614:ERROR:bus.cc(399)] Failed to connect to the bus")
		fmt.Fprintln(os.Stderr, "DevTools listening on "+os.Getenv(envFakeBrowserWS))
	}
	time.Sleep(time.Hour)

	return true
}

// FakeBrowserEnv is the environment that makes RunFakeBrowser act as a
// browser in mode whose DevTools endpoint is wsURL.
func FakeBrowserEnv(wsURL, mode string) []string {
	return []string{
		envFakeBrowser + "=1",
		envFakeBrowserWS + "=" + wsURL,
		envFakeBrowserMode + "=" + mode,
	}
}
