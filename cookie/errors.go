package cookie

import "fmt"

// ErrorKind classifies a cookie extraction failure.
type ErrorKind int

const (
	// KindOther is any failure not covered by the other kinds, including
	// protocol errors while enumerating cookies.
	KindOther ErrorKind = iota
	// KindBrowserNotInstalled means the browser's user data directory or
	// executable could not be found.
	KindBrowserNotInstalled
	// KindBrowserLaunchFailed means the browser process could not be started
	// or its DevTools endpoint could not be reached.
	KindBrowserLaunchFailed
	// KindNoCookiesFound means no cookie matched the requested domain.
	KindNoCookiesFound
)

func (k ErrorKind) String() string {
	switch k {
	case KindBrowserNotInstalled:
		return "BrowserNotInstalled"
	case KindBrowserLaunchFailed:
		return "BrowserLaunchFailed"
	case KindNoCookiesFound:
		return "NoCookiesFound"
	default:
		return "Other"
	}
}

// Sentinels for use with errors.Is.
var (
	ErrBrowserNotInstalled = &Error{Kind: KindBrowserNotInstalled}
	ErrBrowserLaunchFailed = &Error{Kind: KindBrowserLaunchFailed}
	ErrNoCookiesFound      = &Error{Kind: KindNoCookiesFound}
	ErrOther               = &Error{Kind: KindOther}
)

// Error is returned by every Reader operation.
type Error struct {
	Kind   ErrorKind
	Detail string
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindBrowserNotInstalled:
		return "chrome browser not found"
	case KindBrowserLaunchFailed:
		return fmt.Sprintf("browser launch failed: %s", e.detail())
	case KindNoCookiesFound:
		if e.Detail != "" {
			return fmt.Sprintf("no cookies found for domain %q", e.Detail)
		}
		return "no cookies found for domain"
	default:
		return e.detail()
	}
}

func (e *Error) detail() string {
	switch {
	case e.Detail != "":
		return e.Detail
	case e.Err != nil:
		return e.Err.Error()
	}
	return "unknown error"
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}
