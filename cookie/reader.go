package cookie

import (
	"context"
	"errors"
	"fmt"

	"github.com/chromedp/cdproto/network"

	"github.com/livedesk/cookiegrab/chromium"
	"github.com/livedesk/cookiegrab/config"
	"github.com/livedesk/cookiegrab/log"
)

type extractFunc func(context.Context, *chromium.LaunchOptions, *log.Logger) ([]*network.Cookie, error)

// Reader reads cookies from a local Chrome installation. Every ReadCookies
// call runs its own headless browser, so a Reader may be used concurrently.
type Reader struct {
	inst   *chromium.Installation
	cfg    *config.Config
	logger *log.Logger

	extract extractFunc
}

// NewReader returns a Reader for the Chrome installation cfg points at.
func NewReader(cfg *config.Config, logger *log.Logger) *Reader {
	return newReader(chromium.LocalInstallation(cfg.UserDataDir, cfg.ExecutablePath, logger), cfg, logger, chromium.ExtractAllCookies)
}

func newReader(inst *chromium.Installation, cfg *config.Config, logger *log.Logger, extract extractFunc) *Reader {
	return &Reader{
		inst:    inst,
		cfg:     cfg,
		logger:  logger,
		extract: extract,
	}
}

// ListProfiles returns the installation's profiles sorted by display name.
func (r *Reader) ListProfiles() ([]chromium.Profile, error) {
	profiles, err := r.inst.ListProfiles()
	if err != nil {
		return nil, classify(err)
	}
	return profiles, nil
}

// ReadCookies returns the cookies of profile that match domain, sorted by
// name. domain may be a URL; it is reduced to a bare host first. An empty
// profile selects the configured default profile. A successful result is
// never empty: no matches is reported as ErrNoCookiesFound.
func (r *Reader) ReadCookies(ctx context.Context, domain, profile string) ([]Cookie, error) {
	target := NormalizeDomain(domain)
	// An empty target would match every cookie through the substring rule.
	if target == "" {
		return nil, &Error{Kind: KindOther, Detail: fmt.Sprintf("invalid domain %q", domain)}
	}

	userDataDir, err := r.inst.UserDataDir()
	if err != nil {
		return nil, classify(err)
	}
	exe, err := r.inst.FindExecutable()
	if err != nil {
		return nil, classify(err)
	}
	if profile == "" {
		profile = r.cfg.DefaultProfile
	}

	r.logger.Debugf("Reader:ReadCookies", "domain:%q profile:%q exe:%q", target, profile, exe)

	raw, err := r.extract(ctx, r.launchOptions(exe, userDataDir, profile), r.logger)
	if err != nil {
		return nil, classify(err)
	}

	cookies := filter(raw, target)
	if len(cookies) == 0 {
		return nil, &Error{Kind: KindNoCookiesFound, Detail: target}
	}
	r.logger.Infof("Reader:ReadCookies", "read %d cookies for %q from profile %q", len(cookies), target, profile)

	return cookies, nil
}

func (r *Reader) launchOptions(exe, userDataDir, profile string) *chromium.LaunchOptions {
	opts := chromium.NewLaunchOptions(exe, userDataDir, profile)
	opts.LaunchTimeout = r.cfg.LaunchTimeout
	opts.CommandTimeout = r.cfg.CommandTimeout
	opts.GracefulTimeout = r.cfg.GracefulTimeout
	opts.ConnectAttempts = r.cfg.ConnectAttempts
	return opts
}

// classify maps chromium errors onto the Error kinds.
func classify(err error) error {
	var (
		lerr *chromium.LaunchError
		perr *chromium.ProtocolError
	)
	switch {
	case errors.Is(err, chromium.ErrNotInstalled):
		return &Error{Kind: KindBrowserNotInstalled, Err: err}
	case errors.As(err, &lerr):
		return &Error{Kind: KindBrowserLaunchFailed, Detail: lerr.Err.Error(), Err: err}
	case errors.As(err, &perr):
		return &Error{Kind: KindOther, Detail: "getting cookies: " + perr.Error(), Err: err}
	}
	return &Error{Kind: KindOther, Err: err}
}
