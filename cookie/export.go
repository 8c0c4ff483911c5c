package cookie

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/net/publicsuffix"

	"github.com/livedesk/cookiegrab/storage"
)

// Header renders cookies as the value of a Cookie request header.
func Header(cookies []Cookie) string {
	pairs := make([]string, 0, len(cookies))
	for _, c := range cookies {
		pairs = append(pairs, c.Name+"="+c.Value)
	}
	return strings.Join(pairs, "; ")
}

// Save writes cookies as indented JSON to dir/filename and returns the path
// written.
func Save(ctx context.Context, p storage.FilePersister, dir, filename string, cookies []Cookie) (string, error) {
	if filename == "" || filename != filepath.Base(filename) || filename == "." || filename == ".." {
		return "", &Error{Kind: KindOther, Detail: fmt.Sprintf("invalid file name %q", filename)}
	}
	if cookies == nil {
		cookies = []Cookie{}
	}
	buf, err := json.MarshalIndent(cookies, "", "  ")
	if err != nil {
		return "", &Error{Kind: KindOther, Detail: "encoding cookies", Err: err}
	}

	path := filepath.Join(dir, filename)
	if err := p.Persist(ctx, path, bytes.NewReader(buf)); err != nil {
		return "", &Error{Kind: KindOther, Detail: err.Error(), Err: err}
	}
	return path, nil
}

// NewJar returns a cookie jar holding cookies for requests to rawURL.
// Cookies whose domain does not cover the URL's host are dropped by the jar.
func NewJar(rawURL string, cookies []Cookie) (http.CookieJar, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parsing URL %q: %w", rawURL, err)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("URL %q has no host", rawURL)
	}
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		return nil, fmt.Errorf("creating cookie jar: %w", err)
	}

	hc := make([]*http.Cookie, 0, len(cookies))
	for _, c := range cookies {
		h := &http.Cookie{
			Name:     c.Name,
			Value:    c.Value,
			Domain:   c.Domain,
			Path:     c.Path,
			Secure:   c.Secure,
			HttpOnly: c.HTTPOnly,
		}
		if c.Expires.Valid {
			h.Expires = time.Unix(c.Expires.Int64, 0)
		}
		hc = append(hc, h)
	}
	jar.SetCookies(u, hc)

	return jar, nil
}
