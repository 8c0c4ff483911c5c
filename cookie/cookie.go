// Package cookie reads the cookies a local Chrome profile holds for a domain
// and exports them for use by HTTP clients.
package cookie

import (
	"sort"

	"github.com/chromedp/cdproto/network"
	"gopkg.in/guregu/null.v3"
)

// Cookie is a browser cookie matching a requested domain. Expires is a Unix
// timestamp in seconds and null for session cookies.
type Cookie struct {
	Name     string   `json:"name"`
	Value    string   `json:"value"`
	Domain   string   `json:"domain"`
	Path     string   `json:"path"`
	Expires  null.Int `json:"expires"`
	Secure   bool     `json:"is_secure"`
	HTTPOnly bool     `json:"is_http_only"`
}

// fromNetwork converts a CDP cookie. Chrome reports session cookies with a
// non-positive expiry.
func fromNetwork(c *network.Cookie) Cookie {
	var expires null.Int
	if c.Expires > 0 {
		expires = null.IntFrom(int64(c.Expires))
	}
	return Cookie{
		Name:     c.Name,
		Value:    c.Value,
		Domain:   c.Domain,
		Path:     c.Path,
		Expires:  expires,
		Secure:   c.Secure,
		HTTPOnly: c.HTTPOnly,
	}
}

// filter returns the cookies whose domain matches target, sorted by name.
// Cookies with equal names keep the order the browser reported them in.
func filter(raw []*network.Cookie, target string) []Cookie {
	var cookies []Cookie
	for _, c := range raw {
		if c == nil || !DomainMatches(c.Domain, target) {
			continue
		}
		cookies = append(cookies, fromNetwork(c))
	}
	sort.SliceStable(cookies, func(i, j int) bool {
		return cookies[i].Name < cookies[j].Name
	})
	return cookies
}
