package cookie

import "strings"

// DomainMatches reports whether a cookie stored for cookieDomain should be
// returned for targetDomain. A single leading dot is ignored on both sides.
// Besides equality and subdomains in either direction, any substring
// relation matches: "jd.com" covers "jingdong-live.jd.com.cn" style hosts.
func DomainMatches(cookieDomain, targetDomain string) bool {
	c := strings.TrimPrefix(cookieDomain, ".")
	t := strings.TrimPrefix(targetDomain, ".")

	switch {
	case c == t:
		return true
	case strings.HasSuffix(t, "."+c):
		return true
	case strings.HasSuffix(c, "."+t):
		return true
	}
	return strings.Contains(c, t) || strings.Contains(t, c)
}

// NormalizeDomain turns a URL or host typed by a user into a bare host:
// "https://www.jd.com/path" becomes "jd.com".
func NormalizeDomain(raw string) string {
	d := strings.TrimSpace(raw)
	d = strings.TrimPrefix(d, "http://")
	d = strings.TrimPrefix(d, "https://")
	d = strings.TrimPrefix(d, "www.")
	if i := strings.IndexByte(d, '/'); i >= 0 {
		d = d[:i]
	}
	return d
}
