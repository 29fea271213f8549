package validation

import (
	"fmt"
	"net/url"
	"strings"
)

// NormalizeURL converts user-entered URLs into a canonical https form:
// a missing scheme is assumed, http is upgraded, the host is lowercased,
// default ports and trailing slashes are stripped. Empty input is returned
// unchanged; callers only normalize non-empty fields.
func NormalizeURL(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", nil
	}

	if !strings.Contains(trimmed, "://") {
		trimmed = "https://" + trimmed
	}

	u, err := url.Parse(trimmed)
	if err != nil {
		return "", fmt.Errorf("invalid URL %q: %w", raw, err)
	}

	switch u.Scheme {
	case "http", "https":
		u.Scheme = "https"
	default:
		return "", fmt.Errorf("unsupported URL scheme %q", u.Scheme)
	}

	host := strings.ToLower(u.Host)
	host = strings.TrimSuffix(host, ":443")
	host = strings.TrimSuffix(host, ":80")
	host = strings.TrimPrefix(host, "www.")
	if host == "" {
		return "", fmt.Errorf("invalid URL %q: missing host", raw)
	}
	u.Host = host

	if u.Path == "/" {
		u.Path = ""
	}
	u.Fragment = ""

	return u.String(), nil
}
