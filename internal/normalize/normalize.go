// Package normalize canonicalizes raw user-submitted URL strings into the
// comparable form used as the cache and history key.
package normalize

import (
	"net/url"
	"strings"
)

// Normalize canonicalizes a raw URL string. The result is a pure,
// deterministic function of the input and is idempotent. No network access,
// no side effects. Empty input yields the empty string.
//
// Steps, in order: trim whitespace, lower-case, default the scheme to http
// when no recognized scheme prefix is present, percent-decode (keeping the
// pre-decode form when decoding fails), truncate at the first fragment
// marker, strip one trailing slash.
func Normalize(raw string) string {
	if raw == "" {
		return ""
	}

	s := strings.ToLower(strings.TrimSpace(raw))
	if s == "" {
		return ""
	}

	if !hasScheme(s) {
		s = "http://" + s
	}

	// PathUnescape, not QueryUnescape: a literal + in a query is data, not
	// an encoded space.
	if decoded, err := url.PathUnescape(s); err == nil {
		s = decoded
	}

	if idx := strings.IndexByte(s, '#'); idx >= 0 {
		s = s[:idx]
	}

	s = strings.TrimRight(s, "/")

	return s
}

func hasScheme(s string) bool {
	for _, prefix := range []string{"http://", "https://", "ftp://", "file://"} {
		if strings.HasPrefix(s, prefix) {
			return true
		}
	}
	return false
}
