package verdict

import (
	"net/url"
	"strings"

	"github.com/phisheye/phisheye/internal/feature"
)

// Allowlist is the static set of trusted registrable domains, loaded at
// startup and immutable afterwards.
type Allowlist struct {
	domains map[string]struct{}
}

// NewAllowlist builds an allowlist from registrable domain names.
func NewAllowlist(domains []string) *Allowlist {
	set := make(map[string]struct{}, len(domains))
	for _, d := range domains {
		d = strings.ToLower(strings.TrimSpace(d))
		if d != "" {
			set[d] = struct{}{}
		}
	}
	return &Allowlist{domains: set}
}

// Match reports whether the normalized URL's host, or its registrable-domain
// suffix, is on the trusted list.
func (a *Allowlist) Match(normalizedURL string) bool {
	parsed, err := url.Parse(normalizedURL)
	if err != nil {
		return false
	}
	host := parsed.Hostname()
	if host == "" {
		return false
	}

	if _, ok := a.domains[host]; ok {
		return true
	}
	_, ok := a.domains[feature.RegistrableDomain(host)]
	return ok
}
