// Package feature derives the fixed-order numeric feature vector from a
// normalized URL. Lexical features are computed synchronously from string and
// host parsing; network features (domain age, redirect hops) are gathered only
// in deep-scan mode, bounded by per-call timeouts, and degrade to the sentinel
// value 0 on any failure.
package feature

import (
	"context"
	"log"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/phisheye/phisheye/internal/model"
)

// suspiciousKeywords are the phishing-associated tokens counted across the
// whole URL. The set matches the one the classifier artifact was trained with.
var suspiciousKeywords = []string{
	"secure", "account", "update", "banking", "login", "click", "confirm",
	"verify", "signin", "webscr", "ebayisapi", "bonus", "lucky", "free",
	"paypal", "wallet", "billing",
}

var specialChars = []string{
	"@", "!", "$", "%", "^", "&", "*", "(", ")", "+",
	"{", "}", "[", "]", "|", "<", ">", "~", "`", ";", ",",
}

// Extractor computes feature vectors. The domain-age memo it owns lives for
// the process lifetime; a second extraction for the same registrable domain
// never repeats the WHOIS call.
type Extractor struct {
	age    *AgeLookup
	prober *RedirectProber
}

// NewExtractor creates an extractor with network probes configured per cfg.
func NewExtractor(cfg model.ProbeConfig) *Extractor {
	return &Extractor{
		age:    NewAgeLookup(cfg.WhoisTimeout),
		prober: NewRedirectProber(cfg),
	}
}

// Extract computes the feature vector for a normalized URL. It never returns
// an error: an unparsable URL degrades the whole vector to sentinel values,
// and network failures degrade only their own feature.
func (e *Extractor) Extract(ctx context.Context, normalized string, deepScan bool) model.FeatureVector {
	var vec model.FeatureVector

	parsed, err := url.Parse(normalized)
	if err != nil || parsed.Hostname() == "" {
		return vec
	}

	host := parsed.Hostname()

	vec.URLLength = len(normalized)
	vec.CountDots = strings.Count(normalized, ".")
	vec.CountHyphens = strings.Count(normalized, "-")
	vec.CountSubdomains = subdomainCount(host)
	if net.ParseIP(host) != nil {
		vec.IsIP = 1
	}
	if parsed.Scheme == "https" {
		vec.HasHTTPS = 1
	}
	vec.SuspiciousWords = countSuspiciousWords(normalized)
	vec.SpecialChars = countSpecialChars(normalized)
	vec.PathLength = len(parsed.Path)
	if parsed.RawQuery != "" {
		vec.QueryParams = strings.Count(parsed.RawQuery, "&") + 1
	}

	if deepScan {
		if vec.IsIP == 0 {
			vec.DomainAgeDays = e.age.AgeDays(ctx, RegistrableDomain(host))
		}
		hops, err := e.prober.Hops(ctx, normalized)
		if err != nil {
			log.Printf("redirect probe failed for %s: %v", normalized, err)
			hops = 0
		}
		vec.RedirectCount = hops
	}

	return vec
}

// RegistrableDomain returns the effective-TLD-plus-one for a hostname, or the
// host unchanged when it is an IP literal or the suffix split fails.
func RegistrableDomain(host string) string {
	if net.ParseIP(host) != nil {
		return host
	}
	etld1, err := publicsuffix.EffectiveTLDPlusOne(strings.TrimSuffix(host, "."))
	if err != nil {
		return host
	}
	return etld1
}

// subdomainCount counts host labels left of the registrable domain. The
// registrable-domain-aware split avoids over-counting hosts under multi-label
// public suffixes such as co.uk.
func subdomainCount(host string) int {
	if net.ParseIP(host) != nil {
		return 0
	}
	host = strings.TrimSuffix(host, ".")
	etld1, err := publicsuffix.EffectiveTLDPlusOne(host)
	if err != nil {
		// Unrecognized suffix: assume the last two labels are registrable.
		n := len(strings.Split(host, ".")) - 2
		if n < 0 {
			n = 0
		}
		return n
	}
	n := len(strings.Split(host, ".")) - len(strings.Split(etld1, "."))
	if n < 0 {
		n = 0
	}
	return n
}

func countSuspiciousWords(s string) int {
	count := 0
	for _, word := range suspiciousKeywords {
		if strings.Contains(s, word) {
			count++
		}
	}
	return count
}

func countSpecialChars(s string) int {
	count := 0
	for _, c := range specialChars {
		count += strings.Count(s, c)
	}
	return count
}
