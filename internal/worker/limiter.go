package worker

import (
	"context"
	"net/url"
	"sync"

	"golang.org/x/time/rate"

	"github.com/phisheye/phisheye/internal/feature"
	"github.com/phisheye/phisheye/internal/normalize"
)

// Limiter paces scans per registrable domain. Subdomains of one registrable
// domain share a bucket, so a batch of hundreds of *.example.com URLs still
// probes example.com at the configured rate.
type Limiter struct {
	limiters     map[string]*rate.Limiter
	mu           sync.RWMutex
	defaultRate  rate.Limit
	defaultBurst int
}

// NewLimiter creates a limiter with the default per-domain rate and burst.
func NewLimiter(requestsPerSecond float64, burst int) *Limiter {
	if burst <= 0 {
		burst = 5
	}

	return &Limiter{
		limiters:     make(map[string]*rate.Limiter),
		defaultRate:  rate.Limit(requestsPerSecond),
		defaultBurst: burst,
	}
}

// Wait blocks until the domain of rawURL has capacity, or ctx is done.
// URLs whose domain cannot be determined pass through unpaced.
func (l *Limiter) Wait(ctx context.Context, rawURL string) error {
	domain, ok := scanDomain(rawURL)
	if !ok {
		return nil
	}
	return l.bucket(domain).Wait(ctx)
}

// Allow reports whether the domain of rawURL has capacity right now.
func (l *Limiter) Allow(rawURL string) bool {
	domain, ok := scanDomain(rawURL)
	if !ok {
		return true
	}
	return l.bucket(domain).Allow()
}

// SetDomainRate overrides the rate for one domain.
func (l *Limiter) SetDomainRate(domain string, requestsPerSecond float64, burst int) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if burst <= 0 {
		burst = l.defaultBurst
	}

	l.limiters[domain] = rate.NewLimiter(rate.Limit(requestsPerSecond), burst)
}

func (l *Limiter) bucket(domain string) *rate.Limiter {
	l.mu.RLock()
	limiter, exists := l.limiters[domain]
	l.mu.RUnlock()

	if exists {
		return limiter
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if limiter, exists := l.limiters[domain]; exists {
		return limiter
	}

	limiter = rate.NewLimiter(l.defaultRate, l.defaultBurst)
	l.limiters[domain] = limiter

	return limiter
}

// scanDomain resolves the pacing key for a raw URL: the registrable domain of
// the normalized URL's host.
func scanDomain(rawURL string) (string, bool) {
	parsed, err := url.Parse(normalize.Normalize(rawURL))
	if err != nil || parsed.Hostname() == "" {
		return "", false
	}
	return feature.RegistrableDomain(parsed.Hostname()), true
}
