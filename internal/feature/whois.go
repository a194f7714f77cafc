package feature

import (
	"context"
	"log"
	"strings"
	"time"

	whois "github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	gocache "github.com/patrickmn/go-cache"
)

// createdDateLayouts covers the formats registries commonly emit.
var createdDateLayouts = []string{
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
	"02-Jan-2006",
	"2006.01.02",
}

// WhoisFunc resolves the registration creation date for a registrable domain.
// Injectable so tests never hit the network.
type WhoisFunc func(ctx context.Context, domain string) (time.Time, error)

// AgeLookup resolves domain registration age in days, memoized per registrable
// domain for the process lifetime. Failed lookups memoize the sentinel 0 so a
// flapping registry is not re-queried on every scan.
type AgeLookup struct {
	memo  *gocache.Cache
	query WhoisFunc
	now   func() time.Time
}

// NewAgeLookup creates an age lookup backed by a WHOIS query with the given
// per-call timeout.
func NewAgeLookup(timeout time.Duration) *AgeLookup {
	return &AgeLookup{
		memo:  gocache.New(gocache.NoExpiration, 0),
		query: defaultWhoisQuery(timeout),
		now:   time.Now,
	}
}

// AgeDays returns the age of the domain registration in days, or 0 when the
// registration date could not be determined. Never returns an error.
func (l *AgeLookup) AgeDays(ctx context.Context, domain string) int {
	if domain == "" {
		return 0
	}

	if cached, found := l.memo.Get(domain); found {
		return cached.(int)
	}

	age := 0
	created, err := l.query(ctx, domain)
	if err != nil {
		log.Printf("whois lookup failed for %s: %v", domain, err)
	} else if !created.IsZero() {
		age = int(l.now().Sub(created).Hours() / 24)
		if age < 0 {
			age = 0
		}
	}

	l.memo.Set(domain, age, gocache.NoExpiration)
	return age
}

func defaultWhoisQuery(timeout time.Duration) WhoisFunc {
	client := whois.NewClient()
	client.SetTimeout(timeout)

	return func(ctx context.Context, domain string) (time.Time, error) {
		if err := ctx.Err(); err != nil {
			return time.Time{}, err
		}

		raw, err := client.Whois(domain)
		if err != nil {
			return time.Time{}, err
		}

		parsed, err := whoisparser.Parse(raw)
		if err != nil {
			return time.Time{}, err
		}
		if parsed.Domain == nil {
			return time.Time{}, whoisparser.ErrNotFoundDomain
		}

		return parseCreatedDate(parsed.Domain.CreatedDate)
	}
}

func parseCreatedDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	var lastErr error
	for _, layout := range createdDateLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}
