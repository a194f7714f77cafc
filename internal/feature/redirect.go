package feature

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/phisheye/phisheye/internal/model"
	"github.com/phisheye/phisheye/internal/util"
)

// RedirectProber counts redirect hops by following Location headers manually
// with HEAD requests. The whole chain shares one bounded timeout; the prober
// never reads response bodies.
type RedirectProber struct {
	client    *http.Client
	maxHops   int
	timeout   time.Duration
	userAgent string
}

// NewRedirectProber creates a prober configured per cfg.
func NewRedirectProber(cfg model.ProbeConfig) *RedirectProber {
	maxHops := cfg.MaxRedirects
	if maxHops <= 0 {
		maxHops = 10
	}

	return &RedirectProber{
		client: &http.Client{
			Transport: &http.Transport{
				Proxy: util.NewProxyFunc(cfg.HTTPProxy, cfg.HTTPSProxy, cfg.NoProxy),
			},
			// Hops are followed manually so they can be counted.
			CheckRedirect: func(req *http.Request, via []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		maxHops:   maxHops,
		timeout:   cfg.RedirectTimeout,
		userAgent: cfg.UserAgent,
	}
}

// Hops follows the redirect chain from target and returns the number of
// redirect responses observed. Loops and chains longer than the hop budget
// stop counting rather than erroring.
func (p *RedirectProber) Hops(ctx context.Context, target string) (int, error) {
	ctx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	current := target
	seen := make(map[string]struct{})
	hops := 0

	for i := 0; i < p.maxHops; i++ {
		if _, ok := seen[current]; ok {
			break
		}
		seen[current] = struct{}{}

		req, err := http.NewRequestWithContext(ctx, http.MethodHead, current, nil)
		if err != nil {
			return 0, fmt.Errorf("create request: %w", err)
		}
		req.Header.Set("User-Agent", p.userAgent)

		resp, err := p.client.Do(req)
		if err != nil {
			return 0, fmt.Errorf("probe %s: %w", current, err)
		}
		_ = resp.Body.Close()

		if resp.StatusCode < 300 || resp.StatusCode >= 400 {
			break
		}

		loc := resp.Header.Get("Location")
		if loc == "" {
			break
		}
		next, err := url.Parse(loc)
		if err != nil {
			break
		}

		hops++
		current = resp.Request.URL.ResolveReference(next).String()
	}

	return hops, nil
}
