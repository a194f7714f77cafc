package feature

import (
	"context"
	"testing"
	"time"

	"github.com/phisheye/phisheye/internal/model"
)

func testExtractor() *Extractor {
	cfg := model.DefaultConfig().Probe
	e := NewExtractor(cfg)
	// Deep-scan tests stub the WHOIS query; nothing here should hit a registry.
	e.age.query = func(ctx context.Context, domain string) (time.Time, error) {
		return time.Time{}, nil
	}
	return e
}

func TestExtract_Lexical(t *testing.T) {
	e := testExtractor()

	vec := e.Extract(context.Background(), "https://secure-login.bank.example.com/verify?a=1&b=2", false)

	if vec.HasHTTPS != 1 {
		t.Errorf("expected has_https=1, got %d", vec.HasHTTPS)
	}
	if vec.IsIP != 0 {
		t.Errorf("expected is_ip=0, got %d", vec.IsIP)
	}
	// secure, login, verify
	if vec.SuspiciousWords != 3 {
		t.Errorf("expected 3 suspicious keywords, got %d", vec.SuspiciousWords)
	}
	if vec.QueryParams != 2 {
		t.Errorf("expected 2 query params, got %d", vec.QueryParams)
	}
	if vec.CountHyphens != 1 {
		t.Errorf("expected 1 hyphen, got %d", vec.CountHyphens)
	}
	// secure-login + bank left of example.com
	if vec.CountSubdomains != 2 {
		t.Errorf("expected 2 subdomains, got %d", vec.CountSubdomains)
	}
	if vec.PathLength != len("/verify") {
		t.Errorf("expected path length %d, got %d", len("/verify"), vec.PathLength)
	}
}

func TestExtract_IPLiteral(t *testing.T) {
	e := testExtractor()

	tests := []struct {
		url  string
		isIP int
	}{
		{"http://192.168.1.1/admin", 1},
		{"http://192.168.1.1:8080/admin", 1},
		{"http://[2001:db8::1]/x", 1},
		{"http://example.com", 0},
	}

	for _, tt := range tests {
		vec := e.Extract(context.Background(), tt.url, false)
		if vec.IsIP != tt.isIP {
			t.Errorf("Extract(%q): is_ip = %d, want %d", tt.url, vec.IsIP, tt.isIP)
		}
	}
}

func TestExtract_UnparsableDegradesToSentinels(t *testing.T) {
	e := testExtractor()

	vec := e.Extract(context.Background(), "http://%zz invalid url", false)
	if vec != (model.FeatureVector{}) {
		t.Errorf("expected all-sentinel vector for unparsable URL, got %+v", vec)
	}
}

func TestExtract_QuickScanLeavesNetworkSentinels(t *testing.T) {
	e := testExtractor()

	vec := e.Extract(context.Background(), "http://example.com/login", false)
	if vec.DomainAgeDays != 0 || vec.RedirectCount != 0 {
		t.Errorf("quick scan must leave network features at 0, got age=%d redirects=%d",
			vec.DomainAgeDays, vec.RedirectCount)
	}
}

func TestSubdomainCount_PublicSuffixAware(t *testing.T) {
	tests := []struct {
		host string
		want int
	}{
		{"example.com", 0},
		{"www.example.com", 1},
		{"a.b.example.com", 2},
		{"shop.example.co.uk", 1},
		{"example.co.uk", 0},
		{"192.168.1.1", 0},
	}

	for _, tt := range tests {
		if got := subdomainCount(tt.host); got != tt.want {
			t.Errorf("subdomainCount(%q) = %d, want %d", tt.host, got, tt.want)
		}
	}
}

func TestRegistrableDomain(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"www.example.com", "example.com"},
		{"a.b.example.co.uk", "example.co.uk"},
		{"192.168.1.1", "192.168.1.1"},
	}

	for _, tt := range tests {
		if got := RegistrableDomain(tt.host); got != tt.want {
			t.Errorf("RegistrableDomain(%q) = %q, want %q", tt.host, got, tt.want)
		}
	}
}
