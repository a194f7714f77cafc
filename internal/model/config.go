package model

import (
	"os"
	"path/filepath"
	"time"
)

// Config holds the complete runtime configuration
type Config struct {
	Artifacts   ArtifactConfig    `yaml:"artifacts" json:"artifacts"`
	Probe       ProbeConfig       `yaml:"probe" json:"probe"`
	Cache       CacheConfig       `yaml:"cache" json:"cache"`
	Store       StoreConfig       `yaml:"store" json:"store"`
	Advice      AdviceConfig      `yaml:"advice" json:"advice"`
	Concurrency ConcurrencyConfig `yaml:"concurrency" json:"concurrency"`
	Output      OutputConfig      `yaml:"output" json:"output"`
	Trusted     []string          `yaml:"trusted_domains" json:"trusted_domains"`
}

// ArtifactConfig locates the externally trained classifier artifact pair
type ArtifactConfig struct {
	ModelPath  string `yaml:"model_path" json:"model_path"`
	ScalerPath string `yaml:"scaler_path" json:"scaler_path"`
}

// ProbeConfig bounds the network-dependent feature lookups
type ProbeConfig struct {
	WhoisTimeout    time.Duration `yaml:"whois_timeout" json:"whois_timeout"`
	RedirectTimeout time.Duration `yaml:"redirect_timeout" json:"redirect_timeout"`
	MaxRedirects    int           `yaml:"max_redirects" json:"max_redirects"`
	UserAgent       string        `yaml:"user_agent" json:"user_agent"`
	HTTPProxy       string        `yaml:"http_proxy" json:"http_proxy"`
	HTTPSProxy      string        `yaml:"https_proxy" json:"https_proxy"`
	NoProxy         string        `yaml:"no_proxy" json:"no_proxy"`
}

// CacheConfig controls the verdict result cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" json:"enabled"`
	Dir       string        `yaml:"dir" json:"dir"`
	Freshness time.Duration `yaml:"freshness" json:"freshness"`
}

// StoreConfig selects the persistence collaborator
type StoreConfig struct {
	MongoURI    string        `yaml:"mongo_uri" json:"mongo_uri"`
	Database    string        `yaml:"database" json:"database"`
	DedupWindow time.Duration `yaml:"dedup_window" json:"dedup_window"`
}

// AdviceConfig controls the optional advisory note generator.
// The note is informational only and never consulted by the resolver.
type AdviceConfig struct {
	Provider  string `yaml:"provider" json:"provider"` // "" disables
	Model     string `yaml:"model" json:"model"`
	APIKey    string `yaml:"-" json:"-"`
	BaseURL   string `yaml:"base_url" json:"base_url"`
	TimeoutS  int    `yaml:"timeout_seconds" json:"timeout_seconds"`
	MaxTokens int    `yaml:"max_tokens" json:"max_tokens"`
}

// ConcurrencyConfig bounds batch processing
type ConcurrencyConfig struct {
	BatchWorkers int     `yaml:"batch_workers" json:"batch_workers"`
	DomainRPS    float64 `yaml:"domain_rps" json:"domain_rps"`
	DomainBurst  int     `yaml:"domain_burst" json:"domain_burst"`
}

// OutputConfig controls CLI output
type OutputConfig struct {
	Verbose bool `yaml:"verbose" json:"verbose"`
	NoColor bool `yaml:"no_color" json:"no_color"`
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	base := filepath.Join(home, ".phisheye")

	return &Config{
		Artifacts: ArtifactConfig{
			ModelPath:  filepath.Join(base, "models", "model.json"),
			ScalerPath: filepath.Join(base, "models", "scaler.json"),
		},
		Probe: ProbeConfig{
			WhoisTimeout:    5 * time.Second,
			RedirectTimeout: 5 * time.Second,
			MaxRedirects:    10,
			UserAgent:       "PhishEye/1.0 (+https://github.com/phisheye/phisheye)",
		},
		Cache: CacheConfig{
			Enabled:   true,
			Dir:       filepath.Join(base, "cache"),
			Freshness: 24 * time.Hour,
		},
		Store: StoreConfig{
			Database:    "phisheye",
			DedupWindow: 60 * time.Second,
		},
		Advice: AdviceConfig{
			TimeoutS:  30,
			MaxTokens: 300,
		},
		Concurrency: ConcurrencyConfig{
			BatchWorkers: 8,
			DomainRPS:    2,
			DomainBurst:  5,
		},
		Trusted: DefaultTrustedDomains(),
	}
}

// DefaultTrustedDomains is the built-in allow-list of registrable domains
// whose URLs short-circuit to SAFE without scoring.
func DefaultTrustedDomains() []string {
	return []string{
		"google.com",
		"youtube.com",
		"microsoft.com",
		"apple.com",
		"github.com",
		"wikipedia.org",
		"amazon.com",
		"facebook.com",
		"twitter.com",
		"linkedin.com",
		"mozilla.org",
		"cloudflare.com",
	}
}
