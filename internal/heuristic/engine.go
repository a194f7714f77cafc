// Package heuristic computes a deterministic rule-based risk score from a
// feature vector, independent of the statistical classifier. Every rule
// contribution is additive and explained by a human-readable signal.
package heuristic

import (
	"fmt"

	"github.com/phisheye/phisheye/internal/model"
)

// Rule weights. The score accumulates across all fired rules and is capped
// at MaxScore; rule order affects only the signal list ordering.
const (
	MaxScore = 100

	weightIPLiteral       = 90
	weightYoungDomain     = 70
	weightUnverifiedAge   = 20
	weightManyRedirects   = 40
	weightPerKeyword      = 20
	weightSubdomainChain  = 30
	weightInsecureScheme  = 30
	weightLongURL         = 15

	youngDomainMaxDays = 60
	maxSaneRedirects   = 2
	maxSaneSubdomains  = 3
	maxSaneURLLength   = 100
)

// Engine evaluates the rule table
type Engine struct{}

// NewEngine creates a new rule engine
func NewEngine() *Engine {
	return &Engine{}
}

// Assess runs the rule table over a feature vector and returns the capped
// risk score with the triggered signals in rule-evaluation order. The
// age-based and redirect-based rules only apply in deep-scan mode, where the
// network features carry measured values instead of sentinels.
func (e *Engine) Assess(vec model.FeatureVector, deepScan bool) (int, []string) {
	score := 0
	var signals []string

	if vec.IsIP == 1 {
		score += weightIPLiteral
		signals = append(signals, "direct IP address")
	}

	if deepScan && vec.DomainAgeDays > 0 && vec.DomainAgeDays < youngDomainMaxDays {
		score += weightYoungDomain
		signals = append(signals, "domain is very young")
	}

	if deepScan && vec.DomainAgeDays == 0 {
		score += weightUnverifiedAge
		signals = append(signals, "unable to verify registration")
	}

	if deepScan && vec.RedirectCount > maxSaneRedirects {
		score += weightManyRedirects
		signals = append(signals, "excessive redirects")
	}

	if vec.SuspiciousWords > 0 {
		score += weightPerKeyword * vec.SuspiciousWords
		signals = append(signals, fmt.Sprintf("%d sensitive keywords", vec.SuspiciousWords))
	}

	if vec.CountSubdomains > maxSaneSubdomains {
		score += weightSubdomainChain
		signals = append(signals, "long subdomain chain")
	}

	if vec.HasHTTPS == 0 {
		score += weightInsecureScheme
		signals = append(signals, "insecure connection")
	}

	if vec.URLLength > maxSaneURLLength {
		score += weightLongURL
		signals = append(signals, "unusually long URL")
	}

	if score > MaxScore {
		score = MaxScore
	}

	return score, signals
}
