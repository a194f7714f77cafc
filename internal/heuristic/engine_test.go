package heuristic

import (
	"reflect"
	"testing"

	"github.com/phisheye/phisheye/internal/model"
)

func TestAssess_NoRulesFire(t *testing.T) {
	engine := NewEngine()

	vec := model.FeatureVector{
		URLLength: 25,
		HasHTTPS:  1,
	}

	score, signals := engine.Assess(vec, false)
	if score != 0 {
		t.Errorf("expected score 0, got %d", score)
	}
	if len(signals) != 0 {
		t.Errorf("expected no signals, got %v", signals)
	}
}

func TestAssess_IPLiteral(t *testing.T) {
	engine := NewEngine()

	vec := model.FeatureVector{
		URLLength: 27,
		IsIP:      1,
		// http, not https
	}

	score, signals := engine.Assess(vec, false)
	// 90 (IP) + 30 (no HTTPS)
	if score != 100 {
		t.Errorf("expected capped score 100, got %d", score)
	}
	want := []string{"direct IP address", "insecure connection"}
	if !reflect.DeepEqual(signals, want) {
		t.Errorf("signals = %v, want %v", signals, want)
	}
}

func TestAssess_KeywordContribution(t *testing.T) {
	engine := NewEngine()

	vec := model.FeatureVector{
		URLLength:       40,
		HasHTTPS:        1,
		SuspiciousWords: 2,
	}

	score, signals := engine.Assess(vec, false)
	if score != 40 {
		t.Errorf("expected score 40 for 2 keywords, got %d", score)
	}
	if len(signals) != 1 || signals[0] != "2 sensitive keywords" {
		t.Errorf("unexpected signals: %v", signals)
	}
}

func TestAssess_DeepScanAgeRules(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name      string
		age       int
		deepScan  bool
		wantScore int
		wantFirst string
	}{
		{"young domain", 30, true, 70 + 0, "domain is very young"},
		{"unknown age", 0, true, 20, "unable to verify registration"},
		{"old domain", 3650, true, 0, ""},
		{"quick scan never fires age rules", 0, false, 0, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			vec := model.FeatureVector{
				URLLength:     30,
				HasHTTPS:      1,
				DomainAgeDays: tt.age,
			}
			score, signals := engine.Assess(vec, tt.deepScan)
			if score != tt.wantScore {
				t.Errorf("score = %d, want %d", score, tt.wantScore)
			}
			if tt.wantFirst == "" {
				if len(signals) != 0 {
					t.Errorf("expected no signals, got %v", signals)
				}
			} else if len(signals) == 0 || signals[0] != tt.wantFirst {
				t.Errorf("signals = %v, want first %q", signals, tt.wantFirst)
			}
		})
	}
}

func TestAssess_RedirectRule(t *testing.T) {
	engine := NewEngine()

	vec := model.FeatureVector{
		URLLength:     30,
		HasHTTPS:      1,
		DomainAgeDays: 3650,
		RedirectCount: 3,
	}

	score, signals := engine.Assess(vec, true)
	if score != 40 {
		t.Errorf("expected score 40 for 3 redirects, got %d", score)
	}
	if len(signals) != 1 || signals[0] != "excessive redirects" {
		t.Errorf("unexpected signals: %v", signals)
	}

	// With deepScan off the sentinel must not trigger the rule.
	vec.RedirectCount = 0
	if score, _ := engine.Assess(vec, false); score != 0 {
		t.Errorf("expected 0 for quick scan, got %d", score)
	}
}

func TestAssess_SignalOrderMatchesRuleTable(t *testing.T) {
	engine := NewEngine()

	vec := model.FeatureVector{
		URLLength:       150,
		CountSubdomains: 5,
		IsIP:            1,
		SuspiciousWords: 1,
		DomainAgeDays:   10,
		RedirectCount:   5,
	}

	_, signals := engine.Assess(vec, true)
	want := []string{
		"direct IP address",
		"domain is very young",
		"excessive redirects",
		"1 sensitive keywords",
		"long subdomain chain",
		"insecure connection",
		"unusually long URL",
	}
	if !reflect.DeepEqual(signals, want) {
		t.Errorf("signals = %v, want %v", signals, want)
	}
}

func TestAssess_ScoreCapped(t *testing.T) {
	engine := NewEngine()

	vec := model.FeatureVector{
		URLLength:       200,
		CountSubdomains: 6,
		IsIP:            1,
		SuspiciousWords: 5,
	}

	score, _ := engine.Assess(vec, false)
	if score != MaxScore {
		t.Errorf("expected capped score %d, got %d", MaxScore, score)
	}
}
