package model

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
)

// FeatureVector is the fixed-order set of numeric features derived from a URL.
// The first ten features are lexical/structural and form the classifier's input
// contract; the two network features are consumed only by the heuristic layer.
// Network features hold the sentinel 0 when the lookup was skipped or failed,
// so a 0 must not be read as "verified" without checking the scan mode.
type FeatureVector struct {
	URLLength        int `json:"url_length"`
	CountDots        int `json:"count_dots"`
	CountHyphens     int `json:"count_hyphens"`
	CountSubdomains  int `json:"count_subdomains"`
	IsIP             int `json:"is_ip"`
	HasHTTPS         int `json:"has_https"`
	SuspiciousWords  int `json:"suspicious_keyword_count"`
	SpecialChars     int `json:"special_char_count"`
	PathLength       int `json:"path_length"`
	QueryParams      int `json:"query_param_count"`
	DomainAgeDays    int `json:"domain_age_days"`
	RedirectCount    int `json:"redirect_count"`
}

// Lexical returns the ten model-input features in the order the classifier
// artifact was trained on. Network features are deliberately excluded.
func (v FeatureVector) Lexical() []float64 {
	return []float64{
		float64(v.URLLength),
		float64(v.CountDots),
		float64(v.CountHyphens),
		float64(v.CountSubdomains),
		float64(v.IsIP),
		float64(v.HasHTTPS),
		float64(v.SuspiciousWords),
		float64(v.SpecialChars),
		float64(v.PathLength),
		float64(v.QueryParams),
	}
}

// Map returns the named feature mapping, including network features.
func (v FeatureVector) Map() map[string]int {
	return map[string]int{
		"url_length":               v.URLLength,
		"count_dots":               v.CountDots,
		"count_hyphens":            v.CountHyphens,
		"count_subdomains":         v.CountSubdomains,
		"is_ip":                    v.IsIP,
		"has_https":                v.HasHTTPS,
		"suspicious_keyword_count": v.SuspiciousWords,
		"special_char_count":       v.SpecialChars,
		"path_length":              v.PathLength,
		"query_param_count":        v.QueryParams,
		"domain_age_days":          v.DomainAgeDays,
		"redirect_count":           v.RedirectCount,
	}
}

// Signature returns a stable hash of the serialized feature mapping, stored
// alongside persisted scan records for signature-based drift auditing.
// encoding/json sorts map keys, so the serialization is deterministic.
func (v FeatureVector) Signature() string {
	data, err := json.Marshal(v.Map())
	if err != nil {
		return ""
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
