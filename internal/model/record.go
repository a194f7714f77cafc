package model

import "time"

// ScanRecord is the append-only audit record of one scan event, owned by a
// caller identity. Records are never mutated after creation; deletion is a
// history-service concern, not handled here.
type ScanRecord struct {
	ID            string        `json:"id" bson:"_id"`
	CallerID      string        `json:"callerId" bson:"callerId"`
	URL           string        `json:"url" bson:"url"`
	NormalizedURL string        `json:"normalizedUrl" bson:"normalizedUrl"`
	Label         Label         `json:"label" bson:"label"`
	Confidence    float64       `json:"confidence" bson:"confidence"`
	ScanType      string        `json:"scanType" bson:"scanType"` // "quick" or "deep"
	Signals       []string      `json:"signals" bson:"signals"`
	Explanation   string        `json:"explanation" bson:"explanation"`
	Features      FeatureVector `json:"features" bson:"features"`
	FeatureHash   string        `json:"featureHash" bson:"featureHash"`
	Cached        bool          `json:"cached" bson:"cached"`
	CreatedAt     time.Time     `json:"createdAt" bson:"createdAt"`
}

// ScanTypeName maps the deep-scan flag to the stored scan type.
func ScanTypeName(deepScan bool) string {
	if deepScan {
		return "deep"
	}
	return "quick"
}
