package model

// Label is the final classification of a scanned URL
type Label string

const (
	LabelSafe       Label = "SAFE"
	LabelSuspicious Label = "SUSPICIOUS"
	LabelMalicious  Label = "MALICIOUS"
	LabelUnknown    Label = "UNKNOWN"
)

// ScanRequest is an inbound scan submission
type ScanRequest struct {
	URL      string `json:"url"`
	DeepScan bool   `json:"deepScan"`
	CallerID string `json:"callerId"`
}

// Verdict is the immutable result of a single scan.
// Cached copies are read-only snapshots of a previously computed verdict.
type Verdict struct {
	URL         string        `json:"url"`                // URL as submitted
	Label       Label         `json:"label"`              // SAFE, SUSPICIOUS, MALICIOUS, UNKNOWN
	Confidence  float64       `json:"confidence"`         // Confidence in the chosen label [0,1]
	Signals     []string      `json:"signals"`            // Human-readable triggered signals, in rule order
	Explanation string        `json:"explanation"`        // Fixed template text per label
	Features    FeatureVector `json:"features"`           // Feature vector the verdict was derived from
	Cached      bool          `json:"cached"`             // Whether this verdict came from the result cache
	Advice      string        `json:"advice,omitempty"`   // Optional advisory note (never affects scoring)
	DeepScan    bool          `json:"deep_scan"`          // Scan mode the features were gathered under
}
