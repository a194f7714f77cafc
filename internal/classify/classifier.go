// Package classify wraps the externally trained scoring artifact behind a
// stable scoring contract. The artifact pair (fitted scaler + fitted linear
// model) is produced by an offline training procedure that is out of scope
// here; this package only loads and applies it.
package classify

import (
	"encoding/json"
	"fmt"
	"log"
	"math"
	"os"
)

// InputSize is the number of features the artifact was trained on. Only the
// lexical/structural features are part of the model's input contract;
// network-derived features are consumed by the heuristic layer alone.
const InputSize = 10

// Outcome is the classifier's verdict for one feature vector.
type Outcome struct {
	Malicious  bool
	Confidence float64 // probability of the chosen label, in [0,1]
}

type scalerArtifact struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

type modelArtifact struct {
	Weights   []float64 `json:"weights"`
	Intercept float64   `json:"intercept"`
}

// Classifier scores feature vectors with the loaded artifact. Once loaded it
// is read-only and safe for concurrent use. If loading fails the classifier
// reports unavailable for the rest of the process; it never retries.
type Classifier struct {
	model     modelArtifact
	scaler    scalerArtifact
	available bool
}

// Load reads the artifact pair from disk. A missing or corrupt file yields a
// permanently unavailable classifier rather than an error: the scan pipeline
// keeps operating heuristic-only.
func Load(modelPath, scalerPath string) *Classifier {
	c := &Classifier{}

	if err := readJSON(modelPath, &c.model); err != nil {
		log.Printf("classifier artifact unavailable: %v", err)
		return c
	}
	if err := readJSON(scalerPath, &c.scaler); err != nil {
		log.Printf("scaler artifact unavailable: %v", err)
		return c
	}

	if len(c.model.Weights) != InputSize ||
		len(c.scaler.Mean) != InputSize ||
		len(c.scaler.Scale) != InputSize {
		log.Printf("classifier artifact unavailable: dimension mismatch (weights=%d mean=%d scale=%d, want %d)",
			len(c.model.Weights), len(c.scaler.Mean), len(c.scaler.Scale), InputSize)
		return c
	}

	c.available = true
	return c
}

// Unavailable returns a classifier that is permanently unavailable. Used when
// no artifact paths are configured, and by tests.
func Unavailable() *Classifier {
	return &Classifier{}
}

// Available reports whether the artifact pair loaded successfully.
func (c *Classifier) Available() bool {
	return c.available
}

// Score applies the artifact to the first InputSize features. The second
// return value is false when the classifier is unavailable or the input does
// not match the training contract.
func (c *Classifier) Score(features []float64) (Outcome, bool) {
	if !c.available || len(features) != InputSize {
		return Outcome{}, false
	}

	z := c.model.Intercept
	for i, x := range features {
		scale := c.scaler.Scale[i]
		if scale == 0 {
			scale = 1
		}
		z += c.model.Weights[i] * ((x - c.scaler.Mean[i]) / scale)
	}

	p := sigmoid(z)
	if p >= 0.5 {
		return Outcome{Malicious: true, Confidence: p}, true
	}
	return Outcome{Malicious: false, Confidence: 1 - p}, true
}

func sigmoid(z float64) float64 {
	return 1 / (1 + math.Exp(-z))
}

func readJSON(path string, v interface{}) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}
