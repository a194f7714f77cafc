// Package verdict fuses the classifier outcome and the heuristic risk score
// into one final verdict under a fixed precedence policy.
package verdict

import (
	"fmt"
	"log"
	"strings"

	"github.com/phisheye/phisheye/internal/classify"
	"github.com/phisheye/phisheye/internal/model"
)

// Precedence thresholds. The heuristic veto overrides the classifier; the
// suspicious band sits below it.
const (
	vetoThreshold       = 80
	suspiciousThreshold = 40

	// neutralPrior is the SAFE confidence when the classifier is unavailable.
	neutralPrior = 0.5
)

const (
	explainMalicious  = "Detected high-risk patterns: %s"
	explainSuspicious = "This URL shows characteristics that warrant caution."
	explainSafe       = "No significant threats were detected for this URL."
	explainUnknown    = "Analysis could not be completed for this URL."

	noThreatSignal = "no significant threats detected"
)

// Resolution is the fused outcome before it is packaged into a Verdict.
type Resolution struct {
	Label       model.Label
	Confidence  float64
	Signals     []string
	Explanation string
}

// Resolver applies the precedence policy
type Resolver struct{}

// NewResolver creates a resolver
func NewResolver() *Resolver {
	return &Resolver{}
}

// Trusted returns the short-circuit resolution for an allow-listed host.
// No features are gathered and no scoring runs on this path.
func (r *Resolver) Trusted() Resolution {
	return Resolution{
		Label:       model.LabelSafe,
		Confidence:  1.0,
		Signals:     []string{"trusted domain"},
		Explanation: explainSafe,
	}
}

// Unknown returns the degraded resolution used when analysis fails entirely.
func (r *Resolver) Unknown() Resolution {
	return Resolution{
		Label:       model.LabelUnknown,
		Confidence:  0.0,
		Signals:     []string{"error during analysis"},
		Explanation: explainUnknown,
	}
}

// Resolve fuses the classifier outcome with the heuristic assessment.
// Precedence, strictly in order: heuristic veto, classifier malicious,
// suspicious band, safe. A panic anywhere in resolution degrades to UNKNOWN
// rather than propagating.
func (r *Resolver) Resolve(outcome classify.Outcome, available bool, riskScore int, signals []string) (res Resolution) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("verdict resolution panic: %v", p)
			res = r.Unknown()
		}
	}()

	switch {
	case riskScore >= vetoThreshold:
		res = Resolution{
			Label:      model.LabelMalicious,
			Confidence: min(float64(riskScore)/100, 0.99),
		}

	case available && outcome.Malicious:
		res = Resolution{
			Label:      model.LabelMalicious,
			Confidence: outcome.Confidence,
		}

	case riskScore >= suspiciousThreshold:
		res = Resolution{
			Label:      model.LabelSuspicious,
			Confidence: float64(riskScore) / 100,
		}

	default:
		confidence := neutralPrior
		if available {
			confidence = outcome.Confidence
		}
		res = Resolution{
			Label:      model.LabelSafe,
			Confidence: confidence,
		}
	}

	res.Signals = signals
	if len(res.Signals) == 0 {
		res.Signals = []string{noThreatSignal}
	}
	res.Explanation = explain(res.Label, res.Signals)

	return res
}

func explain(label model.Label, signals []string) string {
	switch label {
	case model.LabelMalicious:
		top := signals
		if len(top) > 2 {
			top = top[:2]
		}
		return fmt.Sprintf(explainMalicious, strings.Join(top, ", "))
	case model.LabelSuspicious:
		return explainSuspicious
	case model.LabelUnknown:
		return explainUnknown
	default:
		return explainSafe
	}
}
