// Package pipeline orchestrates the complete threat scoring flow: normalize,
// trusted-domain short-circuit, result-cache lookup, feature extraction,
// classifier and heuristic fusion, verdict resolution, and the cache store
// plus per-caller audit history write.
package pipeline

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/phisheye/phisheye/internal/advice"
	"github.com/phisheye/phisheye/internal/cache"
	"github.com/phisheye/phisheye/internal/classify"
	"github.com/phisheye/phisheye/internal/feature"
	"github.com/phisheye/phisheye/internal/heuristic"
	"github.com/phisheye/phisheye/internal/model"
	"github.com/phisheye/phisheye/internal/normalize"
	"github.com/phisheye/phisheye/internal/store"
	"github.com/phisheye/phisheye/internal/verdict"
)

// anonymousCaller is the history owner for requests without a caller identity.
const anonymousCaller = "anonymous"

// Scanner runs the threat scoring pipeline. All components are read-only
// after construction except the extractor's domain-age memo, so one Scanner
// serves concurrent requests.
type Scanner struct {
	extractor  *feature.Extractor
	classifier *classify.Classifier
	engine     *heuristic.Engine
	resolver   *verdict.Resolver
	allowlist  *verdict.Allowlist
	cache      cache.Cache // nil when caching is disabled
	store      store.Store
	advisor    *advice.Advisor
	freshness  time.Duration
	dedup      time.Duration
	now        func() time.Time
}

// NewScanner wires the pipeline from config. The classifier artifact is
// loaded here, once; a missing or corrupt artifact leaves the scanner in
// heuristic-only operation.
func NewScanner(cfg *model.Config, st store.Store) *Scanner {
	var c cache.Cache
	if cfg.Cache.Enabled {
		c = cache.NewLayeredCache(cfg.Cache.Dir, cfg.Cache.Freshness)
	}

	advisor, err := advice.New(cfg.Advice)
	if err != nil {
		log.Printf("advice disabled: %v", err)
	}

	return &Scanner{
		extractor:  feature.NewExtractor(cfg.Probe),
		classifier: classify.Load(cfg.Artifacts.ModelPath, cfg.Artifacts.ScalerPath),
		engine:     heuristic.NewEngine(),
		resolver:   verdict.NewResolver(),
		allowlist:  verdict.NewAllowlist(cfg.Trusted),
		cache:      c,
		store:      st,
		advisor:    advisor,
		freshness:  cfg.Cache.Freshness,
		dedup:      cfg.Store.DedupWindow,
		now:        time.Now,
	}
}

// ClassifierAvailable reports whether the scoring artifact loaded.
func (s *Scanner) ClassifierAvailable() bool {
	return s.classifier.Available()
}

// Scan classifies one URL. It always returns a verdict: degraded inputs and
// internal failures yield UNKNOWN rather than an error, and a failed audit
// write never withholds a computed verdict from the caller.
//
// Two concurrent scans of the same cold URL may both compute and both
// persist; the newer entry supersedes. See DESIGN.md for why this race is
// accepted rather than coordinated away.
func (s *Scanner) Scan(ctx context.Context, req model.ScanRequest) model.Verdict {
	normalized := normalize.Normalize(req.URL)
	if normalized == "" {
		return s.assemble(req, s.resolver.Unknown(), model.FeatureVector{})
	}

	// Trusted domains bypass scoring entirely; no features are gathered.
	if s.allowlist.Match(normalized) {
		v := s.assemble(req, s.resolver.Trusted(), model.FeatureVector{})
		s.record(ctx, req, normalized, v)
		return v
	}

	if v, ok := s.lookup(ctx, normalized); ok {
		v.Cached = true
		s.record(ctx, req, normalized, v)
		return v
	}

	v := s.compute(ctx, req, normalized)
	s.storeVerdict(normalized, v)
	s.record(ctx, req, normalized, v)
	return v
}

// lookup checks the process cache, then the persistence layer, for a verdict
// for this normalized URL inside the freshness window.
func (s *Scanner) lookup(ctx context.Context, normalized string) (model.Verdict, bool) {
	if s.cache != nil {
		if data, found := s.cache.Get(cache.Key(normalized)); found {
			var v model.Verdict
			if err := json.Unmarshal(data, &v); err == nil {
				return v, true
			}
			_ = s.cache.Delete(cache.Key(normalized))
		}
	}

	rec, err := s.store.FindRecent(ctx, normalized, s.now().Add(-s.freshness))
	if err != nil {
		log.Printf("cache lookup against store failed for %s: %v", normalized, err)
		return model.Verdict{}, false
	}
	if rec == nil {
		return model.Verdict{}, false
	}

	v := verdictFromRecord(rec)
	s.storeVerdict(normalized, v)
	return v, true
}

// compute runs extraction, scoring, and resolution. A panic anywhere in the
// scoring path degrades to UNKNOWN instead of reaching the caller.
func (s *Scanner) compute(ctx context.Context, req model.ScanRequest, normalized string) (v model.Verdict) {
	defer func() {
		if p := recover(); p != nil {
			log.Printf("scan pipeline panic for %s: %v", normalized, p)
			v = s.assemble(req, s.resolver.Unknown(), model.FeatureVector{})
		}
	}()

	vec := s.extractor.Extract(ctx, normalized, req.DeepScan)
	outcome, available := s.classifier.Score(vec.Lexical())
	risk, signals := s.engine.Assess(vec, req.DeepScan)
	res := s.resolver.Resolve(outcome, available, risk, signals)

	v = s.assemble(req, res, vec)

	if s.advisor != nil && v.Label != model.LabelSafe && v.Label != model.LabelUnknown {
		note, err := s.advisor.Note(ctx, v)
		if err != nil {
			log.Printf("advisory note failed for %s: %v", normalized, err)
		} else {
			v.Advice = note
		}
	}

	return v
}

func (s *Scanner) assemble(req model.ScanRequest, res verdict.Resolution, vec model.FeatureVector) model.Verdict {
	return model.Verdict{
		URL:         req.URL,
		Label:       res.Label,
		Confidence:  res.Confidence,
		Signals:     res.Signals,
		Explanation: res.Explanation,
		Features:    vec,
		DeepScan:    req.DeepScan,
	}
}

// storeVerdict writes the verdict into the result cache. Cache write failures
// only cost a future recomputation.
func (s *Scanner) storeVerdict(normalized string, v model.Verdict) {
	if s.cache == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(cache.Key(normalized), data, s.freshness); err != nil {
		log.Printf("cache store failed for %s: %v", normalized, err)
	}
}

// record appends the scan to the caller's audit history unless the same
// caller scanned the same normalized URL within the dedup window. Losing an
// audit record is less severe than losing availability, so persistence
// failures are logged and the verdict is still returned.
func (s *Scanner) record(ctx context.Context, req model.ScanRequest, normalized string, v model.Verdict) {
	caller := req.CallerID
	if caller == "" {
		caller = anonymousCaller
	}

	existing, err := s.store.FindRecentForCaller(ctx, caller, normalized, s.now().Add(-s.dedup))
	if err != nil {
		log.Printf("history dedup check failed for %s: %v", normalized, err)
	}
	if existing != nil {
		return
	}

	rec := model.ScanRecord{
		ID:            uuid.NewString(),
		CallerID:      caller,
		URL:           req.URL,
		NormalizedURL: normalized,
		Label:         v.Label,
		Confidence:    v.Confidence,
		ScanType:      model.ScanTypeName(req.DeepScan),
		Signals:       v.Signals,
		Explanation:   v.Explanation,
		Features:      v.Features,
		FeatureHash:   v.Features.Signature(),
		Cached:        v.Cached,
		CreatedAt:     s.now(),
	}

	if err := s.store.SaveScan(ctx, rec); err != nil {
		log.Printf("failed to persist scan record for %s: %v", normalized, err)
	}
}

func verdictFromRecord(rec *model.ScanRecord) model.Verdict {
	return model.Verdict{
		URL:         rec.URL,
		Label:       rec.Label,
		Confidence:  rec.Confidence,
		Signals:     rec.Signals,
		Explanation: rec.Explanation,
		Features:    rec.Features,
		DeepScan:    rec.ScanType == "deep",
	}
}
