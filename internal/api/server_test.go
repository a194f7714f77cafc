package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/phisheye/phisheye/internal/model"
	"github.com/phisheye/phisheye/internal/store"
)

// stubScanner returns canned verdicts and records the requests it saw.
type stubScanner struct {
	mu       sync.Mutex
	requests []model.ScanRequest
}

func (s *stubScanner) Scan(ctx context.Context, req model.ScanRequest) model.Verdict {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()
	return model.Verdict{URL: req.URL, Label: model.LabelSafe, Confidence: 0.5}
}

func (s *stubScanner) last() model.ScanRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.requests[len(s.requests)-1]
}

func newTestServer(scanner *stubScanner, st store.Store) *Server {
	return NewServer(scanner, st, model.ConcurrencyConfig{BatchWorkers: 2, DomainRPS: 100, DomainBurst: 100}, "test", false)
}

func do(t *testing.T, s *Server, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	s.Handler().ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	s := newTestServer(&stubScanner{}, store.NewMemoryStore())

	w := do(t, s, http.MethodGet, "/api/v1/health", "", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp HealthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Status != "healthy" || resp.Version != "test" {
		t.Errorf("health = %+v", resp)
	}
	if resp.Classifier != "unavailable" {
		t.Errorf("classifier = %q, want unavailable", resp.Classifier)
	}
}

func TestScan(t *testing.T) {
	scanner := &stubScanner{}
	s := newTestServer(scanner, store.NewMemoryStore())

	w := do(t, s, http.MethodPost, "/api/v1/scan",
		`{"url":"http://example.test/login","deepScan":true}`,
		map[string]string{"X-Caller-ID": "extension-42"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var v model.Verdict
	if err := json.Unmarshal(w.Body.Bytes(), &v); err != nil {
		t.Fatal(err)
	}
	if v.URL != "http://example.test/login" || v.Label != model.LabelSafe {
		t.Errorf("verdict = %+v", v)
	}

	req := scanner.last()
	if req.CallerID != "extension-42" {
		t.Errorf("callerID = %q, want extension-42", req.CallerID)
	}
	if !req.DeepScan {
		t.Error("deep scan flag not propagated")
	}
}

func TestScan_DerivesCallerFromClient(t *testing.T) {
	scanner := &stubScanner{}
	s := newTestServer(scanner, store.NewMemoryStore())

	do(t, s, http.MethodPost, "/api/v1/scan", `{"url":"http://example.test"}`, nil)
	if req := scanner.last(); req.CallerID == "" {
		t.Error("expected a derived caller identity, got empty")
	}
}

func TestScan_BadRequests(t *testing.T) {
	s := newTestServer(&stubScanner{}, store.NewMemoryStore())

	tests := []struct {
		name string
		body string
	}{
		{"missing url", `{}`},
		{"malformed json", `{"url":`},
		{"oversized url", `{"url":"http://example.test/` + strings.Repeat("a", maxURLLength) + `"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(t, s, http.MethodPost, "/api/v1/scan", tt.body, nil)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", w.Code)
			}
		})
	}
}

func TestScanBatch(t *testing.T) {
	scanner := &stubScanner{}
	s := newTestServer(scanner, store.NewMemoryStore())

	w := do(t, s, http.MethodPost, "/api/v1/scan/batch",
		`{"urls":["http://a.test","http://b.test","http://c.test"]}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", w.Code, w.Body.String())
	}

	var resp struct {
		Results []model.Verdict `json:"results"`
		Count   int             `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 3 || len(resp.Results) != 3 {
		t.Fatalf("count = %d, results = %d", resp.Count, len(resp.Results))
	}
	if resp.Results[0].URL != "http://a.test" {
		t.Errorf("results out of order: %+v", resp.Results)
	}
}

func TestScanBatch_Limits(t *testing.T) {
	s := newTestServer(&stubScanner{}, store.NewMemoryStore())

	if w := do(t, s, http.MethodPost, "/api/v1/scan/batch", `{"urls":[]}`, nil); w.Code != http.StatusBadRequest {
		t.Errorf("empty batch: status = %d, want 400", w.Code)
	}

	urls := make([]string, maxBatchSize+1)
	for i := range urls {
		urls[i] = "http://a.test"
	}
	body, _ := json.Marshal(map[string]any{"urls": urls})
	if w := do(t, s, http.MethodPost, "/api/v1/scan/batch", string(body), nil); w.Code != http.StatusBadRequest {
		t.Errorf("oversized batch: status = %d, want 400", w.Code)
	}
}

func TestHistory(t *testing.T) {
	st := store.NewMemoryStore()
	ctx := context.Background()
	base := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	for i, url := range []string{"http://a.test", "http://b.test"} {
		_ = st.SaveScan(ctx, model.ScanRecord{
			ID:            url,
			CallerID:      "extension-42",
			URL:           url,
			NormalizedURL: url,
			Label:         model.LabelSafe,
			CreatedAt:     base.Add(time.Duration(i) * time.Minute),
		})
	}

	s := newTestServer(&stubScanner{}, st)

	w := do(t, s, http.MethodGet, "/api/v1/history?limit=10", "",
		map[string]string{"X-Caller-ID": "extension-42"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}

	var resp struct {
		Scans []model.ScanRecord `json:"scans"`
		Count int                `json:"count"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Count != 2 {
		t.Fatalf("count = %d, want 2", resp.Count)
	}
	if resp.Scans[0].URL != "http://b.test" {
		t.Errorf("history not newest-first: %+v", resp.Scans)
	}
}
