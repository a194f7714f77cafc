package worker

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/phisheye/phisheye/internal/model"
)

// fakeScanner records scanned URLs and returns canned SAFE verdicts.
type fakeScanner struct {
	mu    sync.Mutex
	calls []string
}

func (f *fakeScanner) Scan(ctx context.Context, req model.ScanRequest) model.Verdict {
	f.mu.Lock()
	f.calls = append(f.calls, req.URL)
	f.mu.Unlock()
	return model.Verdict{URL: req.URL, Label: model.LabelSafe, Confidence: 0.5}
}

func (f *fakeScanner) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func TestPool_ScansAllTasksInOrder(t *testing.T) {
	scanner := &fakeScanner{}
	pool := NewPool(context.Background(), scanner, nil, 4)
	pool.Start()

	const n = 20
	for i := 0; i < n; i++ {
		pool.Submit(Task{
			Index:   i,
			Request: model.ScanRequest{URL: fmt.Sprintf("http://site-%d.test", i)},
		})
	}

	outcomes := pool.Wait()
	if len(outcomes) != n {
		t.Fatalf("got %d outcomes, want %d", len(outcomes), n)
	}
	for i, o := range outcomes {
		if o.Index != i {
			t.Fatalf("outcome %d has index %d", i, o.Index)
		}
		if want := fmt.Sprintf("http://site-%d.test", i); o.Request.URL != want {
			t.Errorf("outcome %d for %q, want %q", i, o.Request.URL, want)
		}
		if o.Verdict.Label != model.LabelSafe {
			t.Errorf("outcome %d label = %s", i, o.Verdict.Label)
		}
	}
	if scanner.count() != n {
		t.Errorf("scanner called %d times, want %d", scanner.count(), n)
	}
}

func TestPool_ZeroWorkersClampedToOne(t *testing.T) {
	pool := NewPool(context.Background(), &fakeScanner{}, nil, 0)
	pool.Start()
	pool.Submit(Task{Index: 0, Request: model.ScanRequest{URL: "http://a.test"}})

	if outcomes := pool.Wait(); len(outcomes) != 1 {
		t.Errorf("got %d outcomes, want 1", len(outcomes))
	}
}

func TestPool_ShutdownDropsQueuedWork(t *testing.T) {
	scanner := &fakeScanner{}
	pool := NewPool(context.Background(), scanner, nil, 1)
	pool.Shutdown() // never started

	pool.Submit(Task{Index: 0, Request: model.ScanRequest{URL: "http://a.test"}})
	if scanner.count() != 0 {
		t.Errorf("scanner called %d times after shutdown, want 0", scanner.count())
	}
}
