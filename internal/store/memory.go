package store

import (
	"context"
	"sync"
	"time"

	"github.com/phisheye/phisheye/internal/model"
)

// MemoryStore keeps scan records in process memory. It backs the CLI when no
// Mongo URI is configured, and tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records []model.ScanRecord
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// SaveScan appends the record
func (s *MemoryStore) SaveScan(ctx context.Context, record model.ScanRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records = append(s.records, record)
	return nil
}

// FindRecent returns the newest computed record for normalizedURL created at
// or after since, or nil. Cache-served records are excluded so the freshness
// window runs from computation time, not from the last repeat scan.
func (s *MemoryStore) FindRecent(ctx context.Context, normalizedURL string, since time.Time) (*model.ScanRecord, error) {
	return s.find(func(r model.ScanRecord) bool {
		return r.NormalizedURL == normalizedURL && !r.Cached && !r.CreatedAt.Before(since)
	})
}

// FindRecentForCaller is FindRecent scoped to callerID
func (s *MemoryStore) FindRecentForCaller(ctx context.Context, callerID, normalizedURL string, since time.Time) (*model.ScanRecord, error) {
	return s.find(func(r model.ScanRecord) bool {
		return r.CallerID == callerID && r.NormalizedURL == normalizedURL && !r.CreatedAt.Before(since)
	})
}

// ListForCaller returns up to limit of the caller's records, newest first
func (s *MemoryStore) ListForCaller(ctx context.Context, callerID string, limit int) ([]model.ScanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.ScanRecord
	for i := len(s.records) - 1; i >= 0 && len(out) < limit; i-- {
		if s.records[i].CallerID == callerID {
			out = append(out, s.records[i])
		}
	}
	return out, nil
}

// Close is a no-op for the in-memory store
func (s *MemoryStore) Close(ctx context.Context) error {
	return nil
}

// Len returns the number of stored records
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

func (s *MemoryStore) find(match func(model.ScanRecord) bool) (*model.ScanRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	// Records are appended in time order; scan from the newest.
	for i := len(s.records) - 1; i >= 0; i-- {
		if match(s.records[i]) {
			record := s.records[i]
			return &record, nil
		}
	}
	return nil, nil
}
