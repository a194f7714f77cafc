// Package store is the persistence collaborator for scan records. The scan
// pipeline only requires monotonic read-after-write visibility within a
// single process; it never assumes a particular storage engine.
package store

import (
	"context"
	"time"

	"github.com/phisheye/phisheye/internal/model"
)

// Store persists scan records and answers the recency queries the result
// cache and the history dedup policy depend on. Implementations treat each
// write as an independent transaction.
type Store interface {
	// SaveScan appends one scan record.
	SaveScan(ctx context.Context, record model.ScanRecord) error

	// FindRecent returns the most recent record for the exact normalized URL
	// created at or after since, or nil when none exists.
	FindRecent(ctx context.Context, normalizedURL string, since time.Time) (*model.ScanRecord, error)

	// FindRecentForCaller is FindRecent scoped to one caller identity.
	FindRecentForCaller(ctx context.Context, callerID, normalizedURL string, since time.Time) (*model.ScanRecord, error)

	// ListForCaller returns up to limit of the caller's records, newest first.
	ListForCaller(ctx context.Context, callerID string, limit int) ([]model.ScanRecord, error)

	// Close releases the underlying connection, if any.
	Close(ctx context.Context) error
}
