package worker

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/phisheye/phisheye/internal/model"
)

// BatchProcessor scans many URLs concurrently through one scanner, returning
// verdicts in input order.
type BatchProcessor struct {
	scanner URLScanner
	limiter *Limiter
	workers int
}

// NewBatchProcessor creates a batch processor. A nil limiter disables
// per-domain pacing.
func NewBatchProcessor(scanner URLScanner, limiter *Limiter, workers int) *BatchProcessor {
	return &BatchProcessor{
		scanner: scanner,
		limiter: limiter,
		workers: workers,
	}
}

// Process scans urls concurrently. Every URL yields an outcome; degraded
// inputs come back as UNKNOWN verdicts rather than being dropped. Cancelling
// ctx abandons the remaining work.
func (b *BatchProcessor) Process(ctx context.Context, urls []string, callerID string, deepScan bool) []Outcome {
	if len(urls) == 0 {
		return nil
	}

	pool := NewPool(ctx, b.scanner, b.limiter, b.workers)
	pool.Start()

	for i, u := range urls {
		pool.Submit(Task{
			Index: i,
			Request: model.ScanRequest{
				URL:      u,
				DeepScan: deepScan,
				CallerID: callerID,
			},
		})
	}

	return pool.Wait()
}

// ProcessFile reads URLs from a file (one per line) and scans them.
func (b *BatchProcessor) ProcessFile(ctx context.Context, path, callerID string, deepScan bool) ([]Outcome, error) {
	urls, err := ReadURLs(path)
	if err != nil {
		return nil, fmt.Errorf("read URLs: %w", err)
	}
	return b.Process(ctx, urls, callerID, deepScan), nil
}

// ReadURLs reads one URL per line, skipping blank lines and # comments and
// dropping exact duplicates while preserving first-seen order.
func ReadURLs(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var urls []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())

		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		if !seen[line] {
			seen[line] = true
			urls = append(urls, line)
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}

	return urls, nil
}
