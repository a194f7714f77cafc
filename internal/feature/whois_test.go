package feature

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestAgeLookup_MemoizesSuccess(t *testing.T) {
	calls := 0
	lookup := NewAgeLookup(time.Second)
	lookup.now = func() time.Time {
		return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	}
	lookup.query = func(ctx context.Context, domain string) (time.Time, error) {
		calls++
		return time.Date(2024, 5, 2, 0, 0, 0, 0, time.UTC), nil
	}

	ctx := context.Background()
	age := lookup.AgeDays(ctx, "example.com")
	if age != 30 {
		t.Errorf("expected age 30, got %d", age)
	}

	if again := lookup.AgeDays(ctx, "example.com"); again != 30 {
		t.Errorf("expected memoized age 30, got %d", again)
	}
	if calls != 1 {
		t.Errorf("expected exactly 1 WHOIS call, got %d", calls)
	}
}

func TestAgeLookup_FailureMemoizesSentinel(t *testing.T) {
	calls := 0
	lookup := NewAgeLookup(time.Second)
	lookup.query = func(ctx context.Context, domain string) (time.Time, error) {
		calls++
		return time.Time{}, errors.New("registry timeout")
	}

	ctx := context.Background()
	if age := lookup.AgeDays(ctx, "flaky.example"); age != 0 {
		t.Errorf("expected sentinel 0 on failure, got %d", age)
	}
	if age := lookup.AgeDays(ctx, "flaky.example"); age != 0 {
		t.Errorf("expected sentinel 0 on memoized failure, got %d", age)
	}
	if calls != 1 {
		t.Errorf("failed lookup should not be retried, got %d calls", calls)
	}
}

func TestAgeLookup_EmptyDomain(t *testing.T) {
	lookup := NewAgeLookup(time.Second)
	lookup.query = func(ctx context.Context, domain string) (time.Time, error) {
		t.Fatal("query must not be called for empty domain")
		return time.Time{}, nil
	}

	if age := lookup.AgeDays(context.Background(), ""); age != 0 {
		t.Errorf("expected 0 for empty domain, got %d", age)
	}
}

func TestParseCreatedDate_Layouts(t *testing.T) {
	tests := []struct {
		in   string
		year int
	}{
		{"2023-04-05T10:00:00Z", 2023},
		{"2023-04-05 10:00:00", 2023},
		{"2023-04-05", 2023},
		{"05-Apr-2023", 2023},
		{"2023.04.05", 2023},
	}

	for _, tt := range tests {
		got, err := parseCreatedDate(tt.in)
		if err != nil {
			t.Errorf("parseCreatedDate(%q) error: %v", tt.in, err)
			continue
		}
		if got.Year() != tt.year {
			t.Errorf("parseCreatedDate(%q) year = %d, want %d", tt.in, got.Year(), tt.year)
		}
	}

	if _, err := parseCreatedDate("not a date"); err == nil {
		t.Error("expected error for unparsable date")
	}
}
