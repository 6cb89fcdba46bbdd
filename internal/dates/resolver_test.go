package dates

import (
	"context"
	"testing"
	"time"

	"github.com/perfdash/backend-go/internal/domain"
)

// fixedJune pins the inference anchor to mid-June 2025.
func fixedJune() time.Time {
	return time.Date(2025, time.June, 15, 12, 0, 0, 0, time.UTC)
}

func testResolver() *Resolver {
	return NewResolver(NewMemoryCache(), WithNow(fixedJune))
}

func monthRecords(months ...string) []domain.Record {
	records := make([]domain.Record, 0, len(months))
	for i, m := range months {
		records = append(records, domain.Record{ID: "P" + string(rune('1'+i)), Month: m})
	}
	return records
}

func TestNormalize_CanonicalPassthrough(t *testing.T) {
	r := testResolver()
	if got := r.Normalize(context.Background(), "2023-11", nil); got != "2023-11" {
		t.Fatalf("got %q, want canonical input unchanged", got)
	}
}

func TestNormalize_BareMonthCurrentYear(t *testing.T) {
	r := testResolver()
	records := monthRecords("3")
	if got := r.Normalize(context.Background(), "3", records); got != "2025-03" {
		t.Fatalf("got %q, want 2025-03", got)
	}
}

func TestNormalize_BareMonthPreviousYear(t *testing.T) {
	r := testResolver()
	records := monthRecords("11")
	// November is later than the June anchor, so it belongs to last year.
	if got := r.Normalize(context.Background(), "11", records); got != "2024-11" {
		t.Fatalf("got %q, want 2024-11", got)
	}
}

func TestNormalize_Idempotent(t *testing.T) {
	r := testResolver()
	records := monthRecords("3", "11")
	for _, raw := range []string{"3", "11", "2025-01"} {
		once := r.Normalize(context.Background(), raw, records)
		twice := r.Normalize(context.Background(), once, records)
		if once != twice {
			t.Fatalf("normalize not idempotent: %q -> %q -> %q", raw, once, twice)
		}
	}
}

func TestNormalize_UnparseableUnchanged(t *testing.T) {
	r := testResolver()
	for _, raw := range []string{"March", "13", "0", "2025-3", "n/a", ""} {
		if got := r.Normalize(context.Background(), raw, nil); got != raw {
			t.Fatalf("unparseable %q should pass through, got %q", raw, got)
		}
	}
}

func TestNormalize_FallbackWithoutDatasetMonth(t *testing.T) {
	r := testResolver()
	// Dataset never mentions month 2; fallback anchors directly to now.
	records := monthRecords("5")
	if got := r.Normalize(context.Background(), "2", records); got != "2025-02" {
		t.Fatalf("got %q, want 2025-02", got)
	}
	if got := r.Normalize(context.Background(), "9", records); got != "2024-09" {
		t.Fatalf("got %q, want 2024-09", got)
	}
}

func TestAnalyze_Confidence(t *testing.T) {
	r := testResolver()

	analysis := r.Analyze(context.Background(), monthRecords("1", "2", "3"))
	if analysis.Confidence != ConfidenceHigh {
		t.Fatalf("got confidence %q, want high", analysis.Confidence)
	}
	if analysis.Warning != "" {
		t.Fatalf("unexpected warning: %q", analysis.Warning)
	}

	wide := monthRecords("1", "2", "3", "4", "5", "7", "8")
	analysis = r.Analyze(context.Background(), wide)
	if analysis.Confidence != ConfidenceMedium {
		t.Fatalf("got confidence %q, want medium for 7 bare months", analysis.Confidence)
	}
	if analysis.Warning == "" {
		t.Fatal("expected a warning for a wide bare-month span")
	}
}

func TestDetectedRange_Canonical(t *testing.T) {
	r := testResolver()
	records := monthRecords("2024-07", "2025-02", "2024-12")
	got := r.DetectedRange(context.Background(), records)
	if got.Start != "2024-07" || got.End != "2025-02" {
		t.Fatalf("got %v, want 2024-07..2025-02", got)
	}
}

func TestDetectedRange_Empty(t *testing.T) {
	r := testResolver()
	got := r.DetectedRange(context.Background(), nil)
	if got.Start != "2000-01" || got.End != "2099-12" {
		t.Fatalf("got %v, want the placeholder window", got)
	}
}

func TestIsInRange(t *testing.T) {
	r := testResolver()
	records := monthRecords("3")

	if !r.IsInRange(context.Background(), "3", "2025-01", "2025-06", records) {
		t.Fatal("2025-03 should be inside 2025-01..2025-06")
	}
	if r.IsInRange(context.Background(), "3", "2025-04", "2025-06", records) {
		t.Fatal("2025-03 should be outside 2025-04..2025-06")
	}
	if r.IsInRange(context.Background(), "garbage", "2000-01", "2099-12", records) {
		t.Fatal("unparseable months should fail every range check")
	}
}

func TestIsInRange_WideningKeepsMembership(t *testing.T) {
	r := testResolver()
	records := monthRecords("2025-03")
	if !r.IsInRange(context.Background(), "2025-03", "2025-03", "2025-03", records) {
		t.Fatal("month should be inside the tight window")
	}
	if !r.IsInRange(context.Background(), "2025-03", "2024-01", "2025-12", records) {
		t.Fatal("widening the window must not remove a member")
	}
}

func TestAnalyze_CacheHitAndInvalidate(t *testing.T) {
	cache := NewMemoryCache()
	calls := 0
	r := NewResolver(cache, WithNow(func() time.Time {
		calls++
		return fixedJune()
	}))

	records := monthRecords("3", "4")
	r.Analyze(context.Background(), records)
	computeCalls := calls

	// Second analysis of the same dataset must come from the cache.
	r.Analyze(context.Background(), records)
	if calls != computeCalls {
		t.Fatalf("expected cached analysis, but now() ran again (%d -> %d)", computeCalls, calls)
	}

	r.Invalidate(context.Background())
	r.Analyze(context.Background(), records)
	if calls == computeCalls {
		t.Fatal("expected recomputation after invalidation")
	}
}

func TestDatasetHash(t *testing.T) {
	a := []domain.Record{{ID: "P1", Month: "3"}, {ID: "P2", Month: "4"}}
	b := []domain.Record{{ID: "P1", Month: "3"}, {ID: "P2", Month: "5"}}

	if DatasetHash(a) == DatasetHash(b) {
		t.Fatal("different (id, month) pairs must hash differently")
	}
	if DatasetHash(a) != DatasetHash(a) {
		t.Fatal("hash must be deterministic")
	}
	if DatasetHash(nil) != DatasetHash([]domain.Record{}) {
		t.Fatal("nil and empty collections must hash identically")
	}
}
