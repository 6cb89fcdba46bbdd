package period

import (
	"testing"

	"github.com/perfdash/backend-go/internal/domain"
)

func TestParse_Valid(t *testing.T) {
	year, month, ok := Parse("2025-03")
	if !ok {
		t.Fatal("expected canonical month to parse")
	}
	if year != 2025 || month != 3 {
		t.Fatalf("got %d-%d, want 2025-3", year, month)
	}
}

func TestParse_Invalid(t *testing.T) {
	for _, input := range []string{"3", "2025-13", "2025/03", "202503", ""} {
		if _, _, ok := Parse(input); ok {
			t.Fatalf("expected %q to fail parsing", input)
		}
	}
}

func TestAddMonths_YearRollover(t *testing.T) {
	if got := AddMonths("2025-01", -1); got != "2024-12" {
		t.Fatalf("got %q, want 2024-12", got)
	}
	if got := AddMonths("2024-12", 1); got != "2025-01" {
		t.Fatalf("got %q, want 2025-01", got)
	}
	if got := AddMonths("2025-06", -12); got != "2024-06" {
		t.Fatalf("got %q, want 2024-06", got)
	}
}

func TestSpanMonths(t *testing.T) {
	w := domain.TimeWindow{Start: "2024-11", End: "2025-02"}
	if got := SpanMonths(w); got != 4 {
		t.Fatalf("got %d months, want 4", got)
	}

	inverted := domain.TimeWindow{Start: "2025-05", End: "2025-01"}
	if got := SpanMonths(inverted); got != 0 {
		t.Fatalf("inverted window should span 0 months, got %d", got)
	}
}

func TestMonths(t *testing.T) {
	got := Months(domain.TimeWindow{Start: "2024-11", End: "2025-01"})
	want := []string{"2024-11", "2024-12", "2025-01"}
	if len(got) != len(want) {
		t.Fatalf("got %d months, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("month %d: got %q, want %q", i, got[i], want[i])
		}
	}
}

func TestComparisonWindow_PreviousYear(t *testing.T) {
	primary := domain.TimeWindow{Start: "2025-04", End: "2025-06"}
	got, ok := ComparisonWindow(primary, domain.ComparisonConfig{Mode: domain.ComparePreviousYear})
	if !ok {
		t.Fatal("expected a comparison window")
	}
	if got.Start != "2024-04" || got.End != "2024-06" {
		t.Fatalf("got %v, want 2024-04..2024-06", got)
	}
}

func TestComparisonWindow_PrecedingPeriod(t *testing.T) {
	primary := domain.TimeWindow{Start: "2025-04", End: "2025-06"}
	got, ok := ComparisonWindow(primary, domain.ComparisonConfig{Mode: domain.ComparePrecedingPeriod})
	if !ok {
		t.Fatal("expected a comparison window")
	}
	if got.Start != "2025-01" || got.End != "2025-03" {
		t.Fatalf("got %v, want 2025-01..2025-03", got)
	}
}

func TestComparisonWindow_PrecedingPeriodCrossesYear(t *testing.T) {
	primary := domain.TimeWindow{Start: "2025-01", End: "2025-02"}
	got, ok := ComparisonWindow(primary, domain.ComparisonConfig{Mode: domain.ComparePrecedingPeriod})
	if !ok {
		t.Fatal("expected a comparison window")
	}
	if got.Start != "2024-11" || got.End != "2024-12" {
		t.Fatalf("got %v, want 2024-11..2024-12", got)
	}
}

func TestComparisonWindow_Custom(t *testing.T) {
	custom := domain.TimeWindow{Start: "2023-01", End: "2023-06"}
	got, ok := ComparisonWindow(domain.TimeWindow{Start: "2025-01", End: "2025-06"}, domain.ComparisonConfig{
		Mode:   domain.CompareCustomRange,
		Custom: &custom,
	})
	if !ok {
		t.Fatal("expected a comparison window")
	}
	if got != custom {
		t.Fatalf("got %v, want %v", got, custom)
	}

	if _, ok := ComparisonWindow(domain.TimeWindow{Start: "2025-01", End: "2025-06"}, domain.ComparisonConfig{
		Mode: domain.CompareCustomRange,
	}); ok {
		t.Fatal("custom mode without a window should yield none")
	}
}

func TestComparisonWindow_None(t *testing.T) {
	if _, ok := ComparisonWindow(domain.TimeWindow{Start: "2025-01", End: "2025-06"}, domain.ComparisonConfig{
		Mode: domain.CompareNone,
	}); ok {
		t.Fatal("none mode should yield no comparison window")
	}
}
