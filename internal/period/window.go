// internal/period/window.go
package period

import (
	"fmt"

	"github.com/perfdash/backend-go/internal/domain"
)

// Parse splits a canonical "YYYY-MM" string. ok is false for anything that is
// not a zero-padded canonical month.
func Parse(canonical string) (year, month int, ok bool) {
	if len(canonical) != 7 || canonical[4] != '-' {
		return 0, 0, false
	}
	if _, err := fmt.Sscanf(canonical, "%4d-%2d", &year, &month); err != nil {
		return 0, 0, false
	}
	if month < 1 || month > 12 {
		return 0, 0, false
	}
	return year, month, true
}

// Format renders a canonical zero-padded "YYYY-MM" string.
func Format(year, month int) string {
	return fmt.Sprintf("%04d-%02d", year, month)
}

// AddMonths shifts a canonical month by delta months, rolling over year
// boundaries in either direction. Non-canonical input is returned unchanged.
func AddMonths(canonical string, delta int) string {
	year, month, ok := Parse(canonical)
	if !ok {
		return canonical
	}
	total := year*12 + (month - 1) + delta
	return Format(total/12, total%12+1)
}

// SpanMonths returns the inclusive length of a window in whole months.
// Windows with Start > End, or non-canonical bounds, span zero months.
func SpanMonths(w domain.TimeWindow) int {
	sy, sm, ok := Parse(w.Start)
	if !ok {
		return 0
	}
	ey, em, ok := Parse(w.End)
	if !ok {
		return 0
	}
	span := (ey-sy)*12 + (em - sm) + 1
	if span < 0 {
		return 0
	}
	return span
}

// Months enumerates every canonical month of a window in ascending order.
func Months(w domain.TimeWindow) []string {
	span := SpanMonths(w)
	if span == 0 {
		return nil
	}
	months := make([]string, 0, span)
	for i := 0; i < span; i++ {
		months = append(months, AddMonths(w.Start, i))
	}
	return months
}

// ComparisonWindow derives the comparison window for a primary window. The
// second return is false when the config asks for no comparison or when the
// needed inputs are missing (custom mode without a window, preceding mode
// with a non-canonical primary window).
func ComparisonWindow(primary domain.TimeWindow, cfg domain.ComparisonConfig) (domain.TimeWindow, bool) {
	switch cfg.Mode {
	case domain.ComparePreviousYear:
		return domain.TimeWindow{
			Start: AddMonths(primary.Start, -12),
			End:   AddMonths(primary.End, -12),
		}, true
	case domain.ComparePrecedingPeriod:
		span := SpanMonths(primary)
		if span == 0 {
			return domain.TimeWindow{}, false
		}
		end := AddMonths(primary.Start, -1)
		return domain.TimeWindow{
			Start: AddMonths(end, -(span - 1)),
			End:   end,
		}, true
	case domain.CompareCustomRange:
		if cfg.Custom == nil {
			return domain.TimeWindow{}, false
		}
		return *cfg.Custom, true
	default:
		return domain.TimeWindow{}, false
	}
}
