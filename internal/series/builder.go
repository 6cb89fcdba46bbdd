// internal/series/builder.go

// Package series shapes record collections into ordered per-month chart
// points, optionally paired with comparison-period values.
package series

import (
	"context"
	"sort"
	"time"

	"github.com/perfdash/backend-go/internal/dates"
	"github.com/perfdash/backend-go/internal/domain"
	"github.com/perfdash/backend-go/internal/metrics"
	"github.com/perfdash/backend-go/internal/period"
)

type Builder struct {
	resolver *dates.Resolver
}

func NewBuilder(resolver *dates.Resolver) *Builder {
	return &Builder{resolver: resolver}
}

// Build produces one point per distinct normalized month with data in the
// primary window, ascending. productID narrows the values to one product;
// empty means portfolio-wide. The whole series is computed eagerly per call.
//
// Comparison pairing follows the config's alignment: previous-year mode looks
// up the month exactly twelve months earlier (absent months pair with
// nothing), while preceding-period and custom modes pair by positional index
// into the comparison window's own series. Index pairing is partial when the
// windows have unequal month counts and does not guarantee month-to-month
// semantic correspondence across gaps; that trade-off is inherent to the
// mode.
func (b *Builder) Build(ctx context.Context, records []domain.Record, window domain.TimeWindow, cfg domain.ComparisonConfig, productID string) []domain.SeriesPoint {
	byMonth := b.groupByMonth(ctx, records, productID)

	primary := monthsWithin(byMonth, window)
	points := make([]domain.SeriesPoint, 0, len(primary))
	for _, month := range primary {
		points = append(points, domain.SeriesPoint{
			Month:          month,
			Label:          monthLabel(month),
			DerivedMetrics: metrics.Aggregate(byMonth[month]),
		})
	}

	switch cfg.Alignment() {
	case domain.AlignCalendarYear:
		for i := range points {
			target := period.AddMonths(points[i].Month, -12)
			recs, ok := byMonth[target]
			if !ok {
				continue
			}
			comparison := metrics.Aggregate(recs)
			points[i].ComparisonMonth = target
			points[i].Comparison = &comparison
		}
	case domain.AlignIndex:
		comparisonWindow, ok := period.ComparisonWindow(window, cfg)
		if !ok {
			break
		}
		comparisonMonths := monthsWithin(byMonth, comparisonWindow)
		for i := range points {
			if i >= len(comparisonMonths) {
				break
			}
			comparison := metrics.Aggregate(byMonth[comparisonMonths[i]])
			points[i].ComparisonMonth = comparisonMonths[i]
			points[i].Comparison = &comparison
		}
	}

	return points
}

// groupByMonth buckets records by normalized month. Normalization always
// consults the full dataset so single-product series resolve bare months the
// same way portfolio series do.
func (b *Builder) groupByMonth(ctx context.Context, records []domain.Record, productID string) map[string][]domain.Record {
	byMonth := make(map[string][]domain.Record)
	for _, r := range records {
		if productID != "" && r.ID != productID {
			continue
		}
		month := b.resolver.Normalize(ctx, r.Month, records)
		byMonth[month] = append(byMonth[month], r)
	}
	return byMonth
}

func monthsWithin(byMonth map[string][]domain.Record, window domain.TimeWindow) []string {
	months := make([]string, 0, len(byMonth))
	for month := range byMonth {
		if month >= window.Start && month <= window.End {
			months = append(months, month)
		}
	}
	sort.Strings(months)
	return months
}

func monthLabel(canonical string) string {
	year, month, ok := period.Parse(canonical)
	if !ok {
		return canonical
	}
	return time.Date(year, time.Month(month), 1, 0, 0, 0, 0, time.UTC).Format("Jan 2006")
}
