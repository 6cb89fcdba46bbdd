// internal/service/analytics_service.go
package service

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/perfdash/backend-go/internal/dataset"
	"github.com/perfdash/backend-go/internal/dates"
	"github.com/perfdash/backend-go/internal/domain"
	"github.com/perfdash/backend-go/internal/metrics"
	"github.com/perfdash/backend-go/internal/period"
	"github.com/perfdash/backend-go/internal/portfolio"
	"github.com/perfdash/backend-go/internal/series"
)

// AnalyticsService is the query facade over the in-memory dataset. Every
// query is a pure function of the current snapshot; the only mutation is the
// wholesale dataset replacement, which also invalidates the year-inference
// memo.
type AnalyticsService struct {
	store    *dataset.Store
	resolver *dates.Resolver
	analyzer *portfolio.Analyzer
	builder  *series.Builder
}

func NewAnalyticsService(store *dataset.Store, resolver *dates.Resolver, analyzer *portfolio.Analyzer, builder *series.Builder) *AnalyticsService {
	return &AnalyticsService{
		store:    store,
		resolver: resolver,
		analyzer: analyzer,
		builder:  builder,
	}
}

// DatasetInfo describes the current dataset and its inferred calendar range.
type DatasetInfo struct {
	Records    int               `json:"records"`
	Hash       string            `json:"hash"`
	Range      domain.TimeWindow `json:"range"`
	Confidence dates.Confidence  `json:"confidence"`
	Warning    string            `json:"warning,omitempty"`
}

// Summary bundles the primary window's metrics with the comparison window's,
// when one applies.
type Summary struct {
	Window           domain.TimeWindow      `json:"window"`
	Metrics          domain.DerivedMetrics  `json:"metrics"`
	ComparisonWindow *domain.TimeWindow     `json:"comparison_window,omitempty"`
	Comparison       *domain.DerivedMetrics `json:"comparison,omitempty"`
}

// ReplaceDataset swaps in a new record collection and invalidates the
// analysis memo. An empty collection clears the dataset; the invalidation
// still runs.
func (s *AnalyticsService) ReplaceDataset(ctx context.Context, records []domain.Record) DatasetInfo {
	hash := s.store.Replace(records)
	s.resolver.Invalidate(ctx)
	log.Info().Int("records", len(records)).Str("hash", hash).Msg("dataset replaced")
	return s.DatasetInfo(ctx)
}

// ClearDataset removes every record and resets the analysis memo.
func (s *AnalyticsService) ClearDataset(ctx context.Context) {
	s.store.Replace(nil)
	s.resolver.Invalidate(ctx)
	log.Info().Msg("dataset cleared")
}

func (s *AnalyticsService) DatasetInfo(ctx context.Context) DatasetInfo {
	records := s.store.Records()
	analysis := s.resolver.Analyze(ctx, records)
	return DatasetInfo{
		Records:    len(records),
		Hash:       s.store.Hash(),
		Range:      s.resolver.DetectedRange(ctx, records),
		Confidence: analysis.Confidence,
		Warning:    analysis.Warning,
	}
}

// ResolveWindow fills an absent or half-open window from the detected range.
func (s *AnalyticsService) ResolveWindow(ctx context.Context, window domain.TimeWindow) domain.TimeWindow {
	if window.Start != "" && window.End != "" {
		return window
	}
	detected := s.resolver.DetectedRange(ctx, s.store.Records())
	if window.Start == "" {
		window.Start = detected.Start
	}
	if window.End == "" {
		window.End = detected.End
	}
	return window
}

// ComparisonWindow exposes the period calculator over the service boundary.
func (s *AnalyticsService) ComparisonWindow(window domain.TimeWindow, cfg domain.ComparisonConfig) (domain.TimeWindow, bool) {
	return period.ComparisonWindow(window, cfg)
}

func (s *AnalyticsService) Summary(ctx context.Context, window domain.TimeWindow, cfg domain.ComparisonConfig) Summary {
	records := s.store.Records()
	window = s.ResolveWindow(ctx, window)

	summary := Summary{
		Window:  window,
		Metrics: s.aggregateWindow(ctx, records, window),
	}

	if comparisonWindow, ok := period.ComparisonWindow(window, cfg); ok {
		comparison := s.aggregateWindow(ctx, records, comparisonWindow)
		summary.ComparisonWindow = &comparisonWindow
		summary.Comparison = &comparison
	}

	return summary
}

// Products returns per-product rollups; when a comparison applies, rows carry
// their profit movement against the comparison window.
func (s *AnalyticsService) Products(ctx context.Context, window domain.TimeWindow, cfg domain.ComparisonConfig) []domain.ProductMetrics {
	records := s.store.Records()
	window = s.ResolveWindow(ctx, window)

	if comparisonWindow, ok := period.ComparisonWindow(window, cfg); ok {
		return s.analyzer.ComparedProductMetrics(ctx, records, window, comparisonWindow)
	}
	return s.analyzer.ProductMetrics(ctx, records, window)
}

func (s *AnalyticsService) TopByRevenue(ctx context.Context, window domain.TimeWindow, limit int) []domain.ProductMetrics {
	window = s.ResolveWindow(ctx, window)
	return s.analyzer.TopByRevenue(ctx, s.store.Records(), window, limit)
}

func (s *AnalyticsService) TopByProfit(ctx context.Context, window domain.TimeWindow, limit int) []domain.ProductMetrics {
	window = s.ResolveWindow(ctx, window)
	return s.analyzer.TopByProfit(ctx, s.store.Records(), window, limit)
}

func (s *AnalyticsService) BottomPerformers(ctx context.Context, window domain.TimeWindow, limit int) []domain.ProductMetrics {
	window = s.ResolveWindow(ctx, window)
	return s.analyzer.BottomPerformers(ctx, s.store.Records(), window, limit)
}

func (s *AnalyticsService) DeclinedProducts(ctx context.Context, window domain.TimeWindow, limit int) []domain.ProductMetrics {
	window = s.ResolveWindow(ctx, window)
	return s.analyzer.DeclinedProducts(ctx, s.store.Records(), window, limit)
}

func (s *AnalyticsService) Distribution(ctx context.Context, window domain.TimeWindow) domain.PerformanceDistribution {
	window = s.ResolveWindow(ctx, window)
	return s.analyzer.PerformanceDistribution(ctx, s.store.Records(), window)
}

func (s *AnalyticsService) Concentration(ctx context.Context, window domain.TimeWindow) float64 {
	window = s.ResolveWindow(ctx, window)
	return s.analyzer.RevenueConcentration(ctx, s.store.Records(), window)
}

func (s *AnalyticsService) Series(ctx context.Context, window domain.TimeWindow, cfg domain.ComparisonConfig, productID string) []domain.SeriesPoint {
	window = s.ResolveWindow(ctx, window)
	return s.builder.Build(ctx, s.store.Records(), window, cfg, productID)
}

func (s *AnalyticsService) aggregateWindow(ctx context.Context, records []domain.Record, window domain.TimeWindow) domain.DerivedMetrics {
	filtered := s.analyzer.FilterWindow(ctx, records, window)
	return metrics.Aggregate(filtered)
}
