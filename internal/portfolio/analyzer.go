// internal/portfolio/analyzer.go

// Package portfolio rolls record collections up to per-product and
// portfolio-wide views: rankings, concentration, outcome distribution and
// decline detection.
package portfolio

import (
	"context"
	"sort"
	"strings"

	"github.com/perfdash/backend-go/internal/config"
	"github.com/perfdash/backend-go/internal/dates"
	"github.com/perfdash/backend-go/internal/domain"
	"github.com/perfdash/backend-go/internal/metrics"
	"github.com/perfdash/backend-go/internal/period"
)

// Thresholds are the analyzer's heuristic knobs.
type Thresholds struct {
	// DeclineMinPreviousProfit: products below this previous-period profit
	// are too small to flag.
	DeclineMinPreviousProfit float64
	// DeclineMinOrders: minimum current-period order count for a decline to
	// be meaningful rather than noise.
	DeclineMinOrders int
	// DeclineMinRatio: relative profit drop that must be exceeded.
	DeclineMinRatio float64
	// ConcentrationTopN: how many top-revenue products make up the
	// concentration share.
	ConcentrationTopN int
	// ExcludedCategories: case-insensitive substrings; matching categories
	// are skipped by decline analysis entirely.
	ExcludedCategories []string
}

func DefaultThresholds() Thresholds {
	return Thresholds{
		DeclineMinPreviousProfit: 500,
		DeclineMinOrders:         5,
		DeclineMinRatio:          0.20,
		ConcentrationTopN:        5,
		ExcludedCategories:       []string{"package", "bundle", "kit"},
	}
}

// ThresholdsFromConfig maps the env-driven analytics section onto thresholds,
// falling back to defaults for unset values.
func ThresholdsFromConfig(cfg config.AnalyticsConfig) Thresholds {
	t := DefaultThresholds()
	if cfg.DeclineMinPreviousProfit > 0 {
		t.DeclineMinPreviousProfit = cfg.DeclineMinPreviousProfit
	}
	if cfg.DeclineMinOrders > 0 {
		t.DeclineMinOrders = cfg.DeclineMinOrders
	}
	if cfg.DeclineMinRatio > 0 {
		t.DeclineMinRatio = cfg.DeclineMinRatio
	}
	if cfg.ConcentrationTopN > 0 {
		t.ConcentrationTopN = cfg.ConcentrationTopN
	}
	if len(cfg.ExcludedCategories) > 0 {
		t.ExcludedCategories = cfg.ExcludedCategories
	}
	return t
}

type Analyzer struct {
	resolver   *dates.Resolver
	thresholds Thresholds
}

func NewAnalyzer(resolver *dates.Resolver, thresholds Thresholds) *Analyzer {
	return &Analyzer{resolver: resolver, thresholds: thresholds}
}

// FilterWindow returns the records whose normalized month falls inside the
// window. Records with unparseable months never match.
func (a *Analyzer) FilterWindow(ctx context.Context, records []domain.Record, window domain.TimeWindow) []domain.Record {
	filtered := make([]domain.Record, 0, len(records))
	for _, r := range records {
		if a.resolver.IsInRange(ctx, r.Month, window.Start, window.End, records) {
			filtered = append(filtered, r)
		}
	}
	return filtered
}

// ProductMetrics aggregates the window per product. Every distinct product id
// in the dataset gets a row, in first-seen dataset order; products with no
// activity in the window appear with all-zero metrics.
func (a *Analyzer) ProductMetrics(ctx context.Context, records []domain.Record, window domain.TimeWindow) []domain.ProductMetrics {
	byProduct := a.groupByProduct(ctx, records, window)

	result := make([]domain.ProductMetrics, 0, len(byProduct.order))
	for _, id := range byProduct.order {
		info := byProduct.info[id]
		result = append(result, domain.ProductMetrics{
			ID:             id,
			Name:           info.name,
			Category:       info.category,
			Brand:          info.brand,
			DerivedMetrics: metrics.Aggregate(byProduct.windowed[id]),
		})
	}
	return result
}

// ComparedProductMetrics aggregates the primary window per product and
// annotates each row with its profit movement versus the comparison window.
func (a *Analyzer) ComparedProductMetrics(ctx context.Context, records []domain.Record, window, previous domain.TimeWindow) []domain.ProductMetrics {
	current := a.ProductMetrics(ctx, records, window)
	previousByID := make(map[string]domain.DerivedMetrics, len(current))
	for _, p := range a.ProductMetrics(ctx, records, previous) {
		previousByID[p.ID] = p.DerivedMetrics
	}

	for i := range current {
		prev, ok := previousByID[current[i].ID]
		if !ok {
			continue
		}
		decline := &domain.ProfitDecline{
			PreviousProfit: prev.Profit,
			Decline:        prev.Profit - current[i].Profit,
		}
		if prev.Profit != 0 {
			decline.DeclinePercentage = decline.Decline / prev.Profit * 100
		}
		current[i].Decline = decline
	}
	return current
}

// TopByRevenue ranks products by revenue descending and takes limit.
func (a *Analyzer) TopByRevenue(ctx context.Context, records []domain.Record, window domain.TimeWindow, limit int) []domain.ProductMetrics {
	products := a.ProductMetrics(ctx, records, window)
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].TotalRevenue > products[j].TotalRevenue
	})
	return truncate(products, limit)
}

// TopByProfit ranks active products (revenue > 0) by signed profit
// descending and takes limit.
func (a *Analyzer) TopByProfit(ctx context.Context, records []domain.Record, window domain.TimeWindow, limit int) []domain.ProductMetrics {
	products := withRevenue(a.ProductMetrics(ctx, records, window))
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].Profit > products[j].Profit
	})
	return truncate(products, limit)
}

// BottomPerformers ranks active products by profit margin ascending and
// takes limit.
func (a *Analyzer) BottomPerformers(ctx context.Context, records []domain.Record, window domain.TimeWindow, limit int) []domain.ProductMetrics {
	products := withRevenue(a.ProductMetrics(ctx, records, window))
	sort.SliceStable(products, func(i, j int) bool {
		return products[i].ProfitMargin < products[j].ProfitMargin
	})
	return truncate(products, limit)
}

// RevenueConcentration returns the share of total window revenue held by the
// top N products by revenue, as a percentage. 0 when there is no revenue.
func (a *Analyzer) RevenueConcentration(ctx context.Context, records []domain.Record, window domain.TimeWindow) float64 {
	products := a.ProductMetrics(ctx, records, window)

	var total float64
	for _, p := range products {
		total += p.TotalRevenue
	}
	if total <= 0 {
		return 0
	}

	sort.SliceStable(products, func(i, j int) bool {
		return products[i].TotalRevenue > products[j].TotalRevenue
	})

	topN := a.thresholds.ConcentrationTopN
	if topN > len(products) {
		topN = len(products)
	}

	var top float64
	for _, p := range products[:topN] {
		top += p.TotalRevenue
	}
	return top / total * 100
}

// DeclinedProducts flags products whose profit dropped sharply versus the
// immediately preceding window of equal length. A product qualifies when all
// of: previous profit exceeds the minimum, current orders meet the minimum,
// profit actually fell, and the relative drop exceeds the ratio threshold.
// Bundle-like categories are excluded entirely. Results are sorted by
// absolute profit decline descending, then truncated to limit.
func (a *Analyzer) DeclinedProducts(ctx context.Context, records []domain.Record, window domain.TimeWindow, limit int) []domain.ProductMetrics {
	previous, ok := period.ComparisonWindow(window, domain.ComparisonConfig{Mode: domain.ComparePrecedingPeriod})
	if !ok {
		return []domain.ProductMetrics{}
	}

	compared := a.ComparedProductMetrics(ctx, records, window, previous)

	declined := make([]domain.ProductMetrics, 0)
	for _, p := range compared {
		if a.categoryExcluded(p.Category) {
			continue
		}
		if p.Decline == nil {
			continue
		}
		prev := p.Decline.PreviousProfit
		if prev <= a.thresholds.DeclineMinPreviousProfit {
			continue
		}
		if p.TotalOrders < a.thresholds.DeclineMinOrders {
			continue
		}
		if p.Profit >= prev {
			continue
		}
		if (prev-p.Profit)/prev <= a.thresholds.DeclineMinRatio {
			continue
		}
		declined = append(declined, p)
	}

	sort.SliceStable(declined, func(i, j int) bool {
		return declined[i].Decline.Decline > declined[j].Decline.Decline
	})
	return truncate(declined, limit)
}

// PerformanceDistribution partitions the window's product rollups into
// profitable / unprofitable / breakeven / inactive buckets. The buckets are
// disjoint and exhaustive, so they always sum to Total.
func (a *Analyzer) PerformanceDistribution(ctx context.Context, records []domain.Record, window domain.TimeWindow) domain.PerformanceDistribution {
	products := a.ProductMetrics(ctx, records, window)

	dist := domain.PerformanceDistribution{Total: len(products)}
	for _, p := range products {
		switch {
		case p.IsProfitable():
			dist.Profitable++
		case p.Profit < 0:
			dist.Unprofitable++
		case p.TotalRevenue > 0:
			dist.Breakeven++
		default:
			dist.Inactive++
		}
	}
	return dist
}

func (a *Analyzer) categoryExcluded(category string) bool {
	lower := strings.ToLower(category)
	for _, keyword := range a.thresholds.ExcludedCategories {
		if strings.Contains(lower, strings.ToLower(keyword)) {
			return true
		}
	}
	return false
}

type productInfo struct {
	name     string
	category string
	brand    string
}

type grouped struct {
	order    []string
	info     map[string]productInfo
	windowed map[string][]domain.Record
}

// groupByProduct indexes the dataset by product id, keeping first-seen order
// and the window-filtered records per product.
func (a *Analyzer) groupByProduct(ctx context.Context, records []domain.Record, window domain.TimeWindow) grouped {
	g := grouped{
		info:     make(map[string]productInfo),
		windowed: make(map[string][]domain.Record),
	}
	for _, r := range records {
		if _, seen := g.info[r.ID]; !seen {
			g.order = append(g.order, r.ID)
			g.info[r.ID] = productInfo{name: r.Name, category: r.Category, brand: r.Brand}
		}
		if a.resolver.IsInRange(ctx, r.Month, window.Start, window.End, records) {
			g.windowed[r.ID] = append(g.windowed[r.ID], r)
		}
	}
	return g
}

func withRevenue(products []domain.ProductMetrics) []domain.ProductMetrics {
	active := make([]domain.ProductMetrics, 0, len(products))
	for _, p := range products {
		if p.TotalRevenue > 0 {
			active = append(active, p)
		}
	}
	return active
}

func truncate(products []domain.ProductMetrics, limit int) []domain.ProductMetrics {
	if limit > 0 && len(products) > limit {
		return products[:limit]
	}
	return products
}
