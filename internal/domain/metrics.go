// internal/domain/metrics.go
package domain

// DerivedMetrics is the reduction of a record set. Every field is computed on
// demand and is always a finite number, even for empty input.
type DerivedMetrics struct {
	TotalRevenue  float64 `json:"total_revenue"`
	TotalCosts    float64 `json:"total_costs"`
	Profit        float64 `json:"profit"`
	ProfitMargin  float64 `json:"profit_margin"` // percent of revenue, 0 when revenue is 0
	TotalOrders   int     `json:"total_orders"`
	AvgOrderValue float64 `json:"avg_order_value"`
	AvgCPA        float64 `json:"avg_cpa"`      // ad spend only, not total costs
	AdjustedCPA   float64 `json:"adjusted_cpa"` // mean over strictly-positive per-record observations
}

// IsProfitable reports strict profitability; zero profit is break-even.
func (m DerivedMetrics) IsProfitable() bool {
	return m.Profit > 0
}

// ProfitDecline describes a product's drop versus the preceding window.
type ProfitDecline struct {
	PreviousProfit    float64 `json:"previous_period_profit"`
	Decline           float64 `json:"profit_decline"`
	DeclinePercentage float64 `json:"profit_decline_percentage"`
}

// ProductMetrics is the per-product rollup for a window. Decline is set only
// when the rollup was computed against a prior window.
type ProductMetrics struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Category string `json:"category"`
	Brand    string `json:"brand"`
	DerivedMetrics
	Decline *ProfitDecline `json:"decline,omitempty"`
}

// PerformanceDistribution partitions the product set by outcome. The four
// buckets are disjoint and cover every product, so
// Total == Profitable + Unprofitable + Breakeven + Inactive.
type PerformanceDistribution struct {
	Profitable   int `json:"profitable"`   // profit > 0
	Unprofitable int `json:"unprofitable"` // profit < 0
	Breakeven    int `json:"breakeven"`    // profit == 0 with revenue
	Inactive     int `json:"inactive"`     // no revenue, no profit
	Total        int `json:"total"`
}

// SeriesPoint is one charted month. Comparison is nil when the aligned
// comparison month has no data or no comparison was requested.
type SeriesPoint struct {
	Month string `json:"month"` // canonical "YYYY-MM"
	Label string `json:"label"` // e.g. "Mar 2025"
	DerivedMetrics
	ComparisonMonth string          `json:"comparison_month,omitempty"`
	Comparison      *DerivedMetrics `json:"comparison,omitempty"`
}
