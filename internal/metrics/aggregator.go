// internal/metrics/aggregator.go

// Package metrics reduces record collections into derived business metrics.
// Every function here is pure and total: any record set, including an empty
// one, reduces to well-defined finite numbers.
package metrics

import (
	"github.com/perfdash/backend-go/internal/domain"
)

// Aggregate reduces a record collection into derived metrics.
//
// Ratio fields guard their denominators: margin is 0 (not NaN) when revenue
// is 0, and the per-order averages are 0 when there are no orders. AvgCPA
// divides ad spend only, never total costs. AdjustedCPA averages the
// per-record upstream observations, counting only records where the
// observation is strictly positive; zero/absent observations are excluded
// from both numerator and denominator.
func Aggregate(records []domain.Record) domain.DerivedMetrics {
	var m domain.DerivedMetrics
	var totalAdSpend float64
	var adjustedSum float64
	var adjustedCount int

	for _, r := range records {
		m.TotalRevenue += r.Revenue
		m.TotalCosts += r.AdSpend + r.NonAdCosts + r.ThirdPartyCosts
		m.TotalOrders += r.Orders
		totalAdSpend += r.AdSpend

		if r.CPA > 0 {
			adjustedSum += r.CPA
			adjustedCount++
		}
	}

	m.Profit = m.TotalRevenue - m.TotalCosts

	if m.TotalRevenue > 0 {
		m.ProfitMargin = m.Profit / m.TotalRevenue * 100
	}
	if m.TotalOrders > 0 {
		m.AvgOrderValue = m.TotalRevenue / float64(m.TotalOrders)
		m.AvgCPA = totalAdSpend / float64(m.TotalOrders)
	}
	if adjustedCount > 0 {
		m.AdjustedCPA = adjustedSum / float64(adjustedCount)
	}

	return m
}
