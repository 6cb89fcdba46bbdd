package metrics

import (
	"math"
	"testing"

	"github.com/perfdash/backend-go/internal/domain"
)

func TestAggregate_Totals(t *testing.T) {
	records := []domain.Record{
		{ID: "P1", Month: "2025-03", Revenue: 1000, AdSpend: 200, NonAdCosts: 50, ThirdPartyCosts: 30, Orders: 10},
		{ID: "P2", Month: "2025-03", Revenue: 500, AdSpend: 100, NonAdCosts: 20, Orders: 5},
	}

	m := Aggregate(records)

	if m.TotalRevenue != 1500 {
		t.Errorf("revenue: got %v, want 1500", m.TotalRevenue)
	}
	if m.TotalCosts != 400 {
		t.Errorf("costs: got %v, want 400", m.TotalCosts)
	}
	if m.Profit != 1100 {
		t.Errorf("profit: got %v, want 1100", m.Profit)
	}
	if m.TotalOrders != 15 {
		t.Errorf("orders: got %d, want 15", m.TotalOrders)
	}
	if m.AvgOrderValue != 100 {
		t.Errorf("avg order value: got %v, want 100", m.AvgOrderValue)
	}
}

func TestAggregate_AvgCPADividesAdSpendOnly(t *testing.T) {
	records := []domain.Record{
		{ID: "P1", Month: "3", Revenue: 1000, AdSpend: 200, NonAdCosts: 500, Orders: 10},
	}

	m := Aggregate(records)

	// 200 / 10, not (200 + 500) / 10.
	if m.AvgCPA != 20 {
		t.Fatalf("avg cpa: got %v, want 20", m.AvgCPA)
	}
}

func TestAggregate_AdjustedCPAExcludesNonPositive(t *testing.T) {
	records := []domain.Record{
		{ID: "P1", Month: "2025-03", CPA: 30},
		{ID: "P2", Month: "2025-03", CPA: 0},
		{ID: "P3", Month: "2025-03", CPA: 10},
	}

	m := Aggregate(records)

	if m.AdjustedCPA != 20 {
		t.Fatalf("adjusted cpa: got %v, want mean of the positive observations", m.AdjustedCPA)
	}
}

func TestAggregate_ZeroRevenueMargin(t *testing.T) {
	records := []domain.Record{
		{ID: "P1", Month: "2025-03", AdSpend: 100, Orders: 0},
	}

	m := Aggregate(records)

	if m.ProfitMargin != 0 {
		t.Errorf("margin: got %v, want 0 when revenue is 0", m.ProfitMargin)
	}
	if m.Profit != -100 {
		t.Errorf("profit: got %v, want -100", m.Profit)
	}
}

func TestAggregate_Empty(t *testing.T) {
	m := Aggregate(nil)

	if m != (domain.DerivedMetrics{}) {
		t.Fatalf("empty input should reduce to zero metrics, got %+v", m)
	}
}

func TestAggregate_Finite(t *testing.T) {
	inputs := [][]domain.Record{
		nil,
		{{ID: "P1", Month: "2025-01"}},
		{{ID: "P1", Month: "2025-01", Revenue: 0, Orders: 0, AdSpend: 50}},
		{{ID: "P1", Month: "2025-01", Revenue: 100, Orders: 3, CPA: 12.5}},
	}

	for i, records := range inputs {
		m := Aggregate(records)
		for name, v := range map[string]float64{
			"margin":       m.ProfitMargin,
			"avg_order":    m.AvgOrderValue,
			"avg_cpa":      m.AvgCPA,
			"adjusted_cpa": m.AdjustedCPA,
		} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Errorf("input %d: %s is not finite: %v", i, name, v)
			}
		}
	}
}
