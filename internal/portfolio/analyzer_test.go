package portfolio

import (
	"context"
	"testing"
	"time"

	"github.com/perfdash/backend-go/internal/dates"
	"github.com/perfdash/backend-go/internal/domain"
)

func testAnalyzer() *Analyzer {
	resolver := dates.NewResolver(dates.NewMemoryCache(), dates.WithNow(func() time.Time {
		return time.Date(2025, time.June, 15, 0, 0, 0, 0, time.UTC)
	}))
	return NewAnalyzer(resolver, DefaultThresholds())
}

func q1Window() domain.TimeWindow {
	return domain.TimeWindow{Start: "2025-01", End: "2025-03"}
}

func TestFilterWindow(t *testing.T) {
	a := testAnalyzer()
	records := []domain.Record{
		{ID: "P1", Month: "2025-01", Revenue: 100},
		{ID: "P1", Month: "2025-04", Revenue: 200},
		{ID: "P2", Month: "garbage", Revenue: 300},
	}

	filtered := a.FilterWindow(context.Background(), records, q1Window())
	if len(filtered) != 1 {
		t.Fatalf("got %d records, want 1", len(filtered))
	}
	if filtered[0].Month != "2025-01" {
		t.Fatalf("got month %q, want 2025-01", filtered[0].Month)
	}
}

func TestProductMetrics_IncludesInactiveProducts(t *testing.T) {
	a := testAnalyzer()
	records := []domain.Record{
		{ID: "P1", Name: "Alpha", Month: "2025-02", Revenue: 100, Orders: 2},
		{ID: "P2", Name: "Beta", Month: "2025-05", Revenue: 400, Orders: 4},
	}

	products := a.ProductMetrics(context.Background(), records, q1Window())
	if len(products) != 2 {
		t.Fatalf("got %d products, want every dataset product", len(products))
	}
	if products[0].ID != "P1" || products[1].ID != "P2" {
		t.Fatalf("expected first-seen order P1, P2; got %s, %s", products[0].ID, products[1].ID)
	}
	if products[1].TotalRevenue != 0 {
		t.Fatalf("P2 has no activity in the window, got revenue %v", products[1].TotalRevenue)
	}
}

func TestTopByRevenueAndProfit(t *testing.T) {
	a := testAnalyzer()
	records := []domain.Record{
		{ID: "P1", Month: "2025-01", Revenue: 100, AdSpend: 90},
		{ID: "P2", Month: "2025-01", Revenue: 500, AdSpend: 100},
		{ID: "P3", Month: "2025-01", Revenue: 300, AdSpend: 10},
		{ID: "P4", Month: "2025-01"},
	}

	byRevenue := a.TopByRevenue(context.Background(), records, q1Window(), 2)
	if len(byRevenue) != 2 || byRevenue[0].ID != "P2" || byRevenue[1].ID != "P3" {
		t.Fatalf("top by revenue: got %+v", ids(byRevenue))
	}

	byProfit := a.TopByProfit(context.Background(), records, q1Window(), 0)
	if len(byProfit) != 3 {
		t.Fatalf("profit ranking should exclude zero-revenue products, got %v", ids(byProfit))
	}
	if byProfit[0].ID != "P2" {
		t.Fatalf("top by profit: got %s, want P2", byProfit[0].ID)
	}
}

func TestBottomPerformers(t *testing.T) {
	a := testAnalyzer()
	records := []domain.Record{
		{ID: "P1", Month: "2025-01", Revenue: 100, AdSpend: 150},
		{ID: "P2", Month: "2025-01", Revenue: 100, AdSpend: 10},
		{ID: "P3", Month: "2025-01"},
	}

	bottom := a.BottomPerformers(context.Background(), records, q1Window(), 1)
	if len(bottom) != 1 || bottom[0].ID != "P1" {
		t.Fatalf("got %v, want the worst-margin active product P1", ids(bottom))
	}
}

func TestRevenueConcentration(t *testing.T) {
	a := testAnalyzer()

	// Six products; the top five hold 900 of 1000 total.
	records := []domain.Record{
		{ID: "P1", Month: "2025-01", Revenue: 400},
		{ID: "P2", Month: "2025-01", Revenue: 200},
		{ID: "P3", Month: "2025-01", Revenue: 150},
		{ID: "P4", Month: "2025-01", Revenue: 100},
		{ID: "P5", Month: "2025-01", Revenue: 50},
		{ID: "P6", Month: "2025-01", Revenue: 100},
	}

	got := a.RevenueConcentration(context.Background(), records, q1Window())
	if got != 95 {
		t.Fatalf("got %v%%, want 95%%", got)
	}
}

func TestRevenueConcentration_NoRevenue(t *testing.T) {
	a := testAnalyzer()
	records := []domain.Record{{ID: "P1", Month: "2025-01"}}

	if got := a.RevenueConcentration(context.Background(), records, q1Window()); got != 0 {
		t.Fatalf("got %v%%, want 0 when there is no revenue", got)
	}
}

func TestPerformanceDistribution_BucketsSumToTotal(t *testing.T) {
	a := testAnalyzer()
	// One product per outcome: profitable, unprofitable, breakeven, inactive.
	records := []domain.Record{
		{ID: "P1", Month: "2025-01", Revenue: 100, AdSpend: 50},
		{ID: "P2", Month: "2025-01", Revenue: 100, AdSpend: 150},
		{ID: "P3", Month: "2025-01", Revenue: 100, AdSpend: 100},
		{ID: "P4", Month: "2025-01"},
	}

	dist := a.PerformanceDistribution(context.Background(), records, q1Window())

	if dist.Profitable != 1 || dist.Unprofitable != 1 || dist.Breakeven != 1 || dist.Inactive != 1 {
		t.Fatalf("got %+v, want one product per bucket", dist)
	}
	if sum := dist.Profitable + dist.Unprofitable + dist.Breakeven + dist.Inactive; sum != dist.Total {
		t.Fatalf("buckets sum to %d, total is %d", sum, dist.Total)
	}
}

func TestDeclinedProducts(t *testing.T) {
	a := testAnalyzer()

	// Window 2025-04..2025-06 compares against 2025-01..2025-03.
	window := domain.TimeWindow{Start: "2025-04", End: "2025-06"}
	records := []domain.Record{
		// P1: profit 600 -> 400, 6 orders. Drop of 33% over the thresholds.
		{ID: "P1", Month: "2025-02", Revenue: 700, AdSpend: 100, Orders: 8},
		{ID: "P1", Month: "2025-05", Revenue: 500, AdSpend: 100, Orders: 6},
		// P2: profit fell but previous profit is under the minimum.
		{ID: "P2", Month: "2025-02", Revenue: 500, AdSpend: 100, Orders: 8},
		{ID: "P2", Month: "2025-05", Revenue: 200, AdSpend: 100, Orders: 6},
		// P3: big drop but too few current orders.
		{ID: "P3", Month: "2025-02", Revenue: 900, AdSpend: 100, Orders: 8},
		{ID: "P3", Month: "2025-05", Revenue: 300, AdSpend: 100, Orders: 2},
		// P4: bundle category is excluded regardless of numbers.
		{ID: "P4", Category: "Starter Bundle", Month: "2025-02", Revenue: 900, AdSpend: 100, Orders: 8},
		{ID: "P4", Category: "Starter Bundle", Month: "2025-05", Revenue: 300, AdSpend: 100, Orders: 6},
		// P5: profit grew.
		{ID: "P5", Month: "2025-02", Revenue: 700, AdSpend: 100, Orders: 8},
		{ID: "P5", Month: "2025-05", Revenue: 900, AdSpend: 100, Orders: 9},
	}

	declined := a.DeclinedProducts(context.Background(), records, window, 10)
	if len(declined) != 1 {
		t.Fatalf("got %v, want only P1 flagged", ids(declined))
	}
	p := declined[0]
	if p.ID != "P1" {
		t.Fatalf("got %s, want P1", p.ID)
	}
	if p.Decline == nil {
		t.Fatal("flagged product must carry decline details")
	}
	if p.Decline.PreviousProfit != 600 || p.Decline.Decline != 200 {
		t.Fatalf("got decline %+v, want 600 -> 400", p.Decline)
	}
}

func TestDeclinedProducts_SortedByAbsoluteDecline(t *testing.T) {
	a := testAnalyzer()
	window := domain.TimeWindow{Start: "2025-04", End: "2025-06"}
	records := []domain.Record{
		{ID: "P1", Month: "2025-02", Revenue: 1100, AdSpend: 100, Orders: 8},
		{ID: "P1", Month: "2025-05", Revenue: 700, AdSpend: 100, Orders: 6},
		{ID: "P2", Month: "2025-02", Revenue: 2100, AdSpend: 100, Orders: 8},
		{ID: "P2", Month: "2025-05", Revenue: 700, AdSpend: 100, Orders: 6},
	}

	declined := a.DeclinedProducts(context.Background(), records, window, 10)
	if len(declined) != 2 {
		t.Fatalf("got %v, want both products flagged", ids(declined))
	}
	if declined[0].ID != "P2" {
		t.Fatalf("got %v, want the larger absolute decline first", ids(declined))
	}
}

func TestComparedProductMetrics_DeclinePercentage(t *testing.T) {
	a := testAnalyzer()
	window := domain.TimeWindow{Start: "2025-04", End: "2025-06"}
	previous := domain.TimeWindow{Start: "2025-01", End: "2025-03"}
	records := []domain.Record{
		{ID: "P1", Month: "2025-02", Revenue: 1000, AdSpend: 200},
		{ID: "P1", Month: "2025-05", Revenue: 700, AdSpend: 100},
	}

	compared := a.ComparedProductMetrics(context.Background(), records, window, previous)
	if len(compared) != 1 || compared[0].Decline == nil {
		t.Fatalf("got %+v, want one compared product", compared)
	}
	d := compared[0].Decline
	if d.PreviousProfit != 800 || d.Decline != 200 || d.DeclinePercentage != 25 {
		t.Fatalf("got %+v, want 800 -> 600 (25%%)", d)
	}
}

func ids(products []domain.ProductMetrics) []string {
	out := make([]string, 0, len(products))
	for _, p := range products {
		out = append(out, p.ID)
	}
	return out
}
