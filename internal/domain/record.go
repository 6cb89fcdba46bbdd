// internal/domain/record.go
package domain

// Record is one row of uploaded product-performance data. A record covers one
// product in one month; the same product id appears once per month it has data
// for. The whole collection is replaced wholesale on re-upload, never patched.
type Record struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Category        string  `json:"category"`
	Brand           string  `json:"brand"`
	Month           string  `json:"month"` // canonical "YYYY-MM" or bare "1".."12"
	Revenue         float64 `json:"revenue"`
	AdSpend         float64 `json:"ad_spend"`
	NonAdCosts      float64 `json:"non_ad_costs"`
	ThirdPartyCosts float64 `json:"third_party_costs"`
	Orders          int     `json:"orders"`
	CPA             float64 `json:"cpa"` // adjusted CPA computed upstream, 0 when absent
	AverageSale     float64 `json:"average_sale"`
}

// TimeWindow is an inclusive month range. Start and End are canonical
// "YYYY-MM" strings; a window with Start > End matches nothing.
type TimeWindow struct {
	Start string `json:"start"`
	End   string `json:"end"`
}

// ComparisonMode selects how the comparison window is derived from the
// primary window.
type ComparisonMode string

const (
	CompareNone            ComparisonMode = "none"
	ComparePreviousYear    ComparisonMode = "previous_year"
	ComparePrecedingPeriod ComparisonMode = "preceding_period"
	CompareCustomRange     ComparisonMode = "custom"
)

// Alignment tags how series points pair with comparison points.
type Alignment string

const (
	// AlignCalendarYear pairs a point with the month exactly twelve months
	// earlier; missing months yield absent comparison values.
	AlignCalendarYear Alignment = "calendar_year"
	// AlignIndex pairs point N of the primary series with point N of the
	// comparison series. Unequal windows pair partially.
	AlignIndex Alignment = "index"
	AlignNone  Alignment = "none"
)

// ComparisonConfig carries the mode plus the explicit window for custom mode.
type ComparisonConfig struct {
	Mode   ComparisonMode `json:"mode"`
	Custom *TimeWindow    `json:"custom,omitempty"`
}

// Alignment returns the series-pairing strategy implied by the mode.
func (c ComparisonConfig) Alignment() Alignment {
	switch c.Mode {
	case ComparePreviousYear:
		return AlignCalendarYear
	case ComparePrecedingPeriod, CompareCustomRange:
		return AlignIndex
	default:
		return AlignNone
	}
}
