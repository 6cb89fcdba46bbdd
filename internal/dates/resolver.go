// internal/dates/resolver.go
package dates

import (
	"context"
	"regexp"
	"sort"
	"strconv"
	"time"

	"github.com/perfdash/backend-go/internal/domain"
	"github.com/perfdash/backend-go/internal/period"
	"github.com/rs/zerolog/log"
)

// Confidence grades the year-inference result.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
)

// Beyond this many distinct bare months the two-year anchoring assumption
// gets shaky and confidence drops to medium.
const wideSpanThreshold = 6

// Analysis is the dataset-wide year-inference result: for every distinct bare
// numeric month observed in the dataset, the calendar year it resolves to.
type Analysis struct {
	YearByMonth map[int]int `json:"year_by_month"`
	Confidence  Confidence  `json:"confidence"`
	Warning     string      `json:"warning,omitempty"`
}

var (
	canonicalPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)
	bareMonthPattern = regexp.MustCompile(`^\d{1,2}$`)
)

// Resolver turns raw month labels into canonical "YYYY-MM" strings,
// consistently for a given dataset. Year inference is anchored to "now":
// a bare month later than the current calendar month is assumed to belong to
// the previous year. Re-analyzing the same dataset on a different calendar
// date can therefore resolve bare months to different years; that is the
// contract, and the anchor is injectable so tests can pin it.
type Resolver struct {
	cache Cache
	now   func() time.Time
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithNow pins the wall-clock anchor used by year inference.
func WithNow(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

func NewResolver(cache Cache, opts ...Option) *Resolver {
	if cache == nil {
		cache = NewNoopCache()
	}
	r := &Resolver{
		cache: cache,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Analyze runs year inference over the whole dataset, memoized by the
// dataset's content hash. Cache failures degrade to recomputation.
func (r *Resolver) Analyze(ctx context.Context, records []domain.Record) Analysis {
	key := DatasetHash(records)

	if analysis, ok, err := r.cache.Get(ctx, key); err == nil && ok {
		return analysis
	} else if err != nil {
		log.Warn().Err(err).Msg("dates: analysis cache get failed")
	}

	analysis := r.analyze(records)

	if err := r.cache.Set(ctx, key, analysis); err != nil {
		log.Warn().Err(err).Msg("dates: analysis cache set failed")
	}

	return analysis
}

func (r *Resolver) analyze(records []domain.Record) Analysis {
	now := r.now()
	currentYear := now.Year()
	currentMonth := int(now.Month())

	yearByMonth := make(map[int]int)
	for _, rec := range records {
		m, ok := bareMonth(rec.Month)
		if !ok {
			continue
		}
		if m > currentMonth {
			yearByMonth[m] = currentYear - 1
		} else {
			yearByMonth[m] = currentYear
		}
	}

	analysis := Analysis{
		YearByMonth: yearByMonth,
		Confidence:  ConfidenceHigh,
	}
	if len(yearByMonth) > wideSpanThreshold {
		analysis.Confidence = ConfidenceMedium
		analysis.Warning = "dataset spans many bare months; inferred years may be unreliable"
		log.Warn().Int("bare_months", len(yearByMonth)).Msg("dates: wide bare-month span, year inference downgraded to medium confidence")
	}
	return analysis
}

// Normalize maps a raw month label to canonical "YYYY-MM" form. Canonical
// input passes through, bare numeric months get a year from the dataset-wide
// inference, and anything else is returned unchanged so it silently fails
// every later range check.
func (r *Resolver) Normalize(ctx context.Context, month string, records []domain.Record) string {
	if canonicalPattern.MatchString(month) {
		return month
	}

	m, ok := bareMonth(month)
	if !ok {
		return month
	}

	analysis := r.Analyze(ctx, records)
	if year, found := analysis.YearByMonth[m]; found {
		return period.Format(year, m)
	}

	// Single-record or pathological input: fall back to anchoring directly.
	now := r.now()
	year := now.Year()
	if m > int(now.Month()) {
		year--
	}
	return period.Format(year, m)
}

// DetectedRange normalizes every distinct month in the dataset and returns
// the lexical min/max as an inclusive window. An empty dataset yields the
// stable placeholder window 2000-01 .. 2099-12.
func (r *Resolver) DetectedRange(ctx context.Context, records []domain.Record) domain.TimeWindow {
	seen := make(map[string]struct{})
	var months []string
	for _, rec := range records {
		normalized := r.Normalize(ctx, rec.Month, records)
		if _, dup := seen[normalized]; dup {
			continue
		}
		seen[normalized] = struct{}{}
		months = append(months, normalized)
	}

	if len(months) == 0 {
		return domain.TimeWindow{Start: "2000-01", End: "2099-12"}
	}

	sort.Strings(months)
	return domain.TimeWindow{Start: months[0], End: months[len(months)-1]}
}

// IsInRange reports whether a raw month falls inside [start, end]. The
// canonical form is zero-padded, so lexical comparison matches chronology.
func (r *Resolver) IsInRange(ctx context.Context, month, start, end string, records []domain.Record) bool {
	normalized := r.Normalize(ctx, month, records)
	return normalized >= start && normalized <= end
}

// Invalidate drops every memoized analysis. Called when the dataset is
// replaced, including replacement by an empty collection.
func (r *Resolver) Invalidate(ctx context.Context) {
	if err := r.cache.Invalidate(ctx); err != nil {
		log.Warn().Err(err).Msg("dates: analysis cache invalidation failed")
	}
}

func bareMonth(s string) (int, bool) {
	if !bareMonthPattern.MatchString(s) {
		return 0, false
	}
	m, err := strconv.Atoi(s)
	if err != nil || m < 1 || m > 12 {
		return 0, false
	}
	return m, true
}
