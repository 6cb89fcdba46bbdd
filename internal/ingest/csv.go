// internal/ingest/csv.go

// Package ingest parses uploaded product-performance CSVs into records. It is
// the defensive boundary: malformed numerics coerce to zero, rows without a
// product id are skipped, and the core downstream may assume clean shapes.
package ingest

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/perfdash/backend-go/internal/domain"
)

// Accepted header names per field, lowercase. Matching ignores case,
// surrounding space and the difference between "_", "-" and " ".
var columnAliases = map[string][]string{
	"id":                {"id", "product_id", "sku"},
	"name":              {"name", "product_name", "product"},
	"category":          {"category", "kategori"},
	"brand":             {"brand"},
	"month":             {"month", "period", "bulan"},
	"revenue":           {"revenue", "sales", "total_revenue"},
	"ad_spend":          {"ad_spend", "adspend", "ads", "ad_costs"},
	"non_ad_costs":      {"non_ad_costs", "other_costs", "operational_costs"},
	"third_party_costs": {"third_party_costs", "marketplace_fees", "platform_costs"},
	"orders":            {"orders", "order_count", "qty"},
	"cpa":               {"cpa", "adjusted_cpa"},
	"average_sale":      {"average_sale", "avg_sale", "aov"},
}

// ParseCSV reads one dataset file. The header row is required; only the id
// and month columns are mandatory, every other field defaults to its zero
// value when the column is absent or a cell fails to parse.
func ParseCSV(r io.Reader) ([]domain.Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	colMap := mapColumns(header)
	if _, ok := colMap["id"]; !ok {
		return nil, fmt.Errorf("CSV is missing an id column")
	}
	if _, ok := colMap["month"]; !ok {
		return nil, fmt.Errorf("CSV is missing a month column")
	}

	var records []domain.Record
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading record: %w", err)
		}

		id := strings.TrimSpace(cell(row, colMap, "id"))
		if id == "" {
			continue
		}

		records = append(records, domain.Record{
			ID:              id,
			Name:            strings.TrimSpace(cell(row, colMap, "name")),
			Category:        strings.TrimSpace(cell(row, colMap, "category")),
			Brand:           strings.TrimSpace(cell(row, colMap, "brand")),
			Month:           strings.TrimSpace(cell(row, colMap, "month")),
			Revenue:         parseFloat(cell(row, colMap, "revenue")),
			AdSpend:         parseFloat(cell(row, colMap, "ad_spend")),
			NonAdCosts:      parseFloat(cell(row, colMap, "non_ad_costs")),
			ThirdPartyCosts: parseFloat(cell(row, colMap, "third_party_costs")),
			Orders:          parseInt(cell(row, colMap, "orders")),
			CPA:             parseFloat(cell(row, colMap, "cpa")),
			AverageSale:     parseFloat(cell(row, colMap, "average_sale")),
		})
	}

	return records, nil
}

func mapColumns(header []string) map[string]int {
	colMap := make(map[string]int)
	for i, col := range header {
		normalized := normalizeHeader(col)
		for field, aliases := range columnAliases {
			if _, taken := colMap[field]; taken {
				continue
			}
			for _, alias := range aliases {
				if normalized == alias {
					colMap[field] = i
					break
				}
			}
		}
	}
	return colMap
}

func normalizeHeader(col string) string {
	normalized := strings.ToLower(strings.TrimSpace(col))
	normalized = strings.ReplaceAll(normalized, " ", "_")
	normalized = strings.ReplaceAll(normalized, "-", "_")
	return normalized
}

func cell(row []string, colMap map[string]int, field string) string {
	idx, ok := colMap[field]
	if !ok || idx >= len(row) {
		return ""
	}
	return row[idx]
}

func parseFloat(raw string) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || v < 0 {
		return 0
	}
	return v
}

func parseInt(raw string) int {
	v, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || v < 0 {
		return 0
	}
	return v
}
