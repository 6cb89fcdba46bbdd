// cmd/seed/load.go
package main

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"strconv"
	"time"

	"github.com/schollz/progressbar/v3"
	"github.com/urfave/cli/v2"

	"github.com/perfdash/backend-go/internal/dates"
	"github.com/perfdash/backend-go/internal/domain"
	"github.com/perfdash/backend-go/internal/ingest"
	"github.com/perfdash/backend-go/internal/metrics"
)

// runLoad parses the local CSV exports into one merged dataset and uploads it
// to a running server, replacing whatever dataset the server holds.
func runLoad(c *cli.Context) error {
	dataDir := c.String("data-dir")

	files, err := ingest.CollectCSVFiles(dataDir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		log.Printf("no CSV files found in %s", dataDir)
		return nil
	}

	bar := progressbar.Default(int64(len(files)), "parsing")
	records, err := ingest.LoadDir(c.Context, dataDir, c.Int("workers"), func(string) {
		_ = bar.Add(1)
	})
	if err != nil {
		return err
	}

	summarize(c.Context, records)

	if c.Bool("dry-run") {
		log.Printf("dry run: skipping upload of %d record(s)", len(records))
		return nil
	}

	return upload(c.Context, c.String("server-url"), records)
}

func summarize(ctx context.Context, records []domain.Record) {
	resolver := dates.NewResolver(dates.NewMemoryCache())
	detected := resolver.DetectedRange(ctx, records)
	totals := metrics.Aggregate(records)

	log.Printf("parsed %d record(s) spanning %s .. %s", len(records), detected.Start, detected.End)
	log.Printf("revenue=%.2f costs=%.2f profit=%.2f orders=%d",
		totals.TotalRevenue, totals.TotalCosts, totals.Profit, totals.TotalOrders)
}

func upload(ctx context.Context, serverURL string, records []domain.Record) error {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "dataset.csv")
	if err != nil {
		return err
	}
	if err := writeCSV(part, records); err != nil {
		return fmt.Errorf("failed to encode dataset: %w", err)
	}
	if err := writer.Close(); err != nil {
		return err
	}

	url := serverURL + "/api/v1/dataset/upload"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	client := &http.Client{Timeout: 60 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("upload failed: %w", err)
	}
	defer resp.Body.Close()

	payload, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("upload rejected (%d): %s", resp.StatusCode, payload)
	}

	var pretty bytes.Buffer
	if err := json.Indent(&pretty, payload, "", "  "); err == nil {
		log.Printf("dataset replaced:\n%s", pretty.String())
	} else {
		log.Printf("dataset replaced: %s", payload)
	}
	return nil
}

func writeCSV(w io.Writer, records []domain.Record) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	header := []string{
		"id", "name", "category", "brand", "month",
		"revenue", "ad_spend", "non_ad_costs", "third_party_costs",
		"orders", "cpa", "average_sale",
	}
	if err := writer.Write(header); err != nil {
		return err
	}

	for _, r := range records {
		row := []string{
			r.ID, r.Name, r.Category, r.Brand, r.Month,
			formatFloat(r.Revenue), formatFloat(r.AdSpend),
			formatFloat(r.NonAdCosts), formatFloat(r.ThirdPartyCosts),
			strconv.Itoa(r.Orders), formatFloat(r.CPA), formatFloat(r.AverageSale),
		}
		if err := writer.Write(row); err != nil {
			return err
		}
	}

	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
