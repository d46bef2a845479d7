package feed

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"time"

	"quantlab-go/internal/market"
	"quantlab-go/internal/metrics"
)

// LoadCSV reads an entire bar history from a CSV file with columns
// timestamp,open,high,low,close,volume[,symbol]. Timestamps are RFC 3339 or
// unix seconds; a header row is skipped automatically.
func LoadCSV(path, symbol string) ([]market.Bar, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open bars csv: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read bars csv: %w", err)
	}

	bars := make([]market.Bar, 0, len(records))
	for i, rec := range records {
		if len(rec) < 6 {
			return nil, fmt.Errorf("row %d: expected at least 6 fields, got %d", i+1, len(rec))
		}
		ts, err := parseTimestamp(rec[0])
		if err != nil {
			if i == 0 {
				continue // header row
			}
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		var vals [5]float64
		for j := 0; j < 5; j++ {
			v, err := strconv.ParseFloat(rec[j+1], 64)
			if err != nil {
				return nil, fmt.Errorf("row %d field %d: %w", i+1, j+2, err)
			}
			vals[j] = v
		}
		bar := market.Bar{
			Timestamp: ts,
			Open:      vals[0],
			High:      vals[1],
			Low:       vals[2],
			Close:     vals[3],
			Volume:    vals[4],
			Symbol:    symbol,
		}
		if len(rec) > 6 && rec[6] != "" {
			bar.Symbol = rec[6]
		}
		bars = append(bars, bar)
	}
	return bars, nil
}

func parseTimestamp(s string) (time.Time, error) {
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(secs, 0).UTC(), nil
	}
	ts, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("unparseable timestamp %q", s)
	}
	return ts, nil
}

// runCSV replays a file through the bar channel, preserving order.
func (f *Feed) runCSV(ctx context.Context, out chan<- market.Bar) error {
	symbol := ""
	if len(f.symbols) > 0 {
		symbol = f.symbols[0]
	}
	bars, err := LoadCSV(f.path, symbol)
	if err != nil {
		return err
	}
	for _, bar := range bars {
		select {
		case out <- bar:
			metrics.BarsTotal.WithLabelValues(bar.Symbol).Inc()
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}
